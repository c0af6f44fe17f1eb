// Package storage persists issues as individual MDX files under the issues
// directory, split into open/ and closed/ subdirectories.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mwhitford/abacus/internal/issue"
)

const (
	issuesDir = "issues"
	openDir   = "issues/open"
	closedDir = "issues/closed"
)

// ErrNotFound is returned when a referenced issue does not exist on disk.
var ErrNotFound = errors.New("issue not found")

// issueFilePattern matches issue filenames: zero-padded id, dash, slug.
var issueFilePattern = regexp.MustCompile(`^(\d+)-.*\.mdx?$`)

// FileStore is the file-backed issue repository.
type FileStore struct {
	baseDir string
}

// NewFileStore creates a store rooted at baseDir. No directories are created
// until the first write.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) openPath() string   { return filepath.Join(s.baseDir, filepath.FromSlash(openDir)) }
func (s *FileStore) closedPath() string { return filepath.Join(s.baseDir, filepath.FromSlash(closedDir)) }

// findIssueFile locates the file for an issue id in either directory.
// Returns "" and no error when the issue does not exist.
func (s *FileStore) findIssueFile(id int) (string, error) {
	prefix := fmt.Sprintf("%02d-", id)

	for _, dir := range []string{s.openPath(), s.closedPath()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read %s: %w", dir, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, prefix) && (strings.HasSuffix(name, ".mdx") || strings.HasSuffix(name, ".md")) {
				return filepath.Join(dir, name), nil
			}
		}
	}
	return "", nil
}

// Get loads an issue by id. Returns (nil, nil) when the issue does not exist.
func (s *FileStore) Get(id int) (*issue.Issue, error) {
	path, err := s.findIssueFile(id)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	iss, err := issue.ParseMDX(string(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return iss, nil
}

// List returns all open issues ordered by id. This is the working set for
// graph operations.
func (s *FileStore) List() ([]issue.Issue, error) {
	return s.listDir(s.openPath())
}

// ListClosed returns all closed issues ordered by id.
func (s *FileStore) ListClosed() ([]issue.Issue, error) {
	return s.listDir(s.closedPath())
}

func (s *FileStore) listDir(dir string) ([]issue.Issue, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var issues []issue.Issue
	for _, entry := range entries {
		if !issueFilePattern.MatchString(entry.Name()) {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		iss, err := issue.ParseMDX(string(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		issues = append(issues, *iss)
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Meta.ID < issues[j].Meta.ID })
	return issues, nil
}

// Update loads an issue, applies mutate to its metadata, and writes it back
// in place. Returns ErrNotFound when the issue does not exist.
func (s *FileStore) Update(id int, mutate func(*issue.Metadata)) error {
	path, err := s.findIssueFile(id)
	if err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("%s: %w", issue.Ref(id), ErrNotFound)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	iss, err := issue.ParseMDX(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	mutate(&iss.Meta)

	doc, err := iss.EncodeMDX()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Save writes an issue into the open or closed directory, creating the
// directory if needed. Returns the file path.
func (s *FileStore) Save(iss *issue.Issue, open bool) (string, error) {
	dir := s.closedPath()
	if open {
		dir = s.openPath()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	doc, err := iss.EncodeMDX()
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%02d-%s.mdx", iss.Meta.ID, Slugify(iss.Meta.Title)))
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Move relocates an issue between the open and closed directories. Edges are
// untouched: closing or reopening never modifies dependency lists.
func (s *FileStore) Move(id int, toOpen bool) (string, error) {
	src, err := s.findIssueFile(id)
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", fmt.Errorf("%s: %w", issue.Ref(id), ErrNotFound)
	}

	content, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src, err)
	}
	iss, err := issue.ParseMDX(string(content))
	if err != nil {
		return "", fmt.Errorf("%s: %w", filepath.Base(src), err)
	}

	dest, err := s.Save(iss, toOpen)
	if err != nil {
		return "", err
	}
	if dest != src {
		if err := os.Remove(src); err != nil {
			return "", fmt.Errorf("remove %s: %w", src, err)
		}
	}
	return dest, nil
}

// NextID returns one past the highest issue id across both directories.
func (s *FileStore) NextID() (int, error) {
	maxID := 0
	for _, dir := range []string{s.openPath(), s.closedPath()} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, entry := range entries {
			caps := issueFilePattern.FindStringSubmatch(entry.Name())
			if caps == nil {
				continue
			}
			if id, err := strconv.Atoi(caps[1]); err == nil && id > maxID {
				maxID = id
			}
		}
	}
	return maxID + 1, nil
}

// Resolve converts an issue reference ("12" or "BUG-12") to an id.
func Resolve(ref string) (int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(ref), "BUG-")
	id, err := strconv.Atoi(trimmed)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid issue reference %q", ref)
	}
	return id, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title to a filename-safe slug.
func Slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "-")
	return strings.Trim(slug, "-")
}
