package storage

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mwhitford/abacus/internal/issue"
)

func seedDir(t *testing.T, files map[string]string) string {
	t.Helper()
	base := t.TempDir()
	open := filepath.Join(base, "issues", "open")
	if err := os.MkdirAll(open, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(open, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return base
}

const loginTimeoutMDX = `---
id: 1
title: Fix login timeout
priority: high
status: in_progress
created: 1700000001
depends_on:
    - 2
---

# BUG-1: Fix login timeout
`

const tokenRotationMDX = `---
id: 2
title: Refresh token rotation
priority: critical
status: not_started
created: 1700000002
blocks:
    - 1
---

# BUG-2: Refresh token rotation
`

func TestFileStore_Get(t *testing.T) {
	store := NewFileStore(seedDir(t, map[string]string{
		"01-fix-login-timeout.mdx": loginTimeoutMDX,
	}))

	iss, err := store.Get(1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if iss == nil {
		t.Fatal("issue 1 not found")
	}
	if iss.Meta.Title != "Fix login timeout" {
		t.Errorf("title = %q", iss.Meta.Title)
	}
	if !reflect.DeepEqual(iss.Meta.DependsOn, []int{2}) {
		t.Errorf("depends_on = %v, want [2]", iss.Meta.DependsOn)
	}
	if iss.Meta.Status != issue.StatusInProgress {
		t.Errorf("status = %q", iss.Meta.Status)
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	store := NewFileStore(seedDir(t, nil))

	iss, err := store.Get(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if iss != nil {
		t.Errorf("expected nil issue, got %+v", iss)
	}
}

func TestFileStore_GetEmptyBaseDir(t *testing.T) {
	// A store over a directory with no issues tree behaves like an empty
	// tracker, not an error.
	store := NewFileStore(t.TempDir())

	if iss, err := store.Get(1); err != nil || iss != nil {
		t.Errorf("Get = (%v, %v), want (nil, nil)", iss, err)
	}
	if issues, err := store.List(); err != nil || issues != nil {
		t.Errorf("List = (%v, %v), want (nil, nil)", issues, err)
	}
}

func TestFileStore_ListSortedByID(t *testing.T) {
	store := NewFileStore(seedDir(t, map[string]string{
		"02-refresh-token-rotation.mdx": tokenRotationMDX,
		"01-fix-login-timeout.mdx":      loginTimeoutMDX,
		"notes.txt":                     "not an issue file",
	}))

	issues, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].Meta.ID != 1 || issues[1].Meta.ID != 2 {
		t.Errorf("ids = [%d %d], want [1 2]", issues[0].Meta.ID, issues[1].Meta.ID)
	}
}

func TestFileStore_ListRejectsMalformed(t *testing.T) {
	store := NewFileStore(seedDir(t, map[string]string{
		"01-fix-login-timeout.mdx": loginTimeoutMDX,
		"03-broken.mdx":            "no frontmatter here",
	}))

	_, err := store.List()
	if err == nil {
		t.Fatal("expected parse error for malformed issue file")
	}
	if !strings.Contains(err.Error(), "03-broken.mdx") {
		t.Errorf("error %q does not name the offending file", err)
	}
}

func TestFileStore_Update(t *testing.T) {
	store := NewFileStore(seedDir(t, map[string]string{
		"01-fix-login-timeout.mdx": loginTimeoutMDX,
	}))

	err := store.Update(1, func(meta *issue.Metadata) {
		meta.DependsOn = append(meta.DependsOn, 3)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	iss, err := store.Get(1)
	if err != nil || iss == nil {
		t.Fatalf("reload: %v", err)
	}
	if !reflect.DeepEqual(iss.Meta.DependsOn, []int{2, 3}) {
		t.Errorf("depends_on = %v, want [2 3]", iss.Meta.DependsOn)
	}
	if iss.Meta.Title != "Fix login timeout" {
		t.Errorf("title changed to %q", iss.Meta.Title)
	}
	if !strings.Contains(iss.Body, "# BUG-1") {
		t.Errorf("body lost: %q", iss.Body)
	}
}

func TestFileStore_UpdateMissing(t *testing.T) {
	store := NewFileStore(seedDir(t, nil))

	err := store.Update(42, func(meta *issue.Metadata) {})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "BUG-42") {
		t.Errorf("error %q does not name the issue", err)
	}
}

func TestFileStore_SaveAndNextID(t *testing.T) {
	store := NewFileStore(t.TempDir())

	id, err := store.NextID()
	if err != nil {
		t.Fatalf("next id: %v", err)
	}
	if id != 1 {
		t.Errorf("NextID on empty store = %d, want 1", id)
	}

	iss := issue.New(1, "Add rate limiting", issue.PriorityHigh, nil,
		"API melts down under burst traffic", "Outages", "p99 stays under 200ms", 1700000100)
	path, err := store.Save(iss, true)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Base(path) != "01-add-rate-limiting.mdx" {
		t.Errorf("filename = %q", filepath.Base(path))
	}

	id, err = store.NextID()
	if err != nil {
		t.Fatalf("next id: %v", err)
	}
	if id != 2 {
		t.Errorf("NextID = %d, want 2", id)
	}
}

func TestFileStore_MoveKeepsEdges(t *testing.T) {
	store := NewFileStore(seedDir(t, map[string]string{
		"01-fix-login-timeout.mdx": loginTimeoutMDX,
	}))

	if _, err := store.Move(1, false); err != nil {
		t.Fatalf("close: %v", err)
	}

	open, err := store.List()
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open list = %v, want empty", open)
	}

	closed, err := store.ListClosed()
	if err != nil {
		t.Fatalf("list closed: %v", err)
	}
	if len(closed) != 1 {
		t.Fatalf("closed list has %d issues, want 1", len(closed))
	}
	if !reflect.DeepEqual(closed[0].Meta.DependsOn, []int{2}) {
		t.Errorf("depends_on after move = %v, want [2]", closed[0].Meta.DependsOn)
	}

	// Get still finds it in the closed directory.
	iss, err := store.Get(1)
	if err != nil || iss == nil {
		t.Fatalf("get after move: (%v, %v)", iss, err)
	}

	// And back.
	if _, err := store.Move(1, true); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	open, err = store.List()
	if err != nil || len(open) != 1 {
		t.Fatalf("list after reopen: (%v, %v)", open, err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{"BUG-12", 12, false},
		{" BUG-3 ", 3, false},
		{"BUG-", 0, true},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := Resolve(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("Resolve(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %d, want %d", tt.ref, got, tt.want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Fix login timeout", "fix-login-timeout"},
		{"  OAuth2 / PKCE flow!  ", "oauth2-pkce-flow"},
		{"---", ""},
		{"Already-slugged", "already-slugged"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}
