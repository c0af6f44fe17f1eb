// Package issue defines the issue record types and their on-disk MDX form.
package issue

import "fmt"

// Status is the lifecycle state of an issue.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
	StatusClosed     Status = "closed"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone, StatusClosed:
		return true
	}
	return false
}

// Marker returns a single-character icon for list and graph rendering.
func (s Status) Marker() string {
	switch s {
	case StatusNotStarted:
		return "o"
	case StatusInProgress:
		return "*"
	case StatusBlocked:
		return "x"
	case StatusDone, StatusClosed:
		return "."
	default:
		return "?"
	}
}

// Priority is the urgency of an issue.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// SortKey returns the sort rank for p (critical sorts first).
func (p Priority) SortKey() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Metadata is the YAML frontmatter of an issue file. Timestamps are unix
// seconds to keep the frontmatter stable across timezone changes.
type Metadata struct {
	ID            int      `yaml:"id" json:"id"`
	Title         string   `yaml:"title" json:"title"`
	Priority      Priority `yaml:"priority" json:"priority"`
	Status        Status   `yaml:"status" json:"status"`
	Created       int64    `yaml:"created" json:"created"`
	Files         []string `yaml:"files" json:"files,omitempty"`
	Effort        string   `yaml:"effort,omitempty" json:"effort,omitempty"`
	Context       string   `yaml:"context,omitempty" json:"context,omitempty"`
	Started       int64    `yaml:"started,omitempty" json:"started,omitempty"`
	BlockedReason string   `yaml:"blocked_reason,omitempty" json:"blocked_reason,omitempty"`
	Closed        int64    `yaml:"closed,omitempty" json:"closed,omitempty"`
	DependsOn     []int    `yaml:"depends_on,omitempty" json:"depends_on,omitempty"`
	Blocks        []int    `yaml:"blocks,omitempty" json:"blocks,omitempty"`
}

// Issue is a full issue record: frontmatter metadata plus markdown body.
type Issue struct {
	Meta Metadata
	Body string
}

// Ref returns the display reference for an issue id, e.g. "BUG-12".
func Ref(id int) string {
	return fmt.Sprintf("BUG-%d", id)
}

// New creates an open issue with the given id and attributes. The body is
// assembled from the issue/impact/acceptance sections the way the guide
// template lays them out.
func New(id int, title string, priority Priority, files []string, problem, impact, acceptance string, created int64) *Issue {
	body := fmt.Sprintf("# %s: %s\n\n", Ref(id), title)
	if problem != "" {
		body += fmt.Sprintf("**Issue**: %s\n\n", problem)
	}
	if impact != "" {
		body += fmt.Sprintf("**Impact**: %s\n\n", impact)
	}
	if acceptance != "" {
		body += fmt.Sprintf("**Acceptance**: %s\n\n", acceptance)
	}

	return &Issue{
		Meta: Metadata{
			ID:       id,
			Title:    title,
			Priority: priority,
			Status:   StatusNotStarted,
			Created:  created,
			Files:    files,
		},
		Body: body,
	}
}
