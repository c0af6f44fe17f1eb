package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mwhitford/abacus/internal/issue"
)

// MemStore is an in-memory issue repository for tests and ephemeral use.
// It deep-copies on the way in and out so callers cannot alias stored state.
type MemStore struct {
	mu     sync.Mutex
	issues map[int]*issue.Issue

	// FailUpdate makes Update return the mapped error for an id without
	// applying the mutation. Used to exercise partial-write reporting.
	FailUpdate map[int]error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{issues: make(map[int]*issue.Issue)}
}

// Put inserts or replaces an issue.
func (s *MemStore) Put(iss *issue.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyIssue(iss)
	s.issues[cp.Meta.ID] = cp
}

// Get returns a copy of the issue, or (nil, nil) when absent.
func (s *MemStore) Get(id int) (*issue.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	iss, ok := s.issues[id]
	if !ok {
		return nil, nil
	}
	return copyIssue(iss), nil
}

// List returns all issues ordered by id.
func (s *MemStore) List() ([]issue.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int, 0, len(s.issues))
	for id := range s.issues {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	issues := make([]issue.Issue, 0, len(ids))
	for _, id := range ids {
		issues = append(issues, *copyIssue(s.issues[id]))
	}
	return issues, nil
}

// Update applies mutate to the issue's metadata.
func (s *MemStore) Update(id int, mutate func(*issue.Metadata)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.FailUpdate[id]; ok {
		return err
	}

	iss, ok := s.issues[id]
	if !ok {
		return fmt.Errorf("%s: %w", issue.Ref(id), ErrNotFound)
	}
	mutate(&iss.Meta)
	return nil
}

func copyIssue(iss *issue.Issue) *issue.Issue {
	cp := *iss
	cp.Meta.Files = append([]string(nil), iss.Meta.Files...)
	cp.Meta.DependsOn = append([]int(nil), iss.Meta.DependsOn...)
	cp.Meta.Blocks = append([]int(nil), iss.Meta.Blocks...)
	return &cp
}
