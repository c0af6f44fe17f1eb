// Package testutil provides shared fixtures for abacus tests.
package testutil

import (
	"fmt"
	"sort"

	"github.com/mwhitford/abacus/internal/issue"
	"github.com/mwhitford/abacus/internal/storage"
)

// NewIssue builds a minimal open issue with the given id and edges.
func NewIssue(id int, dependsOn, blocks []int) *issue.Issue {
	return &issue.Issue{
		Meta: issue.Metadata{
			ID:        id,
			Title:     fmt.Sprintf("Issue %d", id),
			Priority:  issue.PriorityMedium,
			Status:    issue.StatusNotStarted,
			Created:   1700000000 + int64(id),
			DependsOn: append([]int(nil), dependsOn...),
			Blocks:    append([]int(nil), blocks...),
		},
		Body: fmt.Sprintf("# %s: Issue %d\n", issue.Ref(id), id),
	}
}

// SeedStore builds a MemStore from a depends_on adjacency map, mirroring
// the blocks lists automatically so the store starts consistent.
func SeedStore(dependsOn map[int][]int) *storage.MemStore {
	blocks := make(map[int][]int)
	for id, deps := range dependsOn {
		for _, dep := range deps {
			blocks[dep] = append(blocks[dep], id)
		}
	}
	// Sorted, like Apply keeps them on disk.
	for _, list := range blocks {
		sort.Ints(list)
	}

	store := storage.NewMemStore()
	for id, deps := range dependsOn {
		store.Put(NewIssue(id, deps, blocks[id]))
	}
	return store
}

// SampleIssuesMDX holds issue documents in on-disk form, keyed by filename,
// for storage and watcher tests.
var SampleIssuesMDX = map[string]string{
	"01-fix-login-timeout.mdx": `---
id: 1
title: Fix login timeout
priority: high
status: in_progress
created: 1700000001
depends_on:
    - 2
---

# BUG-1: Fix login timeout

**Issue**: Sessions expire during SSO redirect.
`,
	"02-refresh-token-rotation.mdx": `---
id: 2
title: Refresh token rotation
priority: critical
status: not_started
created: 1700000002
blocks:
    - 1
---

# BUG-2: Refresh token rotation
`,
}
