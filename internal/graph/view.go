// Package graph implements the issue dependency graph: edge mutation with
// cycle prevention, cycle detection, critical path search, reachability
// closures, and topological layering for rendering.
//
// All operations are snapshot-based: a View is rebuilt from the repository
// per call and never cached across operations. The blocks lists are a
// denormalized transpose of depends_on, maintained incrementally by Apply;
// MirrorViolations recomputes the transpose for integrity checks.
package graph

import (
	"sort"

	"github.com/mwhitford/abacus/internal/issue"
)

// Repository is the issue store the graph reads and mutates.
// Get returns (nil, nil) for an id that does not exist.
type Repository interface {
	Get(id int) (*issue.Issue, error)
	List() ([]issue.Issue, error)
	Update(id int, mutate func(*issue.Metadata)) error
}

// Node is an issue's projection into the dependency graph. Title, Status,
// and Priority ride along for display only; the algorithms read just the
// edge lists.
type Node struct {
	ID        int
	Title     string
	Status    issue.Status
	Priority  issue.Priority
	DependsOn []int
	Blocks    []int
}

// View is a snapshot of the working set, keyed by id.
type View struct {
	Nodes map[int]*Node
	IDs   []int // ascending
}

// NewView builds a snapshot from issue records.
func NewView(issues []issue.Issue) *View {
	v := &View{Nodes: make(map[int]*Node, len(issues))}
	for i := range issues {
		meta := &issues[i].Meta
		v.Nodes[meta.ID] = &Node{
			ID:        meta.ID,
			Title:     meta.Title,
			Status:    meta.Status,
			Priority:  meta.Priority,
			DependsOn: append([]int(nil), meta.DependsOn...),
			Blocks:    append([]int(nil), meta.Blocks...),
		}
		v.IDs = append(v.IDs, meta.ID)
	}
	sort.Ints(v.IDs)
	return v
}

// Load builds a snapshot of the repository's working set.
func Load(repo Repository) (*View, error) {
	issues, err := repo.List()
	if err != nil {
		return nil, err
	}
	return NewView(issues), nil
}

// Violation records a mismatch between a depends_on edge and its blocks
// mirror.
type Violation struct {
	Dependent int  // node whose depends_on names Target
	Target    int  // node whose blocks list is wrong
	Stale     bool // true: blocks entry with no matching depends_on; false: missing blocks entry
}

// MirrorViolations recomputes the blocks transpose from depends_on and
// reports every mismatch, in (Target, Dependent) order. An empty result
// means the denormalized blocks lists are trustworthy.
func (v *View) MirrorViolations() []Violation {
	var out []Violation

	for _, id := range v.IDs {
		n := v.Nodes[id]
		for _, dep := range n.DependsOn {
			target := v.Nodes[dep]
			if target == nil {
				continue
			}
			if !containsInt(target.Blocks, id) {
				out = append(out, Violation{Dependent: id, Target: dep})
			}
		}
		for _, blocked := range n.Blocks {
			dependent := v.Nodes[blocked]
			if dependent == nil {
				continue
			}
			if !containsInt(dependent.DependsOn, id) {
				out = append(out, Violation{Dependent: blocked, Target: id, Stale: true})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Target != out[j].Target {
			return out[i].Target < out[j].Target
		}
		return out[i].Dependent < out[j].Dependent
	})
	return out
}

func containsInt(list []int, x int) bool {
	for _, v := range list {
		if v == x {
			return true
		}
	}
	return false
}
