package graph

import (
	"reflect"
	"testing"

	"github.com/mwhitford/abacus/internal/issue"
	"github.com/mwhitford/abacus/internal/testutil"
)

// buildView constructs a snapshot from a depends_on adjacency map, with the
// blocks mirror filled in automatically.
func buildView(t *testing.T, dependsOn map[int][]int) *View {
	t.Helper()
	v, err := Load(testutil.SeedStore(dependsOn))
	if err != nil {
		t.Fatalf("load view: %v", err)
	}
	return v
}

func TestNewView_SortedIDs(t *testing.T) {
	issues := []issue.Issue{
		*testutil.NewIssue(7, nil, nil),
		*testutil.NewIssue(2, []int{7}, nil),
		*testutil.NewIssue(11, nil, []int{2}),
	}

	v := NewView(issues)

	if !reflect.DeepEqual(v.IDs, []int{2, 7, 11}) {
		t.Errorf("IDs = %v, want [2 7 11]", v.IDs)
	}
	if v.Nodes[2] == nil || !reflect.DeepEqual(v.Nodes[2].DependsOn, []int{7}) {
		t.Errorf("node 2 edges not carried over: %+v", v.Nodes[2])
	}
}

func TestNewView_CopiesEdgeLists(t *testing.T) {
	iss := testutil.NewIssue(1, []int{2}, nil)
	v := NewView([]issue.Issue{*iss})

	v.Nodes[1].DependsOn[0] = 99
	if iss.Meta.DependsOn[0] != 2 {
		t.Error("view mutation leaked into the source issue")
	}
}

func TestMirrorViolations(t *testing.T) {
	tests := []struct {
		name   string
		issues []issue.Issue
		want   []Violation
	}{
		{
			name: "consistent",
			issues: []issue.Issue{
				*testutil.NewIssue(1, []int{2}, nil),
				*testutil.NewIssue(2, nil, []int{1}),
			},
			want: nil,
		},
		{
			name: "missing blocks entry",
			issues: []issue.Issue{
				*testutil.NewIssue(1, []int{2}, nil),
				*testutil.NewIssue(2, nil, nil),
			},
			want: []Violation{{Dependent: 1, Target: 2}},
		},
		{
			name: "stale blocks entry",
			issues: []issue.Issue{
				*testutil.NewIssue(1, nil, nil),
				*testutil.NewIssue(2, nil, []int{1}),
			},
			want: []Violation{{Dependent: 1, Target: 2, Stale: true}},
		},
		{
			name: "dangling edges ignored",
			issues: []issue.Issue{
				*testutil.NewIssue(1, []int{99}, []int{98}),
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewView(tt.issues).MirrorViolations()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MirrorViolations() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
