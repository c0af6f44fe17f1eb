package graph

import (
	"reflect"
	"testing"
)

func TestLongestChain(t *testing.T) {
	tests := []struct {
		name      string
		dependsOn map[int][]int
		want      []int
	}{
		{
			name:      "empty graph",
			dependsOn: map[int][]int{},
			want:      nil,
		},
		{
			name:      "single node",
			dependsOn: map[int][]int{7: nil},
			want:      []int{7},
		},
		{
			name:      "linear chain",
			dependsOn: map[int][]int{1: {2}, 2: {3}, 3: nil},
			want:      []int{3, 2, 1},
		},
		{
			name:      "longest branch wins",
			dependsOn: map[int][]int{1: {2}, 2: {3}, 4: {3}, 3: nil},
			want:      []int{3, 2, 1},
		},
		{
			name:      "diamond ties break to first found",
			dependsOn: map[int][]int{1: {2, 3}, 2: {4}, 3: {4}, 4: nil},
			want:      []int{4, 2, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LongestChain(buildView(t, tt.dependsOn))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LongestChain() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLongestChain_ChainOrderIsDependencyOrder(t *testing.T) {
	v := buildView(t, map[int][]int{10: {20}, 20: {30}, 30: nil})

	chain := LongestChain(v)
	for i := 1; i < len(chain); i++ {
		if !containsInt(v.Nodes[chain[i]].DependsOn, chain[i-1]) {
			t.Errorf("chain %v: %d does not depend on %d", chain, chain[i], chain[i-1])
		}
	}
}

func TestLongestChain_TerminatesOnCycle(t *testing.T) {
	// A pre-existing cycle must not hang the walk; the cycle's nodes can
	// still appear in the chain once each.
	v := buildView(t, map[int][]int{1: {2}, 2: {1}, 3: {1}})

	got := LongestChain(v)
	if !reflect.DeepEqual(got, []int{2, 1, 3}) {
		t.Errorf("LongestChain() = %v, want [2 1 3]", got)
	}
}
