package graph

import (
	"reflect"
	"testing"
)

func TestClosure(t *testing.T) {
	// Diamond: 4 depends on 2 and 3, both of which depend on 1.
	diamond := map[int][]int{
		1: nil,
		2: {1},
		3: {1},
		4: {2, 3},
	}

	tests := []struct {
		name      string
		dependsOn map[int][]int
		root      int
		want      []int
	}{
		{
			name:      "isolated node",
			dependsOn: map[int][]int{1: nil, 2: nil},
			root:      1,
			want:      []int{1},
		},
		{
			name:      "linear chain from middle",
			dependsOn: map[int][]int{1: {2}, 2: {3}, 3: nil},
			root:      2,
			want:      []int{1, 2, 3},
		},
		{
			name:      "diamond side excludes sibling",
			dependsOn: diamond,
			root:      2,
			want:      []int{1, 2, 4},
		},
		{
			name:      "diamond bottom pulls both sides",
			dependsOn: diamond,
			root:      4,
			want:      []int{1, 2, 3, 4},
		},
		{
			name:      "diamond top pulls everything",
			dependsOn: diamond,
			root:      1,
			want:      []int{1, 2, 3, 4},
		},
		{
			name:      "root outside the snapshot",
			dependsOn: map[int][]int{1: nil},
			root:      9,
			want:      []int{9},
		},
		{
			name:      "cycle terminates",
			dependsOn: map[int][]int{1: {2}, 2: {1}, 3: nil},
			root:      1,
			want:      []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Closure(buildView(t, tt.dependsOn), tt.root)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Closure(%d) = %v, want %v", tt.root, got, tt.want)
			}
		})
	}
}
