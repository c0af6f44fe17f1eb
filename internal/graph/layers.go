package graph

import "sort"

// Layers partitions ids into topological layers for rendering: every
// prerequisite of a node in layer L that is itself in ids appears in a
// layer before L. Ids within a layer are sorted ascending. Prerequisites
// outside ids (or missing from the snapshot entirely) never gate placement.
//
// Each round scans the remaining ids and takes every one whose in-set
// prerequisites are all placed. When a round places nothing while ids
// remain (only possible through a cycle) the leftovers become one final
// layer instead of looping. Termination wins over a clean layering; this
// feeds ASCII rendering only and never mutates anything.
func Layers(ids []int, v *View) [][]int {
	inSet := make(map[int]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	placed := make(map[int]bool, len(ids))
	remaining := append([]int(nil), ids...)
	sort.Ints(remaining)

	var layers [][]int
	for len(remaining) > 0 {
		var layer, rest []int
		for _, id := range remaining {
			if ready(v, id, inSet, placed) {
				layer = append(layer, id)
			} else {
				rest = append(rest, id)
			}
		}

		if len(layer) == 0 {
			// Cycle among the leftovers: dump them as one last layer.
			layers = append(layers, rest)
			break
		}

		for _, id := range layer {
			placed[id] = true
		}
		layers = append(layers, layer)
		remaining = rest
	}

	return layers
}

// ready reports whether every in-set prerequisite of id is already placed.
func ready(v *View, id int, inSet, placed map[int]bool) bool {
	n := v.Nodes[id]
	if n == nil {
		return true
	}
	for _, dep := range n.DependsOn {
		if inSet[dep] && !placed[dep] {
			return false
		}
	}
	return true
}
