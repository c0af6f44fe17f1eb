package graph

import "sort"

// tarjanFrame is one stack frame of the iterative SCC walk: a node and the
// index of the next depends_on edge to follow.
type tarjanFrame struct {
	id   int
	next int
}

// FindCycles returns every strongly connected component of the depends_on
// graph with more than one member. Components are sorted ascending and
// listed by their smallest id, so the output is deterministic. An empty
// result means the graph is acyclic.
//
// This is Tarjan's algorithm run with an explicit frame stack instead of
// recursion. It never mutates and never fails: a graph that already
// contains cycles is exactly what it is for.
func FindCycles(v *View) [][]int {
	index := make(map[int]int, len(v.IDs))
	lowlink := make(map[int]int, len(v.IDs))
	onStack := make(map[int]bool)
	var stack []int
	counter := 0

	var sccs [][]int

	visit := func(root int) {
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, root)
		onStack[root] = true

		frames := []tarjanFrame{{id: root}}
		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			n := v.Nodes[f.id]

			if f.next < len(n.DependsOn) {
				w := n.DependsOn[f.next]
				f.next++
				if v.Nodes[w] == nil {
					continue // edge out of the working set
				}
				if _, seen := index[w]; !seen {
					index[w] = counter
					lowlink[w] = counter
					counter++
					stack = append(stack, w)
					onStack[w] = true
					frames = append(frames, tarjanFrame{id: w})
				} else if onStack[w] && index[w] < lowlink[f.id] {
					lowlink[f.id] = index[w]
				}
				continue
			}

			// All edges done: emit an SCC if f.id is its root, then fold
			// the lowlink into the parent frame.
			if lowlink[f.id] == index[f.id] {
				var scc []int
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == f.id {
						break
					}
				}
				if len(scc) > 1 {
					sort.Ints(scc)
					sccs = append(sccs, scc)
				}
			}

			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				parent := &frames[len(frames)-1]
				if lowlink[f.id] < lowlink[parent.id] {
					lowlink[parent.id] = lowlink[f.id]
				}
			}
		}
	}

	for _, id := range v.IDs {
		if _, seen := index[id]; !seen {
			visit(id)
		}
	}

	sort.Slice(sccs, func(i, j int) bool { return sccs[i][0] < sccs[j][0] })
	return sccs
}
