package graph

// pathFrame is one stack frame of the iterative longest-chain walk.
type pathFrame struct {
	id   int
	next int // index of the next blocks edge to follow
}

// LongestChain returns the longest simple dependency chain in the snapshot:
// a sequence where each later node depends on the one before it. Ties break
// to the first chain found, so the result is deterministic but not unique.
// An empty snapshot yields an empty chain.
//
// Every node is tried as a chain start, walking blocks edges ("what depends
// on me") depth-first with an explicit stack. Membership in the current
// path is the only guard: a node already on the path is not revisited, so a
// cycle just terminates that branch. This is brute-force longest-path
// search; fine for issue graphs, which stay small and sparse.
func LongestChain(v *View) []int {
	var best []int

	for _, start := range v.IDs {
		frames := []pathFrame{{id: start}}
		onPath := map[int]bool{start: true}
		path := []int{start}

		if len(path) > len(best) {
			best = append([]int(nil), path...)
		}

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			n := v.Nodes[f.id]

			if f.next < len(n.Blocks) {
				w := n.Blocks[f.next]
				f.next++
				if v.Nodes[w] == nil || onPath[w] {
					continue
				}
				onPath[w] = true
				path = append(path, w)
				frames = append(frames, pathFrame{id: w})
				if len(path) > len(best) {
					best = append([]int(nil), path...)
				}
				continue
			}

			frames = frames[:len(frames)-1]
			delete(onPath, f.id)
			path = path[:len(path)-1]
		}
	}

	return best
}
