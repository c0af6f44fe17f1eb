package graph

import "sort"

// Closure returns the nodes connected to root via dependency edges:
// ancestors reached through depends_on, descendants reached through blocks,
// and root itself, sorted ascending. The two directions are walked
// separately, so a sibling branch (a node sharing an ancestor with root but
// neither above nor below it) is not pulled in. Visited sets are the sole
// termination guard; existing cycles are harmless.
//
// Used to scope a graph view to "this issue and everything connected to it".
func Closure(v *View, root int) []int {
	members := map[int]bool{root: true}
	walk(v, root, members, func(n *Node) []int { return n.DependsOn })
	walk(v, root, members, func(n *Node) []int { return n.Blocks })

	out := make([]int, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// walk follows one edge direction from root, adding every reached node to
// members.
func walk(v *View, root int, members map[int]bool, edges func(*Node) []int) {
	visited := map[int]bool{root: true}
	stack := []int{root}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := v.Nodes[id]
		if n == nil {
			continue
		}
		for _, next := range edges(n) {
			if visited[next] {
				continue
			}
			visited[next] = true
			members[next] = true
			stack = append(stack, next)
		}
	}
}
