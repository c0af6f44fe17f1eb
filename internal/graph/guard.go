package graph

// WouldCycle reports whether adding the edge from -> to ("from depends on
// to") would close a cycle, i.e. whether from is already reachable from to
// via existing depends_on edges. The search walks only pre-mutation edges
// with an explicit stack and a visited set, so it terminates even when the
// stored graph already contains cycles.
func WouldCycle(repo Repository, from, to int) (bool, error) {
	stack := []int{to}
	visited := make(map[int]bool)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id == from {
			return true, nil
		}
		if visited[id] {
			continue
		}
		visited[id] = true

		iss, err := repo.Get(id)
		if err != nil {
			return false, err
		}
		if iss == nil {
			continue
		}
		stack = append(stack, iss.Meta.DependsOn...)
	}
	return false, nil
}
