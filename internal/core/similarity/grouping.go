package similarity

// PairFunc scores the similarity of the items at two indices.
type PairFunc func(i, j int) float64

// SeedGroups walks the items in input order. Each unvisited item i seeds
// a group; every later unvisited j with sim(i,j) >= threshold joins that
// group and is marked visited. Members are compared only against the
// seed, never against each other, so the grouping is order-dependent and
// deterministic but not transitive. Only groups with two or more members
// are returned.
func SeedGroups(n int, threshold float64, sim PairFunc) [][]int {
	visited := make([]bool, n)
	var groups [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		group := []int{i}
		for j := i + 1; j < n; j++ {
			if visited[j] {
				continue
			}
			if sim(i, j) >= threshold {
				group = append(group, j)
				visited[j] = true
			}
		}
		visited[i] = true
		if len(group) > 1 {
			groups = append(groups, group)
		}
	}
	return groups
}

// ConnectedGroups treats sim >= threshold as an undirected edge and
// returns the connected components with two or more members, discovered
// by depth-first search in input order. Unlike SeedGroups this grouping
// is transitive: a~b and b~c place a and c in one component even when
// a and c score below the threshold.
func ConnectedGroups(n int, threshold float64, sim PairFunc) [][]int {
	visited := make([]bool, n)
	var groups [][]int
	for i := 0; i < n; i++ {
		if visited[i] {
			continue
		}
		var component []int
		stack := []int{i}
		visited[i] = true
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, u)
			for v := 0; v < n; v++ {
				if visited[v] || v == u {
					continue
				}
				a, b := u, v
				if a > b {
					a, b = b, a
				}
				if sim(a, b) >= threshold {
					visited[v] = true
					stack = append(stack, v)
				}
			}
		}
		if len(component) > 1 {
			groups = append(groups, component)
		}
	}
	return groups
}
