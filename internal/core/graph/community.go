package graph

import "sort"

// maxLabelIterations bounds label propagation; the loop usually
// converges much earlier.
const maxLabelIterations = 20

// Communities detects entity communities by label propagation over the
// undirected relation graph, edge weight being the number of relations
// between a pair. Every entity starts with its own id as label; each
// round adopts the weight-heaviest neighbor label, ties broken by the
// lexicographically largest label so runs are deterministic. Returns
// the id groups with two or more members, group order by smallest
// member id.
func (s *Store) Communities() [][]string {
	if len(s.entityOrder) == 0 {
		return nil
	}

	adj := make(map[string]map[string]int, len(s.entities))
	for _, id := range s.entityOrder {
		adj[id] = make(map[string]int)
	}
	for _, relID := range s.relationOrder {
		r := s.relations[relID]
		adj[r.HeadEntityID][r.TailEntityID]++
		adj[r.TailEntityID][r.HeadEntityID]++
	}

	labels := make(map[string]string, len(s.entities))
	for _, id := range s.entityOrder {
		labels[id] = id
	}

	for iter := 0; iter < maxLabelIterations; iter++ {
		changed := 0
		for _, id := range s.entityOrder {
			neighbors := adj[id]
			if len(neighbors) == 0 {
				continue
			}

			counts := make(map[string]int)
			maxCount := 0
			for neighbor, weight := range neighbors {
				label := labels[neighbor]
				counts[label] += weight
				if counts[label] > maxCount {
					maxCount = counts[label]
				}
			}

			var candidates []string
			for label, count := range counts {
				if count == maxCount {
					candidates = append(candidates, label)
				}
			}
			sort.Strings(candidates)
			best := candidates[len(candidates)-1]

			if labels[id] != best {
				labels[id] = best
				changed++
			}
		}
		if changed == 0 {
			break
		}
	}

	byLabel := make(map[string][]string)
	for _, id := range s.entityOrder {
		byLabel[labels[id]] = append(byLabel[labels[id]], id)
	}

	var communities [][]string
	for _, members := range byLabel {
		if len(members) >= 2 {
			sort.Strings(members)
			communities = append(communities, members)
		}
	}
	sort.Slice(communities, func(i, j int) bool {
		return communities[i][0] < communities[j][0]
	})
	return communities
}
