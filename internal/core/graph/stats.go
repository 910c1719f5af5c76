package graph

// Statistics describes the store's size and shape.
type Statistics struct {
	EntityCount       int            `json:"entity_count"`
	RelationCount     int            `json:"relation_count"`
	EntityTypes       map[string]int `json:"entity_types"`
	RelationTypes     map[string]int `json:"relation_types"`
	AverageDegree     float64        `json:"average_degree"`
	Density           float64        `json:"density"`
	ConnectedParts    int            `json:"connected_components"`
	IsolatedEntities  int            `json:"isolated_entities"`
	AverageConfidence float64        `json:"average_relation_confidence"`
}

// Statistics computes store statistics. Density treats the graph as
// directed: relations divided by n*(n-1) possible ordered pairs.
// Components are weak, direction is ignored.
func (s *Store) Statistics() Statistics {
	stats := Statistics{
		EntityCount:   len(s.entities),
		RelationCount: len(s.relations),
		EntityTypes:   make(map[string]int),
		RelationTypes: make(map[string]int),
	}

	for entityType, ids := range s.typeIndex {
		stats.EntityTypes[entityType] = len(ids)
	}
	for relationType, ids := range s.relTypeIndex {
		stats.RelationTypes[relationType] = len(ids)
	}

	var confidence float64
	for _, r := range s.relations {
		confidence += r.Confidence
	}
	if len(s.relations) > 0 {
		stats.AverageConfidence = confidence / float64(len(s.relations))
	}

	n := len(s.entities)
	if n > 0 {
		// each relation contributes one out-degree and one in-degree
		stats.AverageDegree = 2 * float64(len(s.relations)) / float64(n)
	}
	if n > 1 {
		stats.Density = float64(len(s.relations)) / float64(n*(n-1))
	}

	stats.ConnectedParts, stats.IsolatedEntities = s.components()
	return stats
}

// components counts weakly connected components and entities with no
// edges at all.
func (s *Store) components() (parts, isolated int) {
	visited := make(map[string]struct{}, len(s.entities))
	for _, start := range s.entityOrder {
		if _, ok := visited[start]; ok {
			continue
		}
		parts++
		if len(s.outgoing[start]) == 0 && len(s.incoming[start]) == 0 {
			isolated++
			visited[start] = struct{}{}
			continue
		}
		stack := []string{start}
		visited[start] = struct{}{}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, neighbor := range s.Neighbors(current, "") {
				if _, ok := visited[neighbor]; !ok {
					visited[neighbor] = struct{}{}
					stack = append(stack, neighbor)
				}
			}
		}
	}
	return parts, isolated
}
