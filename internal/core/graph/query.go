package graph

import (
	"log"

	"github.com/graphloom/loom/internal/core/model"
)

// Neighbors returns the entity ids adjacent to id across both edge
// directions, de-duplicated in edge insertion order. A non-empty
// relationType restricts the traversal to edges of that type.
func (s *Store) Neighbors(id string, relationType string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(neighborID string) {
		if _, ok := seen[neighborID]; ok {
			return
		}
		seen[neighborID] = struct{}{}
		out = append(out, neighborID)
	}
	for _, relID := range s.outgoing[id] {
		r := s.relations[relID]
		if relationType == "" || r.Type == relationType {
			add(r.TailEntityID)
		}
	}
	for _, relID := range s.incoming[id] {
		r := s.relations[relID]
		if relationType == "" || r.Type == relationType {
			add(r.HeadEntityID)
		}
	}
	return out
}

// FindPaths returns every simple path from start to end of at most
// maxDepth hops, traversing edges in both directions. Paths are entity
// id sequences including both endpoints. The search tracks only the
// current path as visited, so all simple paths are found, not just the
// shortest.
func (s *Store) FindPaths(start, end string, maxDepth int) [][]string {
	if maxDepth <= 0 {
		return nil
	}
	if _, ok := s.entities[start]; !ok {
		return nil
	}
	if _, ok := s.entities[end]; !ok {
		return nil
	}

	var paths [][]string
	onPath := map[string]struct{}{start: {}}
	path := []string{start}

	var walk func(current string, depth int)
	walk = func(current string, depth int) {
		if depth >= maxDepth {
			return
		}
		for _, next := range s.Neighbors(current, "") {
			if _, ok := onPath[next]; ok {
				continue
			}
			path = append(path, next)
			if next == end {
				paths = append(paths, append([]string{}, path...))
			} else {
				onPath[next] = struct{}{}
				walk(next, depth+1)
				delete(onPath, next)
			}
			path = path[:len(path)-1]
		}
	}
	walk(start, 0)
	return paths
}

// Subgraph expands the seed ids by depth rounds of Neighbors, then
// materializes a new store with the expanded entity set and every
// relation whose endpoints both fall inside it. The result shares the
// ontology but no state with the receiver.
func (s *Store) Subgraph(seedIDs []string, depth int) *Store {
	included := make(map[string]struct{})
	var frontier []string
	for _, id := range seedIDs {
		if _, ok := s.entities[id]; !ok {
			continue
		}
		if _, ok := included[id]; !ok {
			included[id] = struct{}{}
			frontier = append(frontier, id)
		}
	}

	for round := 0; round < depth; round++ {
		var next []string
		for _, id := range frontier {
			for _, neighbor := range s.Neighbors(id, "") {
				if _, ok := included[neighbor]; !ok {
					included[neighbor] = struct{}{}
					next = append(next, neighbor)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	sub := NewStore(s.Ontology)
	for _, id := range s.entityOrder {
		if _, ok := included[id]; ok {
			sub.AddEntity(s.entities[id])
		}
	}
	for _, relID := range s.relationOrder {
		r := s.relations[relID]
		_, headIn := included[r.HeadEntityID]
		_, tailIn := included[r.TailEntityID]
		if headIn && tailIn {
			if err := sub.AddRelation(r); err != nil {
				log.Printf("subgraph: skipping relation %s: %v", r.ID, err)
			}
		}
	}
	return sub
}

// EntitiesOf resolves ids to entities, skipping unknown ids.
func (s *Store) EntitiesOf(ids []string) []model.Entity {
	out := make([]model.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.entities[id]; ok {
			out = append(out, e.Clone())
		}
	}
	return out
}
