package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond: a -> b -> d, a -> c -> d
func diamondStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore()
	for _, id := range []string{"a", "b", "c", "d"} {
		addEntity(t, s, id, "node "+id, "Concept")
	}
	addRelation(t, s, "r1", "related_to", "a", "b")
	addRelation(t, s, "r2", "related_to", "b", "d")
	addRelation(t, s, "r3", "related_to", "a", "c")
	addRelation(t, s, "r4", "related_to", "c", "d")
	return s
}

func TestNeighborsBothDirections(t *testing.T) {
	s := diamondStore(t)
	assert.Equal(t, []string{"b", "c"}, s.Neighbors("a", ""))
	assert.Equal(t, []string{"d", "a"}, s.Neighbors("b", ""))
	assert.Empty(t, s.Neighbors("ghost", ""))
}

func TestNeighborsFilteredByType(t *testing.T) {
	s := newTestStore()
	addEntity(t, s, "e1", "Alice", "Person")
	addEntity(t, s, "e2", "Acme", "Organization")
	addEntity(t, s, "e3", "Bob", "Person")
	addRelation(t, s, "r1", "works_for", "e1", "e2")
	addRelation(t, s, "r2", "friend_of", "e1", "e3")

	assert.Equal(t, []string{"e2"}, s.Neighbors("e1", "works_for"))
	assert.Equal(t, []string{"e2", "e3"}, s.Neighbors("e1", ""))
}

func TestNeighborsDeduplicated(t *testing.T) {
	s := newTestStore()
	addEntity(t, s, "e1", "Alice", "Person")
	addEntity(t, s, "e2", "Bob", "Person")
	addRelation(t, s, "r1", "friend_of", "e1", "e2")
	addRelation(t, s, "r2", "spouse_of", "e1", "e2")
	addRelation(t, s, "r3", "parent_of", "e2", "e1")

	assert.Equal(t, []string{"e2"}, s.Neighbors("e1", ""))
}

func TestFindPathsAllSimplePaths(t *testing.T) {
	s := diamondStore(t)

	paths := s.FindPaths("a", "d", 3)
	require.Len(t, paths, 2)
	assert.Contains(t, paths, []string{"a", "b", "d"})
	assert.Contains(t, paths, []string{"a", "c", "d"})
}

func TestFindPathsDepthBound(t *testing.T) {
	s := diamondStore(t)
	assert.Empty(t, s.FindPaths("a", "d", 1))
	assert.Len(t, s.FindPaths("a", "d", 2), 2)
}

func TestFindPathsUndirected(t *testing.T) {
	s := diamondStore(t)
	// d -> a only exists against edge direction
	paths := s.FindPaths("d", "a", 2)
	require.Len(t, paths, 2)
}

func TestFindPathsUnknownEndpoint(t *testing.T) {
	s := diamondStore(t)
	assert.Empty(t, s.FindPaths("a", "ghost", 3))
	assert.Empty(t, s.FindPaths("ghost", "d", 3))
}

func TestSubgraphDepthOne(t *testing.T) {
	s := diamondStore(t)
	addEntity(t, s, "e", "node e", "Concept")
	addRelation(t, s, "r5", "related_to", "d", "e")

	sub := s.Subgraph([]string{"a"}, 1)

	assert.Equal(t, 3, sub.EntityCount())
	_, hasD := sub.Entity("d")
	assert.False(t, hasD)
	// only a-b and a-c edges have both endpoints inside
	assert.Equal(t, 2, sub.RelationCount())
}

func TestSubgraphZeroDepthKeepsSeedsOnly(t *testing.T) {
	s := diamondStore(t)
	sub := s.Subgraph([]string{"a", "b"}, 0)

	assert.Equal(t, 2, sub.EntityCount())
	assert.Equal(t, 1, sub.RelationCount())
}

func TestSubgraphCarriesInteriorRelations(t *testing.T) {
	s := diamondStore(t)
	sub := s.Subgraph([]string{"a"}, 3)

	require.Equal(t, 4, sub.RelationCount())
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		_, ok := sub.Relation(id)
		assert.True(t, ok, "relation %s missing from subgraph", id)
	}
}

func TestSubgraphIsIndependent(t *testing.T) {
	s := diamondStore(t)
	sub := s.Subgraph([]string{"a"}, 3)
	require.Equal(t, 4, sub.EntityCount())

	s.RemoveEntity("d")
	assert.Equal(t, 4, sub.EntityCount())
}
