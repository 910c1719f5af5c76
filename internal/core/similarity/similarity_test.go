package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphloom/loom/internal/core/model"
)

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 1.0, Levenshtein("apple", "apple"))
	assert.Equal(t, 1.0, Levenshtein("", ""))
	assert.Equal(t, 0.0, Levenshtein("", "abc"))
	assert.InDelta(t, 1.0-3.0/7.0, Levenshtein("kitten", "sitting"), 1e-9)
}

func TestLevenshteinCountsRunes(t *testing.T) {
	// two runes of four differ
	assert.InDelta(t, 0.5, Levenshtein("腾讯公司", "腾讯集团"), 1e-9)
}

func TestNGramJaccard(t *testing.T) {
	assert.Equal(t, 1.0, NGramJaccard("apple", "apple"))
	assert.Equal(t, 1.0, NGramJaccard("Apple", "apple"))
	assert.InDelta(t, 1.0/7.0, NGramJaccard("night", "nacht"), 1e-9)
}

func TestCharCosine(t *testing.T) {
	assert.InDelta(t, 1.0, CharCosine("abc", "cba"), 1e-9)
	assert.Equal(t, 0.0, CharCosine("abc", "xyz"))
	assert.Equal(t, 0.0, CharCosine("", "abc"))
}

func TestLCS(t *testing.T) {
	assert.InDelta(t, 8.0/13.0, LCS("ABCBDAB", "BDCABA"), 1e-9)
	assert.Equal(t, 1.0, LCS("same", "same"))
	assert.Equal(t, 0.0, LCS("", ""))
}

func TestStringCombined(t *testing.T) {
	assert.Equal(t, 1.0, String("Apple Inc", "Apple Inc"))
	assert.Equal(t, 0.0, String("", "Apple Inc"))
	assert.Equal(t, 0.0, String("Apple Inc", ""))

	score := String("Apple Inc", "Apple Incorporated")
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 1.0)
}

func TestStringSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Apple", "Aple"},
		{"Microsoft", "Microsft Corp"},
		{"腾讯", "腾讯公司"},
	}
	for _, p := range pairs {
		assert.InDelta(t, String(p[0], p[1]), String(p[1], p[0]), 1e-9)
	}
}

func TestListJaccard(t *testing.T) {
	assert.Equal(t, 1.0, ListJaccard(nil, nil))
	assert.Equal(t, 0.0, ListJaccard([]string{"a"}, nil))
	assert.InDelta(t, 1.0/3.0, ListJaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
}

func TestStructural(t *testing.T) {
	assert.Equal(t, 1.0, Structural(nil, nil))
	assert.Equal(t, 0.0, Structural(model.Properties{"x": model.Number(1)}, nil))

	a := model.Properties{"founded": model.String("1998"), "employees": model.Number(100000)}
	b := model.Properties{"founded": model.String("1998"), "employees": model.Number(100000)}
	assert.InDelta(t, 1.0, Structural(a, b), 1e-9)

	// half the keys shared, shared values identical
	c := model.Properties{"founded": model.String("1998"), "ceo": model.String("Pony Ma")}
	got := Structural(a, c)
	assert.InDelta(t, 0.5*(1.0/3.0)+0.5*1.0, got, 1e-9)
}

func TestContext(t *testing.T) {
	assert.Equal(t, 1.0, Context("", ""))
	assert.Equal(t, 0.0, Context("apple founded", ""))
	got := Context("Apple was founded in California", "Apple founded by Jobs")
	assert.InDelta(t, 2.0/7.0, got, 1e-9)
}

func TestEntitySimilarity(t *testing.T) {
	a := model.NewEntity("e1", "Apple Inc", "Organization")
	b := model.NewEntity("e2", "Apple Inc", "Organization")

	// identical name, type and (empty) properties; no alias evidence
	assert.InDelta(t, 0.9, Entity(a, b), 1e-9)

	b.Type = "Company"
	assert.InDelta(t, 0.6, Entity(a, b), 1e-9)
}

func TestEntitySimilarityAliases(t *testing.T) {
	a := model.NewEntity("e1", "Apple Inc", "Organization")
	a.Aliases = []string{"Apple"}
	b := model.NewEntity("e2", "Apple Inc", "Organization")
	b.Aliases = []string{"Apple"}

	assert.InDelta(t, 1.0, Entity(a, b), 1e-9)
}

func TestRelationSimilarity(t *testing.T) {
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	assert.InDelta(t, 1.0, Relation(a, b), 1e-9)

	b.Type = "employed_by"
	assert.Less(t, Relation(a, b), 1.0)
}

func TestMatrix(t *testing.T) {
	m := Matrix([]string{"apple", "aple", "orange"})
	require.Len(t, m, 3)
	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, m[0][1], m[1][0])
	assert.Greater(t, m[0][1], m[0][2])
}

func TestFuzzyMatch(t *testing.T) {
	matches := FuzzyMatch("Aple", []string{"Orange", "Apple", "Application"}, 2)
	require.Len(t, matches, 2)
	assert.Equal(t, "Apple", matches[0].Candidate)
	assert.GreaterOrEqual(t, matches[0].Score, matches[1].Score)
}

// chain where a~b and b~c but not a~c
func chainSim(i, j int) float64 {
	if (i == 0 && j == 1) || (i == 1 && j == 2) {
		return 0.9
	}
	return 0.1
}

func TestSeedGroupsNotTransitive(t *testing.T) {
	groups := SeedGroups(3, 0.8, chainSim)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1}, groups[0])
}

func TestConnectedGroupsTransitive(t *testing.T) {
	groups := ConnectedGroups(3, 0.8, chainSim)
	require.Len(t, groups, 1)
	assert.ElementsMatch(t, []int{0, 1, 2}, groups[0])
}

func TestGroupingNoDuplicatesAcrossGroups(t *testing.T) {
	sim := func(i, j int) float64 {
		if j == i+1 && i%2 == 0 {
			return 1.0
		}
		return 0.0
	}
	for _, groups := range [][][]int{SeedGroups(6, 0.8, sim), ConnectedGroups(6, 0.8, sim)} {
		seen := map[int]struct{}{}
		for _, g := range groups {
			for _, idx := range g {
				_, dup := seen[idx]
				assert.False(t, dup)
				seen[idx] = struct{}{}
			}
		}
	}
}
