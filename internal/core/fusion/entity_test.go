package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphloom/loom/internal/core/model"
)

func TestIdentifyDuplicates(t *testing.T) {
	engine := NewEntityEngine()
	entities := []model.Entity{
		model.NewEntity("e1", "Apple Inc", "Organization"),
		model.NewEntity("e2", "Apple Inc", "Organization"),
		model.NewEntity("e3", "Google", "Organization"),
	}

	groups := engine.IdentifyDuplicates(entities)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1}, groups[0])
}

func TestIdentifyDuplicatesEmpty(t *testing.T) {
	engine := NewEntityEngine()
	assert.Nil(t, engine.IdentifyDuplicates(nil))
	assert.Nil(t, engine.IdentifyDuplicates([]model.Entity{model.NewEntity("e1", "Solo", "Person")}))
}

func TestClusterGroupsThenSingletons(t *testing.T) {
	engine := NewEntityEngine()
	entities := []model.Entity{
		model.NewEntity("e1", "Apple Inc", "Organization"),
		model.NewEntity("e2", "Tim Cook", "Person"),
		model.NewEntity("e3", "Apple Inc", "Organization"),
	}

	clusters := engine.Cluster(entities)
	require.Len(t, clusters, 2)
	assert.Equal(t, model.MethodSimilarity, clusters[0].Method)
	assert.Len(t, clusters[0].Entities, 2)
	assert.Equal(t, model.MethodSingleton, clusters[1].Method)
	assert.Equal(t, "e2", clusters[1].Entities[0].ID)
	assert.Equal(t, 1.0, clusters[1].Confidence)
}

func TestSelectRepresentativePrefersRicherEntity(t *testing.T) {
	poor := model.NewEntity("e1", "Apple", "Organization")
	rich := model.NewEntity("e2", "Apple Inc", "Organization")
	rich.Properties = model.Properties{
		"founded":    model.String("1976"),
		"confidence": model.Number(0.9),
	}
	rich.Aliases = []string{"Apple"}

	got := selectRepresentative([]model.Entity{poor, rich})
	assert.Equal(t, "e2", got.ID)
}

func TestFuseNames(t *testing.T) {
	assert.Equal(t, "International Business Machines",
		fuseNames([]string{"IBM", "International Business Machines"}))
	assert.Equal(t, "Apple Inc", fuseNames([]string{"Apple Inc", "Apple Inc"}))
	// every candidate is an abbreviation, most frequent wins
	assert.Equal(t, "NASA", fuseNames([]string{"NASA", "ESA", "NASA"}))
}

func TestIsAbbreviation(t *testing.T) {
	assert.True(t, isAbbreviation("IBM"))
	assert.True(t, isAbbreviation("NASA"))
	assert.False(t, isAbbreviation("Apple"))
	assert.False(t, isAbbreviation("LONGNAME"))
	assert.False(t, isAbbreviation("123"))
}

func TestFuseTypes(t *testing.T) {
	assert.Equal(t, "Organization", fuseTypes([]string{"Organization", "Company", "Organization"}))
	// tie breaks to the longest type string
	assert.Equal(t, "Organization", fuseTypes([]string{"Company", "Organization"}))
	assert.Equal(t, "Unknown", fuseTypes(nil))
}

func TestMergeValues(t *testing.T) {
	longest := mergeValues([]model.Value{model.String("CA"), model.String("California")})
	assert.Equal(t, "California", longest.Str)

	mean := mergeValues([]model.Value{model.Number(10), model.Number(20), model.Number(30)})
	assert.InDelta(t, 20.0, mean.Num, 1e-9)

	union := mergeValues([]model.Value{model.List("a", "b"), model.List("b", "c")})
	assert.Equal(t, []string{"a", "b", "c"}, union.List)

	// mixed kinds vote by textual form
	mixed := mergeValues([]model.Value{model.String("42"), model.Number(42), model.Number(42)})
	assert.Equal(t, model.KindString, mixed.Kind)
	assert.Equal(t, "42", mixed.Str)
}

func TestFuseClusterMultiMember(t *testing.T) {
	engine := NewEntityEngine()
	a := model.NewEntity("e1", "Tencent", "Organization")
	a.Properties = model.Properties{"founded": model.String("1998")}
	b := model.NewEntity("e2", "Tencent", "Organization")
	b.Properties = model.Properties{"founded": model.String("1998")}

	cluster := model.EntityCluster{
		ClusterID: "c1",
		Entities:  []model.Entity{a, b},
		Method:    model.MethodSimilarity,
	}
	result := engine.FuseCluster(cluster)

	assert.Equal(t, "Tencent", result.Fused.Name)
	assert.NotEqual(t, "e1", result.Fused.ID)
	assert.Equal(t, "1998", result.Fused.Properties["founded"].Str)
	// 0.3*min(1,2/5) + 0.4*(1 fused key / 2 source keys) + 0.3*1
	assert.InDelta(t, 0.62, result.Confidence, 1e-9)
	assert.Equal(t, model.MethodSimilarity, result.Evidence["method"])
}

func TestFuseClusterSingleton(t *testing.T) {
	engine := NewEntityEngine()
	e := model.NewEntity("e1", "Solo", "Person")
	result := engine.FuseCluster(model.EntityCluster{Entities: []model.Entity{e}})

	assert.Equal(t, "e1", result.Fused.ID)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, model.MethodSingleton, result.Evidence["method"])
}

func TestFuseClusterCollectsLosingNamesAsAliases(t *testing.T) {
	engine := NewEntityEngine()
	a := model.NewEntity("e1", "Apple Inc", "Organization")
	a.Aliases = []string{"AAPL"}
	b := model.NewEntity("e2", "Apple", "Organization")

	result := engine.FuseCluster(model.EntityCluster{Entities: []model.Entity{a, b}})

	assert.Equal(t, "Apple Inc", result.Fused.Name)
	assert.ElementsMatch(t, []string{"AAPL", "Apple"}, result.Fused.Aliases)
}

func TestBatchFuseOneResultPerCluster(t *testing.T) {
	engine := NewEntityEngine()
	entities := []model.Entity{
		model.NewEntity("e1", "Apple Inc", "Organization"),
		model.NewEntity("e2", "Apple Inc", "Organization"),
		model.NewEntity("e3", "Steve Jobs", "Person"),
	}

	results := engine.BatchFuse(entities)
	require.Len(t, results, 2)
	assert.Len(t, results[0].Sources, 2)
	assert.Len(t, results[1].Sources, 1)
}

func TestConnectedGroupingMergesChains(t *testing.T) {
	// names form a similarity chain where the ends score below the
	// threshold against each other
	a := model.NewEntity("e1", "Johnson & Johnson Consumer", "Organization")
	b := model.NewEntity("e2", "Johnson & Johnson", "Organization")
	c := model.NewEntity("e3", "Johnson", "Organization")

	seed := &EntityEngine{Threshold: 0.8, Grouping: GroupingSeed}
	connected := &EntityEngine{Threshold: 0.8, Grouping: GroupingConnected}

	seedGroups := seed.IdentifyDuplicates([]model.Entity{a, b, c})
	connectedGroups := connected.IdentifyDuplicates([]model.Entity{a, b, c})

	var seedTotal, connectedTotal int
	for _, g := range seedGroups {
		seedTotal += len(g)
	}
	for _, g := range connectedGroups {
		connectedTotal += len(g)
	}
	assert.GreaterOrEqual(t, connectedTotal, seedTotal)
}

func TestEntityStatistics(t *testing.T) {
	engine := NewEntityEngine()
	entities := []model.Entity{
		model.NewEntity("e1", "Apple Inc", "Organization"),
		model.NewEntity("e2", "Apple Inc", "Organization"),
		model.NewEntity("e3", "Steve Jobs", "Person"),
	}
	results := engine.BatchFuse(entities)
	stats := engine.Statistics(results)

	assert.Equal(t, 2, stats.TotalFusions)
	assert.Equal(t, 1, stats.SingletonCount)
	assert.Equal(t, 1, stats.MultiSourceCount)
	assert.Equal(t, 1, stats.SourceDistribution[2])
}
