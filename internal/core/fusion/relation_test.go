package fusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphloom/loom/internal/core/model"
)

func TestAreDuplicatesExactMatch(t *testing.T) {
	engine := NewRelationEngine()
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	assert.True(t, engine.AreDuplicates(a, b))
}

func TestRelationSimilarity(t *testing.T) {
	engine := NewRelationEngine()
	a := model.NewRelation("r1", "works_for", "e1", "e2")

	same := model.NewRelation("r2", "works_for", "e1", "e2")
	assert.InDelta(t, 1.0, engine.Similarity(a, same), 1e-9)

	// swapped endpoints score 0.8 on the entity-pair term
	swapped := model.NewRelation("r3", "works_for", "e2", "e1")
	assert.InDelta(t, (0.6+0.8*0.8)/1.4, engine.Similarity(a, swapped), 1e-9)

	differentType := model.NewRelation("r4", "located_in", "e1", "e2")
	assert.InDelta(t, 0.8/1.4, engine.Similarity(a, differentType), 1e-9)
	assert.False(t, engine.AreDuplicates(a, differentType))
}

func TestRelationSimilarityWithContext(t *testing.T) {
	engine := NewRelationEngine()
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Properties["context"] = model.String("joined the company in 2015")
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Properties["context"] = model.String("joined the company in 2015")

	// identical context contributes its full weight
	assert.InDelta(t, (0.6+0.8+0.4)/1.8, engine.Similarity(a, b), 1e-9)

	// context weight only applies when both sides carry one
	c := model.NewRelation("r3", "works_for", "e1", "e2")
	assert.InDelta(t, 1.0, engine.Similarity(a, c), 1e-9)
}

func TestRelationClusterConfidence(t *testing.T) {
	engine := NewRelationEngine()
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Confidence = 0.9
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Confidence = 0.7

	got := engine.clusterConfidence([]model.Relation{a, b})
	// 0.6 * pairwise sim (1.0) + 0.4 * mean confidence (0.8)
	assert.InDelta(t, 0.6+0.4*0.8, got, 1e-9)
}

func TestSelectRepresentativeRelation(t *testing.T) {
	weak := model.NewRelation("r1", "works_for", "e1", "e2")
	weak.Confidence = 0.6
	strong := model.NewRelation("r2", "works_for", "e1", "e2")
	strong.Confidence = 0.9
	strong.Properties = model.Properties{
		"source_quality": model.Number(0.8),
		"timestamp":      model.String("2024-01-01"),
	}

	got := selectRepresentativeRelation([]model.Relation{weak, strong})
	assert.Equal(t, "r2", got.ID)
}

func TestFuseConfidenceStrategies(t *testing.T) {
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Confidence = 0.9
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Confidence = 0.95
	members := []model.Relation{a, b}

	engine := NewRelationEngine()

	engine.ConfidenceStrategy = ConfidenceMax
	assert.InDelta(t, 0.95, engine.fuseConfidence(members), 1e-9)

	engine.ConfidenceStrategy = ConfidenceAverage
	assert.InDelta(t, 0.925, engine.fuseConfidence(members), 1e-9)

	// avg 0.925 boosted by 1 + min(1, 2/5)*0.2 = 1.08
	engine.ConfidenceStrategy = ConfidenceWeightedAverage
	assert.InDelta(t, 0.925*1.08, engine.fuseConfidence(members), 1e-9)
}

func TestFuseConfidenceWeightedAverageCaps(t *testing.T) {
	var members []model.Relation
	for i := 0; i < 5; i++ {
		r := model.NewRelation("r", "works_for", "e1", "e2")
		r.Confidence = 0.99
		members = append(members, r)
	}
	engine := NewRelationEngine()
	assert.Equal(t, 1.0, engine.fuseConfidence(members))
}

func TestFusePropertiesUnion(t *testing.T) {
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Properties = model.Properties{"since": model.String("2015"), "tags": model.List("x")}
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Properties = model.Properties{"role": model.String("engineer"), "tags": model.List("y")}

	engine := NewRelationEngine()
	fused := engine.fuseProperties([]model.Relation{a, b})

	assert.Equal(t, "2015", fused["since"].Str)
	assert.Equal(t, "engineer", fused["role"].Str)
	assert.Equal(t, []string{"x", "y"}, fused["tags"].List)
}

func TestFusePropertiesIntersection(t *testing.T) {
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Properties = model.Properties{
		"since": model.String("2015"),
		"only":  model.String("a"),
		"tags":  model.List("x", "y"),
	}
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Properties = model.Properties{
		"since": model.String("2016"),
		"tags":  model.List("y", "z"),
	}

	engine := NewRelationEngine()
	engine.PropertyStrategy = PropertyIntersection
	fused := engine.fuseProperties([]model.Relation{a, b})

	// disagreeing non-list values are omitted; a key present on one
	// side only keeps its value
	_, hasSince := fused["since"]
	assert.False(t, hasSince)
	assert.Equal(t, "a", fused["only"].Str)
	assert.Equal(t, []string{"y"}, fused["tags"].List)
}

func TestFusePropertiesVote(t *testing.T) {
	members := make([]model.Relation, 3)
	for i, v := range []string{"2015", "2015", "2016"} {
		r := model.NewRelation("r", "works_for", "e1", "e2")
		r.Properties = model.Properties{"since": model.String(v)}
		members[i] = r
	}

	engine := NewRelationEngine()
	engine.PropertyStrategy = PropertyVote
	fused := engine.fuseProperties(members)
	assert.Equal(t, "2015", fused["since"].Str)
}

func TestRelationBatchFuse(t *testing.T) {
	engine := NewRelationEngine()
	a := model.NewRelation("r1", "works_for", "e1", "e2")
	a.Confidence = 0.9
	b := model.NewRelation("r2", "works_for", "e1", "e2")
	b.Confidence = 0.95
	c := model.NewRelation("r3", "located_in", "e2", "e3")

	results := engine.BatchFuse([]model.Relation{a, b, c})
	require.Len(t, results, 2)

	fused := results[0]
	assert.Equal(t, "works_for", fused.Fused.Type)
	assert.InDelta(t, 0.925*1.08, fused.Fused.Confidence, 1e-9)
	assert.ElementsMatch(t, []string{"r1", "r2"}, fused.Evidence["source_ids"])

	singleton := results[1]
	assert.Equal(t, "r3", singleton.Fused.ID)
	assert.Equal(t, 1.0, singleton.Confidence)
}

func TestRemoveRedundant(t *testing.T) {
	engine := NewRelationEngine()
	low := model.NewRelation("r1", "works_for", "e1", "e2")
	low.Confidence = 0.6
	high := model.NewRelation("r2", "works_for", "e1", "e2")
	high.Confidence = 0.9
	other := model.NewRelation("r3", "founder_of", "e1", "e2")

	kept := engine.RemoveRedundant([]model.Relation{low, other, high})
	require.Len(t, kept, 2)
	// survivor order follows first occurrence of each (head, tail, type)
	assert.Equal(t, "r2", kept[0].ID)
	assert.Equal(t, "r3", kept[1].ID)
}

func TestRemoveRedundantShortInput(t *testing.T) {
	engine := NewRelationEngine()
	assert.Nil(t, engine.RemoveRedundant(nil))
	one := []model.Relation{model.NewRelation("r1", "works_for", "e1", "e2")}
	assert.Equal(t, one, engine.RemoveRedundant(one))
}
