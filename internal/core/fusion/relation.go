package fusion

import (
	"github.com/google/uuid"

	"github.com/graphloom/loom/internal/core/model"
	"github.com/graphloom/loom/internal/core/similarity"
)

// ConfidenceStrategy selects how member confidences fuse.
type ConfidenceStrategy string

const (
	ConfidenceMax             ConfidenceStrategy = "max"
	ConfidenceAverage         ConfidenceStrategy = "average"
	ConfidenceWeightedAverage ConfidenceStrategy = "weighted_average"
)

// PropertyStrategy selects how member properties fuse.
type PropertyStrategy string

const (
	PropertyUnion        PropertyStrategy = "union"
	PropertyIntersection PropertyStrategy = "intersection"
	PropertyVote         PropertyStrategy = "vote"
)

// Duplicate-test weights. The context weight only applies when both
// relations carry a context property; the score is normalized by the
// weights actually applied.
const (
	relTypeWeight    = 0.6
	relEntityWeight  = 0.8
	relContextWeight = 0.4
)

// RelationEngine clusters candidate relations keyed by (type, head,
// tail) with reverse-direction tolerance and merges each cluster.
type RelationEngine struct {
	Threshold          float64
	Grouping           Grouping
	ConfidenceStrategy ConfidenceStrategy
	PropertyStrategy   PropertyStrategy
}

// NewRelationEngine returns an engine with the default threshold,
// seed-based grouping, weighted-average confidence fusion and union
// property fusion.
func NewRelationEngine() *RelationEngine {
	return &RelationEngine{
		Threshold:          DefaultThreshold,
		Grouping:           GroupingSeed,
		ConfidenceStrategy: ConfidenceWeightedAverage,
		PropertyStrategy:   PropertyUnion,
	}
}

// AreDuplicates reports whether two relations describe the same edge:
// an exact (type, head, tail) match, or a weighted similarity at or
// above the threshold.
func (e *RelationEngine) AreDuplicates(a, b model.Relation) bool {
	if a.Type == b.Type && a.HeadEntityID == b.HeadEntityID && a.TailEntityID == b.TailEntityID {
		return true
	}
	return e.Similarity(a, b) >= e.Threshold
}

// Similarity computes the duplicate-test score: type equality (0.6),
// entity-pair match with swapped-direction tolerance (0.8), and context
// similarity when both sides carry one (0.4), normalized by the applied
// weight.
func (e *RelationEngine) Similarity(a, b model.Relation) float64 {
	typeSim := 0.0
	if a.Type == b.Type {
		typeSim = 1.0
	}

	entitySim := 0.0
	switch {
	case a.HeadEntityID == b.HeadEntityID && a.TailEntityID == b.TailEntityID:
		entitySim = 1.0
	case a.HeadEntityID == b.TailEntityID && a.TailEntityID == b.HeadEntityID:
		// Direction errors from extraction are common enough to tolerate.
		entitySim = 0.8
	}

	weightedSum := typeSim*relTypeWeight + entitySim*relEntityWeight
	totalWeight := relTypeWeight + relEntityWeight

	ctxA, okA := a.Properties["context"]
	ctxB, okB := b.Properties["context"]
	if okA && okB && ctxA.Kind == model.KindString && ctxB.Kind == model.KindString {
		weightedSum += similarity.Context(ctxA.Str, ctxB.Str) * relContextWeight
		totalWeight += relContextWeight
	}

	return weightedSum / totalWeight
}

func (e *RelationEngine) groups(n int, sim similarity.PairFunc) [][]int {
	if e.Grouping == GroupingConnected {
		return similarity.ConnectedGroups(n, e.Threshold, sim)
	}
	return similarity.SeedGroups(n, e.Threshold, sim)
}

// IdentifyDuplicates returns the index groups (size >= 2) of relations
// judged duplicates. Exact (type, head, tail) matches score 1.0 so they
// always group.
func (e *RelationEngine) IdentifyDuplicates(relations []model.Relation) [][]int {
	if len(relations) <= 1 {
		return nil
	}
	return e.groups(len(relations), func(i, j int) float64 {
		if relations[i].Type == relations[j].Type &&
			relations[i].HeadEntityID == relations[j].HeadEntityID &&
			relations[i].TailEntityID == relations[j].TailEntityID {
			return 1.0
		}
		return e.Similarity(relations[i], relations[j])
	})
}

// Cluster partitions the input into duplicate clusters plus singleton
// clusters for unmatched relations.
func (e *RelationEngine) Cluster(relations []model.Relation) []model.RelationCluster {
	groups := e.IdentifyDuplicates(relations)
	clusters := make([]model.RelationCluster, 0, len(relations))
	clustered := make(map[int]bool)

	for _, group := range groups {
		members := make([]model.Relation, 0, len(group))
		for _, idx := range group {
			members = append(members, relations[idx])
			clustered[idx] = true
		}
		clusters = append(clusters, model.RelationCluster{
			ClusterID:      uuid.New().String(),
			Relations:      members,
			Representative: selectRepresentativeRelation(members),
			Confidence:     e.clusterConfidence(members),
			Method:         model.MethodSimilarity,
		})
	}

	for i, relation := range relations {
		if clustered[i] {
			continue
		}
		clusters = append(clusters, model.RelationCluster{
			ClusterID:      uuid.New().String(),
			Relations:      []model.Relation{relation},
			Representative: relation,
			Confidence:     1.0,
			Method:         model.MethodSingleton,
		})
	}

	return clusters
}

// clusterConfidence blends mean pairwise similarity (0.6) with mean
// member confidence (0.4).
func (e *RelationEngine) clusterConfidence(members []model.Relation) float64 {
	if len(members) <= 1 {
		return 1.0
	}

	var simTotal float64
	comparisons := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			simTotal += e.Similarity(members[i], members[j])
			comparisons++
		}
	}
	avgSim := simTotal / float64(comparisons)

	var confTotal float64
	for _, m := range members {
		confTotal += m.Confidence
	}
	avgConf := confTotal / float64(len(members))

	return avgSim*0.6 + avgConf*0.4
}

// selectRepresentativeRelation scores members on confidence (0.5),
// property count (0.1 each), a source_quality property (0.3) and the
// presence of a timestamp (0.1); highest wins, ties break to input
// order.
func selectRepresentativeRelation(members []model.Relation) model.Relation {
	best := members[0]
	bestScore := representativeRelationScore(members[0])
	for _, m := range members[1:] {
		if s := representativeRelationScore(m); s > bestScore {
			best = m
			bestScore = s
		}
	}
	return best
}

func representativeRelationScore(r model.Relation) float64 {
	score := r.Confidence * 0.5
	score += float64(len(r.Properties)) * 0.1
	if v, ok := r.Properties["source_quality"]; ok && v.Kind == model.KindNumber {
		score += v.Num * 0.3
	}
	if _, ok := r.Properties["timestamp"]; ok {
		score += 0.1
	}
	return score
}

// FuseCluster merges a cluster into one relation. A singleton cluster is
// returned unchanged with confidence 1.0.
func (e *RelationEngine) FuseCluster(cluster model.RelationCluster) model.RelationFusionResult {
	if len(cluster.Relations) == 1 {
		return model.RelationFusionResult{
			Fused:      cluster.Relations[0],
			Sources:    cluster.Relations,
			Confidence: 1.0,
			Evidence:   map[string]any{"method": model.MethodSingleton},
		}
	}

	representative := selectRepresentativeRelation(cluster.Relations)
	confidence := e.fuseConfidence(cluster.Relations)

	fused := model.NewRelation(uuid.New().String(), representative.Type,
		representative.HeadEntityID, representative.TailEntityID)
	fused.Confidence = confidence
	fused.Properties = e.fuseProperties(cluster.Relations)

	sourceIDs := make([]string, 0, len(cluster.Relations))
	for _, r := range cluster.Relations {
		sourceIDs = append(sourceIDs, r.ID)
	}

	return model.RelationFusionResult{
		Fused:      fused,
		Sources:    cluster.Relations,
		Confidence: confidence,
		Evidence: map[string]any{
			"method":             model.MethodSimilarity,
			"source_count":       len(cluster.Relations),
			"cluster_confidence": cluster.Confidence,
			"source_ids":         sourceIDs,
		},
	}
}

// BatchFuse clusters the input and fuses every cluster.
func (e *RelationEngine) BatchFuse(relations []model.Relation) []model.RelationFusionResult {
	clusters := e.Cluster(relations)
	results := make([]model.RelationFusionResult, 0, len(clusters))
	for _, cluster := range clusters {
		results = append(results, e.FuseCluster(cluster))
	}
	return results
}

// fuseConfidence applies the configured strategy. weighted_average
// boosts the mean by up to 20% scaled by min(1, n/5), capped at 1.0.
func (e *RelationEngine) fuseConfidence(members []model.Relation) float64 {
	confidences := make([]float64, 0, len(members))
	var sum float64
	maxConf := 0.0
	for _, m := range members {
		confidences = append(confidences, m.Confidence)
		sum += m.Confidence
		if m.Confidence > maxConf {
			maxConf = m.Confidence
		}
	}
	avg := sum / float64(len(confidences))

	switch e.ConfidenceStrategy {
	case ConfidenceMax:
		return maxConf
	case ConfidenceAverage:
		return avg
	case ConfidenceWeightedAverage:
		sourceWeight := float64(len(members)) / 5.0
		if sourceWeight > 1.0 {
			sourceWeight = 1.0
		}
		boosted := avg * (1.0 + sourceWeight*0.2)
		if boosted > 1.0 {
			return 1.0
		}
		return boosted
	}
	return avg
}

// fuseProperties merges member properties per key with the configured
// strategy. Under intersection, keys whose non-list values disagree are
// omitted from the result.
func (e *RelationEngine) fuseProperties(members []model.Relation) model.Properties {
	switch e.PropertyStrategy {
	case PropertyIntersection:
		return intersectProperties(members)
	case PropertyVote:
		return voteProperties(members)
	}

	// union shares the entity per-kind rules: lists concatenate and
	// dedupe, strings keep the longest, the rest vote.
	props := make([]model.Properties, 0, len(members))
	for _, m := range members {
		props = append(props, m.Properties)
	}
	return fuseProperties(props)
}

func intersectProperties(members []model.Relation) model.Properties {
	fused := model.Properties{}
	for _, k := range propertyKeys(members) {
		values := propertyValues(members, k)
		if len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			fused[k] = values[0]
			continue
		}
		if allKind(values, model.KindList) {
			inter := values[0].List
			for _, v := range values[1:] {
				inter = intersectLists(inter, v.List)
			}
			fused[k] = model.List(inter...)
			continue
		}
		agreed := true
		for _, v := range values[1:] {
			if v.Text() != values[0].Text() {
				agreed = false
				break
			}
		}
		if agreed {
			fused[k] = values[0]
		}
	}
	return fused
}

func voteProperties(members []model.Relation) model.Properties {
	fused := model.Properties{}
	for _, k := range propertyKeys(members) {
		if values := propertyValues(members, k); len(values) > 0 {
			fused[k] = voteValue(values)
		}
	}
	return fused
}

func propertyKeys(members []model.Relation) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, m := range members {
		for k := range m.Properties {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				order = append(order, k)
			}
		}
	}
	return order
}

func propertyValues(members []model.Relation, key string) []model.Value {
	var values []model.Value
	for _, m := range members {
		if v, ok := m.Properties[key]; ok {
			values = append(values, v)
		}
	}
	return values
}

func intersectLists(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, s := range b {
		inB[s] = struct{}{}
	}
	var out []string
	for _, s := range a {
		if _, ok := inB[s]; ok {
			out = append(out, s)
		}
	}
	return out
}

// RemoveRedundant groups relations by (head, tail) and keeps at most one
// relation per distinct type, choosing the highest-confidence instance.
// A separate pass from clustering, for callers that want best-per-type
// without full fusion semantics. Output preserves input order of the
// surviving relations.
func (e *RelationEngine) RemoveRedundant(relations []model.Relation) []model.Relation {
	if len(relations) <= 1 {
		return relations
	}

	type key struct{ head, tail, relType string }
	best := make(map[key]model.Relation)
	for _, r := range relations {
		k := key{r.HeadEntityID, r.TailEntityID, r.Type}
		if prev, ok := best[k]; !ok || r.Confidence > prev.Confidence {
			best[k] = r
		}
	}

	kept := make([]model.Relation, 0, len(best))
	emitted := make(map[key]bool)
	for _, r := range relations {
		k := key{r.HeadEntityID, r.TailEntityID, r.Type}
		if emitted[k] {
			continue
		}
		emitted[k] = true
		kept = append(kept, best[k])
	}
	return kept
}
