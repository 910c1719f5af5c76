// Package fusion deduplicates candidate entities and relations and merges
// each duplicate cluster into one canonical item with a fused confidence.
package fusion

import (
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/graphloom/loom/internal/core/model"
	"github.com/graphloom/loom/internal/core/similarity"
)

// Grouping selects how duplicate groups are formed from pairwise scores.
type Grouping string

const (
	// GroupingSeed compares candidates only against a group's first
	// (seed) member, in input order. Deterministic and order-dependent,
	// not transitive.
	GroupingSeed Grouping = "seed"
	// GroupingConnected forms transitive connected components over the
	// pairwise threshold graph.
	GroupingConnected Grouping = "connected"
)

// DefaultThreshold is the similarity score above which two candidates
// are treated as duplicates.
const DefaultThreshold = 0.8

// EntityEngine clusters candidate entities and merges each cluster into
// one canonical entity.
type EntityEngine struct {
	Threshold float64
	Grouping  Grouping
}

// NewEntityEngine returns an engine with the default threshold and
// seed-based grouping.
func NewEntityEngine() *EntityEngine {
	return &EntityEngine{Threshold: DefaultThreshold, Grouping: GroupingSeed}
}

func (e *EntityEngine) groups(n int, sim similarity.PairFunc) [][]int {
	if e.Grouping == GroupingConnected {
		return similarity.ConnectedGroups(n, e.Threshold, sim)
	}
	return similarity.SeedGroups(n, e.Threshold, sim)
}

// IdentifyDuplicates returns the index groups (size >= 2) of entities
// judged to be duplicates of one another.
func (e *EntityEngine) IdentifyDuplicates(entities []model.Entity) [][]int {
	if len(entities) <= 1 {
		return nil
	}
	return e.groups(len(entities), func(i, j int) float64 {
		return similarity.Entity(entities[i], entities[j])
	})
}

// Cluster partitions the input into clusters: one per duplicate group
// plus a singleton cluster for every unmatched entity, singletons in
// input order after the groups.
func (e *EntityEngine) Cluster(entities []model.Entity) []model.EntityCluster {
	groups := e.IdentifyDuplicates(entities)
	clusters := make([]model.EntityCluster, 0, len(entities))
	clustered := make(map[int]bool)

	for _, group := range groups {
		members := make([]model.Entity, 0, len(group))
		for _, idx := range group {
			members = append(members, entities[idx])
			clustered[idx] = true
		}
		clusters = append(clusters, model.EntityCluster{
			ClusterID:      uuid.New().String(),
			Entities:       members,
			Representative: selectRepresentative(members),
			Confidence:     e.clusterConfidence(members),
			Method:         model.MethodSimilarity,
		})
	}

	for i, entity := range entities {
		if clustered[i] {
			continue
		}
		clusters = append(clusters, model.EntityCluster{
			ClusterID:      uuid.New().String(),
			Entities:       []model.Entity{entity},
			Representative: entity,
			Confidence:     1.0,
			Method:         model.MethodSingleton,
		})
	}

	return clusters
}

// clusterConfidence is the mean pairwise similarity of cluster members.
func (e *EntityEngine) clusterConfidence(members []model.Entity) float64 {
	if len(members) <= 1 {
		return 1.0
	}
	var total float64
	comparisons := 0
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			total += similarity.Entity(members[i], members[j])
			comparisons++
		}
	}
	return total / float64(comparisons)
}

// selectRepresentative scores each member on name length, property count,
// alias count and any declared confidence property, highest score wins
// with ties broken by input order.
func selectRepresentative(members []model.Entity) model.Entity {
	best := members[0]
	bestScore := representativeScore(members[0])
	for _, m := range members[1:] {
		if s := representativeScore(m); s > bestScore {
			best = m
			bestScore = s
		}
	}
	return best
}

func representativeScore(e model.Entity) float64 {
	score := 0.1 * float64(utf8.RuneCountInString(e.Name))
	score += 0.2 * float64(len(e.Properties))
	score += 0.1 * float64(len(e.Aliases))
	if v, ok := e.Properties["confidence"]; ok && v.Kind == model.KindNumber {
		score += 0.5 * v.Num
	}
	return score
}

// FuseCluster merges a cluster into one entity. A singleton cluster is
// returned unchanged with confidence 1.0.
func (e *EntityEngine) FuseCluster(cluster model.EntityCluster) model.EntityFusionResult {
	if len(cluster.Entities) == 1 {
		return model.EntityFusionResult{
			Fused:      cluster.Entities[0],
			Sources:    cluster.Entities,
			Confidence: 1.0,
			Evidence:   map[string]any{"method": model.MethodSingleton},
		}
	}

	fused := fuseEntities(cluster.Entities)
	confidence := fusionConfidence(cluster.Entities, fused)

	return model.EntityFusionResult{
		Fused:      fused,
		Sources:    cluster.Entities,
		Confidence: confidence,
		Evidence: map[string]any{
			"method":             model.MethodSimilarity,
			"source_count":       len(cluster.Entities),
			"cluster_confidence": cluster.Confidence,
		},
	}
}

// BatchFuse clusters the input and fuses every cluster; exactly one
// result per cluster.
func (e *EntityEngine) BatchFuse(entities []model.Entity) []model.EntityFusionResult {
	clusters := e.Cluster(entities)
	results := make([]model.EntityFusionResult, 0, len(clusters))
	for _, cluster := range clusters {
		results = append(results, e.FuseCluster(cluster))
	}
	return results
}

func fuseEntities(members []model.Entity) model.Entity {
	names := make([]string, 0, len(members))
	types := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
		types = append(types, m.Type)
	}

	props := make([]model.Properties, 0, len(members))
	for _, m := range members {
		props = append(props, m.Properties)
	}

	fused := model.NewEntity(uuid.New().String(), fuseNames(names), fuseTypes(types))
	fused.Properties = fuseProperties(props)

	// Aliases: every member alias plus every losing member name, in
	// first-occurrence order.
	seen := map[string]struct{}{fused.Name: {}}
	for _, m := range members {
		for _, alias := range m.Aliases {
			if _, ok := seen[alias]; !ok {
				seen[alias] = struct{}{}
				fused.Aliases = append(fused.Aliases, alias)
			}
		}
		if _, ok := seen[m.Name]; !ok {
			seen[m.Name] = struct{}{}
			fused.Aliases = append(fused.Aliases, m.Name)
		}
	}

	return fused
}

// fuseNames prefers the longest name that does not look like an
// abbreviation (all-caps, five runes or fewer); if every candidate looks
// abbreviated, the most frequent name wins.
func fuseNames(names []string) string {
	unique := dedupe(names)
	if len(unique) == 1 {
		return unique[0]
	}

	var longest string
	for _, name := range unique {
		if isAbbreviation(name) {
			continue
		}
		if utf8.RuneCountInString(name) > utf8.RuneCountInString(longest) {
			longest = name
		}
	}
	if longest != "" {
		return longest
	}

	return mostFrequent(names)
}

func isAbbreviation(name string) bool {
	if utf8.RuneCountInString(name) > 5 {
		return false
	}
	hasLetter := false
	for _, r := range name {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// fuseTypes takes the majority type; ties break to the longest type
// string, then to first occurrence.
func fuseTypes(types []string) string {
	if len(types) == 0 {
		return "Unknown"
	}
	counts := make(map[string]int)
	order := dedupe(types)
	for _, t := range types {
		counts[t]++
	}
	best := order[0]
	for _, t := range order[1:] {
		switch {
		case counts[t] > counts[best]:
			best = t
		case counts[t] == counts[best] && len(t) > len(best):
			best = t
		}
	}
	return best
}

// fuseProperties merges member properties key by key using the per-kind
// merge rules. Keys are processed in sorted order so the result is
// stable.
func fuseProperties(members []model.Properties) model.Properties {
	keys := make(map[string]struct{})
	for _, props := range members {
		for k := range props {
			keys[k] = struct{}{}
		}
	}
	sorted := make([]string, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	fused := model.Properties{}
	for _, k := range sorted {
		var values []model.Value
		for _, props := range members {
			if v, ok := props[k]; ok {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			fused[k] = mergeValues(values)
		}
	}
	return fused
}

// mergeValues applies the per-kind rule: strings keep the longest value,
// numbers average, lists union with first-occurrence order, and mixed
// kinds fall back to the most frequent textual rendering mapped back to
// its original typed value.
func mergeValues(values []model.Value) model.Value {
	if len(values) == 1 {
		return values[0]
	}

	switch {
	case allKind(values, model.KindString):
		longest := values[0]
		for _, v := range values[1:] {
			if utf8.RuneCountInString(v.Str) > utf8.RuneCountInString(longest.Str) {
				longest = v
			}
		}
		return longest

	case allKind(values, model.KindNumber):
		var sum float64
		for _, v := range values {
			sum += v.Num
		}
		return model.Number(sum / float64(len(values)))

	case allKind(values, model.KindList):
		var merged []string
		for _, v := range values {
			merged = append(merged, v.List...)
		}
		return model.List(dedupe(merged)...)
	}

	return voteValue(values)
}

// voteValue picks the most frequent value by textual form, ties broken by
// first occurrence, and returns the original typed value.
func voteValue(values []model.Value) model.Value {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v.Text()]++
	}
	best := values[0]
	bestCount := counts[best.Text()]
	seen := map[string]struct{}{best.Text(): {}}
	for _, v := range values[1:] {
		t := v.Text()
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if counts[t] > bestCount {
			best = v
			bestCount = counts[t]
		}
	}
	return best
}

func allKind(values []model.Value, kind model.ValueKind) bool {
	for _, v := range values {
		if v.Kind != kind {
			return false
		}
	}
	return true
}

// fusionConfidence blends a source-count factor (0.3), a
// property-completeness factor (0.4) and a name/type consistency factor
// (0.3), clamped to [0,1].
func fusionConfidence(sources []model.Entity, fused model.Entity) float64 {
	if len(sources) == 1 {
		return 1.0
	}

	sourceFactor := float64(len(sources)) / 5.0
	if sourceFactor > 1.0 {
		sourceFactor = 1.0
	}

	totalProps := 0
	for _, s := range sources {
		totalProps += len(s.Properties)
	}
	completeness := 0.5
	if totalProps > 0 {
		completeness = float64(len(fused.Properties)) / float64(totalProps)
	}

	nameConsistent := len(dedupe(collect(sources, func(e model.Entity) string { return e.Name }))) == 1
	typeConsistent := len(dedupe(collect(sources, func(e model.Entity) string { return e.Type }))) == 1
	consistency := (boolToFloat(nameConsistent) + boolToFloat(typeConsistent)) / 2.0

	score := 0.3*sourceFactor + 0.4*completeness + 0.3*consistency
	return clamp01(score)
}

func collect(entities []model.Entity, f func(model.Entity) string) []string {
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		out = append(out, f(e))
	}
	return out
}

func boolToFloat(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func mostFrequent(items []string) string {
	counts := make(map[string]int)
	for _, s := range items {
		counts[s]++
	}
	best := items[0]
	for _, s := range dedupe(items)[1:] {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}
