package conflict

import (
	"fmt"

	"github.com/graphloom/loom/internal/core/model"
)

// DetectEntityConflicts groups entities by id and emits one conflict per
// differing dimension: name, type, and one per property key with
// divergent values. Groups of one entity cannot conflict.
func (r *Resolver) DetectEntityConflicts(entities []model.Entity) []Conflict {
	var conflicts []Conflict

	groups, order := groupEntitiesByID(entities)
	for _, id := range order {
		group := groups[id]
		if len(group) <= 1 {
			continue
		}

		names := make([]string, 0, len(group))
		types := make([]string, 0, len(group))
		for _, e := range group {
			names = append(names, e.Name)
			types = append(types, e.Type)
		}

		if distinct(names) > 1 {
			conflicts = append(conflicts, Conflict{
				ID:               fmt.Sprintf("name_conflict_%s", id),
				Kind:             EntityNameConflict,
				Description:      fmt.Sprintf("entity %s has conflicting names", id),
				ConflictingItems: toAny(names),
				ConfidenceScores: ones(len(names)),
			})
		}

		if distinct(types) > 1 {
			conflicts = append(conflicts, Conflict{
				ID:               fmt.Sprintf("type_conflict_%s", id),
				Kind:             EntityTypeConflict,
				Description:      fmt.Sprintf("entity %s has conflicting types", id),
				ConflictingItems: toAny(types),
				ConfidenceScores: ones(len(types)),
			})
		}

		conflicts = append(conflicts, propertyConflicts(id, group)...)
	}

	return conflicts
}

// propertyConflicts emits one PROPERTY_VALUE_CONFLICT per key whose
// values diverge across the group, keys in first-occurrence order.
func propertyConflicts(entityID string, group []model.Entity) []Conflict {
	values := make(map[string][]model.Value)
	for _, e := range group {
		for k, v := range e.Properties {
			values[k] = append(values[k], v)
		}
	}
	keyOrder := stableKeyOrder(group)

	var conflicts []Conflict
	for _, key := range keyOrder {
		vals := values[key]
		texts := make([]string, 0, len(vals))
		for _, v := range vals {
			texts = append(texts, v.Text())
		}
		if distinct(texts) <= 1 {
			continue
		}
		items := make([]any, 0, len(vals))
		for _, v := range vals {
			items = append(items, v)
		}
		conflicts = append(conflicts, Conflict{
			ID:               fmt.Sprintf("property_conflict_%s_%s", entityID, key),
			Kind:             PropertyValueConflict,
			Description:      fmt.Sprintf("entity %s property %q has conflicting values", entityID, key),
			ConflictingItems: items,
			ConfidenceScores: ones(len(vals)),
		})
	}
	return conflicts
}

// DetectRelationConflicts groups relations by (head, tail). A group with
// two or more distinct types emits CONTRADICTORY_RELATIONS when the type
// set contains a known contradictory pair, RELATION_TYPE_CONFLICT
// otherwise.
func (r *Resolver) DetectRelationConflicts(relations []model.Relation) []Conflict {
	type pair struct{ head, tail string }
	groups := make(map[pair][]model.Relation)
	var order []pair
	for _, rel := range relations {
		k := pair{rel.HeadEntityID, rel.TailEntityID}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], rel)
	}

	var conflicts []Conflict
	for _, k := range order {
		group := groups[k]
		if len(group) <= 1 {
			continue
		}

		types := make([]string, 0, len(group))
		confidences := make([]float64, 0, len(group))
		for _, rel := range group {
			types = append(types, rel.Type)
			confidences = append(confidences, rel.Confidence)
		}
		if distinct(types) <= 1 {
			continue
		}

		if areContradictory(types) {
			items := make([]any, 0, len(group))
			for _, rel := range group {
				items = append(items, rel)
			}
			conflicts = append(conflicts, Conflict{
				ID:               fmt.Sprintf("contradictory_relations_%s_%s", k.head, k.tail),
				Kind:             ContradictoryRelations,
				Description:      fmt.Sprintf("entities %s and %s hold contradictory relations", k.head, k.tail),
				ConflictingItems: items,
				ConfidenceScores: confidences,
			})
		} else {
			conflicts = append(conflicts, Conflict{
				ID:               fmt.Sprintf("relation_type_conflict_%s_%s", k.head, k.tail),
				Kind:             RelationTypeConflict,
				Description:      fmt.Sprintf("entities %s and %s hold multiple relation types", k.head, k.tail),
				ConflictingItems: toAny(types),
				ConfidenceScores: confidences,
			})
		}
	}

	return conflicts
}

func groupEntitiesByID(entities []model.Entity) (map[string][]model.Entity, []string) {
	groups := make(map[string][]model.Entity)
	var order []string
	for _, e := range entities {
		if _, ok := groups[e.ID]; !ok {
			order = append(order, e.ID)
		}
		groups[e.ID] = append(groups[e.ID], e)
	}
	return groups, order
}

func stableKeyOrder(group []model.Entity) []string {
	var order []string
	seen := make(map[string]struct{})
	for _, e := range group {
		for _, k := range sortedKeys(e.Properties) {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				order = append(order, k)
			}
		}
	}
	return order
}

func distinct(items []string) int {
	set := make(map[string]struct{}, len(items))
	for _, s := range items {
		set[s] = struct{}{}
	}
	return len(set)
}

func toAny(items []string) []any {
	out := make([]any, 0, len(items))
	for _, s := range items {
		out = append(out, s)
	}
	return out
}

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0
	}
	return out
}
