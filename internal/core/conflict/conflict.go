// Package conflict detects residual contradictions in an already-fused
// entity/relation set and resolves them through a per-kind strategy
// table.
package conflict

// Kind classifies a detected conflict.
type Kind string

const (
	EntityNameConflict     Kind = "entity_name_conflict"
	EntityTypeConflict     Kind = "entity_type_conflict"
	PropertyValueConflict  Kind = "property_value_conflict"
	RelationTypeConflict   Kind = "relation_type_conflict"
	TemporalConflict       Kind = "temporal_conflict" // reserved, no detector emits it yet
	ContradictoryRelations Kind = "contradictory_relations"
)

// Resolution strategy names.
const (
	StrategyHighestConfidence  = "highest_confidence"
	StrategyMostFrequent       = "most_frequent"
	StrategyLongestName        = "longest_name"
	StrategyMostSpecificType   = "most_specific_type"
	StrategyVote               = "vote"
	StrategyAverageNumeric     = "average_numeric"
	StrategyUnionLists         = "union_lists"
	StrategyMostRecent         = "most_recent"
	StrategySourceAuthority    = "source_authority"
	StrategyTemporalPrecedence = "temporal_precedence"
	StrategyManualReview       = "manual_review"
)

// Conflict is one detected contradiction. It is mutated exactly once, by
// the resolution step, and then appended to the resolver's history.
//
// ConflictingItems holds strings for name/type conflicts, model.Value
// for property conflicts and model.Relation for contradictory relations;
// ResolvedValue carries the winning item of the same type.
type Conflict struct {
	ID                   string    `json:"id"`
	Kind                 Kind      `json:"kind"`
	Description          string    `json:"description"`
	ConflictingItems     []any     `json:"conflicting_items"`
	ConfidenceScores     []float64 `json:"confidence_scores"`
	ResolutionStrategy   string    `json:"resolution_strategy,omitempty"`
	ResolvedValue        any       `json:"resolved_value,omitempty"`
	ResolutionConfidence float64   `json:"resolution_confidence"`
}

// Resolved reports whether the resolution step has run.
func (c *Conflict) Resolved() bool {
	return c.ResolvedValue != nil
}

// contradictoryPairs lists relation type pairs that cannot both hold
// between the same (head, tail) entity pair.
var contradictoryPairs = [][2]string{
	{"parent_of", "child_of"},
	{"spouse_of", "sibling_of"},
	{"works_for", "competes_with"},
	{"located_in", "not_located_in"},
}

// areContradictory reports whether the type set contains a known
// contradictory pair.
func areContradictory(types []string) bool {
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[t] = struct{}{}
	}
	for _, pair := range contradictoryPairs {
		if _, ok := set[pair[0]]; !ok {
			continue
		}
		if _, ok := set[pair[1]]; ok {
			return true
		}
	}
	return false
}
