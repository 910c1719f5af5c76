package graph

import "fmt"

// ValidationError reports a relation insert that referenced a missing
// entity. The store is left untouched when it is returned.
type ValidationError struct {
	RelationID string
	EntityID   string
	Side       string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("relation %s references missing %s entity %s", e.RelationID, e.Side, e.EntityID)
}

// Issue kinds reported by Validate.
const (
	IssueOrphanRelation   = "orphan_relation"
	IssueOntologyMismatch = "ontology_mismatch"
)

// Issue is one problem found by Validate. Issues are collected, never
// raised.
type Issue struct {
	Kind       string `json:"kind"`
	RelationID string `json:"relation_id"`
	Detail     string `json:"detail"`
}
