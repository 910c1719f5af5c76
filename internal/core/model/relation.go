package model

// Relation is a typed directed edge. Head and tail must reference
// entities already present in the enclosing store at insert time.
// Confidence is mandatory and lives in [0,1]; constructors default it to
// 1.0 so no caller ever has to treat absence specially.
type Relation struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	HeadEntityID string     `json:"head_entity_id"`
	TailEntityID string     `json:"tail_entity_id"`
	Properties   Properties `json:"properties"`
	Confidence   float64    `json:"confidence"`
}

// NewRelation builds a relation with confidence 1.0.
func NewRelation(id, relType, headID, tailID string) Relation {
	return Relation{
		ID:           id,
		Type:         relType,
		HeadEntityID: headID,
		TailEntityID: tailID,
		Properties:   Properties{},
		Confidence:   1.0,
	}
}

// Clone returns a copy sharing no mutable state with the receiver.
func (r Relation) Clone() Relation {
	out := r
	out.Properties = r.Properties.Clone()
	return out
}
