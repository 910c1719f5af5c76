package model

// ExtractedEntity is a raw candidate produced by upstream text
// extraction. It is mapped to a canonical Entity before reaching the
// fusion engines.
type ExtractedEntity struct {
	Text       string  `json:"text"`
	Type       string  `json:"type"`
	StartPos   int     `json:"start_pos"`
	EndPos     int     `json:"end_pos"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

// ExtractedRelation is a raw candidate relation, referencing entities by
// surface text rather than id.
type ExtractedRelation struct {
	HeadEntity   string  `json:"head_entity"`
	RelationType string  `json:"relation_type"`
	TailEntity   string  `json:"tail_entity"`
	Confidence   float64 `json:"confidence"`
	Context      string  `json:"context,omitempty"`
	StartPos     int     `json:"start_pos"`
	EndPos       int     `json:"end_pos"`
}

// Entity maps the candidate to a canonical entity under the given id,
// carrying extraction confidence and context as properties.
func (x ExtractedEntity) Entity(id string) Entity {
	e := NewEntity(id, x.Text, x.Type)
	e.Properties["confidence"] = Number(x.Confidence)
	if x.Context != "" {
		e.Properties["context"] = String(x.Context)
	}
	return e
}

// Relation maps the candidate to a canonical relation between resolved
// entity ids. Extraction context is kept as a property so relation fusion
// can compare it.
func (x ExtractedRelation) Relation(id, headID, tailID string) Relation {
	r := NewRelation(id, x.RelationType, headID, tailID)
	r.Confidence = x.Confidence
	if x.Context != "" {
		r.Properties["context"] = String(x.Context)
	}
	return r
}
