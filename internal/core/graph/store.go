package graph

import (
	"strings"

	"github.com/graphloom/loom/internal/core/model"
	"github.com/graphloom/loom/internal/core/ontology"
)

type pairKey struct {
	Head string
	Tail string
}

// Store is the canonical in-memory knowledge graph. Entities and
// relations are held by id alongside derived indices; every index
// bijects with the live maps after each mutating call returns. The
// store has no internal locking, callers serialize access.
type Store struct {
	Ontology *ontology.Ontology

	entities  map[string]model.Entity
	relations map[string]model.Relation

	// insertion order, kept free of ids that were removed or overwritten
	entityOrder   []string
	relationOrder []string

	nameIndex    map[string]string    // lowercased name or alias -> entity id
	typeIndex    map[string][]string  // entity type -> entity ids
	relTypeIndex map[string][]string  // relation type -> relation ids
	pairIndex    map[pairKey][]string // (head, tail) -> relation ids

	outgoing map[string][]string // head entity id -> relation ids
	incoming map[string][]string // tail entity id -> relation ids
}

// NewStore returns an empty store validating against the given
// ontology. A nil ontology disables schema checks in Validate.
func NewStore(onto *ontology.Ontology) *Store {
	s := &Store{Ontology: onto}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.entities = make(map[string]model.Entity)
	s.relations = make(map[string]model.Relation)
	s.entityOrder = nil
	s.relationOrder = nil
	s.nameIndex = make(map[string]string)
	s.typeIndex = make(map[string][]string)
	s.relTypeIndex = make(map[string][]string)
	s.pairIndex = make(map[pairKey][]string)
	s.outgoing = make(map[string][]string)
	s.incoming = make(map[string][]string)
}

// Clear removes every entity and relation.
func (s *Store) Clear() {
	s.reset()
}

// AddEntity inserts the entity, replacing any previous entity with the
// same id. It always succeeds.
func (s *Store) AddEntity(e model.Entity) {
	if old, ok := s.entities[e.ID]; ok {
		s.deindexEntity(old)
	} else {
		s.entityOrder = append(s.entityOrder, e.ID)
	}
	s.entities[e.ID] = e.Clone()
	s.indexEntity(e)
}

// AddRelation inserts the relation after checking that both endpoints
// exist. On a missing endpoint it returns a *ValidationError and leaves
// every map and index untouched.
func (s *Store) AddRelation(r model.Relation) error {
	if _, ok := s.entities[r.HeadEntityID]; !ok {
		return &ValidationError{RelationID: r.ID, EntityID: r.HeadEntityID, Side: "head"}
	}
	if _, ok := s.entities[r.TailEntityID]; !ok {
		return &ValidationError{RelationID: r.ID, EntityID: r.TailEntityID, Side: "tail"}
	}

	if old, ok := s.relations[r.ID]; ok {
		s.deindexRelation(old)
	} else {
		s.relationOrder = append(s.relationOrder, r.ID)
	}
	s.relations[r.ID] = r.Clone()
	s.indexRelation(r)
	return nil
}

// RemoveEntity deletes the entity and every relation touching it.
// Returns false when the id is unknown.
func (s *Store) RemoveEntity(id string) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	for _, relID := range append(append([]string{}, s.outgoing[id]...), s.incoming[id]...) {
		s.RemoveRelation(relID)
	}
	s.deindexEntity(e)
	delete(s.entities, id)
	s.entityOrder = removeID(s.entityOrder, id)
	return true
}

// RemoveRelation deletes the relation. Returns false when the id is
// unknown.
func (s *Store) RemoveRelation(id string) bool {
	r, ok := s.relations[id]
	if !ok {
		return false
	}
	s.deindexRelation(r)
	delete(s.relations, id)
	s.relationOrder = removeID(s.relationOrder, id)
	return true
}

// Entity returns the entity by id.
func (s *Store) Entity(id string) (model.Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return model.Entity{}, false
	}
	return e.Clone(), true
}

// Relation returns the relation by id.
func (s *Store) Relation(id string) (model.Relation, bool) {
	r, ok := s.relations[id]
	if !ok {
		return model.Relation{}, false
	}
	return r.Clone(), true
}

// EntityByName resolves a name or alias, case-insensitively, to its
// entity.
func (s *Store) EntityByName(name string) (model.Entity, bool) {
	id, ok := s.nameIndex[strings.ToLower(name)]
	if !ok {
		return model.Entity{}, false
	}
	return s.Entity(id)
}

// EntitiesByType returns entities of the given type in insertion order.
func (s *Store) EntitiesByType(entityType string) []model.Entity {
	ids := s.typeIndex[entityType]
	out := make([]model.Entity, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.entities[id].Clone())
	}
	return out
}

// RelationsByType returns relations of the given type in insertion
// order.
func (s *Store) RelationsByType(relationType string) []model.Relation {
	ids := s.relTypeIndex[relationType]
	out := make([]model.Relation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.relations[id].Clone())
	}
	return out
}

// RelationsBetween returns relations from head to tail in insertion
// order. Direction matters.
func (s *Store) RelationsBetween(headID, tailID string) []model.Relation {
	ids := s.pairIndex[pairKey{Head: headID, Tail: tailID}]
	out := make([]model.Relation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.relations[id].Clone())
	}
	return out
}

// Entities returns every entity in insertion order.
func (s *Store) Entities() []model.Entity {
	out := make([]model.Entity, 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		out = append(out, s.entities[id].Clone())
	}
	return out
}

// Relations returns every relation in insertion order.
func (s *Store) Relations() []model.Relation {
	out := make([]model.Relation, 0, len(s.relationOrder))
	for _, id := range s.relationOrder {
		out = append(out, s.relations[id].Clone())
	}
	return out
}

// EntityCount returns the number of live entities.
func (s *Store) EntityCount() int { return len(s.entities) }

// RelationCount returns the number of live relations.
func (s *Store) RelationCount() int { return len(s.relations) }

// Validate reports orphaned relations and relations whose types violate
// the ontology's domain and range declarations. It never fails, the
// issue list is the result.
func (s *Store) Validate() []Issue {
	var issues []Issue
	for _, relID := range s.relationOrder {
		r := s.relations[relID]
		head, headOK := s.entities[r.HeadEntityID]
		tail, tailOK := s.entities[r.TailEntityID]
		if !headOK || !tailOK {
			issues = append(issues, Issue{
				Kind:       IssueOrphanRelation,
				RelationID: r.ID,
				Detail:     "relation endpoint missing from store",
			})
			continue
		}
		if s.Ontology != nil && !s.Ontology.ValidateRelation(r.Type, head.Type, tail.Type) {
			issues = append(issues, Issue{
				Kind:       IssueOntologyMismatch,
				RelationID: r.ID,
				Detail:     r.Type + " does not admit " + head.Type + " -> " + tail.Type,
			})
		}
	}
	return issues
}

func (s *Store) indexEntity(e model.Entity) {
	s.typeIndex[e.Type] = append(s.typeIndex[e.Type], e.ID)
	s.nameIndex[strings.ToLower(e.Name)] = e.ID
	for _, alias := range e.Aliases {
		s.nameIndex[strings.ToLower(alias)] = e.ID
	}
}

func (s *Store) deindexEntity(e model.Entity) {
	s.typeIndex[e.Type] = removeID(s.typeIndex[e.Type], e.ID)
	if len(s.typeIndex[e.Type]) == 0 {
		delete(s.typeIndex, e.Type)
	}
	if s.nameIndex[strings.ToLower(e.Name)] == e.ID {
		delete(s.nameIndex, strings.ToLower(e.Name))
	}
	for _, alias := range e.Aliases {
		if s.nameIndex[strings.ToLower(alias)] == e.ID {
			delete(s.nameIndex, strings.ToLower(alias))
		}
	}
}

func (s *Store) indexRelation(r model.Relation) {
	s.relTypeIndex[r.Type] = append(s.relTypeIndex[r.Type], r.ID)
	key := pairKey{Head: r.HeadEntityID, Tail: r.TailEntityID}
	s.pairIndex[key] = append(s.pairIndex[key], r.ID)
	s.outgoing[r.HeadEntityID] = append(s.outgoing[r.HeadEntityID], r.ID)
	s.incoming[r.TailEntityID] = append(s.incoming[r.TailEntityID], r.ID)
}

func (s *Store) deindexRelation(r model.Relation) {
	s.relTypeIndex[r.Type] = removeID(s.relTypeIndex[r.Type], r.ID)
	if len(s.relTypeIndex[r.Type]) == 0 {
		delete(s.relTypeIndex, r.Type)
	}
	key := pairKey{Head: r.HeadEntityID, Tail: r.TailEntityID}
	s.pairIndex[key] = removeID(s.pairIndex[key], r.ID)
	if len(s.pairIndex[key]) == 0 {
		delete(s.pairIndex, key)
	}
	s.outgoing[r.HeadEntityID] = removeID(s.outgoing[r.HeadEntityID], r.ID)
	if len(s.outgoing[r.HeadEntityID]) == 0 {
		delete(s.outgoing, r.HeadEntityID)
	}
	s.incoming[r.TailEntityID] = removeID(s.incoming[r.TailEntityID], r.ID)
	if len(s.incoming[r.TailEntityID]) == 0 {
		delete(s.incoming, r.TailEntityID)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
