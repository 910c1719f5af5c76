// Package ontology holds the entity/relation type schema a knowledge
// graph validates against: which type names exist and which head/tail
// entity types a relation may connect.
package ontology

// EntityType describes one entity type and the properties it may carry.
type EntityType struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Properties  []string `json:"properties"`
	ParentType  string   `json:"parent_type,omitempty"`
}

// RelationType describes a relation type with its domain (required head
// entity type) and range (required tail entity type).
type RelationType struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Domain      string   `json:"domain"`
	Range       string   `json:"range"`
	Properties  []string `json:"properties,omitempty"`
}

// Ontology is an in-memory schema registry.
type Ontology struct {
	entityTypes   map[string]EntityType
	relationTypes map[string]RelationType
	relationOrder []string
}

// New returns an empty ontology.
func New() *Ontology {
	return &Ontology{
		entityTypes:   make(map[string]EntityType),
		relationTypes: make(map[string]RelationType),
	}
}

// Default returns the stock ontology used when no schema is supplied.
func Default() *Ontology {
	o := New()

	for _, et := range []EntityType{
		{Name: "Person", Description: "a person", Properties: []string{"name", "age", "occupation", "nationality"}},
		{Name: "Organization", Description: "an organization", Properties: []string{"name", "type", "founded_year", "location"}},
		{Name: "Location", Description: "a geographic location", Properties: []string{"name", "type", "coordinates", "population"}},
		{Name: "Event", Description: "an event", Properties: []string{"name", "date", "location", "participants"}},
		{Name: "Product", Description: "a product", Properties: []string{"name", "category", "price", "manufacturer"}},
		{Name: "Concept", Description: "an abstract concept", Properties: []string{"name", "definition", "category"}},
	} {
		o.AddEntityType(et)
	}

	for _, rt := range []RelationType{
		{Name: "works_for", Description: "employment", Domain: "Person", Range: "Organization"},
		{Name: "located_in", Description: "physical location", Domain: "Organization", Range: "Location"},
		{Name: "born_in", Description: "place of birth", Domain: "Person", Range: "Location"},
		{Name: "participated_in", Description: "event participation", Domain: "Person", Range: "Event"},
		{Name: "occurred_at", Description: "event location", Domain: "Event", Range: "Location"},
		{Name: "produces", Description: "production", Domain: "Organization", Range: "Product"},
		{Name: "founder_of", Description: "founding", Domain: "Person", Range: "Organization"},
		{Name: "parent_of", Description: "parenthood", Domain: "Person", Range: "Person"},
		{Name: "spouse_of", Description: "marriage", Domain: "Person", Range: "Person"},
		{Name: "friend_of", Description: "friendship", Domain: "Person", Range: "Person"},
	} {
		o.AddRelationType(rt)
	}

	return o
}

// AddEntityType registers or replaces an entity type.
func (o *Ontology) AddEntityType(et EntityType) {
	o.entityTypes[et.Name] = et
}

// AddRelationType registers or replaces a relation type.
func (o *Ontology) AddRelationType(rt RelationType) {
	if _, exists := o.relationTypes[rt.Name]; !exists {
		o.relationOrder = append(o.relationOrder, rt.Name)
	}
	o.relationTypes[rt.Name] = rt
}

// EntityType looks up an entity type by name.
func (o *Ontology) EntityType(name string) (EntityType, bool) {
	et, ok := o.entityTypes[name]
	return et, ok
}

// RelationType looks up a relation type by name.
func (o *Ontology) RelationType(name string) (RelationType, bool) {
	rt, ok := o.relationTypes[name]
	return rt, ok
}

// ValidateRelation reports whether relName is declared and its
// domain/range match the given head/tail entity types. Unknown relation
// types are invalid.
func (o *Ontology) ValidateRelation(relName, headType, tailType string) bool {
	rt, ok := o.relationTypes[relName]
	if !ok {
		return false
	}
	return rt.Domain == headType && rt.Range == tailType
}

// PossibleRelations lists the relation type names whose domain/range
// match the given entity type pair, in registration order.
func (o *Ontology) PossibleRelations(headType, tailType string) []string {
	var names []string
	for _, name := range o.relationOrder {
		rt := o.relationTypes[name]
		if rt.Domain == headType && rt.Range == tailType {
			names = append(names, name)
		}
	}
	return names
}
