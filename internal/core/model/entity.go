package model

// Entity is a canonical graph node. IDs are unique within one store;
// every alias and the name resolve to the entity through the store's
// name index.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Aliases    []string   `json:"aliases"`
}

// NewEntity builds an entity with initialized property and alias storage.
func NewEntity(id, name, entityType string) Entity {
	return Entity{
		ID:         id,
		Name:       name,
		Type:       entityType,
		Properties: Properties{},
		Aliases:    []string{},
	}
}

// Clone returns a copy sharing no mutable state with the receiver.
func (e Entity) Clone() Entity {
	out := e
	out.Properties = e.Properties.Clone()
	out.Aliases = append([]string{}, e.Aliases...)
	return out
}
