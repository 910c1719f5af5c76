package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTypes(t *testing.T) {
	o := Default()

	person, ok := o.EntityType("Person")
	require.True(t, ok)
	assert.Contains(t, person.Properties, "occupation")

	_, ok = o.EntityType("Spaceship")
	assert.False(t, ok)

	worksFor, ok := o.RelationType("works_for")
	require.True(t, ok)
	assert.Equal(t, "Person", worksFor.Domain)
	assert.Equal(t, "Organization", worksFor.Range)
}

func TestValidateRelation(t *testing.T) {
	o := Default()

	assert.True(t, o.ValidateRelation("works_for", "Person", "Organization"))
	assert.False(t, o.ValidateRelation("works_for", "Organization", "Person"))
	assert.False(t, o.ValidateRelation("unknown_relation", "Person", "Organization"))
}

func TestPossibleRelations(t *testing.T) {
	o := Default()

	got := o.PossibleRelations("Person", "Organization")
	assert.Equal(t, []string{"works_for", "founder_of"}, got)

	assert.Empty(t, o.PossibleRelations("Product", "Person"))
}

func TestPossibleRelationsDeterministicOrder(t *testing.T) {
	o := Default()
	first := o.PossibleRelations("Person", "Person")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, o.PossibleRelations("Person", "Person"))
	}
	assert.Equal(t, []string{"parent_of", "spouse_of", "friend_of"}, first)
}

func TestAddEntityTypeReplaces(t *testing.T) {
	o := New()
	o.AddEntityType(EntityType{Name: "Gadget", Description: "first"})
	o.AddEntityType(EntityType{Name: "Gadget", Description: "second"})

	got, ok := o.EntityType("Gadget")
	require.True(t, ok)
	assert.Equal(t, "second", got.Description)
}

func TestCustomRelationValidation(t *testing.T) {
	o := New()
	o.AddEntityType(EntityType{Name: "Service"})
	o.AddEntityType(EntityType{Name: "Host"})
	o.AddRelationType(RelationType{Name: "runs_on", Domain: "Service", Range: "Host"})

	assert.True(t, o.ValidateRelation("runs_on", "Service", "Host"))
	assert.False(t, o.ValidateRelation("runs_on", "Host", "Service"))
}
