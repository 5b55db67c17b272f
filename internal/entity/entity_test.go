package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sightline/internal/value"
)

func TestKeyString(t *testing.T) {
	k := Key{TenantID: "t1", EntityType: "API", EntityID: "abc"}
	assert.Equal(t, "t1:API:abc", k.String())
}

func TestEntityEqual(t *testing.T) {
	base := Entity{
		TenantID:   "t1",
		EntityType: "API",
		EntityID:   "abc",
		Name:       "checkout",
		Attributes: map[string]value.Value{"PORT": value.Long(8080)},
		CreatedAt:  1,
		UpdatedAt:  2,
	}

	same := base
	same.CreatedAt = 99
	same.UpdatedAt = 99
	assert.True(t, base.Equal(same), "timestamps are not entity state")

	renamed := base
	renamed.Name = "billing"
	assert.False(t, base.Equal(renamed))

	retyped := base
	retyped.Attributes = map[string]value.Value{"PORT": value.Str("8080")}
	assert.False(t, base.Equal(retyped), "kind changes are attribute changes")

	extra := base
	extra.Attributes = map[string]value.Value{"PORT": value.Long(8080), "X": value.Str("y")}
	assert.False(t, base.Equal(extra))
}

func TestEntityValidate(t *testing.T) {
	ok := Entity{TenantID: "t1", EntityType: "API", EntityID: "abc"}
	assert.NoError(t, ok.Validate())

	for _, tc := range []struct {
		name string
		e    Entity
	}{
		{"missing tenant", Entity{EntityType: "API", EntityID: "abc"}},
		{"missing type", Entity{TenantID: "t1", EntityID: "abc"}},
		{"missing id", Entity{TenantID: "t1", EntityType: "API"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, tc.e.Validate())
		})
	}
}
