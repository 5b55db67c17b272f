package identity

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sightline/internal/entity"
	"github.com/roach88/sightline/internal/schema"
	"github.com/roach88/sightline/internal/value"
)

func apiProvider() schema.Provider {
	return schema.NewStatic(
		schema.Definition{
			Name:                  "API",
			IdentifyingAttributes: []string{"FQN", "PORT"},
		},
		schema.Definition{Name: "UNKEYED"},
	)
}

func apiEntity(attrs map[string]value.Value) *entity.Entity {
	return &entity.Entity{
		TenantID:   "tenant-1",
		EntityType: "API",
		Name:       "checkout",
		Attributes: attrs,
	}
}

func TestNormalizeTrustsExplicitID(t *testing.T) {
	n := NewNormalizer(apiProvider())

	e := apiEntity(nil)
	e.EntityID = "caller-chose-this"

	got, err := n.Normalize("tenant-1", e)
	require.NoError(t, err)
	assert.Equal(t, "caller-chose-this", got.EntityID)
	assert.Empty(t, got.Encoding)
}

func TestNormalizeDerivesDeterministicID(t *testing.T) {
	n := NewNormalizer(apiProvider())

	attrs := map[string]value.Value{
		"FQN":   value.Str("checkout.example.com"),
		"PORT":  value.Long(8080),
		"EXTRA": value.Str("ignored"),
	}

	first, err := n.Normalize("tenant-1", apiEntity(attrs))
	require.NoError(t, err)
	require.NotEmpty(t, first.EntityID)
	require.NotEmpty(t, first.Encoding)

	_, err = uuid.Parse(first.EntityID)
	require.NoError(t, err)

	// Same identifying values, different non-identifying attributes,
	// fresh normalizer: the id must not depend on cache state.
	again, err := NewNormalizer(apiProvider()).Normalize("tenant-1", apiEntity(map[string]value.Value{
		"PORT":  value.Long(8080),
		"FQN":   value.Str("checkout.example.com"),
		"OTHER": value.Long(99),
	}))
	require.NoError(t, err)
	assert.Equal(t, first.EntityID, again.EntityID)
	assert.Equal(t, first.Encoding, again.Encoding)
}

func TestNormalizeSeparatesTenantsAndValues(t *testing.T) {
	n := NewNormalizer(apiProvider())
	attrs := map[string]value.Value{
		"FQN":  value.Str("checkout.example.com"),
		"PORT": value.Long(8080),
	}

	a, err := n.Normalize("tenant-1", apiEntity(attrs))
	require.NoError(t, err)
	b, err := n.Normalize("tenant-2", apiEntity(attrs))
	require.NoError(t, err)
	assert.NotEqual(t, a.EntityID, b.EntityID)

	c, err := n.Normalize("tenant-1", apiEntity(map[string]value.Value{
		"FQN":  value.Str("checkout.example.com"),
		"PORT": value.Long(8081),
	}))
	require.NoError(t, err)
	assert.NotEqual(t, a.EntityID, c.EntityID)
}

func TestNormalizeKindAffectsIdentity(t *testing.T) {
	n := NewNormalizer(apiProvider())

	asLong, err := n.Normalize("tenant-1", apiEntity(map[string]value.Value{
		"FQN":  value.Str("svc"),
		"PORT": value.Long(8080),
	}))
	require.NoError(t, err)

	asString, err := n.Normalize("tenant-1", apiEntity(map[string]value.Value{
		"FQN":  value.Str("svc"),
		"PORT": value.Str("8080"),
	}))
	require.NoError(t, err)

	assert.NotEqual(t, asLong.EntityID, asString.EntityID)
}

func TestNormalizeErrors(t *testing.T) {
	n := NewNormalizer(apiProvider())

	t.Run("missing identifying attribute", func(t *testing.T) {
		_, err := n.Normalize("tenant-1", apiEntity(map[string]value.Value{
			"FQN": value.Str("checkout.example.com"),
		}))
		assert.ErrorIs(t, err, ErrMissingIdentifyingAttributes)
	})

	t.Run("type declares no identifying attributes", func(t *testing.T) {
		e := apiEntity(nil)
		e.EntityType = "UNKEYED"
		_, err := n.Normalize("tenant-1", e)
		assert.ErrorIs(t, err, ErrMissingIdentifyingAttributes)
	})

	t.Run("unknown type", func(t *testing.T) {
		e := apiEntity(nil)
		e.EntityType = "NOPE"
		_, err := n.Normalize("tenant-1", e)
		assert.ErrorIs(t, err, schema.ErrUnknownEntityType)
	})
}

// countingProvider counts schema lookups so tests can assert that
// repeated normalizations of one type hit the provider once.
type countingProvider struct {
	schema.Provider
	lookups int32
}

func (p *countingProvider) IdentifyingAttributes(entityType string) ([]string, error) {
	atomic.AddInt32(&p.lookups, 1)
	return p.Provider.IdentifyingAttributes(entityType)
}

func TestNormalizeCachesSchemaLookupsPerType(t *testing.T) {
	p := &countingProvider{Provider: apiProvider()}
	n := NewNormalizer(p)

	for i := 0; i < 4; i++ {
		_, err := n.Normalize("tenant-1", apiEntity(map[string]value.Value{
			"FQN":  value.Str("svc"),
			"PORT": value.Long(8000 + int64(i)),
		}))
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&p.lookups))
}

func TestNormalizeConcurrent(t *testing.T) {
	n := NewNormalizer(apiProvider())
	attrs := map[string]value.Value{
		"FQN":  value.Str("checkout.example.com"),
		"PORT": value.Long(8080),
	}

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := n.Normalize("tenant-1", apiEntity(attrs))
			if err == nil {
				ids[i] = got.EntityID
			}
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
}
