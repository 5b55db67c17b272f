package schema

import (
	"github.com/cockroachdb/errors"

	"github.com/roach88/sightline/internal/value"
)

// ErrUnknownEntityType reports a lookup for a type with no registered
// definition.
var ErrUnknownEntityType = errors.New("unknown entity type")

// Definition describes one entity type.
type Definition struct {
	Name string

	// IdentifyingAttributes lists the attribute names whose values
	// determine a derived entity id, in declaration order.
	IdentifyingAttributes []string

	// AttributeKinds maps declared attribute names to their primitive
	// kind. Attributes absent here are unconstrained.
	AttributeKinds map[string]value.Kind
}

// Provider resolves entity-type definitions. Implementations must be safe
// for concurrent use.
type Provider interface {
	// Definition returns the definition for an entity type, or
	// ErrUnknownEntityType.
	Definition(entityType string) (Definition, error)

	// IdentifyingAttributes returns the identifying attribute names for
	// an entity type, or ErrUnknownEntityType.
	IdentifyingAttributes(entityType string) ([]string, error)
}

// Static is an in-memory Provider, used by tests and by deployments that
// configure types programmatically. The map is read-only after
// construction.
type Static struct {
	definitions map[string]Definition
}

// NewStatic builds a provider over the given definitions.
func NewStatic(definitions ...Definition) *Static {
	byName := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		byName[def.Name] = def
	}
	return &Static{definitions: byName}
}

// Definition implements Provider.
func (s *Static) Definition(entityType string) (Definition, error) {
	def, ok := s.definitions[entityType]
	if !ok {
		return Definition{}, errors.Wrapf(ErrUnknownEntityType, "type %q", entityType)
	}
	return def, nil
}

// IdentifyingAttributes implements Provider.
func (s *Static) IdentifyingAttributes(entityType string) ([]string, error) {
	def, err := s.Definition(entityType)
	if err != nil {
		return nil, err
	}
	return def.IdentifyingAttributes, nil
}

// Types returns the registered type names. Order is unspecified.
func (s *Static) Types() []string {
	names := make([]string, 0, len(s.definitions))
	for name := range s.definitions {
		names = append(names, name)
	}
	return names
}
