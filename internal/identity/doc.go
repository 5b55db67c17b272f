// Package identity derives deterministic entity ids from identifying
// attributes.
//
// An entity that arrives with an explicit id is trusted as-is. Otherwise
// the id is a name-based UUID over a canonical encoding of the tenant,
// the entity type, and the entity's identifying attribute values, so the
// same logical entity always resolves to the same id regardless of which
// writer saw it first. The canonical encoding is also persisted alongside
// the document so later writes can detect identity collisions.
package identity
