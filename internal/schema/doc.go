// Package schema is the entity-type registry: which entity types exist,
// which of their attributes are identifying, and what canonical type each
// declared attribute carries.
//
// Definitions are written in CUE and compiled into an immutable registry
// at startup:
//
//	entityTypes: {
//		API: {
//			identifying_attributes: ["name", "service"]
//			attributes: {
//				name:    "string"
//				service: "string"
//				port:    "long"
//			}
//		}
//	}
//
// Attribute type names use the canonical names from the conversion
// tables ("string", "long", "boolean", ...); unknown names fail
// compilation. A Static provider backs tests without CUE files.
package schema
