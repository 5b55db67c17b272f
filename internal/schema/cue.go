package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sightline/internal/convert"
	"github.com/roach88/sightline/internal/value"
)

// DefinitionError is a schema compilation failure, carrying the CUE
// position when one is available.
type DefinitionError struct {
	Type    string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *DefinitionError) Error() string {
	where := e.Field
	if e.Type != "" {
		where = e.Type + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), where, e.Message)
	}
	return fmt.Sprintf("%s: %s", where, e.Message)
}

// LoadDir compiles every *.cue file in dir into one registry. Files merge:
// each contributes entries under its top-level "entityTypes" struct, and a
// type defined twice is an error.
func LoadDir(dir string) (*Static, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read schema directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".cue" {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	// Stable load order keeps duplicate-type errors reproducible.
	sort.Strings(paths)

	ctx := cuecontext.New()
	var definitions []Definition
	seen := map[string]string{}

	for _, path := range paths {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		defs, err := CompileDefinitions(ctx.CompileBytes(source, cue.Filename(path)))
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			if prev, dup := seen[def.Name]; dup {
				return nil, &DefinitionError{
					Type:    def.Name,
					Field:   "entityTypes",
					Message: fmt.Sprintf("already defined in %s", prev),
				}
			}
			seen[def.Name] = path
			definitions = append(definitions, def)
		}
	}

	return NewStatic(definitions...), nil
}

// CompileDefinitions parses entity-type definitions out of a compiled CUE
// value. The value must carry a top-level "entityTypes" struct.
func CompileDefinitions(v cue.Value) ([]Definition, error) {
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	typesVal := v.LookupPath(cue.ParsePath("entityTypes"))
	if !typesVal.Exists() {
		return nil, &DefinitionError{Field: "entityTypes", Message: "entityTypes struct is required", Pos: v.Pos()}
	}

	iter, err := typesVal.Fields()
	if err != nil {
		return nil, fmt.Errorf("iterate entityTypes: %w", err)
	}

	var definitions []Definition
	for iter.Next() {
		def, err := compileDefinition(iter.Selector().String(), iter.Value())
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, def)
	}
	return definitions, nil
}

func compileDefinition(name string, v cue.Value) (Definition, error) {
	def := Definition{Name: name}

	idVal := v.LookupPath(cue.ParsePath("identifying_attributes"))
	if idVal.Exists() {
		list, err := idVal.List()
		if err != nil {
			return Definition{}, &DefinitionError{
				Type: name, Field: "identifying_attributes",
				Message: "must be a list of attribute names", Pos: idVal.Pos(),
			}
		}
		for list.Next() {
			attr, err := list.Value().String()
			if err != nil {
				return Definition{}, &DefinitionError{
					Type: name, Field: "identifying_attributes",
					Message: "entries must be strings", Pos: list.Value().Pos(),
				}
			}
			def.IdentifyingAttributes = append(def.IdentifyingAttributes, attr)
		}
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if attrsVal.Exists() {
		attrIter, err := attrsVal.Fields()
		if err != nil {
			return Definition{}, &DefinitionError{
				Type: name, Field: "attributes",
				Message: "must be a struct of attribute type names", Pos: attrsVal.Pos(),
			}
		}
		def.AttributeKinds = map[string]value.Kind{}
		for attrIter.Next() {
			attrName := attrIter.Selector().String()
			typeName, err := attrIter.Value().String()
			if err != nil {
				return Definition{}, &DefinitionError{
					Type: name, Field: "attributes." + attrName,
					Message: "type must be a canonical type name string", Pos: attrIter.Value().Pos(),
				}
			}
			kind, err := convert.PrimitiveKindFor(typeName)
			if err != nil {
				return Definition{}, &DefinitionError{
					Type: name, Field: "attributes." + attrName,
					Message: fmt.Sprintf("unknown type name %q", typeName), Pos: attrIter.Value().Pos(),
				}
			}
			def.AttributeKinds[attrName] = kind
		}
	}

	// Identifying attributes must be declared when an attribute section
	// exists, so typos fail at load time instead of at normalization.
	if def.AttributeKinds != nil {
		for _, attr := range def.IdentifyingAttributes {
			if _, declared := def.AttributeKinds[attr]; !declared {
				return Definition{}, &DefinitionError{
					Type: name, Field: "identifying_attributes",
					Message: fmt.Sprintf("attribute %q is not declared", attr), Pos: v.Pos(),
				}
			}
		}
	}

	return def, nil
}
