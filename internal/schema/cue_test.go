package schema

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sightline/internal/value"
)

const apiSchema = `
entityTypes: {
	API: {
		identifying_attributes: ["FQN", "API_DISCOVERY_STATE"]
		attributes: {
			FQN:                 "string"
			API_DISCOVERY_STATE: "string"
			PORT:                "long"
			IS_EXTERNAL:         "boolean"
		}
	}
	SERVICE: {
		identifying_attributes: ["FQN"]
		attributes: {
			FQN: "string"
		}
	}
}
`

func TestCompileDefinitions(t *testing.T) {
	ctx := cuecontext.New()

	defs, err := CompileDefinitions(ctx.CompileString(apiSchema))
	require.NoError(t, err)
	require.Len(t, defs, 2)

	byName := map[string]Definition{}
	for _, def := range defs {
		byName[def.Name] = def
	}

	api := byName["API"]
	assert.Equal(t, []string{"FQN", "API_DISCOVERY_STATE"}, api.IdentifyingAttributes)
	assert.Equal(t, value.KindLong, api.AttributeKinds["PORT"])
	assert.Equal(t, value.KindBool, api.AttributeKinds["IS_EXTERNAL"])

	svc := byName["SERVICE"]
	assert.Equal(t, []string{"FQN"}, svc.IdentifyingAttributes)
}

func TestCompileDefinitionsErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantMsg string
	}{
		{
			name:    "missing entityTypes",
			source:  `types: {}`,
			wantMsg: "entityTypes struct is required",
		},
		{
			name: "unknown attribute type",
			source: `entityTypes: API: {
				attributes: PORT: "integer64"
			}`,
			wantMsg: `unknown type name "integer64"`,
		},
		{
			name: "identifying attribute not declared",
			source: `entityTypes: API: {
				identifying_attributes: ["FQN"]
				attributes: PORT: "long"
			}`,
			wantMsg: `attribute "FQN" is not declared`,
		},
		{
			name: "identifying attributes not a list",
			source: `entityTypes: API: {
				identifying_attributes: "FQN"
			}`,
			wantMsg: "must be a list",
		},
	}

	ctx := cuecontext.New()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CompileDefinitions(ctx.CompileString(tc.source))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "api.cue", apiSchema)
	writeSchema(t, dir, "backend.cue", `
entityTypes: BACKEND: {
	identifying_attributes: ["HOST", "PORT"]
	attributes: {
		HOST: "string"
		PORT: "long"
	}
}
`)
	// Non-CUE files are ignored.
	writeSchema(t, dir, "README.md", "not a schema")

	provider, err := LoadDir(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"API", "SERVICE", "BACKEND"}, provider.Types())

	ids, err := provider.IdentifyingAttributes("BACKEND")
	require.NoError(t, err)
	assert.Equal(t, []string{"HOST", "PORT"}, ids)
}

func TestLoadDirDuplicateType(t *testing.T) {
	dir := t.TempDir()
	writeSchema(t, dir, "a.cue", `entityTypes: API: identifying_attributes: ["FQN"]`)
	writeSchema(t, dir, "b.cue", `entityTypes: API: identifying_attributes: ["NAME"]`)

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestStaticUnknownType(t *testing.T) {
	provider := NewStatic(Definition{Name: "API"})

	_, err := provider.Definition("NOPE")
	assert.ErrorIs(t, err, ErrUnknownEntityType)

	_, err = provider.IdentifyingAttributes("NOPE")
	assert.ErrorIs(t, err, ErrUnknownEntityType)
}

func writeSchema(t *testing.T, dir, name, source string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}
