package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaCUE = `
entityTypes: {
	API: {
		identifying_attributes: ["FQN", "PORT"]
		attributes: {
			FQN:  "string"
			PORT: "long"
		}
	}
}
`

const testPayloadYAML = `
entities:
  - type: API
    name: checkout
    attributes:
      FQN:  { kind: STRING, value: checkout.example.com }
      PORT: { kind: LONG, value: 8080 }
  - type: API
    name: billing
    attributes:
      FQN:  { kind: STRING, value: billing.example.com }
      PORT: { kind: LONG, value: 8081 }
`

// env prepares a schema dir, a payload file, and a db path.
type env struct {
	schemaDir string
	dbPath    string
	payload   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	dir := t.TempDir()

	schemaDir := filepath.Join(dir, "schemas")
	require.NoError(t, os.Mkdir(schemaDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(schemaDir, "api.cue"), []byte(testSchemaCUE), 0o644))

	payload := filepath.Join(dir, "entities.yaml")
	require.NoError(t, os.WriteFile(payload, []byte(testPayloadYAML), 0o644))

	return env{
		schemaDir: schemaDir,
		dbPath:    filepath.Join(dir, "entities.db"),
		payload:   payload,
	}
}

func runCommand(t *testing.T, e env, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{
		"--db", e.dbPath,
		"--schema-dir", e.schemaDir,
		"--tenant", "acme",
	}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestUpsertThenGet(t *testing.T) {
	e := newEnv(t)

	out, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)
	assert.Contains(t, out, "checkout")
	assert.Contains(t, out, "billing")
	assert.Contains(t, out, "CREATED")

	// Find the stored id through a query, then fetch it directly.
	out, err = runCommand(t, e, "--format", "json", "query", "API",
		"--attr", "FQN=checkout.example.com")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var entities []struct {
		EntityID string `json:"EntityID"`
		Name     string `json:"Name"`
	}
	require.NoError(t, json.Unmarshal(raw, &entities))
	require.Len(t, entities, 1)
	require.Equal(t, "checkout", entities[0].Name)

	out, err = runCommand(t, e, "get", "API", entities[0].EntityID)
	require.NoError(t, err)
	assert.Contains(t, out, "checkout")
}

func TestQueryFilters(t *testing.T) {
	e := newEnv(t)

	_, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)

	out, err := runCommand(t, e, "query", "API", "--attr", "PORT=8081")
	require.NoError(t, err)
	assert.Contains(t, out, "billing")
	assert.NotContains(t, out, "checkout")
	assert.Contains(t, out, "1 entities")

	out, err = runCommand(t, e, "query", "API", "--exists", "PORT")
	require.NoError(t, err)
	assert.Contains(t, out, "2 entities")
}

func TestQueryCount(t *testing.T) {
	e := newEnv(t)

	_, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)

	out, err := runCommand(t, e, "query", "API", "--count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, err = runCommand(t, e, "query", "API", "--count", "--attr", "PORT=8081")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestUpsertIsIdempotentOnIdentity(t *testing.T) {
	e := newEnv(t)

	_, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)
	out, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)
	assert.Contains(t, out, "UPDATED")

	// Second run rewrote, not duplicated.
	out, err = runCommand(t, e, "query", "API")
	require.NoError(t, err)
	assert.Contains(t, out, "2 entities")
}

func TestDelete(t *testing.T) {
	e := newEnv(t)

	_, err := runCommand(t, e, "upsert", e.payload)
	require.NoError(t, err)

	out, err := runCommand(t, e, "--format", "json", "query", "API", "--attr", "FQN=billing.example.com")
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	raw, _ := json.Marshal(resp.Data)
	var entities []struct {
		EntityID string `json:"EntityID"`
	}
	require.NoError(t, json.Unmarshal(raw, &entities))
	require.Len(t, entities, 1)

	out, err = runCommand(t, e, "delete", "API", entities[0].EntityID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = runCommand(t, e, "get", "API", entities[0].EntityID)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestSchemaListsTypes(t *testing.T) {
	e := newEnv(t)

	out, err := runCommand(t, e, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "API")
	assert.Contains(t, out, "FQN, PORT")
}

func TestInvalidFormatRejected(t *testing.T) {
	e := newEnv(t)

	_, err := runCommand(t, e, "--format", "xml", "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestBuildFilterErrors(t *testing.T) {
	_, err := buildFilter([]string{"missing-eq"}, nil)
	assert.Error(t, err)

	f, err := buildFilter(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, f)
}
