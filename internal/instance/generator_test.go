package instance

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/template"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	dir := t.TempDir()
	lib, err := template.NewLibrary(dir + "/templates")
	require.NoError(t, err)

	_, err = lib.Put(&models.TaskTemplate{
		ID:          "create_endpoint",
		Version:     1,
		Description: "create a REST endpoint",
		InputsSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"port": {"type": "integer"}
			},
			"required": ["name", "port"]
		}`),
		OutputsSchema: json.RawMessage(`{"type": "object"}`),
		Steps:         []models.TemplateStep{{ID: "s1", Instruction: "Create {name}"}},
	})
	require.NoError(t, err)

	return NewGenerator(lib, NewStore(dir), nil)
}

func TestGenerate(t *testing.T) {
	g := newTestGenerator(t)

	inst, err := g.Generate("demo-api", "create_endpoint", 1,
		map[string]any{"name": "todo.txt", "port": 8080},
		"deadbeef", []string{"engineering/go"})
	require.NoError(t, err)

	assert.NotEmpty(t, inst.InstanceID)
	assert.Equal(t, "demo-api", inst.ProjectSlug)
	assert.Equal(t, models.InstanceStatusPending, inst.Status)
	assert.Equal(t, "deadbeef", inst.IntentDocumentHash)
	assert.False(t, inst.CreatedAt.IsZero())

	// Persisted and independently loadable.
	got, err := g.Get("demo-api", inst.InstanceID)
	require.NoError(t, err)
	assert.Equal(t, inst.InstanceID, got.InstanceID)
	assert.Equal(t, "todo.txt", got.Inputs["name"])
}

func TestGenerateReportsAllViolations(t *testing.T) {
	g := newTestGenerator(t)

	// Missing required "name" and wrong-typed "port": one error, both named.
	_, err := g.Generate("demo-api", "create_endpoint", 1,
		map[string]any{"port": "eighty"}, "deadbeef", nil)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err), "got %T", err)
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "port")

	// Nothing was persisted.
	ids, err := g.List("demo-api")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestGenerateUnknownTemplate(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Generate("demo-api", "create_endpoint", 9,
		map[string]any{"name": "x", "port": 1}, "h", nil)
	assert.True(t, models.IsNotFound(err), "got %v", err)

	_, err = g.Generate("demo-api", "unknown", 1,
		map[string]any{"name": "x", "port": 1}, "h", nil)
	assert.True(t, models.IsNotFound(err), "got %v", err)
}

func TestGenerateRejectsBadIdentifiers(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Generate("bad slug!", "create_endpoint", 1,
		map[string]any{"name": "x", "port": 1}, "h", nil)
	assert.True(t, models.IsValidation(err), "got %v", err)

	_, err = g.Generate("demo-api", "create_endpoint", 1,
		map[string]any{"name": "x", "port": 1}, "h", []string{"../escape"})
	assert.True(t, models.IsValidation(err), "got %v", err)
}

func TestGetMissingInstance(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.Get("demo-api", "no-such-instance")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
	assert.Contains(t, err.Error(), "no-such-instance")
	assert.Contains(t, err.Error(), "demo-api")
	assert.False(t, strings.Contains(err.Error(), "no such file"),
		"storage error leaked: %v", err)
}

func TestListEmptyProject(t *testing.T) {
	g := newTestGenerator(t)

	ids, err := g.List("empty-project")
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestListSorted(t *testing.T) {
	g := newTestGenerator(t)

	for i := 0; i < 3; i++ {
		_, err := g.Generate("demo-api", "create_endpoint", 1,
			map[string]any{"name": "x", "port": 1}, "h", nil)
		require.NoError(t, err)
	}

	ids, err := g.List("demo-api")
	require.NoError(t, err)
	require.Len(t, ids, 3)
	for i := 1; i < len(ids); i++ {
		assert.LessOrEqual(t, ids[i-1], ids[i])
	}
}

func TestGenerateUsesTemplateDefaultProfiles(t *testing.T) {
	g := newTestGenerator(t)

	_, err := g.templates.Put(&models.TaskTemplate{
		ID:              "create_endpoint",
		Version:         2,
		Description:     "create a REST endpoint",
		InputsSchema:    json.RawMessage(`{"type": "object"}`),
		OutputsSchema:   json.RawMessage(`{"type": "object"}`),
		Steps:           []models.TemplateStep{{ID: "s1", Instruction: "Create {name}"}},
		DefaultProfiles: []string{"engineering/go"},
	})
	require.NoError(t, err)

	inst, err := g.Generate("demo-api", "create_endpoint", 2, nil, "", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"engineering/go"}, inst.DomainProfiles)

	// Explicitly attached profiles win over the template defaults.
	inst, err = g.Generate("demo-api", "create_endpoint", 2, nil, "", []string{"ops"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ops"}, inst.DomainProfiles)
}
