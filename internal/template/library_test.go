package template

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmrs/warpos/internal/models"
)

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := NewLibrary(t.TempDir())
	require.NoError(t, err)
	return l
}

func testTemplate(id string, version int) *models.TaskTemplate {
	return &models.TaskTemplate{
		ID:          id,
		Version:     version,
		Description: "create a REST endpoint",
		InputsSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string"},
				"endpoint_path": {"type": "string"}
			},
			"required": ["name"]
		}`),
		OutputsSchema: json.RawMessage(`{"type": "object"}`),
		Steps: []models.TemplateStep{
			{ID: "s1", Instruction: "Create {name}"},
			{ID: "s2", Instruction: "Wire up {endpoint_path}"},
		},
		Verification: []models.TemplateVerification{
			{ID: "v1", Command: "test {name}"},
		},
	}
}

func TestFilenameRoundTrip(t *testing.T) {
	name := Filename("create_endpoint", 3)
	assert.Equal(t, "create_endpoint@3.json", name)

	id, version, ok := ParseFilename(name)
	require.True(t, ok)
	assert.Equal(t, "create_endpoint", id)
	assert.Equal(t, 3, version)

	for _, bad := range []string{"noext@1", "@1.json", "x.json", "x@zero.json", "x@0.json"} {
		_, _, ok := ParseFilename(bad)
		assert.False(t, ok, "ParseFilename(%q)", bad)
	}
}

func TestPutAndLoadVersion(t *testing.T) {
	l := newTestLibrary(t)

	ref, err := l.Put(testTemplate("create_endpoint", 1))
	require.NoError(t, err)
	assert.Equal(t, &models.TaskTemplateRef{ID: "create_endpoint", Version: 1}, ref)

	tpl, err := l.LoadVersion("create_endpoint", 1)
	require.NoError(t, err)
	assert.Equal(t, "create_endpoint", tpl.ID)
	assert.Len(t, tpl.Steps, 2)
}

func TestLoadLatestEqualsMaxVersion(t *testing.T) {
	l := newTestLibrary(t)

	// Versions 1 and 3 present, 2 absent.
	_, err := l.Put(testTemplate("create_endpoint", 1))
	require.NoError(t, err)
	_, err = l.Put(testTemplate("create_endpoint", 3))
	require.NoError(t, err)

	latest, err := l.Load("create_endpoint")
	require.NoError(t, err)
	exact, err := l.LoadVersion("create_endpoint", 3)
	require.NoError(t, err)
	assert.Equal(t, exact, latest)
}

func TestListIDsAndVersions(t *testing.T) {
	l := newTestLibrary(t)

	for _, ref := range []struct {
		id      string
		version int
	}{
		{"zeta", 1}, {"create_endpoint", 1}, {"create_endpoint", 3}, {"alpha", 2},
	} {
		_, err := l.Put(testTemplate(ref.id, ref.version))
		require.NoError(t, err)
	}

	ids, err := l.ListIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "create_endpoint", "zeta"}, ids)

	versions, err := l.ListVersions("create_endpoint")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, versions)

	versions, err = l.ListVersions("unknown")
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestLoadMissing(t *testing.T) {
	l := newTestLibrary(t)

	_, err := l.Load("unknown")
	assert.True(t, models.IsNotFound(err), "got %v", err)

	_, err = l.Put(testTemplate("create_endpoint", 1))
	require.NoError(t, err)
	_, err = l.LoadVersion("create_endpoint", 9)
	assert.True(t, models.IsNotFound(err), "got %v", err)
	assert.Contains(t, err.Error(), "create_endpoint@9")
}

func TestPutRefusesInvalidTemplate(t *testing.T) {
	l := newTestLibrary(t)

	tpl := testTemplate("bad", 1)
	tpl.Steps = nil // violates minItems and required
	_, err := l.Put(tpl)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err), "got %T", err)

	// Nothing was persisted.
	ids, err := l.ListIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestPutSameVersionOverwrites(t *testing.T) {
	l := newTestLibrary(t)

	first := testTemplate("create_endpoint", 1)
	_, err := l.Put(first)
	require.NoError(t, err)

	second := testTemplate("create_endpoint", 1)
	second.Description = "updated description"
	_, err = l.Put(second)
	require.NoError(t, err)

	tpl, err := l.LoadVersion("create_endpoint", 1)
	require.NoError(t, err)
	assert.Equal(t, "updated description", tpl.Description)

	versions, err := l.ListVersions("create_endpoint")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, versions)
}

func TestDeprecate(t *testing.T) {
	l := newTestLibrary(t)

	_, err := l.Put(testTemplate("create_endpoint", 1))
	require.NoError(t, err)

	tpl, err := l.Deprecate("create_endpoint", 1, "superseded by v2")
	require.NoError(t, err)
	assert.True(t, tpl.Deprecated)
	require.NotNil(t, tpl.Active)
	assert.False(t, *tpl.Active)
	assert.NotNil(t, tpl.DeprecatedAt)
	assert.Equal(t, "superseded by v2", tpl.DeprecationReason)

	// Still loadable; content untouched.
	loaded, err := l.LoadVersion("create_endpoint", 1)
	require.NoError(t, err)
	assert.True(t, loaded.Deprecated)
	assert.Len(t, loaded.Steps, 2)

	_, err = l.Deprecate("create_endpoint", 2, "")
	assert.True(t, models.IsNotFound(err))
}

func TestCorruptStoredTemplate(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLibrary(dir)
	require.NoError(t, err)

	corrupt := `{"id": "broken", "version": 1, "description": "x"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken@1.json"), []byte(corrupt), 0644))

	_, err = l.LoadVersion("broken", 1)
	require.Error(t, err)
	assert.True(t, models.IsValidation(err), "got %T: %v", err, err)
	assert.Contains(t, err.Error(), "steps")
}
