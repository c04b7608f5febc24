package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/jcmrs/warpos/internal/config"
	"github.com/jcmrs/warpos/internal/models"
)

func newTestTools(t *testing.T) (*profileTools, *templateTools, *taskTools) {
	t.Helper()
	cfg := &config.Config{Home: t.TempDir(), Applier: config.ApplierDryRun}
	_, cleanup, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	// Rebuild the tool structs against the same home so tests can call
	// handlers directly instead of going through a stdio transport.
	pt, tt, kt, err := buildTools(cfg, nil)
	require.NoError(t, err)
	return pt, tt, kt
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return tc.Text
}

func TestProfilePutGetResolve(t *testing.T) {
	pt, _, _ := newTestTools(t)
	ctx := context.Background()

	res, err := pt.handlePut(ctx, call("domain_profile_put", map[string]any{
		"id": "api",
		"document": `description: API work
conventions:
  observations:
    - Version every endpoint
`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = pt.handlePut(ctx, call("domain_profile_put", map[string]any{
		"id": "api.rest",
		"document": `relations:
  - target: api
    kind: inherits
style:
  observations:
    - Use plural nouns in paths
`,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = pt.handleResolve(ctx, call("domain_profile_resolve", map[string]any{
		"ids": []any{"api.rest"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Order    []string `json:"order"`
		Compiled string   `json:"compiled"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &out))
	require.Equal(t, []string{"api", "api.rest"}, out.Order)
	require.Contains(t, out.Compiled, "## Profile: api\n")
	require.Contains(t, out.Compiled, "- Version every endpoint")
	require.Contains(t, out.Compiled, "- Use plural nouns in paths")
}

func TestProfileGetUnknownIsToolError(t *testing.T) {
	pt, _, _ := newTestTools(t)

	res, err := pt.handleGet(context.Background(), call("domain_profile_get", map[string]any{"id": "nope"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), "not found")
}

func TestProfilePutMissingArgument(t *testing.T) {
	pt, _, _ := newTestTools(t)

	res, err := pt.handlePut(context.Background(), call("domain_profile_put", map[string]any{"id": "x"}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), `"document"`)
}

func testTemplateDoc() map[string]any {
	return map[string]any{
		"id":          "create-endpoint",
		"version":     float64(1),
		"description": "Create a REST endpoint",
		"inputs_schema": map[string]any{
			"type":                 "object",
			"required":             []any{"name"},
			"properties":           map[string]any{"name": map[string]any{"type": "string"}},
			"additionalProperties": false,
		},
		"outputs_schema": map[string]any{"type": "object"},
		"steps": []any{
			map[string]any{"id": "s1", "instruction": "Create {name}"},
		},
	}
}

func TestTemplatePutGetDeprecate(t *testing.T) {
	_, tt, _ := newTestTools(t)
	ctx := context.Background()

	res, err := tt.handlePut(ctx, call("template_put", map[string]any{"template": testTemplateDoc()}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var ref models.TaskTemplateRef
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &ref))
	require.Equal(t, "create-endpoint", ref.ID)
	require.Equal(t, 1, ref.Version)

	res, err = tt.handleGet(ctx, call("template_get", map[string]any{"id": "create-endpoint"}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var tpl models.TaskTemplate
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &tpl))
	require.Equal(t, 1, tpl.Version)
	require.Len(t, tpl.Steps, 1)

	res, err = tt.handleDeprecate(ctx, call("template_deprecate", map[string]any{
		"id": "create-endpoint", "version": float64(1), "reason": "superseded",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &tpl))
	require.True(t, tpl.Deprecated)
}

func TestTemplatePutInvalidDocument(t *testing.T) {
	_, tt, _ := newTestTools(t)

	doc := testTemplateDoc()
	delete(doc, "steps")
	res, err := tt.handlePut(context.Background(), call("template_put", map[string]any{"template": doc}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), "steps")
}

func TestTaskFlowGenerateThroughExecute(t *testing.T) {
	_, tt, kt := newTestTools(t)
	ctx := context.Background()

	res, err := tt.handlePut(ctx, call("template_put", map[string]any{"template": testTemplateDoc()}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = kt.handleGenerate(ctx, call("task_instance_generate", map[string]any{
		"project_slug":     "todo-app",
		"template_id":      "create-endpoint",
		"template_version": float64(1),
		"inputs":           map[string]any{"name": "todo.txt"},
		"intent_document":  "Add a todo file",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var inst models.TaskInstance
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &inst))
	require.NotEmpty(t, inst.InstanceID)
	require.NotEmpty(t, inst.IntentDocumentHash)

	res, err = kt.handlePrepare(ctx, call("plan_prepare", map[string]any{
		"project_slug": "todo-app",
		"instance_id":  inst.InstanceID,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var p models.ExecutionPlan
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &p))
	require.Equal(t, models.PlanStatusPending, p.Status)
	require.Equal(t, "Create todo.txt", p.Steps[0].Instruction)

	// No go decision yet: the plan must stay pending.
	res, err = kt.handleExecute(ctx, call("plan_execute", map[string]any{"plan_id": p.PlanID}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), "confirm")

	res, err = kt.handleExecute(ctx, call("plan_execute", map[string]any{
		"plan_id": p.PlanID, "confirm": true,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))

	var result struct {
		OK   bool                  `json:"ok"`
		Plan *models.ExecutionPlan `json:"plan"`
	}
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &result))
	require.True(t, result.OK)
	require.Equal(t, models.PlanStatusCompleted, result.Plan.Status)

	// Second execute is refused; the refusal is a tool error, not a crash.
	res, err = kt.handleExecute(ctx, call("plan_execute", map[string]any{
		"plan_id": p.PlanID, "confirm": true,
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), "completed")
}

func TestGenerateInvalidInputsIsToolError(t *testing.T) {
	_, tt, kt := newTestTools(t)
	ctx := context.Background()

	res, err := tt.handlePut(ctx, call("template_put", map[string]any{"template": testTemplateDoc()}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	res, err = kt.handleGenerate(ctx, call("task_instance_generate", map[string]any{
		"project_slug":     "todo-app",
		"template_id":      "create-endpoint",
		"template_version": float64(1),
		"inputs":           map[string]any{"name": float64(7)},
	}))
	require.NoError(t, err)
	require.True(t, res.IsError)
	require.Contains(t, textOf(t, res), "name")
}
