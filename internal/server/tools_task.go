package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/instance"
	"github.com/jcmrs/warpos/internal/plan"
)

// taskTools exposes instance generation and plan preparation/execution.
type taskTools struct {
	generator *instance.Generator
	executor  *plan.Executor
}

func (t *taskTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("task_instance_generate",
		mcp.WithDescription("Generate a task instance: bind a template version to a project's inputs, validated against the template's inputs schema."),
		mcp.WithString("project_slug", mcp.Required(), mcp.Description("Project the instance belongs to")),
		mcp.WithString("template_id", mcp.Required(), mcp.Description("Template identifier")),
		mcp.WithNumber("template_version", mcp.Required(), mcp.Description("Exact template version to bind")),
		mcp.WithObject("inputs", mcp.Description("Input values checked against the template's inputs schema")),
		mcp.WithString("intent_document", mcp.Description("The intent text this instance realizes; stored as a hash")),
		mcp.WithString("intent_hash", mcp.Description("Pre-computed intent hash, if the document is not at hand")),
		mcp.WithArray("domain_profiles", mcp.Description("Profile identifiers attached to the instance")),
	), t.handleGenerate)

	s.AddTool(mcp.NewTool("task_instance_get",
		mcp.WithDescription("Load one task instance."),
		mcp.WithString("project_slug", mcp.Required(), mcp.Description("Project the instance belongs to")),
		mcp.WithString("instance_id", mcp.Required(), mcp.Description("Instance identifier")),
	), t.handleGet)

	s.AddTool(mcp.NewTool("task_instance_list",
		mcp.WithDescription("List the instance identifiers of one project."),
		mcp.WithString("project_slug", mcp.Required(), mcp.Description("Project to list")),
	), t.handleInstanceList)

	s.AddTool(mcp.NewTool("plan_prepare",
		mcp.WithDescription("Render a pending execution plan from an instance. The instance is not mutated; preparing twice yields two independent plans."),
		mcp.WithString("project_slug", mcp.Required(), mcp.Description("Project the instance belongs to")),
		mcp.WithString("instance_id", mcp.Required(), mcp.Description("Instance to prepare")),
	), t.handlePrepare)

	s.AddTool(mcp.NewTool("plan_execute",
		mcp.WithDescription("Execute a pending plan exactly once. Requires an explicit go decision; a plan that has left pending can never be executed again."),
		mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan to execute")),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Explicit go decision; must be true")),
	), t.handleExecute)

	s.AddTool(mcp.NewTool("plan_get",
		mcp.WithDescription("Load one execution plan for review."),
		mcp.WithString("plan_id", mcp.Required(), mcp.Description("Plan identifier")),
	), t.handlePlanGet)

	s.AddTool(mcp.NewTool("plan_list",
		mcp.WithDescription("List all stored plan identifiers."),
	), t.handlePlanList)
}

func (t *taskTools) handleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.Params.Arguments
	slug, err := reqString(args, "project_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	templateID, err := reqString(args, "template_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := reqInt(args, "template_version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inputs, err := optObject(args, "inputs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profiles, err := optStringSlice(args, "domain_profiles")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intentHash := optString(args, "intent_hash")
	if doc := optString(args, "intent_document"); doc != "" {
		intentHash = audit.IntentHash([]byte(doc))
	}
	inst, err := t.generator.Generate(slug, templateID, version, inputs, intentHash, profiles)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(inst)
}

func (t *taskTools) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := reqString(req.Params.Arguments, "project_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := reqString(req.Params.Arguments, "instance_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inst, err := t.generator.Get(slug, id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(inst)
}

func (t *taskTools) handleInstanceList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := reqString(req.Params.Arguments, "project_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := t.generator.List(slug)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"project_slug": slug, "instances": ids})
}

func (t *taskTools) handlePrepare(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := reqString(req.Params.Arguments, "project_slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := reqString(req.Params.Arguments, "instance_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := t.executor.Prepare(slug, id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(p)
}

func (t *taskTools) handleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := reqString(req.Params.Arguments, "plan_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if confirm, _ := req.Params.Arguments["confirm"].(bool); !confirm {
		return mcp.NewToolResultError("execution not confirmed: review the plan and call again with confirm=true"), nil
	}
	result, err := t.executor.Execute(ctx, planID)
	if err != nil {
		// A failing step is a tool-level outcome, not a transport fault:
		// the plan and instance have already been marked failed.
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (t *taskTools) handlePlanGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := reqString(req.Params.Arguments, "plan_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := t.executor.GetPlan(planID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(p)
}

func (t *taskTools) handlePlanList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := t.executor.ListPlans()
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"plans": ids})
}
