package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/template"
)

// templateTools exposes the versioned task template library.
type templateTools struct {
	library *template.Library
	audit   *audit.Writer
}

func (t *templateTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("template_list",
		mcp.WithDescription("List the identifiers of all stored task templates."),
	), t.handleList)

	s.AddTool(mcp.NewTool("template_versions",
		mcp.WithDescription("List the stored versions of one template, newest first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template identifier")),
	), t.handleVersions)

	s.AddTool(mcp.NewTool("template_get",
		mcp.WithDescription("Load a task template. Without a version, the latest stored version is returned."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template identifier")),
		mcp.WithNumber("version", mcp.Description("Exact version to load; omit for latest")),
	), t.handleGet)

	s.AddTool(mcp.NewTool("template_put",
		mcp.WithDescription("Store a task template version. Publishing an existing (id, version) replaces it; prefer a new version for content changes."),
		mcp.WithObject("template", mcp.Required(), mcp.Description("Full template document: id, version, description, inputs_schema, outputs_schema, steps, optional verification and default_profiles")),
	), t.handlePut)

	s.AddTool(mcp.NewTool("template_deprecate",
		mcp.WithDescription("Mark a template version as deprecated. The content stays loadable for existing instances."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Template identifier")),
		mcp.WithNumber("version", mcp.Required(), mcp.Description("Version to deprecate")),
		mcp.WithString("reason", mcp.Description("Why this version is retired")),
	), t.handleDeprecate)
}

func (t *templateTools) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := t.library.ListIDs()
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"templates": ids})
}

func (t *templateTools) handleVersions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	versions, err := t.library.ListVersions(id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"id": id, "versions": versions})
}

func (t *templateTools) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := optInt(req.Params.Arguments, "version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var tpl *models.TaskTemplate
	if version > 0 {
		tpl, err = t.library.LoadVersion(id, version)
	} else {
		tpl, err = t.library.Load(id)
	}
	if err != nil {
		return toolError(err)
	}
	return jsonResult(tpl)
}

func (t *templateTools) handlePut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := optObject(req.Params.Arguments, "template")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(doc) == 0 {
		return mcp.NewToolResultError(`missing required argument "template"`), nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode template document: %w", err)
	}
	var tpl models.TaskTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return mcp.NewToolResultError("template document is not well-formed: " + err.Error()), nil
	}
	ref, err := t.library.Put(&tpl)
	if err != nil {
		t.audit.Record("template.put", doc, "error", tpl.ID, err.Error())
		return toolError(err)
	}
	t.audit.Record("template.put", doc, "ok", template.Filename(ref.ID, ref.Version), "")
	return jsonResult(ref)
}

func (t *templateTools) handleDeprecate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	version, err := reqInt(req.Params.Arguments, "version")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reason := optString(req.Params.Arguments, "reason")
	tpl, err := t.library.Deprecate(id, version, reason)
	if err != nil {
		return toolError(err)
	}
	t.audit.Record("template.deprecate", map[string]any{"id": id, "version": version}, "ok", template.Filename(id, version), reason)
	return jsonResult(tpl)
}
