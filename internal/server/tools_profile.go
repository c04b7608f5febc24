package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/profile"
)

// profileTools exposes the domain profile catalog and resolver.
type profileTools struct {
	store    *profile.Store
	resolver *profile.Resolver
	audit    *audit.Writer
}

func (t *profileTools) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("domain_profile_list",
		mcp.WithDescription("List the identifiers of all stored domain profiles."),
	), t.handleList)

	s.AddTool(mcp.NewTool("domain_profile_get",
		mcp.WithDescription("Load one domain profile with its flattened observation groups."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile identifier, e.g. api.fastapi")),
	), t.handleGet)

	s.AddTool(mcp.NewTool("domain_profile_put",
		mcp.WithDescription("Create or replace a domain profile from a YAML document."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile identifier")),
		mcp.WithString("document", mcp.Required(), mcp.Description("Profile body as a YAML document")),
	), t.handlePut)

	s.AddTool(mcp.NewTool("domain_profile_delete",
		mcp.WithDescription("Delete a domain profile. Profiles inheriting from it will fail to resolve."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Profile identifier")),
	), t.handleDelete)

	s.AddTool(mcp.NewTool("domain_profile_resolve",
		mcp.WithDescription("Resolve one or more profiles through their inheritance chains and compile the combined guidance text."),
		mcp.WithArray("ids", mcp.Required(), mcp.Description("Entry profile identifiers, resolved in order")),
	), t.handleResolve)
}

func (t *profileTools) handleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := t.store.List()
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]any{"profiles": ids})
}

func (t *profileTools) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	resolved, err := t.store.Get(id)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(resolved)
}

func (t *profileTools) handlePut(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := reqString(req.Params.Arguments, "document")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Put(id, []byte(doc)); err != nil {
		t.audit.Record("profile.put", map[string]any{"id": id}, "error", id, err.Error())
		return toolError(err)
	}
	t.audit.Record("profile.put", map[string]any{"id": id}, "ok", id, "")
	return mcp.NewToolResultText("Profile " + id + " stored."), nil
}

func (t *profileTools) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := reqString(req.Params.Arguments, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.store.Delete(id); err != nil {
		return toolError(err)
	}
	t.audit.Record("profile.delete", map[string]any{"id": id}, "ok", id, "")
	return mcp.NewToolResultText("Profile " + id + " deleted."), nil
}

func (t *profileTools) handleResolve(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := optStringSlice(req.Params.Arguments, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError(`missing required argument "ids"`), nil
	}
	resolved, err := t.resolver.Resolve(ids)
	if err != nil {
		return toolError(err)
	}
	order := make([]string, len(resolved))
	for i, p := range resolved {
		order[i] = p.ID
	}
	return jsonResult(map[string]any{
		"order":    order,
		"compiled": profile.Compile(resolved),
	})
}
