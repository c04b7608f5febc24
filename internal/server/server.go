// Package server wires the WARPOS subsystems into an MCP server.
//
// This is the composition root: it creates the concrete stores, resolver,
// generator and executor, and registers the tool handlers that expose
// them. No business logic lives here — only wiring.
package server

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/config"
	"github.com/jcmrs/warpos/internal/connectors/localexec"
	"github.com/jcmrs/warpos/internal/instance"
	"github.com/jcmrs/warpos/internal/llm"
	"github.com/jcmrs/warpos/internal/plan"
	"github.com/jcmrs/warpos/internal/profile"
	"github.com/jcmrs/warpos/internal/store"
	"github.com/jcmrs/warpos/internal/template"
)

// Version is set at build time via ldflags.
var Version = "dev"

const instructions = `WARPOS turns an intent document into a locked, inspectable,
re-runnable unit of work. Create or pick a task template, generate an
instance against validated inputs, prepare an execution plan, review it,
then execute it exactly once. Domain profiles attach reusable guidance to
plan preparation and step application.`

// New creates and configures the MCP server with all tools registered.
//
// The returned cleanup function closes the audit database and must be
// called on shutdown (typically via defer). It is always non-nil and safe
// to call even when audit setup failed.
func New(cfg *config.Config) (*server.MCPServer, func(), error) {
	cleanup := func() {}

	var auditWriter *audit.Writer
	auditStore, err := store.New(cfg.AuditDBPath())
	if err != nil {
		// The audit trail is supporting evidence, not a precondition.
		log.Printf("Warning: audit store unavailable: %v", err)
	} else {
		auditWriter = audit.NewWriter(auditStore)
		cleanup = func() {
			if err := auditStore.Close(); err != nil {
				log.Printf("audit store close: %v", err)
			}
		}
	}

	pt, tt, kt, err := buildTools(cfg, auditWriter)
	if err != nil {
		return nil, cleanup, err
	}

	s := server.NewMCPServer(
		"warpos",
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	pt.register(s)
	tt.register(s)
	kt.register(s)

	return s, cleanup, nil
}

// buildTools assembles the tool groups over concrete stores rooted at the
// configured home directory.
func buildTools(cfg *config.Config, aw *audit.Writer) (*profileTools, *templateTools, *taskTools, error) {
	profiles := profile.NewStore(cfg.ProfilesDir())
	resolver := profile.NewResolver(profiles)

	library, err := template.NewLibrary(cfg.TemplatesDir())
	if err != nil {
		return nil, nil, nil, err
	}

	instances := instance.NewStore(cfg.DataDir())
	generator := instance.NewGenerator(library, instances, aw)

	plans := plan.NewStore(cfg.DataDir())
	executor := plan.NewExecutor(instances, library, resolver, plans, newApplier(cfg), aw)

	return &profileTools{store: profiles, resolver: resolver, audit: aw},
		&templateTools{library: library, audit: aw},
		&taskTools{generator: generator, executor: executor},
		nil
}

// newApplier selects the configured plan applier. Dry-run is the default:
// real side effects require opting in.
func newApplier(cfg *config.Config) plan.Applier {
	if cfg.Applier != config.ApplierShell {
		return plan.DryRunApplier{}
	}
	client := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model)
	return plan.NewShellApplier(client, localexec.New(cfg.WorkDir))
}
