package main

import (
	"fmt"
	"strings"

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

// runtime is the CLI-side wiring of the subsystems: the same stores the
// server uses, opened directly against the configured home.
type runtime struct {
	cfg        *config.Config
	profiles   *profile.Store
	resolver   *profile.Resolver
	library    *template.Library
	instances  *instance.Store
	generator  *instance.Generator
	plans      *plan.Store
	executor   *plan.Executor
	auditStore *store.Store
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if homeDir != "" {
		cfg.Home = homeDir
	}
	return cfg, nil
}

func newRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	auditStore, err := store.New(cfg.AuditDBPath())
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	auditWriter := audit.NewWriter(auditStore)

	profiles := profile.NewStore(cfg.ProfilesDir())
	resolver := profile.NewResolver(profiles)

	library, err := template.NewLibrary(cfg.TemplatesDir())
	if err != nil {
		auditStore.Close()
		return nil, err
	}

	instances := instance.NewStore(cfg.DataDir())
	generator := instance.NewGenerator(library, instances, auditWriter)

	plans := plan.NewStore(cfg.DataDir())

	var applier plan.Applier = plan.DryRunApplier{}
	if cfg.Applier == config.ApplierShell {
		applier = plan.NewShellApplier(llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.Model), localexec.New(cfg.WorkDir))
	}
	executor := plan.NewExecutor(instances, library, resolver, plans, applier, auditWriter)

	return &runtime{
		cfg:        cfg,
		profiles:   profiles,
		resolver:   resolver,
		library:    library,
		instances:  instances,
		generator:  generator,
		plans:      plans,
		executor:   executor,
		auditStore: auditStore,
	}, nil
}

func (r *runtime) close() {
	_ = r.auditStore.Close()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
