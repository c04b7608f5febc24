package plan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/instance"
	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/profile"
	"github.com/jcmrs/warpos/internal/template"
)

// Result is the outcome of executing a plan.
type Result struct {
	OK      bool                  `json:"ok"`
	Plan    *models.ExecutionPlan `json:"plan"`
	Results []string              `json:"results"`
}

// Executor renders plans from instances and applies them exactly once.
type Executor struct {
	instances *instance.Store
	templates *template.Library
	resolver  *profile.Resolver
	plans     *Store
	applier   Applier
	audit     *audit.Writer

	// Per-plan locks close the race between two concurrent execute calls
	// on the same plan id.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExecutor creates an Executor.
func NewExecutor(instances *instance.Store, templates *template.Library, resolver *profile.Resolver, plans *Store, applier Applier, aw *audit.Writer) *Executor {
	return &Executor{
		instances: instances,
		templates: templates,
		resolver:  resolver,
		plans:     plans,
		applier:   applier,
		audit:     aw,
		locks:     map[string]*sync.Mutex{},
	}
}

// Prepare renders a fresh pending plan from an instance. It never mutates
// the instance; preparing twice yields two independent plans.
func (e *Executor) Prepare(projectSlug, instanceID string) (*models.ExecutionPlan, error) {
	if err := models.ValidateProjectSlug(projectSlug); err != nil {
		return nil, err
	}
	inst, err := e.instances.Get(projectSlug, instanceID)
	if err != nil {
		return nil, err
	}
	tpl, err := e.templates.LoadVersion(inst.TemplateID, inst.TemplateVersion)
	if err != nil {
		return nil, err
	}

	var framework string
	if len(inst.DomainProfiles) > 0 {
		resolved, err := e.resolver.Resolve(inst.DomainProfiles)
		if err != nil {
			return nil, err
		}
		framework = profile.Compile(resolved)
	}

	steps, verification := render(tpl, buildVars(inst))

	p := &models.ExecutionPlan{
		PlanID:          uuid.New().String(),
		InstanceID:      inst.InstanceID,
		ProjectSlug:     inst.ProjectSlug,
		TemplateID:      inst.TemplateID,
		TemplateVersion: inst.TemplateVersion,
		CreatedAt:       time.Now().UTC(),
		Steps:           steps,
		Verification:    verification,
		DomainFramework: framework,
		Status:          models.PlanStatusPending,
	}
	if err := e.plans.Create(p); err != nil {
		return nil, err
	}

	e.audit.Record("plan.prepare", map[string]any{
		"project_slug": projectSlug,
		"instance_id":  instanceID,
	}, "success", p.PlanID, "")

	return p, nil
}

// Execute applies a pending plan exactly once: it claims the plan under a
// per-plan lock, persists the executing state before any work so a crash
// leaves durable evidence, applies steps then verification entries in
// order, and persists the terminal state. Failures are re-raised; there is
// no automatic retry.
func (e *Executor) Execute(ctx context.Context, planID string) (*Result, error) {
	lock := e.lockFor(planID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.plans.Get(planID)
	if err != nil {
		return nil, err
	}
	if p.Status != models.PlanStatusPending {
		return nil, &models.StateError{Op: "execute plan " + planID, Current: string(p.Status)}
	}

	p.Status = models.PlanStatusExecuting
	if err := e.plans.UpdateStatus(planID, models.PlanStatusExecuting); err != nil {
		return nil, err
	}

	var results []string
	fail := func(cause error) (*Result, error) {
		_ = e.plans.UpdateStatus(planID, models.PlanStatusFailed)
		_ = e.instances.UpdateStatus(p.ProjectSlug, p.InstanceID, models.InstanceStatusFailed)
		e.audit.Record("plan.execute", map[string]any{"plan_id": planID}, "failed", planID, cause.Error())
		return nil, cause
	}

	for _, step := range p.Steps {
		line, err := e.applier.ApplyStep(ctx, p, step)
		if err != nil {
			return fail(fmt.Errorf("apply step %s: %w", step.ID, err))
		}
		results = append(results, line)
	}
	for _, v := range p.Verification {
		line, err := e.applier.ApplyVerification(ctx, p, v)
		if err != nil {
			return fail(fmt.Errorf("apply verification %s: %w", v.ID, err))
		}
		results = append(results, line)
	}

	if err := e.plans.UpdateStatus(planID, models.PlanStatusCompleted); err != nil {
		return nil, err
	}
	_ = e.instances.UpdateStatus(p.ProjectSlug, p.InstanceID, models.InstanceStatusExecuted)
	e.audit.Record("plan.execute", map[string]any{"plan_id": planID}, "success", planID, "")

	p.Status = models.PlanStatusCompleted
	return &Result{OK: true, Plan: p, Results: results}, nil
}

// GetPlan loads a plan read-only.
func (e *Executor) GetPlan(planID string) (*models.ExecutionPlan, error) {
	return e.plans.Get(planID)
}

// ListPlans returns all stored plan ids, sorted.
func (e *Executor) ListPlans() ([]string, error) {
	return e.plans.List()
}

func (e *Executor) lockFor(planID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[planID]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[planID] = lock
	}
	return lock
}
