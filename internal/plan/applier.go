package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/jcmrs/warpos/internal/connectors"
	"github.com/jcmrs/warpos/internal/llm"
	"github.com/jcmrs/warpos/internal/models"
)

// Applier performs one plan item and returns its result line. The executor
// drives it strictly in plan order; swapping the implementation changes
// what "apply" does without touching the state-machine contract.
type Applier interface {
	ApplyStep(ctx context.Context, p *models.ExecutionPlan, step models.PlanStep) (string, error)
	ApplyVerification(ctx context.Context, p *models.ExecutionPlan, v models.PlanVerification) (string, error)
}

// DryRunApplier records what would happen without performing side effects.
// It is the safe default for unattended transports.
type DryRunApplier struct{}

// ApplyStep records the step without side effects.
func (DryRunApplier) ApplyStep(_ context.Context, _ *models.ExecutionPlan, step models.PlanStep) (string, error) {
	return fmt.Sprintf("step %s: planned: %s", step.ID, step.Instruction), nil
}

// ApplyVerification records the verification command without running it.
func (DryRunApplier) ApplyVerification(_ context.Context, _ *models.ExecutionPlan, v models.PlanVerification) (string, error) {
	return fmt.Sprintf("verify %s: planned: %s", v.ID, v.Command), nil
}

// ShellApplier performs plan items for real: step instructions go to the
// language-model provider with the plan's domain framework as system
// prompt, verification commands run through the local connector.
type ShellApplier struct {
	llm       llm.Client
	connector connectors.Connector
}

// NewShellApplier creates a ShellApplier.
func NewShellApplier(client llm.Client, conn connectors.Connector) *ShellApplier {
	return &ShellApplier{llm: client, connector: conn}
}

// ApplyStep sends the rendered instruction to the provider.
func (a *ShellApplier) ApplyStep(ctx context.Context, p *models.ExecutionPlan, step models.PlanStep) (string, error) {
	response, err := a.llm.Complete(ctx, llm.Request{
		System: p.DomainFramework,
		Prompt: step.Instruction,
	})
	if err != nil {
		return "", fmt.Errorf("step %s: %w", step.ID, err)
	}
	return fmt.Sprintf("step %s: %s", step.ID, firstLine(response)), nil
}

// ApplyVerification runs the rendered command through the connector. A
// nonzero exit code fails the item.
func (a *ShellApplier) ApplyVerification(ctx context.Context, p *models.ExecutionPlan, v models.PlanVerification) (string, error) {
	fields := strings.Fields(v.Command)
	if len(fields) == 0 {
		return "", fmt.Errorf("verify %s: empty command", v.ID)
	}
	result, err := a.connector.Execute(ctx, fields[0], fields[1:])
	if err != nil {
		return "", fmt.Errorf("verify %s: %w", v.ID, err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("verify %s: exit %d: %s", v.ID, result.ExitCode, firstLine(result.Stderr))
	}
	return fmt.Sprintf("verify %s: ok", v.ID), nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
