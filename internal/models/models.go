// Package models defines the core domain types for WARPOS.
package models

import (
	"encoding/json"
	"time"
)

// InstanceStatus represents the current state of a task instance.
type InstanceStatus string

const (
	InstanceStatusPending InstanceStatus = "pending"
	// Prepared is valid on stored records but never written by the core:
	// preparing a plan does not mutate the instance.
	InstanceStatusPrepared InstanceStatus = "prepared"
	InstanceStatusExecuted InstanceStatus = "executed"
	InstanceStatusFailed   InstanceStatus = "failed"
)

// PlanStatus represents the current state of an execution plan.
// Transitions are strictly forward: pending -> executing -> completed|failed.
type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusExecuting PlanStatus = "executing"
	PlanStatusCompleted PlanStatus = "completed"
	PlanStatusFailed    PlanStatus = "failed"
)

// RelationKindInherits is the only relation kind the resolver follows.
const RelationKindInherits = "inherits"

// Relation is a directed edge from a profile to another profile.
type Relation struct {
	Target string `yaml:"target" json:"target"`
	Kind   string `yaml:"kind" json:"kind"`
}

// Profile is a named, inheritable bundle of guidance statements.
// Groups is the raw document tree; any node holding an "observations"
// string list is a leaf group.
type Profile struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Relations   []Relation     `json:"relations,omitempty"`
	Groups      map[string]any `json:"groups,omitempty"`
}

// ObservationGroup is one flattened group extracted from a profile tree.
type ObservationGroup struct {
	Path         string   `json:"path"`
	Observations []string `json:"observations"`
}

// ResolvedProfile is a profile plus its flattened observation groups.
// Derived on every resolution pass, never cached.
type ResolvedProfile struct {
	ID      string             `json:"id"`
	Profile *Profile           `json:"profile"`
	Groups  []ObservationGroup `json:"groups"`
}

// TemplateStep is one ordered instruction in a template. The instruction
// text may contain {variable} placeholders.
type TemplateStep struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction"`
}

// TemplateVerification is one ordered verification command, with the same
// placeholder syntax as steps.
type TemplateVerification struct {
	ID      string `json:"id"`
	Command string `json:"command"`
}

// TaskTemplate is a versioned, immutable-once-published task contract.
// Identity is (ID, Version); content changes require a new version.
type TaskTemplate struct {
	ID                string                 `json:"id"`
	Version           int                    `json:"version"`
	Description       string                 `json:"description"`
	InputsSchema      json.RawMessage        `json:"inputs_schema"`
	OutputsSchema     json.RawMessage        `json:"outputs_schema"`
	Steps             []TemplateStep         `json:"steps"`
	Verification      []TemplateVerification `json:"verification,omitempty"`
	DefaultProfiles   []string               `json:"default_profiles,omitempty"`
	Active            *bool                  `json:"active,omitempty"`
	Deprecated        bool                   `json:"deprecated,omitempty"`
	DeprecatedAt      *time.Time             `json:"deprecated_at,omitempty"`
	DeprecationReason string                 `json:"deprecation_reason,omitempty"`
}

// TaskTemplateRef identifies one stored template version.
type TaskTemplateRef struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// TaskInstance binds one template version to one project's validated
// inputs. Immutable after creation except for Status, which only the plan
// executor updates.
type TaskInstance struct {
	InstanceID         string         `json:"instance_id"`
	ProjectSlug        string         `json:"project_slug"`
	TemplateID         string         `json:"template_id"`
	TemplateVersion    int            `json:"template_version"`
	Inputs             map[string]any `json:"inputs"`
	IntentDocumentHash string         `json:"intent_document_hash"`
	DomainProfiles     []string       `json:"domain_profiles,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	Status             InstanceStatus `json:"status"`
}

// PlanStep is a rendered template step with all known placeholders
// substituted.
type PlanStep struct {
	ID          string `json:"id"`
	Instruction string `json:"instruction"`
}

// PlanVerification is a rendered verification command.
type PlanVerification struct {
	ID      string `json:"id"`
	Command string `json:"command"`
}

// ExecutionPlan is the declarative, inspectable artifact produced from an
// instance before any side effect occurs.
type ExecutionPlan struct {
	PlanID          string             `json:"plan_id"`
	InstanceID      string             `json:"instance_id"`
	ProjectSlug     string             `json:"project_slug"`
	TemplateID      string             `json:"template_id"`
	TemplateVersion int                `json:"template_version"`
	CreatedAt       time.Time          `json:"created_at"`
	Steps           []PlanStep         `json:"steps"`
	Verification    []PlanVerification `json:"verification,omitempty"`
	DomainFramework string             `json:"domain_framework,omitempty"`
	Status          PlanStatus         `json:"status"`
}

// AuditEntry is one recorded state-mutating action.
type AuditEntry struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	InputsHash string    `json:"inputs_hash"`
	Outcome    string    `json:"outcome"`
	RefID      string    `json:"ref_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
