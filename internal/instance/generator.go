package instance

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jcmrs/warpos/internal/audit"
	"github.com/jcmrs/warpos/internal/models"
	"github.com/jcmrs/warpos/internal/schema"
	"github.com/jcmrs/warpos/internal/template"
)

// Generator validates candidate inputs against a locked template version
// and produces immutable instance records.
type Generator struct {
	templates *template.Library
	store     *Store
	validator *schema.Validator
	audit     *audit.Writer
}

// NewGenerator creates a Generator.
func NewGenerator(lib *template.Library, store *Store, aw *audit.Writer) *Generator {
	return &Generator{
		templates: lib,
		store:     store,
		validator: schema.New(),
		audit:     aw,
	}
}

// Generate loads the exact template version, validates inputs against its
// input schema in one pass, and persists a fresh pending instance. Nothing
// is persisted when validation fails.
func (g *Generator) Generate(projectSlug, templateID string, templateVersion int, inputs map[string]any, intentHash string, domainProfiles []string) (*models.TaskInstance, error) {
	if err := models.ValidateProjectSlug(projectSlug); err != nil {
		return nil, err
	}
	for _, id := range domainProfiles {
		if err := models.ValidateProfileID(id); err != nil {
			return nil, err
		}
	}

	tpl, err := g.templates.LoadVersion(templateID, templateVersion)
	if err != nil {
		return nil, err
	}
	if len(domainProfiles) == 0 {
		domainProfiles = tpl.DefaultProfiles
	}

	normalized, err := normalizeInputs(inputs)
	if err != nil {
		return nil, err
	}
	violations, err := g.validator.Validate(tpl.InputsSchema, normalized)
	if err != nil {
		return nil, fmt.Errorf("template %s@%d input schema: %w", templateID, templateVersion, err)
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{
			Subject:    fmt.Sprintf("inputs for template %s@%d", templateID, templateVersion),
			Violations: violations,
		}
	}

	inst := &models.TaskInstance{
		InstanceID:         uuid.New().String(),
		ProjectSlug:        projectSlug,
		TemplateID:         templateID,
		TemplateVersion:    templateVersion,
		Inputs:             normalized,
		IntentDocumentHash: intentHash,
		DomainProfiles:     domainProfiles,
		CreatedAt:          time.Now().UTC(),
		Status:             models.InstanceStatusPending,
	}
	if err := g.store.Create(inst); err != nil {
		return nil, err
	}

	g.audit.Record("instance.generate", map[string]any{
		"project_slug": projectSlug,
		"template":     fmt.Sprintf("%s@%d", templateID, templateVersion),
		"inputs":       normalized,
	}, "success", inst.InstanceID, "")

	return inst, nil
}

// Get retrieves one instance of a project.
func (g *Generator) Get(projectSlug, instanceID string) (*models.TaskInstance, error) {
	if err := models.ValidateProjectSlug(projectSlug); err != nil {
		return nil, err
	}
	return g.store.Get(projectSlug, instanceID)
}

// List returns the sorted instance ids of a project.
func (g *Generator) List(projectSlug string) ([]string, error) {
	if err := models.ValidateProjectSlug(projectSlug); err != nil {
		return nil, err
	}
	return g.store.List(projectSlug)
}

// normalizeInputs round-trips inputs through JSON so schema validation sees
// the same value shapes a remote caller would send.
func normalizeInputs(inputs map[string]any) (map[string]any, error) {
	if inputs == nil {
		inputs = map[string]any{}
	}
	data, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode inputs: %w", err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	return normalized, nil
}
