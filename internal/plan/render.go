// Package plan renders execution plans from task instances and applies
// them through a two-phase plan/execute state machine.
package plan

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/jcmrs/warpos/internal/models"
)

var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// renderText substitutes {name} placeholders from vars. Placeholders with
// no matching variable stay verbatim: a reviewer sees the leftover braces
// in the rendered plan at the inspection gate.
func renderText(text string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// renderValue turns an input value into its substitution text: scalars
// render literally, compound values as compact JSON.
func renderValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "null"
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// buildVars assembles the substitution table for one instance: every input
// plus a small set of derived convenience variables.
func buildVars(inst *models.TaskInstance) map[string]string {
	vars := map[string]string{}
	for name, value := range inst.Inputs {
		vars[name] = renderValue(value)
	}

	// Built-ins never shadow explicit inputs.
	setDefault(vars, "project_slug", inst.ProjectSlug)
	setDefault(vars, "template_id", inst.TemplateID)
	setDefault(vars, "template_version", strconv.Itoa(inst.TemplateVersion))

	if endpointPath, ok := inst.Inputs["endpoint_path"].(string); ok {
		if resource := deriveResource(endpointPath); resource != "" {
			setDefault(vars, "resource", resource)
		}
	}
	return vars
}

func setDefault(vars map[string]string, name, value string) {
	if _, ok := vars[name]; !ok {
		vars[name] = value
	}
}

// deriveResource returns the last non-parametric segment of an endpoint
// path; segments wrapped in braces are parameters.
func deriveResource(endpointPath string) string {
	segments := strings.Split(endpointPath, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		if seg == "" {
			continue
		}
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			continue
		}
		return seg
	}
	return ""
}

// render produces the plan's steps and verification entries from a
// template and the instance's substitution table.
func render(tpl *models.TaskTemplate, vars map[string]string) ([]models.PlanStep, []models.PlanVerification) {
	steps := make([]models.PlanStep, len(tpl.Steps))
	for i, step := range tpl.Steps {
		steps[i] = models.PlanStep{
			ID:          step.ID,
			Instruction: renderText(step.Instruction, vars),
		}
	}
	var verification []models.PlanVerification
	for _, v := range tpl.Verification {
		verification = append(verification, models.PlanVerification{
			ID:      v.ID,
			Command: renderText(v.Command, vars),
		})
	}
	return steps, verification
}
