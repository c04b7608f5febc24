// Package schema validates arbitrary values against JSON Schema documents.
//
// It is a thin adapter over santhosh-tekuri/jsonschema that flattens the
// library's cause tree into a complete violation list, so a caller sees
// every failed constraint in one pass rather than only the first.
package schema

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jcmrs/warpos/internal/models"
)

// Validator compiles and evaluates JSON Schema documents. Pure, no I/O.
type Validator struct {
	draft *jsonschema.Draft
}

// New creates a Validator using Draft 2020-12.
func New() *Validator {
	return &Validator{draft: jsonschema.Draft2020}
}

// Compile compiles a raw schema document.
func (v *Validator) Compile(doc []byte) (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = v.draft
	const url = "inline://schema.json"
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("schema load failed: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema compile failed: %w", err)
	}
	return compiled, nil
}

// Validate checks value against the raw schema document and returns every
// violation found. A nil return means the value conforms.
func (v *Validator) Validate(doc []byte, value any) ([]models.Violation, error) {
	compiled, err := v.Compile(doc)
	if err != nil {
		return nil, err
	}
	return ValidateCompiled(compiled, value), nil
}

// ValidateCompiled checks value against an already-compiled schema.
func ValidateCompiled(s *jsonschema.Schema, value any) []models.Violation {
	err := s.Validate(value)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []models.Violation{{Message: err.Error()}}
	}
	var out []models.Violation
	collect(ve, &out)
	if len(out) == 0 {
		out = append(out, models.Violation{
			Field:   instancePath(ve.InstanceLocation),
			Message: ve.Message,
		})
	}
	return out
}

// collect walks the cause tree and keeps the leaves, which carry the
// concrete constraint failures.
func collect(ve *jsonschema.ValidationError, out *[]models.Violation) {
	if len(ve.Causes) == 0 {
		*out = append(*out, models.Violation{
			Field:   instancePath(ve.InstanceLocation),
			Message: ve.Message,
		})
		return
	}
	for _, cause := range ve.Causes {
		collect(cause, out)
	}
}

// instancePath converts a JSON pointer instance location into a dotted
// field path; the document root maps to the empty field.
func instancePath(loc string) string {
	trimmed := strings.Trim(loc, "/")
	if trimmed == "" {
		return ""
	}
	return strings.ReplaceAll(trimmed, "/", ".")
}
