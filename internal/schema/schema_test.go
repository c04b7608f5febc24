package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personSchema = `{
	"type": "object",
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"email": {"type": "string"}
	},
	"required": ["name", "age"]
}`

func TestValidateConforming(t *testing.T) {
	v := New()

	violations, err := v.Validate([]byte(personSchema), map[string]any{
		"name": "ada",
		"age":  36,
	})
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidateReportsAllViolations(t *testing.T) {
	v := New()

	// Missing required "name" and wrong-typed "age": both must surface.
	violations, err := v.Validate([]byte(personSchema), map[string]any{
		"age": "not-a-number",
	})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(violations), 2)

	var messages []string
	for _, violation := range violations {
		messages = append(messages, violation.String())
	}
	joined := ""
	for _, m := range messages {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "name")
	assert.Contains(t, joined, "age")
}

func TestValidateFieldPaths(t *testing.T) {
	v := New()

	violations, err := v.Validate([]byte(personSchema), map[string]any{
		"name": "ada",
		"age":  -3,
	})
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "age", violations[0].Field)
}

func TestCompileRejectsBrokenSchema(t *testing.T) {
	v := New()

	_, err := v.Compile([]byte(`{"type": 42}`))
	require.Error(t, err)
}
