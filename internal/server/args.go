package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jcmrs/warpos/internal/models"
)

// reqString extracts a required string argument.
func reqString(args map[string]any, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return value, nil
}

// optString extracts an optional string argument.
func optString(args map[string]any, name string) string {
	value, _ := args[name].(string)
	return value
}

// reqInt extracts a required integer argument. JSON numbers arrive as
// float64; a fractional value is rejected.
func reqInt(args map[string]any, name string) (int, error) {
	switch value := args[name].(type) {
	case float64:
		if value != float64(int(value)) {
			return 0, fmt.Errorf("argument %q must be an integer", name)
		}
		return int(value), nil
	case int:
		return value, nil
	default:
		return 0, fmt.Errorf("missing required argument %q", name)
	}
}

// optInt extracts an optional integer argument; absent yields zero.
func optInt(args map[string]any, name string) (int, error) {
	if _, ok := args[name]; !ok {
		return 0, nil
	}
	return reqInt(args, name)
}

// optStringSlice extracts an optional list-of-strings argument.
func optStringSlice(args map[string]any, name string) ([]string, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be a list of strings", name)
	}
	out := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("argument %q must be a list of strings", name)
		}
		out[i] = s
	}
	return out, nil
}

// optObject extracts an optional object argument.
func optObject(args map[string]any, name string) (map[string]any, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return map[string]any{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("argument %q must be an object", name)
	}
	return obj, nil
}

// jsonResult marshals a payload into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError maps domain failures onto tool-level errors with a single
// human-readable message; anything unexpected propagates to the transport.
func toolError(err error) (*mcp.CallToolResult, error) {
	var (
		nf *models.NotFoundError
		ve *models.ValidationError
		ce *models.CycleError
		se *models.StateError
	)
	switch {
	case asAny(err, &nf, &ve, &ce, &se):
		return mcp.NewToolResultError(err.Error()), nil
	default:
		return nil, err
	}
}

func asAny(err error, targets ...any) bool {
	for _, target := range targets {
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
