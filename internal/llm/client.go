// Package llm provides the client for the external language-model provider.
package llm

import "context"

// Request is one completion request. System carries the compiled profile
// instruction text verbatim when the caller has one.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Client is the provider-facing interface the rest of the system consumes.
type Client interface {
	// Complete sends one prompt and returns the assembled text response.
	Complete(ctx context.Context, req Request) (string, error)
}
