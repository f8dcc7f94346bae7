// Package llm is the boundary to remote completion services. Callers send a
// system prompt, a user prompt and sampling parameters and get text back.
package llm

import (
	"context"
	"errors"
	"fmt"
)

const (
	DefaultTemperature = 0.7
	DefaultTopP        = 0.9
)

// Request is a single role-tagged completion request.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Client is a remote completion service.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts an ordinary function to Client.
type ClientFunc func(ctx context.Context, req Request) (string, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// APIError is a non-2xx answer from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api status %d: %s", e.Provider, e.StatusCode, truncate(e.Message, 200))
}

// Retryable reports whether the failure looks transient (rate limit or server error).
func (e *APIError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}

// IsRetryable reports whether err wraps a transient APIError.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Float returns a pointer to v, for optional sampling settings.
func Float(v float64) *float64 { return &v }
