package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// DefaultModels is the model used when none is configured.
var DefaultModels = map[string]string{
	ProviderGroq:      "mixtral-8x7b-32768",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderGemini:    "gemini-2.5-flash",
}

// Options selects and configures a backend.
type Options struct {
	Provider          string
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// New builds the configured backend, wrapped with throttling and instrumentation.
func New(ctx context.Context, opts Options, log *slog.Logger) (*Instrumented, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderGroq
	}
	model := opts.Model
	if model == "" {
		model = DefaultModels[provider]
	}

	var backend Client
	switch provider {
	case ProviderGroq, ProviderOpenAI:
		backend = NewOpenAIClient(provider, opts.APIKey, model, opts.BaseURL, opts.Timeout)
	case ProviderAnthropic:
		backend = NewAnthropicClient(opts.APIKey, model, opts.BaseURL, opts.Timeout)
	case ProviderGemini:
		g, err := NewGeminiClient(ctx, opts.APIKey, model, opts.Timeout)
		if err != nil {
			return nil, err
		}
		backend = g
	default:
		return nil, fmt.Errorf("unsupported llm provider %q (supported: groq, openai, anthropic, gemini)", opts.Provider)
	}

	return NewInstrumented(NewThrottled(backend, opts.RequestsPerMinute), provider, model, log), nil
}
