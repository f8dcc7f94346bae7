package llm

import (
	"context"
	"log/slog"
	"time"
)

// Instrumented records latency and failures for every call and logs them.
type Instrumented struct {
	next     Client
	provider string
	model    string
	log      *slog.Logger

	Stats *Stats
}

func NewInstrumented(next Client, provider, model string, log *slog.Logger) *Instrumented {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Instrumented{
		next:     next,
		provider: provider,
		model:    model,
		log:      log,
		Stats:    NewStats(time.Hour),
	}
}

func (c *Instrumented) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	out, err := c.next.Complete(ctx, req)
	elapsed := time.Since(start)
	c.Stats.Record(elapsed, err != nil)

	if err != nil {
		level := slog.LevelError
		if IsRetryable(err) {
			level = slog.LevelWarn
		}
		c.log.Log(ctx, level, "completion failed",
			"provider", c.provider,
			"model", c.model,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return "", err
	}
	c.log.Debug("completion",
		"provider", c.provider,
		"model", c.model,
		"max_tokens", req.MaxTokens,
		"input_chars", len(req.System)+len(req.User),
		"output_chars", len(out),
		"duration_ms", elapsed.Milliseconds(),
	)
	return out, nil
}

// Provider returns the backend name.
func (c *Instrumented) Provider() string { return c.provider }

// Model returns the model identifier sent to the backend.
func (c *Instrumented) Model() string { return c.model }
