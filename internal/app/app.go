// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/paperdigest/internal/config"
	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/extract"
	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

func LLMOptions(cfg config.Config) llm.Options {
	return llm.Options{
		Provider:          cfg.LLM.Provider,
		APIKey:            cfg.LLM.APIKey,
		Model:             cfg.LLM.Model,
		BaseURL:           cfg.LLM.BaseURL,
		Timeout:           cfg.LLM.Timeout,
		RequestsPerMinute: cfg.LLM.RequestsPerMinute,
	}
}

// DigestOptions maps the loaded configuration onto the digest service.
func DigestOptions(cfg config.Config) digest.Options {
	delay := cfg.Summary.CallDelay
	if delay == 0 {
		// Zero means "use the default" downstream; the config treats it as off.
		delay = -1
	}
	return digest.Options{
		Parser: parser.Options{
			MaxPages:          cfg.PDF.MaxPages,
			FallbackPdftotext: cfg.PDF.FallbackPdftotext,
		},
		CleanText: cfg.Summary.CleanText,
		MaxWords:  cfg.Summary.MaxWordsPerChunk,
		Summary: summarize.Options{
			MaxCombinedChars: cfg.Summary.MaxCombinedChars,
			BatchSize:        cfg.Summary.BatchSize,
			Delay:            delay,
			ChunkMaxTokens:   cfg.Summary.ChunkMaxTokens,
			BatchMaxTokens:   cfg.Summary.BatchMaxTokens,
			FinalMaxTokens:   cfg.Summary.FinalMaxTokens,
			Temperature:      llm.Float(cfg.LLM.Temperature),
			TopP:             cfg.LLM.TopP,
		},
		Extract: extract.Options{
			MaxTokens:   cfg.Summary.ExtractMaxTokens,
			Temperature: llm.Float(cfg.LLM.Temperature),
			TopP:        cfg.LLM.TopP,
		},
	}
}

// NewService builds the LLM client and the digest service on top of it.
func NewService(ctx context.Context, cfg config.Config, log *slog.Logger) (*digest.Service, *llm.Instrumented, error) {
	client, err := llm.New(ctx, LLMOptions(cfg), log)
	if err != nil {
		return nil, nil, fmt.Errorf("llm client: %w", err)
	}
	return digest.New(client, DigestOptions(cfg), log), client, nil
}
