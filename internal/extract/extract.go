// Package extract pulls labeled facets out of a paper: its main
// contributions, methodology and results.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dgallion1/paperdigest/internal/llm"
)

const (
	KeyContributions = "contributions"
	KeyMethodology   = "methodology"
	KeyResults       = "results"

	DefaultMaxTokens = 2000
)

// Aspect pairs a result key with the phrase used in its prompt.
type Aspect struct {
	Key    string
	Phrase string
}

// Aspects are requested in this order.
var Aspects = []Aspect{
	{Key: KeyContributions, Phrase: "main contributions"},
	{Key: KeyMethodology, Phrase: "methodology"},
	{Key: KeyResults, Phrase: "results"},
}

// Result holds one text per aspect. A failed aspect is an empty string.
type Result struct {
	Contributions string `json:"contributions"`
	Methodology   string `json:"methodology"`
	Results       string `json:"results"`
}

// Map returns the result keyed by aspect; every key is always present.
func (r Result) Map() map[string]string {
	return map[string]string{
		KeyContributions: r.Contributions,
		KeyMethodology:   r.Methodology,
		KeyResults:       r.Results,
	}
}

func (r *Result) set(key, value string) {
	switch key {
	case KeyContributions:
		r.Contributions = value
	case KeyMethodology:
		r.Methodology = value
	case KeyResults:
		r.Results = value
	}
}

// Options controls the extraction requests.
type Options struct {
	MaxTokens int
	// Temperature is nil for the default; zero is a valid setting.
	Temperature *float64
	TopP        float64
}

// Extractor issues one request per aspect against the whole text.
type Extractor struct {
	client llm.Client
	opts   Options
	log    *slog.Logger
}

func NewExtractor(client llm.Client, opts Options, log *slog.Logger) *Extractor {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == nil {
		opts.Temperature = llm.Float(llm.DefaultTemperature)
	}
	if opts.TopP <= 0 {
		opts.TopP = llm.DefaultTopP
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Extractor{client: client, opts: opts, log: log}
}

// Extract runs the aspects sequentially. A failure only empties its own field.
func (e *Extractor) Extract(ctx context.Context, text string) Result {
	var res Result
	for _, a := range Aspects {
		if ctx.Err() != nil {
			e.log.Warn("extraction cancelled", "aspect", a.Key, "error", ctx.Err())
			break
		}
		out, err := e.client.Complete(ctx, llm.Request{
			System:      SystemPrompt,
			User:        BuildAspectPrompt(a.Phrase, text),
			MaxTokens:   e.opts.MaxTokens,
			Temperature: *e.opts.Temperature,
			TopP:        e.opts.TopP,
		})
		if err != nil {
			e.log.Warn("extraction failed", "aspect", a.Key, "error", err)
			continue
		}
		res.set(a.Key, strings.TrimSpace(out))
	}
	return res
}
