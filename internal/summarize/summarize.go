// Package summarize reduces an arbitrarily long paper to one bounded summary.
// Every chunk is summarized on its own, then the partial summaries are
// combined in fixed-size batches, round after round, until they fit a single
// final request.
package summarize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgallion1/paperdigest/internal/llm"
)

const (
	DefaultMaxCombinedChars = 3000
	DefaultBatchSize        = 3
	DefaultDelay            = time.Second

	DefaultChunkMaxTokens = 1000
	DefaultBatchMaxTokens = 1500
	DefaultFinalMaxTokens = 2000
)

// Options bounds the reduction.
type Options struct {
	// MaxCombinedChars is the budget for the joined summaries of a final call.
	MaxCombinedChars int
	BatchSize        int
	// Delay is slept between consecutive remote calls.
	Delay time.Duration

	ChunkMaxTokens int
	BatchMaxTokens int
	FinalMaxTokens int

	// Temperature is nil for the default; zero is a valid setting.
	Temperature *float64
	TopP        float64
}

func DefaultOptions() Options {
	return Options{
		MaxCombinedChars: DefaultMaxCombinedChars,
		BatchSize:        DefaultBatchSize,
		Delay:            DefaultDelay,
		ChunkMaxTokens:   DefaultChunkMaxTokens,
		BatchMaxTokens:   DefaultBatchMaxTokens,
		FinalMaxTokens:   DefaultFinalMaxTokens,
		Temperature:      llm.Float(llm.DefaultTemperature),
		TopP:             llm.DefaultTopP,
	}
}

// withDefaults fills zero fields. A negative Delay disables the pause.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxCombinedChars <= 0 {
		o.MaxCombinedChars = d.MaxCombinedChars
	}
	if o.BatchSize < 2 {
		o.BatchSize = d.BatchSize
	}
	if o.Delay == 0 {
		o.Delay = d.Delay
	}
	if o.ChunkMaxTokens <= 0 {
		o.ChunkMaxTokens = d.ChunkMaxTokens
	}
	if o.BatchMaxTokens <= 0 {
		o.BatchMaxTokens = d.BatchMaxTokens
	}
	if o.FinalMaxTokens <= 0 {
		o.FinalMaxTokens = d.FinalMaxTokens
	}
	if o.Temperature == nil {
		o.Temperature = d.Temperature
	}
	if o.TopP <= 0 {
		o.TopP = d.TopP
	}
	return o
}

// ProgressFunc receives human-readable status lines. It may be nil.
type ProgressFunc func(msg string)

func (p ProgressFunc) report(format string, args ...any) {
	if p != nil {
		p(fmt.Sprintf(format, args...))
	}
}

// Summarizer drives chunk summarization and progressive combination. Calls
// are issued one at a time in document order and never retried. Every call
// after the first is preceded by the configured delay, so a Summarizer
// serves one document and is not safe for concurrent use.
type Summarizer struct {
	client llm.Client
	opts   Options
	log    *slog.Logger
	called bool

	// Wait pauses between remote calls. Tests replace it to skip the delay.
	Wait func(ctx context.Context, d time.Duration) error
}

func New(client llm.Client, opts Options, log *slog.Logger) *Summarizer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{
		client: client,
		opts:   opts.withDefaults(),
		log:    log,
		Wait:   sleep,
	}
}

// Options returns the effective options after defaults were applied.
func (s *Summarizer) Options() Options { return s.opts }

// Reduce summarizes every chunk and combines the non-empty results. A failed
// chunk contributes nothing; the rest are still processed.
func (s *Summarizer) Reduce(ctx context.Context, chunks []string, progress ProgressFunc) string {
	return s.Combine(ctx, s.SummarizeChunks(ctx, chunks, progress), progress)
}

// SummarizeChunks returns one summary per chunk that produced output, in order.
func (s *Summarizer) SummarizeChunks(ctx context.Context, chunks []string, progress ProgressFunc) []string {
	summaries := make([]string, 0, len(chunks))
	total := len(chunks)
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			s.log.Warn("summarization cancelled", "chunk", i, "total", total, "error", ctx.Err())
			break
		}
		out := s.call(ctx, "chunk", llm.Request{
			System:    chunkSystemPrompt,
			User:      chunkPrompt(chunk),
			MaxTokens: s.opts.ChunkMaxTokens,
		})
		if out != "" {
			summaries = append(summaries, out)
		}
		progress.report("Processed chunk %d/%d (%d%%)", i+1, total, percent(i+1, total))
	}
	return summaries
}

// Combine reduces summaries to one string. One item is returned as is
// without a remote call. Items that fit the combined budget go to a single
// final call. Otherwise they are combined in batches and the batch outputs
// are reduced again; every round shrinks the item count, so it terminates.
func (s *Summarizer) Combine(ctx context.Context, summaries []string, progress ProgressFunc) string {
	items := nonEmpty(summaries)
	if len(items) > 1 {
		progress.report("Combining summaries...")
	}

	for round := 1; ; round++ {
		switch len(items) {
		case 0:
			return ""
		case 1:
			return items[0]
		}

		if combinedSize(items) <= s.opts.MaxCombinedChars {
			return s.final(ctx, items)
		}

		next, ok := s.combineRound(ctx, items, progress)
		s.log.Debug("combine round", "round", round, "in", len(items), "out", len(next))
		if !ok || len(next) == 0 {
			// Interrupted, or nothing survived this round.
			return naiveJoin(items)
		}
		items = next
	}
}

// combineRound reports false when ctx ended before every batch was combined.
func (s *Summarizer) combineRound(ctx context.Context, items []string, progress ProgressFunc) ([]string, bool) {
	batches := Batches(items, s.opts.BatchSize)
	out := make([]string, 0, len(batches))
	for j, batch := range batches {
		if len(batch) == 1 {
			out = append(out, batch[0])
			progress.report("Combining batch %d/%d (%d%%)", j+1, len(batches), percent(j+1, len(batches)))
			continue
		}
		if ctx.Err() != nil {
			s.log.Warn("combination cancelled", "batch", j, "total", len(batches), "error", ctx.Err())
			return out, false
		}
		combined := s.call(ctx, "batch", llm.Request{
			System:    batchSystemPrompt,
			User:      batchPrompt(batch),
			MaxTokens: s.opts.BatchMaxTokens,
		})
		if combined != "" {
			out = append(out, combined)
		}
		progress.report("Combining batch %d/%d (%d%%)", j+1, len(batches), percent(j+1, len(batches)))
	}
	return out, ctx.Err() == nil
}

func (s *Summarizer) final(ctx context.Context, items []string) string {
	if ctx.Err() != nil {
		return naiveJoin(items)
	}
	out := s.call(ctx, "final", llm.Request{
		System:    finalSystemPrompt,
		User:      finalPrompt(items),
		MaxTokens: s.opts.FinalMaxTokens,
	})
	if out == "" {
		return naiveJoin(items)
	}
	return out
}

// call maps any failure to an empty result.
func (s *Summarizer) call(ctx context.Context, stage string, req llm.Request) string {
	if s.called {
		s.pause(ctx)
	}
	s.called = true

	req.Temperature = *s.opts.Temperature
	req.TopP = s.opts.TopP
	out, err := s.client.Complete(ctx, req)
	if err != nil {
		s.log.Warn("summarization call failed", "stage", stage, "error", err)
		return ""
	}
	return strings.TrimSpace(out)
}

func (s *Summarizer) pause(ctx context.Context) {
	if s.opts.Delay <= 0 || s.Wait == nil {
		return
	}
	if err := s.Wait(ctx, s.opts.Delay); err != nil {
		s.log.Debug("pause interrupted", "error", err)
	}
}

// Batches partitions items into consecutive groups of size n; the last group
// may be smaller.
func Batches(items []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	var out [][]string
	for i := 0; i < len(items); i += n {
		out = append(out, items[i:min(i+n, len(items))])
	}
	return out
}

// combinedSize is the character count of the items joined by single spaces.
func combinedSize(items []string) int {
	n := len(items) - 1
	for _, it := range items {
		n += utf8.RuneCountInString(it)
	}
	return n
}

func naiveJoin(items []string) string {
	return strings.Join(items, "\n\n")
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}

func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return done * 100 / total
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
