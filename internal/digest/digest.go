// Package digest runs one paper through the whole flow: parse, optional
// cleaning, chunking, progressive summarization and structured extraction.
package digest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/paperdigest/internal/chunker"
	"github.com/dgallion1/paperdigest/internal/document"
	"github.com/dgallion1/paperdigest/internal/extract"
	"github.com/dgallion1/paperdigest/internal/llm"
	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/summarize"
)

// ErrNoText is returned when a document yields no extractable text.
var ErrNoText = errors.New("no extractable content")

type Phase string

const (
	PhaseParsing     Phase = "parsing"
	PhaseChunking    Phase = "chunking"
	PhaseSummarizing Phase = "summarizing"
	PhaseExtracting  Phase = "extracting"
)

// Options configures a Service.
type Options struct {
	Parser    parser.Options
	CleanText bool
	MaxWords  int
	Summary   summarize.Options
	Extract   extract.Options
}

// Input is one document to digest. Zero overrides use the service defaults.
type Input struct {
	Data     []byte
	Filename string
	Title    string

	MaxWords    int
	MaxCombined int
	SkipSummary bool
	SkipExtract bool
}

// Hooks observe a run. Every field may be nil.
type Hooks struct {
	OnPhase    func(Phase)
	OnChunks   func(total int)
	OnChunk    func(done, total int)
	OnProgress func(msg string)
}

// Result is the digest of one paper.
type Result struct {
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	KeyInfo     extract.Result `json:"key_info"`
	Chunks      int            `json:"chunks"`
	Pages       int            `json:"pages"`
	PageCount   int            `json:"page_count"`
	Truncated   bool           `json:"truncated,omitempty"`
	ContentHash string         `json:"content_hash"`
	Duration    time.Duration  `json:"-"`
}

// Service is safe for concurrent use; each run builds its own summarizer.
type Service struct {
	client llm.Client
	opts   Options
	log    *slog.Logger

	// Wait is forwarded to every summarizer; nil keeps the real sleep.
	Wait func(ctx context.Context, d time.Duration) error
}

func New(client llm.Client, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = chunker.DefaultConfig().MaxWords
	}
	return &Service{client: client, opts: opts, log: log}
}

// Parse turns raw bytes into document text.
func (s *Service) Parse(data []byte, filename string) (*document.Document, string, error) {
	p, err := parser.ForFile(filename, s.opts.Parser)
	if err != nil {
		return nil, "", err
	}
	doc, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		return nil, "", fmt.Errorf("parse: %w", err)
	}
	text := doc.Text()
	if s.opts.CleanText {
		text = parser.CleanText(text)
	}
	return doc, text, nil
}

// Chunks parses the document and returns its chunks without any remote call.
func (s *Service) Chunks(data []byte, filename string, maxWords int) ([]string, error) {
	_, text, err := s.Parse(data, filename)
	if err != nil {
		return nil, err
	}
	return chunker.Split(text, s.maxWords(maxWords)), nil
}

// Run digests one document. Remote failures degrade the summary or a key-info
// field; only parse errors and empty documents are returned as errors.
func (s *Service) Run(ctx context.Context, in Input, hooks Hooks) (*Result, error) {
	start := time.Now()
	log := s.log.With("filename", in.Filename)

	hooks.phase(PhaseParsing)
	doc, text, err := s.Parse(in.Data, in.Filename)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Title:       doc.Title,
		Pages:       len(doc.Pages),
		PageCount:   doc.PageCount,
		Truncated:   doc.Truncated(),
		ContentHash: ContentHashHex([]byte(text)),
	}
	if in.Title != "" {
		res.Title = in.Title
	}
	if res.Truncated {
		log.Info("page limit reached", "pages_read", res.Pages, "page_count", res.PageCount)
	}

	hooks.phase(PhaseChunking)
	chunks := chunker.Split(text, s.maxWords(in.MaxWords))
	res.Chunks = len(chunks)
	if hooks.OnChunks != nil {
		hooks.OnChunks(len(chunks))
	}
	log.Info("chunked document",
		"chunks", len(chunks),
		"words", chunker.CountWords(text),
		"est_tokens", chunker.EstimateTokens(text),
	)
	for i, c := range chunks {
		log.Debug("chunk", "index", i, "words", chunker.CountWords(c), "est_tokens", chunker.EstimateTokens(c))
	}
	if len(chunks) == 0 {
		return nil, ErrNoText
	}

	if !in.SkipSummary {
		hooks.phase(PhaseSummarizing)
		res.Summary = summarize.FormatSummary(s.summarize(ctx, chunks, in.MaxCombined, hooks))
	}

	if !in.SkipExtract {
		hooks.phase(PhaseExtracting)
		ext := extract.NewExtractor(s.client, s.opts.Extract, log)
		res.KeyInfo = ext.Extract(ctx, text)
	}

	res.Duration = time.Since(start)
	log.Info("digest complete",
		"chunks", res.Chunks,
		"summary_chars", len(res.Summary),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Service) summarize(ctx context.Context, chunks []string, maxCombined int, hooks Hooks) string {
	opts := s.opts.Summary
	if maxCombined > 0 {
		opts.MaxCombinedChars = maxCombined
	}
	sum := summarize.New(s.client, opts, s.log)
	if s.Wait != nil {
		sum.Wait = s.Wait
	}

	done := 0
	perChunk := func(msg string) {
		done++
		if hooks.OnChunk != nil {
			hooks.OnChunk(done, len(chunks))
		}
		hooks.progress(msg)
	}
	summaries := sum.SummarizeChunks(ctx, chunks, perChunk)
	return sum.Combine(ctx, summaries, hooks.progress)
}

func (s *Service) maxWords(override int) int {
	if override > 0 {
		return override
	}
	return s.opts.MaxWords
}

func (h Hooks) phase(p Phase) {
	if h.OnPhase != nil {
		h.OnPhase(p)
	}
}

func (h Hooks) progress(msg string) {
	if h.OnProgress != nil {
		h.OnProgress(msg)
	}
}

// ContentHashHex returns the hex SHA-256 of data.
func ContentHashHex(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}
