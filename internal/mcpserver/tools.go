package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/extract"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DocumentQuery names a document either by local path or by its raw bytes.
type DocumentQuery struct {
	Path     string `json:"path,omitempty"`
	RawData  []byte `json:"raw_data,omitempty"`
	Filename string `json:"filename,omitempty"`
	Title    string `json:"title,omitempty"`

	MaxWords    int `json:"max_words,omitempty"`
	MaxCombined int `json:"max_combined,omitempty"`
}

type SummarizeResponse struct {
	Title     string         `json:"title,omitempty"`
	Summary   string         `json:"summary"`
	KeyInfo   extract.Result `json:"key_info"`
	Chunks    int            `json:"chunks"`
	Pages     int            `json:"pages"`
	Truncated bool           `json:"truncated,omitempty"`
}

type ExtractResponse struct {
	Title   string         `json:"title,omitempty"`
	KeyInfo extract.Result `json:"key_info"`
}

type ChunksResponse struct {
	Count  int      `json:"count"`
	Chunks []string `json:"chunks"`
}

func SummarizeTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paperdigest.summarize",
		Description: "Summarize a research paper (PDF, text, Markdown, HTML or DOCX) and extract its main contributions, methodology and results. Pass either a local path or raw_data with a filename.",
		InputSchema: inputschema,
	}
}

func ExtractTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paperdigest.extract",
		Description: "Extract the main contributions, methodology and results of a research paper without summarizing it.",
		InputSchema: inputschema,
	}
}

func ChunksTool() *mcp.Tool {
	inputschema, err := jsonschema.For[DocumentQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "paperdigest.chunks",
		Description: "Split a document into word-bounded chunks as the summarizer would. Makes no model calls.",
		InputSchema: inputschema,
	}
}

func SummarizeToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery, svc *digest.Service, log *slog.Logger) (*mcp.CallToolResult, *SummarizeResponse, error) {
	in, err := loadInput(query)
	if err != nil {
		return nil, nil, err
	}
	log.Info("summarize tool called", "filename", in.Filename, "bytes", len(in.Data))

	res, err := svc.Run(ctx, in, digest.Hooks{})
	if err != nil {
		return nil, nil, err
	}
	return nil, &SummarizeResponse{
		Title:     res.Title,
		Summary:   res.Summary,
		KeyInfo:   res.KeyInfo,
		Chunks:    res.Chunks,
		Pages:     res.Pages,
		Truncated: res.Truncated,
	}, nil
}

func ExtractToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery, svc *digest.Service, log *slog.Logger) (*mcp.CallToolResult, *ExtractResponse, error) {
	in, err := loadInput(query)
	if err != nil {
		return nil, nil, err
	}
	in.SkipSummary = true
	log.Info("extract tool called", "filename", in.Filename, "bytes", len(in.Data))

	res, err := svc.Run(ctx, in, digest.Hooks{})
	if err != nil {
		return nil, nil, err
	}
	return nil, &ExtractResponse{Title: res.Title, KeyInfo: res.KeyInfo}, nil
}

func ChunksToolHandler(ctx context.Context, req *mcp.CallToolRequest, query DocumentQuery, svc *digest.Service) (*mcp.CallToolResult, *ChunksResponse, error) {
	in, err := loadInput(query)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := svc.Chunks(in.Data, in.Filename, in.MaxWords)
	if err != nil {
		return nil, nil, err
	}
	if chunks == nil {
		chunks = []string{}
	}
	return nil, &ChunksResponse{Count: len(chunks), Chunks: chunks}, nil
}

// loadInput resolves the query into document bytes. A path wins over raw
// data; raw data needs a filename so the parser can be chosen.
func loadInput(q DocumentQuery) (digest.Input, error) {
	in := digest.Input{
		Filename:    q.Filename,
		Title:       q.Title,
		MaxWords:    q.MaxWords,
		MaxCombined: q.MaxCombined,
	}
	switch {
	case q.Path != "":
		data, err := os.ReadFile(q.Path)
		if err != nil {
			return in, fmt.Errorf("read %s: %w", q.Path, err)
		}
		in.Data = data
		if in.Filename == "" {
			in.Filename = filepath.Base(q.Path)
		}
	case len(q.RawData) > 0:
		if in.Filename == "" {
			return in, errors.New("filename is required with raw_data")
		}
		in.Data = q.RawData
	default:
		return in, errors.New("either path or raw_data is required")
	}
	return in, nil
}
