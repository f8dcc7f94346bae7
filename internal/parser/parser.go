package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
)

// Parser converts raw document bytes into plain document text.
type Parser interface {
	Parse(r io.Reader, filename string) (*document.Document, error)
}

// Options configures parsers that need it.
type Options struct {
	MaxPages          int  // PDF pages to extract; <= 0 means DefaultMaxPages
	FallbackPdftotext bool // Retry PDF extraction with the pdftotext binary
}

// DefaultMaxPages bounds how much of a PDF is read.
const DefaultMaxPages = 30

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf":      true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{MaxPages: opts.MaxPages, FallbackPdftotext: opts.FallbackPdftotext}, nil
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// titleFromFilename strips directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// blocks accumulates headings and paragraphs as blank-line separated text,
// the layout the chunker splits on.
type blocks struct {
	sb strings.Builder
}

func (b *blocks) add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.sb.Len() > 0 {
		b.sb.WriteString("\n\n")
	}
	b.sb.WriteString(text)
}

func (b *blocks) String() string { return b.sb.String() }

// singlePage wraps unpaginated text into a Document.
func singlePage(title, text string) *document.Document {
	doc := &document.Document{Title: title, PageCount: 1}
	if text != "" {
		doc.Pages = []string{text}
	}
	return doc
}
