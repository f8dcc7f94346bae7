package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/paperdigest/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser extracts page text with ledongthuc/pdf and, when enabled, falls
// back to the pdftotext binary. Only the first MaxPages pages are read.
type PDFParser struct {
	MaxPages          int
	FallbackPdftotext bool
}

var errNoText = errors.New("no extractable text")

func (p *PDFParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if !ValidatePDF(data) {
		return nil, ErrNotPDF
	}

	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	total, countErr := PageCount(data)

	pages, err := extractPDFPages(data, maxPages)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(data, maxPages)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	doc := &document.Document{
		Title: titleFromFilename(filename),
		Pages: pages,
	}
	if countErr == nil {
		doc.PageCount = total
	} else {
		doc.PageCount = len(pages)
	}
	return doc, nil
}

func extractPDFPages(data []byte, maxPages int) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	n := min(reader.NumPage(), maxPages)
	hasText := false
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		if strings.TrimSpace(text) != "" {
			hasText = true
		}
		pages = append(pages, text)
	}
	if !hasText {
		return nil, errNoText
	}
	return pages, nil
}

func extractPdftotext(data []byte, maxPages int) ([]string, error) {
	tmp, err := os.CreateTemp("", "paperdigest-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "pdftotext", "-l", strconv.Itoa(maxPages), "-layout", tmpPath, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	// pdftotext ends every page with a form feed.
	pages := strings.Split(strings.TrimSuffix(string(out), "\f"), "\f")
	if strings.TrimSpace(strings.Join(pages, "")) == "" {
		return nil, errNoText
	}
	return pages, nil
}
