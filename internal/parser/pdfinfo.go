package parser

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF is returned for uploads that do not start with the PDF header.
var ErrNotPDF = errors.New("not a pdf file")

var pdfMagic = []byte("%PDF")

// ValidatePDF reports whether data starts with the PDF header.
func ValidatePDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}

// PageCount reads and validates the cross-reference structure with pdfcpu and
// returns the number of pages.
func PageCount(data []byte) (int, error) {
	if !ValidatePDF(data) {
		return 0, ErrNotPDF
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}
