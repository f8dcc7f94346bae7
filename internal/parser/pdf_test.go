package parser

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		data []byte
		want bool
	}{
		{[]byte("%PDF-1.7\n..."), true},
		{[]byte("%PDF"), true},
		{[]byte("PK\x03\x04"), false},
		{[]byte(""), false},
		{[]byte(" %PDF-1.4"), false},
	}
	for _, tc := range tests {
		if got := ValidatePDF(tc.data); got != tc.want {
			t.Errorf("ValidatePDF(%q) = %v, want %v", tc.data, got, tc.want)
		}
	}
}

func TestPDFParser_RejectsNonPDF(t *testing.T) {
	p := &PDFParser{}
	_, err := p.Parse(strings.NewReader("just text"), "fake.pdf")
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestPageCount_RejectsNonPDF(t *testing.T) {
	if _, err := PageCount([]byte("hello")); !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestPDFParser_CorruptBody(t *testing.T) {
	p := &PDFParser{}
	if _, err := p.Parse(strings.NewReader("%PDF-1.4\nnot really a pdf"), "broken.pdf"); err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
}
