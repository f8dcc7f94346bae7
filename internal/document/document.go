package document

import "strings"

// Document is the plain-text form of an uploaded paper.
type Document struct {
	Title string   // Document title (from metadata or filename)
	Pages []string // Extracted page text in reading order; one entry for unpaginated formats

	// PageCount is the number of pages in the source file. It can be larger
	// than len(Pages) when extraction stopped at a page limit.
	PageCount int
}

// Text joins the extracted pages with newlines.
func (d *Document) Text() string {
	if d == nil {
		return ""
	}
	return strings.Join(d.Pages, "\n")
}

// Truncated reports whether pages were dropped by a page limit.
func (d *Document) Truncated() bool {
	return d != nil && d.PageCount > len(d.Pages)
}
