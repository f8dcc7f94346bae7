package main

import (
	"fmt"
	"strings"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/extract"
)

const emptySection = "_Not available._"

func renderMarkdown(res *digest.Result, withKeyInfo bool) string {
	var b strings.Builder
	if res.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", res.Title)
	}
	b.WriteString("## Executive Summary\n\n")
	b.WriteString(orEmpty(res.Summary))
	b.WriteString("\n")
	if res.Truncated {
		fmt.Fprintf(&b, "\n_Only the first %d of %d pages were read._\n", res.Pages, res.PageCount)
	}
	if withKeyInfo {
		b.WriteString("\n")
		b.WriteString(keyInfoSections(res.KeyInfo))
	}
	return b.String()
}

func renderKeyInfo(title string, info extract.Result) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	b.WriteString(keyInfoSections(info))
	return b.String()
}

func keyInfoSections(info extract.Result) string {
	var b strings.Builder
	b.WriteString("## Key Information\n")
	for _, s := range []struct{ heading, body string }{
		{"Main Contributions", info.Contributions},
		{"Methodology", info.Methodology},
		{"Results", info.Results},
	} {
		fmt.Fprintf(&b, "\n### %s\n\n%s\n", s.heading, orEmpty(s.body))
	}
	return b.String()
}

func orEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return emptySection
	}
	return s
}
