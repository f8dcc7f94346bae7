package parser

import (
	"strings"
	"testing"
)

func TestHTMLParser_Blocks(t *testing.T) {
	input := `<html><head><title>Deep Things</title><style>p{}</style></head>
<body>
<nav>Home | About</nav>
<h1>Deep Things</h1>
<h2>Introduction</h2>
<p>We   introduce
   deep things.</p>
<ul><li>one</li><li>two</li></ul>
<script>var x = 1;</script>
<h2>Conclusion</h2>
<p>They work.<br>Mostly.</p>
</body></html>`

	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Deep Things" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}

	want := "Deep Things\n\nIntroduction\n\nWe introduce deep things.\n\none\n\ntwo\n\nConclusion\n\nThey work.\nMostly."
	if doc.Text() != want {
		t.Errorf("unexpected text:\n got %q\nwant %q", doc.Text(), want)
	}
}

func TestHTMLParser_NoTitle(t *testing.T) {
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader("<p>hello</p>"), "paper.htm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "paper" {
		t.Errorf("expected filename title, got %q", doc.Title)
	}
	if doc.Text() != "hello" {
		t.Errorf("unexpected text %q", doc.Text())
	}
}
