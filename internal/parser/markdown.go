package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Headings are emitted
// as their own lines so section labels like "## Methods" reach the chunker
// as bare "Methods".
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	title := titleFromFilename(filename)
	titled := false
	var out blocks
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			h := strings.TrimSpace(string(node.Text(src)))
			if node.Level == 1 && !titled && h != "" {
				title, titled = h, true
			}
			out.add(h)
		case *ast.List:
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				out.add(extractText(item, src))
			}
		default:
			out.add(extractText(n, src))
		}
	}

	return singlePage(title, out.String()), nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks such
// as code blocks carry their text in Lines; everything else in children.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			if c.Type() == ast.TypeBlock && buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
