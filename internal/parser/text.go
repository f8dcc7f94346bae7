package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/paperdigest/internal/document"
)

// TextParser handles plain text files. Line breaks inside a paragraph are
// kept; runs of blank lines collapse to one.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*document.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out blocks
	var current strings.Builder

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			out.add(current.String())
			current.Reset()
			continue
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	out.add(current.String())

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return singlePage(titleFromFilename(filename), out.String()), nil
}
