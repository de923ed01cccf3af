package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
)

// Heading represents a markdown heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-based line number
}

// Indented renders the heading for an outline, two spaces per level.
func (h Heading) Indented() string {
	return strings.Repeat("  ", h.Level-1) + h.Text
}

// ExtractHeadings returns the ATX and setext headings of content in order.
// Frontmatter is skipped.
func ExtractHeadings(content []byte) []Heading {
	return defaultParser.Parse(content).Headings
}

// collectHeadings walks doc for heading nodes. lineOffset is added to the
// line numbers when the source was cut out of a larger document.
func collectHeadings(doc ast.Node, source []byte, lineOffset int) []Heading {
	var headings []Heading
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		text := strings.TrimSpace(inlineText(h, source))
		if text == "" {
			return ast.WalkSkipChildren, nil
		}
		line := 0
		if lines := h.Lines(); lines.Len() > 0 {
			line = bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
		}
		headings = append(headings, Heading{
			Level: h.Level,
			Text:  text,
			Line:  line + lineOffset,
		})
		return ast.WalkSkipChildren, nil
	})
	return headings
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}
