// Package markdown derives read-only views of a document body: its outline,
// frontmatter and counts.
package markdown

import (
	"bytes"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// Parser wraps goldmark for markdown processing.
type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(),
	}
}

var defaultParser = NewParser()

// Parse parses markdown content and returns its derived views.
func (p *Parser) Parse(content []byte) *ParsedNote {
	note := &ParsedNote{
		Content:     content,
		Frontmatter: ExtractFrontmatter(content),
	}

	body := content
	offset := 0
	if note.Frontmatter != nil {
		body = StripFrontmatter(content)
		offset = note.Frontmatter.EndLine
	}

	doc := p.md.Parser().Parse(text.NewReader(body))
	note.Headings = collectHeadings(doc, body, offset)
	note.Stats = Count(body)
	return note
}

// ParsedNote contains extracted metadata from a markdown body.
type ParsedNote struct {
	Content     []byte
	Frontmatter *Frontmatter
	Headings    []Heading
	Stats       Stats
}

// Stats are simple counts over a body.
type Stats struct {
	Words int
	Lines int
	Chars int
}

// Count computes Stats for content.
func Count(content []byte) Stats {
	s := Stats{
		Words: len(bytes.Fields(content)),
		Chars: utf8.RuneCount(content),
	}
	if len(content) > 0 {
		s.Lines = bytes.Count(content, []byte("\n"))
		if content[len(content)-1] != '\n' {
			s.Lines++
		}
	}
	return s
}
