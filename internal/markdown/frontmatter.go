package markdown

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter is the YAML block at the top of a document.
type Frontmatter struct {
	Title   string
	Tags    []string
	Raw     map[string]any
	EndLine int // 1-based line of the closing delimiter
}

const delimiter = "---"

// splitFrontmatter returns the YAML between the delimiters, the rest of the
// document, and the closing delimiter's line. ok is false when there is no
// closed block.
func splitFrontmatter(content []byte) (block, rest []byte, endLine int, ok bool) {
	lines := bytes.SplitAfter(content, []byte("\n"))
	if len(lines) == 0 || strings.TrimSpace(string(lines[0])) != delimiter {
		return nil, content, 0, false
	}
	offset := len(lines[0])
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(string(lines[i])) == delimiter {
			block = content[len(lines[0]):offset]
			rest = content[offset+len(lines[i]):]
			return block, rest, i + 1, true
		}
		offset += len(lines[i])
	}
	return nil, content, 0, false
}

// ExtractFrontmatter parses the leading --- delimited YAML block. It returns
// nil when there is none or it is not valid YAML.
func ExtractFrontmatter(content []byte) *Frontmatter {
	block, _, endLine, ok := splitFrontmatter(content)
	if !ok {
		return nil
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(block, &raw); err != nil {
		return nil
	}

	fm := &Frontmatter{Raw: raw, EndLine: endLine}
	if title, ok := raw["title"].(string); ok {
		fm.Title = title
	}
	switch tags := raw["tags"].(type) {
	case []any:
		for _, t := range tags {
			if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
				fm.Tags = append(fm.Tags, strings.TrimSpace(s))
			}
		}
	case string:
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				fm.Tags = append(fm.Tags, t)
			}
		}
	}
	return fm
}

// StripFrontmatter returns content without its frontmatter block.
func StripFrontmatter(content []byte) []byte {
	_, rest, _, _ := splitFrontmatter(content)
	return rest
}
