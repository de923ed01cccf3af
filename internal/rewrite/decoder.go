// Package rewrite sends the working body to the rewrite service and applies
// the answer, either all at once or token by token as it streams in.
package rewrite

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/pfassina/scribe/internal/note"
)

// DoneMarker terminates a stream.
const DoneMarker = "[DONE]"

// Decoder turns a chunked event stream into token fragments. Chunks may end
// anywhere, including inside a record; only complete lines are parsed and
// the remainder is carried into the next Feed.
type Decoder struct {
	buf     []byte
	done    bool
	skipped int
	log     *log.Logger
}

// NewDecoder creates a Decoder. Skipped records are logged to logger.
func NewDecoder(logger *log.Logger) *Decoder {
	if logger == nil {
		logger = log.Default()
	}
	return &Decoder{log: logger}
}

// Feed consumes one network chunk and returns the fragments of every record
// it completed.
func (d *Decoder) Feed(chunk []byte) []string {
	if d.done {
		return nil
	}
	d.buf = append(d.buf, chunk...)

	var tokens []string
	for !d.done {
		i := bytes.IndexByte(d.buf, '\n')
		if i < 0 {
			break
		}
		line := string(d.buf[:i])
		d.buf = d.buf[i+1:]
		if tok, ok := d.record(line); ok {
			tokens = append(tokens, tok)
		}
	}
	if d.done {
		d.buf = nil
	}
	return tokens
}

// Close parses an unterminated final line, if any.
func (d *Decoder) Close() []string {
	if d.done || len(d.buf) == 0 {
		return nil
	}
	line := string(d.buf)
	d.buf = nil
	if tok, ok := d.record(line); ok {
		return []string{tok}
	}
	return nil
}

// Done reports whether the terminal marker has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Skipped returns how many malformed records were dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// record parses one line. It reports false for blank lines, comments, other
// event fields, the terminal marker, records without content, and records
// that fail to decode.
func (d *Decoder) record(line string) (string, bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "", strings.HasPrefix(line, ":"):
		return "", false
	case strings.HasPrefix(line, "data:"):
		line = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	case strings.HasPrefix(line, "event:"), strings.HasPrefix(line, "id:"), strings.HasPrefix(line, "retry:"):
		return "", false
	}

	if line == DoneMarker {
		d.done = true
		return "", false
	}

	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		d.skipped++
		d.log.Debug("skipping stream record", "err", &note.DecodeError{Record: clip(line), Err: err})
		return "", false
	}
	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

func clip(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
