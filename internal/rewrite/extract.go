package rewrite

import (
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pfassina/scribe/internal/note"
)

var errNoText = errors.New("no text field in response")

// ExtractText pulls the rewritten text out of a single JSON response. The
// fields are tried in order: content, message, choices[0].message.content,
// choices[0].delta.content.
func ExtractText(data []byte) (string, error) {
	var top struct {
		Content *string         `json:"content"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(data, &top); err != nil {
		return "", &note.DecodeError{Record: clip(string(data)), Err: err}
	}
	if top.Content != nil {
		return *top.Content, nil
	}
	if msg, ok := messageText(top.Message); ok {
		return msg, nil
	}

	var completion openai.ChatCompletionResponse
	if json.Unmarshal(data, &completion) == nil && len(completion.Choices) > 0 &&
		completion.Choices[0].Message.Content != "" {
		return completion.Choices[0].Message.Content, nil
	}

	var chunk openai.ChatCompletionStreamResponse
	if json.Unmarshal(data, &chunk) == nil && len(chunk.Choices) > 0 &&
		chunk.Choices[0].Delta.Content != "" {
		return chunk.Choices[0].Delta.Content, nil
	}

	return "", &note.DecodeError{Record: clip(string(data)), Err: errNoText}
}

// messageText accepts "message" as a plain string or as {"content": ...}.
func messageText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	var obj struct {
		Content *string `json:"content"`
	}
	if json.Unmarshal(raw, &obj) == nil && obj.Content != nil {
		return *obj.Content, true
	}
	return "", false
}
