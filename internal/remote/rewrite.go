package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pfassina/scribe/internal/note"
)

// RewriteMode selects the kind of rewrite the assistant performs.
type RewriteMode string

const (
	ModePolish RewriteMode = "polish"
	ModeFormat RewriteMode = "format"
)

// ParseRewriteMode validates a user supplied mode name.
func ParseRewriteMode(s string) (RewriteMode, error) {
	switch m := RewriteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePolish, ModeFormat:
		return m, nil
	default:
		return "", &note.ValidationError{Field: "mode", Reason: fmt.Sprintf("unknown rewrite mode %q", s)}
	}
}

// AI modes: proxy sends the body to the authority's rewrite endpoint, direct
// calls an OpenAI compatible chat completions API.
const (
	AIModeProxy  = "proxy"
	AIModeDirect = "direct"
)

// AIOptions configures rewrite requests.
type AIOptions struct {
	Mode    string
	BaseURL string
	Model   string
	APIKey  string
}

var prompts = map[RewriteMode]string{
	ModePolish: "Polish the following text. Reply with the improved text only, " +
		"without any preamble, and keep the Markdown formatting:\n\n",
	ModeFormat: "Reformat the following text as clean Markdown: fix heading levels, " +
		"lists and code blocks. Reply with the formatted text only, without any " +
		"preamble or explanation:\n\n",
}

// RewriteResponse is an open rewrite response. The caller must close Body.
type RewriteResponse struct {
	ContentType string
	Body        io.ReadCloser
}

// Streaming reports whether the response is an event stream rather than a
// single JSON document.
func (r *RewriteResponse) Streaming() bool {
	return strings.HasPrefix(strings.ToLower(r.ContentType), "text/event-stream")
}

// Rewrite submits body for rewriting and returns the open response once the
// status line has been checked.
func (c *Client) Rewrite(ctx context.Context, mode RewriteMode, body string) (*RewriteResponse, error) {
	op := "rewrite " + string(mode)

	var (
		req *http.Request
		err error
	)
	switch c.ai.Mode {
	case AIModeDirect:
		req, err = c.directRewriteRequest(ctx, mode, body)
	default:
		req, err = c.newRequest(ctx, http.MethodPost, c.endpoint("/api/ai/"+string(mode), nil),
			map[string]string{"content": body})
	}
	if err != nil {
		return nil, &note.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "text/event-stream, application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &note.TransportError{Op: op, Err: err}
	}
	if err := checkStatus(op, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	c.log.Debug("rewrite started", "mode", mode, "content_type", resp.Header.Get("Content-Type"))
	return &RewriteResponse{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}

func (c *Client) directRewriteRequest(ctx context.Context, mode RewriteMode, body string) (*http.Request, error) {
	if c.ai.BaseURL == "" || c.ai.Model == "" {
		return nil, fmt.Errorf("direct mode needs ai.base_url and ai.model")
	}

	payload := openai.ChatCompletionRequest{
		Model:  c.ai.Model,
		Stream: true,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompts[mode] + body},
		},
	}
	target := strings.TrimRight(c.ai.BaseURL, "/") + "/chat/completions"
	req, err := c.newRequest(ctx, http.MethodPost, target, payload)
	if err != nil {
		return nil, err
	}
	// The authority token is not meant for a third party.
	req.Header.Del(TokenHeader)
	if c.ai.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.ai.APIKey)
	}
	return req, nil
}
