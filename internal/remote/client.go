// Package remote talks to the note authority: the REST service that owns
// documents and folders, its rewrite endpoints, and its change feed.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pfassina/scribe/internal/note"
)

// TokenHeader carries the shared secret expected by the authority.
const TokenHeader = "X-Scribe-Token"

// maxErrorBody bounds how much of an error response is read for its detail.
const maxErrorBody = 4 << 10

// Authority is the set of directory and document operations the engine
// performs against the remote source of truth.
type Authority interface {
	ListDocuments(ctx context.Context) ([]note.Location, error)
	ListFolders(ctx context.Context) ([]string, error)
	GetDocument(ctx context.Context, loc note.Location) (note.Document, error)
	WriteDocument(ctx context.Context, doc note.Document) error
	DeleteDocument(ctx context.Context, loc note.Location) error
	MoveDocument(ctx context.Context, from, to note.Location) error
	CreateFolder(ctx context.Context, name string) error
	RenameFolder(ctx context.Context, oldName, newName string) error
	DeleteFolder(ctx context.Context, name string) error
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	AI         AIOptions
	Logger     *log.Logger
}

// Client is an HTTP implementation of Authority.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
	ai    AIOptions
	log   *log.Logger
}

var _ Authority = (*Client)(nil)

// New creates a client for the authority at opts.BaseURL.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server url is required")
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url must be http or https, got %q", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		// No overall timeout: rewrite streams can run for a long time.
		hc = &http.Client{Transport: http.DefaultTransport}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ai := opts.AI
	if ai.Mode == "" {
		ai.Mode = AIModeProxy
	}

	return &Client{
		base:  base,
		token: opts.Token,
		http:  hc,
		ai:    ai,
		log:   logger.WithPrefix("remote"),
	}, nil
}

// BaseURL returns the authority's base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, in any) (*http.Request, error) {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}
	return req, nil
}

// do performs one JSON round trip and maps failures onto the error taxonomy.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	req, err := c.newRequest(ctx, method, c.endpoint(path, query), in)
	if err != nil {
		return &note.TransportError{Op: op, Err: err}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "op", op, "err", err)
		return &note.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("request", "op", op, "status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"), "elapsed", time.Since(start))

	if err := checkStatus(op, resp); err != nil {
		return err
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &note.TransportError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// checkStatus converts a non-2xx response into a ConflictError (409) or a
// TransportError.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	detail := errorDetail(resp.Body)
	if resp.StatusCode == http.StatusConflict {
		return &note.ConflictError{Op: op, Detail: detail}
	}
	return &note.TransportError{Op: op, Status: resp.StatusCode, Detail: detail}
}

// errorDetail extracts {"error": "..."} from a response body, falling back to
// the trimmed text for plain http.Error responses.
func errorDetail(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(data))
}
