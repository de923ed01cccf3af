package rewrite

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/session"
)

const readSize = 4 << 10

// Service issues rewrite requests.
type Service interface {
	Rewrite(ctx context.Context, mode remote.RewriteMode, body string) (*remote.RewriteResponse, error)
}

// Result summarizes a finished rewrite.
type Result struct {
	Streamed bool
	Tokens   int
	Skipped  int
}

// Pipeline rewrites the session's working body.
type Pipeline struct {
	svc  Service
	sess *session.Session
	log  *log.Logger
}

// New creates a Pipeline.
func New(svc Service, sess *session.Session, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{svc: svc, sess: sess, log: logger.WithPrefix("rewrite")}
}

// Run checkpoints the body, requests a rewrite and applies the answer. Only
// one Run may be in flight per session; a second returns
// note.ErrRewriteInProgress. On failure the checkpoint stays so Undo can
// still restore the original text.
func (p *Pipeline) Run(ctx context.Context, mode remote.RewriteMode) (Result, error) {
	if err := p.sess.BeginRewrite(); err != nil {
		return Result{}, err
	}
	defer p.sess.EndRewrite()

	body := p.sess.Document().Body
	p.sess.TakeCheckpoint()

	resp, err := p.svc.Rewrite(ctx, mode, body)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	p.log.Info("rewrite started", "mode", mode, "streaming", resp.Streaming())

	if resp.Streaming() {
		return p.stream(resp.Body)
	}

	// Some servers stream without the event-stream content type.
	br := bufio.NewReaderSize(resp.Body, readSize)
	if peek, _ := br.Peek(len("data:")); strings.HasPrefix(string(peek), "data:") {
		return p.stream(br)
	}
	return p.single(br)
}

func (p *Pipeline) single(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, &note.TransportError{Op: "rewrite", Err: err}
	}
	text, err := ExtractText(data)
	if err != nil {
		return Result{}, fmt.Errorf("rewrite: %w", err)
	}
	p.sess.SetBody(text)
	return Result{Tokens: 1}, nil
}

// stream applies fragments as they decode. The first fragment replaces the
// body; the rest are appended.
func (p *Pipeline) stream(r io.Reader) (Result, error) {
	dec := NewDecoder(p.log)
	res := Result{Streamed: true}

	apply := func(tokens []string) {
		for _, tok := range tokens {
			if res.Tokens == 0 {
				p.sess.SetBody(tok)
			} else {
				p.sess.AppendBody(tok)
			}
			res.Tokens++
		}
	}

	buf := make([]byte, readSize)
	for !dec.Done() {
		n, err := r.Read(buf)
		if n > 0 {
			apply(dec.Feed(buf[:n]))
		}
		if errors.Is(err, io.EOF) {
			apply(dec.Close())
			break
		}
		if err != nil {
			res.Skipped = dec.Skipped()
			terr := &note.TransportError{Op: "rewrite stream", Err: err}
			if res.Tokens > 0 {
				return res, &note.PartialStreamError{Tokens: res.Tokens, Err: terr}
			}
			return res, terr
		}
	}

	res.Skipped = dec.Skipped()
	p.log.Info("rewrite finished", "tokens", res.Tokens, "skipped", res.Skipped)
	return res, nil
}

// Undo restores the pre-rewrite body. It reports false when no checkpoint is
// held.
func (p *Pipeline) Undo() bool {
	return p.sess.Undo()
}
