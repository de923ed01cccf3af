package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/note"
	"github.com/pfassina/scribe/internal/remote"
	"github.com/pfassina/scribe/internal/session"
)

func (c *cli) rewriteCmd() *cobra.Command {
	var (
		mode  string
		apply bool
	)

	cmd := &cobra.Command{
		Use:   "rewrite <folder/title>",
		Short: "Rewrite a document with the assistant",
		Long: `Rewrite a document with the assistant and print the result as it
streams in. With --apply the rewritten body is saved back to the server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := remote.ParseRewriteMode(mode)
			if err != nil {
				return err
			}
			loc := note.ParseLocation(args[0])

			return c.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine) error {
				if err := eng.Mutations.Load(ctx, loc); err != nil {
					return err
				}

				// Streamed tokens are edits. Only --apply writes, once, at the end.
				eng.Autosave.Stop()

				out := cmd.OutOrStdout()
				tee := &bodyTee{sess: eng.Session, w: out}
				eng.Session.OnChange(tee.changed)

				res, err := eng.Rewrite.Run(ctx, m)
				if err != nil {
					return err
				}
				tee.finish()
				if res.Skipped > 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%d malformed stream records skipped\n", res.Skipped)
				}

				if !apply {
					return nil
				}
				if err := eng.Mutations.Save(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "saved %s\n", loc)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(remote.ModePolish), "polish or format")
	cmd.Flags().BoolVar(&apply, "apply", false, "save the rewritten body")
	return cmd
}

// bodyTee writes the part of the working body that is new since the last
// change while a rewrite runs.
type bodyTee struct {
	sess    *session.Session
	w       io.Writer
	written int
}

func (t *bodyTee) changed(session.ChangeKind) {
	if !t.sess.Rewriting() {
		return
	}
	t.flush()
}

func (t *bodyTee) flush() {
	body := t.sess.Document().Body
	if len(body) < t.written {
		// The first streamed token replaces the old body.
		t.written = 0
	}
	if len(body) > t.written {
		io.WriteString(t.w, body[t.written:])
		t.written = len(body)
	}
}

// finish writes whatever the stream did not, ending with a newline.
func (t *bodyTee) finish() {
	t.flush()
	body := t.sess.Document().Body
	if body == "" || body[len(body)-1] != '\n' {
		io.WriteString(t.w, "\n")
	}
}
