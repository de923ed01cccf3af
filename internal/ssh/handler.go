package ssh

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	bts "github.com/charmbracelet/wish/bubbletea"

	"github.com/pfassina/scribe/internal/app"
	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/engine"
)

// NewHandler returns a Bubble Tea handler for SSH sessions. Every session
// gets its own engine: its own working document, autosave timer and batch
// selection.
func NewHandler(cfg config.Config, logger *log.Logger) bts.Handler {
	return func(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
		l := logger.With("user", sess.User(), "remote", sess.RemoteAddr().String())
		eng, err := engine.Open(cfg, l)
		if err != nil {
			l.Error("open session", "err", err)
			fmt.Fprintf(sess.Stderr(), "scribe: %v\n", err)
			return nil, nil
		}

		a := app.New(eng)
		go func() {
			<-sess.Context().Done()
			a.Close()
		}()

		opts := []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		}
		opts = append(opts, bts.MakeOptions(sess)...)

		return a, opts
	}
}
