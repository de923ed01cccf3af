package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/pfassina/scribe/internal/app"
	"github.com/pfassina/scribe/internal/config"
	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/logging"
)

// cli holds the effective configuration and the persistent flags shared by
// every command.
type cli struct {
	cfg     config.Config
	existed bool

	server   string
	token    string
	cacheDir string
	logLevel string
	theme    string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "scribe",
		Short: "Terminal client for a remote Markdown notes server",
		Long: `Scribe edits notes stored on a remote notes server. Run without a
command to open the editor; the subcommands script the same operations.`,
		Version:           version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
		RunE:              c.runTUI,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.server, "server", "", "notes server URL (overrides config and "+config.EnvServerURL+")")
	pf.StringVar(&c.token, "token", "", "bearer token (overrides "+config.EnvToken+")")
	pf.StringVar(&c.cacheDir, "cache-dir", "", "directory for the listing cache, logs and session state")
	pf.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error")
	root.Flags().StringVar(&c.theme, "theme", "", "color theme: catppuccin, nord, gruvbox or tokyo-night")

	root.AddCommand(
		c.serveCmd(),
		c.lsCmd(),
		c.catCmd(),
		c.saveCmd(),
		c.mvCmd(),
		c.rmCmd(),
		c.mkdirCmd(),
		c.rmdirCmd(),
		c.renameFolderCmd(),
		c.rewriteCmd(),
		c.importCmd(),
		c.exportCmd(),
	)
	return root
}

// load builds the configuration: defaults, config.toml, .env and the
// environment, then flags.
func (c *cli) load(cmd *cobra.Command, _ []string) error {
	cfg, existed, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = strings.TrimRight(c.server, "/")
	}
	if flags.Changed("token") {
		cfg.Token = c.token
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = config.ExpandHome(c.cacheDir)
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("theme") {
		cfg.Theme = c.theme
	}

	c.cfg, c.existed = cfg, existed
	return nil
}

// needsSetup reports whether no server was configured anywhere.
func (c *cli) needsSetup(cmd *cobra.Command) bool {
	if c.existed || cmd.Flags().Changed("server") {
		return false
	}
	_, fromEnv := os.LookupEnv(config.EnvServerURL)
	return !fromEnv
}

func (c *cli) runTUI(cmd *cobra.Command, _ []string) error {
	if c.needsSetup(cmd) {
		res, err := config.RunSetup()
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
		if res.Cancelled {
			return nil
		}
		c.cfg.ServerURL = res.ServerURL
	}
	if err := c.cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level: c.cfg.LogLevel,
		File:  logging.FilePath(c.cfg.CacheDir),
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	eng, err := engine.Open(c.cfg, logger.Logger)
	if err != nil {
		return err
	}

	a := app.New(eng)
	p := tea.NewProgram(a,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	_, err = p.Run()
	a.Close()
	if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
		return nil
	}
	return err
}

// cliLogger logs to stderr. Commands stay quiet below warn unless
// --log-level asks otherwise.
func (c *cli) cliLogger(cmd *cobra.Command) (*logging.Logger, error) {
	level := "warn"
	if cmd.Flags().Changed("log-level") {
		level = c.cfg.LogLevel
	}
	return logging.New(logging.Options{
		Level:  level,
		Prefix: "scribe",
		Output: cmd.ErrOrStderr(),
	})
}

// withEngine opens an engine for one command. With refresh set, the listing
// is fetched first so conflict checks see the server's current state.
func (c *cli) withEngine(cmd *cobra.Command, refresh bool, fn func(ctx context.Context, eng *engine.Engine) error) (err error) {
	if err := c.cfg.Validate(); err != nil {
		return err
	}
	logger, err := c.cliLogger(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	eng, err := engine.Open(c.cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := eng.Close(); err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if refresh {
		if err := eng.Listing.Refresh(ctx); err != nil {
			return err
		}
	}
	return fn(ctx, eng)
}

// confirm asks before a destructive command. Without a terminal the user
// must pass --yes.
func confirm(cmd *cobra.Command, yes bool, title string) (bool, error) {
	if yes {
		return true, nil
	}
	if !interactive(cmd.InOrStdin()) {
		return false, errors.New("not a terminal: pass --yes to confirm")
	}
	ok := false
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
