package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfassina/scribe/internal/logging"
	"github.com/pfassina/scribe/internal/ssh"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over SSH",
		Long: `Serve the editor over SSH. Every connection gets its own session with
the server configured here; the host key is kept in the cache directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("listen") {
				c.cfg.Listen = listen
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  c.cfg.LogLevel,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			defer logger.Close()

			s, err := ssh.New(c.cfg, logger.Logger)
			if err != nil {
				return err
			}

			errc := make(chan error, 1)
			go func() { errc <- s.ListenAndServe() }()

			select {
			case err := <-errc:
				return err
			case <-cmd.Context().Done():
			}

			logger.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				logger.Warn("forced shutdown", "err", err)
				return s.Close()
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default from config, e.g. :2222)")
	return cmd
}
