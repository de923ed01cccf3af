package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/export"
	"github.com/pfassina/scribe/internal/note"
)

func (c *cli) importCmd() *cobra.Command {
	var watch string

	cmd := &cobra.Command{
		Use:   "import [file]...",
		Short: "Upload Markdown and text files as documents",
		Long: `Upload Markdown and text files as root documents titled after their
file names. With --watch, keep uploading files that appear in a directory
until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch == "" && len(args) == 0 {
				return errors.New("nothing to import: pass files or --watch")
			}
			return c.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine) error {
				out := cmd.OutOrStdout()
				if len(args) > 0 {
					locs, err := eng.Importer.Files(ctx, args)
					for _, loc := range locs {
						fmt.Fprintf(out, "imported %s\n", loc)
					}
					if err != nil {
						return err
					}
				}
				if watch == "" {
					return nil
				}

				eng.Config.ImportDir = watch
				fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", watch)
				err := eng.WatchImports(ctx, func(path string, err error) {
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "import %s: %v\n", path, err)
						return
					}
					fmt.Fprintf(out, "imported %s\n", path)
				})
				if errors.Is(err, context.Canceled) {
					return nil
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&watch, "watch", "w", "", "directory to watch for new files")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export [folder/title | folder/]...",
		Short: "Download documents into a zip archive",
		Long: `Download documents into a zip archive with a manifest.yaml. Arguments
ending in "/" select a whole folder; no arguments select everything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine) error {
				eng.Batch.ToggleMode()
				if len(args) == 0 {
					eng.Batch.SelectAll()
				}
				for _, arg := range args {
					if strings.HasSuffix(arg, "/") {
						eng.Batch.ToggleFolder(note.NormalizeFolder(arg))
						continue
					}
					loc := note.ParseLocation(arg)
					if !eng.Listing.Contains(loc) {
						return &note.ValidationError{Field: "document", Reason: fmt.Sprintf("%s does not exist", loc)}
					}
					eng.Batch.ToggleDocument(loc)
				}

				entries, err := eng.Batch.Export(ctx)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return errors.New("nothing to export")
				}

				now := time.Now()
				name := output
				if name == "" {
					name = export.DefaultName(now)
				}
				if err := export.WriteFile(name, entries, now); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d document(s) to %s\n", len(entries), name)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default scribe-<timestamp>.zip)")
	return cmd
}
