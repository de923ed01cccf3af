package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfassina/scribe/internal/engine"
	"github.com/pfassina/scribe/internal/note"
)

func (c *cli) lsCmd() *cobra.Command {
	var flat bool

	cmd := &cobra.Command{
		Use:   "ls [folder]",
		Short: "List folders and documents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, true, func(_ context.Context, eng *engine.Engine) error {
				out := cmd.OutOrStdout()
				if len(args) == 1 {
					folder := note.NormalizeFolder(args[0])
					for _, loc := range eng.Listing.Group().Members(folder) {
						fmt.Fprintln(out, loc.Path())
					}
					return nil
				}
				if flat {
					for _, loc := range eng.Listing.Documents() {
						fmt.Fprintln(out, loc.Path())
					}
					return nil
				}
				for _, e := range eng.Listing.Entries() {
					name := e.Name
					if e.IsDir {
						name += "/"
					}
					fmt.Fprintln(out, strings.Repeat("  ", e.Depth)+name)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&flat, "flat", false, "print one folder/title path per document")
	return cmd
}

func (c *cli) catCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <folder/title>",
		Short: "Print a document's body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine) error {
				doc, err := eng.Client.GetDocument(ctx, note.ParseLocation(args[0]))
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), doc.Body)
				return err
			})
		},
	}
}

func (c *cli) saveCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save <folder/title>",
		Short: "Write a document from stdin or a file",
		Long: `Write a document from stdin or --file. An existing document is
overwritten; a new one is created, along with its folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readBody(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			loc := note.ParseLocation(args[0])

			return c.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine) error {
				if eng.Listing.Contains(loc) {
					if err := eng.Mutations.Load(ctx, loc); err != nil {
						return err
					}
				} else {
					eng.Session.Start(loc.Title, loc.Folder)
				}
				eng.Session.SetBody(body)
				eng.Autosave.Flush()
				if err := eng.Autosave.LastError(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", loc)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the body from this file instead of stdin")
	return cmd
}

func readBody(stdin io.Reader, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func (c *cli) mvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <folder/title> <folder/title | folder/>",
		Short: "Move or rename a document",
		Long: `Move or rename a document. A destination ending in "/" keeps the title
and only changes the folder; "/" alone moves to the root.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from := note.ParseLocation(args[0])
			return c.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine) error {
				var to note.Location
				if strings.HasSuffix(args[1], "/") {
					to = note.Location{Title: from.Title, Folder: note.NormalizeFolder(args[1])}
				} else {
					to = note.ParseLocation(args[1])
				}
				if err := eng.Mutations.Move(ctx, from, to); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "moved %s -> %s\n", from, to)
				return nil
			})
		},
	}
}

func (c *cli) rmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <folder/title>...",
		Short: "Delete documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locs := make([]note.Location, len(args))
			for i, arg := range args {
				locs[i] = note.ParseLocation(arg)
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %d document(s)?", len(locs)))
			if err != nil || !ok {
				return err
			}

			return c.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine) error {
				for _, loc := range locs {
					if err := eng.Mutations.Delete(ctx, loc); err != nil {
						return fmt.Errorf("delete %s: %w", loc, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", loc)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) mkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <folder>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine) error {
				return eng.Mutations.CreateFolder(ctx, args[0])
			})
		},
	}
}

func (c *cli) rmdirCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rmdir <folder>",
		Short: "Delete a folder and every document in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := note.NormalizeFolder(args[0])
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete folder %q and its documents?", folder))
			if err != nil || !ok {
				return err
			}
			return c.withEngine(cmd, false, func(ctx context.Context, eng *engine.Engine) error {
				return eng.Mutations.DeleteFolder(ctx, folder)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (c *cli) renameFolderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename-folder <old> <new>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEngine(cmd, true, func(ctx context.Context, eng *engine.Engine) error {
				return eng.Mutations.RenameFolder(ctx, args[0], args[1])
			})
		},
	}
}
