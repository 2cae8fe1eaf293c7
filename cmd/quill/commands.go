package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/quill/internal/app"
	"github.com/MrSnakeDoc/quill/internal/content"
	"github.com/MrSnakeDoc/quill/internal/domain"
	"github.com/MrSnakeDoc/quill/internal/events"
)

var (
	searchLimit int
	forceFlush  bool
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write every article as an export file (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			payload := a.Store().Export()
			if len(args) == 0 {
				return writeExport(cmd.OutOrStdout(), payload)
			}

			if err := writeExportFile(args[0], payload); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ exported %d articles to %s\n", len(payload.Articles), args[0])
			return nil
		})
	},
}

// writeExportFile reports a failed close, since the file may be truncated.
func writeExportFile(path string, payload *content.ExportPayload) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	return writeExport(f, payload)
}

func writeExport(w io.Writer, payload *content.ExportPayload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the collection with the articles of an export file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}

		return withApp(func(ctx context.Context, a *app.App) error {
			// Import keeps the in-memory result when the cache write fails,
			// which for a one-shot command means the data is lost.
			var persistErr error
			sub := a.Store().Bus().Subscribe(events.CMSError, func(e events.Event) {
				if d, ok := e.Detail.(events.ErrorDetail); ok {
					persistErr = errors.New(d.Error)
				}
			})
			defer a.Store().Bus().Unsubscribe(sub)

			n, err := a.Store().ImportJSON(ctx, data)
			if err != nil {
				var verr *domain.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("import rejected:\n  - %s", strings.Join(verr.Violations, "\n  - "))
				}
				return err
			}
			if persistErr != nil {
				return fmt.Errorf("imported %d articles but failed to persist them: %w", n, persistErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✅ imported %d articles\n", n)
			return nil
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search articles by title, content, category and tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withApp(func(ctx context.Context, a *app.App) error {
			results := a.Search().Search(query, searchLimit)
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no articles match %q\n", query)
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SCORE\tID\tDATE\tCATEGORY\tTITLE")
			for _, r := range results {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
					r.Score, r.Article.ID, r.Article.Date, r.Article.Category, r.Article.Title)
			}
			return tw.Flush()
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print collection statistics as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app.App) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(a.Store().Stats())
		})
	},
}

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete the cached collection and draft; the next start reloads from the remote source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !forceFlush {
			return errors.New("refusing to flush without --force")
		}

		a, err := app.New()
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.Cache().Flush(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to flush cache: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ removed %d cache keys\n", n)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	flushCmd.Flags().BoolVar(&forceFlush, "force", false, "confirm deleting every cached key")

	rootCmd.AddCommand(exportCmd, importCmd, searchCmd, statsCmd, flushCmd)
}
