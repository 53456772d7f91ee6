// ABOUTME: CLI command that watches a directory and re-ingests changed files
// ABOUTME: The file name (minus extension) doubles as the stable source ID
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arjun/nyaya/internal/models"
	"github.com/arjun/nyaya/internal/watch"
)

var watchOrigin string

// NewWatchCmd creates the watch command
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and re-ingest changed .txt files",
		Long: `Watch a directory for new or modified .txt files and refresh the
corpus as they change. Each file's base name is its source ID, so
editing a file re-ingests the same source at a new version.

Runs until interrupted.

Examples:
  nyaya watch ./corpus
  nyaya watch --origin judgment ./judgments`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&watchOrigin, "origin", "statute", "Origin assigned to ingested files")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	origin, ok := models.ParseOrigin(watchOrigin)
	if !ok {
		return fmt.Errorf("invalid origin %q", watchOrigin)
	}

	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	w, err := watch.New(args[0], func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		_, _, err = service.IngestSource(ctx, models.SourceDocument{
			ID:       id,
			Origin:   origin,
			Title:    id,
			FullText: string(data),
		})
		return err
	})
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (origin %s); Ctrl-C to stop\n", args[0], origin)
	}
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
