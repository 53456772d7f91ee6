// ABOUTME: CLI command to refresh a known source with new content
// ABOUTME: No-op on unchanged content; optional compaction of retired rows
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arjun/nyaya/internal/models"
)

var (
	refreshFile    string
	refreshCompact bool
)

// NewRefreshCmd creates the refresh command
func NewRefreshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refresh [source-id]",
		Short: "Refresh a corpus source from a file",
		Long: `Re-ingest a known source with its current content.

If the content hash is unchanged this is a no-op; otherwise the source
is re-chunked, re-embedded, and swapped in atomically so concurrent
queries never see a partially updated index.

Examples:
  nyaya refresh doc_3f2a91bc --file contract_act.txt
  nyaya refresh doc_3f2a91bc --file contract_act.txt --compact`,
		Args: cobra.ExactArgs(1),
		RunE: runRefresh,
	}

	cmd.Flags().StringVar(&refreshFile, "file", "", "File with the source's current content (stdin when omitted)")
	cmd.Flags().BoolVar(&refreshCompact, "compact", false,
		"Drop rows retired before the current index version (rows retired by this refresh are kept for in-flight queries)")

	return cmd
}

func runRefresh(cmd *cobra.Command, args []string) error {
	sourceID := args[0]

	var fileArgs []string
	if refreshFile != "" {
		fileArgs = []string{refreshFile}
	}
	text, err := readTextArg(fileArgs)
	if err != nil {
		return err
	}

	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	info, err := service.Source(sourceID)
	if err != nil {
		return fmt.Errorf("looking up source: %w", err)
	}
	if info == nil {
		return fmt.Errorf("unknown source %q; ingest it first", sourceID)
	}

	version, updated, err := service.IngestSource(context.Background(), models.SourceDocument{
		ID:       info.ID,
		Origin:   info.Origin,
		Title:    info.Title,
		FullText: text,
	})
	if err != nil {
		return fmt.Errorf("refreshing %s: %w", sourceID, err)
	}

	if refreshCompact {
		if err := service.CompactCorpus(); err != nil {
			return fmt.Errorf("compacting index: %w", err)
		}
	}

	if quiet {
		return nil
	}
	if !updated {
		fmt.Fprintf(cmd.OutOrStdout(), "Unchanged: %s (index version %d)\n", sourceID, version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %s to index version %d\n", sourceID, version)
	return nil
}
