// ABOUTME: CLI command to list indexed corpus sources
// ABOUTME: Table output by default, JSON with --format json
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSourcesCmd creates the sources command
func NewSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List indexed corpus sources",
		Long: `List every source in the corpus with its version, chunk count,
and ingestion time.

Examples:
  nyaya sources
  nyaya sources --format json`,
		RunE: runSources,
	}
}

func runSources(cmd *cobra.Command, args []string) error {
	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	sources, err := service.Sources()
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}
	version, err := service.Version()
	if err != nil {
		return fmt.Errorf("reading index version: %w", err)
	}

	if jsonFormat() {
		data, err := json.MarshalIndent(map[string]interface{}{
			"index_version": version,
			"sources":       sources,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if len(sources) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No sources indexed")
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tORIGIN\tTITLE\tVERSION\tCHUNKS\tINGESTED\n")
	fmt.Fprintf(w, "--\t------\t-----\t-------\t------\t--------\n")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			truncate(s.ID, 25), s.Origin, truncate(s.Title, 30),
			s.DocVersion, s.ChunkCount, formatTime(s.IngestedAt))
	}
	w.Flush()

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d source(s), index version %d\n", len(sources), version)
	}
	return nil
}
