// ABOUTME: Root CLI command with global flags shared by all subcommands
// ABOUTME: Wires ingest, ask, analyze, refresh, sources, watch, and version
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nyaya",
		Short: "Legal research over an indexed corpus of Indian law",
		Long: `nyaya - retrieval-backed legal research

Ask questions against an indexed corpus of statutes, judgments, and
notices; analyze uploaded documents for risky clauses; and keep the
index fresh as sources change. Answers carry citations back to the
passages they rest on.

Examples:
  nyaya ingest --origin statute --title "Contract Act" contract_act.txt
  nyaya ask "is a contractual penalty clause enforceable?"
  nyaya analyze lease_agreement.txt
  nyaya sources --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, or json")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewRefreshCmd())
	cmd.AddCommand(NewSourcesCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
