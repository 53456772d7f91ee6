// ABOUTME: CLI command to analyze a document for risky or invalid clauses
// ABOUTME: Prints findings ordered by severity with matched references
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [file]",
		Short: "Analyze a document's clauses for validity and risk",
		Long: `Analyze a legal document against known clause patterns.

Each clause is compared with the reference index of flagged patterns;
matches yield findings graded by the pattern's tagged severity, and
obligation-heavy clauses with no match are reported for manual review.

Examples:
  nyaya analyze lease_agreement.txt
  cat contract.txt | nyaya analyze --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readTextArg(args)
	if err != nil {
		return err
	}

	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	report, err := service.AnalyzeDocument(context.Background(), text)
	if err != nil {
		return fmt.Errorf("analyzing document: %w", err)
	}

	if jsonFormat() {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Document type: %s\n", report.DocumentType)
		fmt.Fprintf(cmd.OutOrStdout(), "Validity: %.2f - %s\n\n", report.Validity.Score, report.Validity.Assessment)
	}
	if len(report.Findings) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No findings.")
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "SEVERITY\tCLAUSE\tISSUE\tEXCERPT\n")
		fmt.Fprintf(w, "--------\t------\t-----\t-------\n")
		for _, f := range report.Findings {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
				f.Severity, f.ClauseIndex, f.IssueKind, truncate(f.ClauseExcerpt, 60))
		}
		w.Flush()
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal: %d finding(s)\n", len(report.Findings))
		for _, rec := range report.Recommendations {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", rec)
		}
	}
	return nil
}
