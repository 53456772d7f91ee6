// ABOUTME: CLI command to answer a legal question from the indexed corpus
// ABOUTME: Prints the answer with citations and the grounded flag
package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

var (
	askOrigin string
	askDomain string
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a legal question",
		Long: `Answer a legal question using passages retrieved from the corpus.

The answer cites the passages it rests on. When no passage is relevant
enough, a fixed fallback is returned instead of a fabricated answer, and
ungrounded answers are flagged.

Examples:
  nyaya ask "what is the punishment for cheating?"
  nyaya ask --origin statute "when does a contract require registration?"
  nyaya ask --domain criminal --format json "can bail be granted for a non-bailable offence?"`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().StringVar(&askOrigin, "origin", "", "Restrict retrieval to one origin")
	cmd.Flags().StringVar(&askDomain, "domain", "", "Restrict retrieval to one legal domain")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	filter := index.Filter{Domain: askDomain}
	if askOrigin != "" {
		origin, ok := models.ParseOrigin(askOrigin)
		if !ok {
			return fmt.Errorf("invalid origin %q", askOrigin)
		}
		filter.Origins = []models.Origin{origin}
	}

	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	answer, err := service.Query(context.Background(), args[0], filter)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if jsonFormat() {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	if len(answer.Citations) > 0 && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
		for _, c := range answer.Citations {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%s] %s (%s, score %.2f)\n",
				c.Label, c.Passage.Title, c.Passage.Origin, c.Passage.Score)
		}
	}
	if !answer.Grounded && !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "\nNote: parts of this answer could not be traced to retrieved passages.")
	}
	return nil
}
