// ABOUTME: CLI command to ingest documents into the corpus or reference index
// ABOUTME: Handles file/stdin input, origin tagging, and reference seeding
package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arjun/nyaya/internal/models"
)

var (
	ingestOrigin    string
	ingestTitle     string
	ingestID        string
	ingestReference bool
	ingestIssue     string
	ingestSeverity  string
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Ingest a document into the legal corpus",
		Long: `Ingest a document from a file (or stdin) into the corpus.

Re-ingesting a document whose content is unchanged is a no-op; changed
content is re-chunked, re-embedded, and swapped in atomically under a
new index version.

With --reference the document is ingested into the analyzer's reference
index of flagged clause patterns instead; --issue tags the pattern and
--severity grades it.

Examples:
  nyaya ingest --origin statute --title "Indian Contract Act, 1872" contract_act.txt
  cat judgment.txt | nyaya ingest --origin judgment --title "Mohori Bibee v. Dharmodas Ghose"
  nyaya ingest --reference --issue "unconscionable penalty clause" --severity high penalty_patterns.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestOrigin, "origin", "statute", "Document origin: statute, judgment, notice, or user-upload")
	cmd.Flags().StringVar(&ingestTitle, "title", "", "Document title used in citations (defaults to the file name)")
	cmd.Flags().StringVar(&ingestID, "id", "", "Stable source identifier (generated when omitted)")
	cmd.Flags().BoolVar(&ingestReference, "reference", false, "Ingest into the reference clause-pattern index")
	cmd.Flags().StringVar(&ingestIssue, "issue", "", "Issue kind tag for reference ingestion")
	cmd.Flags().StringVar(&ingestSeverity, "severity", "medium", "Severity tag for reference ingestion: critical, high, medium, low, or info")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	text, err := readTextArg(args)
	if err != nil {
		return err
	}

	origin, ok := models.ParseOrigin(ingestOrigin)
	if !ok {
		return fmt.Errorf("invalid origin %q (want statute, judgment, notice, or user-upload)", ingestOrigin)
	}

	title := ingestTitle
	if title == "" && len(args) > 0 {
		title = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	if title == "" {
		return fmt.Errorf("--title is required when reading from stdin")
	}

	sourceID := ingestID
	if sourceID == "" {
		sourceID = fmt.Sprintf("doc_%s", uuid.New().String()[:8])
	}

	if ingestReference && ingestIssue == "" {
		return fmt.Errorf("--issue is required with --reference")
	}

	service, err := openService()
	if err != nil {
		return err
	}
	defer func() { _ = service.Close() }()

	doc := models.SourceDocument{
		ID:         sourceID,
		Origin:     origin,
		Title:      title,
		FullText:   text,
		IngestedAt: time.Now().UTC(),
	}

	ctx := context.Background()
	var version int64
	var updated bool
	if ingestReference {
		version, updated, err = service.IngestReference(ctx, doc, ingestIssue, models.ParseSeverity(ingestSeverity))
	} else {
		version, updated, err = service.IngestSource(ctx, doc)
	}
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", sourceID, err)
	}

	if quiet {
		fmt.Fprintln(cmd.OutOrStdout(), sourceID)
		return nil
	}
	if !updated {
		fmt.Fprintf(cmd.OutOrStdout(), "Unchanged: %s (index version %d)\n", sourceID, version)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Ingested %s (%q, %s) at index version %d\n", sourceID, title, origin, version)
	return nil
}
