// ABOUTME: Analyzer scores an uploaded document's clauses for validity/risk
// ABOUTME: Matches clauses against a reference index of known clause patterns
package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// IssueUnclassified tags a clause-like chunk that matched no reference pattern
const IssueUnclassified = "unclassified clause"

// obligationMarkers indicate a chunk is clause-like rather than front matter
var obligationMarkers = []string{
	"shall", "must", "agree", "liable", "liability", "indemnif",
	"obligat", "terminate", "termination", "penalty", "breach",
	"warrant", "covenant", "waive",
}

// clauseMinLength is the minimum rune length for a chunk to count as a clause
const clauseMinLength = 80

// riskCheck is an always-on screen for clauses known to be one-sided
type riskCheck struct {
	phrases     []string
	issueKind   string
	severity    models.Severity
	explanation string
}

var riskChecks = []riskCheck{
	{
		phrases:     []string{"unlimited liability", "liability shall be unlimited", "without limit of liability"},
		issueKind:   "unlimited liability",
		severity:    models.SeverityCritical,
		explanation: "The clause exposes a party to liability without any cap.",
	},
	{
		phrases:     []string{"personal guarantee", "personally guarantee", "personal liability of the director"},
		issueKind:   "personal guarantee",
		severity:    models.SeverityHigh,
		explanation: "The clause extends obligations to personal assets beyond the contracting entity.",
	},
	{
		phrases:     []string{"automatic renewal", "automatically renew", "auto-renew"},
		issueKind:   "automatic renewal",
		severity:    models.SeverityMedium,
		explanation: "The agreement renews without fresh consent; check the notice window for opting out.",
	},
	{
		phrases:     []string{"assigns all intellectual property", "all intellectual property shall vest", "irrevocably assign"},
		issueKind:   "broad IP assignment",
		severity:    models.SeverityHigh,
		explanation: "The clause transfers intellectual property rights broadly and irrevocably.",
	},
}

// documentTypePatterns maps identifying phrases to a document type label,
// checked in order so more specific types win
var documentTypePatterns = []struct {
	phrases []string
	label   string
}{
	{[]string{"non-disclosure", "confidentiality agreement"}, "Non-Disclosure Agreement"},
	{[]string{"lease", "rent", "tenant", "landlord"}, "Lease Agreement"},
	{[]string{"employment", "employee", "employer"}, "Employment Agreement"},
	{[]string{"loan", "borrower", "lender"}, "Loan Agreement"},
	{[]string{"services", "service provider", "scope of work"}, "Service Agreement"},
	{[]string{"purchase", "sale", "buyer", "seller"}, "Sale Agreement"},
	{[]string{"partnership", "partner"}, "Partnership Deed"},
}

// Analyzer checks a document's clauses against the reference clause index
type Analyzer struct {
	retriever     *Retriever
	policy        ChunkPolicy
	minSimilarity float64
}

// NewAnalyzer creates an Analyzer. The retriever must be backed by the
// reference index, and minSimilarity should be stricter than the one used
// for corpus queries.
func NewAnalyzer(retriever *Retriever, policy ChunkPolicy, minSimilarity float64) *Analyzer {
	return &Analyzer{
		retriever:     retriever,
		policy:        policy,
		minSimilarity: minSimilarity,
	}
}

// Analyze chunks the document, matches each chunk against the reference
// index, and returns findings ordered by severity descending, then by clause
// order. A chunk matching a flagged reference pattern yields a finding with
// the reference's tagged issue kind and severity; a clause-like chunk with
// no match yields a low-severity unclassified finding; anything else (front
// matter, headings) is skipped. The report also carries a document-level
// validity assessment and follow-up recommendations.
func (a *Analyzer) Analyze(ctx context.Context, documentText string) (models.AnalysisReport, error) {
	cleaned := CleanText(documentText)
	report := models.AnalysisReport{
		DocumentType: IdentifyDocumentType(cleaned),
		Validity:     AssessValidity(cleaned),
	}

	doc := models.SourceDocument{ID: "analysis", FullText: cleaned}
	chunks, err := ChunkDocument(doc, a.policy)
	if err != nil {
		return models.AnalysisReport{}, err
	}

	for _, chunk := range chunks {
		findings, err := a.analyzeChunk(ctx, chunk)
		if err != nil {
			return models.AnalysisReport{}, fmt.Errorf("analyzing clause %d: %w", chunk.SequenceIndex, err)
		}
		report.Findings = append(report.Findings, findings...)
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		fi, fj := report.Findings[i], report.Findings[j]
		if fi.Severity.Rank() != fj.Severity.Rank() {
			return fi.Severity.Rank() > fj.Severity.Rank()
		}
		return fi.ClauseIndex < fj.ClauseIndex
	})
	report.Recommendations = Recommendations(report.Validity, report.Findings)
	return report, nil
}

func (a *Analyzer) analyzeChunk(ctx context.Context, chunk models.Chunk) ([]models.ValidityFinding, error) {
	var findings []models.ValidityFinding
	flagged := make(map[string]bool)

	// Always-on keyword screen; fires independently of the reference index
	lower := strings.ToLower(chunk.Text)
	for _, check := range riskChecks {
		for _, phrase := range check.phrases {
			if strings.Contains(lower, phrase) {
				findings = append(findings, models.ValidityFinding{
					ClauseExcerpt: excerpt(chunk.Text),
					ClauseIndex:   chunk.SequenceIndex,
					IssueKind:     check.issueKind,
					Severity:      check.severity,
					Explanation:   check.explanation,
				})
				flagged[check.issueKind] = true
				break
			}
		}
	}

	matches, err := a.retriever.Retrieve(ctx, chunk.Text, 1, a.minSimilarity, index.Filter{})
	if err != nil {
		return nil, err
	}

	if len(matches) > 0 {
		ref := matches[0]
		issueKind := ref.Metadata["issue_kind"]
		if issueKind == "" {
			issueKind = "matched reference clause"
		}
		if !flagged[issueKind] {
			findings = append(findings, models.ValidityFinding{
				ClauseExcerpt:    excerpt(chunk.Text),
				ClauseIndex:      chunk.SequenceIndex,
				IssueKind:        issueKind,
				Severity:         models.ParseSeverity(ref.Metadata["severity"]),
				MatchedReference: &ref,
				Explanation:      fmt.Sprintf("Clause resembles a flagged pattern from %s (similarity %.2f).", ref.Title, ref.Score),
			})
		}
		return findings, nil
	}

	if len(findings) == 0 && isClauseLike(chunk.Text) {
		findings = append(findings, models.ValidityFinding{
			ClauseExcerpt: excerpt(chunk.Text),
			ClauseIndex:   chunk.SequenceIndex,
			IssueKind:     IssueUnclassified,
			Severity:      models.SeverityLow,
			Explanation:   "Obligation language with no matching reference pattern; review manually.",
		})
	}
	return findings, nil
}

// IdentifyDocumentType labels a document by its dominant phrase matches,
// falling back to "Legal Document" when nothing fits.
func IdentifyDocumentType(text string) string {
	lower := strings.ToLower(text)
	best := "Legal Document"
	bestScore := 0
	for _, dt := range documentTypePatterns {
		score := 0
		for _, phrase := range dt.phrases {
			if strings.Contains(lower, phrase) {
				score++
			}
		}
		if score > bestScore {
			best = dt.label
			bestScore = score
		}
	}
	return best
}

// isClauseLike reports whether text is substantive obligation language
// rather than front matter or a heading
func isClauseLike(text string) bool {
	if len([]rune(strings.TrimSpace(text))) < clauseMinLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, marker := range obligationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// excerpt bounds a clause excerpt for display
func excerpt(text string) string {
	const limit = 200
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "…"
}
