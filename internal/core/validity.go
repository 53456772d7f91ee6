// ABOUTME: Document-level validity screen over keyword indicators
// ABOUTME: Scores enforceability and checks the essential contract elements
package core

import (
	"fmt"
	"strings"

	"github.com/arjun/nyaya/internal/models"
)

// positiveValidityIndicators raise the validity score when present
var positiveValidityIndicators = []string{
	"executed", "signed", "witnessed", "stamped", "registered",
	"valid consideration", "mutual consent", "lawful object",
	"competent parties", "free consent",
}

// negativeValidityIndicators lower the validity score when present
var negativeValidityIndicators = []string{
	"void", "voidable", "illegal", "unenforceable", "fraudulent",
	"coercion", "undue influence", "mistake", "misrepresentation",
	"breach", "violation",
}

var (
	partyMarkers         = []string{"party", "parties", "between", "whereas", "contractor", "client"}
	considerationMarkers = []string{"consideration", "payment", "amount", "fee", "sum", "rupees", "rs."}
	unlawfulMarkers      = []string{"illegal", "unlawful", "criminal", "fraud", "bribe"}
	consentMarkers       = []string{"agree", "consent", "willing", "voluntary"}
	coercionMarkers      = []string{"coercion", "force", "threat", "undue influence"}
)

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// AssessValidity scores a document's enforceability from keyword indicators
// and the presence of the essential contract elements. The score starts at
// 0.5, moves with each indicator hit, drops when parties or consideration
// are missing, and clamps to [0, 1].
func AssessValidity(text string) models.ValidityAssessment {
	lower := strings.ToLower(text)

	score := 0.5
	var details []string
	for _, ind := range positiveValidityIndicators {
		if strings.Contains(lower, ind) {
			score += 0.1
			details = append(details, fmt.Sprintf("Positive indicator found: %s", ind))
		}
	}
	for _, ind := range negativeValidityIndicators {
		if strings.Contains(lower, ind) {
			score -= 0.15
			details = append(details, fmt.Sprintf("Negative indicator found: %s", ind))
		}
	}

	elements := models.EssentialElements{
		Parties:       containsAny(lower, partyMarkers),
		Consideration: containsAny(lower, considerationMarkers),
		LawfulObject:  !containsAny(lower, unlawfulMarkers),
		FreeConsent:   containsAny(lower, consentMarkers) && !containsAny(lower, coercionMarkers),
	}

	if elements.Parties {
		details = append(details, "Parties are clearly identified")
	} else {
		score -= 0.2
		details = append(details, "Parties need clearer identification")
	}
	if elements.Consideration {
		details = append(details, "Consideration is mentioned")
	} else {
		score -= 0.15
		details = append(details, "Consideration should be clearly stated")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return models.ValidityAssessment{
		Score:      score,
		Assessment: validityAssessmentText(score),
		Elements:   elements,
		Details:    details,
	}
}

func validityAssessmentText(score float64) string {
	switch {
	case score >= 0.8:
		return "Document appears legally valid with strong enforceability."
	case score >= 0.6:
		return "Document has good validity but may need minor improvements."
	case score >= 0.4:
		return "Document has moderate validity with some concerns to address."
	default:
		return "Document has significant validity issues that need attention."
	}
}

// Recommendations derives follow-up advice from the validity screen and the
// clause findings
func Recommendations(validity models.ValidityAssessment, findings []models.ValidityFinding) []string {
	var recs []string
	if validity.Score < 0.6 {
		recs = append(recs, "Consider consulting a lawyer to improve document validity.")
	}
	if !validity.Elements.Parties {
		recs = append(recs, "Clearly identify all parties with full names and addresses.")
	}
	if !validity.Elements.Consideration {
		recs = append(recs, "Specify the consideration and payment terms clearly.")
	}

	issueKinds := make(map[string]bool)
	highRisk := false
	for _, f := range findings {
		issueKinds[f.IssueKind] = true
		if f.Severity.Rank() >= models.SeverityHigh.Rank() {
			highRisk = true
		}
	}
	if highRisk {
		recs = append(recs, "High-risk clauses detected; a legal review is strongly recommended.")
	}
	if issueKinds["unlimited liability"] {
		recs = append(recs, "Consider limiting liability exposure with an explicit cap.")
	}
	if issueKinds["personal guarantee"] {
		recs = append(recs, "Carefully evaluate the implications of any personal guarantee.")
	}

	recs = append(recs,
		"Ensure all parties sign and date the document.",
		"Keep signed originals in a secure location.",
	)
	return recs
}
