// ABOUTME: ValidityFinding reports a clause-level issue found by the analyzer
// ABOUTME: Severity carries an explicit rank so findings sort worst-first
package models

// Severity grades how serious a finding is
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRanks orders severities worst-first for sorting
var severityRanks = map[Severity]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
	SeverityInfo:     0,
}

// Rank returns the sort weight of a severity (higher is worse)
func (s Severity) Rank() int {
	return severityRanks[s]
}

// ParseSeverity maps a tag string to a Severity, defaulting to medium
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return Severity(s)
	}
	return SeverityMedium
}

// ValidityFinding is one issue detected in an analyzed document
type ValidityFinding struct {
	ClauseExcerpt    string            `json:"clause_excerpt"`
	ClauseIndex      int               `json:"clause_index"`
	IssueKind        string            `json:"issue_kind"`
	Severity         Severity          `json:"severity"`
	MatchedReference *RetrievedPassage `json:"matched_reference,omitempty"`
	Explanation      string            `json:"explanation"`
}

// EssentialElements records which essentials of a valid contract the
// document shows evidence of
type EssentialElements struct {
	Parties       bool `json:"parties"`
	Consideration bool `json:"consideration"`
	LawfulObject  bool `json:"lawful_object"`
	FreeConsent   bool `json:"free_consent"`
}

// ValidityAssessment is the document-level enforceability screen
type ValidityAssessment struct {
	Score      float64           `json:"score"`
	Assessment string            `json:"assessment"`
	Elements   EssentialElements `json:"essential_elements"`
	Details    []string          `json:"details"`
}

// AnalysisReport is the full result of analyzing one document
type AnalysisReport struct {
	DocumentType    string             `json:"document_type"`
	Validity        ValidityAssessment `json:"validity"`
	Findings        []ValidityFinding  `json:"findings"`
	Recommendations []string           `json:"recommendations"`
}
