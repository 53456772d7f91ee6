// ABOUTME: Text normalization and legal-domain tagging for ingested documents
// ABOUTME: Keyword scoring assigns each chunk a domain used as a query filter
package core

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`[ \t]+`)
	pageMarkerRe = regexp.MustCompile(`--- Page \d+ ---`)
)

// CleanText normalizes raw legal text before chunking: collapses runs of
// spaces, strips page markers left by upstream extraction, and normalizes
// the rupee sign.
func CleanText(text string) string {
	text = pageMarkerRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "₹", "Rs.")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// domainKeywords maps each legal domain to its indicator terms
var domainKeywords = map[string][]string{
	"constitutional": {"constitution", "fundamental rights", "directive principles", "amendment", "article", "schedule"},
	"criminal":       {"criminal", "offence", "punishment", "bail", "arrest", "investigation", "charge", "ipc", "bns"},
	"civil":          {"civil", "contract", "property", "damages", "injunction", "suit", "plaintiff", "defendant"},
	"family":         {"marriage", "divorce", "custody", "maintenance", "adoption", "succession"},
	"corporate":      {"company", "corporate", "shares", "director", "commercial", "business"},
}

// DetectLegalDomain classifies a text into a legal domain by keyword count,
// returning "general" when nothing matches.
func DetectLegalDomain(text string) string {
	lower := strings.ToLower(text)

	best := "general"
	bestScore := 0
	// Iterate in a fixed order so ties resolve deterministically
	for _, domain := range []string{"constitutional", "criminal", "civil", "family", "corporate"} {
		score := 0
		for _, kw := range domainKeywords[domain] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = domain
			bestScore = score
		}
	}
	return best
}
