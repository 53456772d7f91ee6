// ABOUTME: Generator builds a grounded prompt, invokes generation, and
// ABOUTME: post-processes the answer to attach citations and flag ungrounded text
package core

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/arjun/nyaya/internal/models"
)

// GenerationClient is the external text-generation capability
type GenerationClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// FallbackAnswer is returned verbatim when retrieval produced no passages.
// Legal content is never fabricated without retrieved support.
const FallbackAnswer = "I could not find relevant legal provisions for this question in the indexed corpus. " +
	"Please consult a qualified advocate for advice specific to your situation."

const systemPrompt = `You are a legal information assistant for Indian law. Answer strictly from the numbered reference passages provided. After every claim, cite the passage that supports it using its marker, e.g. [P2]. If the passages do not cover part of the question, say so explicitly instead of guessing. This is general legal information, not legal advice.`

var citationRe = regexp.MustCompile(`\[P(\d+)\]`)

// Generator turns retrieved passages and a question into a cited answer
type Generator struct {
	client GenerationClient
}

// NewGenerator creates a Generator
func NewGenerator(client GenerationClient) *Generator {
	return &Generator{client: client}
}

// Answer produces a grounded answer for the query from the given passages.
// With no passages it returns the fixed fallback with Grounded false and no
// error. Otherwise the model is prompted with enumerated passages, and the
// response is parsed for [Pn] citations; if any substantive sentence carries
// no valid citation, Grounded is false while the answer is still returned.
func (g *Generator) Answer(ctx context.Context, queryText string, passages []models.RetrievedPassage) (models.Answer, error) {
	if len(passages) == 0 {
		return models.Answer{Text: FallbackAnswer, Grounded: false}, nil
	}

	raw, err := g.client.Complete(ctx, systemPrompt, buildUserPrompt(queryText, passages))
	if err != nil {
		return models.Answer{}, fmt.Errorf("generating answer: %w", err)
	}

	cited := collectCitations(raw, passages)
	citations := make([]models.Citation, 0, len(cited))
	for _, idx := range cited {
		citations = append(citations, models.Citation{
			Label:   fmt.Sprintf("P%d", idx+1),
			Passage: passages[idx],
		})
	}

	return models.Answer{
		Text:      raw,
		Citations: citations,
		Grounded:  len(citations) > 0 && allSentencesCited(raw, passages),
	}, nil
}

// buildUserPrompt enumerates passages as [P1]..[Pn] with provenance. Prompt
// construction is deterministic for a fixed (query, passages) input, so a
// retried call reuses the identical prompt.
func buildUserPrompt(queryText string, passages []models.RetrievedPassage) string {
	var sb strings.Builder
	sb.WriteString("Reference passages:\n\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "[P%d] (%s: %s)\n%s\n\n", i+1, p.Origin, p.Title, p.Text)
	}
	fmt.Fprintf(&sb, "Question: %s\n", queryText)
	return sb.String()
}

// collectCitations returns the zero-based passage indices cited in the text,
// in first-appearance order, ignoring markers that reference no passage.
func collectCitations(text string, passages []models.RetrievedPassage) []int {
	seen := make(map[int]bool)
	var indices []int
	for _, m := range citationRe.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(passages) {
			continue
		}
		if !seen[n-1] {
			seen[n-1] = true
			indices = append(indices, n-1)
		}
	}
	return indices
}

// allSentencesCited reports whether every substantive sentence in the answer
// carries at least one valid citation marker. Short connective fragments and
// headings do not count against grounding.
func allSentencesCited(text string, passages []models.RetrievedPassage) bool {
	for _, sentence := range splitSentences(text) {
		if len([]rune(sentence)) < 40 {
			continue
		}
		cited := false
		for _, m := range citationRe.FindAllStringSubmatch(sentence, -1) {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 && n <= len(passages) {
				cited = true
				break
			}
		}
		if !cited {
			return false
		}
	}
	return true
}

// splitSentences breaks text on sentence terminators and newlines
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
