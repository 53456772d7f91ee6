// ABOUTME: Tests for answer generation, citation parsing, and grounding checks
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/arjun/nyaya/internal/models"
)

type fakeGenClient struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeGenClient) Complete(_ context.Context, _, userPrompt string) (string, error) {
	f.calls++
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testPassages(n int) []models.RetrievedPassage {
	passages := make([]models.RetrievedPassage, n)
	for i := range passages {
		passages[i] = models.RetrievedPassage{
			ChunkID:  fmt.Sprintf("s%d:0000", i),
			SourceID: fmt.Sprintf("s%d", i),
			Text:     fmt.Sprintf("Provision %d states the applicable rule.", i),
			Score:    0.9,
			Origin:   models.OriginStatute,
			Title:    fmt.Sprintf("Act %d", i),
		}
	}
	return passages
}

func TestGenerator_EmptyPassagesFallback(t *testing.T) {
	client := &fakeGenClient{}
	g := NewGenerator(client)

	answer, err := g.Answer(context.Background(), "is this legal?", nil)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Text != FallbackAnswer {
		t.Errorf("fallback text = %q", answer.Text)
	}
	if answer.Grounded {
		t.Error("fallback answer must not be grounded")
	}
	if len(answer.Citations) != 0 {
		t.Errorf("fallback answer has %d citations", len(answer.Citations))
	}
	if client.calls != 0 {
		t.Error("generation capability invoked despite empty retrieval")
	}
}

func TestGenerator_CitationsCollectedInOrder(t *testing.T) {
	client := &fakeGenClient{
		response: "Under the cited act, the penalty applies to repeat offenders [P2]. " +
			"The limitation period for such claims is three years from accrual [P1]. " +
			"This follows from the same statutory scheme discussed above [P2].",
	}
	g := NewGenerator(client)
	passages := testPassages(3)

	answer, err := g.Answer(context.Background(), "what is the penalty?", passages)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if len(answer.Citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(answer.Citations))
	}
	if answer.Citations[0].Label != "P2" || answer.Citations[1].Label != "P1" {
		t.Errorf("citation order = %s, %s; want P2, P1", answer.Citations[0].Label, answer.Citations[1].Label)
	}
	if answer.Citations[0].Passage.ChunkID != passages[1].ChunkID {
		t.Errorf("citation P2 resolves to %s", answer.Citations[0].Passage.ChunkID)
	}
	if !answer.Grounded {
		t.Error("fully cited answer should be grounded")
	}
}

func TestGenerator_InvalidCitationMarkersIgnored(t *testing.T) {
	client := &fakeGenClient{
		response: "The provision imposes a mandatory minimum sentence on conviction [P1] [P9].",
	}
	g := NewGenerator(client)

	answer, err := g.Answer(context.Background(), "q", testPassages(2))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(answer.Citations) != 1 || answer.Citations[0].Label != "P1" {
		t.Errorf("citations = %+v, want only P1", answer.Citations)
	}
	if !answer.Grounded {
		t.Error("answer with one valid citation per sentence should be grounded")
	}
}

func TestGenerator_UncitedSentenceMarksUngrounded(t *testing.T) {
	client := &fakeGenClient{
		response: "The act prescribes imprisonment for up to seven years on conviction [P1]. " +
			"Courts have universally extended this doctrine to cover digital contracts as well.",
	}
	g := NewGenerator(client)

	answer, err := g.Answer(context.Background(), "q", testPassages(1))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Grounded {
		t.Error("answer with an uncited substantive claim must not be grounded")
	}
	if len(answer.Citations) != 1 {
		t.Errorf("valid citations should still be attached, got %d", len(answer.Citations))
	}
}

func TestGenerator_NoCitationsAtAllUngrounded(t *testing.T) {
	client := &fakeGenClient{response: "Yes."}
	g := NewGenerator(client)

	answer, err := g.Answer(context.Background(), "q", testPassages(1))
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Grounded {
		t.Error("answer without citations must not be grounded")
	}
}

func TestGenerator_PromptEnumeratesPassages(t *testing.T) {
	client := &fakeGenClient{response: "Answer [P1]."}
	g := NewGenerator(client)
	passages := testPassages(2)

	if _, err := g.Answer(context.Background(), "the question", passages); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	for _, want := range []string{"[P1]", "[P2]", passages[0].Text, passages[1].Text, "the question", "Act 0"} {
		if !strings.Contains(client.lastUser, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerator_PropagatesGenerationFailure(t *testing.T) {
	client := &fakeGenClient{err: fmt.Errorf("%w: upstream 503", ErrGenerationUnavailable)}
	g := NewGenerator(client)

	_, err := g.Answer(context.Background(), "q", testPassages(1))
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("error = %v, want ErrGenerationUnavailable", err)
	}
}
