// ABOUTME: Tests for document chunking
// ABOUTME: Covers policy validation, overlap arithmetic, and reconstruction
package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/arjun/nyaya/internal/models"
)

func testDoc(text string) models.SourceDocument {
	return models.SourceDocument{
		ID:       "doc-1",
		Origin:   models.OriginStatute,
		Title:    "Test Act",
		FullText: text,
		Version:  1,
	}
}

func TestChunkPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  ChunkPolicy
		wantErr bool
	}{
		{"valid", ChunkPolicy{TargetSize: 1000, Overlap: 200, Boundary: BoundarySentence}, false},
		{"zero overlap", ChunkPolicy{TargetSize: 100, Overlap: 0, Boundary: BoundaryChar}, false},
		{"zero target", ChunkPolicy{TargetSize: 0, Overlap: 0, Boundary: BoundaryChar}, true},
		{"negative target", ChunkPolicy{TargetSize: -5, Overlap: 0, Boundary: BoundaryChar}, true},
		{"negative overlap", ChunkPolicy{TargetSize: 100, Overlap: -1, Boundary: BoundaryChar}, true},
		{"overlap equals target", ChunkPolicy{TargetSize: 100, Overlap: 100, Boundary: BoundaryChar}, true},
		{"overlap exceeds target", ChunkPolicy{TargetSize: 100, Overlap: 150, Boundary: BoundaryChar}, true},
		{"unknown boundary", ChunkPolicy{TargetSize: 100, Overlap: 10, Boundary: "token"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPolicy) {
					t.Errorf("Validate() error = %v, want ErrInvalidPolicy", err)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestChunkDocument_ShortDocumentSingleChunk(t *testing.T) {
	doc := testDoc("A short statute.")
	chunks, err := ChunkDocument(doc, ChunkPolicy{TargetSize: 1000, Overlap: 200, Boundary: BoundarySentence})
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Text != doc.FullText {
		t.Errorf("chunk text = %q, want full document", c.Text)
	}
	if c.Span.Start != 0 || c.Span.End != len([]rune(doc.FullText)) {
		t.Errorf("span = %+v, want full range", c.Span)
	}
	if c.ID != "doc-1:0000" {
		t.Errorf("chunk ID = %q, want doc-1:0000", c.ID)
	}
}

func TestChunkDocument_EmptyDocument(t *testing.T) {
	for _, text := range []string{"", "   \n\t  "} {
		chunks, err := ChunkDocument(testDoc(text), ChunkPolicy{TargetSize: 100, Overlap: 10, Boundary: BoundaryChar})
		if err != nil {
			t.Fatalf("ChunkDocument(%q) error = %v", text, err)
		}
		if len(chunks) != 0 {
			t.Errorf("ChunkDocument(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestChunkDocument_OverlapAndReconstruction(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&sb, "Section %02d of the act provides for penalties. ", i)
	}
	doc := testDoc(sb.String())
	policy := ChunkPolicy{TargetSize: 200, Overlap: 40, Boundary: BoundaryChar}

	chunks, err := ChunkDocument(doc, policy)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	runes := []rune(doc.FullText)
	var rebuilt []rune
	for i, c := range chunks {
		if c.SequenceIndex != i {
			t.Errorf("chunk %d has sequence index %d", i, c.SequenceIndex)
		}
		if c.Text == "" {
			t.Fatalf("chunk %d is empty", i)
		}
		if got := string(runes[c.Span.Start:c.Span.End]); got != c.Text {
			t.Errorf("chunk %d span does not match text", i)
		}
		if i > 0 {
			prev := chunks[i-1]
			if prev.Span.End-c.Span.Start != policy.Overlap {
				t.Errorf("chunk %d overlap = %d, want %d", i, prev.Span.End-c.Span.Start, policy.Overlap)
			}
			rebuilt = append(rebuilt, []rune(c.Text)[policy.Overlap:]...)
		} else {
			rebuilt = append(rebuilt, []rune(c.Text)...)
		}
	}
	if string(rebuilt) != doc.FullText {
		t.Error("concatenating chunks with overlap stripped did not reconstruct document")
	}
}

func TestChunkDocument_SentenceBoundary(t *testing.T) {
	text := strings.Repeat("The tenant shall pay rent on the first day of each month. ", 10)
	doc := testDoc(text)
	chunks, err := ChunkDocument(doc, ChunkPolicy{TargetSize: 150, Overlap: 20, Boundary: BoundarySentence})
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}

	runes := []rune(text)
	for i, c := range chunks[:len(chunks)-1] {
		last := runes[c.Span.End-1]
		if last != '.' && last != '!' && last != '?' && last != '\n' && last != ' ' {
			t.Errorf("chunk %d ends mid-sentence at %q", i, string(last))
		}
	}
}

func TestChunkDocument_ParagraphBoundary(t *testing.T) {
	var paras []string
	for i := 0; i < 8; i++ {
		paras = append(paras, fmt.Sprintf("Clause %d: the party of the first part agrees to the terms herein set out", i))
	}
	text := strings.Join(paras, "\n\n")
	doc := testDoc(text)

	chunks, err := ChunkDocument(doc, ChunkPolicy{TargetSize: 180, Overlap: 20, Boundary: BoundaryParagraph})
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	runes := []rune(text)
	brokeOnParagraph := false
	for _, c := range chunks[:len(chunks)-1] {
		if c.Span.End >= 2 && runes[c.Span.End-1] == '\n' && runes[c.Span.End-2] == '\n' {
			brokeOnParagraph = true
		}
	}
	if !brokeOnParagraph {
		t.Error("no chunk ended on a paragraph break")
	}
}

func TestChunkDocument_Deterministic(t *testing.T) {
	doc := testDoc(strings.Repeat("Every person who commits an offence shall be punished. ", 30))
	policy := ChunkPolicy{TargetSize: 120, Overlap: 30, Boundary: BoundarySentence}

	first, err := ChunkDocument(doc, policy)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	second, err := ChunkDocument(doc, policy)
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("chunking is not deterministic for identical inputs")
	}
}

func TestChunkDocument_RuneOffsets(t *testing.T) {
	// Multi-byte runes: spans must count runes, not bytes
	text := strings.Repeat("धारा 302 के अधीन दण्ड। ", 20)
	doc := testDoc(text)
	chunks, err := ChunkDocument(doc, ChunkPolicy{TargetSize: 80, Overlap: 10, Boundary: BoundaryChar})
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}

	runes := []rune(text)
	for i, c := range chunks {
		if c.Span.End > len(runes) {
			t.Fatalf("chunk %d span end %d exceeds rune length %d", i, c.Span.End, len(runes))
		}
		if string(runes[c.Span.Start:c.Span.End]) != c.Text {
			t.Errorf("chunk %d rune span mismatch", i)
		}
	}
}

func TestChunkDocument_DomainMetadata(t *testing.T) {
	doc := testDoc("The accused was charged with an offence and punishment under criminal law, with bail denied during investigation.")
	chunks, err := ChunkDocument(doc, ChunkPolicy{TargetSize: 1000, Overlap: 100, Boundary: BoundarySentence})
	if err != nil {
		t.Fatalf("ChunkDocument() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Metadata["domain"] != "criminal" {
		t.Errorf("domain = %q, want criminal", chunks[0].Metadata["domain"])
	}
}
