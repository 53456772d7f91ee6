// ABOUTME: Splits source documents into overlapping chunks with stable IDs
// ABOUTME: Pure function of (document, policy); spans are rune offsets
package core

import (
	"fmt"
	"strings"

	"github.com/arjun/nyaya/internal/models"
)

// BoundaryMode selects where a chunk is allowed to end
type BoundaryMode string

const (
	BoundaryChar      BoundaryMode = "char"
	BoundarySentence  BoundaryMode = "sentence"
	BoundaryParagraph BoundaryMode = "paragraph"
)

// ParseBoundaryMode converts a string to a BoundaryMode
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch BoundaryMode(strings.ToLower(strings.TrimSpace(s))) {
	case BoundaryChar:
		return BoundaryChar, nil
	case BoundarySentence:
		return BoundarySentence, nil
	case BoundaryParagraph:
		return BoundaryParagraph, nil
	default:
		return "", fmt.Errorf("%w: unknown boundary mode %q", ErrInvalidPolicy, s)
	}
}

// ChunkPolicy controls how a document is split. TargetSize and Overlap are
// measured in runes.
type ChunkPolicy struct {
	TargetSize int
	Overlap    int
	Boundary   BoundaryMode
}

// Validate checks the policy for internal consistency
func (p ChunkPolicy) Validate() error {
	if p.TargetSize <= 0 {
		return fmt.Errorf("%w: target size must be positive, got %d", ErrInvalidPolicy, p.TargetSize)
	}
	if p.Overlap < 0 {
		return fmt.Errorf("%w: overlap must be non-negative, got %d", ErrInvalidPolicy, p.Overlap)
	}
	if p.Overlap >= p.TargetSize {
		return fmt.Errorf("%w: overlap %d must be smaller than target size %d", ErrInvalidPolicy, p.Overlap, p.TargetSize)
	}
	if _, err := ParseBoundaryMode(string(p.Boundary)); err != nil {
		return err
	}
	return nil
}

// ChunkDocument splits a document into overlapping chunks. Consecutive chunks
// share exactly policy.Overlap runes, so concatenating chunk texts with the
// overlap stripped reconstructs the document. Chunk IDs are derived from the
// source ID and sequence index and are stable across re-chunking.
//
// A document shorter than the target size yields exactly one chunk; an empty
// or whitespace-only document yields none.
func ChunkDocument(doc models.SourceDocument, policy ChunkPolicy) ([]models.Chunk, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.FullText) == "" {
		return nil, nil
	}

	runes := []rune(doc.FullText)
	var chunks []models.Chunk
	start := 0
	for seq := 0; start < len(runes); seq++ {
		end := start + policy.TargetSize
		if end >= len(runes) {
			end = len(runes)
		} else {
			end = adjustToBoundary(runes, start, end, policy)
		}

		text := string(runes[start:end])
		chunks = append(chunks, models.Chunk{
			ID:            fmt.Sprintf("%s:%04d", doc.ID, seq),
			SourceID:      doc.ID,
			SequenceIndex: seq,
			Text:          text,
			Span:          models.CharSpan{Start: start, End: end},
			Metadata:      map[string]string{"domain": DetectLegalDomain(text)},
		})

		if end >= len(runes) {
			break
		}
		start = end - policy.Overlap
	}
	return chunks, nil
}

// adjustToBoundary pulls the chunk end back to the nearest boundary marker.
// The end never retreats past the overlap window or the midpoint of the
// chunk, which keeps the next start strictly advancing.
func adjustToBoundary(runes []rune, start, end int, policy ChunkPolicy) int {
	if policy.Boundary == BoundaryChar {
		return end
	}
	minEnd := start + (end-start)/2
	if floor := start + policy.Overlap; floor > minEnd {
		minEnd = floor
	}
	switch policy.Boundary {
	case BoundarySentence:
		for i := end - 1; i > minEnd; i-- {
			switch runes[i] {
			case '.', '!', '?', '\n':
				return i + 1
			}
		}
	case BoundaryParagraph:
		for i := end - 1; i > minEnd; i-- {
			if runes[i] == '\n' && runes[i-1] == '\n' {
				return i + 1
			}
		}
	}
	return end
}
