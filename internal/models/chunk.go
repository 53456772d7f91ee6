// ABOUTME: Chunk is the unit of indexing and retrieval, cut from a source document
// ABOUTME: Spans are rune offsets into the cleaned source text for provenance
package models

// CharSpan marks the half-open rune range [Start, End) a chunk covers
type CharSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Overlaps reports whether two spans share at least one position
func (s CharSpan) Overlaps(other CharSpan) bool {
	return s.Start < other.End && other.Start < s.End
}

// Chunk is a contiguous excerpt of a source document
type Chunk struct {
	ID            string            `json:"id"`
	SourceID      string            `json:"source_id"`
	SequenceIndex int               `json:"sequence_index"`
	Text          string            `json:"text"`
	Span          CharSpan          `json:"span"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
