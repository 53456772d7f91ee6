// ABOUTME: IndexEntry and query result types for the vector index
// ABOUTME: Entries denormalize provenance so citations need no secondary lookup
package models

// IndexEntry is the tuple stored in a vector index: chunk, embedding, and
// enough provenance to cite the passage directly from a query result.
type IndexEntry struct {
	ChunkID       string            `json:"chunk_id"`
	SourceID      string            `json:"source_id"`
	SequenceIndex int               `json:"sequence_index"`
	Text          string            `json:"text"`
	Span          CharSpan          `json:"span"`
	Vector        []float64         `json:"vector"`
	ModelVersion  string            `json:"model_version"`
	Origin        Origin            `json:"origin"`
	Title         string            `json:"title"`
	DocVersion    int64             `json:"doc_version"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ScoredEntry pairs an index entry with its similarity to a query vector
type ScoredEntry struct {
	Entry IndexEntry `json:"entry"`
	Score float64    `json:"score"`
}

// RetrievedPassage is a per-query, source-attributed retrieval result.
// Never persisted.
type RetrievedPassage struct {
	ChunkID       string            `json:"chunk_id"`
	SourceID      string            `json:"source_id"`
	SequenceIndex int               `json:"sequence_index"`
	Text          string            `json:"text"`
	Span          CharSpan          `json:"span"`
	Score         float64           `json:"score"`
	Origin        Origin            `json:"origin"`
	Title         string            `json:"title"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}
