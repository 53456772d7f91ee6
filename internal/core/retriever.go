// ABOUTME: Retriever embeds a query and turns index hits into cited passages
// ABOUTME: Oversamples, thresholds, and deduplicates overlapping chunks
package core

import (
	"context"
	"fmt"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// Retriever runs similarity search over a vector index. Safe for concurrent
// use; a single query binds to one index version for its whole lifetime.
type Retriever struct {
	embedder   *Embedder
	index      index.VectorIndex
	oversample int
}

// NewRetriever creates a Retriever. oversample scales the candidate pool
// fetched before thresholding and deduplication; values below 1 are clamped.
func NewRetriever(embedder *Embedder, idx index.VectorIndex, oversample int) *Retriever {
	if oversample < 1 {
		oversample = 1
	}
	return &Retriever{
		embedder:   embedder,
		index:      idx,
		oversample: oversample,
	}
}

// Retrieve returns up to k passages matching the query text, best first.
// Passages scoring below minSimilarity are dropped; two passages from the
// same source with overlapping spans count as duplicates and only the
// higher-scoring one survives. An empty result is a normal outcome, not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, queryText string, k int, minSimilarity float64, filter index.Filter) ([]models.RetrievedPassage, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := r.index.Query(vector, k*r.oversample, filter)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}

	passages := make([]models.RetrievedPassage, 0, k)
	for _, s := range scored {
		// Normalized vectors can still produce small negative dot products;
		// clamp so scores stay in [0, 1]
		score := s.Score
		if score < 0 {
			score = 0
		}
		if score < minSimilarity {
			continue
		}
		if isDuplicate(passages, s.Entry) {
			continue
		}
		passages = append(passages, models.RetrievedPassage{
			ChunkID:       s.Entry.ChunkID,
			SourceID:      s.Entry.SourceID,
			SequenceIndex: s.Entry.SequenceIndex,
			Text:          s.Entry.Text,
			Span:          s.Entry.Span,
			Score:         score,
			Origin:        s.Entry.Origin,
			Title:         s.Entry.Title,
			Metadata:      s.Entry.Metadata,
		})
		if len(passages) == k {
			break
		}
	}
	return passages, nil
}

// isDuplicate reports whether the entry overlaps a passage already kept from
// the same source. Kept passages arrive in descending score order, so the
// survivor is always the higher-scoring one.
func isDuplicate(kept []models.RetrievedPassage, entry models.IndexEntry) bool {
	for _, p := range kept {
		if p.SourceID == entry.SourceID && p.Span.Overlaps(entry.Span) {
			return true
		}
	}
	return false
}
