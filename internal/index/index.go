// ABOUTME: VectorIndex is the storage capability for embedded chunks
// ABOUTME: Versioned so the updater can swap a source atomically under readers
package index

import (
	"time"

	"github.com/arjun/nyaya/internal/models"
)

// Filter restricts query candidates before ranking
type Filter struct {
	Origins []models.Origin
	Domain  string
}

// Matches reports whether an entry passes the filter
func (f Filter) Matches(entry models.IndexEntry) bool {
	if len(f.Origins) > 0 {
		found := false
		for _, o := range f.Origins {
			if entry.Origin == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Domain != "" && entry.Metadata["domain"] != f.Domain {
		return false
	}
	return true
}

// SourceInfo is the registry record for an indexed source document
type SourceInfo struct {
	ID          string        `json:"id"`
	Origin      models.Origin `json:"origin"`
	Title       string        `json:"title"`
	DocVersion  int64         `json:"doc_version"`
	ContentHash string        `json:"content_hash"`
	ChunkCount  int           `json:"chunk_count"`
	IngestedAt  time.Time     `json:"ingested_at"`
}

// VectorIndex stores (vector, metadata, text) tuples and serves k-nearest
// queries. All reads observe a single index version; SwapSource installs a
// new version atomically so in-flight queries never see a partial update.
type VectorIndex interface {
	// Upsert inserts or replaces entries keyed by chunk ID
	Upsert(entries []models.IndexEntry) error

	// DeleteBySource removes every entry belonging to a source
	DeleteBySource(sourceID string) error

	// SwapSource atomically replaces a source's entries and registry record,
	// returning the new index version
	SwapSource(source SourceInfo, entries []models.IndexEntry) (int64, error)

	// Query returns up to k entries sorted by descending similarity, ties
	// broken by document version (newer first) then chunk ID
	Query(vector []float64, k int, filter Filter) ([]models.ScoredEntry, error)

	// Source returns the registry record for a source, or nil if absent
	Source(sourceID string) (*SourceInfo, error)

	// Sources lists all registered sources
	Sources() ([]SourceInfo, error)

	// Version returns the current index version
	Version() (int64, error)

	// Close releases any underlying resources
	Close() error
}

// DotProduct computes the dot product of two equal-dimension vectors.
// Inputs are L2-normalized upstream, so this is their cosine similarity.
func DotProduct(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// RankLess orders scored entries by descending score, then newer document
// version, then chunk ID, so query results are deterministic.
func RankLess(a, b models.ScoredEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Entry.DocVersion != b.Entry.DocVersion {
		return a.Entry.DocVersion > b.Entry.DocVersion
	}
	return a.Entry.ChunkID < b.Entry.ChunkID
}
