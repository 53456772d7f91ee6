// ABOUTME: Updater re-chunks and re-embeds changed sources and swaps them in
// ABOUTME: Content-hash no-op detection; per-source mutual exclusion
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// Updater maintains a vector index as source documents change. All mutation
// goes through its swap protocol: the full chunk and embedding set is built
// before the index is touched, then installed atomically, so concurrent
// readers see either the old or the new state of a source, never a mix.
type Updater struct {
	index    index.VectorIndex
	embedder *Embedder
	policy   ChunkPolicy

	mu       sync.Mutex
	inFlight map[string]*sync.Mutex
}

// NewUpdater creates an Updater for the given index
func NewUpdater(idx index.VectorIndex, embedder *Embedder, policy ChunkPolicy) *Updater {
	return &Updater{
		index:    idx,
		embedder: embedder,
		policy:   policy,
		inFlight: make(map[string]*sync.Mutex),
	}
}

// Refresh ingests or re-ingests a document. When the cleaned content hash
// matches what the index already holds, nothing changes and updated is
// false. Otherwise the document is chunked and embedded in full, then
// swapped in atomically under the next index version. At most one refresh
// per source runs at a time; refreshes of different sources proceed in
// parallel.
func (u *Updater) Refresh(ctx context.Context, doc models.SourceDocument) (version int64, updated bool, err error) {
	return u.refresh(ctx, doc, nil)
}

// RefreshWithMetadata is Refresh with extra metadata merged into every
// chunk, used when seeding reference clause patterns with issue tags.
func (u *Updater) RefreshWithMetadata(ctx context.Context, doc models.SourceDocument, extra map[string]string) (version int64, updated bool, err error) {
	return u.refresh(ctx, doc, extra)
}

func (u *Updater) refresh(ctx context.Context, doc models.SourceDocument, extra map[string]string) (int64, bool, error) {
	if doc.ID == "" {
		return 0, false, fmt.Errorf("source document has no ID")
	}

	lock := u.sourceLock(doc.ID)
	lock.Lock()
	defer lock.Unlock()

	cleaned := CleanText(doc.FullText)
	hash := contentHash(cleaned)

	existing, err := u.index.Source(doc.ID)
	if err != nil {
		return 0, false, fmt.Errorf("looking up source %s: %w", doc.ID, err)
	}
	if existing != nil && existing.ContentHash == hash {
		current, err := u.index.Version()
		if err != nil {
			return 0, false, err
		}
		return current, false, nil
	}

	docVersion := int64(1)
	if existing != nil {
		docVersion = existing.DocVersion + 1
	}
	doc.Version = docVersion
	doc.FullText = cleaned

	chunks, err := ChunkDocument(doc, u.policy)
	if err != nil {
		return 0, false, err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	// Build everything before mutating the index; a failure here leaves the
	// old state fully intact
	vectors, err := u.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, false, fmt.Errorf("embedding source %s: %w", doc.ID, err)
	}

	entries := make([]models.IndexEntry, len(chunks))
	for i, c := range chunks {
		entries[i] = models.IndexEntry{
			ChunkID:       c.ID,
			SourceID:      c.SourceID,
			SequenceIndex: c.SequenceIndex,
			Text:          c.Text,
			Span:          c.Span,
			Vector:        vectors[i],
			ModelVersion:  u.embedder.ModelVersion(),
			Origin:        doc.Origin,
			Title:         doc.Title,
			DocVersion:    docVersion,
			Metadata:      mergeMetadata(c.Metadata, extra),
		}
	}

	ingestedAt := doc.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}
	newVersion, err := u.index.SwapSource(index.SourceInfo{
		ID:          doc.ID,
		Origin:      doc.Origin,
		Title:       doc.Title,
		DocVersion:  docVersion,
		ContentHash: hash,
		ChunkCount:  len(entries),
		IngestedAt:  ingestedAt,
	}, entries)
	if err != nil {
		return 0, false, fmt.Errorf("swapping source %s: %w", doc.ID, err)
	}
	return newVersion, true, nil
}

// Remove deletes a source and its chunks from the index. The source's lock
// entry is dropped afterwards so the map does not retain every source ID
// ever seen; a concurrent refresh simply recreates it.
func (u *Updater) Remove(sourceID string) error {
	lock := u.sourceLock(sourceID)
	lock.Lock()
	err := u.index.DeleteBySource(sourceID)
	lock.Unlock()

	u.mu.Lock()
	if u.inFlight[sourceID] == lock {
		delete(u.inFlight, sourceID)
	}
	u.mu.Unlock()
	return err
}

func (u *Updater) sourceLock(sourceID string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	lock, ok := u.inFlight[sourceID]
	if !ok {
		lock = &sync.Mutex{}
		u.inFlight[sourceID] = lock
	}
	return lock
}

func mergeMetadata(base, extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return base
	}
	merged := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func contentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
