// ABOUTME: In-memory VectorIndex with copy-on-write versioned snapshots
// ABOUTME: Readers bind to one snapshot, so swaps never tear a query
package index

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arjun/nyaya/internal/models"
)

// snapshot is one immutable version of the index content
type snapshot struct {
	version int64
	entries map[string]models.IndexEntry
	sources map[string]SourceInfo
}

// MemoryIndex is a brute-force cosine index held in memory. Every mutation
// builds a fresh snapshot and swaps it in under the lock; queries copy the
// snapshot pointer once and never observe later mutations.
type MemoryIndex struct {
	mu        sync.RWMutex
	dimension int
	current   *snapshot
}

// NewMemoryIndex creates an empty index for vectors of the given dimension
func NewMemoryIndex(dimension int) *MemoryIndex {
	return &MemoryIndex{
		dimension: dimension,
		current: &snapshot{
			entries: map[string]models.IndexEntry{},
			sources: map[string]SourceInfo{},
		},
	}
}

func (m *MemoryIndex) validate(entries []models.IndexEntry) error {
	for _, e := range entries {
		if len(e.Vector) != m.dimension {
			return fmt.Errorf("entry %s: invalid vector dimension: expected %d, got %d",
				e.ChunkID, m.dimension, len(e.Vector))
		}
	}
	return nil
}

// clone copies the current snapshot for mutation
func (m *MemoryIndex) clone() *snapshot {
	next := &snapshot{
		version: m.current.version + 1,
		entries: make(map[string]models.IndexEntry, len(m.current.entries)),
		sources: make(map[string]SourceInfo, len(m.current.sources)),
	}
	for k, v := range m.current.entries {
		next.entries[k] = v
	}
	for k, v := range m.current.sources {
		next.sources[k] = v
	}
	return next
}

// Upsert inserts or replaces entries keyed by chunk ID
func (m *MemoryIndex) Upsert(entries []models.IndexEntry) error {
	if err := m.validate(entries); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.clone()
	for _, e := range entries {
		next.entries[e.ChunkID] = e
	}
	m.current = next
	return nil
}

// DeleteBySource removes every entry belonging to a source
func (m *MemoryIndex) DeleteBySource(sourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.clone()
	for id, e := range next.entries {
		if e.SourceID == sourceID {
			delete(next.entries, id)
		}
	}
	delete(next.sources, sourceID)
	m.current = next
	return nil
}

// SwapSource atomically replaces a source's entries and registry record
func (m *MemoryIndex) SwapSource(source SourceInfo, entries []models.IndexEntry) (int64, error) {
	if err := m.validate(entries); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.clone()
	for id, e := range next.entries {
		if e.SourceID == source.ID {
			delete(next.entries, id)
		}
	}
	for _, e := range entries {
		next.entries[e.ChunkID] = e
	}
	source.ChunkCount = len(entries)
	next.sources[source.ID] = source
	m.current = next
	return next.version, nil
}

// Query scores every candidate passing the filter against the query vector
func (m *MemoryIndex) Query(vector []float64, k int, filter Filter) ([]models.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(vector) != m.dimension {
		return nil, fmt.Errorf("invalid query dimension: expected %d, got %d", m.dimension, len(vector))
	}

	m.mu.RLock()
	snap := m.current
	m.mu.RUnlock()

	var results []models.ScoredEntry
	for _, e := range snap.entries {
		if !filter.Matches(e) {
			continue
		}
		results = append(results, models.ScoredEntry{Entry: e, Score: DotProduct(vector, e.Vector)})
	}

	sort.Slice(results, func(i, j int) bool { return RankLess(results[i], results[j]) })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Source returns the registry record for a source, or nil if absent
func (m *MemoryIndex) Source(sourceID string) (*SourceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if info, ok := m.current.sources[sourceID]; ok {
		return &info, nil
	}
	return nil, nil
}

// Sources lists all registered sources ordered by ID
func (m *MemoryIndex) Sources() ([]SourceInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SourceInfo, 0, len(m.current.sources))
	for _, info := range m.current.sources {
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Version returns the current index version
func (m *MemoryIndex) Version() (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.version, nil
}

// Close is a no-op for the in-memory index
func (m *MemoryIndex) Close() error {
	return nil
}
