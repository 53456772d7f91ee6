// ABOUTME: Durable VectorIndex on SQLite with vectors stored as BLOBs
// ABOUTME: Mutations bump the index version; queries pin to one version
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// Store implements index.VectorIndex backed by SQLite
type Store struct {
	db        *DB
	dimension int
}

// NewStore creates a vector index over the given database
func NewStore(db *DB, dimension int) *Store {
	return &Store{db: db, dimension: dimension}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) validate(entries []models.IndexEntry) error {
	for _, e := range entries {
		if len(e.Vector) != s.dimension {
			return fmt.Errorf("entry %s: invalid vector dimension: expected %d, got %d",
				e.ChunkID, s.dimension, len(e.Vector))
		}
	}
	return nil
}

// bumpVersion increments and returns the index version inside tx
func bumpVersion(tx *sql.Tx) (int64, error) {
	if _, err := tx.Exec(`UPDATE index_meta SET current_version = current_version + 1 WHERE id = 1`); err != nil {
		return 0, fmt.Errorf("failed to bump index version: %w", err)
	}
	var v int64
	if err := tx.QueryRow(`SELECT current_version FROM index_meta WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read index version: %w", err)
	}
	return v, nil
}

func insertEntry(tx *sql.Tx, e models.IndexEntry, version int64) error {
	var metadata []byte
	if len(e.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", e.ChunkID, err)
		}
	}

	_, err := tx.Exec(`
		INSERT INTO entries (chunk_id, source_id, seq, text, span_start, span_end,
			origin, title, doc_version, model_version, domain, metadata, vector, valid_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ChunkID, e.SourceID, e.SequenceIndex, e.Text, e.Span.Start, e.Span.End,
		string(e.Origin), e.Title, e.DocVersion, e.ModelVersion,
		e.Metadata["domain"], nullBytes(metadata), vectorToBlob(e.Vector), version)
	if err != nil {
		return fmt.Errorf("failed to insert entry %s: %w", e.ChunkID, err)
	}
	return nil
}

// Upsert inserts or replaces entries keyed by chunk ID
func (s *Store) Upsert(entries []models.IndexEntry) error {
	if err := s.validate(entries); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := bumpVersion(tx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if _, err := tx.Exec(`
			UPDATE entries SET valid_to = ? WHERE chunk_id = ? AND valid_to IS NULL
		`, version, e.ChunkID); err != nil {
			return fmt.Errorf("failed to retire entry %s: %w", e.ChunkID, err)
		}
		if err := insertEntry(tx, e, version); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteBySource removes every entry belonging to a source
func (s *Store) DeleteBySource(sourceID string) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := bumpVersion(tx)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`
		UPDATE entries SET valid_to = ? WHERE source_id = ? AND valid_to IS NULL
	`, version, sourceID); err != nil {
		return fmt.Errorf("failed to retire entries for %s: %w", sourceID, err)
	}
	if _, err := tx.Exec(`
		UPDATE sources SET valid_to = ? WHERE id = ? AND valid_to IS NULL
	`, version, sourceID); err != nil {
		return fmt.Errorf("failed to retire source %s: %w", sourceID, err)
	}

	return tx.Commit()
}

// SwapSource atomically replaces a source's entries and registry record.
// Delete-old and insert-new happen in one transaction at one new version,
// so readers see either the fully-old or fully-new state.
func (s *Store) SwapSource(source index.SourceInfo, entries []models.IndexEntry) (int64, error) {
	if err := s.validate(entries); err != nil {
		return 0, err
	}

	tx, err := s.db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin swap: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	version, err := bumpVersion(tx)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(`
		UPDATE entries SET valid_to = ? WHERE source_id = ? AND valid_to IS NULL
	`, version, source.ID); err != nil {
		return 0, fmt.Errorf("failed to retire entries for %s: %w", source.ID, err)
	}
	if _, err := tx.Exec(`
		UPDATE sources SET valid_to = ? WHERE id = ? AND valid_to IS NULL
	`, version, source.ID); err != nil {
		return 0, fmt.Errorf("failed to retire source %s: %w", source.ID, err)
	}

	for _, e := range entries {
		if err := insertEntry(tx, e, version); err != nil {
			return 0, err
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO sources (id, origin, title, doc_version, content_hash, chunk_count, ingested_at, valid_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, string(source.Origin), source.Title, source.DocVersion,
		source.ContentHash, len(entries), source.IngestedAt, version); err != nil {
		return 0, fmt.Errorf("failed to register source %s: %w", source.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit swap: %w", err)
	}
	return version, nil
}

// Query scores candidates passing the filter against the query vector.
// The version is read once and every row selected belongs to it, so a swap
// committing mid-query cannot mix states. Origin and domain filtering happen
// in SQL before any vector is scored.
func (s *Store) Query(vector []float64, k int, filter index.Filter) ([]models.ScoredEntry, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("invalid query dimension: expected %d, got %d", s.dimension, len(vector))
	}

	version, err := s.Version()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT chunk_id, source_id, seq, text, span_start, span_end,
			origin, title, doc_version, model_version, metadata, vector
		FROM entries
		WHERE valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)`
	args := []interface{}{version, version}

	if len(filter.Origins) > 0 {
		placeholders := make([]string, len(filter.Origins))
		for i, o := range filter.Origins {
			placeholders[i] = "?"
			args = append(args, string(o))
		}
		query += " AND origin IN (" + strings.Join(placeholders, ", ") + ")"
	}
	if filter.Domain != "" {
		query += " AND domain = ?"
		args = append(args, filter.Domain)
	}

	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []models.ScoredEntry
	for rows.Next() {
		var (
			e        models.IndexEntry
			title    sql.NullString
			metadata sql.NullString
			blob     []byte
		)
		if err := rows.Scan(&e.ChunkID, &e.SourceID, &e.SequenceIndex, &e.Text,
			&e.Span.Start, &e.Span.End, (*string)(&e.Origin), &title,
			&e.DocVersion, &e.ModelVersion, &metadata, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if title.Valid {
			e.Title = title.String
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", e.ChunkID, err)
			}
		}
		e.Vector = blobToVector(blob)

		results = append(results, models.ScoredEntry{
			Entry: e,
			Score: index.DotProduct(vector, e.Vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return index.RankLess(results[i], results[j]) })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Source returns the open registry record for a source, or nil if absent
func (s *Store) Source(sourceID string) (*index.SourceInfo, error) {
	var info index.SourceInfo
	err := s.db.conn.QueryRow(`
		SELECT id, origin, title, doc_version, content_hash, chunk_count, ingested_at
		FROM sources
		WHERE id = ? AND valid_to IS NULL
	`, sourceID).Scan(&info.ID, (*string)(&info.Origin), &info.Title,
		&info.DocVersion, &info.ContentHash, &info.ChunkCount, &info.IngestedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source %s: %w", sourceID, err)
	}
	return &info, nil
}

// Sources lists all registered sources ordered by ID
func (s *Store) Sources() ([]index.SourceInfo, error) {
	rows, err := s.db.conn.Query(`
		SELECT id, origin, title, doc_version, content_hash, chunk_count, ingested_at
		FROM sources
		WHERE valid_to IS NULL
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []index.SourceInfo
	for rows.Next() {
		var info index.SourceInfo
		if err := rows.Scan(&info.ID, (*string)(&info.Origin), &info.Title,
			&info.DocVersion, &info.ContentHash, &info.ChunkCount, &info.IngestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Version returns the current index version
func (s *Store) Version() (int64, error) {
	var v int64
	if err := s.db.conn.QueryRow(`SELECT current_version FROM index_meta WHERE id = 1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read index version: %w", err)
	}
	return v, nil
}

// Compact removes rows retired strictly before the current version. Rows
// retired at the current version survive, so a query that pinned its version
// just before the latest swap still resolves its full row set.
func (s *Store) Compact() error {
	version, err := s.Version()
	if err != nil {
		return err
	}
	if _, err := s.db.conn.Exec(`DELETE FROM entries WHERE valid_to IS NOT NULL AND valid_to < ?`, version); err != nil {
		return fmt.Errorf("failed to compact entries: %w", err)
	}
	if _, err := s.db.conn.Exec(`DELETE FROM sources WHERE valid_to IS NOT NULL AND valid_to < ?`, version); err != nil {
		return fmt.Errorf("failed to compact sources: %w", err)
	}
	return nil
}

func nullBytes(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}

// vectorToBlob converts a float64 slice to binary blob
func vectorToBlob(vector []float64) []byte {
	blob := make([]byte, len(vector)*8)
	for i, v := range vector {
		binary.LittleEndian.PutUint64(blob[i*8:], math.Float64bits(v))
	}
	return blob
}

// blobToVector converts a binary blob to float64 slice
func blobToVector(blob []byte) []float64 {
	count := len(blob) / 8
	vector := make([]float64, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint64(blob[i*8:])
		vector[i] = math.Float64frombits(bits)
	}
	return vector
}
