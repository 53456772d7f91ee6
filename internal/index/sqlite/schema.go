// ABOUTME: SQLite schema for the versioned vector index
// ABOUTME: Rows carry a validity interval so readers pin to one index version
package sqlite

// Schema contains all SQL statements for database initialization.
//
// Every entries/sources row is valid for index versions in
// [valid_from, valid_to); an open row has valid_to NULL. A swap closes the
// old rows and inserts new ones at version v+1 in a single transaction, then
// flips index_meta.current_version, so a reader that picked up version v
// keeps seeing exactly the version-v rows.
const Schema = `
-- Singleton row holding the current index version
CREATE TABLE IF NOT EXISTS index_meta (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    current_version INTEGER NOT NULL DEFAULT 0
);
INSERT OR IGNORE INTO index_meta (id, current_version) VALUES (1, 0);

-- Source registry (one open row per indexed source document)
CREATE TABLE IF NOT EXISTS sources (
    id TEXT NOT NULL,
    origin TEXT NOT NULL,
    title TEXT,
    doc_version INTEGER NOT NULL,
    content_hash TEXT NOT NULL,
    chunk_count INTEGER NOT NULL DEFAULT 0,
    ingested_at DATETIME NOT NULL,
    valid_from INTEGER NOT NULL,
    valid_to INTEGER,
    PRIMARY KEY (id, valid_from)
);

-- Index entries (chunk + vector + denormalized provenance)
CREATE TABLE IF NOT EXISTS entries (
    chunk_id TEXT NOT NULL,
    source_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    text TEXT NOT NULL,
    span_start INTEGER NOT NULL,
    span_end INTEGER NOT NULL,
    origin TEXT NOT NULL,
    title TEXT,
    doc_version INTEGER NOT NULL,
    model_version TEXT NOT NULL,
    domain TEXT,
    metadata TEXT,
    vector BLOB NOT NULL,
    valid_from INTEGER NOT NULL,
    valid_to INTEGER,
    PRIMARY KEY (chunk_id, valid_from)
);

-- Indexes for efficient querying
CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id);
CREATE INDEX IF NOT EXISTS idx_entries_origin ON entries(origin);
CREATE INDEX IF NOT EXISTS idx_entries_validity ON entries(valid_from, valid_to);
CREATE INDEX IF NOT EXISTS idx_sources_validity ON sources(valid_from, valid_to);
`

// SchemaVersion is the current schema version for migrations
const SchemaVersion = 1
