// ABOUTME: SourceDocument is an immutable ingested legal text with provenance
// ABOUTME: Re-ingestion supersedes a document with a new version, never mutates it
package models

import "time"

// Origin classifies where a source document came from
type Origin string

const (
	OriginStatute    Origin = "statute"
	OriginJudgment   Origin = "judgment"
	OriginNotice     Origin = "notice"
	OriginUserUpload Origin = "user-upload"
)

// ValidOrigins lists every accepted origin value
var ValidOrigins = []Origin{OriginStatute, OriginJudgment, OriginNotice, OriginUserUpload}

// ParseOrigin validates an origin string, defaulting to user-upload
func ParseOrigin(s string) (Origin, bool) {
	for _, o := range ValidOrigins {
		if string(o) == s {
			return o, true
		}
	}
	return OriginUserUpload, false
}

// SourceDocument represents a single ingested legal text
type SourceDocument struct {
	ID         string    `json:"id"`
	Origin     Origin    `json:"origin"`
	Title      string    `json:"title"`
	FullText   string    `json:"full_text"`
	Version    int64     `json:"version"`
	IngestedAt time.Time `json:"ingested_at"`
}
