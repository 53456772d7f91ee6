// ABOUTME: Error taxonomy for the retrieval pipeline
// ABOUTME: Sentinel errors checked with errors.Is at call sites
package core

import "errors"

var (
	// ErrInvalidPolicy means the chunking configuration is unusable.
	// Caller error, never retried.
	ErrInvalidPolicy = errors.New("invalid chunking policy")

	// ErrEmbeddingUnavailable means the embedding capability failed after
	// bounded retries. An unembedded chunk is never silently skipped.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")

	// ErrGenerationUnavailable means the generation capability failed after
	// bounded retries.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")

	// ErrTimeout means an external call exceeded its bound. Index state is
	// unaffected; the request fails.
	ErrTimeout = errors.New("external call timed out")
)
