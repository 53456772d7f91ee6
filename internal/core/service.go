// ABOUTME: Service wires the pipeline components behind one facade
// ABOUTME: Front ends (CLI, MCP server) consume only this surface
package core

import (
	"context"
	"fmt"
	"log"

	"github.com/arjun/nyaya/internal/index"
	"github.com/arjun/nyaya/internal/models"
)

// ServiceOptions carries everything the pipeline needs. Corpus holds the
// general legal corpus; Reference holds flagged clause patterns for the
// analyzer. Both are required.
type ServiceOptions struct {
	Corpus    index.VectorIndex
	Reference index.VectorIndex

	EmbeddingClient  EmbeddingClient
	GenerationClient GenerationClient

	Policy                ChunkPolicy
	TopK                  int
	MinSimilarity         float64
	AnalyzerMinSimilarity float64
	OversampleFactor      int
	EmbedCacheSize        int
}

// Service is the produced interface of the retrieval core: ask questions,
// analyze documents, and keep the indexes fresh. Safe for concurrent use.
type Service struct {
	opts ServiceOptions

	embedder  *Embedder
	retriever *Retriever
	generator *Generator
	analyzer  *Analyzer
	corpusUpd *Updater
	refUpd    *Updater
}

// NewService validates the options and wires the pipeline
func NewService(opts ServiceOptions) (*Service, error) {
	if opts.Corpus == nil || opts.Reference == nil {
		return nil, fmt.Errorf("both corpus and reference indexes are required")
	}
	if opts.EmbeddingClient == nil || opts.GenerationClient == nil {
		return nil, fmt.Errorf("embedding and generation clients are required")
	}
	if err := opts.Policy.Validate(); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		return nil, fmt.Errorf("top-k must be positive, got %d", opts.TopK)
	}

	embedder := NewEmbedder(opts.EmbeddingClient, opts.EmbedCacheSize)
	refRetriever := NewRetriever(embedder, opts.Reference, opts.OversampleFactor)

	return &Service{
		opts:      opts,
		embedder:  embedder,
		retriever: NewRetriever(embedder, opts.Corpus, opts.OversampleFactor),
		generator: NewGenerator(opts.GenerationClient),
		analyzer:  NewAnalyzer(refRetriever, opts.Policy, opts.AnalyzerMinSimilarity),
		corpusUpd: NewUpdater(opts.Corpus, embedder, opts.Policy),
		refUpd:    NewUpdater(opts.Reference, embedder, opts.Policy),
	}, nil
}

// Query answers a legal question from the corpus. The filter optionally
// restricts retrieval by origin or legal domain. An empty retrieval yields
// the fixed ungrounded fallback answer, never an error.
func (s *Service) Query(ctx context.Context, question string, filter index.Filter) (models.Answer, error) {
	passages, err := s.retriever.Retrieve(ctx, question, s.opts.TopK, s.opts.MinSimilarity, filter)
	if err != nil {
		return models.Answer{}, err
	}
	answer, err := s.generator.Answer(ctx, question, passages)
	if err != nil {
		return models.Answer{}, err
	}
	if !answer.Grounded {
		log.Printf("query answered without full grounding (passages=%d, citations=%d)", len(passages), len(answer.Citations))
	}
	return answer, nil
}

// AnalyzeDocument scores a document's clauses against the reference index
func (s *Service) AnalyzeDocument(ctx context.Context, documentText string) (models.AnalysisReport, error) {
	return s.analyzer.Analyze(ctx, documentText)
}

// IngestSource ingests or re-ingests a corpus document. Returns the index
// version and whether anything changed.
func (s *Service) IngestSource(ctx context.Context, doc models.SourceDocument) (int64, bool, error) {
	return s.corpusUpd.Refresh(ctx, doc)
}

// IngestReference ingests a flagged clause pattern into the reference index.
// Every chunk is tagged with the issue kind and severity the analyzer will
// report on a match.
func (s *Service) IngestReference(ctx context.Context, doc models.SourceDocument, issueKind string, severity models.Severity) (int64, bool, error) {
	return s.refUpd.RefreshWithMetadata(ctx, doc, map[string]string{
		"issue_kind": issueKind,
		"severity":   string(severity),
	})
}

// RemoveSource deletes a corpus document and its chunks
func (s *Service) RemoveSource(sourceID string) error {
	return s.corpusUpd.Remove(sourceID)
}

// Sources lists the corpus source registry
func (s *Service) Sources() ([]index.SourceInfo, error) {
	return s.opts.Corpus.Sources()
}

// Source returns one corpus registry record, or nil if absent
func (s *Service) Source(sourceID string) (*index.SourceInfo, error) {
	return s.opts.Corpus.Source(sourceID)
}

// Version returns the current corpus index version
func (s *Service) Version() (int64, error) {
	return s.opts.Corpus.Version()
}

// CompactCorpus drops rows retired before the current index version when the
// store supports it; rows retired at the current version are left for
// queries pinned just before the latest swap
func (s *Service) CompactCorpus() error {
	if c, ok := s.opts.Corpus.(interface{ Compact() error }); ok {
		return c.Compact()
	}
	return nil
}

// Close releases both indexes
func (s *Service) Close() error {
	errCorpus := s.opts.Corpus.Close()
	errRef := s.opts.Reference.Close()
	if errCorpus != nil {
		return errCorpus
	}
	return errRef
}
