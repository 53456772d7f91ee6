// ABOUTME: Shared bootstrap that assembles the pipeline from configuration
// ABOUTME: Used by both the CLI and the MCP server entry points
package app

import (
	"fmt"
	"path/filepath"

	"github.com/arjun/nyaya/internal/config"
	"github.com/arjun/nyaya/internal/core"
	"github.com/arjun/nyaya/internal/index/sqlite"
	"github.com/arjun/nyaya/internal/llm"
)

// Open builds the service from configuration: durable corpus and reference
// indexes under the data directory, plus the OpenAI-backed capabilities.
// The caller owns the returned service and must Close it.
func Open(cfg *config.Config) (*core.Service, error) {
	client, err := llm.NewClient(llm.ClientConfig{
		APIKey:         cfg.OpenAIKey,
		ChatModel:      cfg.ChatModel,
		EmbeddingModel: cfg.EmbeddingModel,
		Timeout:        cfg.Timeout,
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
	})
	if err != nil {
		return nil, err
	}

	corpusDB, err := sqlite.Open(filepath.Join(cfg.DataDir, "corpus.db"))
	if err != nil {
		return nil, fmt.Errorf("opening corpus index: %w", err)
	}
	refDB, err := sqlite.Open(filepath.Join(cfg.DataDir, "reference.db"))
	if err != nil {
		_ = corpusDB.Close()
		return nil, fmt.Errorf("opening reference index: %w", err)
	}

	boundary, err := core.ParseBoundaryMode(cfg.ChunkBoundary)
	if err != nil {
		_ = corpusDB.Close()
		_ = refDB.Close()
		return nil, err
	}

	svc, err := core.NewService(core.ServiceOptions{
		Corpus:           sqlite.NewStore(corpusDB, cfg.VectorDimension),
		Reference:        sqlite.NewStore(refDB, cfg.VectorDimension),
		EmbeddingClient:  client,
		GenerationClient: client,
		Policy: core.ChunkPolicy{
			TargetSize: cfg.ChunkTargetSize,
			Overlap:    cfg.ChunkOverlap,
			Boundary:   boundary,
		},
		TopK:                  cfg.TopK,
		MinSimilarity:         cfg.MinSimilarity,
		AnalyzerMinSimilarity: cfg.AnalyzerMinSimilarity,
		OversampleFactor:      cfg.OversampleFactor,
		EmbedCacheSize:        cfg.EmbedCacheSize,
	})
	if err != nil {
		_ = corpusDB.Close()
		_ = refDB.Close()
		return nil, err
	}
	return svc, nil
}
