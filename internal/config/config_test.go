// ABOUTME: Tests for configuration loading, validation, and YAML overlay
// ABOUTME: Uses t.Setenv so env state never leaks between tests
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("NYAYA_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChunkTargetSize != 1000 {
		t.Errorf("ChunkTargetSize = %d, want 1000", cfg.ChunkTargetSize)
	}
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.ChunkOverlap)
	}
	if cfg.ChunkBoundary != "sentence" {
		t.Errorf("ChunkBoundary = %q, want sentence", cfg.ChunkBoundary)
	}
	if cfg.TopK != 5 {
		t.Errorf("TopK = %d, want 5", cfg.TopK)
	}
	if cfg.MinSimilarity != 0.25 {
		t.Errorf("MinSimilarity = %f, want 0.25", cfg.MinSimilarity)
	}
	if cfg.AnalyzerMinSimilarity <= cfg.MinSimilarity {
		t.Errorf("analyzer threshold %f should be stricter than retrieval threshold %f",
			cfg.AnalyzerMinSimilarity, cfg.MinSimilarity)
	}
	if cfg.VectorDimension != 1536 {
		t.Errorf("VectorDimension = %d, want 1536", cfg.VectorDimension)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NYAYA_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("NYAYA_CHUNK_SIZE", "500")
	t.Setenv("NYAYA_CHUNK_OVERLAP", "50")
	t.Setenv("NYAYA_MIN_SIMILARITY", "0.4")
	t.Setenv("NYAYA_CHAT_MODEL", "gpt-4o")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChunkTargetSize != 500 {
		t.Errorf("ChunkTargetSize = %d, want 500", cfg.ChunkTargetSize)
	}
	if cfg.ChunkOverlap != 50 {
		t.Errorf("ChunkOverlap = %d, want 50", cfg.ChunkOverlap)
	}
	if cfg.MinSimilarity != 0.4 {
		t.Errorf("MinSimilarity = %f, want 0.4", cfg.MinSimilarity)
	}
	if cfg.ChatModel != "gpt-4o" {
		t.Errorf("ChatModel = %q, want gpt-4o", cfg.ChatModel)
	}
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nyaya.yaml")
	content := []byte("chunk_target_size: 800\nmin_similarity: 0.35\ntop_k: 8\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("NYAYA_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ChunkTargetSize != 800 {
		t.Errorf("ChunkTargetSize = %d, want 800", cfg.ChunkTargetSize)
	}
	if cfg.MinSimilarity != 0.35 {
		t.Errorf("MinSimilarity = %f, want 0.35", cfg.MinSimilarity)
	}
	if cfg.TopK != 8 {
		t.Errorf("TopK = %d, want 8", cfg.TopK)
	}
	// Fields absent from the file keep defaults
	if cfg.ChunkOverlap != 200 {
		t.Errorf("ChunkOverlap = %d, want 200", cfg.ChunkOverlap)
	}
}

func TestValidate_Rejections(t *testing.T) {
	base := func() *Config {
		return &Config{
			ChunkTargetSize:       1000,
			ChunkOverlap:          200,
			ChunkBoundary:         "sentence",
			TopK:                  5,
			MinSimilarity:         0.25,
			AnalyzerMinSimilarity: 0.45,
			OversampleFactor:      3,
			MaxRetries:            3,
			VectorDimension:       1536,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"overlap equals target", func(c *Config) { c.ChunkOverlap = c.ChunkTargetSize }},
		{"overlap exceeds target", func(c *Config) { c.ChunkOverlap = c.ChunkTargetSize + 1 }},
		{"negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"zero target size", func(c *Config) { c.ChunkTargetSize = 0 }},
		{"bad boundary", func(c *Config) { c.ChunkBoundary = "word" }},
		{"similarity above 1", func(c *Config) { c.MinSimilarity = 1.5 }},
		{"negative similarity", func(c *Config) { c.MinSimilarity = -0.1 }},
		{"zero oversample", func(c *Config) { c.OversampleFactor = 0 }},
		{"excess retries", func(c *Config) { c.MaxRetries = 11 }},
		{"zero top-k", func(c *Config) { c.TopK = 0 }},
		{"zero dimension", func(c *Config) { c.VectorDimension = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := base().Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
}
