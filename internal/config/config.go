// ABOUTME: Centralized configuration for the nyaya legal-RAG core
// ABOUTME: Loads from environment variables with an optional YAML file overlay
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all tunables for the retrieval pipeline. Constructed once and
// passed into components explicitly; nothing reads it through globals.
type Config struct {
	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Chunking settings
	ChunkTargetSize int
	ChunkOverlap    int
	ChunkBoundary   string // char, sentence, or paragraph

	// Retrieval settings
	TopK             int
	MinSimilarity    float64
	OversampleFactor int

	// Analyzer settings (stricter threshold than general retrieval)
	AnalyzerMinSimilarity float64

	// Embedding settings
	VectorDimension int
	EmbedCacheSize  int

	// Storage settings
	DataDir string
}

// Load reads configuration from environment variables, then overlays the
// YAML file named by NYAYA_CONFIG (or ./nyaya.yaml when present).
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:             os.Getenv("OPENAI_API_KEY"),
		ChatModel:             getEnv("NYAYA_CHAT_MODEL", "gpt-4o-mini"),
		EmbeddingModel:        getEnv("NYAYA_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:               getEnvDuration("NYAYA_OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:            getEnvInt("NYAYA_OPENAI_MAX_RETRIES", 3),
		RetryDelay:            getEnvDuration("NYAYA_OPENAI_RETRY_DELAY", 2*time.Second),
		ChunkTargetSize:       getEnvInt("NYAYA_CHUNK_SIZE", 1000),
		ChunkOverlap:          getEnvInt("NYAYA_CHUNK_OVERLAP", 200),
		ChunkBoundary:         getEnv("NYAYA_CHUNK_BOUNDARY", "sentence"),
		TopK:                  getEnvInt("NYAYA_TOP_K", 5),
		MinSimilarity:         getEnvFloat("NYAYA_MIN_SIMILARITY", 0.25),
		OversampleFactor:      getEnvInt("NYAYA_OVERSAMPLE_FACTOR", 3),
		AnalyzerMinSimilarity: getEnvFloat("NYAYA_ANALYZER_MIN_SIMILARITY", 0.45),
		VectorDimension:       getEnvInt("NYAYA_VECTOR_DIMENSION", 1536),
		EmbedCacheSize:        getEnvInt("NYAYA_EMBED_CACHE_SIZE", 4096),
		DataDir:               getEnv("NYAYA_DATA_DIR", DefaultDataDir()),
	}

	if err := overlayFile(cfg); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot honor
func (c *Config) Validate() error {
	if c.ChunkTargetSize <= 0 {
		return fmt.Errorf("chunk target size must be positive, got %d", c.ChunkTargetSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkTargetSize {
		return fmt.Errorf("chunk overlap must be in [0, target size), got %d", c.ChunkOverlap)
	}
	switch c.ChunkBoundary {
	case "char", "sentence", "paragraph":
	default:
		return fmt.Errorf("chunk boundary must be char, sentence, or paragraph, got %q", c.ChunkBoundary)
	}
	if c.MinSimilarity < 0 || c.MinSimilarity > 1 {
		return fmt.Errorf("min similarity must be 0-1, got %f", c.MinSimilarity)
	}
	if c.AnalyzerMinSimilarity < 0 || c.AnalyzerMinSimilarity > 1 {
		return fmt.Errorf("analyzer min similarity must be 0-1, got %f", c.AnalyzerMinSimilarity)
	}
	if c.OversampleFactor < 1 {
		return fmt.Errorf("oversample factor must be >= 1, got %d", c.OversampleFactor)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be 0-10, got %d", c.MaxRetries)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top-k must be positive, got %d", c.TopK)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.VectorDimension)
	}
	return nil
}

// DefaultDataDir returns the XDG-compliant data directory for index storage
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/nyaya"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "nyaya")
}

// fileConfig mirrors the YAML file layout; zero values mean "keep the env value"
type fileConfig struct {
	ChatModel             string   `yaml:"chat_model"`
	EmbeddingModel        string   `yaml:"embedding_model"`
	TimeoutSecs           int      `yaml:"timeout_secs"`
	MaxRetries            *int     `yaml:"max_retries"`
	ChunkTargetSize       int      `yaml:"chunk_target_size"`
	ChunkOverlap          *int     `yaml:"chunk_overlap"`
	ChunkBoundary         string   `yaml:"chunk_boundary"`
	TopK                  int      `yaml:"top_k"`
	MinSimilarity         *float64 `yaml:"min_similarity"`
	OversampleFactor      int      `yaml:"oversample_factor"`
	AnalyzerMinSimilarity *float64 `yaml:"analyzer_min_similarity"`
	VectorDimension       int      `yaml:"vector_dimension"`
	EmbedCacheSize        int      `yaml:"embed_cache_size"`
	DataDir               string   `yaml:"data_dir"`
}

// overlayFile applies nyaya.yaml on top of env-derived values when present
func overlayFile(cfg *Config) error {
	path := os.Getenv("NYAYA_CONFIG")
	if path == "" {
		path = "nyaya.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.ChatModel != "" {
		cfg.ChatModel = fc.ChatModel
	}
	if fc.EmbeddingModel != "" {
		cfg.EmbeddingModel = fc.EmbeddingModel
	}
	if fc.TimeoutSecs > 0 {
		cfg.Timeout = time.Duration(fc.TimeoutSecs) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.MaxRetries = *fc.MaxRetries
	}
	if fc.ChunkTargetSize > 0 {
		cfg.ChunkTargetSize = fc.ChunkTargetSize
	}
	if fc.ChunkOverlap != nil {
		cfg.ChunkOverlap = *fc.ChunkOverlap
	}
	if fc.ChunkBoundary != "" {
		cfg.ChunkBoundary = fc.ChunkBoundary
	}
	if fc.TopK > 0 {
		cfg.TopK = fc.TopK
	}
	if fc.MinSimilarity != nil {
		cfg.MinSimilarity = *fc.MinSimilarity
	}
	if fc.OversampleFactor > 0 {
		cfg.OversampleFactor = fc.OversampleFactor
	}
	if fc.AnalyzerMinSimilarity != nil {
		cfg.AnalyzerMinSimilarity = *fc.AnalyzerMinSimilarity
	}
	if fc.VectorDimension > 0 {
		cfg.VectorDimension = fc.VectorDimension
	}
	if fc.EmbedCacheSize > 0 {
		cfg.EmbedCacheSize = fc.EmbedCacheSize
	}
	if fc.DataDir != "" {
		cfg.DataDir = fc.DataDir
	}

	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
