// ABOUTME: Embedding wrapper that L2-normalizes vectors and caches per text
// ABOUTME: The cache is keyed by (model version, text) and is size-bounded
package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sync"
)

// EmbeddingClient is the external embedding capability
type EmbeddingClient interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float64, error)
	ModelVersion() string
}

// Embedder wraps an EmbeddingClient with L2 normalization and a bounded
// memoization cache. Normalized vectors make cosine similarity a plain dot
// product. The cache is an optimization only; a miss always falls through to
// the client.
type Embedder struct {
	client EmbeddingClient

	mu      sync.Mutex
	cache   map[string][]float64
	order   []string // insertion order, evicted oldest-first
	maxSize int
}

// NewEmbedder creates an Embedder with the given cache capacity. A capacity
// of zero disables caching.
func NewEmbedder(client EmbeddingClient, cacheSize int) *Embedder {
	if cacheSize < 0 {
		cacheSize = 0
	}
	return &Embedder{
		client:  client,
		cache:   make(map[string][]float64),
		maxSize: cacheSize,
	}
}

// ModelVersion returns the underlying model identifier. Vectors from
// different model versions are never comparable.
func (e *Embedder) ModelVersion() string {
	return e.client.ModelVersion()
}

// Embed returns the L2-normalized embedding for a single text
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one normalized vector per input text, in input order.
// Cached texts are served locally; all misses go to the client in a single
// call. Semantically identical to repeated Embed calls.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float64, len(texts))
	keys := make([]string, len(texts))

	// Serve what we can from the cache; gather unique misses
	var missTexts []string
	missKeys := make(map[string]bool)
	e.mu.Lock()
	for i, text := range texts {
		keys[i] = e.cacheKey(text)
		if vec, ok := e.cache[keys[i]]; ok {
			results[i] = copyVector(vec)
		} else if !missKeys[keys[i]] {
			missKeys[keys[i]] = true
			missTexts = append(missTexts, text)
		}
	}
	e.mu.Unlock()

	if len(missTexts) > 0 {
		vectors, err := e.client.EmbedTexts(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(missTexts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingUnavailable, len(vectors), len(missTexts))
		}

		fresh := make(map[string][]float64, len(vectors))
		for i, vec := range vectors {
			normalized := normalizeL2(vec)
			fresh[e.cacheKey(missTexts[i])] = normalized
		}

		e.mu.Lock()
		for key, vec := range fresh {
			e.store(key, vec)
		}
		for i := range texts {
			if results[i] == nil {
				if vec, ok := fresh[keys[i]]; ok {
					results[i] = copyVector(vec)
				}
			}
		}
		e.mu.Unlock()
	}

	for i, vec := range results {
		if vec == nil {
			return nil, fmt.Errorf("%w: no vector produced for text %d", ErrEmbeddingUnavailable, i)
		}
	}
	return results, nil
}

// CacheSize returns the number of cached embeddings
func (e *Embedder) CacheSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}

// store inserts under e.mu, evicting the oldest entry when full
func (e *Embedder) store(key string, vec []float64) {
	if e.maxSize == 0 {
		return
	}
	if _, exists := e.cache[key]; exists {
		return
	}
	for len(e.cache) >= e.maxSize {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
	}
	e.cache[key] = vec
	e.order = append(e.order, key)
}

func (e *Embedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(e.client.ModelVersion() + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// normalizeL2 scales a vector to unit length. Zero vectors pass through
// unchanged.
func normalizeL2(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	out := make([]float64, len(vec))
	if norm == 0 {
		copy(out, vec)
		return out
	}
	for i, v := range vec {
		out[i] = v / norm
	}
	return out
}

func copyVector(vec []float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)
	return out
}
