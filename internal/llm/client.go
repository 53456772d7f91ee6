// ABOUTME: OpenAI client for embedding and generation capabilities
// ABOUTME: Bounded retries with backoff; failures surface as taxonomy errors
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/arjun/nyaya/internal/core"
	"github.com/arjun/nyaya/internal/util"
)

const (
	// DefaultChatModel is the default model for answer generation
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

// Client wraps the OpenAI API with retry logic and per-call timeouts.
// It implements the embedding and generation capability interfaces the
// pipeline components consume.
type Client struct {
	api            *openai.Client
	chatModel      string
	embeddingModel string
	timeout        time.Duration
	maxRetries     int
	retryDelay     time.Duration
}

// NewClient creates a new OpenAI-backed capability client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Client{
		api:            openai.NewClient(cfg.APIKey),
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        cfg.Timeout,
		maxRetries:     cfg.MaxRetries,
		retryDelay:     cfg.RetryDelay,
	}, nil
}

// ModelVersion identifies the embedding model; vectors from different model
// versions are never compared.
func (c *Client) ModelVersion() string {
	return c.embeddingModel
}

// EmbedTexts generates embedding vectors for the given texts in order.
// Retries a bounded number of times, then fails with ErrEmbeddingUnavailable
// (or ErrTimeout when the deadline was the cause).
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepContext(ctx, util.CalculateBackoff(c.retryDelay, attempt)); err != nil {
				return nil, c.classify(core.ErrEmbeddingUnavailable, lastErr, err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Data) != len(texts) {
			lastErr = fmt.Errorf("attempt %d: got %d embeddings for %d texts", attempt+1, len(resp.Data), len(texts))
			continue
		}

		vectors := make([][]float64, len(texts))
		for _, item := range resp.Data {
			vec := make([]float64, len(item.Embedding))
			for i, v := range item.Embedding {
				vec[i] = float64(v)
			}
			vectors[item.Index] = vec
		}
		return vectors, nil
	}

	return nil, c.classify(core.ErrEmbeddingUnavailable, lastErr, ctx.Err())
}

// Complete generates a chat completion for the given prompts. Prompt
// construction is deterministic upstream, so retrying with the same prompt
// is idempotent.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepContext(ctx, util.CalculateBackoff(c.retryDelay, attempt)); err != nil {
				return "", c.classify(core.ErrGenerationUnavailable, lastErr, err)
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			Temperature: 0.2,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("attempt %d: no completion choices returned", attempt+1)
			continue
		}

		return resp.Choices[0].Message.Content, nil
	}

	return "", c.classify(core.ErrGenerationUnavailable, lastErr, ctx.Err())
}

// classify wraps the final failure in the right taxonomy error: a blown
// deadline is a Timeout, anything else is the capability being unavailable.
func (c *Client) classify(capabilityErr, lastErr, ctxErr error) error {
	cause := lastErr
	if cause == nil {
		cause = ctxErr
	}
	if errors.Is(ctxErr, context.DeadlineExceeded) || errors.Is(lastErr, context.DeadlineExceeded) {
		return fmt.Errorf("%w: after %d attempts: %v", core.ErrTimeout, c.maxRetries+1, cause)
	}
	return fmt.Errorf("%w: after %d attempts: %v", capabilityErr, c.maxRetries+1, cause)
}
