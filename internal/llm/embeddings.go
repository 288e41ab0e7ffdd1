package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// EmbeddingsClient is a client for an OpenAI-compatible embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	Model        string
	ExpectedSize int // Expected vector size for validation
	MaxTries     uint

	api *openai.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the configured VECTOR_SIZE; every returned vector is checked against it.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = newHTTPClient()

	return &EmbeddingsClient{
		BaseURL:      baseURL,
		Model:        model,
		ExpectedSize: expectedSize,
		MaxTries:     defaultMaxTries,
		api:          openai.NewClientWithConfig(cfg),
	}
}

// EmbedTexts generates embeddings for the given texts, one vector per input in input order.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.Model),
	}

	return withRetry(ctx, "embeddings", c.MaxTries, func() ([][]float32, error) {
		resp, err := c.api.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to create embeddings: %w", err)
		}

		if len(resp.Data) != len(texts) {
			return nil, fmt.Errorf("expected %d embeddings, got %d: %w", len(texts), len(resp.Data), errBadResponse)
		}

		result := make([][]float32, len(texts))
		for i, data := range resp.Data {
			if len(data.Embedding) != c.ExpectedSize {
				return nil, fmt.Errorf("embedding %d has size %d, expected %d: %w", i, len(data.Embedding), c.ExpectedSize, errBadResponse)
			}
			idx := data.Index
			if idx < 0 || idx >= len(texts) || result[idx] != nil {
				idx = i
			}
			result[idx] = data.Embedding
		}
		return result, nil
	})
}
