package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Vaibhav-Uniyal/policyq/internal/model"
)

// Embedder converts text into fixed-dimension numeric vectors. The batched
// variant must preserve input order.
type Embedder interface {
	// Name returns the embedder name
	Name() string

	// Dimension returns the vector dimension
	Dimension() int

	// Embed generates a vector for a single text
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for texts, preserving input order
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// OpenAIEmbedder implements Embedder using the OpenAI embeddings API
type OpenAIEmbedder struct {
	client    *openai.Client
	model     openai.EmbeddingModel
	dimension int
	timeout   time.Duration
}

// NewOpenAIEmbedder creates a new OpenAI embedder
func NewOpenAIEmbedder(cfg model.EmbeddingConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	embeddingModel := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		embeddingModel = openai.SmallEmbedding3
	}

	dimension := cfg.Dimension
	if dimension <= 0 {
		dimension = 1536
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     embeddingModel,
		dimension: dimension,
		timeout:   timeout,
	}, nil
}

// Name returns the embedder name
func (e *OpenAIEmbedder) Name() string {
	return string(e.model)
}

// Dimension returns the configured vector dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed generates an embedding for a single text
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for all texts in a single API call.
// The API returns data in input order; index fields are checked anyway.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings API error: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings API returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings API returned out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}
