package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Common errors for embedding operations
var (
	ErrEmptyTexts      = errors.New("no texts provided for embedding")
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Default embedding runtime. The embedder talks to any OpenAI-compatible
// endpoint; the default is a locally hosted model server so embedding stays
// off the metered hosted API.
const (
	DefaultEmbeddingBaseURL = "http://localhost:8080/v1"
	DefaultEmbeddingModel   = "BAAI/bge-small-en-v1.5"
	DefaultDimension        = 384
)

// EmbeddingRecord represents a single text embedding with metadata
type EmbeddingRecord struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
	Model     string    `json:"model"`
}

// Embedder defines the interface for generating text embeddings
type Embedder interface {
	// Embed generates embeddings for the provided texts
	Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error)

	// Model returns the embedding model identifier
	Model() string

	// Dimension returns the embedding vector dimension
	Dimension() int
}

// EmbedderConfig holds configuration for the OpenAI-compatible embedder.
type EmbedderConfig struct {
	// BaseURL points at the embedding endpoint. Empty means the local
	// runtime default.
	BaseURL string

	// Model is the embedding model identifier.
	Model string

	// Dimension is the vector dimension the model produces.
	Dimension int

	// APIKey authenticates against hosted endpoints. Local runtimes
	// usually ignore it.
	APIKey string
}

// DefaultEmbedderConfig returns configuration for the local embedding
// runtime, overridable via environment variables.
func DefaultEmbedderConfig() EmbedderConfig {
	baseURL := os.Getenv("EMBEDDING_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultEmbeddingBaseURL
	}

	model := os.Getenv("EMBEDDING_MODEL")
	if model == "" {
		model = DefaultEmbeddingModel
	}

	return EmbedderConfig{
		BaseURL:   baseURL,
		Model:     model,
		Dimension: DefaultDimension,
		APIKey:    os.Getenv("EMBEDDING_API_KEY"),
	}
}

// OpenAIEmbedder implements the Embedder interface against an
// OpenAI-compatible embeddings endpoint.
type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	dimension int
}

// NewOpenAIEmbedder creates an embedder for the configured endpoint.
func NewOpenAIEmbedder(config EmbedderConfig) (*OpenAIEmbedder, error) {
	if config.Model == "" {
		config.Model = DefaultEmbeddingModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultEmbeddingBaseURL
	}
	if config.Dimension <= 0 {
		config.Dimension = DefaultDimension
	}

	opts := []option.RequestOption{option.WithBaseURL(config.BaseURL)}
	if config.APIKey != "" {
		opts = append(opts, option.WithAPIKey(config.APIKey))
	} else {
		// The client requires a key even for local runtimes that ignore it.
		opts = append(opts, option.WithAPIKey("local"))
	}

	return &OpenAIEmbedder{
		client:    openai.NewClient(opts...),
		model:     config.Model,
		dimension: config.Dimension,
	}, nil
}

// Model returns the embedding model identifier
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Dimension returns the embedding vector dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed generates embeddings for the provided texts
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyTexts
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	records := make([]EmbeddingRecord, len(resp.Data))
	for i, data := range resp.Data {
		// Convert []float64 to []float32
		embedding := make([]float32, len(data.Embedding))
		for j, val := range data.Embedding {
			embedding[j] = float32(val)
		}

		records[i] = EmbeddingRecord{
			Text:      texts[int(data.Index)],
			Embedding: embedding,
			Index:     int(data.Index),
			Model:     e.model,
		}
	}

	return records, nil
}
