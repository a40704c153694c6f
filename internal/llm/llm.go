// Package llm provides a provider-agnostic language model interface with a
// concrete implementation for OpenAI-compatible APIs (Groq, OpenAI, local
// runtimes) and deterministic mocks for testing. The pipeline uses two
// model configurations: a small fast model for metadata extraction and a
// larger model for answer synthesis.
package llm

import (
	"context"
	"errors"
	"os"
)

var (
	ErrLLMFailed     = errors.New("LLM request failed")
	ErrInvalidConfig = errors.New("invalid LLM configuration")
)

// Default Groq endpoint and model identifiers. The extraction model is
// intentionally smaller and cheaper than the answering model.
const (
	DefaultBaseURL         = "https://api.groq.com/openai/v1"
	DefaultExtractionModel = "llama-3.1-8b-instant"
	DefaultAnswerModel     = "llama-3.3-70b-versatile"
)

// LLM defines the interface for interacting with language models.
// Implementations must be stateless and thread-safe.
type LLM interface {
	// Generate produces text from a prompt using the configured model.
	// Returns the generated text or an error if generation fails.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds common configuration options for LLM providers.
type Config struct {
	// Model specifies the model identifier.
	Model string

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float32

	// MaxTokens limits the response length (0 = provider default).
	MaxTokens int

	// APIKey is the authentication key for the provider.
	APIKey string

	// BaseURL points at an OpenAI-compatible endpoint. Empty means the
	// default Groq endpoint.
	BaseURL string
}

// DefaultExtractionConfig returns the configuration used for title and
// question extraction during ingestion.
func DefaultExtractionConfig() Config {
	return Config{
		Model:       DefaultExtractionModel,
		Temperature: 0,
		MaxTokens:   512,
		APIKey:      os.Getenv("GROQ_API_KEY"),
		BaseURL:     DefaultBaseURL,
	}
}

// DefaultAnswerConfig returns the configuration used for answer synthesis
// at query time.
func DefaultAnswerConfig() Config {
	return Config{
		Model:       DefaultAnswerModel,
		Temperature: 0,
		MaxTokens:   2000,
		APIKey:      os.Getenv("GROQ_API_KEY"),
		BaseURL:     DefaultBaseURL,
	}
}
