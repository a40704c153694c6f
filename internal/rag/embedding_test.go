package rag

import (
	"context"
	"errors"
	"testing"
)

func TestDefaultEmbedderConfig(t *testing.T) {
	t.Setenv("EMBEDDING_BASE_URL", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("EMBEDDING_API_KEY", "")

	config := DefaultEmbedderConfig()

	if config.BaseURL != DefaultEmbeddingBaseURL {
		t.Errorf("Expected default base URL %s, got %s", DefaultEmbeddingBaseURL, config.BaseURL)
	}
	if config.Model != DefaultEmbeddingModel {
		t.Errorf("Expected default model %s, got %s", DefaultEmbeddingModel, config.Model)
	}
	if config.Dimension != DefaultDimension {
		t.Errorf("Expected dimension %d, got %d", DefaultDimension, config.Dimension)
	}
}

func TestDefaultEmbedderConfigEnvOverride(t *testing.T) {
	t.Setenv("EMBEDDING_BASE_URL", "https://api.example.com/v1")
	t.Setenv("EMBEDDING_MODEL", "custom-model")
	t.Setenv("EMBEDDING_API_KEY", "secret")

	config := DefaultEmbedderConfig()

	if config.BaseURL != "https://api.example.com/v1" {
		t.Errorf("Expected overridden base URL, got %s", config.BaseURL)
	}
	if config.Model != "custom-model" {
		t.Errorf("Expected overridden model, got %s", config.Model)
	}
	if config.APIKey != "secret" {
		t.Errorf("Expected overridden API key, got %s", config.APIKey)
	}
}

func TestNewOpenAIEmbedderFillsDefaults(t *testing.T) {
	embedder, err := NewOpenAIEmbedder(EmbedderConfig{})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}

	if embedder.Model() != DefaultEmbeddingModel {
		t.Errorf("Expected default model, got %s", embedder.Model())
	}
	if embedder.Dimension() != DefaultDimension {
		t.Errorf("Expected default dimension, got %d", embedder.Dimension())
	}
}

func TestOpenAIEmbedderEmptyTexts(t *testing.T) {
	embedder, err := NewOpenAIEmbedder(DefaultEmbedderConfig())
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}

	_, err = embedder.Embed(context.Background(), nil)
	if !errors.Is(err, ErrEmptyTexts) {
		t.Errorf("Expected ErrEmptyTexts, got %v", err)
	}

	_, err = embedder.Embed(context.Background(), []string{})
	if !errors.Is(err, ErrEmptyTexts) {
		t.Errorf("Expected ErrEmptyTexts, got %v", err)
	}
}

func TestDefaultMilvusConfig(t *testing.T) {
	t.Setenv("MILVUS_ADDRESS", "")
	t.Setenv("MILVUS_COLLECTION", "")

	config := DefaultMilvusConfig()

	if config.Address != "localhost:19530" {
		t.Errorf("Expected default address, got %s", config.Address)
	}
	if config.CollectionName != "quarry_chunks" {
		t.Errorf("Expected default collection, got %s", config.CollectionName)
	}
	if config.Dimension != DefaultDimension {
		t.Errorf("Expected dimension %d, got %d", DefaultDimension, config.Dimension)
	}
	if config.IndexType != "HNSW" || config.MetricType != "COSINE" {
		t.Errorf("Unexpected index defaults: %s/%s", config.IndexType, config.MetricType)
	}
}
