// Package rag provides the retrieval layer of the pipeline: text
// embeddings, vector storage, batch indexing, and top-K similarity search
// over document chunks.
package rag

import (
	"context"
)

// NodeRecord is a chunk prepared for vector storage: the embed-mode
// rendering of the chunk text, its vector, and flattened metadata keeping
// provenance back to the source document.
type NodeRecord struct {
	NodeID     string            `json:"node_id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Embedding  []float32         `json:"embedding"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// ScoredNode is a retrieved chunk with its similarity score.
type ScoredNode struct {
	NodeID     string            `json:"node_id"`
	DocumentID string            `json:"document_id"`
	Text       string            `json:"text"`
	Score      float32           `json:"score"` // Cosine similarity
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SearchOptions provides filtering options for vector search
type SearchOptions struct {
	DocumentIDs []string `json:"document_ids,omitempty"` // Filter by source document IDs
}

// VectorStore defines the interface for vector storage and similarity search
// Implementations should support chunk embeddings for RAG pipelines
type VectorStore interface {
	// Insert adds chunk records to the store
	Insert(ctx context.Context, records []NodeRecord) error

	// Search performs top-K similarity search with optional filtering
	Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]ScoredNode, error)

	// Query checks which node IDs exist in the store
	// Returns a map where keys are node IDs and values indicate existence
	Query(ctx context.Context, nodeIDs []string) (map[string]bool, error)

	// Delete removes records by node IDs
	Delete(ctx context.Context, nodeIDs []string) error

	// Count returns the number of records in the store
	Count(ctx context.Context) (int, error)

	// Close releases resources and closes connections
	Close() error
}

// IndexOptions provides configuration for chunk indexing
type IndexOptions struct {
	// BatchSize determines how many chunks to embed at once
	BatchSize int

	// ForceReindex will delete and re-insert chunks even if they exist
	ForceReindex bool

	// SkipExisting will check if a chunk already exists and skip if present
	SkipExisting bool
}

// DefaultIndexOptions returns sensible defaults for indexing
func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		BatchSize:    10, // Batch size for embedding API calls
		ForceReindex: false,
		SkipExisting: true,
	}
}
