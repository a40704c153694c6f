package rag

import (
	"context"
	"errors"
	"fmt"
)

var ErrEmptyQuery = errors.New("query cannot be empty")

// Retriever provides high-level semantic retrieval over chunk embeddings.
type Retriever struct {
	embedder    Embedder
	vectorStore VectorStore
}

// NewRetriever creates a new Retriever instance.
func NewRetriever(embedder Embedder, vectorStore VectorStore) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if vectorStore == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}

	return &Retriever{
		embedder:    embedder,
		vectorStore: vectorStore,
	}, nil
}

// Retrieve performs semantic search using a free-text query and returns the
// topK most similar chunks.
func (r *Retriever) Retrieve(
	ctx context.Context,
	query string,
	topK int,
	opts *SearchOptions,
) ([]ScoredNode, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	// Generate embedding for the query
	embeddingRecords, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddingRecords) == 0 {
		return nil, fmt.Errorf("no embedding generated for query")
	}

	queryVector := embeddingRecords[0].Embedding

	// Perform vector similarity search
	nodes, err := r.vectorStore.Search(ctx, queryVector, topK, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search for query: %w", err)
	}

	return nodes, nil
}

// RetrieveFromDocuments is a convenience wrapper restricting retrieval to
// the given source documents.
func (r *Retriever) RetrieveFromDocuments(
	ctx context.Context,
	query string,
	topK int,
	documentIDs []string,
) ([]ScoredNode, error) {
	var opts *SearchOptions
	if len(documentIDs) > 0 {
		opts = &SearchOptions{DocumentIDs: documentIDs}
	}
	return r.Retrieve(ctx, query, topK, opts)
}
