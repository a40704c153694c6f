package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Common errors for in-memory store operations
var (
	ErrEmptyRecords = errors.New("no records provided for insertion")
	ErrEmptyIndex   = errors.New("vector index is empty")
	ErrStoreClosed  = errors.New("vector store is closed")
)

// documentIDKey is the reserved metadata key carrying chunk provenance
// through the store.
const documentIDKey = "_document_id"

// MemoryStore implements VectorStore with an embedded in-memory vector
// database (chromem-go). Records live only for the process lifetime;
// nothing is persisted. Exact cosine similarity search.
type MemoryStore struct {
	mu         sync.RWMutex
	collection *chromem.Collection
	ids        map[string]struct{}
	closed     bool
}

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() (*MemoryStore, error) {
	db := chromem.NewDB()

	// Records always arrive with precomputed vectors, so the collection's
	// own embedding function must never run.
	collection, err := db.CreateCollection("quarry_chunks", nil, rejectEmbedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &MemoryStore{
		collection: collection,
		ids:        make(map[string]struct{}),
	}, nil
}

func rejectEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("store requires precomputed embeddings")
}

// Insert adds chunk records to the store
func (s *MemoryStore) Insert(ctx context.Context, records []NodeRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	docs := make([]chromem.Document, len(records))
	for i, record := range records {
		if record.NodeID == "" {
			return fmt.Errorf("%w: record %d has no node ID", ErrEmptyRecords, i)
		}
		if len(record.Embedding) == 0 {
			return fmt.Errorf("record %s has no embedding", record.NodeID)
		}

		metadata := make(map[string]string, len(record.Metadata)+1)
		for key, value := range record.Metadata {
			metadata[key] = value
		}
		metadata[documentIDKey] = record.DocumentID

		docs[i] = chromem.Document{
			ID:        record.NodeID,
			Content:   record.Text,
			Metadata:  metadata,
			Embedding: record.Embedding,
		}
	}

	// Concurrency 1: embeddings are precomputed, nothing to parallelize.
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	for _, record := range records {
		s.ids[record.NodeID] = struct{}{}
	}
	return nil
}

// Search performs top-K similarity search with optional filtering.
// Searching an empty store fails fast with ErrEmptyIndex.
func (s *MemoryStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]ScoredNode, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	count := s.collection.Count()
	if count == 0 {
		return nil, ErrEmptyIndex
	}
	// chromem requires topK <= stored document count.
	if topK > count {
		topK = count
	}

	var where map[string]string
	if opts != nil && len(opts.DocumentIDs) == 1 {
		where = map[string]string{documentIDKey: opts.DocumentIDs[0]}
	}

	results, err := s.collection.QueryEmbedding(ctx, queryVector, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	nodes := make([]ScoredNode, 0, len(results))
	for _, result := range results {
		if opts != nil && len(opts.DocumentIDs) > 1 && !containsString(opts.DocumentIDs, result.Metadata[documentIDKey]) {
			continue
		}

		metadata := make(map[string]string, len(result.Metadata))
		for key, value := range result.Metadata {
			if key == documentIDKey {
				continue
			}
			metadata[key] = value
		}

		nodes = append(nodes, ScoredNode{
			NodeID:     result.ID,
			DocumentID: result.Metadata[documentIDKey],
			Text:       result.Content,
			Score:      result.Similarity,
			Metadata:   metadata,
		})
	}

	return nodes, nil
}

// Query checks which node IDs exist in the store
func (s *MemoryStore) Query(ctx context.Context, nodeIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}

	existence := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		_, ok := s.ids[id]
		existence[id] = ok
	}
	return existence, nil
}

// Delete removes records by node IDs
func (s *MemoryStore) Delete(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStoreClosed
	}

	for _, id := range nodeIDs {
		if _, ok := s.ids[id]; !ok {
			continue
		}
		if err := s.collection.Delete(ctx, nil, nil, id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
		delete(s.ids, id)
	}
	return nil
}

// Count returns the number of records in the store
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return s.collection.Count(), nil
}

// Close marks the store as closed. Further operations fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func containsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
