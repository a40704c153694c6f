package rag

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Yates-Labs/quarry/internal/document"
)

func indexTestNodes(n int) []document.Node {
	nodes := make([]document.Node, n)
	for i := range nodes {
		nodes[i] = document.Node{
			ID:         fmt.Sprintf("doc-0-chunk-%d", i),
			DocumentID: "doc-0",
			Text:       fmt.Sprintf("chunk %d text", i),
			Metadata:   map[string]string{"file_name": "a.txt"},
		}
	}
	return nodes
}

func TestIndexNodesEmptyInput(t *testing.T) {
	store := &mockVectorStore{}
	if err := IndexNodes(context.Background(), nil, &mockEmbedder{}, store, DefaultIndexOptions()); err != nil {
		t.Errorf("Expected nil error for empty input, got %v", err)
	}
	if len(store.inserted) != 0 {
		t.Error("Expected no insertions for empty input")
	}
}

func TestIndexNodesValidation(t *testing.T) {
	nodes := indexTestNodes(1)
	if err := IndexNodes(context.Background(), nodes, nil, &mockVectorStore{}, DefaultIndexOptions()); err == nil {
		t.Error("Expected error for nil embedder")
	}
	if err := IndexNodes(context.Background(), nodes, &mockEmbedder{}, nil, DefaultIndexOptions()); err == nil {
		t.Error("Expected error for nil vector store")
	}
}

func TestIndexNodesStoresAllChunks(t *testing.T) {
	nodes := indexTestNodes(7)
	embedder := &mockEmbedder{}
	store := &mockVectorStore{}

	opts := DefaultIndexOptions()
	opts.BatchSize = 3

	if err := IndexNodes(context.Background(), nodes, embedder, store, opts); err != nil {
		t.Fatalf("IndexNodes failed: %v", err)
	}

	if len(store.inserted) != 7 {
		t.Fatalf("Expected 7 records, got %d", len(store.inserted))
	}

	// 7 chunks in batches of 3 means 3 embed calls.
	if embedder.calls != 3 {
		t.Errorf("Expected 3 embed calls, got %d", embedder.calls)
	}

	for i, record := range store.inserted {
		if record.NodeID != nodes[i].ID {
			t.Errorf("Record %d has node ID %s, expected %s", i, record.NodeID, nodes[i].ID)
		}
		if record.DocumentID != "doc-0" {
			t.Errorf("Record %d lost provenance: %q", i, record.DocumentID)
		}
		if len(record.Embedding) == 0 {
			t.Errorf("Record %d has no embedding", i)
		}
		if record.Metadata["file_name"] != "a.txt" {
			t.Errorf("Record %d lost metadata: %v", i, record.Metadata)
		}
	}
}

func TestIndexNodesEmbedsWithMetadata(t *testing.T) {
	node := document.Node{
		ID:         "doc-0-chunk-0",
		DocumentID: "doc-0",
		Text:       "the chunk body",
		Metadata: map[string]string{
			"document_title": "Billing Guide",
			"page_label":     "1",
		},
		ExcludedEmbedKeys: []string{"page_label"},
	}

	var embedded []string
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			embedded = append(embedded, texts...)
			records := make([]EmbeddingRecord, len(texts))
			for i, text := range texts {
				records[i] = EmbeddingRecord{Text: text, Embedding: []float32{1}, Index: i}
			}
			return records, nil
		},
	}

	if err := IndexNodes(context.Background(), []document.Node{node}, embedder, &mockVectorStore{}, DefaultIndexOptions()); err != nil {
		t.Fatalf("IndexNodes failed: %v", err)
	}

	if len(embedded) != 1 {
		t.Fatalf("Expected 1 embedded text, got %d", len(embedded))
	}
	if !strings.Contains(embedded[0], "Billing Guide") {
		t.Errorf("Embedded text missing title metadata: %q", embedded[0])
	}
	if strings.Contains(embedded[0], "page_label") {
		t.Errorf("Embedded text contains excluded key: %q", embedded[0])
	}
	if !strings.Contains(embedded[0], "the chunk body") {
		t.Errorf("Embedded text missing chunk body: %q", embedded[0])
	}
}

func TestIndexNodesSkipExisting(t *testing.T) {
	nodes := indexTestNodes(3)
	store := &mockVectorStore{
		existing: map[string]bool{"doc-0-chunk-1": true},
	}

	opts := DefaultIndexOptions()
	opts.SkipExisting = true

	if err := IndexNodes(context.Background(), nodes, &mockEmbedder{}, store, opts); err != nil {
		t.Fatalf("IndexNodes failed: %v", err)
	}

	if len(store.inserted) != 2 {
		t.Fatalf("Expected 2 new records, got %d", len(store.inserted))
	}
	for _, record := range store.inserted {
		if record.NodeID == "doc-0-chunk-1" {
			t.Error("Existing node was re-indexed")
		}
	}
}

func TestIndexNodesForceReindex(t *testing.T) {
	nodes := indexTestNodes(2)
	store := &mockVectorStore{
		existing: map[string]bool{"doc-0-chunk-0": true, "doc-0-chunk-1": true},
	}

	opts := DefaultIndexOptions()
	opts.ForceReindex = true
	opts.SkipExisting = true // force wins over skip

	if err := IndexNodes(context.Background(), nodes, &mockEmbedder{}, store, opts); err != nil {
		t.Fatalf("IndexNodes failed: %v", err)
	}

	if len(store.deleted) != 2 {
		t.Errorf("Expected 2 deletions before reindex, got %d", len(store.deleted))
	}
	if len(store.inserted) != 2 {
		t.Errorf("Expected 2 records reinserted, got %d", len(store.inserted))
	}
}

func TestIndexNodesEmbedderError(t *testing.T) {
	embedder := &mockEmbedder{
		embedFunc: func(ctx context.Context, texts []string) ([]EmbeddingRecord, error) {
			return nil, fmt.Errorf("runtime unreachable")
		},
	}

	err := IndexNodes(context.Background(), indexTestNodes(2), embedder, &mockVectorStore{}, DefaultIndexOptions())
	if err == nil {
		t.Error("Expected embedder error to propagate")
	}
}

func TestIndexNodesMetadataNotAliased(t *testing.T) {
	nodes := indexTestNodes(1)
	store := &mockVectorStore{}

	if err := IndexNodes(context.Background(), nodes, &mockEmbedder{}, store, DefaultIndexOptions()); err != nil {
		t.Fatalf("IndexNodes failed: %v", err)
	}

	store.inserted[0].Metadata["file_name"] = "mutated.txt"
	if nodes[0].Metadata["file_name"] != "a.txt" {
		t.Error("Stored record metadata aliases the node metadata")
	}
}
