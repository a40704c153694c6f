package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Yates-Labs/quarry/internal/document"
)

func wordText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func testNode(docID, text string) document.Node {
	return document.Node{
		ID:         docID + "-root",
		Text:       text,
		Metadata:   map[string]string{"file_name": docID + ".txt", "page_label": "1"},
		DocumentID: docID,
	}
}

func TestNewSplitterValidation(t *testing.T) {
	if _, err := NewSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 100}); !errors.Is(err, ErrInvalidSplitter) {
		t.Errorf("Expected ErrInvalidSplitter for overlap == size, got %v", err)
	}
	if _, err := NewSplitter(SplitterConfig{ChunkSize: 100, ChunkOverlap: 200}); !errors.Is(err, ErrInvalidSplitter) {
		t.Errorf("Expected ErrInvalidSplitter for overlap > size, got %v", err)
	}
	if _, err := NewSplitter(SplitterConfig{ChunkSize: -1}); !errors.Is(err, ErrInvalidSplitter) {
		t.Errorf("Expected ErrInvalidSplitter for negative size, got %v", err)
	}
}

func TestNewSplitterDefaults(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}
	if s.config.Separator != DefaultSeparator {
		t.Errorf("Expected default separator, got %q", s.config.Separator)
	}
	if s.config.ChunkSize != DefaultChunkSize || s.config.ChunkOverlap != DefaultChunkOverlap {
		t.Errorf("Expected default sizes 1024/128, got %d/%d", s.config.ChunkSize, s.config.ChunkOverlap)
	}
}

func TestSplitterShortDocumentSingleChunk(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 2})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	text := "a short document"
	out, err := s.Transform(context.Background(), []document.Node{testNode("doc-0", text)})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(out) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(out))
	}
	if out[0].Text != text {
		t.Errorf("Short document text must be unchanged, got %q", out[0].Text)
	}
	if out[0].ChunkIndex != 0 {
		t.Errorf("Expected chunk index 0, got %d", out[0].ChunkIndex)
	}
}

func TestSplitterOverlappingChunks(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 4})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	out, err := s.Transform(context.Background(), []document.Node{testNode("doc-0", wordText(25))})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	if len(out) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(out))
	}

	// Consecutive chunks share the overlap tokens.
	first := strings.Split(out[0].Text, " ")
	second := strings.Split(out[1].Text, " ")
	overlap := first[len(first)-4:]
	for i, token := range overlap {
		if second[i] != token {
			t.Errorf("Expected overlap token %q at position %d, got %q", token, i, second[i])
		}
	}

	// Chunks are correctly ordered and sized.
	for i, chunk := range out {
		if chunk.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d", i, chunk.ChunkIndex)
		}
		if n := len(strings.Split(chunk.Text, " ")); n > 10 {
			t.Errorf("Chunk %d has %d tokens, limit is 10", i, n)
		}
	}

	// No token is lost: the last chunk ends with the last word.
	last := out[len(out)-1]
	if !strings.HasSuffix(last.Text, "w24") {
		t.Errorf("Last chunk should end with final token, got %q", last.Text)
	}
}

func TestSplitterNeverMergesDocuments(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 2})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	nodes := []document.Node{
		testNode("doc-0", wordText(25)),
		testNode("doc-1", "tiny"),
		testNode("doc-2", wordText(15)),
	}

	out, err := s.Transform(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	// Property: at least one chunk per document.
	if len(out) < len(nodes) {
		t.Errorf("Expected at least %d chunks, got %d", len(nodes), len(out))
	}

	perDoc := make(map[string]int)
	for _, chunk := range out {
		if chunk.DocumentID == "" {
			t.Fatal("Chunk lost document provenance")
		}
		perDoc[chunk.DocumentID]++
	}
	for _, docID := range []string{"doc-0", "doc-1", "doc-2"} {
		if perDoc[docID] == 0 {
			t.Errorf("Document %s produced no chunks", docID)
		}
	}
}

func TestSplitterPropagatesMetadata(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{ChunkSize: 10, ChunkOverlap: 2})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	node := testNode("doc-0", wordText(30))
	node.ExcludedEmbedKeys = []string{"page_label"}

	out, err := s.Transform(context.Background(), []document.Node{node})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	for i, chunk := range out {
		for key, want := range node.Metadata {
			if got := chunk.Metadata[key]; got != want {
				t.Errorf("Chunk %d metadata %s = %q, want %q", i, key, got, want)
			}
		}
		if !document.HasKey(chunk.ExcludedEmbedKeys, "page_label") {
			t.Errorf("Chunk %d lost embed exclusion", i)
		}
	}

	// Metadata maps must not alias: mutating one chunk's map must not be
	// visible on its siblings.
	out[0].Metadata["marker"] = "x"
	if _, ok := out[1].Metadata["marker"]; ok {
		t.Error("Chunk metadata maps alias each other")
	}
}

func TestSplitterDeterministic(t *testing.T) {
	s, err := NewSplitter(SplitterConfig{ChunkSize: 8, ChunkOverlap: 3})
	if err != nil {
		t.Fatalf("NewSplitter failed: %v", err)
	}

	node := testNode("doc-0", wordText(40))
	first, err := s.Transform(context.Background(), []document.Node{node})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	for run := 0; run < 5; run++ {
		again, err := s.Transform(context.Background(), []document.Node{testNode("doc-0", wordText(40))})
		if err != nil {
			t.Fatalf("Transform failed: %v", err)
		}
		if len(again) != len(first) {
			t.Fatalf("Chunk count changed between runs: %d vs %d", len(first), len(again))
		}
		for i := range again {
			if again[i].Text != first[i].Text {
				t.Errorf("Chunk %d differs between runs", i)
			}
		}
	}
}

func TestTokenizeDropsEmptyTokens(t *testing.T) {
	tokens := tokenize("a  b   c ", " ")
	if len(tokens) != 3 {
		t.Errorf("Expected 3 tokens, got %d: %v", len(tokens), tokens)
	}
}
