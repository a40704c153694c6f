package query

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Yates-Labs/quarry/internal/rag"
)

var (
	ErrMissingQuestion = errors.New("question required for prompt assembly")
	ErrNoContext       = errors.New("no context chunks available for prompt assembly")
)

// AssemblePrompt builds the answering prompt from retrieved chunks.
// Chunks are ordered by relevance score, highest first, and each one is
// rendered with its provenance metadata so the model can cite sources.
func AssemblePrompt(question string, chunks []rag.ScoredNode) (string, error) {
	if question == "" {
		return "", ErrMissingQuestion
	}
	if len(chunks) == 0 {
		return "", ErrNoContext
	}

	// Sort chunks by relevance score (highest first), even if already sorted.
	sorted := make([]rag.ScoredNode, len(chunks))
	copy(sorted, chunks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	var b strings.Builder

	b.WriteString("Context information is below.\n")
	b.WriteString("---------------------\n")
	for i, chunk := range sorted {
		b.WriteString(formatChunk(i+1, chunk))
	}
	b.WriteString("---------------------\n")
	b.WriteString("Given the context information and not prior knowledge, answer the query.\n")
	b.WriteString(fmt.Sprintf("Query: %s\n", question))
	b.WriteString("Answer: ")

	return b.String(), nil
}

func formatChunk(position int, chunk rag.ScoredNode) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%d]", position))
	if title := chunk.Metadata["document_title"]; title != "" {
		b.WriteString(fmt.Sprintf(" %s", title))
	}
	if fileName := chunk.Metadata["file_name"]; fileName != "" {
		b.WriteString(fmt.Sprintf(" (%s)", fileName))
	}
	b.WriteString("\n")
	b.WriteString(chunk.Text)
	b.WriteString("\n\n")

	return b.String()
}
