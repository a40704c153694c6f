package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/quarry/internal/document"
)

// Default splitter configuration. Sizes are counted in separator-delimited
// tokens, approximating the tokenizer-based sizing of hosted models.
const (
	DefaultSeparator    = " "
	DefaultChunkSize    = 1024
	DefaultChunkOverlap = 128
)

// SplitterConfig holds configuration for the chunk splitter.
type SplitterConfig struct {
	// Separator delimits tokens. Default " ".
	Separator string

	// ChunkSize is the maximum tokens per chunk. Default 1024.
	ChunkSize int

	// ChunkOverlap is the number of tokens repeated between consecutive
	// chunks of the same document. Default 128.
	ChunkOverlap int
}

// DefaultSplitterConfig returns the standard splitter configuration.
func DefaultSplitterConfig() SplitterConfig {
	return SplitterConfig{
		Separator:    DefaultSeparator,
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// Splitter splits each node into fixed-size overlapping chunks. Splitting
// is deterministic and never crosses document boundaries: every produced
// chunk belongs to exactly one source document and carries a full copy of
// its metadata.
type Splitter struct {
	config SplitterConfig
}

// NewSplitter creates a splitter, validating the configuration.
func NewSplitter(config SplitterConfig) (*Splitter, error) {
	if config.Separator == "" {
		config.Separator = DefaultSeparator
	}
	if config.ChunkSize == 0 {
		config.ChunkSize = DefaultChunkSize
	}
	if config.ChunkOverlap == 0 && config.ChunkSize > DefaultChunkOverlap {
		config.ChunkOverlap = DefaultChunkOverlap
	}

	if config.ChunkSize < 0 || config.ChunkOverlap < 0 {
		return nil, fmt.Errorf("%w: sizes must be positive", ErrInvalidSplitter)
	}
	if config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("%w: overlap (%d) must be smaller than chunk size (%d)",
			ErrInvalidSplitter, config.ChunkOverlap, config.ChunkSize)
	}

	return &Splitter{config: config}, nil
}

// Name identifies the stage.
func (s *Splitter) Name() string { return "splitter" }

// Transform replaces each node with its chunks. A node no longer than the
// chunk size yields exactly one chunk, so the output never has fewer nodes
// than the input.
func (s *Splitter) Transform(ctx context.Context, nodes []document.Node) ([]document.Node, error) {
	var out []document.Node
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, s.splitNode(node)...)
	}
	return out, nil
}

func (s *Splitter) splitNode(node document.Node) []document.Node {
	texts := s.splitText(node.Text)

	chunks := make([]document.Node, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, document.Node{
			ID:                fmt.Sprintf("%s-chunk-%d", node.DocumentID, i),
			Text:              text,
			Metadata:          document.CopyMetadata(node.Metadata),
			DocumentID:        node.DocumentID,
			ChunkIndex:        i,
			TextTemplate:      node.TextTemplate,
			MetadataTemplate:  node.MetadataTemplate,
			MetadataSeparator: node.MetadataSeparator,
			ExcludedEmbedKeys: append([]string(nil), node.ExcludedEmbedKeys...),
			ExcludedLLMKeys:   append([]string(nil), node.ExcludedLLMKeys...),
		})
	}
	return chunks
}

// splitText produces overlapping windows of ChunkSize tokens, advancing by
// ChunkSize-ChunkOverlap tokens per window. Text that fits in one window is
// returned unchanged.
func (s *Splitter) splitText(text string) []string {
	tokens := tokenize(text, s.config.Separator)
	if len(tokens) <= s.config.ChunkSize {
		return []string{text}
	}

	stride := s.config.ChunkSize - s.config.ChunkOverlap

	var out []string
	for start := 0; start < len(tokens); start += stride {
		end := start + s.config.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}

		out = append(out, strings.Join(tokens[start:end], s.config.Separator))

		if end == len(tokens) {
			break
		}
	}
	return out
}

// tokenize splits on the separator, dropping empty tokens so repeated
// separators and surrounding whitespace don't produce phantom tokens.
func tokenize(text, separator string) []string {
	parts := strings.Split(text, separator)
	tokens := parts[:0]
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
