// Package ingest implements the document ingestion pipeline: metadata
// shaping, chunk splitting, and LLM-backed metadata extraction. The
// pipeline is a fixed ordered sequence of transformations applied to the
// node stream derived from loaded documents.
package ingest

import (
	"context"
	"errors"

	"github.com/Yates-Labs/quarry/internal/document"
)

// Common errors for ingestion operations
var (
	ErrNoInput          = errors.New("no documents provided for ingestion")
	ErrInvalidSplitter  = errors.New("invalid splitter configuration")
	ErrExtractionFailed = errors.New("metadata extraction failed")
)

// Transformation defines one stage of the ingestion pipeline. A
// transformation consumes the current node stream and returns the next one;
// splitters replace nodes, extractors mutate and pass them through.
type Transformation interface {
	// Name identifies the transformation in progress output.
	Name() string

	// Transform applies the stage to the node stream.
	Transform(ctx context.Context, nodes []document.Node) ([]document.Node, error)
}

// ProgressFunc receives cosmetic progress updates while the pipeline runs.
type ProgressFunc func(stage string, completed, total int)

// Pipeline applies an ordered sequence of transformations to documents.
type Pipeline struct {
	transformations []Transformation

	// OnProgress, if set, is called once per completed stage.
	OnProgress ProgressFunc
}

// NewPipeline creates a pipeline with the given transformations, applied in
// order.
func NewPipeline(transformations ...Transformation) *Pipeline {
	return &Pipeline{transformations: transformations}
}

// Run converts documents to root nodes and applies every transformation in
// order. Documents are consumed; the returned nodes replace them.
func (p *Pipeline) Run(ctx context.Context, docs []document.Document) ([]document.Node, error) {
	if len(docs) == 0 {
		return nil, ErrNoInput
	}

	nodes := make([]document.Node, 0, len(docs))
	for _, doc := range docs {
		nodes = append(nodes, rootNode(doc))
	}

	for i, tr := range p.transformations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := tr.Transform(ctx, nodes)
		if err != nil {
			return nil, err
		}
		nodes = out

		if p.OnProgress != nil {
			p.OnProgress(tr.Name(), i+1, len(p.transformations))
		}
	}

	return nodes, nil
}

// rootNode wraps a whole document as a single node, carrying its metadata
// and rendering configuration into the node stream.
func rootNode(doc document.Document) document.Node {
	return document.Node{
		ID:                doc.ID + "-root",
		Text:              doc.Text,
		Metadata:          document.CopyMetadata(doc.Metadata),
		DocumentID:        doc.ID,
		ChunkIndex:        0,
		TextTemplate:      doc.TextTemplate,
		MetadataTemplate:  doc.MetadataTemplate,
		MetadataSeparator: doc.MetadataSeparator,
		ExcludedEmbedKeys: append([]string(nil), doc.ExcludedEmbedKeys...),
		ExcludedLLMKeys:   append([]string(nil), doc.ExcludedLLMKeys...),
	}
}
