package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/quarry/internal/document"
	"github.com/Yates-Labs/quarry/internal/llm"
)

// TitleMetadataKey is the metadata key written by the title extractor.
const TitleMetadataKey = "document_title"

// DefaultTitleNodes is how many leading chunks per document are sampled for
// title candidates.
const DefaultTitleNodes = 5

const candidateTitlePrompt = `Context: %s

Give a title that summarizes all of the unique entities, titles or themes found in the context. Title: `

const combineTitlePrompt = `%s

Based on the above candidate titles and contents, what is the comprehensive title for this document? Title: `

// TitleExtractor derives one title per source document and writes it into
// the metadata of every chunk of that document. It samples the leading
// chunks of each document, asks the extraction LLM for a candidate title
// per sampled chunk, then asks it once more to combine the candidates.
type TitleExtractor struct {
	llm llm.LLM

	// Nodes is the number of leading chunks sampled per document.
	Nodes int
}

// NewTitleExtractor creates a title extractor backed by the given LLM.
func NewTitleExtractor(model llm.LLM, nodes int) *TitleExtractor {
	if nodes <= 0 {
		nodes = DefaultTitleNodes
	}
	return &TitleExtractor{llm: model, Nodes: nodes}
}

// Name identifies the stage.
func (t *TitleExtractor) Name() string { return "title-extractor" }

// Transform mutates nodes in place, adding the document title metadata.
// Nodes stay in their incoming order.
func (t *TitleExtractor) Transform(ctx context.Context, nodes []document.Node) ([]document.Node, error) {
	if t.llm == nil {
		return nil, fmt.Errorf("%w: title extractor requires an LLM", ErrExtractionFailed)
	}

	// Group node indices by source document, preserving chunk order.
	byDoc := make(map[string][]int)
	var docOrder []string
	for i, node := range nodes {
		if _, seen := byDoc[node.DocumentID]; !seen {
			docOrder = append(docOrder, node.DocumentID)
		}
		byDoc[node.DocumentID] = append(byDoc[node.DocumentID], i)
	}

	for _, docID := range docOrder {
		indices := byDoc[docID]

		title, err := t.extractTitle(ctx, nodes, indices)
		if err != nil {
			return nil, fmt.Errorf("%w: document %s: %v", ErrExtractionFailed, docID, err)
		}

		for _, i := range indices {
			nodes[i].Metadata[TitleMetadataKey] = title
		}
	}

	return nodes, nil
}

func (t *TitleExtractor) extractTitle(ctx context.Context, nodes []document.Node, indices []int) (string, error) {
	sample := indices
	if len(sample) > t.Nodes {
		sample = sample[:t.Nodes]
	}

	candidates := make([]string, 0, len(sample))
	for _, i := range sample {
		prompt := fmt.Sprintf(candidateTitlePrompt, nodes[i].Content(document.MetadataModeLLM))
		candidate, err := t.llm.Generate(ctx, prompt)
		if err != nil {
			return "", err
		}
		candidates = append(candidates, strings.TrimSpace(candidate))
	}

	// A single candidate needs no combine round-trip.
	if len(candidates) == 1 {
		return candidates[0], nil
	}

	prompt := fmt.Sprintf(combineTitlePrompt, strings.Join(candidates, ", "))
	title, err := t.llm.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(title), nil
}
