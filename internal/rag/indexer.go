package rag

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/quarry/internal/document"
)

// IndexNodes embeds chunk nodes and stores them in the vector store
// This function:
// 1. Renders each chunk with embed-mode metadata visibility
// 2. Generates embeddings in batches
// 3. Stores embeddings with provenance metadata
// 4. Supports re-indexing options (skip existing, force reindex)
func IndexNodes(
	ctx context.Context,
	nodes []document.Node,
	embedder Embedder,
	vectorStore VectorStore,
	opts IndexOptions,
) error {
	if len(nodes) == 0 {
		return nil
	}

	if embedder == nil {
		return fmt.Errorf("embedder cannot be nil")
	}

	if vectorStore == nil {
		return fmt.Errorf("vector store cannot be nil")
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultIndexOptions().BatchSize
	}

	// Handle re-indexing: delete existing nodes if force reindex is enabled
	if opts.ForceReindex {
		nodeIDs := make([]string, len(nodes))
		for i, node := range nodes {
			nodeIDs[i] = node.ID
		}

		if err := vectorStore.Delete(ctx, nodeIDs); err != nil {
			return fmt.Errorf("failed to delete existing nodes: %w", err)
		}
	}

	// Filter nodes if skip existing is enabled
	nodesToIndex := nodes
	if opts.SkipExisting && !opts.ForceReindex {
		nodesToIndex = filterNewNodes(ctx, nodes, vectorStore)
	}

	// Process nodes in batches
	for batchStart := 0; batchStart < len(nodesToIndex); batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > len(nodesToIndex) {
			batchEnd = len(nodesToIndex)
		}

		batch := nodesToIndex[batchStart:batchEnd]

		// Render each chunk the way the embedding model should see it
		texts := make([]string, len(batch))
		for i, node := range batch {
			texts[i] = node.Content(document.MetadataModeEmbed)
		}

		// Generate embeddings for the batch
		embeddingRecords, err := embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to generate embeddings for batch starting at %d: %w", batchStart, err)
		}

		// Use batch insert for efficient storage
		records := make([]NodeRecord, len(batch))
		for i, node := range batch {
			records[i] = NodeRecord{
				NodeID:     node.ID,
				DocumentID: node.DocumentID,
				Text:       embeddingRecords[i].Text,
				Embedding:  embeddingRecords[i].Embedding,
				Metadata:   document.CopyMetadata(node.Metadata),
			}
		}

		if err := vectorStore.Insert(ctx, records); err != nil {
			return fmt.Errorf("failed to insert batch starting at %d: %w", batchStart, err)
		}
	}

	return nil
}

// filterNewNodes removes nodes that already exist in the vector store
func filterNewNodes(
	ctx context.Context,
	nodes []document.Node,
	vectorStore VectorStore,
) []document.Node {
	if len(nodes) == 0 {
		return nodes
	}

	nodeIDs := make([]string, len(nodes))
	for i, node := range nodes {
		nodeIDs[i] = node.ID
	}

	existingMap, err := vectorStore.Query(ctx, nodeIDs)
	if err != nil {
		// If the existence check fails, index everything and let insertion
		// surface any real error.
		return nodes
	}

	newNodes := make([]document.Node, 0, len(nodes))
	for _, node := range nodes {
		if !existingMap[node.ID] {
			newNodes = append(newNodes, node)
		}
	}

	return newNodes
}
