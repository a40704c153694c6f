package rag

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Common errors for Milvus operations
var (
	ErrInvalidDimension = errors.New("invalid vector dimension")
	ErrConnectionFailed = errors.New("failed to connect to Milvus")
	ErrInsertFailed     = errors.New("failed to insert records")
	ErrSearchFailed     = errors.New("failed to search vectors")
)

// MilvusConfig holds configuration for Milvus connection and collection
type MilvusConfig struct {
	Address        string // Milvus server address (e.g., "localhost:19530")
	CollectionName string // Name of the collection
	Dimension      int    // Vector dimension (e.g., 384 for bge-small)
	IndexType      string // Index type (default: "HNSW")
	MetricType     string // Similarity metric (default: "COSINE")

	// HNSW index parameters
	M              int // HNSW M parameter (default: 16)
	EfConstruction int // HNSW efConstruction (default: 256)
}

// DefaultMilvusConfig returns default configuration from environment variables
func DefaultMilvusConfig() MilvusConfig {
	address := os.Getenv("MILVUS_ADDRESS")
	if address == "" {
		address = "localhost:19530"
	}

	collection := os.Getenv("MILVUS_COLLECTION")
	if collection == "" {
		collection = "quarry_chunks"
	}

	return MilvusConfig{
		Address:        address,
		CollectionName: collection,
		Dimension:      DefaultDimension,
		IndexType:      "HNSW",
		MetricType:     "COSINE",
		M:              16,
		EfConstruction: 256,
	}
}

// MilvusStore implements VectorStore using Milvus. It is the backend for
// corpora too large for the in-memory store; chunk text and provenance are
// stored alongside the vectors.
type MilvusStore struct {
	client client.Client
	config MilvusConfig
}

// NewMilvusStore creates a new Milvus vector store instance
// Connects to Milvus and ensures the collection exists with proper schema
func NewMilvusStore(ctx context.Context, config MilvusConfig) (*MilvusStore, error) {
	// Validate configuration
	if config.Dimension <= 0 {
		return nil, ErrInvalidDimension
	}

	// Connect to Milvus
	c, err := client.NewGrpcClient(ctx, config.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	store := &MilvusStore{
		client: c,
		config: config,
	}

	// Create collection if it doesn't exist
	if err := store.ensureCollection(ctx); err != nil {
		c.Close()
		return nil, err
	}

	return store, nil
}

// ensureCollection creates the collection with schema if it doesn't exist
func (m *MilvusStore) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.config.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if has {
		return nil // Collection already exists
	}

	// Define schema for chunk embeddings
	schema := &entity.Schema{
		CollectionName: m.config.CollectionName,
		AutoID:         true,
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     true,
			},
			{
				Name:     "node_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.config.Dimension),
				},
			},
			{
				Name:     "title",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "file_name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
		},
	}

	// Create collection
	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// Create HNSW index on embedding field
	idx, err := entity.NewIndexHNSW(entity.COSINE, m.config.M, m.config.EfConstruction)
	if err != nil {
		return fmt.Errorf("failed to create index config: %w", err)
	}

	if err := m.client.CreateIndex(ctx, m.config.CollectionName, "embedding", idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	// Load collection into memory
	if err := m.client.LoadCollection(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	return nil
}

// Insert adds chunk records to Milvus
func (m *MilvusStore) Insert(ctx context.Context, records []NodeRecord) error {
	if len(records) == 0 {
		return ErrEmptyRecords
	}

	// Prepare column data
	nodeIDs := make([]string, len(records))
	documentIDs := make([]string, len(records))
	texts := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	titles := make([]string, len(records))
	fileNames := make([]string, len(records))

	for i, record := range records {
		if len(record.Embedding) != m.config.Dimension {
			return fmt.Errorf("%w: record %s has dimension %d, expected %d",
				ErrInvalidDimension, record.NodeID, len(record.Embedding), m.config.Dimension)
		}

		nodeIDs[i] = record.NodeID
		documentIDs[i] = record.DocumentID
		texts[i] = record.Text
		embeddings[i] = record.Embedding
		titles[i] = record.Metadata["document_title"]
		fileNames[i] = record.Metadata["file_name"]
	}

	// Insert data
	columns := []entity.Column{
		entity.NewColumnVarChar("node_id", nodeIDs),
		entity.NewColumnVarChar("document_id", documentIDs),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("embedding", m.config.Dimension, embeddings),
		entity.NewColumnVarChar("title", titles),
		entity.NewColumnVarChar("file_name", fileNames),
	}

	if _, err := m.client.Insert(ctx, m.config.CollectionName, "", columns...); err != nil {
		return fmt.Errorf("%w: %v", ErrInsertFailed, err)
	}

	// Flush to ensure data is searchable
	if err := m.client.Flush(ctx, m.config.CollectionName, false); err != nil {
		return fmt.Errorf("failed to flush data: %w", err)
	}

	return nil
}

// Search performs top-K similarity search with optional filtering
func (m *MilvusStore) Search(ctx context.Context, queryVector []float32, topK int, opts *SearchOptions) ([]ScoredNode, error) {
	if len(queryVector) != m.config.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidDimension, m.config.Dimension, len(queryVector))
	}

	// Build filter expression
	expr := ""
	if opts != nil && len(opts.DocumentIDs) > 0 {
		expr = fmt.Sprintf(`document_id == "%s"`, opts.DocumentIDs[0])
		for i := 1; i < len(opts.DocumentIDs); i++ {
			expr = fmt.Sprintf(`%s or document_id == "%s"`, expr, opts.DocumentIDs[i])
		}
	}

	// Configure search parameters
	sp, err := entity.NewIndexHNSWSearchParam(64) // ef parameter for search
	if err != nil {
		return nil, fmt.Errorf("failed to create search params: %w", err)
	}

	// Perform vector search
	vectors := []entity.Vector{entity.FloatVector(queryVector)}
	outputFields := []string{"node_id", "document_id", "text", "title", "file_name"}

	results, err := m.client.Search(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		outputFields,
		vectors,
		"embedding",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	if len(results) == 0 {
		return []ScoredNode{}, nil
	}

	// Parse results into scored nodes
	nodes := make([]ScoredNode, 0, results[0].ResultCount)

	for i := 0; i < results[0].ResultCount; i++ {
		node := ScoredNode{
			Score:    results[0].Scores[i],
			Metadata: make(map[string]string),
		}

		// Extract fields
		for _, field := range results[0].Fields {
			switch field.Name() {
			case "node_id":
				node.NodeID = field.(*entity.ColumnVarChar).Data()[i]
			case "document_id":
				node.DocumentID = field.(*entity.ColumnVarChar).Data()[i]
			case "text":
				node.Text = field.(*entity.ColumnVarChar).Data()[i]
			case "title":
				node.Metadata["document_title"] = field.(*entity.ColumnVarChar).Data()[i]
			case "file_name":
				node.Metadata["file_name"] = field.(*entity.ColumnVarChar).Data()[i]
			}
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

// Query checks which node IDs exist in the store
func (m *MilvusStore) Query(ctx context.Context, nodeIDs []string) (map[string]bool, error) {
	if len(nodeIDs) == 0 {
		return map[string]bool{}, nil
	}

	// Build filter expression for the given node IDs
	expr := fmt.Sprintf(`node_id == "%s"`, nodeIDs[0])
	for i := 1; i < len(nodeIDs); i++ {
		expr = fmt.Sprintf(`%s or node_id == "%s"`, expr, nodeIDs[i])
	}

	results, err := m.client.Query(
		ctx,
		m.config.CollectionName,
		nil, // partition names
		expr,
		[]string{"node_id"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}

	// Build existence map
	existenceMap := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		existenceMap[id] = false
	}

	for _, column := range results {
		if column.Name() == "node_id" {
			if varcharCol, ok := column.(*entity.ColumnVarChar); ok {
				for _, id := range varcharCol.Data() {
					existenceMap[id] = true
				}
			}
		}
	}

	return existenceMap, nil
}

// Delete removes records by node IDs
func (m *MilvusStore) Delete(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}

	expr := fmt.Sprintf(`node_id == "%s"`, nodeIDs[0])
	for i := 1; i < len(nodeIDs); i++ {
		expr = fmt.Sprintf(`%s or node_id == "%s"`, expr, nodeIDs[i])
	}

	if err := m.client.Delete(ctx, m.config.CollectionName, "", expr); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// Count returns the number of records in the collection
func (m *MilvusStore) Count(ctx context.Context) (int, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.config.CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to get stats: %w", err)
	}

	var count int
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}

// Close releases resources and closes the Milvus connection
func (m *MilvusStore) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
