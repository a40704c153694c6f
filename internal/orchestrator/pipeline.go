package orchestrator

import (
	"context"
	"fmt"
	"log"

	"github.com/Yates-Labs/quarry/internal/document"
	"github.com/Yates-Labs/quarry/internal/ingest"
	"github.com/Yates-Labs/quarry/internal/llm"
	"github.com/Yates-Labs/quarry/internal/loader"
	"github.com/Yates-Labs/quarry/internal/query"
	"github.com/Yates-Labs/quarry/internal/rag"
)

// Store backends the pipeline can index into.
const (
	StoreMemory = "memory"
	StoreMilvus = "milvus"
)

// Config holds configuration for the end-to-end pipeline.
type Config struct {
	// TopK is the number of similar chunks retrieved per question
	TopK int

	// Splitter controls chunking of loaded documents
	Splitter ingest.SplitterConfig

	// TitleNodes is the number of chunks sampled per document for title
	// extraction
	TitleNodes int

	// QuestionCount is the number of questions generated per chunk
	QuestionCount int

	// SkipExtractors disables the LLM metadata extractors; chunks are
	// indexed with loader metadata only
	SkipExtractors bool

	// StoreBackend selects the vector store: "memory" (default) or "milvus"
	StoreBackend string

	// ExtractionLLM holds the LLM configuration for metadata extraction
	ExtractionLLM llm.Config

	// AnswerLLM holds the LLM configuration for answering questions
	AnswerLLM llm.Config

	// Embedder holds the embedding endpoint configuration
	Embedder rag.EmbedderConfig

	// Milvus holds the Milvus configuration, used when StoreBackend is
	// "milvus"
	Milvus rag.MilvusConfig

	// Index holds re-indexing options
	Index rag.IndexOptions
}

// DefaultConfig returns sensible defaults for the pipeline.
func DefaultConfig() Config {
	return Config{
		TopK:          query.DefaultTopK,
		Splitter:      ingest.DefaultSplitterConfig(),
		TitleNodes:    ingest.DefaultTitleNodes,
		QuestionCount: ingest.DefaultQuestionCount,
		StoreBackend:  StoreMemory,
		ExtractionLLM: llm.DefaultExtractionConfig(),
		AnswerLLM:     llm.DefaultAnswerConfig(),
		Embedder:      rag.DefaultEmbedderConfig(),
		Milvus:        rag.DefaultMilvusConfig(),
		Index:         rag.DefaultIndexOptions(),
	}
}

// Pipeline orchestrates the full flow: load documents, split and enrich
// them, embed and index the chunks, then answer questions over the index.
type Pipeline struct {
	config        Config
	embedder      rag.Embedder
	vectorStore   rag.VectorStore
	extractionLLM llm.LLM
	engine        *query.Engine
}

// NewPipeline creates a pipeline with real components built from the
// configuration.
func NewPipeline(ctx context.Context, config Config) (*Pipeline, error) {
	embedder, err := rag.NewOpenAIEmbedder(config.Embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	vectorStore, err := newVectorStore(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}

	var extractionLLM llm.LLM
	if !config.SkipExtractors {
		extractionLLM, err = llm.NewOpenAILLM(config.ExtractionLLM)
		if err != nil {
			vectorStore.Close()
			return nil, fmt.Errorf("failed to create extraction LLM: %w", err)
		}
	}

	// The answer LLM is built lazily on the first Ask, so ingest-only runs
	// work without answering credentials.
	return &Pipeline{
		config:        config,
		embedder:      embedder,
		vectorStore:   vectorStore,
		extractionLLM: extractionLLM,
	}, nil
}

// NewPipelineWithComponents creates a pipeline from preconstructed
// components. Used directly by tests and callers with custom backends.
func NewPipelineWithComponents(
	config Config,
	embedder rag.Embedder,
	vectorStore rag.VectorStore,
	extractionLLM llm.LLM,
	answerLLM llm.LLM,
) (*Pipeline, error) {
	engine, err := query.NewEngine(embedder, vectorStore, answerLLM, config.AnswerLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create query engine: %w", err)
	}
	if config.TopK > 0 {
		engine.TopK = config.TopK
	}

	return &Pipeline{
		config:        config,
		embedder:      embedder,
		vectorStore:   vectorStore,
		extractionLLM: extractionLLM,
		engine:        engine,
	}, nil
}

func newVectorStore(ctx context.Context, config Config) (rag.VectorStore, error) {
	switch config.StoreBackend {
	case StoreMilvus:
		return rag.NewMilvusStore(ctx, config.Milvus)
	case StoreMemory, "":
		return rag.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", config.StoreBackend)
	}
}

// Close releases resources held by the pipeline.
func (p *Pipeline) Close() error {
	if p.vectorStore != nil {
		return p.vectorStore.Close()
	}
	return nil
}

// Ingest loads documents from the given source, runs the transformation
// pipeline, and indexes the resulting chunks. Returns the number of chunks
// indexed.
func (p *Pipeline) Ingest(ctx context.Context, source loader.Loader) (int, error) {
	if source == nil {
		return 0, fmt.Errorf("loader cannot be nil")
	}

	// Stage 1: Load documents
	log.Printf("[Pipeline] Stage 1: Loading documents")
	docs, err := source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load documents: %w", err)
	}
	log.Printf("[Pipeline] Loaded %d documents", len(docs))

	// Stage 2: Shape metadata before chunking
	ingest.ShapeDocuments(docs)

	transformations, err := p.buildTransformations()
	if err != nil {
		return 0, err
	}

	// Stage 3: Split and enrich
	log.Printf("[Pipeline] Stage 2: Running %d transformations", len(transformations))
	ingestPipeline := ingest.NewPipeline(transformations...)
	ingestPipeline.OnProgress = func(stage string, done, total int) {
		log.Printf("[Pipeline] %s: %d/%d", stage, done, total)
	}

	nodes, err := ingestPipeline.Run(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("transformation pipeline failed: %w", err)
	}
	log.Printf("[Pipeline] Produced %d chunks", len(nodes))

	// Stage 4: Embed and index
	log.Printf("[Pipeline] Stage 3: Indexing %d chunks", len(nodes))
	if err := rag.IndexNodes(ctx, nodes, p.embedder, p.vectorStore, p.config.Index); err != nil {
		return 0, fmt.Errorf("failed to index chunks: %w", err)
	}
	log.Printf("[Pipeline] Successfully indexed %d chunks", len(nodes))

	return len(nodes), nil
}

func (p *Pipeline) buildTransformations() ([]ingest.Transformation, error) {
	splitter, err := ingest.NewSplitter(p.config.Splitter)
	if err != nil {
		return nil, fmt.Errorf("failed to create splitter: %w", err)
	}

	transformations := []ingest.Transformation{splitter}

	if p.config.SkipExtractors {
		return transformations, nil
	}
	if p.extractionLLM == nil {
		return nil, fmt.Errorf("extraction LLM required unless extractors are skipped")
	}

	return append(
		transformations,
		ingest.NewTitleExtractor(p.extractionLLM, p.config.TitleNodes),
		ingest.NewQuestionsExtractor(p.extractionLLM, p.config.QuestionCount),
	), nil
}

// ensureEngine builds the answer LLM and query engine on first use.
func (p *Pipeline) ensureEngine() error {
	if p.engine != nil {
		return nil
	}

	answerLLM, err := llm.NewOpenAILLM(p.config.AnswerLLM)
	if err != nil {
		return fmt.Errorf("failed to create answer LLM: %w", err)
	}

	engine, err := query.NewEngine(p.embedder, p.vectorStore, answerLLM, p.config.AnswerLLM)
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}
	if p.config.TopK > 0 {
		engine.TopK = p.config.TopK
	}

	p.engine = engine
	return nil
}

// Ask answers a question over the indexed corpus.
// The pipeline: retrieval -> prompt assembly -> LLM generation -> Response
func (p *Pipeline) Ask(ctx context.Context, question string) (*query.Response, error) {
	if err := p.ensureEngine(); err != nil {
		return nil, err
	}

	log.Printf("[Pipeline] Answering question with top-%d retrieval", p.engine.TopK)

	response, err := p.engine.Ask(ctx, question)
	if err != nil {
		return nil, err
	}

	log.Printf("[Pipeline] Generated answer (%d characters, %d sources)", len(response.Text), len(response.SourceNodes))
	return response, nil
}

// ChunkCount reports the number of chunks currently indexed.
func (p *Pipeline) ChunkCount(ctx context.Context) (int, error) {
	return p.vectorStore.Count(ctx)
}

// Transform runs the transformation pipeline over already-loaded documents
// without indexing. Useful for inspecting what the transformations produce.
func (p *Pipeline) Transform(ctx context.Context, docs []document.Document) ([]document.Node, error) {
	ingest.ShapeDocuments(docs)

	transformations, err := p.buildTransformations()
	if err != nil {
		return nil, err
	}

	return ingest.NewPipeline(transformations...).Run(ctx, docs)
}
