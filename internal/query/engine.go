package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Yates-Labs/quarry/internal/llm"
	"github.com/Yates-Labs/quarry/internal/rag"
)

var ErrAnswerFailed = errors.New("answer generation failed")

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// Response is the answer to a question, with the chunks it was grounded on.
type Response struct {
	// Text is the generated answer
	Text string `json:"text"`

	// SourceNodes are the retrieved chunks the answer was grounded on,
	// ordered by relevance score
	SourceNodes []rag.ScoredNode `json:"source_nodes"`

	// Model is the LLM model used to generate the answer
	Model string `json:"model"`

	// CreatedAt is when this answer was generated
	CreatedAt time.Time `json:"created_at"`
}

// Engine answers free-text questions over an indexed corpus: it retrieves
// the topK most similar chunks, assembles a grounded prompt, and invokes
// the answering LLM.
type Engine struct {
	retriever *rag.Retriever
	llm       llm.LLM
	config    llm.Config

	// TopK is the number of chunks retrieved per question.
	TopK int
}

// NewEngine creates a query engine over the given retrieval and answering
// components.
func NewEngine(embedder rag.Embedder, store rag.VectorStore, answerer llm.LLM, config llm.Config) (*Engine, error) {
	if answerer == nil {
		return nil, fmt.Errorf("%w: LLM is required", ErrAnswerFailed)
	}

	retriever, err := rag.NewRetriever(embedder, store)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
	}

	return &Engine{
		retriever: retriever,
		llm:       answerer,
		config:    config,
		TopK:      DefaultTopK,
	}, nil
}

// Ask answers a question using retrieved context. An empty question or an
// empty index fails fast rather than invoking the LLM.
func (e *Engine) Ask(ctx context.Context, question string) (*Response, error) {
	topK := e.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	chunks, err := e.retriever.Retrieve(ctx, question, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	prompt, err := AssemblePrompt(question, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerFailed, err)
	}

	text, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: LLM invocation failed: %w", ErrAnswerFailed, err)
	}

	return &Response{
		Text:        text,
		SourceNodes: chunks,
		Model:       e.config.Model,
		CreatedAt:   time.Now(),
	}, nil
}
