package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/quarry/internal/document"
	"github.com/Yates-Labs/quarry/internal/llm"
)

// QuestionsMetadataKey is the metadata key written by the questions
// extractor.
const QuestionsMetadataKey = "questions_this_excerpt_can_answer"

// DefaultQuestionCount is how many candidate questions are extracted per
// chunk.
const DefaultQuestionCount = 3

const questionsPrompt = `Here is the context:
%s

Given the contextual information, generate %d questions this context can provide specific answers to which are unlikely to be found elsewhere.

Higher-level summaries of surrounding context may be provided as well. Try using these summaries to generate better questions that this context can answer.`

// QuestionsExtractor asks the extraction LLM, for every chunk, which
// questions that chunk can answer, and stores them in the chunk metadata.
// One LLM round-trip per chunk.
type QuestionsExtractor struct {
	llm llm.LLM

	// Questions is how many questions to extract per chunk.
	Questions int
}

// NewQuestionsExtractor creates a questions extractor backed by the given
// LLM.
func NewQuestionsExtractor(model llm.LLM, questions int) *QuestionsExtractor {
	if questions <= 0 {
		questions = DefaultQuestionCount
	}
	return &QuestionsExtractor{llm: model, Questions: questions}
}

// Name identifies the stage.
func (q *QuestionsExtractor) Name() string { return "questions-extractor" }

// Transform mutates nodes in place, adding the questions metadata.
func (q *QuestionsExtractor) Transform(ctx context.Context, nodes []document.Node) ([]document.Node, error) {
	if q.llm == nil {
		return nil, fmt.Errorf("%w: questions extractor requires an LLM", ErrExtractionFailed)
	}

	for i := range nodes {
		prompt := fmt.Sprintf(questionsPrompt, nodes[i].Content(document.MetadataModeLLM), q.Questions)

		questions, err := q.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("%w: node %s: %v", ErrExtractionFailed, nodes[i].ID, err)
		}

		nodes[i].Metadata[QuestionsMetadataKey] = strings.TrimSpace(questions)
	}

	return nodes, nil
}
