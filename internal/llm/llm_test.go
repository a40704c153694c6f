package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNewOpenAILLMRequiresAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	_, err := NewOpenAILLM(Config{Model: DefaultAnswerModel})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewOpenAILLMRequiresModel(t *testing.T) {
	_, err := NewOpenAILLM(Config{APIKey: "test-key"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewOpenAILLMWithConfig(t *testing.T) {
	o, err := NewOpenAILLM(Config{
		Model:  DefaultExtractionModel,
		APIKey: "test-key",
	})
	if err != nil {
		t.Fatalf("NewOpenAILLM failed: %v", err)
	}

	if _, err := o.Generate(context.Background(), ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for empty prompt, got %v", err)
	}
}

func TestDefaultConfigsUseDistinctModels(t *testing.T) {
	extraction := DefaultExtractionConfig()
	answer := DefaultAnswerConfig()

	if extraction.Model == answer.Model {
		t.Error("Extraction and answer stages must use different models")
	}
	if extraction.BaseURL != DefaultBaseURL || answer.BaseURL != DefaultBaseURL {
		t.Error("Both configs should default to the Groq endpoint")
	}
}

func TestMockLLMFixedResponse(t *testing.T) {
	m := NewMockLLM("a fixed answer")

	got, err := m.Generate(context.Background(), "some prompt")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "a fixed answer" {
		t.Errorf("Expected fixed response, got %q", got)
	}
	if m.CallCount() != 1 || m.Prompts[0] != "some prompt" {
		t.Errorf("Prompt not recorded: %v", m.Prompts)
	}
}

func TestMockLLMError(t *testing.T) {
	wantErr := errors.New("boom")
	m := NewMockLLMWithError(wantErr)

	if _, err := m.Generate(context.Background(), "prompt"); !errors.Is(err, wantErr) {
		t.Errorf("Expected configured error, got %v", err)
	}
}

func TestMockLLMDerivedResponse(t *testing.T) {
	m := NewMockLLM("")

	got, err := m.Generate(context.Background(), "What does this document talk about?\nsecond line")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(got, "What does this document talk about?") {
		t.Errorf("Derived response should echo the first prompt line, got %q", got)
	}
}
