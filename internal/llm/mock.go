package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses based on prompt content.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a deterministic response is derived from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// Prompts stores every prompt passed to Generate, in order.
	Prompts []string
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or derives a deterministic one
// from the prompt.
func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	// Derive a short stable response so assertions can key off prompt
	// content without string matching the whole prompt.
	firstLine := prompt
	if idx := strings.IndexByte(prompt, '\n'); idx >= 0 {
		firstLine = prompt[:idx]
	}
	if len(firstLine) > 60 {
		firstLine = firstLine[:60]
	}
	return fmt.Sprintf("mock response to: %s", strings.TrimSpace(firstLine)), nil
}

// CallCount returns how many times Generate was invoked.
func (m *MockLLM) CallCount() int {
	return len(m.Prompts)
}
