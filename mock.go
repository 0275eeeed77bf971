package chefbot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// MockProvider simulates a recipe model for testing.
// It returns deterministic responses based on prompt patterns.
type MockProvider struct {
	name      string
	available atomic.Bool
	calls     atomic.Int64
}

// NewMockProvider creates a new mock provider for testing.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithName("mock")
}

// NewMockProviderWithName creates a new mock provider with a specific name.
func NewMockProviderWithName(name string) *MockProvider {
	m := &MockProvider{name: name}
	m.available.Store(true)
	return m
}

// Name returns the provider identifier.
func (m *MockProvider) Name() string {
	return m.name
}

// Call simulates a model call with deterministic responses.
func (m *MockProvider) Call(_ context.Context, messages []Message, _ float32) (*ProviderResponse, error) {
	m.calls.Add(1)
	if !m.available.Load() {
		return nil, fmt.Errorf("provider %s is unavailable", m.name)
	}
	prompt := lastUserContent(messages)
	return &ProviderResponse{
		Content: m.generateResponse(prompt),
		Usage:   TokenUsage{Prompt: len(prompt) / 4, Completion: 20, Total: len(prompt)/4 + 20},
	}, nil
}

// SetAvailable sets the availability status (for testing failures).
func (m *MockProvider) SetAvailable(available bool) {
	m.available.Store(available)
}

// CallCount returns the number of calls made.
func (m *MockProvider) CallCount() int {
	return int(m.calls.Load())
}

// generateResponse creates a response based on prompt patterns.
func (*MockProvider) generateResponse(prompt string) string {
	switch {
	case strings.HasSuffix(prompt, IngredientsMarker):
		// One ingredient per line, taken from the comma-separated input.
		body := strings.TrimSuffix(prompt, IngredientsMarker)
		if _, after, ok := strings.Cut(body, "\n"); ok {
			body = after
		}
		var lines []string
		for _, part := range strings.Split(body, ",") {
			if part = strings.TrimSpace(part); part != "" {
				lines = append(lines, part)
			}
		}
		return strings.Join(lines, "\n")

	case strings.HasSuffix(prompt, ModifiedRecipeMarker):
		body := strings.TrimSuffix(prompt, ModifiedRecipeMarker)
		head, recipe, _ := strings.Cut(body, "\n")
		return fmt.Sprintf("%s\n%s\n(adjusted) %s", head, ModifiedRecipeMarker, strings.TrimSpace(recipe))

	case strings.HasPrefix(prompt, "Provide a"), strings.HasPrefix(prompt, "Create"):
		return "Mock recipe\nIngredients:\n- mock ingredient\nInstructions:\n1. Cook."

	default:
		return "Mock response"
	}
}

// lastUserContent returns the content of the final user message.
func lastUserContent(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// NewMockProviderWithResponse creates a mock that always returns a specific response.
func NewMockProviderWithResponse(response string) Provider {
	return &mockProviderFixed{response: response}
}

// NewMockProviderWithCallback creates a mock that calls a function to generate responses.
func NewMockProviderWithCallback(callback func(prompt string, temperature float32) (string, error)) Provider {
	return &mockProviderCallback{callback: callback}
}

// mockProviderFixed always returns a fixed response.
type mockProviderFixed struct {
	response string
}

func (m *mockProviderFixed) Call(_ context.Context, _ []Message, _ float32) (*ProviderResponse, error) {
	return &ProviderResponse{Content: m.response}, nil
}

func (*mockProviderFixed) Name() string {
	return "mock-fixed"
}

// mockProviderCallback uses a callback to generate responses.
type mockProviderCallback struct {
	callback func(string, float32) (string, error)
	mu       sync.Mutex
}

func (m *mockProviderCallback) Call(_ context.Context, messages []Message, temperature float32) (*ProviderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, err := m.callback(lastUserContent(messages), temperature)
	if err != nil {
		return nil, err
	}
	return &ProviderResponse{Content: content}, nil
}

func (*mockProviderCallback) Name() string {
	return "mock-callback"
}
