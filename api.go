// Package chefbot generates cooking recipes by chaining calls to a locally
// hosted language model.
//
// A recipe invocation threads a State record through a small, explicit graph
// of stages. Each stage reads part of the record, renders a prompt, calls the
// model and merges a partial update back into the record:
//
//   - fetch_recipe: asks for a named dish directly
//   - ingredient_parser: extracts a clean ingredient list from free text
//   - recipe_generator: creates a recipe from the parsed ingredients
//   - dietary_filter: rewrites the recipe for a dietary preference
//
// The two request modes (by name, by ingredients) are an explicit exclusive
// choice made before any stage runs, so both branches never race to write the
// same field.
//
// Basic usage:
//
//	provider := ollama.New(ollama.Config{Model: "qwen2.5:3b"})
//	chef := chefbot.New(provider)
//	text, _ := chef.Generate(ctx, chefbot.State{RecipeName: "Butter Chicken"})
//	fmt.Println(text)
package chefbot

import "context"

// Provider defines the interface for model-serving backends.
// A provider sends conversation messages to a model and returns its reply.
type Provider interface {
	// Call sends messages to the model and returns the response with usage stats.
	// A temperature of TemperatureUnset leaves the backend's default in place.
	Call(ctx context.Context, messages []Message, temperature float32) (*ProviderResponse, error)

	// Name returns the provider identifier (e.g., "ollama", "openai")
	Name() string
}

// TokenUsage contains token counts from a provider response.
type TokenUsage struct {
	Prompt     int `json:"prompt"`     // Tokens used by the prompt/messages
	Completion int `json:"completion"` // Tokens used by the completion/response
	Total      int `json:"total"`      // Total tokens used
}

// Add returns the sum of two usage records.
func (u TokenUsage) Add(other TokenUsage) TokenUsage {
	return TokenUsage{
		Prompt:     u.Prompt + other.Prompt,
		Completion: u.Completion + other.Completion,
		Total:      u.Total + other.Total,
	}
}

// ProviderResponse contains the response from a provider.
type ProviderResponse struct {
	Content string     // The text response content
	Usage   TokenUsage // Token usage statistics
}

// Message represents a single message in a conversation.
type Message struct {
	Role    string // RoleUser, RoleAssistant, or RoleSystem
	Content string // The message content
}

// Role constants for message types.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Temperature constants.
const (
	// TemperatureUnset indicates that no temperature has been explicitly set.
	// Providers omit the field so the model server applies its own default.
	TemperatureUnset float32 = -1

	// TemperatureZero provides an explicitly near-zero temperature for maximum determinism.
	// Use this instead of 0.0 since zero is treated as "unset".
	TemperatureZero float32 = 0.0001
)

// ResolveTemperature maps the zero value onto TemperatureUnset.
func ResolveTemperature(t float32) float32 {
	if t <= 0 && t != TemperatureZero {
		return TemperatureUnset
	}
	return t
}
