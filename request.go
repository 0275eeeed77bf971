package chefbot

import "strings"

// ModelRequest flows through the model pipeline.
// It contains the prompt, parameters, and response data for one model call.
type ModelRequest struct {
	// Input fields
	Prompt      string  // The rendered prompt sent as a single user message
	Temperature float32 // Temperature parameter for response generation

	// Metadata fields
	RequestID    string    // Unique identifier for this call
	Stage        StageName // Stage issuing the call, empty for direct calls
	ProviderName string    // Name of the provider being used

	// Output fields (populated by pipeline)
	Response string      // Raw text response from provider
	Usage    *TokenUsage // Token usage from provider response
}

// Mode names the kind of recipe request.
type Mode string

// Request modes.
const (
	ModeByName        Mode = "by_name"
	ModeByIngredients Mode = "by_ingredients"
)

// Request is the recipe request selected at pipeline entry.
// It is either ByName or ByIngredients.
type Request interface {
	Mode() Mode
	isRequest()
}

// ByName requests a recipe for a named dish.
type ByName struct {
	Name string
}

// Mode implements Request.
func (ByName) Mode() Mode { return ModeByName }
func (ByName) isRequest() {}

// ByIngredients requests a recipe built from a free-text ingredient list.
type ByIngredients struct {
	Text string
}

// Mode implements Request.
func (ByIngredients) Mode() Mode { return ModeByIngredients }
func (ByIngredients) isRequest() {}

// RequestFor selects the request variant a state describes.
// It returns nil and no error when neither mode is populated.
func RequestFor(s State) (Request, error) {
	name := strings.TrimSpace(s.RecipeName)
	text := strings.TrimSpace(s.InputText)

	switch {
	case name != "" && text != "":
		return nil, ErrConflictingRequest
	case name != "":
		return ByName{Name: s.RecipeName}, nil
	case text != "":
		return ByIngredients{Text: s.InputText}, nil
	default:
		return nil, nil
	}
}
