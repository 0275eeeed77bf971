package chefbot

import "errors"

// NoRecipeFound is returned by Generate and State.Text when an invocation
// produced neither a recipe nor a filtered recipe.
const NoRecipeFound = "No recipe found!"

var (
	// ErrModelUnavailable reports that the model-serving process could not be
	// reached or returned output that could not be read.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrConflictingRequest reports that both a recipe name and an ingredient
	// list were supplied for the same invocation.
	ErrConflictingRequest = errors.New("recipe_name and input_text are mutually exclusive")

	// ErrInvalidGraph reports a malformed stage graph.
	ErrInvalidGraph = errors.New("invalid stage graph")

	// ErrUnknownField reports a mapping key that is not a state field.
	ErrUnknownField = errors.New("unknown state field")

	// ErrInvalidField reports a mapping value of the wrong shape.
	ErrInvalidField = errors.New("invalid state field")
)
