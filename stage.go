package chefbot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// StageName identifies a stage in the graph.
type StageName string

// Stage names.
const (
	FetchRecipe      StageName = "fetch_recipe"
	IngredientParser StageName = "ingredient_parser"
	RecipeGenerator  StageName = "recipe_generator"
	DietaryFilter    StageName = "dietary_filter"
)

// Exchanger sends one prompt on behalf of a stage. *Model implements it.
type Exchanger interface {
	Exchange(ctx context.Context, stage StageName, prompt string) (*ModelRequest, error)
}

// Stage is a single prompt-construction-and-model-call step.
type Stage struct {
	Name StageName

	// Ready reports whether the stage has input to work on. A stage that is
	// reached but not ready passes the state through untouched. Nil means
	// always ready.
	Ready func(State) bool

	// Prompt builds the prompt from the current state.
	Prompt func(State) *Prompt

	// Shape turns the raw model response into a partial update.
	Shape func(State, string) Update
}

// StageResult is the outcome of running a stage once.
type StageResult struct {
	Outcome  Outcome
	Update   Update
	Prompt   string
	Response string
	Usage    TokenUsage
}

// Run executes the stage against state.
func (s Stage) Run(ctx context.Context, model Exchanger, state State) (StageResult, error) {
	if s.Ready != nil && !s.Ready(state) {
		return StageResult{Outcome: OutcomeNoop}, nil
	}

	prompt := s.Prompt(state)
	if err := prompt.Validate(); err != nil {
		return StageResult{Outcome: OutcomeFailed}, fmt.Errorf("invalid prompt: %w", err)
	}
	rendered := prompt.Render()

	resp, err := model.Exchange(ctx, s.Name, rendered)
	if err != nil {
		return StageResult{Outcome: OutcomeFailed, Prompt: rendered}, err
	}

	result := StageResult{
		Outcome:  OutcomeRan,
		Update:   s.Shape(state, resp.Response),
		Prompt:   rendered,
		Response: resp.Response,
	}
	if resp.Usage != nil {
		result.Usage = *resp.Usage
	}
	return result, nil
}

// FetchRecipeStage asks for a named dish directly.
func FetchRecipeStage() Stage {
	return Stage{
		Name:   FetchRecipe,
		Ready:  func(s State) bool { return strings.TrimSpace(s.RecipeName) != "" },
		Prompt: DirectRecipePrompt,
		Shape: func(_ State, response string) Update {
			return SetRecipe(response)
		},
	}
}

// IngredientParserStage extracts the ingredient list from free text.
func IngredientParserStage() Stage {
	return Stage{
		Name:   IngredientParser,
		Ready:  func(s State) bool { return strings.TrimSpace(s.InputText) != "" },
		Prompt: IngredientParserPrompt,
		Shape: func(_ State, response string) Update {
			return SetIngredients(ParseIngredients(response))
		},
	}
}

// RecipeGeneratorStage creates a recipe from the parsed ingredients.
// It always runs when reached, even with an empty ingredient list.
func RecipeGeneratorStage() Stage {
	return Stage{
		Name:   RecipeGenerator,
		Prompt: RecipeGeneratorPrompt,
		Shape: func(_ State, response string) Update {
			return SetRecipe(response)
		},
	}
}

// DietaryFilterStage rewrites the recipe for the dietary preference.
// Without the marker in the response the recipe is copied through unchanged.
func DietaryFilterStage() Stage {
	return Stage{
		Name:   DietaryFilter,
		Ready:  func(s State) bool { return s.Recipe != "" },
		Prompt: DietaryFilterPrompt,
		Shape: func(s State, response string) Update {
			if modified, ok := ExtractModifiedRecipe(response); ok {
				return SetFilteredRecipe(modified)
			}
			return SetFilteredRecipe(s.Recipe)
		},
	}
}

// ParseIngredients splits a model response into trimmed, non-empty lines.
// The model's formatting is trusted verbatim.
func ParseIngredients(response string) []string {
	items := []string{}
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

var modifiedRecipePattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(ModifiedRecipeMarker) + `(.*)`)

// ExtractModifiedRecipe returns the trimmed text following the first
// ModifiedRecipeMarker. It reports false when the marker is absent or nothing
// but whitespace follows it.
func ExtractModifiedRecipe(response string) (string, bool) {
	match := modifiedRecipePattern.FindStringSubmatch(response)
	if match == nil {
		return "", false
	}
	section := strings.TrimSpace(match[1])
	if section == "" {
		return "", false
	}
	return section, true
}
