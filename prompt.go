package chefbot

import (
	"fmt"
	"strings"
)

// Section markers the model is asked to continue from.
const (
	IngredientsMarker    = "### Ingredients:"
	ModifiedRecipeMarker = "### Modified Recipe:"
)

// Prompt represents a structured recipe prompt with consistent formatting.
type Prompt struct {
	Task    string   // Required: the opening instruction sentence
	Details []string // Optional: constraint sentences following the task
	Input   string   // Optional: a body of text placed on its own lines
	Marker  string   // Optional: closing marker the model continues from
}

// Render converts the structured prompt to a string for the model.
// Task and details share the first line; input and marker follow on their own lines.
func (p *Prompt) Render() string {
	head := []string{p.Task}
	for _, d := range p.Details {
		if d != "" {
			head = append(head, d)
		}
	}

	lines := []string{strings.Join(head, " ")}
	if p.Input != "" {
		lines = append(lines, p.Input)
	}
	if p.Marker != "" {
		lines = append(lines, p.Marker)
	}
	return strings.Join(lines, "\n")
}

// Validate checks if the prompt has required fields.
func (p *Prompt) Validate() error {
	if strings.TrimSpace(p.Task) == "" {
		return fmt.Errorf("prompt missing required Task field")
	}
	return nil
}

// DetailsFunc supplies extra constraint sentences for a recipe prompt. They
// are placed after the fixed details and before the closing sentence.
type DetailsFunc func(State) []string

// DirectRecipePrompt asks for a named dish with its ingredients and instructions.
func DirectRecipePrompt(s State) *Prompt {
	return DirectRecipePromptWith(DirectRecipeDetails)(s)
}

// DirectRecipePromptWith builds the named-dish prompt with extra details from
// fn. A nil fn leaves only the fixed sentences.
func DirectRecipePromptWith(fn DetailsFunc) func(State) *Prompt {
	return func(s State) *Prompt {
		details := []string{
			fmt.Sprintf("Cooking method: %s, Protein: %s, Season: %s.", s.CookingMethod, s.ProteinSource, s.Season),
			fmt.Sprintf("Time: %s, Serves: %s.", s.CookingTime, s.ServingSize),
		}
		if fn != nil {
			details = append(details, fn(s)...)
		}
		details = append(details, "Include ingredients and instructions.")

		return &Prompt{
			Task:    fmt.Sprintf("Provide a %s %s recipe for %s.", s.Difficulty, s.MealType, s.RecipeName),
			Details: details,
		}
	}
}

// IngredientParserPrompt asks the model to list the ingredients in free text.
func IngredientParserPrompt(s State) *Prompt {
	return &Prompt{
		Task:   "Extract ingredients from:",
		Input:  s.InputText,
		Marker: IngredientsMarker,
	}
}

// RecipeGeneratorPrompt asks for a recipe built from the parsed ingredients.
func RecipeGeneratorPrompt(s State) *Prompt {
	return RecipeGeneratorPromptWith(RecipeGeneratorDetails)(s)
}

// RecipeGeneratorPromptWith builds the ingredient-driven prompt with extra
// details from fn. A nil fn leaves only the fixed sentences.
func RecipeGeneratorPromptWith(fn DetailsFunc) func(State) *Prompt {
	return func(s State) *Prompt {
		details := []string{
			fmt.Sprintf("Difficulty: %s, Protein: %s, Season: %s, Time: %s.", s.Difficulty, s.ProteinSource, s.Season, s.CookingTime),
			fmt.Sprintf("Serves: %s.", s.ServingSize),
		}
		if fn != nil {
			details = append(details, fn(s)...)
		}
		details = append(details, fmt.Sprintf("%s-friendly.", s.Preference))

		return &Prompt{
			Task:    fmt.Sprintf("Create %s %s recipe using: %s.", s.Region, s.MealType, strings.Join(s.Ingredients, ", ")),
			Details: details,
		}
	}
}

// DietaryFilterPrompt asks the model to rewrite the recipe for the preference.
func DietaryFilterPrompt(s State) *Prompt {
	return &Prompt{
		Task:   fmt.Sprintf("Modify recipe for %s diet:", s.Preference),
		Input:  s.Recipe,
		Marker: ModifiedRecipeMarker,
	}
}

// DirectRecipeDetails adds spice level, equipment and minimum rating when set.
func DirectRecipeDetails(s State) []string {
	details := RecipeGeneratorDetails(s)
	if s.MinRating != "" {
		details = append(details, fmt.Sprintf("Minimum rating: %s stars.", s.MinRating))
	}
	return details
}

// RecipeGeneratorDetails adds spice level and equipment when set.
func RecipeGeneratorDetails(s State) []string {
	var details []string
	if s.SpiceLevel != "" {
		details = append(details, fmt.Sprintf("Spice level: %s.", s.SpiceLevel))
	}
	if len(s.Equipment) > 0 {
		details = append(details, fmt.Sprintf("Available equipment: %s.", strings.Join(s.Equipment, ", ")))
	}
	return details
}
