package chefbot

import (
	"slices"
	"strings"
)

// Defaults for the constrained configuration fields.
const (
	DefaultCookingMethod = "Any"
	DefaultProteinSource = "Any"
	DefaultDifficulty    = "Any"
	DefaultSeason        = "Any Season"
)

// State is the record threaded through one recipe invocation.
// Stages never mutate a State; they return an Update that is applied to
// produce the next record.
type State struct {
	RecipeName     string   `json:"recipe_name" desc:"dish name for direct lookup"`
	InputText      string   `json:"input_text" desc:"free-text ingredient list"`
	Ingredients    []string `json:"ingredients" desc:"parsed ingredients"`
	Recipe         string   `json:"recipe" desc:"raw generated recipe"`
	FilteredRecipe string   `json:"filtered_recipe" desc:"recipe after the dietary pass"`
	Preference     string   `json:"preference" desc:"dietary preference"`
	SpiceLevel     string   `json:"spice_level"`
	Region         string   `json:"region" desc:"cuisine region"`
	CookingTime    string   `json:"cooking_time"`
	MealType       string   `json:"meal_type"`
	Equipment      []string `json:"equipment" desc:"available kitchen tools"`
	CookingMethod  string   `json:"cooking_method"`
	ServingSize    string   `json:"serving_size"`
	ProteinSource  string   `json:"protein_source"`
	Difficulty     string   `json:"difficulty"`
	Season         string   `json:"season"`
	MinRating      string   `json:"min_rating,omitempty" desc:"minimum rating filter"`
}

// WithDefaults returns a copy with the defaulted fields filled when empty.
func (s State) WithDefaults() State {
	out := s.Clone()
	if strings.TrimSpace(out.CookingMethod) == "" {
		out.CookingMethod = DefaultCookingMethod
	}
	if strings.TrimSpace(out.ProteinSource) == "" {
		out.ProteinSource = DefaultProteinSource
	}
	if strings.TrimSpace(out.Difficulty) == "" {
		out.Difficulty = DefaultDifficulty
	}
	if strings.TrimSpace(out.Season) == "" {
		out.Season = DefaultSeason
	}
	return out
}

// WithoutOutputs returns a copy with the stage-written fields cleared.
func (s State) WithoutOutputs() State {
	out := s.Clone()
	out.Ingredients = nil
	out.Recipe = ""
	out.FilteredRecipe = ""
	return out
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Ingredients = slices.Clone(s.Ingredients)
	out.Equipment = slices.Clone(s.Equipment)
	return out
}

// Apply returns a new state with the update merged in.
func (s State) Apply(u Update) State {
	out := s.Clone()
	if u.Ingredients != nil {
		out.Ingredients = slices.Clone(*u.Ingredients)
		if out.Ingredients == nil {
			out.Ingredients = []string{}
		}
	}
	if u.Recipe != nil {
		out.Recipe = *u.Recipe
	}
	if u.FilteredRecipe != nil {
		out.FilteredRecipe = *u.FilteredRecipe
	}
	return out
}

// Authoritative returns the filtered recipe when present, otherwise the raw
// recipe. It returns "" when neither is populated.
func (s State) Authoritative() string {
	if s.FilteredRecipe != "" {
		return s.FilteredRecipe
	}
	return s.Recipe
}

// Text returns the authoritative recipe or NoRecipeFound.
func (s State) Text() string {
	if text := s.Authoritative(); text != "" {
		return text
	}
	return NoRecipeFound
}

// Update is a partial state produced by a stage.
// Nil fields leave the corresponding state field untouched.
type Update struct {
	Ingredients    *[]string
	Recipe         *string
	FilteredRecipe *string
}

// Empty reports whether the update changes nothing.
func (u Update) Empty() bool {
	return u.Ingredients == nil && u.Recipe == nil && u.FilteredRecipe == nil
}

// SetIngredients returns an update that replaces the ingredient list.
func SetIngredients(items []string) Update {
	if items == nil {
		items = []string{}
	}
	return Update{Ingredients: &items}
}

// SetRecipe returns an update that replaces the raw recipe.
func SetRecipe(recipe string) Update {
	return Update{Recipe: &recipe}
}

// SetFilteredRecipe returns an update that replaces the filtered recipe.
func SetFilteredRecipe(recipe string) Update {
	return Update{FilteredRecipe: &recipe}
}
