package integration

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/chefbot"
	cbt "github.com/zoobzio/chefbot/testing"
)

func outcomes(result *chefbot.Result) map[chefbot.StageName]chefbot.Outcome {
	out := make(map[chefbot.StageName]chefbot.Outcome)
	for _, step := range result.Transcript.Steps() {
		out[step.Stage] = step.Outcome
	}
	return out
}

func TestScenario_ByName(t *testing.T) {
	provider := cbt.NewScriptedProvider().
		Respond(chefbot.FetchRecipe, "Butter Chicken\nIngredients:\n- chicken").
		Respond(chefbot.DietaryFilter, "Here you go.\n"+chefbot.ModifiedRecipeMarker+"\nButter Cauliflower")
	chef := chefbot.New(provider)

	result, err := chef.Run(context.Background(), chefbot.State{
		RecipeName: "Butter Chicken",
		Preference: "Vegan",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompts := provider.Prompts(chefbot.FetchRecipe)
	if len(prompts) != 1 {
		t.Fatalf("expected one direct prompt, got %d", len(prompts))
	}
	if !strings.Contains(prompts[0], "Butter Chicken") {
		t.Errorf("direct prompt should name the dish: %q", prompts[0])
	}

	want := map[chefbot.StageName]chefbot.Outcome{
		chefbot.FetchRecipe:      chefbot.OutcomeRan,
		chefbot.IngredientParser: chefbot.OutcomeSkipped,
		chefbot.RecipeGenerator:  chefbot.OutcomeSkipped,
		chefbot.DietaryFilter:    chefbot.OutcomeRan,
	}
	if diff := cmp.Diff(want, outcomes(result)); diff != "" {
		t.Errorf("stage outcomes mismatch (-want +got):\n%s", diff)
	}

	if result.State.Recipe == "" {
		t.Error("expected recipe to be populated")
	}
	if result.State.FilteredRecipe != "Butter Cauliflower" {
		t.Errorf("expected filtered recipe from marker section, got %q", result.State.FilteredRecipe)
	}
	if result.Text() != "Butter Cauliflower" {
		t.Errorf("filtered recipe should be authoritative, got %q", result.Text())
	}
	if len(result.State.Ingredients) != 0 {
		t.Errorf("by-name mode must not populate ingredients, got %v", result.State.Ingredients)
	}
	if provider.CallCount() != 2 {
		t.Errorf("expected 2 model calls, got %d", provider.CallCount())
	}
}

func TestScenario_ByIngredients(t *testing.T) {
	provider := cbt.NewScriptedProvider().
		Respond(chefbot.IngredientParser, "  chicken \n\n onions\nspices  \n").
		Respond(chefbot.RecipeGenerator, "Chicken stir fry")
	chef := chefbot.New(provider)

	result, err := chef.Run(context.Background(), chefbot.State{
		InputText:  "I have chicken, some onions and spices",
		Region:     "Asian Fusion",
		MealType:   "Dinner",
		Preference: "Keto",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"chicken", "onions", "spices"}, result.State.Ingredients); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}

	generated := provider.Prompts(chefbot.RecipeGenerator)
	if len(generated) != 1 {
		t.Fatalf("expected one generator prompt, got %d", len(generated))
	}
	if !strings.Contains(generated[0], "using: chicken, onions, spices") {
		t.Errorf("generator prompt should list parsed ingredients: %q", generated[0])
	}

	if got := outcomes(result)[chefbot.FetchRecipe]; got != chefbot.OutcomeSkipped {
		t.Errorf("fetch_recipe should be skipped, got %s", got)
	}
	if result.State.Recipe != "Chicken stir fry" {
		t.Errorf("unexpected recipe %q", result.State.Recipe)
	}
	if provider.CallCount() != 3 {
		t.Errorf("expected 3 model calls, got %d", provider.CallCount())
	}
}

func TestScenario_MarkerFallback(t *testing.T) {
	provider := cbt.NewScriptedProvider().
		Respond(chefbot.FetchRecipe, "Paneer Tikka recipe").
		Respond(chefbot.DietaryFilter, "I cannot modify this recipe.")
	chef := chefbot.New(provider)

	final, err := chef.Invoke(context.Background(), chefbot.State{RecipeName: "Paneer Tikka", Preference: "Vegan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.FilteredRecipe != final.Recipe {
		t.Errorf("without the marker the recipe is copied through: filtered=%q recipe=%q", final.FilteredRecipe, final.Recipe)
	}
	if final.FilteredRecipe != "Paneer Tikka recipe" {
		t.Errorf("unexpected filtered recipe %q", final.FilteredRecipe)
	}
}

func TestScenario_AsianFusionPrompt(t *testing.T) {
	recorder := cbt.NewCallRecorder(chefbot.NewMockProvider())
	chef := chefbot.New(recorder)

	_, err := chef.Run(context.Background(), chefbot.State{
		InputText:     "chicken, onions, spices",
		Preference:    "Vegan",
		SpiceLevel:    "Medium",
		Region:        "Asian Fusion",
		CookingTime:   "1 hour",
		MealType:      "Dinner",
		CookingMethod: "Any",
		ServingSize:   "2",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	calls := recorder.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected parser, generator and filter calls, got %d", len(calls))
	}
	if !strings.HasPrefix(calls[1].Prompt(), "Create Asian Fusion Dinner recipe using: chicken, onions, spices") {
		t.Errorf("unexpected generator prompt %q", calls[1].Prompt())
	}
	for _, c := range calls {
		if len(c.Messages) != 1 || c.Messages[0].Role != chefbot.RoleUser {
			t.Errorf("each call should send exactly one user message, got %+v", c.Messages)
		}
	}
}

func TestScenario_NothingRequested(t *testing.T) {
	provider := chefbot.NewMockProvider()
	chef := chefbot.New(provider)

	text, err := chef.Generate(context.Background(), chefbot.State{RecipeName: "   ", Preference: "Vegan"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != chefbot.NoRecipeFound {
		t.Errorf("expected %q, got %q", chefbot.NoRecipeFound, text)
	}
	if provider.CallCount() != 0 {
		t.Errorf("expected no model calls, got %d", provider.CallCount())
	}
}

func TestScenario_ConflictingRequest(t *testing.T) {
	provider := chefbot.NewMockProvider()
	chef := chefbot.New(provider)

	_, err := chef.Run(context.Background(), chefbot.State{RecipeName: "Biryani", InputText: "rice, vegetables"})
	if !errors.Is(err, chefbot.ErrConflictingRequest) {
		t.Fatalf("expected ErrConflictingRequest, got %v", err)
	}
	if provider.CallCount() != 0 {
		t.Errorf("expected no model calls, got %d", provider.CallCount())
	}
}

func TestScenario_ModelUnavailable(t *testing.T) {
	provider := cbt.NewFailingProvider(1).WithFailError("connection refused")
	chef := chefbot.New(provider)

	_, err := chef.Run(context.Background(), chefbot.State{RecipeName: "Biryani"})
	if !errors.Is(err, chefbot.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), string(chefbot.FetchRecipe)) {
		t.Errorf("error should name the failing stage: %v", err)
	}
	if provider.CallCount() != 1 {
		t.Errorf("no further stages should run after a failure, got %d calls", provider.CallCount())
	}
}

func TestScenario_InvokeMap(t *testing.T) {
	chef := chefbot.New(chefbot.NewMockProvider())

	out, err := chef.InvokeMap(context.Background(), map[string]any{
		"input_text": "fish, lemon, herbs",
		"preference": "Paleo",
		"equipment":  []any{"Oven", "Grill"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"fish", "lemon", "herbs"}, out["ingredients"]); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}
	if out["cooking_method"] != chefbot.DefaultCookingMethod {
		t.Errorf("expected defaulted cooking method, got %v", out["cooking_method"])
	}
	if out["filtered_recipe"] == "" {
		t.Error("expected filtered recipe in output mapping")
	}
}
