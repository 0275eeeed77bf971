package chefbot

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// fakeExchanger answers every prompt with reply and records what it was sent.
type fakeExchanger struct {
	reply   string
	err     error
	stages  []StageName
	prompts []string
}

func (f *fakeExchanger) Exchange(_ context.Context, stage StageName, prompt string) (*ModelRequest, error) {
	f.stages = append(f.stages, stage)
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nil, f.err
	}
	return &ModelRequest{Prompt: prompt, Stage: stage, Response: f.reply, Usage: &TokenUsage{Total: 7}}, nil
}

func TestStage_Run(t *testing.T) {
	t.Run("not_ready_is_noop", func(t *testing.T) {
		model := &fakeExchanger{reply: "x"}
		result, err := FetchRecipeStage().Run(context.Background(), model, State{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Outcome != OutcomeNoop || !result.Update.Empty() {
			t.Errorf("expected untouched noop, got %+v", result)
		}
		if len(model.prompts) != 0 {
			t.Error("noop stage must not call the model")
		}
	})

	t.Run("ran", func(t *testing.T) {
		model := &fakeExchanger{reply: "the recipe"}
		result, err := FetchRecipeStage().Run(context.Background(), model, State{RecipeName: "Biryani"}.WithDefaults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Outcome != OutcomeRan {
			t.Errorf("expected ran, got %s", result.Outcome)
		}
		if result.Update.Recipe == nil || *result.Update.Recipe != "the recipe" {
			t.Errorf("expected recipe update, got %+v", result.Update)
		}
		if result.Usage.Total != 7 {
			t.Errorf("expected usage from the exchange, got %+v", result.Usage)
		}
		if model.stages[0] != FetchRecipe {
			t.Errorf("exchange should carry the stage name, got %q", model.stages[0])
		}
		if result.Prompt != model.prompts[0] {
			t.Error("result should record the rendered prompt")
		}
	})

	t.Run("model_error", func(t *testing.T) {
		boom := errors.New("boom")
		model := &fakeExchanger{err: boom}
		result, err := RecipeGeneratorStage().Run(context.Background(), model, State{})
		if !errors.Is(err, boom) {
			t.Fatalf("expected model error, got %v", err)
		}
		if result.Outcome != OutcomeFailed || result.Prompt == "" {
			t.Errorf("expected failed result with prompt, got %+v", result)
		}
	})
}

func TestIngredientParserStage(t *testing.T) {
	model := &fakeExchanger{reply: " - rice \n\n peas\n"}
	result, err := IngredientParserStage().Run(context.Background(), model, State{InputText: "rice and peas"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := State{}.Apply(result.Update).Ingredients
	if diff := cmp.Diff([]string{"- rice", "peas"}, got); diff != "" {
		t.Errorf("ingredients mismatch (-want +got):\n%s", diff)
	}

	// Whitespace-only free text means nothing to parse.
	result, _ = IngredientParserStage().Run(context.Background(), model, State{InputText: "  "})
	if result.Outcome != OutcomeNoop {
		t.Errorf("expected noop for blank input, got %s", result.Outcome)
	}
}

func TestRecipeGeneratorStage_AlwaysRuns(t *testing.T) {
	model := &fakeExchanger{reply: "something"}
	result, err := RecipeGeneratorStage().Run(context.Background(), model, State{Ingredients: []string{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Outcome != OutcomeRan {
		t.Errorf("generator should run with empty ingredients, got %s", result.Outcome)
	}
}

func TestDietaryFilterStage(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"marker", "Intro\n" + ModifiedRecipeMarker + "\n  Tofu curry  ", "Tofu curry"},
		{"no_marker", "I can't do that", "raw recipe"},
		{"blank_section", "Intro\n" + ModifiedRecipeMarker + "\n   ", "raw recipe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeExchanger{reply: tt.reply}
			state := State{Recipe: "raw recipe", Preference: "Vegan"}
			result, err := DietaryFilterStage().Run(context.Background(), model, state)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := state.Apply(result.Update).FilteredRecipe; got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	t.Run("no_recipe_is_noop", func(t *testing.T) {
		model := &fakeExchanger{reply: "x"}
		result, _ := DietaryFilterStage().Run(context.Background(), model, State{Preference: "Vegan"})
		if result.Outcome != OutcomeNoop || len(model.prompts) != 0 {
			t.Errorf("expected noop without model call, got %+v", result)
		}
	})
}

func TestParseIngredients(t *testing.T) {
	if got := ParseIngredients(""); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", got)
	}
	got := ParseIngredients("a\r\n b \n\n")
	if diff := cmp.Diff([]string{"a", "b"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractModifiedRecipe(t *testing.T) {
	t.Run("first_marker_wins", func(t *testing.T) {
		got, ok := ExtractModifiedRecipe("x\n" + ModifiedRecipeMarker + " one\n" + ModifiedRecipeMarker + " two")
		if !ok {
			t.Fatal("expected match")
		}
		want := "one\n" + ModifiedRecipeMarker + " two"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if _, ok := ExtractModifiedRecipe("nothing here"); ok {
			t.Error("expected no match")
		}
	})
}
