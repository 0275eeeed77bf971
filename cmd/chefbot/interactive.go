package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/zoobzio/chefbot"
)

const (
	actionByName        = "Get a recipe by name"
	actionByIngredients = "Create a recipe from ingredients"
	actionReset         = "Reset the form"
	actionQuit          = "Quit"
)

func runInteractive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	var c common
	c.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	form := chefbot.FormDefaults()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var action string
		err := survey.AskOne(&survey.Select{
			Message: "What would you like to cook?",
			Options: []string{actionByName, actionByIngredients, actionReset, actionQuit},
		}, &action)
		if err != nil {
			return quiet(err)
		}

		switch action {
		case actionQuit:
			return nil
		case actionReset:
			form = chefbot.FormDefaults()
			fmt.Println("Form reset.")
			continue
		case actionByName:
			name, err := askText("Recipe name", "e.g. "+strings.Join(chefbot.ExampleRecipes, ", "))
			if err != nil {
				return quiet(err)
			}
			form.RecipeName, form.InputText = name, ""
		case actionByIngredients:
			text, err := askText("Ingredients", "e.g. "+strings.Join(chefbot.ExampleIngredients, "; "))
			if err != nil {
				return quiet(err)
			}
			form.RecipeName, form.InputText = "", text
		}

		adjust := false
		if err := survey.AskOne(&survey.Confirm{Message: "Adjust preferences and filters?"}, &adjust); err != nil {
			return quiet(err)
		}
		if adjust {
			form, err = askChoices(form)
			if err != nil {
				return quiet(err)
			}
		}

		text, err := a.chef.Generate(ctx, form)
		if err != nil {
			fmt.Printf("Error: %v\n\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", text)
	}
}

func askText(message, help string) (string, error) {
	var out string
	err := survey.AskOne(&survey.Input{Message: message, Help: help}, &out, survey.WithValidator(survey.Required))
	return strings.TrimSpace(out), err
}

// askChoices walks every catalog entry, starting each prompt at the form's
// current value.
func askChoices(form chefbot.State) (chefbot.State, error) {
	values := form.Map()
	for _, choice := range chefbot.Choices() {
		if choice.Multi {
			current, _ := values[choice.Field].([]string)
			var picked []string
			prompt := &survey.MultiSelect{Message: choice.Label, Options: choice.Options}
			if len(current) > 0 {
				prompt.Default = current
			}
			if err := survey.AskOne(prompt, &picked); err != nil {
				return form, err
			}
			values[choice.Field] = picked
			continue
		}

		current, _ := values[choice.Field].(string)
		if !slices.Contains(choice.Options, current) {
			current = choice.Default
		}
		var picked string
		prompt := &survey.Select{Message: choice.Label, Options: choice.Options}
		if current != "" {
			prompt.Default = current
		}
		if err := survey.AskOne(prompt, &picked); err != nil {
			return form, err
		}
		values[choice.Field] = picked
	}

	var serving string
	current, _ := values["serving_size"].(string)
	if err := survey.AskOne(&survey.Input{Message: "Serving size", Default: current}, &serving); err != nil {
		return form, err
	}
	values["serving_size"] = serving

	return chefbot.FromMap(values)
}

// quiet turns a Ctrl-C at a prompt into a clean exit.
func quiet(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}
