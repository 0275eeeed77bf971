package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/zoobzio/chefbot"
)

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var c common
	c.register(fs)
	asJSON := fs.Bool("json", false, "print the final state and transcript as JSON")

	// One flag per state field, named with dashes.
	values := make(map[string]*string)
	for _, f := range chefbot.Fields() {
		help := f.Description
		if f.Type == "array" {
			help = strings.TrimSpace(help + " (comma separated)")
		}
		values[f.Name] = fs.String(flagName(f.Name), "", help)
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := make(map[string]any)
	fs.Visit(func(fl *flag.Flag) {
		name := fieldName(fl.Name)
		if v, ok := values[name]; ok {
			fields[name] = *v
		}
	})
	initial, err := chefbot.FromMap(fields)
	if err != nil {
		return err
	}

	a, err := setup(c)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.chef.Run(ctx, initial)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"recipe":     result.Text(),
			"state":      result.State.Map(),
			"transcript": result.Transcript.Steps(),
			"usage":      result.Transcript.Usage(),
		})
	}
	fmt.Println(result.Text())
	return nil
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}

func fieldName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
