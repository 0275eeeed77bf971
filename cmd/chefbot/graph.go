package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/zoobzio/chefbot"
)

func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "print as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g := chefbot.DefaultGraph()
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"stages": g.Stages(), "edges": g.Edges()})
	}

	fmt.Println("stages:")
	for i, name := range g.Stages() {
		fmt.Printf("  %d. %s\n", i+1, name)
	}
	fmt.Println("edges:")
	for _, e := range g.Edges() {
		fmt.Printf("  %s -> %s\n", e.From, e.To)
	}
	return nil
}
