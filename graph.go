package chefbot

import (
	"fmt"
)

// Condition gates a node on the request selected at pipeline entry.
// The request is nil when the state asks for nothing.
type Condition func(Request) bool

// WhenMode returns a condition that holds for requests of mode m.
func WhenMode(m Mode) Condition {
	return func(r Request) bool {
		return r != nil && r.Mode() == m
	}
}

// Node places a stage in the graph.
type Node struct {
	Stage Stage

	// After lists the predecessors. The node is eligible when any of them
	// was reached (ran or passed through). An empty list attaches the node
	// to the entry.
	After []StageName

	// When further gates eligibility. Nil means always.
	When Condition
}

// Edge is a static dependency between two stages.
type Edge struct {
	From StageName `json:"from"`
	To   StageName `json:"to"`
}

// Entry is the pseudo-stage every root node hangs off.
const Entry StageName = "__entry__"

// Graph is an ordered, validated list of nodes. List order is a topological
// order: every predecessor is declared before the nodes that follow it.
type Graph struct {
	nodes []Node
	index map[StageName]int
}

// NewGraph validates nodes and builds a graph.
func NewGraph(nodes ...Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes", ErrInvalidGraph)
	}

	g := &Graph{index: make(map[StageName]int, len(nodes))}
	for i, n := range nodes {
		name := n.Stage.Name
		if name == "" || name == Entry {
			return nil, fmt.Errorf("%w: node %d has reserved or empty name %q", ErrInvalidGraph, i, name)
		}
		if _, dup := g.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate stage %q", ErrInvalidGraph, name)
		}
		if n.Stage.Prompt == nil || n.Stage.Shape == nil {
			return nil, fmt.Errorf("%w: stage %q needs Prompt and Shape", ErrInvalidGraph, name)
		}
		for _, pred := range n.After {
			if pred == name {
				return nil, fmt.Errorf("%w: stage %q depends on itself", ErrInvalidGraph, name)
			}
			if _, ok := g.index[pred]; !ok {
				return nil, fmt.Errorf("%w: stage %q follows undeclared stage %q", ErrInvalidGraph, name, pred)
			}
		}
		g.index[name] = i
		g.nodes = append(g.nodes, n)
	}
	return g, nil
}

// DefaultGraph returns the recipe graph:
//
//	entry ─(by name)────────> fetch_recipe ─────────────┐
//	entry ─(by ingredients)─> ingredient_parser ─> recipe_generator ─> dietary_filter
func DefaultGraph() *Graph {
	return recipeGraph(FetchRecipeStage(), RecipeGeneratorStage())
}

// PlainGraph returns the DefaultGraph topology with recipe prompts that
// carry only the fixed details. Spice level, equipment and minimum rating
// are left out of the rendered text.
func PlainGraph() *Graph {
	fetch := FetchRecipeStage()
	fetch.Prompt = DirectRecipePromptWith(nil)
	generate := RecipeGeneratorStage()
	generate.Prompt = RecipeGeneratorPromptWith(nil)
	return recipeGraph(fetch, generate)
}

func recipeGraph(fetch, generate Stage) *Graph {
	g, err := NewGraph(
		Node{Stage: fetch, When: WhenMode(ModeByName)},
		Node{Stage: IngredientParserStage(), When: WhenMode(ModeByIngredients)},
		Node{Stage: generate, After: []StageName{IngredientParser}},
		Node{Stage: DietaryFilterStage(), After: []StageName{FetchRecipe, RecipeGenerator}},
	)
	if err != nil {
		panic(err)
	}
	return g
}

// Nodes returns a copy of the node list in execution order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Stages returns the stage names in execution order.
func (g *Graph) Stages() []StageName {
	names := make([]StageName, len(g.nodes))
	for i, n := range g.nodes {
		names[i] = n.Stage.Name
	}
	return names
}

// Edges returns the static edges, including those from Entry.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, n := range g.nodes {
		if len(n.After) == 0 {
			edges = append(edges, Edge{From: Entry, To: n.Stage.Name})
			continue
		}
		for _, pred := range n.After {
			edges = append(edges, Edge{From: pred, To: n.Stage.Name})
		}
	}
	return edges
}

// eligible reports whether n may run given the stages already reached.
func (n Node) eligible(req Request, reached map[StageName]bool) bool {
	if len(n.After) > 0 {
		hit := false
		for _, pred := range n.After {
			if reached[pred] {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return n.When == nil || n.When(req)
}
