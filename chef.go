package chefbot

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Invocation flows through the stage pipeline.
// It is owned by a single Invoke call and never shared.
type Invocation struct {
	ID         string
	Request    Request
	State      State
	Transcript *Transcript

	reached map[StageName]bool
	failed  StageName
	err     error
}

// Result is the final state of an invocation together with its transcript.
type Result struct {
	State      State
	Transcript *Transcript
}

// Text returns the authoritative recipe or NoRecipeFound.
func (r *Result) Text() string {
	return r.State.Text()
}

// Chef runs recipe invocations over a stage graph.
// A Chef keeps no per-invocation state and may serve concurrent invocations.
type Chef struct {
	graph    *Graph
	model    Exchanger
	pipeline pipz.Chainable[*Invocation]
}

// New creates a Chef over the default graph, calling provider through a
// model client built with opts.
func New(provider Provider, opts ...Option) *Chef {
	return NewWithGraph(DefaultGraph(), NewModel(provider, TemperatureUnset, opts...))
}

// NewWithGraph creates a Chef over graph using model for every stage.
func NewWithGraph(graph *Graph, model Exchanger) *Chef {
	c := &Chef{graph: graph, model: model}

	processors := make([]pipz.Chainable[*Invocation], 0, len(graph.nodes))
	for _, n := range graph.nodes {
		processors = append(processors, c.processor(n))
	}
	c.pipeline = pipz.NewSequence("chefbot", processors...)
	return c
}

// Graph returns the graph the chef runs.
func (c *Chef) Graph() *Graph {
	return c.graph
}

// Generate runs an invocation and returns the authoritative recipe text,
// or NoRecipeFound when none was produced.
func (c *Chef) Generate(ctx context.Context, initial State) (string, error) {
	result, err := c.Run(ctx, initial)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// Invoke runs an invocation and returns the merged final state.
func (c *Chef) Invoke(ctx context.Context, initial State) (State, error) {
	result, err := c.Run(ctx, initial)
	if err != nil {
		return State{}, err
	}
	return result.State, nil
}

// InvokeMap is Invoke over the named-field mapping.
func (c *Chef) InvokeMap(ctx context.Context, fields map[string]any) (map[string]any, error) {
	initial, err := FromMap(fields)
	if err != nil {
		return nil, err
	}
	final, err := c.Invoke(ctx, initial)
	if err != nil {
		return nil, err
	}
	return final.Map(), nil
}

// Run executes the eligible stages in graph order and returns the final state
// with the transcript of every stage visit. A model failure aborts the
// remaining stages and is returned annotated with the failing stage.
// Output fields on initial are ignored; only stages populate them.
func (c *Chef) Run(ctx context.Context, initial State) (*Result, error) {
	state := initial.WithoutOutputs().WithDefaults()
	req, err := RequestFor(state)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	inv := &Invocation{
		ID:         id,
		Request:    req,
		State:      state,
		Transcript: NewTranscript(id),
		reached:    make(map[StageName]bool, len(c.graph.nodes)),
	}

	mode := ""
	if req != nil {
		mode = string(req.Mode())
	}
	capitan.Info(ctx, InvokeStarted,
		InvocationIDKey.Field(inv.ID),
		ModeKey.Field(mode),
	)

	if _, err := c.pipeline.Process(ctx, inv); err != nil {
		cause := inv.err
		if cause == nil {
			cause = err
		}
		capitan.Error(ctx, InvokeFailed,
			InvocationIDKey.Field(inv.ID),
			ModeKey.Field(mode),
			StageKey.Field(string(inv.failed)),
			ErrorKey.Field(cause.Error()),
		)
		if inv.failed != "" {
			return nil, fmt.Errorf("stage %s: %w", inv.failed, cause)
		}
		return nil, cause
	}

	capitan.Info(ctx, InvokeCompleted,
		InvocationIDKey.Field(inv.ID),
		ModeKey.Field(mode),
		RecipeLengthKey.Field(len(inv.State.Authoritative())),
	)

	return &Result{State: inv.State, Transcript: inv.Transcript}, nil
}

// processor wraps a node as a pipeline step that checks eligibility, runs the
// stage and merges its update.
func (c *Chef) processor(n Node) pipz.Chainable[*Invocation] {
	name := n.Stage.Name
	return pipz.Apply(string(name), func(ctx context.Context, inv *Invocation) (*Invocation, error) {
		if !n.eligible(inv.Request, inv.reached) {
			inv.Transcript.Append(Step{Stage: name, Outcome: OutcomeSkipped})
			capitan.Info(ctx, StageSkipped,
				InvocationIDKey.Field(inv.ID),
				StageKey.Field(string(name)),
			)
			return inv, nil
		}

		capitan.Info(ctx, StageStarted,
			InvocationIDKey.Field(inv.ID),
			StageKey.Field(string(name)),
		)

		result, err := n.Stage.Run(ctx, c.model, inv.State)
		if err != nil {
			inv.failed = name
			inv.err = err
			inv.Transcript.Append(Step{Stage: name, Outcome: OutcomeFailed, Prompt: result.Prompt})
			capitan.Error(ctx, StageFailed,
				InvocationIDKey.Field(inv.ID),
				StageKey.Field(string(name)),
				ErrorKey.Field(err.Error()),
			)
			return inv, err
		}

		inv.State = inv.State.Apply(result.Update)
		inv.reached[name] = true
		inv.Transcript.Append(Step{
			Stage:    name,
			Outcome:  result.Outcome,
			Prompt:   result.Prompt,
			Response: result.Response,
			Usage:    result.Usage,
		})

		capitan.Info(ctx, StageCompleted,
			InvocationIDKey.Field(inv.ID),
			StageKey.Field(string(name)),
			OutcomeKey.Field(string(result.Outcome)),
			IngredientCountKey.Field(len(inv.State.Ingredients)),
			RecipeLengthKey.Field(len(inv.State.Authoritative())),
		)
		return inv, nil
	})
}
