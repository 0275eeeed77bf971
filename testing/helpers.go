// Package testing provides utilities for testing chefbot invocations.
package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/chefbot"
)

// Provider name constants for test helpers.
const (
	SequencedProviderName = "sequenced-mock"
	FailingProviderName   = "failing-mock"
	ScriptedProviderName  = "scripted-mock"
)

// StageOf reports which stage rendered prompt, judged by the prompt's opening
// instruction and closing marker. It returns "" for prompts no stage renders.
func StageOf(prompt string) chefbot.StageName {
	switch {
	case strings.HasSuffix(prompt, chefbot.IngredientsMarker):
		return chefbot.IngredientParser
	case strings.HasSuffix(prompt, chefbot.ModifiedRecipeMarker):
		return chefbot.DietaryFilter
	case strings.HasPrefix(prompt, "Provide a"):
		return chefbot.FetchRecipe
	case strings.HasPrefix(prompt, "Create"):
		return chefbot.RecipeGenerator
	default:
		return ""
	}
}

// ResponseBuilder provides a fluent interface for constructing model replies
// in the shapes the stages parse.
type ResponseBuilder struct {
	lines []string
}

// NewResponseBuilder creates a new ResponseBuilder.
func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{}
}

// WithLine appends a raw line.
func (b *ResponseBuilder) WithLine(line string) *ResponseBuilder {
	b.lines = append(b.lines, line)
	return b
}

// WithIngredients appends one ingredient per line, the shape the
// ingredient parser expects.
func (b *ResponseBuilder) WithIngredients(items ...string) *ResponseBuilder {
	b.lines = append(b.lines, items...)
	return b
}

// WithModifiedRecipe appends the modified-recipe marker followed by recipe.
func (b *ResponseBuilder) WithModifiedRecipe(recipe string) *ResponseBuilder {
	b.lines = append(b.lines, chefbot.ModifiedRecipeMarker, recipe)
	return b
}

// Build returns the reply text.
func (b *ResponseBuilder) Build() string {
	return strings.Join(b.lines, "\n")
}

// SequencedProvider returns responses in sequence.
// After all responses are exhausted, it returns the last response repeatedly.
type SequencedProvider struct {
	responses []string
	index     atomic.Int64
	mu        sync.Mutex
}

// NewSequencedProvider creates a provider that returns responses in order.
func NewSequencedProvider(responses ...string) *SequencedProvider {
	if len(responses) == 0 {
		responses = []string{"no responses configured"}
	}
	return &SequencedProvider{
		responses: responses,
	}
}

// Call returns the next response in sequence.
func (p *SequencedProvider) Call(_ context.Context, _ []chefbot.Message, _ float32) (*chefbot.ProviderResponse, error) {
	idx := p.index.Add(1) - 1
	p.mu.Lock()
	defer p.mu.Unlock()

	// Clamp to last response if exhausted
	if int(idx) >= len(p.responses) {
		idx = int64(len(p.responses) - 1)
	}

	return &chefbot.ProviderResponse{
		Content: p.responses[idx],
		Usage: chefbot.TokenUsage{
			Prompt:     100,
			Completion: 50,
			Total:      150,
		},
	}, nil
}

// Name returns the provider identifier.
func (*SequencedProvider) Name() string {
	return SequencedProviderName
}

// CallCount returns the number of calls made.
func (p *SequencedProvider) CallCount() int {
	return int(p.index.Load())
}

// Reset resets the call counter.
func (p *SequencedProvider) Reset() {
	p.index.Store(0)
}

// FailingProvider fails a specified number of times before succeeding.
type FailingProvider struct {
	failCount    int
	currentCount atomic.Int64
	successResp  string
	failError    string
}

// NewFailingProvider creates a provider that fails failCount times then succeeds.
func NewFailingProvider(failCount int) *FailingProvider {
	return &FailingProvider{
		failCount:   failCount,
		successResp: "Recovered recipe\nIngredients:\n- salt\nInstructions:\n1. Season.",
		failError:   "simulated provider failure",
	}
}

// WithSuccessResponse sets the response returned after failures are exhausted.
func (p *FailingProvider) WithSuccessResponse(response string) *FailingProvider {
	p.successResp = response
	return p
}

// WithFailError sets the error message for failures.
func (p *FailingProvider) WithFailError(errMsg string) *FailingProvider {
	p.failError = errMsg
	return p
}

// Call fails until failCount is reached, then succeeds.
func (p *FailingProvider) Call(_ context.Context, _ []chefbot.Message, _ float32) (*chefbot.ProviderResponse, error) {
	count := p.currentCount.Add(1)
	if int(count) <= p.failCount {
		return nil, fmt.Errorf("%s (attempt %d/%d)", p.failError, count, p.failCount)
	}

	return &chefbot.ProviderResponse{
		Content: p.successResp,
		Usage: chefbot.TokenUsage{
			Prompt:     100,
			Completion: 50,
			Total:      150,
		},
	}, nil
}

// Name returns the provider identifier.
func (*FailingProvider) Name() string {
	return FailingProviderName
}

// CallCount returns the number of calls made.
func (p *FailingProvider) CallCount() int {
	return int(p.currentCount.Load())
}

// Reset resets the call counter.
func (p *FailingProvider) Reset() {
	p.currentCount.Store(0)
}

// ScriptedProvider answers each stage with its own scripted reply, or fails
// the stages given an error.
type ScriptedProvider struct {
	mu        sync.Mutex
	responses map[chefbot.StageName]string
	failures  map[chefbot.StageName]error
	prompts   map[chefbot.StageName][]string
	calls     int
}

// NewScriptedProvider creates a provider with no scripted replies. Unscripted
// stages receive "Mock response".
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{
		responses: make(map[chefbot.StageName]string),
		failures:  make(map[chefbot.StageName]error),
		prompts:   make(map[chefbot.StageName][]string),
	}
}

// Respond scripts the reply for stage.
func (p *ScriptedProvider) Respond(stage chefbot.StageName, response string) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses[stage] = response
	return p
}

// Fail makes every call for stage return err.
func (p *ScriptedProvider) Fail(stage chefbot.StageName, err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[stage] = err
	return p
}

// Call answers according to the stage that rendered the prompt.
func (p *ScriptedProvider) Call(_ context.Context, messages []chefbot.Message, _ float32) (*chefbot.ProviderResponse, error) {
	var prompt string
	if len(messages) > 0 {
		prompt = messages[len(messages)-1].Content
	}
	stage := StageOf(prompt)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prompts[stage] = append(p.prompts[stage], prompt)

	if err, ok := p.failures[stage]; ok {
		return nil, err
	}
	response, ok := p.responses[stage]
	if !ok {
		response = "Mock response"
	}
	return &chefbot.ProviderResponse{
		Content: response,
		Usage:   chefbot.TokenUsage{Prompt: 10, Completion: 5, Total: 15},
	}, nil
}

// Name returns the provider identifier.
func (*ScriptedProvider) Name() string {
	return ScriptedProviderName
}

// CallCount returns the number of calls made.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Prompts returns the prompts received for stage, in order.
func (p *ScriptedProvider) Prompts(stage chefbot.StageName) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.prompts[stage]...)
}

// RecordedCall represents a single call to a provider.
type RecordedCall struct {
	Messages    []chefbot.Message
	Temperature float32
}

// Prompt returns the content of the call's final message.
func (c RecordedCall) Prompt() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[len(c.Messages)-1].Content
}

// CallRecorder wraps a provider and records all calls made to it.
type CallRecorder struct {
	provider chefbot.Provider
	calls    []RecordedCall
	mu       sync.Mutex
}

// NewCallRecorder wraps a provider with call recording.
func NewCallRecorder(provider chefbot.Provider) *CallRecorder {
	return &CallRecorder{
		provider: provider,
		calls:    make([]RecordedCall, 0),
	}
}

// Call delegates to the wrapped provider and records the call.
func (r *CallRecorder) Call(ctx context.Context, messages []chefbot.Message, temperature float32) (*chefbot.ProviderResponse, error) {
	// Record the call (copy messages to avoid aliasing)
	msgCopy := make([]chefbot.Message, len(messages))
	copy(msgCopy, messages)

	r.mu.Lock()
	r.calls = append(r.calls, RecordedCall{
		Messages:    msgCopy,
		Temperature: temperature,
	})
	r.mu.Unlock()

	return r.provider.Call(ctx, messages, temperature)
}

// Name returns the wrapped provider's name.
func (r *CallRecorder) Name() string {
	return r.provider.Name()
}

// Calls returns a copy of all recorded calls.
func (r *CallRecorder) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	calls := make([]RecordedCall, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CallCount returns the number of calls recorded.
func (r *CallRecorder) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// LastCall returns the most recent call, or nil if no calls made.
func (r *CallRecorder) LastCall() *RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.calls) == 0 {
		return nil
	}
	call := r.calls[len(r.calls)-1]
	return &call
}

// Reset clears all recorded calls.
func (r *CallRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = make([]RecordedCall, 0)
}

// LatencyProvider wraps a provider and adds artificial latency.
type LatencyProvider struct {
	provider chefbot.Provider
	delay    time.Duration
}

// NewLatencyProvider wraps a provider with artificial delay.
// The delay is applied before each provider call and respects context cancellation.
func NewLatencyProvider(provider chefbot.Provider, delay time.Duration) *LatencyProvider {
	return &LatencyProvider{
		provider: provider,
		delay:    delay,
	}
}

// Call adds latency then delegates to the wrapped provider.
// Respects context cancellation during the delay period.
func (p *LatencyProvider) Call(ctx context.Context, messages []chefbot.Message, temperature float32) (*chefbot.ProviderResponse, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.provider.Call(ctx, messages, temperature)
}

// Name returns the wrapped provider's name.
func (p *LatencyProvider) Name() string {
	return p.provider.Name()
}

// UsageAccumulator tracks total token usage across multiple invocations.
type UsageAccumulator struct {
	promptTokens     atomic.Int64
	completionTokens atomic.Int64
	totalTokens      atomic.Int64
	callCount        atomic.Int64
}

// NewUsageAccumulator creates a new usage accumulator.
func NewUsageAccumulator() *UsageAccumulator {
	return &UsageAccumulator{}
}

// Add accumulates the usage of every stage that called the model.
func (a *UsageAccumulator) Add(transcript *chefbot.Transcript) {
	for _, step := range transcript.Steps() {
		if step.Outcome == chefbot.OutcomeRan {
			usage := step.Usage
			a.AddUsage(&usage)
		}
	}
}

// AddUsage accumulates usage directly.
func (a *UsageAccumulator) AddUsage(usage *chefbot.TokenUsage) {
	if usage != nil {
		a.promptTokens.Add(int64(usage.Prompt))
		a.completionTokens.Add(int64(usage.Completion))
		a.totalTokens.Add(int64(usage.Total))
		a.callCount.Add(1)
	}
}

// PromptTokens returns total prompt tokens.
func (a *UsageAccumulator) PromptTokens() int {
	return int(a.promptTokens.Load())
}

// CompletionTokens returns total completion tokens.
func (a *UsageAccumulator) CompletionTokens() int {
	return int(a.completionTokens.Load())
}

// TotalTokens returns total tokens.
func (a *UsageAccumulator) TotalTokens() int {
	return int(a.totalTokens.Load())
}

// CallCount returns number of calls accumulated.
func (a *UsageAccumulator) CallCount() int {
	return int(a.callCount.Load())
}

// Reset clears all accumulated values.
func (a *UsageAccumulator) Reset() {
	a.promptTokens.Store(0)
	a.completionTokens.Store(0)
	a.totalTokens.Store(0)
	a.callCount.Store(0)
}
