package chefbot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// Model is the model client used by every stage.
// It wraps a pipz pipeline ending in a provider call and sends exactly one
// user message per call.
type Model struct {
	pipeline     pipz.Chainable[*ModelRequest]
	providerName string
	temperature  float32
	clock        clockz.Clock
}

// NewModel creates a model client over provider.
// Options wrap the terminal provider call in the order given.
func NewModel(provider Provider, temperature float32, opts ...Option) *Model {
	var pipeline = NewTerminal(provider)
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return &Model{
		pipeline:     pipeline,
		providerName: provider.Name(),
		temperature:  ResolveTemperature(temperature),
		clock:        clockz.RealClock,
	}
}

// NewTerminal creates the terminal processor that calls the provider with the
// rendered prompt as a single user message.
func NewTerminal(provider Provider) pipz.Chainable[*ModelRequest] {
	return pipz.Apply("model-call", func(ctx context.Context, req *ModelRequest) (*ModelRequest, error) {
		messages := []Message{{Role: RoleUser, Content: req.Prompt}}

		resp, err := provider.Call(ctx, messages, req.Temperature)
		if err != nil {
			return req, err
		}
		if resp == nil {
			return req, errors.New("provider returned no response")
		}
		req.Response = resp.Content
		usage := resp.Usage
		req.Usage = &usage
		return req, nil
	})
}

// WithClock replaces the clock used to measure call durations.
func (m *Model) WithClock(clock clockz.Clock) *Model {
	m.clock = clock
	return m
}

// GetPipeline exposes the model's exchange pipeline so another Model can use
// it as a WithFallback target.
func (m *Model) GetPipeline() pipz.Chainable[*ModelRequest] {
	return m.pipeline
}

// ProviderName returns the name of the wrapped provider.
func (m *Model) ProviderName() string {
	return m.providerName
}

// Call sends prompt to the model and returns the trimmed response text.
// Failures wrap ErrModelUnavailable.
func (m *Model) Call(ctx context.Context, prompt string) (string, error) {
	req, err := m.Exchange(ctx, "", prompt)
	if err != nil {
		return "", err
	}
	return req.Response, nil
}

// Exchange sends prompt on behalf of stage and returns the completed request,
// including token usage.
func (m *Model) Exchange(ctx context.Context, stage StageName, prompt string) (*ModelRequest, error) {
	requestID := uuid.New().String()
	request := &ModelRequest{
		Prompt:       prompt,
		Temperature:  m.temperature,
		RequestID:    requestID,
		Stage:        stage,
		ProviderName: m.providerName,
	}

	capitan.Info(ctx, ModelCallStarted,
		RequestIDKey.Field(requestID),
		StageKey.Field(string(stage)),
		ProviderKey.Field(m.providerName),
		PromptKey.Field(prompt),
		TemperatureKey.Field(float64(m.temperature)),
	)

	start := m.clock.Now()
	processed, err := m.pipeline.Process(ctx, request)
	duration := m.clock.Now().Sub(start)
	if err != nil {
		capitan.Error(ctx, ModelCallFailed,
			RequestIDKey.Field(requestID),
			StageKey.Field(string(stage)),
			ProviderKey.Field(m.providerName),
			ErrorKey.Field(err.Error()),
			DurationMsKey.Field(int(duration.Milliseconds())),
		)
		return nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	processed.Response = strings.TrimSpace(processed.Response)

	fields := []capitan.Field{
		RequestIDKey.Field(requestID),
		StageKey.Field(string(stage)),
		ProviderKey.Field(m.providerName),
		ResponseKey.Field(processed.Response),
		DurationMsKey.Field(int(duration.Milliseconds())),
	}
	if processed.Usage != nil {
		fields = append(fields,
			PromptTokensKey.Field(processed.Usage.Prompt),
			CompletionTokensKey.Field(processed.Usage.Completion),
			TotalTokensKey.Field(processed.Usage.Total),
		)
	}
	capitan.Info(ctx, ModelCallCompleted, fields...)

	return processed, nil
}
