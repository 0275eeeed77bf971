package chefbot

import (
	"context"
	"errors"
	"testing"
)

func TestModel_Call(t *testing.T) {
	var gotTemp float32
	var gotPrompt string
	provider := NewMockProviderWithCallback(func(prompt string, temperature float32) (string, error) {
		gotPrompt, gotTemp = prompt, temperature
		return "  padded reply \n", nil
	})

	model := NewModel(provider, 0)
	text, err := model.Call(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "padded reply" {
		t.Errorf("response should be trimmed, got %q", text)
	}
	if gotPrompt != "hello" {
		t.Errorf("expected prompt passed through, got %q", gotPrompt)
	}
	if gotTemp != TemperatureUnset {
		t.Errorf("zero temperature should be sent as unset, got %v", gotTemp)
	}
	if model.ProviderName() != "mock-callback" {
		t.Errorf("unexpected provider name %q", model.ProviderName())
	}
}

func TestModel_Temperature(t *testing.T) {
	var gotTemp float32
	provider := NewMockProviderWithCallback(func(_ string, temperature float32) (string, error) {
		gotTemp = temperature
		return "ok", nil
	})

	if _, err := NewModel(provider, 0.3).Call(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotTemp != 0.3 {
		t.Errorf("expected 0.3, got %v", gotTemp)
	}
}

func TestModel_Exchange(t *testing.T) {
	model := NewModel(NewMockProvider(), TemperatureUnset)

	req, err := model.Exchange(context.Background(), FetchRecipe, "Provide a Any Dinner recipe for Biryani.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Stage != FetchRecipe || req.RequestID == "" || req.ProviderName != "mock" {
		t.Errorf("unexpected request metadata %+v", req)
	}
	if req.Usage == nil || req.Usage.Total == 0 {
		t.Errorf("expected usage from provider, got %+v", req.Usage)
	}
}

func TestModel_Errors(t *testing.T) {
	t.Run("provider_error", func(t *testing.T) {
		boom := errors.New("connection refused")
		model := NewModel(NewMockProviderWithCallback(func(string, float32) (string, error) {
			return "", boom
		}), 0)

		_, err := model.Call(context.Background(), "x")
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("expected ErrModelUnavailable, got %v", err)
		}
		if !errors.Is(err, boom) {
			t.Errorf("expected cause in chain, got %v", err)
		}
	})

	t.Run("unavailable_mock", func(t *testing.T) {
		provider := NewMockProvider()
		provider.SetAvailable(false)
		_, err := NewModel(provider, 0).Call(context.Background(), "x")
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("expected ErrModelUnavailable, got %v", err)
		}
	})

	t.Run("nil_response", func(t *testing.T) {
		_, err := NewModel(nilProvider{}, 0).Call(context.Background(), "x")
		if !errors.Is(err, ErrModelUnavailable) {
			t.Errorf("expected ErrModelUnavailable, got %v", err)
		}
	})
}

type nilProvider struct{}

func (nilProvider) Call(context.Context, []Message, float32) (*ProviderResponse, error) {
	return nil, nil
}

func (nilProvider) Name() string { return "nil" }

func TestNewTerminal_SingleUserMessage(t *testing.T) {
	var got []Message
	provider := &recordingProvider{record: func(m []Message) { got = m }}

	req := &ModelRequest{Prompt: "only prompt", Temperature: TemperatureUnset}
	if _, err := NewTerminal(provider).Process(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Role != RoleUser || got[0].Content != "only prompt" {
		t.Errorf("expected one user message, got %+v", got)
	}
}

type recordingProvider struct {
	record func([]Message)
}

func (p *recordingProvider) Call(_ context.Context, messages []Message, _ float32) (*ProviderResponse, error) {
	p.record(messages)
	return &ProviderResponse{Content: "ok"}, nil
}

func (*recordingProvider) Name() string { return "recording" }
