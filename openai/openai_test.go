package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zoobzio/chefbot"
)

func prompt(content string) []chefbot.Message {
	return []chefbot.Message{{Role: chefbot.RoleUser, Content: content}}
}

func TestProviderCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Bearer token, got %s", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected Content-Type application/json, got %s", r.Header.Get("Content-Type"))
		}

		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if req.Model != "qwen2.5:3b" {
			t.Errorf("Expected model qwen2.5:3b, got %s", req.Model)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("Expected temperature 0.7, got %v", req.Temperature)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "test prompt" {
			t.Errorf("Unexpected prompt: %v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "test-id",
			"object": "chat.completion",
			"created": 1234567890,
			"model": "qwen2.5:3b",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "test response"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer server.Close()

	provider := New(Config{
		APIKey:  "test-key",
		Model:   "qwen2.5:3b",
		BaseURL: server.URL,
	})

	response, err := provider.Call(context.Background(), prompt("test prompt"), 0.7)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if response.Content != "test response" {
		t.Errorf("Expected 'test response', got '%s'", response.Content)
	}
	if response.Usage.Total != 15 {
		t.Errorf("Expected 15 total tokens, got %d", response.Usage.Total)
	}
}

func TestProviderNoKeyNoTemperature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "" {
			t.Errorf("Expected no Authorization header, got %s", auth)
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("Failed to decode request: %v", err)
			return
		}
		if _, ok := raw["temperature"]; ok {
			t.Errorf("Expected temperature omitted, got %s", raw["temperature"])
		}
		_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "ok"}}]}`))
	}))
	defer server.Close()

	response, err := New(Config{BaseURL: server.URL}).Call(context.Background(), prompt("x"), chefbot.TemperatureUnset)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if response.Content != "ok" {
		t.Errorf("Expected 'ok', got '%s'", response.Content)
	}
}

func TestProviderErrorHandling(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		responseBody  string
		expectedError string
	}{
		{
			name:          "API error",
			statusCode:    http.StatusBadRequest,
			responseBody:  `{"error": {"message": "Invalid request", "type": "invalid_request_error"}}`,
			expectedError: "openai error (400): Invalid request",
		},
		{
			name:          "Generic error",
			statusCode:    http.StatusInternalServerError,
			responseBody:  `not json`,
			expectedError: "openai error: status 500",
		},
		{
			name:          "No choices",
			statusCode:    http.StatusOK,
			responseBody:  `{"choices": []}`,
			expectedError: "no response choices returned",
		},
		{
			name:          "Null content",
			statusCode:    http.StatusOK,
			responseBody:  `{"choices": [{"message": {"role": "assistant", "content": null}}]}`,
			expectedError: "response choice has no content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			_, err := New(Config{BaseURL: server.URL}).Call(context.Background(), prompt("x"), 0.5)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.expectedError) {
				t.Errorf("Expected error containing '%s', got '%s'", tt.expectedError, err.Error())
			}
		})
	}
}

func TestProviderName(t *testing.T) {
	if name := New(Config{}).Name(); name != "openai" {
		t.Errorf("Expected name 'openai', got '%s'", name)
	}
}
