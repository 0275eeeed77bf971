// Package openai implements the chefbot Provider interface for servers that
// speak the OpenAI chat completions protocol: llama.cpp, vLLM, LM Studio, and
// Ollama's /v1 compatibility layer.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/chefbot"
)

// DefaultBaseURL points at Ollama's OpenAI-compatible endpoint.
const DefaultBaseURL = "http://localhost:11434/v1"

// Provider implements chefbot.Provider for OpenAI-compatible servers.
type Provider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	name       string
}

// Config holds configuration for the OpenAI-compatible provider.
type Config struct {
	APIKey  string        // Optional; local servers usually ignore it
	Model   string        // Required by most servers, e.g. "qwen2.5:3b"
	BaseURL string        // Optional, defaults to DefaultBaseURL
	Timeout time.Duration // Optional, zero leaves the transport without a deadline
}

// New creates a new OpenAI-compatible provider.
func New(config Config) *Provider {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &Provider{
		apiKey:  config.APIKey,
		model:   config.Model,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		name:    "openai",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Call sends messages to the server and returns the response with usage stats.
func (p *Provider) Call(ctx context.Context, messages []chefbot.Message, temperature float32) (*chefbot.ProviderResponse, error) {
	startTime := time.Now()

	capitan.Info(ctx, chefbot.ProviderCallStarted,
		chefbot.ProviderKey.Field(p.name),
		chefbot.ModelKey.Field(p.model),
	)

	apiMessages := make([]message, len(messages))
	for i, msg := range messages {
		apiMessages[i] = message{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	requestBody := chatCompletionRequest{
		Model:    p.model,
		Messages: apiMessages,
	}
	if temperature != chefbot.TemperatureUnset {
		requestBody.Temperature = &temperature
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		capitan.Error(ctx, chefbot.ProviderCallFailed,
			chefbot.ProviderKey.Field(p.name),
			chefbot.ModelKey.Field(p.model),
			chefbot.ErrorKey.Field(err.Error()),
		)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		duration := time.Since(startTime)
		var errorResp errorResponse

		fields := []capitan.Field{
			chefbot.ProviderKey.Field(p.name),
			chefbot.ModelKey.Field(p.model),
			chefbot.HTTPStatusCodeKey.Field(resp.StatusCode),
			chefbot.DurationMsKey.Field(int(duration.Milliseconds())),
		}

		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error.Message != "" {
			fields = append(fields, chefbot.ErrorKey.Field(errorResp.Error.Message))
			capitan.Error(ctx, chefbot.ProviderCallFailed, fields...)
			return nil, fmt.Errorf("openai error (%d): %s", resp.StatusCode, errorResp.Error.Message)
		}

		fields = append(fields, chefbot.ErrorKey.Field(fmt.Sprintf("status %d", resp.StatusCode)))
		capitan.Error(ctx, chefbot.ProviderCallFailed, fields...)
		return nil, fmt.Errorf("openai error: status %d", resp.StatusCode)
	}

	var completionResp chatCompletionResponse
	if err := json.Unmarshal(body, &completionResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(completionResp.Choices) == 0 {
		return nil, errors.New("no response choices returned")
	}
	content := completionResp.Choices[0].Message.Content
	if content == nil {
		return nil, errors.New("response choice has no content")
	}

	duration := time.Since(startTime)

	fields := []capitan.Field{
		chefbot.ProviderKey.Field(p.name),
		chefbot.ModelKey.Field(completionResp.Model),
		chefbot.PromptTokensKey.Field(completionResp.Usage.PromptTokens),
		chefbot.CompletionTokensKey.Field(completionResp.Usage.CompletionTokens),
		chefbot.TotalTokensKey.Field(completionResp.Usage.TotalTokens),
		chefbot.DurationMsKey.Field(int(duration.Milliseconds())),
		chefbot.HTTPStatusCodeKey.Field(resp.StatusCode),
	}
	if reason := completionResp.Choices[0].FinishReason; reason != "" {
		fields = append(fields, chefbot.FinishReasonKey.Field(reason))
	}

	capitan.Info(ctx, chefbot.ProviderCallCompleted, fields...)

	return &chefbot.ProviderResponse{
		Content: *content,
		Usage: chefbot.TokenUsage{
			Prompt:     completionResp.Usage.PromptTokens,
			Completion: completionResp.Usage.CompletionTokens,
			Total:      completionResp.Usage.TotalTokens,
		},
	}, nil
}

// Request/Response types for the chat completions API

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Index        int             `json:"index"`
	Message      responseMessage `json:"message"`
	FinishReason string          `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}
