// Package ollama implements the chefbot Provider interface for a locally
// running Ollama server using its native chat endpoint.
package ollama

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

// Defaults for a stock local install.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "qwen2.5:3b"
)

// Provider implements chefbot.Provider for Ollama's /api/chat.
type Provider struct {
	model      string
	baseURL    string
	httpClient *http.Client
	name       string
}

// Config holds configuration for the Ollama provider.
type Config struct {
	Model   string        // e.g. "qwen2.5:3b", "llama3.2"
	BaseURL string        // Optional, defaults to "http://localhost:11434"
	Timeout time.Duration // Optional, zero leaves the transport without a deadline
}

// New creates a new Ollama provider.
func New(config Config) *Provider {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	return &Provider{
		model:   config.Model,
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		name:    "ollama",
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return p.name
}

// Model returns the model identifier sent with every request.
func (p *Provider) Model() string {
	return p.model
}

// Call sends messages to Ollama and returns the reply with usage stats.
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

	requestBody := chatRequest{
		Model:    p.model,
		Messages: apiMessages,
		Stream:   false,
	}
	if temperature != chefbot.TemperatureUnset {
		requestBody.Options = &options{Temperature: &temperature}
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.failed(ctx, 0, startTime, err.Error())
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.failed(ctx, resp.StatusCode, startTime, err.Error())
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp errorResponse
		if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Error != "" {
			p.failed(ctx, resp.StatusCode, startTime, errorResp.Error)
			return nil, fmt.Errorf("ollama error (%d): %s", resp.StatusCode, errorResp.Error)
		}
		p.failed(ctx, resp.StatusCode, startTime, fmt.Sprintf("status %d", resp.StatusCode))
		return nil, fmt.Errorf("ollama error: status %d", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		p.failed(ctx, resp.StatusCode, startTime, err.Error())
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Message == nil || chatResp.Message.Content == nil {
		p.failed(ctx, resp.StatusCode, startTime, "missing message content")
		return nil, errors.New("response has no message content")
	}

	duration := time.Since(startTime)
	usage := chefbot.TokenUsage{
		Prompt:     chatResp.PromptEvalCount,
		Completion: chatResp.EvalCount,
		Total:      chatResp.PromptEvalCount + chatResp.EvalCount,
	}

	fields := []capitan.Field{
		chefbot.ProviderKey.Field(p.name),
		chefbot.ModelKey.Field(chatResp.Model),
		chefbot.PromptTokensKey.Field(usage.Prompt),
		chefbot.CompletionTokensKey.Field(usage.Completion),
		chefbot.TotalTokensKey.Field(usage.Total),
		chefbot.DurationMsKey.Field(int(duration.Milliseconds())),
		chefbot.HTTPStatusCodeKey.Field(resp.StatusCode),
	}
	if chatResp.DoneReason != "" {
		fields = append(fields, chefbot.FinishReasonKey.Field(chatResp.DoneReason))
	}
	capitan.Info(ctx, chefbot.ProviderCallCompleted, fields...)

	return &chefbot.ProviderResponse{
		Content: *chatResp.Message.Content,
		Usage:   usage,
	}, nil
}

func (p *Provider) failed(ctx context.Context, status int, start time.Time, reason string) {
	capitan.Error(ctx, chefbot.ProviderCallFailed,
		chefbot.ProviderKey.Field(p.name),
		chefbot.ModelKey.Field(p.model),
		chefbot.HTTPStatusCodeKey.Field(status),
		chefbot.DurationMsKey.Field(int(time.Since(start).Milliseconds())),
		chefbot.ErrorKey.Field(reason),
	)
}

// Request/Response types for the Ollama chat API

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *options  `json:"options,omitempty"`
}

type options struct {
	Temperature *float32 `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}

type chatResponse struct {
	Model           string           `json:"model"`
	CreatedAt       string           `json:"created_at"`
	Message         *responseMessage `json:"message"`
	Done            bool             `json:"done"`
	DoneReason      string           `json:"done_reason"`
	PromptEvalCount int              `json:"prompt_eval_count"`
	EvalCount       int              `json:"eval_count"`
}

type errorResponse struct {
	Error string `json:"error"`
}
