package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
)

// chatMessage is one entry of an OpenAI-style conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error,omitempty"`
}

// StatusError is a non-200 reply from an HTTP completion endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("chat completions returned HTTP %d: %s", e.StatusCode, e.Body)
}

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint.
// Volcengine Ark is the default base URL.
type OpenAIProvider struct {
	config     common.OpenAIConfig
	httpClient *http.Client
	logger     arbor.ILogger
}

// NewOpenAIProvider creates a provider. A nil httpClient uses http.DefaultClient;
// deadlines come from the request context.
func NewOpenAIProvider(config common.OpenAIConfig, httpClient *http.Client, logger arbor.ILogger) *OpenAIProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAIProvider{
		config:     config,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (p *OpenAIProvider) GetProviderType() ProviderType {
	return ProviderOpenAI
}

func (p *OpenAIProvider) endpoint() string {
	return strings.TrimRight(p.config.BaseURL, "/") + "/chat/completions"
}

// GenerateContent sends the prompt as a single user message and returns the first choice.
func (p *OpenAIProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("openai api key: %w", ErrNotConfigured)
	}

	model := request.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return nil, fmt.Errorf("openai model: %w", ErrNotConfigured)
	}

	body := chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: request.Prompt}},
	}
	temp := request.Temperature
	if temp <= 0 {
		temp = p.config.Temperature
	}
	if temp > 0 {
		body.Temperature = &temp
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	p.logger.Debug().
		Str("model", model).
		Int("prompt_length", len(request.Prompt)).
		Msg("Calling chat completions endpoint")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat completions request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("chat completions error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("empty response from chat completions endpoint")
	}

	return &ContentResponse{
		Text:     parsed.Choices[0].Message.Content,
		Provider: ProviderOpenAI,
		Model:    model,
	}, nil
}

func (p *OpenAIProvider) Close() error {
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
