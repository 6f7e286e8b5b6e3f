package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
)

// ClaudeProvider generates content with the Anthropic Messages API.
type ClaudeProvider struct {
	config common.ClaudeConfig
	logger arbor.ILogger

	mu     sync.Mutex
	client *anthropic.Client
}

func NewClaudeProvider(config common.ClaudeConfig, logger arbor.ILogger) *ClaudeProvider {
	return &ClaudeProvider{config: config, logger: logger}
}

func (p *ClaudeProvider) GetProviderType() ProviderType {
	return ProviderClaude
}

func (p *ClaudeProvider) getClient() (*anthropic.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key: %w", ErrNotConfigured)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(p.config.APIKey),
		option.WithMaxRetries(0), // retries are handled by the factory
	)
	p.client = &client
	return p.client, nil
}

func (p *ClaudeProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	model := request.Model
	if model == "" {
		model = p.config.Model
	}

	maxTokens := p.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = p.config.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API")
	}

	return &ContentResponse{
		Text:     text.String(),
		Provider: ProviderClaude,
		Model:    model,
	}, nil
}

func (p *ClaudeProvider) Close() error {
	p.mu.Lock()
	p.client = nil
	p.mu.Unlock()
	return nil
}
