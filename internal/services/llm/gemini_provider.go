package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
	"google.golang.org/genai"
)

// GeminiProvider generates content with the Google Gemini API.
type GeminiProvider struct {
	config common.GeminiConfig
	logger arbor.ILogger

	mu     sync.Mutex
	client *genai.Client
}

func NewGeminiProvider(config common.GeminiConfig, logger arbor.ILogger) *GeminiProvider {
	return &GeminiProvider{config: config, logger: logger}
}

func (p *GeminiProvider) GetProviderType() ProviderType {
	return ProviderGemini
}

// getClient returns a Gemini client, creating one on first use
func (p *GeminiProvider) getClient(ctx context.Context) (*genai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key: %w", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	p.client = client
	return client, nil
}

func (p *GeminiProvider) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	client, err := p.getClient(ctx)
	if err != nil {
		return nil, err
	}

	model := request.Model
	if model == "" {
		model = p.config.Model
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = p.config.Temperature
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temp),
	}
	// Gemini enforces a JSON body when asked, which keeps the parser on its happy path
	if request.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(request.Prompt), config)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	return &ContentResponse{
		Text:     text,
		Provider: ProviderGemini,
		Model:    model,
	}, nil
}

func (p *GeminiProvider) Close() error {
	p.mu.Lock()
	p.client = nil
	p.mu.Unlock()
	return nil
}
