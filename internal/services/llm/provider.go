package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockdash/internal/common"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderOpenAI uses an OpenAI-compatible chat completions endpoint
	ProviderOpenAI ProviderType = "openai"
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

// ErrNotConfigured marks a provider that lacks an API key or model. Retrying cannot help.
var ErrNotConfigured = errors.New("provider is not configured")

// ContentRequest represents a provider-agnostic content generation request
type ContentRequest struct {
	Prompt      string
	Model       string
	Temperature float32
	JSONOutput  bool // ask for a JSON body where the provider supports it
}

// ContentResponse represents a provider-agnostic content generation response
type ContentResponse struct {
	Text     string
	Provider ProviderType
	Model    string
}

// Provider defines the interface for AI content generation
type Provider interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
	GetProviderType() ProviderType
	Close() error
}

// ProviderFactory routes prompts to a provider by model name and retries failures.
// It implements interfaces.Generator.
type ProviderFactory struct {
	llmConfig common.LLMConfig
	retry     *RetryConfig
	logger    arbor.ILogger

	mu        sync.RWMutex
	providers map[ProviderType]Provider
}

// NewProviderFactory creates a factory with the three built-in providers.
func NewProviderFactory(config *common.Config, logger arbor.ILogger) *ProviderFactory {
	f := &ProviderFactory{
		llmConfig: config.LLM,
		retry:     NewRetryConfig(config.LLM.MaxRetries),
		logger:    logger,
		providers: make(map[ProviderType]Provider),
	}
	f.Register(NewOpenAIProvider(config.OpenAI, nil, logger))
	f.Register(NewGeminiProvider(config.Gemini, logger))
	f.Register(NewClaudeProvider(config.Claude, logger))
	return f
}

// Register adds or replaces the provider for its type.
func (f *ProviderFactory) Register(p Provider) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.providers[p.GetProviderType()] = p
}

// SetRetryConfig replaces the retry schedule.
func (f *ProviderFactory) SetRetryConfig(cfg *RetryConfig) {
	f.retry = cfg
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-5" or "claude/claude-sonnet-4-5" -> Claude
// - "gemini-2.5-flash" or "google/gemini-2.5-flash" -> Gemini
// - "openai/doubao-1-5-pro" or "ep-2025..." -> OpenAI-compatible
// - anything else, including "" -> the configured default provider
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return f.defaultProvider()
	}

	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "claude/"), strings.HasPrefix(model, "anthropic/"), strings.HasPrefix(model, "claude-"):
		return ProviderClaude
	case strings.HasPrefix(model, "gemini/"), strings.HasPrefix(model, "google/"), strings.HasPrefix(model, "gemini-"):
		return ProviderGemini
	case strings.HasPrefix(model, "openai/"), strings.HasPrefix(model, "ark/"):
		return ProviderOpenAI
	}

	return f.defaultProvider()
}

func (f *ProviderFactory) defaultProvider() ProviderType {
	if f.llmConfig.DefaultProvider == "" {
		return ProviderOpenAI
	}
	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/", "openai/", "ark/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

func (f *ProviderFactory) provider(t ProviderType) (Provider, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.providers[t]
	if !ok {
		return nil, fmt.Errorf("no provider registered for %q", t)
	}
	return p, nil
}

// Name reports the default provider.
func (f *ProviderFactory) Name() string {
	return string(f.defaultProvider())
}

// Generate runs a single-turn completion and returns the raw text.
func (f *ProviderFactory) Generate(ctx context.Context, model, prompt string) (string, error) {
	resp, err := f.GenerateContent(ctx, &ContentRequest{
		Prompt:     prompt,
		Model:      model,
		JSONOutput: true,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// GenerateContent generates content using the appropriate provider based on model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error) {
	providerType := f.DetectProvider(request.Model)
	p, err := f.provider(providerType)
	if err != nil {
		return nil, err
	}

	req := *request
	req.Model = f.NormalizeModel(request.Model)

	f.logger.Debug().
		Str("provider", string(providerType)).
		Str("model", req.Model).
		Int("prompt_length", len(req.Prompt)).
		Msg("Generating content with provider")

	resp, err := withRetry(ctx, f.retry, f.logger, providerType, func() (*ContentResponse, error) {
		return p.GenerateContent(ctx, &req)
	})
	if err != nil {
		return nil, fmt.Errorf("%s generation failed: %w", providerType, err)
	}
	return resp, nil
}

// Close closes all provider clients
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.providers {
		_ = p.Close()
	}
	return nil
}
