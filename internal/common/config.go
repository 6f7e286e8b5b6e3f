package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Watchlist WatchlistConfig `toml:"watchlist"`
	Tushare   TushareConfig   `toml:"tushare"`
	LLM       LLMConfig       `toml:"llm"`
	OpenAI    OpenAIConfig    `toml:"openai"`
	Gemini    GeminiConfig    `toml:"gemini"`
	Claude    ClaudeConfig    `toml:"claude"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
	SyncWrites     bool   `toml:"sync_writes"`              // fsync every cache write
}

// WatchlistConfig points at the watchlist JSON document
type WatchlistConfig struct {
	Path string `toml:"path" validate:"required"` // e.g. "./data/watchlist.json"
}

// TushareConfig contains Tushare Pro market-data API configuration
type TushareConfig struct {
	Token     string  `toml:"token"`      // Tushare Pro token (TUSHARE_TOKEN env also honoured)
	BaseURL   string  `toml:"base_url"`   // API endpoint (default: "http://api.tushare.pro")
	Timeout   string  `toml:"timeout"`    // Per-call timeout as duration string (default: "30s")
	RateLimit float64 `toml:"rate_limit"` // Requests per second (default: 3)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderOpenAI uses any OpenAI-compatible chat completions endpoint (Volcengine Ark by default)
	LLMProviderOpenAI LLMProvider = "openai"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains settings shared by all text-generation providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=openai gemini claude"` // default: "openai"
	Timeout         string      `toml:"timeout"`                                                 // Generator call timeout (default: "30s")
	MaxRetries      int         `toml:"max_retries" validate:"gte=0"`                            // Retries on rate limit errors (default: 2)
}

// OpenAIConfig contains OpenAI-compatible endpoint configuration
type OpenAIConfig struct {
	APIKey      string  `toml:"api_key"`     // VOLCES_API_KEY env also honoured
	Model       string  `toml:"model"`       // Model or endpoint id (VOLCES_MODEL_ID)
	BaseURL     string  `toml:"base_url"`    // default: "https://ark.cn-beijing.volces.com/api/v3"
	Temperature float32 `toml:"temperature"` // 0 leaves the server default
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`       // default: "gemini-2.5-flash"
	Temperature float32 `toml:"temperature"` // default: 0.7
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`      // default: "claude-sonnet-4-5"
	MaxTokens   int     `toml:"max_tokens"` // default: 8192
	Temperature float32 `toml:"temperature"`
}

// SchedulerConfig controls the watchlist snapshot prewarm job
type SchedulerConfig struct {
	Enabled         bool   `toml:"enabled"`
	PrewarmSchedule string `toml:"prewarm_schedule"` // 5-field cron (default: "35 15 * * 1-5")
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                       // "stdout", "file"
	File   string   `toml:"file"`                                         // Log file name inside ./logs (default: "stockdash.log")
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:       "./data/badger",
				SyncWrites: true, // same-day data must survive a restart
			},
		},
		Watchlist: WatchlistConfig{
			Path: "./data/watchlist.json",
		},
		Tushare: TushareConfig{
			BaseURL:   "http://api.tushare.pro",
			Timeout:   "30s",
			RateLimit: 3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderOpenAI,
			Timeout:         "30s",
			MaxRetries:      2,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://ark.cn-beijing.volces.com/api/v3",
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			Model:       "claude-sonnet-4-5",
			MaxTokens:   8192,
			Temperature: 0.7,
		},
		Scheduler: SchedulerConfig{
			Enabled:         false,
			PrewarmSchedule: "35 15 * * 1-5", // weekdays after the A-share close
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
			File:   "stockdash.log",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards with ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	// Server configuration
	if port := os.Getenv("STOCKDASH_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("STOCKDASH_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage
	if badgerPath := os.Getenv("STOCKDASH_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if watchlistPath := os.Getenv("STOCKDASH_WATCHLIST_PATH"); watchlistPath != "" {
		config.Watchlist.Path = watchlistPath
	}

	// Market data
	config.Tushare.Token = firstEnv(config.Tushare.Token, "STOCKDASH_TUSHARE_TOKEN", "TUSHARE_TOKEN")
	if baseURL := os.Getenv("STOCKDASH_TUSHARE_BASE_URL"); baseURL != "" {
		config.Tushare.BaseURL = baseURL
	}

	// Text generation
	if provider := os.Getenv("STOCKDASH_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if timeout := os.Getenv("STOCKDASH_LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}
	config.OpenAI.APIKey = firstEnv(config.OpenAI.APIKey, "STOCKDASH_OPENAI_API_KEY", "VOLCES_API_KEY")
	config.OpenAI.Model = firstEnv(config.OpenAI.Model, "STOCKDASH_OPENAI_MODEL", "VOLCES_MODEL_ID")
	config.OpenAI.BaseURL = firstEnv(config.OpenAI.BaseURL, "STOCKDASH_OPENAI_BASE_URL", "VOLCES_BASE_URL")
	config.Gemini.APIKey = firstEnv(config.Gemini.APIKey, "STOCKDASH_GEMINI_API_KEY", "GEMINI_API_KEY")
	config.Claude.APIKey = firstEnv(config.Claude.APIKey, "STOCKDASH_CLAUDE_API_KEY", "ANTHROPIC_API_KEY")

	// Logging configuration
	if level := os.Getenv("STOCKDASH_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("STOCKDASH_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

// firstEnv returns the first non-empty env var in names, or current when none is set
func firstEnv(current string, names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return current
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ValidateConfig checks struct constraints, duration strings and the prewarm schedule
func ValidateConfig(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := ParseDuration(config.Tushare.Timeout, 0); err != nil {
		return fmt.Errorf("invalid tushare.timeout: %w", err)
	}
	if _, err := ParseDuration(config.LLM.Timeout, 0); err != nil {
		return fmt.Errorf("invalid llm.timeout: %w", err)
	}
	if config.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(config.Scheduler.PrewarmSchedule); err != nil {
			return fmt.Errorf("invalid scheduler.prewarm_schedule: %w", err)
		}
	}
	return nil
}

// ParseDuration parses s, returning fallback when s is empty
func ParseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive, got %s", s)
	}
	return d, nil
}

// TushareTimeout returns the configured provider timeout (30s when unset)
func (c *Config) TushareTimeout() time.Duration {
	d, err := ParseDuration(c.Tushare.Timeout, 30*time.Second)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeneratorTimeout returns the configured text-generation timeout (30s when unset)
func (c *Config) GeneratorTimeout() time.Duration {
	d, err := ParseDuration(c.LLM.Timeout, 30*time.Second)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
