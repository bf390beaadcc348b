package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	LLM         LLMConfig        `toml:"llm"`
	News        NewsConfig       `toml:"news"`
	EODHD       EODHDConfig      `toml:"eodhd"`
	Analysis    AnalysisConfig   `toml:"analysis"`
	Reflection  ReflectionConfig `toml:"reflection"`
	Monitor     MonitorConfig    `toml:"monitor"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for reasoning operations (default: "gemini-2.5-pro")
	FastModel   string  `toml:"fast_model"`  // Model for sentiment/reflection calls (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for reasoning operations (default: "claude-sonnet-4-20250514")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude" (default: "gemini")
}

// NewsConfig contains NewsAPI configuration
type NewsConfig struct {
	APIKey  string `toml:"api_key"`  // NewsAPI key
	BaseURL string `toml:"base_url"` // API base URL (default: "https://newsapi.org/v2")
	Timeout string `toml:"timeout"`  // HTTP request timeout (default: "30s")
}

// EODHDConfig contains EODHD market data API configuration
type EODHDConfig struct {
	APIKey    string `toml:"api_key"`    // EODHD API key
	BaseURL   string `toml:"base_url"`   // API base URL (default: "https://eodhd.com/api")
	RateLimit int    `toml:"rate_limit"` // Requests per second (default: 10)
}

// AnalysisConfig controls the reasoning loop for analysis jobs
type AnalysisConfig struct {
	MaxSteps      int `toml:"max_steps"`       // Max reasoning steps per full analysis (default: 10)
	QuickMaxSteps int `toml:"quick_max_steps"` // Max reasoning steps per monitor-triggered analysis (default: 6)
	DaysBack      int `toml:"days_back"`       // Default news lookback for analysis (default: 7)
	MaxArticles   int `toml:"max_articles"`    // Default article cap for analysis (default: 5)
}

// ReflectionConfig controls the post-analysis quality gate
type ReflectionConfig struct {
	Enabled         bool    `toml:"enabled"`           // Enable the reflection quality gate (default: true)
	MinQualityScore float64 `toml:"min_quality_score"` // Minimum score to accept an analysis (default: 0.7)
	MaxRetries      int     `toml:"max_retries"`       // Max quality retries before accepting best attempt (default: 2)
}

// MonitorConfig controls standing ticker monitors
type MonitorConfig struct {
	Interval     string `toml:"interval"`      // Default polling interval (default: "24h")
	MinArticles  int    `toml:"min_articles"`  // Strict lower bound of new articles to trigger an alert (default: 5)
	LookbackDays int    `toml:"lookback_days"` // News lookback window per check (default: 1)
	MaxArticles  int    `toml:"max_articles"`  // Article cap per check (default: 10)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in aira.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key
			Model:       "gemini-2.5-pro",
			FastModel:   "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-sonnet-4-20250514",
			MaxTokens:   8192,
			Timeout:     "2m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		News: NewsConfig{
			APIKey:  "",
			BaseURL: "https://newsapi.org/v2",
			Timeout: "30s",
		},
		EODHD: EODHDConfig{
			APIKey:    "",
			BaseURL:   "https://eodhd.com/api",
			RateLimit: 10,
		},
		Analysis: AnalysisConfig{
			MaxSteps:      10,
			QuickMaxSteps: 6,
			DaysBack:      7,
			MaxArticles:   5,
		},
		Reflection: ReflectionConfig{
			Enabled:         true,
			MinQualityScore: 0.7,
			MaxRetries:      2,
		},
		Monitor: MonitorConfig{
			Interval:     "24h",
			MinArticles:  5,
			LookbackDays: 1,
			MaxArticles:  10,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
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

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AIRA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("AIRA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("AIRA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage
	if badgerPath := os.Getenv("AIRA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging
	if level := os.Getenv("AIRA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("AIRA_LOG_OUTPUT"); output != "" {
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

	// API keys
	if key := os.Getenv("AIRA_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("AIRA_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("AIRA_NEWS_API_KEY"); key != "" {
		config.News.APIKey = key
	}
	if key := os.Getenv("AIRA_EODHD_API_KEY"); key != "" {
		config.EODHD.APIKey = key
	}

	// LLM provider selection
	if provider := os.Getenv("AIRA_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}

	// Analysis
	if maxSteps := os.Getenv("AIRA_ANALYSIS_MAX_STEPS"); maxSteps != "" {
		if ms, err := strconv.Atoi(maxSteps); err == nil {
			config.Analysis.MaxSteps = ms
		}
	}
	if quickSteps := os.Getenv("AIRA_ANALYSIS_QUICK_MAX_STEPS"); quickSteps != "" {
		if qs, err := strconv.Atoi(quickSteps); err == nil {
			config.Analysis.QuickMaxSteps = qs
		}
	}

	// Reflection
	if enabled := os.Getenv("AIRA_REFLECTION_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Reflection.Enabled = e
		}
	}
	if minScore := os.Getenv("AIRA_REFLECTION_MIN_QUALITY_SCORE"); minScore != "" {
		if s, err := strconv.ParseFloat(minScore, 64); err == nil {
			config.Reflection.MinQualityScore = s
		}
	}
	if retries := os.Getenv("AIRA_REFLECTION_MAX_RETRIES"); retries != "" {
		if r, err := strconv.Atoi(retries); err == nil {
			config.Reflection.MaxRetries = r
		}
	}

	// Monitor
	if interval := os.Getenv("AIRA_MONITOR_INTERVAL"); interval != "" {
		config.Monitor.Interval = interval
	}
	if minArticles := os.Getenv("AIRA_MONITOR_MIN_ARTICLES"); minArticles != "" {
		if ma, err := strconv.Atoi(minArticles); err == nil {
			config.Monitor.MinArticles = ma
		}
	}
}

// Validate checks configuration invariants that would otherwise surface
// as confusing runtime behavior.
func (c *Config) Validate() error {
	if c.LLM.DefaultProvider != LLMProviderGemini && c.LLM.DefaultProvider != LLMProviderClaude {
		return fmt.Errorf("invalid llm.default_provider '%s': must be 'gemini' or 'claude'", c.LLM.DefaultProvider)
	}
	if c.Reflection.MinQualityScore < 0 || c.Reflection.MinQualityScore > 1 {
		return fmt.Errorf("reflection.min_quality_score must be in [0,1], got %v", c.Reflection.MinQualityScore)
	}
	if c.Reflection.MaxRetries < 0 {
		return fmt.Errorf("reflection.max_retries must be >= 0, got %d", c.Reflection.MaxRetries)
	}
	if c.Analysis.MaxSteps <= 0 {
		return fmt.Errorf("analysis.max_steps must be > 0, got %d", c.Analysis.MaxSteps)
	}
	if c.Analysis.QuickMaxSteps <= 0 {
		return fmt.Errorf("analysis.quick_max_steps must be > 0, got %d", c.Analysis.QuickMaxSteps)
	}
	if c.Monitor.MinArticles < 0 {
		return fmt.Errorf("monitor.min_articles must be >= 0, got %d", c.Monitor.MinArticles)
	}
	if _, err := time.ParseDuration(c.Monitor.Interval); err != nil {
		return fmt.Errorf("invalid monitor.interval '%s': %w", c.Monitor.Interval, err)
	}
	return nil
}

// MonitorIntervalDuration returns the parsed default monitor interval.
// Config validation guarantees the value parses.
func (c *Config) MonitorIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.Monitor.Interval)
	return d
}
