package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/text/language"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-3.5-turbo)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 8000)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.7)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
// - LLM_SITE_URL: Site URL for HTTP referer header (optional)
// - LLM_APP_NAME: Application name for X-Title header (optional)
//
// Translation Configuration:
// - TARGET_LANGUAGE: BCP 47 tag of the output language (default: pt-BR)
// - BATCH_SIZE: Blocks per translation batch (default: 50)
// - TRANSLATE_CONCURRENCY: Max in-flight batches, 0 = unbounded (default: 4)
// - TRANSLATE_MAX_RETRIES: Retries per batch, 0 = unlimited (default: 0)
// - CRON_EXPR: Watch-mode scan schedule (default: 0 0 * * *)
//
// Media Directory Configuration (watch mode):
// - MOVIE_DIR, SHOW_DIR, ANIMATION_DIR: scanned library roots (optional)

type Config struct {
	LLM       LLMConfig       `json:"llm"`
	Translate TranslateConfig `json:"translate"`
	Media     MediaConfig     `json:"media"`
}

// LLMConfig holds the configuration for the LLM client
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
	SiteURL     string  `json:"site_url"`
	AppName     string  `json:"app_name"`
}

// TranslateConfig holds the pipeline tuning knobs
type TranslateConfig struct {
	TargetLanguage language.Tag `json:"target_language"`
	BatchSize      int          `json:"batch_size"`
	Concurrency    int          `json:"concurrency"`
	MaxRetries     int          `json:"max_retries"`
	CronExpr       string       `json:"cron_expr"`
}

// MediaConfig holds the library roots scanned in watch mode
type MediaConfig struct {
	MovieDir     string `json:"movie_dir"`
	ShowDir      string `json:"show_dir"`
	AnimationDir string `json:"animation_dir"`
}

// MediaPaths returns the configured, non-empty library roots
func (c MediaConfig) MediaPaths() []string {
	ret := make([]string, 0)
	if c.MovieDir != "" {
		ret = append(ret, c.MovieDir)
	}
	if c.ShowDir != "" {
		ret = append(ret, c.ShowDir)
	}
	if c.AnimationDir != "" {
		ret = append(ret, c.AnimationDir)
	}
	return ret
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment
// variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	targetLang, err := language.Parse(getEnvString("TARGET_LANGUAGE", "pt-BR"))
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_LANGUAGE: %w", err)
	}

	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-3.5-turbo"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
			SiteURL:     getEnvString("LLM_SITE_URL", ""),
			AppName:     getEnvString("LLM_APP_NAME", ""),
		},
		Translate: TranslateConfig{
			TargetLanguage: targetLang,
			BatchSize:      getEnvInt("BATCH_SIZE", 50),
			Concurrency:    getEnvInt("TRANSLATE_CONCURRENCY", 4),
			MaxRetries:     getEnvInt("TRANSLATE_MAX_RETRIES", 0),
			CronExpr:       getEnvString("CRON_EXPR", "0 0 * * *"),
		},
		Media: MediaConfig{
			MovieDir:     getEnvString("MOVIE_DIR", ""),
			ShowDir:      getEnvString("SHOW_DIR", ""),
			AnimationDir: getEnvString("ANIMATION_DIR", ""),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("BATCH_SIZE must be greater than 0")
	}
	if c.Translate.MaxRetries < 0 {
		return fmt.Errorf("TRANSLATE_MAX_RETRIES must not be negative")
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets a float value from environment variables with default
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
