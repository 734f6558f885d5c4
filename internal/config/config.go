package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/thomas-vilte/promptcache/internal/errors"
)

const (
	DefaultDataPath      = "data/sample_videos_metadata.json"
	DefaultMaxTokens     = 500
	DefaultChatMaxTokens = 1024
	DefaultEnvFile       = ".env"
	defaultHomeDirName   = ".promptcache"
)

type Config struct {
	APIKey  string `envconfig:"ANTHROPIC_API_KEY"`
	Model   string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-5-haiku-20241022"`
	BaseURL string `envconfig:"ANTHROPIC_BASE_URL"`

	DataPath      string `envconfig:"PROMPTCACHE_DATA" default:"data/sample_videos_metadata.json"`
	Language      string `envconfig:"PROMPTCACHE_LANG" default:"en"`
	PricingPath   string `envconfig:"PROMPTCACHE_PRICING"`
	Record        bool   `envconfig:"PROMPTCACHE_RECORD" default:"false"`
	MaxTokens     int    `envconfig:"PROMPTCACHE_MAX_TOKENS" default:"500"`
	ChatMaxTokens int    `envconfig:"PROMPTCACHE_CHAT_MAX_TOKENS" default:"1024"`
	HomeDir       string `envconfig:"PROMPTCACHE_HOME"`

	Timeout time.Duration `envconfig:"PROMPTCACHE_TIMEOUT" default:"60s"`
}

// Load reads the .env file in the working directory, if any, and then the
// process environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := LoadDotEnv(DefaultEnvFile); err != nil {
		return nil, err
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.ErrInvalidConfig.WithError(err)
	}
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	return &cfg, cfg.Validate()
}

// LoadDotEnv loads KEY=VALUE pairs from path without overriding variables
// that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.ErrInvalidConfig.
			WithError(err).
			WithContext("file", path)
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.ErrInvalidConfig.WithContext("field", "model")
	}
	if !IsSupportedLanguage(c.Language) {
		return errors.ErrInvalidConfig.
			WithContext("field", "language").
			WithContext("value", c.Language).
			WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(SupportedLanguages(), ", ")))
	}
	if c.MaxTokens <= 0 {
		return errors.ErrInvalidConfig.WithContext("field", "max_tokens")
	}
	if c.ChatMaxTokens <= 0 {
		return errors.ErrInvalidConfig.WithContext("field", "chat_max_tokens")
	}
	if c.Timeout < 0 {
		return errors.ErrInvalidConfig.WithContext("field", "timeout")
	}
	if strings.TrimSpace(c.DataPath) == "" {
		return errors.ErrInvalidConfig.WithContext("field", "data")
	}
	return nil
}

// RequireAPIKey must pass before any request is sent.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return errors.ErrAPIKeyMissing
	}
	return nil
}

// HistoryDir returns where the activity history lives.
func (c *Config) HistoryDir() (string, error) {
	if c.HomeDir != "" {
		return c.HomeDir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error getting home directory: %w", err)
	}
	return filepath.Join(homeDir, defaultHomeDirName), nil
}
