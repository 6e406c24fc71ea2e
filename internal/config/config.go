package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Defaults applied by setDefaults.
const (
	DefaultTMDbBaseURL       = "https://api.themoviedb.org/3"
	DefaultImageBaseURL      = "https://image.tmdb.org/t/p/w500"
	DefaultHTTPTimeout       = 15 * time.Second
	DefaultMaxRetries        = 1
	DefaultRequestsPerSecond = 20.0
	DefaultLogLevel          = "info"
)

// Config represents the main application configuration
type Config struct {
	// Metadata provider
	TMDb TMDbConfig `yaml:"tmdb"`

	// Outbound HTTP behaviour
	HTTP HTTPConfig `yaml:"http"`

	// Frontends
	Telegram *TelegramConfig `yaml:"telegram,omitempty"`

	// Application settings
	App AppConfig `yaml:"app"`
}

// TMDbConfig holds TMDb API configuration
type TMDbConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url,omitempty"`
	ImageBaseURL string `yaml:"image_base_url,omitempty"`
}

// HTTPConfig holds outbound HTTP client settings
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout,omitempty"`
	MaxRetries        int           `yaml:"max_retries,omitempty"` // total attempts, 1 = no retry
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
}

// TelegramConfig holds Telegram bot configuration
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids,omitempty"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	LogLevel string `yaml:"log_level"` // "debug", "info", "warn", "error"
}

// Load loads configuration from a YAML file with environment variable overrides
func Load(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// validateConfigPath checks that path points to a readable regular file.
func validateConfigPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("config file not found: %s", path)
		}
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory, not a file", path)
	}
	return nil
}

// applyEnvOverrides overrides config values with environment variables
func (c *Config) applyEnvOverrides() error {
	// TMDb
	if v := os.Getenv("MARQUEE_TMDB_API_KEY"); v != "" {
		c.TMDb.APIKey = v
	}
	if v := os.Getenv("MARQUEE_TMDB_BASE_URL"); v != "" {
		c.TMDb.BaseURL = v
	}
	if v := os.Getenv("MARQUEE_TMDB_IMAGE_BASE_URL"); v != "" {
		c.TMDb.ImageBaseURL = v
	}

	// HTTP
	if v := os.Getenv("MARQUEE_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MARQUEE_HTTP_TIMEOUT: %w", err)
		}
		c.HTTP.Timeout = d
	}
	if v := os.Getenv("MARQUEE_HTTP_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MARQUEE_HTTP_MAX_RETRIES: %w", err)
		}
		c.HTTP.MaxRetries = n
	}
	if v := os.Getenv("MARQUEE_HTTP_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("MARQUEE_HTTP_RPS: %w", err)
		}
		c.HTTP.RequestsPerSecond = f
	}

	// Telegram
	c.Telegram = applyTelegramEnv(c.Telegram, "MARQUEE_TELEGRAM_BOT_TOKEN")

	// App
	if v := os.Getenv("MARQUEE_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	return nil
}

// applyTelegramEnv overrides the bot token, creating the section when the
// variable is set but the file has none.
func applyTelegramEnv(cfg *TelegramConfig, tokenEnv string) *TelegramConfig {
	token := os.Getenv(tokenEnv)
	if token == "" {
		return cfg
	}
	if cfg == nil {
		cfg = &TelegramConfig{}
	}
	cfg.BotToken = token
	return cfg
}

// setDefaults fills in zero values.
func (c *Config) setDefaults() {
	if c.TMDb.BaseURL == "" {
		c.TMDb.BaseURL = DefaultTMDbBaseURL
	}
	if c.TMDb.ImageBaseURL == "" {
		c.TMDb.ImageBaseURL = DefaultImageBaseURL
	}
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = DefaultHTTPTimeout
	}
	if c.HTTP.MaxRetries == 0 {
		c.HTTP.MaxRetries = DefaultMaxRetries
	}
	if c.HTTP.RequestsPerSecond == 0 {
		c.HTTP.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = DefaultLogLevel
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TMDb.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required")
	}
	if err := validateURL(c.TMDb.BaseURL, "tmdb.base_url"); err != nil {
		return err
	}
	if err := validateURL(c.TMDb.ImageBaseURL, "tmdb.image_base_url"); err != nil {
		return err
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive")
	}
	if c.HTTP.MaxRetries < 1 {
		return fmt.Errorf("http.max_retries must be at least 1")
	}
	if c.HTTP.RequestsPerSecond <= 0 {
		return fmt.Errorf("http.requests_per_second must be positive")
	}

	if c.Telegram != nil && c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}

	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		return fmt.Errorf("app.log_level must be one of debug, info, warn, error; got %q", c.App.LogLevel)
	}

	return nil
}

// validateURL checks that raw is an absolute http(s) URL with a host.
func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", field, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: missing host in %q", field, raw)
	}
	return nil
}
