// Package common provides shared utilities for Daybrief
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Daybrief
type Config struct {
	Environment string         `toml:"environment"`
	Watchlist   WatchlistConfig `toml:"watchlist"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Mail        MailConfig     `toml:"mail"`
	Run         RunConfig      `toml:"run"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Logging     LoggingConfig  `toml:"logging"`
}

// WatchlistConfig locates the categorized ticker watchlist file.
type WatchlistConfig struct {
	Path string `toml:"path"`
}

// StorageConfig holds the progression store location.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Gemini GeminiConfig `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the insight generation timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 45 * time.Second
	}
	return d
}

// MailConfig holds SMTP transport configuration.
type MailConfig struct {
	Host       string   `toml:"host"`
	Port       int      `toml:"port"`
	Username   string   `toml:"username"`
	Password   string   `toml:"password"`
	From       string   `toml:"from"`
	FromName   string   `toml:"from_name"`
	Recipients []string `toml:"recipients"`
	UseTLS     bool     `toml:"use_tls"`
}

// IsConfigured reports whether the minimum SMTP settings are present.
func (c *MailConfig) IsConfigured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.From != "" && len(c.Recipients) > 0
}

// RunConfig tunes the report run orchestrator.
type RunConfig struct {
	MaxRetries   int    `toml:"max_retries"`
	RetryDelay   string `toml:"retry_delay"`
	FetchWorkers int    `toml:"fetch_workers"`
	FetchPacing  string `toml:"fetch_pacing"`
}

// GetRetryDelay parses and returns the delay between whole-run retries.
func (c *RunConfig) GetRetryDelay() time.Duration {
	d, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// GetFetchPacing parses and returns the inter-request pacing delay.
func (c *RunConfig) GetFetchPacing() time.Duration {
	d, err := time.ParseDuration(c.FetchPacing)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// ScheduleConfig holds cron expressions for serve mode, one per report slot.
type ScheduleConfig struct {
	Open   string `toml:"open"`
	Midday string `toml:"midday"`
	Close  string `toml:"close"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Watchlist: WatchlistConfig{
			Path: "config/watchlist.yaml",
		},
		Storage: StorageConfig{
			Path: "data/progression",
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:   "https://eodhd.com/api",
				RateLimit: 10,
				Timeout:   "30s",
			},
			Gemini: GeminiConfig{
				Model:   "gemini-2.0-flash",
				Timeout: "45s",
			},
		},
		Mail: MailConfig{
			Port:     587,
			FromName: "Daybrief",
			UseTLS:   true,
		},
		Run: RunConfig{
			MaxRetries:   3,
			RetryDelay:   "2m",
			FetchWorkers: 4,
			FetchPacing:  "200ms",
		},
		Schedule: ScheduleConfig{
			Open:   "40 9 * * 1-5",
			Midday: "30 12 * * 1-5",
			Close:  "5 16 * * 1-5",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DAYBRIEF_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("DAYBRIEF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("DAYBRIEF_WATCHLIST"); path != "" {
		config.Watchlist.Path = path
	}

	if path := os.Getenv("DAYBRIEF_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("DAYBRIEF_MAIL_HOST"); v != "" {
		config.Mail.Host = v
	}
	if v := os.Getenv("DAYBRIEF_MAIL_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Mail.Port = p
		}
	}
	if v := os.Getenv("DAYBRIEF_MAIL_USERNAME"); v != "" {
		config.Mail.Username = v
	}
	if v := os.Getenv("DAYBRIEF_MAIL_PASSWORD"); v != "" {
		config.Mail.Password = v
	}
	if v := os.Getenv("DAYBRIEF_MAIL_FROM"); v != "" {
		config.Mail.From = v
	}
	if v := os.Getenv("DAYBRIEF_MAIL_RECIPIENTS"); v != "" {
		parts := strings.Split(v, ",")
		recipients := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				recipients = append(recipients, p)
			}
		}
		config.Mail.Recipients = recipients
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment variables or config fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":  {"EODHD_API_KEY", "DAYBRIEF_EODHD_API_KEY"},
		"gemini_api_key": {"GEMINI_API_KEY", "DAYBRIEF_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	// Check environment variables first (highest priority)
	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Fallback (lowest priority)
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
