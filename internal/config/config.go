package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Port            int           `yaml:"port"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key"`
	AnthropicURL    string        `yaml:"anthropic_url"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"`
	MaxTextLength   int           `yaml:"max_text_length"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
}

func defaults() Config {
	return Config{
		Port:            8090,
		AnthropicURL:    "https://api.anthropic.com",
		Model:           "claude-sonnet-4-20250514",
		MaxTokens:       1024,
		UpstreamTimeout: 60 * time.Second,
		MaxTextLength:   10000,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads configuration from a YAML file (if path is non-empty), then a
// .env file in the working directory (if present), then applies environment
// variable overrides. An empty path returns defaults + env overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("CORRECTEUR_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CORRECTEUR_PORT %q: %w", v, err)
		}
		cfg.Port = p
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := os.Getenv("CORRECTEUR_ANTHROPIC_URL"); v != "" {
		cfg.AnthropicURL = v
	}
	if v := os.Getenv("CORRECTEUR_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("CORRECTEUR_MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CORRECTEUR_MAX_TOKENS %q: %w", v, err)
		}
		cfg.MaxTokens = n
	}
	if v := os.Getenv("CORRECTEUR_UPSTREAM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CORRECTEUR_UPSTREAM_TIMEOUT %q: %w", v, err)
		}
		cfg.UpstreamTimeout = d
	}
	if v := os.Getenv("CORRECTEUR_MAX_TEXT_LENGTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid CORRECTEUR_MAX_TEXT_LENGTH %q: %w", v, err)
		}
		cfg.MaxTextLength = n
	}
	if v := os.Getenv("CORRECTEUR_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CORRECTEUR_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}
