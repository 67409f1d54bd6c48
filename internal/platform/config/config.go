package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8000"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	ModelURL           string        `env:"MODEL_URL"`
	ModelName          string        `env:"MODEL_NAME" default:"absa-bert"`
	ModelTimeout       time.Duration `env:"MODEL_TIMEOUT" default:"10s"`
	TokenizerMaxLength int           `env:"TOKENIZER_MAX_LENGTH" default:"512"`

	PredictionCacheTTL    time.Duration `env:"PREDICTION_CACHE_TTL" default:"1h"`
	PredictionMemCacheTTL time.Duration `env:"PREDICTION_MEM_CACHE_TTL" default:"1m"`

	AnalyzeRateLimit float64 `env:"ANALYZE_RATE_LIMIT" default:"5"` // requests per second per client IP
	AnalyzeRateBurst int     `env:"ANALYZE_RATE_BURST" default:"10"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// CacheEnabled reports whether a shared Redis prediction cache is configured.
func (c *Config) CacheEnabled() bool {
	return c.RedisURL != ""
}

func validate(cfg *Config) error {
	// Checked in a fixed order so the first missing variable is reported deterministically.
	required := []struct{ name, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"MODEL_URL", cfg.ModelURL},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s is required", r.name)
		}
	}

	u, err := url.Parse(cfg.ModelURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("MODEL_URL must be an absolute http(s) URL")
	}

	if cfg.ModelTimeout <= 0 {
		return errors.New("MODEL_TIMEOUT must be positive")
	}
	if cfg.TokenizerMaxLength < 1 || cfg.TokenizerMaxLength > 512 {
		return fmt.Errorf("TOKENIZER_MAX_LENGTH must be between 1 and 512, got %d", cfg.TokenizerMaxLength)
	}
	if cfg.AnalyzeRateLimit <= 0 || cfg.AnalyzeRateBurst < 1 {
		return errors.New("ANALYZE_RATE_LIMIT must be positive and ANALYZE_RATE_BURST at least 1")
	}

	if cfg.AppEnv == "production" {
		if mode := sslMode(cfg.DatabaseURL); mode == "disable" || mode == "allow" {
			return fmt.Errorf("DATABASE_URL uses sslmode=%s which is not allowed in production", mode)
		}
	}

	return nil
}

func sslMode(databaseURL string) string {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Query().Get("sslmode"))
}
