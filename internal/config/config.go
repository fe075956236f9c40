package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName       string        `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL           string        `env:"REDIS_URL"` // run saving is off when empty
	DataDir            string        `env:"DATA_DIR" envDefault:"data"`
	InteractionTimeout time.Duration `env:"INTERACTION_TIMEOUT" envDefault:"30s"`
	Seed               int64         `env:"RNG_SEED"` // 0 picks a fresh seed per run
	StartArea          string        `env:"START_AREA" envDefault:"entrance"`
	SensitiveTerms     string        `env:"SENSITIVE_TERMS"` // "term=replacement,..." added to the defaults

	LogLevel slog.Level
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	return &cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
