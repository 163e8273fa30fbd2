// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Model providers
const (
	ProviderAnthropic = "anthropic"
	ProviderClaudeCLI = "claude-cli"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	AuthSecret   string
	UploadDir    string

	ModelProvider     string
	ModelName         string
	AnthropicAPIKey   string
	ModelTimeout      time.Duration
	QuestionMaxTokens int
	DocumentMaxTokens int

	DocCapBytes     int
	ContextCapBytes int

	Workers            int
	QueueSize          int
	GenerationEstimate time.Duration

	LogLevel  string
	LogFormat string
}

// LoadEnv reads a .env file from the working directory if one exists.
// Variables already set in the environment win.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ParseFlags validates flags and falls back to environment variables
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	if err := LoadEnv(); err != nil {
		return Config{}, err
	}

	fs := flag.NewFlagSet("sowgen serve", flag.ContinueOnError)

	// Network and storage (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.UploadDir, "uploads", "", "Directory for uploaded project documents")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AuthSecret, "auth-secret", "", "Bearer token signing secret (prefer env)")

	// Model
	fs.StringVar(&cfg.ModelProvider, "model-provider", "", "Model provider (anthropic or claude-cli)")
	fs.StringVar(&cfg.ModelName, "model", "", "Model name")
	fs.IntVar(&cfg.Workers, "workers", 0, "Document generation workers")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Port == 0 {
		port, err := envInt("PORT", 3318)
		if err != nil {
			return Config{}, err
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = envString("DATABASE_TYPE", "sqlite")
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.UploadDir == "" {
		cfg.UploadDir = envString("UPLOAD_DIR", "uploads")
	}

	// Secrets - MUST be provided
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	}
	if cfg.AuthSecret == "" {
		return Config{}, errors.New("AUTH_SECRET required")
	}

	if cfg.ModelProvider == "" {
		cfg.ModelProvider = envString("MODEL_PROVIDER", ProviderAnthropic)
	}
	if cfg.ModelProvider != ProviderAnthropic && cfg.ModelProvider != ProviderClaudeCLI {
		return Config{}, fmt.Errorf("unsupported model provider %q", cfg.ModelProvider)
	}
	if cfg.ModelName == "" {
		cfg.ModelName = envString("MODEL_NAME", "claude-sonnet-4-5")
	}
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	if cfg.ModelProvider == ProviderAnthropic && cfg.AnthropicAPIKey == "" {
		return Config{}, errors.New("ANTHROPIC_API_KEY required for the anthropic provider")
	}

	var err error
	if cfg.ModelTimeout, err = envDuration("MODEL_TIMEOUT", 90*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.GenerationEstimate, err = envDuration("GENERATION_ESTIMATE", 2*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.QuestionMaxTokens, err = envInt("QUESTION_MAX_TOKENS", 1024); err != nil {
		return Config{}, err
	}
	if cfg.DocumentMaxTokens, err = envInt("DOCUMENT_MAX_TOKENS", 8192); err != nil {
		return Config{}, err
	}
	if cfg.DocCapBytes, err = envInt("DOC_CAP_BYTES", 10*1024); err != nil {
		return Config{}, err
	}
	if cfg.ContextCapBytes, err = envInt("CONTEXT_CAP_BYTES", 64*1024); err != nil {
		return Config{}, err
	}
	if cfg.Workers == 0 {
		if cfg.Workers, err = envInt("WORKERS", 2); err != nil {
			return Config{}, err
		}
	}
	if cfg.QueueSize, err = envInt("QUEUE_SIZE", 64); err != nil {
		return Config{}, err
	}

	cfg.LogLevel = envString("LOG_LEVEL", "info")
	cfg.LogFormat = envString("LOG_FORMAT", "text")

	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
