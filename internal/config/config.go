// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string
	CatalogCSV  string // optional seed file, imported when the catalog is empty
	LLM         LLMConfig
	Pipeline    PipelineConfig
	Stream      StreamConfig
}

// LLMConfig controls the text-generation backend client.
type LLMConfig struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// PipelineConfig controls the recommendation pipeline.
type PipelineConfig struct {
	MaxRounds   int
	ResultLimit int
}

// StreamConfig controls the outbound event stream.
type StreamConfig struct {
	PollTimeout time.Duration
	SessionTTL  time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		DBPath:      getEnv("DB_PATH", "./data/ukm.db"),
		CatalogCSV:  getEnv("CATALOG_CSV", "./data/ukm_data.csv"),
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
			Model:       getEnv("LLM_MODEL", "qwen2.5:3b"),
			APIKey:      getEnv("LLM_API_KEY", "ollama"),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.1),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 8000),
			Timeout:     getEnvDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Pipeline: PipelineConfig{
			MaxRounds:   getEnvInt("PIPELINE_MAX_ROUNDS", 8),
			ResultLimit: getEnvInt("PIPELINE_RESULT_LIMIT", 3),
		},
		Stream: StreamConfig{
			PollTimeout: getEnvDuration("STREAM_POLL_TIMEOUT", time.Second),
			SessionTTL:  getEnvDuration("SESSION_TTL", 30*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.LLM.BaseURL == "" {
		return fmt.Errorf("LLM_BASE_URL cannot be empty")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	if c.Pipeline.MaxRounds <= 0 {
		return fmt.Errorf("PIPELINE_MAX_ROUNDS must be > 0")
	}
	if c.Pipeline.ResultLimit <= 0 {
		return fmt.Errorf("PIPELINE_RESULT_LIMIT must be > 0")
	}
	if c.Stream.PollTimeout <= 0 {
		return fmt.Errorf("STREAM_POLL_TIMEOUT must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}
