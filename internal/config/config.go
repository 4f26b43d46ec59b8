// Package config provides environment-derived configuration for the server.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for the server configuration.
const (
	DefaultPort           = "8080"
	DefaultLogLevel       = "info"
	DefaultTrialAllowance = 3
)

// Config holds all server configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// LogLevel is the slog level: debug, info, warn, error.
	LogLevel string

	// OpenAIKey is the server-side OpenAI API key used for trial requests.
	OpenAIKey string

	// HuggingFaceKey is the server-side HuggingFace API key (optional).
	HuggingFaceKey string

	// HumeKey is the Hume AI API key for speech synthesis and emotion scoring.
	HumeKey string

	// SharedSecret gates the API when set. Empty disables the check.
	SharedSecret string

	// TrialAllowance is the number of free generations per (user, provider).
	TrialAllowance int

	// AllowedOrigins is the CORS allowlist, comma-separated.
	AllowedOrigins string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", DefaultPort),
		LogLevel:       getEnv("LOG_LEVEL", DefaultLogLevel),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		HuggingFaceKey: os.Getenv("HF_API_KEY"),
		HumeKey:        os.Getenv("HUME_AI_API_KEY"),
		SharedSecret:   os.Getenv("APP_SHARED_SECRET"),
		TrialAllowance: getEnvInt("TRIAL_ALLOWANCE", DefaultTrialAllowance),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "https://main--career-buddy.netlify.app,http://localhost:3000"),
	}

	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.HumeKey == "" {
		return nil, fmt.Errorf("HUME_AI_API_KEY is required")
	}
	if cfg.TrialAllowance < 0 {
		return nil, fmt.Errorf("TRIAL_ALLOWANCE must be >= 0, got %d", cfg.TrialAllowance)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
