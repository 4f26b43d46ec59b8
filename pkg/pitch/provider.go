// Package pitch provides a uniform gateway over interchangeable
// text-generation providers.
//
// Each provider wraps a remote completion API behind the same interface,
// so the gateway needs no per-provider branching beyond lookup. Adding a
// backend means implementing Provider and registering it.
//
// Example usage:
//
//	openai, _ := pitch.NewOpenAI(pitch.WithAPIKey(key))
//	gw, _ := pitch.NewGateway(pitch.DefaultRetryPolicy(), openai)
//
//	pitches, err := gw.GeneratePitches(ctx, "openai", resume, jobDesc, "")
package pitch

import (
	"context"
	"log/slog"
	"time"
)

// Provider is the interface every text-generation backend implements.
type Provider interface {
	// Name returns the provider id used for registry lookup.
	Name() string

	// Complete generates a completion for the given request.
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// Validate checks credential validity without generating anything,
	// equivalent to listing available models. Callers use it to
	// pre-flight a key without consuming trial quota.
	Validate(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// CompletionRequest carries one generation call.
type CompletionRequest struct {
	// System is the system prompt.
	System string

	// User is the user content.
	User string

	// Model overrides the provider's default model when non-empty.
	Model string
}

// Config holds provider configuration.
type Config struct {
	// APIKey authenticates against the remote API.
	APIKey string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// Model is the default generation model.
	Model string

	// MaxTokens limits response length.
	MaxTokens int

	// Temperature controls randomness.
	Temperature float64

	// Timeout bounds a single remote call.
	Timeout time.Duration

	// Logger is the structured logger to use.
	Logger *slog.Logger
}

// DefaultConfig returns sensible provider defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxTokens:   1024,
		Temperature: 0.7,
		Timeout:     30 * time.Second,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Option is a functional option for configuring providers.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithModel sets the default generation model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithMaxTokens sets the default max tokens.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature sets the default temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}
