package emotion

import (
	"log/slog"
	"os"
	"time"
)

const (
	defaultStreamURL = "wss://api.hume.ai/v0/stream/models"

	// DefaultChunkDuration is the audio chunk length sent per request.
	DefaultChunkDuration = 5 * time.Second

	// DefaultTopN is how many ranked emotions a summary keeps.
	DefaultTopN = 5
)

// Config holds scorer and pipeline configuration.
type Config struct {
	// APIKey authenticates against the scoring service.
	APIKey string

	// BaseURL is the streaming models endpoint.
	BaseURL string

	// ChunkDuration is the target length of each audio chunk.
	ChunkDuration time.Duration

	// TopN is how many ranked emotions a summary keeps.
	TopN int

	// ScratchDir is where per-call scratch directories are created.
	ScratchDir string

	// Timeout bounds one scoring exchange when the caller's context
	// carries no deadline.
	Timeout time.Duration

	// Dialer opens scoring connections. Defaults to gorilla/websocket.
	Dialer StreamDialer

	// Logger for pipeline and scorer events.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:       defaultStreamURL,
		ChunkDuration: DefaultChunkDuration,
		TopN:          DefaultTopN,
		ScratchDir:    os.TempDir(),
		Timeout:       30 * time.Second,
		Dialer:        dialStream,
		Logger:        slog.Default(),
	}
}

// Option configures a Config.
type Option func(*Config)

// Apply applies options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseURL sets the streaming endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithChunkDuration sets the audio chunk length.
func WithChunkDuration(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ChunkDuration = d
		}
	}
}

// WithTopN sets how many ranked emotions a summary keeps.
func WithTopN(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.TopN = n
		}
	}
}

// WithScratchDir sets the parent directory for per-call scratch space.
func WithScratchDir(dir string) Option {
	return func(c *Config) {
		c.ScratchDir = dir
	}
}

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithStreamDialer sets a custom connection dialer.
func WithStreamDialer(d StreamDialer) Option {
	return func(c *Config) {
		c.Dialer = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}
