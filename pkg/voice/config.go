package voice

import (
	"log/slog"
	"time"
)

const defaultBaseURL = "wss://api.hume.ai/v0/stream/evi"

// Config holds session configuration.
type Config struct {
	// APIKey authenticates against the voice service.
	APIKey string

	// BaseURL is the websocket endpoint.
	BaseURL string

	// ConnectAttempts is the maximum number of dial attempts.
	ConnectAttempts int

	// ConnectDelay is the fixed wait between dial attempts.
	ConnectDelay time.Duration

	// Dialer opens connections. Defaults to gorilla/websocket.
	Dialer Dialer

	// Logger for session events.
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         defaultBaseURL,
		ConnectAttempts: 3,
		ConnectDelay:    5 * time.Second,
		Dialer:          dialWebSocket,
		Logger:          slog.Default(),
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

// WithBaseURL sets the websocket endpoint.
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithConnectRetry sets the dial attempt budget and inter-attempt delay.
func WithConnectRetry(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		if attempts > 0 {
			c.ConnectAttempts = attempts
		}
		c.ConnectDelay = delay
	}
}

// WithDialer sets a custom connection dialer.
func WithDialer(d Dialer) Option {
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
