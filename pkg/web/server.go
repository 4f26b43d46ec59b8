// Package web exposes the coaching API over HTTP.
package web

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/careerbuddy/go-careerbuddy/pkg/quota"
)

// ErrMissingDependency is returned when a required collaborator is nil.
var ErrMissingDependency = errors.New("web: missing dependency")

// Options wires the server's collaborators.
type Options struct {
	Generator Generator
	Quota     quota.Store
	Speech    Speech
	Analyzer  Analyzer

	// Extractor is optional; without it /extract-text reports 501.
	Extractor Extractor

	// Notifier is optional; defaults to a log-backed implementation.
	Notifier Notifier

	// SharedSecret gates every route except /health when set.
	SharedSecret string

	// AllowedOrigins is the CORS allowlist, comma-separated.
	AllowedOrigins string

	Logger *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	app    *fiber.App
	opts   Options
	logger *slog.Logger
}

// NewServer creates the API server and registers its routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Generator == nil || opts.Quota == nil || opts.Speech == nil || opts.Analyzer == nil {
		return nil, ErrMissingDependency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = &logNotifier{logger: opts.Logger.With("component", "web.notifier")}
	}

	s := &Server{
		opts:   opts,
		logger: opts.Logger.With("component", "web.server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "careerbuddy-api",
		DisableStartupMessage: true,
		BodyLimit:             64 * 1024 * 1024,
	})

	corsCfg := cors.Config{}
	if opts.AllowedOrigins != "" {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	app.Use(cors.New(corsCfg))

	if opts.SharedSecret != "" {
		app.Use(s.requireSecret)
	}

	app.Get("/health", s.handleHealth)
	app.Post("/generate-pitches", s.handleGeneratePitches)
	app.Post("/generate-audio", s.handleGenerateAudio)
	app.Post("/analyze-practice", s.handleAnalyzePractice)
	app.Post("/generate-feedback", s.handleGenerateFeedback)
	app.Post("/extract-text", s.handleExtractText)

	s.app = app
	return s, nil
}

// requireSecret rejects requests without the shared secret header.
// The health check stays open for load balancer probes.
func (s *Server) requireSecret(c *fiber.Ctx) error {
	if c.Path() == "/health" {
		return c.Next()
	}
	if c.Get("X-App-Secret") != s.opts.SharedSecret {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "invalid or missing app secret",
		})
	}
	return c.Next()
}

// App exposes the fiber app for testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts serving on the given port.
func (s *Server) Listen(port string) error {
	s.logger.Info("listening", "port", port)
	return s.app.Listen(":" + port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
