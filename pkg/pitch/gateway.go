package pitch

import (
	"context"
	"log/slog"

	"github.com/careerbuddy/go-careerbuddy/pkg/markers"
)

// Gateway routes generation calls to registered providers and applies the
// retry policy around each remote call. Text generation is all-or-nothing:
// on retry exhaustion the caller gets one typed error, never a partial
// stream.
type Gateway struct {
	providers map[string]Provider
	retry     RetryPolicy
	logger    *slog.Logger
}

// NewGateway creates a gateway over the given providers.
// At least one provider is required.
func NewGateway(retry RetryPolicy, providers ...Provider) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}

	m := make(map[string]Provider, len(providers))
	for _, p := range providers {
		m[p.Name()] = p
	}

	return &Gateway{
		providers: m,
		retry:     retry,
		logger:    slog.Default().With("component", "pitch.gateway"),
	}, nil
}

// NewGatewayWithLogger creates a gateway with a custom logger.
func NewGatewayWithLogger(logger *slog.Logger, retry RetryPolicy, providers ...Provider) (*Gateway, error) {
	gw, err := NewGateway(retry, providers...)
	if err != nil {
		return nil, err
	}
	gw.logger = logger.With("component", "pitch.gateway")
	return gw, nil
}

// Providers returns the registered provider ids.
func (g *Gateway) Providers() []string {
	ids := make([]string, 0, len(g.providers))
	for id := range g.providers {
		ids = append(ids, id)
	}
	return ids
}

// GeneratePitches generates up to PitchCount labeled pitches from a resume
// and a job description. The result may be shorter than PitchCount when the
// model omitted markers; it is never padded. An entirely unparseable
// response is a parse-kind error.
func (g *Gateway) GeneratePitches(ctx context.Context, providerID, resume, jobDescription, model string) ([]string, error) {
	p, ok := g.providers[providerID]
	if !ok {
		return nil, ErrUnknownProvider
	}

	req := &CompletionRequest{
		System: pitchSystemPrompt,
		User:   pitchUserContent(resume, jobDescription),
		Model:  model,
	}

	var raw string
	err := g.retry.Do(ctx, g.logger.With("provider", providerID, "op", "generate"), func(ctx context.Context) error {
		var err error
		raw, err = p.Complete(ctx, req)
		return err
	})
	if err != nil {
		return nil, tagOp(err, "generate")
	}

	pitches := markers.Extract(raw, PitchLabel, PitchCount)
	if len(pitches) == 0 {
		return nil, &Error{
			Kind:     KindParse,
			Provider: providerID,
			Op:       "generate",
			Message:  "no pitch markers found in response",
		}
	}

	if len(pitches) < PitchCount {
		g.logger.Warn("partial pitch set",
			"provider", providerID,
			"found", len(pitches),
			"expected", PitchCount,
		)
	}

	return pitches, nil
}

// Feedback generates free-text delivery feedback from an emotion analysis
// summary. Structurally identical to GeneratePitches but with no marker
// parsing.
func (g *Gateway) Feedback(ctx context.Context, providerID, analysisSummary string) (string, error) {
	p, ok := g.providers[providerID]
	if !ok {
		return "", ErrUnknownProvider
	}

	req := &CompletionRequest{
		System: feedbackSystemPrompt,
		User:   analysisSummary,
	}

	var raw string
	err := g.retry.Do(ctx, g.logger.With("provider", providerID, "op", "feedback"), func(ctx context.Context) error {
		var err error
		raw, err = p.Complete(ctx, req)
		return err
	})
	if err != nil {
		return "", tagOp(err, "feedback")
	}

	return raw, nil
}

// Validate pre-flights a provider credential without consuming quota.
func (g *Gateway) Validate(ctx context.Context, providerID string) error {
	p, ok := g.providers[providerID]
	if !ok {
		return ErrUnknownProvider
	}
	return tagOp(p.Validate(ctx), "validate")
}

// Close closes all registered providers.
func (g *Gateway) Close() error {
	var lastErr error
	for _, p := range g.providers {
		if err := p.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
