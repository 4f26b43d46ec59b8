package web

import (
	"context"
	"log/slog"

	"github.com/careerbuddy/go-careerbuddy/pkg/emotion"
	"github.com/careerbuddy/go-careerbuddy/pkg/voice"
)

// Generator produces pitches and feedback text. Satisfied by
// pitch.Gateway.
type Generator interface {
	GeneratePitches(ctx context.Context, providerID, resume, jobDescription, model string) ([]string, error)
	Feedback(ctx context.Context, providerID, analysisSummary string) (string, error)
}

// Speech synthesizes pitch text into audio. Satisfied by
// voice.Synthesizer.
type Speech interface {
	Synthesize(ctx context.Context, text string) (*voice.Result, error)
}

// Analyzer scores practice recordings. Satisfied by emotion.Pipeline.
type Analyzer interface {
	AnalyzePractice(ctx context.Context, audio, video []byte) (*emotion.Practice, error)
}

// Extractor pulls plain text out of an uploaded document.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// Notifier is told when a practice analysis completes. Failures are
// logged and never fail the triggering request.
type Notifier interface {
	PracticeAnalyzed(ctx context.Context, userID string, result *emotion.Practice) error
}

// logNotifier is the default Notifier. It records the event and
// nothing else.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) PracticeAnalyzed(ctx context.Context, userID string, result *emotion.Practice) error {
	n.logger.Info("practice analyzed",
		"user", userID,
		"audio_valid", result.Audio.Valid(),
		"video_valid", result.Video.Valid(),
	)
	return nil
}

// Verify logNotifier implements Notifier at compile time.
var _ Notifier = (*logNotifier)(nil)
