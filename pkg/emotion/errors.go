package emotion

import "errors"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("emotion: missing API key")

	// ErrNoScorer is returned when a pipeline is built without a scorer.
	ErrNoScorer = errors.New("emotion: no scorer configured")

	// ErrNotWAV is returned for input that is not a RIFF/WAVE stream.
	ErrNotWAV = errors.New("emotion: not a RIFF/WAVE stream")

	// ErrNoAudioData is returned when a WAV stream holds no full frame.
	ErrNoAudioData = errors.New("emotion: no audio frames in stream")
)
