package voice

import "errors"

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("voice: missing API key")

	// ErrConnectFailed is returned when every dial attempt failed.
	ErrConnectFailed = errors.New("voice: failed to connect")

	// ErrNoAudio is returned when the connection dropped before any
	// audio frame arrived.
	ErrNoAudio = errors.New("voice: no audio data received")

	// ErrTimeout is returned when the caller's deadline expired before
	// the session finished.
	ErrTimeout = errors.New("voice: session timed out")
)
