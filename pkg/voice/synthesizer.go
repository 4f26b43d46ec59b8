// Package voice synthesizes speech by driving a duplex websocket session
// against a streaming voice service.
//
// A session sends one synthesis instruction and then drains the inbound
// frame stream: base64 audio frames are reassembled in arrival order
// into a single clip, assistant text frames accumulate into a
// space-joined transcript, and an explicit end frame terminates the
// exchange. The whole session is bounded by the caller's context
// deadline.
package voice

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// Frame types of the wire protocol.
const (
	frameAssistantInput   = "assistant_input"
	frameAudioOutput      = "audio_output"
	frameAssistantMessage = "assistant_message"
	frameAssistantEnd     = "assistant_end"
)

// SessionState tracks where a session is in its lifecycle.
type SessionState int

const (
	StateConnecting SessionState = iota
	StateConnected
	StateAwaitingResponse
	StateDraining
	StateClosedSuccess
	StateClosedError
	StateClosedTimeout
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAwaitingResponse:
		return "awaiting_response"
	case StateDraining:
		return "draining"
	case StateClosedSuccess:
		return "closed_success"
	case StateClosedError:
		return "closed_error"
	case StateClosedTimeout:
		return "closed_timeout"
	default:
		return "unknown"
	}
}

// Result is the outcome of one synthesis session.
type Result struct {
	// Audio is the reassembled clip, frames concatenated in arrival
	// order. Empty when the service ended the exchange without audio.
	Audio []byte

	// Transcript is the space-joined assistant message text.
	Transcript string

	// Frames is the number of audio frames received.
	Frames int
}

// HasAudio reports whether any audio arrived.
func (r *Result) HasAudio() bool {
	return len(r.Audio) > 0
}

type outboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type inboundFrame struct {
	Type    string `json:"type"`
	Data    string `json:"data,omitempty"`
	Message *struct {
		Content string `json:"content"`
	} `json:"message,omitempty"`
}

// Synthesizer turns pitch text into spoken audio. Each Synthesize call
// runs one complete session: connect, send, drain, close.
type Synthesizer struct {
	config *Config
	logger *slog.Logger
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(opts ...Option) (*Synthesizer, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Synthesizer{
		config: cfg,
		logger: cfg.Logger.With("component", "voice.synthesizer"),
	}, nil
}

// Synthesize runs one session for the given text. The context deadline
// bounds the whole session; on expiry the connection is torn down and
// ErrTimeout is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	sess := &session{
		config: s.config,
		logger: s.logger,
		state:  StateConnecting,
	}
	return sess.run(ctx, text)
}

// session is the per-call state machine. It is not reused.
type session struct {
	config *Config
	logger *slog.Logger
	conn   Conn
	state  SessionState

	frames     [][]byte
	transcript []string
}

func (s *session) run(ctx context.Context, text string) (*Result, error) {
	if err := s.connect(ctx); err != nil {
		if ctx.Err() != nil {
			s.state = StateClosedTimeout
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		s.state = StateClosedError
		return nil, err
	}
	s.state = StateConnected

	out := outboundFrame{Type: frameAssistantInput, Text: text}
	if err := s.conn.WriteJSON(out); err != nil {
		_ = s.conn.Close()
		s.state = StateClosedError
		return nil, fmt.Errorf("voice: send synthesis request: %w", err)
	}

	s.state = StateAwaitingResponse
	recvErr := s.receive(ctx)

	s.state = StateDraining
	_ = s.conn.Close()

	if recvErr != nil {
		if errors.Is(recvErr, ErrTimeout) {
			s.state = StateClosedTimeout
		} else {
			s.state = StateClosedError
		}
		return nil, recvErr
	}

	var clip bytes.Buffer
	for _, frame := range s.frames {
		clip.Write(frame)
	}

	result := &Result{
		Audio:      clip.Bytes(),
		Transcript: strings.Join(s.transcript, " "),
		Frames:     len(s.frames),
	}

	s.state = StateClosedSuccess
	s.logger.Info("session complete",
		"frames", result.Frames,
		"audio_bytes", len(result.Audio),
		"transcript_len", len(result.Transcript),
	)

	return result, nil
}

// connect dials the endpoint, retrying with a fixed delay between
// attempts.
func (s *session) connect(ctx context.Context) error {
	header := http.Header{}
	header.Set("X-Hume-Api-Key", s.config.APIKey)

	var lastErr error
	for attempt := 1; attempt <= s.config.ConnectAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrConnectFailed, ctx.Err())
			case <-time.After(s.config.ConnectDelay):
			}
		}

		conn, err := s.config.Dialer(ctx, s.config.BaseURL, header)
		if err == nil {
			s.conn = conn
			return nil
		}
		lastErr = err
		s.logger.Warn("connect attempt failed",
			"attempt", attempt,
			"max_attempts", s.config.ConnectAttempts,
			"error", err,
		)
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrConnectFailed, s.config.ConnectAttempts, lastErr)
}

// receive drains inbound frames until the end frame, an error, or the
// deadline. A nil return means the collected frames form a valid
// (possibly partial) result.
func (s *session) receive(ctx context.Context) error {
	for {
		if deadline, ok := ctx.Deadline(); ok {
			_ = s.conn.SetReadDeadline(deadline)
		}

		data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || isTimeout(err) {
				return fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			// A drop before the end frame yields a partial result,
			// which is fine as long as some audio arrived.
			if len(s.frames) == 0 {
				return fmt.Errorf("%w: connection closed before any audio: %v", ErrNoAudio, err)
			}
			s.logger.Warn("connection closed before end frame",
				"frames", len(s.frames),
				"error", err,
			)
			return nil
		}

		var frame inboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.logger.Warn("failed to parse frame", "error", err)
			continue
		}

		switch frame.Type {
		case frameAudioOutput:
			audio, err := base64.StdEncoding.DecodeString(frame.Data)
			if err != nil {
				s.logger.Warn("failed to decode audio frame", "error", err)
				continue
			}
			s.frames = append(s.frames, audio)

		case frameAssistantMessage:
			if frame.Message != nil && frame.Message.Content != "" {
				s.transcript = append(s.transcript, frame.Message.Content)
			}

		case frameAssistantEnd:
			return nil

		default:
			s.logger.Debug("unhandled frame type", "type", frame.Type)
		}
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
