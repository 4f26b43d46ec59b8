package emotion

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Scorer sends one chunk or clip to an emotion-scoring service and
// returns its predictions. A nil result with a nil error means the
// service had nothing to say about the input.
type Scorer interface {
	ScoreAudio(ctx context.Context, wav []byte) ([]Score, error)
	ScoreVideo(ctx context.Context, clip []byte) ([]FramePrediction, error)
}

// StreamConn is one short-lived duplex exchange with the scoring
// service: a single request frame out, a single result frame back.
type StreamConn interface {
	WriteJSON(v any) error
	ReadMessage() ([]byte, error)
	Close() error
}

// StreamDialer opens a StreamConn to the scoring endpoint.
type StreamDialer func(ctx context.Context, rawURL string, header http.Header) (StreamConn, error)

type streamConn struct {
	conn *websocket.Conn
}

func (c *streamConn) WriteJSON(v any) error {
	return c.conn.WriteJSON(v)
}

func (c *streamConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *streamConn) Close() error {
	return c.conn.Close()
}

// dialStream is the default StreamDialer backed by gorilla/websocket.
func dialStream(ctx context.Context, rawURL string, header http.Header) (StreamConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, err
	}
	return &streamConn{conn: conn}, nil
}

// HumeScorer implements Scorer against the Hume streaming models API.
// Each request opens its own connection, sends the payload, reads one
// result frame, and closes.
type HumeScorer struct {
	config *Config
	logger *slog.Logger
}

// NewHumeScorer creates a HumeScorer.
func NewHumeScorer(opts ...Option) (*HumeScorer, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &HumeScorer{
		config: cfg,
		logger: cfg.Logger.With("component", "emotion.hume"),
	}, nil
}

type streamResponse struct {
	Error   string `json:"error,omitempty"`
	Prosody *struct {
		Predictions []struct {
			Emotions []Score `json:"emotions"`
		} `json:"predictions"`
	} `json:"prosody,omitempty"`
	Face *struct {
		Predictions []FramePrediction `json:"predictions"`
	} `json:"face,omitempty"`
}

// ScoreAudio scores one WAV chunk with the prosody model.
func (h *HumeScorer) ScoreAudio(ctx context.Context, wav []byte) ([]Score, error) {
	resp, err := h.exchange(ctx, map[string]any{
		"models": map[string]any{"prosody": map[string]any{}},
		"data":   base64.StdEncoding.EncodeToString(wav),
	})
	if err != nil {
		return nil, err
	}

	// A missing prosody key is "no result", not malformed input.
	if resp.Prosody == nil || len(resp.Prosody.Predictions) == 0 {
		return nil, nil
	}
	return resp.Prosody.Predictions[0].Emotions, nil
}

// ScoreVideo scores one video clip with the face model.
func (h *HumeScorer) ScoreVideo(ctx context.Context, clip []byte) ([]FramePrediction, error) {
	resp, err := h.exchange(ctx, map[string]any{
		"models": map[string]any{"face": map[string]any{}},
		"data":   base64.StdEncoding.EncodeToString(clip),
	})
	if err != nil {
		return nil, err
	}

	if resp.Face == nil {
		return nil, nil
	}
	return resp.Face.Predictions, nil
}

func (h *HumeScorer) exchange(ctx context.Context, payload any) (*streamResponse, error) {
	if _, ok := ctx.Deadline(); !ok && h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	header := http.Header{}
	header.Set("X-Hume-Api-Key", h.config.APIKey)

	conn, err := h.config.Dialer(ctx, h.config.BaseURL, header)
	if err != nil {
		return nil, fmt.Errorf("emotion: dial scoring service: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(payload); err != nil {
		return nil, fmt.Errorf("emotion: send scoring request: %w", err)
	}

	data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("emotion: read scoring result: %w", err)
	}

	var resp streamResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("emotion: decode scoring result: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("emotion: scoring service error: %s", resp.Error)
	}

	return &resp, nil
}

// Verify HumeScorer implements Scorer at compile time.
var _ Scorer = (*HumeScorer)(nil)
