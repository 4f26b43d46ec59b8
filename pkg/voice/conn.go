package voice

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the subset of a duplex websocket connection a session needs.
// It exists so tests can script the remote side of the protocol.
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() ([]byte, error)
	SetReadDeadline(t time.Time) error
	Close() error
}

// Dialer opens a Conn to the voice service endpoint.
type Dialer func(ctx context.Context, rawURL string, header http.Header) (Conn, error)

// wsConn adapts a gorilla websocket connection to Conn. Close is
// idempotent: it sends the close frame once and later calls are no-ops.
type wsConn struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func (c *wsConn) WriteJSON(v any) error {
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		deadline := time.Now().Add(time.Second)
		_ = c.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			deadline,
		)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

// dialWebSocket is the default Dialer backed by gorilla/websocket.
func dialWebSocket(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
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
	return &wsConn{conn: conn}, nil
}

// Verify wsConn implements Conn at compile time.
var _ Conn = (*wsConn)(nil)
