package voice

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"
)

// errMockClosed is what an exhausted MockConn returns from ReadMessage,
// simulating the remote side dropping the connection.
var errMockClosed = errors.New("mock: connection closed")

// MockConn is a scripted Conn for testing sessions. Queue inbound
// frames before the session starts; once the script is exhausted
// ReadMessage returns ReadErr (or a closed-connection error).
type MockConn struct {
	mu sync.Mutex

	script [][]byte
	next   int

	// Configurable behavior
	ReadErr  error
	WriteErr error

	// Captured calls for assertions
	Written    []any
	Deadline   time.Time
	CloseCalls int
	closed     bool
}

// NewMockConn creates an empty MockConn.
func NewMockConn() *MockConn {
	return &MockConn{}
}

// Dialer returns a Dialer that always hands out this connection.
func (m *MockConn) Dialer() Dialer {
	return func(ctx context.Context, rawURL string, header http.Header) (Conn, error) {
		return m, nil
	}
}

// QueueRaw appends a raw inbound payload to the script.
func (m *MockConn) QueueRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, data)
}

// QueueJSON marshals v and appends it to the script.
func (m *MockConn) QueueJSON(v any) {
	data, _ := json.Marshal(v)
	m.QueueRaw(data)
}

// QueueAudio appends an audio_output frame carrying the given bytes.
func (m *MockConn) QueueAudio(audio []byte) {
	m.QueueJSON(map[string]string{
		"type": frameAudioOutput,
		"data": base64.StdEncoding.EncodeToString(audio),
	})
}

// QueueMessage appends an assistant_message frame.
func (m *MockConn) QueueMessage(content string) {
	m.QueueJSON(map[string]any{
		"type":    frameAssistantMessage,
		"message": map[string]string{"content": content},
	})
}

// QueueEnd appends the terminal assistant_end frame.
func (m *MockConn) QueueEnd() {
	m.QueueJSON(map[string]string{"type": frameAssistantEnd})
}

// WriteJSON implements Conn.
func (m *MockConn) WriteJSON(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Written = append(m.Written, v)
	return nil
}

// ReadMessage implements Conn.
func (m *MockConn) ReadMessage() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, errMockClosed
	}
	if m.next >= len(m.script) {
		if m.ReadErr != nil {
			return nil, m.ReadErr
		}
		return nil, errMockClosed
	}

	data := m.script[m.next]
	m.next++
	return data, nil
}

// SetReadDeadline implements Conn.
func (m *MockConn) SetReadDeadline(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deadline = t
	return nil
}

// Close implements Conn.
func (m *MockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	m.closed = true
	return nil
}

// Verify MockConn implements Conn at compile time.
var _ Conn = (*MockConn)(nil)
