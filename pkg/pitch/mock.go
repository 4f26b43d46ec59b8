package pitch

import (
	"context"
	"sync"
)

// Mock is a mock implementation of Provider for testing.
type Mock struct {
	mu sync.Mutex

	// NameValue is the provider id the mock reports. Defaults to "mock".
	NameValue string

	// Configurable behavior
	CompleteFunc func(ctx context.Context, req *CompletionRequest) (string, error)
	ValidateFunc func(ctx context.Context) error

	// Captured calls for assertions
	CompleteCalls int
	ValidateCalls int
	LastRequest   *CompletionRequest
}

// NewMock creates a new Mock provider.
func NewMock() *Mock {
	return &Mock{NameValue: "mock"}
}

// Name implements Provider.
func (m *Mock) Name() string {
	if m.NameValue == "" {
		return "mock"
	}
	return m.NameValue
}

// Complete implements Provider.
func (m *Mock) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	m.mu.Lock()
	m.CompleteCalls++
	m.LastRequest = req
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Validate implements Provider.
func (m *Mock) Validate(ctx context.Context) error {
	m.mu.Lock()
	m.ValidateCalls++
	m.mu.Unlock()

	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Close implements Provider.
func (m *Mock) Close() error {
	return nil
}

// Calls returns the number of Complete invocations.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompleteCalls
}

// Verify Mock implements Provider at compile time.
var _ Provider = (*Mock)(nil)
