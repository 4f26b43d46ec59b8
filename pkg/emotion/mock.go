package emotion

import (
	"context"
	"sync"
)

// MockScorer is a mock implementation of Scorer for testing.
type MockScorer struct {
	mu sync.Mutex

	// Configurable behavior
	ScoreAudioFunc func(ctx context.Context, wav []byte) ([]Score, error)
	ScoreVideoFunc func(ctx context.Context, clip []byte) ([]FramePrediction, error)

	// Captured calls for assertions
	AudioCalls int
	VideoCalls int
}

// NewMockScorer creates a new MockScorer.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// ScoreAudio implements Scorer.
func (m *MockScorer) ScoreAudio(ctx context.Context, wav []byte) ([]Score, error) {
	m.mu.Lock()
	m.AudioCalls++
	m.mu.Unlock()

	if m.ScoreAudioFunc != nil {
		return m.ScoreAudioFunc(ctx, wav)
	}
	return nil, nil
}

// ScoreVideo implements Scorer.
func (m *MockScorer) ScoreVideo(ctx context.Context, clip []byte) ([]FramePrediction, error) {
	m.mu.Lock()
	m.VideoCalls++
	m.mu.Unlock()

	if m.ScoreVideoFunc != nil {
		return m.ScoreVideoFunc(ctx, clip)
	}
	return nil, nil
}

// Audio reports the number of ScoreAudio invocations.
func (m *MockScorer) Audio() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AudioCalls
}

// Video reports the number of ScoreVideo invocations.
func (m *MockScorer) Video() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VideoCalls
}

// Verify MockScorer implements Scorer at compile time.
var _ Scorer = (*MockScorer)(nil)
