package emotion

import (
	"context"
	"errors"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func newTestPipeline(t *testing.T, scorer Scorer, opts ...Option) *Pipeline {
	t.Helper()
	opts = append([]Option{
		WithScratchDir(t.TempDir()),
		WithChunkDuration(5 * time.Second),
	}, opts...)
	p, err := NewPipeline(scorer, opts...)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return p
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzePractice(t *testing.T) {
	t.Run("means averaged over reporting chunks only", func(t *testing.T) {
		// 10s at 5s chunks: two chunks. One reports joy only, the
		// other joy and calm. Calm's mean must ignore the chunk that
		// never mentioned it.
		audio := makeWAV(t, 10, 100)

		var call atomic.Int64
		scorer := NewMockScorer()
		scorer.ScoreAudioFunc = func(ctx context.Context, wav []byte) ([]Score, error) {
			if call.Add(1) == 1 {
				return []Score{{Name: "joy", Score: 0.8}}, nil
			}
			return []Score{{Name: "joy", Score: 0.4}, {Name: "calm", Score: 0.6}}, nil
		}

		p := newTestPipeline(t, scorer)

		result, err := p.AnalyzePractice(context.Background(), audio, nil)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if !result.Audio.Valid() {
			t.Fatalf("expected valid audio summary, got %q", result.Audio.Error)
		}

		got := make(map[string]float64)
		for _, s := range result.Audio.TopEmotions {
			got[s.Name] = s.Score
		}
		if !approx(got["joy"], 0.6) {
			t.Errorf("expected joy mean 0.6, got %v", got["joy"])
		}
		if !approx(got["calm"], 0.6) {
			t.Errorf("expected calm mean 0.6, got %v", got["calm"])
		}
		if len(result.Audio.TopEmotions) != 2 {
			t.Errorf("expected 2 ranked emotions, got %d", len(result.Audio.TopEmotions))
		}
	})

	t.Run("keeps top five by mean descending", func(t *testing.T) {
		audio := makeWAV(t, 4, 100)

		scorer := NewMockScorer()
		scorer.ScoreAudioFunc = func(ctx context.Context, wav []byte) ([]Score, error) {
			return []Score{
				{Name: "boredom", Score: 0.1},
				{Name: "joy", Score: 0.9},
				{Name: "calm", Score: 0.5},
				{Name: "doubt", Score: 0.2},
				{Name: "pride", Score: 0.7},
				{Name: "awe", Score: 0.3},
				{Name: "interest", Score: 0.6},
			}, nil
		}

		p := newTestPipeline(t, scorer)

		result, err := p.AnalyzePractice(context.Background(), audio, nil)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		top := result.Audio.TopEmotions
		if len(top) != 5 {
			t.Fatalf("expected top 5, got %d", len(top))
		}
		if top[0].Name != "joy" {
			t.Errorf("expected joy first, got %s", top[0].Name)
		}
		for i := 1; i < len(top); i++ {
			if top[i].Score > top[i-1].Score {
				t.Errorf("ranking not descending at %d: %v", i, top)
			}
		}
	})

	t.Run("one goroutine per chunk plus one for video", func(t *testing.T) {
		audio := makeWAV(t, 23, 100) // 5 chunks: 5,5,5,5,3
		video := []byte("clip")

		scorer := NewMockScorer()
		scorer.ScoreVideoFunc = func(ctx context.Context, clip []byte) ([]FramePrediction, error) {
			return []FramePrediction{{Emotions: []Score{{Name: "joy", Score: 0.5}}}}, nil
		}

		p := newTestPipeline(t, scorer)

		if _, err := p.AnalyzePractice(context.Background(), audio, video); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if scorer.Audio() != 5 {
			t.Errorf("expected 5 audio requests, got %d", scorer.Audio())
		}
		if scorer.Video() != 1 {
			t.Errorf("expected 1 video request, got %d", scorer.Video())
		}
	})

	t.Run("all audio failures still return video track", func(t *testing.T) {
		audio := makeWAV(t, 10, 100)
		video := []byte("clip")

		scorer := NewMockScorer()
		scorer.ScoreAudioFunc = func(ctx context.Context, wav []byte) ([]Score, error) {
			return nil, errors.New("service unavailable")
		}
		scorer.ScoreVideoFunc = func(ctx context.Context, clip []byte) ([]FramePrediction, error) {
			return []FramePrediction{
				{Emotions: []Score{{Name: "concentration", Score: 0.7}}},
				{Emotions: []Score{{Name: "concentration", Score: 0.5}}},
			}, nil
		}

		p := newTestPipeline(t, scorer)

		result, err := p.AnalyzePractice(context.Background(), audio, video)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if result.Audio.Error != NoValidResults {
			t.Errorf("expected no-valid-results marker, got %q", result.Audio.Error)
		}
		if !result.Video.Valid() {
			t.Fatalf("video track should survive audio failures: %q", result.Video.Error)
		}
		if !approx(result.Video.TopEmotions[0].Score, 0.6) {
			t.Errorf("expected frame mean 0.6, got %v", result.Video.TopEmotions[0].Score)
		}
	})

	t.Run("malformed audio yields marker not failure", func(t *testing.T) {
		p := newTestPipeline(t, NewMockScorer())

		result, err := p.AnalyzePractice(context.Background(), []byte("not audio"), nil)
		if err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if result.Audio.Error != NoValidResults {
			t.Errorf("expected no-valid-results marker, got %q", result.Audio.Error)
		}
	})

	t.Run("no video skips the video request", func(t *testing.T) {
		audio := makeWAV(t, 4, 100)
		scorer := NewMockScorer()

		p := newTestPipeline(t, scorer)
		if _, err := p.AnalyzePractice(context.Background(), audio, nil); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}
		if scorer.Video() != 0 {
			t.Errorf("expected no video request, got %d", scorer.Video())
		}
	})

	t.Run("requires a scorer", func(t *testing.T) {
		if _, err := NewPipeline(nil); !errors.Is(err, ErrNoScorer) {
			t.Errorf("expected ErrNoScorer, got %v", err)
		}
	})
}

func TestScratchCleanup(t *testing.T) {
	t.Run("removed after success", func(t *testing.T) {
		dir := t.TempDir()
		audio := makeWAV(t, 10, 100)

		p := newTestPipeline(t, NewMockScorer(), WithScratchDir(dir))
		if _, err := p.AnalyzePractice(context.Background(), audio, []byte("clip")); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("read scratch parent: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("scratch dir leaked: %v", entries)
		}
	})

	t.Run("removed when every request fails", func(t *testing.T) {
		dir := t.TempDir()
		audio := makeWAV(t, 10, 100)

		scorer := NewMockScorer()
		scorer.ScoreAudioFunc = func(ctx context.Context, wav []byte) ([]Score, error) {
			return nil, errors.New("boom")
		}

		p := newTestPipeline(t, scorer, WithScratchDir(dir))
		if _, err := p.AnalyzePractice(context.Background(), audio, nil); err != nil {
			t.Fatalf("analyze failed: %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("scratch dir leaked: %v", entries)
		}
	})
}
