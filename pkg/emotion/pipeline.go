// Package emotion analyzes practice recordings for emotional delivery.
//
// A recording has an audio track and an optional video track. The audio
// track is split into fixed-duration WAV chunks, each scored
// concurrently against a remote prosody model; the video track is
// scored once, whole, against a face model. Per-emotion scores are then
// averaged over the chunks that reported them and ranked, yielding a
// compact top-N summary per track.
package emotion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Pipeline runs the full analysis of one practice recording.
type Pipeline struct {
	scorer Scorer
	config *Config
	logger *slog.Logger
}

// NewPipeline creates a Pipeline over the given scorer.
func NewPipeline(scorer Scorer, opts ...Option) (*Pipeline, error) {
	if scorer == nil {
		return nil, ErrNoScorer
	}

	cfg := DefaultConfig()
	cfg.Apply(opts...)
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Pipeline{
		scorer: scorer,
		config: cfg,
		logger: cfg.Logger.With("component", "emotion.pipeline"),
	}, nil
}

// AnalyzePractice chunks and scores both tracks concurrently. A track
// whose every request failed yields a NoValidResults summary; the
// sibling track is unaffected. Scratch files live only for the duration
// of the call.
func (p *Pipeline) AnalyzePractice(ctx context.Context, audio, video []byte) (*Practice, error) {
	scratch := filepath.Join(p.config.ScratchDir, "practice-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("emotion: create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			p.logger.Warn("failed to remove scratch dir", "dir", scratch, "error", err)
		}
	}()

	var chunks [][]byte
	if len(audio) > 0 {
		if err := os.WriteFile(filepath.Join(scratch, "practice.wav"), audio, 0o600); err != nil {
			return nil, fmt.Errorf("emotion: write scratch audio: %w", err)
		}

		var err error
		chunks, err = SplitWAV(audio, p.config.ChunkDuration)
		if err != nil {
			p.logger.Warn("audio chunking failed", "error", err)
		}
		for i, chunk := range chunks {
			name := filepath.Join(scratch, fmt.Sprintf("chunk_%d.wav", i))
			if err := os.WriteFile(name, chunk, 0o600); err != nil {
				return nil, fmt.Errorf("emotion: write scratch chunk: %w", err)
			}
		}
	}
	if len(video) > 0 {
		if err := os.WriteFile(filepath.Join(scratch, "practice.mp4"), video, 0o600); err != nil {
			return nil, fmt.Errorf("emotion: write scratch video: %w", err)
		}
	}

	p.logger.Info("analyzing practice",
		"audio_bytes", len(audio),
		"video_bytes", len(video),
		"chunks", len(chunks),
	)

	audioResults := make([][]Score, len(chunks))
	var videoResult []FramePrediction

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk []byte) {
			defer wg.Done()
			scores, err := p.scorer.ScoreAudio(ctx, chunk)
			if err != nil {
				p.logger.Warn("audio chunk analysis failed", "chunk", i, "error", err)
				return
			}
			audioResults[i] = scores
		}(i, chunk)
	}
	if len(video) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			preds, err := p.scorer.ScoreVideo(ctx, video)
			if err != nil {
				p.logger.Warn("video analysis failed", "error", err)
				return
			}
			videoResult = preds
		}()
	}
	wg.Wait()

	return &Practice{
		Audio: aggregate(audioResults, p.config.TopN),
		Video: aggregate(frameScores(videoResult), p.config.TopN),
	}, nil
}

// frameScores flattens per-frame face predictions into one score list
// per frame so both tracks aggregate the same way.
func frameScores(frames []FramePrediction) [][]Score {
	lists := make([][]Score, 0, len(frames))
	for _, frame := range frames {
		lists = append(lists, frame.Emotions)
	}
	return lists
}

// aggregate averages each emotion over the lists that report it and
// keeps the top N by mean, highest first. Ties break by name so the
// ranking is deterministic.
func aggregate(lists [][]Score, topN int) Summary {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, list := range lists {
		for _, s := range list {
			sums[s.Name] += s.Score
			counts[s.Name]++
		}
	}

	if len(sums) == 0 {
		return Summary{Error: NoValidResults}
	}

	ranked := make([]Score, 0, len(sums))
	for name, sum := range sums {
		ranked = append(ranked, Score{Name: name, Score: sum / float64(counts[name])})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Name < ranked[j].Name
	})

	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return Summary{TopEmotions: ranked}
}
