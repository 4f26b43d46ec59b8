package emotion

// Score is one named emotion with its confidence.
type Score struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// FramePrediction is the per-frame result of face analysis.
type FramePrediction struct {
	Emotions []Score `json:"emotions"`
}

// NoValidResults marks a track where no analysis request produced a
// usable result.
const NoValidResults = "no valid results to aggregate"

// Summary is the aggregated result of one track.
type Summary struct {
	// TopEmotions holds the highest-ranked emotions by mean score,
	// highest first.
	TopEmotions []Score `json:"topEmotions,omitempty"`

	// Error is set to NoValidResults when the whole track failed.
	Error string `json:"error,omitempty"`
}

// Valid reports whether the track produced any usable result.
func (s Summary) Valid() bool {
	return s.Error == ""
}

// Practice holds both tracks of one practice analysis.
type Practice struct {
	Audio Summary `json:"audioAnalysis"`
	Video Summary `json:"videoAnalysis"`
}
