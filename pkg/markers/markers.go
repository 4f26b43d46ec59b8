// Package markers extracts labeled segments from generated text.
//
// Generation prompts instruct the model to wrap each segment in
// [LABELk]...[/LABELk] tags. This package is the single place that
// parsing lives; call sites must not re-implement substring scanning.
package markers

import (
	"fmt"
	"strings"
)

// Extract locates [LABELk]...[/LABELk] pairs for k in 1..n and returns the
// trimmed enclosed segments in order. A missing pair is skipped, not an
// error, so the result may be shorter than n. No pairs found returns an
// empty slice; the caller decides whether that is fatal.
func Extract(raw, label string, n int) []string {
	segments := make([]string, 0, n)
	rest := raw

	for k := 1; k <= n; k++ {
		open := fmt.Sprintf("[%s%d]", label, k)
		close := fmt.Sprintf("[/%s%d]", label, k)

		start := strings.Index(rest, open)
		if start < 0 {
			continue
		}
		body := rest[start+len(open):]

		end := strings.Index(body, close)
		if end < 0 {
			continue
		}

		segments = append(segments, strings.TrimSpace(body[:end]))

		// Markers must appear in order: resume scanning after this pair.
		rest = body[end+len(close):]
	}

	return segments
}
