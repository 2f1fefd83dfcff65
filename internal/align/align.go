// Package align maps a flat ASR word stream onto ordered script segments.
package align

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/textnorm"
)

const (
	headMatchMax = 5
	headMatchMin = 2
)

// Aligner assigns transcript words to script segments using a proportional
// estimate refined by bounded sequential boundary searches.
type Aligner struct {
	minWindow   int
	digitWeight float64
	logger      *slog.Logger
}

// New builds an aligner from the timeline configuration.
func New(cfg config.Timeline, logger *slog.Logger) *Aligner {
	minWindow := cfg.MinSearchWindow
	if minWindow <= 0 {
		minWindow = 20
	}
	digitWeight := cfg.DigitWeight
	if digitWeight < 1 {
		digitWeight = 1.5
	}
	return &Aligner{
		minWindow:   minWindow,
		digitWeight: digitWeight,
		logger:      logging.NewComponentLogger(logger, "aligner"),
	}
}

// Align enriches segments with transcript words and timing. It consumes
// every word exactly once: segment ranges are contiguous, and the cursor
// only moves forward. Alignment never fails once both inputs are non-empty;
// unmatched sequences degrade to the proportional estimate.
func (a *Aligner) Align(segments []script.Segment, words []script.Word) ([]script.Segment, error) {
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "aligner", "align", "no script segments", nil)
	}
	if len(words) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "aligner", "align", "no transcript words", nil)
	}

	out := make([]script.Segment, len(segments))
	copy(out, segments)

	normWords := make([]string, len(words))
	for i, w := range words {
		normWords[i] = normalizeToken(w.Text)
	}

	normSegs := make([][]string, len(segments))
	estimates := a.estimate(segments, len(words), normSegs)

	cursor := 0
	prevEnd := 0.0
	for i := range out {
		seg := &out[i]

		// Head match anchors the window for end detection. The assigned
		// range always begins at the cursor so no word is orphaned.
		start := cursor
		if idx, ok := findSequence(normWords, headTokens(normSegs[i]), cursor, a.window(estimates[i])); ok {
			start = idx
		} else if cursor < len(normWords) {
			a.logger.Warn("segment head not found, using cursor",
				logging.Args(logging.Int(logging.FieldSegment, i), logging.Int("cursor", cursor),
					logging.Error(services.ErrAlignment))...)
		}

		end := len(words)
		if i < len(out)-1 {
			end = a.findEnd(normWords, normSegs, i, start, estimates[i])
			if end < cursor {
				end = cursor
			}
			if end > len(words) {
				end = len(words)
			}
		}

		seg.Words = append([]script.Word(nil), words[cursor:end]...)
		if len(seg.Words) > 0 {
			seg.Start = seg.Words[0].Start
			seg.End = seg.Words[len(seg.Words)-1].End
		} else {
			seg.Start = prevEnd
			seg.End = prevEnd
		}
		prevEnd = seg.End
		cursor = end
	}

	return out, nil
}

// estimate distributes the transcript length across segments proportionally
// to normalized word counts, weighting digit-bearing segments heavier since
// numeral expansion inflates their transcript share.
func (a *Aligner) estimate(segments []script.Segment, total int, normSegs [][]string) []int {
	weights := make([]float64, len(segments))
	var totalWeight float64
	for i, seg := range segments {
		normSegs[i] = textnorm.Normalize(seg.Text)
		w := float64(len(normSegs[i]))
		if strings.ContainsAny(seg.Text, "0123456789") {
			w *= a.digitWeight
		}
		if w <= 0 {
			w = 1
		}
		weights[i] = w
		totalWeight += w
	}

	estimates := make([]int, len(segments))
	assigned := 0
	for i, w := range weights {
		estimates[i] = int(float64(total) * w / totalWeight)
		assigned += estimates[i]
	}
	// Remainder folds into the last segment.
	estimates[len(estimates)-1] += total - assigned
	return estimates
}

// findEnd picks the boundary between segment i and i+1 from two candidates
// inside a window centered on the proportional estimate. The next segment's
// head match wins over the current segment's tail match whenever both exist,
// even when the tail match sits closer to the estimate.
func (a *Aligner) findEnd(normWords []string, normSegs [][]string, i, start, estimate int) int {
	expected := start + estimate
	window := a.window(estimate)
	from := expected - window
	if from < start {
		from = start
	}
	span := 2 * window

	if idx, ok := findSequence(normWords, headTokens(normSegs[i+1]), from, span); ok {
		return idx
	}
	if end, ok := findSequenceEnd(normWords, tailTokens(normSegs[i]), from, span); ok {
		return end
	}

	a.logger.Warn("no boundary match, using proportional estimate",
		logging.Args(logging.Int(logging.FieldSegment, i), logging.Int("estimate", expected),
			logging.Error(services.ErrAlignment))...)
	if expected > len(normWords) {
		return len(normWords)
	}
	return expected
}

func (a *Aligner) window(estimate int) int {
	w := estimate / 2
	if w < a.minWindow {
		w = a.minWindow
	}
	return w
}

// findSequence scans positions [from, from+span] for an exact normalized
// match of the target's leading tokens, trying match lengths from
// headMatchMax down to headMatchMin.
func findSequence(normWords []string, target []string, from, span int) (int, bool) {
	if from < 0 {
		from = 0
	}
	maxLen := headMatchMax
	if len(target) < maxLen {
		maxLen = len(target)
	}
	for l := maxLen; l >= headMatchMin; l-- {
		limit := from + span
		if limit > len(normWords)-l {
			limit = len(normWords) - l
		}
		for pos := from; pos <= limit; pos++ {
			if matchAt(normWords, target, pos, l) {
				return pos, true
			}
		}
	}
	return 0, false
}

// findSequenceEnd is findSequence over the target's trailing tokens,
// returning the index just past the match.
func findSequenceEnd(normWords []string, tail []string, from, span int) (int, bool) {
	if from < 0 {
		from = 0
	}
	maxLen := headMatchMax
	if len(tail) < maxLen {
		maxLen = len(tail)
	}
	for l := maxLen; l >= headMatchMin; l-- {
		target := tail[len(tail)-l:]
		limit := from + span
		if limit > len(normWords)-l {
			limit = len(normWords) - l
		}
		for pos := from; pos <= limit; pos++ {
			if matchAt(normWords, target, pos, l) {
				return pos + l, true
			}
		}
	}
	return 0, false
}

func matchAt(normWords, target []string, pos, l int) bool {
	for k := 0; k < l; k++ {
		if normWords[pos+k] == "" || normWords[pos+k] != target[k] {
			return false
		}
	}
	return true
}

func headTokens(tokens []string) []string {
	if len(tokens) > headMatchMax {
		return tokens[:headMatchMax]
	}
	return tokens
}

func tailTokens(tokens []string) []string {
	if len(tokens) > headMatchMax {
		return tokens[len(tokens)-headMatchMax:]
	}
	return tokens
}

func normalizeToken(text string) string {
	tokens := textnorm.Normalize(text)
	if len(tokens) == 0 {
		return ""
	}
	return strings.Join(tokens, " ")
}

// Describe returns a short per-segment boundary summary, used by the CLI
// preview table.
func Describe(seg script.Segment) string {
	return fmt.Sprintf("%d words, %.2fs-%.2fs", len(seg.Words), seg.Start, seg.End)
}
