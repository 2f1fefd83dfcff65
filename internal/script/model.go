package script

import "strings"

// Epsilon is the time tolerance used when checking word containment and
// segment coverage.
const Epsilon = 1e-6

// Word is a recognized token with its time span in the narration track.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the word's span length, never negative.
func (w Word) Duration() float64 {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start
}

// PoseSpan renders the character with Pose for aligned word indexes in the
// inclusive range [StartWord, EndWord].
type PoseSpan struct {
	Pose      string `json:"pose"`
	StartWord int    `json:"start_word"`
	EndWord   int    `json:"end_word"`
}

// Contains reports whether the span covers aligned word index idx.
func (p PoseSpan) Contains(idx int) bool {
	return idx >= p.StartWord && idx <= p.EndWord
}

// VisualAsset is an illustration declared on a segment. ID and Description
// come from the script; the remaining fields are filled in by the timeline
// builder once the asset is resolved and scheduled.
type VisualAsset struct {
	ID           string  `json:"id"`
	Description  string  `json:"description,omitempty"`
	ResolvedPath string  `json:"resolved_path,omitempty"`
	Start        float64 `json:"start,omitempty"`
	End          float64 `json:"end,omitempty"`
	IsOpening    bool    `json:"is_opening,omitempty"`
	FadeInEnd    float64 `json:"fade_in_end,omitempty"`
	FadeOutStart float64 `json:"fade_out_start,omitempty"`
}

// Segment is one authored dialogue line with its alignment results.
// Start, End, and Words are zero until alignment runs.
type Segment struct {
	Index     int           `json:"index"`
	Character Character     `json:"-"`
	Text      string        `json:"text"`
	Start     float64       `json:"start"`
	End       float64       `json:"end"`
	Words     []Word        `json:"words,omitempty"`
	Poses     []PoseSpan    `json:"poses,omitempty"`
	Assets    []VisualAsset `json:"illustrations,omitempty"`
}

// ScriptWords returns the authored text split on whitespace. Pose span
// indexes refer to positions in this slice.
func (s *Segment) ScriptWords() []string {
	return strings.Fields(s.Text)
}

// Duration returns the aligned span length, never negative.
func (s *Segment) Duration() float64 {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Midpoint returns the temporal midpoint of the aligned span.
func (s *Segment) Midpoint() float64 {
	return s.Start + s.Duration()/2
}

// PoseAt returns the pose active at aligned word index idx. Indexes not
// covered by any span fall back to the first declared span, then to the
// character default.
func (s *Segment) PoseAt(idx int) string {
	for _, span := range s.Poses {
		if span.Contains(idx) {
			return span.Pose
		}
	}
	if len(s.Poses) > 0 {
		return s.Poses[0].Pose
	}
	return s.Character.DefaultPose()
}
