// Package timeline turns aligned segments into the deterministic per-frame
// render schedule: mouth animation events, illustration fade windows, and
// transition markers.
package timeline

import (
	"log/slog"
	"math"

	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// AnimationFrameEvent covers the video frames of one mouth state while a
// word is being spoken.
type AnimationFrameEvent struct {
	Start     float64
	End       float64
	Segment   int
	WordIndex int
	Pose      string
	Character script.Character
	MouthOpen bool
}

// Timeline is the immutable render schedule. Nothing mutates it once the
// renderer starts its frame loop.
type Timeline struct {
	Title        string
	Segments     []script.Segment
	Frames       []AnimationFrameEvent
	Assets       []script.VisualAsset
	Transitions  []float64
	NarrationEnd float64
}

// Resolver maps an illustration id to an image file path.
type Resolver interface {
	Resolve(id string) (string, error)
}

// Builder derives the render timeline from aligned segments.
type Builder struct {
	cfg      config.Timeline
	fps      int
	resolver Resolver
	logger   *slog.Logger
}

// NewBuilder constructs a timeline builder. The resolver may be nil, in
// which case every illustration is skipped (and logged).
func NewBuilder(cfg *config.Config, resolver Resolver, logger *slog.Logger) *Builder {
	return &Builder{
		cfg:      cfg.Timeline,
		fps:      cfg.Video.FPS,
		resolver: resolver,
		logger:   logging.NewComponentLogger(logger, "timeline"),
	}
}

// Build produces the render timeline. Unresolvable illustrations are logged
// and dropped; alignment problems have already been settled upstream, so
// the only failure mode left is an empty segment list.
func (b *Builder) Build(title string, segments []script.Segment) (*Timeline, error) {
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "timeline", "build", "no aligned segments", nil)
	}

	tl := &Timeline{
		Title:        title,
		Segments:     segments,
		NarrationEnd: segments[len(segments)-1].End,
	}

	for i := range segments {
		b.buildFrames(tl, &segments[i])
	}
	b.scheduleAssets(tl, segments)
	b.markTransitions(tl, segments)

	return tl, nil
}

// buildFrames emits per-frame mouth events for each word in the segment.
// The mouth is open for the first half of each syllable cycle; words too
// short to animate hold the mouth open for their whole span.
func (b *Builder) buildFrames(tl *Timeline, seg *script.Segment) {
	frameDur := 1.0 / float64(b.fps)
	for wi, word := range seg.Words {
		d := word.Duration()
		frames := int(math.Round(d * float64(b.fps)))
		if frames <= 0 {
			continue
		}
		pose := seg.PoseAt(wi)

		syllables := countSyllables(word.Text)
		cycle := d / float64(syllables)
		if cycle < b.cfg.MinSyllableSeconds {
			cycle = b.cfg.MinSyllableSeconds
		}
		if b.cfg.MaxSyllableSeconds > 0 && cycle > b.cfg.MaxSyllableSeconds {
			cycle = b.cfg.MaxSyllableSeconds
		}

		for f := 0; f < frames; f++ {
			offset := float64(f) * frameDur
			open := d < b.cfg.ShortWordSeconds || math.Mod(offset, cycle) < cycle/2
			tl.Frames = append(tl.Frames, AnimationFrameEvent{
				Start:     word.Start + offset,
				End:       word.Start + offset + frameDur,
				Segment:   seg.Index,
				WordIndex: wi,
				Pose:      pose,
				Character: seg.Character,
				MouthOpen: open,
			})
		}
	}
}

// scheduleAssets resolves illustration ids and assigns each one a disjoint
// sub-window with fade envelopes, clamped to the displayable span between
// the skip windows. The first segment's first illustration becomes the
// opening visual: fullscreen from t=0 with no fade-in, held at most the
// configured opening duration.
func (b *Builder) scheduleAssets(tl *Timeline, segments []script.Segment) {
	openingTaken := false
	for si := range segments {
		seg := &segments[si]
		resolved := make([]script.VisualAsset, 0, len(seg.Assets))
		for _, asset := range seg.Assets {
			path, err := b.resolve(asset.ID)
			if err != nil {
				b.logger.Warn("illustration not resolved, skipping",
					logging.Args(logging.Int(logging.FieldSegment, si), logging.String(logging.FieldAsset, asset.ID), logging.Error(err))...)
				continue
			}
			asset.ResolvedPath = path
			resolved = append(resolved, asset)
		}
		if len(resolved) == 0 {
			continue
		}

		if si == 0 && !openingTaken {
			opening := resolved[0]
			opening.IsOpening = true
			opening.Start = 0
			opening.End = seg.Midpoint()
			if b.cfg.OpeningSeconds > 0 && opening.End > b.cfg.OpeningSeconds {
				opening.End = b.cfg.OpeningSeconds
			}
			opening.FadeInEnd = 0
			opening.FadeOutStart = clampMin(opening.End-b.cfg.FadeOutSeconds, 0)
			b.appendAsset(tl, opening)
			resolved = resolved[1:]
			openingTaken = true
		}
		if len(resolved) == 0 {
			continue
		}

		windowStart := seg.Midpoint()
		windowEnd := seg.End
		if windowEnd <= windowStart {
			continue
		}
		span := (windowEnd - windowStart) / float64(len(resolved))
		for k := range resolved {
			asset := resolved[k]
			asset.Start = windowStart + float64(k)*span
			asset.End = windowStart + float64(k+1)*span
			asset.FadeInEnd = math.Min(asset.Start+b.cfg.FadeInSeconds, asset.End)
			asset.FadeOutStart = math.Max(asset.End-b.cfg.FadeOutSeconds, asset.FadeInEnd)
			b.appendAsset(tl, asset)
		}
	}
}

// appendAsset clamps the asset window to the span outside the head and tail
// skip windows, which suppress illustrations as well as captions. Windows
// clamped away entirely are dropped.
func (b *Builder) appendAsset(tl *Timeline, a script.VisualAsset) {
	lo := b.cfg.SkipStartSeconds
	hi := tl.NarrationEnd
	if b.cfg.SkipEndSeconds > 0 {
		hi = tl.NarrationEnd - b.cfg.SkipEndSeconds
	}
	if a.Start < lo {
		a.Start = lo
	}
	if a.End > hi {
		a.End = hi
	}
	if a.End <= a.Start {
		return
	}
	a.FadeInEnd = math.Min(math.Max(a.FadeInEnd, a.Start), a.End)
	a.FadeOutStart = math.Min(math.Max(a.FadeOutStart, a.FadeInEnd), a.End)
	tl.Assets = append(tl.Assets, a)
}

func (b *Builder) resolve(id string) (string, error) {
	if b.resolver == nil {
		return "", services.Wrap(services.ErrMissingAsset, "timeline", "resolve", "no image registry configured", nil)
	}
	return b.resolver.Resolve(id)
}

// markTransitions records the instants where the transition sound plays:
// the first segment and every speaking-character change.
func (b *Builder) markTransitions(tl *Timeline, segments []script.Segment) {
	for i, seg := range segments {
		if i == 0 || seg.Character != segments[i-1].Character {
			tl.Transitions = append(tl.Transitions, seg.Start)
		}
	}
}

// Opacity returns the fade-envelope opacity of asset a at time t: a linear
// ramp in and out, full opacity between, zero outside the window.
func Opacity(a script.VisualAsset, t float64) float64 {
	if t < a.Start || t > a.End {
		return 0
	}
	if t < a.FadeInEnd {
		ramp := a.FadeInEnd - a.Start
		if ramp <= 0 {
			return 1
		}
		return (t - a.Start) / ramp
	}
	if t > a.FadeOutStart {
		ramp := a.End - a.FadeOutStart
		if ramp <= 0 {
			return 1
		}
		return (a.End - t) / ramp
	}
	return 1
}

// ActiveAsset returns the scheduled asset covering time t, or nil.
func (tl *Timeline) ActiveAsset(t float64) *script.VisualAsset {
	for i := range tl.Assets {
		a := &tl.Assets[i]
		if t >= a.Start && t <= a.End {
			return a
		}
	}
	return nil
}

func clampMin(v, minimum float64) float64 {
	if v < minimum {
		return minimum
	}
	return v
}
