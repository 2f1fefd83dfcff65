package timeline

import (
	"sort"

	"github.com/iamvalenciia/zero-sum/internal/script"
)

// Locator finds the segment covering a query time. The renderer queries with
// non-decreasing times, so the common case is the current or next segment;
// anything further ahead falls back to a binary search over segment start
// times. The probe never moves backward.
type Locator struct {
	tl      *Timeline
	current int
}

// NewLocator builds a locator over the timeline's segments.
func NewLocator(tl *Timeline) *Locator {
	return &Locator{tl: tl}
}

// SegmentAt returns the segment whose span covers t, or nil when t falls
// before the probe position or past the last segment's end.
func (l *Locator) SegmentAt(t float64) *script.Segment {
	segs := l.tl.Segments
	if l.current >= len(segs) {
		return nil
	}

	if covers(&segs[l.current], t) {
		return &segs[l.current]
	}
	if l.current+1 < len(segs) && covers(&segs[l.current+1], t) {
		l.current++
		return &segs[l.current]
	}

	idx := sort.Search(len(segs), func(i int) bool { return segs[i].Start > t }) - 1
	if idx < l.current {
		return nil
	}
	l.current = idx
	if covers(&segs[idx], t) {
		return &segs[idx]
	}
	return nil
}

func covers(seg *script.Segment, t float64) bool {
	return t >= seg.Start-script.Epsilon && t <= seg.End+script.Epsilon
}
