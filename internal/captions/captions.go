// Package captions pre-renders the currently spoken word as a bitmap with a
// stroke outline and trailing drop shadow.
package captions

import (
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// Entry is one caption: the raw spoken word and its time span.
type Entry struct {
	Start float64
	End   float64
	Text  string
}

// Generator holds the time-sorted caption entries for one render and a
// text-keyed cache of rendered bitmaps. Queries must come in increasing
// time order, which keeps the forward cursor cheap.
type Generator struct {
	entries      []Entry
	cache        map[string]image.Image
	face         font.Face
	fontSize     float64
	strokeWidth  int
	shadowLength int
	shadowStep   int
	cursor       int
}

// NewGenerator builds caption entries from all aligned words, honoring the
// configured skip windows at the head and tail of the narration.
func NewGenerator(cfg *config.Config, segments []script.Segment) (*Generator, error) {
	fontSize := cfg.Captions.SizeRatio * float64(cfg.Video.Height)
	face, err := loadFace(cfg.Captions.FontPath, fontSize)
	if err != nil {
		return nil, err
	}

	narrationEnd := 0.0
	if len(segments) > 0 {
		narrationEnd = segments[len(segments)-1].End
	}
	showFrom := cfg.Timeline.SkipStartSeconds
	showUntil := narrationEnd - cfg.Timeline.SkipEndSeconds

	g := &Generator{
		cache:        map[string]image.Image{},
		face:         face,
		fontSize:     fontSize,
		strokeWidth:  cfg.Captions.StrokeWidth,
		shadowLength: cfg.Captions.ShadowLength,
		shadowStep:   cfg.Captions.ShadowStep,
	}
	for _, seg := range segments {
		for _, w := range seg.Words {
			if w.Duration() <= 0 {
				continue
			}
			if w.Start < showFrom || w.End > showUntil {
				continue
			}
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			g.entries = append(g.entries, Entry{Start: w.Start, End: w.End, Text: text})
		}
	}
	sort.SliceStable(g.entries, func(a, b int) bool { return g.entries[a].Start < g.entries[b].Start })
	return g, nil
}

func loadFace(path string, size float64) (font.Face, error) {
	if path != "" {
		face, err := gg.LoadFontFace(path, size)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "captions", "load font", path, err)
		}
		return face, nil
	}
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "captions", "load font", "parse bundled face", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{Size: size}), nil
}

// Len returns the number of caption entries.
func (g *Generator) Len() int { return len(g.entries) }

// ActiveAt returns the rendered bitmap of the word spoken at time t, or
// false when no word is active. Callers must query with non-decreasing t.
func (g *Generator) ActiveAt(t float64) (image.Image, bool) {
	for g.cursor < len(g.entries) && g.entries[g.cursor].End < t {
		g.cursor++
	}
	if g.cursor >= len(g.entries) {
		return nil, false
	}
	e := g.entries[g.cursor]
	if t < e.Start || t > e.End {
		return nil, false
	}
	return g.render(e.Text), true
}

// Reset rewinds the forward cursor for a fresh pass over the timeline.
func (g *Generator) Reset() { g.cursor = 0 }

// render draws the word once and caches the bitmap by text, so repeated
// frames of the same spoken word reuse it.
func (g *Generator) render(text string) image.Image {
	if img, ok := g.cache[text]; ok {
		return img
	}

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(g.face)
	textW, textH := measure.MeasureString(text)

	pad := g.strokeWidth + g.shadowLength + 4
	w := int(textW) + 2*pad
	h := int(textH) + 2*pad

	dc := gg.NewContext(w, h)
	dc.SetFontFace(g.face)
	x := float64(pad)
	y := float64(pad) + textH

	// Trailing drop shadow: stepped black copies fading out along the
	// diagonal. A non-positive step disables the shadow.
	if g.shadowStep > 0 {
		steps := 0
		for o := g.shadowStep; o <= g.shadowLength; o += g.shadowStep {
			steps++
		}
		i := 0
		for o := g.shadowStep; o <= g.shadowLength; o += g.shadowStep {
			alpha := 0.6 * (1 - float64(i)/float64(steps))
			dc.SetRGBA(0, 0, 0, alpha)
			dc.DrawString(text, x+float64(o), y+float64(o))
			i++
		}
	}

	// Stroke outline: black copies around the glyph perimeter.
	dc.SetColor(color.Black)
	s := g.strokeWidth
	for dx := -s; dx <= s; dx++ {
		for dy := -s; dy <= s; dy++ {
			if dx*dx+dy*dy > s*s {
				continue
			}
			dc.DrawString(text, x+float64(dx), y+float64(dy))
		}
	}

	dc.SetColor(color.White)
	dc.DrawString(text, x, y)

	img := dc.Image()
	g.cache[text] = img
	return img
}
