package assets

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

const (
	cardCornerRadius = 30
	cardBorderWidth  = 15
	cardShadowOffset = 15
	cardShadowBlur   = 10
)

// Cards produces illustration cards: the source image resized to a target
// width with rounded corners, a white border, and a soft drop shadow.
// Processed cards are cached by (path, width) so the frame loop pays blit
// cost only.
type Cards struct {
	cache *imageCache
}

// NewCards builds a card processor with a bounded cache.
func NewCards(cacheSize int) *Cards {
	return &Cards{cache: newImageCache(cacheSize)}
}

// Render returns the processed card for the image at path, scaled to
// targetWidth. The source must already be resolvable on disk.
func (c *Cards) Render(path string, targetWidth int) (image.Image, error) {
	key := fmt.Sprintf("%s|%d", path, targetWidth)
	if img, ok := c.cache.get(key); ok {
		return img, nil
	}

	src, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	card := buildCard(src, targetWidth)
	c.cache.put(key, card)
	return card, nil
}

func buildCard(src image.Image, targetWidth int) image.Image {
	if targetWidth < 2*cardBorderWidth+2 {
		targetWidth = 2*cardBorderWidth + 2
	}
	innerWidth := targetWidth - 2*cardBorderWidth
	resized := imaging.Resize(src, innerWidth, 0, imaging.Lanczos)
	innerHeight := resized.Bounds().Dy()

	cardW := innerWidth + 2*cardBorderWidth
	cardH := innerHeight + 2*cardBorderWidth

	// Canvas leaves room for the shadow's offset and blur radius.
	margin := cardShadowOffset + 2*cardShadowBlur
	canvasW := cardW + 2*margin
	canvasH := cardH + 2*margin

	// Shadow: a blurred rounded rectangle behind the card.
	shadow := gg.NewContext(canvasW, canvasH)
	shadow.SetRGBA(0, 0, 0, 0.55)
	shadow.DrawRoundedRectangle(
		float64(margin+cardShadowOffset), float64(margin+cardShadowOffset),
		float64(cardW), float64(cardH), cardCornerRadius)
	shadow.Fill()
	blurred := imaging.Blur(shadow.Image(), cardShadowBlur)

	dc := gg.NewContext(canvasW, canvasH)
	dc.DrawImage(blurred, 0, 0)

	// White border plate with rounded corners.
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(float64(margin), float64(margin), float64(cardW), float64(cardH), cardCornerRadius)
	dc.Fill()

	// Image clipped to slightly tighter rounded corners inside the border.
	dc.DrawRoundedRectangle(
		float64(margin+cardBorderWidth), float64(margin+cardBorderWidth),
		float64(innerWidth), float64(innerHeight), cardCornerRadius/2)
	dc.Clip()
	dc.DrawImage(resized, margin+cardBorderWidth, margin+cardBorderWidth)
	dc.ResetClip()

	return dc.Image()
}

// Frames caches full-frame fitted images keyed by (path, fit mode, size).
type Frames struct {
	cache *imageCache
}

// FitMode selects how an image fills the output frame.
type FitMode string

const (
	// FitCover scales and center-crops to fill the frame completely.
	FitCover FitMode = "cover"
	// FitContain scales to fit entirely inside the frame.
	FitContain FitMode = "contain"
)

// NewFrames builds a frame-fit cache.
func NewFrames(cacheSize int) *Frames {
	return &Frames{cache: newImageCache(cacheSize)}
}

// Fit returns the image at path scaled for a w by h frame under the given
// fit mode.
func (f *Frames) Fit(path string, w, h int, mode FitMode) (image.Image, error) {
	key := fmt.Sprintf("%s|%s|%dx%d", path, mode, w, h)
	if img, ok := f.cache.get(key); ok {
		return img, nil
	}

	src, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	var fitted image.Image
	switch mode {
	case FitContain:
		fitted = imaging.Fit(src, w, h, imaging.Lanczos)
	default:
		fitted = imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	}
	f.cache.put(key, fitted)
	return fitted, nil
}

// FitImage scales an already-decoded image the same way, without caching.
func FitImage(src image.Image, w, h int, mode FitMode) image.Image {
	switch mode {
	case FitContain:
		return imaging.Fit(src, w, h, imaging.Lanczos)
	default:
		return imaging.Fill(src, w, h, imaging.Center, imaging.Lanczos)
	}
}
