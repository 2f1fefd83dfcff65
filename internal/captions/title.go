package captions

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/iamvalenciia/zero-sum/internal/config"
)

// RenderTitle draws the episode title as a standalone bitmap: white text
// with a black stroke, sized relative to the frame height. The renderer
// blits it once per frame during the opening.
func RenderTitle(cfg *config.Config, text string) (image.Image, error) {
	if text == "" {
		return nil, nil
	}
	size := cfg.Video.TitleSizeRatio * float64(cfg.Video.Height)
	face, err := loadFace(cfg.Captions.FontPath, size)
	if err != nil {
		return nil, err
	}

	measure := gg.NewContext(1, 1)
	measure.SetFontFace(face)
	maxW := float64(cfg.Video.Width) * 0.9
	lines := measure.WordWrap(text, maxW)

	lineH := size * 1.3
	stroke := 4
	pad := stroke + 4
	h := int(lineH*float64(len(lines))) + 2*pad
	w := cfg.Video.Width

	dc := gg.NewContext(w, h)
	dc.SetFontFace(face)
	for li, line := range lines {
		lw, _ := dc.MeasureString(line)
		x := (float64(w) - lw) / 2
		y := float64(pad) + lineH*float64(li) + size

		dc.SetColor(color.Black)
		for dx := -stroke; dx <= stroke; dx++ {
			for dy := -stroke; dy <= stroke; dy++ {
				if dx*dx+dy*dy > stroke*stroke {
					continue
				}
				dc.DrawString(line, x+float64(dx), y+float64(dy))
			}
		}
		dc.SetColor(color.White)
		dc.DrawString(line, x, y)
	}
	return dc.Image(), nil
}
