package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/iamvalenciia/zero-sum/internal/assets"
	"github.com/iamvalenciia/zero-sum/internal/captions"
	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/timeline"
)

// compositor draws one output frame at a time. It owns the per-render image
// caches and a forward cursor over the animation events, so frame times must
// be fed in increasing order.
type compositor struct {
	cfg      *config.Config
	catalog  *assets.Catalog
	cards    *assets.Cards
	frames   *assets.Frames
	captions *captions.Generator
	tl       *timeline.Timeline
	logger   *slog.Logger

	width, height int
	outro         image.Image
	title         image.Image

	poseFit     map[string]image.Image
	poseBlur    map[image.Image]image.Image
	missingPose map[string]bool
	locator     *timeline.Locator
	cursor      int
	lastEvent   *timeline.AnimationFrameEvent
}

func newCompositor(cfg *config.Config, tl *timeline.Timeline, catalog *assets.Catalog, gen *captions.Generator, logger *slog.Logger) (*compositor, error) {
	c := &compositor{
		cfg:         cfg,
		catalog:     catalog,
		cards:       assets.NewCards(cfg.Video.CardCacheSize),
		frames:      assets.NewFrames(cfg.Video.ImageCacheSize),
		captions:    gen,
		tl:          tl,
		logger:      logging.NewComponentLogger(logger, "render"),
		width:       cfg.Video.Width,
		height:      cfg.Video.Height,
		poseFit:     map[string]image.Image{},
		poseBlur:    map[image.Image]image.Image{},
		missingPose: map[string]bool{},
		locator:     timeline.NewLocator(tl),
	}

	if cfg.Video.OutroImage != "" {
		outro, err := c.frames.Fit(cfg.Video.OutroImage, c.width, c.height, assets.FitCover)
		if err != nil {
			c.logger.Warn("outro image unavailable", "path", cfg.Video.OutroImage, "error", err)
		} else {
			c.outro = outro
		}
	}

	title, err := captions.RenderTitle(cfg, tl.Title)
	if err != nil {
		return nil, err
	}
	c.title = title

	// Poses the timeline references but the catalog lacks are reported
	// once up front rather than surfacing mid-loop.
	for i := range tl.Frames {
		pose := tl.Frames[i].Pose
		if c.missingPose[pose] || catalog.Has(pose) {
			continue
		}
		c.missingPose[pose] = true
		c.logger.Warn("pose not in catalog, using character default", "pose", pose)
	}

	return c, nil
}

// eventAt returns the animation event covering time t. Gaps between words
// reuse the previous event with the mouth closed, so the character does not
// flicker away between words.
func (c *compositor) eventAt(t float64) *timeline.AnimationFrameEvent {
	for c.cursor < len(c.tl.Frames) && c.tl.Frames[c.cursor].End <= t {
		c.cursor++
	}
	if c.cursor < len(c.tl.Frames) {
		ev := &c.tl.Frames[c.cursor]
		if t >= ev.Start {
			c.lastEvent = ev
			return ev
		}
	}
	if c.lastEvent != nil {
		held := *c.lastEvent
		held.MouthOpen = false
		return &held
	}
	return nil
}

// poseImage returns the pose art scaled and cropped to fill the frame,
// falling back to the character's default pose when the requested one is
// missing. Each missing pose is logged once.
func (c *compositor) poseImage(pose string, character script.Character, mouthOpen bool) image.Image {
	key := pose + "|closed"
	if mouthOpen {
		key = pose + "|open"
	}
	if img, ok := c.poseFit[key]; ok {
		return img
	}

	src, err := c.catalog.PoseImage(pose, mouthOpen)
	if err != nil {
		if errors.Is(err, services.ErrMissingAsset) {
			if !c.missingPose[pose] {
				c.missingPose[pose] = true
				c.logger.Warn("pose not available, using character default", "pose", pose, "error", err)
			}
			fallback := character.DefaultPose()
			if fallback != pose {
				return c.poseImage(fallback, character, mouthOpen)
			}
		}
		return nil
	}

	fitted := assets.FitImage(src, c.width, c.height, assets.FitCover)
	c.poseFit[key] = fitted
	return fitted
}

// backgroundAt resolves the frame-filling background art for time t: the
// pose of the word being spoken, or the speaker at rest during silence
// inside a segment.
func (c *compositor) backgroundAt(t float64) image.Image {
	if ev := c.eventAt(t); ev != nil {
		return c.poseImage(ev.Pose, ev.Character, ev.MouthOpen)
	}
	if seg := c.locator.SegmentAt(t); seg != nil {
		return c.poseImage(seg.Character.DefaultPose(), seg.Character, false)
	}
	return nil
}

// blurred returns the softened copy of a fitted background. Fitted poses
// are cached by poseImage, so keying on image identity stays bounded.
func (c *compositor) blurred(bg image.Image) image.Image {
	if img, ok := c.poseBlur[bg]; ok {
		return img
	}
	img := imaging.Blur(bg, 12)
	c.poseBlur[bg] = img
	return img
}

// composeFrame renders the frame at time t. Layer order is pose background,
// title, illustration over a blurred copy of that background, caption. The
// title moves above the opening illustration so it stays crisp on the first
// frames.
func (c *compositor) composeFrame(t float64) *image.RGBA {
	frame := image.NewRGBA(image.Rect(0, 0, c.width, c.height))

	if t >= c.tl.NarrationEnd && c.outro != nil {
		draw.Draw(frame, frame.Bounds(), c.outro, image.Point{}, draw.Src)
		return frame
	}

	bg := c.backgroundAt(t)
	if bg != nil {
		draw.Draw(frame, frame.Bounds(), bg, image.Point{}, draw.Src)
	} else {
		draw.Draw(frame, frame.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	}

	asset := c.tl.ActiveAsset(t)
	opacity := 0.0
	if asset != nil {
		opacity = timeline.Opacity(*asset, t)
	}

	showTitle := c.title != nil && len(c.tl.Segments) > 0 && t < c.tl.Segments[0].End
	if showTitle && !titleDeferred(asset, opacity) {
		c.drawTitle(frame)
	}
	if opacity > 0 {
		c.drawIllustration(frame, bg, asset, opacity)
	}
	if showTitle && titleDeferred(asset, opacity) {
		c.drawTitle(frame)
	}

	if opacity <= c.cfg.Captions.SuppressAboveOpacity {
		if caption, ok := c.captions.ActiveAt(t); ok {
			x := (c.width - caption.Bounds().Dx()) / 2
			y := c.height - int(c.cfg.Captions.BottomMarginRatio*float64(c.height)) - caption.Bounds().Dy()
			drawWithAlpha(frame, caption, image.Pt(x, y), 1.0)
		}
	}

	return frame
}

// titleDeferred reports whether the title is drawn above the illustration
// layer. Only the fullscreen opening illustration defers it; later cards
// slide over the title instead.
func titleDeferred(asset *script.VisualAsset, opacity float64) bool {
	return asset != nil && asset.IsOpening && opacity > 0
}

func (c *compositor) drawTitle(frame *image.RGBA) {
	y := int(c.cfg.Video.TitleYRatio * float64(c.height))
	drawWithAlpha(frame, c.title, image.Pt(0, y), 1.0)
}

// drawIllustration blends a blurred copy of the frame's background and the
// asset image at the fade-envelope opacity. The opening asset fills the
// frame; later assets render as cards.
func (c *compositor) drawIllustration(frame *image.RGBA, bg image.Image, asset *script.VisualAsset, opacity float64) {
	if bg != nil {
		drawWithAlpha(frame, c.blurred(bg), image.Point{}, opacity)
	}

	var img image.Image
	var err error
	if asset.IsOpening {
		img, err = c.frames.Fit(asset.ResolvedPath, c.width, c.height, assets.FitCover)
	} else {
		img, err = c.cards.Render(asset.ResolvedPath, int(float64(c.width)*0.8))
	}
	if err != nil {
		c.logger.Warn("illustration unreadable, skipping", "asset", asset.ID, "error", err)
		return
	}
	c.drawCentered(frame, img, opacity)
}

// drawCentered blits img centered in the frame.
func (c *compositor) drawCentered(frame *image.RGBA, img image.Image, opacity float64) {
	x := (c.width - img.Bounds().Dx()) / 2
	y := (c.height - img.Bounds().Dy()) / 2
	drawWithAlpha(frame, img, image.Pt(x, y), opacity)
}

// drawWithAlpha composites src over dst at the given offset with a uniform
// extra alpha.
func drawWithAlpha(dst *image.RGBA, src image.Image, at image.Point, opacity float64) {
	if opacity <= 0 {
		return
	}
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	if opacity >= 1 {
		draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
		return
	}
	mask := image.NewUniform(color.Alpha{A: uint8(opacity * 255)})
	draw.DrawMask(dst, r, src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}
