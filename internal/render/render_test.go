package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/iamvalenciia/zero-sum/internal/assets"
	"github.com/iamvalenciia/zero-sum/internal/captions"
	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/testsupport"
	"github.com/iamvalenciia/zero-sum/internal/timeline"
)

// encodeStub behaves like ffmpeg for every call shape the renderer makes:
// it consumes piped frames and creates the output file named by the last
// argument. When failMux is set, any filter_complex invocation fails.
func encodeStub(t *testing.T, failMux bool) string {
	t.Helper()
	body := `
case "$*" in
  *filter_complex*)
`
	if failMux {
		body += `    echo "mux boom" >&2; exit 1
`
	} else {
		body += `    :
`
	}
	body += `    ;;
esac
cat > /dev/null 2>/dev/null
for last; do :; done
if [ "$last" != "-" ]; then : > "$last"; fi
exit 0
`
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func probeStub(t *testing.T, seconds string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(path, []byte("#!/bin/sh\necho \""+seconds+"\"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func renderFixture(t *testing.T) (*config.Config, *timeline.Timeline) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithVideoSize(8, 8))
	cfg.Video.FPS = 2
	cfg.Video.TailSeconds = 0.5

	testsupport.WritePNG(t, filepath.Join(cfg.Paths.AssetsDir, "poses", "neutral_open.png"), 4, 4, color.White)
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.AssetsDir, "poses", "neutral_closed.png"), 4, 4, color.Black)
	testsupport.WriteJSON(t, filepath.Join(cfg.Paths.AssetsDir, "pose_catalog.json"), `{
		"poses": [
			{"id": "neutral", "mouth_open": "poses/neutral_open.png", "mouth_closed": "poses/neutral_closed.png"}
		]
	}`)

	seg := script.Segment{
		Index:     0,
		Character: script.CharacterAnalyst,
		Text:      "hello there",
		Start:     0,
		End:       1.0,
		Words: []script.Word{
			{Text: "hello", Start: 0, End: 0.5},
			{Text: "there", Start: 0.5, End: 1.0},
		},
	}
	tl := &timeline.Timeline{
		Title:        "Test Episode",
		Segments:     []script.Segment{seg},
		NarrationEnd: 1.0,
		Transitions:  []float64{0},
		Frames: []timeline.AnimationFrameEvent{
			{Start: 0, End: 0.5, Segment: 0, WordIndex: 0, Pose: "neutral", Character: script.CharacterAnalyst, MouthOpen: true},
			{Start: 0.5, End: 1.0, Segment: 0, WordIndex: 1, Pose: "neutral", Character: script.CharacterAnalyst, MouthOpen: false},
		},
	}
	return cfg, tl
}

func TestRenderFullPipeline(t *testing.T) {
	cfg, tl := renderFixture(t)
	cfg.Paths.FFmpegBinary = encodeStub(t, false)
	cfg.Paths.FFprobeBinary = probeStub(t, "1.0")

	out := filepath.Join(cfg.Paths.OutputDir, "episode.mp4")
	r := New(cfg, nil)
	res, err := r.Render(context.Background(), Params{
		Timeline:      tl,
		NarrationPath: "narration.wav",
		OutputPath:    out,
		RenderID:      "r1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if res.VideoOnly {
		t.Fatal("successful mux should not be video-only")
	}
	if res.OutputPath != out {
		t.Fatalf("output path: %s", res.OutputPath)
	}
	// 1.0s narration + 0.5s tail at 2 fps.
	if res.Frames != 3 {
		t.Fatalf("frames: %d", res.Frames)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(videoOnlyPath(out)); !os.IsNotExist(err) {
		t.Fatal("intermediate video should be removed after a successful mux")
	}
}

func TestRenderMuxFailureKeepsVideo(t *testing.T) {
	cfg, tl := renderFixture(t)
	cfg.Paths.FFmpegBinary = encodeStub(t, true)
	cfg.Paths.FFprobeBinary = probeStub(t, "1.0")

	out := filepath.Join(cfg.Paths.OutputDir, "episode.mp4")
	r := New(cfg, nil)
	res, err := r.Render(context.Background(), Params{
		Timeline:      tl,
		NarrationPath: "narration.wav",
		OutputPath:    out,
		RenderID:      "r1",
	})
	if err != nil {
		t.Fatalf("mux failure should degrade, not fail: %v", err)
	}
	if !res.VideoOnly {
		t.Fatal("result should be marked video-only")
	}
	if res.OutputPath != videoOnlyPath(out) {
		t.Fatalf("video-only path: %s", res.OutputPath)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Fatalf("video-only output missing: %v", err)
	}
}

func TestRenderMissingCatalogAborts(t *testing.T) {
	cfg, tl := renderFixture(t)
	cfg.Paths.FFmpegBinary = encodeStub(t, false)
	cfg.Paths.FFprobeBinary = probeStub(t, "1.0")
	if err := os.Remove(filepath.Join(cfg.Paths.AssetsDir, "pose_catalog.json")); err != nil {
		t.Fatalf("remove catalog: %v", err)
	}

	r := New(cfg, nil)
	_, err := r.Render(context.Background(), Params{
		Timeline:      tl,
		NarrationPath: "narration.wav",
		OutputPath:    filepath.Join(cfg.Paths.OutputDir, "episode.mp4"),
	})
	if err == nil {
		t.Fatal("missing pose catalog must abort the render")
	}
}

func TestVideoOnlyPath(t *testing.T) {
	if got := videoOnlyPath("/out/episode.mp4"); got != "/out/episode.video.mp4" {
		t.Fatalf("video path: %s", got)
	}
}

func TestCompositorEventCursor(t *testing.T) {
	cfg, tl := renderFixture(t)
	catalog := loadCatalog(t, cfg)
	gen, err := captions.NewGenerator(cfg, tl.Segments)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	comp, err := newCompositor(cfg, tl, catalog, gen, nil)
	if err != nil {
		t.Fatalf("compositor: %v", err)
	}

	ev := comp.eventAt(0.1)
	if ev == nil || !ev.MouthOpen {
		t.Fatalf("event at 0.1: %+v", ev)
	}
	ev = comp.eventAt(0.7)
	if ev == nil || ev.WordIndex != 1 {
		t.Fatalf("event at 0.7: %+v", ev)
	}
	// Past the last event the previous pose is held with the mouth closed.
	ev = comp.eventAt(1.5)
	if ev == nil || ev.MouthOpen {
		t.Fatalf("held event at 1.5: %+v", ev)
	}
}

func TestComposeFrameGeometry(t *testing.T) {
	cfg, tl := renderFixture(t)
	catalog := loadCatalog(t, cfg)
	gen, err := captions.NewGenerator(cfg, tl.Segments)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	comp, err := newCompositor(cfg, tl, catalog, gen, nil)
	if err != nil {
		t.Fatalf("compositor: %v", err)
	}

	frame := comp.composeFrame(0.25)
	if frame.Bounds().Dx() != 8 || frame.Bounds().Dy() != 8 {
		t.Fatalf("frame bounds: %v", frame.Bounds())
	}
	if len(frame.Pix) != 8*8*4 {
		t.Fatalf("pixel buffer: %d", len(frame.Pix))
	}
}

// newTestCompositor builds a compositor with no caption entries, so layer
// tests can probe pixels without caption bitmaps in the way.
func newTestCompositor(t *testing.T, cfg *config.Config, tl *timeline.Timeline) *compositor {
	t.Helper()
	catalog := loadCatalog(t, cfg)
	gen, err := captions.NewGenerator(cfg, nil)
	if err != nil {
		t.Fatalf("captions: %v", err)
	}
	comp, err := newCompositor(cfg, tl, catalog, gen, nil)
	if err != nil {
		t.Fatalf("compositor: %v", err)
	}
	return comp
}

// writeSplitPNG writes pose art with a white left half and black right half.
func writeSplitPNG(t *testing.T, path string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{A: 255}
			if x < size/2 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create png: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
}

func TestComposeFramePoseFillsFrame(t *testing.T) {
	cfg, tl := renderFixture(t)
	tl.Title = ""
	comp := newTestCompositor(t, cfg, tl)

	// The 4x4 mouth-open art is scaled to cover the whole 8x8 frame,
	// corners included.
	frame := comp.composeFrame(0.25)
	for _, pt := range []image.Point{{0, 0}, {7, 0}, {0, 7}, {7, 7}} {
		r, g, b, _ := frame.At(pt.X, pt.Y).RGBA()
		if r>>8 < 250 || g>>8 < 250 || b>>8 < 250 {
			t.Fatalf("pose art does not cover %v: %v", pt, frame.At(pt.X, pt.Y))
		}
	}
}

func TestIllustrationBackdropBlursPoseBackground(t *testing.T) {
	cfg, tl := renderFixture(t)
	tl.Title = ""
	// Two-tone pose art: blurring it mixes the halves, so a corner pixel
	// under the backdrop is neither pure white nor pure black. The card
	// path is unreadable on purpose, leaving only the backdrop layer.
	writeSplitPNG(t, filepath.Join(cfg.Paths.AssetsDir, "poses", "neutral_open.png"), 8)
	tl.Assets = []script.VisualAsset{{
		ID:           "hook",
		Start:        0,
		End:          0.5,
		FadeInEnd:    0,
		FadeOutStart: 0.5,
		ResolvedPath: filepath.Join(cfg.Paths.AssetsDir, "unreadable.png"),
	}}
	comp := newTestCompositor(t, cfg, tl)

	frame := comp.composeFrame(0.25)
	r, _, _, _ := frame.At(0, 0).RGBA()
	if v := r >> 8; v > 235 || v < 20 {
		t.Fatalf("corner should show the blurred pose backdrop, got %v", frame.At(0, 0))
	}
}

func TestTitleDeferredOnlyForOpeningIllustration(t *testing.T) {
	opening := &script.VisualAsset{IsOpening: true}
	card := &script.VisualAsset{}
	if !titleDeferred(opening, 1) {
		t.Fatal("title must move above a visible opening illustration")
	}
	if titleDeferred(opening, 0) {
		t.Fatal("a faded-out opening illustration should not defer the title")
	}
	if titleDeferred(card, 1) {
		t.Fatal("later cards render above the title, not under it")
	}
	if titleDeferred(nil, 0) {
		t.Fatal("no active illustration, nothing to defer")
	}
}

func TestCompositorReportsUnknownPoseUpFront(t *testing.T) {
	cfg, tl := renderFixture(t)
	tl.Frames[1].Pose = "grimace"
	comp := newTestCompositor(t, cfg, tl)

	if !comp.missingPose["grimace"] {
		t.Fatal("unknown pose should be flagged when the compositor is built")
	}
	if comp.missingPose["neutral"] {
		t.Fatal("catalog pose wrongly flagged")
	}
	// The frame still renders via the character default pose.
	frame := comp.composeFrame(0.7)
	r, _, _, _ := frame.At(0, 0).RGBA()
	if r>>8 > 5 {
		t.Fatalf("default pose is the closed black art, got %v", frame.At(0, 0))
	}
}

func loadCatalog(t *testing.T, cfg *config.Config) *assets.Catalog {
	t.Helper()
	c, err := assets.LoadCatalog(cfg.Paths.AssetsDir, cfg.Video.ImageCacheSize, nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c
}
