// Package render drives the frame loop: it composes every output frame,
// streams them to the encoder, and muxes the audio tracks into the final
// video.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"github.com/iamvalenciia/zero-sum/internal/assets"
	"github.com/iamvalenciia/zero-sum/internal/captions"
	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/media/ffmpeg"
	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/status"
	"github.com/iamvalenciia/zero-sum/internal/timeline"
)

// Params carries the inputs of one render invocation.
type Params struct {
	Timeline      *timeline.Timeline
	NarrationPath string
	MusicPath     string
	OutputPath    string
	RenderID      string
}

// Result reports what landed on disk. VideoOnly is set when the audio mux
// failed and the silent video was kept instead.
type Result struct {
	OutputPath string
	VideoOnly  bool
	Frames     int
	Duration   float64
	Codec      string
}

// Renderer renders one timeline to a finished video file.
type Renderer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a renderer.
func New(cfg *config.Config, logger *slog.Logger) *Renderer {
	return &Renderer{cfg: cfg, logger: logging.NewComponentLogger(logger, "render")}
}

// Render runs the full pipeline: codec selection, frame loop, encode, mux.
// A failed mux degrades to a video-only result rather than failing the run;
// only missing inputs abort.
func (r *Renderer) Render(ctx context.Context, p Params) (*Result, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "render", "prepare directories", "", err)
	}

	// One render per output directory at a time.
	lock := flock.New(filepath.Join(r.cfg.Paths.OutputDir, ".zerosum.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "render", "acquire lock", "", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrValidation, "render", "acquire lock", "another render is already running in this output directory", nil)
	}
	defer func() { _ = lock.Unlock() }()

	tracker := status.NewTracker(r.cfg.Paths.StatusFile, p.RenderID, r.logger)
	tracker.Update("starting", 0, "", true)

	catalog, err := assets.LoadCatalog(r.cfg.Paths.AssetsDir, r.cfg.Video.ImageCacheSize, r.logger)
	if err != nil {
		return nil, err
	}
	gen, err := captions.NewGenerator(r.cfg, p.Timeline.Segments)
	if err != nil {
		return nil, err
	}
	comp, err := newCompositor(r.cfg, p.Timeline, catalog, gen, r.logger)
	if err != nil {
		return nil, err
	}

	narrationDur, err := ffmpeg.Duration(ctx, r.cfg.Paths.FFprobeBinary, p.NarrationPath)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "render", "probe narration", p.NarrationPath, err)
	}

	duration := math.Max(p.Timeline.NarrationEnd, narrationDur) + r.cfg.Video.TailSeconds
	fps := r.cfg.Video.FPS
	totalFrames := int(duration * float64(fps))
	if totalFrames <= 0 {
		return nil, services.Wrap(services.ErrFatalInput, "render", "frame count", "timeline has no duration", nil)
	}

	codec := ffmpeg.SelectCodec(ctx, r.cfg.Paths.FFmpegBinary, r.cfg.Video.Codec, r.logger)
	r.logger.Info("starting render",
		"frames", totalFrames, "fps", fps, "codec", codec,
		"duration", fmt.Sprintf("%.2fs", duration), "output", p.OutputPath)

	videoPath := videoOnlyPath(p.OutputPath)
	enc, err := ffmpeg.StartEncoder(ctx, r.cfg, codec, videoPath)
	if err != nil {
		return nil, err
	}

	sampler := logging.NewProgressSampler(10)
	for i := 0; i < totalFrames; i++ {
		select {
		case <-ctx.Done():
			_ = enc.Close()
			_ = os.Remove(videoPath)
			return nil, services.Wrap(services.ErrTimeout, "render", "frame loop", "canceled", ctx.Err())
		default:
		}

		t := float64(i) / float64(fps)
		frame := comp.composeFrame(t)
		if err := enc.WriteFrame(frame.Pix); err != nil {
			_ = enc.Close()
			return nil, err
		}

		percent := float64(i+1) / float64(totalFrames) * 100
		if sampler.ShouldLog(percent, "rendering") {
			r.logger.Info("render progress", "percent", int(percent), "frame", i+1, "total", totalFrames)
		}
		tracker.Update("rendering", percent, fmt.Sprintf("frame %d/%d", i+1, totalFrames), false)
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}
	tracker.Update("muxing", 0, "", true)

	result := &Result{
		OutputPath: p.OutputPath,
		Frames:     totalFrames,
		Duration:   duration,
		Codec:      codec,
	}

	muxCtx := ctx
	if timeout := r.cfg.MuxTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		muxCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	muxErr := ffmpeg.Mux(muxCtx, r.cfg, ffmpeg.MuxParams{
		VideoPath:       videoPath,
		NarrationPath:   p.NarrationPath,
		MusicPath:       p.MusicPath,
		TransitionSound: r.cfg.Audio.TransitionSound,
		TransitionTimes: p.Timeline.Transitions,
		NarrationEnd:    p.Timeline.NarrationEnd,
		OutputPath:      p.OutputPath,
	})
	if muxErr != nil {
		// The encoded frames are too expensive to throw away; keep the
		// silent video and let the caller decide what to do with it.
		r.logger.Warn("audio mux failed, keeping video-only output", "video", videoPath, "error", muxErr)
		result.OutputPath = videoPath
		result.VideoOnly = true
		tracker.Update("partial", 100, "mux failed, video-only output kept", true)
		return result, nil
	}

	_ = os.Remove(videoPath)
	tracker.Update("complete", 100, "", true)
	r.logger.Info("render complete", "output", p.OutputPath, "frames", totalFrames)
	return result, nil
}

// videoOnlyPath names the intermediate silent video next to the final output.
func videoOnlyPath(output string) string {
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + ".video" + ext
}
