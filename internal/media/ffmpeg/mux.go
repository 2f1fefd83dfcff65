package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/iamvalenciia/zero-sum/internal/config"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// MuxParams describes one audio mux invocation. MusicPath and
// TransitionSound are optional; TransitionTimes is ignored when no
// transition sound is configured.
type MuxParams struct {
	VideoPath       string
	NarrationPath   string
	MusicPath       string
	TransitionSound string
	TransitionTimes []float64
	NarrationEnd    float64
	OutputPath      string
}

// Mux combines the encoded video with narration, looped background music,
// and transition effects in a single ffmpeg run. The video stream is copied,
// never re-encoded. Callers bound the run with a context deadline.
func Mux(ctx context.Context, cfg *config.Config, p MuxParams) error {
	// The effect is centered on its marker, so its onset leads the cut by
	// half its length. An unprobeable file degrades to marker-aligned.
	sfxDur := 0.0
	if strings.TrimSpace(p.TransitionSound) != "" && len(p.TransitionTimes) > 0 {
		if dur, err := Duration(ctx, cfg.Paths.FFprobeBinary, p.TransitionSound); err == nil {
			sfxDur = dur
		}
	}

	args := muxArgs(cfg, p, sfxDur)
	binary := strings.TrimSpace(cfg.Paths.FFmpegBinary)
	if binary == "" {
		binary = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrMuxFailure, "mux", "run ffmpeg", detail, services.ErrTimeout)
		}
		return services.Wrap(services.ErrMuxFailure, "mux", "run ffmpeg", detail, err)
	}
	return nil
}

// muxArgs builds the full ffmpeg argument list. Input order is video,
// narration, optional music, then one transition input per marker.
func muxArgs(cfg *config.Config, p MuxParams, sfxDur float64) []string {
	args := []string{
		"-hide_banner", "-v", "error", "-y",
		"-i", p.VideoPath,
		"-i", p.NarrationPath,
	}

	hasMusic := strings.TrimSpace(p.MusicPath) != ""
	sfx := strings.TrimSpace(p.TransitionSound)
	markers := p.TransitionTimes
	if sfx == "" {
		markers = nil
	}

	if hasMusic {
		args = append(args, "-stream_loop", "-1", "-i", p.MusicPath)
	}
	for range markers {
		args = append(args, "-i", sfx)
	}

	var filters []string
	var mixInputs []string

	filters = append(filters, fmt.Sprintf("[1:a]volume=%.3f[nar]", cfg.Audio.NarrationVolume))
	mixInputs = append(mixInputs, "[nar]")

	nextInput := 2
	if hasMusic {
		// Music ducks under narration, then boosts once narration ends so
		// the outro tail is not near-silent.
		filters = append(filters, fmt.Sprintf(
			"[%d:a]volume='if(gte(t,%.3f),%.3f,%.3f)':eval=frame[mus]",
			nextInput, p.NarrationEnd,
			cfg.Audio.MusicVolume*cfg.Audio.TailBoost,
			cfg.Audio.MusicVolume))
		mixInputs = append(mixInputs, "[mus]")
		nextInput++
	}
	for i, at := range markers {
		start := at - sfxDur/2
		if start < 0 {
			start = 0
		}
		ms := int(start * 1000)
		filters = append(filters, fmt.Sprintf(
			"[%d:a]adelay=%d|%d,volume=%.3f[sfx%d]",
			nextInput, ms, ms, cfg.Audio.TransitionVolume, i))
		mixInputs = append(mixInputs, fmt.Sprintf("[sfx%d]", i))
		nextInput++
	}

	if len(mixInputs) == 1 {
		filters[0] = fmt.Sprintf("[1:a]volume=%.3f[aout]", cfg.Audio.NarrationVolume)
	} else {
		// duration=longest keeps the looped music running past the
		// narration; -shortest trims the mix to the video length.
		filters = append(filters, fmt.Sprintf(
			"%samix=inputs=%d:duration=longest:normalize=0[aout]",
			strings.Join(mixInputs, ""), len(mixInputs)))
	}

	args = append(args,
		"-filter_complex", strings.Join(filters, ";"),
		"-map", "0:v",
		"-map", "[aout]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", fmt.Sprintf("%d", cfg.Audio.SampleRate),
		"-shortest",
		p.OutputPath,
	)
	return args
}
