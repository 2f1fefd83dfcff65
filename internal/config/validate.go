package config

import (
	"fmt"
	"strings"
)

var validCodecs = map[string]bool{
	"auto":       true,
	"hevc_nvenc": true,
	"libx264":    true,
}

// Validate checks invariants that would otherwise surface deep inside the
// render loop. It assumes normalize has already run.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.AssetsDir) == "" {
		problems = append(problems, "paths.assets_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		problems = append(problems, "paths.output_dir must be set")
	}

	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		problems = append(problems, fmt.Sprintf("video dimensions must be positive, got %dx%d", c.Video.Width, c.Video.Height))
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		problems = append(problems, "video dimensions must be even for yuv420p output")
	}
	if c.Video.FPS <= 0 {
		problems = append(problems, fmt.Sprintf("video.fps must be positive, got %d", c.Video.FPS))
	}
	if !validCodecs[c.Video.Codec] {
		problems = append(problems, fmt.Sprintf("video.codec must be auto, hevc_nvenc, or libx264, got %q", c.Video.Codec))
	}
	if c.Video.TailSeconds < 0 {
		problems = append(problems, "video.tail_seconds must not be negative")
	}

	if c.Audio.NarrationVolume < 0 || c.Audio.MusicVolume < 0 {
		problems = append(problems, "audio volumes must not be negative")
	}
	if c.Audio.MuxTimeoutSeconds < 0 {
		problems = append(problems, "audio.mux_timeout_seconds must not be negative")
	}

	if c.Captions.SizeRatio <= 0 || c.Captions.SizeRatio >= 1 {
		problems = append(problems, "captions.size_ratio must be between 0 and 1")
	}
	if c.Captions.BottomMarginRatio < 0 || c.Captions.BottomMarginRatio >= 1 {
		problems = append(problems, "captions.bottom_margin_ratio must be between 0 and 1")
	}
	if c.Captions.StrokeWidth < 0 {
		problems = append(problems, "captions.stroke_width must not be negative")
	}
	if c.Captions.ShadowLength < 0 {
		problems = append(problems, "captions.shadow_length must not be negative")
	}
	if c.Captions.ShadowStep < 0 {
		problems = append(problems, "captions.shadow_step must not be negative")
	}

	if c.Timeline.MinSyllableSeconds <= 0 {
		problems = append(problems, "timeline.min_syllable_seconds must be positive")
	}
	if c.Timeline.MaxSyllableSeconds < c.Timeline.MinSyllableSeconds {
		problems = append(problems, "timeline.max_syllable_seconds must not be below the minimum")
	}
	if c.Timeline.DigitWeight < 1 {
		problems = append(problems, "timeline.digit_weight must be at least 1")
	}
	if c.Timeline.MinSearchWindow <= 0 {
		problems = append(problems, "timeline.min_search_window must be positive")
	}
	if c.Timeline.SkipStartSeconds < 0 || c.Timeline.SkipEndSeconds < 0 {
		problems = append(problems, "timeline skip windows must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
