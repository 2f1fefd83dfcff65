package config

import "strings"

// normalize expands and absolutizes path fields and fills zero values with
// defaults so a partially specified file still yields a usable config.
func (c *Config) normalize() error {
	defaults := Default()

	pathFields := []*string{
		&c.Paths.AssetsDir,
		&c.Paths.OutputDir,
		&c.Paths.LogDir,
		&c.Paths.StatusFile,
		&c.Video.OutroImage,
		&c.Audio.TransitionSound,
		&c.Captions.FontPath,
	}
	for _, field := range pathFields {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if strings.TrimSpace(c.Paths.FFmpegBinary) == "" {
		c.Paths.FFmpegBinary = defaults.Paths.FFmpegBinary
	}
	if strings.TrimSpace(c.Paths.FFprobeBinary) == "" {
		c.Paths.FFprobeBinary = defaults.Paths.FFprobeBinary
	}

	if c.Video.Width == 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height == 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS == 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	c.Video.Codec = strings.ToLower(strings.TrimSpace(c.Video.Codec))
	if c.Video.Codec == "" {
		c.Video.Codec = defaults.Video.Codec
	}
	if strings.TrimSpace(c.Video.Preset) == "" {
		c.Video.Preset = defaults.Video.Preset
	}
	if strings.TrimSpace(c.Video.Bitrate) == "" {
		c.Video.Bitrate = defaults.Video.Bitrate
	}
	if c.Video.TitleSizeRatio == 0 {
		c.Video.TitleSizeRatio = defaults.Video.TitleSizeRatio
	}
	if c.Video.TitleYRatio == 0 {
		c.Video.TitleYRatio = defaults.Video.TitleYRatio
	}
	if c.Video.ImageCacheSize == 0 {
		c.Video.ImageCacheSize = defaults.Video.ImageCacheSize
	}
	if c.Video.CardCacheSize == 0 {
		c.Video.CardCacheSize = defaults.Video.CardCacheSize
	}

	if c.Audio.NarrationVolume == 0 {
		c.Audio.NarrationVolume = defaults.Audio.NarrationVolume
	}
	if c.Audio.MusicVolume == 0 {
		c.Audio.MusicVolume = defaults.Audio.MusicVolume
	}
	if c.Audio.TailBoost == 0 {
		c.Audio.TailBoost = defaults.Audio.TailBoost
	}
	if c.Audio.TransitionVolume == 0 {
		c.Audio.TransitionVolume = defaults.Audio.TransitionVolume
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = defaults.Audio.SampleRate
	}
	if c.Audio.MuxTimeoutSeconds == 0 {
		c.Audio.MuxTimeoutSeconds = defaults.Audio.MuxTimeoutSeconds
	}

	if c.Captions.SizeRatio == 0 {
		c.Captions.SizeRatio = defaults.Captions.SizeRatio
	}
	if c.Captions.BottomMarginRatio == 0 {
		c.Captions.BottomMarginRatio = defaults.Captions.BottomMarginRatio
	}
	if c.Captions.StrokeWidth == 0 {
		c.Captions.StrokeWidth = defaults.Captions.StrokeWidth
	}
	if c.Captions.ShadowLength == 0 {
		c.Captions.ShadowLength = defaults.Captions.ShadowLength
	}
	if c.Captions.ShadowStep == 0 {
		c.Captions.ShadowStep = defaults.Captions.ShadowStep
	}
	if c.Captions.SuppressAboveOpacity == 0 {
		c.Captions.SuppressAboveOpacity = defaults.Captions.SuppressAboveOpacity
	}

	if c.Timeline.MinSyllableSeconds == 0 {
		c.Timeline.MinSyllableSeconds = defaults.Timeline.MinSyllableSeconds
	}
	if c.Timeline.MaxSyllableSeconds == 0 {
		c.Timeline.MaxSyllableSeconds = defaults.Timeline.MaxSyllableSeconds
	}
	if c.Timeline.ShortWordSeconds == 0 {
		c.Timeline.ShortWordSeconds = defaults.Timeline.ShortWordSeconds
	}
	if c.Timeline.FadeInSeconds == 0 {
		c.Timeline.FadeInSeconds = defaults.Timeline.FadeInSeconds
	}
	if c.Timeline.FadeOutSeconds == 0 {
		c.Timeline.FadeOutSeconds = defaults.Timeline.FadeOutSeconds
	}
	if c.Timeline.OpeningSeconds == 0 {
		c.Timeline.OpeningSeconds = defaults.Timeline.OpeningSeconds
	}
	if c.Timeline.DigitWeight == 0 {
		c.Timeline.DigitWeight = defaults.Timeline.DigitWeight
	}
	if c.Timeline.MinSearchWindow == 0 {
		c.Timeline.MinSearchWindow = defaults.Timeline.MinSearchWindow
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
