package config

// Default returns a configuration populated with baseline values. Paths are
// left relative; normalize expands them before use.
func Default() Config {
	return Config{
		Paths: Paths{
			AssetsDir:     "~/zerosum/assets",
			OutputDir:     "~/zerosum/output",
			LogDir:        "~/zerosum/logs",
			StatusFile:    "~/zerosum/output/render_status.json",
			FFmpegBinary:  "ffmpeg",
			FFprobeBinary: "ffprobe",
		},
		Video: Video{
			Width:          1080,
			Height:         1920,
			FPS:            30,
			Codec:          "auto",
			Preset:         "p4",
			Bitrate:        "8M",
			TailSeconds:    6.0,
			TitleSizeRatio: 0.05,
			TitleYRatio:    0.12,
			ImageCacheSize: 20,
			CardCacheSize:  30,
		},
		Audio: Audio{
			NarrationVolume:   1.0,
			MusicVolume:       0.3,
			TailBoost:         2.0,
			TransitionVolume:  0.7,
			SampleRate:        44100,
			MuxTimeoutSeconds: 120,
		},
		Captions: Captions{
			SizeRatio:            0.085,
			BottomMarginRatio:    0.08,
			StrokeWidth:          10,
			ShadowLength:         10,
			ShadowStep:           2,
			SuppressAboveOpacity: 0.1,
		},
		Timeline: Timeline{
			MinSyllableSeconds: 0.10,
			MaxSyllableSeconds: 0.40,
			ShortWordSeconds:   0.08,
			FadeInSeconds:      0.3,
			FadeOutSeconds:     0.5,
			OpeningSeconds:     2.5,
			DigitWeight:        1.5,
			MinSearchWindow:    20,
		},
		Logging: Logging{
			Format: "auto",
			Level:  "info",
		},
	}
}
