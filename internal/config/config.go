package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and external binary configuration.
type Paths struct {
	AssetsDir     string `toml:"assets_dir"`
	OutputDir     string `toml:"output_dir"`
	LogDir        string `toml:"log_dir"`
	StatusFile    string `toml:"status_file"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
}

// Video contains frame geometry and encoder configuration.
type Video struct {
	Width          int     `toml:"width"`
	Height         int     `toml:"height"`
	FPS            int     `toml:"fps"`
	Codec          string  `toml:"codec"`
	Preset         string  `toml:"preset"`
	Bitrate        string  `toml:"bitrate"`
	TailSeconds    float64 `toml:"tail_seconds"`
	OutroImage     string  `toml:"outro_image"`
	TitleSizeRatio float64 `toml:"title_size_ratio"`
	TitleYRatio    float64 `toml:"title_y_ratio"`
	ImageCacheSize int     `toml:"image_cache_size"`
	CardCacheSize  int     `toml:"card_cache_size"`
}

// Audio contains mixing volumes and the mux deadline.
type Audio struct {
	NarrationVolume   float64 `toml:"narration_volume"`
	MusicVolume       float64 `toml:"music_volume"`
	TailBoost         float64 `toml:"tail_boost"`
	TransitionSound   string  `toml:"transition_sound"`
	TransitionVolume  float64 `toml:"transition_volume"`
	SampleRate        int     `toml:"sample_rate"`
	MuxTimeoutSeconds int     `toml:"mux_timeout_seconds"`
}

// Captions contains word caption rendering configuration.
type Captions struct {
	FontPath             string  `toml:"font_path"`
	SizeRatio            float64 `toml:"size_ratio"`
	BottomMarginRatio    float64 `toml:"bottom_margin_ratio"`
	StrokeWidth          int     `toml:"stroke_width"`
	ShadowLength         int     `toml:"shadow_length"`
	ShadowStep           int     `toml:"shadow_step"`
	SuppressAboveOpacity float64 `toml:"suppress_above_opacity"`
}

// Timeline contains alignment and animation timing configuration.
type Timeline struct {
	MinSyllableSeconds float64 `toml:"min_syllable_seconds"`
	MaxSyllableSeconds float64 `toml:"max_syllable_seconds"`
	ShortWordSeconds   float64 `toml:"short_word_seconds"`
	FadeInSeconds      float64 `toml:"fade_in_seconds"`
	FadeOutSeconds     float64 `toml:"fade_out_seconds"`
	OpeningSeconds     float64 `toml:"opening_seconds"`
	DigitWeight        float64 `toml:"digit_weight"`
	MinSearchWindow    int     `toml:"min_search_window"`
	SkipStartSeconds   float64 `toml:"skip_start_seconds"`
	SkipEndSeconds     float64 `toml:"skip_end_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the render engine.
//
// Configuration sections by subsystem:
//   - Paths: asset/output/log directories and external binaries
//   - Video: frame geometry, encoder selection, outro tail
//   - Audio: narration/music/transition mixing and mux deadline
//   - Captions: font and caption drawing parameters
//   - Timeline: alignment weights and animation timing
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Video    Video    `toml:"video"`
	Audio    Audio    `toml:"audio"`
	Captions Captions `toml:"captions"`
	Timeline Timeline `toml:"timeline"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/zerosum/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file existed at the resolved path.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("zerosum.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a render run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// MuxTimeout returns the audio mux deadline as a duration.
func (c *Config) MuxTimeout() time.Duration {
	if c.Audio.MuxTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Audio.MuxTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
