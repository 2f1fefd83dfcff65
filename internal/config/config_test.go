package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateRejectsBadCodec(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Video.Codec = "av1_qsv"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "video.codec") {
		t.Fatalf("expected codec error, got %v", err)
	}
}

func TestValidateRejectsOddDimensions(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Video.Width = 1081
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for odd width")
	}
}

func TestValidateRejectsNegativeCaptionGeometry(t *testing.T) {
	for _, mutate := range []func(*Config){
		func(c *Config) { c.Captions.ShadowStep = -1 },
		func(c *Config) { c.Captions.ShadowLength = -3 },
		func(c *Config) { c.Captions.StrokeWidth = -2 },
	} {
		cfg := Default()
		if err := cfg.normalize(); err != nil {
			t.Fatalf("normalize: %v", err)
		}
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for %+v", cfg.Captions)
		}
	}
}

func TestLoadAppliesDefaultsToPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "[video]\nwidth = 3840\nheight = 2160\n\n[paths]\nassets_dir = \"" + dir + "\"\noutput_dir = \"" + dir + "\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Video.Width != 3840 || cfg.Video.Height != 2160 {
		t.Fatalf("explicit values lost: %dx%d", cfg.Video.Width, cfg.Video.Height)
	}
	if cfg.Video.FPS != 30 {
		t.Fatalf("default fps not applied: %d", cfg.Video.FPS)
	}
	if cfg.Audio.MuxTimeoutSeconds != 120 {
		t.Fatalf("default mux timeout not applied: %d", cfg.Audio.MuxTimeoutSeconds)
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Video.FPS != 30 {
		t.Fatalf("defaults not applied: fps=%d", cfg.Video.FPS)
	}
}

func TestNormalizeExpandsPaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.OutputDir = "./out"
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("output dir not absolutized: %s", cfg.Paths.OutputDir)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample should load cleanly: exists=%v err=%v", exists, err)
	}
}
