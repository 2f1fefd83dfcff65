package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// testConfig writes a config file whose paths all live under a temp dir.
func testConfig(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	path := filepath.Join(base, "zerosum.toml")
	writeFile(t, path, `
[paths]
assets_dir = "`+filepath.Join(base, "assets")+`"
output_dir = "`+filepath.Join(base, "output")+`"
log_dir = "`+filepath.Join(base, "logs")+`"
status_file = "`+filepath.Join(base, "output", "render_status.json")+`"
`)
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestAlignCommandWritesOutput(t *testing.T) {
	cfgPath := testConfig(t)
	dir := t.TempDir()

	scriptPath := filepath.Join(dir, "script.json")
	writeFile(t, scriptPath, `{
		"title": "Pilot",
		"segments": [
			{"character": "analyst", "text": "hello there friend"},
			{"character": "skeptic", "text": "well now"}
		]
	}`)

	transcriptPath := filepath.Join(dir, "transcript.json")
	writeFile(t, transcriptPath, `{
		"words": [
			{"word": "hello", "start": 0.0, "end": 0.4},
			{"word": "there", "start": 0.4, "end": 0.8},
			{"word": "friend", "start": 0.8, "end": 1.2},
			{"word": "well", "start": 1.4, "end": 1.7},
			{"word": "now", "start": 1.7, "end": 2.0}
		]
	}`)

	outPath := filepath.Join(dir, "aligned.json")
	out, err := execute(t, "--config", cfgPath, "align",
		"--script", scriptPath, "--transcript", transcriptPath, "--output", outPath)
	if err != nil {
		t.Fatalf("align: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Aligned 2 segments") {
		t.Fatalf("output: %s", out)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read aligned: %v", err)
	}
	var decoded struct {
		Segments []map[string]any `json:"segments"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("parse aligned: %v", err)
	}
	if len(decoded.Segments) != 2 {
		t.Fatalf("aligned segments: %d", len(decoded.Segments))
	}
}

func TestAlignCommandRequiresFlags(t *testing.T) {
	cfgPath := testConfig(t)
	if _, err := execute(t, "--config", cfgPath, "align"); err == nil {
		t.Fatal("align without flags should fail")
	}
}

func TestConfigInitCommand(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := execute(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	// Second init without overwrite refuses to clobber.
	if _, err := execute(t, "config", "init", "--path", target); err == nil {
		t.Fatal("init over an existing file should fail")
	}
	if _, err := execute(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with overwrite: %v", err)
	}
}

func TestConfigShowCommand(t *testing.T) {
	cfgPath := testConfig(t)
	out, err := execute(t, "--config", cfgPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "[video]") || !strings.Contains(out, "width") {
		t.Fatalf("show output missing sections: %s", out)
	}
}

func TestRenderCommandMissingScript(t *testing.T) {
	cfgPath := testConfig(t)
	_, err := execute(t, "--config", cfgPath, "render",
		"--script", "/nonexistent/script.json",
		"--transcript", "/nonexistent/transcript.json",
		"--audio", "/nonexistent/narration.wav")
	if err == nil {
		t.Fatal("render with missing inputs should fail")
	}
}
