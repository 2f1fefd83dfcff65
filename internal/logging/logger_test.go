package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/iamvalenciia/zero-sum/internal/services"
)

func TestPrettyHandlerHoistsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	NewComponentLogger(logger, "renderer").Info("frame loop started", Int("fps", 30))

	line := buf.String()
	if !strings.Contains(line, "renderer: frame loop started") {
		t.Fatalf("component not hoisted into prefix: %q", line)
	}
	if !strings.Contains(line, "fps=30") {
		t.Fatalf("attribute missing: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not appear as key=value: %q", line)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	logger.Info("mux done", String("output", "final video.mp4"))
	if !strings.Contains(buf.String(), `output="final video.mp4"`) {
		t.Fatalf("value with space not quoted: %q", buf.String())
	}
}

func TestWithContextAddsRenderFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newPrettyHandler(&buf, lvl, false))

	ctx := services.WithRenderID(context.Background(), "abc-123")
	ctx = services.WithStage(ctx, "align")
	WithContext(ctx, logger).Info("phase complete")

	line := buf.String()
	if !strings.Contains(line, "render_id=abc-123") || !strings.Contains(line, "stage=align") {
		t.Fatalf("context fields missing: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
