package status

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readSnapshot(t *testing.T, path string) Snapshot {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read status file: %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	return snap
}

func TestUpdateWritesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render_status.json")
	tr := NewTracker(path, "render-123", nil)

	tr.Update("rendering", 42.5, "frame 1275", false)

	snap := readSnapshot(t, path)
	if snap.Phase != "rendering" || snap.Percent != 42.5 {
		t.Fatalf("snapshot: %+v", snap)
	}
	if snap.RenderID != "render-123" {
		t.Fatalf("render id: %q", snap.RenderID)
	}
	if snap.UpdatedAt.IsZero() {
		t.Fatal("updated_at not set")
	}
}

func TestUpdateThrottled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render_status.json")
	tr := NewTracker(path, "r", nil)
	base := time.Unix(1000, 0)
	tr.now = func() time.Time { return base }

	tr.Update("rendering", 10, "", false)
	base = base.Add(500 * time.Millisecond)
	tr.Update("rendering", 20, "", false)

	if snap := readSnapshot(t, path); snap.Percent != 10 {
		t.Fatalf("throttled update should be dropped, got %+v", snap)
	}

	base = base.Add(2 * time.Second)
	tr.Update("rendering", 30, "", false)
	if snap := readSnapshot(t, path); snap.Percent != 30 {
		t.Fatalf("post-window update should land, got %+v", snap)
	}
}

func TestUpdateForceBypassesThrottle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "render_status.json")
	tr := NewTracker(path, "r", nil)
	base := time.Unix(1000, 0)
	tr.now = func() time.Time { return base }

	tr.Update("rendering", 99, "", false)
	tr.Update("muxing", 0, "starting mux", true)

	snap := readSnapshot(t, path)
	if snap.Phase != "muxing" {
		t.Fatalf("forced update should land, got %+v", snap)
	}
}

func TestUpdateUnwritablePathDoesNotPanic(t *testing.T) {
	tr := NewTracker(filepath.Join(t.TempDir(), "missing", "nested", "status.json"), "r", nil)
	tr.Update("rendering", 1, "", true)
}
