// Package status publishes render progress to a JSON file that external
// watchers can poll.
package status

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/iamvalenciia/zero-sum/internal/fileutil"
	"github.com/iamvalenciia/zero-sum/internal/logging"
)

// Snapshot is the on-disk shape of a progress update.
type Snapshot struct {
	Phase     string    `json:"phase"`
	Percent   float64   `json:"percent"`
	Message   string    `json:"message,omitempty"`
	RenderID  string    `json:"render_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker writes throttled progress snapshots. Writes are atomic and
// last-writer-wins, so a crashed render leaves the most recent state behind.
type Tracker struct {
	mu        sync.Mutex
	path      string
	renderID  string
	logger    *slog.Logger
	interval  time.Duration
	lastWrite time.Time
	now       func() time.Time
}

// NewTracker creates a tracker bound to one render invocation. A nil logger
// disables write-failure logging.
func NewTracker(path, renderID string, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Tracker{
		path:     path,
		renderID: renderID,
		logger:   logging.NewComponentLogger(logger, "status"),
		interval: 2 * time.Second,
		now:      time.Now,
	}
}

// Update records progress for a phase. Updates inside the throttle window
// are dropped unless force is set; phase completions should pass force so
// the final state of every phase lands on disk.
func (t *Tracker) Update(phase string, percent float64, message string, force bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if !force && now.Sub(t.lastWrite) < t.interval {
		return
	}
	t.lastWrite = now

	snap := Snapshot{
		Phase:     phase,
		Percent:   percent,
		Message:   message,
		RenderID:  t.renderID,
		UpdatedAt: now.UTC(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		t.logger.Warn("marshal status snapshot failed", "error", err)
		return
	}
	if err := fileutil.WriteFileAtomic(t.path, data, 0o644); err != nil {
		// Progress reporting never fails a render.
		t.logger.Warn("write status file failed", "path", t.path, "error", err)
	}
}
