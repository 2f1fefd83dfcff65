package captions

import (
	"testing"
	"time"

	"github.com/iamvalenciia/zero-sum/internal/script"
	"github.com/iamvalenciia/zero-sum/internal/testsupport"
)

func testSegments() []script.Segment {
	return []script.Segment{
		{
			Start: 0, End: 2,
			Words: []script.Word{
				{Text: "hello", Start: 0.2, End: 0.8},
				{Text: "there", Start: 0.9, End: 1.4},
			},
		},
		{
			Start: 2, End: 4,
			Words: []script.Word{
				{Text: "friend", Start: 2.1, End: 2.9},
			},
		},
	}
}

func TestGeneratorEntriesSortedAndFiltered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	segs := testSegments()
	// Zero-duration words never become captions.
	segs[0].Words = append(segs[0].Words, script.Word{Text: "um", Start: 1.5, End: 1.5})

	g, err := NewGenerator(cfg, segs)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("entries: %d", g.Len())
	}
	for i := 1; i < len(g.entries); i++ {
		if g.entries[i].Start < g.entries[i-1].Start {
			t.Fatalf("entries out of order at %d", i)
		}
	}
}

func TestActiveAtForwardScan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	g, err := NewGenerator(cfg, testSegments())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	if _, ok := g.ActiveAt(0.0); ok {
		t.Fatal("no word should be active before the first entry")
	}
	img, ok := g.ActiveAt(0.5)
	if !ok {
		t.Fatal("word active at 0.5")
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		t.Fatal("rendered bitmap is empty")
	}
	if _, ok := g.ActiveAt(0.85); ok {
		t.Fatal("gap between words should have no caption")
	}
	if _, ok := g.ActiveAt(2.5); !ok {
		t.Fatal("word active at 2.5")
	}
	if _, ok := g.ActiveAt(3.5); ok {
		t.Fatal("no caption after the last word")
	}
}

func TestRenderCachedByText(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	g, err := NewGenerator(cfg, testSegments())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	first := g.render("hello")
	second := g.render("hello")
	if first != second {
		t.Fatal("same text should reuse the cached bitmap")
	}
	if len(g.cache) != 1 {
		t.Fatalf("cache size: %d", len(g.cache))
	}
	g.render("there")
	if len(g.cache) != 2 {
		t.Fatalf("cache size after second word: %d", len(g.cache))
	}
}

func TestSkipWindowsTrimEntries(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Timeline.SkipStartSeconds = 0.85
	cfg.Timeline.SkipEndSeconds = 1.5

	g, err := NewGenerator(cfg, testSegments())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	// "hello" starts inside the head window and "friend" ends inside the
	// tail window, leaving only "there".
	if g.Len() != 1 {
		t.Fatalf("entries after skip windows: %d", g.Len())
	}
	if g.entries[0].Text != "there" {
		t.Fatalf("surviving entry: %q", g.entries[0].Text)
	}
}

func TestRenderTerminatesWithNonPositiveShadowStep(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Captions.ShadowStep = -1

	g, err := NewGenerator(cfg, testSegments())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	done := make(chan struct{})
	go func() {
		g.render("hello")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render did not finish with a negative shadow step")
	}
}

func TestReset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	g, err := NewGenerator(cfg, testSegments())
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, ok := g.ActiveAt(2.5); !ok {
		t.Fatal("word active at 2.5")
	}
	g.Reset()
	if _, ok := g.ActiveAt(0.5); !ok {
		t.Fatal("reset should allow a fresh pass from the start")
	}
}
