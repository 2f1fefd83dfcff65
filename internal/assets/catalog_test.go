package assets

import (
	"errors"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/testsupport"
)

func newCatalogFixture(t *testing.T) (*Catalog, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	assetsDir := cfg.Paths.AssetsDir

	testsupport.WritePNG(t, filepath.Join(assetsDir, "poses", "neutral.png"), 4, 4, color.White)
	testsupport.WritePNG(t, filepath.Join(assetsDir, "poses", "neutral_open.png"), 4, 4, color.Black)
	// Declared as .png but stored as .jpeg to exercise the extension retry.
	testsupport.WritePNG(t, filepath.Join(assetsDir, "poses", "pointing.jpeg"), 4, 4, color.White)
	testsupport.WriteJSON(t, filepath.Join(assetsDir, "pose_catalog.json"), `{
		"poses": [
			{"id": "neutral", "mouth_open": "poses/neutral_open.png", "mouth_closed": "poses/neutral.png"},
			{"id": "pointing", "mouth_open": "poses/pointing.png", "mouth_closed": "poses/pointing.png"}
		]
	}`)

	c, err := LoadCatalog(assetsDir, 8, nil)
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return c, assetsDir
}

func TestPoseImageBothMouthStates(t *testing.T) {
	c, _ := newCatalogFixture(t)
	closed, err := c.PoseImage("neutral", false)
	if err != nil {
		t.Fatalf("closed: %v", err)
	}
	open, err := c.PoseImage("neutral", true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if closed.At(0, 0) == open.At(0, 0) {
		t.Fatal("open and closed images should differ")
	}
}

func TestPoseImageAlternateExtension(t *testing.T) {
	c, _ := newCatalogFixture(t)
	if _, err := c.PoseImage("pointing", true); err != nil {
		t.Fatalf("alternate extension lookup failed: %v", err)
	}
}

func TestPoseImageUnknownPose(t *testing.T) {
	c, _ := newCatalogFixture(t)
	_, err := c.PoseImage("juggling", false)
	if !errors.Is(err, services.ErrMissingAsset) {
		t.Fatalf("expected missing asset, got %v", err)
	}
}

func TestPoseImageCached(t *testing.T) {
	c, _ := newCatalogFixture(t)
	if _, err := c.PoseImage("neutral", false); err != nil {
		t.Fatalf("first load: %v", err)
	}
	before := c.cache.len()
	if _, err := c.PoseImage("neutral", false); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if c.cache.len() != before {
		t.Fatal("repeat load should hit the cache")
	}
}

func TestLoadCatalogMissingIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := LoadCatalog(cfg.Paths.AssetsDir, 8, nil)
	if !errors.Is(err, services.ErrFatalInput) {
		t.Fatalf("expected fatal input, got %v", err)
	}
}
