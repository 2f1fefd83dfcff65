package assets

import (
	"errors"
	"image/color"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iamvalenciia/zero-sum/internal/services"
	"github.com/iamvalenciia/zero-sum/internal/testsupport"
)

func newRegistryFixture(t *testing.T) (*Registry, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	assetsDir := cfg.Paths.AssetsDir

	testsupport.WritePNG(t, filepath.Join(assetsDir, "images", "budget_chart.png"), 8, 8, color.White)
	testsupport.WritePNG(t, filepath.Join(assetsDir, "images", "1.png"), 8, 8, color.White)
	testsupport.WritePNG(t, filepath.Join(assetsDir, "images", "2.png"), 8, 8, color.White)
	testsupport.WritePNG(t, filepath.Join(assetsDir, "images", "recamara_vieja.png"), 8, 8, color.White)
	testsupport.WriteJSON(t, filepath.Join(assetsDir, "image_registry.json"), `{
		"images": [
			{"id": "budget_chart", "file": "images/budget_chart.png"},
			{"id": "7", "file": "images/1.png"}
		]
	}`)

	r, err := LoadRegistry(assetsDir, nil)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return r, assetsDir
}

func TestResolveExactID(t *testing.T) {
	r, dir := newRegistryFixture(t)
	got, err := r.Resolve("budget_chart")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(dir, "images", "budget_chart.png") {
		t.Fatalf("path: %s", got)
	}
}

func TestResolveNumericIDBeatsPositional(t *testing.T) {
	r, dir := newRegistryFixture(t)
	// "7" matches a registry entry's numeric id even though no file named 7 exists.
	got, err := r.Resolve("7")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(dir, "images", "1.png") {
		t.Fatalf("numeric id should use registry entry, got %s", got)
	}
}

func TestResolveNumericPositional(t *testing.T) {
	r, dir := newRegistryFixture(t)
	got, err := r.Resolve("2")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(dir, "images", "2.png") {
		t.Fatalf("positional numeric file: %s", got)
	}
}

func TestResolveOrdinalNameLocalized(t *testing.T) {
	r, dir := newRegistryFixture(t)
	for _, id := range []string{"second", "segunda", "segundo"} {
		got, err := r.Resolve(id)
		if err != nil {
			t.Fatalf("resolve %q: %v", id, err)
		}
		if got != filepath.Join(dir, "images", "2.png") {
			t.Fatalf("ordinal %q resolved to %s", id, got)
		}
	}
}

func TestResolveSubstringIgnoresDiacritics(t *testing.T) {
	r, dir := newRegistryFixture(t)
	got, err := r.Resolve("Recámara")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != filepath.Join(dir, "images", "recamara_vieja.png") {
		t.Fatalf("folded substring match failed: %s", got)
	}
}

func TestResolveMissingClassified(t *testing.T) {
	r, _ := newRegistryFixture(t)
	_, err := r.Resolve("nonexistent_zzz")
	if !errors.Is(err, services.ErrMissingAsset) {
		t.Fatalf("expected missing asset classification, got %v", err)
	}
}

func TestLoadRegistryMissingFileIsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	r, err := LoadRegistry(cfg.Paths.AssetsDir, nil)
	if err != nil {
		t.Fatalf("missing registry should not fail: %v", err)
	}
	if _, err := r.Resolve("anything"); err == nil {
		t.Fatal("empty registry resolved an id")
	}
}

func TestFold(t *testing.T) {
	if fold("Recámara") != "recamara" {
		t.Fatalf("fold: %q", fold("Recámara"))
	}
	if fold("  DÉCIMA ") != "decima" {
		t.Fatalf("fold: %q", fold("  DÉCIMA "))
	}
	if !strings.EqualFold(fold("plain"), "plain") {
		t.Fatalf("fold changed plain text: %q", fold("plain"))
	}
}
