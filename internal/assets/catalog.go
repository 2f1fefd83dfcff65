// Package assets resolves pose art and illustration files and keeps decoded
// and processed images in bounded per-render caches.
package assets

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/iamvalenciia/zero-sum/internal/fileutil"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// altExtensions is the retry order for catalog paths whose literal extension
// does not exist on disk.
var altExtensions = []string{".jpeg", ".jpg", ".png", ".webp"}

// PosePair names the two mouth states of one pose.
type PosePair struct {
	ID          string `json:"id"`
	MouthOpen   string `json:"mouth_open"`
	MouthClosed string `json:"mouth_closed"`
}

type catalogFile struct {
	Poses []PosePair `json:"poses"`
}

// Catalog maps pose ids to mouth-open/mouth-closed images, loaded lazily and
// cached. Constructed per render invocation.
type Catalog struct {
	baseDir string
	poses   map[string]PosePair
	cache   *imageCache
	logger  *slog.Logger
}

// LoadCatalog reads pose_catalog.json from the assets directory. A missing
// or empty catalog is a fatal input: no frame can be rendered without pose
// art.
func LoadCatalog(assetsDir string, cacheSize int, logger *slog.Logger) (*Catalog, error) {
	path := filepath.Join(assetsDir, "pose_catalog.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "assets", "load catalog", "read pose catalog", err)
	}
	var file catalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrFatalInput, "assets", "load catalog", "parse pose catalog", err)
	}
	if len(file.Poses) == 0 {
		return nil, services.Wrap(services.ErrFatalInput, "assets", "load catalog", "pose catalog is empty", nil)
	}

	poses := make(map[string]PosePair, len(file.Poses))
	for _, p := range file.Poses {
		poses[strings.ToLower(p.ID)] = p
	}
	return &Catalog{
		baseDir: assetsDir,
		poses:   poses,
		cache:   newImageCache(cacheSize),
		logger:  logging.NewComponentLogger(logger, "assets"),
	}, nil
}

// Has reports whether the catalog declares the pose.
func (c *Catalog) Has(pose string) bool {
	_, ok := c.poses[strings.ToLower(pose)]
	return ok
}

// PoseImage returns the decoded image for a pose and mouth state. Unknown
// poses and unreadable files classify as missing assets so callers can fall
// back to a default pose.
func (c *Catalog) PoseImage(pose string, mouthOpen bool) (image.Image, error) {
	pair, ok := c.poses[strings.ToLower(pose)]
	if !ok {
		return nil, services.Wrap(services.ErrMissingAsset, "assets", "pose image",
			fmt.Sprintf("pose %q not in catalog", pose), nil)
	}
	rel := pair.MouthClosed
	if mouthOpen {
		rel = pair.MouthOpen
	}
	return c.load(rel)
}

func (c *Catalog) load(rel string) (image.Image, error) {
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.baseDir, rel)
	}
	resolved, ok := resolveWithAltExtensions(path)
	if !ok {
		return nil, services.Wrap(services.ErrMissingAsset, "assets", "load image",
			fmt.Sprintf("file %s not found with any known extension", path), nil)
	}

	if img, ok := c.cache.get(resolved); ok {
		return img, nil
	}
	img, err := imaging.Open(resolved)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingAsset, "assets", "load image", "decode "+resolved, err)
	}
	c.cache.put(resolved, img)
	return img, nil
}

// resolveWithAltExtensions returns the path itself when it exists, otherwise
// the same basename retried across the known image extensions.
func resolveWithAltExtensions(path string) (string, bool) {
	if fileutil.FileExists(path) {
		return path, true
	}
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	for _, ext := range altExtensions {
		candidate := stem + ext
		if fileutil.FileExists(candidate) {
			return candidate, true
		}
	}
	return "", false
}
