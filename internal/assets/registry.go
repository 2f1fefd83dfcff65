package assets

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/iamvalenciia/zero-sum/internal/fileutil"
	"github.com/iamvalenciia/zero-sum/internal/logging"
	"github.com/iamvalenciia/zero-sum/internal/services"
)

// ordinalNames maps localized ordinal words onto 1-based positions. Keys are
// diacritic-folded so accented and plain spellings match alike.
var ordinalNames = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"primero": 1, "primera": 1, "segundo": 2, "segunda": 2,
	"tercero": 3, "tercera": 3, "cuarto": 4, "cuarta": 4,
	"quinto": 5, "quinta": 5, "sexto": 6, "sexta": 6,
	"septimo": 7, "septima": 7, "octavo": 8, "octava": 8,
	"noveno": 9, "novena": 9, "decimo": 10, "decima": 10,
}

var numericNameRe = regexp.MustCompile(`^(\d+)$`)

type registryEntry struct {
	ID   string `json:"id"`
	File string `json:"file"`
}

type registryFile struct {
	Images []registryEntry `json:"images"`
}

// Registry resolves illustration ids to image paths. The chain, in priority
// order: exact id, numeric id, localized ordinal name, position-sorted
// numeric filename, substring match. Constructed per render invocation.
type Registry struct {
	baseDir  string
	imageDir string
	entries  []registryEntry
	byID     map[string]registryEntry
	logger   *slog.Logger
}

// LoadRegistry reads image_registry.json from the assets directory. A
// missing registry yields an empty one: illustrations then resolve purely
// from the images directory listing.
func LoadRegistry(assetsDir string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		baseDir:  assetsDir,
		imageDir: filepath.Join(assetsDir, "images"),
		byID:     map[string]registryEntry{},
		logger:   logging.NewComponentLogger(logger, "registry"),
	}

	path := filepath.Join(assetsDir, "image_registry.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, services.Wrap(services.ErrValidation, "registry", "load", "read image registry", err)
	}
	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrValidation, "registry", "load", "parse image registry", err)
	}
	r.entries = file.Images
	for _, e := range file.Images {
		r.byID[fold(e.ID)] = e
	}
	return r, nil
}

// Resolve maps an illustration id to an existing image file path.
func (r *Registry) Resolve(id string) (string, error) {
	key := fold(id)

	if e, ok := r.byID[key]; ok {
		if path, ok := r.entryPath(e); ok {
			return path, nil
		}
	}

	if path, ok := r.resolveNumeric(key); ok {
		return path, nil
	}
	if pos, ok := ordinalNames[key]; ok {
		if path, ok := r.numericFileAt(pos); ok {
			return path, nil
		}
	}
	if path, ok := r.resolveSubstring(key); ok {
		return path, nil
	}

	return "", services.Wrap(services.ErrMissingAsset, "registry", "resolve",
		fmt.Sprintf("illustration %q not found", id), nil)
}

func (r *Registry) entryPath(e registryEntry) (string, bool) {
	path := e.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, e.File)
	}
	return resolveWithAltExtensions(path)
}

// resolveNumeric matches a purely numeric id against registry entries with
// the same numeric id, then against the position-sorted numeric filenames.
func (r *Registry) resolveNumeric(key string) (string, bool) {
	m := numericNameRe.FindStringSubmatch(key)
	if m == nil {
		return "", false
	}
	n, _ := strconv.Atoi(m[1])

	for _, e := range r.entries {
		if em := numericNameRe.FindStringSubmatch(fold(e.ID)); em != nil {
			if en, _ := strconv.Atoi(em[1]); en == n {
				if path, ok := r.entryPath(e); ok {
					return path, true
				}
			}
		}
	}
	return r.numericFileAt(n)
}

// numericFileAt returns the image file whose numeric basename equals pos
// within the number-sorted directory listing.
func (r *Registry) numericFileAt(pos int) (string, bool) {
	type numbered struct {
		n    int
		path string
	}
	var files []numbered
	listing, err := os.ReadDir(r.imageDir)
	if err != nil {
		return "", false
	}
	for _, entry := range listing {
		if entry.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if m := numericNameRe.FindStringSubmatch(stem); m != nil {
			n, _ := strconv.Atoi(m[1])
			files = append(files, numbered{n: n, path: filepath.Join(r.imageDir, entry.Name())})
		}
	}
	sort.Slice(files, func(a, b int) bool { return files[a].n < files[b].n })
	for _, f := range files {
		if f.n == pos {
			return f.path, true
		}
	}
	return "", false
}

// resolveSubstring falls back to folded substring matching against registry
// ids and then image filenames.
func (r *Registry) resolveSubstring(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	for _, e := range r.entries {
		folded := fold(e.ID)
		if strings.Contains(folded, key) || strings.Contains(key, folded) {
			if path, ok := r.entryPath(e); ok {
				return path, true
			}
		}
	}
	listing, err := os.ReadDir(r.imageDir)
	if err != nil {
		return "", false
	}
	for _, entry := range listing {
		if entry.IsDir() {
			continue
		}
		stem := fold(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if strings.Contains(stem, key) || strings.Contains(key, stem) {
			path := filepath.Join(r.imageDir, entry.Name())
			if fileutil.FileExists(path) {
				return path, true
			}
		}
	}
	return "", false
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips diacritics so "Recámara" matches "recamara".
func fold(s string) string {
	out, _, err := transform.String(foldTransformer, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
