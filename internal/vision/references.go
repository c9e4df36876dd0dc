package vision

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/redact"
)

// hashBits is the size of a goimagehash fingerprint.
const hashBits = 64

// brandReference holds the precomputed fingerprints for one reference photo.
type brandReference struct {
	perception *goimagehash.ImageHash // whole-image structure, logo producer
	difference *goimagehash.ImageHash // gradient texture, texture producer
	border     *goimagehash.ImageHash // seam strip, stitching producer
	center     *goimagehash.ImageHash // hardware crop
	color      []float64              // downscaled RGB signature
}

// ReferenceLibrary is the read-only set of per-brand reference fingerprints,
// loaded once at startup from a directory of the form <dir>/<brand>/*.jpg.
type ReferenceLibrary struct {
	refs map[catalog.Category][]brandReference
}

// LoadReferences walks dir and fingerprints every reference image found under
// a known brand subdirectory. Unreadable or undecodable files are skipped
// with a log line; an empty library is valid and simply scores nothing.
func LoadReferences(dir string, reg *catalog.Registry) (*ReferenceLibrary, error) {
	lib := &ReferenceLibrary{refs: make(map[catalog.Category][]brandReference)}
	if dir == "" {
		return lib, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("reference dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		brand := catalog.Category(e.Name())
		if !reg.Contains(brand) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			redact.Logf("vision: skipping references for %s: %v", brand, err)
			continue
		}
		for _, f := range files {
			if f.IsDir() || !isImageFile(f.Name()) {
				continue
			}
			path := filepath.Join(dir, e.Name(), f.Name())
			ref, err := fingerprintFile(path)
			if err != nil {
				redact.Logf("vision: skipping reference %s: %v", path, err)
				continue
			}
			lib.refs[brand] = append(lib.refs[brand], ref)
		}
	}
	return lib, nil
}

// Brands returns the brands the library holds references for.
func (l *ReferenceLibrary) Brands() []catalog.Category {
	out := make([]catalog.Category, 0, len(l.refs))
	for b := range l.refs {
		out = append(out, b)
	}
	return out
}

func (l *ReferenceLibrary) forBrand(b catalog.Category) []brandReference {
	return l.refs[b]
}

func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

func fingerprintFile(path string) (brandReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return brandReference{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return brandReference{}, err
	}
	return fingerprint(img)
}

// fingerprint computes every producer's fingerprint for one image so the
// library is walked once per reference, not once per producer.
func fingerprint(img image.Image) (brandReference, error) {
	var ref brandReference
	var err error

	if ref.perception, err = goimagehash.PerceptionHash(img); err != nil {
		return brandReference{}, err
	}
	if ref.difference, err = goimagehash.DifferenceHash(img); err != nil {
		return brandReference{}, err
	}
	if ref.border, err = goimagehash.DifferenceHash(borderStrip(img)); err != nil {
		return brandReference{}, err
	}
	if ref.center, err = goimagehash.PerceptionHash(centerCrop(img)); err != nil {
		return brandReference{}, err
	}
	ref.color = colorSignature(img)
	return ref, nil
}

// bestScore converts the minimum Hamming distance between hash and any
// reference hash into a [0,1] similarity.
func bestScore(hash *goimagehash.ImageHash, refs []brandReference, pick func(brandReference) *goimagehash.ImageHash) float64 {
	best := 0.0
	for _, r := range refs {
		ref := pick(r)
		if ref == nil {
			continue
		}
		dist, err := hash.Distance(ref)
		if err != nil {
			continue
		}
		if s := 1 - float64(dist)/hashBits; s > best {
			best = s
		}
	}
	return best
}
