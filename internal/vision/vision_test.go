package vision

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/fusion"
)

// checkered paints a deterministic pattern so perceptual hashes have
// structure to grip. Different cell sizes give visibly different textures.
func checkered(w, h, cell int, a, b color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, a)
			} else {
				img.Set(x, y, b)
			}
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

func referenceDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	lvDir := filepath.Join(dir, "louis_vuitton")
	gucciDir := filepath.Join(dir, "gucci")
	for _, d := range []string{lvDir, gucciDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	brown := color.RGBA{R: 101, G: 67, B: 33, A: 255}
	tan := color.RGBA{R: 210, G: 180, B: 140, A: 255}
	red := color.RGBA{R: 180, G: 30, B: 30, A: 255}
	green := color.RGBA{R: 30, G: 120, B: 60, A: 255}
	writePNG(t, filepath.Join(lvDir, "ref1.png"), checkered(128, 128, 16, brown, tan))
	writePNG(t, filepath.Join(gucciDir, "ref1.png"), checkered(128, 128, 4, red, green))
	return dir
}

func TestLoadReferences(t *testing.T) {
	reg := testRegistry(t)
	lib, err := LoadReferences(referenceDir(t), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lib.forBrand("louis_vuitton")) != 1 || len(lib.forBrand("gucci")) != 1 {
		t.Fatalf("reference counts wrong: %v", lib.Brands())
	}
	if len(lib.forBrand("chanel")) != 0 {
		t.Fatal("chanel should have no references")
	}
}

func TestLoadReferencesMissingDirIsEmpty(t *testing.T) {
	reg := testRegistry(t)
	lib, err := LoadReferences(filepath.Join(t.TempDir(), "nope"), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lib.Brands()) != 0 {
		t.Fatalf("expected empty library, got %v", lib.Brands())
	}
}

func TestLogoProducerPrefersMatchingBrand(t *testing.T) {
	reg := testRegistry(t)
	lib, err := LoadReferences(referenceDir(t), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	brown := color.RGBA{R: 101, G: 67, B: 33, A: 255}
	tan := color.RGBA{R: 210, G: 180, B: 140, A: 255}
	item := Item{Image: checkered(128, 128, 16, brown, tan)}

	p := NewLogoProducer(lib)
	scores, err := p.Scores(context.Background(), item, reg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores["louis_vuitton"] <= scores["gucci"] {
		t.Fatalf("expected louis_vuitton > gucci, got %v", scores)
	}
	if scores["louis_vuitton"] < 0.9 {
		t.Fatalf("identical image should score near 1, got %v", scores["louis_vuitton"])
	}
}

func TestLogoProducerAuthenticityMapping(t *testing.T) {
	brandReg := testRegistry(t)
	lib, err := LoadReferences(referenceDir(t), brandReg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	authReg := catalog.Authenticity()

	brown := color.RGBA{R: 101, G: 67, B: 33, A: 255}
	tan := color.RGBA{R: 210, G: 180, B: 140, A: 255}
	item := Item{Image: checkered(128, 128, 16, brown, tan), Brand: "louis_vuitton"}

	scores, err := NewLogoProducer(lib).Scores(context.Background(), item, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] <= scores[catalog.Counterfeit] {
		t.Fatalf("matching item should lean authentic, got %v", scores)
	}
}

func TestColorProducerDistinguishesPalettes(t *testing.T) {
	reg := testRegistry(t)
	lib, err := LoadReferences(referenceDir(t), reg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	red := color.RGBA{R: 180, G: 30, B: 30, A: 255}
	green := color.RGBA{R: 30, G: 120, B: 60, A: 255}
	item := Item{Image: checkered(128, 128, 4, red, green)}

	scores, err := NewColorProducer(lib).Scores(context.Background(), item, reg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores["gucci"] <= scores["louis_vuitton"] {
		t.Fatalf("expected gucci palette to win, got %v", scores)
	}
}

func TestSymmetryProducer(t *testing.T) {
	authReg := catalog.Authenticity()
	p := NewSymmetryProducer()

	// A checkerboard is mirror-symmetric across its center line.
	sym := Item{Image: checkered(128, 128, 16, color.Black, color.White)}
	scores, err := p.Scores(context.Background(), sym, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] < 0.75 {
		t.Fatalf("symmetric image scored %v", scores[catalog.Authentic])
	}

	// Left half black, right half dense noise-ish checker: asymmetric.
	asym := image.NewRGBA(image.Rect(0, 0, 128, 128))
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			if x < 64 {
				asym.Set(x, y, color.Black)
			} else if (x+y*7)%3 == 0 {
				asym.Set(x, y, color.White)
			} else {
				asym.Set(x, y, color.Black)
			}
		}
	}
	scores2, err := p.Scores(context.Background(), Item{Image: asym}, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores2[catalog.Authentic] >= scores[catalog.Authentic] {
		t.Fatalf("asymmetric image should score lower: sym=%v asym=%v",
			scores[catalog.Authentic], scores2[catalog.Authentic])
	}
}

func TestReferenceProducersWithoutReferencesGiveNoEvidence(t *testing.T) {
	authReg := catalog.Authenticity()
	brown := color.RGBA{R: 101, G: 67, B: 33, A: 255}
	tan := color.RGBA{R: 210, G: 180, B: 140, A: 255}
	item := Item{Image: checkered(128, 128, 16, brown, tan), Brand: "louis_vuitton"}

	empty := &ReferenceLibrary{refs: map[catalog.Category][]brandReference{}}
	producers := []Producer{
		NewLogoProducer(empty),
		NewColorProducer(empty),
		NewTextureProducer(empty),
		NewStitchingProducer(empty),
		NewHardwareProducer(empty),
	}
	for _, p := range producers {
		scores, err := p.Scores(context.Background(), item, authReg)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		// An empty library must read as absent evidence, never as a
		// confident counterfeit vote.
		if len(scores) != 0 {
			t.Fatalf("%s scored without references: %v", p.Name(), scores)
		}
	}

	// End to end: with every reference producer voting no-evidence the fused
	// decision is inconclusive, not counterfeit.
	pipeline := NewPipeline(producers, time.Second)
	votes := pipeline.Votes(context.Background(), item, authReg)
	for _, v := range votes {
		if !v.Unknown() {
			t.Fatalf("%s voted %s without references", v.Method, v.Category)
		}
	}
	res, err := fusion.Fuse(votes, fusion.Weights{
		"logo": 0.25, "color": 0.1, "texture": 0.1, "stitching": 0.25, "hardware": 0.15,
	}, 0.85, authReg)
	if err != nil {
		t.Fatalf("fuse: %v", err)
	}
	if res.Conclusive || res.Category != catalog.Unknown {
		t.Fatalf("empty library produced a decision: %+v", res)
	}
}

func TestReferenceProducersUnreferencedBrand(t *testing.T) {
	// A library with other brands loaded still has nothing on chanel.
	lib, err := LoadReferences(referenceDir(t), testRegistry(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	authReg := catalog.Authenticity()
	item := Item{Image: checkered(128, 128, 16, color.Black, color.White), Brand: "chanel"}

	for _, p := range []Producer{NewLogoProducer(lib), NewStitchingProducer(lib), NewHardwareProducer(lib)} {
		scores, err := p.Scores(context.Background(), item, authReg)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if len(scores) != 0 {
			t.Fatalf("%s scored an unreferenced brand: %v", p.Name(), scores)
		}
	}
}

func TestProducersNilImage(t *testing.T) {
	reg := testRegistry(t)
	lib := &ReferenceLibrary{refs: map[catalog.Category][]brandReference{}}
	producers := []Producer{
		NewLogoProducer(lib),
		NewColorProducer(lib),
		NewTextureProducer(lib),
		NewStitchingProducer(lib),
		NewSymmetryProducer(),
		NewHardwareProducer(lib),
	}
	for _, p := range producers {
		scores, err := p.Scores(context.Background(), Item{}, reg)
		if err != nil {
			t.Fatalf("%s: %v", p.Name(), err)
		}
		if len(scores) != 0 {
			t.Fatalf("%s scored a nil image: %v", p.Name(), scores)
		}
	}
}
