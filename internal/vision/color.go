package vision

import (
	"context"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// ColorProducer compares the item's downscaled RGB signature against brand
// palette references. It is deliberately coarse: it catches wrong canvas and
// lining colors, not print detail, which is the texture producer's job.
type ColorProducer struct {
	lib *ReferenceLibrary
}

func NewColorProducer(lib *ReferenceLibrary) *ColorProducer {
	return &ColorProducer{lib: lib}
}

func (p *ColorProducer) Name() string { return "color" }

func (p *ColorProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil {
		return nil, nil
	}
	sig := colorSignature(item.Image)

	if reg.Contains(catalog.Authentic) {
		if len(p.lib.forBrand(item.Brand)) == 0 {
			// No references means no evidence, not a counterfeit verdict.
			return nil, nil
		}
		return authenticityScores(p.bestMatch(sig, item.Brand)), nil
	}

	scores := make(map[catalog.Category]float64, reg.Len())
	for _, brand := range reg.Categories() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if s := p.bestMatch(sig, brand); s > 0 {
			scores[brand] = s
		}
	}
	return scores, nil
}

func (p *ColorProducer) bestMatch(sig []float64, brand catalog.Category) float64 {
	best := 0.0
	for _, ref := range p.lib.forBrand(brand) {
		if s := 1 - colorDistance(sig, ref.color); s > best {
			best = s
		}
	}
	return best
}
