package vision

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// LogoProducer matches overall mark and monogram structure against brand
// references using a perception hash. It serves both decision contexts: for
// identification it scores every brand, for authentication it scores the
// claimed brand and maps the result onto authentic/counterfeit.
type LogoProducer struct {
	lib *ReferenceLibrary
}

func NewLogoProducer(lib *ReferenceLibrary) *LogoProducer {
	return &LogoProducer{lib: lib}
}

func (p *LogoProducer) Name() string { return "logo" }

func (p *LogoProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil {
		return nil, nil
	}
	hash, err := goimagehash.PerceptionHash(item.Image)
	if err != nil {
		return nil, err
	}

	pick := func(r brandReference) *goimagehash.ImageHash { return r.perception }

	if reg.Contains(catalog.Authentic) {
		refs := p.lib.forBrand(item.Brand)
		if len(refs) == 0 {
			// No references means no evidence, not a counterfeit verdict.
			return nil, nil
		}
		return authenticityScores(bestScore(hash, refs, pick)), nil
	}

	scores := make(map[catalog.Category]float64, reg.Len())
	for _, brand := range reg.Categories() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if refs := p.lib.forBrand(brand); len(refs) > 0 {
			scores[brand] = bestScore(hash, refs, pick)
		}
	}
	return scores, nil
}
