package vision

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// TextureProducer matches surface pattern and print detail using a difference
// hash, which fingerprints local gradients rather than overall structure.
type TextureProducer struct {
	lib *ReferenceLibrary
}

func NewTextureProducer(lib *ReferenceLibrary) *TextureProducer {
	return &TextureProducer{lib: lib}
}

func (p *TextureProducer) Name() string { return "texture" }

func (p *TextureProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil {
		return nil, nil
	}
	hash, err := goimagehash.DifferenceHash(item.Image)
	if err != nil {
		return nil, err
	}

	pick := func(r brandReference) *goimagehash.ImageHash { return r.difference }

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
