package vision

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// StitchingProducer compares the seam strip along the bottom edge against the
// same strip on brand references. Stitch spacing and thread weight show up in
// the strip's gradient hash long before they are visible at whole-image
// scale. Authentication only; it needs a claimed brand to compare against.
type StitchingProducer struct {
	lib *ReferenceLibrary
}

func NewStitchingProducer(lib *ReferenceLibrary) *StitchingProducer {
	return &StitchingProducer{lib: lib}
}

func (p *StitchingProducer) Name() string { return "stitching" }

func (p *StitchingProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil || item.Brand == "" {
		return nil, nil
	}
	refs := p.lib.forBrand(item.Brand)
	if len(refs) == 0 {
		// No references means no evidence, not a counterfeit verdict.
		return nil, nil
	}
	hash, err := goimagehash.DifferenceHash(borderStrip(item.Image))
	if err != nil {
		return nil, err
	}
	s := bestScore(hash, refs, func(r brandReference) *goimagehash.ImageHash { return r.border })
	return authenticityScores(s), nil
}
