package vision

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// HardwareProducer inspects the center crop, where clasps, zipper pulls and
// turn-locks sit on most product photos, and matches it against the same crop
// on brand references. Authentication only.
type HardwareProducer struct {
	lib *ReferenceLibrary
}

func NewHardwareProducer(lib *ReferenceLibrary) *HardwareProducer {
	return &HardwareProducer{lib: lib}
}

func (p *HardwareProducer) Name() string { return "hardware" }

func (p *HardwareProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil || item.Brand == "" {
		return nil, nil
	}
	refs := p.lib.forBrand(item.Brand)
	if len(refs) == 0 {
		// No references means no evidence, not a counterfeit verdict.
		return nil, nil
	}
	hash, err := goimagehash.PerceptionHash(centerCrop(item.Image))
	if err != nil {
		return nil, err
	}
	s := bestScore(hash, refs, func(r brandReference) *goimagehash.ImageHash { return r.center })
	return authenticityScores(s), nil
}
