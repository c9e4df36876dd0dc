package vision

import (
	"context"

	"github.com/corona10/goimagehash"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// SymmetryProducer measures construction symmetry intrinsically: the left
// half is hashed against the mirrored right half, no references needed.
// Factory-made luxury pieces are near-symmetric front-on; hand-copied fakes
// drift. The measure is meaningless for deliberately asymmetric designs,
// which is why its default fusion weight is low.
type SymmetryProducer struct{}

func NewSymmetryProducer() *SymmetryProducer { return &SymmetryProducer{} }

func (p *SymmetryProducer) Name() string { return "symmetry" }

func (p *SymmetryProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil {
		return nil, nil
	}
	left, err := goimagehash.DifferenceHash(leftHalf(item.Image))
	if err != nil {
		return nil, err
	}
	right, err := goimagehash.DifferenceHash(mirrorHorizontal(rightHalf(item.Image)))
	if err != nil {
		return nil, err
	}
	dist, err := left.Distance(right)
	if err != nil {
		return nil, err
	}
	return authenticityScores(1 - float64(dist)/hashBits), nil
}
