package veranet

import (
	"context"
	"image"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/fusion"
	"github.com/veralux-ai/veralux/internal/vision"
)

// brandClassifier is the surface Producer needs from Model, narrowed so tests
// can substitute a fixed-output stand-in.
type brandClassifier interface {
	Classify(img image.Image) (map[string]float32, error)
}

// Producer adapts the classifier to the vision producer contract under the
// method name "veranet".
type Producer struct {
	model brandClassifier
}

func NewProducer(model brandClassifier) *Producer {
	return &Producer{model: model}
}

var _ vision.Producer = (*Producer)(nil)

func (p *Producer) Name() string { return "veranet" }

// Scores maps classifier probabilities onto the registry. For a brand
// registry every recognized label scores directly; for the authenticity
// registry the claimed brand's probability becomes the authentic score, on
// the reading "the classifier sees the brand it is supposed to be".
func (p *Producer) Scores(ctx context.Context, item vision.Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	if item.Image == nil {
		return nil, nil
	}
	probs, err := p.model.Classify(item.Image)
	if err != nil {
		return nil, err
	}

	if reg.Contains(catalog.Authentic) {
		s := fusion.ClampScore(float64(probs[string(item.Brand)]))
		return map[catalog.Category]float64{
			catalog.Authentic:   s,
			catalog.Counterfeit: 1 - s,
		}, nil
	}

	scores := make(map[catalog.Category]float64, len(probs))
	for label, prob := range probs {
		c := catalog.Category(label)
		if reg.Contains(c) {
			scores[c] = fusion.ClampScore(float64(prob))
		}
	}
	return scores, nil
}
