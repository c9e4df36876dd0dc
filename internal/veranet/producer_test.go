package veranet

import (
	"context"
	"image"
	"testing"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/vision"
)

type staticClassifier struct {
	probs map[string]float32
	err   error
}

func (c *staticClassifier) Classify(img image.Image) (map[string]float32, error) {
	return c.probs, c.err
}

func TestProducerBrandRegistry(t *testing.T) {
	reg, err := catalog.NewRegistry("brands", []catalog.Category{"louis_vuitton", "gucci"})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	p := NewProducer(&staticClassifier{probs: map[string]float32{
		"louis_vuitton": 0.7,
		"gucci":         0.2,
		"other":         0.1, // label outside the registry is dropped
	}})

	item := vision.Item{Image: image.NewRGBA(image.Rect(0, 0, 2, 2))}
	scores, err := p.Scores(context.Background(), item, reg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("scores = %v", scores)
	}
	if scores["louis_vuitton"] < 0.69 || scores["louis_vuitton"] > 0.71 {
		t.Fatalf("louis_vuitton = %v", scores["louis_vuitton"])
	}
}

func TestProducerAuthenticityRegistry(t *testing.T) {
	reg := catalog.Authenticity()
	p := NewProducer(&staticClassifier{probs: map[string]float32{"chanel": 0.9}})

	item := vision.Item{Image: image.NewRGBA(image.Rect(0, 0, 2, 2)), Brand: "chanel"}
	scores, err := p.Scores(context.Background(), item, reg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] < 0.89 {
		t.Fatalf("authentic = %v", scores[catalog.Authentic])
	}
	if scores[catalog.Counterfeit] > 0.11 {
		t.Fatalf("counterfeit = %v", scores[catalog.Counterfeit])
	}

	// Claimed brand the classifier never saw scores as counterfeit-leaning.
	item.Brand = "hermes"
	scores, err = p.Scores(context.Background(), item, reg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] != 0 || scores[catalog.Counterfeit] != 1 {
		t.Fatalf("unseen brand scores = %v", scores)
	}
}

func TestProducerNilImage(t *testing.T) {
	p := NewProducer(&staticClassifier{})
	scores, err := p.Scores(context.Background(), vision.Item{}, catalog.Authenticity())
	if err != nil || scores != nil {
		t.Fatalf("nil image: %v %v", scores, err)
	}
}
