// Package vision scores item evidence against brand references using
// perceptual image analysis. Each producer covers one inspection method and
// reduces to a single vote; the pipeline runs them concurrently and never
// lets one producer's failure take down a request.
package vision

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/fusion"
	"github.com/veralux-ai/veralux/internal/redact"
)

// Item is the evidence for one request: the decoded photo, its raw bytes for
// metadata extraction, and the claim under test.
type Item struct {
	Image  image.Image
	Raw    []byte
	Brand  catalog.Category // claimed brand; empty for identification
	Serial string
}

// Producer scores an item against every category of a registry. A failed
// producer returns an error, or simply an empty score map; neither aborts the
// request.
type Producer interface {
	Name() string
	Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error)
}

// Pipeline runs a fixed set of producers concurrently for each item.
type Pipeline struct {
	producers []Producer
	timeout   time.Duration
}

// NewPipeline builds a pipeline over the given producers. timeout bounds each
// producer individually; a producer that exceeds it votes Unknown.
func NewPipeline(producers []Producer, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = 1500 * time.Millisecond
	}
	return &Pipeline{producers: producers, timeout: timeout}
}

// Votes scores the item with every producer and returns one vote per
// producer, in producer registration order regardless of completion order.
// Producer errors, panics, and timeouts all degrade to an Unknown vote.
func (p *Pipeline) Votes(ctx context.Context, item Item, reg *catalog.Registry) []fusion.MethodVote {
	votes := make([]fusion.MethodVote, len(p.producers))

	var wg sync.WaitGroup
	for i, pr := range p.producers {
		wg.Add(1)
		go func(i int, pr Producer) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			votes[i] = runProducer(pctx, pr, item, reg)
		}(i, pr)
	}
	wg.Wait()

	return votes
}

type producerOutcome struct {
	scores map[catalog.Category]float64
	err    error
}

// runProducer executes one producer under its deadline. The inner goroutine
// shields the pipeline from producers that neither honor the context nor
// return; their eventual result lands in a buffered channel nobody reads.
func runProducer(ctx context.Context, pr Producer, item Item, reg *catalog.Registry) fusion.MethodVote {
	ch := make(chan producerOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- producerOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		scores, err := pr.Scores(ctx, item, reg)
		ch <- producerOutcome{scores: scores, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			redact.Logf("vision: producer %s failed: %v", pr.Name(), out.err)
			return fusion.MethodVote{Method: pr.Name(), Category: catalog.Unknown}
		}
		return fusion.RankMethod(pr.Name(), out.scores, reg)
	case <-ctx.Done():
		redact.Logf("vision: producer %s timed out", pr.Name())
		return fusion.MethodVote{Method: pr.Name(), Category: catalog.Unknown}
	}
}

// authenticityScores maps a single match score against the claimed brand onto
// the two-category authenticity registry.
func authenticityScores(s float64) map[catalog.Category]float64 {
	s = fusion.ClampScore(s)
	return map[catalog.Category]float64{
		catalog.Authentic:   s,
		catalog.Counterfeit: 1 - s,
	}
}
