package vision

import (
	"context"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// StaticProducer returns fixed scores or a fixed error. Test stand-in, and
// the no-evidence placeholder for a weighted method with no backing model.
type StaticProducer struct {
	Method string
	Result map[catalog.Category]float64
	Err    error
}

func (p *StaticProducer) Name() string { return p.Method }

func (p *StaticProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	return p.Result, p.Err
}

// HangingProducer blocks until its context is cancelled. Exercises the
// pipeline's per-producer timeout.
type HangingProducer struct {
	Method string
}

func (p *HangingProducer) Name() string { return p.Method }

func (p *HangingProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// PanickyProducer panics on every call. Exercises the pipeline's recovery.
type PanickyProducer struct {
	Method string
}

func (p *PanickyProducer) Name() string { return p.Method }

func (p *PanickyProducer) Scores(ctx context.Context, item Item, reg *catalog.Registry) (map[catalog.Category]float64, error) {
	panic("producer exploded")
}
