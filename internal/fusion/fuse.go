package fusion

import (
	"fmt"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/config"
)

// Weights maps method name to its non-negative fusion weight. Weights need
// not sum to 1; Fuse renormalizes per category. A method absent from the map
// carries weight 0 and contributes nothing.
type Weights map[string]float64

// Result is the immutable outcome of one fusion run.
//
// Conclusive distinguishes "we checked and the answer is X" from "no method
// produced usable evidence". Callers must surface the latter as
// unable-to-determine, never as a negative decision with 0% confidence.
type Result struct {
	Category   catalog.Category `json:"category"`
	Confidence float64          `json:"confidence"`
	Conclusive bool             `json:"conclusive"`
	Passed     bool             `json:"passed"`
	Threshold  float64          `json:"threshold"`

	// Votes is the per-method breakdown in the order supplied, kept for
	// explainability.
	Votes []MethodVote `json:"votes"`

	// Aggregates holds the renormalized score of every category at least one
	// method voted for.
	Aggregates map[catalog.Category]float64 `json:"aggregates,omitempty"`
}

// Fuse combines method votes into one decision.
//
// For each category, only the methods that voted for that category
// contribute: aggregated = Σ(score×weight) / Σ(weight) over agreeing methods.
// Methods that preferred a different category are excluded rather than
// counted as zero evidence, so a category is not penalized merely because
// other methods voted elsewhere. The winner is the highest aggregated score,
// ties resolved by registry order, and the outcome is a strict
// greater-than comparison against threshold.
//
// Degenerate input is never an error: all-Unknown votes, an empty vote list,
// or all-zero weights yield (Unknown, 0, conclusive=false). The only error
// cases are configuration mistakes: a negative weight, or a weight naming a
// method that is not among the supplied votes.
func Fuse(votes []MethodVote, weights Weights, threshold float64, reg *catalog.Registry) (Result, error) {
	if reg.Len() == 0 {
		return Result{}, fmt.Errorf("%w: fusion requires a non-empty registry", config.ErrConfiguration)
	}

	supplied := make(map[string]bool, len(votes))
	for _, v := range votes {
		supplied[v.Method] = true
	}
	for method, w := range weights {
		if w < 0 {
			return Result{}, fmt.Errorf("%w: method %q has negative weight %v", config.ErrConfiguration, method, w)
		}
		if !supplied[method] {
			return Result{}, fmt.Errorf("%w: weight references method %q with no vote", config.ErrConfiguration, method)
		}
	}

	scoreSum := make(map[catalog.Category]float64, reg.Len())
	weightSum := make(map[catalog.Category]float64, reg.Len())
	for _, v := range votes {
		if v.Unknown() || !reg.Contains(v.Category) {
			continue
		}
		w := weights[v.Method]
		if w == 0 {
			continue
		}
		scoreSum[v.Category] += ClampScore(v.Score) * w
		weightSum[v.Category] += w
	}

	result := Result{
		Category:  catalog.Unknown,
		Threshold: threshold,
		Votes:     append([]MethodVote(nil), votes...),
	}

	aggregates := make(map[catalog.Category]float64, len(weightSum))
	found := false
	for _, c := range reg.Categories() {
		ws := weightSum[c]
		if ws <= 0 {
			// No method voted for this category; it is excluded from the
			// winner search rather than scored 0.
			continue
		}
		agg := scoreSum[c] / ws
		aggregates[c] = agg
		if !found || agg > result.Confidence {
			result.Category = c
			result.Confidence = agg
			found = true
		}
	}

	if !found {
		// Absence of evidence is a valid outcome, not an error.
		return result, nil
	}

	result.Conclusive = true
	result.Passed = result.Confidence > threshold
	result.Aggregates = aggregates
	return result, nil
}
