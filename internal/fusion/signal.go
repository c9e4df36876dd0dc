package fusion

import (
	"math"

	"github.com/veralux-ai/veralux/internal/catalog"
)

// SignalScore is one producer's confidence for one category.
type SignalScore struct {
	Category catalog.Category `json:"category"`
	Score    float64          `json:"score"`
}

// MethodVote is one method's ranked result across all categories: the
// best-scoring category and its score. A method with no usable evidence
// votes (Unknown, 0) and contributes nothing to fusion.
type MethodVote struct {
	Method   string           `json:"method"`
	Category catalog.Category `json:"category"`
	Score    float64          `json:"score"`
}

// Unknown reports whether the vote carries no evidence.
func (v MethodVote) Unknown() bool {
	return v.Category == catalog.Unknown
}

// ClampScore forces a raw producer score into [0,1]. NaN and infinities
// collapse to 0: a producer that cannot score must look like absent
// evidence, never like strong evidence.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
