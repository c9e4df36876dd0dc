package fusion

import "github.com/veralux-ai/veralux/internal/catalog"

// RankMethod reduces one producer's per-category scores to a single vote.
//
// Selection starts from a zero baseline and only a strictly greater score
// displaces the current best, iterating in registry order. Consequences,
// both deliberate:
//   - all-zero scores resolve to (Unknown, 0), and
//   - two categories tied at the same positive score resolve to whichever
//     comes first in registry order.
//
// Missing entries in scores count as 0, so a producer that failed for some
// categories degrades gracefully and a producer that failed for all of them
// yields (Unknown, 0).
func RankMethod(method string, scores map[catalog.Category]float64, reg *catalog.Registry) MethodVote {
	best := catalog.Unknown
	bestScore := 0.0
	for _, c := range reg.Categories() {
		if s := ClampScore(scores[c]); s > bestScore {
			best = c
			bestScore = s
		}
	}
	return MethodVote{Method: method, Category: best, Score: bestScore}
}
