package fusion

// Feature is one named sub-score feeding the reason rules, typically a
// method's score for the winning category.
type Feature struct {
	Method string  `json:"method"`
	Score  float64 `json:"score"`
}

// reasonRule is a threshold predicate over one feature. low==true fires when
// the score is strictly below the cutoff, otherwise at-or-above.
type reasonRule struct {
	method string
	cutoff float64
	low    bool
	reason string
}

// reasonRules is evaluated strictly in this order, so the reason list is
// deterministic for identical inputs. Keep new rules grouped by method.
var reasonRules = []reasonRule{
	{method: "logo", cutoff: 0.8, reason: "logo geometry matches brand reference"},
	{method: "logo", cutoff: 0.3, low: true, reason: "logo differs from brand reference"},
	{method: "color", cutoff: 0.7, reason: "color signature consistent with brand palette"},
	{method: "color", cutoff: 0.3, low: true, reason: "color signature inconsistent with brand palette"},
	{method: "texture", cutoff: 0.7, reason: "surface pattern matches reference material"},
	{method: "texture", cutoff: 0.3, low: true, reason: "surface pattern differs from reference material"},
	{method: "stitching", cutoff: 0.7, reason: "consistent professional stitching"},
	{method: "stitching", cutoff: 0.3, low: true, reason: "irregular stitch spacing"},
	{method: "symmetry", cutoff: 0.7, reason: "construction symmetry within brand tolerance"},
	{method: "symmetry", cutoff: 0.3, low: true, reason: "asymmetric construction"},
	{method: "hardware", cutoff: 0.7, reason: "hardware finish consistent with brand standards"},
	{method: "hardware", cutoff: 0.3, low: true, reason: "dull or uneven hardware finish"},
	{method: "provenance", cutoff: 0.7, reason: "serial format matches brand convention"},
	{method: "provenance", cutoff: 0.3, low: true, reason: "serial format not recognized for this brand"},
	{method: "veranet", cutoff: 0.8, reason: "classifier strongly agrees"},
}

// Reasons derives the qualitative reason list from feature sub-scores by
// evaluating the fixed rule table in order. Features missing from the input
// fire no rules; no new fusion logic happens here.
func Reasons(features []Feature) []string {
	byMethod := make(map[string]float64, len(features))
	seen := make(map[string]bool, len(features))
	for _, f := range features {
		// First occurrence wins so duplicated inputs stay deterministic.
		if !seen[f.Method] {
			byMethod[f.Method] = ClampScore(f.Score)
			seen[f.Method] = true
		}
	}

	var out []string
	for _, r := range reasonRules {
		score, ok := byMethod[r.method]
		if !ok {
			continue
		}
		if r.low {
			if score < r.cutoff {
				out = append(out, r.reason)
			}
		} else if score >= r.cutoff {
			out = append(out, r.reason)
		}
	}
	return out
}
