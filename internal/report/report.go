// Package report renders a fused decision for humans: the verdict, the
// confidence breakdown per method, and the derived reasons. It adds no new
// judgment; everything here is presentation over an existing result.
package report

import (
	"fmt"
	"strings"

	"github.com/veralux-ai/veralux/internal/catalog"
	"github.com/veralux-ai/veralux/internal/fusion"
)

// MethodLine is one row of the confidence breakdown.
type MethodLine struct {
	Method string  `json:"method"`
	Vote   string  `json:"vote"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Agrees bool    `json:"agrees"`
}

// DecisionReport is the human-facing summary of one decision.
type DecisionReport struct {
	Operation  string       `json:"operation"`
	Verdict    string       `json:"verdict"`
	Confidence float64      `json:"confidence"`
	Threshold  float64      `json:"threshold"`
	Passed     bool         `json:"passed"`
	Conclusive bool         `json:"conclusive"`
	Reasons    []string     `json:"reasons,omitempty"`
	Breakdown  []MethodLine `json:"breakdown"`
}

// Build assembles the report for a fused result.
//
// An inconclusive result always reads "Unable to determine": collapsing it
// into a failed decision with 0% confidence would mislead a reviewer into
// reading absence of evidence as evidence of absence.
func Build(operation string, res fusion.Result, weights fusion.Weights, reasons []string) DecisionReport {
	rep := DecisionReport{
		Operation:  operation,
		Verdict:    verdict(res),
		Confidence: res.Confidence,
		Threshold:  res.Threshold,
		Passed:     res.Passed,
		Conclusive: res.Conclusive,
		Reasons:    append([]string(nil), reasons...),
	}

	for _, v := range res.Votes {
		line := MethodLine{
			Method: v.Method,
			Vote:   string(v.Category),
			Score:  v.Score,
			Weight: weights[v.Method],
			Agrees: !v.Unknown() && v.Category == res.Category,
		}
		if v.Unknown() {
			line.Vote = "no evidence"
		}
		rep.Breakdown = append(rep.Breakdown, line)
	}
	return rep
}

func verdict(res fusion.Result) string {
	if !res.Conclusive {
		return "Unable to determine"
	}
	name := catalog.DisplayName(res.Category)
	if !res.Passed {
		return fmt.Sprintf("%s (below threshold)", name)
	}
	return name
}

// Render produces a plain-text report for CLI and log output.
func (r DecisionReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.Operation, r.Verdict)
	if r.Conclusive {
		fmt.Fprintf(&b, "confidence %.3f (threshold %.3f)\n", r.Confidence, r.Threshold)
	}
	for _, line := range r.Breakdown {
		mark := " "
		if line.Agrees {
			mark = "*"
		}
		fmt.Fprintf(&b, "  %s %-12s %-16s %.3f (w=%.2f)\n", mark, line.Method, line.Vote, line.Score, line.Weight)
	}
	for _, reason := range r.Reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}
	return b.String()
}
