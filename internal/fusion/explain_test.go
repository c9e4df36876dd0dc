package fusion

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReasonsHighAndLow(t *testing.T) {
	features := []Feature{
		{Method: "logo", Score: 0.85},
		{Method: "stitching", Score: 0.9},
		{Method: "hardware", Score: 0.1},
	}
	want := []string{
		"logo geometry matches brand reference",
		"consistent professional stitching",
		"dull or uneven hardware finish",
	}
	if diff := cmp.Diff(want, Reasons(features)); diff != "" {
		t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestReasonsMidScoresFireNothing(t *testing.T) {
	features := []Feature{
		{Method: "logo", Score: 0.5},
		{Method: "color", Score: 0.5},
		{Method: "veranet", Score: 0.5},
	}
	if got := Reasons(features); len(got) != 0 {
		t.Fatalf("mid scores should fire no rules, got %v", got)
	}
}

func TestReasonsOrderIsRuleTableOrder(t *testing.T) {
	// Input order reversed relative to the rule table; output order must not
	// follow the input.
	features := []Feature{
		{Method: "provenance", Score: 0.1},
		{Method: "logo", Score: 0.9},
	}
	want := []string{
		"logo geometry matches brand reference",
		"serial format not recognized for this brand",
	}
	if diff := cmp.Diff(want, Reasons(features)); diff != "" {
		t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestReasonsDuplicateFeatureFirstWins(t *testing.T) {
	features := []Feature{
		{Method: "logo", Score: 0.9},
		{Method: "logo", Score: 0.1},
	}
	want := []string{"logo geometry matches brand reference"}
	if diff := cmp.Diff(want, Reasons(features)); diff != "" {
		t.Fatalf("reasons mismatch (-want +got):\n%s", diff)
	}
}

func TestReasonsUnknownMethodIgnored(t *testing.T) {
	if got := Reasons([]Feature{{Method: "hologram", Score: 0.99}}); len(got) != 0 {
		t.Fatalf("unlisted method should fire no rules, got %v", got)
	}
}
