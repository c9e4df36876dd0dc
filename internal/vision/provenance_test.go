package vision

import (
	"context"
	"testing"

	"github.com/veralux-ai/veralux/internal/catalog"
)

func TestScoreSerial(t *testing.T) {
	cases := []struct {
		name   string
		brand  catalog.Category
		serial string
		want   float64
	}{
		{"lv date code", "louis_vuitton", "SD1129", 0.9},
		{"lv lowercase normalized", "louis_vuitton", "sd1129", 0.9},
		{"lv wrong shape", "louis_vuitton", "12345", 0.1},
		{"chanel serial", "chanel", "10023329", 0.9},
		{"chanel too short", "chanel", "123", 0.1},
		{"gucci style code", "gucci", "447632 9643", 0.9},
		{"unknown brand generic ok", "maison_nouvelle", "AB-1234", 0.9},
		{"no serial is neutral", "louis_vuitton", "", 0.5},
		{"whitespace only is neutral", "chanel", "   ", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreSerial(tc.brand, tc.serial); got != tc.want {
				t.Fatalf("scoreSerial(%q, %q) = %v, want %v", tc.brand, tc.serial, got, tc.want)
			}
		})
	}
}

func TestProvenanceProducer(t *testing.T) {
	authReg := catalog.Authenticity()
	p := NewProvenanceProducer()

	scores, err := p.Scores(context.Background(), Item{Brand: "louis_vuitton", Serial: "SD1129"}, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] != 0.9 {
		t.Fatalf("authentic = %v", scores[catalog.Authentic])
	}

	scores, err = p.Scores(context.Background(), Item{Brand: "louis_vuitton", Serial: "FAKE!!"}, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if scores[catalog.Authentic] != 0.1 {
		t.Fatalf("authentic = %v", scores[catalog.Authentic])
	}

	// No claimed brand means no provenance evidence at all.
	scores, err = p.Scores(context.Background(), Item{Serial: "SD1129"}, authReg)
	if err != nil {
		t.Fatalf("scores: %v", err)
	}
	if len(scores) != 0 {
		t.Fatalf("expected no scores without a brand, got %v", scores)
	}
}

func TestSoftwareTraceHandlesGarbage(t *testing.T) {
	if softwareTrace(nil) {
		t.Fatal("nil bytes should carry no trace")
	}
	if softwareTrace([]byte("not an image at all")) {
		t.Fatal("unparseable bytes should carry no trace")
	}
}
