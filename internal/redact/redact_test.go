package redact

import (
	"strings"
	"testing"
)

func TestStringRedaction(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		disallow []string
		require  []string
	}{
		{
			name:     "bearer header",
			input:    "Authorization: Bearer sk-secret-123",
			disallow: []string{"sk-secret-123"},
			require:  []string{"[REDACTED]"},
		},
		{
			name:     "api keys slice",
			input:    "api_keys=[client-key-1 client-key-2]",
			disallow: []string{"client-key-1", "client-key-2"},
			require:  []string{"api_keys=[REDACTED]"},
		},
		{
			name:     "api key header",
			input:    "X-API-Key: vx-live-00aa11bb",
			disallow: []string{"vx-live-00aa11bb"},
			require:  []string{"[REDACTED]"},
		},
		{
			name:     "serial number masked",
			input:    "serial=SD1129 brand=louis_vuitton",
			disallow: []string{"SD1129"},
			require:  []string{"serial=**1129", "louis_vuitton"},
		},
		{
			name:     "webhook url",
			input:    "sink_url=https://audit.example.com/hooks/ingest?sig=abc123",
			disallow: []string{"ingest?sig=abc123"},
			require:  []string{"https://audit.example.com/ingest"},
		},
		{
			name:     "mixed token",
			input:    "Bearer abc key=supersecret token=anotherone bundle_base=https://models.example.test/bundles/current/",
			disallow: []string{"abc", "supersecret", "anotherone", "bundles/current/"},
			require:  []string{"[REDACTED]", "https://models.example.test/[REDACTED_PATH]"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := String(tc.input)
			for _, bad := range tc.disallow {
				if bad != "" && contains(out, bad) {
					t.Fatalf("output still contains %q: %s", bad, out)
				}
			}
			for _, want := range tc.require {
				if want == "" {
					continue
				}
				if !contains(out, want) {
					t.Fatalf("output missing required substring %q: %s", want, out)
				}
			}
		})
	}
}

func TestMaskSerial(t *testing.T) {
	cases := map[string]string{
		"SD1129":       "**1129",
		"VI0023":       "**0023",
		"ABC":          "***",
		"":             "",
		"10023329CD1X": "********CD1X",
	}
	for in, want := range cases {
		if got := MaskSerial(in); got != want {
			t.Fatalf("MaskSerial(%q) = %q, want %q", in, got, want)
		}
	}
}

func contains(s, sub string) bool {
	return s != "" && sub != "" && strings.Contains(s, sub)
}
