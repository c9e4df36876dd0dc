package catalog

import (
	"errors"
	"testing"

	"github.com/veralux-ai/veralux/internal/config"
)

func TestNewRegistryRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		cats []Category
	}{
		{"empty list", nil},
		{"empty category", []Category{"gucci", " "}},
		{"reserved unknown", []Category{"gucci", Unknown}},
		{"duplicate", []Category{"gucci", "gucci"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRegistry("test", tc.cats)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, config.ErrConfiguration) {
				t.Fatalf("error %v does not wrap ErrConfiguration", err)
			}
		})
	}
}

func TestRegistryOrderIsPreserved(t *testing.T) {
	reg, err := NewRegistry("test", []Category{"c", "a", "b"})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	got := reg.Categories()
	want := []Category{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
	if !reg.Contains("a") || reg.Contains("z") || reg.Contains(Unknown) {
		t.Fatal("membership checks wrong")
	}
}

func TestBrandsDefaultAndNarrowed(t *testing.T) {
	all, err := Brands(nil)
	if err != nil {
		t.Fatalf("default brands: %v", err)
	}
	if all.Len() != len(defaultBrands) {
		t.Fatalf("default brand count = %d", all.Len())
	}
	if all.Categories()[0] != "louis_vuitton" {
		t.Fatalf("first brand = %q", all.Categories()[0])
	}

	narrow, err := Brands([]string{"chanel", "gucci"})
	if err != nil {
		t.Fatalf("narrowed brands: %v", err)
	}
	if narrow.Len() != 2 || narrow.Categories()[0] != "chanel" {
		t.Fatalf("narrowed = %v", narrow.Categories())
	}

	if _, err := Brands([]string{"rolex"}); !errors.Is(err, config.ErrConfiguration) {
		t.Fatalf("unsupported brand should be a configuration error, got %v", err)
	}
}

func TestAuthenticityRegistry(t *testing.T) {
	reg := Authenticity()
	cats := reg.Categories()
	if len(cats) != 2 || cats[0] != Authentic || cats[1] != Counterfeit {
		t.Fatalf("authenticity categories = %v", cats)
	}
}

func TestDisplayName(t *testing.T) {
	cases := map[Category]string{
		"louis_vuitton": "Louis Vuitton",
		"gucci":         "Gucci",
		Unknown:         "Unknown",
		Authentic:       "Authentic",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Fatalf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}
