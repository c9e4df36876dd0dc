package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const searchPage = `<!DOCTYPE html>
<html><body>
  <div class="listing">
    <span class="title">Speedy 30 Monogram</span>
    <span class="price">$1,250.00</span>
  </div>
  <div class="listing">
    <span class="title">Speedy 25</span>
    <span class="price">€ 980,00</span>
  </div>
  <div class="listing">
    <span class="title">No price here</span>
    <span class="price">contact seller</span>
  </div>
  <div class="ad">
    <span class="title">Sponsored junk</span>
    <span class="price">$1.00</span>
  </div>
</body></html>`

func TestHTMLSourceSearch(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(searchPage))
	}))
	defer srv.Close()

	src := NewHTMLSource("resale", srv.URL+"/search?q=%s", "listing", "title", "price", time.Second)
	listings, err := src.Search(context.Background(), "louis vuitton speedy")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotPath != "/search?q=louis+vuitton+speedy" {
		t.Fatalf("query path = %q", gotPath)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %+v", listings)
	}
	if listings[0].Title != "Speedy 30 Monogram" || listings[0].Price != 1250 {
		t.Fatalf("first listing = %+v", listings[0])
	}
	if listings[1].Price != 980 {
		t.Fatalf("second listing = %+v", listings[1])
	}
}

func TestHTMLSourceNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewHTMLSource("resale", srv.URL+"/search?q=%s", "listing", "title", "price", time.Second)
	if _, err := src.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected status error")
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"$1,250.00", 1250, true},
		{"€ 980,00", 980, true},
		{"1.250,50", 1250.5, true},
		{"350", 350, true},
		{"contact seller", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parsePrice(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestServiceAggregatesAcrossSources(t *testing.T) {
	svc := NewService([]Source{
		&StaticSource{SourceName: "a", Listings: []Listing{{Source: "a", Price: 100}, {Source: "a", Price: 200}}},
		&StaticSource{SourceName: "b", Err: errors.New("down")},
		&StaticSource{SourceName: "c", Listings: []Listing{{Source: "c", Price: 300}}},
	})

	listings, stats := svc.Query(context.Background(), "q")
	if len(listings) != 3 {
		t.Fatalf("listings = %+v", listings)
	}
	// Registration order survives concurrent execution.
	if listings[0].Source != "a" || listings[2].Source != "c" {
		t.Fatalf("order = %+v", listings)
	}
	if stats.Count != 3 || stats.Min != 100 || stats.Max != 300 || stats.Median != 200 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.Mean != 200 {
		t.Fatalf("mean = %v", stats.Mean)
	}
}

func TestComputeStatsEvenCount(t *testing.T) {
	st := ComputeStats([]Listing{{Price: 100}, {Price: 200}, {Price: 300}, {Price: 1000}})
	if st.Median != 250 {
		t.Fatalf("median = %v", st.Median)
	}
	if st := ComputeStats(nil); st.Count != 0 {
		t.Fatalf("empty stats = %+v", st)
	}
}

func TestPricePlausibility(t *testing.T) {
	st := Stats{Count: 10, Median: 1000}
	if s := PricePlausibility(100, st); s >= 0.5 {
		t.Fatalf("deep discount scored %v", s)
	}
	if s := PricePlausibility(1200, st); s < 0.8 {
		t.Fatalf("market price scored %v", s)
	}
	if s := PricePlausibility(900, Stats{}); s != 0.5 {
		t.Fatalf("no data should be neutral, got %v", s)
	}
}
