package market

import (
	"context"
	"sort"
	"sync"

	"github.com/veralux-ai/veralux/internal/redact"
)

// Stats summarizes listing prices for one query.
type Stats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// Service fans a query out to every configured source and aggregates the
// results. A failing source logs and contributes nothing; the service itself
// never errors.
type Service struct {
	sources []Source
}

func NewService(sources []Source) *Service {
	return &Service{sources: sources}
}

// Query searches all sources concurrently and returns the combined listings
// with their price statistics. Listing order follows source registration
// order, then each source's own order.
func (s *Service) Query(ctx context.Context, query string) ([]Listing, Stats) {
	results := make([][]Listing, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			listings, err := src.Search(ctx, query)
			if err != nil {
				redact.Logf("market: source %s failed: %v", src.Name(), err)
				return
			}
			results[i] = listings
		}(i, src)
	}
	wg.Wait()

	var all []Listing
	for _, r := range results {
		all = append(all, r...)
	}
	return all, ComputeStats(all)
}

// ComputeStats reduces listings to price statistics. Zero listings produce
// the zero Stats.
func ComputeStats(listings []Listing) Stats {
	if len(listings) == 0 {
		return Stats{}
	}

	prices := make([]float64, 0, len(listings))
	for _, l := range listings {
		prices = append(prices, l.Price)
	}
	sort.Float64s(prices)

	sum := 0.0
	for _, p := range prices {
		sum += p
	}

	n := len(prices)
	median := prices[n/2]
	if n%2 == 0 {
		median = (prices[n/2-1] + prices[n/2]) / 2
	}

	return Stats{
		Count:  n,
		Min:    prices[0],
		Max:    prices[n-1],
		Mean:   sum / float64(n),
		Median: median,
	}
}

// PricePlausibility grades an asking price against market statistics. Deeply
// discounted luxury pieces correlate with counterfeits; the score is advisory
// context for the reviewer, not fusion input.
func PricePlausibility(price float64, st Stats) float64 {
	if st.Count == 0 || price <= 0 || st.Median <= 0 {
		return 0.5
	}
	ratio := price / st.Median
	switch {
	case ratio < 0.15:
		return 0.05
	case ratio < 0.4:
		return 0.25
	case ratio <= 2.5:
		return 0.9
	case ratio <= 5:
		return 0.6
	default:
		return 0.3
	}
}
