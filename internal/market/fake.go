package market

import "context"

// StaticSource returns fixed listings or a fixed error. Test stand-in.
type StaticSource struct {
	SourceName string
	Listings   []Listing
	Err        error
}

func (s *StaticSource) Name() string { return s.SourceName }

func (s *StaticSource) Search(ctx context.Context, query string) ([]Listing, error) {
	return s.Listings, s.Err
}
