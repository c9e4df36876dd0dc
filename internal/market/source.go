// Package market gathers resale listing data for a brand query and reduces
// it to price statistics. The numbers inform the human reviewer; they never
// enter fusion.
package market

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// Listing is one marketplace hit.
type Listing struct {
	Source string  `json:"source"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
}

// Source searches one marketplace.
type Source interface {
	Name() string
	Search(ctx context.Context, query string) ([]Listing, error)
}

// priceRe pulls the first decimal amount out of a price cell, tolerating
// currency symbols and thousands separators.
var priceRe = regexp.MustCompile(`(\d{1,3}(?:[., ]\d{3})*(?:[.,]\d{2})?)`)

// HTMLSource scrapes a marketplace search page by CSS class. Markup drifts;
// a page where the classes match nothing yields zero listings, not an error.
type HTMLSource struct {
	name         string
	searchURL    string // %s receives the escaped query
	listingClass string
	titleClass   string
	priceClass   string
	client       *http.Client
}

// NewHTMLSource builds a class-selector scraper for one marketplace.
func NewHTMLSource(name, searchURL, listingClass, titleClass, priceClass string, timeout time.Duration) *HTMLSource {
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	return &HTMLSource{
		name:         name,
		searchURL:    searchURL,
		listingClass: listingClass,
		titleClass:   titleClass,
		priceClass:   priceClass,
		client:       &http.Client{Timeout: timeout},
	}
}

func (s *HTMLSource) Name() string { return s.name }

func (s *HTMLSource) Search(ctx context.Context, query string) ([]Listing, error) {
	target := fmt.Sprintf(s.searchURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "veralux/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", s.name, resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", s.name, err)
	}
	return s.extract(doc), nil
}

func (s *HTMLSource) extract(doc *html.Node) []Listing {
	var out []Listing
	for _, node := range nodesByClass(doc, s.listingClass) {
		title := strings.TrimSpace(textByClass(node, s.titleClass))
		price, ok := parsePrice(textByClass(node, s.priceClass))
		if !ok {
			continue
		}
		out = append(out, Listing{Source: s.name, Title: title, Price: price})
	}
	return out
}

// nodesByClass walks the tree depth-first collecting elements carrying the
// class. Matched subtrees are not descended into again, so nested listings do
// not double-count.
func nodesByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// textByClass returns the concatenated text of the first descendant with the
// class, or the node's own text when class is empty.
func textByClass(n *html.Node, class string) string {
	if class == "" {
		return nodeText(n)
	}
	matches := nodesByClass(n, class)
	if len(matches) == 0 {
		return ""
	}
	return nodeText(matches[0])
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// parsePrice extracts a numeric amount from free-form price text.
func parsePrice(text string) (float64, bool) {
	m := priceRe.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0, false
	}
	// Normalize "1.250,00" and "1,250.00" to a plain decimal.
	m = strings.ReplaceAll(m, " ", "")
	if i := strings.LastIndexAny(m, ".,"); i >= 0 && len(m)-i == 3 {
		intPart := strings.Map(func(r rune) rune {
			if r == '.' || r == ',' {
				return -1
			}
			return r
		}, m[:i])
		m = intPart + "." + m[i+1:]
	} else {
		m = strings.Map(func(r rune) rune {
			if r == '.' || r == ',' {
				return -1
			}
			return r
		}, m)
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
