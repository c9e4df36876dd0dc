package catalog

import (
	"fmt"
	"strings"

	"github.com/veralux-ai/veralux/internal/config"
)

// Category identifies one candidate outcome of a decision: a brand name for
// identification, or authentic/counterfeit for authentication.
type Category string

// Unknown is the sentinel for "no usable evidence". It is never a registry
// member and never participates in fusion as a real category.
const Unknown Category = "unknown"

// Authenticity categories.
const (
	Authentic   Category = "authentic"
	Counterfeit Category = "counterfeit"
)

// Registry is a fixed, ordered set of categories for one decision context.
// It is immutable after construction; changing the candidate set is a
// configuration change, never a runtime mutation.
type Registry struct {
	name       string
	categories []Category
	index      map[Category]int
}

// NewRegistry builds a registry from an ordered category list.
// An empty list, a duplicate, or the reserved "unknown" sentinel is a
// configuration error.
func NewRegistry(name string, categories []Category) (*Registry, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: registry %q has no categories", config.ErrConfiguration, name)
	}
	idx := make(map[Category]int, len(categories))
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		c = Category(strings.TrimSpace(string(c)))
		if c == "" {
			return nil, fmt.Errorf("%w: registry %q has an empty category", config.ErrConfiguration, name)
		}
		if c == Unknown {
			return nil, fmt.Errorf("%w: registry %q uses reserved category %q", config.ErrConfiguration, name, Unknown)
		}
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("%w: registry %q lists category %q twice", config.ErrConfiguration, name, c)
		}
		idx[c] = len(out)
		out = append(out, c)
	}
	return &Registry{name: name, categories: out, index: idx}, nil
}

// Name returns the registry's decision-context name.
func (r *Registry) Name() string { return r.name }

// Len returns the number of categories.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.categories)
}

// Categories returns the ordered category list as a copy.
func (r *Registry) Categories() []Category {
	if r == nil {
		return nil
	}
	out := make([]Category, len(r.categories))
	copy(out, r.categories)
	return out
}

// Contains reports whether c is a member of the registry.
func (r *Registry) Contains(c Category) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[c]
	return ok
}

// defaultBrands is the supported brand set, in registry order. Order matters:
// it is the documented tie-break order for equal scores.
var defaultBrands = []Category{
	"louis_vuitton",
	"gucci",
	"chanel",
	"hermes",
	"prada",
	"dior",
	"fendi",
	"burberry",
	"balenciaga",
	"bottega_veneta",
	"saint_laurent",
	"celine",
}

// Brands returns the registry for brand identification. The list may be
// narrowed (never extended) through configuration.
func Brands(configured []string) (*Registry, error) {
	if len(configured) == 0 {
		return NewRegistry("brands", defaultBrands)
	}
	supported := make(map[Category]bool, len(defaultBrands))
	for _, b := range defaultBrands {
		supported[b] = true
	}
	cats := make([]Category, 0, len(configured))
	for _, b := range configured {
		c := Category(b)
		if !supported[c] {
			return nil, fmt.Errorf("%w: unsupported brand %q", config.ErrConfiguration, b)
		}
		cats = append(cats, c)
	}
	return NewRegistry("brands", cats)
}

// Authenticity returns the two-element registry for authentication decisions.
// Authentic is first on purpose: an exact tie resolves to authentic only when
// the fused scores are literally equal, which the strict threshold then rejects.
func Authenticity() *Registry {
	reg, err := NewRegistry("authenticity", []Category{Authentic, Counterfeit})
	if err != nil {
		// Static input; cannot fail.
		panic(err)
	}
	return reg
}

// DisplayName renders a category for humans ("louis_vuitton" -> "Louis Vuitton").
func DisplayName(c Category) string {
	if c == Unknown {
		return "Unknown"
	}
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
