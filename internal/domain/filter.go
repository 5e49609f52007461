package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// sentinel query value meaning "no constraint" for a facet
const facetAll = "All"

// Filter is the normalized predicate applied identically to the list query
// and every aggregate. A zero Filter matches everything.
type Filter struct {
	// Facets maps document field -> required value. Single-valued fields
	// must equal the value, array fields must contain it.
	Facets map[string]string

	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating float64
	Year      int
	Featured  bool
}

// ParseFilter builds a Filter from raw query parameters. It is total: a
// malformed value never produces an error, it becomes an absent constraint.
func ParseFilter(s Schema, q url.Values) Filter {
	f := Filter{}

	for _, fd := range s.Facets {
		if v := q.Get(fd.Param); v != "" && v != facetAll {
			if f.Facets == nil {
				f.Facets = make(map[string]string)
			}
			f.Facets[fd.Field] = v
		}
	}

	f.Search = strings.TrimSpace(q.Get("search"))

	if s.Commerce {
		f.MinPrice = parseOptionalFloat(q.Get("minPrice"))
		f.MaxPrice = parseOptionalFloat(q.Get("maxPrice"))
		f.Featured = q.Get("featured") == "true"
	}

	if v := q.Get("minRating"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			f.MinRating = r
		}
	}

	if s.HasYear {
		if v := q.Get("year"); v != "" && v != facetAll {
			if y, err := strconv.Atoi(v); err == nil {
				f.Year = y
			}
		}
	}

	return f
}

func parseOptionalFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &n
}

// Match reports whether an item satisfies the filter. This is the reference
// matching semantics; the Mongo repository translates the same Filter into a
// query document. Search here is tokenized containment over name and
// description, approximating the store's text index.
func (f Filter) Match(it *Item) bool {
	for field, want := range f.Facets {
		if !containsString(it.FacetValues(field), want) {
			return false
		}
	}

	if f.Search != "" && !matchSearch(it, f.Search) {
		return false
	}

	if f.MinPrice != nil && it.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && it.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating > 0 && it.Rating < f.MinRating {
		return false
	}
	if f.Year != 0 && it.Year != f.Year {
		return false
	}
	if f.Featured && !it.Featured {
		return false
	}

	return true
}

func matchSearch(it *Item, search string) bool {
	haystack := strings.ToLower(it.Name + " " + it.Description)
	for _, token := range strings.Fields(strings.ToLower(search)) {
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
