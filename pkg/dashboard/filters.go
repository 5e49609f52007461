package dashboard

import (
	"net/url"
	"strconv"
)

// FilterState is the client-side selection a dashboard view renders from. It
// mirrors the server's query parameters: facet params by name, plus search,
// ranges, year and featured.
type FilterState struct {
	// Facets maps query param -> selected value. An absent entry means
	// unconstrained.
	Facets map[string]string

	Search    string
	MinPrice  float64
	MaxPrice  float64
	MinRating float64
	Year      int
	Featured  bool
	SortBy    string
}

// Toggle selects value v for a facet dimension. Toggling a value that is
// already selected clears the dimension, so a double click deselects.
func (f *FilterState) Toggle(dim, v string) {
	if f.Facets == nil {
		f.Facets = make(map[string]string)
	}
	if f.Facets[dim] == v {
		delete(f.Facets, dim)
		return
	}
	f.Facets[dim] = v
}

// Selected returns the current value for a dimension, empty when
// unconstrained.
func (f *FilterState) Selected(dim string) string {
	return f.Facets[dim]
}

// Reset clears every constraint but keeps the sort order.
func (f *FilterState) Reset() {
	f.Facets = nil
	f.Search = ""
	f.MinPrice = 0
	f.MaxPrice = 0
	f.MinRating = 0
	f.Year = 0
	f.Featured = false
}

// Clone returns an independent copy, so a snapshot handed to a fetch is not
// mutated by later toggles.
func (f FilterState) Clone() FilterState {
	c := f
	if f.Facets != nil {
		c.Facets = make(map[string]string, len(f.Facets))
		for k, v := range f.Facets {
			c.Facets[k] = v
		}
	}
	return c
}

// Query encodes the state as server query parameters. Zero values are
// omitted rather than sent as empty constraints.
func (f FilterState) Query() url.Values {
	q := url.Values{}
	for dim, v := range f.Facets {
		if v != "" {
			q.Set(dim, v)
		}
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.MinRating > 0 {
		q.Set("minRating", strconv.FormatFloat(f.MinRating, 'f', -1, 64))
	}
	if f.Year > 0 {
		q.Set("year", strconv.Itoa(f.Year))
	}
	if f.Featured {
		q.Set("featured", "true")
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	return q
}
