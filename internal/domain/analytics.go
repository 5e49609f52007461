package domain

import "strconv"

// BucketOther labels the catch-all histogram bucket for values falling
// outside the declared boundaries.
const BucketOther = "Other"

// Summary holds the scalar aggregates for a filter.
type Summary struct {
	Total        int64   `json:"total"`
	AvgRating    float64 `json:"avgRating"`
	TotalRevenue float64 `json:"totalRevenue"`
	TotalSold    int64   `json:"totalSold"`
}

// FacetGroup is one group of a matching-scoped facet aggregation.
type FacetGroup struct {
	Value   string  `json:"value" bson:"_id"`
	Count   int64   `json:"count" bson:"count"`
	Revenue float64 `json:"revenue,omitempty" bson:"revenue"`
	Sold    int64   `json:"sold,omitempty" bson:"sold"`
}

// HistogramBucket is one fixed-boundary partition of a numeric field. The
// bucket is labeled by its inclusive lower bound, or BucketOther.
type HistogramBucket struct {
	Bucket  string  `json:"bucket"`
	Count   int64   `json:"count"`
	Revenue float64 `json:"revenue,omitempty"`
}

// TrendPoint is revenue/sold aggregated over one (year, month) of creation.
type TrendPoint struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Sold    int64   `json:"sold"`
}

// YearCount is the number of items released in one year.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// Stats is the full aggregation bundle for one filter. Every part is
// computed against the identical predicate; an empty match yields zeroed
// scalars and empty slices, never an error.
type Stats struct {
	TotalItems   int64   `json:"totalItems"`
	AvgRating    float64 `json:"avgRating"`
	TotalRevenue float64 `json:"totalRevenue,omitempty"`
	TotalSold    int64   `json:"totalSold,omitempty"`

	// TopFacet is the leading group of the primary dimension.
	TopFacet *FacetGroup `json:"topFacet,omitempty"`

	// Facets holds the top groups per dimension, keyed by query param.
	Facets map[string][]FacetGroup `json:"facets"`

	RatingDistribution []HistogramBucket `json:"ratingDistribution"`
	PriceDistribution  []HistogramBucket `json:"priceDistribution,omitempty"`

	TopBySold    []*Item `json:"topBySold,omitempty"`
	TopByRevenue []*Item `json:"topByRevenue,omitempty"`
	TopRated     []*Item `json:"topRated"`

	RevenueByMonth []TrendPoint `json:"revenueByMonth,omitempty"`
	ItemsPerYear   []YearCount  `json:"itemsPerYear,omitempty"`
}

// BucketLabel places a value into fixed boundaries using the store's bucket
// semantics: boundaries are half-open [lower, upper), values below the first
// or at/after the last boundary fall into the "Other" bucket. The label is
// the inclusive lower bound of the matched bucket.
func BucketLabel(boundaries []float64, value float64) string {
	if len(boundaries) < 2 || value < boundaries[0] || value >= boundaries[len(boundaries)-1] {
		return BucketOther
	}
	for i := len(boundaries) - 2; i >= 0; i-- {
		if value >= boundaries[i] {
			return FormatBound(boundaries[i])
		}
	}
	return BucketOther
}

// FormatBound renders a bucket boundary without trailing zeros ("4.5", "7").
func FormatBound(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
