package domain

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilter_AllSentinelMeansNoConstraint(t *testing.T) {
	s := ProductSchema()

	q := url.Values{}
	q.Set("category", "All")
	q.Set("brand", "All")
	q.Set("origin", "")

	f := ParseFilter(s, q)

	assert.Empty(t, f.Facets)
}

func TestParseFilter_FacetsMapToDocumentFields(t *testing.T) {
	s := ProductSchema()

	q := url.Values{}
	q.Set("category", "Laptops")
	q.Set("brand", "Dell")

	f := ParseFilter(s, q)

	assert.Equal(t, "Laptops", f.Facets[FieldCategories])
	assert.Equal(t, "Dell", f.Facets[FieldBrand])
}

func TestParseFilter_MalformedNumbersBecomeAbsent(t *testing.T) {
	s := ProductSchema()

	q := url.Values{}
	q.Set("minPrice", "abc")
	q.Set("maxPrice", "")
	q.Set("minRating", "not-a-number")

	f := ParseFilter(s, q)

	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Zero(t, f.MinRating)
}

func TestParseFilter_NonPositiveMinRatingIgnored(t *testing.T) {
	s := MovieSchema()

	q := url.Values{}
	q.Set("minRating", "0")
	assert.Zero(t, ParseFilter(s, q).MinRating)

	q.Set("minRating", "-2")
	assert.Zero(t, ParseFilter(s, q).MinRating)

	q.Set("minRating", "7.5")
	assert.Equal(t, 7.5, ParseFilter(s, q).MinRating)
}

func TestParseFilter_FeaturedOnlyWhenExplicitlyTrue(t *testing.T) {
	s := ProductSchema()

	q := url.Values{}
	q.Set("featured", "1")
	assert.False(t, ParseFilter(s, q).Featured)

	q.Set("featured", "true")
	assert.True(t, ParseFilter(s, q).Featured)
}

func TestParseFilter_YearOnlyForSchemasWithYear(t *testing.T) {
	q := url.Values{}
	q.Set("year", "2016")

	assert.Equal(t, 2016, ParseFilter(MovieSchema(), q).Year)
	assert.Zero(t, ParseFilter(ProductSchema(), q).Year)

	q.Set("year", "twenty-sixteen")
	assert.Zero(t, ParseFilter(MovieSchema(), q).Year)
}

func TestFilter_Match_MultiValuedFacetContains(t *testing.T) {
	it := &Item{
		Name:       "Ultra Dell Gaming Laptop",
		Categories: []string{"Laptops", "Gaming"},
		Brand:      "Dell",
		Rating:     4.5,
		Price:      1200,
	}

	f := Filter{Facets: map[string]string{FieldCategories: "Gaming"}}
	assert.True(t, f.Match(it))

	f = Filter{Facets: map[string]string{FieldCategories: "Audio"}}
	assert.False(t, f.Match(it))
}

func TestFilter_Match_RangesAndSearch(t *testing.T) {
	it := &Item{
		Name:        "Premium Sony Headphones",
		Description: "Noise cancelling over-ear headphones",
		Rating:      4.2,
		Price:       299,
	}

	minP, maxP := 100.0, 300.0
	f := Filter{MinPrice: &minP, MaxPrice: &maxP, MinRating: 4, Search: "sony headphones"}
	assert.True(t, f.Match(it))

	f.MinRating = 4.5
	assert.False(t, f.Match(it))

	f.MinRating = 0
	f.Search = "sony speakers"
	assert.False(t, f.Match(it))
}

func TestBucketLabel_HalfOpenBoundaries(t *testing.T) {
	movieBuckets := MovieSchema().RatingBuckets

	// 7.5 belongs to the "7" bucket only
	assert.Equal(t, "7", BucketLabel(movieBuckets, 7.5))
	assert.Equal(t, "7", BucketLabel(movieBuckets, 7))
	assert.Equal(t, "6", BucketLabel(movieBuckets, 6.999))
	assert.Equal(t, "8", BucketLabel(movieBuckets, 8))

	// outside the declared boundaries goes to Other, never dropped
	assert.Equal(t, BucketOther, BucketLabel(movieBuckets, -0.5))
	assert.Equal(t, BucketOther, BucketLabel(movieBuckets, 10))

	productBuckets := ProductSchema().RatingBuckets
	assert.Equal(t, "4.5", BucketLabel(productBuckets, 4.7))
	assert.Equal(t, "4", BucketLabel(productBuckets, 4.49))
}
