package domain

// Document field names shared by schemas, filters and repositories.
const (
	FieldCategories = "categories"
	FieldBrand      = "brand"
	FieldOrigin     = "origin"
	FieldLanguage   = "language"
	FieldCountry    = "country"
	FieldRating     = "rating"
	FieldPrice      = "price"
	FieldSold       = "sold"
	FieldRevenue    = "revenue"
	FieldYear       = "year"
	FieldName       = "name"
	FieldCreatedAt  = "createdAt"
)

// FacetDef describes one categorical dimension of a schema: the query
// parameter it is exposed under, the document field it reads, and whether
// the field is an array (in which case aggregation unwinds it first).
type FacetDef struct {
	Param string
	Field string
	Multi bool
}

// Schema parameterizes the catalog query layer for one entity type. The
// list, aggregation and recommendation code is written once against a
// Schema and instantiated per collection.
type Schema struct {
	Name       string
	Collection string

	// RatingMax bounds the rating scale (5 for products, 10 for movies).
	RatingMax     float64
	RatingBuckets []float64
	// PriceBuckets is nil for entities without commerce measures.
	PriceBuckets []float64

	Facets []FacetDef

	// SortFields whitelists sortBy values (sans direction prefix).
	SortFields  map[string]bool
	DefaultSort string

	// RecommendMinRating is the default rating floor for recommendations.
	RecommendMinRating float64

	// Commerce enables price/stock/sold/revenue measures and the revenue
	// trend; HasYear enables the release-year filter and per-year counts.
	Commerce bool
	HasYear  bool
}

// PrimaryFacet is the dimension recommendations filter on and the one the
// top-facet stat summarizes (category for products, genre for movies).
func (s Schema) PrimaryFacet() FacetDef {
	return s.Facets[0]
}

// FacetByParam resolves a query parameter to its facet definition.
func (s Schema) FacetByParam(param string) (FacetDef, bool) {
	for _, f := range s.Facets {
		if f.Param == param {
			return f, true
		}
	}
	return FacetDef{}, false
}

// ProductSchema describes the tech-product catalog.
func ProductSchema() Schema {
	return Schema{
		Name:          "product",
		Collection:    "products",
		RatingMax:     5,
		RatingBuckets: []float64{0, 1, 2, 3, 4, 4.5, 5},
		PriceBuckets:  []float64{0, 50, 100, 200, 500, 1000, 5000, 10000},
		Facets: []FacetDef{
			{Param: "category", Field: FieldCategories, Multi: true},
			{Param: "brand", Field: FieldBrand},
			{Param: "origin", Field: FieldOrigin},
		},
		SortFields: map[string]bool{
			FieldSold: true, FieldPrice: true, FieldRating: true,
			FieldRevenue: true, FieldName: true, FieldCreatedAt: true,
		},
		DefaultSort:        "-sold",
		RecommendMinRating: 4,
		Commerce:           true,
	}
}

// MovieSchema describes the movie catalog.
func MovieSchema() Schema {
	return Schema{
		Name:          "movie",
		Collection:    "movies",
		RatingMax:     10,
		RatingBuckets: []float64{0, 2, 4, 6, 7, 8, 9, 10},
		Facets: []FacetDef{
			{Param: "genre", Field: FieldCategories, Multi: true},
			{Param: "language", Field: FieldLanguage},
			{Param: "country", Field: FieldCountry},
		},
		SortFields: map[string]bool{
			FieldRating: true, FieldYear: true, FieldName: true,
			FieldCreatedAt: true,
		},
		DefaultSort:        "-rating",
		RecommendMinRating: 7,
		HasYear:            true,
	}
}
