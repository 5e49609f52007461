package domain

import (
	"context"
	"time"
)

// Item is the catalog entity. Products and movies share one document shape;
// fields that only apply to one entity are omitempty and the Schema decides
// which ones are exposed through filters and aggregations.
type Item struct {
	ID          string   `json:"id" bson:"_id,omitempty"`
	Name        string   `json:"name" bson:"name" validate:"required,min=1,max=255"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	Categories  []string `json:"categories,omitempty" bson:"categories,omitempty"`
	Rating      float64  `json:"rating" bson:"rating" validate:"gte=0"`

	// Commerce measures. Revenue is a stored product of price and sold,
	// written at mutation time and reconciled asynchronously - it is not
	// recomputed on read.
	Price         float64 `json:"price,omitempty" bson:"price,omitempty" validate:"gte=0"`
	OriginalPrice float64 `json:"originalPrice,omitempty" bson:"originalPrice,omitempty" validate:"gte=0"`
	Stock         int64   `json:"stock" bson:"stock" validate:"gte=0"`
	Sold          int64   `json:"sold" bson:"sold" validate:"gte=0"`
	Revenue       float64 `json:"revenue" bson:"revenue" validate:"gte=0"`
	Discount      float64 `json:"discount,omitempty" bson:"discount,omitempty" validate:"gte=0,lte=100"`

	// Single-valued facets
	Brand    string `json:"brand,omitempty" bson:"brand,omitempty"`
	Origin   string `json:"origin,omitempty" bson:"origin,omitempty"`
	Language string `json:"language,omitempty" bson:"language,omitempty"`
	Country  string `json:"country,omitempty" bson:"country,omitempty"`

	// Movie-only fields
	Year     int      `json:"year,omitempty" bson:"year,omitempty"`
	Director string   `json:"director,omitempty" bson:"director,omitempty"`
	Cast     []string `json:"cast,omitempty" bson:"cast,omitempty"`
	Runtime  int      `json:"runtime,omitempty" bson:"runtime,omitempty"`

	ImageURL       string            `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Tags           []string          `json:"tags,omitempty" bson:"tags,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty" bson:"specifications,omitempty"`
	Featured       bool              `json:"featured" bson:"featured"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FacetValues returns the item's values for a facet field. Single-valued
// facets yield at most one value, multi-valued facets yield every element.
func (it *Item) FacetValues(field string) []string {
	switch field {
	case FieldCategories:
		return it.Categories
	case FieldBrand:
		if it.Brand == "" {
			return nil
		}
		return []string{it.Brand}
	case FieldOrigin:
		if it.Origin == "" {
			return nil
		}
		return []string{it.Origin}
	case FieldLanguage:
		if it.Language == "" {
			return nil
		}
		return []string{it.Language}
	case FieldCountry:
		if it.Country == "" {
			return nil
		}
		return []string{it.Country}
	}
	return nil
}

// PageMeta carries pagination metadata for a list response.
type PageMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	HasMore    bool  `json:"hasMore"`
}

// Options holds the distinct values available for each categorical facet,
// used by clients to populate filter dropdowns.
type Options struct {
	Facets map[string][]string `json:"facets"`
	Years  []int               `json:"years,omitempty"`
}

// CatalogRepository defines document-store access for one catalog collection.
// Every read method that takes a Filter applies it identically - the list
// query and each aggregate must agree on what matches.
type CatalogRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	// Update applies a partial update and returns the updated item.
	Update(ctx context.Context, id string, fields map[string]any) (*Item, error)
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, f Filter, sort string, limit, offset int) ([]*Item, error)
	Count(ctx context.Context, f Filter) (int64, error)

	Summary(ctx context.Context, f Filter) (*Summary, error)
	FacetGroups(ctx context.Context, f Filter, facet FacetDef, limit int) ([]FacetGroup, error)
	Histogram(ctx context.Context, f Filter, field string, boundaries []float64) ([]HistogramBucket, error)
	TopItems(ctx context.Context, f Filter, sort string, limit int) ([]*Item, error)
	MonthlyTrend(ctx context.Context, f Filter) ([]TrendPoint, error)
	CountsByYear(ctx context.Context, f Filter) ([]YearCount, error)

	Distinct(ctx context.Context, field string) ([]string, error)
	DistinctYears(ctx context.Context) ([]int, error)

	// RecomputeRevenue rewrites revenue as price*sold in the store.
	RecomputeRevenue(ctx context.Context, id string) error
}
