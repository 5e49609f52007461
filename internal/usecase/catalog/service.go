package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/avolkov/catalog_insights/internal/domain"
	"github.com/avolkov/catalog_insights/internal/pkg/logger"
	"github.com/avolkov/catalog_insights/internal/pkg/validator"
)

const (
	// DefaultLimit is the page size used when the caller does not ask for one
	DefaultLimit = 36
	// MaxLimit caps the page size; larger requests are clamped, not rejected
	MaxLimit = 100

	facetGroupLimit     = 10
	topItemsLimit       = 10
	recommendationLimit = 20

	eventsSubject = "catalog.events"
)

// EventPublisher defines the interface for publishing catalog events
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CatalogEvent is emitted on every catalog mutation
type CatalogEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	EventType string    `json:"event_type"`
	Entity    string    `json:"entity"`
	ItemID    string    `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Service implements the catalog query layer for one schema. The same code
// serves products and movies; the Schema decides which dimensions, buckets
// and measures apply.
type Service struct {
	schema    domain.Schema
	repo      domain.CatalogRepository
	publisher EventPublisher
	validate  *validatorv10.Validate
	logger    *logger.Logger
}

// NewService creates a catalog service for a schema
func NewService(schema domain.Schema, repo domain.CatalogRepository, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		schema:    schema,
		repo:      repo,
		publisher: publisher,
		validate:  validator.Get(),
		logger:    log,
	}
}

// Schema returns the schema this service is bound to
func (s *Service) Schema() domain.Schema {
	return s.schema
}

// List returns one page of items matching the filter plus pagination
// metadata. Page size is clamped to [1, MaxLimit]; a page past the end
// returns an empty slice with HasMore false, never an error.
func (s *Service) List(ctx context.Context, f domain.Filter, sortBy string, page, limit int) ([]*domain.Item, domain.PageMeta, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page < 1 {
		page = 1
	}

	sortSpec := s.resolveSort(sortBy)

	items, err := s.repo.List(ctx, f, sortSpec, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("Failed to list catalog items", err)
		return nil, domain.PageMeta{}, err
	}

	total, err := s.repo.Count(ctx, f)
	if err != nil {
		s.logger.Error("Failed to count catalog items", err)
		return nil, domain.PageMeta{}, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	if totalPages < 1 {
		totalPages = 1
	}

	meta := domain.PageMeta{
		Total:      total,
		TotalPages: totalPages,
		Page:       page,
		Limit:      limit,
		HasMore:    page < totalPages,
	}
	return items, meta, nil
}

// resolveSort validates a sortBy value ("-sold", "price", ...) against the
// schema whitelist, falling back to the schema default.
func (s *Service) resolveSort(sortBy string) string {
	key := strings.TrimSpace(sortBy)
	if key == "" {
		return s.schema.DefaultSort
	}
	if s.schema.SortFields[strings.TrimPrefix(key, "-")] {
		return key
	}
	return s.schema.DefaultSort
}

// Stats computes the full aggregation bundle. Every sub-aggregate is scoped
// by the identical filter; if any one store call fails the whole call fails
// so clients never see a partial analytics payload.
func (s *Service) Stats(ctx context.Context, f domain.Filter) (*domain.Stats, error) {
	summary, err := s.repo.Summary(ctx, f)
	if err != nil {
		s.logger.Error("Failed to compute summary", err)
		return nil, err
	}

	stats := &domain.Stats{
		TotalItems:   summary.Total,
		AvgRating:    round2(summary.AvgRating),
		TotalRevenue: round2(summary.TotalRevenue),
		TotalSold:    summary.TotalSold,
		Facets:       make(map[string][]domain.FacetGroup, len(s.schema.Facets)),
	}

	for _, facet := range s.schema.Facets {
		groups, err := s.repo.FacetGroups(ctx, f, facet, facetGroupLimit)
		if err != nil {
			s.logger.Errorf(err, "Failed to group by %s", facet.Param)
			return nil, err
		}
		stats.Facets[facet.Param] = groups
	}

	if primary := stats.Facets[s.schema.PrimaryFacet().Param]; len(primary) > 0 {
		top := primary[0]
		stats.TopFacet = &top
	}

	stats.RatingDistribution, err = s.repo.Histogram(ctx, f, domain.FieldRating, s.schema.RatingBuckets)
	if err != nil {
		s.logger.Error("Failed to compute rating distribution", err)
		return nil, err
	}

	if s.schema.Commerce {
		stats.PriceDistribution, err = s.repo.Histogram(ctx, f, domain.FieldPrice, s.schema.PriceBuckets)
		if err != nil {
			s.logger.Error("Failed to compute price distribution", err)
			return nil, err
		}

		stats.TopBySold, err = s.repo.TopItems(ctx, f, "-sold", topItemsLimit)
		if err != nil {
			s.logger.Error("Failed to rank by sold", err)
			return nil, err
		}

		stats.TopByRevenue, err = s.repo.TopItems(ctx, f, "-revenue", topItemsLimit)
		if err != nil {
			s.logger.Error("Failed to rank by revenue", err)
			return nil, err
		}

		stats.RevenueByMonth, err = s.repo.MonthlyTrend(ctx, f)
		if err != nil {
			s.logger.Error("Failed to compute revenue trend", err)
			return nil, err
		}
	}

	stats.TopRated, err = s.repo.TopItems(ctx, f, "-rating", topItemsLimit)
	if err != nil {
		s.logger.Error("Failed to rank by rating", err)
		return nil, err
	}

	if s.schema.HasYear {
		stats.ItemsPerYear, err = s.repo.CountsByYear(ctx, f)
		if err != nil {
			s.logger.Error("Failed to count by year", err)
			return nil, err
		}
	}

	return stats, nil
}

// Recommendations returns the top-rated items of one primary-facet value,
// subject to a rating floor. A non-positive floor falls back to the schema
// default (4 for products, 7 for movies).
func (s *Service) Recommendations(ctx context.Context, facetValue string, minRating float64) ([]*domain.Item, error) {
	if minRating <= 0 {
		minRating = s.schema.RecommendMinRating
	}

	f := domain.Filter{MinRating: minRating}
	if facetValue != "" && facetValue != "All" {
		f.Facets = map[string]string{s.schema.PrimaryFacet().Field: facetValue}
	}

	sortSpec := "-rating"
	if s.schema.Commerce {
		sortSpec = "-rating,-sold"
	}

	items, err := s.repo.List(ctx, f, sortSpec, recommendationLimit, 0)
	if err != nil {
		s.logger.Error("Failed to fetch recommendations", err)
		return nil, err
	}
	return items, nil
}

// FilterOptions returns the distinct values per categorical dimension,
// sorted, for client filter dropdowns.
func (s *Service) FilterOptions(ctx context.Context) (*domain.Options, error) {
	opts := &domain.Options{Facets: make(map[string][]string, len(s.schema.Facets))}

	for _, facet := range s.schema.Facets {
		values, err := s.repo.Distinct(ctx, facet.Field)
		if err != nil {
			s.logger.Errorf(err, "Failed to load distinct %s values", facet.Param)
			return nil, err
		}
		opts.Facets[facet.Param] = values
	}

	if s.schema.HasYear {
		years, err := s.repo.DistinctYears(ctx)
		if err != nil {
			s.logger.Error("Failed to load distinct years", err)
			return nil, err
		}
		opts.Years = years
	}

	return opts, nil
}

// GetByID retrieves a single item
func (s *Service) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == domain.ErrNotFound {
			s.logger.Debugf("Catalog item not found: %s", id)
		} else {
			s.logger.Error("Failed to get catalog item", err)
		}
		return nil, err
	}
	return item, nil
}

// Create validates and stores a new item. Revenue is written as price*sold
// at creation time; later partial updates may let it drift until the
// revenue worker reconciles it.
func (s *Service) Create(ctx context.Context, item *domain.Item) error {
	if err := s.validate.Struct(item); err != nil {
		s.logger.Error("Item validation failed", err)
		return domain.ErrInvalidInput
	}
	if item.Rating < 0 || item.Rating > s.schema.RatingMax {
		return fmt.Errorf("%w: rating must be within [0, %v]", domain.ErrInvalidInput, s.schema.RatingMax)
	}

	if s.schema.Commerce {
		item.Revenue = item.Price * float64(item.Sold)
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create catalog item", err)
		return err
	}

	s.publishEvent(ctx, "created", item.ID)

	s.logger.WithFields(map[string]interface{}{
		"item_id": item.ID,
		"entity":  s.schema.Name,
		"name":    item.Name,
	}).Info("Catalog item created")

	return nil
}

// Update applies a partial update. Revenue is deliberately not recomputed
// here; the published event lets the revenue worker reconcile it.
func (s *Service) Update(ctx context.Context, id string, fields map[string]any) (*domain.Item, error) {
	if len(fields) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if rating, ok := fields[domain.FieldRating]; ok {
		if r, ok := rating.(float64); ok && (r < 0 || r > s.schema.RatingMax) {
			return nil, fmt.Errorf("%w: rating must be within [0, %v]", domain.ErrInvalidInput, s.schema.RatingMax)
		}
	}

	item, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to update catalog item", err)
		}
		return nil, err
	}

	s.publishEvent(ctx, "updated", id)

	s.logger.WithFields(map[string]interface{}{
		"item_id": id,
		"entity":  s.schema.Name,
	}).Info("Catalog item updated")

	return item, nil
}

// Delete removes an item
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err != domain.ErrNotFound {
			s.logger.Error("Failed to delete catalog item", err)
		}
		return err
	}

	s.publishEvent(ctx, "deleted", id)

	s.logger.WithFields(map[string]interface{}{
		"item_id": id,
		"entity":  s.schema.Name,
	}).Info("Catalog item deleted")

	return nil
}

// publishEvent emits a catalog event. Publishing failures are logged, not
// surfaced: the mutation has already been committed to the store.
func (s *Service) publishEvent(ctx context.Context, action, itemID string) {
	if s.publisher == nil {
		return
	}

	event := CatalogEvent{
		EventID:   uuid.New(),
		EventType: fmt.Sprintf("%s.%s", s.schema.Name, action),
		Entity:    s.schema.Name,
		ItemID:    itemID,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal catalog event", err)
		return
	}

	if err := s.publisher.Publish(ctx, eventsSubject, data); err != nil {
		s.logger.Warnf("Failed to publish %s event for %s: %v", event.EventType, itemID, err)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
