package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository for one MongoDB
// collection. Every method bounds its store call with the configured
// operation timeout so no query can hang indefinitely.
type CatalogRepository struct {
	coll    *mongo.Collection
	schema  domain.Schema
	timeout time.Duration
}

// NewCatalogRepository creates a repository over the schema's collection
func NewCatalogRepository(db *mongo.Database, schema domain.Schema, opTimeout time.Duration) *CatalogRepository {
	return &CatalogRepository{
		coll:    db.Collection(schema.Collection),
		schema:  schema,
		timeout: opTimeout,
	}
}

func (r *CatalogRepository) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// queryFromFilter translates the normalized predicate into a MongoDB query
// document. The translation must agree with domain.Filter.Match: facet
// equality matches array elements natively for multi-valued fields.
func queryFromFilter(f domain.Filter) bson.M {
	q := bson.M{}

	for field, value := range f.Facets {
		q[field] = value
	}

	if f.Search != "" {
		q["$text"] = bson.M{"$search": f.Search}
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		q[domain.FieldPrice] = price
	}

	if f.MinRating > 0 {
		q[domain.FieldRating] = bson.M{"$gte": f.MinRating}
	}

	if f.Year != 0 {
		q[domain.FieldYear] = f.Year
	}

	if f.Featured {
		q["featured"] = true
	}

	return q
}

// sortFromSpec translates a comma-separated sort spec ("-sold,-rating") into
// a sort document, appending _id ascending as a tiebreaker so pagination is
// deterministic for a fixed predicate and sort.
func sortFromSpec(spec string) bson.D {
	d := bson.D{}
	for _, key := range strings.Split(spec, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		dir := 1
		if strings.HasPrefix(key, "-") {
			dir = -1
			key = key[1:]
		}
		d = append(d, bson.E{Key: key, Value: dir})
	}
	d = append(d, bson.E{Key: "_id", Value: 1})
	return d
}

// storeErr maps driver failures onto the domain error taxonomy
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrNotFound
	case errors.Is(err, context.DeadlineExceeded),
		mongo.IsTimeout(err),
		mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
	default:
		return err
	}
}

// Create inserts a new item, assigning an id and timestamps
func (r *CatalogRepository) Create(ctx context.Context, item *domain.Item) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	if item.ID == "" {
		item.ID = primitive.NewObjectID().Hex()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, item)
	return storeErr(err)
}

// GetByID retrieves a single item
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	var item domain.Item
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return nil, storeErr(err)
	}
	return &item, nil
}

// Update applies a partial $set update and returns the updated document
func (r *CatalogRepository) Update(ctx context.Context, id string, fields map[string]any) (*domain.Item, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var item domain.Item
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&item)
	if err != nil {
		return nil, storeErr(err)
	}
	return &item, nil
}

// Delete removes an item
func (r *CatalogRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeErr(err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns one sorted page of items matching the filter
func (r *CatalogRepository) List(ctx context.Context, f domain.Filter, sortSpec string, limit, offset int) ([]*domain.Item, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(sortFromSpec(sortSpec)).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, queryFromFilter(f), opts)
	if err != nil {
		return nil, storeErr(err)
	}

	items := []*domain.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeErr(err)
	}
	return items, nil
}

// Count returns the number of items matching the filter
func (r *CatalogRepository) Count(ctx context.Context, f domain.Filter) (int64, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, queryFromFilter(f))
	return n, storeErr(err)
}

// Distinct returns the sorted non-empty distinct values of a string field
func (r *CatalogRepository) Distinct(ctx context.Context, field string) ([]string, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	raw, err := r.coll.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			values = append(values, s)
		}
	}
	sort.Strings(values)
	return values, nil
}

// DistinctYears returns the distinct release years, newest first
func (r *CatalogRepository) DistinctYears(ctx context.Context) ([]int, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	raw, err := r.coll.Distinct(ctx, domain.FieldYear, bson.M{})
	if err != nil {
		return nil, storeErr(err)
	}

	years := make([]int, 0, len(raw))
	for _, v := range raw {
		if f, ok := toFloat(v); ok && f != 0 {
			years = append(years, int(f))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// RecomputeRevenue rewrites revenue as price*sold using a pipeline update,
// so the reconciliation is a single atomic store operation.
func (r *CatalogRepository) RecomputeRevenue(ctx context.Context, id string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			domain.FieldRevenue: bson.M{"$multiply": bson.A{
				bson.M{"$ifNull": bson.A{"$" + domain.FieldPrice, 0}},
				bson.M{"$ifNull": bson.A{"$" + domain.FieldSold, 0}},
			}},
			"updatedAt": "$$NOW",
		}}},
	}

	res, err := r.coll.UpdateByID(ctx, id, pipeline)
	if err != nil {
		return storeErr(err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
