package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// topItemsProjection limits ranking results to the display-relevant fields
var topItemsProjection = bson.M{
	domain.FieldName:       1,
	domain.FieldRating:     1,
	domain.FieldPrice:      1,
	domain.FieldSold:       1,
	domain.FieldRevenue:    1,
	domain.FieldCategories: 1,
	domain.FieldBrand:      1,
	domain.FieldOrigin:     1,
	domain.FieldLanguage:   1,
	domain.FieldCountry:    1,
	domain.FieldYear:       1,
	"imageUrl":             1,
	"discount":             1,
}

// Summary computes the scalar aggregates in a single $group pass. A filter
// matching nothing yields a zero summary, not an error.
func (r *CatalogRepository) Summary(ctx context.Context, f domain.Filter) (*domain.Summary, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFromFilter(f)}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"total":        bson.M{"$sum": 1},
			"avgRating":    bson.M{"$avg": "$" + domain.FieldRating},
			"totalRevenue": bson.M{"$sum": "$" + domain.FieldRevenue},
			"totalSold":    bson.M{"$sum": "$" + domain.FieldSold},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []struct {
		Total        int64   `bson:"total"`
		AvgRating    float64 `bson:"avgRating"`
		TotalRevenue float64 `bson:"totalRevenue"`
		TotalSold    int64   `bson:"totalSold"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr(err)
	}

	if len(rows) == 0 {
		return &domain.Summary{}, nil
	}
	return &domain.Summary{
		Total:        rows[0].Total,
		AvgRating:    rows[0].AvgRating,
		TotalRevenue: rows[0].TotalRevenue,
		TotalSold:    rows[0].TotalSold,
	}, nil
}

// FacetGroups groups matching items by one categorical dimension. Array
// fields are unwound first, so an item contributes to every facet value it
// carries - facet counts over multi-valued fields do not sum to the match
// count. Groups are ordered by revenue (commerce schemas) or count.
func (r *CatalogRepository) FacetGroups(ctx context.Context, f domain.Filter, facet domain.FacetDef, limit int) ([]domain.FacetGroup, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFromFilter(f)}},
	}
	if facet.Multi {
		pipeline = append(pipeline, bson.D{{Key: "$unwind", Value: "$" + facet.Field}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":     "$" + facet.Field,
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$" + domain.FieldRevenue},
			"sold":    bson.M{"$sum": "$" + domain.FieldSold},
		}}},
	)

	sortKey := "count"
	if r.schema.Commerce {
		sortKey = "revenue"
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: sortKey, Value: -1}, {Key: "_id", Value: 1}}}},
		bson.D{{Key: "$limit", Value: limit}},
	)

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}

	groups := []domain.FacetGroup{}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, storeErr(err)
	}
	return groups, nil
}

// Histogram partitions a numeric field into the fixed boundaries. Values
// outside the declared range land in the explicit "Other" bucket.
func (r *CatalogRepository) Histogram(ctx context.Context, f domain.Filter, field string, boundaries []float64) ([]domain.HistogramBucket, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	bounds := make(bson.A, len(boundaries))
	for i, b := range boundaries {
		bounds[i] = b
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFromFilter(f)}},
		{{Key: "$bucket", Value: bson.M{
			"groupBy":    "$" + field,
			"boundaries": bounds,
			"default":    domain.BucketOther,
			"output": bson.M{
				"count":   bson.M{"$sum": 1},
				"revenue": bson.M{"$sum": "$" + domain.FieldRevenue},
			},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []struct {
		ID      any     `bson:"_id"`
		Count   int64   `bson:"count"`
		Revenue float64 `bson:"revenue"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr(err)
	}

	buckets := make([]domain.HistogramBucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, domain.HistogramBucket{
			Bucket:  bucketLabel(row.ID),
			Count:   row.Count,
			Revenue: row.Revenue,
		})
	}
	return buckets, nil
}

// bucketLabel renders a $bucket _id: the numeric lower bound or "Other"
func bucketLabel(id any) string {
	if s, ok := id.(string); ok {
		return s
	}
	if n, ok := toFloat(id); ok {
		return domain.FormatBound(n)
	}
	return domain.BucketOther
}

// TopItems returns the highest-ranked matching items for one sort, carrying
// only display fields.
func (r *CatalogRepository) TopItems(ctx context.Context, f domain.Filter, sortSpec string, limit int) ([]*domain.Item, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(sortFromSpec(sortSpec)).
		SetLimit(int64(limit)).
		SetProjection(topItemsProjection)

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

// MonthlyTrend aggregates revenue and units sold by creation year+month,
// ascending.
func (r *CatalogRepository) MonthlyTrend(ctx context.Context, f domain.Filter) ([]domain.TrendPoint, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFromFilter(f)}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$" + domain.FieldCreatedAt},
				"month": bson.M{"$month": "$" + domain.FieldCreatedAt},
			},
			"revenue": bson.M{"$sum": "$" + domain.FieldRevenue},
			"sold":    bson.M{"$sum": "$" + domain.FieldSold},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []struct {
		ID struct {
			Year  int32 `bson:"year"`
			Month int32 `bson:"month"`
		} `bson:"_id"`
		Revenue float64 `bson:"revenue"`
		Sold    int64   `bson:"sold"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr(err)
	}

	points := make([]domain.TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, domain.TrendPoint{
			Year:    int(row.ID.Year),
			Month:   int(row.ID.Month),
			Revenue: row.Revenue,
			Sold:    row.Sold,
		})
	}
	return points, nil
}

// CountsByYear groups matching items by release year, ascending
func (r *CatalogRepository) CountsByYear(ctx context.Context, f domain.Filter) ([]domain.YearCount, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: queryFromFilter(f)}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$" + domain.FieldYear,
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeErr(err)
	}

	var rows []struct {
		ID    int32 `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeErr(err)
	}

	counts := make([]domain.YearCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.YearCount{Year: int(row.ID), Count: row.Count})
	}
	return counts, nil
}
