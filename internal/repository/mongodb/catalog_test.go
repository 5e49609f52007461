package mongodb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/avolkov/catalog_insights/internal/domain"
)

func TestQueryFromFilter_Empty(t *testing.T) {
	q := queryFromFilter(domain.Filter{})
	assert.Empty(t, q)
}

func TestQueryFromFilter_AllConstraints(t *testing.T) {
	minP, maxP := 100.0, 500.0
	f := domain.Filter{
		Facets:    map[string]string{domain.FieldCategories: "Laptops", domain.FieldBrand: "Dell"},
		Search:    "gaming",
		MinPrice:  &minP,
		MaxPrice:  &maxP,
		MinRating: 4,
		Featured:  true,
	}

	q := queryFromFilter(f)

	assert.Equal(t, "Laptops", q[domain.FieldCategories])
	assert.Equal(t, "Dell", q[domain.FieldBrand])
	assert.Equal(t, bson.M{"$search": "gaming"}, q["$text"])
	assert.Equal(t, bson.M{"$gte": 100.0, "$lte": 500.0}, q[domain.FieldPrice])
	assert.Equal(t, bson.M{"$gte": 4.0}, q[domain.FieldRating])
	assert.Equal(t, true, q["featured"])
}

func TestQueryFromFilter_OpenEndedPriceRange(t *testing.T) {
	maxP := 250.0
	q := queryFromFilter(domain.Filter{MaxPrice: &maxP})
	assert.Equal(t, bson.M{"$lte": 250.0}, q[domain.FieldPrice])
}

func TestQueryFromFilter_Year(t *testing.T) {
	q := queryFromFilter(domain.Filter{Year: 2016})
	assert.Equal(t, 2016, q[domain.FieldYear])
}

func TestSortFromSpec_AppendsIDTiebreaker(t *testing.T) {
	d := sortFromSpec("-sold")
	assert.Equal(t, bson.D{{Key: "sold", Value: -1}, {Key: "_id", Value: 1}}, d)
}

func TestSortFromSpec_MultipleKeys(t *testing.T) {
	d := sortFromSpec("-rating,-sold")
	assert.Equal(t, bson.D{
		{Key: "rating", Value: -1},
		{Key: "sold", Value: -1},
		{Key: "_id", Value: 1},
	}, d)
}

func TestBucketLabel_FormatsBounds(t *testing.T) {
	assert.Equal(t, "4.5", bucketLabel(4.5))
	assert.Equal(t, "7", bucketLabel(int32(7)))
	assert.Equal(t, "Other", bucketLabel("Other"))
}

func TestStoreErr_Mapping(t *testing.T) {
	assert.NoError(t, storeErr(nil))
	assert.ErrorIs(t, storeErr(mongo.ErrNoDocuments), domain.ErrNotFound)
	assert.ErrorIs(t, storeErr(context.DeadlineExceeded), domain.ErrUnavailable)

	opaque := errors.New("boom")
	assert.Equal(t, opaque, storeErr(opaque))
}
