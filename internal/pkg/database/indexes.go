package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/avolkov/catalog_insights/internal/domain"
)

// EnsureIndexes creates the indexes a catalog collection relies on: a text
// index over name/description for free-text search, plus single-field
// indexes backing the filterable and sortable dimensions. Creation is
// idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database, schema domain.Schema) error {
	coll := db.Collection(schema.Collection)

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: domain.FieldName, Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("text_search"),
		},
		{Keys: bson.D{{Key: domain.FieldRating, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldCreatedAt, Value: -1}}},
	}

	for _, facet := range schema.Facets {
		models = append(models, mongo.IndexModel{
			Keys: bson.D{{Key: facet.Field, Value: 1}},
		})
	}

	if schema.Commerce {
		models = append(models,
			mongo.IndexModel{Keys: bson.D{{Key: domain.FieldPrice, Value: 1}}},
			mongo.IndexModel{Keys: bson.D{{Key: domain.FieldSold, Value: -1}}},
			mongo.IndexModel{Keys: bson.D{{Key: domain.FieldRevenue, Value: -1}}},
			mongo.IndexModel{Keys: bson.D{{Key: "featured", Value: 1}}},
		)
	}

	if schema.HasYear {
		models = append(models, mongo.IndexModel{Keys: bson.D{{Key: domain.FieldYear, Value: 1}}})
	}

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("failed to create indexes for %s: %w", schema.Collection, err)
	}

	return nil
}
