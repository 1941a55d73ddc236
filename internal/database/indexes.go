package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

// EnsureIndexes creates the indexes every collection relies on. Failures on
// one collection do not stop the others; the first error is returned.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	var firstErr error
	for _, ensure := range []func(context.Context, *mongo.Database, *slog.Logger) error{
		EnsureOrderIndexes,
		EnsureProductIndexes,
		EnsureShipmentIndexes,
		EnsureUserIndexes,
	} {
		if err := ensure(ctx, db, log); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// EnsureOrderIndexes indexes razorpay_order_id, the key payment
// verification uses to find the order.
func EnsureOrderIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	return createIndex(ctx, db, log, models.OrderCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "razorpay_order_id", Value: 1}},
		Options: options.Index().
			SetName("razorpay_order_id_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"razorpay_order_id": bson.M{"$type": "string"},
			}),
	})
}

func EnsureProductIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	return createIndex(ctx, db, log, models.ProductCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "sku", Value: 1}},
		Options: options.Index().
			SetName("sku_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"sku": bson.M{"$type": "string"},
			}),
	})
}

func EnsureShipmentIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	return createIndex(ctx, db, log, models.ShipmentCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "order_id", Value: 1}},
		Options: options.Index().SetName("order_id_index"),
	})
}

func EnsureUserIndexes(ctx context.Context, db *mongo.Database, log *slog.Logger) error {
	return createIndex(ctx, db, log, models.UserCollection, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	})
}

func createIndex(ctx context.Context, db *mongo.Database, log *slog.Logger, collection string, model mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	name := ""
	if model.Options != nil && model.Options.Name != nil {
		name = *model.Options.Name
	}

	log.Info("creating index", "collection", collection, "index", name)
	if _, err := db.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		log.Warn("index creation failed", "collection", collection, "index", name, "err", err)
		return fmt.Errorf("%s.%s: %w", collection, name, err)
	}
	return nil
}
