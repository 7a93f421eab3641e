package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"storefront/internal/logger"
)

const (
	ProductsCollection  = "products"
	AddressesCollection = "addresses"
	MediaCollection     = "product_media"
	OptionsCollection   = "product_options"
)

// Connect abre el cliente y hace ping antes de devolverlo
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Info("✅ connected to MongoDB")
	return client, nil
}

// EnsureIndexes crea los índices que usan los repositorios. Es idempotente.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	ordered := mongo.IndexModel{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "sort_order", Value: 1}}}
	for _, name := range []string{AddressesCollection, MediaCollection, OptionsCollection} {
		if _, err := db.Collection(name).Indexes().CreateOne(ctx, ordered); err != nil {
			return fmt.Errorf("index %s: %w", name, err)
		}
	}

	_, err := db.Collection(ProductsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sku", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"is_deleted": false}),
		},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "is_deleted", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("index %s: %w", ProductsCollection, err)
	}

	logger.Debug("indexes ready", zap.String("db", db.Name()))
	return nil
}
