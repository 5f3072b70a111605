// Package db owns the MongoDB connection and index bookkeeping
package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	client     *mongo.Client
	clientOnce sync.Once
	clientErr  error

	indexMu   sync.Mutex
	indexDone = map[string]bool{}
)

// New returns a handle to the configured database. The client is created
// once per process and reused afterwards, the driver pools connections
// internally. No eager ping happens here, a dead server surfaces on the
// first real operation.
func New(ctx context.Context) (*mongo.Database, error) {
	clientOnce.Do(func() {
		uri := viper.GetString("mongo.uri")
		if uri == "" {
			clientErr = fmt.Errorf("no MongoDB URI configured")
			return
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, clientErr = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	})
	if clientErr != nil {
		return nil, clientErr
	}

	return client.Database(viper.GetString("mongo.db")), nil
}

// EnsurePresetIndexes creates the preset collection's indexes at most once
// per process and database name. Safe to call from every request path.
func EnsurePresetIndexes(ctx context.Context, d *mongo.Database) error {
	return ensureOnce(d.Name()+"/presets", func() error {
		_, err := d.Collection("presets").Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "tags", Value: 1}}},
			{Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			}},
		})
		return err
	})
}

// EnsureGalleryIndexes is the gallery counterpart of EnsurePresetIndexes.
func EnsureGalleryIndexes(ctx context.Context, d *mongo.Database) error {
	return ensureOnce(d.Name()+"/gallery", func() error {
		_, err := d.Collection("gallery").Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "uploadDate", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "featured", Value: 1}}},
			{Keys: bson.D{{Key: "visibility", Value: 1}}},
			{Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			}},
		})
		return err
	})
}

func ensureOnce(key string, create func() error) error {
	indexMu.Lock()
	defer indexMu.Unlock()

	if indexDone[key] {
		return nil
	}

	if err := create(); err != nil {
		return fmt.Errorf("failed to create indexes for %s, %w", key, err)
	}

	indexDone[key] = true
	zap.L().Debug("Created indexes", zap.String("collection", key))
	return nil
}
