package repository

import (
	"context"
	"fmt"

	"lumenfolio/portfolio-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PresetRepo struct {
	col *mongo.Collection
}

func NewPresetRepo(d *mongo.Database) *PresetRepo {
	return &PresetRepo{col: d.Collection("presets")}
}

func (r *PresetRepo) Create(ctx context.Context, p *model.Preset) (string, error) {
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to insert preset, %w", err)
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *PresetRepo) GetByID(ctx context.Context, id string) (*model.Preset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBadID
	}

	var p model.Preset
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load preset, %w", err)
	}

	return &p, nil
}

func (r *PresetRepo) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBadID
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update preset, %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PresetRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBadID
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete preset, %w", err)
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *PresetRepo) List(ctx context.Context, q string, page, limit int) ([]model.Preset, bool, error) {
	filter := bson.M{}
	if q != "" {
		filter["$text"] = bson.M{"$search": q}
	}

	// One extra row decides hasMore without a second count query
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit + 1))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to list presets, %w", err)
	}
	defer cur.Close(ctx)

	presets := []model.Preset{}
	if err := cur.All(ctx, &presets); err != nil {
		return nil, false, fmt.Errorf("failed to decode presets, %w", err)
	}

	hasMore := len(presets) > limit
	if hasMore {
		presets = presets[:limit]
	}

	return presets, hasMore, nil
}
