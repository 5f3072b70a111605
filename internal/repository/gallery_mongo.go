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

type GalleryRepo struct {
	col *mongo.Collection
}

func NewGalleryRepo(d *mongo.Database) *GalleryRepo {
	return &GalleryRepo{col: d.Collection("gallery")}
}

func (r *GalleryRepo) Create(ctx context.Context, g *model.GalleryItem) (string, error) {
	res, err := r.col.InsertOne(ctx, g)
	if err != nil {
		return "", fmt.Errorf("failed to insert gallery item, %w", err)
	}

	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

func (r *GalleryRepo) GetByID(ctx context.Context, id string) (*model.GalleryItem, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrBadID
	}

	var g model.GalleryItem
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&g)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load gallery item, %w", err)
	}

	return &g, nil
}

func (r *GalleryRepo) Update(ctx context.Context, id string, set bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBadID
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update gallery item, %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *GalleryRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrBadID
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete gallery item, %w", err)
	}

	if res.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *GalleryRepo) List(ctx context.Context, f GalleryFilter) ([]model.GalleryItem, error) {
	filter := bson.M{}

	if f.Category != "" {
		filter["category"] = f.Category
	}

	if f.Featured != nil {
		filter["featured"] = *f.Featured
	}

	switch len(f.Visibilities) {
	case 0:
		// visibility=all, no constraint
	case 1:
		filter["visibility"] = f.Visibilities[0]
	default:
		filter["visibility"] = bson.M{"$in": f.Visibilities}
	}

	if f.Query != "" {
		filter["$text"] = bson.M{"$search": f.Query}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "uploadDate", Value: -1}}).
		SetSkip(int64(f.Skip)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list gallery items, %w", err)
	}
	defer cur.Close(ctx)

	items := []model.GalleryItem{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode gallery items, %w", err)
	}

	return items, nil
}
