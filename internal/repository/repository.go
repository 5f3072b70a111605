// Package repository wraps the two document collections behind small
// interfaces so handlers can be exercised against fakes.
package repository

import (
	"context"
	"errors"

	"lumenfolio/portfolio-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
)

// ErrNotFound is returned when an id is well-formed but matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrBadID is returned when an id can't be parsed at all.
var ErrBadID = errors.New("invalid id")

type Presets interface {
	Create(ctx context.Context, p *model.Preset) (string, error)
	GetByID(ctx context.Context, id string) (*model.Preset, error)
	// Update applies a sparse $set document, keys absent from set keep
	// their prior value.
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	// List returns one page plus a hasMore flag. q empty means unfiltered.
	List(ctx context.Context, q string, page, limit int) ([]model.Preset, bool, error)
}

// GalleryFilter describes a gallery list query. Nil/zero fields are not
// applied. Visibilities nil means no visibility constraint at all.
type GalleryFilter struct {
	Category     string
	Featured     *bool
	Visibilities []string
	Query        string
	Limit        int
	Skip         int
}

type Gallery interface {
	Create(ctx context.Context, g *model.GalleryItem) (string, error)
	GetByID(ctx context.Context, id string) (*model.GalleryItem, error)
	Update(ctx context.Context, id string, set bson.M) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f GalleryFilter) ([]model.GalleryItem, error)
}
