package model

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// Categories a gallery item may be published under.
var Categories = []string{"portrait", "landscape", "street", "travel", "wedding", "studio", "other"}

// ShotMetadata carries optional capture settings shown next to a photo.
type ShotMetadata struct {
	Aperture    string `bson:"aperture,omitempty" json:"aperture,omitempty"`
	Shutter     string `bson:"shutter,omitempty" json:"shutter,omitempty"`
	ISO         int    `bson:"iso,omitempty" json:"iso,omitempty"`
	FocalLength string `bson:"focal_length,omitempty" json:"focal_length,omitempty"`
}

// GalleryItem is a published photograph set.
type GalleryItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Images       []ImageRef         `bson:"images" json:"images"`
	Category     string             `bson:"category" json:"category"`
	Tags         []string           `bson:"tags" json:"tags"`
	Featured     bool               `bson:"featured" json:"featured"`
	Visibility   string             `bson:"visibility" json:"visibility"`
	UploadDate   time.Time          `bson:"uploadDate" json:"uploadDate"`
	Photographer string             `bson:"photographer,omitempty" json:"photographer,omitempty"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	Equipment    string             `bson:"equipment,omitempty" json:"equipment,omitempty"`
	Metadata     *ShotMetadata      `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

func ValidCategory(c string) bool {
	return slices.Contains(Categories, c)
}
