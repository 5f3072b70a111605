// Package model holds the documents persisted in the presets and
// gallery collections
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preset is a downloadable editing profile. The first image acts as the
// cover thumbnail.
type Preset struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Prompt      string             `bson:"prompt,omitempty" json:"prompt,omitempty"`
	Tags        []string           `bson:"tags" json:"tags"`
	Images      []ImageRef         `bson:"images" json:"images"`
	Cover       string             `bson:"cover,omitempty" json:"cover,omitempty"`
	DNG         *FileRef           `bson:"dng,omitempty" json:"dng,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// CoverURL returns the URL of the first image or "" when none exist.
func (p *Preset) CoverURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}
