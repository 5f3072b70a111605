package api

import (
	"net/http"

	"lumenfolio/portfolio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type galleryEditJSON struct {
	Name         *string             `json:"name"`
	Description  *string             `json:"description"`
	Category     *string             `json:"category"`
	Tags         *[]string           `json:"tags"`
	Featured     *bool               `json:"featured"`
	Visibility   *string             `json:"visibility"`
	Photographer *string             `json:"photographer"`
	Location     *string             `json:"location"`
	Equipment    *string             `json:"equipment"`
	Metadata     *model.ShotMetadata `json:"metadata"`
	Images       *[]model.ImageRef   `json:"images"`
}

// GalleryEdit applies a sparse update. Unlike preset edits, dropping an
// image reference here does not delete the underlying media object, only
// a full item delete cleans those up.
func (a *API) GalleryEdit(c *gin.Context) {
	var body galleryEditJSON
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := c.Param("id")

	existing, err := a.Gallery.GetByID(c.Request.Context(), id)
	if err != nil {
		failRepo(c, err)
		return
	}

	set := bson.M{}

	if body.Name != nil {
		if *body.Name == "" {
			fail(c, http.StatusBadRequest, "Name field can't be empty")
			return
		}
		set["name"] = *body.Name
	}
	if body.Description != nil {
		set["description"] = *body.Description
	}
	if body.Category != nil {
		if !model.ValidCategory(*body.Category) {
			fail(c, http.StatusBadRequest, "Unknown category")
			return
		}
		set["category"] = *body.Category
	}
	if body.Tags != nil {
		set["tags"] = model.UniqueTags(*body.Tags)
	}
	if body.Featured != nil {
		set["featured"] = *body.Featured
	}
	if body.Visibility != nil {
		if *body.Visibility != model.VisibilityPublic && *body.Visibility != model.VisibilityPrivate {
			fail(c, http.StatusBadRequest, "Visibility must be public or private")
			return
		}
		set["visibility"] = *body.Visibility
	}
	if body.Photographer != nil {
		set["photographer"] = *body.Photographer
	}
	if body.Location != nil {
		set["location"] = *body.Location
	}
	if body.Equipment != nil {
		set["equipment"] = *body.Equipment
	}
	if body.Metadata != nil {
		set["metadata"] = body.Metadata
	}
	if body.Images != nil {
		if len(*body.Images) == 0 {
			fail(c, http.StatusBadRequest, "At least one image is required")
			return
		}
		set["images"] = *body.Images

		if len(*body.Images) < len(existing.Images) {
			zap.L().Debug("Gallery image references dropped without media cleanup",
				zap.String("id", id),
				zap.Int("before", len(existing.Images)),
				zap.Int("after", len(*body.Images)),
			)
		}
	}

	if len(set) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := a.Gallery.Update(c.Request.Context(), id, set); err != nil {
		failRepo(c, err)
		return
	}

	a.Cache.Clear()

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
