package api

import (
	"net/http"

	"lumenfolio/portfolio-api/internal/service"
	"lumenfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
)

// GalleryDelete removes the database record synchronously, that is the
// completion signal. Media cleanup runs detached on the background queue,
// so a successful response does not guarantee the objects are gone yet.
func (a *API) GalleryDelete(c *gin.Context) {
	id := c.Param("id")

	existing, err := a.Gallery.GetByID(c.Request.Context(), id)
	if err != nil {
		failRepo(c, err)
		return
	}

	if err := a.Gallery.Delete(c.Request.Context(), id); err != nil {
		failRepo(c, err)
		return
	}

	a.Cache.Clear()

	refs := make([]storage.DestroyRef, 0, len(existing.Images))
	for _, img := range existing.Images {
		if img.PublicID == "" {
			continue
		}
		refs = append(refs, storage.DestroyRef{
			PublicID:     img.PublicID,
			ResourceType: storage.ResourceImage,
		})
	}

	if len(refs) > 0 {
		a.Cleanup.Enqueue(service.CleanupJob{
			Label: "gallery/" + id,
			Refs:  refs,
		})
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
