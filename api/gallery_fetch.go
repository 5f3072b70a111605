package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) GalleryFetch(c *gin.Context) {
	item, err := a.Gallery.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRepo(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":   true,
		"item": item,
	})
}
