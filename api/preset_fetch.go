package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) PresetFetch(c *gin.Context) {
	preset, err := a.Presets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRepo(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"preset": preset,
	})
}
