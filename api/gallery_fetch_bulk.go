package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"lumenfolio/portfolio-api/internal/model"
	"lumenfolio/portfolio-api/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	galleryDefaultLimit = 24
	galleryMaxLimit     = 100
)

func (a *API) GalleryFetchBulk(c *gin.Context) {
	f := repository.GalleryFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}

	if v := c.Query("featured"); v != "" {
		featured := v == "true"
		f.Featured = &featured
	}

	// Default is the public face of the site. "all" lifts the constraint,
	// anything else is a comma list of visibilities.
	switch vis := c.DefaultQuery("visibility", model.VisibilityPublic); vis {
	case "all":
		f.Visibilities = nil
	default:
		f.Visibilities = strings.Split(vis, ",")
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(galleryDefaultLimit)))
	if err != nil {
		fail(c, http.StatusBadRequest, "Limit is not a valid integer")
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > galleryMaxLimit {
		limit = galleryMaxLimit
	}
	f.Limit = limit

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		fail(c, http.StatusBadRequest, "Skip is not a valid non-negative integer")
		return
	}
	f.Skip = skip

	cacheable := f.Category == "" && f.Featured == nil && f.Query == "" && skip == 0 &&
		len(f.Visibilities) == 1 && f.Visibilities[0] == model.VisibilityPublic &&
		limit == galleryDefaultLimit

	if cacheable {
		if v, ok := a.Cache.Get(galleryListKey); ok {
			c.JSON(http.StatusOK, v)
			return
		}
	}

	items, err := a.Gallery.List(c.Request.Context(), f)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to list gallery items", zap.Error(err))
		return
	}

	resp := gin.H{
		"ok":    true,
		"items": items,
		"limit": limit,
		"skip":  skip,
	}

	if cacheable {
		a.Cache.Set(galleryListKey, resp, time.Duration(viper.GetInt("cache.ttl"))*time.Second)
	}

	c.JSON(http.StatusOK, resp)
}
