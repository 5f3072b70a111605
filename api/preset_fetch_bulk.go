package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	presetDefaultLimit = 12
	presetMaxLimit     = 20
)

func (a *API) PresetFetchBulk(c *gin.Context) {
	q := c.Query("q")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		fail(c, http.StatusBadRequest, "Page is not a valid positive integer")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(presetDefaultLimit)))
	if err != nil {
		fail(c, http.StatusBadRequest, "Limit is not a valid integer")
		return
	}

	if limit < 1 {
		limit = 1
	}
	if limit > presetMaxLimit {
		limit = presetMaxLimit
	}

	// Only the default shape is cached, searches and deeper pages always
	// hit the database
	cacheable := q == "" && page == 1
	key := presetListKey(page, limit)

	if cacheable {
		if v, ok := a.Cache.Get(key); ok {
			c.JSON(http.StatusOK, v)
			return
		}
	}

	presets, hasMore, err := a.Presets.List(c.Request.Context(), q, page, limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to list presets", zap.Error(err))
		return
	}

	resp := gin.H{
		"ok":      true,
		"presets": presets,
		"hasMore": hasMore,
		"page":    page,
		"limit":   limit,
	}

	if cacheable {
		a.Cache.Set(key, resp, time.Duration(viper.GetInt("cache.ttl"))*time.Second)
	}

	c.JSON(http.StatusOK, resp)
}
