package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresetDownload proxies the stored DNG so the browser gets a named
// attachment instead of a redirect to the file host.
func (a *API) PresetDownload(c *gin.Context) {
	preset, err := a.Presets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRepo(c, err)
		return
	}

	if preset.DNG == nil || preset.DNG.URL == "" {
		fail(c, http.StatusNotFound, "Preset has no DNG file")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, preset.DNG.URL, nil)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to build DNG request", zap.Error(err))
		return
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(c, http.StatusBadGateway, "Failed to fetch DNG file")

		zap.L().Error("Failed to fetch DNG file", zap.String("url", preset.DNG.URL), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fail(c, http.StatusBadGateway, "Failed to fetch DNG file")

		zap.L().Error("DNG host returned non-200", zap.Int("status", resp.StatusCode))
		return
	}

	filename := strings.ReplaceAll(preset.Name, " ", "_")
	if filename == "" {
		filename = "preset"
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.dng"`, filename))
	c.Header("Content-Type", "application/octet-stream")
	if resp.ContentLength > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", resp.ContentLength))
	}

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		zap.L().Error("Failed to stream DNG file", zap.Error(err))
	}
}
