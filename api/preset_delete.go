package api

import (
	"net/http"
	"sync"

	"lumenfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresetDelete removes the database record first, then purges media
// before responding. Individual destroy failures are settled and ignored,
// the record stays gone regardless.
func (a *API) PresetDelete(c *gin.Context) {
	id := c.Param("id")

	existing, err := a.Presets.GetByID(c.Request.Context(), id)
	if err != nil {
		failRepo(c, err)
		return
	}

	if err := a.Presets.Delete(c.Request.Context(), id); err != nil {
		failRepo(c, err)
		return
	}

	a.Cache.Clear()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		warnings []string
	)

	for _, img := range existing.Images {
		if img.PublicID == "" {
			continue
		}

		wg.Add(1)
		go func(pid string) {
			defer wg.Done()

			if _, err := a.Media.Destroy(c.Request.Context(), pid, storage.ResourceImage); err != nil {
				mu.Lock()
				warnings = append(warnings, pid)
				mu.Unlock()

				zap.L().Warn("Failed to destroy preset image", zap.String("public_id", pid), zap.Error(err))
			}
		}(img.PublicID)
	}

	wg.Wait()

	// Bare-URL DNGs were never stored remotely, skip the probe entirely
	if existing.DNG != nil && existing.DNG.PublicID != "" {
		if _, err := a.Media.DestroyFile(c.Request.Context(), existing.DNG.PublicID); err != nil {
			warnings = append(warnings, existing.DNG.PublicID)
			zap.L().Warn("Failed to destroy preset DNG", zap.String("public_id", existing.DNG.PublicID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"warnings": warnings,
	})
}
