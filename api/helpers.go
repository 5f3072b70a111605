package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"lumenfolio/portfolio-api/internal/model"
	"lumenfolio/portfolio-api/internal/repository"
	"lumenfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
)

func fail(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{
		"ok":        false,
		"error":     msg,
		"requestID": c.GetString("requestID"),
	})
}

// failRepo translates repository errors into the HTTP taxonomy. Anything
// that isn't a bad id or a miss is an upstream fault whose message is
// passed through.
func failRepo(c *gin.Context, err error) {
	switch err {
	case repository.ErrBadID:
		fail(c, http.StatusBadRequest, "Invalid id")
	case repository.ErrNotFound:
		fail(c, http.StatusNotFound, "Not found")
	default:
		fail(c, http.StatusInternalServerError, err.Error())
	}
}

func presetListKey(page, limit int) string {
	return fmt.Sprintf("presets:list:%d:%d", page, limit)
}

const galleryListKey = "gallery:list:default"

// parseImageRefs accepts pre-uploaded image references, each entry either
// a JSON object carrying {url, public_id} or a bare URL string.
func parseImageRefs(entries []string) []model.ImageRef {
	refs := make([]model.ImageRef, 0, len(entries))

	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}

		if strings.HasPrefix(e, "{") {
			var ref model.ImageRef
			if err := json.Unmarshal([]byte(e), &ref); err == nil && ref.URL != "" {
				refs = append(refs, ref)
			}
			continue
		}

		refs = append(refs, model.ImageRef{URL: e})
	}

	return refs
}

// parseTags accepts either a JSON array or a comma-separated string.
func parseTags(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err == nil {
			return model.UniqueTags(tags)
		}
	}

	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return model.UniqueTags(parts)
}

// readImagePayloads buffers raw multipart image files for upload.
func readImagePayloads(files []*multipart.FileHeader) ([]storage.ImagePayload, error) {
	payloads := make([]storage.ImagePayload, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file, %w", err)
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file, %w", err)
		}

		payloads = append(payloads, storage.ImagePayload{
			Data:        data,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	return payloads, nil
}

func resultsToRefs(results []storage.UploadResult) []model.ImageRef {
	refs := make([]model.ImageRef, 0, len(results))
	for _, r := range results {
		refs = append(refs, model.ImageRef{
			URL:      r.URL,
			PublicID: r.PublicID,
			ThumbURL: r.ThumbURL,
			Width:    r.Width,
			Height:   r.Height,
		})
	}
	return refs
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.Header.Get("Content-Type"), "multipart/form-data")
}
