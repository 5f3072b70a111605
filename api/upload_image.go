package api

import (
	"errors"
	"net/http"

	"lumenfolio/portfolio-api/storage"
	"lumenfolio/portfolio-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UploadImage stores a single image from the admin upload widget. The
// file streams through to the media host, it is never fully buffered.
func (a *API) UploadImage(c *gin.Context) {
	if !isMultipart(c) {
		fail(c, http.StatusBadRequest, "Expected multipart/form-data")
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		fail(c, http.StatusBadRequest, "No image provided")
		return
	}

	code, f, contentType, err := validators.ImageValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate image", zap.Error(err))
			err = errors.New("internal server error")
		}

		fail(c, code, err.Error())
		return
	}
	defer f.Close()

	res, err := a.Media.UploadImageStream(c.Request.Context(), f, fh.Size, contentType)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to upload image", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"url":       res.URL,
		"public_id": res.PublicID,
	})
}

type uploadDeleteBody struct {
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"`
}

// UploadImageDelete drops an uploaded object that never made it into a
// saved record, typically after a cancelled upload.
func (a *API) UploadImageDelete(c *gin.Context) {
	var body uploadDeleteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if body.PublicID == "" {
		fail(c, http.StatusBadRequest, "public_id can't be empty")
		return
	}

	rt := body.ResourceType
	if rt == "" {
		rt = storage.ResourceImage
	}

	result, err := a.Media.Destroy(c.Request.Context(), body.PublicID, rt)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to destroy object", zap.String("public_id", body.PublicID), zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"result": result,
	})
}
