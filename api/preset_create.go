package api

import (
	"mime/multipart"
	"net/http"
	"time"

	"lumenfolio/portfolio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// presetCreateCmd is the validated internal command both request shapes
// (multipart and JSON) are parsed into.
type presetCreateCmd struct {
	Name        string
	Description string
	Prompt      string
	DNGURL      string
	Tags        []string
	ImageRefs   []model.ImageRef
	Files       []*multipart.FileHeader
}

type presetCreateJSON struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Prompt      string           `json:"prompt"`
	Tags        []string         `json:"tags"`
	DNGURL      string           `json:"dngUrl"`
	ImageURLs   []model.ImageRef `json:"imageUrls"`
}

func (a *API) PresetCreate(c *gin.Context) {
	cmd, err := parsePresetCreate(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if cmd.Name == "" {
		fail(c, http.StatusBadRequest, "Name field can't be empty")
		return
	}

	if cmd.DNGURL == "" {
		fail(c, http.StatusBadRequest, "A DNG download URL is required")
		return
	}

	payloads, err := readImagePayloads(cmd.Files)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to read uploaded images", zap.Error(err))
		return
	}

	uploaded, err := a.Media.UploadImages(c.Request.Context(), payloads)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to upload preset images", zap.Error(err))
		return
	}

	// Pre-uploaded references are trusted as-is, fresh uploads follow them
	images := model.MergeImages(cmd.ImageRefs, resultsToRefs(uploaded))

	preset := &model.Preset{
		Name:        cmd.Name,
		Description: cmd.Description,
		Prompt:      cmd.Prompt,
		Tags:        model.UniqueTags(cmd.Tags),
		Images:      images,
		// The DNG stays a bare external URL, no media object backs it
		DNG:       &model.FileRef{URL: cmd.DNGURL},
		CreatedAt: time.Now().UTC(),
	}
	preset.Cover = preset.CoverURL()

	id, err := a.Presets.Create(c.Request.Context(), preset)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to save preset", zap.Error(err))
		return
	}

	a.Cache.Clear()

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"id":     id,
		"images": images,
	})
}

func parsePresetCreate(c *gin.Context) (*presetCreateCmd, error) {
	if !isMultipart(c) {
		var body presetCreateJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}

		return &presetCreateCmd{
			Name:        body.Name,
			Description: body.Description,
			Prompt:      body.Prompt,
			DNGURL:      body.DNGURL,
			Tags:        body.Tags,
			ImageRefs:   body.ImageURLs,
		}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	return &presetCreateCmd{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Prompt:      c.PostForm("prompt"),
		DNGURL:      c.PostForm("dngUrl"),
		Tags:        parseTags(c.PostForm("tags")),
		ImageRefs:   parseImageRefs(form.Value["imageUrls"]),
		Files:       form.File["images"],
	}, nil
}
