package api

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"lumenfolio/portfolio-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type galleryCreateCmd struct {
	Name         string
	Description  string
	Category     string
	Tags         []string
	Featured     bool
	Visibility   string
	Photographer string
	Location     string
	Equipment    string
	Metadata     *model.ShotMetadata
	ImageRefs    []model.ImageRef
	Files        []*multipart.FileHeader
}

type galleryCreateJSON struct {
	Name         string              `json:"name"`
	Description  string              `json:"description"`
	Category     string              `json:"category"`
	Tags         []string            `json:"tags"`
	Featured     bool                `json:"featured"`
	Visibility   string              `json:"visibility"`
	Photographer string              `json:"photographer"`
	Location     string              `json:"location"`
	Equipment    string              `json:"equipment"`
	Metadata     *model.ShotMetadata `json:"metadata"`
	ImageURLs    []model.ImageRef    `json:"imageUrls"`
}

func (a *API) GalleryCreate(c *gin.Context) {
	cmd, err := parseGalleryCreate(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if cmd.Name == "" {
		fail(c, http.StatusBadRequest, "Name field can't be empty")
		return
	}

	if cmd.Category == "" {
		fail(c, http.StatusBadRequest, "Category field can't be empty")
		return
	}

	if !model.ValidCategory(cmd.Category) {
		fail(c, http.StatusBadRequest, "Unknown category")
		return
	}

	if len(cmd.ImageRefs) == 0 && len(cmd.Files) == 0 {
		fail(c, http.StatusBadRequest, "At least one image is required")
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

		zap.L().Error("Failed to upload gallery images", zap.Error(err))
		return
	}

	images := model.MergeImages(cmd.ImageRefs, resultsToRefs(uploaded))

	visibility := cmd.Visibility
	if visibility == "" {
		visibility = model.VisibilityPublic
	}
	if visibility != model.VisibilityPublic && visibility != model.VisibilityPrivate {
		fail(c, http.StatusBadRequest, "Visibility must be public or private")
		return
	}

	item := &model.GalleryItem{
		Name:         cmd.Name,
		Description:  cmd.Description,
		Images:       images,
		Category:     cmd.Category,
		Tags:         model.UniqueTags(cmd.Tags),
		Featured:     cmd.Featured,
		Visibility:   visibility,
		UploadDate:   time.Now().UTC(),
		Photographer: cmd.Photographer,
		Location:     cmd.Location,
		Equipment:    cmd.Equipment,
		Metadata:     cmd.Metadata,
	}

	id, err := a.Gallery.Create(c.Request.Context(), item)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to save gallery item", zap.Error(err))
		return
	}

	a.Cache.Clear()

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"id":     id,
		"images": images,
	})
}

func parseGalleryCreate(c *gin.Context) (*galleryCreateCmd, error) {
	if !isMultipart(c) {
		var body galleryCreateJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}

		return &galleryCreateCmd{
			Name:         body.Name,
			Description:  body.Description,
			Category:     body.Category,
			Tags:         body.Tags,
			Featured:     body.Featured,
			Visibility:   body.Visibility,
			Photographer: body.Photographer,
			Location:     body.Location,
			Equipment:    body.Equipment,
			Metadata:     body.Metadata,
			ImageRefs:    body.ImageURLs,
		}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	cmd := &galleryCreateCmd{
		Name:         c.PostForm("name"),
		Description:  c.PostForm("description"),
		Category:     c.PostForm("category"),
		Tags:         parseTags(c.PostForm("tags")),
		Featured:     c.PostForm("featured") == "true",
		Visibility:   c.PostForm("visibility"),
		Photographer: c.PostForm("photographer"),
		Location:     c.PostForm("location"),
		Equipment:    c.PostForm("equipment"),
		ImageRefs:    parseImageRefs(form.Value["imageUrls"]),
		Files:        form.File["images"],
	}

	meta := &model.ShotMetadata{
		Aperture:    c.PostForm("aperture"),
		Shutter:     c.PostForm("shutter"),
		FocalLength: c.PostForm("focal_length"),
	}
	if iso := c.PostForm("iso"); iso != "" {
		if v, err := strconv.Atoi(iso); err == nil {
			meta.ISO = v
		}
	}
	if *meta != (model.ShotMetadata{}) {
		cmd.Metadata = meta
	}

	return cmd, nil
}
