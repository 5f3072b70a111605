package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"lumenfolio/portfolio-api/internal/model"
	"lumenfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// presetEditCmd carries a partial update. Nil pointers mean the field was
// absent from the request and keeps its prior value.
type presetEditCmd struct {
	Name            *string
	Description     *string
	Prompt          *string
	Tags            *[]string
	DNGURL          *string
	RemovePublicIDs []string
	ImageRefs       []model.ImageRef
	Files           []*multipart.FileHeader
	DNGFile         *multipart.FileHeader
}

type presetEditJSON struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Prompt          *string          `json:"prompt"`
	Tags            *[]string        `json:"tags"`
	DNGURL          *string          `json:"dngUrl"`
	RemovePublicIDs []string         `json:"removePublicIds"`
	ImageURLs       []model.ImageRef `json:"imageUrls"`
}

func (a *API) PresetEdit(c *gin.Context) {
	cmd, err := parsePresetEdit(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := a.Presets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		failRepo(c, err)
		return
	}

	set := bson.M{}
	warnings := []string{}

	if cmd.Name != nil {
		if *cmd.Name == "" {
			fail(c, http.StatusBadRequest, "Name field can't be empty")
			return
		}
		set["name"] = *cmd.Name
	}
	if cmd.Description != nil {
		set["description"] = *cmd.Description
	}
	if cmd.Prompt != nil {
		set["prompt"] = *cmd.Prompt
	}
	if cmd.Tags != nil {
		set["tags"] = model.UniqueTags(*cmd.Tags)
	}
	if cmd.DNGURL != nil && *cmd.DNGURL != "" && cmd.DNGFile == nil {
		set["dng"] = &model.FileRef{URL: *cmd.DNGURL}
	}

	// Remote destroys are best-effort, the reference leaves the array
	// either way. Ids that aren't in the array are a no-op.
	images := existing.Images
	for _, pid := range cmd.RemovePublicIDs {
		if _, err := a.Media.Destroy(c.Request.Context(), pid, storage.ResourceImage); err != nil {
			warnings = append(warnings, pid)
			zap.L().Warn("Failed to destroy removed image", zap.String("public_id", pid), zap.Error(err))
		}

		images = slices.DeleteFunc(images, func(ref model.ImageRef) bool {
			return ref.PublicID == pid
		})
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

		zap.L().Error("Failed to upload new preset images", zap.Error(err))
		return
	}

	images = model.MergeImages(images, append(cmd.ImageRefs, resultsToRefs(uploaded)...))
	set["images"] = images

	if cmd.DNGFile != nil {
		a.replacePresetDNG(c, cmd.DNGFile, existing, set, warnings)
		return
	}

	if cover := coverOf(images); cover != "" {
		set["cover"] = cover
	} else {
		set["cover"] = nil
	}

	if err := a.Presets.Update(c.Request.Context(), c.Param("id"), set); err != nil {
		failRepo(c, err)
		return
	}

	a.Cache.Clear()

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"warnings": warnings,
	})
}

// replacePresetDNG uploads the replacement file, best-effort drops the old
// object and persists without recomputing the cover.
func (a *API) replacePresetDNG(c *gin.Context, fh *multipart.FileHeader, existing *model.Preset, set bson.M, warnings []string) {
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to open DNG file", zap.Error(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to read DNG file", zap.Error(err))
		return
	}

	res, err := a.Media.UploadFile(c.Request.Context(), data, fh.Filename)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())

		zap.L().Error("Failed to upload DNG file", zap.Error(err))
		return
	}

	// A bare-URL DNG never had a media object, nothing to drop then
	if existing.DNG != nil && existing.DNG.PublicID != "" {
		if _, err := a.Media.DestroyFile(c.Request.Context(), existing.DNG.PublicID); err != nil {
			warnings = append(warnings, existing.DNG.PublicID)
			zap.L().Warn("Failed to destroy old DNG", zap.String("public_id", existing.DNG.PublicID), zap.Error(err))
		}
	}

	set["dng"] = &model.FileRef{
		URL:      res.URL,
		PublicID: res.PublicID,
		Format:   res.Format,
	}

	if err := a.Presets.Update(c.Request.Context(), c.Param("id"), set); err != nil {
		failRepo(c, err)
		return
	}

	a.Cache.Clear()

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"warnings": warnings,
	})
}

func coverOf(images []model.ImageRef) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

func parsePresetEdit(c *gin.Context) (*presetEditCmd, error) {
	if !isMultipart(c) {
		var body presetEditJSON
		if err := c.ShouldBindJSON(&body); err != nil {
			return nil, err
		}

		return &presetEditCmd{
			Name:            body.Name,
			Description:     body.Description,
			Prompt:          body.Prompt,
			Tags:            body.Tags,
			DNGURL:          body.DNGURL,
			RemovePublicIDs: body.RemovePublicIDs,
			ImageRefs:       body.ImageURLs,
		}, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}

	cmd := &presetEditCmd{
		ImageRefs: parseImageRefs(form.Value["imageUrls"]),
		Files:     form.File["images"],
	}

	if v, ok := form.Value["name"]; ok && len(v) > 0 {
		cmd.Name = &v[0]
	}
	if v, ok := form.Value["description"]; ok && len(v) > 0 {
		cmd.Description = &v[0]
	}
	if v, ok := form.Value["prompt"]; ok && len(v) > 0 {
		cmd.Prompt = &v[0]
	}
	if v, ok := form.Value["tags"]; ok && len(v) > 0 {
		tags := parseTags(v[0])
		cmd.Tags = &tags
	}
	if v, ok := form.Value["dngUrl"]; ok && len(v) > 0 {
		cmd.DNGURL = &v[0]
	}

	if v, ok := form.Value["removePublicIds"]; ok {
		for _, entry := range v {
			entry = strings.TrimSpace(entry)
			if strings.HasPrefix(entry, "[") {
				var ids []string
				if err := json.Unmarshal([]byte(entry), &ids); err == nil {
					cmd.RemovePublicIDs = append(cmd.RemovePublicIDs, ids...)
				}
				continue
			}
			if entry != "" {
				cmd.RemovePublicIDs = append(cmd.RemovePublicIDs, entry)
			}
		}
	}

	if dng := form.File["dng"]; len(dng) > 0 {
		cmd.DNGFile = dng[0]
	}

	return cmd, nil
}
