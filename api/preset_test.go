package api

import (
	"net/http"
	"testing"

	"lumenfolio/portfolio-api/internal/model"
	"lumenfolio/portfolio-api/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetCreateRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/presets", map[string]any{"name": "Moody"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPresetCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/presets", map[string]any{"dngUrl": "https://host/file.dng"}, adminCookie())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/presets", map[string]any{"name": "Moody"}, adminCookie())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresetCreateBareDNGURL(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/presets", map[string]any{
		"name":   "Moody",
		"dngUrl": "https://host/file.dng",
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Equal(t, true, resp["ok"])
	assert.Empty(t, resp["images"])

	p, err := env.presets.GetByID(t.Context(), resp["id"].(string))
	require.NoError(t, err)
	require.NotNil(t, p.DNG)
	assert.Equal(t, "https://host/file.dng", p.DNG.URL)
	// Bare URL means no media object and nothing to clean up later
	assert.Empty(t, p.DNG.PublicID)
}

func TestPresetCreateCapsImages(t *testing.T) {
	env := newTestEnv(t)

	urls := make([]map[string]string, 0, 10)
	for i := range 10 {
		urls = append(urls, map[string]string{
			"url":       "https://media.test/images/pre-" + string(rune('a'+i)),
			"public_id": "pre-" + string(rune('a'+i)),
		})
	}

	w := env.do(http.MethodPost, "/api/presets", map[string]any{
		"name":      "Big",
		"dngUrl":    "https://host/big.dng",
		"imageUrls": urls,
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	images := resp["images"].([]any)
	require.Len(t, images, model.MaxImages)

	// First entry is the cover
	first := images[0].(map[string]any)
	assert.Equal(t, "https://media.test/images/pre-a", first["url"])
}

func TestPresetEditRemoveAbsentIDIsNoop(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Keep",
		Images: []model.ImageRef{
			{URL: "https://media.test/images/a", PublicID: "a"},
		},
		DNG: &model.FileRef{URL: "https://host/keep.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodPatch, "/api/presets/"+id, map[string]any{
		"removePublicIds": []string{"ghost"},
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	p, err := env.presets.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "a", p.Images[0].PublicID)
}

func TestPresetEditRemovesImage(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Trim",
		Images: []model.ImageRef{
			{URL: "https://media.test/images/a", PublicID: "a"},
			{URL: "https://media.test/images/b", PublicID: "b"},
		},
		DNG: &model.FileRef{URL: "https://host/trim.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodPatch, "/api/presets/"+id, map[string]any{
		"removePublicIds": []string{"a"},
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	p, err := env.presets.GetByID(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, p.Images, 1)
	assert.Equal(t, "b", p.Images[0].PublicID)

	destroys := env.media.destroyed()
	require.Len(t, destroys, 1)
	assert.Equal(t, "a", destroys[0].PublicID)
	assert.Equal(t, storage.ResourceImage, destroys[0].ResourceType)
}

func TestPresetEditDestroyFailureStillDropsReference(t *testing.T) {
	env := newTestEnv(t)
	env.media.failDestroy = true

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Stubborn",
		Images: []model.ImageRef{
			{URL: "https://media.test/images/a", PublicID: "a"},
		},
		DNG: &model.FileRef{URL: "https://host/s.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodPatch, "/api/presets/"+id, map[string]any{
		"removePublicIds": []string{"a"},
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	warnings := resp["warnings"].([]any)
	assert.Contains(t, warnings, "a")

	p, err := env.presets.GetByID(t.Context(), id)
	require.NoError(t, err)
	assert.Empty(t, p.Images)
}

func TestPresetDeleteMoodyScenario(t *testing.T) {
	env := newTestEnv(t)

	// Create with a bare DNG URL and no images
	w := env.do(http.MethodPost, "/api/presets", map[string]any{
		"name":   "Moody",
		"dngUrl": "https://host/file.dng",
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)
	id := decode(t, w)["id"].(string)

	// Attach two already-uploaded images
	w = env.do(http.MethodPatch, "/api/presets/"+id, map[string]any{
		"imageUrls": []map[string]string{
			{"url": "https://media.test/images/x", "public_id": "x"},
			{"url": "https://media.test/images/y", "public_id": "y"},
		},
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/presets/"+id, nil, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	_, err := env.presets.GetByID(t.Context(), id)
	assert.Error(t, err)

	// Exactly two image destroys and no DNG probe, the DNG never lived
	// in the media store
	assert.Len(t, env.media.destroyed(), 2)
	assert.Empty(t, env.media.fileDestroys)
}

func TestPresetDeleteSurvivesDestroyFailures(t *testing.T) {
	env := newTestEnv(t)
	env.media.failDestroy = true

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Doomed",
		Images: []model.ImageRef{
			{URL: "https://media.test/images/a", PublicID: "a"},
			{URL: "https://media.test/images/b", PublicID: "b"},
		},
		DNG: &model.FileRef{URL: "https://media.test/files/d", PublicID: "d"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodDelete, "/api/presets/"+id, nil, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	// Record gone despite every media delete failing
	_, err = env.presets.GetByID(t.Context(), id)
	assert.Error(t, err)

	warnings := decode(t, w)["warnings"].([]any)
	assert.Len(t, warnings, 3)
}

func TestPresetDeleteProbesDNGWithPublicID(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Hosted",
		DNG:  &model.FileRef{URL: "https://media.test/files/d.dng", PublicID: "d.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodDelete, "/api/presets/"+id, nil, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.media.fileDestroys, 1)
	assert.Equal(t, "d.dng", env.media.fileDestroys[0])
}

func TestPresetNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodDelete, "/api/presets/missing", nil, adminCookie())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodDelete, "/api/presets/!bad", nil, adminCookie())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPresetListCachePolicy(t *testing.T) {
	env := newTestEnv(t)

	// Two identical default-shape reads, one repo hit
	w := env.do(http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.presets.listCalls)

	// Searches bypass the cache entirely
	w = env.do(http.MethodGet, "/api/presets?q=moody", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.presets.listCalls)

	// Any mutation clears it
	w = env.do(http.MethodPost, "/api/presets", map[string]any{
		"name":   "Fresh",
		"dngUrl": "https://host/f.dng",
	}, adminCookie())
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/api/presets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, env.presets.listCalls)
}
