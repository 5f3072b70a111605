package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lumenfolio/portfolio-api/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetFetch(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Golden Hour",
		DNG:  &model.FileRef{URL: "https://host/g.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/presets/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	preset := decode(t, w)["preset"].(map[string]any)
	assert.Equal(t, "Golden Hour", preset["name"])

	w = env.do(http.MethodGet, "/api/presets/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGalleryFetch(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.gallery.Create(t.Context(), &model.GalleryItem{
		Name:       "Dunes",
		Category:   "landscape",
		Visibility: model.VisibilityPublic,
	})
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/gallery/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Dunes", decode(t, w)["item"].(map[string]any)["name"])

	w = env.do(http.MethodGet, "/api/gallery/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPresetDownload(t *testing.T) {
	env := newTestEnv(t)

	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("dng payload"))
	}))
	t.Cleanup(host.Close)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Golden Hour",
		DNG:  &model.FileRef{URL: host.URL + "/g.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/presets/"+id+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, `attachment; filename="Golden_Hour.dng"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "dng payload", w.Body.String())
}

func TestPresetDownloadUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)

	host := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(host.Close)

	id, err := env.presets.Create(t.Context(), &model.Preset{
		Name: "Broken",
		DNG:  &model.FileRef{URL: host.URL + "/b.dng"},
	})
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/presets/"+id+"/download", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPresetDownloadWithoutDNG(t *testing.T) {
	env := newTestEnv(t)

	id, err := env.presets.Create(t.Context(), &model.Preset{Name: "Bare"})
	require.NoError(t, err)

	w := env.do(http.MethodGet, "/api/presets/"+id+"/download", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
