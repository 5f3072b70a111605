package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"sync"
	"testing"

	"lumenfolio/portfolio-api/internal/cache"
	"lumenfolio/portfolio-api/internal/model"
	"lumenfolio/portfolio-api/internal/repository"
	"lumenfolio/portfolio-api/internal/service"
	"lumenfolio/portfolio-api/security"
	"lumenfolio/portfolio-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	testPassword = "correct-horse"
	testSecret   = "0123456789abcdef0123456789abcdef"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	viper.Set("admin.password", testPassword)
	viper.Set("admin.secret", testSecret)
	viper.Set("cache.ttl", 60)
	viper.Set("upload.max_size", int64(10<<20))
	viper.Set("upload.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})

	os.Exit(m.Run())
}

type fakePresets struct {
	mu        sync.Mutex
	items     map[string]*model.Preset
	nextID    int
	listCalls int
	updates   []bson.M
}

func newFakePresets() *fakePresets {
	return &fakePresets{items: map[string]*model.Preset{}}
}

func (f *fakePresets) Create(_ context.Context, p *model.Preset) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("preset-%d", f.nextID)
	cp := *p
	f.items[id] = &cp
	return id, nil
}

func (f *fakePresets) GetByID(_ context.Context, id string) (*model.Preset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id == "!bad" {
		return nil, repository.ErrBadID
	}

	p, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cp := *p
	return &cp, nil
}

func (f *fakePresets) Update(_ context.Context, id string, set bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}

	f.updates = append(f.updates, set)
	if imgs, ok := set["images"].([]model.ImageRef); ok {
		f.items[id].Images = imgs
	}
	if dng, ok := set["dng"].(*model.FileRef); ok {
		f.items[id].DNG = dng
	}
	return nil
}

func (f *fakePresets) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}

	delete(f.items, id)
	return nil
}

func (f *fakePresets) List(_ context.Context, q string, page, limit int) ([]model.Preset, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++

	out := []model.Preset{}
	for _, p := range f.items {
		out = append(out, *p)
	}
	return out, false, nil
}

type fakeGallery struct {
	mu     sync.Mutex
	items  map[string]*model.GalleryItem
	nextID int
}

func newFakeGallery() *fakeGallery {
	return &fakeGallery{items: map[string]*model.GalleryItem{}}
}

func (f *fakeGallery) Create(_ context.Context, g *model.GalleryItem) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := fmt.Sprintf("gallery-%d", f.nextID)
	cp := *g
	f.items[id] = &cp
	return id, nil
}

func (f *fakeGallery) GetByID(_ context.Context, id string) (*model.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	g, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cp := *g
	return &cp, nil
}

func (f *fakeGallery) Update(_ context.Context, id string, set bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (f *fakeGallery) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}

	delete(f.items, id)
	return nil
}

func (f *fakeGallery) List(_ context.Context, filter repository.GalleryFilter) ([]model.GalleryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []model.GalleryItem{}
	for _, g := range f.items {
		if filter.Category != "" && g.Category != filter.Category {
			continue
		}
		if filter.Featured != nil && g.Featured != *filter.Featured {
			continue
		}
		if len(filter.Visibilities) > 0 && !slices.Contains(filter.Visibilities, g.Visibility) {
			continue
		}
		out = append(out, *g)
	}
	return out, nil
}

type fakeMedia struct {
	mu           sync.Mutex
	nextID       int
	destroys     []storage.DestroyRef
	fileDestroys []string
	failDestroy  bool
}

func (f *fakeMedia) UploadImages(_ context.Context, payloads []storage.ImagePayload) ([]storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := make([]storage.UploadResult, 0, len(payloads))
	for range payloads {
		f.nextID++
		pid := fmt.Sprintf("up-%d", f.nextID)
		results = append(results, storage.UploadResult{
			URL:      "https://media.test/images/" + pid,
			PublicID: pid,
		})
	}
	return results, nil
}

func (f *fakeMedia) UploadImageStream(_ context.Context, r io.Reader, _ int64, _ string) (*storage.UploadResult, error) {
	io.Copy(io.Discard, r)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	pid := fmt.Sprintf("up-%d", f.nextID)
	return &storage.UploadResult{URL: "https://media.test/images/" + pid, PublicID: pid}, nil
}

func (f *fakeMedia) UploadFile(_ context.Context, _ []byte, filename string) (*storage.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	pid := fmt.Sprintf("file-%d", f.nextID)
	return &storage.UploadResult{URL: "https://media.test/files/" + pid, PublicID: pid}, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID, resourceType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDestroy {
		return "", fmt.Errorf("store unavailable")
	}

	f.destroys = append(f.destroys, storage.DestroyRef{PublicID: publicID, ResourceType: resourceType})
	return "ok", nil
}

func (f *fakeMedia) DestroyFile(_ context.Context, publicID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDestroy {
		return "", fmt.Errorf("store unavailable")
	}

	f.fileDestroys = append(f.fileDestroys, publicID)
	return "ok", nil
}

func (f *fakeMedia) destroyed() []storage.DestroyRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.destroys)
}

type fakeCleanup struct {
	mu   sync.Mutex
	jobs []service.CleanupJob
}

func (f *fakeCleanup) Enqueue(job service.CleanupJob) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
}

type testEnv struct {
	api     *API
	router  *gin.Engine
	presets *fakePresets
	gallery *fakeGallery
	media   *fakeMedia
	cleanup *fakeCleanup
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		presets: newFakePresets(),
		gallery: newFakeGallery(),
		media:   &fakeMedia{},
		cleanup: &fakeCleanup{},
	}

	store := cache.New()
	t.Cleanup(store.Close)

	env.api = &API{
		Presets: env.presets,
		Gallery: env.gallery,
		Media:   env.media,
		Cache:   store,
		Cleanup: env.cleanup,
	}

	env.router = gin.New()
	env.api.mountRoutes(env.router)

	return env
}

func adminCookie() *http.Cookie {
	return &http.Cookie{
		Name:  security.CookieName,
		Value: security.AdminToken(testPassword, testSecret),
	}
}

func (e *testEnv) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}
