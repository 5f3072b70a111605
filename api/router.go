// Package api contains all endpoints available
package api

import (
	"context"
	"fmt"
	"time"

	"lumenfolio/portfolio-api/db"
	"lumenfolio/portfolio-api/internal/cache"
	"lumenfolio/portfolio-api/internal/repository"
	"lumenfolio/portfolio-api/internal/service"
	"lumenfolio/portfolio-api/middleware"
	"lumenfolio/portfolio-api/storage"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	Router  *gin.Engine
	Presets repository.Presets
	Gallery repository.Gallery
	Media   storage.MediaStore
	Cache   *cache.Store
	Cleanup service.CleanupRunner
}

func NewRouter() (*API, error) {
	makeLogger()

	a := &API{
		Cache: cache.New(),
	}

	ctx := context.Background()

	database, err := db.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB connection, %w", err)
	}

	if err := db.EnsurePresetIndexes(ctx, database); err != nil {
		return nil, err
	}
	if err := db.EnsureGalleryIndexes(ctx, database); err != nil {
		return nil, err
	}

	a.Presets = repository.NewPresetRepo(database)
	a.Gallery = repository.NewGalleryRepo(database)

	media, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize media store client, %w", err)
	}
	a.Media = media

	queue := service.NewCleanupQueue(media, 2)
	queue.StartWorkerPool()
	a.Cleanup = queue

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 5 << 20

	a.mountRoutes(router)

	return a, nil
}

func (a *API) mountRoutes(router *gin.Engine) {
	admin := middleware.NewAdminGate()
	maxUploadSize := viper.GetInt64("upload.max_size")
	if maxUploadSize == 0 {
		maxUploadSize = 10 << 20
	}

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)
	}

	auth := main.Group("/admin", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/admin/login 	-> Sets the admin session cookie
		auth.POST("/login", a.AdminLogin)

		// POST /api/admin/logout 	-> Clears the admin session cookie
		auth.POST("/logout", a.AdminLogout)

		// GET /api/admin/session 	-> Probes whether the session cookie is valid
		auth.GET("/session", a.AdminSession)
	}

	presets := main.Group("/presets")
	{
		// GET /api/presets 		-> Lists presets with search and paging
		presets.GET("", a.PresetFetchBulk)

		// GET /api/presets/:id 	-> Returns a single preset
		presets.GET("/:id", a.PresetFetch)

		// GET /api/presets/:id/download -> Proxies the stored DNG as an attachment
		presets.GET("/:id/download", a.PresetDownload)

		// POST /api/presets 		-> Creates a preset (multipart or JSON)
		presets.POST("", admin, middleware.BodySizeLimiter(maxUploadSize*9), a.PresetCreate)

		// PATCH /api/presets/:id 	-> Partially updates a preset
		presets.PATCH("/:id", admin, middleware.BodySizeLimiter(maxUploadSize*9), a.PresetEdit)

		// DELETE /api/presets/:id 	-> Deletes a preset and its media
		presets.DELETE("/:id", admin, a.PresetDelete)
	}

	gallery := main.Group("/gallery")
	{
		// GET /api/gallery 		-> Lists gallery items with filters
		gallery.GET("", a.GalleryFetchBulk)

		// GET /api/gallery/:id 	-> Returns a single gallery item
		gallery.GET("/:id", a.GalleryFetch)

		// POST /api/gallery 		-> Creates a gallery item
		gallery.POST("", admin, middleware.BodySizeLimiter(maxUploadSize*9), a.GalleryCreate)

		// PUT /api/gallery/:id 	-> Sparse-updates a gallery item
		gallery.PUT("/:id", admin, middleware.BodySizeLimiter(1<<20), a.GalleryEdit)

		// DELETE /api/gallery/:id 	-> Deletes an item, media purged in the background
		gallery.DELETE("/:id", admin, a.GalleryDelete)
	}

	upload := main.Group("/upload-image", admin, middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	}))
	{
		// POST /api/upload-image 	-> Streams a single image to the media host
		upload.POST("", middleware.BodySizeLimiter(maxUploadSize+1<<20), a.UploadImage)

		// DELETE /api/upload-image 	-> Deletes an uploaded object by public id
		upload.DELETE("", a.UploadImageDelete)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
