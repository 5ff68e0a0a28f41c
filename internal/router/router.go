// internal/router/router.go
package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/javajoker/vendor-console/internal/config"
	"github.com/javajoker/vendor-console/internal/handlers"
	"github.com/javajoker/vendor-console/internal/middleware"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"
)

// Services are the long-lived components behind the HTTP surface.
type Services struct {
	Catalog *services.CatalogService
	Drafts  *services.DraftService
	Storage *services.StorageService
}

// NewServices wires the Product API client, staging storage and the draft
// registry. cache backs the catalog.
func NewServices(cfg *config.Config, cache services.Cache) (*Services, error) {
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	productAPI := services.NewProductAPIService(cfg.ProductAPI, storageService)

	return &Services{
		Catalog: services.NewCatalogService(productAPI, cache),
		Drafts:  services.NewDraftService(productAPI, storageService, cfg.Drafts),
		Storage: storageService,
	}, nil
}

// Initialize builds the gin engine. ctx bounds background work started by
// middleware.
func Initialize(ctx context.Context, cfg *config.Config, svc *Services) *gin.Engine {
	// Initialize handlers
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog)
	draftHandler := handlers.NewDraftHandler(svc.Drafts, svc.Storage)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	utils.SetJWTIssuer(cfg.JWT.Issuer)

	limiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)

	// Initialize Gin router
	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSize

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	v1.Use(middleware.VendorRequired(), limiter.Middleware())
	{
		catalog := v1.Group("/catalog")
		{
			catalog.GET("/bootstrap", catalogHandler.GetBootstrap)
			catalog.GET("/categories", catalogHandler.GetCategories)
			catalog.GET("/categories/:categoryId/subcategories", catalogHandler.GetSubcategories)
			catalog.GET("/measurements", catalogHandler.GetMeasurements)
			catalog.GET("/material-types", catalogHandler.GetMaterialTypes)
			catalog.POST("/refresh", catalogHandler.Refresh)
		}

		drafts := v1.Group("/drafts")
		{
			drafts.POST("", draftHandler.CreateDraft)
			drafts.POST("/edit/:productId", draftHandler.OpenForEdit)
			drafts.GET("/:id", draftHandler.GetDraft)
			drafts.PATCH("/:id", draftHandler.UpdateDetails)
			drafts.DELETE("/:id", draftHandler.DiscardDraft)
			drafts.POST("/:id/retarget/:productId", draftHandler.Retarget)
			drafts.POST("/:id/reset", draftHandler.Reset)
			drafts.POST("/:id/reload", draftHandler.Reload)

			// Images
			drafts.PUT("/:id/main-image", draftHandler.SetMainImage)
			drafts.DELETE("/:id/main-image", draftHandler.ClearMainImage)
			drafts.POST("/:id/gallery", draftHandler.AddGalleryImages)
			drafts.DELETE("/:id/gallery/:source/:index", draftHandler.RemoveGalleryImage)

			// Materials
			drafts.POST("/:id/materials", draftHandler.AddMaterial)
			drafts.PATCH("/:id/materials/:key", draftHandler.SetMaterialField)
			drafts.DELETE("/:id/materials/:key", draftHandler.RemoveMaterial)
			drafts.POST("/:id/materials/:key/availability/:mode", draftHandler.ToggleAvailability)
			drafts.POST("/:id/materials/:key/images", draftHandler.AddMaterialImages)
			drafts.PUT("/:id/materials/:key/images/:index", draftHandler.ReplaceMaterialImage)
			drafts.DELETE("/:id/materials/:key/images/:source/:index", draftHandler.RemoveMaterialImage)
			drafts.POST("/:id/materials/:key/addons", draftHandler.AddAddon)
			drafts.PUT("/:id/materials/:key/addons/:index", draftHandler.UpdateAddon)
			drafts.DELETE("/:id/materials/:key/addons/:index", draftHandler.RemoveAddon)

			// Pricing
			drafts.PUT("/:id/materials/:key/ready-sizes/:size", draftHandler.AddReadySize)
			drafts.DELETE("/:id/materials/:key/ready-sizes/:size", draftHandler.RemoveReadySize)
			drafts.PUT("/:id/materials/:key/prices/:mode/:size", draftHandler.SetPrice)

			// Measurements and sizes
			drafts.POST("/:id/measurements/:pointId/toggle", draftHandler.ToggleMeasurementPoint)
			drafts.PUT("/:id/measurements/:pointId/image", draftHandler.SetMeasurementImage)
			drafts.POST("/:id/sizes/:size/toggle", draftHandler.ToggleSize)
			drafts.PUT("/:id/standard-values/:size", draftHandler.SetStandardValue)
			drafts.PUT("/:id/measurement-values/:size/:pointId", draftHandler.SetMeasurementValue)
			drafts.GET("/:id/measurement-table", draftHandler.GetMeasurementTable)

			// Attributes
			drafts.POST("/:id/attributes", draftHandler.AddAttribute)
			drafts.PUT("/:id/attributes/:index", draftHandler.UpdateAttribute)
			drafts.DELETE("/:id/attributes/:index", draftHandler.RemoveAttribute)

			// Submission
			drafts.GET("/:id/validate", draftHandler.Validate)
			drafts.GET("/:id/payload", draftHandler.PreviewPayload)
			drafts.POST("/:id/submit", draftHandler.Submit)
		}
	}

	return r
}
