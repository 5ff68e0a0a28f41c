// internal/handlers/catalog.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// catalogMeta carries non-fatal fetch problems next to the data.
func catalogMeta(notices ...*services.Notice) gin.H {
	list := []services.Notice{}
	for _, n := range notices {
		if n != nil {
			list = append(list, *n)
		}
	}
	return gin.H{"notices": list}
}

// GET /catalog/bootstrap
func (h *CatalogHandler) GetBootstrap(c *gin.Context) {
	utils.SuccessResponse(c, h.catalogService.Bootstrap(c.Request.Context()))
}

// GET /catalog/categories
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, notice := h.catalogService.Categories(c.Request.Context())
	utils.SuccessResponseWithMeta(c, categories, catalogMeta(notice))
}

// GET /catalog/categories/:categoryId/subcategories
func (h *CatalogHandler) GetSubcategories(c *gin.Context) {
	subcategories, notice := h.catalogService.Subcategories(c.Request.Context(), c.Param("categoryId"))
	utils.SuccessResponseWithMeta(c, subcategories, catalogMeta(notice))
}

// GET /catalog/measurements
func (h *CatalogHandler) GetMeasurements(c *gin.Context) {
	points, notice := h.catalogService.Measurements(c.Request.Context())
	utils.SuccessResponseWithMeta(c, points, catalogMeta(notice))
}

// GET /catalog/material-types
func (h *CatalogHandler) GetMaterialTypes(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"material_types": models.MaterialTypes,
		"sizes":          models.StandardSizes,
	})
}

// POST /catalog/refresh
func (h *CatalogHandler) Refresh(c *gin.Context) {
	h.catalogService.Invalidate(c.Request.Context())
	h.GetBootstrap(c)
}
