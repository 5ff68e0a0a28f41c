// internal/handlers/materials.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/i18n"
	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/utils"
)

// POST /drafts/:id/materials
func (h *DraftHandler) AddMaterial(c *gin.Context) {
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		b.AddMaterial()
		return nil, nil
	})
}

// DELETE /drafts/:id/materials/:key
func (h *DraftHandler) RemoveMaterial(c *gin.Context) {
	key := c.Param("key")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		// Staged files of the material go with it.
		var files []models.StagedFile
		if m, _ := b.Product().FindMaterial(key); m != nil {
			files = materialStagedFiles(m)
		}
		if err := b.RemoveMaterial(key); err != nil {
			return nil, err
		}
		return files, nil
	})
}

func materialStagedFiles(m *models.Material) []models.StagedFile {
	var files []models.StagedFile
	for _, img := range m.Images {
		if img.Replacement != nil {
			files = append(files, *img.Replacement)
		}
	}
	files = append(files, m.NewImages...)
	for _, a := range m.Addons {
		if a.Image != nil {
			files = append(files, *a.Image)
		}
	}
	return files
}

// PATCH /drafts/:id/materials/:key
func (h *DraftHandler) SetMaterialField(c *gin.Context) {
	var req MaterialFieldRequest
	if !bindJSON(c, &req) {
		return
	}
	key := c.Param("key")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.SetMaterialField(key, models.MaterialField(req.Field), req.Value)
	})
}

// POST /drafts/:id/materials/:key/availability/:mode
func (h *DraftHandler) ToggleAvailability(c *gin.Context) {
	key, mode := c.Param("key"), models.PricingMode(c.Param("mode"))
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		_, err := b.ToggleAvailability(key, mode)
		return nil, err
	})
}

// POST /drafts/:id/materials/:key/images
func (h *DraftHandler) AddMaterialImages(c *gin.Context) {
	files, err := h.stageFiles(c, "images", false)
	if err != nil {
		respondError(c, err)
		return
	}
	key := c.Param("key")
	h.mutate(c, files, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.AddMaterialImages(key, files...)
	})
}

// PUT /drafts/:id/materials/:key/images/:index
func (h *DraftHandler) ReplaceMaterialImage(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	files, err := h.stageFiles(c, "image", true)
	if err != nil {
		respondError(c, err)
		return
	}
	key := c.Param("key")
	h.mutate(c, files, func(b *builder.Builder) ([]models.StagedFile, error) {
		prev, err := b.ReplaceMaterialImage(key, index, files[0])
		return released(prev), err
	})
}

// DELETE /drafts/:id/materials/:key/images/:source/:index
func (h *DraftHandler) RemoveMaterialImage(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	key, source := c.Param("key"), models.ImageSource(c.Param("source"))
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		removed, err := b.RemoveMaterialImage(key, source, index)
		return released(removed), err
	})
}

// bindAddon reads an addon from JSON or from a multipart form with an
// optional "image" file.
func (h *DraftHandler) bindAddon(c *gin.Context) (models.Addon, bool) {
	lang := utils.GetLangFromContext(c)
	var req AddonRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return models.Addon{}, false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return models.Addon{}, false
	}

	image, err := h.stageOptional(c, "image")
	if err != nil {
		respondError(c, err)
		return models.Addon{}, false
	}
	return models.Addon{Name: req.Name, Price: req.Price, Image: image}, true
}

// POST /drafts/:id/materials/:key/addons
func (h *DraftHandler) AddAddon(c *gin.Context) {
	addon, ok := h.bindAddon(c)
	if !ok {
		return
	}
	key := c.Param("key")
	h.mutate(c, released(addon.Image), func(b *builder.Builder) ([]models.StagedFile, error) {
		_, err := b.AddAddon(key, addon)
		return nil, err
	})
}

// PUT /drafts/:id/materials/:key/addons/:index
func (h *DraftHandler) UpdateAddon(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	addon, ok := h.bindAddon(c)
	if !ok {
		return
	}
	key := c.Param("key")
	h.mutate(c, released(addon.Image), func(b *builder.Builder) ([]models.StagedFile, error) {
		prev, err := b.UpdateAddon(key, index, addon)
		return released(prev), err
	})
}

// DELETE /drafts/:id/materials/:key/addons/:index
func (h *DraftHandler) RemoveAddon(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	key := c.Param("key")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		removed, err := b.RemoveAddon(key, index)
		return released(removed), err
	})
}

// PUT /drafts/:id/materials/:key/ready-sizes/:size
func (h *DraftHandler) AddReadySize(c *gin.Context) {
	key, size := c.Param("key"), c.Param("size")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.AddReadySize(key, size)
	})
}

// DELETE /drafts/:id/materials/:key/ready-sizes/:size
func (h *DraftHandler) RemoveReadySize(c *gin.Context) {
	key, size := c.Param("key"), c.Param("size")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.RemoveReadySize(key, size)
	})
}

// PUT /drafts/:id/materials/:key/prices/:mode/:size
func (h *DraftHandler) SetPrice(c *gin.Context) {
	var req PriceRequest
	if !bindJSON(c, &req) {
		return
	}
	key, size, mode := c.Param("key"), c.Param("size"), models.PricingMode(c.Param("mode"))
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.SetPrice(key, size, models.PriceField(req.Field), req.Value, mode)
	})
}
