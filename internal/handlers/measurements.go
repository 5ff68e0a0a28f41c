// internal/handlers/measurements.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/utils"
)

// POST /drafts/:id/measurements/:pointId/toggle
func (h *DraftHandler) ToggleMeasurementPoint(c *gin.Context) {
	pointID := c.Param("pointId")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		_, err := b.ToggleMeasurementPoint(pointID)
		return nil, err
	})
}

// PUT /drafts/:id/measurements/:pointId/image
func (h *DraftHandler) SetMeasurementImage(c *gin.Context) {
	files, err := h.stageFiles(c, "image", true)
	if err != nil {
		respondError(c, err)
		return
	}
	pointID := c.Param("pointId")
	h.mutate(c, files, func(b *builder.Builder) ([]models.StagedFile, error) {
		prev, err := b.SetMeasurementImage(pointID, files[0])
		return released(prev), err
	})
}

// POST /drafts/:id/sizes/:size/toggle
func (h *DraftHandler) ToggleSize(c *gin.Context) {
	size := c.Param("size")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		_, err := b.ToggleSize(size)
		return nil, err
	})
}

// PUT /drafts/:id/standard-values/:size
func (h *DraftHandler) SetStandardValue(c *gin.Context) {
	var req ValueRequest
	if !bindJSON(c, &req) {
		return
	}
	size := c.Param("size")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.SetStandardValue(size, req.Value)
	})
}

// PUT /drafts/:id/measurement-values/:size/:pointId
func (h *DraftHandler) SetMeasurementValue(c *gin.Context) {
	var req ValueRequest
	if !bindJSON(c, &req) {
		return
	}
	size, pointID := c.Param("size"), c.Param("pointId")
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.SetMeasurementValue(size, pointID, req.Value)
	})
}

// GET /drafts/:id/measurement-table
func (h *DraftHandler) GetMeasurementTable(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}

	var rows []builder.MeasurementRow
	var readOnly bool
	err := h.draftService.Inspect(vendorID, draftID, func(b *builder.Builder) error {
		rows = b.MeasurementTable()
		readOnly = b.MeasurementsReadOnly()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []builder.MeasurementRow{}
	}
	utils.SuccessResponse(c, gin.H{
		"rows":      rows,
		"read_only": readOnly,
	})
}
