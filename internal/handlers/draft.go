// internal/handlers/draft.go
package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/i18n"
	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"
)

type DraftHandler struct {
	draftService   *services.DraftService
	storageService *services.StorageService
}

func NewDraftHandler(draftService *services.DraftService, storageService *services.StorageService) *DraftHandler {
	return &DraftHandler{
		draftService:   draftService,
		storageService: storageService,
	}
}

// draftRef reads the authenticated vendor and the :id parameter.
func draftRef(c *gin.Context) (vendorID, draftID string, ok bool) {
	vendorID, ok = utils.GetVendorIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return "", "", false
	}
	return vendorID, c.Param("id"), true
}

func indexParam(c *gin.Context, name string) (int, bool) {
	index, err := strconv.Atoi(c.Param(name))
	if err != nil || index < 0 {
		utils.BadRequestResponse(c, i18n.T(utils.GetLangFromContext(c), i18n.KeyValidationInvalid, name), nil)
		return 0, false
	}
	return index, true
}

// bindJSON decodes and validates a request body, answering the client itself
// when either step fails.
func bindJSON(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

// stageFiles stages the files uploaded under field. With single set only the
// first file is kept.
func (h *DraftHandler) stageFiles(c *gin.Context, field string, single bool) ([]models.StagedFile, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoUpload, err)
	}
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: %s", errNoUpload, field)
	}
	if single {
		headers = headers[:1]
	}
	return h.storageService.StageUploads(c.Request.Context(), headers)
}

// stageOptional stages the single file under field if the request carries one.
func (h *DraftHandler) stageOptional(c *gin.Context, field string) (*models.StagedFile, error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, nil
	}
	if _, err := c.FormFile(field); err != nil {
		return nil, nil
	}
	files, err := h.stageFiles(c, field, true)
	if err != nil {
		return nil, err
	}
	return &files[0], nil
}

// mutate applies fn and answers with the updated draft. Files staged for the
// request are released when the edit is rejected.
func (h *DraftHandler) mutate(c *gin.Context, staged []models.StagedFile, fn func(b *builder.Builder) ([]models.StagedFile, error)) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		h.storageService.Release(c.Request.Context(), staged...)
		return
	}

	view, err := h.draftService.Mutate(c.Request.Context(), vendorID, draftID, fn)
	if err != nil {
		h.storageService.Release(c.Request.Context(), staged...)
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

func released(files ...*models.StagedFile) []models.StagedFile {
	var out []models.StagedFile
	for _, f := range files {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// POST /drafts
func (h *DraftHandler) CreateDraft(c *gin.Context) {
	vendorID, _, ok := draftRef(c)
	if !ok {
		return
	}
	view, err := h.draftService.Create(vendorID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

// POST /drafts/edit/:productId
func (h *DraftHandler) OpenForEdit(c *gin.Context) {
	vendorID, _, ok := draftRef(c)
	if !ok {
		return
	}
	view, err := h.draftService.OpenForEdit(c.Request.Context(), vendorID, c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.CreatedResponse(c, view)
}

// GET /drafts/:id
func (h *DraftHandler) GetDraft(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}
	view, err := h.draftService.Get(vendorID, draftID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// DELETE /drafts/:id
func (h *DraftHandler) DiscardDraft(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}
	if err := h.draftService.Discard(c.Request.Context(), vendorID, draftID); err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyDraftDiscarded),
	})
}

// POST /drafts/:id/retarget/:productId
func (h *DraftHandler) Retarget(c *gin.Context) {
	h.retarget(c, c.Param("productId"))
}

// POST /drafts/:id/reset
func (h *DraftHandler) Reset(c *gin.Context) {
	h.retarget(c, "")
}

func (h *DraftHandler) retarget(c *gin.Context, productID string) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}
	view, err := h.draftService.Retarget(c.Request.Context(), vendorID, draftID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// POST /drafts/:id/reload
func (h *DraftHandler) Reload(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}
	view, err := h.draftService.Reload(c.Request.Context(), vendorID, draftID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, view)
}

// PATCH /drafts/:id
func (h *DraftHandler) UpdateDetails(c *gin.Context) {
	var req builder.DetailsUpdate
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		b.UpdateDetails(req)
		return nil, nil
	})
}

// PUT /drafts/:id/main-image
func (h *DraftHandler) SetMainImage(c *gin.Context) {
	files, err := h.stageFiles(c, "image", true)
	if err != nil {
		respondError(c, err)
		return
	}
	h.mutate(c, files, func(b *builder.Builder) ([]models.StagedFile, error) {
		return released(b.SetMainImage(files[0])), nil
	})
}

// DELETE /drafts/:id/main-image
func (h *DraftHandler) ClearMainImage(c *gin.Context) {
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return released(b.ClearMainImage()), nil
	})
}

// POST /drafts/:id/gallery
func (h *DraftHandler) AddGalleryImages(c *gin.Context) {
	files, err := h.stageFiles(c, "images", false)
	if err != nil {
		respondError(c, err)
		return
	}
	h.mutate(c, files, func(b *builder.Builder) ([]models.StagedFile, error) {
		b.AddGalleryImages(files...)
		return nil, nil
	})
}

// DELETE /drafts/:id/gallery/:source/:index
func (h *DraftHandler) RemoveGalleryImage(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	source := models.ImageSource(c.Param("source"))
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		removed, err := b.RemoveGalleryImage(source, index)
		return released(removed), err
	})
}

// POST /drafts/:id/attributes
func (h *DraftHandler) AddAttribute(c *gin.Context) {
	var req AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		b.AddAttribute(req.Key, req.Value)
		return nil, nil
	})
}

// PUT /drafts/:id/attributes/:index
func (h *DraftHandler) UpdateAttribute(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	var req AttributeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.UpdateAttribute(index, req.Key, req.Value)
	})
}

// DELETE /drafts/:id/attributes/:index
func (h *DraftHandler) RemoveAttribute(c *gin.Context) {
	index, ok := indexParam(c, "index")
	if !ok {
		return
	}
	h.mutate(c, nil, func(b *builder.Builder) ([]models.StagedFile, error) {
		return nil, b.RemoveAttribute(index)
	})
}

// GET /drafts/:id/validate
func (h *DraftHandler) Validate(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}

	var validationErr error
	err := h.draftService.Inspect(vendorID, draftID, func(b *builder.Builder) error {
		validationErr = b.Validate()
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	errs := []builder.FieldError{}
	if verr, ok := validationErr.(*builder.ValidationError); ok {
		errs = verr.Errors
	}
	utils.SuccessResponse(c, gin.H{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// GET /drafts/:id/payload
func (h *DraftHandler) PreviewPayload(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}

	var payload *builder.Payload
	err := h.draftService.Inspect(vendorID, draftID, func(b *builder.Builder) error {
		var err error
		payload, err = b.Serialize()
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, payload)
}

// POST /drafts/:id/submit
func (h *DraftHandler) Submit(c *gin.Context) {
	vendorID, draftID, ok := draftRef(c)
	if !ok {
		return
	}

	outcome, err := h.draftService.Submit(c.Request.Context(), vendorID, draftID)
	if err != nil {
		respondError(c, err)
		return
	}

	if outcome.Message == "" {
		outcome.Message = i18n.T(utils.GetLangFromContext(c), i18n.KeyDraftSubmitted)
	}
	utils.SuccessResponse(c, outcome)
}
