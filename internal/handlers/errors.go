// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/vendor-console/internal/builder"
	"github.com/javajoker/vendor-console/internal/i18n"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"
)

var errNoUpload = errors.New("no file uploaded")

// errorMapping turns a sentinel error into an envelope response.
type errorMapping struct {
	err    error
	status int
	code   string
	key    string
}

var errorMappings = []errorMapping{
	{services.ErrDraftNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyDraftNotFound},
	{services.ErrProductNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyProductNotFound},
	{services.ErrDraftLimit, http.StatusConflict, "DRAFT_LIMIT", i18n.KeyDraftLimit},
	{services.ErrSubmissionInProgress, http.StatusConflict, "SUBMISSION_IN_PROGRESS", i18n.KeyDraftSubmitting},
	{services.ErrStaleResult, http.StatusConflict, "STALE", i18n.KeyDraftStale},

	{builder.ErrMaterialNotFound, http.StatusNotFound, "NOT_FOUND", i18n.KeyMaterialNotFound},
	{builder.ErrImageIndex, http.StatusNotFound, "NOT_FOUND", i18n.KeyIndexOutOfRange},
	{builder.ErrAddonIndex, http.StatusNotFound, "NOT_FOUND", i18n.KeyIndexOutOfRange},
	{builder.ErrAttributeIndex, http.StatusNotFound, "NOT_FOUND", i18n.KeyIndexOutOfRange},
	{builder.ErrUnknownSize, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyUnknownSize},
	{builder.ErrUnknownMode, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyUnknownMode},
	{builder.ErrUnknownField, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyUnknownField},
	{builder.ErrImageSource, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyImageSource},
	{builder.ErrSizeNotSelected, http.StatusConflict, "CONFLICT", i18n.KeySizeNotSelected},
	{builder.ErrSizeNotReady, http.StatusConflict, "CONFLICT", i18n.KeySizeNotReady},
	{builder.ErrMeasurementNotSelected, http.StatusConflict, "CONFLICT", i18n.KeyMeasurementNotSelected},
	{builder.ErrMeasurementsReadOnly, http.StatusConflict, "READ_ONLY", i18n.KeyMeasurementsReadOnly},

	{services.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", i18n.KeyUploadTooLarge},
	{services.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, "UNSUPPORTED_FILE", i18n.KeyUploadUnsupported},
	{errNoUpload, http.StatusBadRequest, "BAD_REQUEST", i18n.KeyUploadMissing},
}

func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)
	_ = c.Error(err)

	var verr *builder.ValidationError
	if errors.As(err, &verr) {
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR",
			i18n.T(lang, i18n.KeyDraftValidationError), verr.Errors)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.ErrorResponse(c, m.status, m.code, i18n.T(lang, m.key), nil)
			return
		}
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		if apiErr.NotFound() {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.UpstreamErrorResponse(c, apiErr.Message)
		return
	}

	logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled request error")
	utils.InternalErrorResponse(c, "")
}
