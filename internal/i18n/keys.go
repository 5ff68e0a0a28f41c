// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAuthVendorOnly   = "auth.vendor_only"

	// Requests
	KeyValidationInvalid = "validation.invalid"
	KeyRateLimited       = "request.rate_limited"
	KeyInternalError     = "request.internal_error"

	// Catalog
	KeyCatalogFetchFailed = "catalog.fetch_failed"

	// Drafts
	KeyDraftNotFound        = "draft.not_found"
	KeyDraftLimit           = "draft.limit"
	KeyDraftLoadFailed      = "draft.load_failed"
	KeyDraftRefreshFailed   = "draft.refresh_failed"
	KeyDraftStale           = "draft.stale"
	KeyDraftSubmitting      = "draft.submitting"
	KeyDraftSubmitted       = "draft.submitted"
	KeyDraftSubmitFailed    = "draft.submit_failed"
	KeyDraftDiscarded       = "draft.discarded"
	KeyDraftValidationError = "draft.validation_failed"

	// Products
	KeyProductNotFound = "product.not_found"

	// Builder
	KeyMaterialNotFound       = "builder.material_not_found"
	KeyUnknownSize            = "builder.unknown_size"
	KeyUnknownMode            = "builder.unknown_mode"
	KeyUnknownField           = "builder.unknown_field"
	KeyIndexOutOfRange        = "builder.index_out_of_range"
	KeyImageSource            = "builder.image_source"
	KeySizeNotSelected        = "builder.size_not_selected"
	KeySizeNotReady           = "builder.size_not_ready"
	KeyMeasurementNotSelected = "builder.measurement_not_selected"
	KeyMeasurementsReadOnly   = "builder.measurements_read_only"

	// Uploads
	KeyUploadTooLarge    = "upload.too_large"
	KeyUploadUnsupported = "upload.unsupported_type"
	KeyUploadMissing     = "upload.missing"
	KeyUploadFailed      = "upload.failed"
)
