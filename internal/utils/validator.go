// internal/utils/validator.go
package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/javajoker/vendor-console/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)
	validate.RegisterValidation("decimal", validateDecimal)
	validate.RegisterValidation("size_label", validateSizeLabel)
	validate.RegisterValidation("pricing_mode", validatePricingMode)
	validate.RegisterValidation("image_source", validateImageSource)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// validateDecimal accepts any number shopspring/decimal can parse. Empty
// strings are left to omitempty/required.
func validateDecimal(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	_, err := decimal.NewFromString(value)
	return err == nil
}

func validateSizeLabel(fl validator.FieldLevel) bool {
	return models.IsStandardSize(fl.Field().String())
}

func validatePricingMode(fl validator.FieldLevel) bool {
	return models.PricingMode(fl.Field().String()).Valid()
}

func validateImageSource(fl validator.FieldLevel) bool {
	return models.ImageSource(fl.Field().String()).Valid()
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "decimal":
		return e.Field() + " must be a number"
	case "size_label":
		return e.Field() + " must be one of: " + strings.Join(models.StandardSizes, ", ")
	case "pricing_mode":
		return e.Field() + " must be custom or ready"
	case "image_source":
		return e.Field() + " must be existing or new"
	default:
		return e.Field() + " is invalid"
	}
}
