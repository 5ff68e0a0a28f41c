package normalizer

import (
	"fmt"
	"strings"

	"github.com/javajoker/vendor-console/internal/models"
)

var (
	categoryListKeys    = []string{"categories", "data", "results", "items"}
	subcategoryListKeys = []string{"subcategories", "sub_categories", "children"}
	measurementListKeys = []string{"measurements", "measurement_points", "data", "results", "items"}
)

// DecodeCategories parses a category list response.
func DecodeCategories(body []byte) ([]models.Category, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return NormalizeCategories(v), nil
}

// NormalizeCategories accepts a bare array or an object wrapping one. Entries
// without an id are skipped.
func NormalizeCategories(v interface{}) []models.Category {
	out := []models.Category{}
	for _, item := range listOrWrapped(v, categoryListKeys) {
		row := object(item)
		id := str(row, "id", "category_id", "_id")
		if id == "" {
			continue
		}
		c := models.Category{
			ID:            id,
			Name:          str(row, "name", "title", "category_name"),
			Subcategories: []models.Subcategory{},
		}
		for _, sv := range list(firstValue(row, subcategoryListKeys...)) {
			sub := object(sv)
			sid := str(sub, "id", "subcategory_id", "_id")
			if sid == "" {
				continue
			}
			c.Subcategories = append(c.Subcategories, models.Subcategory{
				ID:   sid,
				Name: str(sub, "name", "title", "subcategory_name"),
			})
		}
		out = append(out, c)
	}
	return out
}

// DecodeMeasurements parses a measurement point list response.
func DecodeMeasurements(body []byte, assetBase string) ([]models.MeasurementPoint, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode measurements: %w", err)
	}
	return NormalizeMeasurements(v, assetBase), nil
}

func NormalizeMeasurements(v interface{}, assetBase string) []models.MeasurementPoint {
	out := []models.MeasurementPoint{}
	for _, item := range listOrWrapped(v, measurementListKeys) {
		row := object(item)
		id := str(row, measurementIDKeys...)
		if id == "" {
			continue
		}
		out = append(out, models.MeasurementPoint{
			ID:       id,
			Name:     strings.TrimSpace(str(row, "name", "title", "label")),
			ImageURL: ResolveAssetURL(assetBase, imageRef(firstValue(row, "image", "image_url", "reference_image")).URL),
		})
	}
	return out
}

func listOrWrapped(v interface{}, keys []string) []interface{} {
	if items := list(v); items != nil {
		return items
	}
	obj := object(v)
	for depth := 0; obj != nil && depth < 3; depth++ {
		next := firstValue(obj, keys...)
		if items := list(next); items != nil {
			return items
		}
		obj = object(next)
	}
	return nil
}
