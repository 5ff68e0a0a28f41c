// internal/models/common.go
package models

import "strings"

// Enums
type PricingMode string

const (
	PricingModeCustom PricingMode = "custom"
	PricingModeReady  PricingMode = "ready"
)

func (m PricingMode) Valid() bool {
	return m == PricingModeCustom || m == PricingModeReady
}

type ImageSource string

const (
	ImageSourceExisting ImageSource = "existing"
	ImageSourceNew      ImageSource = "new"
)

func (s ImageSource) Valid() bool {
	return s == ImageSourceExisting || s == ImageSourceNew
}

type PriceField string

const (
	PriceFieldPrice    PriceField = "price"
	PriceFieldDiscount PriceField = "discount_price"
	PriceFieldStock    PriceField = "stock"
)

type MaterialField string

const (
	MaterialFieldIdentity     MaterialField = "identity"
	MaterialFieldMaterialType MaterialField = "material_type"
	MaterialFieldDescription  MaterialField = "description"
)

type Gender string

const (
	GenderMen    Gender = "men"
	GenderWomen  Gender = "women"
	GenderUnisex Gender = "unisex"
	GenderKids   Gender = "kids"
)

// TemporaryKeyPrefix marks material keys generated before the Product API
// assigned an id.
const TemporaryKeyPrefix = "tmp-"

// StandardSizes is the fixed size enumeration, in display order.
var StandardSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL"}

// MaterialTypes is the catalog of known fabric types. Any other non-empty
// value is stored as free text.
var MaterialTypes = []string{
	"Cotton",
	"Linen",
	"Silk",
	"Wool",
	"Polyester",
	"Denim",
	"Rayon",
	"Velvet",
	"Chiffon",
	"Georgette",
	"Satin",
	"Crepe",
}

// IsStandardSize reports whether size is one of StandardSizes.
func IsStandardSize(size string) bool {
	return SizeRank(size) >= 0
}

// SizeRank returns the position of size in StandardSizes, or -1.
func SizeRank(size string) int {
	for i, s := range StandardSizes {
		if s == size {
			return i
		}
	}
	return -1
}

// NormalizeSize upper-cases and trims a size label so "xl " matches "XL".
func NormalizeSize(size string) string {
	return strings.ToUpper(strings.TrimSpace(size))
}

// IsCatalogMaterialType reports whether value names a catalog material type
// (case-insensitive).
func IsCatalogMaterialType(value string) bool {
	v := strings.TrimSpace(value)
	for _, t := range MaterialTypes {
		if strings.EqualFold(t, v) {
			return true
		}
	}
	return false
}
