package builder

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/javajoker/vendor-console/internal/models"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every check that failed in one pre-submit pass.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

func (e *ValidationError) add(field, format string, args ...interface{}) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate runs every pre-submit check and returns a *ValidationError when at
// least one fails.
func (b *Builder) Validate() error {
	p := b.product
	verr := &ValidationError{}

	if strings.TrimSpace(p.Name) == "" {
		verr.add("name", "name is required")
	}
	if strings.TrimSpace(p.CategoryID) == "" {
		verr.add("category_id", "category is required")
	}
	if p.AlterationAvailable {
		if p.AlterationCharge == "" {
			verr.add("alteration_charge", "alteration charge is required when alteration is available")
		} else if d, err := parseDecimal(p.AlterationCharge); err != nil || d.IsNegative() {
			verr.add("alteration_charge", "alteration charge must be a non-negative number")
		}
	}

	b.validateMaterials(verr)
	b.validateSizes(verr)

	for i, a := range p.Attributes {
		if a.Key == "" {
			verr.add(fmt.Sprintf("attributes[%d].key", i), "attribute key is required")
		}
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func (b *Builder) validateMaterials(verr *ValidationError) {
	p := b.product
	if len(p.Materials) == 0 {
		verr.add("materials", "at least one material is required")
		return
	}

	seen := make(map[string]int)
	for i, m := range p.Materials {
		field := fmt.Sprintf("materials[%d]", i)

		if m.Identity == "" {
			verr.add(field+".identity", "material name is required")
		} else {
			lower := strings.ToLower(m.Identity)
			if j, dup := seen[lower]; dup {
				verr.add(field+".identity", "material name %q duplicates materials[%d]", m.Identity, j)
			} else {
				seen[lower] = i
			}
		}

		if !m.Custom && !m.Ready {
			verr.add(field+".availability", "enable custom-made or ready-made for this material")
		}
		if m.Custom && len(p.SelectedSizes) == 0 {
			verr.add(field+".custom", "custom-made pricing needs at least one selected size")
		}
		if m.Ready && len(m.ReadySizes) == 0 {
			verr.add(field+".ready", "ready-made pricing needs at least one size")
		}

		if m.Custom {
			for _, size := range p.SelectedSizes {
				b.validateEntry(verr, i, m, size, models.PricingModeCustom)
			}
		}
		if m.Ready {
			for _, size := range m.ReadySizes {
				b.validateEntry(verr, i, m, size, models.PricingModeReady)
			}
		}

		for j, a := range m.Addons {
			af := fmt.Sprintf("%s.addons[%d]", field, j)
			if a.Name == "" {
				verr.add(af+".name", "addon name is required")
			}
			if d, err := parseDecimal(a.Price); err != nil || d.IsNegative() {
				verr.add(af+".price", "addon price must be a non-negative number")
			}
		}
	}
}

func (b *Builder) validateEntry(verr *ValidationError, index int, m *models.Material, size string, mode models.PricingMode) {
	field := fmt.Sprintf("materials[%d].prices.%s.%s", index, mode, size)
	e, ok := b.product.Prices[models.PriceKey{Material: m.Key, Size: size, Mode: mode}]
	if !ok || e.Price == "" {
		verr.add(field+".price", "price is required")
		return
	}

	price, err := parseDecimal(e.Price)
	if err != nil {
		verr.add(field+".price", "price must be a number")
		return
	}
	if !price.IsPositive() {
		verr.add(field+".price", "price must be greater than zero")
	}

	if e.DiscountPrice != "" {
		discount, err := parseDecimal(e.DiscountPrice)
		switch {
		case err != nil:
			verr.add(field+".discount_price", "discount price must be a number")
		case discount.IsNegative():
			verr.add(field+".discount_price", "discount price must not be negative")
		case discount.GreaterThan(price):
			verr.add(field+".discount_price", "discount price must not exceed price")
		}
	}

	if mode == models.PricingModeReady && e.Stock != "" {
		if _, err := parseStock(e.Stock); err != nil {
			verr.add(field+".stock", "stock must be a non-negative whole number")
		}
	}
}

func (b *Builder) validateSizes(verr *ValidationError) {
	p := b.product
	for _, size := range p.SelectedSizes {
		if v, ok := p.StandardValues[size]; ok && v != "" {
			if _, err := parseDecimal(v); err != nil {
				verr.add("standard_values."+size, "standard value must be a number")
			}
		}
		for _, id := range p.SelectedMeasurements {
			v := p.MeasurementValues[size][id]
			if v == "" {
				continue
			}
			if d, err := parseDecimal(v); err != nil || d.IsNegative() {
				verr.add(fmt.Sprintf("measurement_values.%s.%s", size, id), "measurement must be a non-negative number")
			}
		}
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

func parseStock(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() || !d.IsInteger() {
		return 0, fmt.Errorf("invalid stock %q", s)
	}
	return d.IntPart(), nil
}
