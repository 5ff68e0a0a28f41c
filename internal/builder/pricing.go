package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/javajoker/vendor-console/internal/models"
)

// AddReadySize puts size on the material's ready inventory list and creates an
// empty ready entry for it. Adding a size that is already listed is a no-op.
func (b *Builder) AddReadySize(key, size string) error {
	m, err := b.material(key)
	if err != nil {
		return err
	}
	s, err := standardSize(size)
	if err != nil {
		return err
	}
	if m.HasReadySize(s) {
		return nil
	}

	m.ReadySizes = append(m.ReadySizes, s)
	b.product.Prices[models.PriceKey{Material: key, Size: s, Mode: models.PricingModeReady}] = &models.PriceEntry{}
	return nil
}

// RemoveReadySize drops size from the ready list along with its entry.
func (b *Builder) RemoveReadySize(key, size string) error {
	m, err := b.material(key)
	if err != nil {
		return err
	}
	s, err := standardSize(size)
	if err != nil {
		return err
	}

	m.ReadySizes, _ = removeString(m.ReadySizes, s)
	delete(b.product.Prices, models.PriceKey{Material: key, Size: s, Mode: models.PricingModeReady})
	return nil
}

// SetPrice updates one field of the (material, size, mode) entry, creating the
// entry when absent. Ready entries only exist for sizes on the ready list.
func (b *Builder) SetPrice(key, size string, field models.PriceField, value string, mode models.PricingMode) error {
	m, err := b.material(key)
	if err != nil {
		return err
	}
	s, err := standardSize(size)
	if err != nil {
		return err
	}
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if mode == models.PricingModeReady && !m.HasReadySize(s) {
		return fmt.Errorf("%w: %s/%s", ErrSizeNotReady, m.Identity, s)
	}

	k := models.PriceKey{Material: key, Size: s, Mode: mode}
	entry, ok := b.product.Prices[k]
	if !ok {
		entry = &models.PriceEntry{}
	}

	value = strings.TrimSpace(value)
	switch field {
	case models.PriceFieldPrice:
		entry.Price = value
	case models.PriceFieldDiscount:
		entry.DiscountPrice = value
	case models.PriceFieldStock:
		entry.Stock = value
	default:
		return fmt.Errorf("%w: price field %q", ErrUnknownField, field)
	}

	b.product.Prices[k] = entry
	return nil
}

// Price returns a copy of the entry for the given key.
func (b *Builder) Price(key, size string, mode models.PricingMode) (models.PriceEntry, bool) {
	e, ok := b.product.Prices[models.PriceKey{Material: key, Size: models.NormalizeSize(size), Mode: mode}]
	if !ok {
		return models.PriceEntry{}, false
	}
	return *e, true
}

// CustomRows lists the sizes shown in the material's custom pricing table:
// every selected size, in standard order, while custom is enabled.
func (b *Builder) CustomRows(key string) ([]string, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}
	if !m.Custom {
		return nil, nil
	}
	rows := make([]string, len(b.product.SelectedSizes))
	copy(rows, b.product.SelectedSizes)
	sortSizes(rows)
	return rows, nil
}

// ReadyRows lists the sizes shown in the material's ready inventory table.
func (b *Builder) ReadyRows(key string) ([]string, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}
	if !m.Ready {
		return nil, nil
	}
	rows := make([]string, len(m.ReadySizes))
	copy(rows, m.ReadySizes)
	return rows, nil
}

// RekeyMaterials swaps temporary keys for server-assigned ids, moving every
// pricing entry along with its material.
func (b *Builder) RekeyMaterials(ids map[string]string) {
	for _, m := range b.product.Materials {
		newKey, ok := ids[m.Key]
		if !ok || newKey == "" || newKey == m.Key {
			continue
		}
		var moved []models.PriceKey
		for k := range b.product.Prices {
			if k.Material == m.Key {
				moved = append(moved, k)
			}
		}
		for _, k := range moved {
			e := b.product.Prices[k]
			delete(b.product.Prices, k)
			k.Material = newKey
			b.product.Prices[k] = e
		}
		m.Key = newKey
		m.Temporary = false
	}
}

func sortSizes(sizes []string) {
	sort.SliceStable(sizes, func(i, j int) bool {
		return models.SizeRank(sizes[i]) < models.SizeRank(sizes[j])
	})
}
