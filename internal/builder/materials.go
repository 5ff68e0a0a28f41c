package builder

import (
	"fmt"
	"strings"

	"github.com/javajoker/vendor-console/internal/models"
)

// AddMaterial appends an empty material with a temporary key. Both
// availability flags start off.
func (b *Builder) AddMaterial() *models.Material {
	m := &models.Material{
		Key:       b.newKey(),
		Temporary: true,
	}
	b.product.Materials = append(b.product.Materials, m)
	return m
}

// RemoveMaterial deletes the material together with every pricing entry keyed
// to it and its addons. Server-side materials are queued for deletion.
func (b *Builder) RemoveMaterial(key string) error {
	m, idx := b.product.FindMaterial(key)
	if m == nil {
		return fmt.Errorf("%w: %s", ErrMaterialNotFound, key)
	}

	for k := range b.product.Prices {
		if k.Material == key {
			delete(b.product.Prices, k)
		}
	}
	m.Addons = nil
	m.ReadySizes = nil

	b.product.Materials = append(b.product.Materials[:idx:idx], b.product.Materials[idx+1:]...)
	if !m.Temporary {
		b.product.DeletedMaterialIDs = append(b.product.DeletedMaterialIDs, m.Key)
	}
	return nil
}

func (b *Builder) SetMaterialField(key string, field models.MaterialField, value string) error {
	m, err := b.material(key)
	if err != nil {
		return err
	}

	switch field {
	case models.MaterialFieldIdentity:
		m.Identity = strings.TrimSpace(value)
	case models.MaterialFieldMaterialType:
		m.MaterialType = strings.TrimSpace(value)
	case models.MaterialFieldDescription:
		m.Description = value
	default:
		return fmt.Errorf("%w: material field %q", ErrUnknownField, field)
	}
	return nil
}

// MaterialTypeIsCustom reports whether the material's type is free text rather
// than a catalog name. An unset type is not custom.
func (b *Builder) MaterialTypeIsCustom(key string) (bool, error) {
	m, err := b.material(key)
	if err != nil {
		return false, err
	}
	return m.MaterialType != "" && !models.IsCatalogMaterialType(m.MaterialType), nil
}

// ToggleAvailability flips the custom or ready flag and returns the new value.
// Pricing entries are neither created nor deleted; rows of a disabled mode
// stay in state and are left out of the submission.
func (b *Builder) ToggleAvailability(key string, mode models.PricingMode) (bool, error) {
	m, err := b.material(key)
	if err != nil {
		return false, err
	}

	switch mode {
	case models.PricingModeCustom:
		m.Custom = !m.Custom
		return m.Custom, nil
	case models.PricingModeReady:
		m.Ready = !m.Ready
		return m.Ready, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func (b *Builder) AddMaterialImages(key string, files ...models.StagedFile) error {
	m, err := b.material(key)
	if err != nil {
		return err
	}
	m.NewImages = append(m.NewImages, files...)
	return nil
}

// ReplaceMaterialImage attaches file to an existing image slot. The slot keeps
// its id and is re-uploaded on submission. A replacement staged earlier for the
// same slot is returned so its blob can be released.
func (b *Builder) ReplaceMaterialImage(key string, index int, file models.StagedFile) (*models.StagedFile, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.Images) {
		return nil, fmt.Errorf("%w: %d", ErrImageIndex, index)
	}

	prev := m.Images[index].Replacement
	f := file
	m.Images[index].Replacement = &f
	return prev, nil
}

// RemoveMaterialImage removes an image from the existing or new list.
// Removing an existing image records its id for server-side deletion. Any
// staged file dropped by the removal is returned.
func (b *Builder) RemoveMaterialImage(key string, source models.ImageSource, index int) (*models.StagedFile, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}

	switch source {
	case models.ImageSourceExisting:
		if index < 0 || index >= len(m.Images) {
			return nil, fmt.Errorf("%w: %d", ErrImageIndex, index)
		}
		img := m.Images[index]
		m.Images = append(m.Images[:index:index], m.Images[index+1:]...)
		if img.ID != "" {
			m.ImagesToDelete = append(m.ImagesToDelete, img.ID)
		}
		return img.Replacement, nil
	case models.ImageSourceNew:
		if index < 0 || index >= len(m.NewImages) {
			return nil, fmt.Errorf("%w: %d", ErrImageIndex, index)
		}
		f := m.NewImages[index]
		m.NewImages = append(m.NewImages[:index:index], m.NewImages[index+1:]...)
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrImageSource, source)
	}
}

// AddAddon appends an addon and returns its index.
func (b *Builder) AddAddon(key string, addon models.Addon) (int, error) {
	m, err := b.material(key)
	if err != nil {
		return 0, err
	}
	addon.Name = strings.TrimSpace(addon.Name)
	m.Addons = append(m.Addons, addon)
	return len(m.Addons) - 1, nil
}

// UpdateAddon overwrites name and price. The image is only replaced when
// addon carries a staged file; the previous staged image is returned.
func (b *Builder) UpdateAddon(key string, index int, addon models.Addon) (*models.StagedFile, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.Addons) {
		return nil, fmt.Errorf("%w: %d", ErrAddonIndex, index)
	}

	cur := &m.Addons[index]
	cur.Name = strings.TrimSpace(addon.Name)
	cur.Price = strings.TrimSpace(addon.Price)
	if addon.Image == nil {
		return nil, nil
	}
	prev := cur.Image
	cur.Image = addon.Image
	return prev, nil
}

func (b *Builder) RemoveAddon(key string, index int) (*models.StagedFile, error) {
	m, err := b.material(key)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.Addons) {
		return nil, fmt.Errorf("%w: %d", ErrAddonIndex, index)
	}

	removed := m.Addons[index]
	m.Addons = append(m.Addons[:index:index], m.Addons[index+1:]...)
	return removed.Image, nil
}
