package builder

import (
	"fmt"
	"strings"

	"github.com/javajoker/vendor-console/internal/models"
)

// DetailsUpdate is a partial update of the product's scalar fields. Nil
// fields are left untouched.
type DetailsUpdate struct {
	Name                *string        `json:"name,omitempty"`
	Description         *string        `json:"description,omitempty"`
	CategoryID          *string        `json:"category_id,omitempty"`
	SubcategoryID       *string        `json:"subcategory_id,omitempty"`
	Gender              *models.Gender `json:"gender,omitempty" validate:"omitempty,oneof=men women unisex kids"`
	WearType            *string        `json:"wear_type,omitempty"`
	IsCustomizable      *bool          `json:"is_customizable,omitempty"`
	AlterationAvailable *bool          `json:"alteration_available,omitempty"`
	AlterationCharge    *string        `json:"alteration_charge,omitempty" validate:"omitempty,decimal"`
}

func (b *Builder) UpdateDetails(u DetailsUpdate) {
	p := b.product
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.CategoryID != nil {
		// A new category invalidates the subcategory unless both are sent.
		if *u.CategoryID != p.CategoryID && u.SubcategoryID == nil {
			p.SubcategoryID = ""
		}
		p.CategoryID = strings.TrimSpace(*u.CategoryID)
	}
	if u.SubcategoryID != nil {
		p.SubcategoryID = strings.TrimSpace(*u.SubcategoryID)
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.WearType != nil {
		p.WearType = strings.TrimSpace(*u.WearType)
	}
	if u.IsCustomizable != nil {
		p.IsCustomizable = *u.IsCustomizable
	}
	if u.AlterationAvailable != nil {
		p.AlterationAvailable = *u.AlterationAvailable
	}
	if u.AlterationCharge != nil {
		p.AlterationCharge = strings.TrimSpace(*u.AlterationCharge)
	}
}

// SetMainImage stages a new main image. It replaces the stored URL, and any
// previously staged main image is returned.
func (b *Builder) SetMainImage(file models.StagedFile) *models.StagedFile {
	prev := b.product.MainImage.New
	f := file
	b.product.MainImage = models.MainImage{New: &f}
	return prev
}

// ClearMainImage drops a staged main image, falling back to nothing.
func (b *Builder) ClearMainImage() *models.StagedFile {
	prev := b.product.MainImage.New
	b.product.MainImage = models.MainImage{}
	return prev
}

func (b *Builder) AddGalleryImages(files ...models.StagedFile) {
	b.product.Gallery.New = append(b.product.Gallery.New, files...)
}

// RemoveGalleryImage removes one gallery image. Existing images are queued by
// id so the server deletes them rather than only merging new uploads.
func (b *Builder) RemoveGalleryImage(source models.ImageSource, index int) (*models.StagedFile, error) {
	g := &b.product.Gallery
	switch source {
	case models.ImageSourceExisting:
		if index < 0 || index >= len(g.Existing) {
			return nil, fmt.Errorf("%w: %d", ErrImageIndex, index)
		}
		img := g.Existing[index]
		g.Existing = append(g.Existing[:index:index], g.Existing[index+1:]...)
		if img.ID != "" {
			g.ToDelete = append(g.ToDelete, img.ID)
		}
		return nil, nil
	case models.ImageSourceNew:
		if index < 0 || index >= len(g.New) {
			return nil, fmt.Errorf("%w: %d", ErrImageIndex, index)
		}
		f := g.New[index]
		g.New = append(g.New[:index:index], g.New[index+1:]...)
		return &f, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrImageSource, source)
	}
}

// AddAttribute appends a key/value pair. Duplicate keys are allowed.
func (b *Builder) AddAttribute(key, value string) int {
	b.product.Attributes = append(b.product.Attributes, models.Attribute{
		Key:   strings.TrimSpace(key),
		Value: strings.TrimSpace(value),
	})
	return len(b.product.Attributes) - 1
}

func (b *Builder) UpdateAttribute(index int, key, value string) error {
	if index < 0 || index >= len(b.product.Attributes) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	b.product.Attributes[index] = models.Attribute{
		Key:   strings.TrimSpace(key),
		Value: strings.TrimSpace(value),
	}
	return nil
}

func (b *Builder) RemoveAttribute(index int) error {
	attrs := b.product.Attributes
	if index < 0 || index >= len(attrs) {
		return fmt.Errorf("%w: %d", ErrAttributeIndex, index)
	}
	b.product.Attributes = append(attrs[:index:index], attrs[index+1:]...)
	return nil
}

// StagedFiles lists every staged file the draft currently references.
func (b *Builder) StagedFiles() []models.StagedFile {
	p := b.product
	var files []models.StagedFile
	if p.MainImage.New != nil {
		files = append(files, *p.MainImage.New)
	}
	files = append(files, p.Gallery.New...)
	for _, m := range p.Materials {
		for _, img := range m.Images {
			if img.Replacement != nil {
				files = append(files, *img.Replacement)
			}
		}
		files = append(files, m.NewImages...)
		for _, a := range m.Addons {
			if a.Image != nil {
				files = append(files, *a.Image)
			}
		}
	}
	for _, f := range p.MeasurementImages {
		files = append(files, f)
	}
	return files
}

// MarkSubmitted records a successful submission: temporary material keys are
// replaced with the returned ids and pending deletions are cleared.
func (b *Builder) MarkSubmitted(productID string, materialIDs map[string]string) {
	if productID != "" {
		b.product.ID = productID
	}
	b.RekeyMaterials(materialIDs)
	b.product.Gallery.ToDelete = nil
	b.product.DeletedMaterialIDs = nil
	for _, m := range b.product.Materials {
		m.ImagesToDelete = nil
	}
}

// ClearStagedFiles drops every reference to a staged file and returns the
// dropped files. Called once their content has been submitted.
func (b *Builder) ClearStagedFiles() []models.StagedFile {
	files := b.StagedFiles()
	p := b.product
	p.MainImage.New = nil
	p.Gallery.New = nil
	for _, m := range p.Materials {
		for i := range m.Images {
			m.Images[i].Replacement = nil
		}
		m.NewImages = nil
		for i := range m.Addons {
			m.Addons[i].Image = nil
		}
	}
	p.MeasurementImages = make(map[string]models.StagedFile)
	return files
}
