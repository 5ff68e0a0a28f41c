package builder

import (
	"encoding/json"
	"fmt"

	"github.com/javajoker/vendor-console/internal/models"
)

// Payload is the Product API submission: ordered text fields plus file parts
// that point at staged blobs.
type Payload struct {
	ProductID      string     `json:"product_id,omitempty"`
	Fields         []Field    `json:"fields"`
	Files          []FilePart `json:"files"`
	DeleteImageIDs []string   `json:"delete_image_ids"`
}

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type FilePart struct {
	Field string            `json:"field"`
	File  models.StagedFile `json:"file"`
}

// Value returns the first text field called name.
func (p *Payload) Value(name string) (string, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// File returns the file part submitted under field.
func (p *Payload) File(field string) (models.StagedFile, bool) {
	for _, f := range p.Files {
		if f.Field == field {
			return f.File, true
		}
	}
	return models.StagedFile{}, false
}

// FieldMap flattens the text fields, keeping the first value of each name.
func (p *Payload) FieldMap() map[string]string {
	out := make(map[string]string, len(p.Fields))
	for _, f := range p.Fields {
		if _, ok := out[f.Name]; !ok {
			out[f.Name] = f.Value
		}
	}
	return out
}

// PriceRow is one line of custom_prices or ready_prices.
type PriceRow struct {
	Fabric        string       `json:"fabric"`
	Size          string       `json:"size"`
	Price         json.Number  `json:"price"`
	DiscountPrice *json.Number `json:"discount_price"`
	Stock         int64        `json:"stock"`
}

type MaterialDescriptor struct {
	ID             string            `json:"id,omitempty"`
	ClientKey      string            `json:"client_key"`
	Identity       string            `json:"identity"`
	MaterialType   string            `json:"material_type"`
	Description    string            `json:"description"`
	Custom         bool              `json:"custom"`
	Ready          bool              `json:"ready"`
	ReadySizes     []string          `json:"ready_sizes"`
	KeepImages     []string          `json:"keep_images"`
	ReplacedImages []ReplacedImage   `json:"replaced_images"`
	DeleteImages   []string          `json:"delete_images"`
	Addons         []AddonDescriptor `json:"addons"`
}

type ReplacedImage struct {
	Slot int    `json:"slot"`
	ID   string `json:"id"`
}

type AddonDescriptor struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	ImageURL string      `json:"image_url,omitempty"`
	HasImage bool        `json:"has_image"`
}

type StandardValue struct {
	Size  string      `json:"size"`
	Value json.Number `json:"value"`
}

// Serialize validates the draft and builds the submission payload. It does
// not modify the builder.
func (b *Builder) Serialize() (*Payload, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	p := b.product
	out := &Payload{
		ProductID:      p.ID,
		DeleteImageIDs: append([]string{}, p.Gallery.ToDelete...),
	}

	out.text("name", p.Name)
	out.text("description", p.Description)
	out.text("category_id", p.CategoryID)
	out.text("subcategory_id", p.SubcategoryID)
	out.text("gender", string(p.Gender))
	out.text("wear_type", p.WearType)
	out.text("is_customizable", flag(p.IsCustomizable))
	out.text("alteration_available", flag(p.AlterationAvailable))
	if p.AlterationAvailable {
		out.text("alteration_charge", number(p.AlterationCharge).String())
	}

	materials, custom, ready := b.serializeMaterials(out)
	if err := out.json("materials", materials); err != nil {
		return nil, err
	}
	if err := out.json("custom_prices", custom); err != nil {
		return nil, err
	}
	if err := out.json("ready_prices", ready); err != nil {
		return nil, err
	}

	if err := out.json("sizes", nonNil(p.SelectedSizes)); err != nil {
		return nil, err
	}
	if err := out.json("measurements", nonNil(p.SelectedMeasurements)); err != nil {
		return nil, err
	}
	if err := out.json("measurement_values", b.measurementValues()); err != nil {
		return nil, err
	}
	if err := out.json("standard_values", b.standardValues()); err != nil {
		return nil, err
	}
	if err := out.json("attributes", nonNilAttrs(p.Attributes)); err != nil {
		return nil, err
	}
	if err := out.json("delete_image_ids", out.DeleteImageIDs); err != nil {
		return nil, err
	}
	if err := out.json("delete_material_ids", nonNil(p.DeletedMaterialIDs)); err != nil {
		return nil, err
	}

	if p.MainImage.New != nil {
		out.file("main_image", *p.MainImage.New)
	} else if p.MainImage.URL != "" {
		out.text("main_image_url", p.MainImage.URL)
	}
	for _, f := range p.Gallery.New {
		out.file("gallery_images[]", f)
	}
	for _, id := range p.SelectedMeasurements {
		if f, ok := p.MeasurementImages[id]; ok {
			out.file(fmt.Sprintf("measurement_images[%s]", id), f)
		}
	}

	return out, nil
}

func (b *Builder) serializeMaterials(out *Payload) ([]MaterialDescriptor, []PriceRow, []PriceRow) {
	p := b.product
	materials := make([]MaterialDescriptor, 0, len(p.Materials))
	custom := []PriceRow{}
	ready := []PriceRow{}

	for i, m := range p.Materials {
		d := MaterialDescriptor{
			ClientKey:      m.Key,
			Identity:       m.Identity,
			MaterialType:   m.MaterialType,
			Description:    m.Description,
			Custom:         m.Custom,
			Ready:          m.Ready,
			ReadySizes:     nonNil(m.ReadySizes),
			KeepImages:     []string{},
			ReplacedImages: []ReplacedImage{},
			DeleteImages:   nonNil(m.ImagesToDelete),
			Addons:         []AddonDescriptor{},
		}
		if !m.Temporary {
			d.ID = m.Key
		}

		for slot, img := range m.Images {
			if img.Replacement != nil {
				d.ReplacedImages = append(d.ReplacedImages, ReplacedImage{Slot: slot, ID: img.ID})
				out.file(fmt.Sprintf("materials[%d][images][%d]", i, slot), *img.Replacement)
				continue
			}
			d.KeepImages = append(d.KeepImages, img.ID)
		}
		for _, f := range m.NewImages {
			out.file(fmt.Sprintf("materials[%d][new_images][]", i), f)
		}
		for j, a := range m.Addons {
			ad := AddonDescriptor{
				Name:     a.Name,
				Price:    number(a.Price),
				ImageURL: a.ImageURL,
				HasImage: a.Image != nil,
			}
			if a.Image != nil {
				out.file(fmt.Sprintf("materials[%d][addons][%d][image]", i, j), *a.Image)
			}
			d.Addons = append(d.Addons, ad)
		}
		materials = append(materials, d)

		if m.Custom {
			sizes, _ := b.CustomRows(m.Key)
			for _, size := range sizes {
				custom = append(custom, b.priceRow(m, size, models.PricingModeCustom))
			}
		}
		if m.Ready {
			for _, size := range m.ReadySizes {
				ready = append(ready, b.priceRow(m, size, models.PricingModeReady))
			}
		}
	}
	return materials, custom, ready
}

func (b *Builder) priceRow(m *models.Material, size string, mode models.PricingMode) PriceRow {
	e := b.product.Prices[models.PriceKey{Material: m.Key, Size: size, Mode: mode}]
	row := PriceRow{Fabric: m.Identity, Size: size}
	if e == nil {
		row.Price = "0"
		return row
	}

	row.Price = number(e.Price)
	if e.DiscountPrice != "" {
		d := number(e.DiscountPrice)
		row.DiscountPrice = &d
	}
	if mode == models.PricingModeReady {
		row.Stock, _ = parseStock(e.Stock)
	}
	return row
}

func (b *Builder) measurementValues() map[string]map[string]json.Number {
	p := b.product
	out := make(map[string]map[string]json.Number)
	if len(p.SelectedSizes) == 0 || len(p.SelectedMeasurements) == 0 {
		return out
	}
	for _, size := range p.SelectedSizes {
		for _, id := range p.SelectedMeasurements {
			v := p.MeasurementValues[size][id]
			if v == "" {
				continue
			}
			if out[size] == nil {
				out[size] = make(map[string]json.Number)
			}
			out[size][id] = number(v)
		}
	}
	return out
}

func (b *Builder) standardValues() []StandardValue {
	p := b.product
	out := []StandardValue{}
	for _, size := range p.SelectedSizes {
		if v := p.StandardValues[size]; v != "" {
			out = append(out, StandardValue{Size: size, Value: number(v)})
		}
	}
	return out
}

func (p *Payload) text(name, value string) {
	p.Fields = append(p.Fields, Field{Name: name, Value: value})
}

func (p *Payload) json(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	p.text(name, string(data))
	return nil
}

func (p *Payload) file(field string, f models.StagedFile) {
	p.Files = append(p.Files, FilePart{Field: field, File: f})
}

// number renders validated decimal input as a JSON number; unset input is 0.
func number(s string) json.Number {
	d, err := parseDecimal(s)
	if err != nil {
		return "0"
	}
	return json.Number(d.String())
}

func flag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilAttrs(a []models.Attribute) []models.Attribute {
	if a == nil {
		return []models.Attribute{}
	}
	return a
}
