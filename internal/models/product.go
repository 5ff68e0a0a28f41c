// internal/models/product.go
package models

// StagedFile is an upload held in staging storage until the product is submitted.
type StagedFile struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// ImageRef is an image already stored by the Product API.
type ImageRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// MaterialImage is an existing image slot. A non-nil Replacement marks the
// slot dirty: the file is re-uploaded for this slot on submission.
type MaterialImage struct {
	ImageRef
	Replacement *StagedFile `json:"replacement,omitempty"`
}

func (i MaterialImage) Dirty() bool {
	return i.Replacement != nil
}

type Addon struct {
	Name     string      `json:"name"`
	Price    string      `json:"price"`
	ImageURL string      `json:"image_url,omitempty"`
	Image    *StagedFile `json:"image,omitempty"`
}

type Material struct {
	Key            string          `json:"key"`
	Temporary      bool            `json:"temporary"`
	Identity       string          `json:"identity"`
	MaterialType   string          `json:"material_type"`
	Description    string          `json:"description"`
	Images         []MaterialImage `json:"images"`
	NewImages      []StagedFile    `json:"new_images"`
	ImagesToDelete []string        `json:"images_to_delete"`
	Custom         bool            `json:"custom"`
	Ready          bool            `json:"ready"`
	ReadySizes     []string        `json:"ready_sizes"`
	Addons         []Addon         `json:"addons"`
}

// HasReadySize reports whether size is in the material's ready inventory list.
func (m *Material) HasReadySize(size string) bool {
	for _, s := range m.ReadySizes {
		if s == size {
			return true
		}
	}
	return false
}

// PriceKey addresses one pricing entry.
type PriceKey struct {
	Material string      `json:"material"`
	Size     string      `json:"size"`
	Mode     PricingMode `json:"mode"`
}

// PriceEntry holds pricing input exactly as entered. An empty string means
// "not entered", which is distinct from an explicit zero.
type PriceEntry struct {
	Price         string `json:"price"`
	DiscountPrice string `json:"discount_price"`
	Stock         string `json:"stock"`
}

type MeasurementPoint struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

type Subcategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Subcategories []Subcategory `json:"subcategories"`
}

type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// MainImage holds either the stored URL or a staged replacement, never both.
type MainImage struct {
	URL string      `json:"url,omitempty"`
	New *StagedFile `json:"new,omitempty"`
}

type Gallery struct {
	Existing []ImageRef   `json:"existing"`
	ToDelete []string     `json:"to_delete"`
	New      []StagedFile `json:"new"`
}

// Product is the aggregate edited by one draft session. It exclusively owns
// every child collection.
type Product struct {
	ID                  string `json:"id,omitempty"`
	Name                string `json:"name"`
	Description         string `json:"description"`
	CategoryID          string `json:"category_id"`
	SubcategoryID       string `json:"subcategory_id"`
	Gender              Gender `json:"gender"`
	WearType            string `json:"wear_type"`
	IsCustomizable      bool   `json:"is_customizable"`
	AlterationAvailable bool   `json:"alteration_available"`
	AlterationCharge    string `json:"alteration_charge"`

	MainImage MainImage `json:"main_image"`
	Gallery   Gallery   `json:"gallery"`

	Materials          []*Material              `json:"materials"`
	Prices             map[PriceKey]*PriceEntry `json:"-"`
	DeletedMaterialIDs []string                 `json:"deleted_material_ids"`

	SelectedMeasurements []string                     `json:"selected_measurements"`
	// MeasurementImageURLs holds stored per-product reference images;
	// MeasurementImages holds staged overrides not yet submitted.
	MeasurementImageURLs map[string]string            `json:"measurement_image_urls"`
	MeasurementImages    map[string]StagedFile        `json:"measurement_images"`
	SelectedSizes        []string                     `json:"selected_sizes"`
	StandardValues       map[string]string            `json:"standard_values"`
	// MeasurementValues is keyed by size, then measurement point id.
	MeasurementValues    map[string]map[string]string `json:"measurement_values"`

	Attributes []Attribute `json:"attributes"`
}

// NewProduct returns an empty aggregate with every map initialised.
func NewProduct() *Product {
	return &Product{
		IsCustomizable:       true,
		Prices:               make(map[PriceKey]*PriceEntry),
		MeasurementImageURLs: make(map[string]string),
		MeasurementImages:    make(map[string]StagedFile),
		StandardValues:       make(map[string]string),
		MeasurementValues:    make(map[string]map[string]string),
	}
}

// EnsureMaps initialises nil maps on an aggregate built elsewhere.
func (p *Product) EnsureMaps() {
	if p.Prices == nil {
		p.Prices = make(map[PriceKey]*PriceEntry)
	}
	if p.MeasurementImageURLs == nil {
		p.MeasurementImageURLs = make(map[string]string)
	}
	if p.MeasurementImages == nil {
		p.MeasurementImages = make(map[string]StagedFile)
	}
	if p.StandardValues == nil {
		p.StandardValues = make(map[string]string)
	}
	if p.MeasurementValues == nil {
		p.MeasurementValues = make(map[string]map[string]string)
	}
}

// FindMaterial returns the material with key and its position.
func (p *Product) FindMaterial(key string) (*Material, int) {
	for i, m := range p.Materials {
		if m.Key == key {
			return m, i
		}
	}
	return nil, -1
}
