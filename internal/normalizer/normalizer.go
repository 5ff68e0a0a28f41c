// Package normalizer maps the Product API's heterogeneous JSON responses onto
// the canonical models. Nothing outside this package branches on the API's
// key names.
package normalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/javajoker/vendor-console/internal/models"
)

var ErrEmptyResponse = errors.New("empty product response")

// Key aliases observed across Product API endpoints.
var (
	wrapperKeys        = []string{"data", "product", "result"}
	productIDKeys      = []string{"id", "product_id", "_id"}
	productNameKeys    = []string{"name", "product_name", "title"}
	descriptionKeys    = []string{"description", "desc", "product_description"}
	categoryKeys       = []string{"category_id", "category"}
	subcategoryKeys    = []string{"subcategory_id", "sub_category_id", "subcategory", "sub_category"}
	wearTypeKeys       = []string{"wear_type", "room_type", "type_of_wear", "wear"}
	customizableKeys   = []string{"is_customizable", "customizable", "is_customisable"}
	alterationKeys     = []string{"alteration_available", "is_alteration", "alteration"}
	alterationFeeKeys  = []string{"alteration_charge", "alteration_price", "alteration_fee"}
	mainImageKeys      = []string{"main_image", "main_image_url", "thumbnail", "image"}
	galleryKeys        = []string{"gallery", "gallery_images", "product_images", "images"}
	materialListKeys   = []string{"materials", "fabrics", "product_materials", "fabric_options", "product_fabrics"}
	materialIDKeys     = []string{"id", "material_id", "fabric_id", "_id"}
	materialNameKeys   = []string{"identity", "name", "fabric_name", "material_name", "fabric", "title"}
	materialTypeKeys   = []string{"material_type", "fabric_type", "type"}
	materialImageKeys  = []string{"images", "fabric_images", "material_images"}
	customFlagKeys     = []string{"custom", "is_custom", "custom_available", "custom_made"}
	readyFlagKeys      = []string{"ready", "is_ready", "ready_available", "ready_made"}
	addonListKeys      = []string{"addons", "add_ons", "material_addons"}
	priceListKeys      = []string{"prices", "pricing", "product_prices", "price_list"}
	customPriceKeys    = []string{"custom_prices", "custom_pricing", "custom_made_prices"}
	readyPriceKeys     = []string{"ready_prices", "ready_pricing", "ready_made_prices", "ready_stock"}
	priceModeKeys      = []string{"mode", "type", "price_type", "pricing_type"}
	priceFabricIDKeys  = []string{"material_id", "fabric_id"}
	priceFabricKeys    = []string{"fabric", "material", "fabric_name", "material_name", "identity"}
	priceSizeKeys      = []string{"size", "size_label", "size_name"}
	priceAmountKeys    = []string{"price", "amount", "mrp"}
	priceDiscountKeys  = []string{"discount_price", "offer_price", "sale_price", "discount"}
	priceStockKeys     = []string{"stock", "quantity", "qty"}
	sizeListKeys       = []string{"selected_sizes", "sizes", "available_sizes", "size_list"}
	standardValueKeys  = []string{"standard_values", "size_values", "size_standard_values"}
	measurementKeys    = []string{"measurements", "measurement_points", "selected_measurements", "measurement_ids"}
	measurementIDKeys  = []string{"id", "measurement_id", "_id"}
	measurementValKeys = []string{"measurement_values", "size_measurements", "measurements_by_size"}
	attributeKeys      = []string{"attributes", "product_attributes", "specifications"}
	imageURLKeys       = []string{"url", "image_url", "image", "path", "src"}
)

// Decode parses a product response body and normalizes it.
func Decode(body []byte, assetBase string) (*models.Product, error) {
	v, err := decodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode product response: %w", err)
	}
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: expected an object", ErrEmptyResponse)
	}
	return Normalize(raw, assetBase)
}

// FromFields rebuilds a product from submitted text fields, decoding the ones
// that carry JSON.
func FromFields(fields map[string]string, assetBase string) (*models.Product, error) {
	raw := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		raw[k] = v
	}
	return Normalize(raw, assetBase)
}

// Normalize maps a raw product object onto a canonical aggregate. Every image
// path is resolved against assetBase.
func Normalize(raw map[string]interface{}, assetBase string) (*models.Product, error) {
	raw = unwrap(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyResponse
	}

	p := models.NewProduct()
	p.ID = str(raw, productIDKeys...)
	p.Name = str(raw, productNameKeys...)
	p.Description = str(raw, descriptionKeys...)
	p.CategoryID = ref(raw, categoryKeys...)
	p.SubcategoryID = ref(raw, subcategoryKeys...)
	p.Gender = models.Gender(strings.ToLower(str(raw, "gender")))
	p.WearType = str(raw, wearTypeKeys...)
	if v, ok := first(raw, customizableKeys...); ok {
		p.IsCustomizable = toBool(v)
	}
	p.AlterationAvailable = boolean(raw, alterationKeys...)
	p.AlterationCharge = str(raw, alterationFeeKeys...)

	if v, ok := first(raw, mainImageKeys...); ok {
		p.MainImage.URL = ResolveAssetURL(assetBase, imageRef(v).URL)
	}
	for _, v := range list(firstValue(raw, galleryKeys...)) {
		img := imageRef(v)
		if img.URL == "" && img.ID == "" {
			continue
		}
		img.URL = ResolveAssetURL(assetBase, img.URL)
		p.Gallery.Existing = append(p.Gallery.Existing, img)
	}

	var materialRaws []map[string]interface{}
	for _, v := range list(firstValue(raw, materialListKeys...)) {
		mraw := object(v)
		if m := material(mraw, assetBase); m != nil {
			p.Materials = append(p.Materials, m)
			materialRaws = append(materialRaws, mraw)
		}
	}
	loadPrices(p, raw, materialRaws)

	p.SelectedSizes = sizes(firstValue(raw, sizeListKeys...))
	loadStandardValues(p, firstValue(raw, standardValueKeys...))
	loadMeasurements(p, firstValue(raw, measurementKeys...), assetBase)
	loadMeasurementValues(p, firstValue(raw, measurementValKeys...))
	p.Attributes = attributes(firstValue(raw, attributeKeys...))

	return p, nil
}

// ResolveAssetURL turns a stored relative path into an absolute URL. Absolute
// URLs pass through unchanged, so applying it twice is harmless.
func ResolveAssetURL(base, path string) string {
	path = strings.TrimSpace(path)
	if path == "" || base == "" || isAbsolute(path) {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func isAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "blob:")
}

func material(raw map[string]interface{}, assetBase string) *models.Material {
	if raw == nil {
		return nil
	}

	m := &models.Material{
		Key:          str(raw, materialIDKeys...),
		Identity:     str(raw, materialNameKeys...),
		MaterialType: ref(raw, materialTypeKeys...),
		Description:  str(raw, "description", "desc"),
		Custom:       boolean(raw, customFlagKeys...),
		Ready:        boolean(raw, readyFlagKeys...),
	}
	if m.Key == "" {
		m.Key = str(raw, "client_key")
		m.Temporary = true
	}
	if m.Key == "" {
		m.Key = models.TemporaryKeyPrefix + uuid.NewString()
	} else if strings.HasPrefix(m.Key, models.TemporaryKeyPrefix) {
		m.Temporary = true
	}

	for _, v := range list(firstValue(raw, materialImageKeys...)) {
		img := imageRef(v)
		if img.URL == "" && img.ID == "" {
			continue
		}
		img.URL = ResolveAssetURL(assetBase, img.URL)
		m.Images = append(m.Images, models.MaterialImage{ImageRef: img})
	}

	for _, v := range list(firstValue(raw, addonListKeys...)) {
		a := object(v)
		if a == nil {
			continue
		}
		m.Addons = append(m.Addons, models.Addon{
			Name:     str(a, "name", "title"),
			Price:    str(a, "price", "amount"),
			ImageURL: ResolveAssetURL(assetBase, imageRef(firstValue(a, "image", "image_url")).URL),
		})
	}

	for _, s := range sizes(firstValue(raw, "ready_sizes")) {
		if !m.HasReadySize(s) {
			m.ReadySizes = append(m.ReadySizes, s)
		}
	}
	return m
}

func loadPrices(p *models.Product, raw map[string]interface{}, materialRaws []map[string]interface{}) {
	for _, v := range list(firstValue(raw, customPriceKeys...)) {
		addPrice(p, nil, object(v), models.PricingModeCustom)
	}
	for _, v := range list(firstValue(raw, readyPriceKeys...)) {
		addPrice(p, nil, object(v), models.PricingModeReady)
	}
	for _, v := range list(firstValue(raw, priceListKeys...)) {
		row := object(v)
		addPrice(p, nil, row, priceMode(row))
	}

	// Some endpoints nest price rows inside each material.
	for i, mraw := range materialRaws {
		m := p.Materials[i]
		for _, pv := range list(firstValue(mraw, customPriceKeys...)) {
			addPrice(p, m, object(pv), models.PricingModeCustom)
		}
		for _, pv := range list(firstValue(mraw, readyPriceKeys...)) {
			addPrice(p, m, object(pv), models.PricingModeReady)
		}
		for _, pv := range list(firstValue(mraw, priceListKeys...)) {
			row := object(pv)
			addPrice(p, m, row, priceMode(row))
		}
		inferAvailability(p, m, mraw)
	}
}

// inferAvailability enables a mode that has price rows when the response did
// not send the flag at all.
func inferAvailability(p *models.Product, m *models.Material, raw map[string]interface{}) {
	_, hasCustom := first(raw, customFlagKeys...)
	_, hasReady := first(raw, readyFlagKeys...)
	for k := range p.Prices {
		if k.Material != m.Key {
			continue
		}
		if k.Mode == models.PricingModeCustom && !hasCustom {
			m.Custom = true
		}
		if k.Mode == models.PricingModeReady && !hasReady {
			m.Ready = true
		}
	}
}

func priceMode(row map[string]interface{}) models.PricingMode {
	mode := strings.ToLower(str(row, priceModeKeys...))
	mode = strings.NewReplacer("-", "", "_", "", " ", "").Replace(mode)
	switch mode {
	case "ready", "readymade", "readytowear", "stock":
		return models.PricingModeReady
	default:
		return models.PricingModeCustom
	}
}

func addPrice(p *models.Product, m *models.Material, row map[string]interface{}, mode models.PricingMode) {
	if row == nil {
		return
	}
	if m == nil {
		m = resolveMaterial(p, row)
	}
	size := models.NormalizeSize(str(row, priceSizeKeys...))
	if m == nil || !models.IsStandardSize(size) {
		return
	}

	entry := &models.PriceEntry{
		Price:         str(row, priceAmountKeys...),
		DiscountPrice: str(row, priceDiscountKeys...),
	}
	if mode == models.PricingModeReady {
		entry.Stock = str(row, priceStockKeys...)
		if !m.HasReadySize(size) {
			m.ReadySizes = append(m.ReadySizes, size)
		}
	}
	p.Prices[models.PriceKey{Material: m.Key, Size: size, Mode: mode}] = entry
}

func resolveMaterial(p *models.Product, row map[string]interface{}) *models.Material {
	if id := str(row, priceFabricIDKeys...); id != "" {
		if m, _ := p.FindMaterial(id); m != nil {
			return m
		}
	}
	name := ref(row, priceFabricKeys...)
	if name == "" {
		return nil
	}
	if m, _ := p.FindMaterial(name); m != nil {
		return m
	}
	for _, m := range p.Materials {
		if strings.EqualFold(m.Identity, name) {
			return m
		}
	}
	return nil
}

func loadStandardValues(p *models.Product, v interface{}) {
	if obj := object(v); obj != nil {
		for size, val := range obj {
			if s := models.NormalizeSize(size); models.IsStandardSize(s) {
				if value := toString(val); value != "" {
					p.StandardValues[s] = value
				}
			}
		}
		return
	}
	for _, item := range list(v) {
		row := object(item)
		s := models.NormalizeSize(str(row, "size", "size_label"))
		val := str(row, "value", "standard_value")
		if models.IsStandardSize(s) && val != "" {
			p.StandardValues[s] = val
		}
	}
}

func loadMeasurements(p *models.Product, v interface{}, assetBase string) {
	for _, item := range list(v) {
		var id, image string
		if obj := object(item); obj != nil {
			id = str(obj, measurementIDKeys...)
			image = imageRef(firstValue(obj, "image", "image_url", "reference_image")).URL
		} else {
			id = toString(item)
		}
		if id == "" {
			continue
		}
		if !contains(p.SelectedMeasurements, id) {
			p.SelectedMeasurements = append(p.SelectedMeasurements, id)
		}
		if image != "" {
			p.MeasurementImageURLs[id] = ResolveAssetURL(assetBase, image)
		}
	}
}

func loadMeasurementValues(p *models.Product, v interface{}) {
	set := func(size, id, val string) {
		s := models.NormalizeSize(size)
		if !models.IsStandardSize(s) || id == "" || val == "" {
			return
		}
		if p.MeasurementValues[s] == nil {
			p.MeasurementValues[s] = make(map[string]string)
		}
		p.MeasurementValues[s][id] = val
	}

	if obj := object(v); obj != nil {
		for size, row := range obj {
			for id, val := range object(row) {
				set(size, id, toString(val))
			}
		}
		return
	}
	for _, item := range list(v) {
		row := object(item)
		set(str(row, "size", "size_label"), ref(row, "measurement_id", "measurement"), str(row, "value"))
	}
}

func attributes(v interface{}) []models.Attribute {
	var out []models.Attribute
	if obj := object(v); obj != nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, models.Attribute{Key: k, Value: toString(obj[k])})
		}
		return out
	}
	for _, item := range list(v) {
		row := object(item)
		key := str(row, "key", "name", "attribute")
		if key == "" {
			continue
		}
		out = append(out, models.Attribute{Key: key, Value: str(row, "value")})
	}
	return out
}

func sizes(v interface{}) []string {
	var items []interface{}
	if s, ok := v.(string); ok && !looksLikeJSON(s) {
		for _, part := range strings.Split(s, ",") {
			items = append(items, part)
		}
	} else {
		items = list(v)
	}

	var out []string
	for _, item := range items {
		label := toString(item)
		if obj := object(item); obj != nil {
			label = str(obj, "size", "name", "label")
		}
		s := models.NormalizeSize(label)
		if models.IsStandardSize(s) && !contains(out, s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return models.SizeRank(out[i]) < models.SizeRank(out[j])
	})
	return out
}

func imageRef(v interface{}) models.ImageRef {
	if obj := object(v); obj != nil {
		return models.ImageRef{
			ID:  str(obj, "id", "image_id", "_id"),
			URL: str(obj, imageURLKeys...),
		}
	}
	return models.ImageRef{URL: toString(v)}
}

func unwrap(raw map[string]interface{}) map[string]interface{} {
	for depth := 0; depth < 3; depth++ {
		if _, ok := first(raw, productNameKeys...); ok {
			return raw
		}
		next := object(firstValue(raw, wrapperKeys...))
		if next == nil {
			return raw
		}
		raw = next
	}
	return raw
}

func first(m map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstValue(m map[string]interface{}, keys ...string) interface{} {
	v, _ := first(m, keys...)
	return v
}

func str(m map[string]interface{}, keys ...string) string {
	return toString(firstValue(m, keys...))
}

// ref reads a value that is either a scalar id or an object carrying one.
func ref(m map[string]interface{}, keys ...string) string {
	v := firstValue(m, keys...)
	if obj := object(v); obj != nil {
		if id := str(obj, "id", "_id"); id != "" {
			return id
		}
		return str(obj, "name")
	}
	return toString(v)
}

func boolean(m map[string]interface{}, keys ...string) bool {
	return toBool(firstValue(m, keys...))
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil, map[string]interface{}, []interface{}:
		return ""
	case json.Number:
		return t.String()
	}
	return strings.TrimSpace(cast.ToString(v))
}

func toBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		if s == "yes" || s == "on" {
			return true
		}
		b, err := cast.ToBoolE(s)
		return err == nil && b
	}
	return cast.ToBool(v)
}

func object(v interface{}) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return t
	case string:
		if strings.HasPrefix(strings.TrimSpace(t), "{") {
			if decoded, err := decodeJSON([]byte(t)); err == nil {
				if obj, ok := decoded.(map[string]interface{}); ok {
					return obj
				}
			}
		}
	}
	return nil
}

func list(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case string:
		if strings.HasPrefix(strings.TrimSpace(t), "[") {
			if decoded, err := decodeJSON([]byte(t)); err == nil {
				if items, ok := decoded.([]interface{}); ok {
					return items
				}
			}
		}
	}
	return nil
}

func looksLikeJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{")
}

func decodeJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
