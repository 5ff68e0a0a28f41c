package builder

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/vendor-console/internal/models"
	"github.com/javajoker/vendor-console/internal/normalizer"
)

type BuilderTestSuite struct {
	suite.Suite
	b *Builder
}

func (suite *BuilderTestSuite) SetupTest() {
	n := 0
	suite.b = New(WithKeyGenerator(func() string {
		n++
		return fmt.Sprintf("%s%d", models.TemporaryKeyPrefix, n)
	}))
	name, category := "Classic Shirt", "3"
	suite.b.UpdateDetails(DetailsUpdate{Name: &name, CategoryID: &category})
}

func staged(key string) models.StagedFile {
	return models.StagedFile{Key: key, Filename: key + ".jpg", ContentType: "image/jpeg", Size: 10}
}

// material adds a named material with the given modes switched on.
func (suite *BuilderTestSuite) material(identity string, modes ...models.PricingMode) *models.Material {
	m := suite.b.AddMaterial()
	require.NoError(suite.T(), suite.b.SetMaterialField(m.Key, models.MaterialFieldIdentity, identity))
	for _, mode := range modes {
		on, err := suite.b.ToggleAvailability(m.Key, mode)
		require.NoError(suite.T(), err)
		require.True(suite.T(), on)
	}
	return m
}

func (suite *BuilderTestSuite) price(key, size string, mode models.PricingMode, price, discount string) {
	require.NoError(suite.T(), suite.b.SetPrice(key, size, models.PriceFieldPrice, price, mode))
	if discount != "" {
		require.NoError(suite.T(), suite.b.SetPrice(key, size, models.PriceFieldDiscount, discount, mode))
	}
}

func (suite *BuilderTestSuite) countPrices(key string, mode models.PricingMode) int {
	n := 0
	for k := range suite.b.Product().Prices {
		if k.Material == key && k.Mode == mode {
			n++
		}
	}
	return n
}

func (suite *BuilderTestSuite) TestRemoveMaterialCascades() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom, models.PricingModeReady)
	other := suite.material("Linen", models.PricingModeCustom)
	_, err := suite.b.ToggleSize("S")
	require.NoError(t, err)

	suite.price(m.Key, "S", models.PricingModeCustom, "500", "")
	suite.price(other.Key, "S", models.PricingModeCustom, "400", "")
	require.NoError(t, suite.b.AddReadySize(m.Key, "M"))
	require.NoError(t, suite.b.AddReadySize(m.Key, "L"))
	_, err = suite.b.AddAddon(m.Key, models.Addon{Name: "Lining", Price: "50"})
	require.NoError(t, err)
	_, err = suite.b.AddAddon(m.Key, models.Addon{Name: "Buttons", Price: "20"})
	require.NoError(t, err)

	require.NoError(t, suite.b.RemoveMaterial(m.Key))

	for k := range suite.b.Product().Prices {
		assert.NotEqual(t, m.Key, k.Material)
	}
	assert.Empty(t, m.Addons)
	assert.Equal(t, 1, suite.countPrices(other.Key, models.PricingModeCustom))
	require.Len(t, suite.b.Product().Materials, 1)
	assert.Equal(t, other.Key, suite.b.Product().Materials[0].Key)

	// Temporary materials never reach the server, so nothing is queued.
	assert.Empty(t, suite.b.Product().DeletedMaterialIDs)
	assert.ErrorIs(t, suite.b.RemoveMaterial(m.Key), ErrMaterialNotFound)
}

func (suite *BuilderTestSuite) TestRemoveStoredMaterialQueuesDeletion() {
	p := models.NewProduct()
	p.Materials = []*models.Material{{Key: "55", Identity: "Silk", Ready: true}}
	b := FromProduct(p)

	require.NoError(suite.T(), b.RemoveMaterial("55"))
	assert.Equal(suite.T(), []string{"55"}, b.Product().DeletedMaterialIDs)
}

func (suite *BuilderTestSuite) TestAddReadySizeIsIdempotent() {
	t := suite.T()
	m := suite.material("Silk", models.PricingModeReady)

	require.NoError(t, suite.b.AddReadySize(m.Key, "L"))
	suite.price(m.Key, "L", models.PricingModeReady, "900", "")
	require.NoError(t, suite.b.AddReadySize(m.Key, "l"))

	assert.Equal(t, []string{"L"}, m.ReadySizes)
	assert.Equal(t, 1, suite.countPrices(m.Key, models.PricingModeReady))
	entry, ok := suite.b.Price(m.Key, "L", models.PricingModeReady)
	require.True(t, ok)
	assert.Equal(t, "900", entry.Price)

	assert.ErrorIs(t, suite.b.AddReadySize(m.Key, "XXXXL"), ErrUnknownSize)
}

func (suite *BuilderTestSuite) TestReadyInventoryAddRemoveReAdd() {
	t := suite.T()
	m := suite.material("Silk", models.PricingModeReady)

	require.NoError(t, suite.b.AddReadySize(m.Key, "L"))
	assert.Equal(t, 1, suite.countPrices(m.Key, models.PricingModeReady))
	suite.price(m.Key, "L", models.PricingModeReady, "900", "800")
	require.NoError(t, suite.b.SetPrice(m.Key, "L", models.PriceFieldStock, "4", models.PricingModeReady))

	require.NoError(t, suite.b.RemoveReadySize(m.Key, "L"))
	assert.Equal(t, 0, suite.countPrices(m.Key, models.PricingModeReady))
	assert.Empty(t, m.ReadySizes)

	require.NoError(t, suite.b.AddReadySize(m.Key, "L"))
	entry, ok := suite.b.Price(m.Key, "L", models.PricingModeReady)
	require.True(t, ok)
	assert.Equal(t, models.PriceEntry{}, entry)
}

func (suite *BuilderTestSuite) TestReadyPriceRequiresListedSize() {
	m := suite.material("Silk", models.PricingModeReady)

	err := suite.b.SetPrice(m.Key, "M", models.PriceFieldPrice, "100", models.PricingModeReady)
	assert.ErrorIs(suite.T(), err, ErrSizeNotReady)
	assert.Equal(suite.T(), 0, suite.countPrices(m.Key, models.PricingModeReady))
}

func (suite *BuilderTestSuite) TestAvailabilityModesAreIndependent() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom, models.PricingModeReady)
	for _, size := range []string{"S", "M"} {
		_, err := suite.b.ToggleSize(size)
		require.NoError(t, err)
		suite.price(m.Key, size, models.PricingModeCustom, "500", "")
	}
	require.NoError(t, suite.b.AddReadySize(m.Key, "L"))
	suite.price(m.Key, "L", models.PricingModeReady, "700", "")

	on, err := suite.b.ToggleAvailability(m.Key, models.PricingModeReady)
	require.NoError(t, err)
	assert.False(t, on)
	assert.Equal(t, 2, suite.countPrices(m.Key, models.PricingModeCustom))

	// Disabled rows stay in state but are left out of the submission.
	assert.Equal(t, 1, suite.countPrices(m.Key, models.PricingModeReady))
	payload, err := suite.b.Serialize()
	require.NoError(t, err)
	ready, _ := payload.Value("ready_prices")
	assert.JSONEq(t, `[]`, ready)

	on, err = suite.b.ToggleAvailability(m.Key, models.PricingModeReady)
	require.NoError(t, err)
	assert.True(t, on)
	rows, err := suite.b.ReadyRows(m.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{"L"}, rows)

	_, err = suite.b.ToggleAvailability(m.Key, models.PricingMode("rental"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func (suite *BuilderTestSuite) TestSingleMaterialTwoSizesPricing() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom)
	for _, size := range []string{"M", "S"} {
		_, err := suite.b.ToggleSize(size)
		require.NoError(t, err)
	}
	suite.price(m.Key, "S", models.PricingModeCustom, "500", "450")
	suite.price(m.Key, "M", models.PricingModeCustom, "550", "500")

	payload, err := suite.b.Serialize()
	require.NoError(t, err)

	custom, ok := payload.Value("custom_prices")
	require.True(t, ok)
	assert.JSONEq(t, `[
		{"fabric":"Cotton","size":"S","price":500,"discount_price":450,"stock":0},
		{"fabric":"Cotton","size":"M","price":550,"discount_price":500,"stock":0}
	]`, custom)

	flag, _ := payload.Value("is_customizable")
	assert.Equal(t, "1", flag)
}

func (suite *BuilderTestSuite) TestUnsetDiscountIsNull() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom)
	_, err := suite.b.ToggleSize("S")
	require.NoError(t, err)
	suite.price(m.Key, "S", models.PricingModeCustom, "500", "")

	payload, err := suite.b.Serialize()
	require.NoError(t, err)
	custom, _ := payload.Value("custom_prices")
	assert.JSONEq(t, `[{"fabric":"Cotton","size":"S","price":500,"discount_price":null,"stock":0}]`, custom)
}

func (suite *BuilderTestSuite) TestReplaceExistingMaterialImage() {
	t := suite.T()
	p := models.NewProduct()
	p.Name, p.CategoryID = "Kurta", "1"
	p.SelectedSizes = []string{"M"}
	p.Materials = []*models.Material{{
		Key:      "12",
		Identity: "Cotton",
		Custom:   true,
		Images:   []models.MaterialImage{{ImageRef: models.ImageRef{ID: "7", URL: "https://cdn.example.com/x.jpg"}}},
	}}
	p.Prices[models.PriceKey{Material: "12", Size: "M", Mode: models.PricingModeCustom}] = &models.PriceEntry{Price: "300"}
	b := FromProduct(p)

	prev, err := b.ReplaceMaterialImage("12", 0, staged("new-7"))
	require.NoError(t, err)
	assert.Nil(t, prev)

	m := b.Product().Materials[0]
	require.Len(t, m.Images, 1)
	assert.Equal(t, "7", m.Images[0].ID)
	assert.True(t, m.Images[0].Dirty())
	assert.Empty(t, m.NewImages)

	payload, err := b.Serialize()
	require.NoError(t, err)
	f, ok := payload.File("materials[0][images][0]")
	require.True(t, ok)
	assert.Equal(t, "new-7", f.Key)
	_, ok = payload.File("materials[0][new_images][]")
	assert.False(t, ok)

	raw, _ := payload.Value("materials")
	var descriptors []MaterialDescriptor
	require.NoError(t, json.Unmarshal([]byte(raw), &descriptors))
	require.Len(t, descriptors, 1)
	assert.Equal(t, "12", descriptors[0].ID)
	assert.Equal(t, []ReplacedImage{{Slot: 0, ID: "7"}}, descriptors[0].ReplacedImages)
	assert.Empty(t, descriptors[0].KeepImages)

	prev, err = b.ReplaceMaterialImage("12", 0, staged("newer-7"))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Equal(t, "new-7", prev.Key)

	_, err = b.ReplaceMaterialImage("12", 1, staged("x"))
	assert.ErrorIs(t, err, ErrImageIndex)
}

func (suite *BuilderTestSuite) TestRemoveImages() {
	t := suite.T()
	p := models.NewProduct()
	p.Materials = []*models.Material{{
		Key:    "12",
		Images: []models.MaterialImage{{ImageRef: models.ImageRef{ID: "7"}}, {ImageRef: models.ImageRef{ID: "8"}}},
	}}
	p.Gallery.Existing = []models.ImageRef{{ID: "100"}}
	b := FromProduct(p)

	require.NoError(t, b.AddMaterialImages("12", staged("n1"), staged("n2")))
	_, err := b.RemoveMaterialImage("12", models.ImageSourceExisting, 0)
	require.NoError(t, err)
	dropped, err := b.RemoveMaterialImage("12", models.ImageSourceNew, 1)
	require.NoError(t, err)
	assert.Equal(t, "n2", dropped.Key)

	m := b.Product().Materials[0]
	assert.Equal(t, []string{"7"}, m.ImagesToDelete)
	require.Len(t, m.Images, 1)
	assert.Equal(t, "8", m.Images[0].ID)
	assert.Len(t, m.NewImages, 1)

	_, err = b.RemoveGalleryImage(models.ImageSourceExisting, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"100"}, b.Product().Gallery.ToDelete)
	_, err = b.RemoveGalleryImage(models.ImageSource("other"), 0)
	assert.ErrorIs(t, err, ErrImageSource)
}

func (suite *BuilderTestSuite) TestNonCustomizableMeasurementsAreReadOnly() {
	t := suite.T()
	p := models.NewProduct()
	p.IsCustomizable = false
	p.SelectedSizes = []string{"M"}
	p.SelectedMeasurements = []string{"1"}
	p.MeasurementValues["M"] = map[string]string{"1": "40"}
	b := FromProduct(p)

	assert.True(t, b.MeasurementsReadOnly())
	assert.ErrorIs(t, b.SetMeasurementValue("M", "1", "42"), ErrMeasurementsReadOnly)
	assert.Equal(t, "40", b.Product().MeasurementValues["M"]["1"])

	_, err := b.ToggleMeasurementPoint("1")
	assert.ErrorIs(t, err, ErrMeasurementsReadOnly)
	assert.Equal(t, []string{"1"}, b.Product().SelectedMeasurements)

	_, err = b.SetMeasurementImage("1", staged("m"))
	assert.ErrorIs(t, err, ErrMeasurementsReadOnly)
	assert.Empty(t, b.Product().MeasurementImages)
}

func (suite *BuilderTestSuite) TestMeasurementTable() {
	t := suite.T()
	assert.Empty(t, suite.b.MeasurementTable())

	_, err := suite.b.ToggleSize("L")
	require.NoError(t, err)
	assert.Empty(t, suite.b.MeasurementTable())

	_, err = suite.b.ToggleMeasurementPoint("chest")
	require.NoError(t, err)
	_, err = suite.b.ToggleSize("S")
	require.NoError(t, err)
	require.NoError(t, suite.b.SetStandardValue("S", "36"))
	require.NoError(t, suite.b.SetMeasurementValue("S", "chest", "38"))

	assert.Equal(t, []MeasurementRow{
		{Size: "S", StandardValue: "36", Values: map[string]string{"chest": "38"}},
		{Size: "L", StandardValue: "", Values: map[string]string{"chest": ""}},
	}, suite.b.MeasurementTable())

	assert.ErrorIs(t, suite.b.SetMeasurementValue("XL", "chest", "1"), ErrSizeNotSelected)
	assert.ErrorIs(t, suite.b.SetMeasurementValue("S", "waist", "1"), ErrMeasurementNotSelected)

	// Deselecting a size drops its values; reselecting starts clean.
	_, err = suite.b.ToggleSize("S")
	require.NoError(t, err)
	_, err = suite.b.ToggleSize("S")
	require.NoError(t, err)
	assert.Empty(t, suite.b.Product().StandardValues)
	assert.Empty(t, suite.b.Product().MeasurementValues)
}

func (suite *BuilderTestSuite) TestDeselectedMeasurementIsNotSubmitted() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom)
	_, err := suite.b.ToggleSize("M")
	require.NoError(t, err)
	suite.price(m.Key, "M", models.PricingModeCustom, "500", "")
	for _, id := range []string{"chest", "waist"} {
		_, err = suite.b.ToggleMeasurementPoint(id)
		require.NoError(t, err)
		require.NoError(t, suite.b.SetMeasurementValue("M", id, "30"))
	}
	_, err = suite.b.ToggleMeasurementPoint("waist")
	require.NoError(t, err)

	payload, err := suite.b.Serialize()
	require.NoError(t, err)
	values, _ := payload.Value("measurement_values")
	assert.JSONEq(t, `{"M":{"chest":30}}`, values)
	assert.Equal(t, "30", suite.b.Product().MeasurementValues["M"]["waist"])
}

func (suite *BuilderTestSuite) TestValidationReportsEveryGap() {
	t := suite.T()
	b := New()
	charge := ""
	yes := true
	b.UpdateDetails(DetailsUpdate{AlterationAvailable: &yes, AlterationCharge: &charge})

	err := b.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("name"))
	assert.True(t, verr.Has("category_id"))
	assert.True(t, verr.Has("alteration_charge"))
	assert.True(t, verr.Has("materials"))

	_, err = b.Serialize()
	assert.ErrorAs(t, err, &verr)
}

func (suite *BuilderTestSuite) TestValidationOfPricing() {
	t := suite.T()
	cotton := suite.material("Cotton", models.PricingModeCustom)
	dup := suite.material("cotton", models.PricingModeReady)
	idle := suite.material("Linen")
	_ = idle
	_, err := suite.b.ToggleSize("S")
	require.NoError(t, err)
	_, err = suite.b.ToggleSize("M")
	require.NoError(t, err)

	suite.price(cotton.Key, "S", models.PricingModeCustom, "100", "150")
	suite.price(cotton.Key, "M", models.PricingModeCustom, "0", "")
	require.NoError(t, suite.b.AddReadySize(dup.Key, "L"))
	suite.price(dup.Key, "L", models.PricingModeReady, "abc", "")
	require.NoError(t, suite.b.SetPrice(dup.Key, "L", models.PriceFieldStock, "1.5", models.PricingModeReady))
	suite.b.AddAttribute("", "orphan")

	var verr *ValidationError
	require.ErrorAs(t, suite.b.Validate(), &verr)
	assert.True(t, verr.Has("materials[0].prices.custom.S.discount_price"))
	assert.True(t, verr.Has("materials[0].prices.custom.M.price"))
	assert.True(t, verr.Has("materials[1].identity"))
	assert.True(t, verr.Has("materials[1].prices.ready.L.price"))
	assert.True(t, verr.Has("materials[1].prices.ready.L.stock") || verr.Has("materials[1].prices.ready.L.price"))
	assert.True(t, verr.Has("materials[2].availability"))
	assert.True(t, verr.Has("attributes[0].key"))
	assert.False(t, verr.Has("name"))
}

func (suite *BuilderTestSuite) TestCustomRowsFollowSelectedSizes() {
	t := suite.T()
	m := suite.material("Cotton")

	rows, err := suite.b.CustomRows(m.Key)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = suite.b.ToggleAvailability(m.Key, models.PricingModeCustom)
	require.NoError(t, err)
	for _, size := range []string{"XL", "xs", "M"} {
		_, err = suite.b.ToggleSize(size)
		require.NoError(t, err)
	}
	rows, err = suite.b.CustomRows(m.Key)
	require.NoError(t, err)
	assert.Equal(t, []string{"XS", "M", "XL"}, rows)
}

func (suite *BuilderTestSuite) TestMaterialTypeCustom() {
	t := suite.T()
	m := suite.material("Cotton")

	custom, err := suite.b.MaterialTypeIsCustom(m.Key)
	require.NoError(t, err)
	assert.False(t, custom)

	require.NoError(t, suite.b.SetMaterialField(m.Key, models.MaterialFieldMaterialType, "silk"))
	custom, _ = suite.b.MaterialTypeIsCustom(m.Key)
	assert.False(t, custom)

	require.NoError(t, suite.b.SetMaterialField(m.Key, models.MaterialFieldMaterialType, "Bamboo blend"))
	custom, _ = suite.b.MaterialTypeIsCustom(m.Key)
	assert.True(t, custom)

	assert.ErrorIs(t, suite.b.SetMaterialField(m.Key, models.MaterialField("color"), "red"), ErrUnknownField)
}

func (suite *BuilderTestSuite) TestCategoryChangeClearsSubcategory() {
	t := suite.T()
	sub := "31"
	suite.b.UpdateDetails(DetailsUpdate{SubcategoryID: &sub})
	assert.Equal(t, "31", suite.b.Product().SubcategoryID)

	category := "4"
	suite.b.UpdateDetails(DetailsUpdate{CategoryID: &category})
	assert.Equal(t, "4", suite.b.Product().CategoryID)
	assert.Empty(t, suite.b.Product().SubcategoryID)

	category, sub = "5", "51"
	suite.b.UpdateDetails(DetailsUpdate{CategoryID: &category, SubcategoryID: &sub})
	assert.Equal(t, "51", suite.b.Product().SubcategoryID)
}

func (suite *BuilderTestSuite) TestAddonsAndStagedFiles() {
	t := suite.T()
	m := suite.material("Cotton")

	idx, err := suite.b.AddAddon(m.Key, models.Addon{Name: " Lining ", Price: "50", Image: &models.StagedFile{Key: "a1"}})
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "Lining", m.Addons[0].Name)

	prev, err := suite.b.UpdateAddon(m.Key, 0, models.Addon{Name: "Silk lining", Price: "70", Image: &models.StagedFile{Key: "a2"}})
	require.NoError(t, err)
	assert.Equal(t, "a1", prev.Key)

	prev, err = suite.b.UpdateAddon(m.Key, 0, models.Addon{Name: "Silk lining", Price: "75"})
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, "a2", m.Addons[0].Image.Key)

	suite.b.SetMainImage(staged("main"))
	suite.b.AddGalleryImages(staged("g1"))

	keys := []string{}
	for _, f := range suite.b.StagedFiles() {
		keys = append(keys, f.Key)
	}
	assert.ElementsMatch(t, []string{"main", "g1", "a2"}, keys)

	removed, err := suite.b.RemoveAddon(m.Key, 0)
	require.NoError(t, err)
	assert.Equal(t, "a2", removed.Key)
	_, err = suite.b.RemoveAddon(m.Key, 0)
	assert.ErrorIs(t, err, ErrAddonIndex)
}

func (suite *BuilderTestSuite) TestMarkSubmittedRekeysMaterials() {
	t := suite.T()
	m := suite.material("Cotton", models.PricingModeCustom)
	_, err := suite.b.ToggleSize("S")
	require.NoError(t, err)
	suite.price(m.Key, "S", models.PricingModeCustom, "500", "")
	tmp := m.Key

	suite.b.MarkSubmitted("900", map[string]string{tmp: "77"})

	assert.Equal(t, "900", suite.b.Product().ID)
	assert.Equal(t, "77", m.Key)
	assert.False(t, m.Temporary)
	_, ok := suite.b.Price(tmp, "S", models.PricingModeCustom)
	assert.False(t, ok)
	entry, ok := suite.b.Price("77", "S", models.PricingModeCustom)
	require.True(t, ok)
	assert.Equal(t, "500", entry.Price)
}

func (suite *BuilderTestSuite) TestSerializeThenNormalizeRoundTrip() {
	t := suite.T()
	stored := models.NewProduct()
	stored.ID = "900"
	stored.Name, stored.CategoryID = "Sherwani", "2"
	stored.Materials = []*models.Material{{Key: "41", Identity: "Velvet", Custom: true}}
	b := FromProduct(stored, WithKeyGenerator(func() string { return "tmp-new" }))

	for _, size := range []string{"S", "M", "L"} {
		_, err := b.ToggleSize(size)
		require.NoError(t, err)
		require.NoError(t, b.SetPrice("41", size, models.PriceFieldPrice, "1500", models.PricingModeCustom))
	}
	require.NoError(t, b.SetPrice("41", "M", models.PriceFieldDiscount, "1400", models.PricingModeCustom))

	silk := b.AddMaterial()
	require.NoError(t, b.SetMaterialField(silk.Key, models.MaterialFieldIdentity, "Silk"))
	_, err := b.ToggleAvailability(silk.Key, models.PricingModeReady)
	require.NoError(t, err)
	require.NoError(t, b.AddReadySize(silk.Key, "M"))
	require.NoError(t, b.SetPrice(silk.Key, "M", models.PriceFieldPrice, "2000", models.PricingModeReady))
	require.NoError(t, b.SetPrice(silk.Key, "M", models.PriceFieldStock, "3", models.PricingModeReady))

	_, err = b.ToggleMeasurementPoint("1")
	require.NoError(t, err)
	require.NoError(t, b.SetStandardValue("M", "38"))
	require.NoError(t, b.SetMeasurementValue("M", "1", "40.5"))
	require.NoError(t, b.SetMeasurementValue("L", "1", "42"))
	b.AddAttribute("collar", "mandarin")

	payload, err := b.Serialize()
	require.NoError(t, err)

	got, err := normalizer.FromFields(payload.FieldMap(), "")
	require.NoError(t, err)

	identities := func(p *models.Product) []string {
		var out []string
		for _, m := range p.Materials {
			out = append(out, m.Key+"="+m.Identity)
		}
		return out
	}
	want := b.Product()
	assert.Equal(t, identities(want), identities(got))
	assert.Equal(t, want.Prices, got.Prices)
	assert.Equal(t, want.SelectedSizes, got.SelectedSizes)
	assert.Equal(t, want.MeasurementValues, got.MeasurementValues)
	assert.Equal(t, want.StandardValues, got.StandardValues)
	assert.Equal(t, want.SelectedMeasurements, got.SelectedMeasurements)
	assert.Equal(t, want.Attributes, got.Attributes)
	assert.True(t, got.Materials[1].Temporary)
	assert.False(t, got.Materials[0].Temporary)
}

func TestBuilderTestSuite(t *testing.T) {
	suite.Run(t, new(BuilderTestSuite))
}
