package builder

import (
	"fmt"
	"strings"

	"github.com/javajoker/vendor-console/internal/models"
)

// MeasurementRow is one size line of the size x measurement table.
type MeasurementRow struct {
	Size          string            `json:"size"`
	StandardValue string            `json:"standard_value"`
	Values        map[string]string `json:"values"`
}

// ToggleMeasurementPoint adds or removes id from the product-wide selection
// and returns whether it is now selected. Values entered for a deselected
// point are kept but not submitted.
func (b *Builder) ToggleMeasurementPoint(id string) (bool, error) {
	if b.MeasurementsReadOnly() {
		return false, ErrMeasurementsReadOnly
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: empty measurement id", ErrUnknownField)
	}

	var removed bool
	b.product.SelectedMeasurements, removed = removeString(b.product.SelectedMeasurements, id)
	if removed {
		return false, nil
	}
	b.product.SelectedMeasurements = append(b.product.SelectedMeasurements, id)
	return true, nil
}

// ToggleSize adds or removes a standard size from the selection. Deselecting a
// size discards its standard value and measurement values.
func (b *Builder) ToggleSize(size string) (bool, error) {
	s, err := standardSize(size)
	if err != nil {
		return false, err
	}

	var removed bool
	b.product.SelectedSizes, removed = removeString(b.product.SelectedSizes, s)
	if removed {
		delete(b.product.StandardValues, s)
		delete(b.product.MeasurementValues, s)
		return false, nil
	}

	b.product.SelectedSizes = append(b.product.SelectedSizes, s)
	sortSizes(b.product.SelectedSizes)
	return true, nil
}

// SetStandardValue sets the numeric label of a selected size. An empty value
// clears it.
func (b *Builder) SetStandardValue(size, value string) error {
	s, err := standardSize(size)
	if err != nil {
		return err
	}
	if !containsString(b.product.SelectedSizes, s) {
		return fmt.Errorf("%w: %s", ErrSizeNotSelected, s)
	}

	value = strings.TrimSpace(value)
	if value == "" {
		delete(b.product.StandardValues, s)
		return nil
	}
	b.product.StandardValues[s] = value
	return nil
}

// SetMeasurementValue sets one cell of the size x measurement table. It is
// rejected without any state change on non-customizable products.
func (b *Builder) SetMeasurementValue(size, measurementID, value string) error {
	if b.MeasurementsReadOnly() {
		return ErrMeasurementsReadOnly
	}
	s, err := standardSize(size)
	if err != nil {
		return err
	}
	if !containsString(b.product.SelectedSizes, s) {
		return fmt.Errorf("%w: %s", ErrSizeNotSelected, s)
	}
	if !containsString(b.product.SelectedMeasurements, measurementID) {
		return fmt.Errorf("%w: %s", ErrMeasurementNotSelected, measurementID)
	}

	value = strings.TrimSpace(value)
	row := b.product.MeasurementValues[s]
	if value == "" {
		delete(row, measurementID)
		if len(row) == 0 {
			delete(b.product.MeasurementValues, s)
		}
		return nil
	}
	if row == nil {
		row = make(map[string]string)
		b.product.MeasurementValues[s] = row
	}
	row[measurementID] = value
	return nil
}

// SetMeasurementImage overrides the reference image of a selected measurement
// point. The previously staged override, if any, is returned.
func (b *Builder) SetMeasurementImage(measurementID string, file models.StagedFile) (*models.StagedFile, error) {
	if b.MeasurementsReadOnly() {
		return nil, ErrMeasurementsReadOnly
	}
	if !containsString(b.product.SelectedMeasurements, measurementID) {
		return nil, fmt.Errorf("%w: %s", ErrMeasurementNotSelected, measurementID)
	}

	var prev *models.StagedFile
	if old, ok := b.product.MeasurementImages[measurementID]; ok {
		prev = &old
	}
	b.product.MeasurementImages[measurementID] = file
	return prev, nil
}

// MeasurementTable is the cross product of selected sizes and selected
// measurement points. It is empty when either selection is empty.
func (b *Builder) MeasurementTable() []MeasurementRow {
	p := b.product
	if len(p.SelectedSizes) == 0 || len(p.SelectedMeasurements) == 0 {
		return []MeasurementRow{}
	}

	rows := make([]MeasurementRow, 0, len(p.SelectedSizes))
	for _, size := range p.SelectedSizes {
		row := MeasurementRow{
			Size:          size,
			StandardValue: p.StandardValues[size],
			Values:        make(map[string]string, len(p.SelectedMeasurements)),
		}
		for _, id := range p.SelectedMeasurements {
			row.Values[id] = p.MeasurementValues[size][id]
		}
		rows = append(rows, row)
	}
	return rows
}
