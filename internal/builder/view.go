package builder

import (
	"sort"

	"github.com/javajoker/vendor-console/internal/models"
)

type PriceView struct {
	models.PriceKey
	models.PriceEntry
}

type MaterialView struct {
	*models.Material
	CustomRows         []string `json:"custom_rows"`
	ReadyRows          []string `json:"ready_rows"`
	MaterialTypeCustom bool     `json:"material_type_custom"`
}

// Snapshot is the JSON view of a draft returned to the console.
type Snapshot struct {
	*models.Product
	Materials            []MaterialView   `json:"materials"`
	Prices               []PriceView      `json:"prices"`
	MeasurementTable     []MeasurementRow `json:"measurement_table"`
	MeasurementsReadOnly bool             `json:"measurements_read_only"`
}

func (b *Builder) Snapshot() Snapshot {
	p := b.product
	s := Snapshot{
		Product:              p,
		Materials:            make([]MaterialView, 0, len(p.Materials)),
		Prices:               make([]PriceView, 0, len(p.Prices)),
		MeasurementTable:     b.MeasurementTable(),
		MeasurementsReadOnly: b.MeasurementsReadOnly(),
	}

	for _, m := range p.Materials {
		custom, _ := b.CustomRows(m.Key)
		ready, _ := b.ReadyRows(m.Key)
		isCustom, _ := b.MaterialTypeIsCustom(m.Key)
		s.Materials = append(s.Materials, MaterialView{
			Material:           m,
			CustomRows:         nonNil(custom),
			ReadyRows:          nonNil(ready),
			MaterialTypeCustom: isCustom,
		})
	}

	for k, e := range p.Prices {
		s.Prices = append(s.Prices, PriceView{PriceKey: k, PriceEntry: *e})
	}
	sort.Slice(s.Prices, func(i, j int) bool {
		a, b := s.Prices[i], s.Prices[j]
		if a.Material != b.Material {
			return a.Material < b.Material
		}
		if a.Mode != b.Mode {
			return a.Mode < b.Mode
		}
		return models.SizeRank(a.Size) < models.SizeRank(b.Size)
	})
	return s
}
