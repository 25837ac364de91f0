package pricing

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Quantity is either a plain unit count or a total shipment weight with a per-unit weight.
// The pipeline only ever consumes the canonical unit count.
type Quantity interface {
	Units() int
	// UnitWeightKg reports the weight of one unit when the quantity carries it.
	UnitWeightKg() (decimal.Decimal, bool)
	isQuantity()
}

// Units is a quantity given as a number of units.
type Units int

func (u Units) Units() int {
	if u < 0 {
		return 0
	}
	return int(u)
}

func (Units) UnitWeightKg() (decimal.Decimal, bool) { return decimal.Zero, false }

func (Units) isQuantity() {}

// TotalWeight is a quantity given as the total shipment weight.
type TotalWeight struct {
	Kg        decimal.Decimal
	PerUnitKg decimal.Decimal
}

// Units rounds up: a partial unit still ships as a unit.
func (w TotalWeight) Units() int {
	if !w.PerUnitKg.IsPositive() || !w.Kg.IsPositive() {
		return 0
	}
	return int(w.Kg.Div(w.PerUnitKg).Ceil().IntPart())
}

func (w TotalWeight) UnitWeightKg() (decimal.Decimal, bool) {
	return w.PerUnitKg, w.PerUnitKg.IsPositive()
}

func (TotalWeight) isQuantity() {}

// NewQuantity interprets a raw quantity field: with a positive unit weight it is a total weight in
// kg, otherwise a unit count (rounded up).
func NewQuantity(quantity, unitWeightKg decimal.Decimal) Quantity {
	if unitWeightKg.IsPositive() {
		return TotalWeight{Kg: quantity, PerUnitKg: unitWeightKg}
	}
	if !quantity.IsPositive() {
		return Units(0)
	}
	return Units(quantity.Ceil().IntPart())
}

type quantityJSON struct {
	Kind         string          `json:"kind"`
	Units        int             `json:"units,omitempty"`
	TotalKg      decimal.Decimal `json:"total_kg"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
}

func (u Units) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Kind: "units", Units: int(u)})
}

func (w TotalWeight) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Kind: "total_weight", Units: w.Units(), TotalKg: w.Kg, UnitWeightKg: w.PerUnitKg})
}
