package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Breakdown line keys.
const (
	LineProductSubtotal   = "product_subtotal"
	LineInnerPacking      = "inner_packing"
	LineOuterPacking      = "outer_packing"
	LineBankCharges       = "bank_charges"
	LineProfit            = "profit"
	LineLocalFreight      = "local_freight"
	LineCHAAndCustoms     = "cha_customs"
	LinePortHandling      = "port_handling"
	LineContainerStuffing = "container_stuffing"
	LineExportPacking     = "export_packing"
	LineCertifications    = "certifications"
	LineSeaFreight        = "sea_freight"
	LineMarineInsurance   = "marine_insurance"
	LineECGCPremium       = "ecgc_premium"
	LineBankChargesCIF    = "bank_charges_cif"

	extraLinePrefix = "extra."
)

// Line is one cost component of the breakdown. Amount is in INR.
type Line struct {
	Key    string          `json:"key"`
	Label  string          `json:"label"`
	Stage  Tier            `json:"stage"`
	Amount decimal.Decimal `json:"amount"`
	// Rate is the percentage for percentage lines, else the per-unit rate.
	Rate decimal.Decimal `json:"rate"`
	// Basis is what Rate was applied against: a base amount or a count.
	Basis      decimal.Decimal `json:"basis"`
	Overridden bool            `json:"overridden,omitempty"`
}

// IsExtra reports whether the line is a user-named extra charge.
func (l Line) IsExtra() bool {
	return strings.HasPrefix(l.Key, extraLinePrefix)
}

// TierPrice is one published tier. Tiers beyond the requested one are not computed.
type TierPrice struct {
	Computed   bool            `json:"computed"`
	INR        decimal.Decimal `json:"inr"`
	USD        decimal.Decimal `json:"usd"`
	PerUnitUSD decimal.Decimal `json:"per_unit_usd"`
}

// Currency records the conversion used for a result.
type Currency struct {
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	BankMargin   decimal.Decimal `json:"bank_margin"`
	// EffectiveRate is ExchangeRate less BankMargin; every USD figure divides by it.
	EffectiveRate         decimal.Decimal `json:"effective_rate"`
	FreightCurrency       string          `json:"freight_currency"`
	FreightConversionRate decimal.Decimal `json:"freight_conversion_rate"`
}

// Quantities are the canonical counts the pipeline priced against.
type Quantities struct {
	TotalUnits     int `json:"total_units"`
	TotalBoxes     int `json:"total_boxes"`
	ContainerCount int `json:"container_count"`
}

// Result is the outcome of one calculation.
type Result struct {
	Tier       Tier       `json:"tier"`
	ExFactory  TierPrice  `json:"ex_factory"`
	FOB        TierPrice  `json:"fob"`
	CIF        TierPrice  `json:"cif"`
	Breakdown  []Line     `json:"breakdown"`
	Currency   Currency   `json:"currency"`
	Quantities Quantities `json:"quantities"`
	// Adjusted is set on results produced by Recompute.
	Adjusted bool `json:"adjusted,omitempty"`
}

// Line returns the breakdown line with the given key.
func (r Result) Line(key string) (Line, bool) {
	for _, l := range r.Breakdown {
		if l.Key == key {
			return l, true
		}
	}
	return Line{}, false
}

// Amount returns the amount of a line, zero when absent.
func (r Result) Amount(key string) decimal.Decimal {
	l, _ := r.Line(key)
	return l.Amount
}

// StageSum adds the lines that belong to one stage.
func (r Result) StageSum(stage Tier) decimal.Decimal {
	return stageSum(r.Breakdown, stage)
}

// Price returns the published price for a tier.
func (r Result) Price(t Tier) TierPrice {
	switch t {
	case TierFOB:
		return r.FOB
	case TierCIF:
		return r.CIF
	default:
		return r.ExFactory
	}
}

func stageSum(lines []Line, stage Tier) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		if l.Stage == stage {
			sum = sum.Add(l.Amount)
		}
	}
	return sum
}

// tierPrice converts an INR total; per-unit divides the rounded USD total.
func tierPrice(inr, effectiveRate decimal.Decimal, units int) TierPrice {
	p := TierPrice{Computed: true, INR: round2(inr)}
	if effectiveRate.IsPositive() {
		p.USD = round2(p.INR.Div(effectiveRate))
	}
	if units > 0 {
		p.PerUnitUSD = round2(p.USD.Div(fromInt(units)))
	}
	return p
}
