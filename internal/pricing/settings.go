package pricing

import "github.com/shopspring/decimal"

// Defaults applied when neither the calculation nor the stored settings provide a value.
var (
	DefaultExchangeRate        = decimal.RequireFromString("83.00")
	DefaultMarineInsuranceRate = decimal.RequireFromString("0.2")
	DefaultProfitRate          = decimal.NewFromInt(5)
)

// Settings are the stored global rates. Unset fields take the package defaults; every
// default not listed above is zero.
type Settings struct {
	// ExchangeRate is INR per USD.
	ExchangeRate decimal.NullDecimal `json:"exchange_rate"`
	// BankMargin is deducted from ExchangeRate, in INR per USD.
	BankMargin          decimal.NullDecimal `json:"bank_margin"`
	MarineInsuranceRate decimal.NullDecimal `json:"marine_insurance_rate"`
	ECGCRate            decimal.NullDecimal `json:"ecgc_rate"`
	BankChargeRate      decimal.NullDecimal `json:"bank_charge_rate"`
	ProfitRate          decimal.NullDecimal `json:"profit_rate"`
	GSTPercent          decimal.NullDecimal `json:"gst_percent"`

	LocalFreightPerKm        decimal.NullDecimal `json:"local_freight_per_km"`
	MinimumLocalFreight      decimal.NullDecimal `json:"minimum_local_freight"`
	LocalFreightPerContainer decimal.NullDecimal `json:"local_freight_per_container"`
	ContainerStuffingRate    decimal.NullDecimal `json:"container_stuffing_rate"`
	ExportPackingRate        decimal.NullDecimal `json:"export_packing_rate"`
}

// Resolved is Settings with every default applied.
type Resolved struct {
	ExchangeRate        decimal.Decimal
	BankMargin          decimal.Decimal
	MarineInsuranceRate decimal.Decimal
	ECGCRate            decimal.Decimal
	BankChargeRate      decimal.Decimal
	ProfitRate          decimal.Decimal
	GSTPercent          decimal.Decimal

	LocalFreightPerKm        decimal.Decimal
	MinimumLocalFreight      decimal.Decimal
	LocalFreightPerContainer decimal.Decimal
	ContainerStuffingRate    decimal.Decimal
	ExportPackingRate        decimal.Decimal
}

// Resolve applies defaults. A non-positive exchange rate is treated as unset.
func (s Settings) Resolve() Resolved {
	exchange := orDefault(s.ExchangeRate, DefaultExchangeRate)
	if !exchange.IsPositive() {
		exchange = DefaultExchangeRate
	}
	return Resolved{
		ExchangeRate:        exchange,
		BankMargin:          orDefault(s.BankMargin, decimal.Zero),
		MarineInsuranceRate: orDefault(s.MarineInsuranceRate, DefaultMarineInsuranceRate),
		ECGCRate:            orDefault(s.ECGCRate, decimal.Zero),
		BankChargeRate:      orDefault(s.BankChargeRate, decimal.Zero),
		ProfitRate:          orDefault(s.ProfitRate, DefaultProfitRate),
		GSTPercent:          orDefault(s.GSTPercent, decimal.Zero),

		LocalFreightPerKm:        orDefault(s.LocalFreightPerKm, decimal.Zero),
		MinimumLocalFreight:      orDefault(s.MinimumLocalFreight, decimal.Zero),
		LocalFreightPerContainer: orDefault(s.LocalFreightPerContainer, decimal.Zero),
		ContainerStuffingRate:    orDefault(s.ContainerStuffingRate, decimal.Zero),
		ExportPackingRate:        orDefault(s.ExportPackingRate, decimal.Zero),
	}
}
