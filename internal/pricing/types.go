package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/exportquote/internal/packing"
)

// Tier is an Incoterm price tier. Each tier includes every cost of the tiers before it.
type Tier string

const (
	TierEXW Tier = "EXW"
	TierFOB Tier = "FOB"
	TierCIF Tier = "CIF"
)

func (t Tier) rank() int {
	switch t {
	case TierFOB:
		return 1
	case TierCIF:
		return 2
	default:
		return 0
	}
}

// Includes reports whether pricing to t also prices the other tier.
func (t Tier) Includes(other Tier) bool {
	return t.rank() >= other.rank()
}

// ParseTier reads a tier name, defaulting to EXW.
func ParseTier(raw string) Tier {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FOB":
		return TierFOB
	case "CIF":
		return TierCIF
	default:
		return TierEXW
	}
}

// Product is a sellable item with its USD base price.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	HSNCode      string          `json:"hsn_code"`
	Unit         string          `json:"unit"`
	BasePriceUSD decimal.Decimal `json:"base_price_usd"`
	// LocationPrices overrides BasePriceUSD for specific origin locations.
	LocationPrices map[int64]decimal.Decimal `json:"location_prices,omitempty"`
	// BoxesPerContainer holds default boxes per container keyed by container code.
	BoxesPerContainer map[string]int `json:"boxes_per_container,omitempty"`
}

// PriceFor returns the location override when one exists, else the base price.
func (p Product) PriceFor(locationID int64) decimal.Decimal {
	if price, ok := p.LocationPrices[locationID]; ok && price.IsPositive() {
		return price
	}
	return p.BasePriceUSD
}

// ContainerType is a container size with interior dimensions in cm and payload in kg.
type ContainerType struct {
	ID          int64   `json:"id"`
	Code        string  `json:"code"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// Container converts the type into packing solver input.
func (c ContainerType) Container() packing.Container {
	return packing.Container{Length: c.Length, Width: c.Width, Height: c.Height, MaxWeightKg: c.MaxWeightKg}
}

// Location is a factory or pickup point.
type Location struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	PostalCode string `json:"postal_code"`
	// FixedTransportRate is a flat inland charge per container.
	FixedTransportRate decimal.NullDecimal `json:"fixed_transport_rate"`
	RatePerKm          decimal.NullDecimal `json:"rate_per_km"`
}

// Port is an Indian origin port with its local charges in INR.
type Port struct {
	ID                   int64           `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	PostalCode           string          `json:"postal_code"`
	HandlingPerContainer decimal.Decimal `json:"handling_per_container"`
	CHACharge            decimal.Decimal `json:"cha_charge"`
	CustomsClearance     decimal.Decimal `json:"customs_clearance"`
}

// Country is a destination country with its export credit risk rate.
type Country struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	// ECGCRate is a percentage of the FOB value.
	ECGCRate decimal.NullDecimal `json:"ecgc_rate"`
	// SeaFreightPerContainer is the default ocean freight per container, in USD.
	SeaFreightPerContainer decimal.NullDecimal `json:"sea_freight_per_container"`
}

// DestinationPort belongs to exactly one Country.
type DestinationPort struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
}

// FreightLane is a contracted ocean freight rate to one country for one container size.
type FreightLane struct {
	ID               int64           `json:"id"`
	CountryID        int64           `json:"country_id"`
	ContainerCode    string          `json:"container_code"`
	RatePerContainer decimal.Decimal `json:"rate_per_container"`
	// Currency is the currency RatePerContainer is quoted in.
	Currency string `json:"currency"`
}

// CostType selects how a certification is charged.
type CostType string

const (
	CostFlat       CostType = "flat"
	CostPercentage CostType = "percentage"
)

// Certification is an export document or inspection. Mandatory ones are always charged.
type Certification struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	CostType  CostType        `json:"cost_type"`
	FlatCost  decimal.Decimal `json:"flat_cost"`
	Percent   decimal.Decimal `json:"percent"`
	Mandatory bool            `json:"mandatory"`
}

// Cost prices the certification against the EXW product value.
func (c Certification) Cost(productValue decimal.Decimal) decimal.Decimal {
	if c.CostType == CostPercentage {
		return percentOf(productValue, c.Percent)
	}
	return c.FlatCost
}

// ExtraCharge is a named, user-supplied amount in INR added to one tier.
type ExtraCharge struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
	Tier   Tier            `json:"tier"`
}

// ProfitType selects between a percentage markup and a flat amount.
type ProfitType string

const (
	ProfitPercentage ProfitType = "percentage"
	ProfitFlat       ProfitType = "flat"
)

// Packaging carries the packing cost drivers for one calculation.
type Packaging struct {
	UnitsPerBox int `json:"units_per_box"`
	// BoxWeightKg is the net weight one box carries.
	BoxWeightKg decimal.Decimal `json:"box_weight_kg"`
	// UnitWeightKg is used when the quantity is a unit count but box weight drives the box count.
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	InnerPerUnit decimal.Decimal `json:"inner_per_unit"`
	OuterPerBox  decimal.Decimal `json:"outer_per_box"`
}

// Inputs is everything one calculation needs. Optional rates left unset fall back to the
// entity's own rate, then to Settings.
type Inputs struct {
	Tier     Tier
	Product  Product
	Quantity Quantity
	// UnitPriceOverride wins over the product price when positive.
	UnitPriceOverride decimal.Decimal

	Container         *ContainerType
	BoxesPerContainer int
	ContainerCount    int
	Packaging         Packaging

	Location        *Location
	Port            *Port
	Country         *Country
	DestinationPort *DestinationPort

	Certifications         []Certification
	SelectedCertifications []int64

	// LocalFreight is a manual total for inland transport.
	LocalFreight          decimal.NullDecimal
	DistanceKm            int
	ContainerStuffingRate decimal.NullDecimal
	ExportPackingRate     decimal.NullDecimal

	// SeaFreightPerContainer is in FreightCurrency.
	SeaFreightPerContainer decimal.NullDecimal
	FreightCurrency        string
	FreightConversionRate  decimal.NullDecimal
	GSTPercent             decimal.NullDecimal

	ExchangeRate        decimal.NullDecimal
	BankMargin          decimal.NullDecimal
	ECGCRate            decimal.NullDecimal
	MarineInsuranceRate decimal.NullDecimal
	BankChargeRate      decimal.NullDecimal

	// ProfitRate set to zero is honoured; unset falls back to the configured default.
	ProfitRate decimal.NullDecimal
	ProfitType ProfitType
	ProfitFlat decimal.Decimal

	ExtraCharges []ExtraCharge
}
