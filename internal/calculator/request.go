package calculator

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Simplici0/exportquote/internal/distance"
	"github.com/Simplici0/exportquote/internal/packing"
	"github.com/Simplici0/exportquote/internal/pricing"
	"github.com/Simplici0/exportquote/internal/rates"
)

// BoxSpec is an outer carton in cm and kg, used to derive boxes per container.
type BoxSpec struct {
	Length   Numeric `json:"length"`
	Width    Numeric `json:"width"`
	Height   Numeric `json:"height"`
	WeightKg Numeric `json:"weight_kg"`
}

func (b BoxSpec) box() packing.Box {
	return packing.Box{Length: b.Length.Float(), Width: b.Width.Float(), Height: b.Height.Float(), WeightKg: b.WeightKg.Float()}
}

// ExtraCharge is a named amount added to one tier.
type ExtraCharge struct {
	Name   string  `json:"name"`
	Amount Numeric `json:"amount"`
	Tier   string  `json:"tier"`
}

// Request is one calculation as entered by the user.
type Request struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Tier  string `json:"tier"`

	ProductID int64 `json:"product_id"`
	// Quantity is a unit count, or a total weight in kg when UnitWeightKg is set.
	Quantity     Numeric `json:"quantity"`
	UnitWeightKg Numeric `json:"unit_weight_kg"`
	UnitPrice    Numeric `json:"unit_price"`

	ContainerCode     string   `json:"container_code"`
	BoxesPerContainer Numeric  `json:"boxes_per_container"`
	ContainerCount    Numeric  `json:"container_count"`
	Box               *BoxSpec `json:"box,omitempty"`

	UnitsPerBox         Numeric `json:"units_per_box"`
	BoxWeightKg         Numeric `json:"box_weight_kg"`
	InnerPackingPerUnit Numeric `json:"inner_packing_per_unit"`
	OuterPackingPerBox  Numeric `json:"outer_packing_per_box"`

	LocationID        int64   `json:"location_id"`
	PortCode          string  `json:"port_code"`
	CountryID         int64   `json:"country_id"`
	DestinationPortID int64   `json:"destination_port_id"`
	CertificationIDs  []int64 `json:"certification_ids"`

	LocalFreight          Numeric `json:"local_freight"`
	DistanceKm            Numeric `json:"distance_km"`
	ContainerStuffingRate Numeric `json:"container_stuffing_rate"`
	ExportPackingRate     Numeric `json:"export_packing_rate"`

	SeaFreightPerContainer Numeric `json:"sea_freight_per_container"`
	FreightCurrency        string  `json:"freight_currency"`
	FreightConversionRate  Numeric `json:"freight_conversion_rate"`
	GSTPercent             Numeric `json:"gst_percent"`

	ExchangeRate        Numeric `json:"exchange_rate"`
	BankMargin          Numeric `json:"bank_margin"`
	ECGCRate            Numeric `json:"ecgc_rate"`
	MarineInsuranceRate Numeric `json:"marine_insurance_rate"`
	BankChargeRate      Numeric `json:"bank_charge_rate"`
	ProfitRate          Numeric `json:"profit_rate"`
	ProfitType          string  `json:"profit_type"`
	ProfitFlat          Numeric `json:"profit_flat"`

	ExtraCharges []ExtraCharge `json:"extra_charges"`
}

func (r Request) tier() pricing.Tier { return pricing.ParseTier(r.Tier) }

func (r Request) quantity() pricing.Quantity {
	return pricing.NewQuantity(r.Quantity.Amount(), r.UnitWeightKg.Amount())
}

func (r Request) selection() pricing.Selection {
	return pricing.Selection{
		Tier:              r.tier(),
		ProductID:         r.ProductID,
		Quantity:          r.quantity(),
		ContainerCode:     r.ContainerCode,
		LocationID:        r.LocationID,
		PortCode:          r.PortCode,
		CountryID:         r.CountryID,
		DestinationPortID: r.DestinationPortID,
	}
}

// hasManualDistance reports whether the user already supplied what the distance default would fill.
func (r Request) hasManualDistance() bool {
	return !r.LocalFreight.IsBlank() || r.DistanceKm.Int() > 0
}

func (r Request) profitType() pricing.ProfitType {
	if strings.EqualFold(strings.TrimSpace(r.ProfitType), string(pricing.ProfitFlat)) {
		return pricing.ProfitFlat
	}
	return pricing.ProfitPercentage
}

func (r Request) extraCharges() []pricing.ExtraCharge {
	charges := lo.Filter(r.ExtraCharges, func(c ExtraCharge, _ int) bool {
		return strings.TrimSpace(c.Name) != "" || !c.Amount.IsBlank()
	})
	return lo.Map(charges, func(c ExtraCharge, _ int) pricing.ExtraCharge {
		return pricing.ExtraCharge{Name: c.Name, Amount: c.Amount.Amount(), Tier: pricing.ParseTier(c.Tier)}
	})
}

// inputs assembles pipeline input from the request and the resolved master data.
func (r Request) inputs(rc resolved) pricing.Inputs {
	in := pricing.Inputs{
		Tier:              r.tier(),
		Product:           rc.product,
		Quantity:          r.quantity(),
		UnitPriceOverride: r.UnitPrice.Amount(),
		Container:         rc.container,
		BoxesPerContainer: rc.boxesPerContainer,
		ContainerCount:    r.ContainerCount.Int(),
		Packaging: pricing.Packaging{
			UnitsPerBox:  r.UnitsPerBox.Int(),
			BoxWeightKg:  r.BoxWeightKg.Amount(),
			UnitWeightKg: r.UnitWeightKg.Amount(),
			InnerPerUnit: r.InnerPackingPerUnit.Amount(),
			OuterPerBox:  r.OuterPackingPerBox.Amount(),
		},
		Location:               rc.location,
		Port:                   rc.port,
		Country:                rc.country,
		DestinationPort:        rc.destinationPort,
		Certifications:         rc.certifications,
		SelectedCertifications: r.CertificationIDs,

		LocalFreight:          r.LocalFreight.Optional(),
		DistanceKm:            rc.distanceKm,
		ContainerStuffingRate: r.ContainerStuffingRate.Optional(),
		ExportPackingRate:     r.ExportPackingRate.Optional(),

		SeaFreightPerContainer: r.SeaFreightPerContainer.Optional(),
		FreightCurrency:        r.FreightCurrency,
		FreightConversionRate:  r.FreightConversionRate.Optional(),
		GSTPercent:             r.GSTPercent.Optional(),

		ExchangeRate:        r.ExchangeRate.Optional(),
		BankMargin:          r.BankMargin.Optional(),
		ECGCRate:            r.ECGCRate.Optional(),
		MarineInsuranceRate: r.MarineInsuranceRate.Optional(),
		BankChargeRate:      r.BankChargeRate.Optional(),
		ProfitRate:          r.ProfitRate.Optional(),
		ProfitType:          r.profitType(),
		ProfitFlat:          r.ProfitFlat.Amount(),

		ExtraCharges: r.extraCharges(),
	}
	// A contracted lane only applies when its currency agrees with the one the user chose.
	if lane := rc.seaFreight; lane.PerContainer.Valid && !in.SeaFreightPerContainer.Valid {
		if cur := strings.TrimSpace(in.FreightCurrency); cur == "" || strings.EqualFold(cur, lane.Currency) {
			in.SeaFreightPerContainer = lane.PerContainer
			in.FreightCurrency = lane.Currency
		}
	}
	return in
}

// resolved is the master data and defaults gathered for one request.
type resolved struct {
	product           pricing.Product
	container         *pricing.ContainerType
	location          *pricing.Location
	port              *pricing.Port
	country           *pricing.Country
	destinationPort   *pricing.DestinationPort
	certifications    []pricing.Certification
	settings          pricing.Settings
	boxesPerContainer int
	distanceKm        int
	seaFreight        rates.Freight

	distance *distance.Estimate
	packing  *packing.Result
}
