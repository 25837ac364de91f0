package pricing

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Simplici0/exportquote/internal/distance"
	"github.com/Simplici0/exportquote/internal/packing"
)

// Compute runs the EXW, FOB and CIF stages up to in.Tier. It never fails: missing or
// non-positive figures count as zero and unset rates take their defaults. Selection checks
// belong to Validate and must run first.
func Compute(in Inputs, settings Settings) Result {
	cfg := settings.Resolve()
	tier := in.Tier
	if tier == "" {
		tier = TierEXW
	}

	exchange := orDefault(in.ExchangeRate, cfg.ExchangeRate)
	if !exchange.IsPositive() {
		exchange = cfg.ExchangeRate
	}
	margin := orDefault(in.BankMargin, cfg.BankMargin)
	effective := exchange.Sub(margin)
	if !effective.IsPositive() {
		effective = exchange
	}

	p := &run{in: in, cfg: cfg, tier: tier, effective: effective}
	p.quantities()

	res := Result{
		Tier:       tier,
		Quantities: Quantities{TotalUnits: p.units, TotalBoxes: p.boxes, ContainerCount: p.containers},
		Currency: Currency{
			ExchangeRate:  exchange,
			BankMargin:    margin,
			EffectiveRate: effective,
		},
	}

	exw := p.exFactory()
	res.ExFactory = tierPrice(exw, effective, p.units)

	if tier.Includes(TierFOB) {
		fob := p.freeOnBoard(exw)
		res.FOB = tierPrice(fob, effective, p.units)

		if tier.Includes(TierCIF) {
			cif := p.costInsuranceFreight(fob)
			res.CIF = tierPrice(cif, effective, p.units)
			res.Currency.FreightCurrency = p.freightCurrency
			res.Currency.FreightConversionRate = p.freightConversion
		}
	}

	res.Breakdown = p.lines
	return res
}

type run struct {
	in        Inputs
	cfg       Resolved
	tier      Tier
	effective decimal.Decimal

	units      int
	boxes      int
	containers int

	productValue      decimal.Decimal
	freightCurrency   string
	freightConversion decimal.Decimal

	lines []Line
}

func (p *run) add(stage Tier, key, label string, amount, rate, basis decimal.Decimal) decimal.Decimal {
	amount = round2(amount)
	p.lines = append(p.lines, Line{Key: key, Label: label, Stage: stage, Amount: amount, Rate: rate, Basis: basis})
	return amount
}

func (p *run) quantities() {
	in := p.in
	if in.Quantity != nil {
		p.units = in.Quantity.Units()
	}

	unitWeight := in.Packaging.UnitWeightKg
	if w, ok := quantityUnitWeight(in.Quantity); ok {
		unitWeight = w
	}

	packed := 0
	switch {
	case in.Packaging.UnitsPerBox > 0:
		packed = packing.CeilDiv(p.units, in.Packaging.UnitsPerBox)
	case in.Packaging.BoxWeightKg.IsPositive() && unitWeight.IsPositive() && p.units > 0:
		totalKg := unitWeight.Mul(fromInt(p.units))
		packed = int(totalKg.Div(in.Packaging.BoxWeightKg).Ceil().IntPart())
	}

	bpc := in.BoxesPerContainer
	p.boxes = packed
	if packed == 0 && bpc > 0 {
		p.boxes = packing.CeilDiv(p.units, bpc)
	}

	switch {
	case in.ContainerCount > 0:
		p.containers = in.ContainerCount
	case bpc > 0 && packed > 0:
		p.containers = packing.CeilDiv(packed, bpc)
	case bpc > 0:
		p.containers = packing.CeilDiv(p.units, bpc)
	}
	if p.containers == 0 && p.tier.Includes(TierFOB) {
		p.containers = 1
	}
}

func quantityUnitWeight(q Quantity) (decimal.Decimal, bool) {
	if q == nil {
		return decimal.Zero, false
	}
	return q.UnitWeightKg()
}

func (p *run) exFactory() decimal.Decimal {
	in := p.in
	units := fromInt(p.units)

	locationID := int64(0)
	if in.Location != nil {
		locationID = in.Location.ID
	}
	unitPrice := in.Product.PriceFor(locationID)
	if in.UnitPriceOverride.IsPositive() {
		unitPrice = in.UnitPriceOverride
	}
	if unitPrice.IsNegative() {
		unitPrice = decimal.Zero
	}

	p.productValue = p.add(TierEXW, LineProductSubtotal, "Product value", unitPrice.Mul(units).Mul(p.effective), unitPrice, units)
	total := p.productValue

	total = total.Add(p.add(TierEXW, LineInnerPacking, "Inner packing", in.Packaging.InnerPerUnit.Mul(units), in.Packaging.InnerPerUnit, units))
	boxes := fromInt(p.boxes)
	total = total.Add(p.add(TierEXW, LineOuterPacking, "Outer packing", in.Packaging.OuterPerBox.Mul(boxes), in.Packaging.OuterPerBox, boxes))

	bankRate := orDefault(in.BankChargeRate, p.cfg.BankChargeRate)
	total = total.Add(p.add(TierEXW, LineBankCharges, "Bank charges", percentOf(total, bankRate), bankRate, total))

	if in.ProfitType == ProfitFlat {
		total = total.Add(p.add(TierEXW, LineProfit, "Profit", in.ProfitFlat, decimal.Zero, decimal.NewFromInt(1)))
	} else {
		profitRate := orDefault(in.ProfitRate, p.cfg.ProfitRate)
		total = total.Add(p.add(TierEXW, LineProfit, "Profit", percentOf(total, profitRate), profitRate, total))
	}

	return total.Add(p.extras(TierEXW))
}

func (p *run) freeOnBoard(exw decimal.Decimal) decimal.Decimal {
	in := p.in
	containers := fromInt(p.containers)
	total := exw

	total = total.Add(p.localFreight(containers))

	port := Port{}
	if in.Port != nil {
		port = *in.Port
	}
	total = total.Add(p.add(TierFOB, LineCHAAndCustoms, "CHA & customs clearance", port.CHACharge.Add(port.CustomsClearance), decimal.Zero, decimal.NewFromInt(1)))
	total = total.Add(p.add(TierFOB, LinePortHandling, "Port handling", port.HandlingPerContainer.Mul(containers), port.HandlingPerContainer, containers))

	stuffing := orDefault(in.ContainerStuffingRate, p.cfg.ContainerStuffingRate)
	total = total.Add(p.add(TierFOB, LineContainerStuffing, "Container stuffing", stuffing.Mul(containers), stuffing, containers))

	exportPacking := orDefault(in.ExportPackingRate, p.cfg.ExportPackingRate)
	total = total.Add(p.add(TierFOB, LineExportPacking, "Export packing / palletization", exportPacking.Mul(containers), exportPacking, containers))

	certs := p.certifications()
	certCost := decimal.Zero
	for _, c := range certs {
		certCost = certCost.Add(c.Cost(p.productValue))
	}
	label := "Certifications"
	if len(certs) > 0 {
		label = fmt.Sprintf("Certifications (%s)", strings.Join(lo.Map(certs, func(c Certification, _ int) string { return c.Name }), ", "))
	}
	total = total.Add(p.add(TierFOB, LineCertifications, label, certCost, decimal.Zero, p.productValue))

	return total.Add(p.extras(TierFOB))
}

// localFreight prefers a manual figure, then a distance-based charge for the whole haul, then a flat
// per-container rate.
func (p *run) localFreight(containers decimal.Decimal) decimal.Decimal {
	in := p.in
	if in.LocalFreight.Valid {
		return p.add(TierFOB, LineLocalFreight, "Inland transport", in.LocalFreight.Decimal, decimal.Zero, decimal.NewFromInt(1))
	}

	var location Location
	if in.Location != nil {
		location = *in.Location
	}

	perKm := orDefault(location.RatePerKm, p.cfg.LocalFreightPerKm)
	if charge, ok := distance.LocalFreight(perKm, in.DistanceKm, p.cfg.MinimumLocalFreight); ok {
		label := fmt.Sprintf("Inland transport (%d km)", in.DistanceKm)
		return p.add(TierFOB, LineLocalFreight, label, charge, perKm, fromInt(in.DistanceKm))
	}

	flat := orDefault(location.FixedTransportRate, p.cfg.LocalFreightPerContainer)
	return p.add(TierFOB, LineLocalFreight, "Inland transport", flat.Mul(containers), flat, containers)
}

// certifications returns mandatory certifications plus the selected optional ones.
func (p *run) certifications() []Certification {
	selected := lo.SliceToMap(p.in.SelectedCertifications, func(id int64) (int64, struct{}) { return id, struct{}{} })
	return lo.Filter(p.in.Certifications, func(c Certification, _ int) bool {
		if c.Mandatory {
			return true
		}
		_, ok := selected[c.ID]
		return ok
	})
}

func (p *run) costInsuranceFreight(fob decimal.Decimal) decimal.Decimal {
	in := p.in
	containers := fromInt(p.containers)

	var country Country
	if in.Country != nil {
		country = *in.Country
	}

	p.freightCurrency = strings.ToUpper(strings.TrimSpace(in.FreightCurrency))
	if p.freightCurrency == "" {
		p.freightCurrency = "USD"
	}
	defaultConversion := p.effective
	if p.freightCurrency == "INR" {
		defaultConversion = decimal.NewFromInt(1)
	}
	p.freightConversion = orDefault(in.FreightConversionRate, defaultConversion)

	seaRate := firstSet(in.SeaFreightPerContainer, country.SeaFreightPerContainer).Decimal
	gst := orDefault(in.GSTPercent, p.cfg.GSTPercent)
	seaINR := seaRate.Mul(containers).Mul(p.freightConversion)
	seaWithGST := seaINR.Add(percentOf(seaINR, gst))
	total := fob.Add(p.add(TierCIF, LineSeaFreight, "Sea freight (incl. GST)", seaWithGST, seaRate, containers))

	insuranceRate := orDefault(in.MarineInsuranceRate, p.cfg.MarineInsuranceRate)
	insuredValue := fob.Add(p.amountOf(LineSeaFreight))
	total = total.Add(p.add(TierCIF, LineMarineInsurance, "Marine insurance", percentOf(insuredValue, insuranceRate), insuranceRate, insuredValue))

	ecgcRate := firstSet(in.ECGCRate, country.ECGCRate, decimal.NewNullDecimal(p.cfg.ECGCRate)).Decimal
	total = total.Add(p.add(TierCIF, LineECGCPremium, "ECGC premium", percentOf(fob, ecgcRate), ecgcRate, fob))

	bankRate := orDefault(in.BankChargeRate, p.cfg.BankChargeRate)
	total = total.Add(p.add(TierCIF, LineBankChargesCIF, "Bank charges (CIF)", percentOf(total, bankRate), bankRate, total))

	return total.Add(p.extras(TierCIF))
}

func (p *run) amountOf(key string) decimal.Decimal {
	for _, l := range p.lines {
		if l.Key == key {
			return l.Amount
		}
	}
	return decimal.Zero
}

func (p *run) extras(stage Tier) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, c := range p.in.ExtraCharges {
		chargeTier := c.Tier
		if chargeTier == "" {
			chargeTier = TierEXW
		}
		if chargeTier != stage {
			continue
		}
		n++
		key := fmt.Sprintf("%s%s.%d", extraLinePrefix, strings.ToLower(string(stage)), n)
		label := strings.TrimSpace(c.Name)
		if label == "" {
			label = fmt.Sprintf("Other charge %d", n)
		}
		sum = sum.Add(p.add(stage, key, label, c.Amount, decimal.Zero, decimal.NewFromInt(1)))
	}
	return sum
}
