package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/packing"
	"github.com/Simplici0/exportquote/internal/pricing"
	"github.com/Simplici0/exportquote/internal/rates"
)

type fakeMasterData struct {
	products     map[int64]pricing.Product
	containers   map[string]pricing.ContainerType
	locations    map[int64]pricing.Location
	ports        map[string]pricing.Port
	countries    map[int64]pricing.Country
	destinations map[int64]pricing.DestinationPort
	lanes        []pricing.FreightLane
	certs        []pricing.Certification
	settings     pricing.Settings
}

func missing(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, masterdata.ErrNotFound)
}

func (f *fakeMasterData) GetProduct(_ context.Context, id int64) (pricing.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return pricing.Product{}, missing("product", id)
}

func (f *fakeMasterData) GetContainerTypeByCode(_ context.Context, code string) (pricing.ContainerType, error) {
	if c, ok := f.containers[code]; ok {
		return c, nil
	}
	return pricing.ContainerType{}, missing("container", code)
}

func (f *fakeMasterData) GetLocation(_ context.Context, id int64) (pricing.Location, error) {
	if l, ok := f.locations[id]; ok {
		return l, nil
	}
	return pricing.Location{}, missing("location", id)
}

func (f *fakeMasterData) GetPort(_ context.Context, code string) (pricing.Port, error) {
	if p, ok := f.ports[code]; ok {
		return p, nil
	}
	return pricing.Port{}, missing("port", code)
}

func (f *fakeMasterData) GetCountry(_ context.Context, id int64) (pricing.Country, error) {
	if c, ok := f.countries[id]; ok {
		return c, nil
	}
	return pricing.Country{}, missing("country", id)
}

func (f *fakeMasterData) GetDestinationPort(_ context.Context, id int64) (pricing.DestinationPort, error) {
	if d, ok := f.destinations[id]; ok {
		return d, nil
	}
	return pricing.DestinationPort{}, missing("destination port", id)
}

func (f *fakeMasterData) GetFreightLane(_ context.Context, countryID int64, code string) (pricing.FreightLane, error) {
	for _, l := range f.lanes {
		if l.CountryID == countryID && l.ContainerCode == code {
			return l, nil
		}
	}
	return pricing.FreightLane{}, missing("freight lane", code)
}

func (f *fakeMasterData) ListCertifications(context.Context) ([]pricing.Certification, error) {
	return f.certs, nil
}

func (f *fakeMasterData) GetSettings(context.Context) (pricing.Settings, error) {
	return f.settings, nil
}

type fakeHistory struct {
	snaps map[string]history.Snapshot
	next  int
}

func (h *fakeHistory) Append(_ context.Context, snap history.Snapshot) (history.Snapshot, error) {
	h.next++
	snap.ID = fmt.Sprintf("q-%d", h.next)
	h.snaps[snap.ID] = snap
	return snap, nil
}

func (h *fakeHistory) Get(_ context.Context, id string) (history.Snapshot, error) {
	if s, ok := h.snaps[id]; ok {
		return s, nil
	}
	return history.Snapshot{}, history.ErrNotFound
}

func (h *fakeHistory) SaveAdjustment(_ context.Context, id string, ov pricing.Overrides, adjusted pricing.Result) (history.Snapshot, error) {
	s := h.snaps[id]
	s.Overrides = ov
	s.Adjusted = &adjusted
	h.snaps[id] = s
	return s, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture() (*fakeMasterData, *fakeHistory) {
	md := &fakeMasterData{
		products: map[int64]pricing.Product{
			1: {ID: 1, Name: "Cotton towels", BasePriceUSD: dec("1.50")},
			2: {ID: 2, Name: "Jute bags", BasePriceUSD: dec("2"), BoxesPerContainer: map[string]int{"20FT": 500}},
		},
		containers: map[string]pricing.ContainerType{
			"20FT": {ID: 1, Code: "20FT", Length: 590, Width: 235, Height: 239, MaxWeightKg: 18000},
		},
		locations: map[int64]pricing.Location{
			1: {ID: 1, Name: "Delhi works", PostalCode: "110001", RatePerKm: decimal.NewNullDecimal(dec("40"))},
			2: {ID: 2, Name: "Unknown works", PostalCode: "999999"},
		},
		ports: map[string]pricing.Port{
			"INNSA": {ID: 1, Code: "INNSA", Name: "Nhava Sheva", CHACharge: dec("5000")},
		},
		countries: map[int64]pricing.Country{
			1: {ID: 1, Code: "AE", Name: "UAE", SeaFreightPerContainer: decimal.NewNullDecimal(dec("900"))},
			2: {ID: 2, Code: "DE", Name: "Germany"},
		},
		destinations: map[int64]pricing.DestinationPort{
			1: {ID: 1, CountryID: 1, Code: "AEJEA", Name: "Jebel Ali"},
		},
		certs: []pricing.Certification{
			{ID: 1, Name: "Certificate of Origin", CostType: pricing.CostFlat, FlatCost: dec("1500"), Mandatory: true},
		},
	}
	return md, &fakeHistory{snaps: map[string]history.Snapshot{}}
}

func TestCalculate_MissingSelectionBlocksPipeline(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	_, err := svc.Calculate(context.Background(), Request{Tier: "FOB", ProductID: 1})

	require.ErrorIs(t, err, pricing.ErrMissingRequiredSelection)
	var selErr *pricing.SelectionError
	require.True(t, errors.As(err, &selErr))
	require.Equal(t, []string{"quantity", "container_type", "location", "port"}, selErr.Missing)
	require.Empty(t, h.snaps)
}

func TestCalculate_ExWorksRecordsHistory(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	out, err := svc.Calculate(context.Background(), Request{
		ProductID:  1,
		Quantity:   "50,000",
		ProfitRate: "0",
	})
	require.NoError(t, err)

	require.True(t, out.Result.ExFactory.USD.Equal(dec("75000")))
	require.NotEmpty(t, out.QuoteID)

	snap := h.snaps[out.QuoteID]
	require.Equal(t, "Cotton towels x 50000 (EXW)", snap.Title)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(snap.Request, &stored))
	require.Equal(t, "50,000", stored["quantity"])
	require.Nil(t, stored["gst_percent"])
}

func TestCalculate_FOBFillsDistanceAndPackingDefaults(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	out, err := svc.Calculate(context.Background(), Request{
		Tier:          "FOB",
		ProductID:     1,
		Quantity:      "10000",
		UnitsPerBox:   "12",
		ContainerCode: "20FT",
		LocationID:    1,
		PortCode:      "INNSA",
		Box:           &BoxSpec{Length: "50", Width: "30", Height: "20", WeightKg: "5"},
	})
	require.NoError(t, err)

	require.NotNil(t, out.Distance)
	require.Greater(t, out.Distance.DistanceKm, 1300)
	require.NotNil(t, out.Packing)
	require.Equal(t, 847, out.Packing.BoxesPerContainer)
	require.Equal(t, 834, out.Result.Quantities.TotalBoxes)
	require.Equal(t, 1, out.Result.Quantities.ContainerCount)

	wantFreight := dec("40").Mul(decimal.NewFromInt(int64(out.Distance.DistanceKm)))
	require.True(t, out.Result.Amount(pricing.LineLocalFreight).Equal(wantFreight))
	require.True(t, out.Result.Amount(pricing.LineCertifications).Equal(dec("1500")))
	require.True(t, out.Result.FOB.INR.GreaterThan(out.Result.ExFactory.INR))
}

func TestCalculate_ProductDefaultBeatsSolver(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	out, err := svc.Calculate(context.Background(), Request{
		Tier:          "FOB",
		ProductID:     2,
		Quantity:      "1200",
		ContainerCode: "20FT",
		LocationID:    1,
		PortCode:      "INNSA",
		LocalFreight:  "0",
		Box:           &BoxSpec{Length: "50", Width: "30", Height: "20", WeightKg: "5"},
	})
	require.NoError(t, err)

	require.Nil(t, out.Packing)
	require.Nil(t, out.Distance)
	require.Equal(t, 3, out.Result.Quantities.ContainerCount)
	require.True(t, out.Result.Amount(pricing.LineLocalFreight).IsZero())
}

func TestCalculate_UnresolvedPostalCodeIsSkipped(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	out, err := svc.Calculate(context.Background(), Request{
		Tier:              "FOB",
		ProductID:         1,
		Quantity:          "100",
		ContainerCode:     "20FT",
		BoxesPerContainer: "100",
		LocationID:        2,
		PortCode:          "INNSA",
	})
	require.NoError(t, err)

	require.Nil(t, out.Distance)
	require.Len(t, out.Notices, 1)
}

func TestCalculate_BoxTooLarge(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	_, err := svc.Calculate(context.Background(), Request{
		Tier:          "FOB",
		ProductID:     1,
		Quantity:      "100",
		ContainerCode: "20FT",
		LocationID:    1,
		PortCode:      "INNSA",
		Box:           &BoxSpec{Length: "700", Width: "30", Height: "20", WeightKg: "5"},
	})

	require.ErrorIs(t, err, packing.ErrBoxTooLarge)
	require.Empty(t, h.snaps)
}

func TestCalculate_CIFRejectsPortOfAnotherCountry(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	_, err := svc.Calculate(context.Background(), Request{
		Tier:              "CIF",
		ProductID:         1,
		Quantity:          "100",
		ContainerCode:     "20FT",
		LocationID:        1,
		PortCode:          "INNSA",
		CountryID:         2,
		DestinationPortID: 1,
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCalculate_UnknownMasterData(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	_, err := svc.Calculate(context.Background(), Request{ProductID: 9, Quantity: "1"})
	require.ErrorIs(t, err, masterdata.ErrNotFound)
}

func TestCalculate_StaticProviderUsesFreightLane(t *testing.T) {
	md, h := newFixture()
	md.settings = pricing.Settings{ExchangeRate: decimal.NewNullDecimal(dec("90"))}
	md.lanes = []pricing.FreightLane{
		{ID: 1, CountryID: 1, ContainerCode: "20FT", RatePerContainer: dec("1100"), Currency: "USD"},
	}
	req := Request{
		Tier:              "CIF",
		ProductID:         1,
		Quantity:          "100",
		ContainerCode:     "20FT",
		ContainerCount:    "1",
		LocationID:        1,
		PortCode:          "INNSA",
		LocalFreight:      "0",
		CountryID:         1,
		DestinationPortID: 1,
	}

	manual, err := NewService(md, rates.NewByName("manual", md), h).Calculate(context.Background(), req)
	require.NoError(t, err)
	// country default: 900 USD at 90 INR
	require.True(t, manual.Result.Amount(pricing.LineSeaFreight).Equal(dec("81000")))

	static := NewService(md, rates.NewByName("static", md), h)
	out, err := static.Calculate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.Result.Currency.EffectiveRate.Equal(dec("90")))
	// lane: 1100 USD at 90 INR
	require.True(t, out.Result.Amount(pricing.LineSeaFreight).Equal(dec("99000")))
	require.Equal(t, "USD", out.Result.Currency.FreightCurrency)
	require.False(t, out.Result.CIF.INR.Equal(manual.Result.CIF.INR))

	// user-entered freight wins over the lane
	req.SeaFreightPerContainer = "1000"
	out, err = static.Calculate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.Result.Amount(pricing.LineSeaFreight).Equal(dec("90000")))

	// a lane in another currency does not apply, so the country default remains
	req.SeaFreightPerContainer = ""
	req.FreightCurrency = "INR"
	out, err = static.Calculate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.Result.Amount(pricing.LineSeaFreight).Equal(dec("900")))

	// no lane for the container size falls back to the country default
	md.lanes = nil
	req.FreightCurrency = ""
	out, err = static.Calculate(context.Background(), req)
	require.NoError(t, err)
	require.True(t, out.Result.Amount(pricing.LineSeaFreight).Equal(dec("81000")))
}

func TestApplyOverrides(t *testing.T) {
	md, h := newFixture()
	svc := NewService(md, rates.NewManual(), h)

	out, err := svc.Calculate(context.Background(), Request{ProductID: 1, Quantity: "100", ProfitRate: "0"})
	require.NoError(t, err)

	snap, err := svc.ApplyOverrides(context.Background(), out.QuoteID, pricing.Overrides{pricing.LineProfit: dec("500")})
	require.NoError(t, err)
	require.NotNil(t, snap.Adjusted)
	require.True(t, snap.Adjusted.ExFactory.INR.Equal(out.Result.ExFactory.INR.Add(dec("500"))))
	require.True(t, snap.Result.ExFactory.INR.Equal(out.Result.ExFactory.INR))

	_, err = svc.ApplyOverrides(context.Background(), out.QuoteID, pricing.Overrides{pricing.LineSeaFreight: dec("1")})
	require.ErrorIs(t, err, ErrInvalidRequest)
	require.ErrorIs(t, err, pricing.ErrUnknownLine)

	_, err = svc.ApplyOverrides(context.Background(), "nope", nil)
	require.ErrorIs(t, err, history.ErrNotFound)
}

func TestNumericUnmarshal(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{"quantity": 5, "profit_rate": "0", "gst_percent": null, "unit_price": " 1.25 "}`), &req)
	require.NoError(t, err)

	require.Equal(t, 5, req.Quantity.Int())
	require.True(t, req.ProfitRate.Optional().Valid)
	require.True(t, req.ProfitRate.Optional().Decimal.IsZero())
	require.True(t, req.GSTPercent.IsBlank())
	require.False(t, req.GSTPercent.Optional().Valid)
	require.True(t, req.UnitPrice.Amount().Equal(dec("1.25")))
	require.Equal(t, 0, Numeric("-3").Int())
}
