package rates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/pricing"
)

type fakeLanes struct {
	lanes map[string]pricing.FreightLane
	err   error
}

func (f fakeLanes) GetFreightLane(_ context.Context, countryID int64, code string) (pricing.FreightLane, error) {
	if f.err != nil {
		return pricing.FreightLane{}, f.err
	}
	l, ok := f.lanes[fmt.Sprintf("%d/%s", countryID, code)]
	if !ok {
		return pricing.FreightLane{}, masterdata.ErrNotFound
	}
	return l, nil
}

var germany = pricing.Country{
	ID:                     2,
	Code:                   "DE",
	SeaFreightPerContainer: decimal.NewNullDecimal(decimal.NewFromInt(900)),
}

func TestNewByName(t *testing.T) {
	require.Equal(t, "static", NewByName("", nil).Name())
	require.Equal(t, "static", NewByName("karrio", nil).Name())
	require.Equal(t, "manual", NewByName(" Manual ", nil).Name())
}

func TestStaticQuotesPerContainerSize(t *testing.T) {
	ctx := context.Background()
	p := NewStatic(fakeLanes{lanes: map[string]pricing.FreightLane{
		"2/20FT": {CountryID: 2, ContainerCode: "20FT", RatePerContainer: decimal.NewFromInt(1100), Currency: "USD"},
		"2/40FT": {CountryID: 2, ContainerCode: "40FT", RatePerContainer: decimal.NewFromInt(1700), Currency: "EUR"},
	}})

	small, err := p.SeaFreight(ctx, germany, "20FT")
	require.NoError(t, err)
	require.True(t, small.PerContainer.Valid)
	require.True(t, small.PerContainer.Decimal.Equal(decimal.NewFromInt(1100)))
	require.Equal(t, "USD", small.Currency)

	large, err := p.SeaFreight(ctx, germany, "40FT")
	require.NoError(t, err)
	require.True(t, large.PerContainer.Decimal.Equal(decimal.NewFromInt(1700)))
	require.Equal(t, "EUR", large.Currency)
}

func TestStaticWithoutLaneAnswersNothing(t *testing.T) {
	p := NewStatic(fakeLanes{})

	freight, err := p.SeaFreight(context.Background(), germany, "40HC")
	require.NoError(t, err)
	require.False(t, freight.PerContainer.Valid)

	freight, err = NewStatic(nil).SeaFreight(context.Background(), germany, "20FT")
	require.NoError(t, err)
	require.False(t, freight.PerContainer.Valid)
}

func TestStaticWrapsStoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewStatic(fakeLanes{err: boom}).SeaFreight(context.Background(), germany, "20FT")
	require.ErrorIs(t, err, boom)
}

func TestManualAnswersNothing(t *testing.T) {
	freight, err := NewManual().SeaFreight(context.Background(), germany, "40FT")
	require.NoError(t, err)
	require.False(t, freight.PerContainer.Valid)
	require.Empty(t, freight.Currency)
}
