package rates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/exportquote/internal/masterdata"
	"github.com/Simplici0/exportquote/internal/pricing"
)

// Freight is a per-container ocean freight quote. An unset PerContainer means the provider
// has no figure and the calculation falls back to user input or the country default.
type Freight struct {
	PerContainer decimal.NullDecimal
	Currency     string
}

// Provider supplies contracted freight that the request and the country record do not carry.
type Provider interface {
	Name() string
	SeaFreight(ctx context.Context, country pricing.Country, containerCode string) (Freight, error)
}

// LaneSource is the part of the master-data store the static provider reads.
type LaneSource interface {
	GetFreightLane(ctx context.Context, countryID int64, containerCode string) (pricing.FreightLane, error)
}

// Static answers from the freight lanes stored per country and container size.
type Static struct {
	lanes LaneSource
}

func NewStatic(lanes LaneSource) *Static { return &Static{lanes: lanes} }

func (s *Static) Name() string { return "static" }

func (s *Static) SeaFreight(ctx context.Context, country pricing.Country, containerCode string) (Freight, error) {
	if s.lanes == nil || country.ID == 0 || containerCode == "" {
		return Freight{}, nil
	}
	lane, err := s.lanes.GetFreightLane(ctx, country.ID, containerCode)
	if errors.Is(err, masterdata.ErrNotFound) {
		return Freight{}, nil
	}
	if err != nil {
		return Freight{}, fmt.Errorf("static freight %s/%s: %w", country.Code, containerCode, err)
	}
	if !lane.RatePerContainer.IsPositive() {
		return Freight{}, nil
	}
	return Freight{
		PerContainer: decimal.NewNullDecimal(lane.RatePerContainer),
		Currency:     lane.Currency,
	}, nil
}

// Manual never answers, so freight comes from the user or the country default.
type Manual struct{}

func NewManual() *Manual { return &Manual{} }

func (Manual) Name() string { return "manual" }

func (Manual) SeaFreight(context.Context, pricing.Country, string) (Freight, error) {
	return Freight{}, nil
}

// NewByName returns a Provider by name. Unknown names fall back to Static.
func NewByName(name string, lanes LaneSource) Provider {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "manual":
		return NewManual()
	default:
		return NewStatic(lanes)
	}
}
