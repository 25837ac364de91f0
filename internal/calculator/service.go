package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/distance"
	"github.com/Simplici0/exportquote/internal/history"
	"github.com/Simplici0/exportquote/internal/observability"
	"github.com/Simplici0/exportquote/internal/packing"
	"github.com/Simplici0/exportquote/internal/pricing"
	"github.com/Simplici0/exportquote/internal/rates"
)

// ErrInvalidRequest is returned for selections that exist but do not fit together.
var ErrInvalidRequest = errors.New("invalid calculation request")

// MasterData is the read side of the master-data store.
type MasterData interface {
	GetProduct(ctx context.Context, id int64) (pricing.Product, error)
	GetContainerTypeByCode(ctx context.Context, code string) (pricing.ContainerType, error)
	GetLocation(ctx context.Context, id int64) (pricing.Location, error)
	GetPort(ctx context.Context, code string) (pricing.Port, error)
	GetCountry(ctx context.Context, id int64) (pricing.Country, error)
	GetDestinationPort(ctx context.Context, id int64) (pricing.DestinationPort, error)
	ListCertifications(ctx context.Context) ([]pricing.Certification, error)
	GetSettings(ctx context.Context) (pricing.Settings, error)
}

// History records calculations.
type History interface {
	Append(ctx context.Context, snap history.Snapshot) (history.Snapshot, error)
	Get(ctx context.Context, id string) (history.Snapshot, error)
	SaveAdjustment(ctx context.Context, id string, overrides pricing.Overrides, adjusted pricing.Result) (history.Snapshot, error)
}

// Outcome is a finished calculation with the defaults that were filled in.
type Outcome struct {
	QuoteID  string             `json:"quote_id,omitempty"`
	Result   pricing.Result     `json:"result"`
	Distance *distance.Estimate `json:"distance,omitempty"`
	Packing  *packing.Result    `json:"packing,omitempty"`
	Notices  []string           `json:"notices,omitempty"`
}

// Service runs calculations end to end. Each call works on its own copy of the inputs.
type Service struct {
	masterData MasterData
	rates      rates.Provider
	history    History
}

// NewService wires a Service. A nil provider answers nothing; a nil history skips recording.
func NewService(md MasterData, provider rates.Provider, h History) *Service {
	if provider == nil {
		provider = rates.NewManual()
	}
	return &Service{masterData: md, rates: provider, history: h}
}

// Calculate validates the selection, resolves master data, fills distance and packing
// defaults, prices the request and records it.
func (s *Service) Calculate(ctx context.Context, req Request) (Outcome, error) {
	logger := observability.FromContext(ctx)

	if err := pricing.Validate(req.selection()); err != nil {
		return Outcome{}, err
	}

	rc, notices, err := s.resolve(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	result := pricing.Compute(req.inputs(rc), rc.settings)
	out := Outcome{Result: result, Distance: rc.distance, Packing: rc.packing, Notices: notices}

	logger.Debug("quote calculated",
		zap.String("tier", string(result.Tier)),
		zap.Int64("product_id", req.ProductID),
		zap.Int("units", result.Quantities.TotalUnits),
		zap.Int("containers", result.Quantities.ContainerCount),
		zap.String("total_inr", result.Price(result.Tier).INR.StringFixed(2)),
	)

	if s.history == nil {
		return out, nil
	}
	raw, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode request: %w", err)
	}
	title := req.Title
	if title == "" {
		title = fmt.Sprintf("%s x %d (%s)", rc.product.Name, result.Quantities.TotalUnits, result.Tier)
	}
	snap, err := s.history.Append(ctx, history.Snapshot{Title: title, Notes: req.Notes, Request: raw, Result: result})
	if err != nil {
		return Outcome{}, fmt.Errorf("record quote: %w", err)
	}
	out.QuoteID = snap.ID
	return out, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (resolved, []string, error) {
	logger := observability.FromContext(ctx)
	tier := req.tier()
	var (
		rc      resolved
		notices []string
		err     error
	)

	if rc.product, err = s.masterData.GetProduct(ctx, req.ProductID); err != nil {
		return rc, nil, err
	}
	if rc.settings, err = s.masterData.GetSettings(ctx); err != nil {
		return rc, nil, err
	}

	if req.LocationID != 0 {
		loc, err := s.masterData.GetLocation(ctx, req.LocationID)
		if err != nil {
			return rc, nil, err
		}
		rc.location = &loc
	}

	if tier.Includes(pricing.TierFOB) {
		container, err := s.masterData.GetContainerTypeByCode(ctx, req.ContainerCode)
		if err != nil {
			return rc, nil, err
		}
		rc.container = &container

		port, err := s.masterData.GetPort(ctx, req.PortCode)
		if err != nil {
			return rc, nil, err
		}
		rc.port = &port

		if rc.certifications, err = s.masterData.ListCertifications(ctx); err != nil {
			return rc, nil, err
		}
	}

	if tier.Includes(pricing.TierCIF) {
		country, err := s.masterData.GetCountry(ctx, req.CountryID)
		if err != nil {
			return rc, nil, err
		}
		rc.country = &country

		dest, err := s.masterData.GetDestinationPort(ctx, req.DestinationPortID)
		if err != nil {
			return rc, nil, err
		}
		if dest.CountryID != country.ID {
			return rc, nil, fmt.Errorf("%w: destination port %s is not in %s", ErrInvalidRequest, dest.Name, country.Name)
		}
		rc.destinationPort = &dest
	}

	rc.distanceKm = req.DistanceKm.Int()
	if tier.Includes(pricing.TierFOB) && !req.hasManualDistance() && rc.location != nil && rc.location.PostalCode != "" {
		est, err := distance.EstimateKm(rc.location.PostalCode, distance.Destination{
			PostalCode: rc.port.PostalCode,
			PortCode:   rc.port.Code,
		})
		switch {
		case err == nil:
			rc.distanceKm = est.DistanceKm
			rc.distance = &est
		case errors.Is(err, distance.ErrLocationNotResolved), errors.Is(err, distance.ErrPortNotResolved):
			logger.Info("distance default skipped", zap.Error(err))
			notices = append(notices, "Distance could not be estimated; enter local freight or distance manually.")
		default:
			return rc, nil, err
		}
	}

	if rc.container != nil {
		bpc, res, err := boxesPerContainer(req, rc.product, *rc.container)
		if err != nil {
			return rc, nil, err
		}
		rc.boxesPerContainer = bpc
		rc.packing = res
		if res != nil {
			logger.Debug("packing default applied",
				zap.Int("boxes_per_container", bpc),
				zap.String("limiting_factor", string(res.LimitingFactor)),
			)
		}
	} else {
		rc.boxesPerContainer = req.BoxesPerContainer.Int()
	}

	if rc.country != nil && rc.container != nil && req.SeaFreightPerContainer.IsBlank() {
		freight, err := s.rates.SeaFreight(ctx, *rc.country, rc.container.Code)
		if err != nil {
			logger.Warn("sea freight provider failed", zap.String("provider", s.rates.Name()), zap.Error(err))
		} else {
			rc.seaFreight = freight
		}
	}

	return rc, notices, nil
}

// boxesPerContainer prefers the entered figure, then the product default for the container,
// then the packing solver when a carton is described.
func boxesPerContainer(req Request, product pricing.Product, container pricing.ContainerType) (int, *packing.Result, error) {
	if n := req.BoxesPerContainer.Int(); n > 0 {
		return n, nil, nil
	}
	if n := product.BoxesPerContainer[container.Code]; n > 0 {
		return n, nil, nil
	}
	if req.Box == nil {
		return 0, nil, nil
	}
	res, err := packing.Solve(req.Box.box(), container.Container())
	if err != nil {
		return 0, nil, fmt.Errorf("pack %s: %w", container.Code, err)
	}
	return res.BoxesPerContainer, &res, nil
}

// ApplyOverrides re-sums a stored quote with manually edited line amounts. The computed result
// is kept; the override layer and adjusted totals are stored beside it.
func (s *Service) ApplyOverrides(ctx context.Context, quoteID string, overrides pricing.Overrides) (history.Snapshot, error) {
	if s.history == nil {
		return history.Snapshot{}, fmt.Errorf("quote %s: %w", quoteID, history.ErrNotFound)
	}
	snap, err := s.history.Get(ctx, quoteID)
	if err != nil {
		return history.Snapshot{}, err
	}
	adjusted, err := pricing.Recompute(snap.Result, overrides)
	if err != nil {
		return history.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.history.SaveAdjustment(ctx, quoteID, overrides, adjusted)
}
