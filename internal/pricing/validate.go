package pricing

import (
	"errors"
	"strings"
)

// ErrMissingRequiredSelection blocks a calculation before the pipeline runs.
var ErrMissingRequiredSelection = errors.New("missing required selection")

// SelectionError lists the fields that must be chosen before pricing to the requested tier.
type SelectionError struct {
	Tier    Tier
	Missing []string
}

func (e *SelectionError) Error() string {
	return ErrMissingRequiredSelection.Error() + " for " + string(e.Tier) + ": " + strings.Join(e.Missing, ", ")
}

func (e *SelectionError) Unwrap() error { return ErrMissingRequiredSelection }

// Selection is what the user picked. Zero values mean nothing was picked.
type Selection struct {
	Tier              Tier
	ProductID         int64
	Quantity          Quantity
	ContainerCode     string
	LocationID        int64
	PortCode          string
	CountryID         int64
	DestinationPortID int64
}

// Validate enforces the per-tier required selections.
func Validate(s Selection) error {
	var missing []string
	if s.ProductID == 0 {
		missing = append(missing, "product")
	}
	if s.Quantity == nil || s.Quantity.Units() <= 0 {
		missing = append(missing, "quantity")
	}
	if s.Tier.Includes(TierFOB) {
		if strings.TrimSpace(s.ContainerCode) == "" {
			missing = append(missing, "container_type")
		}
		if s.LocationID == 0 {
			missing = append(missing, "location")
		}
		if strings.TrimSpace(s.PortCode) == "" {
			missing = append(missing, "port")
		}
	}
	if s.Tier.Includes(TierCIF) {
		if s.CountryID == 0 {
			missing = append(missing, "country")
		}
		if s.DestinationPortID == 0 {
			missing = append(missing, "destination_port")
		}
	}
	if len(missing) > 0 {
		tier := s.Tier
		if tier == "" {
			tier = TierEXW
		}
		return &SelectionError{Tier: tier, Missing: missing}
	}
	return nil
}
