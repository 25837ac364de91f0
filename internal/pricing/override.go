package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrUnknownLine is returned when an override names a line the result does not have.
var ErrUnknownLine = errors.New("unknown breakdown line")

// Overrides replaces line amounts by key. Amounts are INR and taken as final.
type Overrides map[string]decimal.Decimal

// Recompute re-sums the tier totals of base with the overridden line amounts. Nothing is
// re-derived: bank charges, profit, GST and insurance stay as given. base is not modified.
func Recompute(base Result, ov Overrides) (Result, error) {
	known := make(map[string]struct{}, len(base.Breakdown))
	for _, l := range base.Breakdown {
		known[l.Key] = struct{}{}
	}
	for key := range ov {
		if _, ok := known[key]; !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownLine, key)
		}
	}

	out := base
	out.Adjusted = true
	out.Breakdown = make([]Line, len(base.Breakdown))
	for i, l := range base.Breakdown {
		if amount, ok := ov[l.Key]; ok {
			l.Amount = round2(amount)
			l.Overridden = true
		}
		out.Breakdown[i] = l
	}

	units := base.Quantities.TotalUnits
	rate := base.Currency.EffectiveRate

	exw := stageSum(out.Breakdown, TierEXW)
	out.ExFactory = tierPrice(exw, rate, units)

	if base.FOB.Computed {
		fob := exw.Add(stageSum(out.Breakdown, TierFOB))
		out.FOB = tierPrice(fob, rate, units)

		if base.CIF.Computed {
			out.CIF = tierPrice(fob.Add(stageSum(out.Breakdown, TierCIF)), rate, units)
		}
	}
	return out, nil
}
