package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// round2 rounds half away from zero to paise/cents, which is half-up for the non-negative
// amounts the pipeline produces.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns base * rate / 100.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return base.Mul(rate).Div(hundred)
}

func fromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// ParseAmount reads a user-entered number. Blank or unparsable text counts as zero; thousands
// separators, currency symbols and surrounding spaces are ignored.
func ParseAmount(raw string) decimal.Decimal {
	d, ok := parse(raw)
	if !ok {
		return decimal.Zero
	}
	return d
}

// ParseOptional distinguishes an unset field from an explicit value: blank text is unset,
// anything else is set, with unparsable text set to zero.
func ParseOptional(raw string) decimal.NullDecimal {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}
	}
	d, _ := parse(raw)
	return decimal.NewNullDecimal(d)
}

func parse(raw string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ',', ' ', '\u00a0', '₹', '$', '%':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// orDefault returns the override when set, otherwise the fallback.
func orDefault(override decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if override.Valid {
		return override.Decimal
	}
	return fallback
}

// firstSet returns the first set value, or zero.
func firstSet(values ...decimal.NullDecimal) decimal.NullDecimal {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return decimal.NullDecimal{}
}
