package calculator

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/exportquote/internal/pricing"
)

// Numeric is a user-entered number. It accepts a JSON number, a string or null, and keeps
// the raw text so that blank and zero stay distinguishable.
type Numeric string

func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	*n = Numeric(data)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if n.IsBlank() {
		return []byte("null"), nil
	}
	return json.Marshal(string(n))
}

// IsBlank reports whether nothing was entered.
func (n Numeric) IsBlank() bool { return strings.TrimSpace(string(n)) == "" }

// Amount reads the value, with blank or unparsable text as zero.
func (n Numeric) Amount() decimal.Decimal { return pricing.ParseAmount(string(n)) }

// Optional reads the value, with blank text as unset.
func (n Numeric) Optional() decimal.NullDecimal { return pricing.ParseOptional(string(n)) }

// Int rounds the value up to a whole number; negatives read as zero.
func (n Numeric) Int() int {
	d := n.Amount()
	if !d.IsPositive() {
		return 0
	}
	return int(d.Ceil().IntPart())
}

// Float reads the value as a float for geometry input.
func (n Numeric) Float() float64 {
	f, _ := n.Amount().Float64()
	return f
}
