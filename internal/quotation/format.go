package quotation

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	inrPrinter = message.NewPrinter(language.MustParse("en-IN"))
	usdPrinter = message.NewPrinter(language.AmericanEnglish)
)

// INR formats an amount with the rupee sign and Indian digit grouping.
func INR(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return inrPrinter.Sprintf("₹%.2f", f)
}

// USD formats an amount in US dollars.
func USD(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return usdPrinter.Sprintf("$%.2f", f)
}

// Count formats a whole number with grouping.
func Count(n int) string {
	return inrPrinter.Sprintf("%d", n)
}

// Rate formats a percentage or per-unit rate without trailing zeros.
func Rate(d decimal.Decimal) string {
	return d.String()
}
