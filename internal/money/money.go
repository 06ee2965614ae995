// Package money does price arithmetic in decimal and formats amounts for display.
//
// Records persist prices as JSON numbers (float64) for compatibility with
// stored state; every sum, markup and commission is computed in
// decimal.Decimal and converted back only at the record boundary.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MarkupRate is the multiplier applied when a warehouse product is listed in a store.
var MarkupRate = decimal.RequireFromString("1.20")

var hundred = decimal.NewFromInt(100)

// FromFloat converts a stored price.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// ToFloat converts a decimal back to the stored representation. The value is
// not rounded; Format rounds to cents.
func ToFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// Markup returns price x MarkupRate, unrounded.
func Markup(price float64) decimal.Decimal {
	return FromFloat(price).Mul(MarkupRate)
}

// LineTotal returns price x qty.
func LineTotal(price float64, qty int) decimal.Decimal {
	return FromFloat(price).Mul(decimal.NewFromInt(int64(qty)))
}

// Commission returns price x percent/100 x sold.
func Commission(price, percent float64, sold int) decimal.Decimal {
	return FromFloat(price).Mul(FromFloat(percent)).Div(hundred).Mul(decimal.NewFromInt(int64(sold)))
}

var printer = message.NewPrinter(language.English)

// Format renders d as "$1,234.50".
func Format(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	if d.IsNegative() {
		return printer.Sprintf("-$%.2f", -f)
	}
	return printer.Sprintf("$%.2f", f)
}
