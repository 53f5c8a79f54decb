package ticket

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseSpanishDecimal parses a Spanish-formatted number where a comma is the
// decimal separator and a period is a thousands separator. Periods are
// stripped before the comma is swapped for a dot, so "1.234,56" -> 1234.56
// and "0,57" -> 0.57. Returns false if s does not contain a usable number.
func parseSpanishDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// roundMoney rounds to 2 decimal places, half-away-from-zero, and clamps to
// a non-negative result per the monetary invariant in spec.md §3.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	rounded := d.Round(2)
	if rounded.IsNegative() {
		return decimal.Zero
	}
	return rounded
}

// roundQty rounds a quantity to 3 decimal places (precision for weighed
// products, e.g. 0.228 kg).
func roundQty(d decimal.Decimal) decimal.Decimal {
	return d.Round(3)
}

// roundRate rounds a VAT percentage to 1 decimal place.
func roundRate(d decimal.Decimal) decimal.Decimal {
	return d.Round(1)
}
