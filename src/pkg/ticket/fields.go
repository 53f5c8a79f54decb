package ticket

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// All extractors below are pure functions over the concatenated extraction
// text. None of them throw: a field that cannot be found simply comes back
// as a zero value with ok=false, per spec.md §4.3.

// extractInvoiceNumber finds "FACTURA SIMPLIFICADA: XXXX-XXX-XXXXXX".
func extractInvoiceNumber(text string) (string, bool) {
	m := reInvoiceNumber.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// extractFechaYHora finds the ticket date, and where possible the
// combined date+time (minute precision). If only a bare date is found, the
// returned time is the zero value with hasHora=false.
func extractFechaYHora(text string) (fecha string, fechaHora time.Time, hasFecha bool, hasHora bool) {
	if m := reFechaHora.FindStringSubmatch(text); m != nil {
		t, err := time.Parse("02/01/2006 15:04", m[1]+" "+m[2])
		if err == nil {
			return m[1], t, true, true
		}
		// Malformed time portion: fall through and still report the date.
		return m[1], time.Time{}, true, false
	}

	if m := reFecha.FindStringSubmatch(text); m != nil {
		return m[1], time.Time{}, true, false
	}

	return "", time.Time{}, false, false
}

// extractTotal finds the ticket's declared TOTAL amount.
func extractTotal(text string) (decimal.Decimal, bool) {
	if m := reTotal.FindStringSubmatch(text); m != nil {
		if d, ok := parseSpanishDecimal(m[1]); ok {
			return roundMoney(d), true
		}
	}
	if m := reTotalAlt.FindStringSubmatch(text); m != nil {
		if d, ok := parseSpanishDecimal(m[1]); ok {
			return roundMoney(d), true
		}
	}
	return decimal.Zero, false
}

// extractStoreDetails scans the first ten non-empty lines for the store
// name (the first line containing "MERCADONA") and returns the address
// assembled from the C/ <street>\n<postal city> pattern, if present.
func extractStoreDetails(text string) (tienda string, ubicacion string, hasTienda bool, hasUbicacion bool) {
	lines := strings.Split(text, "\n")
	scanned := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		scanned++
		if scanned > 10 {
			break
		}
		if strings.Contains(strings.ToUpper(trimmed), "MERCADONA") {
			storeName := trimmed
			if idx := strings.Index(storeName, " A-"); idx >= 0 {
				storeName = strings.TrimSpace(storeName[:idx])
			}
			tienda, hasTienda = storeName, true
			break
		}
	}

	if m := reDireccion.FindStringSubmatch(text); m != nil {
		street := strings.TrimSpace(m[1])
		postalCity := strings.TrimSpace(m[2])
		ubicacion = "C/ " + street + ", " + postalCity
		hasUbicacion = true
	}

	return tienda, ubicacion, hasTienda, hasUbicacion
}

// extractMetodoPago finds the payment method and normalizes it: any
// TARJ(ETA|.) BANCARIA collapses to "Tarjeta bancaria", card brand names stay
// uppercased as matched, everything else is title-cased.
func extractMetodoPago(text string) (string, bool) {
	m := reMetodoPago.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	raw := strings.ToUpper(strings.TrimSpace(m[1]))
	if strings.HasPrefix(raw, "TARJ") {
		return "Tarjeta bancaria", true
	}
	switch raw {
	case "MASTERCARD", "VISA", "AMEX":
		return raw, true
	default:
		return titleCase(raw), true
	}
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// extractNumeroOperacion looks for "OP: <digits>" first, falling back to the
// lower-confidence "N.C: <digits>" pattern.
func extractNumeroOperacion(text string) (string, bool) {
	if m := reOperacion.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if m := reOperacionAlt.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

// extractIvaBreakdown returns every "<rate>% <base> <cuota>" row in document
// order.
func extractIvaBreakdown(text string) []IvaBreakdown {
	matches := reIvaLine.FindAllStringSubmatch(text, -1)
	breakdown := make([]IvaBreakdown, 0, len(matches))

	for _, m := range matches {
		rate, ok1 := parseSpanishDecimal(m[1])
		base, ok2 := parseSpanishDecimal(m[2])
		cuota, ok3 := parseSpanishDecimal(m[3])
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		breakdown = append(breakdown, IvaBreakdown{
			Porcentaje:    roundRate(rate),
			BaseImponible: roundMoney(base),
			Cuota:         roundMoney(cuota),
		})
	}

	return breakdown
}
