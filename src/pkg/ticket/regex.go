package ticket

import (
	"regexp"
	"strings"
)

// Regex catalogue. Every pattern used by the field extractors and the
// product walker is compiled exactly once here, at package init, and reused
// across every parse — never re-compiled per request.
var (
	reInvoiceNumber = regexp.MustCompile(`(?i)FACTURA\s+SIMPLIFICADA:\s*(\d{4}-\d{3}-\d{6})`)

	reFechaHora = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})\s+(\d{2}:\d{2})`)
	reFecha     = regexp.MustCompile(`(\d{2}/\d{2}/\d{4})`)

	// The euro sign is sometimes mangled by PDF text extractors or OCR into
	// a replacement character; tolerate either.
	reTotal    = regexp.MustCompile(`(?i)TOTAL\s*\((?:€|` + "\uFFFD" + `)\)\s*([0-9]+,[0-9]{2})`)
	reTotalAlt = regexp.MustCompile(`(?i)TOTAL\s+([0-9]+,[0-9]{2})`)

	reDireccion = regexp.MustCompile(`C/\s+(.+?)\n(\d{5}\s+\w+)`)

	reMetodoPago = regexp.MustCompile(`(?i)(TARJ(?:ETA|\.)\s*BANCARIA|EFECTIVO|BIZUM|MASTERCARD|VISA|AMEX)`)

	reOperacion    = regexp.MustCompile(`(?i)OP:\s*(\d+)`)
	reOperacionAlt = regexp.MustCompile(`(?i)N\.C:\s*(\d+)`)

	reIvaLine = regexp.MustCompile(`(\d+)%\s+([0-9]+,[0-9]{2})\s+([0-9]+,[0-9]{2})`)

	reProductHeader = regexp.MustCompile(`descrip.*importe`)

	reTerminator = regexp.MustCompile(`^(TOTAL|IVA|TARJ)`)

	// Unit-priced single-line product: quantity, description, price, optional total.
	reUnitPriceLine = regexp.MustCompile(`^(\d+)\s+(.+?)\s+(\d+,[0-9]{2})(?:\s+(\d+,[0-9]{2}))?$`)

	// Weighed two-line product: header line with a leading integer count.
	reWeighedHeader = regexp.MustCompile(`^(\d+)\s+(.+)$`)
	// Detail line: weight, unit, unit-price, total.
	reWeighedDetail = regexp.MustCompile(`(?i)^(\d+,\d{2,3})\s*(kg|g|l|ml)\s+(\d+,\d{2}).*?(\d+,\d{2})$`)
)

// normalizeMojibake strips known OCR/encoding corruption hazards before the
// product-header match: a stray "?" or replacement char is dropped, and
// accented letters fold to their plain ASCII form, so "Descripci?n" and a
// replacement-char variant both still contain "descrip" after lowercasing.
// The raw text fed to the field extractors is left untouched; only the line
// handed to the header-detection match is normalized.
func normalizeMojibake(s string) string {
	replacer := strings.NewReplacer(
		"?", "",
		"\uFFFD", "",
		"á", "a",
		"ó", "o",
		"ñ", "n",
		"í", "i",
	)
	return replacer.Replace(s)
}
