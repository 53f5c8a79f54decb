package ticket

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// walkerState is the product-table state machine's closed set of states.
type walkerState int

const (
	stateBeforeHeader walkerState = iota
	stateInProducts
	stateDone
)

// walkProducts scans text line by line for the product table, recognizing
// the unit-priced single-line grammar and the weighed two-line grammar, in
// that strict precedence order, per spec.md §4.4.
func walkProducts(text string) []ParsedProduct {
	lines := strings.Split(text, "\n")
	state := stateBeforeHeader
	var products []ParsedProduct

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		switch state {
		case stateBeforeHeader:
			if isProductHeader(line) {
				state = stateInProducts
			}
			continue

		case stateInProducts:
			if line == "" {
				continue
			}
			if isTableTerminator(line) {
				state = stateDone
				continue
			}

			if product, ok := matchUnitPriceLine(line); ok {
				products = append(products, product)
				continue
			}

			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if product, ok := matchWeighedEntry(line, next); ok {
					products = append(products, product)
					i++
					continue
				}
			}

			// Line ignored: neither grammar matched.
			continue

		case stateDone:
			return products
		}
	}

	return products
}

func isProductHeader(line string) bool {
	normalized := strings.ToLower(normalizeMojibake(line))
	return reProductHeader.MatchString(normalized)
}

func isTableTerminator(line string) bool {
	return reTerminator.MatchString(strings.ToUpper(line))
}

// matchUnitPriceLine recognizes "<qty> <description> <price1> [<price2>]".
func matchUnitPriceLine(line string) (ParsedProduct, bool) {
	m := reUnitPriceLine.FindStringSubmatch(line)
	if m == nil {
		return ParsedProduct{}, false
	}

	quantity, err := strconv.Atoi(m[1])
	if err != nil {
		return ParsedProduct{}, false
	}

	nombre := strings.TrimSpace(m[2])
	price1, ok1 := parseSpanishDecimal(m[3])
	if !ok1 {
		return ParsedProduct{}, false
	}

	var precioUnitario, precioTotal decimal.Decimal
	if m[4] != "" {
		price2, ok2 := parseSpanishDecimal(m[4])
		if !ok2 {
			return ParsedProduct{}, false
		}
		precioUnitario = roundMoney(price1)
		precioTotal = roundMoney(price2)
	} else if quantity != 0 {
		precioTotal = roundMoney(price1.Mul(decimal.NewFromInt(int64(quantity))))
		precioUnitario = roundMoney(precioTotal.Div(decimal.NewFromInt(int64(quantity))))
	} else {
		precioTotal = decimal.Zero
		precioUnitario = roundMoney(price1)
	}

	return ParsedProduct{
		Nombre:         nombre,
		Cantidad:       roundQty(decimal.NewFromInt(int64(quantity))),
		Unidad:         UnitUnidad,
		PrecioUnitario: precioUnitario,
		PrecioTotal:    precioTotal,
		Descuento:      decimal.Zero,
	}, true
}

// matchWeighedEntry recognizes the two-line weighed-product grammar:
// a header line "<count> <description>" followed by a detail line
// "<weight> <unit> <unit-price> ... <total>".
func matchWeighedEntry(header string, detail string) (ParsedProduct, bool) {
	headerMatch := reWeighedHeader.FindStringSubmatch(header)
	if headerMatch == nil {
		return ParsedProduct{}, false
	}

	detailMatch := reWeighedDetail.FindStringSubmatch(detail)
	if detailMatch == nil {
		return ParsedProduct{}, false
	}

	weight, ok1 := parseSpanishDecimal(detailMatch[1])
	unitPrice, ok2 := parseSpanishDecimal(detailMatch[3])
	total, ok3 := parseSpanishDecimal(detailMatch[4])
	if !ok1 || !ok2 || !ok3 {
		return ParsedProduct{}, false
	}

	unit := strings.ToLower(detailMatch[2])
	normalizedWeight := weight
	var normalizedUnit Unit
	switch unit {
	case "kg":
		normalizedUnit = UnitKg
	case "g":
		normalizedWeight = weight.Div(decimal.NewFromInt(1000))
		normalizedUnit = UnitKg
	case "l":
		normalizedUnit = UnitLitro
	case "ml":
		normalizedWeight = weight.Div(decimal.NewFromInt(1000))
		normalizedUnit = UnitLitro
	default:
		return ParsedProduct{}, false
	}

	nombre := strings.TrimSpace(headerMatch[2])

	return ParsedProduct{
		Nombre:         nombre,
		Cantidad:       roundQty(normalizedWeight),
		Unidad:         normalizedUnit,
		PrecioUnitario: roundMoney(unitPrice),
		PrecioTotal:    roundMoney(total),
		Descuento:      decimal.Zero,
	}, true
}
