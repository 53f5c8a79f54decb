package ticket

import (
	"sort"

	"github.com/shopspring/decimal"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
)

// allocatorTolerance (τ in spec.md §4.5) is the monetary slack a candidate
// bucket is allowed to absorb beyond its remaining declared base/cuota.
var allocatorTolerance = decimal.NewFromFloat(0.05)

// vatBucket tracks a mutable, shrinking capacity for one declared VAT rate.
type vatBucket struct {
	rate  decimal.Decimal
	base  decimal.Decimal
	cuota decimal.Decimal
}

// allocateIva assigns each product to the VAT bucket whose declared
// base/cuota it best fits, consuming bucket capacity greedily in descending
// product-price order, per spec.md §4.5. It mutates only the VAT fields of
// each product; the order of products as returned to the caller is
// preserved exactly as given.
func allocateIva(products []ParsedProduct, breakdown []IvaBreakdown) {
	if len(products) == 0 || len(breakdown) == 0 {
		return
	}

	buckets := make([]*vatBucket, len(breakdown))
	for i, b := range breakdown {
		buckets[i] = &vatBucket{rate: b.Porcentaje, base: b.BaseImponible, cuota: b.Cuota}
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].rate.GreaterThan(buckets[j].rate)
	})

	// Iterate products most-expensive-first; this index permutation is
	// internal bookkeeping only and does not affect the output order.
	order := make([]int, len(products))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return products[order[i]].PrecioTotal.GreaterThan(products[order[j]].PrecioTotal)
	})

	for _, idx := range order {
		product := &products[idx]
		total := product.PrecioTotal

		assigned := false
		for _, bucket := range buckets {
			base, cuota := estimateBaseAndCuota(total, bucket.rate)

			if base.LessThanOrEqual(bucket.base.Add(allocatorTolerance)) &&
				cuota.LessThanOrEqual(bucket.cuota.Add(allocatorTolerance)) {
				product.IvaPorcentaje = bucket.rate
				product.IvaImporte = cuota
				bucket.base = clampNonNegative(bucket.base.Sub(base))
				bucket.cuota = clampNonNegative(bucket.cuota.Sub(cuota))
				assigned = true
				break
			}
		}

		if !assigned {
			// Fallback: assign to the highest-rate bucket without
			// decrementing it. This is an observable over-allocation the
			// spec preserves deliberately (spec.md §9 Open Questions).
			fallback := buckets[0]
			_, cuota := estimateBaseAndCuota(total, fallback.rate)
			product.IvaPorcentaje = fallback.rate
			product.IvaImporte = cuota
			tl.Log(
				tl.Warning, palette.YellowBold,
				"VAT allocator fallback fired for product '%s' (total=%s); assigned to highest bucket without decrementing",
				product.Nombre, total,
			)
		}
	}
}

// estimateBaseAndCuota computes the taxable base and tax quota a product's
// total would imply under a given VAT rate.
func estimateBaseAndCuota(total decimal.Decimal, rate decimal.Decimal) (base decimal.Decimal, cuota decimal.Decimal) {
	if rate.IsZero() {
		return total, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(rate.Div(decimal.NewFromInt(100)))
	base = roundMoney(total.Div(divisor))
	cuota = roundMoney(total.Sub(base))
	return base, cuota
}

func clampNonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
