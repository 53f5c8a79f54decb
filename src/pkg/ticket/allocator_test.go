package ticket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestAllocateIvaBestFitMatchesCorrectBucket(t *testing.T) {
	products := []ParsedProduct{
		{Nombre: "PACK AGUA", PrecioTotal: dec("11.00")},
		{Nombre: "CHOCOLATE", PrecioTotal: dec("2.42")},
	}
	breakdown := []IvaBreakdown{
		{Porcentaje: dec("10"), BaseImponible: dec("10.00"), Cuota: dec("1.00")},
		{Porcentaje: dec("21"), BaseImponible: dec("2.00"), Cuota: dec("0.42")},
	}

	allocateIva(products, breakdown)

	assert.True(t, products[0].IvaPorcentaje.Equal(dec("10")), "PACK AGUA should land in the 10%% bucket")
	assert.True(t, products[0].IvaImporte.Equal(dec("1.00")))
	assert.True(t, products[1].IvaPorcentaje.Equal(dec("21")), "CHOCOLATE should land in the 21%% bucket")
	assert.True(t, products[1].IvaImporte.Equal(dec("0.42")))
}

func TestAllocateIvaFallbackWhenNoBucketFits(t *testing.T) {
	products := []ParsedProduct{
		{Nombre: "LOTE GRANDE", PrecioTotal: dec("100.00")},
	}
	breakdown := []IvaBreakdown{
		{Porcentaje: dec("10"), BaseImponible: dec("1.00"), Cuota: dec("0.10")},
		{Porcentaje: dec("21"), BaseImponible: dec("1.00"), Cuota: dec("0.10")},
	}

	allocateIva(products, breakdown)

	assert.True(t, products[0].IvaPorcentaje.Equal(dec("21")), "fallback picks the highest-rate bucket")
	assert.True(t, products[0].IvaImporte.GreaterThan(decimal.Zero))
	// fallback never decrements, so the buckets are left exactly as declared.
	assert.True(t, breakdown[0].Cuota.Equal(dec("0.10")))
	assert.True(t, breakdown[1].Cuota.Equal(dec("0.10")))
}

func TestAllocateIvaEmptyBreakdownIsNoOp(t *testing.T) {
	products := []ParsedProduct{
		{Nombre: "PAN", PrecioTotal: dec("1.10")},
	}

	allocateIva(products, nil)

	assert.True(t, products[0].IvaPorcentaje.IsZero())
	assert.True(t, products[0].IvaImporte.IsZero())
}

func TestAllocateIvaEmptyProductsIsNoOp(t *testing.T) {
	breakdown := []IvaBreakdown{
		{Porcentaje: dec("10"), BaseImponible: dec("10.00"), Cuota: dec("1.00")},
	}

	assert.NotPanics(t, func() {
		allocateIva(nil, breakdown)
	})
}

func TestEstimateBaseAndCuotaZeroRate(t *testing.T) {
	base, cuota := estimateBaseAndCuota(dec("5.00"), decimal.Zero)
	assert.True(t, base.Equal(dec("5.00")))
	assert.True(t, cuota.IsZero())
}

func TestClampNonNegative(t *testing.T) {
	assert.True(t, clampNonNegative(dec("-1.50")).IsZero())
	assert.True(t, clampNonNegative(dec("3.00")).Equal(dec("3.00")))
}
