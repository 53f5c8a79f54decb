package ticket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkProductsGoldenTicket(t *testing.T) {
	products := walkProducts(goldenTicketText)
	require.Len(t, products, 2)

	huevos := products[0]
	assert.Equal(t, "12 HUEVOS GRANDES-L", huevos.Nombre)
	assert.True(t, huevos.Cantidad.Equal(dec("1")))
	assert.Equal(t, UnitUnidad, huevos.Unidad)
	assert.True(t, huevos.PrecioUnitario.Equal(dec("2.20")))
	assert.True(t, huevos.PrecioTotal.Equal(dec("2.20")))

	pimiento := products[1]
	assert.Equal(t, "PIMIENTO VERDE", pimiento.Nombre)
	assert.True(t, pimiento.Cantidad.Equal(dec("0.228")))
	assert.Equal(t, UnitKg, pimiento.Unidad)
	assert.True(t, pimiento.PrecioUnitario.Equal(dec("2.49")))
	assert.True(t, pimiento.PrecioTotal.Equal(dec("0.57")))
}

func TestWalkProductsStopsAtTerminator(t *testing.T) {
	text := "Descripción              Importe\n" +
		"1 PAN DE MOLDE            1,10\n" +
		"TOTAL (€) 1,10\n" +
		"1 LECHE ENTERA            0,90\n"

	products := walkProducts(text)
	require.Len(t, products, 1)
	assert.Equal(t, "PAN DE MOLDE", products[0].Nombre)
}

func TestWalkProductsNoHeaderFound(t *testing.T) {
	products := walkProducts("just some receipt noise\nwith no table header at all\n")
	assert.Empty(t, products)
}

func TestWalkProductsWeighedUnitGrams(t *testing.T) {
	text := "Descripción              Importe\n" +
		"1 JAMON SERRANO\n" +
		"150,00 g 12,00 €/kg        1,80\n"

	products := walkProducts(text)
	require.Len(t, products, 1)
	assert.Equal(t, "JAMON SERRANO", products[0].Nombre)
	assert.Equal(t, UnitKg, products[0].Unidad)
	assert.True(t, products[0].Cantidad.Equal(dec("0.15")))
	assert.True(t, products[0].PrecioUnitario.Equal(dec("12.00")))
	assert.True(t, products[0].PrecioTotal.Equal(dec("1.80")))
}

func TestMatchUnitPriceLineWithExplicitUnitPrice(t *testing.T) {
	product, ok := matchUnitPriceLine("3 YOGUR NATURAL 0,45 1,35")
	require.True(t, ok)
	assert.Equal(t, "YOGUR NATURAL", product.Nombre)
	assert.True(t, product.PrecioUnitario.Equal(dec("0.45")))
	assert.True(t, product.PrecioTotal.Equal(dec("1.35")))
}

func TestMatchUnitPriceLineRejectsNonMatchingLine(t *testing.T) {
	_, ok := matchUnitPriceLine("1 PIMIENTO VERDE")
	assert.False(t, ok)
}

func TestMatchWeighedEntryRejectsWithoutLeadingInteger(t *testing.T) {
	_, ok := matchWeighedEntry("PIMIENTO VERDE", "0,228 kg 2,49 €/kg        0,57")
	assert.False(t, ok)
}

func TestIsProductHeaderToleratesMojibake(t *testing.T) {
	assert.True(t, isProductHeader("Descripci?n              Importe"))
	assert.True(t, isProductHeader("Descripci�n              Importe"))
	assert.False(t, isProductHeader("just a regular line"))
}

func TestIsTableTerminator(t *testing.T) {
	assert.True(t, isTableTerminator("TOTAL (€) 52,11"))
	assert.True(t, isTableTerminator("IVA DESGLOSE"))
	assert.False(t, isTableTerminator("1 PIMIENTO VERDE"))
}
