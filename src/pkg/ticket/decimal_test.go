package ticket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseSpanishDecimal(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1.234,56", "1234.56", true},
		{"0,57", "0.57", true},
		{"12,5", "12.5", true},
		{"", "", false},
		{"abc", "", false},
	}

	for _, c := range cases {
		got, ok := parseSpanishDecimal(c.in)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.True(t, got.Equal(decimal.RequireFromString(c.want)), "%s -> %s, want %s", c.in, got, c.want)
		}
	}
}

func TestRoundMoney(t *testing.T) {
	assert.True(t, roundMoney(decimal.RequireFromString("1.005")).Equal(decimal.RequireFromString("1.01")))
	assert.True(t, roundMoney(decimal.RequireFromString("-3.00")).Equal(decimal.Zero))
}

func TestRoundQty(t *testing.T) {
	assert.True(t, roundQty(decimal.RequireFromString("0.2284")).Equal(decimal.RequireFromString("0.228")))
}

func TestRoundRate(t *testing.T) {
	assert.True(t, roundRate(decimal.RequireFromString("21.04")).Equal(decimal.RequireFromString("21.0")))
}
