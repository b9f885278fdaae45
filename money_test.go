package txgateway

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want int64
		ok   bool
	}{
		{"whole", 10, 1000, true},
		{"two decimals", 12.34, 1234, true},
		{"bankers round down", 0.125, 12, true},
		{"bankers round up", 0.135, 14, true},
		{"zero", 0, 0, true},
		{"NaN rejected", math.NaN(), 0, false},
		{"Inf rejected", math.Inf(1), 0, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(tt *testing.T) {
			got, ok := parseMoney(c.in)
			assert.Equal(tt, c.ok, ok)
			if c.ok {
				assert.Equal(tt, c.want, got)
			}
		})
	}
}

func TestFormatMoneyRoundTrip(t *testing.T) {
	n, ok := parseMoney(1999.99)
	assert.True(t, ok)
	assert.Equal(t, 1999.99, formatMoney(n))
}
