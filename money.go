package txgateway

import (
	"math"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of minor units per major unit (hundredths).
const moneyScale = 100

// parseMoney converts an external floating amount into integer minor
// units, rounding half-to-even at 2 decimal places first so that binary
// float representation error never leaks into the stored balance. Reports
// ok=false for a value that cannot be represented (NaN, Inf).
func parseMoney(x float64) (int64, bool) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	d := decimal.NewFromFloat(x)
	rounded := d.RoundBank(2)
	scaled := rounded.Mul(decimal.NewFromInt(moneyScale))
	return scaled.Round(0).IntPart(), true
}

// formatMoney converts stored integer minor units back to an external
// floating amount, rounded to 2 decimal places.
func formatMoney(n int64) float64 {
	d := decimal.NewFromInt(n).Div(decimal.NewFromInt(moneyScale))
	f, _ := d.Round(2).Float64()
	return f
}
