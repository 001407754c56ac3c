// Package format renders numbers for terminal output.
package format

import (
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
)

// BigNumber shortens values beyond a thousand to "k" and beyond a million
// to "m", e.g. 9500 -> "9.5k" and 1250000 -> "1.25m".
func BigNumber(n int64) string {
	switch {
	case n > 1_000_000 || n < -1_000_000:
		return Decimal(float64(n)/1_000_000) + "m"
	case n > 1_000 || n < -1_000:
		return Decimal(float64(n)/1_000) + "k"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// Decimal prints v without trailing zeros.
func Decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) string {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		r = 0 // drop negative zero
	}
	return Decimal(r)
}

// Coins prints an amount with thousands separators, e.g. "1,250,000".
func Coins(n int64) string {
	return humanize.Comma(n)
}

// Percent prints a ratio in [0,1] as a percentage with one decimal.
func Percent(ratio float64) string {
	return Round(ratio*100, 1) + "%"
}
