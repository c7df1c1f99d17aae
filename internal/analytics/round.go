package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds a monetary value to two decimal places.
//
// Rounding is half away from zero applied to the exact binary value of v, so
// a float64 printed as 100.005 (stored as 100.00499999...) rounds to 100.00.
// Exact ties round away from zero, not to even: 0.125 gives 0.13.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloatWithExponent(v, -2).InexactFloat64()
}
