// README: Common value objects shared across modules.
package types

import (
	"math"

	"github.com/shopspring/decimal"
)

type ID string

type Point struct {
	Lat float64
	Lng float64
}

// RoundFee rounds half away from zero to 2 decimal places. Non-finite values
// are returned unchanged.
func RoundFee(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
