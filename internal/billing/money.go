package billing

import "math"

// ToNumber coerces a value to a finite number. NaN and infinities become 0 so
// downstream arithmetic never propagates them.
func ToNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Round2 rounds to two decimal places, half away from zero on the cents
// value. Never returns a non-finite number.
func Round2(v float64) float64 {
	return math.Round(ToNumber(v)*100) / 100
}
