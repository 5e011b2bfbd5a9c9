package utils

import "math"

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

// SafeRatio divides num by den, returning 0.0 when the denominator is zero so
// ratio computations never fail a run.
func SafeRatio(num, den float64) float64 {
	if den == 0 {
		return 0.0
	}
	return num / den
}
