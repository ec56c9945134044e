package motion

import "math"

// Clamp restricts a value to a given range.
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Lerp moves a toward b by fraction t.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Round rounds half-way values toward positive infinity, so -2.5 becomes -2.
func Round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundInt is Round returning an int.
func RoundInt(x float64) int {
	return int(Round(x))
}

// SmoothFactor returns the lerp fraction to use for a frame of dt seconds.
// When normalize is false the per-frame factor is returned unchanged.
func SmoothFactor(factor, dt float64, normalize bool) float64 {
	if !normalize || dt <= 0 {
		return factor
	}
	return 1 - math.Pow(1-factor, dt*60)
}
