// Package numerics implements the small set of rounding primitives the
// pipeline relies on for byte-aligned window sizing and display-friendly
// decimal rounding.
package numerics

import "math"

// RoundUp4 returns the smallest multiple of 4 that is >= ceil(x).
// It is used to size sample windows to whole 4-byte (stereo 16-bit) frames.
func RoundUp4(x float64) int64 {
	ceiled := int64(math.Ceil(x))

	return roundToMultipleOf4(ceiled, true)
}

// RoundDown4 returns the largest multiple of 4 that is <= floor(x).
func RoundDown4(x float64) int64 {
	floored := int64(math.Floor(x))

	return roundToMultipleOf4(floored, false)
}

func roundToMultipleOf4(v int64, up bool) int64 {
	rem := v % 4
	if rem == 0 {
		return v
	}

	if rem < 0 {
		rem += 4
	}

	if up {
		return v + (4 - rem)
	}

	return v - rem
}

// RoundFloat rounds x to p decimal places using half-up rounding away from
// zero, matching the original tool's RoundFloat(x, p).
func RoundFloat(x float64, p int) float64 {
	if x == 0 {
		return 0
	}

	scale := math.Pow(10, float64(p))
	sign := 1.0

	if x < 0 {
		sign = -1
		x = -x
	}

	return sign * math.Floor(x*scale+0.5) / scale
}
