package util

import (
	"math/rand"
	"time"
)

// NewRand returns a random source for seed. A zero seed draws one from the
// clock, so output differs run to run.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// RandomFloat returns a random float64 between min and max
func RandomFloat(rng *rand.Rand, min, max float64) float64 {
	return min + rng.Float64()*(max-min)
}

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp restricts a value to be between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// ClampInt restricts an integer to be between min and max
func ClampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Scaled returns v multiplied by ratio, rounded down and never below one.
// Used for pixel-ratio and fractional render-target sizes.
func Scaled(v int, ratio float64) int {
	s := int(float64(v) * ratio)
	if s < 1 {
		return 1
	}
	return s
}
