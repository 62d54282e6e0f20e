package core

import (
	"errors"
	"fmt"
	"math"
)

// ReferenceSampleRate is the rate at which sample-rate-scaled structures
// (FIR orders, smoothing lengths) have their base size.
const ReferenceSampleRate = 44100.0

// ErrInvalidSampleRate is returned for sample rates that are not > 0 and finite.
var ErrInvalidSampleRate = errors.New("sample rate must be > 0 and finite")

// Clamp limits value to the closed interval between lo and hi, in
// either order.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return min(max(value, lo), hi)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// ValidateSampleRate returns a wrapped ErrInvalidSampleRate naming the component.
func ValidateSampleRate(component string, sampleRate float64) error {
	if sampleRate <= 0 || !IsFinite(sampleRate) {
		return fmt.Errorf("%s: %w: %f", component, ErrInvalidSampleRate, sampleRate)
	}

	return nil
}

// CheckRange validates that value lies in [lo, hi] and is finite.
func CheckRange(name string, value, lo, hi float64) error {
	if value < lo || value > hi || !IsFinite(value) {
		return fmt.Errorf("%s must be in [%g, %g]: %f", name, lo, hi, value)
	}

	return nil
}

// FsFactor is the integer ratio of sampleRate to ReferenceSampleRate, at least 1.
// 88.2k and 96k give 2, 176.4k and 192k give 4.
func FsFactor(sampleRate float64) int {
	return max(1, int(sampleRate/ReferenceSampleRate))
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}
