// Package testutil holds reproducible test signals and tolerance checks
// shared by the DSP package tests.
package testutil

import (
	"math"
	"math/rand/v2"
)

// DeterministicSine returns length samples of amplitude*sin(2*pi*f*n/fs).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	w := 2 * math.Pi * freqHz / sampleRate

	for n := range out {
		out[n] = amplitude * math.Sin(w*float64(n))
	}

	return out
}

// DeterministicNoise returns uniform noise in [-amplitude, amplitude).
// The same seed always yields the same samples.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), 0x5eed))
	out := make([]float64, length)

	for n := range out {
		out[n] = amplitude * (2*rng.Float64() - 1)
	}

	return out
}

// WhiteNoise is DeterministicNoise; learning tests read better with it.
func WhiteNoise(seed int64, amplitude float64, length int) []float64 {
	return DeterministicNoise(seed, amplitude, length)
}

// Impulse returns a unit impulse at pos, or silence if pos is out of range.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}

	return out
}

// DC returns length samples of value.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for n := range out {
		out[n] = value
	}

	return out
}
