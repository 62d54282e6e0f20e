// Package window generates the tapers used before spectral analysis of
// processed signals.
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	Rectangular Type = iota
	Hann
	Hamming
	Blackman
	BlackmanHarris
)

var typeNames = [...]string{"rectangular", "hann", "hamming", "blackman", "blackmanharris"}

// cosineTerms are the generalized cosine coefficients a0, a1, ... of each
// window: w(x) = a0 - a1 cos(2 pi x) + a2 cos(4 pi x) - ...
var cosineTerms = [...][]float64{
	Rectangular:    {1},
	Hann:           {0.5, 0.5},
	Hamming:        {0.54, 0.46},
	Blackman:       {0.42, 0.5, 0.08},
	BlackmanHarris: {0.35875, 0.48829, 0.14128, 0.01168},
}

// Valid reports whether t is a known window.
func (t Type) Valid() bool { return t >= Rectangular && t <= BlackmanHarris }

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeNames[t]
}

// ParseType maps a case-insensitive name to a Type.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range typeNames {
		if s == n {
			return Type(i), nil
		}
	}

	return Hann, fmt.Errorf("window type is invalid: %q", name)
}

// Generate returns length coefficients of window t. Periodic windows are
// sampled over length+1 points with the last one dropped, which is the
// framing FFT analysis expects. An invalid type yields a rectangular window.
func Generate(t Type, length int, periodic bool) []float64 {
	if length <= 0 {
		return nil
	}

	if !t.Valid() {
		t = Rectangular
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	den := float64(length - 1)
	if periodic {
		den = float64(length)
	}

	terms := cosineTerms[t]
	for n := range out {
		x := float64(n) / den
		sign := 1.0
		v := 0.0

		for k, a := range terms {
			v += sign * a * math.Cos(2*math.Pi*float64(k)*x)
			sign = -sign
		}

		out[n] = v
	}

	return out
}

// Apply multiplies buf in place by a symmetric window of its length.
func Apply(t Type, buf []float64) {
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), false))
}

// CoherentGain returns the mean of coeffs, the amplitude scale a windowed
// sinusoid picks up.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}
