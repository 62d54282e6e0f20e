package shaper

import (
	"fmt"
	"math"
	"strings"
)

// WaveKind selects the periodic function a Wavefolder subtracts. The wave
// is a function of the input amplitude, not of time.
type WaveKind int

const (
	// Zero disables folding.
	Zero WaveKind = iota
	// Triangle is a unit triangle wave.
	Triangle
	// Sine is a unit sine.
	Sine
)

var waveNames = [...]string{"zero", "triangle", "sine"}

// Valid reports whether w is a known wave.
func (w WaveKind) Valid() bool {
	return w >= Zero && w <= Sine
}

func (w WaveKind) String() string {
	if !w.Valid() {
		return fmt.Sprintf("WaveKind(%d)", int(w))
	}

	return waveNames[w]
}

// ParseWaveKind maps a case-insensitive name to a WaveKind.
func ParseWaveKind(name string) (WaveKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range waveNames {
		if s == n {
			return WaveKind(i), nil
		}
	}

	return Zero, fmt.Errorf("wave kind is invalid: %q", name)
}

// Wave evaluates the wave at amplitude x. freq in (0, 1] is the fold rate
// as a fraction of Nyquist; the period in x is 2/freq.
func Wave(kind WaveKind, x, freq float64) float64 {
	switch kind {
	case Sine:
		return math.Sin(math.Pi * freq * x)
	case Triangle:
		p := 2 / freq
		x += p / 4
		return 4*math.Abs(x/p-math.Floor(x/p+0.5)) - 1
	default:
		return 0
	}
}
