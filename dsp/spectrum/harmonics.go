package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/window"
)

// Goertzel evaluates a single DFT bin over the samples fed to it since the
// last Reset.
type Goertzel struct {
	frequency  float64
	sampleRate float64
	coeff      float64
	s0, s1     float64
}

// NewGoertzel creates an analyzer for frequency in [0, sampleRate/2].
func NewGoertzel(frequency, sampleRate float64) (*Goertzel, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("goertzel: sample rate must be > 0: %v", sampleRate)
	}

	if frequency < 0 || frequency > sampleRate/2 || math.IsNaN(frequency) {
		return nil, fmt.Errorf("goertzel: frequency must be between 0 and sampleRate/2: %v", frequency)
	}

	return &Goertzel{
		frequency:  frequency,
		sampleRate: sampleRate,
		coeff:      2 * math.Cos(2*math.Pi*frequency/sampleRate),
	}, nil
}

// Reset clears the internal state.
func (g *Goertzel) Reset() {
	g.s0, g.s1 = 0, 0
}

// ProcessBlock accumulates input.
func (g *Goertzel) ProcessBlock(input []float64) {
	s0, s1 := g.s0, g.s1

	for _, x := range input {
		s := x + g.coeff*s0 - s1
		s1 = s0
		s0 = s
	}

	g.s0, g.s1 = s0, s1
}

// Power returns |X[k]|^2 for the accumulated block.
func (g *Goertzel) Power() float64 {
	return g.s0*g.s0 + g.s1*g.s1 - g.coeff*g.s0*g.s1
}

// Magnitude returns |X[k]| for the accumulated block.
func (g *Goertzel) Magnitude() float64 {
	return math.Sqrt(max(g.Power(), 0))
}

// Frequency returns the analysed frequency.
func (g *Goertzel) Frequency() float64 { return g.frequency }

// Harmonics is the harmonic content of a processed sine.
type Harmonics struct {
	Fundamental float64   // Hz
	Levels      []float64 // amplitude of harmonic h at index h-1
	THD         float64   // sqrt(sum of harmonics 2..n squared) / fundamental
}

// DB returns the level of harmonic h (1 is the fundamental) relative to
// the fundamental.
func (h Harmonics) DB(harmonic int) float64 {
	if harmonic < 1 || harmonic > len(h.Levels) || h.Levels[0] <= 0 {
		return FloorDB
	}

	return ToDB(h.Levels[harmonic-1] / h.Levels[0])
}

// AnalyzeHarmonics measures the amplitude of the first n harmonics of f0
// in signal with a Blackman-Harris window. Harmonics above Nyquist are
// reported as zero.
func AnalyzeHarmonics(signal []float64, f0, sampleRate float64, n int) (Harmonics, error) {
	if len(signal) == 0 {
		return Harmonics{}, fmt.Errorf("harmonics: empty signal")
	}

	if n < 1 {
		return Harmonics{}, fmt.Errorf("harmonics: count must be >= 1: %d", n)
	}

	coeffs := window.Generate(window.BlackmanHarris, len(signal), false)
	scale := 2 / (window.CoherentGain(coeffs) * float64(len(signal)))

	windowed := make([]float64, len(signal))
	for i, x := range signal {
		windowed[i] = x * coeffs[i]
	}

	res := Harmonics{Fundamental: f0, Levels: make([]float64, n)}

	for h := 1; h <= n; h++ {
		f := f0 * float64(h)
		if f >= sampleRate/2 {
			break
		}

		g, err := NewGoertzel(f, sampleRate)
		if err != nil {
			return Harmonics{}, err
		}

		g.ProcessBlock(windowed)
		res.Levels[h-1] = g.Magnitude() * scale
	}

	if res.Levels[0] > 0 {
		sum := 0.0
		for _, l := range res.Levels[1:] {
			sum += l * l
		}

		res.THD = math.Sqrt(sum) / res.Levels[0]
	}

	return res, nil
}
