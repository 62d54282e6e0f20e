package spectrum

import (
	"errors"
	"fmt"
	"math"
	"sort"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-nldsp/dsp/core"
)

// FloorDB is the lowest level reported by the dB helpers.
const FloorDB = -200.0

// ErrFFTSize is returned for FFT sizes that are not a power of two or are
// shorter than the impulse response.
var ErrFFTSize = errors.New("spectrum: invalid fft size")

// Bin is one point of a magnitude response.
type Bin struct {
	Freq float64 // Hz
	Mag  float64 // linear magnitude
	DB   float64 // 20 log10(Mag), floored at FloorDB
}

// FIRResponse returns the magnitude response of h on the fftSize/2+1 bins
// from DC to Nyquist. h is zero-padded to fftSize.
func FIRResponse(h []float64, fftSize int, sampleRate float64) ([]Bin, error) {
	if err := core.ValidateSampleRate("spectrum", sampleRate); err != nil {
		return nil, err
	}

	if fftSize < 2 || fftSize&(fftSize-1) != 0 || fftSize < len(h) {
		return nil, fmt.Errorf("%w: %d for %d taps", ErrFFTSize, fftSize, len(h))
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum: fft plan: %w", err)
	}

	in := make([]complex128, fftSize)
	for i, v := range h {
		in[i] = complex(v, 0)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return nil, fmt.Errorf("spectrum: fft: %w", err)
	}

	n := fftSize/2 + 1
	mag := Magnitude(out[:n])
	bins := make([]Bin, n)

	for k := range bins {
		bins[k] = Bin{
			Freq: float64(k) * sampleRate / float64(fftSize),
			Mag:  mag[k],
			DB:   ToDB(mag[k]),
		}
	}

	return bins, nil
}

// Magnitude returns |X[k]| for each bin.
func Magnitude(in []complex128) []float64 {
	if len(in) == 0 {
		return nil
	}

	re := make([]float64, len(in))
	im := make([]float64, len(in))

	for i, c := range in {
		re[i] = real(c)
		im[i] = imag(c)
	}

	out := make([]float64, len(in))
	vecmath.Magnitude(out, re, im)

	return out
}

// ToDB converts a linear magnitude to dB, floored at FloorDB.
func ToDB(mag float64) float64 {
	if mag <= 0 {
		return FloorDB
	}

	return max(20*math.Log10(mag), FloorDB)
}

// At returns the dB level of bins at each query frequency by linear
// interpolation between neighbouring bins.
func At(bins []Bin, freqs []float64) ([]float64, error) {
	x := make([]float64, len(bins))
	y := make([]float64, len(bins))

	for i, b := range bins {
		x[i] = b.Freq
		y[i] = b.DB
	}

	return InterpolateLinear(x, y, freqs)
}

// OctaveCenters returns the ISO octave-band centre frequencies 31.25 Hz to
// 16 kHz that lie below nyquist.
func OctaveCenters(nyquist float64) []float64 {
	var out []float64
	for f := 31.25; f <= 16000 && f < nyquist; f *= 2 {
		out = append(out, f)
	}

	return out
}

// InterpolateLinear performs piecewise-linear interpolation at queryX.
//
// x must be strictly increasing and have the same length as y.
func InterpolateLinear(x, y, queryX []float64) ([]float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("interpolate requires non-empty x and y")
	}

	if len(x) != len(y) {
		return nil, fmt.Errorf("interpolate x/y length mismatch: %d != %d", len(x), len(y))
	}

	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("interpolate x must be strictly increasing at index %d", i)
		}
	}

	out := make([]float64, len(queryX))
	for i, q := range queryX {
		if q <= x[0] {
			out[i] = y[0]
			continue
		}

		if q >= x[len(x)-1] {
			out[i] = y[len(y)-1]
			continue
		}

		j := sort.SearchFloat64s(x, q)
		x0, x1 := x[j-1], x[j]
		t := (q - x0) / (x1 - x0)
		out[i] = y[j-1] + t*(y[j]-y[j-1])
	}

	return out, nil
}

// SmoothBins applies 1/fraction-octave smoothing to the dB values of bins,
// skipping the DC bin, and returns a new slice.
func SmoothBins(bins []Bin, fraction int) ([]Bin, error) {
	if len(bins) < 2 {
		return nil, fmt.Errorf("fractional-octave smoothing requires at least 2 bins")
	}

	freqs := make([]float64, len(bins)-1)
	vals := make([]float64, len(bins)-1)

	for i, b := range bins[1:] {
		freqs[i] = b.Freq
		vals[i] = b.Mag
	}

	smoothed, err := SmoothFractionalOctave(freqs, vals, fraction)
	if err != nil {
		return nil, err
	}

	out := make([]Bin, len(bins))
	out[0] = bins[0]

	for i, m := range smoothed {
		out[i+1] = Bin{Freq: freqs[i], Mag: m, DB: ToDB(m)}
	}

	return out, nil
}

// SmoothFractionalOctave applies 1/N-octave smoothing on linear-domain
// values using the arithmetic mean over each fractional-octave band.
//
// freqHz and values must have equal length and freqHz must be strictly
// increasing with positive values.
func SmoothFractionalOctave(freqHz, values []float64, fraction int) ([]float64, error) {
	if len(freqHz) == 0 || len(values) == 0 {
		return nil, fmt.Errorf("fractional-octave smoothing requires non-empty inputs")
	}

	if len(freqHz) != len(values) {
		return nil, fmt.Errorf("fractional-octave input length mismatch: %d != %d", len(freqHz), len(values))
	}

	if fraction <= 0 {
		return nil, fmt.Errorf("fractional-octave fraction must be > 0: %d", fraction)
	}

	for i := range freqHz {
		if freqHz[i] <= 0 {
			return nil, fmt.Errorf("fractional-octave frequencies must be > 0 at index %d", i)
		}

		if i > 0 && !(freqHz[i] > freqHz[i-1]) {
			return nil, fmt.Errorf("fractional-octave frequencies must be strictly increasing at index %d", i)
		}
	}

	out := make([]float64, len(values))
	halfBand := math.Pow(2, 1/(2*float64(fraction)))

	for i, f := range freqHz {
		fLo := f / halfBand
		fHi := f * halfBand

		i0 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] >= fLo })
		i1 := sort.Search(len(freqHz), func(k int) bool { return freqHz[k] > fHi })

		sum := 0.0
		for j := i0; j < i1; j++ {
			sum += values[j]
		}

		out[i] = sum / float64(i1-i0)
	}

	return out, nil
}
