package fir

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// ErrLengthMismatch is returned when a coefficient slice does not match the filter order.
var ErrLengthMismatch = errors.New("fir: coefficient length does not match order")

// Filter implements y[n] = sum_{m=0}^{N-1} h[m] * z[(zPtr-m) mod N] over a
// circular history of N samples.
//
// The history is stored twice, newest first, so that the N most recent
// samples are always one contiguous window and the correlation is a single
// dot product.
type Filter struct {
	h       []float64
	hist    []float64
	pos     int
	scratch []float64
}

// New creates a filter with order taps, all zero.
func New(order int) (*Filter, error) {
	if order < 1 {
		return nil, fmt.Errorf("fir order must be >= 1: %d", order)
	}

	return &Filter{
		h:       make([]float64, order),
		hist:    make([]float64, 2*order),
		scratch: make([]float64, order),
	}, nil
}

// NewIdentity creates a filter whose first tap is 1, so it passes its input unchanged.
func NewIdentity(order int) (*Filter, error) {
	f, err := New(order)
	if err != nil {
		return nil, err
	}

	f.h[0] = 1

	return f, nil
}

// NewFromCoefficients creates a filter from a copy of h.
func NewFromCoefficients(h []float64) (*Filter, error) {
	f, err := New(len(h))
	if err != nil {
		return nil, err
	}

	copy(f.h, h)

	return f, nil
}

// OrderForSampleRate scales a tap count defined at 44.1 kHz so the filter
// spans the same time at sampleRate.
func OrderForSampleRate(baseOrder int, sampleRate float64) int {
	return baseOrder * core.FsFactor(sampleRate)
}

// Order returns the number of taps N.
func (f *Filter) Order() int {
	return len(f.h)
}

// SetCoefficients replaces the taps with a copy of h. History is kept.
func (f *Filter) SetCoefficients(h []float64) error {
	if len(h) != len(f.h) {
		return fmt.Errorf("%w: got %d, want %d", ErrLengthMismatch, len(h), len(f.h))
	}

	copy(f.h, h)

	return nil
}

// SetIdentity sets h = [1, 0, 0, ...].
func (f *Filter) SetIdentity() {
	core.Zero(f.h)
	f.h[0] = 1
}

// Coefficients returns a copy of the taps.
func (f *Filter) Coefficients() []float64 {
	c := make([]float64, len(f.h))
	copy(c, f.h)
	return c
}

// Taps returns the live tap slice. Callers must treat it as read-only.
func (f *Filter) Taps() []float64 {
	return f.h
}

// Write stores x at the current write position without advancing it.
func (f *Filter) Write(x float64) {
	n := len(f.h)
	p := n - 1 - f.pos
	f.hist[p] = x
	f.hist[p+n] = x
}

// Window returns the N most recent samples, newest first:
// Window()[m] == z[(zPtr-m) mod N]. The slice aliases internal state.
func (f *Filter) Window() []float64 {
	n := len(f.h)
	p := n - 1 - f.pos
	return f.hist[p : p+n]
}

// Output correlates the taps with the current window.
func (f *Filter) Output() float64 {
	return vecmath.DotProduct(f.h, f.Window())
}

// OutputWith correlates an external tap set of the same order with the window.
func (f *Filter) OutputWith(taps []float64) float64 {
	return vecmath.DotProduct(taps, f.Window())
}

// Adapt performs h[m] += step * z[(zPtr-m) mod N] for every tap.
func (f *Filter) Adapt(step float64) {
	vecmath.ScaleBlock(f.scratch, f.Window(), step)
	vecmath.AddBlockInPlace(f.h, f.scratch)
}

// Advance moves the write position forward by one sample.
func (f *Filter) Advance() {
	f.pos++
	if f.pos >= len(f.h) {
		f.pos = 0
	}
}

// Position returns the current write position, always in [0, Order()).
func (f *Filter) Position() int {
	return f.pos
}

// ProcessSample filters one input sample.
//
//	y[n] = sum_{m=0}^{N-1} h[m] * x[n-m]
func (f *Filter) ProcessSample(x float64) float64 {
	f.Write(x)
	y := f.Output()
	f.Advance()

	return y
}

// ProcessBlock filters a block of samples in-place.
func (f *Filter) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

// ProcessBypassed feeds buf into the history without computing output, so a
// filter switched back in resumes with a warm history.
func (f *Filter) ProcessBypassed(buf []float64) {
	for _, x := range buf {
		f.Write(x)
		f.Advance()
	}
}

// Reset clears the history and write position. Taps are kept.
func (f *Filter) Reset() {
	core.Zero(f.hist)
	f.pos = 0
}

// Response computes the complex frequency response H(e^{jw}) at freqHz.
func (f *Filter) Response(freqHz, sampleRate float64) complex128 {
	w := 2 * math.Pi * freqHz / sampleRate
	var h complex128
	for k, c := range f.h {
		h += complex(c, 0) * cmplx.Exp(complex(0, -w*float64(k)))
	}
	return h
}

// MagnitudeDB returns the magnitude response in dB at the given frequency.
func (f *Filter) MagnitudeDB(freqHz, sampleRate float64) float64 {
	return 20 * math.Log10(cmplx.Abs(f.Response(freqHz, sampleRate)))
}
