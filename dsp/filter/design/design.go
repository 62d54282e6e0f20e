package design

import (
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
)

// ButterworthQ is the quality factor of a second-order Butterworth section.
const ButterworthQ = 1 / math.Sqrt2

// Bell designs a peaking filter with linear gain at freq (Hz). A gain above
// 1 widens the numerator bandwidth, a gain below 1 the denominator one, so
// boost and cut with reciprocal gains are exact inverses.
func Bell(freq, q, gain, sampleRate float64) biquad.Coefficients {
	c, ok := prewarp(freq, sampleRate)
	if !ok || !validGain(gain) {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	phi := c * c
	kNum := c / q
	kDen := kNum

	if gain > 1 {
		kNum *= gain
	} else if gain < 1 {
		kDen /= gain
	}

	return normalizeBiquad(
		phi+kNum+1, 2*(1-phi), phi-kNum+1,
		phi+kDen+1, 2*(1-phi), phi-kDen+1,
	)
}

// Notch designs a notch centered at freq (Hz).
func Notch(freq, q, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	sw, cw := math.Sincos(w0)
	alpha := sw / (2 * q)

	return normalizeBiquad(1, -2*cw, 1, 1+alpha, -2*cw, 1-alpha)
}

// LowShelf designs a low shelf whose low-frequency gain is gain.
func LowShelf(freq, q, gain, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !validGain(gain) {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	a := math.Sqrt(gain)
	sw, cw := math.Sincos(w0)
	beta := math.Sqrt(a) / q * sw

	b0 := a * ((a + 1) - (a-1)*cw + beta)
	b1 := 2 * a * ((a - 1) - (a+1)*cw)
	b2 := a * ((a + 1) - (a-1)*cw - beta)
	a0 := (a + 1) + (a-1)*cw + beta
	a1 := -2 * ((a - 1) + (a+1)*cw)
	a2 := (a + 1) + (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// HighShelf designs a high shelf whose high-frequency gain is gain.
func HighShelf(freq, q, gain, sampleRate float64) biquad.Coefficients {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok || !validGain(gain) {
		return biquad.Coefficients{}
	}

	q = normalizedQ(q)
	a := math.Sqrt(gain)
	sw, cw := math.Sincos(w0)
	beta := math.Sqrt(a) / q * sw

	b0 := a * ((a + 1) + (a-1)*cw + beta)
	b1 := -2 * a * ((a - 1) + (a+1)*cw)
	b2 := a * ((a + 1) + (a-1)*cw - beta)
	a0 := (a + 1) - (a-1)*cw + beta
	a1 := 2 * ((a - 1) - (a+1)*cw)
	a2 := (a + 1) - (a-1)*cw - beta

	return normalizeBiquad(b0, b1, b2, a0, a1, a2)
}

// Lowpass designs a second-order lowpass at freq (Hz).
func Lowpass(freq, q, sampleRate float64) biquad.Coefficients {
	c, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	phi := c * c
	k := c / normalizedQ(q)

	return normalizeBiquad(1, 2, 1, phi+k+1, 2*(1-phi), phi-k+1)
}

// Highpass designs a second-order highpass at freq (Hz).
func Highpass(freq, q, sampleRate float64) biquad.Coefficients {
	c, ok := prewarp(freq, sampleRate)
	if !ok {
		return biquad.Coefficients{}
	}

	phi := c * c
	k := c / normalizedQ(q)

	return normalizeBiquad(phi, -2*phi, phi, phi+k+1, 2*(1-phi), phi-k+1)
}

// OnePole holds the coefficients of y = B0*x + B1*x[n-1] - A1*y[n-1].
type OnePole struct {
	B0, B1, A1 float64
}

// OnePoleLowpass designs a bilinear first-order lowpass at freq (Hz). It has
// unity gain at DC and a zero at Nyquist.
func OnePoleLowpass(freq, sampleRate float64) OnePole {
	c, ok := prewarp(freq, sampleRate)
	if !ok {
		return OnePole{}
	}

	a0 := c + 1

	return OnePole{B0: 1 / a0, B1: 1 / a0, A1: (1 - c) / a0}
}

// Biquad returns the first-order filter as a biquad section with B2 = A2 = 0.
func (p OnePole) Biquad() biquad.Coefficients {
	return biquad.Coefficients{B0: p.B0, B1: p.B1, A1: p.A1}
}

func prewarp(freq, sampleRate float64) (float64, bool) {
	w0, ok := normalizedW0(freq, sampleRate)
	if !ok {
		return 0, false
	}

	return 1 / math.Tan(w0/2), true
}

func normalizedW0(freq, sampleRate float64) (float64, bool) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, false
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return 0, false
	}

	return 2 * math.Pi * freq / sampleRate, true
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return ButterworthQ
	}

	return q
}

func validGain(g float64) bool {
	return g > 0 && !math.IsInf(g, 0)
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) biquad.Coefficients {
	if a0 == 0 || math.IsNaN(a0) || math.IsInf(a0, 0) {
		return biquad.Coefficients{}
	}

	return biquad.Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
