package hysteresis

import "math"

const (
	// alpha is the mean-field coupling between domains.
	alpha = 1.6e-3
	// coercivity is the pinning constant k.
	coercivity = 30*0.015625 + 0.01
	// langevinEps switches L and L' to their series limits near zero.
	langevinEps = 1e-4
)

// langevin is L(x) = coth(x) - 1/x.
func langevin(x float64) float64 {
	if math.Abs(x) > langevinEps {
		return 1/math.Tanh(x) - 1/x
	}

	return x / 3
}

// langevinDeriv is L'(x) = 1/x^2 - coth(x)^2 + 1.
func langevinDeriv(x float64) float64 {
	if math.Abs(x) > langevinEps {
		coth := 1 / math.Tanh(x)
		return 1/(x*x) - coth*coth + 1
	}

	return 1.0 / 3
}

// Model is the Jiles-Atherton state for one channel.
type Model struct {
	t      float64
	dAlpha float64

	ms float64 // saturation magnetisation
	a  float64 // anhysteretic shape
	c  float64 // reversibility

	m1, h1, hd1 float64
}

// NewModel returns a model for sampleRate with alpha-transform parameter
// dAlpha in (0, 1].
func NewModel(sampleRate, dAlpha float64) *Model {
	m := &Model{dAlpha: dAlpha}
	m.SetSampleRate(sampleRate)
	m.Cook(defaultDrive, defaultWidth, defaultSaturation)

	return m
}

// SetSampleRate sets the integration step.
func (m *Model) SetSampleRate(sampleRate float64) {
	m.t = 1 / sampleRate
}

// Cook maps drive, width and saturation in [0, 1] to the model constants.
func (m *Model) Cook(drive, width, sat float64) {
	m.ms = 0.5 + 1.5*(1-sat)
	m.a = m.ms / (0.01 + 6*drive)
	m.c = math.Sqrt(1-width) - 0.01
}

// Reset clears the magnetisation and field history.
func (m *Model) Reset() {
	m.m1, m.h1, m.hd1 = 0, 0, 0
}

// Magnetisation returns the last output.
func (m *Model) Magnetisation() float64 { return m.m1 }

// Process advances the model by one sample of field h and returns M.
// A non-finite step resets M to zero.
func (m *Model) Process(h float64) float64 {
	hd := m.derivative(h)

	k1 := m.t * m.dMdt(m.m1, m.h1, m.hd1)
	k2 := m.t * m.dMdt(m.m1+k1/2, (h+m.h1)/2, (hd+m.hd1)/2)
	out := m.m1 + k2

	if math.IsNaN(out) || math.IsInf(out, 0) {
		out = 0
	}

	m.m1 = out
	m.h1 = h
	m.hd1 = hd

	return out
}

func (m *Model) derivative(h float64) float64 {
	return (1+m.dAlpha)/m.t*(h-m.h1) - m.dAlpha*m.hd1
}

func (m *Model) dMdt(mag, h, hd float64) float64 {
	q := (h + alpha*mag) / m.a
	mDiff := m.ms*langevin(q) - mag
	lPrime := langevinDeriv(q)

	delta := -1.0
	if hd > 0 {
		delta = 1
	}

	deltaM := 0.0
	if (delta > 0 && mDiff > 0) || (delta < 0 && mDiff < 0) {
		deltaM = 1
	}

	msOverA := m.ms / m.a
	denominator := 1 - m.c*alpha*msOverA*lPrime

	t1 := (1 - m.c) * deltaM * mDiff / ((1-m.c)*delta*coercivity - alpha*mDiff) * hd
	t2 := m.c * msOverA * hd * lPrime

	return (t1 + t2) / denominator
}
