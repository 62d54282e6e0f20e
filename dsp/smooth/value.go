package smooth

import "math"

// Law selects the interpolation used by a Value.
type Law int

const (
	// Linear ramps by a constant increment.
	Linear Law = iota
	// Multiplicative ramps by a constant ratio. Values must stay > 0.
	Multiplicative
)

// Value is a per-sample smoothed parameter.
type Value struct {
	law       Law
	steps     int
	current   float64
	target    float64
	remaining int
	step      float64
}

// New returns a Value settled at initial that ramps over steps samples.
func New(law Law, steps int, initial float64) *Value {
	v := &Value{law: law}
	v.SetSteps(steps)
	v.Reset(initial)

	return v
}

// SetSteps sets the ramp length used by subsequent SetTarget calls.
// The value jumps to its target if a ramp is in flight.
func (v *Value) SetSteps(steps int) {
	if steps < 0 {
		steps = 0
	}

	v.steps = steps
	v.Reset(v.target)
}

// Steps returns the configured ramp length.
func (v *Value) Steps() int { return v.steps }

// Reset sets current and target to x with no ramp.
func (v *Value) Reset(x float64) {
	v.current = x
	v.target = x
	v.remaining = 0
	v.step = 0
}

// SetTarget schedules a ramp from the current value to x. A target equal
// to the current value ends any ramp in progress.
func (v *Value) SetTarget(x float64) {
	if x == v.target {
		return
	}

	if x == v.current || v.steps == 0 {
		v.Reset(x)
		return
	}

	v.target = x
	v.remaining = v.steps

	switch v.law {
	case Multiplicative:
		if v.current <= 0 || x <= 0 {
			v.Reset(x)
			return
		}

		v.step = math.Exp((math.Log(x) - math.Log(v.current)) / float64(v.remaining))
	default:
		v.step = (x - v.current) / float64(v.remaining)
	}
}

// Next advances one sample and returns the new value.
func (v *Value) Next() float64 {
	if v.remaining == 0 {
		return v.target
	}

	v.remaining--
	if v.remaining == 0 {
		v.current = v.target
		return v.current
	}

	if v.law == Multiplicative {
		v.current *= v.step
	} else {
		v.current += v.step
	}

	return v.current
}

// Skip advances n samples at once and returns the resulting value.
func (v *Value) Skip(n int) float64 {
	if n >= v.remaining {
		v.current = v.target
		v.remaining = 0

		return v.current
	}

	v.remaining -= n
	if v.law == Multiplicative {
		v.current *= math.Pow(v.step, float64(n))
	} else {
		v.current += v.step * float64(n)
	}

	return v.current
}

// IsRamping reports whether Next would still change the value.
func (v *Value) IsRamping() bool { return v.remaining > 0 }

// Current returns the value last produced.
func (v *Value) Current() float64 { return v.current }

// Target returns the value being ramped to.
func (v *Value) Target() float64 { return v.target }
