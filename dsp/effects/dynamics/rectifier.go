package dynamics

import (
	"fmt"
	"math"
	"strings"
)

// Diode rectifier constants: a Shockley-style exponential with thermal
// voltage 25.9 mV.
const (
	diodeAlpha = 0.05 / 0.0259
	diodeBeta  = 0.2
	diodeGain  = 25.0
)

// Rectifier selects the nonlinearity a Follower applies before smoothing.
type Rectifier int

const (
	// FullWave is |x|.
	FullWave Rectifier = iota
	// HalfWave is 2*max(x, 0).
	HalfWave
	// Diode is 25*0.2*(exp(x*0.05/0.0259) - 1).
	Diode
)

var rectifierNames = [...]string{"fullwave", "halfwave", "diode"}

// Valid reports whether r is a known rectifier.
func (r Rectifier) Valid() bool {
	return r >= FullWave && r <= Diode
}

func (r Rectifier) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Rectifier(%d)", int(r))
	}

	return rectifierNames[r]
}

// ParseRectifier maps a case-insensitive name to a Rectifier.
func ParseRectifier(name string) (Rectifier, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range rectifierNames {
		if s == n {
			return Rectifier(i), nil
		}
	}

	return FullWave, fmt.Errorf("rectifier is invalid: %q", name)
}

// Apply evaluates the rectifier at x.
func (r Rectifier) Apply(x float64) float64 {
	switch r {
	case HalfWave:
		if x > 0 {
			return 2 * x
		}

		return 0
	case Diode:
		return diodeGain * diodeBeta * (math.Exp(diodeAlpha*x) - 1)
	default:
		return math.Abs(x)
	}
}

// cutoffScale maps the user cutoff to the filter cutoff so the ripple of
// each rectifier is smoothed comparably.
func (r Rectifier) cutoffScale() float64 {
	switch r {
	case HalfWave:
		return 0.5
	case Diode:
		return 0.1
	default:
		return 2
	}
}
