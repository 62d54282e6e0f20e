package saturate

import (
	"fmt"
	"math"
	"strings"
)

// Kind selects a saturating transfer function.
type Kind int

const (
	// None is the identity.
	None Kind = iota
	// Hard clips to [-1, 1].
	Hard
	// Soft is the cubic 1.5*(x - x^3/3), clipped to [-1, 1] outside |x| > 1.
	Soft
	// Tanh is the hyperbolic tangent.
	Tanh
	// Asinh is the inverse hyperbolic sine. It is unbounded but grows only logarithmically.
	Asinh
)

var kindNames = [...]string{"none", "hard", "soft", "tanh", "asinh"}

// Kinds returns every saturator kind in declaration order.
func Kinds() []Kind {
	return []Kind{None, Hard, Soft, Tanh, Asinh}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= None && k <= Asinh
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}

	return None, fmt.Errorf("saturator kind is invalid: %q", name)
}

// FromIndex clamps a numeric parameter (as delivered by a host) to a Kind.
func FromIndex(v float64) Kind {
	k := Kind(int(math.Round(v)))
	if !k.Valid() {
		return None
	}

	return k
}

// Apply evaluates the saturator selected by kind at x.
func Apply(kind Kind, x float64) float64 {
	switch kind {
	case Hard:
		return hardClip(x)
	case Soft:
		return softClip(x)
	case Tanh:
		return mathTanh(x)
	case Asinh:
		return math.Asinh(x)
	default:
		return x
	}
}

// ApplyBlock saturates buf in place.
func ApplyBlock(kind Kind, buf []float64) {
	if kind == None {
		return
	}

	for i, x := range buf {
		buf[i] = Apply(kind, x)
	}
}

// Drive scales buf by gain, saturates it and scales it back. Small signals
// pass almost unchanged while peaks above 1/gain are shaped.
func Drive(kind Kind, gain float64, buf []float64) {
	if kind == None || gain == 0 {
		return
	}

	inv := 1 / gain
	for i, x := range buf {
		buf[i] = Apply(kind, x*gain) * inv
	}
}

// TanhValue is the package's hyperbolic tangent, fast under the fastmath tag.
func TanhValue(x float64) float64 {
	return mathTanh(x)
}

// Sigmoid is the logistic function 1/(1+e^-x).
func Sigmoid(x float64) float64 {
	return 1 / (1 + mathExp(-x))
}

func hardClip(x float64) float64 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return x
}

func softClip(x float64) float64 {
	if x > 1 {
		return 1
	}

	if x < -1 {
		return -1
	}

	return 1.5 * (x - x*x*x/3)
}
