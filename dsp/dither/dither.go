// Package dither converts float samples to integer PCM codes with optional
// dither noise and error-feedback noise shaping.
package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
)

// Kind is the probability density of the dither noise.
type Kind int

const (
	// None rounds without noise.
	None Kind = iota
	// Rectangular adds uniform noise of +-0.5 LSB peak (RPDF).
	Rectangular
	// Triangular adds the sum of two uniform draws, +-1 LSB peak (TPDF).
	Triangular
)

var kindNames = [...]string{"none", "rpdf", "tpdf"}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= None && k <= Triangular }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind maps "none", "rpdf" or "tpdf" (case-insensitive) to a Kind.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range kindNames {
		if s == n {
			return Kind(i), nil
		}
	}

	return None, fmt.Errorf("dither kind is invalid: %q", name)
}

const (
	minBitDepth = 2
	maxBitDepth = 32
	maxShaping  = 16
)

// FirstOrder feeds back the previous error once, pushing the noise floor
// toward Nyquist with a (1 - z^-1) slope.
var FirstOrder = []float64{1}

// Option configures a Quantizer.
type Option func(*config) error

type config struct {
	kind    Kind
	seed    uint64
	shaping []float64
}

func defaultConfig() config {
	return config{kind: Triangular, seed: 1}
}

// WithKind sets the noise density. Default Triangular.
func WithKind(k Kind) Option {
	return func(cfg *config) error {
		if !k.Valid() {
			return fmt.Errorf("dither kind is invalid: %d", k)
		}

		cfg.kind = k

		return nil
	}
}

// WithSeed seeds the noise generator. Default 1.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithShaping sets the error-feedback coefficients; coeffs[i] weighs the
// error i+1 samples back. Empty disables shaping.
func WithShaping(coeffs []float64) Option {
	return func(cfg *config) error {
		if len(coeffs) > maxShaping {
			return fmt.Errorf("dither shaping order must be <= %d: %d", maxShaping, len(coeffs))
		}

		cfg.shaping = append([]float64(nil), coeffs...)

		return nil
	}
}

// Quantizer maps samples in [-1, 1] to signed integer codes of a fixed bit
// depth. Full scale is 2^(bits-1); codes are clipped to
// [-2^(bits-1), 2^(bits-1)-1]. One Quantizer serves one channel.
type Quantizer struct {
	kind    Kind
	scale   float64
	rng     *rand.Rand
	coeffs  []float64
	history []float64 // history[0] is the latest error
}

// New creates a Quantizer for bitDepth in [2, 32].
func New(bitDepth int, opts ...Option) (*Quantizer, error) {
	if bitDepth < minBitDepth || bitDepth > maxBitDepth {
		return nil, fmt.Errorf("dither bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bitDepth)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Quantizer{
		kind:    cfg.kind,
		scale:   math.Ldexp(1, bitDepth-1),
		rng:     rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15)),
		coeffs:  cfg.shaping,
		history: make([]float64, len(cfg.shaping)),
	}, nil
}

// Kind returns the noise density.
func (q *Quantizer) Kind() Kind { return q.kind }

// Quantize returns the integer code for x. NaN maps to 0 and leaves the
// shaping state untouched.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) {
		return 0
	}

	v := x * q.scale
	for i, c := range q.coeffs {
		v -= c * q.history[i]
	}

	code := math.Round(v + q.noise())
	code = math.Max(-q.scale, math.Min(q.scale-1, code))

	if len(q.history) > 0 {
		copy(q.history[1:], q.history)
		q.history[0] = code - v
	}

	return int(code)
}

// Reset clears the shaping history. The noise sequence continues.
func (q *Quantizer) Reset() {
	clear(q.history)
}

func (q *Quantizer) noise() float64 {
	switch q.kind {
	case Rectangular:
		return q.rng.Float64() - 0.5
	case Triangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
