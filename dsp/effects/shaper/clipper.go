package shaper

import (
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/core"
)

const (
	// adaaTolerance is the input step below which the antiderivative
	// quotient is replaced by the transfer at the midpoint.
	adaaTolerance = 5e-2

	slopeBase = 5.0
	skewBase  = 4.0
)

// ClipperOption mutates construction-time parameters of a DoubleSoftClipper.
type ClipperOption func(*clipperConfig) error

type clipperConfig struct {
	upperLim  float64
	lowerLim  float64
	slope     float64
	width     float64
	upperSkew float64
	lowerSkew float64
}

func defaultClipperConfig() clipperConfig {
	return clipperConfig{upperLim: 1, lowerLim: 1}
}

// WithUpperLimit sets the positive output limit in [0, 1].
func WithUpperLimit(v float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper upper limit", v, 0, 1); err != nil {
			return err
		}

		cfg.upperLim = v

		return nil
	}
}

// WithLowerLimit sets the magnitude of the negative output limit in [0, 1].
func WithLowerLimit(v float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper lower limit", v, 0, 1); err != nil {
			return err
		}

		cfg.lowerLim = v

		return nil
	}
}

// WithSlope sets the slope parameter in [-1, 1], mapped to 5^p.
func WithSlope(p float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper slope", p, -1, 1); err != nil {
			return err
		}

		cfg.slope = p

		return nil
	}
}

// WithWidth sets the width parameter in [0, 1].
func WithWidth(w float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper width", w, 0, 1); err != nil {
			return err
		}

		cfg.width = w

		return nil
	}
}

// WithUpperSkew sets the upper skew parameter in [-1, 1], mapped to 4^p.
func WithUpperSkew(p float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper upper skew", p, -1, 1); err != nil {
			return err
		}

		cfg.upperSkew = p

		return nil
	}
}

// WithLowerSkew sets the lower skew parameter in [-1, 1], mapped to 4^p.
func WithLowerSkew(p float64) ClipperOption {
	return func(cfg *clipperConfig) error {
		if err := core.CheckRange("clipper lower skew", p, -1, 1); err != nil {
			return err
		}

		cfg.lowerSkew = p

		return nil
	}
}

// side is one half of the clipper: a cubic soft clip between 0 and lim
// whose knee is shifted by off and stretched by skew.
type side struct {
	lim  float64 // signed output limit
	off  float64 // input offset, subtracted from x
	skew float64
	base float64 // antiderivative of the knee at u(0)
}

// DoubleSoftClipper is an asymmetric two-sided cubic soft clipper with
// first-order antiderivative antialiasing.
//
// For x > 0 the transfer is 0.75*U*c(s*u) + U/2 with u = (x - xOff)*upperSkew
// and c(v) = v - v^3/3, saturating at 0 and U outside |u| < 1/s. The lower
// half mirrors it toward -L.
type DoubleSoftClipper struct {
	cfg clipperConfig

	slope    float64
	invSlope float64
	upper    side
	lower    side

	x1 float64
	f1 float64
}

// NewDoubleSoftClipper creates a clipper. The defaults (unit limits, zero
// slope, width and skew parameters) give a symmetric clip to [-1, 1].
func NewDoubleSoftClipper(opts ...ClipperOption) (*DoubleSoftClipper, error) {
	cfg := defaultClipperConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &DoubleSoftClipper{cfg: cfg}
	c.update()

	return c, nil
}

// SetUpperLimit sets the positive output limit in [0, 1].
func (c *DoubleSoftClipper) SetUpperLimit(v float64) error { return c.apply(WithUpperLimit(v)) }

// SetLowerLimit sets the magnitude of the negative output limit in [0, 1].
func (c *DoubleSoftClipper) SetLowerLimit(v float64) error { return c.apply(WithLowerLimit(v)) }

// SetSlope sets the slope parameter in [-1, 1].
func (c *DoubleSoftClipper) SetSlope(p float64) error { return c.apply(WithSlope(p)) }

// SetWidth sets the width parameter in [0, 1].
func (c *DoubleSoftClipper) SetWidth(w float64) error { return c.apply(WithWidth(w)) }

// SetUpperSkew sets the upper skew parameter in [-1, 1].
func (c *DoubleSoftClipper) SetUpperSkew(p float64) error { return c.apply(WithUpperSkew(p)) }

// SetLowerSkew sets the lower skew parameter in [-1, 1].
func (c *DoubleSoftClipper) SetLowerSkew(p float64) error { return c.apply(WithLowerSkew(p)) }

// Reset clears the antialiasing history.
func (c *DoubleSoftClipper) Reset() {
	c.x1 = 0
	c.f1 = 0
}

// Transfer evaluates the static nonlinearity.
func (c *DoubleSoftClipper) Transfer(x float64) float64 {
	if x > 0 {
		return c.upperTransfer(x)
	}

	return c.lowerTransfer(x)
}

// Antiderivative evaluates the integral of Transfer from 0 to x.
func (c *DoubleSoftClipper) Antiderivative(x float64) float64 {
	if x > 0 {
		u := (x - c.upper.off) * c.upper.skew
		return (c.knee(u, c.upper.lim, false) - c.upper.base) / c.upper.skew
	}

	v := (x + c.lower.off) * c.lower.skew

	return (c.knee(v, c.lower.lim, true) - c.lower.base) / c.lower.skew
}

// ProcessSample returns the antialiased output for x:
// (F(x) - F(x1)) / (x - x1), or the transfer at the midpoint when the step
// is below 5e-2.
func (c *DoubleSoftClipper) ProcessSample(x float64) float64 {
	if math.Abs(x-c.x1) < adaaTolerance {
		y := c.Transfer(0.5 * (x + c.x1))
		c.f1 = c.Antiderivative(x)
		c.x1 = x

		return y
	}

	f := c.Antiderivative(x)
	y := (f - c.f1) / (x - c.x1)
	c.f1 = f
	c.x1 = x

	return y
}

// ProcessBlock shapes buf in place.
func (c *DoubleSoftClipper) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = c.ProcessSample(x)
	}
}

func (c *DoubleSoftClipper) apply(opt ClipperOption) error {
	if err := opt(&c.cfg); err != nil {
		return err
	}

	c.update()

	return nil
}

func (c *DoubleSoftClipper) update() {
	c.slope = math.Pow(slopeBase, c.cfg.slope)
	c.invSlope = 1 / c.slope
	xOff := c.invSlope * math.Pow(c.slope, c.cfg.width)

	c.upper = side{lim: c.cfg.upperLim, off: xOff, skew: math.Pow(skewBase, c.cfg.upperSkew)}
	c.lower = side{lim: -c.cfg.lowerLim, off: xOff, skew: math.Pow(skewBase, c.cfg.lowerSkew)}
	c.upper.base = c.knee(-c.upper.off*c.upper.skew, c.upper.lim, false)
	c.lower.base = c.knee(c.lower.off*c.lower.skew, c.lower.lim, true)
}

func (c *DoubleSoftClipper) upperTransfer(x float64) float64 {
	u := (x - c.upper.off) * c.upper.skew
	switch {
	case u >= c.invSlope:
		return c.upper.lim
	case u <= -c.invSlope:
		return 0
	}

	return 0.75*c.upper.lim*cubic(c.slope*u) + 0.5*c.upper.lim
}

func (c *DoubleSoftClipper) lowerTransfer(x float64) float64 {
	v := (x + c.lower.off) * c.lower.skew
	switch {
	case v >= c.invSlope:
		return 0
	case v <= -c.invSlope:
		return c.lower.lim
	}

	return -0.75*c.lower.lim*cubic(c.slope*v) + 0.5*c.lower.lim
}

// knee is a continuous antiderivative, with respect to the skewed input u,
// of one side's transfer. lim is the signed limit; lower selects the
// mirrored side whose knee falls from 0 to lim.
func (c *DoubleSoftClipper) knee(u, lim float64, lower bool) float64 {
	k := 0.75 * lim
	if lower {
		k = -k
	}

	mid := func(u float64) float64 {
		return k*cubicAntiderivative(c.slope*u)*c.invSlope + 0.5*lim*u
	}

	// The flat part equals 0 on the quiet side and lim on the clipped side.
	quiet, clipped := -c.invSlope, c.invSlope
	if lower {
		quiet, clipped = clipped, quiet
	}

	switch {
	case (!lower && u <= quiet) || (lower && u >= quiet):
		return mid(quiet)
	case (!lower && u >= clipped) || (lower && u <= clipped):
		return mid(clipped) + lim*(u-clipped)
	}

	return mid(u)
}

func cubic(v float64) float64 {
	return v - v*v*v/3
}

func cubicAntiderivative(v float64) float64 {
	h := 0.5 * v * v
	return h - h*h/3
}
