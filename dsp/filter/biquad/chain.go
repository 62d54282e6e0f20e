package biquad

// Chain runs linear sections in series after an optional input gain.
type Chain struct {
	sections []Section
	gain     float64
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithGain scales the input before the first section. Default 1.
func WithGain(g float64) ChainOption {
	return func(c *Chain) { c.gain = g }
}

// NewChain builds a cascade with one zero-state section per entry of coeffs.
func NewChain(coeffs []Coefficients, opts ...ChainOption) *Chain {
	c := &Chain{sections: make([]Section, len(coeffs)), gain: 1}
	for i, k := range coeffs {
		c.sections[i].Coefficients = k
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// Len returns the number of sections.
func (c *Chain) Len() int { return len(c.sections) }

// ProcessSample filters x through every section.
func (c *Chain) ProcessSample(x float64) float64 {
	y := c.gain * x
	for i := range c.sections {
		y = c.sections[i].ProcessSample(y)
	}

	return y
}

// ProcessBlock filters buf in place.
func (c *Chain) ProcessBlock(buf []float64) {
	if c.gain != 1 {
		for i := range buf {
			buf[i] *= c.gain
		}
	}

	for i := range c.sections {
		c.sections[i].ProcessBlock(buf)
	}
}

// Reset zeroes the state of every section.
func (c *Chain) Reset() {
	for i := range c.sections {
		c.sections[i].Reset()
	}
}
