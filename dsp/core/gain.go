package core

// Ramp is a block-rate gain that moves linearly from the previous block's
// value to the current one across each block, so gain changes never click.
type Ramp struct {
	prev float64
	cur  float64
}

// NewRamp returns a Ramp settled at gain.
func NewRamp(gain float64) *Ramp {
	return &Ramp{prev: gain, cur: gain}
}

// SetGain sets the gain reached at the end of the next block.
func (r *Ramp) SetGain(gain float64) {
	r.cur = gain
}

// SetGainDB sets the target gain in dB.
func (r *Ramp) SetGainDB(db float64) {
	r.cur = DBToLinear(db)
}

// Gain returns the target gain.
func (r *Ramp) Gain() float64 { return r.cur }

// Reset jumps to the target without ramping.
func (r *Ramp) Reset() {
	r.prev = r.cur
}

// ProcessBlock multiplies buf by the ramped gain in place.
func (r *Ramp) ProcessBlock(buf []float64) {
	if r.prev == r.cur {
		for i := range buf {
			buf[i] *= r.cur
		}

		return
	}

	n := float64(len(buf))
	for i := range buf {
		t := float64(i) / n
		buf[i] *= r.prev + (r.cur-r.prev)*t
	}

	r.prev = r.cur
}
