// Package gru implements a distortion built from a single gated recurrent
// unit with scalar weights:
//
//	f = sigmoid(Wf*x + Uf*y + bf)
//	y = f*y + (1-f)*tanh(Wh*x + Uh*f*y)
//
// The gate f decides per sample how much of the previous output survives,
// which gives level-dependent memory and soft saturation in one recurrence.
package gru

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/dsp/smooth"
)

const smoothingSteps = 200

// Params holds the five weights.
type Params struct {
	Wf float64 // input weight of the gate, [0, 10]
	Wh float64 // input weight of the candidate, [0.01, 5]
	Uf float64 // recurrent weight of the gate, [0, 5]
	Uh float64 // recurrent weight of the candidate, [0, 2]
	Bf float64 // gate bias, [-1, 5]
}

// DefaultParams returns the weights of a fresh Unit.
func DefaultParams() Params {
	return Params{Wf: 0.5, Wh: 1, Uf: 0.5, Uh: 0.5, Bf: 0}
}

// Validate reports the first out-of-range weight.
func (p Params) Validate() error {
	checks := []struct {
		name   string
		v      float64
		lo, hi float64
	}{
		{"gru wf", p.Wf, 0, 10},
		{"gru wh", p.Wh, 0.01, 5},
		{"gru uf", p.Uf, 0, 5},
		{"gru uh", p.Uh, 0, 2},
		{"gru bf", p.Bf, -1, 5},
	}

	for _, c := range checks {
		if err := core.CheckRange(c.name, c.v, c.lo, c.hi); err != nil {
			return err
		}
	}

	return nil
}

// Unit is one channel of the GRU distortion.
type Unit struct {
	wf, wh, uf, uh, bf *smooth.Value

	y1 float64
}

// New creates a unit with the given weights.
func New(p Params) (*Unit, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return &Unit{
		wf: smooth.New(smooth.Linear, smoothingSteps, p.Wf),
		wh: smooth.New(smooth.Linear, smoothingSteps, p.Wh),
		uf: smooth.New(smooth.Linear, smoothingSteps, p.Uf),
		uh: smooth.New(smooth.Linear, smoothingSteps, p.Uh),
		bf: smooth.New(smooth.Linear, smoothingSteps, p.Bf),
	}, nil
}

// SetParams glides every weight to p over 200 samples.
func (u *Unit) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	u.wf.SetTarget(p.Wf)
	u.wh.SetTarget(p.Wh)
	u.uf.SetTarget(p.Uf)
	u.uh.SetTarget(p.Uh)
	u.bf.SetTarget(p.Bf)

	return nil
}

// Params returns the target weights.
func (u *Unit) Params() Params {
	return Params{
		Wf: u.wf.Target(),
		Wh: u.wh.Target(),
		Uf: u.uf.Target(),
		Uh: u.uh.Target(),
		Bf: u.bf.Target(),
	}
}

// Reset clears the recurrent state and completes any glide.
func (u *Unit) Reset() {
	u.y1 = 0

	for _, v := range []*smooth.Value{u.wf, u.wh, u.uf, u.uh, u.bf} {
		v.Skip(smoothingSteps)
	}
}

// ProcessSample advances the recurrence by one sample.
func (u *Unit) ProcessSample(x float64) float64 {
	y := u.y1
	f := saturate.Sigmoid(u.wf.Next()*x + u.uf.Next()*y + u.bf.Next())
	u.y1 = f*y + (1-f)*saturate.TanhValue(u.wh.Next()*x+u.uh.Next()*f*y)

	return u.y1
}

// ProcessBlock distorts buf in place.
func (u *Unit) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = u.ProcessSample(x)
	}
}
