// Package nlallpass implements a nonlinear allpass: a lattice allpass
// ladder whose rotation angle follows a saturated copy of its own input,
// followed by a lowpass and a DC-blocking highpass.
package nlallpass

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/allpass"
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

const (
	defaultOrder    = 1
	defaultGain     = 0.5
	defaultCutoffHz = 20000.0
	dcBlockerHz     = 30.0

	maxGain     = 20.0
	minCutoffHz = 20.0
	maxCutoffHz = 20000.0

	// cutoffRatio keeps the post lowpass below Nyquist at low sample rates.
	cutoffRatio = 0.45
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	order    int
	gain     float64
	sat      saturate.Kind
	cutoffHz float64
}

func defaultConfig() config {
	return config{
		order:    defaultOrder,
		gain:     defaultGain,
		sat:      saturate.None,
		cutoffHz: defaultCutoffHz,
	}
}

// WithOrder sets the number of ladder stages in [1, 10].
func WithOrder(order int) Option {
	return func(cfg *config) error {
		if order < allpass.MinLadderOrder || order > allpass.MaxLadderOrder {
			return fmt.Errorf("nlallpass order must be in [%d, %d]: %d",
				allpass.MinLadderOrder, allpass.MaxLadderOrder, order)
		}

		cfg.order = order

		return nil
	}
}

// WithGain sets the input gain ahead of the angle saturator, in [0, 20].
func WithGain(gain float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("nlallpass gain", gain, 0, maxGain); err != nil {
			return err
		}

		cfg.gain = gain

		return nil
	}
}

// WithSaturator selects the function mapping the input to the angle.
func WithSaturator(kind saturate.Kind) Option {
	return func(cfg *config) error {
		if !kind.Valid() {
			return fmt.Errorf("nlallpass saturator is invalid: %d", kind)
		}

		cfg.sat = kind

		return nil
	}
}

// WithCutoff sets the post lowpass cutoff in Hz, in [20, 20000].
func WithCutoff(hz float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("nlallpass cutoff", hz, minCutoffHz, maxCutoffHz); err != nil {
			return err
		}

		cfg.cutoffHz = hz

		return nil
	}
}

// Processor is one channel of the nonlinear allpass effect. Ladders of every
// order are allocated up front so SetOrder never allocates.
type Processor struct {
	sampleRate float64
	cfg        config

	ladders   [allpass.MaxLadderOrder]*allpass.Ladder
	lowpass   biquad.Section
	dcBlocker biquad.Section
}

// New creates a processor for sampleRate.
func New(sampleRate float64, opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := &Processor{cfg: cfg}
	for i := range p.ladders {
		l, err := allpass.NewLadder(i + 1)
		if err != nil {
			return nil, err
		}

		p.ladders[i] = l
	}

	if err := p.Reset(sampleRate); err != nil {
		return nil, err
	}

	return p, nil
}

// Reset clears every ladder and filter and redesigns the post filters.
func (p *Processor) Reset(sampleRate float64) error {
	if err := core.ValidateSampleRate("nlallpass", sampleRate); err != nil {
		return err
	}

	p.sampleRate = sampleRate
	for _, l := range p.ladders {
		l.Reset()
	}

	p.updateLowpass()
	p.dcBlocker.Coefficients = design.Highpass(dcBlockerHz, design.ButterworthQ, sampleRate)
	p.lowpass.Reset()
	p.dcBlocker.Reset()

	return nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// SetOrder switches to the ladder with order stages. That ladder keeps the
// state it had when last used.
func (p *Processor) SetOrder(order int) error { return WithOrder(order)(&p.cfg) }

// Order returns the active ladder order.
func (p *Processor) Order() int { return p.cfg.order }

// SetGain sets the angle gain.
func (p *Processor) SetGain(gain float64) error { return WithGain(gain)(&p.cfg) }

// Gain returns the angle gain.
func (p *Processor) Gain() float64 { return p.cfg.gain }

// SetSaturator selects the angle saturator.
func (p *Processor) SetSaturator(kind saturate.Kind) error { return WithSaturator(kind)(&p.cfg) }

// Saturator returns the angle saturator.
func (p *Processor) Saturator() saturate.Kind { return p.cfg.sat }

// SetCutoff sets the post lowpass cutoff in Hz.
func (p *Processor) SetCutoff(hz float64) error {
	if err := WithCutoff(hz)(&p.cfg); err != nil {
		return err
	}

	p.updateLowpass()

	return nil
}

// Cutoff returns the post lowpass cutoff in Hz.
func (p *Processor) Cutoff() float64 { return p.cfg.cutoffHz }

// ProcessAllpass runs one sample through the active ladder only, with the
// angle set from sat(gain*x).
func (p *Processor) ProcessAllpass(x float64) float64 {
	l := p.ladders[p.cfg.order-1]
	l.SetAngle(saturate.Apply(p.cfg.sat, p.cfg.gain*x))

	return l.ProcessSample(x)
}

// ProcessBlock runs the ladder over buf, then the lowpass and DC blocker.
func (p *Processor) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = p.ProcessAllpass(x)
	}

	p.lowpass.ProcessBlock(buf)
	p.dcBlocker.ProcessBlock(buf)
}

func (p *Processor) updateLowpass() {
	hz := min(p.cfg.cutoffHz, cutoffRatio*p.sampleRate)
	p.lowpass.Coefficients = design.Lowpass(hz, design.ButterworthQ, p.sampleRate)
}
