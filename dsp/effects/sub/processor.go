package sub

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-nldsp/dsp/filter/eq"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultPreCutoffHz  = 500.0
	defaultPostCutoffHz = 500.0
	defaultAttackMs     = 10.0
	defaultReleaseMs    = 100.0
	dcBlockerHz         = 35.0
	filterQ             = 0.70710678

	minCutoffHz = 20.0
	maxCutoffHz = 20000.0
	minGainDB   = -60.0
	maxGainDB   = 30.0
)

// butterworthQs are the section Qs of a sixth-order Butterworth lowpass.
var butterworthQs = [3]float64{0.51763809, 0.70710678, 1.93185165}

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	preCutoff  float64
	postCutoff float64
	attackMs   float64
	releaseMs  float64
	mainGainDB float64
	sideGainDB float64
}

func defaultConfig() config {
	return config{
		preCutoff:  defaultPreCutoffHz,
		postCutoff: defaultPostCutoffHz,
		attackMs:   defaultAttackMs,
		releaseMs:  defaultReleaseMs,
	}
}

// WithPreCutoff sets the lowpass ahead of the generator, in [20, 20000] Hz.
func WithPreCutoff(hz float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic pre cutoff", hz, minCutoffHz, maxCutoffHz); err != nil {
			return err
		}

		cfg.preCutoff = hz

		return nil
	}
}

// WithPostCutoff sets the lowpass after the generator, in [20, 20000] Hz.
func WithPostCutoff(hz float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic post cutoff", hz, minCutoffHz, maxCutoffHz); err != nil {
			return err
		}

		cfg.postCutoff = hz

		return nil
	}
}

// WithAttack sets the envelope attack in milliseconds.
func WithAttack(ms float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic attack", ms, 0.1, 1000); err != nil {
			return err
		}

		cfg.attackMs = ms

		return nil
	}
}

// WithRelease sets the envelope release in milliseconds.
func WithRelease(ms float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic release", ms, 1, 3000); err != nil {
			return err
		}

		cfg.releaseMs = ms

		return nil
	}
}

// WithMainGainDB sets the gain of the dry input in [-60, 30] dB.
func WithMainGainDB(db float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic main gain", db, minGainDB, maxGainDB); err != nil {
			return err
		}

		cfg.mainGainDB = db

		return nil
	}
}

// WithSideGainDB sets the gain of the generated subharmonic in [-60, 30] dB.
func WithSideGainDB(db float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("subharmonic side gain", db, minGainDB, maxGainDB); err != nil {
			return err
		}

		cfg.sideGainDB = db

		return nil
	}
}

// Processor is one channel of the subharmonic effect.
type Processor struct {
	sampleRate float64
	cfg        config

	pre       *eq.Filter
	post      [3]*eq.Filter
	dcBlocker *eq.Filter
	detector  *dynamics.LevelDetector
	gen       *Generator
	mainGain  *core.Ramp
	sideGain  *core.Ramp

	side []float64
}

// New creates a subharmonic processor for sampleRate.
func New(sampleRate float64, opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := &Processor{
		sampleRate: sampleRate,
		cfg:        cfg,
		gen:        NewGenerator(),
		mainGain:   core.NewRamp(core.DBToLinear(cfg.mainGainDB)),
		sideGain:   core.NewRamp(core.DBToLinear(cfg.sideGainDB)),
	}

	var err error

	p.pre, err = newLowpass(sampleRate, cfg.preCutoff, filterQ)
	if err != nil {
		return nil, err
	}

	for i, q := range butterworthQs {
		p.post[i], err = newLowpass(sampleRate, cfg.postCutoff, q)
		if err != nil {
			return nil, err
		}
	}

	p.dcBlocker, err = eq.New(sampleRate,
		eq.WithShape(eq.Highpass), eq.WithFrequency(dcBlockerHz), eq.WithQ(filterQ), eq.WithEnabled(true))
	if err != nil {
		return nil, err
	}

	p.detector, err = dynamics.NewLevelDetector(sampleRate)
	if err != nil {
		return nil, err
	}

	if err := p.detector.SetAttack(cfg.attackMs); err != nil {
		return nil, err
	}

	if err := p.detector.SetRelease(cfg.releaseMs); err != nil {
		return nil, err
	}

	return p, nil
}

func newLowpass(sampleRate, hz, q float64) (*eq.Filter, error) {
	return eq.New(sampleRate,
		eq.WithShape(eq.Lowpass), eq.WithFrequency(hz), eq.WithQ(q), eq.WithEnabled(true))
}

// Reset clears every filter, the envelope and the generator for sampleRate.
func (p *Processor) Reset(sampleRate float64) error {
	for _, f := range p.filters() {
		if err := f.SetSampleRate(sampleRate); err != nil {
			return err
		}
	}

	if err := p.detector.Reset(sampleRate); err != nil {
		return err
	}

	p.sampleRate = sampleRate
	p.gen.Reset()
	p.mainGain.Reset()
	p.sideGain.Reset()

	return nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// SetPreCutoff glides the pre lowpass to hz.
func (p *Processor) SetPreCutoff(hz float64) error {
	if err := WithPreCutoff(hz)(&p.cfg); err != nil {
		return err
	}

	return p.pre.SetFrequency(hz)
}

// SetPostCutoff glides the three post lowpass sections to hz.
func (p *Processor) SetPostCutoff(hz float64) error {
	if err := WithPostCutoff(hz)(&p.cfg); err != nil {
		return err
	}

	for _, f := range p.post {
		if err := f.SetFrequency(hz); err != nil {
			return err
		}
	}

	return nil
}

// SetDetector sets the envelope attack and release in milliseconds.
func (p *Processor) SetDetector(attackMs, releaseMs float64) error {
	if err := p.detector.SetAttack(attackMs); err != nil {
		return err
	}

	if err := p.detector.SetRelease(releaseMs); err != nil {
		return err
	}

	p.cfg.attackMs = attackMs
	p.cfg.releaseMs = releaseMs

	return nil
}

// SetMainGainDB sets the dry gain reached at the end of the next block.
func (p *Processor) SetMainGainDB(db float64) error {
	if err := WithMainGainDB(db)(&p.cfg); err != nil {
		return err
	}

	p.mainGain.SetGainDB(db)

	return nil
}

// SetSideGainDB sets the subharmonic gain reached at the end of the next block.
func (p *Processor) SetSideGainDB(db float64) error {
	if err := WithSideGainDB(db)(&p.cfg); err != nil {
		return err
	}

	p.sideGain.SetGainDB(db)

	return nil
}

// ProcessBlock adds the subharmonic of buf to buf in place. The internal
// side buffer grows to the largest block seen.
func (p *Processor) ProcessBlock(buf []float64) {
	p.side = core.EnsureLen(p.side, len(buf))
	side := p.side[:len(buf)]
	copy(side, buf)

	p.pre.ProcessBlock(side)

	for i, x := range side {
		env := p.detector.ProcessSample(x)
		side[i] = env * p.gen.ProcessSample(x)
	}

	for _, f := range p.post {
		f.ProcessBlock(side)
	}

	p.dcBlocker.ProcessBlock(side)
	p.mainGain.ProcessBlock(buf)
	p.sideGain.ProcessBlock(side)
	vecmath.AddBlockInPlace(buf, side)
}

func (p *Processor) filters() []*eq.Filter {
	return []*eq.Filter{p.pre, p.post[0], p.post[1], p.post[2], p.dcBlocker}
}
