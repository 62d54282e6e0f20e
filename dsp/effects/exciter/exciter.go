// Package exciter implements a diode-style harmonic exciter. The driven
// input is shaped by a saturator at the diode's thermal-voltage scale and
// modulated by its own rectified envelope, so the amount of added harmonics
// follows the input level.
package exciter

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

const (
	defaultDrive     = 8.0
	minDrive         = 1.0
	maxDrive         = 12.0
	defaultCutoffHz  = 10.0
	minCutoffHz      = 1.0
	maxCutoffHz      = 30.0
	thermalVoltage   = 0.0259
	controlReference = 0.1
	controlScale     = 30.0
)

var (
	attenFullWave = core.DBToLinear(-3)
	attenDiode    = core.DBToLinear(11.5)
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	drive     float64
	cutoff    float64
	rectifier dynamics.Rectifier
	sat       saturate.Kind
}

func defaultConfig() config {
	return config{
		drive:     defaultDrive,
		cutoff:    defaultCutoffHz,
		rectifier: dynamics.FullWave,
		sat:       saturate.Tanh,
	}
}

// WithDrive sets the drive parameter in [1, 12]. The input gain is drive/100.
func WithDrive(drive float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("exciter drive", drive, minDrive, maxDrive); err != nil {
			return err
		}

		cfg.drive = drive

		return nil
	}
}

// WithDetectorCutoff sets the envelope follower cutoff in [1, 30] Hz.
func WithDetectorCutoff(hz float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("exciter detector cutoff", hz, minCutoffHz, maxCutoffHz); err != nil {
			return err
		}

		cfg.cutoff = hz

		return nil
	}
}

// WithRectifier selects the envelope rectifier.
func WithRectifier(r dynamics.Rectifier) Option {
	return func(cfg *config) error {
		if !r.Valid() {
			return fmt.Errorf("exciter rectifier is invalid: %d", int(r))
		}

		cfg.rectifier = r

		return nil
	}
}

// WithSaturator selects the shaping curve.
func WithSaturator(kind saturate.Kind) Option {
	return func(cfg *config) error {
		if !kind.Valid() {
			return fmt.Errorf("exciter saturator is invalid: %d", int(kind))
		}

		cfg.sat = kind

		return nil
	}
}

// Processor is one channel of the exciter.
type Processor struct {
	sampleRate float64
	cfg        config
	follower   *dynamics.Follower

	drive, oldDrive     float64
	control, oldControl float64
}

// New creates an exciter for sampleRate.
func New(sampleRate float64, opts ...Option) (*Processor, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	follower, err := dynamics.NewFollower(sampleRate)
	if err != nil {
		return nil, err
	}

	p := &Processor{sampleRate: sampleRate, cfg: cfg, follower: follower}

	if err := follower.SetCutoff(cfg.cutoff); err != nil {
		return nil, err
	}

	if err := follower.SetRectifier(cfg.rectifier); err != nil {
		return nil, err
	}

	p.setGains(cfg.drive)

	if err := p.Reset(sampleRate); err != nil {
		return nil, err
	}

	return p, nil
}

// Reset clears the follower and settles the gain ramps for sampleRate.
func (p *Processor) Reset(sampleRate float64) error {
	if err := p.follower.Reset(sampleRate); err != nil {
		return err
	}

	p.sampleRate = sampleRate
	p.oldDrive = p.drive
	p.oldControl = p.control

	return nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// SetDrive sets the drive parameter. The new gains are reached at the end
// of the next block.
func (p *Processor) SetDrive(drive float64) error {
	if err := WithDrive(drive)(&p.cfg); err != nil {
		return err
	}

	p.setGains(drive)

	return nil
}

// Drive returns the drive parameter.
func (p *Processor) Drive() float64 { return p.cfg.drive }

// SetDetectorCutoff glides the follower cutoff to hz.
func (p *Processor) SetDetectorCutoff(hz float64) error {
	if err := WithDetectorCutoff(hz)(&p.cfg); err != nil {
		return err
	}

	return p.follower.SetCutoff(hz)
}

// DetectorCutoff returns the follower cutoff in Hz.
func (p *Processor) DetectorCutoff() float64 { return p.cfg.cutoff }

// SetRectifier switches the follower rectifier and the matching output
// attenuation.
func (p *Processor) SetRectifier(r dynamics.Rectifier) error {
	if err := WithRectifier(r)(&p.cfg); err != nil {
		return err
	}

	return p.follower.SetRectifier(r)
}

// Rectifier returns the follower rectifier.
func (p *Processor) Rectifier() dynamics.Rectifier { return p.cfg.rectifier }

// SetSaturator selects the shaping curve.
func (p *Processor) SetSaturator(kind saturate.Kind) error {
	return WithSaturator(kind)(&p.cfg)
}

// Saturator returns the shaping curve.
func (p *Processor) Saturator() saturate.Kind { return p.cfg.sat }

// ProcessBlock processes buf in place. Drive and control gain move
// linearly from their previous values across the block.
func (p *Processor) ProcessBlock(buf []float64) {
	atten := p.attenuation()
	n := float64(len(buf))

	for i, x := range buf {
		t := float64(i) / n
		x *= p.drive*t + p.oldDrive*(1-t)
		level := (p.control*t + p.oldControl*(1-t)) * p.follower.ProcessSample(x)
		buf[i] = atten * level * saturate.Apply(p.cfg.sat, x/thermalVoltage/2)
	}

	p.oldDrive = p.drive
	p.oldControl = p.control
}

func (p *Processor) setGains(drive float64) {
	p.drive = drive / 100
	p.control = controlScale / (controlReference / p.drive)
}

func (p *Processor) attenuation() float64 {
	switch p.cfg.rectifier {
	case dynamics.FullWave:
		return attenFullWave
	case dynamics.Diode:
		return attenDiode
	default:
		return 1
	}
}
