package hysteresis

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/eq"
	"github.com/cwbudde/algo-nldsp/dsp/smooth"
)

const (
	defaultDrive      = 0.5
	defaultWidth      = 0.5
	defaultSaturation = 0.5
	defaultAlpha      = 1.0
	minAlpha          = 0.5
	maxAlpha          = 1.0

	smoothingSteps = 200
	dcBlockerHz    = 35.0
	dcBlockerQ     = 0.70710678
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	drive  float64
	width  float64
	sat    float64
	dAlpha float64
}

func defaultConfig() config {
	return config{
		drive:  defaultDrive,
		width:  defaultWidth,
		sat:    defaultSaturation,
		dAlpha: defaultAlpha,
	}
}

// WithDrive sets the input drive in [0, 1].
func WithDrive(v float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("hysteresis drive", v, 0, 1); err != nil {
			return err
		}

		cfg.drive = v

		return nil
	}
}

// WithWidth sets the loop width in [0, 1].
func WithWidth(v float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("hysteresis width", v, 0, 1); err != nil {
			return err
		}

		cfg.width = v

		return nil
	}
}

// WithSaturation sets how early the tape saturates, in [0, 1].
func WithSaturation(v float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("hysteresis saturation", v, 0, 1); err != nil {
			return err
		}

		cfg.sat = v

		return nil
	}
}

// WithAlpha sets the alpha transform used for dH/dt in [0.5, 1]. Values
// below 1 damp the model near Nyquist.
func WithAlpha(a float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("hysteresis alpha", a, minAlpha, maxAlpha); err != nil {
			return err
		}

		cfg.dAlpha = a

		return nil
	}
}

// Processor is one channel of tape hysteresis followed by a DC blocker.
type Processor struct {
	sampleRate float64
	cfg        config
	model      *Model
	dcBlocker  *eq.Filter

	drive, width, sat *smooth.Value
	makeup            float64
}

// New creates a hysteresis processor for sampleRate.
func New(sampleRate float64, opts ...Option) (*Processor, error) {
	if err := core.ValidateSampleRate("hysteresis", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	dc, err := eq.New(sampleRate,
		eq.WithShape(eq.Highpass), eq.WithFrequency(dcBlockerHz), eq.WithQ(dcBlockerQ), eq.WithEnabled(true))
	if err != nil {
		return nil, err
	}

	p := &Processor{
		sampleRate: sampleRate,
		cfg:        cfg,
		model:      NewModel(sampleRate, cfg.dAlpha),
		dcBlocker:  dc,
		drive:      smooth.New(smooth.Linear, smoothingSteps, cfg.drive),
		width:      smooth.New(smooth.Linear, smoothingSteps, cfg.width),
		sat:        smooth.New(smooth.Linear, smoothingSteps, cfg.sat),
	}
	p.cook()

	return p, nil
}

// Reset clears the model and filter state and settles every parameter
// glide for sampleRate.
func (p *Processor) Reset(sampleRate float64) error {
	if err := p.dcBlocker.SetSampleRate(sampleRate); err != nil {
		return err
	}

	p.sampleRate = sampleRate
	p.model.SetSampleRate(sampleRate)
	p.model.Reset()
	p.drive.Reset(p.drive.Target())
	p.width.Reset(p.width.Target())
	p.sat.Reset(p.sat.Target())
	p.cook()

	return nil
}

// SampleRate returns the configured sample rate.
func (p *Processor) SampleRate() float64 { return p.sampleRate }

// SetDrive glides the drive to v.
func (p *Processor) SetDrive(v float64) error {
	if err := WithDrive(v)(&p.cfg); err != nil {
		return err
	}

	p.drive.SetTarget(v)

	return nil
}

// SetWidth glides the loop width to v.
func (p *Processor) SetWidth(v float64) error {
	if err := WithWidth(v)(&p.cfg); err != nil {
		return err
	}

	p.width.SetTarget(v)

	return nil
}

// SetSaturation glides the saturation to v.
func (p *Processor) SetSaturation(v float64) error {
	if err := WithSaturation(v)(&p.cfg); err != nil {
		return err
	}

	p.sat.SetTarget(v)

	return nil
}

// Drive returns the drive target.
func (p *Processor) Drive() float64 { return p.cfg.drive }

// Width returns the width target.
func (p *Processor) Width() float64 { return p.cfg.width }

// Saturation returns the saturation target.
func (p *Processor) Saturation() float64 { return p.cfg.sat }

// Makeup returns the current makeup gain.
func (p *Processor) Makeup() float64 { return p.makeup }

// ProcessSample runs one sample through the model without the DC blocker.
func (p *Processor) ProcessSample(x float64) float64 {
	if p.drive.IsRamping() || p.width.IsRamping() || p.sat.IsRamping() {
		p.drive.Next()
		p.width.Next()
		p.sat.Next()
		p.cook()
	}

	return p.makeup * p.model.Process(x)
}

// ProcessBlock processes buf in place, DC blocker included.
func (p *Processor) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = p.ProcessSample(x)
	}

	p.dcBlocker.ProcessBlock(buf)
}

func (p *Processor) cook() {
	w, s := p.width.Current(), p.sat.Current()
	p.model.Cook(p.drive.Current(), w, s)
	p.makeup = (1 + 0.6*w) / (0.5 + 1.5*(1-s))
}
