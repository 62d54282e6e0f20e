package eq

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/dsp/smooth"
)

const (
	defaultFrequency     = 1000.0
	defaultQ             = 0.707
	defaultGainDB        = 0.0
	defaultSmoothingStep = 500

	minQ      = 0.025
	maxQ      = 40.0
	minGainDB = -60.0
	maxGainDB = 36.0

	// nyquistMargin keeps the cutoff this far below fs/2.
	nyquistMargin = 100.0
)

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	shape    Shape
	freq     float64
	q        float64
	gainDB   float64
	sat      saturate.Kind
	topology biquad.Topology
	steps    int
	enabled  bool
}

func defaultConfig() config {
	return config{
		shape:    Bell,
		freq:     defaultFrequency,
		q:        defaultQ,
		gainDB:   defaultGainDB,
		sat:      saturate.None,
		topology: biquad.Linear,
		steps:    defaultSmoothingStep,
	}
}

// WithShape selects the initial shape.
func WithShape(s Shape) Option {
	return func(cfg *config) error {
		if !s.Valid() {
			return fmt.Errorf("eq shape is invalid: %d", s)
		}

		cfg.shape = s

		return nil
	}
}

// WithFrequency sets the initial center or cutoff frequency in Hz.
func WithFrequency(hz float64) Option {
	return func(cfg *config) error {
		if hz <= 0 || !core.IsFinite(hz) {
			return fmt.Errorf("eq frequency must be > 0: %f", hz)
		}

		cfg.freq = hz

		return nil
	}
}

// WithQ sets the initial quality factor.
func WithQ(q float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("eq Q", q, minQ, maxQ); err != nil {
			return err
		}

		cfg.q = q

		return nil
	}
}

// WithGainDB sets the initial band gain in dB.
func WithGainDB(db float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("eq gain", db, minGainDB, maxGainDB); err != nil {
			return err
		}

		cfg.gainDB = db

		return nil
	}
}

// WithSaturator selects the saturator used by the nonlinear topologies.
func WithSaturator(kind saturate.Kind) Option {
	return func(cfg *config) error {
		if !kind.Valid() {
			return fmt.Errorf("eq saturator is invalid: %d", kind)
		}

		cfg.sat = kind

		return nil
	}
}

// WithTopology selects where the saturator acts.
func WithTopology(t biquad.Topology) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("eq topology is invalid: %d", t)
		}

		cfg.topology = t

		return nil
	}
}

// WithSmoothingSteps sets the ramp length of frequency, Q and gain changes.
func WithSmoothingSteps(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("eq smoothing steps must be >= 0: %d", n)
		}

		cfg.steps = n

		return nil
	}
}

// WithEnabled starts the band settled in the on state instead of bypassed.
func WithEnabled(on bool) Option {
	return func(cfg *config) error {
		cfg.enabled = on
		return nil
	}
}

// Filter is one EQ band.
type Filter struct {
	sampleRate float64
	shape      Shape

	freq *smooth.Value
	q    *smooth.Value
	gain *smooth.Value

	section *biquad.Section

	on       bool
	changing bool
}

// New creates an EQ band for sampleRate.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if err := core.ValidateSampleRate("eq", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	section, err := biquad.NewNonlinearSection(biquad.Coefficients{}, cfg.topology, cfg.sat)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		sampleRate: sampleRate,
		shape:      cfg.shape,
		freq:       smooth.New(smooth.Linear, cfg.steps, clampFrequency(cfg.freq, sampleRate)),
		q:          smooth.New(smooth.Linear, cfg.steps, cfg.q),
		gain:       smooth.New(smooth.Linear, cfg.steps, core.DBToLinear(cfg.gainDB)),
		section:    section,
		on:         cfg.enabled,
	}
	f.updateCoefficients()

	return f, nil
}

// SetSampleRate changes the sample rate and hard-resets the band.
func (f *Filter) SetSampleRate(sampleRate float64) error {
	if err := core.ValidateSampleRate("eq", sampleRate); err != nil {
		return err
	}

	f.sampleRate = sampleRate
	f.freq.SetTarget(clampFrequency(f.freq.Target(), sampleRate))
	f.Reset()

	return nil
}

// SampleRate returns the configured sample rate.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// SetFrequency ramps toward hz, clamped to stay 100 Hz below Nyquist.
func (f *Filter) SetFrequency(hz float64) error {
	if hz <= 0 || !core.IsFinite(hz) {
		return fmt.Errorf("eq frequency must be > 0: %f", hz)
	}

	f.freq.SetTarget(clampFrequency(hz, f.sampleRate))

	return nil
}

// SetQ ramps toward q.
func (f *Filter) SetQ(q float64) error {
	if err := core.CheckRange("eq Q", q, minQ, maxQ); err != nil {
		return err
	}

	f.q.SetTarget(q)

	return nil
}

// SetGainDB ramps toward db. The ramp runs on the linear gain.
func (f *Filter) SetGainDB(db float64) error {
	if err := core.CheckRange("eq gain", db, minGainDB, maxGainDB); err != nil {
		return err
	}

	f.gain.SetTarget(core.DBToLinear(db))

	return nil
}

// SetShape switches the coefficient formula and recomputes the coefficients
// from the current smoothed values.
func (f *Filter) SetShape(s Shape) error {
	if !s.Valid() {
		return fmt.Errorf("eq shape is invalid: %d", s)
	}

	if s == f.shape {
		return nil
	}

	f.shape = s
	f.updateCoefficients()

	return nil
}

// SetSaturator selects the saturator used by the nonlinear topologies.
func (f *Filter) SetSaturator(kind saturate.Kind) error {
	return f.section.SetSaturator(kind)
}

// SetTopology selects where the saturator acts.
func (f *Filter) SetTopology(t biquad.Topology) error {
	return f.section.SetTopology(t)
}

// ToggleOnOff requests a transition to on. Requesting the current state
// cancels a pending transition.
func (f *Filter) ToggleOnOff(on bool) {
	f.changing = f.on != on
}

// Shape returns the current shape.
func (f *Filter) Shape() Shape { return f.shape }

// Frequency returns the target frequency in Hz.
func (f *Filter) Frequency() float64 { return f.freq.Target() }

// Q returns the target quality factor.
func (f *Filter) Q() float64 { return f.q.Target() }

// GainDB returns the target gain in dB.
func (f *Filter) GainDB() float64 { return core.LinearToDB(f.gain.Target()) }

// IsOn reports the logical on/off state. It flips at the end of the block
// that completes a crossfade.
func (f *Filter) IsOn() bool { return f.on }

// IsChanging reports whether a crossfade is pending.
func (f *Filter) IsChanging() bool { return f.changing }

// Coefficients returns the coefficients currently in use.
func (f *Filter) Coefficients() biquad.Coefficients { return f.section.Coefficients }

// Response returns the complex response of the current coefficients at hz.
func (f *Filter) Response(hz float64) complex128 {
	return f.section.Response(hz, f.sampleRate)
}

// MagnitudeDB returns the magnitude of the current coefficients at hz.
func (f *Filter) MagnitudeDB(hz float64) float64 {
	return 20 * math.Log10(cmplx.Abs(f.Response(hz)))
}

// State returns the biquad state.
func (f *Filter) State() [2]float64 { return f.section.State() }

// Reset clears the filter state, snaps the smoothers to their targets and
// recomputes the coefficients. The on/off state is kept.
func (f *Filter) Reset() {
	f.section.Reset()
	f.freq.Skip(f.freq.Steps())
	f.q.Skip(f.q.Steps())
	f.gain.Skip(f.gain.Steps())
	f.updateCoefficients()
}

// ProcessSample filters one sample with the band's current state, ignoring
// the on/off state.
func (f *Filter) ProcessSample(x float64) float64 {
	f.tick()
	return f.section.ProcessSample(x)
}

// ProcessBlock processes buf in place.
func (f *Filter) ProcessBlock(buf []float64) {
	switch {
	case f.on && !f.changing:
		for i, x := range buf {
			f.tick()
			buf[i] = f.section.ProcessSample(x)
		}
	case f.changing && !f.on:
		f.Reset()
		f.crossfade(buf, true)
		f.on = true
		f.changing = false
	case f.changing && f.on:
		f.crossfade(buf, false)
		f.on = false
		f.changing = false
		f.Reset()
	}
}

// crossfade mixes wet and dry with weight n/len. rising fades the wet
// signal in, otherwise out.
func (f *Filter) crossfade(buf []float64, rising bool) {
	n := float64(len(buf))
	for i, x := range buf {
		f.tick()
		wet := f.section.ProcessSample(x)
		w := float64(i) / n
		if !rising {
			w = 1 - w
		}
		buf[i] = wet*w + x*(1-w)
	}
}

func (f *Filter) tick() {
	if f.freq.IsRamping() || f.q.IsRamping() || f.gain.IsRamping() {
		f.freq.Next()
		f.q.Next()
		f.gain.Next()
		f.updateCoefficients()
	}
}

func (f *Filter) updateCoefficients() {
	f.section.Coefficients = f.shape.Coefficients(f.freq.Current(), f.q.Current(), f.gain.Current(), f.sampleRate)
}

func clampFrequency(hz, sampleRate float64) float64 {
	return math.Min(hz, sampleRate/2-nyquistMargin)
}
