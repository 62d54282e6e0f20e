package shaper

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/dsp/smooth"
)

const (
	defaultFoldFreq     = 0.5
	defaultFoldDepth    = 0.1
	defaultFeedforward  = 1.0
	defaultFeedback     = 0.0
	wavefolderSteps     = 200
	minFoldFreq         = 1e-5
	maxFoldDepth        = 0.5
	maxWavefoldFeedback = 0.9
)

// WavefolderOption mutates construction-time parameters of a Wavefolder.
type WavefolderOption func(*wavefolderConfig) error

type wavefolderConfig struct {
	freq  float64
	depth float64
	ff    float64
	fb    float64
	sat   saturate.Kind
	wave  WaveKind
}

func defaultWavefolderConfig() wavefolderConfig {
	return wavefolderConfig{
		freq:  defaultFoldFreq,
		depth: defaultFoldDepth,
		ff:    defaultFeedforward,
		fb:    defaultFeedback,
		sat:   saturate.None,
		wave:  Zero,
	}
}

// WithFoldFrequency sets the fold rate in [0, 1].
func WithFoldFrequency(f float64) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if err := core.CheckRange("wavefolder frequency", f, 0, 1); err != nil {
			return err
		}

		cfg.freq = f

		return nil
	}
}

// WithFoldDepth sets the wave depth in [0, 0.5].
func WithFoldDepth(d float64) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if err := core.CheckRange("wavefolder depth", d, 0, maxFoldDepth); err != nil {
			return err
		}

		cfg.depth = d

		return nil
	}
}

// WithFeedforward sets the saturated share of the direct path in [0, 1].
func WithFeedforward(ff float64) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if err := core.CheckRange("wavefolder feedforward", ff, 0, 1); err != nil {
			return err
		}

		cfg.ff = ff

		return nil
	}
}

// WithFeedback sets the saturated feedback amount in [0, 0.9].
func WithFeedback(fb float64) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if err := core.CheckRange("wavefolder feedback", fb, 0, maxWavefoldFeedback); err != nil {
			return err
		}

		cfg.fb = fb

		return nil
	}
}

// WithFoldSaturator selects the saturator of both paths.
func WithFoldSaturator(kind saturate.Kind) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if !kind.Valid() {
			return fmt.Errorf("wavefolder saturator is invalid: %d", kind)
		}

		cfg.sat = kind

		return nil
	}
}

// WithWave selects the folding wave.
func WithWave(kind WaveKind) WavefolderOption {
	return func(cfg *wavefolderConfig) error {
		if !kind.Valid() {
			return fmt.Errorf("wavefolder wave is invalid: %d", kind)
		}

		cfg.wave = kind

		return nil
	}
}

// Wavefolder mixes a saturated feedforward path with saturated feedback and
// subtracts a periodic function of the input:
//
//	ff  = FF*sat(x) + (1-FF)*x
//	y1  = ff + FB*sat(y1) - depth*wave(x, freq)
//	out = y1 / (1 + FB)
//
// The four continuous parameters glide linearly over 200 samples.
type Wavefolder struct {
	sampleRate float64
	cfg        wavefolderConfig

	freq  *smooth.Value
	depth *smooth.Value
	ff    *smooth.Value
	fb    *smooth.Value

	y1 float64
}

// NewWavefolder creates a wavefolder.
func NewWavefolder(sampleRate float64, opts ...WavefolderOption) (*Wavefolder, error) {
	if err := core.ValidateSampleRate("wavefolder", sampleRate); err != nil {
		return nil, err
	}

	cfg := defaultWavefolderConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Wavefolder{
		sampleRate: sampleRate,
		cfg:        cfg,
		freq:       smooth.New(smooth.Linear, wavefolderSteps, cfg.freq),
		depth:      smooth.New(smooth.Linear, wavefolderSteps, cfg.depth),
		ff:         smooth.New(smooth.Linear, wavefolderSteps, cfg.ff),
		fb:         smooth.New(smooth.Linear, wavefolderSteps, cfg.fb),
	}, nil
}

// Reset clears the feedback state, settles the glides and adopts sampleRate.
func (w *Wavefolder) Reset(sampleRate float64) error {
	if err := core.ValidateSampleRate("wavefolder", sampleRate); err != nil {
		return err
	}

	w.sampleRate = sampleRate
	w.y1 = 0

	for _, v := range []*smooth.Value{w.freq, w.depth, w.ff, w.fb} {
		v.Reset(v.Target())
	}

	return nil
}

// SampleRate returns the configured sample rate.
func (w *Wavefolder) SampleRate() float64 { return w.sampleRate }

// SetFrequency sets the fold rate target in [0, 1].
func (w *Wavefolder) SetFrequency(f float64) error {
	return w.set(WithFoldFrequency(f), w.freq, func() float64 { return w.cfg.freq })
}

// SetDepth sets the depth target in [0, 0.5].
func (w *Wavefolder) SetDepth(d float64) error {
	return w.set(WithFoldDepth(d), w.depth, func() float64 { return w.cfg.depth })
}

// SetFeedforward sets the feedforward target in [0, 1].
func (w *Wavefolder) SetFeedforward(ff float64) error {
	return w.set(WithFeedforward(ff), w.ff, func() float64 { return w.cfg.ff })
}

// SetFeedback sets the feedback target in [0, 0.9].
func (w *Wavefolder) SetFeedback(fb float64) error {
	return w.set(WithFeedback(fb), w.fb, func() float64 { return w.cfg.fb })
}

// SetSaturator selects the saturator immediately.
func (w *Wavefolder) SetSaturator(kind saturate.Kind) error {
	return WithFoldSaturator(kind)(&w.cfg)
}

// SetWave selects the folding wave immediately.
func (w *Wavefolder) SetWave(kind WaveKind) error {
	return WithWave(kind)(&w.cfg)
}

// Saturator returns the selected saturator.
func (w *Wavefolder) Saturator() saturate.Kind { return w.cfg.sat }

// Wave returns the selected wave.
func (w *Wavefolder) Wave() WaveKind { return w.cfg.wave }

// ProcessSample folds one sample.
func (w *Wavefolder) ProcessSample(x float64) float64 {
	ffAmt := w.ff.Next()
	fbAmt := w.fb.Next()
	depth := w.depth.Next()
	freq := max(w.freq.Next(), minFoldFreq)

	ff := ffAmt*saturate.Apply(w.cfg.sat, x) + (1-ffAmt)*x
	fb := fbAmt * saturate.Apply(w.cfg.sat, w.y1)
	w.y1 = ff + fb - depth*Wave(w.cfg.wave, x, freq)

	return w.y1 / (1 + fbAmt)
}

// ProcessBlock folds buf in place.
func (w *Wavefolder) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = w.ProcessSample(x)
	}
}

func (w *Wavefolder) set(opt WavefolderOption, v *smooth.Value, target func() float64) error {
	if err := opt(&w.cfg); err != nil {
		return err
	}

	v.SetTarget(target())

	return nil
}
