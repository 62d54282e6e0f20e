package match

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/allpass"
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
	"github.com/cwbudde/algo-nldsp/dsp/filter/fir"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultBaseOrder     = 128
	defaultSideCutoff    = 20000.0
	defaultLearnDuration = 5.0
	defaultNabla         = 1e-6
	defaultSeed          = 1

	minBaseOrder     = 1
	maxBaseOrder     = 4096
	minLearnDuration = 0.01
	maxLearnDuration = 600.0
	maxRho           = 0.99

	// inputScale keeps the FIR input small so the taps settle near unity
	// for a flat match.
	inputScale = 10.0

	// sideCutoffRatio caps the reference lowpass below Nyquist.
	sideCutoffRatio = 0.45
)

// Mode is the adaptation state of a CopyEQ.
type Mode int

const (
	// Frozen applies fixed taps.
	Frozen Mode = iota
	// Learning adapts the taps every sample.
	Learning
)

func (m Mode) String() string {
	switch m {
	case Frozen:
		return "frozen"
	case Learning:
		return "learning"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Option mutates construction-time parameters.
type Option func(*config) error

type config struct {
	seed          int64
	baseOrder     int
	sideCutoff    float64
	learnDuration float64
	continuous    bool
	nabla         float64
	rho           float64
	flip          bool
	warpSide      bool
}

func defaultConfig() config {
	return config{
		seed:          defaultSeed,
		baseOrder:     defaultBaseOrder,
		sideCutoff:    defaultSideCutoff,
		learnDuration: defaultLearnDuration,
		nabla:         defaultNabla,
		warpSide:      true,
	}
}

// WithSeed sets the seed of the flip-mode noise generator.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithBaseOrder sets the tap count at 44.1 kHz. Higher rates multiply it
// by the integer rate factor.
func WithBaseOrder(n int) Option {
	return func(cfg *config) error {
		if n < minBaseOrder || n > maxBaseOrder {
			return fmt.Errorf("copyeq base order must be in [%d, %d]: %d", minBaseOrder, maxBaseOrder, n)
		}

		cfg.baseOrder = n

		return nil
	}
}

// WithSideCutoff sets the reference lowpass cutoff in Hz.
func WithSideCutoff(hz float64) Option {
	return func(cfg *config) error {
		if hz <= 0 || !core.IsFinite(hz) {
			return fmt.Errorf("copyeq side cutoff must be > 0: %f", hz)
		}

		cfg.sideCutoff = hz

		return nil
	}
}

// WithLearnDuration sets how long Learn adapts, in seconds.
func WithLearnDuration(seconds float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("copyeq learn duration", seconds, minLearnDuration, maxLearnDuration); err != nil {
			return err
		}

		cfg.learnDuration = seconds

		return nil
	}
}

// WithContinuous keeps learning until Freeze is called.
func WithContinuous(on bool) Option {
	return func(cfg *config) error {
		cfg.continuous = on
		return nil
	}
}

// WithNabla sets the LMS step size.
func WithNabla(nabla float64) Option {
	return func(cfg *config) error {
		if nabla < 0 || !core.IsFinite(nabla) {
			return fmt.Errorf("copyeq nabla must be >= 0: %f", nabla)
		}

		cfg.nabla = nabla

		return nil
	}
}

// WithRho sets the warping coefficient.
func WithRho(rho float64) Option {
	return func(cfg *config) error {
		if err := core.CheckRange("copyeq rho", rho, -maxRho, maxRho); err != nil {
			return err
		}

		cfg.rho = rho

		return nil
	}
}

// WithFlip learns the inverse of the reference against a noise target.
func WithFlip(on bool) Option {
	return func(cfg *config) error {
		cfg.flip = on
		return nil
	}
}

// WithWarpSide selects whether the reference passes through the warper.
func WithWarpSide(on bool) Option {
	return func(cfg *config) error {
		cfg.warpSide = on
		return nil
	}
}

// CopyEQ is one channel of the adaptive matching filter.
type CopyEQ struct {
	sampleRate float64
	cfg        config

	fir      *fir.Filter
	inWarp   allpass.APF1
	outWarp  allpass.APF1
	sideWarp allpass.APF1
	sideLP   biquad.Section
	rng      *rand.Rand

	mode           Mode
	learnRemaining int

	partner *CopyEQ
	blend   float64
	taps    []float64
	scratch []float64
}

// NewCopyEQ creates a matching filter for sampleRate with identity taps.
func NewCopyEQ(sampleRate float64, opts ...Option) (*CopyEQ, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &CopyEQ{cfg: cfg, blend: 1}
	if err := c.Reset(sampleRate); err != nil {
		return nil, err
	}

	return c, nil
}

// Reset reallocates the FIR for sampleRate with identity taps, clears the
// warpers and the reference lowpass, and reseeds the noise generator.
// The mode returns to Frozen.
func (c *CopyEQ) Reset(sampleRate float64) error {
	if err := core.ValidateSampleRate("copyeq", sampleRate); err != nil {
		return err
	}

	f, err := fir.NewIdentity(fir.OrderForSampleRate(c.cfg.baseOrder, sampleRate))
	if err != nil {
		return err
	}

	c.sampleRate = sampleRate
	c.fir = f
	c.taps = make([]float64, f.Order())
	c.scratch = make([]float64, f.Order())
	c.rng = rand.New(rand.NewSource(c.cfg.seed))
	c.mode = Frozen
	c.learnRemaining = 0

	c.setRho(c.cfg.rho)
	c.inWarp.Reset()
	c.outWarp.Reset()
	c.sideWarp.Reset()
	c.updateSideLowpass()
	c.sideLP.Reset()

	return nil
}

// ResetState clears the FIR history, the warpers and the reference lowpass
// but keeps the learned taps and the noise generator.
func (c *CopyEQ) ResetState() {
	c.fir.Reset()
	c.inWarp.Reset()
	c.outWarp.Reset()
	c.sideWarp.Reset()
	c.sideLP.Reset()
}

// SampleRate returns the configured sample rate.
func (c *CopyEQ) SampleRate() float64 { return c.sampleRate }

// Order returns the tap count.
func (c *CopyEQ) Order() int { return c.fir.Order() }

// Coefficients returns a copy of the current taps.
func (c *CopyEQ) Coefficients() []float64 { return c.fir.Coefficients() }

// SetCoefficients replaces the taps.
func (c *CopyEQ) SetCoefficients(h []float64) error { return c.fir.SetCoefficients(h) }

// Taps returns the live tap slice. Callers must treat it as read-only.
func (c *CopyEQ) Taps() []float64 { return c.fir.Taps() }

// Mode returns the adaptation state.
func (c *CopyEQ) Mode() Mode { return c.mode }

// Learn starts adapting for the configured learn duration, or until
// Freeze when continuous.
func (c *CopyEQ) Learn() {
	c.mode = Learning
	c.learnRemaining = int(c.cfg.learnDuration * c.sampleRate)
}

// Freeze stops adapting.
func (c *CopyEQ) Freeze() {
	c.mode = Frozen
	c.learnRemaining = 0
}

// LearnRemaining returns the samples left before learning stops.
func (c *CopyEQ) LearnRemaining() int { return c.learnRemaining }

// SetNabla sets the LMS step size.
func (c *CopyEQ) SetNabla(nabla float64) { c.cfg.nabla = nabla }

// SetRho sets the warping coefficient of all three warpers.
func (c *CopyEQ) SetRho(rho float64) {
	c.cfg.rho = core.Clamp(rho, -maxRho, maxRho)
	c.setRho(c.cfg.rho)
}

// SetFlip toggles flip mode.
func (c *CopyEQ) SetFlip(on bool) { c.cfg.flip = on }

// SetWarpSide toggles warping of the reference.
func (c *CopyEQ) SetWarpSide(on bool) { c.cfg.warpSide = on }

// SetContinuous toggles continuous learning.
func (c *CopyEQ) SetContinuous(on bool) { c.cfg.continuous = on }

// SetLearnDuration sets the learn duration in seconds for the next Learn.
func (c *CopyEQ) SetLearnDuration(seconds float64) error {
	if err := core.CheckRange("copyeq learn duration", seconds, minLearnDuration, maxLearnDuration); err != nil {
		return err
	}

	c.cfg.learnDuration = seconds

	return nil
}

// SetSideCutoff sets the reference lowpass cutoff in Hz.
func (c *CopyEQ) SetSideCutoff(hz float64) error {
	if hz <= 0 || !core.IsFinite(hz) {
		return fmt.Errorf("copyeq side cutoff must be > 0: %f", hz)
	}

	c.cfg.sideCutoff = hz
	c.updateSideLowpass()

	return nil
}

// SetPartner links the other channel of a stereo pair. The frozen path
// blends the partner's taps according to SetStereoBlend.
func (c *CopyEQ) SetPartner(other *CopyEQ) { c.partner = other }

// SetStereoBlend sets the weight st of this channel's own taps in the
// frozen path: h = st*own + (1-st)*partner.
func (c *CopyEQ) SetStereoBlend(st float64) { c.blend = core.Clamp(st, 0, 1) }

// ProcessBlock filters main in place, learning from side while in the
// Learning mode. side may be nil, in which case only the frozen path runs.
func (c *CopyEQ) ProcessBlock(main, side []float64) {
	c.ProcessBlockWithError(main, side, nil)
}

// ProcessBlockWithError is ProcessBlock that also records the adaptation
// error of every learning sample in errOut (0 for frozen samples).
// errOut may be nil; otherwise it must be at least len(main) long.
func (c *CopyEQ) ProcessBlockWithError(main, side, errOut []float64) {
	frozenReady := false

	for i, x := range main {
		if c.mode == Learning && i < len(side) {
			y, e := c.learnSample(x, side[i])
			main[i] = y

			if errOut != nil {
				errOut[i] = e
			}

			if !c.cfg.continuous {
				c.learnRemaining--
				if c.learnRemaining <= 0 {
					c.Freeze()
				}
			}

			continue
		}

		if !frozenReady {
			c.prepareFrozenTaps()
			frozenReady = true
		}

		c.fir.Write(c.inWarp.ProcessSample(x / inputScale))
		y := c.fir.OutputWith(c.taps)
		c.fir.Advance()
		main[i] = c.outWarp.ProcessSample(y * inputScale)

		if errOut != nil {
			errOut[i] = 0
		}
	}
}

// learnSample runs one LMS step and returns the output and the error.
func (c *CopyEQ) learnSample(x, sc float64) (float64, float64) {
	c.fir.Write(c.inWarp.ProcessSample(x / inputScale))
	y := c.fir.Output()

	if c.cfg.warpSide {
		sc = c.sideWarp.ProcessSample(sc)
	}

	des := sc
	if c.cfg.flip {
		des = 2*(c.rng.Float64()-0.5) - sc
	}

	e := c.sideLP.ProcessSample(des) - y
	c.fir.Adapt(c.cfg.nabla * e)
	c.fir.Advance()

	return c.outWarp.ProcessSample(y * inputScale), e
}

// prepareFrozenTaps computes the effective taps for the frozen path.
func (c *CopyEQ) prepareFrozenTaps() {
	own := c.fir.Taps()
	if c.partner == nil || c.blend == 1 || c.partner.Order() != len(own) {
		copy(c.taps, own)
		return
	}

	vecmath.ScaleBlock(c.taps, own, c.blend)
	vecmath.ScaleBlock(c.scratch, c.partner.Taps(), 1-c.blend)
	vecmath.AddBlockInPlace(c.taps, c.scratch)
}

func (c *CopyEQ) setRho(rho float64) {
	c.inWarp.SetRho(rho)
	c.outWarp.SetRho(-rho)
	c.sideWarp.SetRho(rho)
}

func (c *CopyEQ) updateSideLowpass() {
	hz := min(c.cfg.sideCutoff, sideCutoffRatio*c.sampleRate)
	c.sideLP.Coefficients = design.Lowpass(hz, design.ButterworthQ, c.sampleRate)
}
