package match

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

const (
	maxDriveDB = 36.0

	// nablaScale maps the user learning rate n in [0, 1] to n*n*nablaScale.
	nablaScale = 0.1
	// rhoScale keeps the warpers away from the unit circle.
	rhoScale = 0.9
)

// Params holds the block-rate parameters of a stereo Processor.
type Params struct {
	Nabla       float64 // learning rate in [0, 1]
	Rho         float64 // warping in [-1, 1]
	DriveDB     float64 // pre-stage drive in [0, 36] dB
	Saturator   saturate.Kind
	Flip        bool
	WarpSide    bool
	Bypass      bool
	StereoBlend float64 // weight of each channel's own taps when frozen, [0, 1]
	SideCutoff  float64 // reference lowpass in Hz
}

// DefaultParams returns the parameters of a freshly created Processor.
func DefaultParams() Params {
	return Params{
		WarpSide:    true,
		StereoBlend: 1,
		SideCutoff:  defaultSideCutoff,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if err := core.CheckRange("copyeq nabla", p.Nabla, 0, 1); err != nil {
		return err
	}

	if err := core.CheckRange("copyeq rho", p.Rho, -1, 1); err != nil {
		return err
	}

	if err := core.CheckRange("copyeq drive", p.DriveDB, 0, maxDriveDB); err != nil {
		return err
	}

	if !p.Saturator.Valid() {
		return fmt.Errorf("copyeq saturator is invalid: %d", p.Saturator)
	}

	if err := core.CheckRange("copyeq stereo blend", p.StereoBlend, 0, 1); err != nil {
		return err
	}

	if p.SideCutoff <= 0 || !core.IsFinite(p.SideCutoff) {
		return fmt.Errorf("copyeq side cutoff must be > 0: %f", p.SideCutoff)
	}

	return nil
}

// EffectiveNabla is the LMS step size the filters use.
func (p Params) EffectiveNabla() float64 { return p.Nabla * p.Nabla * nablaScale }

// EffectiveRho is the warping coefficient the filters use.
func (p Params) EffectiveRho() float64 { return rhoScale * p.Rho }

// Processor is a stereo pair of CopyEQ channels with a drive and saturator
// pre-stage.
type Processor struct {
	eqs    [2]*CopyEQ
	params Params
}

// NewProcessor creates a stereo matching processor. opts apply to both
// channels.
func NewProcessor(sampleRate float64, opts ...Option) (*Processor, error) {
	p := &Processor{params: DefaultParams()}

	for ch := range p.eqs {
		eq, err := NewCopyEQ(sampleRate, opts...)
		if err != nil {
			return nil, err
		}

		p.eqs[ch] = eq
	}

	p.eqs[0].SetPartner(p.eqs[1])
	p.eqs[1].SetPartner(p.eqs[0])

	p.params.WarpSide = p.eqs[0].cfg.warpSide
	p.params.Flip = p.eqs[0].cfg.flip
	p.params.SideCutoff = p.eqs[0].cfg.sideCutoff

	return p, nil
}

// Channel returns channel ch (0 or 1).
func (p *Processor) Channel(ch int) *CopyEQ { return p.eqs[ch] }

// Params returns the current parameters.
func (p *Processor) Params() Params { return p.params }

// SetParams validates and applies block-rate parameters to both channels.
func (p *Processor) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}

	for _, eq := range p.eqs {
		eq.SetNabla(params.EffectiveNabla())
		eq.SetRho(params.EffectiveRho())
		eq.SetFlip(params.Flip)
		eq.SetWarpSide(params.WarpSide)
		eq.SetStereoBlend(params.StereoBlend)

		if err := eq.SetSideCutoff(params.SideCutoff); err != nil {
			return err
		}
	}

	p.params = params

	return nil
}

// Reset reinitializes both channels for sampleRate.
func (p *Processor) Reset(sampleRate float64) error {
	for _, eq := range p.eqs {
		if err := eq.Reset(sampleRate); err != nil {
			return err
		}
	}

	return p.SetParams(p.params)
}

// Learn starts learning on both channels.
func (p *Processor) Learn() {
	for _, eq := range p.eqs {
		eq.Learn()
	}
}

// Freeze stops learning on both channels.
func (p *Processor) Freeze() {
	for _, eq := range p.eqs {
		eq.Freeze()
	}
}

// SetContinuous toggles continuous learning on both channels.
func (p *Processor) SetContinuous(on bool) {
	for _, eq := range p.eqs {
		eq.SetContinuous(on)
	}
}

// SetLearnDuration sets the learn duration in seconds on both channels.
func (p *Processor) SetLearnDuration(seconds float64) error {
	for _, eq := range p.eqs {
		if err := eq.SetLearnDuration(seconds); err != nil {
			return err
		}
	}

	return nil
}

// Mode returns the mode of channel 0.
func (p *Processor) Mode() Mode { return p.eqs[0].Mode() }

// Process filters up to two main channels in place. side supplies the
// reference; a missing side channel reuses the last one, and nil side
// disables learning for the block. Channel 0 completes before channel 1
// reads its taps.
func (p *Processor) Process(main, side [][]float64) {
	p.ProcessWithError(main, side, nil)
}

// ProcessWithError is Process that also records each channel's adaptation
// error in errOut[ch], as CopyEQ.ProcessBlockWithError does. errOut may be
// nil or shorter than main.
func (p *Processor) ProcessWithError(main, side, errOut [][]float64) {
	if p.params.Bypass {
		return
	}

	p.preStage(main)

	for ch := 0; ch < len(main) && ch < len(p.eqs); ch++ {
		var sc, e []float64
		if len(side) > 0 {
			sc = side[min(ch, len(side)-1)]
		}

		if ch < len(errOut) {
			e = errOut[ch]
		}

		p.eqs[ch].ProcessBlockWithError(main[ch], sc, e)
	}
}

func (p *Processor) preStage(main [][]float64) {
	drive := core.DBToLinear(p.params.DriveDB)
	for _, buf := range main {
		saturate.Drive(p.params.Saturator, drive, buf)
	}
}
