package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/effects/match"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

// copyEQRuntime handles the "copyeq" node type: a mono adaptive matching
// filter that learns from the node's sidechain input.
type copyEQRuntime struct {
	eq       *match.CopyEQ
	drive    float64
	sat      saturate.Kind
	learning bool
}

func newCopyEQRuntime(ctx Context) (Runtime, error) {
	eq, err := match.NewCopyEQ(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &copyEQRuntime{eq: eq, drive: 1}, nil
}

// Configure maps the node parameters onto the filter. A rising "learn"
// starts a learn run; a falling one stops a continuous run.
func (r *copyEQRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.eq.SampleRate() {
		err := r.eq.Reset(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	sat, err := saturatorParam(p, "saturator", saturate.None)
	if err != nil {
		return wrapConfigureErr(err)
	}

	params := match.DefaultParams()
	params.Nabla = p.GetNum("nabla", 0.3)
	params.Rho = p.GetNum("rho", 0)
	params.DriveDB = p.GetNum("drive", 0)
	params.Saturator = sat
	params.Flip = p.GetBool("flip", false)
	params.WarpSide = p.GetBool("warpSide", true)
	params.SideCutoff = p.GetNum("sideCutoff", params.SideCutoff)

	err = params.Validate()
	if err != nil {
		return wrapConfigureErr(err)
	}

	r.eq.SetNabla(params.EffectiveNabla())
	r.eq.SetRho(params.EffectiveRho())
	r.eq.SetFlip(params.Flip)
	r.eq.SetWarpSide(params.WarpSide)
	r.eq.SetContinuous(p.GetBool("continuous", false))

	err = firstErr(
		func() error { return r.eq.SetSideCutoff(params.SideCutoff) },
		func() error { return r.eq.SetLearnDuration(p.GetNum("learnSeconds", 5)) },
	)
	if err != nil {
		return err
	}

	r.drive = core.DBToLinear(params.DriveDB)
	r.sat = params.Saturator

	learn := p.GetBool("learn", false)

	switch {
	case learn && !r.learning:
		r.eq.Learn()
	case !learn && r.learning && p.GetBool("continuous", false):
		r.eq.Freeze()
	}

	r.learning = learn

	return nil
}

func (r *copyEQRuntime) Process(block []float64) {
	r.ProcessWithSidechain(block, nil)
}

func (r *copyEQRuntime) ProcessWithSidechain(main, sidechain []float64) {
	saturate.Drive(r.sat, r.drive, main)
	r.eq.ProcessBlock(main, sidechain)
}

// Reset restores identity taps and rearms the learn trigger, so the next
// Configure with "learn" set starts a fresh run.
func (r *copyEQRuntime) Reset(ctx Context) error {
	r.learning = false

	return r.eq.Reset(ctx.SampleRate)
}

// CopyEQ exposes the underlying filter, for reading the learned taps.
func (r *copyEQRuntime) CopyEQ() *match.CopyEQ { return r.eq }
