package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/effects/exciter"
	"github.com/cwbudde/algo-nldsp/dsp/effects/hysteresis"
	"github.com/cwbudde/algo-nldsp/dsp/effects/sub"
)

const (
	minGainDB = -60.0
	maxGainDB = 24.0
)

// subRuntime handles the "subharmonic" node type.
type subRuntime struct {
	fx *sub.Processor
}

func newSubRuntime(ctx Context) (Runtime, error) {
	fx, err := sub.New(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &subRuntime{fx: fx}, nil
}

func (r *subRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		err := r.fx.Reset(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	return firstErr(
		func() error { return r.fx.SetPreCutoff(p.GetNum("preCutoff", 500)) },
		func() error { return r.fx.SetPostCutoff(p.GetNum("postCutoff", 500)) },
		func() error { return r.fx.SetDetector(p.GetNum("attackMs", 10), p.GetNum("releaseMs", 100)) },
		func() error { return r.fx.SetMainGainDB(p.GetNum("mainGainDB", 0)) },
		func() error { return r.fx.SetSideGainDB(p.GetNum("sideGainDB", 0)) },
	)
}

func (r *subRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *subRuntime) Reset(ctx Context) error {
	return r.fx.Reset(ctx.SampleRate)
}

// exciterRuntime handles the "exciter" node type.
type exciterRuntime struct {
	fx *exciter.Processor
}

func newExciterRuntime(ctx Context) (Runtime, error) {
	fx, err := exciter.New(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &exciterRuntime{fx: fx}, nil
}

func (r *exciterRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		err := r.fx.Reset(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	rect, err := rectifierParam(p, r.fx.Rectifier())
	if err != nil {
		return wrapConfigureErr(err)
	}

	sat, err := saturatorParam(p, "saturator", r.fx.Saturator())
	if err != nil {
		return wrapConfigureErr(err)
	}

	return firstErr(
		func() error { return r.fx.SetDrive(p.GetNum("drive", r.fx.Drive())) },
		func() error { return r.fx.SetDetectorCutoff(p.GetNum("cutoff", r.fx.DetectorCutoff())) },
		func() error { return r.fx.SetRectifier(rect) },
		func() error { return r.fx.SetSaturator(sat) },
	)
}

func (r *exciterRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *exciterRuntime) Reset(ctx Context) error {
	return r.fx.Reset(ctx.SampleRate)
}

// hysteresisRuntime handles the "hysteresis" node type. The alpha
// transform order is fixed per processor, so a new value rebuilds it.
type hysteresisRuntime struct {
	fx    *hysteresis.Processor
	alpha float64
}

func newHysteresisRuntime(ctx Context) (Runtime, error) {
	fx, err := hysteresis.New(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &hysteresisRuntime{fx: fx, alpha: 1}, nil
}

func (r *hysteresisRuntime) Configure(ctx Context, p Params) error {
	alpha := p.GetNum("alpha", 1)
	drive := p.GetNum("drive", r.fx.Drive())
	width := p.GetNum("width", r.fx.Width())
	sat := p.GetNum("saturation", r.fx.Saturation())

	if alpha != r.alpha || ctx.SampleRate != r.fx.SampleRate() {
		fx, err := hysteresis.New(ctx.SampleRate,
			hysteresis.WithAlpha(alpha),
			hysteresis.WithDrive(drive),
			hysteresis.WithWidth(width),
			hysteresis.WithSaturation(sat),
		)
		if err != nil {
			return wrapConfigureErr(err)
		}

		r.fx = fx
		r.alpha = alpha

		return nil
	}

	return firstErr(
		func() error { return r.fx.SetDrive(drive) },
		func() error { return r.fx.SetWidth(width) },
		func() error { return r.fx.SetSaturation(sat) },
	)
}

func (r *hysteresisRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *hysteresisRuntime) Reset(ctx Context) error {
	return r.fx.Reset(ctx.SampleRate)
}

// gainRuntime handles the "gain" node type: a block-ramped level change.
type gainRuntime struct {
	ramp *core.Ramp
}

func newGainRuntime(_ Context) (Runtime, error) {
	return &gainRuntime{ramp: core.NewRamp(1)}, nil
}

func (r *gainRuntime) Configure(_ Context, p Params) error {
	db := p.GetNum("gainDB", 0)

	err := core.CheckRange("gain", db, minGainDB, maxGainDB)
	if err != nil {
		return wrapConfigureErr(err)
	}

	r.ramp.SetGainDB(db)

	return nil
}

func (r *gainRuntime) Process(block []float64) {
	r.ramp.ProcessBlock(block)
}

func (r *gainRuntime) Reset(_ Context) error {
	r.ramp.Reset()
	return nil
}

var (
	_ SidechainProcessor = (*copyEQRuntime)(nil)
	_ Resetter           = (*gainRuntime)(nil)
	_ Resetter           = (*subRuntime)(nil)
)
