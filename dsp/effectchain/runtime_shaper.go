package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/effects/gru"
	"github.com/cwbudde/algo-nldsp/dsp/effects/shaper"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

// clipperRuntime handles the "clipper" node type.
type clipperRuntime struct {
	fx *shaper.DoubleSoftClipper
}

func newClipperRuntime(_ Context) (Runtime, error) {
	fx, err := shaper.NewDoubleSoftClipper()
	if err != nil {
		return nil, err
	}

	return &clipperRuntime{fx: fx}, nil
}

func (r *clipperRuntime) Configure(_ Context, p Params) error {
	return firstErr(
		func() error { return r.fx.SetUpperLimit(p.GetNum("upperLimit", 1)) },
		func() error { return r.fx.SetLowerLimit(p.GetNum("lowerLimit", 1)) },
		func() error { return r.fx.SetSlope(p.GetNum("slope", 0)) },
		func() error { return r.fx.SetWidth(p.GetNum("width", 0)) },
		func() error { return r.fx.SetUpperSkew(p.GetNum("upperSkew", 0)) },
		func() error { return r.fx.SetLowerSkew(p.GetNum("lowerSkew", 0)) },
	)
}

func (r *clipperRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *clipperRuntime) Reset(_ Context) error {
	r.fx.Reset()
	return nil
}

// wavefolderRuntime handles the "wavefolder" node type.
type wavefolderRuntime struct {
	fx *shaper.Wavefolder
}

func newWavefolderRuntime(ctx Context) (Runtime, error) {
	fx, err := shaper.NewWavefolder(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &wavefolderRuntime{fx: fx}, nil
}

func (r *wavefolderRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		err := r.fx.Reset(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	sat, err := saturatorParam(p, "saturator", saturate.None)
	if err != nil {
		return wrapConfigureErr(err)
	}

	wave, err := waveParam(p, shaper.Zero)
	if err != nil {
		return wrapConfigureErr(err)
	}

	return firstErr(
		func() error { return r.fx.SetFrequency(p.GetNum("freq", 0.5)) },
		func() error { return r.fx.SetDepth(p.GetNum("depth", 0.1)) },
		func() error { return r.fx.SetFeedforward(p.GetNum("ff", 1)) },
		func() error { return r.fx.SetFeedback(p.GetNum("fb", 0)) },
		func() error { return r.fx.SetSaturator(sat) },
		func() error { return r.fx.SetWave(wave) },
	)
}

func (r *wavefolderRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *wavefolderRuntime) Reset(ctx Context) error {
	return r.fx.Reset(ctx.SampleRate)
}

// gruRuntime handles the "gru" node type.
type gruRuntime struct {
	unit *gru.Unit
}

func newGRURuntime(_ Context) (Runtime, error) {
	unit, err := gru.New(gru.DefaultParams())
	if err != nil {
		return nil, err
	}

	return &gruRuntime{unit: unit}, nil
}

func (r *gruRuntime) Configure(_ Context, p Params) error {
	def := gru.DefaultParams()

	return wrapConfigureErr(r.unit.SetParams(gru.Params{
		Wf: p.GetNum("wf", def.Wf),
		Wh: p.GetNum("wh", def.Wh),
		Uf: p.GetNum("uf", def.Uf),
		Uh: p.GetNum("uh", def.Uh),
		Bf: p.GetNum("bf", def.Bf),
	}))
}

func (r *gruRuntime) Process(block []float64) {
	r.unit.ProcessBlock(block)
}

func (r *gruRuntime) Reset(_ Context) error {
	r.unit.Reset()
	return nil
}
