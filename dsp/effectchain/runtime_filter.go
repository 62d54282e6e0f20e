package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/effects/nlallpass"
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/filter/eq"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

// eqRuntime handles the "eq", "nlbiquad" and "nlfeedback" node types. The
// three share one filter and differ only in the biquad state path.
type eqRuntime struct {
	f      *eq.Filter
	defSat saturate.Kind
}

func eqFactory(topology biquad.Topology, defSat saturate.Kind) Factory {
	return func(ctx Context) (Runtime, error) {
		f, err := eq.New(ctx.SampleRate,
			eq.WithTopology(topology),
			eq.WithSaturator(defSat),
		)
		if err != nil {
			return nil, err
		}

		return &eqRuntime{f: f, defSat: defSat}, nil
	}
}

func (r *eqRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.f.SampleRate() {
		err := r.f.SetSampleRate(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	shape, err := shapeParam(p, r.f.Shape())
	if err != nil {
		return wrapConfigureErr(err)
	}

	sat, err := saturatorParam(p, "saturator", r.defSat)
	if err != nil {
		return wrapConfigureErr(err)
	}

	err = firstErr(
		func() error { return r.f.SetFrequency(p.GetNum("freq", r.f.Frequency())) },
		func() error { return r.f.SetQ(p.GetNum("q", r.f.Q())) },
		func() error { return r.f.SetGainDB(p.GetNum("gainDB", r.f.GainDB())) },
		func() error { return r.f.SetSaturator(sat) },
	)
	if err != nil {
		return err
	}

	if shape != r.f.Shape() {
		err = r.f.SetShape(shape)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	r.f.ToggleOnOff(p.GetBool("enabled", true))

	return nil
}

func (r *eqRuntime) Process(block []float64) {
	r.f.ProcessBlock(block)
}

func (r *eqRuntime) Reset(_ Context) error {
	r.f.Reset()
	return nil
}

// nlAllpassRuntime handles the "nlallpass" node type.
type nlAllpassRuntime struct {
	fx *nlallpass.Processor
}

func newNLAllpassRuntime(ctx Context) (Runtime, error) {
	fx, err := nlallpass.New(ctx.SampleRate)
	if err != nil {
		return nil, err
	}

	return &nlAllpassRuntime{fx: fx}, nil
}

func (r *nlAllpassRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate != r.fx.SampleRate() {
		err := r.fx.Reset(ctx.SampleRate)
		if err != nil {
			return wrapConfigureErr(err)
		}
	}

	sat, err := saturatorParam(p, "saturator", r.fx.Saturator())
	if err != nil {
		return wrapConfigureErr(err)
	}

	return firstErr(
		func() error { return r.fx.SetOrder(orderParam(p, "order", r.fx.Order())) },
		func() error { return r.fx.SetGain(p.GetNum("gain", r.fx.Gain())) },
		func() error { return r.fx.SetSaturator(sat) },
		func() error { return r.fx.SetCutoff(p.GetNum("cutoff", r.fx.Cutoff())) },
	)
}

func (r *nlAllpassRuntime) Process(block []float64) {
	r.fx.ProcessBlock(block)
}

func (r *nlAllpassRuntime) Reset(ctx Context) error {
	return r.fx.Reset(ctx.SampleRate)
}
