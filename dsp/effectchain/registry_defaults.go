package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
)

// DefaultRegistry returns a Registry pre-populated with all built-in effect runtimes.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("copyeq", newCopyEQRuntime)
	r.MustRegister("eq", eqFactory(biquad.Linear, saturate.None))
	r.MustRegister("nlbiquad", eqFactory(biquad.NonlinearState, saturate.Tanh))
	r.MustRegister("nlfeedback", eqFactory(biquad.NonlinearFeedback, saturate.Tanh))
	r.MustRegister("nlallpass", newNLAllpassRuntime)
	r.MustRegister("clipper", newClipperRuntime)
	r.MustRegister("wavefolder", newWavefolderRuntime)
	r.MustRegister("gru", newGRURuntime)
	r.MustRegister("subharmonic", newSubRuntime)
	r.MustRegister("exciter", newExciterRuntime)
	r.MustRegister("hysteresis", newHysteresisRuntime)
	r.MustRegister("gain", newGainRuntime)

	return r
}
