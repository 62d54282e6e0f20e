package effectchain

const testSampleRate = 48000.0

func testCtx() Context {
	return Context{SampleRate: testSampleRate, BlockSize: 64}
}

// stubRuntime is a minimal Runtime implementation for testing.
type stubRuntime struct {
	configureErr   error
	configureCalls int
	processCalls   int
	resetCalls     int
	lastCtx        Context
	lastParams     Params
}

func (s *stubRuntime) Configure(ctx Context, params Params) error {
	s.configureCalls++
	s.lastCtx = ctx
	s.lastParams = params

	return s.configureErr
}

func (s *stubRuntime) Process(_ []float64) {
	s.processCalls++
}

func (s *stubRuntime) Reset(ctx Context) error {
	s.resetCalls++
	s.lastCtx = ctx

	return nil
}

// scaleRuntime multiplies every sample by a fixed factor.
type scaleRuntime struct {
	factor float64
}

func (g *scaleRuntime) Configure(_ Context, params Params) error {
	g.factor = params.GetNum("factor", 1.0)

	return nil
}

func (g *scaleRuntime) Process(block []float64) {
	for i := range block {
		block[i] *= g.factor
	}
}

// addRuntime adds a constant to every sample (for testing multi-parent mixing).
type addRuntime struct {
	value float64
}

func (a *addRuntime) Configure(_ Context, params Params) error {
	a.value = params.GetNum("value", 0)

	return nil
}

func (a *addRuntime) Process(block []float64) {
	for i := range block {
		block[i] += a.value
	}
}

// sidechainStubRuntime replaces main with the sidechain it receives, or
// with -1 when the sidechain is nil.
type sidechainStubRuntime struct {
	nilCalls int
}

func (s *sidechainStubRuntime) Configure(_ Context, _ Params) error { return nil }

func (s *sidechainStubRuntime) Process(block []float64) {
	s.ProcessWithSidechain(block, nil)
}

func (s *sidechainStubRuntime) ProcessWithSidechain(main, sidechain []float64) {
	if sidechain == nil {
		s.nilCalls++

		for i := range main {
			main[i] = -1
		}

		return
	}

	copy(main, sidechain)
}

func testRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister("stub", func(_ Context) (Runtime, error) { return &stubRuntime{}, nil })
	r.MustRegister("scale", func(_ Context) (Runtime, error) { return &scaleRuntime{}, nil })
	r.MustRegister("add", func(_ Context) (Runtime, error) { return &addRuntime{}, nil })
	r.MustRegister("side", func(_ Context) (Runtime, error) { return &sidechainStubRuntime{}, nil })

	return r
}

func mustGraphJSON(g Graph) string {
	raw, err := g.JSON()
	if err != nil {
		panic(err)
	}

	return raw
}

func filled(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}
