package match

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

func mustProcessor(t *testing.T, opts ...Option) *Processor {
	t.Helper()
	p, err := NewProcessor(sr, opts...)
	if err != nil {
		t.Fatalf("NewProcessor: %v", err)
	}
	return p
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"nabla", func(p *Params) { p.Nabla = 1.5 }},
		{"rho", func(p *Params) { p.Rho = -2 }},
		{"drive", func(p *Params) { p.DriveDB = 40 }},
		{"saturator", func(p *Params) { p.Saturator = saturate.Kind(99) }},
		{"blend", func(p *Params) { p.StereoBlend = -0.1 }},
		{"cutoff", func(p *Params) { p.SideCutoff = 0 }},
	}

	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEffectiveMapping(t *testing.T) {
	p := Params{Nabla: 0.5, Rho: -1}
	if got := p.EffectiveNabla(); math.Abs(got-0.025) > 1e-15 {
		t.Fatalf("EffectiveNabla = %v, want 0.025", got)
	}
	if got := p.EffectiveRho(); got != -0.9 {
		t.Fatalf("EffectiveRho = %v, want -0.9", got)
	}
}

func TestSetParamsRejectsInvalid(t *testing.T) {
	p := mustProcessor(t)
	bad := DefaultParams()
	bad.Rho = 3
	if err := p.SetParams(bad); err == nil {
		t.Fatal("expected error")
	}
	if p.Params() != DefaultParams() {
		t.Fatal("params changed after rejected update")
	}
}

func TestBypassLeavesBuffersUntouched(t *testing.T) {
	p := mustProcessor(t)
	params := DefaultParams()
	params.Bypass = true
	params.DriveDB = 12
	params.Saturator = saturate.Hard
	if err := p.SetParams(params); err != nil {
		t.Fatal(err)
	}

	left := testutil.DeterministicNoise(1, 2, 128)
	right := testutil.DeterministicNoise(2, 2, 128)
	main := [][]float64{append([]float64(nil), left...), append([]float64(nil), right...)}
	p.Process(main, nil)

	testutil.RequireSliceNearlyEqual(t, main[0], left, 0)
	testutil.RequireSliceNearlyEqual(t, main[1], right, 0)
}

func TestPreStageSaturates(t *testing.T) {
	p := mustProcessor(t)
	params := DefaultParams()
	params.DriveDB = 20
	params.Saturator = saturate.Hard
	if err := p.SetParams(params); err != nil {
		t.Fatal(err)
	}

	// Identity taps delay by two samples; hard clipping at drive 10 bounds
	// the output at 1/10.
	main := [][]float64{testutil.DC(1, 16)}
	p.Process(main, nil)

	for i := 2; i < len(main[0]); i++ {
		if math.Abs(main[0][i]-0.1) > 1e-9 {
			t.Fatalf("index %d: got %v, want 0.1", i, main[0][i])
		}
	}
}

func TestProcessLearnsBothChannels(t *testing.T) {
	p := mustProcessor(t, WithContinuous(true))
	params := DefaultParams()
	params.Nabla = 0.1
	if err := p.SetParams(params); err != nil {
		t.Fatal(err)
	}

	p.Learn()
	main := [][]float64{
		testutil.WhiteNoise(1, 1, 4096),
		testutil.WhiteNoise(2, 1, 4096),
	}
	// A single reference channel feeds both.
	side := [][]float64{testutil.WhiteNoise(3, 1, 4096)}
	p.Process(main, side)

	for ch := range 2 {
		if p.Channel(ch).Coefficients()[0] == 1 {
			t.Fatalf("channel %d did not adapt", ch)
		}
		testutil.RequireFinite(t, main[ch])
	}
	if p.Mode() != Learning {
		t.Fatal("continuous learning stopped")
	}

	p.Freeze()
	if p.Channel(1).Mode() != Frozen {
		t.Fatal("Freeze did not reach channel 1")
	}
}

func TestProcessorReset(t *testing.T) {
	p := mustProcessor(t)
	params := DefaultParams()
	params.Rho = 0.5
	if err := p.SetParams(params); err != nil {
		t.Fatal(err)
	}
	if err := p.Reset(96000); err != nil {
		t.Fatal(err)
	}
	if p.Channel(0).Order() != 256 || p.Channel(0).SampleRate() != 96000 {
		t.Fatalf("order %d at %v after reset", p.Channel(0).Order(), p.Channel(0).SampleRate())
	}
	if p.Params().Rho != 0.5 {
		t.Fatal("params lost on reset")
	}
	if err := p.Reset(-1); err == nil {
		t.Fatal("expected sample rate error")
	}
}

func TestProcessWithErrorRecordsLearningError(t *testing.T) {
	p := mustProcessor(t, WithContinuous(true))
	params := DefaultParams()
	params.Nabla = 0.1
	if err := p.SetParams(params); err != nil {
		t.Fatal(err)
	}

	main := [][]float64{testutil.WhiteNoise(1, 1, 256), testutil.WhiteNoise(2, 1, 256)}
	side := [][]float64{testutil.WhiteNoise(3, 1, 256)}
	errOut := [][]float64{make([]float64, 256)}

	p.ProcessWithError(main, side, errOut)
	if rms := testutil.RMS(errOut[0]); rms != 0 {
		t.Fatalf("frozen pass recorded error rms %v", rms)
	}

	p.Learn()
	p.ProcessWithError(main, side, errOut)
	if testutil.RMS(errOut[0]) == 0 {
		t.Fatal("learning pass recorded no error")
	}
}
