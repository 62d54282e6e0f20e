package gru

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

func mustNew(t *testing.T, p Params) *Unit {
	t.Helper()
	u, err := New(p)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return u
}

func TestRecurrenceByHand(t *testing.T) {
	p := Params{Wf: 2, Wh: 3, Uf: 1, Uh: 0.5, Bf: -0.5}
	u := mustNew(t, p)

	var y float64
	for i, x := range []float64{0.3, -0.7, 1.2, 0} {
		f := 1 / (1 + math.Exp(-(p.Wf*x + p.Uf*y + p.Bf)))
		y = f*y + (1-f)*math.Tanh(p.Wh*x+p.Uh*f*y)

		if got := u.ProcessSample(x); math.Abs(got-y) > 1e-6 {
			t.Fatalf("sample %d: got %v, want %v", i, got, y)
		}
	}
}

func TestOutputBounded(t *testing.T) {
	// y is a convex mix of the previous y and a tanh, so |y| < 1 always.
	extreme := Params{Wf: 10, Wh: 5, Uf: 5, Uh: 2, Bf: -1}
	for _, p := range []Params{DefaultParams(), extreme} {
		u := mustNew(t, p)
		buf := testutil.DeterministicNoise(4, 50, 8192)
		u.ProcessBlock(buf)
		testutil.RequireBounded(t, buf, 1)
		testutil.RequireFinite(t, buf)
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	u := mustNew(t, DefaultParams())
	buf := make([]float64, 256)
	u.ProcessBlock(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: %v", i, v)
		}
	}
}

func TestSetParamsGlides(t *testing.T) {
	u := mustNew(t, DefaultParams())
	target := Params{Wf: 4, Wh: 2, Uf: 1, Uh: 1, Bf: 2}
	if err := u.SetParams(target); err != nil {
		t.Fatal(err)
	}
	if u.Params() != target {
		t.Fatalf("targets = %+v", u.Params())
	}
	if !u.wf.IsRamping() {
		t.Fatal("weights jumped instead of gliding")
	}

	u.Reset()
	if u.wf.IsRamping() || u.wf.Current() != target.Wf {
		t.Fatal("Reset did not complete the glide")
	}
}

func TestValidate(t *testing.T) {
	bad := []Params{
		{Wf: -1, Wh: 1},
		{Wf: 1, Wh: 0},
		{Wf: 1, Wh: 1, Uf: 6},
		{Wf: 1, Wh: 1, Uh: 3},
		{Wf: 1, Wh: 1, Bf: -2},
		{Wf: math.NaN(), Wh: 1},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
		if _, err := New(p); err == nil {
			t.Fatalf("case %d: New accepted invalid params", i)
		}
	}

	u := mustNew(t, DefaultParams())
	if err := u.SetParams(bad[0]); err == nil {
		t.Fatal("SetParams accepted invalid params")
	}
	if u.Params() != DefaultParams() {
		t.Fatal("rejected params were applied")
	}
}

func BenchmarkUnit(b *testing.B) {
	u, _ := New(DefaultParams())
	buf := testutil.DeterministicSine(440, 48000, 1, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		u.ProcessBlock(buf)
	}
}
