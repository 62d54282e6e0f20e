package allpass

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

func TestAPF1ZeroRhoIsUnitDelay(t *testing.T) {
	a := NewAPF1(0)
	in := []float64{1, 2, 3, 4}
	a.ProcessBlock(in)

	want := []float64{0, 1, 2, 3}
	testutil.RequireSliceNearlyEqual(t, in, want, 0)
}

func TestAPF1DifferenceEquation(t *testing.T) {
	const rho = 0.6

	a := NewAPF1(rho)
	x := testutil.DeterministicNoise(5, 1, 64)

	// y[n] = rho*x[n] + x[n-1] - rho*y[n-1]
	var xPrev, yPrev float64
	for i, v := range x {
		want := rho*v + xPrev - rho*yPrev
		got := a.ProcessSample(v)
		if math.Abs(got-want) > 1e-12 {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
		xPrev, yPrev = v, got
	}
}

func TestAPF1PreservesSineRMS(t *testing.T) {
	for _, rho := range []float64{-0.9, -0.3, 0.45, 0.9} {
		a := NewAPF1(rho)
		sig := testutil.DeterministicSine(1000, 48000, 1, 48000)
		a.ProcessBlock(sig)

		got := testutil.RMS(sig[len(sig)-4800:])
		if math.Abs(got-1/math.Sqrt2) > 1e-3 {
			t.Fatalf("rho=%v: RMS = %v, want %v", rho, got, 1/math.Sqrt2)
		}
	}
}

func TestAPF1Reset(t *testing.T) {
	a := NewAPF1(0.5)
	a.ProcessSample(1)
	a.Reset()

	if y := a.ProcessSample(0); y != 0 {
		t.Fatalf("state not cleared: %v", y)
	}

	if a.Rho() != 0.5 {
		t.Fatalf("rho changed by reset: %v", a.Rho())
	}
}

func TestLadderOrderValidation(t *testing.T) {
	for _, order := range []int{0, 11} {
		if _, err := NewLadder(order); err == nil {
			t.Fatalf("expected error for order %d", order)
		}
	}
}

func TestLadderDefaultAnglePassesInput(t *testing.T) {
	l, err := NewLadder(4)
	if err != nil {
		t.Fatalf("NewLadder() error = %v", err)
	}

	in := testutil.DeterministicNoise(9, 1, 32)
	out := append([]float64(nil), in...)
	l.ProcessBlock(out)

	testutil.RequireSliceNearlyEqual(t, out, in, 0)
}

func TestLadderSingleStageMatchesRecursion(t *testing.T) {
	l, err := NewLadder(1)
	if err != nil {
		t.Fatalf("NewLadder() error = %v", err)
	}

	l.SetAngle(0.4)
	s, c := math.Sin(0.4), math.Cos(0.4)

	var d float64
	for i, x := range testutil.DeterministicNoise(2, 1, 50) {
		want := s*x + c*d
		d = c*x - s*d

		if got := l.ProcessSample(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("sample %d: got %v, want %v", i, got, want)
		}
	}
}

func TestLadderPreservesSineRMS(t *testing.T) {
	for _, order := range []int{1, 3, 10} {
		l, err := NewLadder(order)
		if err != nil {
			t.Fatalf("NewLadder(%d) error = %v", order, err)
		}

		l.SetAngle(0.9)

		// 1 kHz at 48 kHz has a 48 sample period; measure whole periods.
		sig := testutil.DeterministicSine(1000, 48000, 0.8, 48000)
		l.ProcessBlock(sig)

		got := testutil.RMS(sig[len(sig)-48*50:])
		want := 0.8 / math.Sqrt2
		if math.Abs(got-want) > 1e-3 {
			t.Fatalf("order=%d: RMS = %v, want %v", order, got, want)
		}
	}
}

func TestLadderImpulseEnergyIsOne(t *testing.T) {
	l, err := NewLadder(6)
	if err != nil {
		t.Fatalf("NewLadder() error = %v", err)
	}

	l.SetAngle(1.1)

	ir := testutil.Impulse(20000, 0)
	l.ProcessBlock(ir)

	energy := 0.0
	for _, v := range ir {
		energy += v * v
	}

	if math.Abs(energy-1) > 1e-6 {
		t.Fatalf("impulse response energy = %v, want 1", energy)
	}
}

func BenchmarkLadderProcessSample(b *testing.B) {
	l, err := NewLadder(MaxLadderOrder)
	if err != nil {
		b.Fatal(err)
	}

	x := 0.1
	for b.Loop() {
		l.SetAngle(x)
		x = l.ProcessSample(x)
	}
}
