package saturate

import (
	"math"
	"testing"
)

func TestApplyKnownValues(t *testing.T) {
	cases := []struct {
		kind Kind
		in   float64
		want float64
	}{
		{None, 3, 3},
		{Hard, 3, 1},
		{Hard, -0.25, -0.25},
		{Soft, 0.5, 1.5 * (0.5 - 0.125/3)},
		{Soft, 1, 1},
		{Soft, -4, -1},
		{Tanh, 0, 0},
		{Asinh, 0, 0},
	}

	for _, tc := range cases {
		if got := Apply(tc.kind, tc.in); math.Abs(got-tc.want) > 1e-6 {
			t.Fatalf("%v(%v) = %v, want %v", tc.kind, tc.in, got, tc.want)
		}
	}
}

func TestApplyIsOdd(t *testing.T) {
	for _, k := range Kinds() {
		for x := -3.0; x <= 3.0; x += 0.125 {
			if a, b := Apply(k, x), -Apply(k, -x); math.Abs(a-b) > 1e-6 {
				t.Fatalf("%v not odd at %v: %v vs %v", k, x, a, b)
			}
		}
	}
}

func TestBoundedKinds(t *testing.T) {
	for _, k := range []Kind{Hard, Soft, Tanh} {
		for x := -50.0; x <= 50.0; x += 0.5 {
			if y := Apply(k, x); math.Abs(y) > 1+1e-9 {
				t.Fatalf("%v(%v) = %v exceeds 1", k, x, y)
			}
		}
	}
}

func TestSoftClipIsContinuousAtKnee(t *testing.T) {
	below := Apply(Soft, 1-1e-9)
	above := Apply(Soft, 1+1e-9)
	if math.Abs(below-above) > 1e-8 {
		t.Fatalf("discontinuity at knee: %v vs %v", below, above)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}

	if _, err := ParseKind("fuzz"); err == nil {
		t.Fatal("expected error for unknown name")
	}

	if got := FromIndex(2.2); got != Soft {
		t.Fatalf("FromIndex(2.2) = %v, want soft", got)
	}

	if got := FromIndex(99); got != None {
		t.Fatalf("FromIndex(99) = %v, want none", got)
	}
}

func TestDriveUndoesGainForSmallSignals(t *testing.T) {
	buf := []float64{1e-4, -2e-4}
	Drive(Tanh, 4, buf)

	if math.Abs(buf[0]-1e-4) > 1e-9 || math.Abs(buf[1]+2e-4) > 1e-9 {
		t.Fatalf("small-signal drive changed level: %v", buf)
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("Sigmoid(0) = %v", got)
	}

	if got := Sigmoid(40); got < 0.999999 {
		t.Fatalf("Sigmoid(40) = %v", got)
	}
}

func BenchmarkApply(b *testing.B) {
	for _, k := range Kinds() {
		b.Run(k.String(), func(b *testing.B) {
			x := 0.3
			for b.Loop() {
				x = Apply(k, x+0.7) - 0.7
			}
			_ = x
		})
	}
}
