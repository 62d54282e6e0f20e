package design

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/algo-nldsp/dsp/filter/biquad"
)

const sr = 48000.0

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func mag(c biquad.Coefficients, f float64) float64 {
	return cmplx.Abs(c.Response(f, sr))
}

func TestBellGainAtCenter(t *testing.T) {
	for _, gain := range []float64{0.25, 0.5, 1, 2, 4} {
		c := Bell(1000, 0.707, gain, sr)
		if got := mag(c, 1000); !almostEqual(got, gain, 1e-9) {
			t.Fatalf("gain %v: |H(fc)| = %v", gain, got)
		}
		if got := mag(c, 1); !almostEqual(got, 1, 1e-3) {
			t.Fatalf("gain %v: |H(DC)| = %v, want 1", gain, got)
		}
		if !c.Stable() {
			t.Fatalf("gain %v: unstable", gain)
		}
	}
}

func TestBellBoostCutInverse(t *testing.T) {
	boost := Bell(2500, 2, 3, sr)
	cut := Bell(2500, 2, 1.0/3, sr)
	for _, f := range []float64{50, 500, 2500, 9000, 20000} {
		p := boost.Response(f, sr) * cut.Response(f, sr)
		if cmplx.Abs(p-1) > 1e-9 {
			t.Fatalf("f=%v: boost*cut = %v, want 1", f, p)
		}
	}
}

func TestNotchNullAtCenter(t *testing.T) {
	c := Notch(1000, 0.707, sr)
	if got := mag(c, 1000); got > 1e-9 {
		t.Fatalf("|H(fc)| = %v, want 0", got)
	}
	if got := mag(c, 20); !almostEqual(got, 1, 1e-3) {
		t.Fatalf("|H(20 Hz)| = %v, want about 1", got)
	}
}

func TestShelves(t *testing.T) {
	const gain = 4.0
	ls := LowShelf(300, 0.707, gain, sr)
	if got := mag(ls, 0.1); !almostEqual(got, gain, 1e-3) {
		t.Fatalf("low shelf DC gain = %v, want %v", got, gain)
	}
	if got := mag(ls, sr/2-1); !almostEqual(got, 1, 1e-3) {
		t.Fatalf("low shelf Nyquist gain = %v, want 1", got)
	}

	hs := HighShelf(3000, 0.707, gain, sr)
	if got := mag(hs, 0.1); !almostEqual(got, 1, 1e-3) {
		t.Fatalf("high shelf DC gain = %v, want 1", got)
	}
	if got := mag(hs, sr/2-1); !almostEqual(got, gain, 1e-3) {
		t.Fatalf("high shelf Nyquist gain = %v, want %v", got, gain)
	}
}

func TestLowpassHighpass(t *testing.T) {
	lp := Lowpass(1000, ButterworthQ, sr)
	hp := Highpass(1000, ButterworthQ, sr)

	if got := mag(lp, 1000); !almostEqual(got, ButterworthQ, 1e-9) {
		t.Fatalf("lowpass |H(fc)| = %v, want -3 dB", got)
	}
	if got := mag(hp, 1000); !almostEqual(got, ButterworthQ, 1e-9) {
		t.Fatalf("highpass |H(fc)| = %v, want -3 dB", got)
	}
	if got := mag(lp, 1); !almostEqual(got, 1, 1e-6) {
		t.Fatalf("lowpass DC gain = %v", got)
	}
	if got := mag(hp, sr/2-0.01); !almostEqual(got, 1, 1e-6) {
		t.Fatalf("highpass Nyquist gain = %v", got)
	}
	if mag(lp, 10000) > 0.02 || mag(hp, 100) > 0.02 {
		t.Fatal("insufficient stopband attenuation a decade away")
	}
}

func TestOnePoleLowpass(t *testing.T) {
	p := OnePoleLowpass(1000, sr)
	c := p.Biquad()
	if got := mag(c, 0.01); !almostEqual(got, 1, 1e-6) {
		t.Fatalf("DC gain = %v", got)
	}
	if got := mag(c, 1000); !almostEqual(got, ButterworthQ, 1e-9) {
		t.Fatalf("|H(fc)| = %v, want -3 dB", got)
	}
	if got := mag(c, sr/2); got > 1e-9 {
		t.Fatalf("Nyquist gain = %v, want 0", got)
	}
}

func TestInvalidInputsReturnZero(t *testing.T) {
	cases := []biquad.Coefficients{
		Bell(0, 1, 2, sr),
		Bell(1000, 1, 0, sr),
		Notch(sr, 1, sr),
		LowShelf(-1, 1, 2, sr),
		HighShelf(1000, 1, math.Inf(1), sr),
		Lowpass(1000, 1, 0),
		Highpass(math.NaN(), 1, sr),
	}
	for i, c := range cases {
		if c != (biquad.Coefficients{}) {
			t.Fatalf("case %d: got %+v, want zero", i, c)
		}
	}
}

func TestNonPositiveQFallsBackToButterworth(t *testing.T) {
	if Lowpass(1000, 0, sr) != Lowpass(1000, ButterworthQ, sr) {
		t.Fatal("Q=0 did not fall back to Butterworth Q")
	}
}
