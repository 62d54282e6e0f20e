package hysteresis

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/internal/testutil"
)

const testSampleRate = 48000.0

func TestLangevin(t *testing.T) {
	for _, x := range []float64{-3, -0.5, 0.01, 0.5, 2, 8} {
		const h = 1e-5
		numeric := (langevin(x+h) - langevin(x-h)) / (2 * h)

		if d := math.Abs(numeric - langevinDeriv(x)); d > 1e-6 {
			t.Fatalf("L'(%g): analytic %g numeric %g", x, langevinDeriv(x), numeric)
		}

		if langevin(-x) != -langevin(x) {
			t.Fatalf("L is not odd at %g", x)
		}
	}

	// Both branches meet at the series switch-over.
	x := 1.0001 * langevinEps
	if d := math.Abs(langevin(x) - x/3); d > 1e-9 {
		t.Fatalf("L branch gap %g", d)
	}

	if d := math.Abs(langevinDeriv(x) - 1.0/3); d > 1e-6 {
		t.Fatalf("L' branch gap %g", d)
	}

	if math.Abs(langevin(50)-(1-1.0/50)) > 1e-12 {
		t.Fatalf("L(50) = %g", langevin(50))
	}
}

func TestModelLoopLags(t *testing.T) {
	m := NewModel(testSampleRate, 1)
	x := testutil.DeterministicSine(100, testSampleRate, 1, 4*480)

	var rising, falling []float64

	prev := 0.0
	for i, h := range x {
		out := m.Process(h)

		// Record M where the field crosses zero after the first period.
		if i > 480 {
			switch {
			case prev < 0 && h >= 0:
				rising = append(rising, out)
			case prev > 0 && h <= 0:
				falling = append(falling, out)
			}
		}

		prev = h
	}

	if len(rising) == 0 || len(falling) == 0 {
		t.Fatalf("no zero crossings recorded: %d rising %d falling", len(rising), len(falling))
	}

	if rising[len(rising)-1] >= falling[len(falling)-1] {
		t.Fatalf("no remanence: M %g on the rising branch, %g on the falling branch",
			rising[len(rising)-1], falling[len(falling)-1])
	}
}

func TestModelSaturates(t *testing.T) {
	m := NewModel(testSampleRate, 1)
	m.Cook(1, 0.5, 0.5)

	x := testutil.DeterministicSine(50, testSampleRate, 5, 4800)

	peak := 0.0
	for _, h := range x {
		peak = max(peak, math.Abs(m.Process(h)))
	}

	// Saturation magnetisation for sat 0.5 is 1.25.
	if peak > 1.4 || peak < 0.9 {
		t.Fatalf("peak magnetisation %g, want just below 1.25", peak)
	}
}

func TestOddSymmetry(t *testing.T) {
	pos, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	neg, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := testutil.DeterministicSine(220, testSampleRate, 0.8, 4096)
	b := make([]float64, len(a))
	for i, v := range a {
		b[i] = -v
	}

	pos.ProcessBlock(a)
	neg.ProcessBlock(b)

	testutil.RequireFinite(t, a)

	for i := range a {
		if math.Abs(a[i]+b[i]) > 1e-12 {
			t.Fatalf("sample %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestOutputFiniteAndBounded(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		amp  float64
		opts []Option
	}{
		{"default", 1000, 1, nil},
		{"hot", 100, 10, []Option{WithDrive(1), WithSaturation(1)}},
		{"wide", 1000, 1, []Option{WithWidth(1)}},
		{"alpha", 1000, 1, []Option{WithAlpha(0.75)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(testSampleRate, tc.opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			buf := testutil.DeterministicSine(tc.freq, testSampleRate, tc.amp, 9600)
			p.ProcessBlock(buf)

			testutil.RequireFinite(t, buf)
			testutil.RequireBounded(t, buf, 5)
		})
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := make([]float64, 1024)
	p.ProcessBlock(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: got %g", i, v)
		}
	}
}

func TestMakeupFollowsParameters(t *testing.T) {
	p, err := New(testSampleRate, WithWidth(1), WithSaturation(1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, want := p.Makeup(), 1.6/0.5; math.Abs(got-want) > 1e-12 {
		t.Fatalf("makeup %g want %g", got, want)
	}

	if err := p.SetSaturation(0); err != nil {
		t.Fatalf("SetSaturation: %v", err)
	}

	buf := make([]float64, smoothingSteps/2)
	p.ProcessBlock(buf)

	mid := p.Makeup()
	if mid >= 3.2 || mid <= 0.8 {
		t.Fatalf("makeup %g not between the endpoints mid-glide", mid)
	}

	if err := p.Reset(96000); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if got, want := p.Makeup(), 1.6/2; math.Abs(got-want) > 1e-12 {
		t.Fatalf("makeup after reset %g want %g", got, want)
	}

	if p.SampleRate() != 96000 || p.Saturation() != 0 {
		t.Fatalf("sample rate %g saturation %g", p.SampleRate(), p.Saturation())
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"drive", WithDrive(-0.1)},
		{"width", WithWidth(1.1)},
		{"saturation", WithSaturation(2)},
		{"alpha", WithAlpha(0.2)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(testSampleRate, tc.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := New(-1); err == nil {
		t.Fatal("expected sample rate error")
	}

	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.SetDrive(1.5); err == nil || p.Drive() != defaultDrive {
		t.Fatalf("SetDrive(1.5): err %v drive %g", err, p.Drive())
	}

	if err := p.SetWidth(0.2); err != nil || p.Width() != 0.2 {
		t.Fatalf("SetWidth(0.2): err %v width %g", err, p.Width())
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	p, err := New(testSampleRate)
	if err != nil {
		b.Fatal(err)
	}

	buf := testutil.DeterministicSine(440, testSampleRate, 0.5, 512)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		p.ProcessBlock(buf)
	}
}
