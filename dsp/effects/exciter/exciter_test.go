package exciter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-nldsp/dsp/saturate"
	"github.com/cwbudde/algo-nldsp/internal/testutil"
	"github.com/cwbudde/algo-nldsp/stats"
)

const testSampleRate = 48000.0

func TestDefaults(t *testing.T) {
	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if p.Drive() != 8 || p.DetectorCutoff() != 10 {
		t.Fatalf("drive %g cutoff %g", p.Drive(), p.DetectorCutoff())
	}

	if p.Rectifier() != dynamics.FullWave || p.Saturator() != saturate.Tanh {
		t.Fatalf("rectifier %v saturator %v", p.Rectifier(), p.Saturator())
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

func TestFullWaveIsOdd(t *testing.T) {
	pos, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	neg, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a := testutil.DeterministicNoise(3, 1, 4096)
	b := make([]float64, len(a))
	for i, v := range a {
		b[i] = -v
	}

	pos.ProcessBlock(a)
	neg.ProcessBlock(b)

	for i := range a {
		if a[i] != -b[i] {
			t.Fatalf("sample %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestSteadyStateLevel(t *testing.T) {
	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := testutil.DeterministicSine(1000, testSampleRate, 1, int(testSampleRate))
	for start := 0; start < len(buf); start += 512 {
		p.ProcessBlock(buf[start:min(start+512, len(buf))])
	}

	testutil.RequireFinite(t, buf)

	peak := stats.Peak(buf[len(buf)/2:])
	if peak < 0.6 || peak > 1.0 {
		t.Fatalf("steady-state peak %g, want about 0.8", peak)
	}
}

func TestLouderInputAddsMoreLevel(t *testing.T) {
	levelAt := func(amp float64) float64 {
		p, err := New(testSampleRate)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		buf := testutil.DeterministicSine(500, testSampleRate, amp, int(testSampleRate/2))
		p.ProcessBlock(buf)

		return testutil.RMS(buf[len(buf)/2:])
	}

	quiet, loud := levelAt(0.1), levelAt(1)
	if loud <= quiet {
		t.Fatalf("rms %g at full scale not above %g at -20 dB", loud, quiet)
	}
}

func TestDriveRampsAcrossBlock(t *testing.T) {
	ref, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.SetDrive(2); err != nil {
		t.Fatalf("SetDrive: %v", err)
	}

	a := testutil.DeterministicSine(300, testSampleRate, 0.5, 256)
	b := append([]float64(nil), a...)

	ref.ProcessBlock(a)
	p.ProcessBlock(b)

	// The first sample still uses the old drive.
	if a[0] != b[0] {
		t.Fatalf("first sample differs: %g vs %g", a[0], b[0])
	}

	if math.Abs(b[200]) >= math.Abs(a[200]) {
		t.Fatalf("lower drive not applied late in the block: %g vs %g", b[200], a[200])
	}
}

func TestRectifierAttenuation(t *testing.T) {
	tests := []struct {
		rect dynamics.Rectifier
		want float64
	}{
		{dynamics.FullWave, math.Pow(10, -3.0/20)},
		{dynamics.HalfWave, 1},
		{dynamics.Diode, math.Pow(10, 11.5/20)},
	}

	for _, tc := range tests {
		t.Run(tc.rect.String(), func(t *testing.T) {
			p, err := New(testSampleRate, WithRectifier(tc.rect))
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if got := p.attenuation(); math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("attenuation %g want %g", got, tc.want)
			}
		})
	}
}

func TestHardSaturatorBoundsShape(t *testing.T) {
	p, err := New(testSampleRate, WithSaturator(saturate.Hard), WithDrive(12))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := testutil.DC(1, 4800)
	p.ProcessBlock(buf)

	// For a settled DC input the shaper is pinned at 1 and the output is
	// the attenuated envelope.
	last := buf[len(buf)-1]
	want := attenFullWave * p.control * 0.12
	if math.Abs(last-want) > 0.05*want {
		t.Fatalf("settled output %g want about %g", last, want)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"drive low", WithDrive(0.5)},
		{"drive high", WithDrive(13)},
		{"cutoff low", WithDetectorCutoff(0.5)},
		{"cutoff high", WithDetectorCutoff(31)},
		{"rectifier", WithRectifier(dynamics.Rectifier(7))},
		{"saturator", WithSaturator(saturate.Kind(-1))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(testSampleRate, tc.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := New(0); err == nil {
		t.Fatal("expected sample rate error")
	}

	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.SetDrive(20); err == nil || p.Drive() != 8 {
		t.Fatalf("SetDrive(20): err %v drive %g", err, p.Drive())
	}

	if err := p.SetDetectorCutoff(20); err != nil || p.DetectorCutoff() != 20 {
		t.Fatalf("SetDetectorCutoff(20): err %v cutoff %g", err, p.DetectorCutoff())
	}

	if err := p.SetRectifier(dynamics.Diode); err != nil || p.Rectifier() != dynamics.Diode {
		t.Fatalf("SetRectifier: err %v", err)
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
