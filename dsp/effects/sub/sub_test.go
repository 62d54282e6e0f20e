package sub

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/internal/testutil"
	"github.com/cwbudde/algo-nldsp/stats"
)

const testSampleRate = 48000.0

func TestGeneratorFlipsOnSecondDirectionChange(t *testing.T) {
	g := NewGenerator()

	in := []float64{1, 2, 1, 0, 1, 2, 1, 0, 1}
	want := []float64{1, 1, 1, 1, -1, -1, -1, -1, 1}

	for i, x := range in {
		if got := g.ProcessSample(x); got != want[i] {
			t.Fatalf("sample %d: got %g want %g", i, got, want[i])
		}
	}

	g.Reset()

	if got := g.ProcessSample(-1); got != 1 {
		t.Fatalf("after reset: got %g want 1", got)
	}
}

func TestGeneratorHalvesFrequency(t *testing.T) {
	in := testutil.DeterministicSine(100, testSampleRate, 1, int(testSampleRate))
	out := make([]float64, len(in))

	g := NewGenerator()
	for i, x := range in {
		out[i] = g.ProcessSample(x)
	}

	inCrossings := stats.ZeroCrossings(in)
	outCrossings := stats.ZeroCrossings(out)

	if d := outCrossings - inCrossings/2; d < -1 || d > 1 {
		t.Fatalf("crossings: input %d output %d, want half", inCrossings, outCrossings)
	}
}

func TestProcessorProducesOctaveBelow(t *testing.T) {
	p, err := New(testSampleRate, WithMainGainDB(-60))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicSine(200, testSampleRate, 0.5, 2*int(testSampleRate))
	buf := append([]float64(nil), in...)

	for start := 0; start < len(buf); start += 256 {
		end := min(start+256, len(buf))
		p.ProcessBlock(buf[start:end])
	}

	testutil.RequireFinite(t, buf)

	// Skip the first second while the filters and envelope settle.
	half := len(buf) / 2
	inCrossings := stats.ZeroCrossings(in[half:])
	outCrossings := stats.ZeroCrossings(buf[half:])

	want := float64(inCrossings) / 2
	if math.Abs(float64(outCrossings)-want) > 0.05*want {
		t.Fatalf("crossings: input %d output %d, want about %g", inCrossings, outCrossings, want)
	}

	if rms := testutil.RMS(buf[half:]); rms < 0.1 {
		t.Fatalf("subharmonic too quiet: rms %g", rms)
	}
}

func TestSideGainFloorPassesMainThrough(t *testing.T) {
	p, err := New(testSampleRate, WithSideGainDB(-60))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := testutil.DeterministicSine(200, testSampleRate, 0.5, 4096)
	buf := append([]float64(nil), in...)
	p.ProcessBlock(buf)

	d, err := testutil.MaxAbsDiff(buf, in)
	if err != nil {
		t.Fatalf("MaxAbsDiff: %v", err)
	}

	if d > 2e-3 {
		t.Fatalf("max diff %g with side at -60 dB", d)
	}
}

func TestSilenceStaysSilent(t *testing.T) {
	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := make([]float64, 2048)
	p.ProcessBlock(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d: got %g want 0", i, v)
		}
	}
}

func TestMainGainRampsAcrossBlock(t *testing.T) {
	p, err := New(testSampleRate, WithSideGainDB(-60))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.SetMainGainDB(-60); err != nil {
		t.Fatalf("SetMainGainDB: %v", err)
	}

	buf := testutil.DC(0.5, 128)
	p.ProcessBlock(buf)

	if buf[0] < 0.49 {
		t.Fatalf("ramp start: got %g want about 0.5", buf[0])
	}

	if buf[127] > 0.02 {
		t.Fatalf("ramp end: got %g want near 0", buf[127])
	}

	next := testutil.DC(0.5, 16)
	p.ProcessBlock(next)

	target := 0.5 * core.DBToLinear(-60)
	if math.Abs(next[0]-target) > 2e-3 {
		t.Fatalf("settled gain: got %g want about %g", next[0], target)
	}
}

func TestOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"pre cutoff low", WithPreCutoff(10)},
		{"post cutoff high", WithPostCutoff(30000)},
		{"attack", WithAttack(0)},
		{"release", WithRelease(5000)},
		{"main gain", WithMainGainDB(40)},
		{"side gain", WithSideGainDB(-70)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(testSampleRate, tc.opt); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.SetPreCutoff(5); err == nil {
		t.Fatal("SetPreCutoff accepted 5 Hz")
	}

	if err := p.SetPostCutoff(250); err != nil {
		t.Fatalf("SetPostCutoff: %v", err)
	}

	if err := p.SetDetector(0.01, 100); err == nil {
		t.Fatal("SetDetector accepted attack 0.01 ms")
	}

	if err := p.SetSideGainDB(31); err == nil {
		t.Fatal("SetSideGainDB accepted 31 dB")
	}
}

func TestResetClearsState(t *testing.T) {
	p, err := New(testSampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	buf := testutil.DeterministicSine(100, testSampleRate, 1, 4096)
	p.ProcessBlock(buf)

	if err := p.Reset(96000); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if p.SampleRate() != 96000 {
		t.Fatalf("sample rate %g", p.SampleRate())
	}

	silent := make([]float64, 512)
	p.ProcessBlock(silent)

	for i, v := range silent {
		if v != 0 {
			t.Fatalf("sample %d after reset: got %g", i, v)
		}
	}
}

func BenchmarkProcessBlock(b *testing.B) {
	p, err := New(testSampleRate)
	if err != nil {
		b.Fatal(err)
	}

	buf := testutil.DeterministicSine(110, testSampleRate, 0.5, 512)

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		p.ProcessBlock(buf)
	}
}
