package dynamics

import (
	"math"

	"github.com/cwbudde/algo-nldsp/dsp/core"
)

const (
	defaultAttackMs  = 1.0
	defaultReleaseMs = 50.0

	minAttackMs  = 0.1
	maxAttackMs  = 1000.0
	minReleaseMs = 1.0
	maxReleaseMs = 3000.0
)

// LevelDetector is a peak envelope follower:
//
//	level += b * (|x| - level)
//
// with b taken from the attack time while |x| exceeds the level and from
// the release time otherwise. b = 1 - exp(-1/(fs*ms/1000)).
type LevelDetector struct {
	sampleRate float64
	attackMs   float64
	releaseMs  float64
	bAttack    float64
	bRelease   float64
	level      float64
}

// NewLevelDetector creates a detector with 1 ms attack and 50 ms release.
func NewLevelDetector(sampleRate float64) (*LevelDetector, error) {
	d := &LevelDetector{attackMs: defaultAttackMs, releaseMs: defaultReleaseMs}
	if err := d.Reset(sampleRate); err != nil {
		return nil, err
	}

	return d, nil
}

// Reset clears the level and recomputes the coefficients for sampleRate.
func (d *LevelDetector) Reset(sampleRate float64) error {
	if err := core.ValidateSampleRate("level detector", sampleRate); err != nil {
		return err
	}

	d.sampleRate = sampleRate
	d.level = 0
	d.bAttack = timeCoefficient(d.attackMs, sampleRate)
	d.bRelease = timeCoefficient(d.releaseMs, sampleRate)

	return nil
}

// SetAttack sets the attack time in milliseconds.
func (d *LevelDetector) SetAttack(ms float64) error {
	if err := core.CheckRange("level detector attack", ms, minAttackMs, maxAttackMs); err != nil {
		return err
	}

	if ms != d.attackMs {
		d.attackMs = ms
		d.bAttack = timeCoefficient(ms, d.sampleRate)
	}

	return nil
}

// SetRelease sets the release time in milliseconds.
func (d *LevelDetector) SetRelease(ms float64) error {
	if err := core.CheckRange("level detector release", ms, minReleaseMs, maxReleaseMs); err != nil {
		return err
	}

	if ms != d.releaseMs {
		d.releaseMs = ms
		d.bRelease = timeCoefficient(ms, d.sampleRate)
	}

	return nil
}

// Attack returns the attack time in milliseconds.
func (d *LevelDetector) Attack() float64 { return d.attackMs }

// Release returns the release time in milliseconds.
func (d *LevelDetector) Release() float64 { return d.releaseMs }

// Level returns the current envelope.
func (d *LevelDetector) Level() float64 { return d.level }

// ProcessSample advances the envelope by one sample and returns it.
func (d *LevelDetector) ProcessSample(x float64) float64 {
	a := math.Abs(x)
	if a > d.level {
		d.level += d.bAttack * (a - d.level)
	} else {
		d.level += d.bRelease * (a - d.level)
	}

	return d.level
}

// ProcessBlock replaces buf with its envelope.
func (d *LevelDetector) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = d.ProcessSample(x)
	}
}

func timeCoefficient(ms, sampleRate float64) float64 {
	return 1 - math.Exp(-1/(sampleRate*ms/1000))
}
