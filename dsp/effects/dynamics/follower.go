package dynamics

import (
	"fmt"

	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-nldsp/dsp/filter/design"
	"github.com/cwbudde/algo-nldsp/dsp/smooth"
)

const (
	defaultFollowerHz = 10.0
	minFollowerHz     = 0.1
	maxFollowerHz     = 1000.0
	followerSteps     = 50
)

// Follower rectifies its input and smooths it with a one-pole lowpass.
// The effective cutoff is the user cutoff scaled per rectifier (x2 for
// FullWave, /2 for HalfWave, /10 for Diode) and glides multiplicatively.
type Follower struct {
	sampleRate float64
	rect       Rectifier
	userHz     float64
	freq       *smooth.Value
	coeffs     design.OnePole
	z          float64
}

// NewFollower creates a full-wave follower at 10 Hz.
func NewFollower(sampleRate float64) (*Follower, error) {
	f := &Follower{rect: FullWave, userHz: defaultFollowerHz}
	f.freq = smooth.New(smooth.Multiplicative, followerSteps, f.effectiveHz())

	if err := f.Reset(sampleRate); err != nil {
		return nil, err
	}

	return f, nil
}

// Reset clears the filter state, settles the cutoff glide and recomputes
// the coefficients for sampleRate.
func (f *Follower) Reset(sampleRate float64) error {
	if err := core.ValidateSampleRate("follower", sampleRate); err != nil {
		return err
	}

	f.sampleRate = sampleRate
	f.z = 0
	f.freq.Reset(f.freq.Target())
	f.updateCoefficients(f.freq.Current())

	return nil
}

// SetCutoff sets the user cutoff in Hz.
func (f *Follower) SetCutoff(hz float64) error {
	if err := core.CheckRange("follower cutoff", hz, minFollowerHz, maxFollowerHz); err != nil {
		return err
	}

	f.userHz = hz
	f.freq.SetTarget(f.effectiveHz())

	return nil
}

// Cutoff returns the user cutoff in Hz.
func (f *Follower) Cutoff() float64 { return f.userHz }

// SetRectifier selects the rectifier and retargets the cutoff.
func (f *Follower) SetRectifier(r Rectifier) error {
	if !r.Valid() {
		return fmt.Errorf("follower rectifier is invalid: %d", int(r))
	}

	f.rect = r
	f.freq.SetTarget(f.effectiveHz())

	return nil
}

// Rectifier returns the selected rectifier.
func (f *Follower) Rectifier() Rectifier { return f.rect }

// ProcessSample returns the smoothed rectified level.
func (f *Follower) ProcessSample(x float64) float64 {
	if f.freq.IsRamping() {
		f.updateCoefficients(f.freq.Next())
	}

	x = f.rect.Apply(x)
	y := f.z + f.coeffs.B0*x
	f.z = f.coeffs.B1*x - f.coeffs.A1*y

	return y
}

// ProcessBlock replaces buf with its smoothed level.
func (f *Follower) ProcessBlock(buf []float64) {
	for i, x := range buf {
		buf[i] = f.ProcessSample(x)
	}
}

func (f *Follower) effectiveHz() float64 {
	return f.userHz * f.rect.cutoffScale()
}

func (f *Follower) updateCoefficients(hz float64) {
	f.coeffs = design.OnePoleLowpass(min(hz, 0.49*f.sampleRate), f.sampleRate)
}
