// Package spectrum analyses what the processors do in the frequency domain:
// the magnitude response of learned FIR taps, fractional-octave smoothing
// of such curves, and the harmonic content a nonlinearity adds to a sine.
package spectrum
