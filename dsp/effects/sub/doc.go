// Package sub implements a subharmonic generator. A lowpassed copy of the
// input drives a square wave that flips on every second change of slope
// direction, an octave below the dominant low-frequency component. The
// square is scaled by the input envelope, smoothed by a sixth-order
// Butterworth lowpass and a DC blocker, and mixed back into the input.
package sub
