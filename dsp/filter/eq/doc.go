// Package eq implements a single smoothed EQ band built on a biquad that can
// run with a saturator in its state or feedback path.
//
// Frequency, Q and gain are de-zippered: while any of them ramps, the
// coefficients are recomputed every sample. Switching the band on or off
// crossfades between the dry and the filtered signal over exactly one block,
// and a band that has been switched off starts from silence the next time it
// is switched on.
package eq
