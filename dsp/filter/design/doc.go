// Package design provides closed-form biquad coefficient designers.
//
// The second-order designers produce [biquad.Coefficients] for the shapes of
// the nonlinear EQ: Bell, Notch, LowShelf, HighShelf, Lowpass and Highpass.
// Gains are linear amplitude ratios, not decibels. Bell, Lowpass and Highpass
// are derived with the bilinear transform prewarped at the cutoff
// (c = cot(w/2)); Notch and the shelves use the RBJ cookbook forms.
//
// [OnePoleLowpass] designs the bilinear first-order lowpass used by envelope
// followers.
//
// Invalid inputs (non-positive or non-finite frequency, sample rate or Q)
// return the zero value, which mutes a section rather than destabilizing it.
package design
