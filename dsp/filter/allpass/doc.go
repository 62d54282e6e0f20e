// Package allpass provides allpass building blocks: the first-order warping
// allpass [APF1] and the lattice allpass [Ladder].
//
// Both have unity magnitude response for stable coefficients, so they change
// only phase. APF1 is used as a frequency warper: replacing every unit delay
// of a filter by APF1(rho) bends its frequency axis, and warping with rho and
// then -rho maps the axis back. The ladder becomes a nonlinear allpass when
// its angle is driven sample by sample from the signal itself.
package allpass
