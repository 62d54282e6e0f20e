// Package match implements an adaptive matching filter that learns the
// spectral balance of a reference (sidechain) signal and imposes it on the
// main signal.
//
// A [CopyEQ] runs an LMS-adapted FIR between a pair of first-order warping
// allpasses. While learning, every sample updates the taps toward the
// lowpassed, optionally warped reference. While frozen, the taps are fixed
// and may be blended with a partner channel's taps for a stereo link.
//
// [Processor] drives a stereo pair from block-rate [Params] and adds the
// drive and saturator pre-stage.
package match
