// Package biquad provides second-order IIR filter runtime primitives.
//
// A [Section] implements Direct Form II Transposed processing for one
// second-order section defined by [Coefficients]. Besides the linear
// structure it supports two nonlinear variants selected by [Topology]:
// saturating the two state variables ([NonlinearState]) and saturating the
// output before it enters the feedback terms ([NonlinearFeedback]). Both
// share the coefficient logic of the linear filter and differ only in where
// the saturator sits.
//
// Coefficient design lives in dsp/filter/design.
package biquad
