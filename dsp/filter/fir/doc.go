// Package fir provides a ring-buffer FIR filter with settable, adaptable taps.
//
// A [Filter] keeps its taps and its sample history as independent state:
// [Filter.SetCoefficients] never touches the history and [Filter.Reset] never
// touches the taps. Besides the usual [Filter.ProcessSample], the filter
// exposes the individual steps of one sample (write, correlate, adapt,
// advance) so adaptive algorithms can run their update between computing the
// output and advancing the write pointer.
//
// Filter lengths that must cover a fixed time span scale with the sample rate;
// see [OrderForSampleRate].
package fir
