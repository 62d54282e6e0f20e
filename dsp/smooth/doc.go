// Package smooth provides de-zippered parameter values.
//
// A [Value] ramps from its current value to a target over a fixed number of
// samples. Two laws are supported: [Linear] adds a constant increment per
// sample, [Multiplicative] multiplies by a constant ratio per sample, which
// keeps strictly positive quantities such as cutoff frequencies positive and
// sweeps them evenly on a log scale.
package smooth
