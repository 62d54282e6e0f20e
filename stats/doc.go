// Package stats provides time-domain signal statistics and error curves used
// to evaluate adaptive filters.
//
// Whole-buffer measures are computed with gonum's stat and floats packages.
// [Streaming] accumulates level statistics block by block for renderers that
// never hold a whole file in memory.
package stats
