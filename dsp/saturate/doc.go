// Package saturate provides the memoryless saturating nonlinearities shared
// by the nonlinear filters and effects.
//
// A saturator is selected with a [Kind] tag and evaluated with [Apply], a
// single switch over the tag, so every variant is a plain function call in
// the hot loop and can be tested exhaustively.
//
// Building with the fastmath tag routes tanh and the logistic sigmoid
// through exp approximations from algo-approx.
package saturate
