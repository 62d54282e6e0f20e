// Package shaper provides static waveshapers with state: an
// antiderivative-antialiased asymmetric soft clipper and a feedback
// wavefolder.
package shaper
