// Package effectchain runs a JSON-described graph of nonlinear effects.
//
// A graph has the reserved nodes "_input", "_output" and "_sidechain",
// routing nodes "split" and "sum", and effect nodes whose type names a
// factory in a [Registry]. Nodes run in topological order; a node with
// several parents receives their average. An edge into port 1 of an effect
// that implements [SidechainProcessor] feeds its sidechain input; without
// one the chain's external sidechain is used.
package effectchain
