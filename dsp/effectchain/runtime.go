package effectchain

// Runtime is the per-node processing and configuration contract.
type Runtime interface {
	Configure(ctx Context, params Params) error
	Process(block []float64)
}

// SidechainProcessor is an optional interface for effects that take a
// second input, such as the matching EQ's reference signal. sidechain may
// be nil when the chain has none.
type SidechainProcessor interface {
	ProcessWithSidechain(main, sidechain []float64)
}

// Resetter is an optional interface for runtimes that hold state which
// must be cleared when the chain is prepared for a new stream.
type Resetter interface {
	Reset(ctx Context) error
}
