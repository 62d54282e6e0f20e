package effectchain

import (
	"github.com/cwbudde/algo-nldsp/dsp/core"
	"github.com/cwbudde/algo-vecmath"
)

// Process applies the effect chain to the block in-place without an
// external sidechain. Returns false if the chain has no valid graph.
func (c *Chain) Process(block []float64) bool {
	return c.ProcessWithSidechain(block, nil)
}

// ProcessWithSidechain applies the chain to main in-place. side feeds the
// "_sidechain" node and every sidechain effect that has no port-1 edge;
// it may be nil. Returns false if the chain has no valid graph.
func (c *Chain) ProcessWithSidechain(main, side []float64) bool {
	if len(main) == 0 {
		return true
	}

	g := c.graph
	if !g.complete() {
		return false
	}

	if side != nil && len(side) < len(main) {
		side = nil
	}

	c.prepareBuffers(main, side, g)

	for _, id := range g.order {
		if id == InputNodeID || id == SidechainNodeID {
			continue
		}

		c.processNode(id, g, side)
	}

	copy(main, c.outBuf[OutputNodeID])

	return true
}

// NodeRuntime returns the Runtime for the given node ID, or nil.
func (c *Chain) NodeRuntime(nodeID string) Runtime {
	rt := c.nodes[nodeID]
	if rt == nil {
		return nil
	}

	return rt.runtime
}

func (c *Chain) prepareBuffers(main, side []float64, g *topology) {
	n := len(main)

	if c.outBuf == nil {
		c.outBuf = make(map[string][]float64, len(g.params))
	}

	c.mixBuf = core.EnsureLen(c.mixBuf, n)
	c.sideBuf = core.EnsureLen(c.sideBuf, n)
	c.zeroBuf = core.EnsureLen(c.zeroBuf, n)
	core.Zero(c.zeroBuf)

	for _, id := range g.order {
		switch id {
		case InputNodeID:
			c.outBuf[id] = main
		case SidechainNodeID:
			if side != nil {
				c.outBuf[id] = side[:n]
			} else {
				c.outBuf[id] = c.zeroBuf
			}
		default:
			c.outBuf[id] = core.EnsureLen(c.outBuf[id], n)
		}
	}
}

// allPorts selects every incoming edge regardless of its port index.
const allPorts = -1

func (c *Chain) processNode(id string, g *topology, side []float64) {
	node := g.params[id]
	dst := c.outBuf[id]
	parents := g.inbound[id]

	var (
		runtime Runtime
		sc      SidechainProcessor
	)

	if rt := c.nodes[id]; rt != nil {
		runtime = rt.runtime
		sc, _ = runtime.(SidechainProcessor)
	}

	if sc == nil {
		c.mixParentEdgesInto(parents, allPorts, dst)
	} else {
		c.mixParentEdgesInto(parents, 0, dst)
	}

	if runtime == nil || node.Bypassed {
		return
	}

	if sc == nil {
		runtime.Process(dst)
		return
	}

	sideBuf := c.sideBuf[:len(dst)]
	if c.mixParentEdgesInto(parents, 1, sideBuf) == 0 {
		sc.ProcessWithSidechain(dst, side)
		return
	}

	sc.ProcessWithSidechain(dst, sideBuf)
}

// mixParentEdgesInto writes the average of the parent outputs arriving on
// port into dst and returns the number of parents mixed. A port of 0
// also collects edges into any port other than 1.
func (c *Chain) mixParentEdgesInto(parents []edge, port int, dst []float64) int {
	mix := c.mixBuf[:len(dst)]
	core.Zero(mix)

	count := 0

	for _, e := range parents {
		if !edgeOnPort(e, port) {
			continue
		}

		vecmath.AddBlockInPlace(mix, c.outBuf[e.from][:len(dst)])
		count++
	}

	if count == 0 {
		core.Zero(dst)
		return 0
	}

	vecmath.ScaleBlock(dst, mix, 1/float64(count))

	return count
}

func edgeOnPort(e edge, port int) bool {
	switch port {
	case allPorts:
		return true
	case 1:
		return e.toPort == 1
	default:
		return e.toPort != 1
	}
}
