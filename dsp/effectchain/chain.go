package effectchain

import (
	"errors"
	"fmt"
)

// ErrUnknownEffect is returned when a node references an unregistered effect type.
var ErrUnknownEffect = errors.New("unknown effect type")

type nodeRuntime struct {
	effectType string
	runtime    Runtime
}

// Chain owns a graph-based effect chain: topology, node runtimes and
// processing buffers. It is not safe for concurrent use.
type Chain struct {
	ctx      Context
	registry *Registry

	graph *topology
	nodes map[string]*nodeRuntime

	outBuf  map[string][]float64
	mixBuf  []float64
	sideBuf []float64
	zeroBuf []float64
}

// New creates a Chain with the given context and registry.
func New(ctx Context, registry *Registry) *Chain {
	return &Chain{
		ctx:      ctx,
		registry: registry,
		nodes:    make(map[string]*nodeRuntime),
	}
}

// Context returns the current chain context.
func (c *Chain) Context() Context {
	return c.ctx
}

// HasGraph returns true if the chain has a loaded graph with valid I/O nodes.
func (c *Chain) HasGraph() bool {
	return c.graph.complete()
}

// LoadGraph parses a JSON graph string, compiles the topology, and
// synchronizes node runtimes. An empty string clears the graph.
func (c *Chain) LoadGraph(jsonGraph string) error {
	graph, err := compileGraph(jsonGraph)
	if err != nil {
		return fmt.Errorf("effectchain: %w", err)
	}

	err = c.syncNodes(graph)
	if err != nil {
		return err
	}

	c.graph = graph

	return nil
}

// Prepare installs a new context, resets every runtime that holds state
// and reconfigures all nodes from the loaded graph.
func (c *Chain) Prepare(ctx Context) error {
	c.ctx = ctx

	for id, rt := range c.nodes {
		r, ok := rt.runtime.(Resetter)
		if !ok {
			continue
		}

		err := r.Reset(ctx)
		if err != nil {
			return fmt.Errorf("effectchain: reset node %q (%s): %w", id, rt.effectType, err)
		}
	}

	if c.graph == nil {
		return nil
	}

	return c.configureNodes(c.graph)
}

// Reset drops the graph, all node runtimes and processing buffers.
func (c *Chain) Reset() {
	c.graph = nil
	c.nodes = make(map[string]*nodeRuntime)
	c.outBuf = nil
	c.mixBuf = nil
	c.sideBuf = nil
	c.zeroBuf = nil
}

// syncNodes makes c.nodes match the effect nodes of t. Runtimes whose
// node disappeared are dropped; a node whose type changed gets a fresh
// runtime. Every node is then configured.
func (c *Chain) syncNodes(t *topology) error {
	next := make(map[string]*nodeRuntime, len(t.params))

	for id, p := range t.params {
		if isStructuralNodeType(p.Type) {
			continue
		}

		if old := c.nodes[id]; old != nil && old.effectType == p.Type {
			next[id] = old
			continue
		}

		rt, err := c.newRuntime(p.Type)
		if err != nil {
			return fmt.Errorf("effectchain: node %q: %w", id, err)
		}

		next[id] = &nodeRuntime{effectType: p.Type, runtime: rt}
	}

	c.nodes = next

	return c.configureNodes(t)
}

func (c *Chain) configureNodes(t *topology) error {
	for _, id := range t.order {
		rt, ok := c.nodes[id]
		if !ok {
			continue
		}

		if err := rt.runtime.Configure(c.ctx, t.params[id]); err != nil {
			return fmt.Errorf("effectchain: configure node %q (%s): %w", id, rt.effectType, err)
		}
	}

	return nil
}

func (c *Chain) newRuntime(effectType string) (Runtime, error) {
	var factory Factory
	if c.registry != nil {
		factory = c.registry.Lookup(effectType)
	}

	if factory == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEffect, effectType)
	}

	rt, err := factory(c.ctx)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", effectType, err)
	}

	return rt, nil
}
