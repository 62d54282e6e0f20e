package effectchain

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// InputNodeID is the reserved node ID for the chain input.
	InputNodeID = "_input"
	// OutputNodeID is the reserved node ID for the chain output.
	OutputNodeID = "_output"
	// SidechainNodeID is the reserved node ID for the external sidechain.
	SidechainNodeID = "_sidechain"

	// NodeTypeSplit copies its input to every outgoing edge.
	NodeTypeSplit = "split"
	// NodeTypeSum averages its inputs.
	NodeTypeSum = "sum"
)

// Node is a JSON-serializable node in the effect chain graph.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Bypassed bool           `json:"bypassed,omitempty"`
	Params   map[string]any `json:"params,omitempty"`
}

// Connection is a JSON-serializable connection between two graph nodes.
type Connection struct {
	From          string `json:"from"`
	To            string `json:"to"`
	FromPortIndex int    `json:"fromPortIndex,omitempty"` //nolint:tagliatelle
	ToPortIndex   int    `json:"toPortIndex,omitempty"`   //nolint:tagliatelle
}

// Graph is the root JSON structure for the effect chain graph.
type Graph struct {
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
}

// Serial returns a graph that runs nodes one after another between the
// input and output nodes.
func Serial(nodes ...Node) Graph {
	g := Graph{Nodes: []Node{{ID: InputNodeID, Type: InputNodeID}}}

	prev := InputNodeID
	for _, n := range nodes {
		g.Nodes = append(g.Nodes, n)
		g.Connections = append(g.Connections, Connection{From: prev, To: n.ID})
		prev = n.ID
	}

	g.Nodes = append(g.Nodes, Node{ID: OutputNodeID, Type: OutputNodeID})
	g.Connections = append(g.Connections, Connection{From: prev, To: OutputNodeID})

	return g
}

// WithSidechain adds the sidechain node and feeds it to port 1 of nodeID.
func (g Graph) WithSidechain(nodeID string) Graph {
	g.Nodes = append(g.Nodes, Node{ID: SidechainNodeID, Type: SidechainNodeID})
	g.Connections = append(g.Connections, Connection{From: SidechainNodeID, To: nodeID, ToPortIndex: 1})

	return g
}

// JSON encodes the graph.
func (g Graph) JSON() (string, error) {
	raw, err := json.Marshal(g)
	if err != nil {
		return "", fmt.Errorf("effectchain: encode graph: %w", err)
	}

	return string(raw), nil
}

// topology is a decoded graph: node parameters by ID, edges indexed by
// both endpoints and a processing order in which every node comes after
// all of its parents.
type topology struct {
	params   map[string]Params
	inbound  map[string][]edge
	outbound map[string][]edge
	order    []string
}

type edge struct {
	from, to         string
	fromPort, toPort int
}

// complete reports whether t has both the input and the output node.
func (t *topology) complete() bool {
	if t == nil {
		return false
	}

	_, in := t.params[InputNodeID]
	_, out := t.params[OutputNodeID]

	return in && out
}

// compileGraph decodes a JSON graph. Nodes without an ID or type and
// edges that are self loops or touch unknown nodes are dropped. A graph
// lacking the input or output node compiles to an empty topology, as
// does the empty string. Cycles are an error.
func compileGraph(raw string) (*topology, error) {
	if raw == "" {
		return &topology{}, nil
	}

	var g Graph
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		return nil, fmt.Errorf("invalid chain graph json: %w", err)
	}

	t := &topology{params: make(map[string]Params, len(g.Nodes))}

	declared := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" || n.Type == "" {
			continue
		}

		if _, dup := t.params[n.ID]; !dup {
			declared = append(declared, n.ID)
		}

		num, str := splitParams(n.Params)
		t.params[n.ID] = Params{ID: n.ID, Type: n.Type, Bypassed: n.Bypassed, Num: num, Str: str}
	}

	if !t.complete() {
		return &topology{}, nil
	}

	t.link(g.Connections)

	if err := t.sort(declared); err != nil {
		return nil, err
	}

	return t, nil
}

func (t *topology) link(conns []Connection) {
	t.inbound = make(map[string][]edge, len(t.params))
	t.outbound = make(map[string][]edge, len(t.params))

	for _, c := range conns {
		_, fromOK := t.params[c.From]
		_, toOK := t.params[c.To]

		if !fromOK || !toOK || c.From == c.To {
			continue
		}

		e := edge{from: c.From, to: c.To, fromPort: max(c.FromPortIndex, 0), toPort: max(c.ToPortIndex, 0)}
		t.outbound[e.from] = append(t.outbound[e.from], e)
		t.inbound[e.to] = append(t.inbound[e.to], e)
	}
}

// sort fills t.order with Kahn's algorithm. Roots are taken in
// declaration order so the result is deterministic.
func (t *topology) sort(declared []string) error {
	pending := make(map[string]int, len(declared))
	ready := make([]string, 0, len(declared))

	for _, id := range declared {
		pending[id] = len(t.inbound[id])
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	t.order = make([]string, 0, len(declared))

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		t.order = append(t.order, id)

		for _, e := range t.outbound[id] {
			pending[e.to]--
			if pending[e.to] == 0 {
				ready = append(ready, e.to)
			}
		}
	}

	if len(t.order) != len(declared) {
		return errors.New("invalid chain graph: contains cycle")
	}

	return nil
}

// splitParams sorts raw JSON values into numeric and string parameters.
// Booleans become 0 or 1; other kinds are ignored.
func splitParams(raw map[string]any) (map[string]float64, map[string]string) {
	num := make(map[string]float64, len(raw))
	str := map[string]string{}

	for k, v := range raw {
		switch t := v.(type) {
		case float64:
			num[k] = t
		case float32:
			num[k] = float64(t)
		case int:
			num[k] = float64(t)
		case int64:
			num[k] = float64(t)
		case bool:
			num[k] = boolToNum(t)
		case string:
			str[k] = t
		}
	}

	return num, str
}

func boolToNum(b bool) float64 {
	if b {
		return 1
	}

	return 0
}

// isStructuralNodeType reports whether nodeType is an I/O or routing
// node, which has no runtime.
func isStructuralNodeType(nodeType string) bool {
	switch nodeType {
	case InputNodeID, OutputNodeID, SidechainNodeID, NodeTypeSplit, NodeTypeSum:
		return true
	}

	return false
}
