package domain

import "fmt"

// Graph is the canonical conversation-flow representation. It is immutable
// and safe for shared reads after NewGraph returns: compilation, export and
// judging all work from the same instance without locks.
type Graph struct {
	entry string
	order []string
	nodes map[string]Node

	// SourceType tags the importer that produced the graph (e.g. "retell",
	// "vapi", "native").
	SourceType string

	// SourceMetadata preserves top-level provenance fields from the source
	// config (agent name, version, voice settings and the like).
	SourceMetadata map[string]any
}

// GraphOption configures NewGraph.
type GraphOption func(*Graph)

// WithSourceType tags the graph with the importer that produced it.
func WithSourceType(sourceType string) GraphOption {
	return func(g *Graph) {
		g.SourceType = sourceType
	}
}

// WithSourceMetadata attaches provenance fields from the source config.
func WithSourceMetadata(meta map[string]any) GraphOption {
	return func(g *Graph) {
		g.SourceMetadata = meta
	}
}

// NewGraph validates and builds a graph. Nodes keep their given order, which
// makes tool and transition presentation deterministic. It returns a
// *StructuralError if node IDs collide, the entry node is missing, or any
// transition target does not resolve within the graph.
func NewGraph(entry string, nodes []Node, opts ...GraphOption) (*Graph, error) {
	g := &Graph{
		entry: entry,
		order: make([]string, 0, len(nodes)),
		nodes: make(map[string]Node, len(nodes)),
	}
	for _, opt := range opts {
		opt(g)
	}

	var problems []string
	for _, n := range nodes {
		if n.ID == "" {
			problems = append(problems, "node with empty id")
			continue
		}
		if _, dup := g.nodes[n.ID]; dup {
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
			continue
		}
		g.order = append(g.order, n.ID)
		g.nodes[n.ID] = n.Clone()
	}

	if entry == "" {
		problems = append(problems, "entry node id is empty")
	} else if _, ok := g.nodes[entry]; !ok {
		problems = append(problems, fmt.Sprintf("entry node %q does not exist", entry))
	}

	for _, id := range g.order {
		for i, t := range g.nodes[id].Transitions {
			if t.Target == "" {
				problems = append(problems, fmt.Sprintf("node %q transition %d has empty target", id, i))
				continue
			}
			if _, ok := g.nodes[t.Target]; !ok {
				problems = append(problems, fmt.Sprintf("node %q transition %d targets unknown node %q", id, i, t.Target))
			}
		}
	}

	if len(problems) > 0 {
		return nil, &StructuralError{Problems: problems}
	}
	return g, nil
}

// Entry returns the entry node id.
func (g *Graph) Entry() string { return g.entry }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Node looks up a node by id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.order...)
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Outgoing returns the transitions leaving the given node, in declaration
// order. Unknown ids yield nil.
func (g *Graph) Outgoing(id string) []Transition {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return append([]Transition(nil), n.Transitions...)
}

// Reachable returns the set of node ids reachable from the entry node,
// including the entry itself, in breadth-first discovery order.
func (g *Graph) Reachable() []string {
	visited := make(map[string]bool, len(g.order))
	queue := []string{g.entry}
	var out []string

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, id)

		for _, t := range g.nodes[id].Transitions {
			if !visited[t.Target] {
				queue = append(queue, t.Target)
			}
		}
	}
	return out
}
