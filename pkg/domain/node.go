package domain

// Node represents a single conversational state in the graph.
// It is created during import and never mutated afterwards; the execution
// engine reads it, it never writes to it.
type Node struct {
	ID string `json:"id" yaml:"id"`

	// Instructions is the natural-language behavior contract for this state.
	// It may contain {{variable}} placeholders resolved at compile time.
	Instructions string `json:"instructions" yaml:"instructions"`

	// Tools lists the functions available to the agent while in this state,
	// in declaration order.
	Tools []Tool `json:"tools,omitempty" yaml:"tools,omitempty"`

	// Transitions defines the outgoing edges, in declaration order.
	Transitions []Transition `json:"transitions,omitempty" yaml:"transitions,omitempty"`

	// Metadata preserves source-specific fields for round-tripping.
	// Exporters must not read keys they don't declare support for.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Clone returns a deep copy of the node. Importers use it to detach
// builder-owned slices before handing nodes to NewGraph.
func (n Node) Clone() Node {
	out := n
	out.Tools = append([]Tool(nil), n.Tools...)
	out.Transitions = append([]Transition(nil), n.Transitions...)
	if n.Metadata != nil {
		out.Metadata = make(map[string]any, len(n.Metadata))
		for k, v := range n.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
