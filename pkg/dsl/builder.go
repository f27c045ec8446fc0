package dsl

import (
	"github.com/aretw0/parley/pkg/domain"
)

// Builder manages the graph construction.
type Builder struct {
	entry string
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder. The first node added becomes the entry
// node unless Entry overrides it.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Entry sets the entry node id.
func (b *Builder) Entry(id string) *Builder {
	b.entry = id
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	if b.entry == "" {
		b.entry = id
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id},
		builder: b,
	}
	b.order = append(b.order, id)
	b.nodes[id] = nb
	return nb
}

// Build compiles and validates the graph. Nodes keep insertion order.
func (b *Builder) Build() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id].node)
	}
	return domain.NewGraph(b.entry, nodes, domain.WithSourceType("dsl"))
}
