package dsl

import "github.com/aretw0/parley/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Instruct sets the node's behavior instructions. The text may contain
// {{variable}} placeholders.
func (n *NodeBuilder) Instruct(instructions string) *NodeBuilder {
	n.node.Instructions = instructions
	return n
}

// Tool declares a function available to the agent in this node.
func (n *NodeBuilder) Tool(name, description string) *NodeBuilder {
	n.node.Tools = append(n.node.Tools, domain.Tool{Name: name, Description: description})
	return n
}

// Tools declares fully-specified tools for this node.
func (n *NodeBuilder) Tools(tools ...domain.Tool) *NodeBuilder {
	n.node.Tools = append(n.node.Tools, tools...)
	return n
}

// When adds a prompt-conditioned transition: the model decides when the
// described situation occurs.
func (n *NodeBuilder) When(prompt, target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Target:    target,
		Condition: domain.PromptWhen(prompt),
	})
	return n
}

// WhenEq adds an equation-guarded transition over dynamic variables.
func (n *NodeBuilder) WhenEq(equation, target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Target:    target,
		Condition: domain.EquationWhen(equation),
	})
	return n
}

// OnTool adds a transition fired by an invocation of the named tool.
func (n *NodeBuilder) OnTool(tool, target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Target:    target,
		Condition: domain.ToolWhen(tool),
	})
	return n
}

// Go adds an unconditional transition to the target node.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.node.Transitions = append(n.node.Transitions, domain.Transition{
		Target:    target,
		Condition: domain.Always(),
	})
	return n
}

// Meta attaches a source-metadata value to the node.
func (n *NodeBuilder) Meta(key string, value any) *NodeBuilder {
	if n.node.Metadata == nil {
		n.node.Metadata = make(map[string]any)
	}
	n.node.Metadata[key] = value
	return n
}

// Terminal removes all outgoing transitions (end of the conversation).
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.node.Transitions = nil
	return n
}

// Done returns the parent builder for continued chaining.
func (n *NodeBuilder) Done() *Builder {
	return n.builder
}

// Build returns the underlying domain.Node.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() domain.Node {
	return n.node
}
