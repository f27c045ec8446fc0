/*
Package dsl provides a fluent Go builder for constructing conversation-flow
graphs programmatically, instead of importing a platform config file. This
is useful for tests, dynamically generated agents, and examples where IDE
type-checking beats hand-written JSON.

Example usage:

	g, err := dsl.New().
		Entry("greeting").
		Add("greeting").
		Instruct("Greet the caller and find out what they need.").
		When("Caller asks about a bill", "billing").
		WhenEq("tier == \"gold\"", "priority").
		Done().
		Build()

Each Add returns a NodeBuilder; Build validates the assembled graph with
the same structural rules as the importers.
*/
package dsl
