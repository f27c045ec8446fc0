package domain

// Tool declares a function available to the agent in a given state.
// The shape is kept compatible with OpenAI-style tool schemas.
type Tool struct {
	Name        string         `json:"name" yaml:"name" mapstructure:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// ToolCall records one invocation of a tool by the agent during a run.
type ToolCall struct {
	ID        string         `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string         `json:"name" yaml:"name"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`

	// NodeID is the graph node the agent was in when the call was made.
	NodeID string `json:"node_id,omitempty" yaml:"node_id,omitempty"`
}

// ExpectedTool declares a tool invocation a test case requires.
// Arguments, when non-empty, must appear as a subset of the recorded call's
// arguments (extra recorded keys are tolerated).
type ExpectedTool struct {
	Name      string         `json:"name" yaml:"name"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}
