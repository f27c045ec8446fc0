package domain

// DefaultMaxTurns bounds a conversation when a test case does not set one.
const DefaultMaxTurns = 10

// TestCase describes one simulated conversation and the checks applied to
// its transcript. A case is either metric-driven (Metrics non-empty, scored
// by the model) or rule-based (Includes/Excludes/Patterns, matched
// directly); both kinds may additionally constrain node visits and tools.
type TestCase struct {
	Name string `json:"name" yaml:"name"`

	// Persona is the natural-language description driving the user simulator.
	Persona string `json:"persona" yaml:"persona"`

	// Metrics are free-text criteria scored by the metric judge.
	Metrics []string `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Thresholds overrides the pass threshold per metric text.
	Thresholds map[string]float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// Rule-based checks, applied to assistant messages only.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	// DynamicVariables are substituted into node instructions and condition
	// text via {{name}} placeholders at compile time.
	DynamicVariables map[string]string `json:"dynamic_variables,omitempty" yaml:"dynamic_variables,omitempty"`

	// ToolMocks maps tool name to a canned response returned instead of
	// performing a real side effect. Read-only during the run.
	ToolMocks map[string]string `json:"tool_mocks,omitempty" yaml:"tool_mocks,omitempty"`

	// MaxTurns is the turn budget; 0 means DefaultMaxTurns.
	MaxTurns int `json:"max_turns,omitempty" yaml:"max_turns,omitempty"`

	// Node-visit constraints checked by the flow judge.
	RequiredNodes  []string `json:"required_nodes,omitempty" yaml:"required_nodes,omitempty"`
	ForbiddenNodes []string `json:"forbidden_nodes,omitempty" yaml:"forbidden_nodes,omitempty"`

	// ExpectedTools are invocations the tool judge requires.
	ExpectedTools []ExpectedTool `json:"expected_tools,omitempty" yaml:"expected_tools,omitempty"`
}

// RuleBased reports whether the case bypasses the metric judge in favor of
// literal substring and regex checks.
func (tc TestCase) RuleBased() bool {
	return len(tc.Metrics) == 0 &&
		(len(tc.Includes) > 0 || len(tc.Excludes) > 0 || len(tc.Patterns) > 0)
}

// TurnBudget returns MaxTurns with the default applied.
func (tc TestCase) TurnBudget() int {
	if tc.MaxTurns > 0 {
		return tc.MaxTurns
	}
	return DefaultMaxTurns
}
