package domain

// ConditionKind discriminates the TransitionCondition variant.
type ConditionKind string

const (
	// ConditionPrompt is a natural-language trigger evaluated by the model.
	ConditionPrompt ConditionKind = "llm_prompt"
	// ConditionEquation is a deterministic boolean expression over dynamic
	// variables, evaluated without model involvement.
	ConditionEquation ConditionKind = "equation"
	// ConditionToolCall fires when the named tool is invoked.
	ConditionToolCall ConditionKind = "tool_call"
	// ConditionAlways is an unconditional fallthrough.
	ConditionAlways ConditionKind = "always"
)

// TransitionCondition is a tagged variant: exactly one of Prompt, Equation
// or Tool is meaningful, selected by Kind. ConditionAlways carries no payload.
type TransitionCondition struct {
	Kind     ConditionKind `json:"kind" yaml:"kind"`
	Prompt   string        `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Equation string        `json:"equation,omitempty" yaml:"equation,omitempty"`
	Tool     string        `json:"tool,omitempty" yaml:"tool,omitempty"`
}

// Deterministic reports whether the condition is evaluated without the
// model. Deterministic conditions are checked before llm_prompt conditions
// on the same node; ConditionAlways is checked last.
func (c TransitionCondition) Deterministic() bool {
	return c.Kind == ConditionEquation || c.Kind == ConditionToolCall
}

// Describe returns a short human-readable label for diagrams and trigger
// descriptions.
func (c TransitionCondition) Describe() string {
	switch c.Kind {
	case ConditionPrompt:
		return c.Prompt
	case ConditionEquation:
		return c.Equation
	case ConditionToolCall:
		return "tool: " + c.Tool
	default:
		return "always"
	}
}

// PromptWhen builds an llm_prompt condition.
func PromptWhen(text string) TransitionCondition {
	return TransitionCondition{Kind: ConditionPrompt, Prompt: text}
}

// EquationWhen builds an equation condition.
func EquationWhen(expr string) TransitionCondition {
	return TransitionCondition{Kind: ConditionEquation, Equation: expr}
}

// ToolWhen builds a tool_call condition.
func ToolWhen(name string) TransitionCondition {
	return TransitionCondition{Kind: ConditionToolCall, Tool: name}
}

// Always builds an unconditional fallthrough condition.
func Always() TransitionCondition {
	return TransitionCondition{Kind: ConditionAlways}
}

// Transition is an edge from its owning node to Target, guarded by Condition.
// Target must resolve within the same graph; a dangling reference is a
// structural error caught by NewGraph.
type Transition struct {
	Target    string              `json:"target" yaml:"target"`
	Condition TransitionCondition `json:"condition" yaml:"condition"`
}
