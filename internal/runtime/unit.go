package runtime

import (
	"fmt"

	"github.com/aretw0/parley/internal/equation"
	"github.com/aretw0/parley/pkg/domain"
)

// TriggerPrefix names the synthetic tools that represent transitions when
// the model is asked to choose one. The codegen exporter mirrors this
// naming so exported code and simulated execution share one model.
const TriggerPrefix = "transition_to_"

// Trigger is a compiled outgoing transition. Invoking a trigger finalizes
// the current turn, records the target in the node trace and hands control
// to the target's unit.
type Trigger struct {
	// ToolName uniquely identifies the trigger within its unit; prompt
	// triggers are exposed to the model under this name.
	ToolName  string
	Target    string
	Condition domain.TransitionCondition

	// eq is the parsed form of an equation condition, nil otherwise.
	eq *equation.Expr
}

// ExecutionUnit is the runnable counterpart of one graph node.
type ExecutionUnit struct {
	NodeID string

	// Instructions is the node's behavior contract with dynamic variables
	// already substituted.
	Instructions string

	// Tools are the node's declared tools, in declaration order.
	Tools []domain.Tool

	// Triggers hold one entry per outgoing transition, in declaration order.
	Triggers []Trigger
}

// ForcedTarget evaluates the unit's equation triggers against the variable
// bindings, in declaration order, and returns the first satisfied target.
// Evaluation errors make that equation unsatisfied, never fatal.
func (u *ExecutionUnit) ForcedTarget(vars map[string]string) (string, bool) {
	for _, tr := range u.Triggers {
		if tr.eq == nil {
			continue
		}
		ok, err := tr.eq.Eval(vars)
		if err == nil && ok {
			return tr.Target, true
		}
	}
	return "", false
}

// ToolTarget returns the target of the first tool_call trigger matching the
// invoked tool name.
func (u *ExecutionUnit) ToolTarget(toolName string) (string, bool) {
	for _, tr := range u.Triggers {
		if tr.Condition.Kind == domain.ConditionToolCall && tr.Condition.Tool == toolName {
			return tr.Target, true
		}
	}
	return "", false
}

// TriggerTarget resolves a model-selected trigger tool name to its target.
func (u *ExecutionUnit) TriggerTarget(toolName string) (string, bool) {
	for _, tr := range u.Triggers {
		if tr.ToolName == toolName && tr.Condition.Kind == domain.ConditionPrompt {
			return tr.Target, true
		}
	}
	return "", false
}

// AlwaysTarget returns the target of the first unconditional trigger.
func (u *ExecutionUnit) AlwaysTarget() (string, bool) {
	for _, tr := range u.Triggers {
		if tr.Condition.Kind == domain.ConditionAlways {
			return tr.Target, true
		}
	}
	return "", false
}

// PromptTools returns the synthetic tools for the unit's llm_prompt
// triggers. They are offered to the model alongside the declared tools;
// guards (satisfied equations) suppress them for the turn instead of racing
// with them.
func (u *ExecutionUnit) PromptTools() []domain.Tool {
	var out []domain.Tool
	for _, tr := range u.Triggers {
		if tr.Condition.Kind != domain.ConditionPrompt {
			continue
		}
		out = append(out, domain.Tool{
			Name:        tr.ToolName,
			Description: "Take this transition when: " + tr.Condition.Prompt,
		})
	}
	return out
}

// DeclaresTool reports whether the node declares a tool with the given name.
func (u *ExecutionUnit) DeclaresTool(name string) bool {
	for _, t := range u.Tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// TriggerToolName builds a per-unit unique name for the i-th transition.
// The codegen exporter uses the same naming for emitted triggers.
func TriggerToolName(i int, target string) string {
	return fmt.Sprintf("%s%s_%d", TriggerPrefix, target, i)
}
