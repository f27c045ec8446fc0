package exporters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// RetellExporter emits the Retell conversation-flow schema. Prompt and
// equation conditions re-derive their trigger text from the transition
// condition; tool_call and always conditions have no Retell equivalent and
// become prompt edges describing the intent.
type RetellExporter struct{}

type retellFlowOut struct {
	StartNodeID string          `json:"start_node_id"`
	Nodes       []retellNodeOut `json:"nodes"`
	Tools       []retellToolOut `json:"tools,omitempty"`
}

type retellNodeOut struct {
	ID          string               `json:"id"`
	Type        string               `json:"type"`
	Instruction retellInstructionOut `json:"instruction"`
	Edges       []retellEdgeOut      `json:"edges,omitempty"`
	ToolIDs     []string             `json:"tool_ids,omitempty"`
}

type retellInstructionOut struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type retellEdgeOut struct {
	ID                  string             `json:"id"`
	DestinationNodeID   string             `json:"destination_node_id"`
	TransitionCondition retellConditionOut `json:"transition_condition"`
}

type retellConditionOut struct {
	Type      string              `json:"type"`
	Prompt    string              `json:"prompt,omitempty"`
	Operator  string              `json:"operator,omitempty"`
	Equations []retellEquationOut `json:"equations,omitempty"`
}

type retellEquationOut struct {
	Left     string `json:"left"`
	Operator string `json:"operator"`
	Right    string `json:"right"`
}

type retellToolOut struct {
	ToolID      string         `json:"tool_id"`
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

func (RetellExporter) Format() string { return "retell" }

func (RetellExporter) Export(g *domain.Graph, opts ports.ExportOptions) (string, error) {
	out := retellFlowOut{StartNodeID: g.Entry()}

	toolIDs := make(map[string]string)
	edgeSeq := 0
	for _, n := range g.Nodes() {
		rn := retellNodeOut{
			ID:          n.ID,
			Type:        "conversation",
			Instruction: retellInstructionOut{Type: "prompt", Text: n.Instructions},
		}
		for _, tool := range n.Tools {
			id, ok := toolIDs[tool.Name]
			if !ok {
				id = fmt.Sprintf("tool_%d", len(toolIDs)+1)
				toolIDs[tool.Name] = id
				out.Tools = append(out.Tools, retellToolOut{
					ToolID:      id,
					Type:        "custom",
					Name:        tool.Name,
					Description: tool.Description,
					Parameters:  tool.Parameters,
				})
			}
			rn.ToolIDs = append(rn.ToolIDs, id)
		}
		for _, t := range n.Transitions {
			edgeSeq++
			rn.Edges = append(rn.Edges, retellEdgeOut{
				ID:                  fmt.Sprintf("edge_%d", edgeSeq),
				DestinationNodeID:   t.Target,
				TransitionCondition: retellCondition(t.Condition),
			})
		}
		out.Nodes = append(out.Nodes, rn)
	}

	var (
		data []byte
		err  error
	)
	if opts.Indent {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func retellCondition(c domain.TransitionCondition) retellConditionOut {
	switch c.Kind {
	case domain.ConditionEquation:
		if op, eqs, ok := splitEquation(c.Equation); ok {
			return retellConditionOut{Type: "equation", Operator: op, Equations: eqs}
		}
		// Expressions the schema cannot carry fall back to prompt text.
		return retellConditionOut{Type: "prompt", Prompt: "Transition when: " + c.Equation}
	case domain.ConditionToolCall:
		return retellConditionOut{Type: "prompt", Prompt: "Transition after the " + c.Tool + " tool is invoked"}
	case domain.ConditionAlways:
		return retellConditionOut{Type: "prompt", Prompt: "Always transition once this step is done"}
	default:
		return retellConditionOut{Type: "prompt", Prompt: c.Prompt}
	}
}

var comparisonRe = regexp.MustCompile(`^(.+?)\s*(==|!=|>=|<=|>|<)\s*(.+)$`)

// splitEquation decomposes a boolean expression into Retell's equation-list
// shape. Only flat conjunctions or disjunctions of comparisons survive the
// trip; anything else reports !ok.
func splitEquation(expr string) (op string, eqs []retellEquationOut, ok bool) {
	op = "&&"
	if strings.Contains(expr, "||") {
		if strings.Contains(expr, "&&") {
			return "", nil, false
		}
		op = "||"
	}
	for _, clause := range strings.Split(expr, op) {
		m := comparisonRe.FindStringSubmatch(strings.TrimSpace(clause))
		if m == nil {
			return "", nil, false
		}
		eqs = append(eqs, retellEquationOut{
			Left:     retellOperand(m[1]),
			Operator: m[2],
			Right:    retellOperand(m[3]),
		})
	}
	return op, eqs, true
}

var identRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// retellOperand renders an expression operand in Retell syntax: identifiers
// become {{var}} references, string literals lose their quotes.
func retellOperand(s string) string {
	s = strings.TrimSpace(s)
	if unquoted, err := strconv.Unquote(s); err == nil {
		return unquoted
	}
	if identRe.MatchString(s) && s != "true" && s != "false" {
		return "{{" + s + "}}"
	}
	return s
}
