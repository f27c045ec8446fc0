package importers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
)

// RetellFlowImporter converts Retell conversation-flow exports. Nodes carry
// an instruction prompt and edges carry either a prompt condition or an
// equation list.
//
// Fidelity note: Retell evaluates equation edges continuously during speech;
// here they collapse to per-turn equation conditions. Equation lists are
// joined into a single boolean expression with the list's operator, and
// {{var}} references become bare identifiers.
type RetellFlowImporter struct{}

type retellFlow struct {
	ConversationFlowID string           `mapstructure:"conversation_flow_id"`
	StartNodeID        string           `mapstructure:"start_node_id"`
	GlobalPrompt       string           `mapstructure:"global_prompt"`
	Nodes              []retellFlowNode `mapstructure:"nodes"`
	Tools              []retellTool     `mapstructure:"tools"`
}

type retellFlowNode struct {
	ID          string            `mapstructure:"id"`
	Type        string            `mapstructure:"type"`
	Name        string            `mapstructure:"name"`
	Instruction retellInstruction `mapstructure:"instruction"`
	Edges       []retellEdge      `mapstructure:"edges"`
	ToolIDs     []string          `mapstructure:"tool_ids"`
}

type retellInstruction struct {
	Type string `mapstructure:"type"`
	Text string `mapstructure:"text"`
}

type retellEdge struct {
	ID                  string          `mapstructure:"id"`
	DestinationNodeID   string          `mapstructure:"destination_node_id"`
	TransitionCondition retellCondition `mapstructure:"transition_condition"`
}

type retellCondition struct {
	Type      string           `mapstructure:"type"`
	Prompt    string           `mapstructure:"prompt"`
	Operator  string           `mapstructure:"operator"`
	Equations []retellEquation `mapstructure:"equations"`
}

type retellEquation struct {
	Left     string `mapstructure:"left"`
	Operator string `mapstructure:"operator"`
	Right    string `mapstructure:"right"`
}

type retellTool struct {
	ToolID      string         `mapstructure:"tool_id"`
	Type        string         `mapstructure:"type"`
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Parameters  map[string]any `mapstructure:"parameters"`
}

func (RetellFlowImporter) SourceType() string { return "retell-flow" }

func (RetellFlowImporter) Detect(raw map[string]any) bool {
	if _, ok := raw["nodes"]; !ok {
		return false
	}
	_, hasStart := raw["start_node_id"]
	_, hasFlowID := raw["conversation_flow_id"]
	return hasStart || hasFlowID
}

func (RetellFlowImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src retellFlow
	if err := decode(raw, &src); err != nil {
		return nil, err
	}
	if len(src.Nodes) == 0 {
		return nil, fmt.Errorf("conversation flow has no nodes")
	}

	toolsByID := make(map[string]domain.Tool, len(src.Tools))
	for _, t := range src.Tools {
		toolsByID[t.ToolID] = domain.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		}
	}

	nodes := make([]domain.Node, 0, len(src.Nodes))
	for _, sn := range src.Nodes {
		node := domain.Node{
			ID:           sn.ID,
			Instructions: joinPrompts(src.GlobalPrompt, sn.Instruction.Text),
		}
		for _, toolID := range sn.ToolIDs {
			tool, ok := toolsByID[toolID]
			if !ok {
				return nil, fmt.Errorf("node %q references unknown tool %q", sn.ID, toolID)
			}
			node.Tools = append(node.Tools, tool)
		}
		for _, e := range sn.Edges {
			cond, err := e.TransitionCondition.condition()
			if err != nil {
				return nil, fmt.Errorf("node %q edge %q: %w", sn.ID, e.ID, err)
			}
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    e.DestinationNodeID,
				Condition: cond,
			})
		}
		nodes = append(nodes, node)
	}

	entry := src.StartNodeID
	if entry == "" {
		entry = src.Nodes[0].ID
	}
	return domain.NewGraph(entry, nodes,
		domain.WithSourceType("retell-flow"),
		domain.WithSourceMetadata(provenance(raw, "conversation_flow_id", "version", "model_choice")))
}

func (c retellCondition) condition() (domain.TransitionCondition, error) {
	switch c.Type {
	case "prompt", "":
		if c.Prompt == "" {
			return domain.Always(), nil
		}
		return domain.PromptWhen(c.Prompt), nil
	case "equation":
		if len(c.Equations) == 0 {
			return domain.TransitionCondition{}, fmt.Errorf("equation condition has no equations")
		}
		op := c.Operator
		if op == "" {
			op = "&&"
		}
		parts := make([]string, 0, len(c.Equations))
		for _, eq := range c.Equations {
			parts = append(parts, fmt.Sprintf("%s %s %s",
				renderOperand(eq.Left), eq.Operator, renderOperand(eq.Right)))
		}
		return domain.EquationWhen(strings.Join(parts, " "+op+" ")), nil
	default:
		return domain.TransitionCondition{}, fmt.Errorf("unknown transition condition type %q", c.Type)
	}
}

// RetellLLMImporter converts the older Retell LLM states format: named
// states with prompt-described edges.
//
// Fidelity note: state edges carry only a natural-language description, so
// every transition becomes an llm_prompt condition; Retell's
// speaking-priority settings are dropped.
type RetellLLMImporter struct{}

type retellLLM struct {
	LLMID         string        `mapstructure:"llm_id"`
	GeneralPrompt string        `mapstructure:"general_prompt"`
	StartingState string        `mapstructure:"starting_state"`
	States        []retellState `mapstructure:"states"`
	GeneralTools  []retellTool  `mapstructure:"general_tools"`
}

type retellState struct {
	Name        string            `mapstructure:"name"`
	StatePrompt string            `mapstructure:"state_prompt"`
	Edges       []retellStateEdge `mapstructure:"edges"`
	Tools       []retellTool      `mapstructure:"tools"`
}

type retellStateEdge struct {
	DestinationStateName string `mapstructure:"destination_state_name"`
	Description          string `mapstructure:"description"`
}

func (RetellLLMImporter) SourceType() string { return "retell-llm" }

func (RetellLLMImporter) Detect(raw map[string]any) bool {
	if _, ok := raw["states"]; !ok {
		return false
	}
	_, hasStarting := raw["starting_state"]
	_, hasPrompt := raw["general_prompt"]
	_, hasID := raw["llm_id"]
	return hasStarting || hasPrompt || hasID
}

func (RetellLLMImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src retellLLM
	if err := decode(raw, &src); err != nil {
		return nil, err
	}
	if len(src.States) == 0 {
		return nil, fmt.Errorf("llm config has no states")
	}

	general := make([]domain.Tool, 0, len(src.GeneralTools))
	for _, t := range src.GeneralTools {
		general = append(general, domain.Tool{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Parameters,
		})
	}

	nodes := make([]domain.Node, 0, len(src.States))
	for _, st := range src.States {
		node := domain.Node{
			ID:           st.Name,
			Instructions: joinPrompts(src.GeneralPrompt, st.StatePrompt),
			Tools:        append([]domain.Tool(nil), general...),
		}
		for _, t := range st.Tools {
			node.Tools = append(node.Tools, domain.Tool{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			})
		}
		for _, e := range st.Edges {
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    e.DestinationStateName,
				Condition: domain.PromptWhen(e.Description),
			})
		}
		nodes = append(nodes, node)
	}

	entry := src.StartingState
	if entry == "" {
		entry = src.States[0].Name
	}
	return domain.NewGraph(entry, nodes,
		domain.WithSourceType("retell-llm"),
		domain.WithSourceMetadata(provenance(raw, "llm_id", "model", "version")))
}

var varRefRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_]*)\s*\}\}`)

// normalizeVarRefs rewrites {{var}} placeholders in equation operands to
// bare identifiers so the expression parses at compile time.
func normalizeVarRefs(s string) string {
	return varRefRe.ReplaceAllString(s, "$1")
}

// renderOperand turns a Retell equation operand into expression syntax.
// Variable references become bare identifiers; numbers and booleans pass
// through; anything else is a string literal and gets quoted.
func renderOperand(s string) string {
	s = strings.TrimSpace(s)
	if varRefRe.MatchString(s) {
		return normalizeVarRefs(s)
	}
	if s == "true" || s == "false" {
		return s
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return s
	}
	return strconv.Quote(s)
}

// joinPrompts concatenates an optional global prompt with a node prompt.
func joinPrompts(global, local string) string {
	switch {
	case global == "":
		return local
	case local == "":
		return global
	default:
		return global + "\n\n" + local
	}
}

// provenance copies the named top-level keys, when present, into a
// source-metadata map.
func provenance(raw map[string]any, keys ...string) map[string]any {
	out := make(map[string]any)
	for _, k := range keys {
		if v, ok := raw[k]; ok {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
