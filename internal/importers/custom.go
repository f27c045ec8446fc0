package importers

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// CustomImporter is the escape hatch for hand-written graph descriptions:
// an entry id plus nodes whose transitions name their condition loosely
// (a prompt, equation or tool field, or a full condition object).
//
// Fidelity note: none; the input already speaks the graph model. A
// transition naming no condition at all becomes an unconditional
// fallthrough.
type CustomImporter struct{}

type customDoc struct {
	Entry string       `mapstructure:"entry"`
	Nodes []customNode `mapstructure:"nodes"`
}

type customNode struct {
	ID           string             `mapstructure:"id"`
	Instructions string             `mapstructure:"instructions"`
	Tools        []ToolDoc          `mapstructure:"tools"`
	Transitions  []customTransition `mapstructure:"transitions"`
}

type customTransition struct {
	Target    string        `mapstructure:"target"`
	Prompt    string        `mapstructure:"prompt"`
	Equation  string        `mapstructure:"equation"`
	Tool      string        `mapstructure:"tool"`
	Condition *ConditionDoc `mapstructure:"condition"`
}

func (CustomImporter) SourceType() string { return "custom" }

func (CustomImporter) Detect(raw map[string]any) bool {
	if _, ok := raw["entry"].(string); !ok {
		return false
	}
	_, hasNodes := raw["nodes"]
	return hasNodes
}

func (CustomImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src customDoc
	if err := decode(raw, &src); err != nil {
		return nil, err
	}

	nodes := make([]domain.Node, 0, len(src.Nodes))
	for _, sn := range src.Nodes {
		node := domain.Node{ID: sn.ID, Instructions: sn.Instructions}
		for _, td := range sn.Tools {
			node.Tools = append(node.Tools, domain.Tool{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.Parameters,
			})
		}
		for i, tr := range sn.Transitions {
			cond, err := tr.condition()
			if err != nil {
				return nil, fmt.Errorf("node %q transition %d: %w", sn.ID, i, err)
			}
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    tr.Target,
				Condition: cond,
			})
		}
		nodes = append(nodes, node)
	}

	return domain.NewGraph(src.Entry, nodes, domain.WithSourceType("custom"))
}

func (t customTransition) condition() (domain.TransitionCondition, error) {
	if t.Condition != nil {
		return t.Condition.condition()
	}
	set := 0
	for _, s := range []string{t.Prompt, t.Equation, t.Tool} {
		if s != "" {
			set++
		}
	}
	if set > 1 {
		return domain.TransitionCondition{}, fmt.Errorf("prompt, equation and tool are mutually exclusive")
	}
	switch {
	case t.Prompt != "":
		return domain.PromptWhen(t.Prompt), nil
	case t.Equation != "":
		return domain.EquationWhen(normalizeVarRefs(t.Equation)), nil
	case t.Tool != "":
		return domain.ToolWhen(t.Tool), nil
	default:
		return domain.Always(), nil
	}
}
