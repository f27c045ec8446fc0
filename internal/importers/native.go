package importers

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// NativeSchema marks a config as parley's own export format.
const NativeSchema = "parley/v1"

// GraphDoc is the native serialized form of a graph. The native exporter
// emits it and NativeImporter reads it back.
type GraphDoc struct {
	Schema     string         `json:"schema" mapstructure:"schema"`
	Entry      string         `json:"entry" mapstructure:"entry"`
	SourceType string         `json:"source_type,omitempty" mapstructure:"source_type"`
	Metadata   map[string]any `json:"metadata,omitempty" mapstructure:"metadata"`
	Nodes      []NodeDoc      `json:"nodes" mapstructure:"nodes"`
}

type NodeDoc struct {
	ID           string          `json:"id" mapstructure:"id"`
	Instructions string          `json:"instructions" mapstructure:"instructions"`
	Tools        []ToolDoc       `json:"tools,omitempty" mapstructure:"tools"`
	Transitions  []TransitionDoc `json:"transitions,omitempty" mapstructure:"transitions"`
	Metadata     map[string]any  `json:"metadata,omitempty" mapstructure:"metadata"`
}

type ToolDoc struct {
	Name        string         `json:"name" mapstructure:"name"`
	Description string         `json:"description,omitempty" mapstructure:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" mapstructure:"parameters"`
}

type TransitionDoc struct {
	Target    string       `json:"target" mapstructure:"target"`
	Condition ConditionDoc `json:"condition" mapstructure:"condition"`
}

type ConditionDoc struct {
	Kind     string `json:"kind" mapstructure:"kind"`
	Prompt   string `json:"prompt,omitempty" mapstructure:"prompt"`
	Equation string `json:"equation,omitempty" mapstructure:"equation"`
	Tool     string `json:"tool,omitempty" mapstructure:"tool"`
}

// NativeImporter reads parley's own export format back into a graph.
// Fidelity note: lossless; the four condition kinds map one to one.
type NativeImporter struct{}

func (NativeImporter) SourceType() string { return "native" }

func (NativeImporter) Detect(raw map[string]any) bool {
	schema, _ := raw["schema"].(string)
	return schema == NativeSchema
}

func (NativeImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var doc GraphDoc
	if err := decode(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Schema != NativeSchema {
		return nil, fmt.Errorf("unsupported schema %q, want %q", doc.Schema, NativeSchema)
	}
	return doc.Graph()
}

// Graph converts the document into a validated domain graph.
func (d GraphDoc) Graph() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(d.Nodes))
	for _, nd := range d.Nodes {
		node := domain.Node{
			ID:           nd.ID,
			Instructions: nd.Instructions,
			Metadata:     nd.Metadata,
		}
		for _, td := range nd.Tools {
			node.Tools = append(node.Tools, domain.Tool{
				Name:        td.Name,
				Description: td.Description,
				Parameters:  td.Parameters,
			})
		}
		for _, tr := range nd.Transitions {
			cond, err := tr.Condition.condition()
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nd.ID, err)
			}
			node.Transitions = append(node.Transitions, domain.Transition{
				Target:    tr.Target,
				Condition: cond,
			})
		}
		nodes = append(nodes, node)
	}
	opts := []domain.GraphOption{domain.WithSourceType(sourceOrNative(d.SourceType))}
	if len(d.Metadata) > 0 {
		opts = append(opts, domain.WithSourceMetadata(d.Metadata))
	}
	return domain.NewGraph(d.Entry, nodes, opts...)
}

func sourceOrNative(s string) string {
	if s == "" {
		return "native"
	}
	return s
}

func (c ConditionDoc) condition() (domain.TransitionCondition, error) {
	switch domain.ConditionKind(c.Kind) {
	case domain.ConditionPrompt:
		return domain.PromptWhen(c.Prompt), nil
	case domain.ConditionEquation:
		return domain.EquationWhen(c.Equation), nil
	case domain.ConditionToolCall:
		return domain.ToolWhen(c.Tool), nil
	case domain.ConditionAlways:
		return domain.Always(), nil
	default:
		return domain.TransitionCondition{}, fmt.Errorf("unknown condition kind %q", c.Kind)
	}
}
