package importers

import (
	"fmt"

	"github.com/aretw0/parley/pkg/domain"
)

// BlandImporter converts a Bland pathway: top-level node and edge arrays,
// with edge labels acting as natural-language routing conditions.
//
// Fidelity note: Bland distinguishes "Default" nodes from typed ones
// (webhook, transfer, end call); all become plain conversational nodes here,
// and an unlabeled edge becomes an unconditional fallthrough.
type BlandImporter struct{}

type blandPathway struct {
	Name  string      `mapstructure:"name"`
	Nodes []blandNode `mapstructure:"nodes"`
	Edges []blandEdge `mapstructure:"edges"`
}

type blandNode struct {
	ID   string        `mapstructure:"id"`
	Type string        `mapstructure:"type"`
	Data blandNodeData `mapstructure:"data"`
}

type blandNodeData struct {
	Name    string `mapstructure:"name"`
	Text    string `mapstructure:"text"`
	Prompt  string `mapstructure:"prompt"`
	IsStart bool   `mapstructure:"isStart"`
}

type blandEdge struct {
	ID     string `mapstructure:"id"`
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
	Label  string `mapstructure:"label"`
}

func (BlandImporter) SourceType() string { return "bland" }

func (BlandImporter) Detect(raw map[string]any) bool {
	if _, ok := raw["nodes"]; !ok {
		return false
	}
	edges, ok := raw["edges"].([]any)
	if !ok || len(edges) == 0 {
		return false
	}
	edge, ok := edges[0].(map[string]any)
	if !ok {
		return false
	}
	_, hasSource := edge["source"]
	_, hasTarget := edge["target"]
	return hasSource && hasTarget
}

func (BlandImporter) Import(raw map[string]any) (*domain.Graph, error) {
	var src blandPathway
	if err := decode(raw, &src); err != nil {
		return nil, err
	}
	if len(src.Nodes) == 0 {
		return nil, fmt.Errorf("pathway has no nodes")
	}

	byID := make(map[string]*domain.Node, len(src.Nodes))
	order := make([]string, 0, len(src.Nodes))
	entry := ""
	for _, sn := range src.Nodes {
		instructions := sn.Data.Prompt
		if instructions == "" {
			instructions = sn.Data.Text
		}
		n := &domain.Node{ID: sn.ID, Instructions: instructions}
		if sn.Data.Name != "" {
			n.Metadata = map[string]any{"name": sn.Data.Name}
		}
		byID[sn.ID] = n
		order = append(order, sn.ID)
		if sn.Data.IsStart {
			entry = sn.ID
		}
	}
	if entry == "" {
		entry = src.Nodes[0].ID
	}

	for _, e := range src.Edges {
		n, ok := byID[e.Source]
		if !ok {
			return nil, fmt.Errorf("edge %q references unknown source node %q", e.ID, e.Source)
		}
		cond := domain.Always()
		if e.Label != "" {
			cond = domain.PromptWhen(e.Label)
		}
		n.Transitions = append(n.Transitions, domain.Transition{Target: e.Target, Condition: cond})
	}

	nodes := make([]domain.Node, 0, len(order))
	for _, id := range order {
		nodes = append(nodes, *byID[id])
	}
	return domain.NewGraph(entry, nodes,
		domain.WithSourceType("bland"),
		domain.WithSourceMetadata(provenance(raw, "name", "description")))
}
