package exporters

import (
	"encoding/json"

	"github.com/aretw0/parley/internal/importers"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// NativeExporter serializes the graph as parley's own JSON format, the
// inverse of the native importer.
type NativeExporter struct{}

func (NativeExporter) Format() string { return "native" }

func (NativeExporter) Export(g *domain.Graph, opts ports.ExportOptions) (string, error) {
	doc := importers.GraphDoc{
		Schema:     importers.NativeSchema,
		Entry:      g.Entry(),
		SourceType: g.SourceType,
		Metadata:   g.SourceMetadata,
	}
	for _, n := range g.Nodes() {
		nd := importers.NodeDoc{
			ID:           n.ID,
			Instructions: n.Instructions,
			Metadata:     n.Metadata,
		}
		for _, tool := range n.Tools {
			nd.Tools = append(nd.Tools, importers.ToolDoc{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		for _, t := range n.Transitions {
			nd.Transitions = append(nd.Transitions, importers.TransitionDoc{
				Target: t.Target,
				Condition: importers.ConditionDoc{
					Kind:     string(t.Condition.Kind),
					Prompt:   t.Condition.Prompt,
					Equation: t.Condition.Equation,
					Tool:     t.Condition.Tool,
				},
			})
		}
		doc.Nodes = append(doc.Nodes, nd)
	}

	var (
		out []byte
		err error
	)
	if opts.Indent {
		out, err = json.MarshalIndent(doc, "", "  ")
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}
