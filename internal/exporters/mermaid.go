package exporters

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// MermaidExporter renders the graph as a Mermaid flowchart.
// Semantic styling:
//   - entry node: ((Circle))
//   - node with tools: [[Subroutine]]
//   - default: [Rectangle]
//
// Deterministic transitions use solid arrows, model-evaluated ones dotted
// arrows. Overlay options mark visited and current nodes from a run trace.
type MermaidExporter struct{}

func (MermaidExporter) Format() string { return "mermaid" }

func (MermaidExporter) Export(g *domain.Graph, opts ports.ExportOptions) (string, error) {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range g.Nodes() {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == g.Entry():
			opener, closer = "((", "))"
		case len(node.Tools) > 0:
			opener, closer = "[[", "]]"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, node.ID, closer))

		for _, t := range node.Transitions {
			safeTo := sanitizeMermaidID(t.Target)

			arrow := "-.->"
			if t.Condition.Deterministic() || t.Condition.Kind == domain.ConditionAlways {
				arrow = "-->"
			}
			if label := t.Condition.Describe(); label != "always" {
				safeLabel := strings.ReplaceAll(label, "\"", "'")
				if arrow == "-->" {
					arrow = fmt.Sprintf("-- \"%s\" -->", safeLabel)
				} else {
					arrow = fmt.Sprintf("-. \"%s\" .->", safeLabel)
				}
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	if len(opts.VisitedNodes) > 0 || opts.CurrentNode != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for high contrast regardless of theme.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range opts.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if safeID == "" || visitedSet[safeID] {
				continue
			}
			visitedSet[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
		}
		if opts.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(opts.CurrentNode)))
		}
	}

	return sb.String(), nil
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
