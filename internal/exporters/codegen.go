package exporters

import (
	"fmt"
	"strings"

	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// CodegenExporter emits a Go source skeleton declaring one execution unit
// per node with one trigger per outgoing transition. Trigger names come
// from runtime.TriggerToolName, so the generated code and simulated
// execution share one node-to-unit mapping.
type CodegenExporter struct {
	// Package names the emitted package; defaults to "agent".
	Package string
}

func (e CodegenExporter) Format() string { return "code" }

func (e CodegenExporter) Export(g *domain.Graph, opts ports.ExportOptions) (string, error) {
	pkg := e.Package
	if pkg == "" {
		pkg = "agent"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated from a conversation-flow graph. DO NOT EDIT.\n\n")
	fmt.Fprintf(&sb, "package %s\n\n", pkg)
	fmt.Fprintf(&sb, "const EntryUnit = %q\n\n", g.Entry())

	sb.WriteString("// Units declares one execution unit per conversational state.\n")
	sb.WriteString("var Units = map[string]Unit{\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(&sb, "\t%q: {\n", n.ID)
		fmt.Fprintf(&sb, "\t\tInstructions: %q,\n", n.Instructions)
		if len(n.Tools) > 0 {
			sb.WriteString("\t\tTools: []string{")
			for i, tool := range n.Tools {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "%q", tool.Name)
			}
			sb.WriteString("},\n")
		}
		if len(n.Transitions) > 0 {
			sb.WriteString("\t\tTriggers: []Trigger{\n")
			for i, t := range n.Transitions {
				fmt.Fprintf(&sb, "\t\t\t{Name: %q, Target: %q, Kind: %q, When: %q},\n",
					runtime.TriggerToolName(i, t.Target), t.Target,
					string(t.Condition.Kind), t.Condition.Describe())
			}
			sb.WriteString("\t\t},\n")
		}
		sb.WriteString("\t},\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("// Unit mirrors the runtime execution unit shape.\n")
	sb.WriteString("type Unit struct {\n")
	sb.WriteString("\tInstructions string\n")
	sb.WriteString("\tTools        []string\n")
	sb.WriteString("\tTriggers     []Trigger\n")
	sb.WriteString("}\n\n")

	sb.WriteString("// Trigger is one outgoing transition of a unit.\n")
	sb.WriteString("type Trigger struct {\n")
	sb.WriteString("\tName   string\n")
	sb.WriteString("\tTarget string\n")
	sb.WriteString("\tKind   string\n")
	sb.WriteString("\tWhen   string\n")
	sb.WriteString("}\n")

	return sb.String(), nil
}
