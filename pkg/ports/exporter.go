package ports

import "github.com/aretw0/parley/pkg/domain"

// ExportOptions tune an exporter's output. Zero value is always valid.
type ExportOptions struct {
	// VisitedNodes and CurrentNode overlay a run trace onto diagram output.
	VisitedNodes []string
	CurrentNode  string

	// Indent enables pretty-printing for structured outputs.
	Indent bool
}

// Exporter is a pure projection from the canonical graph to a target
// representation. Exporters never mutate the graph and never read
// importer-specific metadata they don't declare support for.
type Exporter interface {
	// Format returns the stable name of the target representation
	// (e.g. "mermaid", "retell", "native", "code").
	Format() string

	// Export renders the graph.
	Export(g *domain.Graph, opts ExportOptions) (string, error)
}
