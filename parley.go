package parley

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/parley/internal/exporters"
	"github.com/aretw0/parley/internal/importers"
	"github.com/aretw0/parley/internal/runtime"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/suite"
)

// ImportBytes converts a JSON or YAML agent config into the canonical graph,
// auto-detecting the source format.
func ImportBytes(data []byte) (*domain.Graph, error) {
	return importers.NewRegistry().ImportBytes(data)
}

// ImportFile reads and converts an agent config file.
func ImportFile(path string) (*domain.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ImportBytes(data)
}

// ImportAs converts a raw config using the named source type, bypassing
// auto-detection.
func ImportAs(sourceType string, raw map[string]any) (*domain.Graph, error) {
	return importers.NewRegistry().ImportAs(sourceType, raw)
}

// SourceTypes lists the supported import formats in detection priority order.
func SourceTypes() []string {
	return importers.NewRegistry().SourceTypes()
}

// Export renders the graph in the named format ("mermaid", "retell", "code",
// "native").
func Export(g *domain.Graph, format string, opts ports.ExportOptions) (string, error) {
	exp, ok := exporters.ByFormat(format)
	if !ok {
		return "", fmt.Errorf("unknown export format %q (known: %v)", format, exporters.Formats())
	}
	return exp.Export(g, opts)
}

// ExportFormats lists the supported export formats.
func ExportFormats() []string {
	return exporters.Formats()
}

// Validate compiles the graph without variable bindings, surfacing
// structural problems and malformed equations before any test runs.
func Validate(g *domain.Graph) error {
	_, err := runtime.Compile(g, nil)
	return err
}

// LoadSuite parses a YAML test-suite file.
func LoadSuite(data []byte) (*suite.File, error) {
	return suite.ParseFile(data)
}

// Run executes the test cases against the graph using the given model
// client for agent, simulator and judge roles alike. Use suite.New directly
// to assign different clients per role or to attach metrics.
func Run(ctx context.Context, client ports.ModelClient, g *domain.Graph, cases []domain.TestCase, opts ...suite.Option) (*domain.TestRun, error) {
	return suite.New(client, opts...).Run(ctx, g, cases)
}
