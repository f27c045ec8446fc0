package ports

import "github.com/aretw0/parley/pkg/domain"

// Importer converts one source platform's configuration into the canonical
// graph. Implementations are stateless: two importers of the same type are
// interchangeable, and Detect must not mutate the input.
type Importer interface {
	// SourceType returns the stable tag recorded on imported graphs
	// (e.g. "retell", "vapi", "native").
	SourceType() string

	// Detect reports whether the raw config looks like this importer's
	// format. Detection is structural (which fields are present), never a
	// guess: ambiguous inputs should return false and let a lower-priority
	// importer claim them.
	Detect(raw map[string]any) bool

	// Import converts the raw config. Malformed input yields an error that
	// the registry wraps into a domain.FormatError; structurally invalid
	// results surface as domain.StructuralError.
	Import(raw map[string]any) (*domain.Graph, error)
}
