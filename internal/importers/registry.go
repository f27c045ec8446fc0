package importers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Registry holds the format adapters in priority order.
type Registry struct {
	importers []ports.Importer
}

// NewRegistry builds the default registry. Unambiguous formats come first;
// the custom escape hatch is last because its shape (entry + nodes) is the
// loosest.
func NewRegistry() *Registry {
	return &Registry{importers: []ports.Importer{
		&NativeImporter{},
		&RetellFlowImporter{},
		&RetellLLMImporter{},
		&VAPIImporter{},
		&BlandImporter{},
		&TelnyxImporter{},
		&SheetImporter{},
		&CustomImporter{},
	}}
}

// SourceTypes lists the registered source types in priority order.
func (r *Registry) SourceTypes() []string {
	out := make([]string, 0, len(r.importers))
	for _, imp := range r.importers {
		out = append(out, imp.SourceType())
	}
	return out
}

// Detect runs auto-detection and returns the matching importer.
func (r *Registry) Detect(raw map[string]any) (ports.Importer, error) {
	for _, imp := range r.importers {
		if imp.Detect(raw) {
			return imp, nil
		}
	}
	return nil, &domain.FormatError{Attempted: r.SourceTypes()}
}

// Import auto-detects the format and converts the config.
func (r *Registry) Import(raw map[string]any) (*domain.Graph, error) {
	imp, err := r.Detect(raw)
	if err != nil {
		return nil, err
	}
	g, err := imp.Import(raw)
	if err != nil {
		return nil, wrapImportErr(imp, err)
	}
	return g, nil
}

// ImportAs bypasses detection and uses the named source type directly.
func (r *Registry) ImportAs(sourceType string, raw map[string]any) (*domain.Graph, error) {
	for _, imp := range r.importers {
		if imp.SourceType() != sourceType {
			continue
		}
		g, err := imp.Import(raw)
		if err != nil {
			return nil, wrapImportErr(imp, err)
		}
		return g, nil
	}
	return nil, fmt.Errorf("unknown source type %q (known: %v)", sourceType, r.SourceTypes())
}

// ImportBytes decodes a JSON or YAML payload and runs auto-detection.
func (r *Registry) ImportBytes(data []byte) (*domain.Graph, error) {
	raw, err := DecodeBytes(data)
	if err != nil {
		return nil, &domain.FormatError{Attempted: r.SourceTypes(), Cause: err}
	}
	return r.Import(raw)
}

// wrapImportErr keeps structural errors recognizable while tagging
// malformed-input failures with the adapter that rejected them.
func wrapImportErr(imp ports.Importer, err error) error {
	var structural *domain.StructuralError
	if errors.As(err, &structural) {
		return err
	}
	return &domain.FormatError{Attempted: []string{imp.SourceType()}, Cause: err}
}

// DecodeBytes parses raw config bytes. JSON is tried first (the dominant
// wire format for platform exports), then YAML.
func DecodeBytes(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err == nil {
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("input is neither valid JSON nor YAML: %w", err)
	}
	return raw, nil
}

// decode maps a raw config onto an adapter's typed view. Weak typing
// smooths over JSON/YAML number differences.
func decode(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
