package exporters

import "github.com/aretw0/parley/pkg/ports"

// All returns the built-in exporters.
func All() []ports.Exporter {
	return []ports.Exporter{
		MermaidExporter{},
		RetellExporter{},
		CodegenExporter{},
		NativeExporter{},
	}
}

// ByFormat looks up an exporter by its format name.
func ByFormat(name string) (ports.Exporter, bool) {
	for _, e := range All() {
		if e.Format() == name {
			return e, true
		}
	}
	return nil, false
}

// Formats lists the available format names.
func Formats() []string {
	all := All()
	out := make([]string, 0, len(all))
	for _, e := range all {
		out = append(out, e.Format())
	}
	return out
}
