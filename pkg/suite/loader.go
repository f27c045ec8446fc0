package suite

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/domain"
)

// File is the YAML shape of a test suite on disk.
type File struct {
	Name string `yaml:"name"`

	// Threshold is the suite-level metric pass threshold; zero falls back
	// to the global default. Per-metric thresholds still win.
	Threshold float64 `yaml:"threshold,omitempty"`

	Tests []domain.TestCase `yaml:"tests"`
}

// ParseFile decodes a suite definition. It rejects suites without tests or
// with unnamed test cases; deeper validation (personas, node references)
// stays with the caller, who has the graph at hand.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse suite: %w", err)
	}
	if len(f.Tests) == 0 {
		return nil, fmt.Errorf("parse suite: no tests defined")
	}
	for i, tc := range f.Tests {
		if tc.Name == "" {
			return nil, fmt.Errorf("parse suite: test %d has no name", i)
		}
	}
	return &f, nil
}
