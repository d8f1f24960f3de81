package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/converge/internal/entity"
)

// Scenario defines one conformance scenario for the reconciliation core.
type Scenario struct {
	// Name uniquely identifies this scenario; the golden file is stored at
	// testdata/golden/{Name}.golden.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Local is the authoritative desired record set.
	Local []entity.Entity `yaml:"local"`

	// Remote is the drifted remote record set. Duplicate ids are legal here.
	Remote []entity.Entity `yaml:"remote"`

	// Expect holds assertions on the outcome.
	Expect Expectation `yaml:"expect"`
}

// Expectation describes the outcome a scenario requires.
type Expectation struct {
	// Additions is the expected number of addition instructions.
	Additions int `yaml:"additions"`

	// Deletions is the expected number of deletion instructions.
	Deletions int `yaml:"deletions"`

	// Converged asserts the patchset is empty. Implies zero counts above.
	Converged bool `yaml:"converged,omitempty"`

	// Error names the expected precondition violation code
	// (INVALID_RECORD or INVALID_STATE). Empty means success.
	Error string `yaml:"error,omitempty"`
}

// LoadScenarioFile parses one scenario document. Unknown fields are
// rejected so scenario typos fail loudly.
func LoadScenarioFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &s, nil
}

// LoadScenarioDir loads every .yaml scenario under dir, sorted by name so
// the suite runs in a stable order.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir %s: %w", dir, err)
	}

	var scenarios []*Scenario
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		s, err := LoadScenarioFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	sort.Slice(scenarios, func(i, j int) bool { return scenarios[i].Name < scenarios[j].Name })
	return scenarios, nil
}
