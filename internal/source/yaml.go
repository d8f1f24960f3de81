package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/converge/internal/entity"
)

// document is the YAML desired-state layout.
type document struct {
	Entities []entity.Entity `yaml:"entities"`
}

// LoadYAMLFile loads desired entities from a single YAML document.
// Unknown fields are rejected so typos in desired state fail loudly.
func LoadYAMLFile(path string) ([]entity.Entity, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("desired-state file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("empty desired-state document: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing %s: %v", path, err)}
	}

	for i, e := range doc.Entities {
		if e.ID == "" {
			return nil, &LoadError{Code: ErrCodeMissingID, Message: fmt.Sprintf("%s: entities[%d] has no id", path, i)}
		}
	}
	return doc.Entities, nil
}
