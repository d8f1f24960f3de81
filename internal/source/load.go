package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/converge/internal/entity"
)

// Load loads desired state from a path: a directory is treated as a CUE
// package, a .yaml/.yml file as a YAML document.
func Load(path string) ([]entity.Entity, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("desired-state path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("accessing %s: %v", path, err)}
	}

	if info.IsDir() {
		return LoadCUEDir(path)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return LoadYAMLFile(path)
	default:
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("unsupported desired-state format: %s (want a CUE directory or .yaml file)", path)}
	}
}

// Validate checks entity-level invariants that reconciliation would reject:
// missing ids and duplicate ids. Returns all findings, not just the first.
func Validate(entities []entity.Entity) []*LoadError {
	var errs []*LoadError
	seen := make(map[string]int, len(entities))
	for i, e := range entities {
		if e.ID == "" {
			errs = append(errs, &LoadError{
				Code:    ErrCodeMissingID,
				Message: fmt.Sprintf("entities[%d] has no id", i),
			})
			continue
		}
		if prev, dup := seen[e.ID]; dup {
			errs = append(errs, &LoadError{
				Code:    ErrCodeDuplicateID,
				Message: fmt.Sprintf("entities[%d] duplicates id %q (first at entities[%d])", i, e.ID, prev),
			})
			continue
		}
		seen[e.ID] = i
	}
	return errs
}

// Provider adapts a desired-state path to the engine's LocalSource contract.
// The path is re-read on every snapshot, so edits between cycles take effect
// without restarting the engine.
type Provider struct {
	Path string
}

// LocalSnapshot implements engine.LocalSource.
func (p Provider) LocalSnapshot(ctx context.Context) ([]entity.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(p.Path)
}
