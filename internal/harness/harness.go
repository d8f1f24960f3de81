package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/converge/internal/entity"
	"github.com/roach88/converge/internal/reconcile"
)

// Result captures a scenario execution.
type Result struct {
	Scenario *Scenario
	Patchset *entity.Patchset
	Err      error
}

// Run executes the scenario's reconciliation. The returned Result holds
// either a patchset or the core's error; Check validates it against the
// scenario's expectations.
func Run(s *Scenario) *Result {
	ps, err := entity.Reconcile(s.Local, s.Remote)
	return &Result{Scenario: s, Patchset: ps, Err: err}
}

// Check validates the result against the scenario's expectations, returning
// every violated expectation.
func (r *Result) Check() []error {
	var failures []error
	expect := r.Scenario.Expect

	if expect.Error != "" {
		if r.Err == nil {
			return []error{fmt.Errorf("expected error %s, reconciliation succeeded", expect.Error)}
		}
		var re *reconcile.Error
		if !errors.As(r.Err, &re) {
			return []error{fmt.Errorf("expected error %s, got %v", expect.Error, r.Err)}
		}
		if string(re.Code) != expect.Error {
			return []error{fmt.Errorf("expected error %s, got %s", expect.Error, re.Code)}
		}
		return nil
	}

	if r.Err != nil {
		return []error{fmt.Errorf("unexpected error: %v", r.Err)}
	}

	if got := len(r.Patchset.Additions()); got != expect.Additions {
		failures = append(failures, fmt.Errorf("additions: want %d, got %d", expect.Additions, got))
	}
	if got := len(r.Patchset.Deletions()); got != expect.Deletions {
		failures = append(failures, fmt.Errorf("deletions: want %d, got %d", expect.Deletions, got))
	}
	if expect.Converged && !r.Patchset.Empty() {
		failures = append(failures, fmt.Errorf("expected convergence, got %d instructions", r.Patchset.Len()))
	}
	return failures
}
