// Package harness runs declarative conformance scenarios against the
// reconciliation core.
//
// A scenario is a YAML document naming a local and a remote record set plus
// expectations on the resulting patchset (instruction counts, convergence,
// or an expected precondition violation). Scenarios double as executable
// documentation of the reconciliation model: the testdata/scenarios tree
// covers pure additions, pure deletions, duplicate collapse, exact-match
// no-ops, and precondition failures.
//
// Successful scenarios are additionally compared against golden files: the
// patchset is rendered as canonical JSON and checked byte-for-byte with
// goldie, so any change to instruction ordering or survivor selection shows
// up as a golden diff.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
