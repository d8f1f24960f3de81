// Package source loads desired-state snapshots for reconciliation.
//
// Desired state is declared in either a CUE directory (validated against an
// embedded schema) or a single YAML document. Both forms declare a top-level
// `entities` list; both load into []entity.Entity.
//
// Loaders return already-materialized, finite collections. Pagination,
// snapshot consistency with the remote side, and caching are the caller's
// concern.
package source
