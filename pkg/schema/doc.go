// Package schema defines the validator-side vocabulary of the module: the
// tri-state constraint slots adapters fill in, field specs and value types,
// immutable schema values with their validation hooks, the canonical error
// shape, and the ModelAdapter contract that source-model bridges implement.
//
// Schemas are built once and never mutated; enrichment derives new values via
// Clone. Validation walks the declared fields, applies defaults and coercion,
// enforces the merged constraint set, then runs the registered field and
// model hooks.
package schema
