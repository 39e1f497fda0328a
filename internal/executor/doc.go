// Package executor evaluates a parsed GraphQL operation against an in-memory
// schema by walking its selection sets.
//
// Execution is synchronous and runs to completion: fields are resolved in
// the order the query collects them, depth-first, with no suspension points.
// The executor owns the mechanical parts of evaluation (field collection
// with fragments and @skip/@include, aliases, argument and variable
// coercion, value completion with Non-Null propagation) and delegates the
// meaning of each field to a Resolver.
//
// Error handling follows the GraphQL response conventions: failures become
// located errors carrying a response path, a null is written for the failed
// field, and a null inside a Non-Null position propagates to the nearest
// nullable ancestor.
//
// The executor never mutates the schema; evaluating the same document twice
// against the same schema yields structurally identical results.
package executor
