package executor

import "context"

// Resolver supplies field values and leaf serialization to the Executor.
//
// Contract:
//   - ResolveField is called once per collected field (after arguments are
//     coerced) and returns the raw value the Executor completes against the
//     field's declared type. Returning (nil, nil) produces a GraphQL null.
//   - objectType is the GraphQL type name of the parent object; field is the
//     field name on that type; source is the parent value (nil at the root);
//     args maps argument names to coerced Go values.
//   - SerializeLeaf coerces a scalar or enum value into a JSON-safe Go value
//     (string, bool, int, float64). For enums, return the symbolic name.
//   - Errors are converted into located GraphQL errors by the Executor; a
//     Resolver must not panic for ordinary failures.
//   - Implementations must not mutate source or args and must be safe for
//     reuse across evaluations.
type Resolver interface {
	ResolveField(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	SerializeLeaf(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}
