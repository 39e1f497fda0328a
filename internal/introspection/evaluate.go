package introspection

import (
	"context"

	executor "github.com/gqlbridge/gqlbridge/internal/executor"
	language "github.com/gqlbridge/gqlbridge/internal/language"
	schema "github.com/gqlbridge/gqlbridge/internal/schema"
)

// Evaluate answers one introspection query against the parsed schema.
//
// The query must be a single operation of query kind whose root selections
// are limited to __schema, __type and __typename; anything else needs
// executable-schema semantics this bridge does not provide and fails the
// evaluation. The result tree mirrors the selection set exactly: unselected
// fields are omitted, aliases rename keys, fragments are inlined.
//
// Evaluation is read-only against the schema, so identical (schema, query)
// pairs always produce identical results.
func Evaluate(ctx context.Context, sch *schema.Schema, query string) (map[string]any, error) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	if len(doc.Operations) != 1 {
		return nil, language.Errorf("expected exactly one operation per query, found %d", len(doc.Operations))
	}
	op := doc.Operations[0]
	if op.Operation != language.Query {
		return nil, language.Errorf("%s operations are not supported; introspection queries must be of query kind", op.Operation)
	}

	exec := executor.New(&resolver{schema: withMetaTypes(sch)}, Extend(sch))
	res := exec.ExecuteRequest(ctx, doc, op.Name, nil, nil)
	if len(res.Errors) > 0 {
		return nil, res.Errors[0]
	}
	return res.Data, nil
}
