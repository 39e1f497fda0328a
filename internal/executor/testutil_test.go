package executor

import (
	"context"
	"fmt"
	"testing"

	language "github.com/gqlbridge/gqlbridge/internal/language"
	schema "github.com/gqlbridge/gqlbridge/internal/schema"
)

func mustParseQuery(t *testing.T, src string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(src)
	if err != nil {
		t.Fatalf("parse query: %v", err)
	}
	return doc
}

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", sdl)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return sch
}

// mapResolver reads fields out of map sources. Values that are funcs taking
// the argument map are invoked, so tests can observe coerced arguments.
type mapResolver struct{}

func (mapResolver) ResolveField(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("cannot resolve field '%s' on type '%s'", field, objectType)
	}
	v := m[field]
	if fn, ok := v.(func(map[string]any) (any, error)); ok {
		return fn(args)
	}
	return v, nil
}

func (mapResolver) SerializeLeaf(ctx context.Context, typ string, value any) (any, error) {
	return value, nil
}
