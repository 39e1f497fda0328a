package batch

import (
	"context"
	"time"

	eventbus "github.com/gqlbridge/gqlbridge/internal/eventbus"
	events "github.com/gqlbridge/gqlbridge/internal/events"
	introspection "github.com/gqlbridge/gqlbridge/internal/introspection"
	schema "github.com/gqlbridge/gqlbridge/internal/schema"
)

// SchemaEngine evaluates introspection queries against an SDL document.
// The SDL is parsed and validated once per batch; every query then runs
// against the same schema, in input order, stopping at the first failure.
type SchemaEngine struct {
	// SourceName labels the SDL document in parse error locations.
	SourceName string
}

// NewSchemaEngine creates an engine with the default source name.
func NewSchemaEngine() *SchemaEngine {
	return &SchemaEngine{SourceName: "schema.graphql"}
}

// EvaluateBatch implements Engine.
func (e *SchemaEngine) EvaluateBatch(ctx context.Context, sdl string, queries []string) ([]Result, error) {
	sch, err := schema.BuildFromSDL(e.SourceName, sdl)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(queries))
	for i, query := range queries {
		start := time.Now()
		eventbus.Publish(ctx, events.QueryStart{Index: i, Query: query})
		data, err := introspection.Evaluate(ctx, sch, query)
		eventbus.Publish(ctx, events.QueryFinish{Index: i, Err: err, Duration: time.Since(start)})
		if err != nil {
			return nil, &QueryError{Index: i, Err: err}
		}
		results = append(results, data)
	}
	return results, nil
}
