// Package batch drives ordered batches of introspection queries against a
// single SDL document and folds the results into an all-or-nothing outcome.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	eventbus "github.com/gqlbridge/gqlbridge/internal/eventbus"
	events "github.com/gqlbridge/gqlbridge/internal/events"
	executor "github.com/gqlbridge/gqlbridge/internal/executor"
	language "github.com/gqlbridge/gqlbridge/internal/language"
)

// Result is the JSON-shaped data tree produced by one introspection query.
type Result = map[string]any

// Location is a line/column position in a source text, 1-based.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ErrorRecord describes one failure. Locations point into the offending
// source text when known; Path locates the failing value in the response
// tree, prefixed with the index of the query that failed.
type ErrorRecord struct {
	Message   string     `json:"message"`
	Locations []Location `json:"locations,omitempty"`
	Path      []any      `json:"path,omitempty"`
}

// Outcome is the overall result of a batch run. Exactly one branch is set:
// Ok holds one result per input query, in input order, when every query
// succeeded; Err holds the failure records otherwise. A batch never mixes
// successes and failures.
type Outcome struct {
	Ok  []Result
	Err []ErrorRecord
}

// Failed reports whether the outcome is the error branch.
func (o Outcome) Failed() bool { return len(o.Err) > 0 }

// MarshalJSON emits exactly one of the two branches as the sole object key.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Failed() {
		return json.Marshal(struct {
			Err []ErrorRecord `json:"Err"`
		}{o.Err})
	}
	results := o.Ok
	if results == nil {
		results = []Result{}
	}
	return json.Marshal(struct {
		Ok []Result `json:"Ok"`
	}{results})
}

// UnmarshalJSON accepts either branch.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw struct {
		Ok  []Result      `json:"Ok"`
		Err []ErrorRecord `json:"Err"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Ok, o.Err = raw.Ok, raw.Err
	return nil
}

// Engine evaluates a batch of introspection queries against an SDL document.
// Implementations must return one result per query, in input order, or an
// error describing the first failure.
type Engine interface {
	EvaluateBatch(ctx context.Context, sdl string, queries []string) ([]Result, error)
}

// QueryError wraps a failure with the index of the query that caused it.
type QueryError struct {
	Index int
	Err   error
}

func (e *QueryError) Error() string { return fmt.Sprintf("query %d: %v", e.Index, e.Err) }

func (e *QueryError) Unwrap() error { return e.Err }

// Bridge runs batches through an injected Engine and normalizes every
// failure mode, including engine panics, into the Outcome error branch.
type Bridge struct {
	engine Engine
}

// New creates a Bridge backed by engine.
func New(engine Engine) *Bridge {
	return &Bridge{engine: engine}
}

// Run evaluates queries against sdl. The SDL must be non-blank; a blank
// document fails before the engine is consulted. On success the outcome
// carries one result per query, aligned by index.
func (b *Bridge) Run(ctx context.Context, sdl string, queries []string) (outcome Outcome) {
	start := time.Now()
	eventbus.Publish(ctx, events.BatchStart{QueryCount: len(queries)})
	defer func() {
		eventbus.Publish(ctx, events.BatchFinish{
			QueryCount: len(queries),
			ErrorCount: len(outcome.Err),
			Duration:   time.Since(start),
		})
	}()
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Err: []ErrorRecord{{
				Message: fmt.Sprintf("introspection engine failure: %v", r),
			}}}
		}
	}()

	if strings.TrimSpace(sdl) == "" {
		outcome = Outcome{Err: []ErrorRecord{{Message: "SDL is empty."}}}
		return
	}

	results, err := b.engine.EvaluateBatch(ctx, sdl, queries)
	if err != nil {
		outcome = Outcome{Err: recordsFromError(err)}
		return
	}
	if len(results) != len(queries) {
		outcome = Outcome{Err: []ErrorRecord{{
			Message: fmt.Sprintf("engine returned %d results for %d queries", len(results), len(queries)),
		}}}
		return
	}
	outcome = Outcome{Ok: results}
	return
}

// recordsFromError flattens an engine error into error records, keeping
// source locations and response paths where the error carries them.
func recordsFromError(err error) []ErrorRecord {
	var qerr *QueryError
	if errors.As(err, &qerr) {
		records := recordsFromError(qerr.Err)
		for i := range records {
			records[i].Path = append([]any{qerr.Index}, records[i].Path...)
		}
		return records
	}

	switch e := err.(type) {
	case language.ErrorList:
		records := make([]ErrorRecord, 0, len(e))
		for _, inner := range e {
			records = append(records, recordsFromError(inner)...)
		}
		if len(records) == 0 {
			records = append(records, ErrorRecord{Message: e.Error()})
		}
		return records
	case *language.Error:
		rec := ErrorRecord{Message: e.Message}
		for _, loc := range e.Locations {
			rec.Locations = append(rec.Locations, Location{Line: loc.Line, Column: loc.Column})
		}
		return []ErrorRecord{rec}
	case executor.GraphQLError:
		rec := ErrorRecord{Message: e.Message}
		for _, elem := range e.Path {
			rec.Path = append(rec.Path, elem)
		}
		return []ErrorRecord{rec}
	default:
		return []ErrorRecord{{Message: err.Error()}}
	}
}
