package executor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	language "github.com/gqlbridge/gqlbridge/internal/language"
)

func TestCollectFields_FragmentMergingAndTypename(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	doc := mustParseQuery(t, `{
		a
		...F1
		...F2
	}
	fragment F1 on Query { a __typename }
	fragment F2 on Query { __typename }
	`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}
	got := collectFields(state, sch.GetQueryType(), doc.Operations[0].SelectionSet).orderedFields()

	opSel := doc.Operations[0].SelectionSet
	frag1 := doc.Fragments.ForName("F1").SelectionSet
	frag2 := doc.Fragments.ForName("F2").SelectionSet
	want := []collectedField{
		{ResponseName: "a", Fields: []*language.Field{opSel[0].(*language.Field), frag1[0].(*language.Field)}},
		{ResponseName: "__typename", Fields: []*language.Field{frag1[1].(*language.Field), frag2[0].(*language.Field)}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("collected fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFields_SkipAndInclude(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String b: String c: String }`)
	doc := mustParseQuery(t, `{ a b @skip(if: true) c @include(if: false) }`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}
	got := collectFields(state, sch.GetQueryType(), doc.Operations[0].SelectionSet).orderedFields()

	if len(got) != 1 || got[0].ResponseName != "a" {
		t.Fatalf("expected only field a, got %+v", got)
	}
}

func TestCollectFields_SkipWithVariable(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String b: String }`)
	doc := mustParseQuery(t, `query($yes: Boolean!) { a @skip(if: $yes) b }`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{"yes": true}}
	got := collectFields(state, sch.GetQueryType(), doc.Operations[0].SelectionSet).orderedFields()

	if len(got) != 1 || got[0].ResponseName != "b" {
		t.Fatalf("expected only field b, got %+v", got)
	}
}

func TestCollectFields_AliasesKeepQueryOrder(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String b: String }`)
	doc := mustParseQuery(t, `{ second: b first: a }`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}
	got := collectFields(state, sch.GetQueryType(), doc.Operations[0].SelectionSet).orderedFields()

	var names []string
	for _, f := range got {
		names = append(names, f.ResponseName)
	}
	if diff := cmp.Diff([]string{"second", "first"}, names); diff != "" {
		t.Fatalf("response order mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFields_TypeConditions(t *testing.T) {
	sch := mustBuildSchema(t, `
		interface Node { id: ID! }
		type User implements Node { id: ID! name: String }
		type Post implements Node { id: ID! title: String }
		union Entity = User | Post
		type Query { node: Node }
	`)
	doc := mustParseQuery(t, `{
		... on User { name }
		... on Post { title }
		... on Node { id }
		... on Entity { __typename }
	}`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}
	got := collectFields(state, sch.Types["User"], doc.Operations[0].SelectionSet).orderedFields()

	var names []string
	for _, f := range got {
		names = append(names, f.ResponseName)
	}
	// Post's condition does not match User; interface and union conditions do.
	if diff := cmp.Diff([]string{"name", "id", "__typename"}, names); diff != "" {
		t.Fatalf("collected fields mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectFields_CyclicFragmentsTerminate(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { a: String }`)
	doc := mustParseQuery(t, `{ ...F }
	fragment F on Query { a ...F }`)
	state := &executionState{schema: sch, document: doc, variableValues: map[string]any{}}
	got := collectFields(state, sch.GetQueryType(), doc.Operations[0].SelectionSet).orderedFields()
	if len(got) != 1 || got[0].ResponseName != "a" {
		t.Fatalf("expected single field a, got %+v", got)
	}
}
