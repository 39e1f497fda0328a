package introspection

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	schema "github.com/gqlbridge/gqlbridge/internal/schema"
	"github.com/stretchr/testify/require"
)

func mustBuildSchema(t *testing.T, sdl string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", sdl)
	require.NoError(t, err)
	return sch
}

func mustEvaluate(t *testing.T, sch *schema.Schema, query string) map[string]any {
	t.Helper()
	data, err := Evaluate(context.Background(), sch, query)
	require.NoError(t, err)
	return data
}

func TestEvaluate_SchemaQueryTypeName(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	data := mustEvaluate(t, sch, `{ __schema { queryType { name } } }`)

	want := map[string]any{
		"__schema": map[string]any{
			"queryType": map[string]any{"name": "Query"},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_TypeFieldsKeepDeclarationOrder(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Product {
			upc: String!
			name: String
		}
	`)
	data := mustEvaluate(t, sch, `{
		__type(name: "Product") {
			name
			kind
			fields {
				name
				type { kind name ofType { kind name } }
			}
		}
	}`)

	want := map[string]any{
		"__type": map[string]any{
			"name": "Product",
			"kind": "OBJECT",
			"fields": []any{
				map[string]any{
					"name": "upc",
					"type": map[string]any{
						"kind": "NON_NULL",
						"name": nil,
						"ofType": map[string]any{
							"kind": "SCALAR",
							"name": "String",
						},
					},
				},
				map[string]any{
					"name": "name",
					"type": map[string]any{
						"kind":   "SCALAR",
						"name":   "String",
						"ofType": nil,
					},
				},
			},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_UnknownTypeIsNull(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	data := mustEvaluate(t, sch, `{ __type(name: "Nope") { name } }`)
	require.Contains(t, data, "__type")
	require.Nil(t, data["__type"])
}

func TestEvaluate_AliasesAndFragments(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	data := mustEvaluate(t, sch, `{
		root: __schema { ...Roots }
	}
	fragment Roots on __Schema {
		queryType { name }
		mutationType { name }
	}`)

	want := map[string]any{
		"root": map[string]any{
			"queryType":    map[string]any{"name": "Query"},
			"mutationType": nil,
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_SchemaTypesSortedAndComplete(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Zebra { name: String }
		type Apple { color: String }
		type Query { z: Zebra a: Apple }
	`)
	data := mustEvaluate(t, sch, `{ __schema { types { name } } }`)

	types := data["__schema"].(map[string]any)["types"].([]any)
	var names []string
	for _, item := range types {
		names = append(names, item.(map[string]any)["name"].(string))
	}

	// Sorted by name: built-in scalars, meta types, then user types interleaved.
	require.IsIncreasing(t, names)
	require.Contains(t, names, "Apple")
	require.Contains(t, names, "Zebra")
	require.Contains(t, names, "Query")
	require.Contains(t, names, "String")
	require.Contains(t, names, "__Type")
}

func TestEvaluate_MetaTypesListedButRootMetaFieldsHidden(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	data := mustEvaluate(t, sch, `{
		__schema {
			types { name }
			queryType { fields { name } }
		}
	}`)

	root := data["__schema"].(map[string]any)
	var names []string
	for _, item := range root["types"].([]any) {
		names = append(names, item.(map[string]any)["name"].(string))
	}
	for _, meta := range []string{
		"__Directive", "__DirectiveLocation", "__EnumValue", "__Field",
		"__InputValue", "__Schema", "__Type", "__TypeKind",
	} {
		require.Contains(t, names, meta)
	}

	// Meta-types are part of the type list, but the query root does not
	// advertise __schema/__type as its own fields.
	var fieldNames []string
	for _, f := range root["queryType"].(map[string]any)["fields"].([]any) {
		fieldNames = append(fieldNames, f.(map[string]any)["name"].(string))
	}
	require.Equal(t, []string{"hello"}, fieldNames)

	data = mustEvaluate(t, sch, `{ __type(name: "__Schema") { name kind } }`)
	want := map[string]any{
		"__type": map[string]any{"name": "__Schema", "kind": "OBJECT"},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_SchemaRequiresSubselection(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	_, err := Evaluate(context.Background(), sch, `{ __schema }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "selection of subfields")
}

func TestEvaluate_IncludeDeprecated(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query {
			current: String
			old: String @deprecated(reason: "gone")
		}
		enum Status {
			ACTIVE
			RETIRED @deprecated
		}
	`)

	fieldNames := func(data map[string]any) []string {
		fields := data["__type"].(map[string]any)["fields"].([]any)
		var names []string
		for _, f := range fields {
			names = append(names, f.(map[string]any)["name"].(string))
		}
		return names
	}

	data := mustEvaluate(t, sch, `{ __type(name: "Query") { fields { name } } }`)
	require.Equal(t, []string{"current"}, fieldNames(data))

	data = mustEvaluate(t, sch, `{ __type(name: "Query") { fields(includeDeprecated: true) { name deprecationReason } } }`)
	require.Equal(t, []string{"current", "old"}, fieldNames(data))
	fields := data["__type"].(map[string]any)["fields"].([]any)
	require.Nil(t, fields[0].(map[string]any)["deprecationReason"])
	require.Equal(t, "gone", fields[1].(map[string]any)["deprecationReason"])

	data = mustEvaluate(t, sch, `{ __type(name: "Status") { enumValues(includeDeprecated: true) { name isDeprecated } } }`)
	evs := data["__type"].(map[string]any)["enumValues"].([]any)
	require.Len(t, evs, 2)
	require.Equal(t, true, evs[1].(map[string]any)["isDeprecated"])
}

func TestEvaluate_InputDefaultsRenderAsLiterals(t *testing.T) {
	sch := mustBuildSchema(t, `
		enum Order { ASC DESC }
		input Filter {
			limit: Int = 10
			order: Order = ASC
			q: String = "abc"
			raw: String
		}
		type Query { search(f: Filter): String }
	`)
	data := mustEvaluate(t, sch, `{ __type(name: "Filter") { inputFields { name defaultValue } } }`)

	want := map[string]any{
		"__type": map[string]any{
			"inputFields": []any{
				map[string]any{"name": "limit", "defaultValue": "10"},
				map[string]any{"name": "order", "defaultValue": "ASC"},
				map[string]any{"name": "q", "defaultValue": `"abc"`},
				map[string]any{"name": "raw", "defaultValue": nil},
			},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_InterfacesAndPossibleTypes(t *testing.T) {
	sch := mustBuildSchema(t, `
		interface Node { id: ID! }
		type B implements Node { id: ID! }
		type A implements Node { id: ID! }
		type Query { node: Node }
	`)
	data := mustEvaluate(t, sch, `{
		__type(name: "Node") { possibleTypes { name } }
	}`)

	want := map[string]any{
		"__type": map[string]any{
			"possibleTypes": []any{
				map[string]any{"name": "A"},
				map[string]any{"name": "B"},
			},
		},
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestEvaluate_Directives(t *testing.T) {
	sch := mustBuildSchema(t, `
		directive @tag(name: String = "none") repeatable on FIELD_DEFINITION
		type Query { a: String }
	`)
	data := mustEvaluate(t, sch, `{ __schema { directives { name isRepeatable locations } } }`)

	dirs := data["__schema"].(map[string]any)["directives"].([]any)
	var names []string
	var tag map[string]any
	for _, d := range dirs {
		m := d.(map[string]any)
		names = append(names, m["name"].(string))
		if m["name"] == "tag" {
			tag = m
		}
	}
	require.IsIncreasing(t, names)
	require.Contains(t, names, "skip")
	require.Contains(t, names, "include")
	require.Contains(t, names, "deprecated")
	require.NotNil(t, tag)
	require.Equal(t, true, tag["isRepeatable"])
	require.Equal(t, []any{"FIELD_DEFINITION"}, tag["locations"])
}

func TestEvaluate_TypenameAtRoot(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	data := mustEvaluate(t, sch, `{ __typename }`)
	require.Equal(t, map[string]any{"__typename": "Query"}, data)
}

func TestEvaluate_RejectsNonQueryOperations(t *testing.T) {
	sch := mustBuildSchema(t, `
		type Query { hello: String }
		type Mutation { set(v: String): String }
	`)
	_, err := Evaluate(context.Background(), sch, `mutation { set(v: "x") }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "mutation operations are not supported")
}

func TestEvaluate_RejectsMultipleOperations(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	_, err := Evaluate(context.Background(), sch, `
		query A { __typename }
		query B { __typename }
	`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one operation")
}

func TestEvaluate_NonIntrospectionRootFieldFails(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	_, err := Evaluate(context.Background(), sch, `{ hello }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "executable schema")
}

func TestEvaluate_SyntaxErrorSurfaces(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	_, err := Evaluate(context.Background(), sch, `{ __schema {`)
	require.Error(t, err)
}

func TestEvaluate_Deterministic(t *testing.T) {
	sch := mustBuildSchema(t, `
		type M { x: Int }
		type A { m: M }
		type Z { a: A }
		type Query { z: Z }
	`)
	query := `{
		__schema {
			types { name kind fields { name type { kind name ofType { kind name } } } }
			directives { name }
		}
	}`
	first := mustEvaluate(t, sch, query)
	second := mustEvaluate(t, sch, query)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("evaluation not deterministic (-first +second):\n%s", diff)
	}
}

func TestExtend_DoesNotMutateOriginal(t *testing.T) {
	sch := mustBuildSchema(t, `type Query { hello: String }`)
	before := len(sch.GetQueryType().Fields)
	extended := Extend(sch)

	require.Len(t, sch.GetQueryType().Fields, before)
	require.Nil(t, sch.Types["__Schema"])
	require.NotNil(t, extended.Types["__Schema"])

	q := extended.GetQueryType()
	require.NotNil(t, q.FieldByName("__schema"))
	require.NotNil(t, q.FieldByName("__type"))
}

func TestExtend_NonConventionalQueryRootName(t *testing.T) {
	sch := mustBuildSchema(t, `
		schema { query: Root }
		type Root { a: String }
	`)
	data := mustEvaluate(t, sch, `{ __schema { queryType { name } } __typename }`)
	require.Equal(t, "Root", data["__schema"].(map[string]any)["queryType"].(map[string]any)["name"])
	require.Equal(t, "Root", data["__typename"])
}
