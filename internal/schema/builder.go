package schema

import (
	"sort"
	"strconv"
	"strings"

	language "github.com/gqlbridge/gqlbridge/internal/language"
)

// EnumLiteral is an enum value appearing as a literal in SDL (default values,
// directive arguments). It renders unquoted, unlike plain strings.
type EnumLiteral string

// BuildFromSDL parses one SDL document and builds the immutable Schema.
// It merges type extensions into their base definitions, lifts the built-in
// @deprecated/@specifiedBy/@oneOf directives into dedicated fields, and keeps
// every other directive usage as opaque data.
//
// All failures are *language.Error values carrying a source position where
// one is derivable: malformed syntax, duplicate definitions, and references
// to types the document never defines.
func BuildFromSDL(name, sdl string) (*Schema, error) {
	if strings.TrimSpace(sdl) == "" {
		return nil, language.Errorf("schema document is empty")
	}
	doc, err := language.ParseSchema(name, sdl)
	if err != nil {
		return nil, err
	}
	b := &builder{
		schema: &Schema{
			Types:      make(map[string]*Type),
			Directives: make(map[string]*Directive),
		},
	}
	if err := b.build(doc); err != nil {
		return nil, err
	}
	return b.schema, nil
}

type builder struct {
	schema *Schema
}

func (b *builder) build(doc *language.SchemaDocument) error {
	for _, t := range builtinScalars {
		b.schema.Types[t.Name] = t
	}
	for _, d := range builtinDirectives {
		b.schema.Directives[d.Name] = d
	}

	if err := b.buildDefinitions(doc.Definitions); err != nil {
		return err
	}
	if err := b.mergeExtensions(doc.Extensions); err != nil {
		return err
	}
	if err := b.buildDirectiveDefinitions(doc.Directives); err != nil {
		return err
	}
	if err := b.applySchemaDefinitions(doc); err != nil {
		return err
	}
	b.ensureQueryRoot()
	if err := b.validateRoots(); err != nil {
		return err
	}
	if err := b.resolveReferences(); err != nil {
		return err
	}
	b.populatePossibleTypes()
	return nil
}

func (b *builder) buildDefinitions(defs language.DefinitionList) error {
	for _, def := range defs {
		if existing, ok := b.schema.Types[def.Name]; ok {
			if isBuiltinScalar(existing) {
				return language.ErrorPosf(def.Position, "cannot redefine built-in type %q", def.Name)
			}
			return language.ErrorPosf(def.Position, "type %q is defined more than once", def.Name)
		}
		t, err := buildType(def)
		if err != nil {
			return err
		}
		b.schema.Types[def.Name] = t
	}
	return nil
}

func buildType(def *language.Definition) (*Type, error) {
	t := &Type{
		Name:        def.Name,
		Description: def.Description,
	}
	switch def.Kind {
	case language.Object:
		t.Kind = TypeKindObject
	case language.Interface:
		t.Kind = TypeKindInterface
	case language.Union:
		t.Kind = TypeKindUnion
	case language.Enum:
		t.Kind = TypeKindEnum
	case language.Scalar:
		t.Kind = TypeKindScalar
	case language.InputObject:
		t.Kind = TypeKindInputObject
	default:
		return nil, language.ErrorPosf(def.Position, "unsupported definition kind %q", def.Kind)
	}

	if url := directiveStringArg(def.Directives, "specifiedBy", "url"); url != nil {
		t.SpecifiedByURL = url
	}
	if def.Directives.ForName("oneOf") != nil {
		t.OneOf = true
	}
	t.AppliedDirectives = opaqueUses(def.Directives)
	t.Interfaces = append(t.Interfaces, def.Interfaces...)

	switch t.Kind {
	case TypeKindObject, TypeKindInterface:
		for _, fd := range def.Fields {
			if t.FieldByName(fd.Name) != nil {
				return nil, language.ErrorPosf(fd.Position, "field %s.%s is defined more than once", def.Name, fd.Name)
			}
			t.Fields = append(t.Fields, buildField(fd))
		}
	case TypeKindInputObject:
		for _, fd := range def.Fields {
			for _, iv := range t.InputFields {
				if iv.Name == fd.Name {
					return nil, language.ErrorPosf(fd.Position, "input field %s.%s is defined more than once", def.Name, fd.Name)
				}
			}
			t.InputFields = append(t.InputFields, buildInputField(fd))
		}
	case TypeKindEnum:
		for _, ev := range def.EnumValues {
			t.EnumValues = append(t.EnumValues, buildEnumValue(ev))
		}
	case TypeKindUnion:
		t.PossibleTypes = append(t.PossibleTypes, def.Types...)
	}
	return t, nil
}

func buildField(fd *language.FieldDefinition) *Field {
	f := &Field{
		Name:              fd.Name,
		Description:       fd.Description,
		Type:              typeRefFromAST(fd.Type),
		AppliedDirectives: opaqueUses(fd.Directives),
	}
	f.IsDeprecated, f.DeprecationReason = deprecation(fd.Directives)
	for _, arg := range fd.Arguments {
		f.Arguments = append(f.Arguments, buildArgument(arg))
	}
	return f
}

func buildArgument(ad *language.ArgumentDefinition) *InputValue {
	iv := &InputValue{
		Name:        ad.Name,
		Description: ad.Description,
		Type:        typeRefFromAST(ad.Type),
	}
	if ad.DefaultValue != nil {
		iv.DefaultValue = literalValue(ad.DefaultValue)
		iv.HasDefault = true
	}
	iv.IsDeprecated, iv.DeprecationReason = deprecation(ad.Directives)
	return iv
}

func buildInputField(fd *language.FieldDefinition) *InputValue {
	iv := &InputValue{
		Name:        fd.Name,
		Description: fd.Description,
		Type:        typeRefFromAST(fd.Type),
	}
	if fd.DefaultValue != nil {
		iv.DefaultValue = literalValue(fd.DefaultValue)
		iv.HasDefault = true
	}
	iv.IsDeprecated, iv.DeprecationReason = deprecation(fd.Directives)
	return iv
}

func buildEnumValue(ev *language.EnumValueDefinition) *EnumValue {
	v := &EnumValue{
		Name:        ev.Name,
		Description: ev.Description,
	}
	v.IsDeprecated, v.DeprecationReason = deprecation(ev.Directives)
	return v
}

func (b *builder) mergeExtensions(exts language.DefinitionList) error {
	for _, ext := range exts {
		base, ok := b.schema.Types[ext.Name]
		if !ok {
			return language.ErrorPosf(ext.Position, "cannot extend unknown type %q", ext.Name)
		}
		extType, err := buildType(ext)
		if err != nil {
			return err
		}
		if extType.Kind != base.Kind {
			return language.ErrorPosf(ext.Position, "cannot extend %s %q as %s", strings.ToLower(string(base.Kind)), ext.Name, strings.ToLower(string(extType.Kind)))
		}
		for _, f := range extType.Fields {
			if base.FieldByName(f.Name) != nil {
				return language.ErrorPosf(ext.Position, "field %s.%s is defined more than once", ext.Name, f.Name)
			}
			base.Fields = append(base.Fields, f)
		}
		base.Interfaces = append(base.Interfaces, extType.Interfaces...)
		base.PossibleTypes = append(base.PossibleTypes, extType.PossibleTypes...)
		base.EnumValues = append(base.EnumValues, extType.EnumValues...)
		base.InputFields = append(base.InputFields, extType.InputFields...)
		base.AppliedDirectives = append(base.AppliedDirectives, extType.AppliedDirectives...)
	}
	return nil
}

func (b *builder) buildDirectiveDefinitions(defs []*language.DirectiveDefinition) error {
	seen := map[string]bool{}
	for _, dd := range defs {
		if seen[dd.Name] {
			return language.ErrorPosf(dd.Position, "directive @%s is defined more than once", dd.Name)
		}
		seen[dd.Name] = true

		d := &Directive{
			Name:         dd.Name,
			Description:  dd.Description,
			IsRepeatable: dd.IsRepeatable,
		}
		for _, loc := range dd.Locations {
			d.Locations = append(d.Locations, string(loc))
		}
		for _, arg := range dd.Arguments {
			d.Arguments = append(d.Arguments, buildArgument(arg))
		}
		// A document may redeclare a built-in directive; the declaration wins.
		b.schema.Directives[d.Name] = d
	}
	return nil
}

func (b *builder) applySchemaDefinitions(doc *language.SchemaDocument) error {
	if len(doc.Schema) > 1 {
		return language.ErrorPosf(doc.Schema[1].Position, "schema is defined more than once")
	}
	apply := func(sd *language.SchemaDefinition) error {
		if sd.Description != "" {
			b.schema.Description = sd.Description
		}
		for _, ot := range sd.OperationTypes {
			switch ot.Operation {
			case language.Query:
				b.schema.QueryType = ot.Type
			case language.Mutation:
				b.schema.MutationType = ot.Type
			case language.Subscription:
				b.schema.SubscriptionType = ot.Type
			}
		}
		return nil
	}
	for _, sd := range doc.Schema {
		if err := apply(sd); err != nil {
			return err
		}
	}
	for _, sd := range doc.SchemaExtension {
		if err := apply(sd); err != nil {
			return err
		}
	}

	// Conventional defaults when the document has no schema block.
	if b.schema.QueryType == "" {
		if _, ok := b.schema.Types["Query"]; ok {
			b.schema.QueryType = "Query"
		}
	}
	if b.schema.MutationType == "" {
		if _, ok := b.schema.Types["Mutation"]; ok {
			b.schema.MutationType = "Mutation"
		}
	}
	if b.schema.SubscriptionType == "" {
		if _, ok := b.schema.Types["Subscription"]; ok {
			b.schema.SubscriptionType = "Subscription"
		}
	}
	return nil
}

// ensureQueryRoot synthesizes an empty Query object when the document defines
// no query root at all. Introspection always needs a type to root at, and a
// document consisting only of domain types is still a valid input here.
func (b *builder) ensureQueryRoot() {
	if b.schema.QueryType != "" {
		return
	}
	if _, taken := b.schema.Types["Query"]; taken {
		return
	}
	b.schema.Types["Query"] = &Type{Name: "Query", Kind: TypeKindObject}
	b.schema.QueryType = "Query"
}

func (b *builder) validateRoots() error {
	check := func(name, op string) error {
		if name == "" {
			return nil
		}
		t, ok := b.schema.Types[name]
		if !ok {
			return language.Errorf("unknown type %q for the schema's %s root", name, op)
		}
		if t.Kind != TypeKindObject {
			return language.Errorf("the schema's %s root %q must be an object type", op, name)
		}
		return nil
	}
	if err := check(b.schema.QueryType, "query"); err != nil {
		return err
	}
	if err := check(b.schema.MutationType, "mutation"); err != nil {
		return err
	}
	return check(b.schema.SubscriptionType, "subscription")
}

// resolveReferences verifies every type name mentioned anywhere in the
// document resolves to a definition or a built-in scalar.
func (b *builder) resolveReferences() error {
	lookup := func(ref *TypeRef) error {
		name := GetNamedType(ref)
		if _, ok := b.schema.Types[name]; !ok {
			return language.Errorf("unknown type %q", name)
		}
		return nil
	}
	checkInputValues := func(ivs []*InputValue) error {
		for _, iv := range ivs {
			if err := lookup(iv.Type); err != nil {
				return err
			}
		}
		return nil
	}
	names := make([]string, 0, len(b.schema.Types))
	for name := range b.schema.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t := b.schema.Types[name]
		for _, f := range t.Fields {
			if err := lookup(f.Type); err != nil {
				return err
			}
			if err := checkInputValues(f.Arguments); err != nil {
				return err
			}
		}
		if err := checkInputValues(t.InputFields); err != nil {
			return err
		}
		for _, iface := range t.Interfaces {
			it, ok := b.schema.Types[iface]
			if !ok {
				return language.Errorf("unknown type %q", iface)
			}
			if it.Kind != TypeKindInterface {
				return language.Errorf("type %q implements %q which is not an interface", t.Name, iface)
			}
		}
		if t.Kind == TypeKindUnion {
			for _, member := range t.PossibleTypes {
				mt, ok := b.schema.Types[member]
				if !ok {
					return language.Errorf("unknown type %q", member)
				}
				if mt.Kind != TypeKindObject {
					return language.Errorf("union %q includes %q which is not an object type", t.Name, member)
				}
			}
		}
	}
	for _, d := range b.schema.Directives {
		if isBuiltinDirective(d) {
			continue
		}
		if err := checkInputValues(d.Arguments); err != nil {
			return err
		}
	}
	return nil
}

// populatePossibleTypes fills interface implementor lists. Union member
// lists come from the SDL and keep declaration order; implementors are
// sorted by name for deterministic output.
func (b *builder) populatePossibleTypes() {
	for _, t := range b.schema.Types {
		if t.Kind != TypeKindObject && t.Kind != TypeKindInterface {
			continue
		}
		for _, iface := range t.Interfaces {
			it := b.schema.Types[iface]
			it.PossibleTypes = append(it.PossibleTypes, t.Name)
		}
	}
	for _, t := range b.schema.Types {
		if t.Kind == TypeKindInterface {
			sort.Strings(t.PossibleTypes)
		}
	}
}

// ----- AST conversion helpers -----

func typeRefFromAST(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return NamedType(t.NamedType)
	}
	return ListType(typeRefFromAST(t.Elem))
}

// literalValue converts an SDL literal to a Go value. Variables cannot occur
// in SDL, so every value is a constant.
func literalValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(v.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(v.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return EnumLiteral(v.Raw)
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = literalValue(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any)
		for _, c := range v.Children {
			m[c.Name] = literalValue(c.Value)
		}
		return m
	default:
		return nil
	}
}

// deprecation lifts @deprecated into (IsDeprecated, DeprecationReason).
func deprecation(list language.DirectiveList) (bool, string) {
	d := list.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := defaultDeprecationReason
	for _, arg := range d.Arguments {
		if arg.Name == "reason" {
			if s, ok := literalValue(arg.Value).(string); ok {
				reason = s
			}
		}
	}
	return true, reason
}

// liftedDirectives are stored in dedicated Schema fields rather than as
// opaque usages.
var liftedDirectives = map[string]bool{
	"deprecated":  true,
	"specifiedBy": true,
	"oneOf":       true,
}

func opaqueUses(list language.DirectiveList) []*DirectiveUse {
	var uses []*DirectiveUse
	for _, d := range list {
		if liftedDirectives[d.Name] {
			continue
		}
		use := &DirectiveUse{Name: d.Name}
		if len(d.Arguments) > 0 {
			use.Args = make(map[string]any, len(d.Arguments))
			for _, arg := range d.Arguments {
				use.Args[arg.Name] = literalValue(arg.Value)
			}
		}
		uses = append(uses, use)
	}
	return uses
}

func directiveStringArg(list language.DirectiveList, directive, arg string) *string {
	d := list.ForName(directive)
	if d == nil {
		return nil
	}
	for _, a := range d.Arguments {
		if a.Name == arg {
			if s, ok := literalValue(a.Value).(string); ok {
				return &s
			}
		}
	}
	return nil
}
