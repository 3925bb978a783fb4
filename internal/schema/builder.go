package schema

import (
	"sort"

	"github.com/queryward/queryward/internal/sdl"
)

// Build assembles an executable GraphQL schema from the sdl project.
// It merges all extensions into their base definitions and resolves the
// possible-type sets that spread compatibility checks rely on.
func Build(p *sdl.Project) (*Schema, error) {
	s := NewSchema("")
	s.SetQueryType(p.Schema.QueryType).
		SetMutationType(p.Schema.MutationType).
		SetSubscriptionType(p.Schema.SubscriptionType)

	for _, def := range p.Definitions {
		if def.Object != nil {
			s.AddType(buildObject(def.Object))
		} else if def.Interface != nil {
			s.AddType(buildInterface(def.Interface))
		} else if def.Enum != nil {
			s.AddType(buildEnum(def.Enum))
		} else if def.Input != nil {
			s.AddType(buildInput(def.Input))
		} else if def.Union != nil {
			s.AddType(buildUnion(def.Union))
		} else if def.Scalar != nil {
			s.AddType(buildScalar(def.Scalar))
		}
	}
	for _, dir := range p.Directives {
		s.AddDirective(buildDirective(dir))
	}
	return s, nil
}

func buildObject(def *sdl.ObjectDefinition) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)

	var interfaceNames []string
	for name := range def.Interfaces {
		interfaceNames = append(interfaceNames, name)
	}
	sort.Strings(interfaceNames)
	for _, name := range interfaceNames {
		t.AddInterface(name)
	}

	for _, fieldDef := range def.OrderedFields() {
		t.AddField(buildField(fieldDef))
	}
	return t
}

func buildInterface(def *sdl.InterfaceDefinition) *Type {
	t := NewType(def.Name, TypeKindInterface, def.Description)

	var interfaceNames []string
	for name := range def.Interfaces {
		interfaceNames = append(interfaceNames, name)
	}
	sort.Strings(interfaceNames)
	for _, name := range interfaceNames {
		t.AddInterface(name)
	}

	possibleTypes := append([]string(nil), def.PossibleTypes...)
	sort.Strings(possibleTypes)
	for _, name := range possibleTypes {
		t.AddPossibleType(name)
	}

	for _, fieldDef := range def.OrderedFields() {
		t.AddField(buildField(fieldDef))
	}
	return t
}

func buildField(def *sdl.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if def.Deprecation != nil {
		f.Deprecate(def.Deprecation.Reason)
	}
	for _, arg := range def.OrderedArgs() {
		f.AddArgument(buildArgumentAsInputValue(arg))
	}
	return f
}

func buildEnum(def *sdl.EnumDefinition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, value := range def.OrderedValues() {
		t.AddEnumValue(buildEnumValue(value))
	}
	return t
}

func buildEnumValue(v *sdl.EnumValueDefinition) *EnumValue {
	e := NewEnumValue(v.Name, v.Description)
	if v.Deprecation != nil {
		e.Deprecate(v.Deprecation.Reason)
	}
	return e
}

func buildTypeRef(t *sdl.TypeExpr) *TypeRef {
	switch t.Kind {
	case sdl.TypeExprKindNamed:
		return &TypeRef{Kind: TypeRefKindNamed, Named: t.Named}
	case sdl.TypeExprKindNonNull:
		return &TypeRef{Kind: TypeRefKindNonNull, OfType: buildTypeRef(t.OfType)}
	case sdl.TypeExprKindList:
		return &TypeRef{Kind: TypeRefKindList, OfType: buildTypeRef(t.OfType)}
	}
	panic("unreachable")
}

func buildInputValue(v *sdl.InputValueDefinition) *InputValue {
	in := NewInputValue(v.Name, v.Description, buildTypeRef(v.Type)).SetDefault(v.DefaultValue)
	if v.Deprecation != nil {
		in.Deprecate(v.Deprecation.Reason)
	}
	return in
}

func buildArgumentAsInputValue(a *sdl.ArgumentDefinition) *InputValue {
	in := NewInputValue(a.Name, a.Description, buildTypeRef(a.Type)).SetDefault(a.DefaultValue)
	if a.Deprecation != nil {
		in.Deprecate(a.Deprecation.Reason)
	}
	return in
}

func buildInput(def *sdl.InputDefinition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).SetOneOf(def.OneOf)
	for _, v := range def.OrderedInputValues() {
		t.AddInputField(buildInputValue(v))
	}
	return t
}

func buildUnion(def *sdl.UnionDefinition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)

	// Sort union type names for deterministic output
	var typeNames []string
	for name := range def.Types {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, name := range typeNames {
		t.AddPossibleType(name)
	}
	return t
}

func buildScalar(def *sdl.ScalarDefinition) *Type {
	return NewType(def.Name, TypeKindScalar, def.Description).SetSpecifiedByURL(def.SpecifiedByURL)
}

func buildDirective(dir *sdl.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.Repeatable)
	d.Locations = append(d.Locations, dir.Locations...)
	for _, arg := range dir.OrderedArgs() {
		d.AddArgument(buildArgumentAsInputValue(arg))
	}
	return d
}

// BuildFromSDL parses an SDL string and returns the corresponding Schema.
func BuildFromSDL(source string) (*Schema, error) {
	proj, err := sdl.Parse(source)
	if err != nil {
		return nil, err
	}
	return Build(proj)
}
