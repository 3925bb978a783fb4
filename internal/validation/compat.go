package validation

import (
	language "github.com/queryward/queryward/internal/language"
	"github.com/queryward/queryward/internal/schema"
)

// spreadCompatible reports whether a fragment conditioned on cond can ever
// match a value of the enclosing scope type. Object scopes only match
// themselves; abstract scopes match the condition when it is the scope
// itself, one of its possible objects, or an abstract type whose possible
// object set overlaps the scope's.
func (a *analyzer) spreadCompatible(scope, cond *schema.Type) bool {
	if scope.Name == cond.Name {
		return true
	}
	if scope.Kind == schema.TypeKindObject {
		return false
	}

	scopeSet := a.schema.PossibleTypes(scope)
	if cond.Kind == schema.TypeKindObject {
		return containsName(scopeSet, cond.Name)
	}
	for _, name := range a.schema.PossibleTypes(cond) {
		if containsName(scopeSet, name) {
			return true
		}
	}
	return false
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// checkValue validates a literal or variable reference against the expected
// input type. Object literal fields are not re-descended here: each nested
// field queued its own check during traversal.
func (a *analyzer) checkValue(root any, value *language.Value, expected *schema.TypeRef) {
	if value == nil || expected == nil {
		return
	}
	if value.Kind == language.Variable {
		a.checkVariableUsage(root, value, expected)
		return
	}
	if value.Kind == language.NullValue {
		if expected.IsNonNull() {
			a.report(errorArgumentValueTypeMismatch(expected.String(), "null", value.Position))
		}
		return
	}

	t := expected
	if t.IsNonNull() {
		t = t.Unwrap()
	}

	if t.Kind == schema.TypeRefKindList {
		if value.Kind == language.ListValue {
			for _, child := range value.Children {
				a.checkValue(root, child.Value, t.OfType)
			}
		} else {
			// Single-value list coercion per the input coercion rules.
			a.checkValue(root, value, t.OfType)
		}
		return
	}
	if value.Kind == language.ListValue {
		a.report(errorArgumentValueTypeMismatch(expected.String(), value.String(), value.Position))
		return
	}

	named := a.schema.GetType(t.Named)
	if named == nil {
		return
	}
	switch named.Kind {
	case schema.TypeKindInputObject:
		if value.Kind != language.ObjectValue {
			a.report(errorArgumentValueTypeMismatch(expected.String(), value.String(), value.Position))
		}
	case schema.TypeKindEnum:
		if value.Kind != language.EnumValue || named.EnumValue(value.Raw) == nil {
			a.report(errorArgumentValueTypeMismatch(expected.String(), value.String(), value.Position))
		}
	case schema.TypeKindScalar:
		if !literalMatchesScalar(named.Name, value.Kind) {
			a.report(errorArgumentValueTypeMismatch(expected.String(), value.String(), value.Position))
		}
	default:
		// Output kinds never reach input positions; the schema builder
		// rejects them.
	}
}

func literalMatchesScalar(name string, kind language.ValueKind) bool {
	switch name {
	case "Int":
		return kind == language.IntValue
	case "Float":
		return kind == language.IntValue || kind == language.FloatValue
	case "String":
		return kind == language.StringValue || kind == language.BlockValue
	case "Boolean":
		return kind == language.BooleanValue
	case "ID":
		return kind == language.IntValue || kind == language.StringValue || kind == language.BlockValue
	default:
		// Custom scalars define their own coercion; accept any literal.
		return true
	}
}

// checkVariableUsage validates a $variable reference against the expected
// type, resolving declarations through the root the usage was queued under.
// Arguments inside a fragment may rely on variables declared by any
// operation that transitively spreads it.
func (a *analyzer) checkVariableUsage(root any, value *language.Value, expected *schema.TypeRef) {
	name := value.Raw

	var decls []*language.VariableDefinition
	switch r := root.(type) {
	case *language.OperationDefinition:
		if d := a.tables.Declared(r, name); d != nil {
			decls = append(decls, d)
		}
	case *language.FragmentDefinition:
		for _, op := range a.tables.OperationsReaching(r.Name) {
			if d := a.tables.Declared(op, name); d != nil {
				decls = append(decls, d)
			}
		}
	}

	// Undeclared usages are reported by a separate rule-set, not duplicated
	// here.
	for _, decl := range decls {
		if !variableAssignable(decl, expected) {
			a.report(errorVariableTypeMismatch(name, decl.Type.String(), expected.String(), value.Position))
		}
	}
}

func variableAssignable(decl *language.VariableDefinition, expected *schema.TypeRef) bool {
	return typeCanBeUsedAs(decl.Type, expected, decl.DefaultValue != nil)
}

// typeCanBeUsedAs implements variable-position assignability: non-null
// variables satisfy nullable positions, a declared default satisfies a
// non-null position, list shapes must match and named cores must be equal.
func typeCanBeUsedAs(vt *language.Type, expected *schema.TypeRef, hasDefault bool) bool {
	if vt == nil || expected == nil {
		return false
	}
	if expected.IsNonNull() {
		if !vt.NonNull && !hasDefault {
			return false
		}
		return typeCanBeUsedAs(nullableOf(vt), expected.Unwrap(), false)
	}
	if vt.NonNull {
		return typeCanBeUsedAs(nullableOf(vt), expected, false)
	}
	if expected.Kind == schema.TypeRefKindList {
		if vt.Elem == nil {
			return false
		}
		return typeCanBeUsedAs(vt.Elem, expected.OfType, false)
	}
	if vt.Elem != nil {
		return false
	}
	return vt.NamedType == expected.Named
}

func nullableOf(t *language.Type) *language.Type {
	if !t.NonNull {
		return t
	}
	return &language.Type{NamedType: t.NamedType, Elem: t.Elem, Position: t.Position}
}
