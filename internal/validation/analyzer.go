package validation

import (
	"github.com/queryward/queryward/internal/astwalk"
	language "github.com/queryward/queryward/internal/language"
	"github.com/queryward/queryward/internal/schema"
	"github.com/queryward/queryward/internal/usage"
)

// Validate analyzes doc against s and returns every semantic violation found,
// in discovery order. An empty result means the document is executable.
func Validate(s *schema.Schema, doc *language.QueryDocument) AnalysisErrors {
	return ValidateWithTables(s, doc, usage.Analyze(doc))
}

// ValidateWithTables is Validate for callers that already ran the usage
// pre-analysis, e.g. because other rule-sets share the tables.
func ValidateWithTables(s *schema.Schema, doc *language.QueryDocument, tables *usage.Tables) AnalysisErrors {
	a := newAnalyzer(s, tables)
	w := astwalk.NewWalker()
	w.Register(a)
	w.Walk(doc)
	return a.errs
}

// analyzer is the engine for one (document, schema) pair: it is wired into a
// walker, driven through exactly one depth-first pass, and discarded.
type analyzer struct {
	schema *schema.Schema
	tables *usage.Tables

	sc   scopes
	errs AnalysisErrors

	fragmentTypes map[string]scopeType
	deferred      map[any][]*deferredArgumentCheck
	rootOrder     []any
	spreads       []observedSpread
}

type deferredArgumentCheck struct {
	node *language.Argument
	def  scopeArgument
}

type observedSpread struct {
	scope scopeType
	node  *language.FragmentSpread
}

func newAnalyzer(s *schema.Schema, tables *usage.Tables) *analyzer {
	return &analyzer{
		schema:        s,
		tables:        tables,
		fragmentTypes: make(map[string]scopeType),
		deferred:      make(map[any][]*deferredArgumentCheck),
	}
}

func (a *analyzer) report(err *AnalysisError) {
	a.errs = append(a.errs, err)
}

// __typename is selectable on any composite type and yields a leaf.
var typenameField = schema.NewField("__typename", "", schema.NonNullType(schema.NamedType("String")))

func (a *analyzer) EnterDocument(doc *language.QueryDocument) {}

func (a *analyzer) LeaveDocument(doc *language.QueryDocument) {
	if !a.sc.balanced() {
		panic("validation: scope stacks not empty at end of document")
	}
	a.runDeferred(doc)
}

func (a *analyzer) EnterOperation(op *language.OperationDefinition) {
	root := a.rootType(op.Operation)
	t := anyType
	if root == nil {
		a.report(errorUnknownRootType(op.Operation, op.Position))
	} else {
		t = scopeType{def: root}
	}
	a.sc.root = op
	a.sc.pushType(t)
}

func (a *analyzer) LeaveOperation(op *language.OperationDefinition) {
	a.sc.popType()
	a.sc.root = nil
}

func (a *analyzer) rootType(kind language.Operation) *schema.Type {
	switch kind {
	case language.Mutation:
		return a.schema.GetMutationType()
	case language.Subscription:
		return a.schema.GetSubscriptionType()
	default:
		return a.schema.GetQueryType()
	}
}

func (a *analyzer) EnterField(field *language.Field) {
	parent := a.sc.currentType()
	fd := anyField
	if parent.known() {
		switch {
		case field.Name == "__typename":
			fd = scopeField{def: typenameField}
		case isMetaField(field.Name) && parent.def.Name == a.schema.QueryType:
			// Introspection roots are resolved by a separate subsystem;
			// stay permissive here.
		default:
			if def := parent.def.Field(field.Name); def != nil {
				fd = scopeField{def: def}
			} else {
				a.report(errorUnknownField(field.Name, parent.def.Name, field.Position))
			}
		}
	}

	result := anyType
	if fd.known() {
		named := a.schema.GetType(fd.def.Type.GetNamedType())
		switch {
		case named == nil:
			// Schema builder guarantees field types resolve; stay permissive.
		case named.IsComposite() && len(field.SelectionSet) == 0:
			a.report(errorCompositeNeedsSelection(field.Name, fd.def.Type.String(), field.Position))
			fd = anyField
		case named.IsLeaf() && len(field.SelectionSet) > 0:
			a.report(errorLeafHasSelection(field.Name, fd.def.Type.String(), field.Position))
			fd = anyField
		default:
			result = scopeType{def: named}
		}
	}

	a.sc.pushField(fd)
	a.sc.pushType(result)
	a.sc.pushSeen()
}

func (a *analyzer) LeaveField(field *language.Field) {
	seen := a.sc.popSeen()
	a.sc.popType()
	fd := a.sc.popField()
	if !fd.known() {
		return
	}
	for _, arg := range fd.def.Arguments {
		if isRequired(arg) && !seen[arg.Name] {
			a.report(errorMissingRequiredArgument("Field", field.Name, arg.Name, arg.Type.String(), field.Position))
		}
	}
}

func (a *analyzer) EnterArgument(arg *language.Argument) {
	def := anyArgument

	switch {
	case a.sc.insideArgument():
		// Inside a compound literal: the name is an input object field and
		// the enclosing InputObjectValue pushed the owning type.
		parent := a.sc.currentType()
		if parent.known() {
			if iv := parent.def.InputField(arg.Name); iv != nil {
				def = scopeArgument{def: iv}
				a.sc.markSeen(arg.Name)
			} else {
				a.report(errorUnknownInputField(arg.Name, parent.def.Name, arg.Position))
			}
		}
	case a.sc.directive != nil:
		if d := *a.sc.directive; d.known() {
			if iv := d.def.Argument(arg.Name); iv != nil {
				def = scopeArgument{def: iv}
				a.sc.markSeen(arg.Name)
			} else {
				a.report(errorUnknownDirectiveArgument(arg.Name, d.def.Name, arg.Position))
			}
		}
	default:
		if f := a.sc.currentField(); f.known() {
			if iv := f.def.Argument(arg.Name); iv != nil {
				def = scopeArgument{def: iv}
				a.sc.markSeen(arg.Name)
			} else {
				a.report(errorUnknownFieldArgument(arg.Name, f.def.Name, arg.Position))
			}
		}
	}

	a.queueArgumentCheck(arg, def)
	a.sc.pushArgument(def)
}

func (a *analyzer) LeaveArgument(arg *language.Argument) {
	a.sc.popArgument()
}

func (a *analyzer) EnterInputObjectValue(value *language.Value) {
	t := anyType
	if open := a.sc.currentArgument(); open.known() {
		named := a.schema.GetType(open.def.Type.GetNamedType())
		if named != nil && named.Kind == schema.TypeKindInputObject {
			t = scopeType{def: named}
		}
		// A non-input-object expectation is reported by the deferred value
		// check for the enclosing argument, not here.
	}
	a.sc.pushType(t)
	a.sc.pushSeen()
}

func (a *analyzer) LeaveInputObjectValue(value *language.Value) {
	seen := a.sc.popSeen()
	t := a.sc.popType()
	if !t.known() {
		return
	}
	for _, iv := range t.def.InputFields {
		if isRequired(iv) && !seen[iv.Name] {
			a.report(errorMissingRequiredArgument("Input object", t.def.Name, iv.Name, iv.Type.String(), value.Position))
		}
	}
}

func (a *analyzer) EnterInlineFragment(frag *language.InlineFragment) {
	if frag.TypeCondition == "" {
		a.sc.pushType(a.sc.currentType())
		return
	}
	a.sc.pushType(a.resolveTypeCondition(frag.TypeCondition, frag.Position))
}

func (a *analyzer) LeaveInlineFragment(frag *language.InlineFragment) {
	a.sc.popType()
}

func (a *analyzer) EnterFragmentDefinition(def *language.FragmentDefinition) {
	t := a.resolveTypeCondition(def.TypeCondition, def.Position)
	// Recorded even when resolution failed so spread replay stays permissive
	// rather than re-reporting.
	a.fragmentTypes[def.Name] = t
	a.sc.root = def
	a.sc.pushType(t)
}

func (a *analyzer) LeaveFragmentDefinition(def *language.FragmentDefinition) {
	a.sc.popType()
	a.sc.root = nil
}

// resolveTypeCondition resolves a fragment's declared type condition and
// checks it can possibly match the enclosing scope. Any failure yields the
// permissive sentinel so the fragment body is still analyzed.
func (a *analyzer) resolveTypeCondition(name string, pos *language.Position) scopeType {
	t := a.schema.GetType(name)
	if t == nil {
		a.report(errorUnknownType(name, pos))
		return anyType
	}
	if !t.IsComposite() {
		a.report(errorInvalidTypeCondition(name, pos))
		return anyType
	}
	if scope := a.sc.currentType(); scope.known() {
		if !a.spreadCompatible(scope.def, t) {
			a.report(errorImpossibleFragmentSpread(scope.def.Name, t.Name, pos))
			return anyType
		}
	}
	return scopeType{def: t}
}

func (a *analyzer) EnterFragmentSpread(spread *language.FragmentSpread) {
	a.spreads = append(a.spreads, observedSpread{scope: a.sc.currentType(), node: spread})
}

func (a *analyzer) EnterDirective(directive *language.Directive, location language.DirectiveLocation) {
	def := a.schema.GetDirective(directive.Name)
	if def == nil {
		a.report(errorUnknownDirective(directive.Name, directive.Position))
		a.sc.openDirective(scopeDirective{})
	} else {
		if !def.HasLocation(string(location)) {
			a.report(errorInvalidDirectiveLocation(directive.Name, location, directive.Position))
		}
		a.sc.openDirective(scopeDirective{def: def})
	}
	a.sc.pushSeen()
}

func (a *analyzer) LeaveDirective(directive *language.Directive) {
	seen := a.sc.popSeen()
	d := a.sc.closeDirective()
	if !d.known() {
		return
	}
	for _, arg := range d.def.Arguments {
		if isRequired(arg) && !seen[arg.Name] {
			a.report(errorMissingRequiredArgument("Directive", "@"+directive.Name, arg.Name, arg.Type.String(), directive.Position))
		}
	}
}

func (a *analyzer) queueArgumentCheck(node *language.Argument, def scopeArgument) {
	root := a.sc.root
	if root == nil {
		return
	}
	if _, ok := a.deferred[root]; !ok {
		a.rootOrder = append(a.rootOrder, root)
	}
	a.deferred[root] = append(a.deferred[root], &deferredArgumentCheck{node: node, def: def})
}

func isMetaField(name string) bool {
	return name == "__schema" || name == "__type"
}

func isRequired(v *schema.InputValue) bool {
	return v.Type.IsNonNull() && v.DefaultValue == nil
}
