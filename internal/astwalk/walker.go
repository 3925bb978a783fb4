package astwalk

import (
	language "github.com/queryward/queryward/internal/language"
)

// Visitor interfaces. A registered visitor receives callbacks for every
// interface it implements; all others are skipped.
type (
	DocumentVisitor interface {
		EnterDocument(doc *language.QueryDocument)
		LeaveDocument(doc *language.QueryDocument)
	}
	OperationVisitor interface {
		EnterOperation(op *language.OperationDefinition)
		LeaveOperation(op *language.OperationDefinition)
	}
	FieldVisitor interface {
		EnterField(field *language.Field)
		LeaveField(field *language.Field)
	}
	ArgumentVisitor interface {
		EnterArgument(arg *language.Argument)
		LeaveArgument(arg *language.Argument)
	}
	InputObjectValueVisitor interface {
		EnterInputObjectValue(value *language.Value)
		LeaveInputObjectValue(value *language.Value)
	}
	InlineFragmentVisitor interface {
		EnterInlineFragment(frag *language.InlineFragment)
		LeaveInlineFragment(frag *language.InlineFragment)
	}
	FragmentDefinitionVisitor interface {
		EnterFragmentDefinition(def *language.FragmentDefinition)
		LeaveFragmentDefinition(def *language.FragmentDefinition)
	}
	FragmentSpreadVisitor interface {
		EnterFragmentSpread(spread *language.FragmentSpread)
	}
	DirectiveVisitor interface {
		EnterDirective(directive *language.Directive, location language.DirectiveLocation)
		LeaveDirective(directive *language.Directive)
	}
)

// Walker drives a depth-first traversal of a parsed query document and
// dispatches node events to registered visitors. Fragment definitions are
// visited after all operations, each exactly once; spreads are not expanded.
type Walker struct {
	documentVisitors           []DocumentVisitor
	operationVisitors          []OperationVisitor
	fieldVisitors              []FieldVisitor
	argumentVisitors           []ArgumentVisitor
	inputObjectValueVisitors   []InputObjectValueVisitor
	inlineFragmentVisitors     []InlineFragmentVisitor
	fragmentDefinitionVisitors []FragmentDefinitionVisitor
	fragmentSpreadVisitors     []FragmentSpreadVisitor
	directiveVisitors          []DirectiveVisitor
}

func NewWalker() *Walker {
	return &Walker{}
}

// Register wires v into every event stream its type supports.
func (w *Walker) Register(v any) {
	if dv, ok := v.(DocumentVisitor); ok {
		w.documentVisitors = append(w.documentVisitors, dv)
	}
	if ov, ok := v.(OperationVisitor); ok {
		w.operationVisitors = append(w.operationVisitors, ov)
	}
	if fv, ok := v.(FieldVisitor); ok {
		w.fieldVisitors = append(w.fieldVisitors, fv)
	}
	if av, ok := v.(ArgumentVisitor); ok {
		w.argumentVisitors = append(w.argumentVisitors, av)
	}
	if iv, ok := v.(InputObjectValueVisitor); ok {
		w.inputObjectValueVisitors = append(w.inputObjectValueVisitors, iv)
	}
	if ifv, ok := v.(InlineFragmentVisitor); ok {
		w.inlineFragmentVisitors = append(w.inlineFragmentVisitors, ifv)
	}
	if fdv, ok := v.(FragmentDefinitionVisitor); ok {
		w.fragmentDefinitionVisitors = append(w.fragmentDefinitionVisitors, fdv)
	}
	if fsv, ok := v.(FragmentSpreadVisitor); ok {
		w.fragmentSpreadVisitors = append(w.fragmentSpreadVisitors, fsv)
	}
	if dirv, ok := v.(DirectiveVisitor); ok {
		w.directiveVisitors = append(w.directiveVisitors, dirv)
	}
}

func (w *Walker) Walk(doc *language.QueryDocument) {
	for _, v := range w.documentVisitors {
		v.EnterDocument(doc)
	}
	for _, op := range doc.Operations {
		w.walkOperation(op)
	}
	for _, frag := range doc.Fragments {
		w.walkFragmentDefinition(frag)
	}
	for _, v := range w.documentVisitors {
		v.LeaveDocument(doc)
	}
}

func (w *Walker) walkOperation(op *language.OperationDefinition) {
	for _, v := range w.operationVisitors {
		v.EnterOperation(op)
	}
	w.walkDirectives(op.Directives, operationLocation(op.Operation))
	w.walkSelectionSet(op.SelectionSet)
	for _, v := range w.operationVisitors {
		v.LeaveOperation(op)
	}
}

func (w *Walker) walkFragmentDefinition(def *language.FragmentDefinition) {
	for _, v := range w.fragmentDefinitionVisitors {
		v.EnterFragmentDefinition(def)
	}
	w.walkDirectives(def.Directives, language.LocationFragmentDefinition)
	w.walkSelectionSet(def.SelectionSet)
	for _, v := range w.fragmentDefinitionVisitors {
		v.LeaveFragmentDefinition(def)
	}
}

func (w *Walker) walkSelectionSet(set language.SelectionSet) {
	for _, sel := range set {
		switch node := sel.(type) {
		case *language.Field:
			w.walkField(node)
		case *language.InlineFragment:
			w.walkInlineFragment(node)
		case *language.FragmentSpread:
			w.walkFragmentSpread(node)
		}
	}
}

func (w *Walker) walkField(field *language.Field) {
	for _, v := range w.fieldVisitors {
		v.EnterField(field)
	}
	for _, arg := range field.Arguments {
		w.walkArgument(arg)
	}
	w.walkDirectives(field.Directives, language.LocationField)
	w.walkSelectionSet(field.SelectionSet)
	for _, v := range w.fieldVisitors {
		v.LeaveField(field)
	}
}

func (w *Walker) walkInlineFragment(frag *language.InlineFragment) {
	for _, v := range w.inlineFragmentVisitors {
		v.EnterInlineFragment(frag)
	}
	w.walkDirectives(frag.Directives, language.LocationInlineFragment)
	w.walkSelectionSet(frag.SelectionSet)
	for _, v := range w.inlineFragmentVisitors {
		v.LeaveInlineFragment(frag)
	}
}

func (w *Walker) walkFragmentSpread(spread *language.FragmentSpread) {
	for _, v := range w.fragmentSpreadVisitors {
		v.EnterFragmentSpread(spread)
	}
	w.walkDirectives(spread.Directives, language.LocationFragmentSpread)
}

func (w *Walker) walkDirectives(directives language.DirectiveList, location language.DirectiveLocation) {
	for _, d := range directives {
		for _, v := range w.directiveVisitors {
			v.EnterDirective(d, location)
		}
		for _, arg := range d.Arguments {
			w.walkArgument(arg)
		}
		for _, v := range w.directiveVisitors {
			v.LeaveDirective(d)
		}
	}
}

func (w *Walker) walkArgument(arg *language.Argument) {
	for _, v := range w.argumentVisitors {
		v.EnterArgument(arg)
	}
	w.walkValue(arg.Value)
	for _, v := range w.argumentVisitors {
		v.LeaveArgument(arg)
	}
}

// walkValue descends into compound literals. Object fields are surfaced
// through the same Argument callbacks as real arguments so visitors see one
// uniform name/value event stream.
func (w *Walker) walkValue(value *language.Value) {
	if value == nil {
		return
	}
	switch value.Kind {
	case language.ListValue:
		for _, child := range value.Children {
			w.walkValue(child.Value)
		}
	case language.ObjectValue:
		for _, v := range w.inputObjectValueVisitors {
			v.EnterInputObjectValue(value)
		}
		for _, child := range value.Children {
			w.walkArgument(syntheticArgument(child, value))
		}
		for _, v := range w.inputObjectValueVisitors {
			v.LeaveInputObjectValue(value)
		}
	}
}

func syntheticArgument(child *language.ChildValue, parent *language.Value) *language.Argument {
	pos := child.Position
	if pos == nil {
		pos = parent.Position
	}
	return &language.Argument{
		Name:     child.Name,
		Value:    child.Value,
		Position: pos,
	}
}

func operationLocation(op language.Operation) language.DirectiveLocation {
	switch op {
	case language.Mutation:
		return language.LocationMutation
	case language.Subscription:
		return language.LocationSubscription
	default:
		return language.LocationQuery
	}
}
