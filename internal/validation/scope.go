package validation

import (
	"github.com/queryward/queryward/internal/schema"
)

// Scope values wrap schema definitions with an "any" sentinel variant: a nil
// def satisfies every downstream lookup and shape check without producing
// further errors, which is how analysis keeps descending past a failed
// lookup without cascading.
type (
	scopeType      struct{ def *schema.Type }
	scopeField     struct{ def *schema.Field }
	scopeArgument  struct{ def *schema.InputValue }
	scopeDirective struct{ def *schema.Directive }
)

var (
	anyType     = scopeType{}
	anyField    = scopeField{}
	anyArgument = scopeArgument{}
)

func (t scopeType) known() bool      { return t.def != nil }
func (f scopeField) known() bool     { return f.def != nil }
func (a scopeArgument) known() bool  { return a.def != nil }
func (d scopeDirective) known() bool { return d.def != nil }

func (t scopeType) name() string {
	if t.def == nil {
		return ""
	}
	return t.def.Name
}

// scopes owns the nested traversal context: four parallel stacks plus the
// active root definition and the single active directive slot. Directives
// cannot nest inside another directive's arguments, so one slot suffices;
// that grammar assumption is asserted, not assumed.
//
// An unbalanced push/pop is a defect in the resolvers, not a property of the
// input document, so underflow panics instead of reporting a diagnostic.
type scopes struct {
	types  []scopeType
	fields []scopeField
	args   []scopeArgument
	seen   []map[string]bool

	root      any // *language.OperationDefinition or *language.FragmentDefinition
	directive *scopeDirective
}

func (s *scopes) pushType(t scopeType) { s.types = append(s.types, t) }

func (s *scopes) popType() scopeType {
	if len(s.types) == 0 {
		panic("validation: type scope underflow")
	}
	t := s.types[len(s.types)-1]
	s.types = s.types[:len(s.types)-1]
	return t
}

func (s *scopes) currentType() scopeType {
	if len(s.types) == 0 {
		return anyType
	}
	return s.types[len(s.types)-1]
}

func (s *scopes) pushField(f scopeField) { s.fields = append(s.fields, f) }

func (s *scopes) popField() scopeField {
	if len(s.fields) == 0 {
		panic("validation: field scope underflow")
	}
	f := s.fields[len(s.fields)-1]
	s.fields = s.fields[:len(s.fields)-1]
	return f
}

func (s *scopes) currentField() scopeField {
	if len(s.fields) == 0 {
		return anyField
	}
	return s.fields[len(s.fields)-1]
}

func (s *scopes) pushArgument(a scopeArgument) { s.args = append(s.args, a) }

func (s *scopes) popArgument() scopeArgument {
	if len(s.args) == 0 {
		panic("validation: argument scope underflow")
	}
	a := s.args[len(s.args)-1]
	s.args = s.args[:len(s.args)-1]
	return a
}

func (s *scopes) currentArgument() scopeArgument {
	if len(s.args) == 0 {
		return anyArgument
	}
	return s.args[len(s.args)-1]
}

func (s *scopes) insideArgument() bool { return len(s.args) > 0 }

func (s *scopes) pushSeen() { s.seen = append(s.seen, make(map[string]bool)) }

func (s *scopes) popSeen() map[string]bool {
	if len(s.seen) == 0 {
		panic("validation: observed-argument scope underflow")
	}
	m := s.seen[len(s.seen)-1]
	s.seen = s.seen[:len(s.seen)-1]
	return m
}

func (s *scopes) markSeen(name string) {
	if len(s.seen) == 0 {
		return
	}
	s.seen[len(s.seen)-1][name] = true
}

func (s *scopes) openDirective(d scopeDirective) {
	if s.directive != nil {
		panic("validation: directive scope already open")
	}
	s.directive = &d
}

func (s *scopes) closeDirective() scopeDirective {
	if s.directive == nil {
		panic("validation: directive scope not open")
	}
	d := *s.directive
	s.directive = nil
	return d
}

// balanced reports whether every stack has returned to its initial state.
func (s *scopes) balanced() bool {
	return len(s.types) == 0 && len(s.fields) == 0 && len(s.args) == 0 &&
		len(s.seen) == 0 && s.directive == nil
}
