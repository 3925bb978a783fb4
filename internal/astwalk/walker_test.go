package astwalk_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/queryward/queryward/internal/astwalk"
	language "github.com/queryward/queryward/internal/language"
)

type eventRecorder struct {
	events []string
}

func (r *eventRecorder) record(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *eventRecorder) EnterDocument(doc *language.QueryDocument) { r.record("enter document") }
func (r *eventRecorder) LeaveDocument(doc *language.QueryDocument) { r.record("leave document") }

func (r *eventRecorder) EnterOperation(op *language.OperationDefinition) {
	r.record("enter operation %s", op.Name)
}
func (r *eventRecorder) LeaveOperation(op *language.OperationDefinition) {
	r.record("leave operation %s", op.Name)
}

func (r *eventRecorder) EnterField(f *language.Field) { r.record("enter field %s", f.Name) }
func (r *eventRecorder) LeaveField(f *language.Field) { r.record("leave field %s", f.Name) }

func (r *eventRecorder) EnterArgument(a *language.Argument) { r.record("enter argument %s", a.Name) }
func (r *eventRecorder) LeaveArgument(a *language.Argument) { r.record("leave argument %s", a.Name) }

func (r *eventRecorder) EnterInputObjectValue(v *language.Value) { r.record("enter input object") }
func (r *eventRecorder) LeaveInputObjectValue(v *language.Value) { r.record("leave input object") }

func (r *eventRecorder) EnterInlineFragment(f *language.InlineFragment) {
	r.record("enter inline fragment on %s", f.TypeCondition)
}
func (r *eventRecorder) LeaveInlineFragment(f *language.InlineFragment) {
	r.record("leave inline fragment on %s", f.TypeCondition)
}

func (r *eventRecorder) EnterFragmentDefinition(d *language.FragmentDefinition) {
	r.record("enter fragment %s", d.Name)
}
func (r *eventRecorder) LeaveFragmentDefinition(d *language.FragmentDefinition) {
	r.record("leave fragment %s", d.Name)
}

func (r *eventRecorder) EnterFragmentSpread(s *language.FragmentSpread) {
	r.record("spread %s", s.Name)
}

func (r *eventRecorder) EnterDirective(d *language.Directive, location language.DirectiveLocation) {
	r.record("enter directive @%s at %s", d.Name, location)
}
func (r *eventRecorder) LeaveDirective(d *language.Directive) {
	r.record("leave directive @%s", d.Name)
}

func mustParseQuery(t *testing.T, source string) *language.QueryDocument {
	t.Helper()
	doc, err := language.ParseQuery(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc
}

func walkEvents(t *testing.T, source string) []string {
	t.Helper()
	rec := &eventRecorder{}
	w := astwalk.NewWalker()
	w.Register(rec)
	w.Walk(mustParseQuery(t, source))
	return rec.events
}

func TestWalkOrder(t *testing.T) {
	events := walkEvents(t, `
query GetUser {
  user(id: "1") @include(if: true) {
    name
    ... on Admin {
      permissions
    }
    ...UserParts
  }
}

fragment UserParts on User {
  email
}
`)

	want := []string{
		"enter document",
		"enter operation GetUser",
		"enter field user",
		"enter argument id",
		"leave argument id",
		"enter directive @include at FIELD",
		"enter argument if",
		"leave argument if",
		"leave directive @include",
		"enter field name",
		"leave field name",
		"enter inline fragment on Admin",
		"enter field permissions",
		"leave field permissions",
		"leave inline fragment on Admin",
		"spread UserParts",
		"leave field user",
		"leave operation GetUser",
		"enter fragment UserParts",
		"enter field email",
		"leave field email",
		"leave fragment UserParts",
		"leave document",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkObjectValueEmitsSyntheticArguments(t *testing.T) {
	events := walkEvents(t, `
mutation {
  createPost(input: {title: "hi", meta: {tags: ["a", {weird: true}]}})
}
`)

	want := []string{
		"enter document",
		"enter operation ",
		"enter field createPost",
		"enter argument input",
		"enter input object",
		"enter argument title",
		"leave argument title",
		"enter argument meta",
		"enter input object",
		"enter argument tags",
		"enter input object",
		"enter argument weird",
		"leave argument weird",
		"leave input object",
		"leave argument tags",
		"leave input object",
		"leave argument meta",
		"leave input object",
		"leave argument input",
		"leave field createPost",
		"leave operation ",
		"leave document",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkOperationDirectiveLocations(t *testing.T) {
	events := walkEvents(t, `
query Q @cached {
  a
}
mutation M @audit {
  b
}
`)

	want := []string{
		"enter document",
		"enter operation Q",
		"enter directive @cached at QUERY",
		"leave directive @cached",
		"enter field a",
		"leave field a",
		"leave operation Q",
		"enter operation M",
		"enter directive @audit at MUTATION",
		"leave directive @audit",
		"enter field b",
		"leave field b",
		"leave operation M",
		"leave document",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}

func TestWalkFragmentSpreadDirectives(t *testing.T) {
	events := walkEvents(t, `
{
  ...Parts @skip(if: false)
}
fragment Parts on Query { a }
`)

	want := []string{
		"enter document",
		"enter operation ",
		"spread Parts",
		"enter directive @skip at FRAGMENT_SPREAD",
		"enter argument if",
		"leave argument if",
		"leave directive @skip",
		"leave operation ",
		"enter fragment Parts",
		"enter field a",
		"leave field a",
		"leave fragment Parts",
		"leave document",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
}
