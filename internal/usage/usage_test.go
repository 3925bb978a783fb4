package usage_test

import (
	"testing"

	language "github.com/queryward/queryward/internal/language"
	"github.com/queryward/queryward/internal/usage"
)

func analyze(t *testing.T, source string) (*language.QueryDocument, *usage.Tables) {
	t.Helper()
	doc, err := language.ParseQuery(source)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return doc, usage.Analyze(doc)
}

func TestDeclaredVariables(t *testing.T) {
	doc, tables := analyze(t, `
query A($id: ID!, $limit: Int = 10) { user(id: $id) { name } }
query B { viewer { name } }
`)

	opA := doc.Operations[0]
	opB := doc.Operations[1]

	id := tables.Declared(opA, "id")
	if id == nil {
		t.Fatal("id should be declared on A")
	}
	if id.Type.NamedType != "ID" || !id.Type.NonNull {
		t.Errorf("id type = %v, want ID!", id.Type)
	}
	if tables.Declared(opA, "missing") != nil {
		t.Error("missing should not be declared")
	}
	if tables.Declared(opB, "id") != nil {
		t.Error("id should not leak into B")
	}
	if got := len(tables.DeclaredAll(opA)); got != 2 {
		t.Errorf("A declares %d variables, want 2", got)
	}
}

func TestOperationsReachingTransitive(t *testing.T) {
	doc, tables := analyze(t, `
query First { user { ...Outer } }
query Second { viewer { ...Inner } }
query Third { health }

fragment Outer on User { ...Inner email }
fragment Inner on User { name }
`)

	first := doc.Operations[0]
	second := doc.Operations[1]

	outer := tables.OperationsReaching("Outer")
	if len(outer) != 1 || outer[0] != first {
		t.Errorf("Outer reached by %d ops, want only First", len(outer))
	}

	inner := tables.OperationsReaching("Inner")
	if len(inner) != 2 || inner[0] != first || inner[1] != second {
		t.Errorf("Inner should be reached by First then Second, got %d ops", len(inner))
	}

	if got := tables.OperationsReaching("Unknown"); got != nil {
		t.Errorf("Unknown fragment reached by %v, want none", got)
	}
}

func TestFragmentLookup(t *testing.T) {
	_, tables := analyze(t, `
{ ...Parts }
fragment Parts on Query { a }
`)

	if frag := tables.Fragment("Parts"); frag == nil || frag.TypeCondition != "Query" {
		t.Errorf("Parts lookup = %+v", frag)
	}
	if tables.Fragment("Nope") != nil {
		t.Error("Nope should not resolve")
	}
}

func TestCyclicFragmentsTerminate(t *testing.T) {
	doc, tables := analyze(t, `
{ ...A }
fragment A on Query { ...B }
fragment B on Query { ...A }
`)

	op := doc.Operations[0]
	for _, name := range []string{"A", "B"} {
		ops := tables.OperationsReaching(name)
		if len(ops) != 1 || ops[0] != op {
			t.Errorf("fragment %s reached by %d ops, want 1", name, len(ops))
		}
	}
}

func TestSpreadsInsideInlineFragments(t *testing.T) {
	doc, tables := analyze(t, `
query Q { node { ... on User { ...UserParts } } }
fragment UserParts on User { id }
`)

	ops := tables.OperationsReaching("UserParts")
	if len(ops) != 1 || ops[0] != doc.Operations[0] {
		t.Errorf("UserParts reached by %d ops, want Q", len(ops))
	}
}
