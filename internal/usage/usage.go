package usage

import (
	language "github.com/queryward/queryward/internal/language"
)

// Tables holds the document-level facts the deferred validation passes need:
// which variables each operation declares, which fragment definitions exist,
// and which operations reach a given fragment through any chain of spreads.
type Tables struct {
	declared  map[*language.OperationDefinition]map[string]*language.VariableDefinition
	fragments map[string]*language.FragmentDefinition
	reaching  map[string][]*language.OperationDefinition
}

// Analyze walks the document once and builds the usage tables.
func Analyze(doc *language.QueryDocument) *Tables {
	t := &Tables{
		declared:  make(map[*language.OperationDefinition]map[string]*language.VariableDefinition),
		fragments: make(map[string]*language.FragmentDefinition),
		reaching:  make(map[string][]*language.OperationDefinition),
	}

	for _, frag := range doc.Fragments {
		if _, ok := t.fragments[frag.Name]; ok {
			continue
		}
		t.fragments[frag.Name] = frag
	}

	// Direct spread sets per fragment feed the reachability closure.
	fragmentSpreads := make(map[string][]string, len(t.fragments))
	for name, frag := range t.fragments {
		fragmentSpreads[name] = collectSpreads(frag.SelectionSet, nil)
	}

	for _, op := range doc.Operations {
		vars := make(map[string]*language.VariableDefinition, len(op.VariableDefinitions))
		for _, def := range op.VariableDefinitions {
			if _, ok := vars[def.Variable]; ok {
				continue
			}
			vars[def.Variable] = def
		}
		t.declared[op] = vars

		// Transitive closure over the fragment spread graph. Cycles are
		// tolerated: the seen set stops the walk.
		seen := make(map[string]bool)
		queue := collectSpreads(op.SelectionSet, nil)
		for len(queue) > 0 {
			name := queue[0]
			queue = queue[1:]
			if seen[name] {
				continue
			}
			seen[name] = true
			t.reaching[name] = append(t.reaching[name], op)
			queue = append(queue, fragmentSpreads[name]...)
		}
	}

	return t
}

// Declared returns the variable definition for name on op, or nil when the
// operation does not declare it.
func (t *Tables) Declared(op *language.OperationDefinition, name string) *language.VariableDefinition {
	return t.declared[op][name]
}

// DeclaredAll returns every variable definition on op keyed by name.
func (t *Tables) DeclaredAll(op *language.OperationDefinition) map[string]*language.VariableDefinition {
	return t.declared[op]
}

// Fragment returns the fragment definition for name, or nil.
func (t *Tables) Fragment(name string) *language.FragmentDefinition {
	return t.fragments[name]
}

// OperationsReaching returns the operations that spread the named fragment,
// directly or through other fragments, in document order.
func (t *Tables) OperationsReaching(name string) []*language.OperationDefinition {
	return t.reaching[name]
}

func collectSpreads(set language.SelectionSet, acc []string) []string {
	for _, sel := range set {
		switch node := sel.(type) {
		case *language.Field:
			acc = collectSpreads(node.SelectionSet, acc)
		case *language.InlineFragment:
			acc = collectSpreads(node.SelectionSet, acc)
		case *language.FragmentSpread:
			acc = append(acc, node.Name)
		}
	}
	return acc
}
