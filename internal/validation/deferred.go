package validation

import (
	language "github.com/queryward/queryward/internal/language"
)

// runDeferred flushes every queued check once traversal has finished and all
// fragment definitions are known. The order is fixed: variable declared-type
// checks in document order, then argument value checks in the order their
// roots were first encountered, then fragment spread replays in observation
// order.
func (a *analyzer) runDeferred(doc *language.QueryDocument) {
	for _, op := range doc.Operations {
		a.checkVariableDefinitions(op)
	}

	for _, root := range a.rootOrder {
		for _, check := range a.deferred[root] {
			if !check.def.known() {
				// The argument itself was unknown; one error is enough.
				continue
			}
			a.checkValue(root, check.node.Value, check.def.def.Type)
		}
	}

	for _, obs := range a.spreads {
		a.replaySpread(obs)
	}
}

// checkVariableDefinitions verifies that each declared variable names an
// existing input type. Usages of a badly typed variable are still checked
// against its declaration, so one bad declaration does not fan out.
func (a *analyzer) checkVariableDefinitions(op *language.OperationDefinition) {
	for _, vd := range op.VariableDefinitions {
		named := a.schema.GetType(vd.Type.Name())
		if named == nil || !named.IsInput() {
			a.report(errorInvalidVariableType(vd.Variable, vd.Type.String(), vd.Position))
		}
	}
}

// replaySpread re-runs the type-condition compatibility check for a named
// spread now that its fragment definition is available. Spreads naming a
// fragment the document never defines are left to the definition rule-set.
func (a *analyzer) replaySpread(obs observedSpread) {
	frag, ok := a.fragmentTypes[obs.node.Name]
	if !ok {
		return
	}
	if !obs.scope.known() || !frag.known() {
		return
	}
	if !a.spreadCompatible(obs.scope.def, frag.def) {
		a.report(errorImpossibleFragmentSpread(obs.scope.def.Name, frag.def.Name, obs.node.Position))
	}
}
