package validation

import (
	"fmt"
	"strings"

	language "github.com/queryward/queryward/internal/language"
)

// Rule identifies which semantic rule an error was produced by.
type Rule string

const (
	RuleUnknownRootType           Rule = "UnknownRootType"
	RuleUnknownField              Rule = "UnknownField"
	RuleInvalidSelectionShape     Rule = "InvalidSelectionShape"
	RuleMissingRequiredArgument   Rule = "MissingRequiredArgument"
	RuleUnknownArgument           Rule = "UnknownArgument"
	RuleUnknownDirective          Rule = "UnknownDirective"
	RuleInvalidDirectiveLocation  Rule = "InvalidDirectiveLocation"
	RuleUnknownType               Rule = "UnknownType"
	RuleInvalidTypeCondition      Rule = "InvalidTypeCondition"
	RuleImpossibleFragmentSpread  Rule = "ImpossibleFragmentSpread"
	RuleInvalidVariableType       Rule = "InvalidVariableType"
	RuleArgumentValueTypeMismatch Rule = "ArgumentValueTypeMismatch"
	RuleVariableTypeMismatch      Rule = "VariableTypeMismatch"
)

// AnalysisError is one semantic violation found in a document. It is a
// result value, never a control-flow signal: analysis always continues past
// the node that produced it.
type AnalysisError struct {
	Rule      Rule   `json:"rule"`
	Message   string `json:"message"`
	Locations []*language.Position
}

func (e *AnalysisError) Error() string {
	if len(e.Locations) > 0 && e.Locations[0] != nil {
		return fmt.Sprintf("%s (line %d, column %d)", e.Message, e.Locations[0].Line, e.Locations[0].Column)
	}
	return e.Message
}

// AnalysisErrors is the ordered error sequence produced by one analysis run.
type AnalysisErrors []*AnalysisError

func (e AnalysisErrors) Error() string {
	var b strings.Builder
	b.WriteString("document is not valid:\n")
	for _, err := range e {
		b.WriteString("- ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// Core primitive used by all template helpers.
func errorAt(rule Rule, message string, positions ...*language.Position) *AnalysisError {
	var locs []*language.Position
	for _, pos := range positions {
		if pos != nil {
			locs = append(locs, pos)
		}
	}
	return &AnalysisError{Rule: rule, Message: message, Locations: locs}
}

func errorUnknownRootType(kind language.Operation, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownRootType,
		fmt.Sprintf("Schema does not define a root type for %s operations", kind),
		pos,
	)
}

func errorUnknownField(fieldName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownField,
		fmt.Sprintf("Cannot query field %q on type %q", fieldName, typeName),
		pos,
	)
}

func errorCompositeNeedsSelection(fieldName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleInvalidSelectionShape,
		fmt.Sprintf("Field %q of type %q must have a selection of subfields", fieldName, typeName),
		pos,
	)
}

func errorLeafHasSelection(fieldName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleInvalidSelectionShape,
		fmt.Sprintf("Field %q must not have a selection since type %q has no subfields", fieldName, typeName),
		pos,
	)
}

func errorMissingRequiredArgument(parentKind, parentName, argName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleMissingRequiredArgument,
		fmt.Sprintf("%s %q argument %q of type %q is required, but it was not provided", parentKind, parentName, argName, typeName),
		pos,
	)
}

func errorUnknownFieldArgument(argName, fieldName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownArgument,
		fmt.Sprintf("Unknown argument %q on field %q", argName, fieldName),
		pos,
	)
}

func errorUnknownInputField(argName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownArgument,
		fmt.Sprintf("Field %q is not defined by input type %q", argName, typeName),
		pos,
	)
}

func errorUnknownDirectiveArgument(argName, directiveName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownArgument,
		fmt.Sprintf("Unknown argument %q on directive @%s", argName, directiveName),
		pos,
	)
}

func errorUnknownDirective(name string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownDirective,
		fmt.Sprintf("Unknown directive @%s", name),
		pos,
	)
}

func errorInvalidDirectiveLocation(name string, location language.DirectiveLocation, pos *language.Position) *AnalysisError {
	return errorAt(RuleInvalidDirectiveLocation,
		fmt.Sprintf("Directive @%s may not be used on %s", name, location),
		pos,
	)
}

func errorUnknownType(name string, pos *language.Position) *AnalysisError {
	return errorAt(RuleUnknownType,
		fmt.Sprintf("Unknown type %q", name),
		pos,
	)
}

func errorInvalidTypeCondition(name string, pos *language.Position) *AnalysisError {
	return errorAt(RuleInvalidTypeCondition,
		fmt.Sprintf("Fragment cannot condition on non composite type %q", name),
		pos,
	)
}

func errorImpossibleFragmentSpread(scopeType, conditionType string, pos *language.Position) *AnalysisError {
	return errorAt(RuleImpossibleFragmentSpread,
		fmt.Sprintf("Fragment cannot be spread here as objects of type %q can never be of type %q", scopeType, conditionType),
		pos,
	)
}

func errorInvalidVariableType(varName, typeName string, pos *language.Position) *AnalysisError {
	return errorAt(RuleInvalidVariableType,
		fmt.Sprintf("Variable $%s cannot be of non-input type %q", varName, typeName),
		pos,
	)
}

func errorArgumentValueTypeMismatch(typeName, value string, pos *language.Position) *AnalysisError {
	return errorAt(RuleArgumentValueTypeMismatch,
		fmt.Sprintf("Expected value of type %q, found %s", typeName, value),
		pos,
	)
}

func errorVariableTypeMismatch(varName, varType, expectedType string, pos *language.Position) *AnalysisError {
	return errorAt(RuleVariableTypeMismatch,
		fmt.Sprintf("Variable $%s of type %q used in position expecting type %q", varName, varType, expectedType),
		pos,
	)
}
