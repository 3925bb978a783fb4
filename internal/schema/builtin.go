package schema

// Built-in names are omitted when rendering SDL since every schema carries them.

var builtinScalarNames = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

var builtinDirectiveNames = map[string]bool{
	"skip":        true,
	"include":     true,
	"deprecated":  true,
	"specifiedBy": true,
	"oneOf":       true,
}

// IsBuiltinScalar reports whether name is one of the five spec-defined scalars.
func IsBuiltinScalar(name string) bool { return builtinScalarNames[name] }

// IsBuiltinDirective reports whether name is a spec-defined directive.
func IsBuiltinDirective(name string) bool { return builtinDirectiveNames[name] }
