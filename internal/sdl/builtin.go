package sdl

var StringType = &ScalarDefinition{
	Name:           "String",
	Description:    "The String scalar type represents textual data, represented as UTF-8 character sequences.",
	SpecifiedByURL: "https://spec.graphql.org/October2021/#sec-String",
}

var IntType = &ScalarDefinition{
	Name:           "Int",
	Description:    "The Int scalar type represents non-fractional signed whole numeric values.",
	SpecifiedByURL: "https://spec.graphql.org/October2021/#sec-Int",
}

var FloatType = &ScalarDefinition{
	Name:           "Float",
	Description:    "The Float scalar type represents signed double-precision fractional values.",
	SpecifiedByURL: "https://spec.graphql.org/October2021/#sec-Float",
}

var BooleanType = &ScalarDefinition{
	Name:           "Boolean",
	Description:    "The Boolean scalar type represents true or false.",
	SpecifiedByURL: "https://spec.graphql.org/October2021/#sec-Boolean",
}

var IDType = &ScalarDefinition{
	Name:           "ID",
	Description:    "The ID scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	SpecifiedByURL: "https://spec.graphql.org/October2021/#sec-ID",
}

// BuiltinDirectives returns fresh definitions for the directives every schema carries.
func BuiltinDirectives() []*DirectiveDefinition {
	nonNullBoolean := &TypeExpr{Kind: TypeExprKindNonNull, OfType: &TypeExpr{Kind: TypeExprKindNamed, Named: "Boolean"}}
	nullableString := &TypeExpr{Kind: TypeExprKindNamed, Named: "String"}

	return []*DirectiveDefinition{
		{
			Name:        "skip",
			Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
			Args: map[string]*ArgumentDefinition{
				"if": {Name: "if", Index: 0, Type: nonNullBoolean},
			},
			Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		},
		{
			Name:        "include",
			Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
			Args: map[string]*ArgumentDefinition{
				"if": {Name: "if", Index: 0, Type: nonNullBoolean},
			},
			Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
		},
		{
			Name:        "deprecated",
			Description: "Marks an element of a GraphQL schema as no longer supported.",
			Args: map[string]*ArgumentDefinition{
				"reason": {Name: "reason", Index: 0, Type: nullableString, DefaultValue: "No longer supported"},
			},
			Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
		},
		{
			Name:        "specifiedBy",
			Description: "Exposes a URL that specifies the behavior of this scalar.",
			Args: map[string]*ArgumentDefinition{
				"url": {Name: "url", Index: 0, Type: &TypeExpr{Kind: TypeExprKindNonNull, OfType: nullableString}},
			},
			Locations: []string{"SCALAR"},
		},
		{
			Name:        "oneOf",
			Description: "Indicates exactly one field must be supplied and this field must not be null.",
			Args:        map[string]*ArgumentDefinition{},
			Locations:   []string{"INPUT_OBJECT"},
		},
	}
}
