package sdl

import (
	language "github.com/queryward/queryward/internal/language"
)

func (b *builder) populateDirectiveUses() error {
	for _, doc := range b.sourceDocs {
		for _, node := range doc.Definitions {
			b.processDefinitionDirectives(b.Definitions[node.Name], node)
		}
		for _, node := range doc.Extensions {
			b.processDefinitionDirectives(b.Definitions[node.Name], node)
		}
	}

	if len(b.violations) > 0 {
		return ValidationError(b.violations)
	}
	return nil
}

func (b *builder) processDefinitionDirectives(def *Definition, node *language.Definition) {
	switch node.Kind {
	case language.Object:
		b.processFieldDirectives(def.Object.Fields, node)
	case language.Interface:
		b.processFieldDirectives(def.Interface.Fields, node)
	case language.InputObject:
		b.processInputDirectives(def.Input, node)
	case language.Enum:
		b.processEnumValueDirectives(def.Enum, node)
	case language.Scalar:
		b.processScalarDirectives(def.Scalar, node)
	default:
		// Unions carry no directive uses we track
	}
}

func (b *builder) processFieldDirectives(fields map[string]*FieldDefinition, node *language.Definition) {
	for _, fieldNode := range node.Fields {
		field := fields[fieldNode.Name]
		if field == nil {
			continue
		}
		for _, dir := range fieldNode.Directives {
			switch dir.Name {
			case "deprecated":
				field.Deprecation = b.projectDeprecation(dir)
			default:
				b.checkDirectiveDefined(dir)
			}
		}
		for _, argNode := range fieldNode.Arguments {
			arg := field.Args[argNode.Name]
			if arg == nil {
				continue
			}
			for _, dir := range argNode.Directives {
				switch dir.Name {
				case "deprecated":
					arg.Deprecation = b.projectDeprecation(dir)
				default:
					b.checkDirectiveDefined(dir)
				}
			}
		}
	}
}

func (b *builder) processInputDirectives(def *InputDefinition, node *language.Definition) {
	for _, dir := range node.Directives {
		switch dir.Name {
		case "oneOf":
			def.OneOf = true
		default:
			b.checkDirectiveDefined(dir)
		}
	}
	for _, fieldNode := range node.Fields {
		value := def.InputValues[fieldNode.Name]
		if value == nil {
			continue
		}
		for _, dir := range fieldNode.Directives {
			switch dir.Name {
			case "deprecated":
				value.Deprecation = b.projectDeprecation(dir)
			default:
				b.checkDirectiveDefined(dir)
			}
		}
	}
}

func (b *builder) processEnumValueDirectives(def *EnumDefinition, node *language.Definition) {
	for _, valueNode := range node.EnumValues {
		value := def.Values[valueNode.Name]
		if value == nil {
			continue
		}
		for _, dir := range valueNode.Directives {
			switch dir.Name {
			case "deprecated":
				value.Deprecation = b.projectDeprecation(dir)
			default:
				b.checkDirectiveDefined(dir)
			}
		}
	}
}

func (b *builder) processScalarDirectives(def *ScalarDefinition, node *language.Definition) {
	for _, dir := range node.Directives {
		switch dir.Name {
		case "specifiedBy":
			for _, arg := range dir.Arguments {
				if arg.Name == "url" {
					def.SpecifiedByURL = b.getStringValue(arg.Value)
				}
			}
		default:
			b.checkDirectiveDefined(dir)
		}
	}
}

func (b *builder) projectDeprecation(dir *language.Directive) *Deprecation {
	dep := &Deprecation{}
	for _, arg := range dir.Arguments {
		if arg.Name == "reason" {
			dep.Reason = b.getStringValue(arg.Value)
		}
	}
	return dep
}

// Custom type-system directives are fine as long as they were declared somewhere.
func (b *builder) checkDirectiveDefined(dir *language.Directive) {
	if _, ok := b.Directives[dir.Name]; !ok {
		b.addViolation(violationUnknownDirectiveUse(dir.Name, dir.Position))
	}
}
