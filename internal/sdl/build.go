package sdl

import (
	"context"

	language "github.com/queryward/queryward/internal/language"
)

type builder struct {
	Schema      *Schema
	Definitions map[string]*Definition
	Directives  map[string]*DirectiveDefinition
	Sources     map[string]*SourceMetadata

	violations []*Violation
	discovery  Discovery
	sourceDocs map[string]*language.SchemaDocument
}

func Build(ctx context.Context, disc Discovery) (*Project, error) {
	b := &builder{
		Schema:      nil,
		Definitions: make(map[string]*Definition),
		Directives:  make(map[string]*DirectiveDefinition),
		Sources:     make(map[string]*SourceMetadata),
		violations:  nil,
		discovery:   disc,
		sourceDocs:  make(map[string]*language.SchemaDocument),
	}

	if err := b.build(ctx); err != nil {
		return nil, err
	}

	return &Project{
		Schema:      b.Schema,
		Definitions: b.Definitions,
		Directives:  b.Directives,
		Sources:     b.Sources,
	}, nil
}

func (b *builder) build(ctx context.Context) (err error) {
	srcs, err := b.discovery.ListMetadata(ctx)
	if err != nil {
		return err
	}
	for _, sm := range srcs {
		b.Sources[sm.Name] = sm
	}

	// Parse SDL sources
	for name, meta := range b.Sources {
		content, err := b.discovery.ReadSource(ctx, name)
		if err != nil {
			return err
		}
		document, err := language.ParseSchema(meta.FilePath, content)
		if err != nil {
			return err
		}
		b.sourceDocs[name] = document
	}

	// Load built-in scalars and directives
	b.Definitions["String"] = &Definition{Scalar: StringType}
	b.Definitions["Int"] = &Definition{Scalar: IntType}
	b.Definitions["Float"] = &Definition{Scalar: FloatType}
	b.Definitions["Boolean"] = &Definition{Scalar: BooleanType}
	b.Definitions["ID"] = &Definition{Scalar: IDType}
	for _, d := range BuiltinDirectives() {
		b.Directives[d.Name] = d
	}

	// Populate definitions
	if err = b.populateDefinitions(); err != nil {
		return err
	}

	// Process schema definitions
	if err = b.processSchemaDefinitions(); err != nil {
		return err
	}

	// Populate references including fields, input values and union types
	if err = b.populateReferences(); err != nil {
		return err
	}
	// Populate interface implementations and union members
	if err = b.populateImplementations(); err != nil {
		return err
	}

	// Populate directive definitions
	if err = b.populateDirectiveDefinitions(); err != nil {
		return err
	}

	// Populate directive uses (deprecations, specifiedBy, oneOf)
	if err = b.populateDirectiveUses(); err != nil {
		return err
	}

	return nil
}

func (b *builder) addViolation(v ...*Violation) {
	b.violations = append(b.violations, v...)
}
