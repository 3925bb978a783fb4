package validation

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/queryward/queryward/internal/language"
	"github.com/queryward/queryward/internal/schema"
)

const testSDL = `
interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String!
  email: String
  friends(first: Int): [User!]
  avatar(size: ImageSize = MEDIUM): String
  pet: Pet
}

type Droid implements Node {
  id: ID!
  primaryFunction: String
}

type Dog {
  name: String!
  barkVolume: Int
}

type Cat {
  name: String!
  meowVolume: Int
}

union Pet = Dog | Cat

enum ImageSize {
  SMALL
  MEDIUM
  LARGE
}

scalar DateTime

input UserFilter {
  name: String
  verified: Boolean!
  createdAfter: DateTime
}

type Query {
  me: User
  node(id: ID!): Node
  users(filter: UserFilter, limit: Int = 10): [User!]!
  usersByIds(ids: [ID!]!): [User!]!
  search(term: String!): [Node!]
}

type Mutation {
  rename(id: ID!, name: String!): User
}

directive @weight(value: Float!) on FIELD | FRAGMENT_SPREAD
`

func buildTestSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	return s
}

func analyze(t *testing.T, s *schema.Schema, query string) AnalysisErrors {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return Validate(s, doc)
}

func rulesOf(errs AnalysisErrors) []Rule {
	rules := make([]Rule, 0, len(errs))
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	return rules
}

func TestValidDocuments(t *testing.T) {
	s := buildTestSchema(t)

	tests := []struct {
		name  string
		query string
	}{
		{
			name:  "plain fields",
			query: `{ me { id name email } }`,
		},
		{
			name:  "inline fragments on abstract scope",
			query: `{ node(id: "1") { id ... on User { name } ... on Droid { primaryFunction } } }`,
		},
		{
			name: "named fragment spread",
			query: `
				query { me { ...UserParts } }
				fragment UserParts on User { name friends(first: 2) { id } }`,
		},
		{
			name:  "untyped inline fragment inherits scope",
			query: `{ me { ... { name } } }`,
		},
		{
			name:  "built-in directives",
			query: `query Q($flag: Boolean!) { me @include(if: $flag) { id @skip(if: false) } }`,
		},
		{
			name:  "custom directive on field",
			query: `{ me @weight(value: 1.5) { id } }`,
		},
		{
			name:  "input object literal",
			query: `{ users(filter: { verified: true, name: "bo" }, limit: 3) { id } }`,
		},
		{
			name:  "custom scalar accepts any literal",
			query: `{ users(filter: { verified: true, createdAfter: "2024-01-01" }) { id } }`,
		},
		{
			name:  "enum literal",
			query: `{ me { avatar(size: SMALL) } }`,
		},
		{
			name:  "declared variables in matching positions",
			query: `query Q($term: String!, $limit: Int) { search(term: $term) { id } users(limit: $limit) { id } }`,
		},
		{
			name:  "nullable variable with default in non-null position",
			query: `query Q($term: String = "x") { search(term: $term) { id } }`,
		},
		{
			name:  "union scope",
			query: `{ me { pet { ... on Dog { barkVolume } ... on Cat { meowVolume } } } }`,
		},
		{
			name:  "meta fields",
			query: `{ __typename __schema { queryType { name } } __type(name: "User") { name } }`,
		},
		{
			name:  "mutation root",
			query: `mutation { rename(id: "1", name: "bo") { id } }`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := analyze(t, s, tt.query)
			require.Empty(t, errs, "unexpected errors: %v", errs)
		})
	}
}

func TestInvalidDocuments(t *testing.T) {
	s := buildTestSchema(t)

	tests := []struct {
		name      string
		query     string
		wantRules []Rule
		wantMsg   string // substring of the first error, when set
	}{
		{
			name:      "missing subscription root",
			query:     `subscription { ticks }`,
			wantRules: []Rule{RuleUnknownRootType},
			wantMsg:   "root type for subscription",
		},
		{
			name:      "unknown field suppresses nested errors",
			query:     `{ me { nonexistent { deeper } } }`,
			wantRules: []Rule{RuleUnknownField},
			wantMsg:   `Cannot query field "nonexistent" on type "User"`,
		},
		{
			name:      "composite field needs selection",
			query:     `{ me }`,
			wantRules: []Rule{RuleInvalidSelectionShape},
			wantMsg:   `Field "me" of type "User" must have a selection of subfields`,
		},
		{
			name:      "leaf field must not have selection",
			query:     `{ me { name { length } } }`,
			wantRules: []Rule{RuleInvalidSelectionShape},
			wantMsg:   `Field "name" must not have a selection since type "String!" has no subfields`,
		},
		{
			name:      "missing required field argument",
			query:     `{ node { id } }`,
			wantRules: []Rule{RuleMissingRequiredArgument},
			wantMsg:   `Field "node" argument "id" of type "ID!" is required`,
		},
		{
			name:      "unknown field argument",
			query:     `{ me { friends(last: 3) { id } } }`,
			wantRules: []Rule{RuleUnknownArgument},
			wantMsg:   `Unknown argument "last" on field "friends"`,
		},
		{
			name:      "missing required builtin directive argument",
			query:     `{ me { id @skip } }`,
			wantRules: []Rule{RuleMissingRequiredArgument},
			wantMsg:   `Directive "@skip" argument "if" of type "Boolean!" is required`,
		},
		{
			name:      "unknown directive",
			query:     `{ me @uppercase { id } }`,
			wantRules: []Rule{RuleUnknownDirective},
			wantMsg:   "Unknown directive @uppercase",
		},
		{
			name:      "directive in wrong location",
			query:     `query @weight(value: 1.5) { me { id } }`,
			wantRules: []Rule{RuleInvalidDirectiveLocation},
			wantMsg:   "Directive @weight may not be used on QUERY",
		},
		{
			name:      "missing required directive argument",
			query:     `{ me @weight { id } }`,
			wantRules: []Rule{RuleMissingRequiredArgument},
			wantMsg:   `Directive "@weight" argument "value" of type "Float!" is required`,
		},
		{
			name:      "unknown directive argument",
			query:     `{ me @weight(value: 1.0, heavy: true) { id } }`,
			wantRules: []Rule{RuleUnknownArgument},
			wantMsg:   `Unknown argument "heavy" on directive @weight`,
		},
		{
			name:      "unknown input object field",
			query:     `{ users(filter: { verified: true, nickname: "x" }) { id } }`,
			wantRules: []Rule{RuleUnknownArgument},
			wantMsg:   `Field "nickname" is not defined by input type "UserFilter"`,
		},
		{
			name:      "missing required input object field",
			query:     `{ users(filter: { name: "x" }) { id } }`,
			wantRules: []Rule{RuleMissingRequiredArgument},
			wantMsg:   `Input object "UserFilter" argument "verified" of type "Boolean!" is required`,
		},
		{
			name:      "unknown type condition",
			query:     `{ me { ... on Alien { id } } }`,
			wantRules: []Rule{RuleUnknownType},
			wantMsg:   `Unknown type "Alien"`,
		},
		{
			name:      "non-composite type condition",
			query:     `{ me { ... on ImageSize { id } } }`,
			wantRules: []Rule{RuleInvalidTypeCondition},
			wantMsg:   `Fragment cannot condition on non composite type "ImageSize"`,
		},
		{
			name:      "impossible inline fragment in object scope",
			query:     `{ me { ... on Droid { primaryFunction } } }`,
			wantRules: []Rule{RuleImpossibleFragmentSpread},
			wantMsg:   `objects of type "User" can never be of type "Droid"`,
		},
		{
			name:      "impossible inline fragment in interface scope",
			query:     `{ node(id: "1") { ... on Dog { barkVolume } } }`,
			wantRules: []Rule{RuleImpossibleFragmentSpread},
			wantMsg:   `objects of type "Node" can never be of type "Dog"`,
		},
		{
			name: "impossible named spread",
			query: `
				query { me { ...DogParts } }
				fragment DogParts on Dog { barkVolume }`,
			wantRules: []Rule{RuleImpossibleFragmentSpread},
			wantMsg:   `objects of type "User" can never be of type "Dog"`,
		},
		{
			name:      "non-input variable types",
			query:     `query Q($u: User, $x: Missing) { me { id } }`,
			wantRules: []Rule{RuleInvalidVariableType, RuleInvalidVariableType},
			wantMsg:   `Variable $u cannot be of non-input type "User"`,
		},
		{
			name:      "string literal where int expected",
			query:     `{ users(limit: "ten") { id } }`,
			wantRules: []Rule{RuleArgumentValueTypeMismatch},
			wantMsg:   `Expected value of type "Int", found "ten"`,
		},
		{
			name:      "unknown enum member",
			query:     `{ me { avatar(size: HUGE) } }`,
			wantRules: []Rule{RuleArgumentValueTypeMismatch},
			wantMsg:   `Expected value of type "ImageSize", found HUGE`,
		},
		{
			name:      "null in non-null position",
			query:     `{ search(term: null) { id } }`,
			wantRules: []Rule{RuleArgumentValueTypeMismatch},
			wantMsg:   `Expected value of type "String!", found null`,
		},
		{
			name:      "scalar literal where input object expected",
			query:     `{ users(filter: 3) { id } }`,
			wantRules: []Rule{RuleArgumentValueTypeMismatch},
			wantMsg:   `Expected value of type "UserFilter", found 3`,
		},
		{
			name:      "variable type mismatch",
			query:     `query Q($limit: String) { users(limit: $limit) { id } }`,
			wantRules: []Rule{RuleVariableTypeMismatch},
			wantMsg:   `Variable $limit of type "String" used in position expecting type "Int"`,
		},
		{
			name:      "nullable variable in non-null position",
			query:     `query Q($term: String) { search(term: $term) { id } }`,
			wantRules: []Rule{RuleVariableTypeMismatch},
			wantMsg:   `Variable $term of type "String" used in position expecting type "String!"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := analyze(t, s, tt.query)
			require.Empty(t, cmp.Diff(tt.wantRules, rulesOf(errs)))
			if tt.wantMsg != "" {
				require.NotEmpty(t, errs)
				require.Contains(t, errs[0].Message, tt.wantMsg)
			}
		})
	}
}

func TestFragmentVariablesResolveThroughSpreads(t *testing.T) {
	s := buildTestSchema(t)

	// The fragment's $size must satisfy every operation that reaches it: A's
	// declaration matches, B's does not.
	errs := analyze(t, s, `
		query A($size: ImageSize) { me { ...Av } }
		query B($size: Int) { me { ...Av } }
		fragment Av on User { avatar(size: $size) }`)

	require.Len(t, errs, 1)
	require.Equal(t, RuleVariableTypeMismatch, errs[0].Rule)
	require.Contains(t, errs[0].Message, `Variable $size of type "Int" used in position expecting type "ImageSize"`)
}

func TestUndeclaredVariableUsageIsNotReportedHere(t *testing.T) {
	s := buildTestSchema(t)

	errs := analyze(t, s, `query { users(limit: $limit) { id } }`)
	require.Empty(t, errs)
}

func TestSpreadOfUndefinedFragmentIsSkipped(t *testing.T) {
	s := buildTestSchema(t)

	errs := analyze(t, s, `{ me { ...Missing } }`)
	require.Empty(t, errs)
}

func TestErrorOrdering(t *testing.T) {
	s := buildTestSchema(t)

	// Inline errors come out in traversal order; deferred errors follow in a
	// fixed phase order: variable declarations, argument values, spreads.
	errs := analyze(t, s, `
		query Q($bad: Droid) {
			me {
				wrong
				avatar(size: HUGE)
				...CatParts
			}
		}
		fragment CatParts on Cat { meowVolume }`)

	want := []Rule{
		RuleUnknownField,
		RuleInvalidVariableType,
		RuleArgumentValueTypeMismatch,
		RuleImpossibleFragmentSpread,
	}
	require.Empty(t, cmp.Diff(want, rulesOf(errs)))
}

func TestAnalysisIsDeterministic(t *testing.T) {
	s := buildTestSchema(t)
	doc, err := language.ParseQuery(`
		query Q($bad: Droid, $limit: String) {
			me { wrong avatar(size: HUGE) ...CatParts }
			users(limit: $limit) { id }
		}
		fragment CatParts on Cat { meowVolume }`)
	require.NoError(t, err)

	first := Validate(s, doc)
	second := Validate(s, doc)
	require.Equal(t, first, second)
}

func TestErrorRendering(t *testing.T) {
	s := buildTestSchema(t)

	errs := analyze(t, s, `{ me }`)
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "(line 1, column")

	rendered := errs.Error()
	require.True(t, strings.HasPrefix(rendered, "document is not valid:\n"))
	require.Contains(t, rendered, "- Field \"me\"")
}

func TestArgumentValuesInsideDirectivesAreChecked(t *testing.T) {
	s := buildTestSchema(t)

	errs := analyze(t, s, `{ me @weight(value: "heavy") { id } }`)
	require.Len(t, errs, 1)
	require.Equal(t, RuleArgumentValueTypeMismatch, errs[0].Rule)
	require.Contains(t, errs[0].Message, `Expected value of type "Float!", found "heavy"`)
}

func TestListInputCoercion(t *testing.T) {
	s := buildTestSchema(t)

	// Single values coerce to one-element lists.
	require.Empty(t, analyze(t, s, `{ usersByIds(ids: "a") { id } }`))
	require.Empty(t, analyze(t, s, `{ usersByIds(ids: ["a", "b"]) { id } }`))

	// Each list element is checked individually.
	errs := analyze(t, s, `{ usersByIds(ids: ["a", true]) { id } }`)
	require.Len(t, errs, 1)
	require.Equal(t, RuleArgumentValueTypeMismatch, errs[0].Rule)
	require.Contains(t, errs[0].Message, `Expected value of type "ID!", found true`)

	// A list-typed variable satisfies a list position.
	require.Empty(t, analyze(t, s, `query Q($ids: [ID!]!) { usersByIds(ids: $ids) { id } }`))

	// A flat variable does not.
	errs = analyze(t, s, `query Q($id: ID!) { usersByIds(ids: $id) { id } }`)
	require.Len(t, errs, 1)
	require.Equal(t, RuleVariableTypeMismatch, errs[0].Rule)
}
