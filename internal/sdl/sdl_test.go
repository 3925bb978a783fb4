package sdl_test

import (
	"strings"
	"testing"

	"github.com/queryward/queryward/internal/sdl"
)

const goodSchema = `
schema {
  query: Query
  mutation: Mutation
}

type Query {
  node(id: ID!): Node
  search(term: String!, limit: Int = 10): [SearchResult!]
}

type Mutation {
  createPost(input: CreatePostInput!): Post
}

interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String!
  posts: [Post!]!
}

type Post implements Node {
  id: ID!
  title: String!
  author: User!
  status: PostStatus @deprecated(reason: "Use state instead")
}

union SearchResult = User | Post

enum PostStatus {
  DRAFT
  PUBLISHED
}

input CreatePostInput {
  title: String!
  authorId: ID!
}
`

func TestBuildGoodSchema(t *testing.T) {
	project, err := sdl.Parse(goodSchema)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if project.Schema.QueryType != "Query" {
		t.Errorf("query type = %q, want Query", project.Schema.QueryType)
	}
	if project.Schema.MutationType != "Mutation" {
		t.Errorf("mutation type = %q, want Mutation", project.Schema.MutationType)
	}

	user := project.Definitions["User"]
	if user == nil || user.Object == nil {
		t.Fatal("User object definition missing")
	}
	if _, ok := user.Object.Interfaces["Node"]; !ok {
		t.Error("User should implement Node")
	}

	node := project.Definitions["Node"]
	if node == nil || node.Interface == nil {
		t.Fatal("Node interface definition missing")
	}
	if len(node.Interface.PossibleTypes) != 2 {
		t.Errorf("Node possible types = %v, want [User Post] in some order", node.Interface.PossibleTypes)
	}

	search := project.Definitions["SearchResult"]
	if search == nil || search.Union == nil {
		t.Fatal("SearchResult union definition missing")
	}
	if len(search.Union.Types) != 2 {
		t.Errorf("SearchResult members = %v, want 2", search.Union.Types)
	}

	post := project.Definitions["Post"]
	status := post.Object.Fields["status"]
	if status.Deprecation == nil || status.Deprecation.Reason != "Use state instead" {
		t.Errorf("status deprecation = %+v, want reason", status.Deprecation)
	}

	limit := project.Definitions["Query"].Object.Fields["search"].Args["limit"]
	if limit.DefaultValue != int64(10) {
		t.Errorf("limit default = %v (%T), want 10", limit.DefaultValue, limit.DefaultValue)
	}
}

func TestBuildInfersConventionalRoots(t *testing.T) {
	project, err := sdl.Parse(`
type Query { ping: String }
type Mutation { noop: Boolean }
`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if project.Schema.QueryType != "Query" || project.Schema.MutationType != "Mutation" {
		t.Errorf("inferred schema = %+v", project.Schema)
	}
	if project.Schema.SubscriptionType != "" {
		t.Errorf("subscription type = %q, want empty", project.Schema.SubscriptionType)
	}
}

func TestBuildCarriesBuiltins(t *testing.T) {
	project, err := sdl.Parse(`type Query { ok: Boolean }`)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		if def := project.Definitions[name]; def == nil || def.Scalar == nil {
			t.Errorf("builtin scalar %s missing", name)
		}
	}
	for _, name := range []string{"skip", "include", "deprecated"} {
		if project.Directives[name] == nil {
			t.Errorf("builtin directive @%s missing", name)
		}
	}
	if got := project.Directives["skip"].Args["if"].Type.String(); got != "Boolean!" {
		t.Errorf("@skip if type = %q, want Boolean!", got)
	}
}

func TestBuildBadSchemas(t *testing.T) {
	type testCase struct {
		name    string
		content string
		wantErr string
	}

	for _, tc := range []testCase{
		{
			name:    "missing_query_root",
			content: `type Mutation { noop: Boolean }`,
			wantErr: "must define a query root",
		},
		{
			name:    "unknown_field_type",
			content: `type Query { widget: Widget }`,
			wantErr: `Type "Widget" not found`,
		},
		{
			name: "duplicate_definition",
			content: `
type Query { a: String }
type Query { b: String }
`,
			wantErr: "already exists",
		},
		{
			name: "object_without_fields",
			content: `
type Query { a: Empty }
type Empty
`,
			wantErr: "must have at least one field",
		},
		{
			name: "union_of_scalar",
			content: `
type Query { x: Mixed }
union Mixed = Query | String
`,
			wantErr: "must be an Object type",
		},
		{
			name: "missing_interface_field",
			content: `
type Query { n: Named }
interface Named { name: String! }
type Widget implements Named { id: ID! }
`,
			wantErr: `missing field "name"`,
		},
		{
			name: "input_type_in_output_position",
			content: `
type Query { f: Filter }
input Filter { term: String }
`,
			wantErr: "is not an output type",
		},
		{
			name: "undefined_directive_use",
			content: `
type Query { a: String @magic }
`,
			wantErr: "@magic is not defined",
		},
		{
			name: "reserved_field_prefix",
			content: `
type Query { __secret: String }
`,
			wantErr: "reserved prefix",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := sdl.Parse(tc.content)
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}
