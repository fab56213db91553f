package introspection

import (
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/validator"
)

// 実エンドポイントが返す形の __schema をそのまま使う。ビルトインスカラーと
// ディレクティブも型リストに含まれるので、プレリュードなしで検証が通る。
const introspectionJSON = `{
  "__schema": {
    "queryType": { "name": "Query" },
    "mutationType": null,
    "subscriptionType": null,
    "types": [
      {
        "kind": "SCALAR",
        "name": "Boolean",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "SCALAR",
        "name": "ID",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "SCALAR",
        "name": "String",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "ENUM",
        "name": "Priority",
        "description": "How urgent a todo is.",
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": [
          { "name": "LOW", "description": null, "isDeprecated": false, "deprecationReason": null },
          { "name": "HIGH", "description": null, "isDeprecated": false, "deprecationReason": null }
        ],
        "possibleTypes": null
      },
      {
        "kind": "INPUT_OBJECT",
        "name": "TodoFilter",
        "description": null,
        "fields": null,
        "inputFields": [
          {
            "name": "doneOnly",
            "description": null,
            "type": { "kind": "SCALAR", "name": "Boolean", "ofType": null },
            "defaultValue": "false"
          }
        ],
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "INTERFACE",
        "name": "Node",
        "description": null,
        "fields": [
          {
            "name": "id",
            "description": null,
            "args": [],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null }
            },
            "isDeprecated": false,
            "deprecationReason": null
          }
        ],
        "inputFields": null,
        "interfaces": [],
        "enumValues": null,
        "possibleTypes": [
          { "kind": "OBJECT", "name": "Todo", "ofType": null },
          { "kind": "OBJECT", "name": "User", "ofType": null }
        ]
      },
      {
        "kind": "OBJECT",
        "name": "Todo",
        "description": "A single item on the list.",
        "fields": [
          {
            "name": "id",
            "description": null,
            "args": [],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null }
            },
            "isDeprecated": false,
            "deprecationReason": null
          },
          {
            "name": "text",
            "description": null,
            "args": [],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": { "kind": "SCALAR", "name": "String", "ofType": null }
            },
            "isDeprecated": false,
            "deprecationReason": null
          },
          {
            "name": "body",
            "description": null,
            "args": [],
            "type": { "kind": "SCALAR", "name": "String", "ofType": null },
            "isDeprecated": true,
            "deprecationReason": "Use text."
          }
        ],
        "inputFields": null,
        "interfaces": [{ "kind": "INTERFACE", "name": "Node", "ofType": null }],
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "OBJECT",
        "name": "User",
        "description": null,
        "fields": [
          {
            "name": "id",
            "description": null,
            "args": [],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": { "kind": "SCALAR", "name": "ID", "ofType": null }
            },
            "isDeprecated": false,
            "deprecationReason": null
          },
          {
            "name": "name",
            "description": null,
            "args": [],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": { "kind": "SCALAR", "name": "String", "ofType": null }
            },
            "isDeprecated": false,
            "deprecationReason": null
          }
        ],
        "inputFields": null,
        "interfaces": [{ "kind": "INTERFACE", "name": "Node", "ofType": null }],
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "UNION",
        "name": "Owner",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": [
          { "kind": "OBJECT", "name": "Todo", "ofType": null },
          { "kind": "OBJECT", "name": "User", "ofType": null }
        ]
      },
      {
        "kind": "OBJECT",
        "name": "Query",
        "description": null,
        "fields": [
          {
            "name": "todos",
            "description": null,
            "args": [
              {
                "name": "filter",
                "description": null,
                "type": { "kind": "INPUT_OBJECT", "name": "TodoFilter", "ofType": null },
                "defaultValue": null
              }
            ],
            "type": {
              "kind": "NON_NULL",
              "name": null,
              "ofType": {
                "kind": "LIST",
                "name": null,
                "ofType": {
                  "kind": "NON_NULL",
                  "name": null,
                  "ofType": { "kind": "OBJECT", "name": "Todo", "ofType": null }
                }
              }
            },
            "isDeprecated": false,
            "deprecationReason": null
          }
        ],
        "inputFields": null,
        "interfaces": [],
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "OBJECT",
        "name": "__Schema",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      }
    ],
    "directives": [
      {
        "name": "deprecated",
        "description": null,
        "locations": ["FIELD_DEFINITION", "ENUM_VALUE"],
        "args": [
          {
            "name": "reason",
            "description": null,
            "type": { "kind": "SCALAR", "name": "String", "ofType": null },
            "defaultValue": "\"No longer supported\""
          }
        ]
      }
    ]
  }
}`

func loadIntrospectionQuery(t *testing.T) Query {
	t.Helper()

	var query Query
	if err := json.Unmarshal([]byte(introspectionJSON), &query); err != nil {
		t.Fatalf("failed to decode introspection fixture: %v", err)
	}
	return query
}

func TestSchemaFromIntrospection(t *testing.T) {
	t.Parallel()

	query := loadIntrospectionQuery(t)
	document := SchemaFromIntrospection("https://api.example.com/graphql", query)
	schema, err := validator.ValidateSchemaDocument(document)
	if err != nil {
		t.Fatalf("rebuilt document does not validate: %v", err)
	}

	if schema.Query == nil || schema.Query.Name != "Query" {
		t.Fatalf("schema.Query = %v, want Query", schema.Query)
	}
	if schema.Mutation != nil {
		t.Errorf("schema.Mutation = %v, want nil", schema.Mutation)
	}

	t.Run("__で始まる型は落とす", func(t *testing.T) {
		if schema.Types["__Schema"] != nil {
			t.Error("__Schema should not survive the rebuild")
		}
	})

	t.Run("オブジェクト型とフィールド型", func(t *testing.T) {
		todo := schema.Types["Todo"]
		if todo == nil {
			t.Fatal("schema has no Todo type")
		}
		if todo.Kind != ast.Object {
			t.Errorf("Todo kind = %s, want OBJECT", todo.Kind)
		}
		if todo.Description != "A single item on the list." {
			t.Errorf("Todo description = %q", todo.Description)
		}
		todos := schema.Query.Fields.ForName("todos")
		if todos == nil {
			t.Fatal("Query has no todos field")
		}
		if got := todos.Type.String(); got != "[Todo!]!" {
			t.Errorf("todos type = %s, want [Todo!]!", got)
		}
		if arg := todos.Arguments.ForName("filter"); arg == nil || arg.Type.String() != "TodoFilter" {
			t.Errorf("filter argument = %v, want TodoFilter", arg)
		}
	})

	t.Run("deprecatedはディレクティブとして再現する", func(t *testing.T) {
		body := schema.Types["Todo"].Fields.ForName("body")
		if body == nil {
			t.Fatal("Todo has no body field")
		}
		directive := body.Directives.ForName("deprecated")
		if directive == nil {
			t.Fatal("body has no deprecated directive")
		}
		reason := directive.Arguments.ForName("reason")
		if reason == nil || reason.Value.Raw != "Use text." {
			t.Errorf("reason = %v, want Use text.", reason)
		}
	})

	t.Run("enumとinput", func(t *testing.T) {
		priority := schema.Types["Priority"]
		if priority == nil || priority.Kind != ast.Enum {
			t.Fatalf("Priority = %v, want ENUM", priority)
		}
		var values []string
		for _, value := range priority.EnumValues {
			values = append(values, value.Name)
		}
		if diff := cmp.Diff([]string{"LOW", "HIGH"}, values); diff != "" {
			t.Errorf("enum values diff(-want +got): %s", diff)
		}

		filter := schema.Types["TodoFilter"]
		if filter == nil || filter.Kind != ast.InputObject {
			t.Fatalf("TodoFilter = %v, want INPUT_OBJECT", filter)
		}
		doneOnly := filter.Fields.ForName("doneOnly")
		if doneOnly == nil || doneOnly.Type.String() != "Boolean" {
			t.Errorf("doneOnly = %v, want Boolean", doneOnly)
		}
	})

	t.Run("unionとinterfaceのメンバー", func(t *testing.T) {
		owner := schema.Types["Owner"]
		if owner == nil || owner.Kind != ast.Union {
			t.Fatalf("Owner = %v, want UNION", owner)
		}
		if diff := cmp.Diff([]string{"Todo", "User"}, owner.Types); diff != "" {
			t.Errorf("union members diff(-want +got): %s", diff)
		}

		var possible []string
		for _, def := range schema.PossibleTypes["Node"] {
			possible = append(possible, def.Name)
		}
		if diff := cmp.Diff([]string{"Todo", "User"}, possible); diff != "" {
			t.Errorf("Node possible types diff(-want +got): %s", diff)
		}
	})

	t.Run("ディレクティブ定義", func(t *testing.T) {
		deprecated := schema.Directives["deprecated"]
		if deprecated == nil {
			t.Fatal("schema has no deprecated directive")
		}
		if len(deprecated.Locations) != 2 || deprecated.Locations[0] != ast.LocationFieldDefinition {
			t.Errorf("locations = %v", deprecated.Locations)
		}
	})
}

func TestSchemaFromIntrospection_queryTypeNull(t *testing.T) {
	t.Parallel()

	// mutationしか公開しないエンドポイント。Queryという名前の型も持たないので、
	// 再構築したスキーマにqueryルートは存在しない。
	const mutationOnlyJSON = `{
  "__schema": {
    "queryType": { "name": null },
    "mutationType": { "name": "Mutation" },
    "subscriptionType": null,
    "types": [
      {
        "kind": "SCALAR",
        "name": "Boolean",
        "description": null,
        "fields": null,
        "inputFields": null,
        "interfaces": null,
        "enumValues": null,
        "possibleTypes": null
      },
      {
        "kind": "OBJECT",
        "name": "Mutation",
        "description": null,
        "fields": [
          {
            "name": "noop",
            "description": null,
            "args": [],
            "type": { "kind": "SCALAR", "name": "Boolean", "ofType": null },
            "isDeprecated": false,
            "deprecationReason": null
          }
        ],
        "inputFields": null,
        "interfaces": [],
        "enumValues": null,
        "possibleTypes": null
      }
    ],
    "directives": []
  }
}`

	var query Query
	if err := json.Unmarshal([]byte(mutationOnlyJSON), &query); err != nil {
		t.Fatalf("failed to decode introspection fixture: %v", err)
	}

	document := SchemaFromIntrospection("https://api.example.com/graphql", query)
	schema, err := validator.ValidateSchemaDocument(document)
	if err != nil {
		t.Fatalf("rebuilt document does not validate: %v", err)
	}

	if schema.Query != nil {
		t.Errorf("schema.Query = %v, want nil", schema.Query)
	}
	if schema.Mutation == nil || schema.Mutation.Name != "Mutation" {
		t.Errorf("schema.Mutation = %v, want Mutation", schema.Mutation)
	}
}

func TestIntrospectionQuery(t *testing.T) {
	t.Parallel()

	// 深さ8のTypeRef入れ子まで問い合わせる。[[Int!]!]! のような実用的な
	// 入れ子をほどくのに十分な深さを保つ。
	if !strings.Contains(Introspection, "__schema") {
		t.Error("query misses __schema")
	}
	if got := strings.Count(Introspection, "ofType"); got != 7 {
		t.Errorf("ofType nesting = %d, want 7", got)
	}
}
