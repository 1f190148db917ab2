package docs_test

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/docs"
	"github.com/stretchr/testify/require"
)

func schemaJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestSchemaOfObjects(t *testing.T) {
	c := contracts.Object(contracts.Fields{
		"owner":   contracts.String,
		"balance": contracts.Number,
		"nick":    contracts.String.Optional(),
	}).Strict()

	require.JSONEq(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"balance": {"type": "number"},
			"nick": {"type": "string"},
			"owner": {"type": "string"}
		},
		"required": ["balance", "owner"],
		"additionalProperties": false
	}`, schemaJSON(t, docs.Schema(c)))
}

func TestSchemaOfElements(t *testing.T) {
	tests := []struct {
		name string
		c    *contracts.Contract
		want string
	}{
		{"integer", contracts.Integer, `{"type": "integer"}`},
		{"bool", contracts.Bool, `{"type": "boolean"}`},
		{"date", contracts.Date, `{"type": "string", "format": "date-time"}`},
		{"any", contracts.Any, `true`},
		{"nothing", contracts.Nothing, `{"not": true}`},
		{"value", contracts.Value(3), `{"const": 3}`},
		{"oneOf", contracts.OneOf("a", "b"), `{"enum": ["a", "b"]}`},
		{"matches", contracts.Matches(regexp.MustCompile(`^\d+$`)), `{"type": "string", "pattern": "^\\d+$"}`},
		{"pred", contracts.Pred(func(any) bool { return true }).Rename("even"), `{"description": "c.even"}`},
		{"value func", contracts.Value(func() {}), `{"description": "c.value(func)"}`},
		{"doc", contracts.String.WithDoc("A name.", "Never empty."), `{"type": "string", "description": "A name.\nNever empty."}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := docs.Schema(tt.c)
			s.Version = ""
			require.JSONEq(t, tt.want, schemaJSON(t, s))
		})
	}
}

func TestSchemaOfCombinatorsAndContainers(t *testing.T) {
	tests := []struct {
		name string
		c    *contracts.Contract
		want string
	}{
		{"and", contracts.And(contracts.Number, contracts.Integer), `{"allOf": [{"type": "number"}, {"type": "integer"}]}`},
		{"or", contracts.Or(contracts.Value(1), contracts.String), `{"anyOf": [{"const": 1}, {"type": "string"}]}`},
		{"array", contracts.Array(contracts.String), `{"type": "array", "items": {"type": "string"}}`},
		{"tuple", contracts.Tuple(contracts.String, contracts.Number), `{"type": "array", "prefixItems": [{"type": "string"}, {"type": "number"}]}`},
		{"strict tuple", contracts.Tuple(contracts.String).Strict(), `{"type": "array", "prefixItems": [{"type": "string"}], "items": false}`},
		{"hash", contracts.Hash(contracts.Integer), `{"type": "object", "additionalProperties": {"type": "integer"}}`},
		{"function", contracts.Fn(contracts.Number).WithDoc("Adds one."), `{"description": "Adds one.\n\nc.fn(c.number -> c.any)"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := docs.Schema(tt.c)
			s.Version = ""
			require.JSONEq(t, tt.want, schemaJSON(t, s))
		})
	}
}

func TestSchemaOfRecursiveContracts(t *testing.T) {
	tree := contracts.Cyclic(false)
	tree.CloseCycle(contracts.Object(contracts.Fields{
		"value": contracts.Number,
		"kids":  contracts.Array(tree),
	}))

	s := docs.Schema(tree)
	s.Version = ""
	require.JSONEq(t, `{
		"$anchor": "cycle1",
		"type": "object",
		"properties": {
			"kids": {"type": "array", "items": {"$ref": "#cycle1"}},
			"value": {"type": "number"}
		},
		"required": ["kids", "value"]
	}`, schemaJSON(t, s))
}

func TestModuleSchemaDefinesEveryEntry(t *testing.T) {
	m, _ := accountsRegistry(t).Module("accounts")
	s := docs.ModuleSchema(m)

	require.Equal(t, "accounts", s.Title)
	require.Equal(t, "Account management.", s.Description)
	require.Len(t, s.Definitions, 2)
	require.Equal(t, "object", s.Definitions["Account"].Type)
	require.Equal(t, "A bank account.", s.Definitions["Account"].Description)
	require.Equal(t, []string{"balance", "owner"}, s.Definitions["Account"].Required)
	require.Contains(t, s.Definitions["deposit"].Description, "c.fn(c.number -> c.number)")
}
