package contracts_test

import (
	"reflect"
	"testing"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/contractstest"
	"github.com/stretchr/testify/require"
)

type exampleAccount struct {
	Owner   string   `json:"owner" jsonschema:"description=Account owner"`
	Balance float64  `json:"balance"`
	Nick    *string  `json:"nick,omitempty"`
	Kind    string   `json:"kind" jsonschema:"enum=checking,enum=savings"`
	Tags    []string `json:"tags"`
	secret  string
}

type node struct {
	Value int   `json:"value"`
	Next  *node `json:"next"`
}

func TestFromExampleStruct(t *testing.T) {
	c := contracts.FromExample(exampleAccount{}, false)
	require.Equal(t, []string{"balance", "kind", "nick", "owner", "tags"}, c.FieldNames())

	fields := c.FieldContracts()
	require.Equal(t, []string{"Account owner"}, fields["owner"].Doc())
	require.True(t, fields["nick"].IsOptional())
	require.Equal(t, `c.oneOf("checking", "savings")`, fields["kind"].String())
	require.Equal(t, "c.array(c.string)", fields["tags"].String())

	contractstest.Passes(t, c, exampleAccount{Owner: "ann", Kind: "checking"})
	contractstest.Fails(t, c, exampleAccount{Owner: "ann", Kind: "brokerage"}, "for the field `kind` of the object")
	contractstest.Passes(t, c, map[string]any{"owner": "ann", "balance": 1, "kind": "savings", "tags": []string{}})
	contractstest.Fails(t, c, map[string]any{"owner": "ann", "kind": "savings", "tags": []string{}}, "Field `balance` required")

	require.Same(t, contracts.FromType(reflect.TypeOf(exampleAccount{})), contracts.FromType(reflect.TypeOf(exampleAccount{})))
}

type ticket struct {
	Priority int              `json:"priority" jsonschema:"enum=1,enum=2,enum=3"`
	Label    *string          `json:"label,omitempty" jsonschema:"enum=bug,enum=feature,description=Triage label"`
	OnClose  func()           `json:"-"`
	Notify   func(string) int `json:"notify"`
	Owner    exampleAccount   `json:"owner"`
}

func TestFromExampleTagEnums(t *testing.T) {
	c := contracts.FromExample(ticket{}, false)
	fields := c.FieldContracts()
	require.Equal(t, `c.oneOf("bug", "feature")`, fields["label"].String())
	require.True(t, fields["label"].IsOptional())
	require.Equal(t, []string{"Triage label"}, fields["label"].Doc())
	require.Equal(t, contracts.AnyFunction.String(), fields["notify"].String())
	require.Equal(t, []string{"Account owner"}, fields["owner"].FieldContracts()["owner"].Doc())

	owner := map[string]any{"owner": "ann", "balance": 1, "kind": "savings", "tags": []string{}}
	notify := func(string) int { return 0 }
	contractstest.Passes(t, c, map[string]any{"priority": 2, "notify": notify, "owner": owner})
	contractstest.Passes(t, c, map[string]any{"priority": 3.0, "label": "bug", "notify": notify, "owner": owner})
	contractstest.Fails(t, c, map[string]any{"priority": 4, "notify": notify, "owner": owner}, "for the field `priority` of the object")
	contractstest.Fails(t, c, map[string]any{"priority": 1, "label": "chore", "notify": notify, "owner": owner}, "for the field `label` of the object")
}

func TestFromExampleRecursiveType(t *testing.T) {
	c := contracts.FromExample(&node{}, false)
	contractstest.Passes(t, c, &node{Value: 1, Next: &node{Value: 2}})
	contractstest.Passes(t, c, map[string]any{"value": 1, "next": map[string]any{"value": 2}})
	contractstest.Fails(t, c, map[string]any{"value": 1, "next": map[string]any{"value": "2"}}, "Expected integer")
}

func TestFromExampleMaps(t *testing.T) {
	c := contracts.FromExample(map[string]any{
		"name": "x",
		"?age": 1,
		"tags": []any{"a"},
	}, true)
	require.Equal(t, []string{"age", "name", "tags"}, c.FieldNames())
	contractstest.Passes(t, c, map[string]any{"name": "y", "tags": []string{}})
	contractstest.Passes(t, c, map[string]any{"name": "y", "age": 30, "tags": []string{"b"}})
	contractstest.Fails(t, c, map[string]any{"name": 5, "tags": []string{}}, "Expected string, but got 5")
	contractstest.Fails(t, c, map[string]any{"name": "y", "age": 1.5, "tags": []string{}}, "Expected integer")

	literal := contracts.FromExample(map[string]any{"?age": 1}, false)
	require.Equal(t, []string{"?age"}, literal.FieldNames())
}

func TestFromExampleScalars(t *testing.T) {
	require.Same(t, contracts.String, contracts.FromExample("s", false))
	require.Same(t, contracts.Integer, contracts.FromExample(3, false))
	require.Same(t, contracts.Number, contracts.FromExample(3.5, false))
	require.Same(t, contracts.Bool, contracts.FromExample(true, false))
	require.Same(t, contracts.AnyFunction, contracts.FromExample(func() {}, false))
	require.Same(t, contracts.Any, contracts.FromExample(nil, false))
	require.Equal(t, "c.array(c.any)", contracts.FromExample([]any{}, false).String())
}
