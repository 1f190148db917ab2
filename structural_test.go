package contracts_test

import (
	"testing"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/contractstest"
	"github.com/stretchr/testify/require"
)

func TestArray(t *testing.T) {
	c := contracts.Array(contracts.Value(5))
	require.Equal(t, "c.array(c.value(5))", c.String())
	contractstest.Passes(t, c, []int{})
	contractstest.Passes(t, c, [2]int{5, 5})
	ce := contractstest.Fails(t, c, []int{5, 6}, "Expected value(5), but got 6", "for the 2nd element of the array")
	require.Equal(t, "[1]", ce.Path())
	contractstest.Fails(t, c, "55", `Expected array, but got "55"`)
}

func TestNestedArrayReportsPosition(t *testing.T) {
	c := contracts.Array(contracts.Array(contracts.Number))
	contractstest.Fails(t, c, [][]any{{1}, {2, "x"}},
		"for the 2nd element of the array\nat position [1]\nin contract:\nc.array(c.array(c.number))\n",
		"The full value being checked was:")
}

func TestTuple(t *testing.T) {
	c := contracts.Tuple(contracts.Value(5))
	contractstest.Fails(t, c, []int{}, "Expected tuple of size 1")
	contractstest.Passes(t, c, []int{5, 6})

	strict := c.Strict()
	require.Equal(t, "c.tuple(c.value(5)).strict()", strict.String())
	require.Same(t, strict, strict.Strict())
	contractstest.Fails(t, strict, []int{5, 6}, "Expected tuple of exactly size 1")
	contractstest.Passes(t, c, []int{5, 6})

	ce := contractstest.Fails(t, contracts.Tuple(contracts.String, contracts.Number), []any{"a", "b"},
		"for the 2nd element of the tuple")
	require.Equal(t, "[1]", ce.Path())
}

func TestHash(t *testing.T) {
	c := contracts.Hash(contracts.Number)
	contractstest.Passes(t, c, map[string]int{"a": 1})
	contractstest.Passes(t, c, map[string]any{})
	ce := contractstest.Fails(t, c, map[string]any{"a": 1, "b": "x"}, "for the key `b` of the hash")
	require.Equal(t, ".b", ce.Path())
	contractstest.Fails(t, c, []int{1}, "Expected hash")
	contractstest.Fails(t, c, contracts.Number, "Expected hash")
	contractstest.Fails(t, contracts.Hash(contracts.Any), contracts.Hash(contracts.Any), "Expected hash")
}

func TestObject(t *testing.T) {
	c := contracts.Object(contracts.Fields{"x": contracts.Value(5)})
	require.Equal(t, "c.object({x: c.value(5)})", c.String())

	contractstest.Passes(t, c, map[string]any{"x": 5, "y": 10})
	contractstest.Fails(t, c.Strict(), map[string]any{"x": 5, "y": 10}, "Found the extra field `y` in map[x:5 y:10]")
	contractstest.Fails(t, c.Strict(), map[string]any{"x": 5, "y": 10, "z": 1}, "Found the extra fields `y`, `z`")
	contractstest.Fails(t, c, map[string]any{"y": 10}, "Field `x` required, got map[y:10]")

	// Deriving a strict copy leaves c open.
	_ = c.Strict()
	contractstest.Passes(t, c, map[string]any{"x": 5, "y": 10})
}

func TestObjectOptionalFields(t *testing.T) {
	c := contracts.Object(contracts.Fields{
		"x": contracts.Value(5),
		"y": contracts.Value(10).Optional(),
	})
	contractstest.Passes(t, c, map[string]any{"x": 5})
	contractstest.Fails(t, c, map[string]any{"x": 5, "y": 5}, "Expected value(10), but got 5")
	contractstest.Passes(t, c, map[string]any{"x": 5, "y": nil})
}

func TestObjectAcceptsStructs(t *testing.T) {
	type point struct {
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
		Label string  `json:"-"`
		note  string
	}
	c := contracts.Object(contracts.Fields{"x": contracts.Number, "y": contracts.Number}).Strict()
	contractstest.Passes(t, c, point{X: 1, Y: 2, note: "ignored"})
	contractstest.Passes(t, c, &point{X: 1, Y: 2})
	contractstest.Passes(t, c, contracts.InstanceFrom(map[string]any{"x": 1, "y": 2}))
	contractstest.Fails(t, c, (*point)(nil), "Expected object")
}

func TestObjectExtend(t *testing.T) {
	base := contracts.Object(contracts.Fields{"id": contracts.String}).Strict()
	ext := base.Extend(contracts.Fields{"name": contracts.String})

	require.Equal(t, []string{"id", "name"}, ext.FieldNames())
	require.True(t, ext.IsStrict())
	require.Equal(t, []string{"id"}, base.FieldNames())
	contractstest.Passes(t, ext, map[string]any{"id": "1", "name": "n"})
	contractstest.Fails(t, ext, map[string]any{"id": "1", "name": "n", "x": 1}, "extra field `x`")
	contractstest.Fails(t, base, map[string]any{"id": "1", "name": "n"}, "extra field `name`")

	strictThenExtend := contracts.Object(contracts.Fields{"id": contracts.String}).Strict().Extend(contracts.Fields{"name": contracts.String})
	extendThenStrict := contracts.Object(contracts.Fields{"id": contracts.String}).Extend(contracts.Fields{"name": contracts.String}).Strict()
	require.Equal(t, strictThenExtend.String(), extendThenStrict.String())
	require.Equal(t, strictThenExtend.FieldNames(), extendThenStrict.FieldNames())
	for _, c := range []*contracts.Contract{strictThenExtend, extendThenStrict} {
		require.True(t, c.IsStrict())
		contractstest.Passes(t, c, map[string]any{"id": "1", "name": "n"})
		contractstest.Fails(t, c, map[string]any{"id": "1", "name": "n", "x": 1}, "Found the extra field `x`")
		contractstest.Fails(t, c, map[string]any{"id": "1"}, "Field `name` required")
	}

	twice := base.Strict()
	require.Same(t, base, twice)
	require.Equal(t, base.String(), twice.Strict().String())

	contractstest.PanicsMisuse(t, func() { contracts.Number.Extend(contracts.Fields{}) }, "extend: only object contracts")
	contractstest.PanicsMisuse(t, func() { contracts.Number.Strict() }, "strict: only tuple and object contracts")
}

func TestWrapArrayReturnsFreshSequence(t *testing.T) {
	c := contracts.Array(contracts.Fn(contracts.Number))
	orig := []contracts.Func{identity()}

	w, err := c.Wrap(orig, "callbacks")
	require.NoError(t, err)
	wrapped := w.([]contracts.Func)

	_, err = wrapped[0].Call("x")
	contractstest.Violation(t, err, "for the 1st argument of the call.", "at position [0]")

	_, err = orig[0].Call("x")
	require.NoError(t, err)
}

func TestWrapHashLeavesCallerMapAlone(t *testing.T) {
	c := contracts.Hash(contracts.Fn(contracts.String))
	orig := map[string]any{"greet": identity()}

	w, err := c.Wrap(orig)
	require.NoError(t, err)
	wrapped := w.(map[string]any)

	_, err = wrapped["greet"].(contracts.Func).Call(1)
	contractstest.Violation(t, err, "Expected string, but got 1", "at position .greet")

	_, err = orig["greet"].(contracts.Func).Call(1)
	require.NoError(t, err)
}

func TestWrapTupleKeepsTail(t *testing.T) {
	c := contracts.Tuple(contracts.Fn(contracts.Number))
	w, err := c.Wrap([]any{identity(), "tail"})
	require.NoError(t, err)
	require.Equal(t, "tail", w.([]any)[1])
}

func TestWrapStructField(t *testing.T) {
	type handlers struct {
		OnSave contracts.Func `json:"onSave"`
		Name   string         `json:"name"`
	}
	c := contracts.Object(contracts.Fields{
		"onSave": contracts.Fn(contracts.String),
		"name":   contracts.String,
	})
	orig := handlers{OnSave: identity(), Name: "h"}

	w, err := c.Wrap(orig)
	require.NoError(t, err)
	h := w.(handlers)
	require.Equal(t, "h", h.Name)

	_, err = h.OnSave.Call(5)
	contractstest.Violation(t, err,
		"broke the contract on `onSave`:",
		"Expected string, but got 5\nfor the 1st argument of the call.\nat position .onSave\nin contract:\n",
	)
}
