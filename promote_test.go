package contracts_test

import (
	"testing"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/contractstest"
	"github.com/stretchr/testify/require"
)

func TestToContractRoundTrip(t *testing.T) {
	c, err := contracts.ToContract(map[string]any{"a": 1, "b": "x"})
	require.NoError(t, err)
	require.Equal(t, contracts.KindObject, c.Kind())
	require.Equal(t, `c.object({a: c.value(1), b: c.value("x")})`, c.String())

	contractstest.Passes(t, c, map[string]any{"a": 1, "b": "x"})
	ce := contractstest.Fails(t, c, map[string]any{"a": "wrong", "b": "x"}, `Expected value(1), but got "wrong"`)
	require.Equal(t, ".a", ce.Path())
}

func TestToContractPromotion(t *testing.T) {
	require.Same(t, contracts.Number, contracts.MustContract(contracts.Number))

	arr := contracts.MustContract([]any{contracts.Number})
	require.Equal(t, "c.array(c.number)", arr.String())

	nested := contracts.MustContract(map[string]any{"tags": []any{contracts.String}, "meta": map[string]any{"v": 2}})
	contractstest.Passes(t, nested, map[string]any{"tags": []string{"a"}, "meta": map[string]any{"v": 2}})
	contractstest.Fails(t, nested, map[string]any{"tags": []string{"a"}, "meta": map[string]any{"v": 3}}, "Expected value(2)")

	_, err := contracts.ToContract([]any{})
	contractstest.Misuse(t, err, "exactly one element", "got 0 elements")
	_, err = contracts.ToContract([]any{1, 2})
	contractstest.Misuse(t, err, "got 2 elements")
	_, err = contracts.ToContract(map[string]any{"f": []any{}})
	contractstest.Misuse(t, err, `field "f"`)

	contractstest.PanicsMisuse(t, func() { contracts.MustContract([]int{}) }, "exactly one element")
}

func TestToContractFunctions(t *testing.T) {
	positive := contracts.MustContract(func(v any) bool { n, ok := v.(int); return ok && n > 0 })
	require.Equal(t, contracts.KindPredicate, positive.Kind())
	contractstest.Passes(t, positive, 3)
	contractstest.Fails(t, positive, -3, "Expected pred, but got -3")

	handler := func() {}
	same := contracts.MustContract(handler)
	require.Equal(t, "c.value(func)", same.String())
	contractstest.Passes(t, same, handler)
	contractstest.Fails(t, same, func(int) {}, "Expected value(func)")

	ctor := contracts.NewConstructor("Point", nil)
	isCtor := contracts.MustContract(ctor)
	require.Equal(t, "c.value(Point)", isCtor.String())
	contractstest.Passes(t, isCtor, ctor)
	contractstest.Fails(t, isCtor, contracts.NewConstructor("Point", nil), "Expected value(Point)")
}

func TestBuildersUseStrictPromotion(t *testing.T) {
	contractstest.Passes(t, contracts.Array(5), []int{5, 5})
	contractstest.Passes(t, contracts.Or("a", "b"), "b")
	contractstest.PanicsMisuse(t, func() { contracts.Array(map[string]any{"a": 1}) }, "build it with Object or ToContract")
}
