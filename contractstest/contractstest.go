// Package contractstest holds assertions for code that builds contracts, so
// that packages defining contracts for their own values can test them in a few
// lines.
package contractstest

import (
	"errors"
	"testing"

	"github.com/ggoodman/contracts"
	"github.com/stretchr/testify/require"
)

// Passes asserts that c accepts v and returns the value Check or Wrap handed
// back. Contracts that need wrapping are wrapped.
func Passes(t testing.TB, c *contracts.Contract, v any, name ...string) any {
	t.Helper()
	if c.NeedsWrapping() {
		w, err := c.Wrap(v, name...)
		require.NoError(t, err, "wrapping with %s", c)
		return w
	}
	require.NoError(t, c.Check(v, name...), "checking with %s", c)
	return v
}

// Fails asserts that checking v against c reports a violation whose message
// contains every one of want.
func Fails(t testing.TB, c *contracts.Contract, v any, want ...string) *contracts.ContractError {
	t.Helper()
	return Violation(t, c.Check(v), want...)
}

// WrapFails is Fails for Wrap.
func WrapFails(t testing.TB, c *contracts.Contract, v any, want ...string) *contracts.ContractError {
	t.Helper()
	w, err := c.Wrap(v)
	require.Nil(t, w, "a failed wrap returns no value")
	return Violation(t, err, want...)
}

// Violation asserts that err is a contract violation, not a misuse, whose
// message contains every one of want.
func Violation(t testing.TB, err error, want ...string) *contracts.ContractError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, contracts.ErrViolation)
	require.NotErrorIs(t, err, contracts.ErrMisuse, "expected a violation, got misuse: %v", err)
	var ce *contracts.ContractError
	require.True(t, errors.As(err, &ce))
	for _, w := range want {
		require.Contains(t, err.Error(), w)
	}
	return ce
}

// Misuse asserts that err reports misuse of the contracts package whose
// message contains every one of want.
func Misuse(t testing.TB, err error, want ...string) *contracts.LibraryError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, contracts.ErrMisuse)
	var le *contracts.LibraryError
	require.True(t, errors.As(err, &le))
	for _, w := range want {
		require.Contains(t, err.Error(), w)
	}
	return le
}

// PanicsMisuse asserts that fn panics with a *LibraryError whose message
// contains every one of want.
func PanicsMisuse(t testing.TB, fn func(), want ...string) (le *contracts.LibraryError) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "expected the panic value to be an error, got %T", r)
		le = Misuse(t, err, want...)
	}()
	fn()
	return nil
}

// Case is one row of a table run by Run.
type Case struct {
	Name     string
	Contract *contracts.Contract
	Value    any
	// Pass is whether Value satisfies Contract.
	Pass bool
	// Contains lists substrings of the violation message when Pass is false.
	Contains []string
}

// Run checks every case as a subtest.
func Run(t *testing.T, cases []Case) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Pass {
				Passes(t, tc.Contract, tc.Value)
				return
			}
			Fails(t, tc.Contract, tc.Value, tc.Contains...)
		})
	}
}
