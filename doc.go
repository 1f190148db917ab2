// Package contracts checks values against composable runtime contracts and
// wraps callables so that every later call is checked too.
//
// A contract is built from elementary contracts (String, Number, Value,
// Pred, ...), combinators (And, Or, Optional, Cyclic) and structural
// contracts (Array, Tuple, Hash, Object). Check verifies a value once. Wrap
// verifies it and, when the contract describes functions or constructors,
// returns a proxy that checks arguments, receivers and results on every call
// and blames whichever side broke the contract.
//
// Quick start:
//
//	account := contracts.Object(contracts.Fields{
//	    "owner":   contracts.String,
//	    "balance": contracts.Number,
//	    "tags":    contracts.Array(contracts.String).Optional(),
//	})
//	if err := account.Check(acct, "acct"); err != nil {
//	    return err
//	}
//
//	deposit := contracts.Fun(
//	    contracts.Arg("acct", account),
//	    contracts.Arg("amount", contracts.Number),
//	).Returns(contracts.Number)
//
//	wrapped, err := contracts.WrapValue(deposit, func(acct map[string]any, amount float64) (float64, error) {
//	    return acct["balance"].(float64) + amount, nil
//	}, "deposit")
//
// Plain Go funcs are proxied with their own type. When the func returns an
// error last, violations come back through it; otherwise they panic with a
// *ContractError. Func is the dynamically typed callable: it receives an
// explicit receiver and a variadic argument list, which is what ThisArg and
// ExtraArgs constrain.
//
// Constructors and Instances model prototype-based values: a Constructor owns a
// prototype Instance holding methods, and Constructs wraps one so that every
// instance it builds, and every method called on those instances, is checked.
//
// Violations are *ContractError (errors.Is(err, ErrViolation)); misuse of the
// package itself is *LibraryError (errors.Is(err, ErrMisuse)). Builders panic
// with a *LibraryError when given malformed arguments.
package contracts
