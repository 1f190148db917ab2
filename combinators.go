package contracts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// And accepts values accepted by every one of cs, checked in order. The first
// failure is reported. And contracts cannot be wrapped.
func And(cs ...any) *Contract {
	children := autoToContracts("and", cs)
	return &Contract{kind: KindAnd, name: "and", children: children, wrapping: anyWrapping(children...)}
}

// SilentAnd is And without the branch index in error paths.
func SilentAnd(cs ...any) *Contract {
	children := autoToContracts("silentAnd", cs)
	return &Contract{kind: KindAnd, name: "silentAnd", children: children, silent: true, wrapping: anyWrapping(children...)}
}

// Or accepts values accepted by any of cs. Alternatives that need no wrapping
// are tried first, in order; at most one alternative may need wrapping and it
// is tried last.
func Or(cs ...any) *Contract {
	all := autoToContracts("or", cs)
	var plain, wrapping []*Contract
	for _, c := range all {
		if c.wrapping {
			wrapping = append(wrapping, c)
		} else {
			plain = append(plain, c)
		}
	}
	if len(wrapping) > 1 {
		panic(NewLibraryError("or", "Or-contracts can only take at most one wrapping contracts, got "+joinContracts(wrapping)))
	}
	return &Contract{kind: KindOr, name: "or", children: append(plain, wrapping...), wrapping: len(wrapping) > 0}
}

// Cyclic returns a placeholder for a contract that refers to itself. Close it
// with CloseCycle once the full contract can be built. The placeholder needs
// wrapping unless told otherwise.
func Cyclic(needsWrapping ...bool) *Contract {
	w := true
	if len(needsWrapping) > 0 {
		w = needsWrapping[0]
	}
	return &Contract{kind: KindCyclic, name: "cyclic", wrapping: w, cycle: &cycleRef{}}
}

// ForwardRef is Cyclic for contracts defined later in the program. It does not
// need wrapping unless told otherwise. Resolve it with SetRef.
func ForwardRef(needsWrapping ...bool) *Contract {
	w := false
	if len(needsWrapping) > 0 {
		w = needsWrapping[0]
	}
	return &Contract{kind: KindCyclic, name: "forwardRef", wrapping: w, cycle: &cycleRef{}}
}

// CloseCycle makes the placeholder, and every copy derived from it, behave as
// full. The wrapping requirement of full must match the one the placeholder
// was created with.
func (c *Contract) CloseCycle(full *Contract) *Contract {
	if c.kind != KindCyclic {
		panic(NewLibraryError("closeCycle", "expected a cyclic contract, got "+c.String()))
	}
	if full == nil {
		panic(NewLibraryError("closeCycle", "expected a contract, got nil"))
	}
	if c.cycle.target != nil {
		panic(NewLibraryError("closeCycle", "the cycle was already closed"))
	}
	if full.wrapping != c.wrapping {
		panic(NewLibraryError("closeCycle", fmt.Sprintf(
			"the cyclic contract was created with needsWrapping=%t but closed with a contract with needsWrapping=%t",
			c.wrapping, full.wrapping)))
	}
	c.cycle.target = full
	return c
}

// SetRef is CloseCycle for forward references.
func (c *Contract) SetRef(full *Contract) *Contract {
	return c.CloseCycle(full)
}

func (c *Contract) checkAnd(data any, ctx *checkContext) error {
	for i, child := range c.children {
		f := andFrame(i)
		if c.silent {
			f = silentFrame
		}
		if err := ctx.checkNext(child, data, f); err != nil {
			return err
		}
	}
	return nil
}

type branchFailure struct {
	c   *Contract
	err error
}

// choose returns the first alternative accepting data.
func (c *Contract) choose(data any, ctx *checkContext) (*Contract, error) {
	chosen, failures, err := c.tryAlternatives(data, ctx)
	if err != nil || chosen != nil {
		return chosen, err
	}
	var b strings.Builder
	b.WriteString("none of the contracts passed:\n")
	for _, child := range c.children {
		b.WriteString(" - " + child.String() + "\n")
	}
	b.WriteString("\nThe failures were:\n")
	for i, f := range failures {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("[" + strconv.Itoa(i+1) + "] --\n" + f.c.String() + ": " + strings.TrimSpace(f.err.Error()))
	}
	b.WriteString("\n")
	return nil, ctx.fail(newContractError(ctx, b.String()).fullContractAndValue())
}

func (c *Contract) tryAlternatives(data any, ctx *checkContext) (*Contract, []branchFailure, error) {
	ctx.trial++
	defer func() { ctx.trial-- }()

	var failures []branchFailure
	for _, child := range c.children {
		err := ctx.checkNext(child, data, silentFrame)
		if err == nil {
			return child, nil, nil
		}
		var le *LibraryError
		if errors.As(err, &le) {
			return nil, nil, err
		}
		failures = append(failures, branchFailure{c: child, err: err})
	}
	return nil, failures, nil
}
