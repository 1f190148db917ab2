package contracts

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Kind enumerates the shapes a contract can take.
type Kind int

const (
	KindPredicate Kind = iota
	KindAnd
	KindOr
	KindCyclic
	KindArray
	KindTuple
	KindHash
	KindObject
	KindFunction
	KindConstructor
)

func (k Kind) String() string {
	switch k {
	case KindPredicate:
		return "predicate"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindCyclic:
		return "cyclic"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	case KindHash:
		return "hash"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindConstructor:
		return "constructor"
	}
	return "unknown"
}

// Contract describes the values acceptable at some boundary and, for callables
// and containers of callables, how to keep checking them after they cross it.
//
// Contracts are immutable: every method that refines a contract returns a new
// one and leaves the receiver untouched, so a contract can be shared freely
// between goroutines and reused as the base of many variants. The one
// exception is closing a cyclic placeholder, which is meant to happen once
// while contracts are being defined.
type Contract struct {
	kind     Kind
	name     string
	renamed  bool
	optional bool
	wrapping bool
	thing    string
	doc      []string
	category string

	pred     func(any) bool
	values   []any
	pattern  string
	children []*Contract
	silent   bool
	item     *Contract
	fields   []field
	strict   bool
	fn       *fnSpec
	cycle    *cycleRef
}

type field struct {
	name string
	c    *Contract
}

type cycleRef struct {
	target *Contract
}

func (c *Contract) derive(update func(cp *Contract)) *Contract {
	cp := *c
	update(&cp)
	return &cp
}

// Kind reports the shape of the contract.
func (c *Contract) Kind() Kind { return c.kind }

// Name is the short name used in "Expected <name>" messages.
func (c *Contract) Name() string { return c.name }

// IsOptional reports whether missing values are accepted.
func (c *Contract) IsOptional() bool { return c.optional }

// NeedsWrapping reports whether values must be wrapped rather than checked:
// true for function and constructor contracts and anything containing one.
func (c *Contract) NeedsWrapping() bool { return c.wrapping }

// ThingName is the label given to the value under contract, such as an
// argument name.
func (c *Contract) ThingName() string { return c.thing }

// Doc returns the documentation lines attached with WithDoc.
func (c *Contract) Doc() []string { return slices.Clone(c.doc) }

// Category returns the documentation category attached with WithCategory.
func (c *Contract) Category() string { return c.category }

// Values returns the accepted values of a Value or OneOf contract, and nil
// for every other contract.
func (c *Contract) Values() []any { return slices.Clone(c.values) }

// Pattern returns the source of a Matches contract's regular expression.
func (c *Contract) Pattern() string { return c.pattern }

// Resolve follows cyclic placeholders to the contract they were closed with.
// Contracts that are not placeholders resolve to themselves; a placeholder
// that was never closed resolves to nil.
func (c *Contract) Resolve() *Contract { return c.target() }

// Rename returns a copy displayed as name.
func (c *Contract) Rename(name string) *Contract {
	return c.derive(func(cp *Contract) {
		cp.name = name
		cp.renamed = true
	})
}

// Optional returns a copy that also accepts missing values.
func (c *Contract) Optional() *Contract {
	if c.optional {
		return c
	}
	return c.derive(func(cp *Contract) { cp.optional = true })
}

// WithDoc returns a copy carrying documentation lines.
func (c *Contract) WithDoc(lines ...string) *Contract {
	return c.derive(func(cp *Contract) { cp.doc = slices.Clone(lines) })
}

// WithCategory returns a copy filed under a documentation category.
func (c *Contract) WithCategory(category string) *Contract {
	return c.derive(func(cp *Contract) { cp.category = category })
}

// WithThingName returns a copy whose violations name the value thing.
func (c *Contract) WithThingName(thing string) *Contract {
	return c.derive(func(cp *Contract) { cp.thing = thing })
}

func (c *Contract) isFunctionLike() bool {
	r := c.target()
	return r != nil && (r.kind == KindFunction || r.kind == KindConstructor)
}

// target follows closed cyclic placeholders. It returns nil for a placeholder
// that was never closed.
func (c *Contract) target() *Contract {
	for c != nil && c.kind == KindCyclic {
		c = c.cycle.target
	}
	return c
}

func (c *Contract) resolve(ctx *checkContext) (*Contract, error) {
	r := c.target()
	if r == nil {
		le := newLibraryError(c.name, ctx, "the contract was used before closeCycle() was called on it")
		le.fullContract().done()
		return nil, le
	}
	return r, nil
}

// Check verifies data against the contract. The optional name labels data in
// error messages. Contracts that need wrapping cannot be checked; Check then
// returns a *LibraryError.
func (c *Contract) Check(data any, name ...string) error {
	ctx := newContext(thingName(name), data, c, false)
	return checkContract(c, data, ctx)
}

// Wrap verifies data against the contract and, when the contract needs
// wrapping, returns a proxy that keeps enforcing it. Otherwise data itself is
// returned.
func (c *Contract) Wrap(data any, name ...string) (any, error) {
	ctx := newContext(thingName(name), data, c, true)
	return checkWrap(c, data, ctx)
}

// MustWrap is like Wrap but panics on failure. It suits package-level
// declarations of wrapped functions.
func (c *Contract) MustWrap(data any, name ...string) any {
	w, err := c.Wrap(data, name...)
	if err != nil {
		panic(err)
	}
	return w
}

// CheckValue checks v against c and returns v itself.
func CheckValue[T any](c *Contract, v T, name ...string) (T, error) {
	if err := c.Check(v, name...); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// WrapValue wraps v and returns the proxy with v's static type.
func WrapValue[T any](c *Contract, v T, name ...string) (T, error) {
	var zero T
	w, err := c.Wrap(v, name...)
	if err != nil {
		return zero, err
	}
	if w == nil {
		return zero, nil
	}
	t, ok := w.(T)
	if !ok {
		return zero, newLibraryError("wrap", nil, "the wrapped value changed type")
	}
	return t, nil
}

// Check promotes contract with ToContract and checks data against it.
func Check(contract any, data any, name ...string) error {
	c, err := ToContract(contract)
	if err != nil {
		return err
	}
	return c.Check(data, name...)
}

// Wrap promotes contract with ToContract and wraps data.
func Wrap(contract any, data any, name ...string) (any, error) {
	c, err := ToContract(contract)
	if err != nil {
		return nil, err
	}
	return c.Wrap(data, name...)
}

func thingName(name []string) string {
	if len(name) == 0 {
		return ""
	}
	return name[0]
}

func checkContract(c *Contract, data any, ctx *checkContext) error {
	if c.optional && isMissing(data) {
		return nil
	}
	r, err := c.resolve(ctx)
	if err != nil {
		return err
	}
	if !r.firstCheck(data) {
		return ctx.fail(newContractError(ctx, "").expect(r.name, data).fullContractAndValue())
	}
	if r.wrapping && !ctx.wrapping {
		le := newLibraryError("check", ctx, "This contract requires wrapping. Call wrap() instead and retain the wrapped result.")
		le.fullContract().done()
		return le
	}
	return r.nestedCheck(data, ctx)
}

func wrapContract(c *Contract, data any, ctx *checkContext) (any, error) {
	if c.optional && isMissing(data) {
		return data, nil
	}
	r, err := c.resolve(ctx)
	if err != nil {
		return nil, err
	}
	thing := c.thing
	if thing == "" {
		thing = r.thing
	}
	return r.wrapValue(data, ctx, thing)
}

func checkWrap(c *Contract, data any, ctx *checkContext) (any, error) {
	if err := checkContract(c, data, ctx); err != nil {
		return nil, err
	}
	if !c.wrapping {
		return data, nil
	}
	if ctx.wrappedAt == nil {
		ctx.wrappedAt = captureCallSite()
		ctx.wrapID = uuid.NewString()
		logEvent(ctx, "contract.wrap")
	}
	return wrapContract(c, data, ctx)
}

func (ctx *checkContext) checkNext(c *Contract, v any, f frame) error {
	if f.kind != frameSilent {
		ctx.push(f)
		defer ctx.pop()
	}
	return checkContract(c, v, ctx)
}

func (ctx *checkContext) wrapNext(c *Contract, v any, f frame) (any, error) {
	if !c.wrapping {
		return v, nil
	}
	if f.kind != frameSilent {
		ctx.push(f)
		defer ctx.pop()
	}
	return wrapContract(c, v, ctx)
}

func (ctx *checkContext) checkWrapNext(c *Contract, v any, f frame) (any, error) {
	if f.kind != frameSilent {
		ctx.push(f)
		defer ctx.pop()
	}
	return checkWrap(c, v, ctx)
}

func (c *Contract) firstCheck(data any) bool {
	switch c.kind {
	case KindPredicate:
		return c.pred(data)
	case KindAnd, KindOr:
		return true
	case KindArray, KindTuple:
		_, ok := asSequence(data)
		return ok
	case KindHash, KindObject:
		_, ok := asRecord(data)
		return ok
	case KindFunction:
		_, isCtor := data.(*Constructor)
		return isFunction(data) && !isCtor
	case KindConstructor:
		k, ok := data.(*Constructor)
		return ok && k != nil
	}
	return false
}

func (c *Contract) nestedCheck(data any, ctx *checkContext) error {
	switch c.kind {
	case KindAnd:
		return c.checkAnd(data, ctx)
	case KindOr:
		_, err := c.choose(data, ctx)
		return err
	case KindArray:
		return c.checkArray(data, ctx)
	case KindTuple:
		return c.checkTuple(data, ctx)
	case KindHash:
		return c.checkHash(data, ctx)
	case KindObject:
		return c.checkObject(data, ctx)
	case KindConstructor:
		return c.checkPrototype(data, ctx)
	}
	return nil
}

func (c *Contract) wrapValue(data any, ctx *checkContext, thing string) (any, error) {
	switch c.kind {
	case KindAnd:
		le := newLibraryError("wrap", ctx, "Cannot wrap an `and` contract")
		le.fullContract().done()
		return nil, le
	case KindOr:
		chosen, err := c.choose(data, ctx)
		if err != nil {
			return nil, err
		}
		return ctx.wrapNext(chosen, data, orFrame)
	case KindArray:
		return c.wrapArray(data, ctx)
	case KindTuple:
		return c.wrapTuple(data, ctx)
	case KindHash:
		return c.wrapHash(data, ctx)
	case KindObject:
		return c.wrapObject(data, ctx)
	case KindFunction:
		return c.wrapFunction(data, ctx, thing)
	case KindConstructor:
		return c.wrapConstructor(data, ctx, thing)
	}
	le := newLibraryError("wrap", ctx, "The contract "+c.String()+" is not wrappable")
	le.fullContract().done()
	return nil, le
}

// String renders the contract the way it would be written with this package,
// for instance c.array(c.number).
func (c *Contract) String() string {
	s := c.baseString()
	if c.optional {
		return "c.optional(" + s + ")"
	}
	return s
}

func (c *Contract) baseString() string {
	if c.renamed {
		return "c." + c.name
	}
	switch c.kind {
	case KindAnd, KindOr, KindTuple:
		s := "c." + c.name + "(" + joinContracts(c.children) + ")"
		if c.strict {
			s += ".strict()"
		}
		return s
	case KindCyclic:
		if t := c.cycle.target; t != nil && t.renamed {
			return "c." + t.name
		}
		return "c." + c.name
	case KindArray, KindHash:
		return "c." + c.name + "(" + c.item.String() + ")"
	case KindObject:
		s := "c.object(" + fieldsString(c.fields) + ")"
		if c.strict {
			s += ".strict()"
		}
		return s
	case KindFunction:
		return c.fnString()
	case KindConstructor:
		return c.fnString() + ".constructs(" + fieldsString(c.fields) + ")"
	}
	return "c." + c.name
}

func joinContracts(cs []*Contract) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

func fieldsString(fs []field) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = f.name + ": " + f.c.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func anyWrapping(cs ...*Contract) bool {
	for _, c := range cs {
		if c != nil && c.wrapping {
			return true
		}
	}
	return false
}
