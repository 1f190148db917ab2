package docs

import (
	c "github.com/ggoodman/contracts"
)

// BuiltinModule is the module name under which Builtin documents the
// contracts package itself.
const BuiltinModule = "contracts"

// Builtin returns a registry documenting the contracts package: its ready-made
// contracts as values, and its builders as function contracts describing
// their parameters.
func Builtin() *Registry {
	r := NewRegistry()
	r.DocumentModule(BuiltinModule,
		"Runtime contracts for Go values.",
		"Build contracts from the values and builders below, then Check plain data or Wrap values that must keep being checked.")

	built := c.AnyContract
	fnContract := c.AnyContract.Rename("functionContract")
	doc := func(name string, k *c.Contract, lines ...string) {
		r.DocumentValue(BuiltinModule, name, k.WithDoc(lines...))
	}

	r.DocumentCategory(BuiltinModule, "Checking",
		"Entry points that apply a contract to a value.")
	doc("Check", c.Fun(c.Arg("contract", c.AnyContract), c.Arg("data", c.Any), c.Arg("name", c.String.Optional())).Returns(c.Error.Optional()),
		"Verifies that data satisfies contract and reports a *ContractError when it does not.",
		"Contracts that need wrapping cannot be checked; they report a *LibraryError.")
	doc("Wrap", c.Fun(c.Arg("contract", c.AnyContract), c.Arg("data", c.Any), c.Arg("name", c.String.Optional())).Returns(c.Any),
		"Like Check, then returns data wrapped so that later calls keep being checked.",
		"Data that holds nothing callable is returned unchanged.")
	doc("SetErrorMessageInspectionDepth", c.Fun(c.Arg("depth", c.Integer)),
		"Bounds how deep values are rendered in error messages. Unlimited removes the bound.")

	r.DocumentCategory(BuiltinModule, "Elementary",
		"Contracts on single values.")
	doc("Any", c.Any, "Accepts every value.")
	doc("Nothing", c.Nothing, "Rejects every value.")
	doc("Falsy", c.Falsy, "Accepts nil, false, zero numbers, NaN and the empty string.")
	doc("Truthy", c.Truthy, "Accepts every value Falsy rejects.")
	doc("String", c.String, "Accepts strings.")
	doc("Number", c.Number, "Accepts numbers of any Go numeric kind.")
	doc("Integer", c.Integer, "Accepts numbers without a fractional part.")
	doc("Bool", c.Bool, "Accepts true and false.")
	doc("Regexp", c.Regexp, "Accepts compiled regular expressions.")
	doc("Date", c.Date, "Accepts time.Time values.")
	doc("Error", c.Error, "Accepts values implementing error.")
	doc("AnyFunction", c.AnyFunction,
		"Accepts every callable. Use Fn, Fun or Method to constrain arguments and results.")
	doc("AnyContract", c.AnyContract,
		"Accepts contracts and any value ToContract can promote to one.")
	doc("Pred", c.Fun(c.Arg("pred", c.Fn(c.Any).Returns(c.Bool))).Returns(built),
		"Accepts the values for which pred returns true.")
	doc("Value", c.Fn(c.Any).Returns(built), "Accepts only the given value.")
	doc("OneOf", c.Fn().ExtraArgs().Returns(built), "Accepts any of the given values.")
	doc("Matches", c.Fn(c.Regexp).Returns(built), "Accepts strings matching the given regular expression.")
	doc("IsA", c.Fun(c.Arg("parent", c.Any)).Returns(built),
		"Accepts instances of a constructor, or values of a Go type.")
	doc("QuacksLike", c.Fun(c.Arg("parent", c.AnyContract), c.Arg("name", c.String)).Returns(built),
		"Accepts records carrying at least the fields of parent.")

	r.DocumentCategory(BuiltinModule, "Combinators",
		"Contracts built from other contracts.")
	doc("And", c.Fn().ExtraArgs(c.Array(c.AnyContract)).Returns(built), "Accepts values passing every given contract.")
	doc("SilentAnd", c.Fn().ExtraArgs(c.Array(c.AnyContract)).Returns(built),
		"Like And, without mentioning the and contract in error messages.")
	doc("Or", c.Fn().ExtraArgs(c.Array(c.AnyContract)).Returns(built),
		"Accepts values passing at least one of the given contracts.",
		"At most one alternative may need wrapping. It is tried last, and wraps the value when it is the only one that passes.")
	doc("Cyclic", c.Fun(c.Arg("needsWrapping", c.Bool.Optional())).Returns(built),
		"Returns a placeholder for a contract that refers to itself. Close it with CloseCycle.",
		"needsWrapping defaults to true and must match the contract the cycle is closed with.")
	doc("ForwardRef", c.Fun(c.Arg("needsWrapping", c.Bool.Optional())).Returns(built),
		"Cyclic with needsWrapping defaulting to false. Resolve it with SetRef.")

	r.DocumentCategory(BuiltinModule, "Structural",
		"Contracts on sequences and records.")
	doc("Array", c.Fun(c.Arg("item", c.AnyContract)).Returns(built),
		"Accepts sequences of any length whose elements pass item.")
	doc("Tuple", c.Fn().ExtraArgs(c.Array(c.AnyContract)).Returns(built),
		"Accepts sequences with at least one element per contract, each passing its contract.",
		"Further elements are not checked unless the tuple is Strict.")
	doc("Object", c.Fun(c.Arg("fields", c.Hash(c.AnyContract).Optional())).Returns(built),
		"Accepts records having every non-optional field, each passing its contract.",
		"Other fields are not checked unless the object is Strict.")
	doc("Hash", c.Fun(c.Arg("value", c.AnyContract)).Returns(built),
		"Accepts records whose fields all pass value.")
	doc("ToContract", c.Fn(c.Any).Returns(built),
		"Promotes a value to a contract: maps become objects, one-element sequences arrays, func(any) bool predicates, other values Value contracts.")
	doc("FromExample", c.Fun(c.Arg("value", c.Any), c.Arg("withQuestionMark", c.Bool.Optional())).Returns(built),
		"Returns a contract accepting values shaped like value.",
		"With withQuestionMark, map keys starting with ? become optional fields.")

	r.DocumentCategory(BuiltinModule, "Functions",
		"Contracts on callables. They need wrapping.")
	doc("Fn", c.Fn().ExtraArgs(c.Array(c.AnyContract)).Returns(fnContract),
		"Accepts functions called with one argument per contract, each passing its contract.",
		"Optional arguments may only be followed by optional arguments.")
	doc("Fun", c.Fn().ExtraArgs(c.Array(c.Hash(c.AnyContract))).Returns(fnContract),
		"Like Fn, with each argument given as a one-field map naming it.")
	doc("Method", c.Fun(c.Arg("this", c.AnyContract)).ExtraArgs(c.Array(c.Hash(c.AnyContract))).Returns(fnContract),
		"Like Fun, and the receiver of every call must pass this.")
	return r
}
