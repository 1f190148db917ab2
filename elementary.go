package contracts

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Pred builds a contract from a predicate. The contract is named "pred"; use
// Rename to give it a meaningful name.
func Pred(fn func(v any) bool) *Contract {
	if fn == nil {
		panic(NewLibraryError("pred", "expected a predicate function, got nil"))
	}
	return &Contract{kind: KindPredicate, name: "pred", pred: fn}
}

// builtin must not go through Pred: its misuse path renders contracts, and
// rendering refers back to Any.
func builtin(name string, fn func(v any) bool) *Contract {
	return &Contract{kind: KindPredicate, name: name, renamed: true, pred: fn}
}

var (
	// Any accepts every value, including missing ones.
	Any = builtin("any", func(any) bool { return true })
	// Nothing rejects every value.
	Nothing = builtin("nothing", func(any) bool { return false })
	// Falsy accepts nil, false, zero numbers, NaN and the empty string.
	Falsy = builtin("falsy", isFalsy)
	// Truthy accepts everything Falsy rejects.
	Truthy  = builtin("truthy", func(v any) bool { return !isFalsy(v) })
	String  = builtin("string", isString)
	Number  = builtin("number", isNumber)
	Integer = builtin("integer", isInteger)
	Bool    = builtin("bool", isBool)
	Regexp  = builtin("regexp", isRegexp)
	// Date accepts time.Time values and non-nil *time.Time.
	Date = builtin("date", isDate)
	// AnyFunction accepts every callable: Funcs, plain Go funcs and
	// constructors.
	AnyFunction = builtin("fun", isFunction)
	// Error accepts values implementing error.
	Error = builtin("error", isError)
	// AnyContract accepts contracts and any value that can be promoted to
	// one, which makes it the contract of fields holding sub-contracts.
	AnyContract = builtin("contract", isPromotable)
)

// Value accepts values equal to v. Numbers compare numerically across Go
// kinds; other values compare structurally.
func Value(v any) *Contract {
	c := Pred(func(data any) bool { return sameValue(v, data) }).Rename("value(" + literal(v) + ")")
	c.values = []any{v}
	return c
}

// OneOf accepts values equal to any of vs.
func OneOf(vs ...any) *Contract {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = literal(v)
	}
	c := Pred(func(data any) bool {
		return slices.ContainsFunc(vs, func(v any) bool { return sameValue(v, data) })
	}).Rename("oneOf(" + strings.Join(parts, ", ") + ")")
	c.values = slices.Clone(vs)
	return c
}

// Matches accepts strings matching re. Values that are not strings are
// rejected outright.
func Matches(re *regexp.Regexp) *Contract {
	if re == nil {
		panic(NewLibraryError("matches", "expected a regular expression, got nil"))
	}
	c := Pred(func(v any) bool {
		return isString(v) && re.MatchString(stringOf(v))
	}).Rename("matches(" + re.String() + ")")
	c.pattern = re.String()
	return c
}

// IsA accepts instances of parent, which is either a *Constructor (prototype
// chain membership) or a reflect.Type (identical type, or implementation of
// an interface type).
func IsA(parent any) *Contract {
	switch p := parent.(type) {
	case *Constructor:
		if p == nil {
			break
		}
		return Pred(func(v any) bool {
			o, ok := v.(*Instance)
			return ok && o.InstanceOf(p)
		}).Rename("isA(" + p.Name() + ")")
	case reflect.Type:
		if p == nil {
			break
		}
		return Pred(func(v any) bool {
			if v == nil {
				return false
			}
			t := reflect.TypeOf(v)
			if p.Kind() == reflect.Interface {
				return t.Implements(p)
			}
			return t == p
		}).Rename("isA(" + p.String() + ")")
	}
	panic(NewLibraryError("isA", fmt.Sprintf("expected a *Constructor or reflect.Type, got %T", parent)))
}

// QuacksLike accepts values carrying every field of the object contract
// parent, regardless of their contracts.
func QuacksLike(parent *Contract, name string) *Contract {
	r := parent.target()
	if r == nil || r.kind != KindObject {
		panic(NewLibraryError("quacksLike", "expected an object contract, got "+parent.String()))
	}
	names := r.FieldNames()
	return Pred(func(v any) bool {
		rec, ok := asRecord(v)
		if !ok {
			return false
		}
		for _, n := range names {
			if _, ok := rec.get(n); !ok {
				return false
			}
		}
		return true
	}).Rename("quacksLike(" + name + ")")
}

func literal(v any) string {
	if isString(v) {
		return strconv.Quote(stringOf(v))
	}
	if v == nil {
		return "nil"
	}
	if c, ok := v.(*Constructor); ok {
		return c.Name()
	}
	if isFunction(v) {
		return "func"
	}
	return fmt.Sprint(v)
}

// builtinNames is filled once, while the package initializes, and read-only
// afterwards.
var builtinNames = func() map[string]struct{} {
	names := []string{
		"any", "nothing", "falsy", "truthy", "string", "number", "integer",
		"bool", "regexp", "date", "fun", "error", "contract", "pred", "value",
		"oneOf", "matches", "isA", "quacksLike", "and", "silentAnd", "or",
		"cyclic", "forwardRef", "array", "tuple", "hash", "object", "fn",
		"method", "constructs", "optional",
	}
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}()

// BuiltinNames lists the names reserved by the package's own contracts.
func BuiltinNames() []string {
	out := make([]string, 0, len(builtinNames))
	for n := range builtinNames {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// IsBuiltinName reports whether name is reserved by the package's own
// contracts.
func IsBuiltinName(name string) bool {
	_, ok := builtinNames[name]
	return ok
}
