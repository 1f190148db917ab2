package contracts

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

type fnSpec struct {
	named  bool
	args   []*Contract
	this   *Contract
	result *Contract
	extra  *Contract
}

// Fn describes callables by the contracts of their positional arguments.
// Optional arguments may only be followed by optional arguments. The result
// and receiver are unconstrained until Returns and ThisArg say otherwise.
func Fn(args ...any) *Contract {
	return newFunction("fn", autoToContracts("fn", args), false)
}

// Fun is Fn with named arguments: every spec is a one-key map from the
// argument's name to its contract, as built by Arg. Names show up in error
// messages.
func Fun(specs ...any) *Contract {
	return newFunction("fun", namedArgs("fun", specs), true)
}

// Method is Fun with a contract on the receiver.
func Method(this any, specs ...any) *Contract {
	if this == nil {
		panic(NewLibraryError("method", "expected a contract for the receiver, got nil"))
	}
	c := newFunction("method", namedArgs("method", specs), true)
	c.fn.this = autoToContract1("method", this)
	return c
}

// Arg names a Fun or Method argument.
func Arg(name string, c any) map[string]any {
	return map[string]any{name: c}
}

func newFunction(name string, args []*Contract, named bool) *Contract {
	seenOptional := false
	for i, a := range args {
		if a.optional {
			seenOptional = true
		} else if seenOptional {
			panic(NewLibraryError(name, "The non-optional "+ith(i)+" argument cannot follow an optional argument."))
		}
	}
	return &Contract{kind: KindFunction, name: name, wrapping: true, fn: &fnSpec{named: named, args: args}}
}

func namedArgs(who string, specs []any) []*Contract {
	out := make([]*Contract, len(specs))
	for i, spec := range specs {
		if c, ok := spec.(*Contract); ok {
			panic(NewLibraryError(who, "expected a one-field map specifying the name and the contract of the "+ith(i)+
				" argument, but got a contract "+c.String()))
		}
		m, ok := spec.(map[string]any)
		if !ok {
			panic(NewLibraryError(who, "expected a map with exactly one key to specify the name of the "+ith(i)+
				" argument, but got "+inspect(spec)))
		}
		if len(m) != 1 {
			panic(NewLibraryError(who, "expected exactly one key to specify the name of the "+ith(i)+
				" argument, but got "+strconv.Itoa(len(m))))
		}
		for name, v := range m {
			out[i] = autoToContract1(who, v).WithThingName(name)
		}
	}
	return out
}

func (c *Contract) deriveFn(who string, update func(s *fnSpec)) *Contract {
	if c.kind != KindFunction && c.kind != KindConstructor {
		panic(NewLibraryError(who, "expected a function contract, got "+c.String()))
	}
	return c.derive(func(cp *Contract) {
		spec := *c.fn
		update(&spec)
		cp.fn = &spec
		cp.renamed = false
	})
}

// ThisArg returns a copy requiring the receiver of calls to satisfy this.
func (c *Contract) ThisArg(this any) *Contract {
	tc := autoToContract1("thisArg", this)
	return c.deriveFn("thisArg", func(s *fnSpec) { s.this = tc })
}

// Returns returns a copy requiring results to satisfy result.
func (c *Contract) Returns(result any) *Contract {
	rc := autoToContract1("returns", result)
	return c.deriveFn("returns", func(s *fnSpec) { s.result = rc })
}

// ExtraArgs returns a copy accepting arguments beyond the declared ones. They
// are checked together, as a []any, against extra (by default an array of
// anything).
func (c *Contract) ExtraArgs(extra ...any) *Contract {
	ec := Array(Any)
	if len(extra) > 0 {
		ec = autoToContract1("extraArgs", extra[0])
	}
	return c.deriveFn("extraArgs", func(s *fnSpec) { s.extra = ec })
}

// Args returns the argument contracts of a function contract.
func (c *Contract) Args() []*Contract {
	if r := c.target(); r != nil && r.fn != nil {
		out := make([]*Contract, len(r.fn.args))
		copy(out, r.fn.args)
		return out
	}
	return nil
}

// Result returns the result contract of a function contract.
func (c *Contract) Result() *Contract {
	if r := c.target(); r != nil && r.fn != nil {
		return r.fn.resultContract()
	}
	return nil
}

func (s *fnSpec) resultContract() *Contract {
	if s.result == nil {
		return Any
	}
	return s.result
}

func (c *Contract) fnString() string {
	s := c.fn
	var b strings.Builder
	b.WriteString("c." + c.name + "(")
	if s.this != nil && s.this != Any {
		b.WriteString("this: " + s.this.String() + ", ")
	}
	for i, a := range s.args {
		if i > 0 {
			b.WriteString(", ")
		}
		if s.named {
			b.WriteString("{ " + a.thing + ": " + a.String() + " }")
		} else {
			b.WriteString(a.String())
		}
	}
	if s.extra != nil {
		b.WriteString("..." + s.extra.String())
	}
	b.WriteString(" -> " + s.resultContract().String() + ")")
	return b.String()
}

func (s *fnSpec) arityError(n int) string {
	required := 0
	for _, a := range s.args {
		if !a.optional {
			required++
		}
	}
	optional := len(s.args) - required
	if optional == 0 && s.extra == nil {
		if n != required {
			return fmt.Sprintf("Wrong number of arguments, expected %d but got %d", required, n)
		}
		return ""
	}
	if n < required {
		return fmt.Sprintf("Too few arguments, expected at least %d but got %d", required, n)
	}
	if s.extra == nil && n > len(s.args) {
		return fmt.Sprintf("Too many arguments, expected at most %d but got %d", len(s.args), n)
	}
	return ""
}

// checkCall runs the input side of a call: arity, receiver, declared
// arguments, then extra arguments. The caller is blamed for all of them.
func (c *Contract) checkCall(here *checkContext, this any, args []any) (any, []any, error) {
	s := c.fn
	here.blameMe = !here.blameMe
	defer func() { here.blameMe = !here.blameMe }()

	if msg := s.arityError(len(args)); msg != "" {
		return nil, nil, here.fail(newContractError(here, msg).fullContract())
	}

	wThis := this
	if s.this != nil {
		w, err := here.checkWrapNext(s.this, this, thisFrame)
		if err != nil {
			return nil, nil, err
		}
		wThis = w
	}

	declared := min(len(args), len(s.args))
	wArgs := make([]any, 0, len(args))
	for i := 0; i < declared; i++ {
		a := s.args[i]
		w, err := here.checkWrapNext(a, args[i], argumentFrame(i, a.thing))
		if err != nil {
			return nil, nil, err
		}
		wArgs = append(wArgs, w)
	}

	if s.extra != nil {
		extras := make([]any, len(args)-declared)
		copy(extras, args[declared:])
		w, err := here.checkWrapNext(s.extra, extras, extrasFrame)
		if err != nil {
			return nil, nil, err
		}
		if rv, ok := asSequence(w); ok {
			wArgs = append(wArgs, sequenceItems(rv)...)
		} else {
			wArgs = append(wArgs, extras...)
		}
	}
	return wThis, wArgs, nil
}

// invoke runs one checked call. Errors returned by the callee itself are
// passed through and skip the result check.
func (c *Contract) invoke(here *checkContext, this any, args []any, call func(this any, args []any) (any, error)) (any, error) {
	wThis, wArgs, err := c.checkCall(here, this, args)
	if err != nil {
		return nil, err
	}
	res, err := call(wThis, wArgs)
	if err != nil {
		return nil, err
	}
	if c.fn.result == nil {
		return res, nil
	}
	return here.checkWrapNext(c.fn.result, res, resultFrame)
}

func (c *Contract) wrapFunction(data any, ctx *checkContext, thing string) (any, error) {
	snapshot := ctx.fork()
	if thing != "" {
		snapshot.thingName = thing
	}
	if f, ok := data.(Func); ok {
		return c.proxyFunc(f, snapshot), nil
	}
	rv := reflect.ValueOf(data)
	if rv.Type().ConvertibleTo(funcType) {
		f := rv.Convert(funcType).Interface().(Func)
		return reflect.ValueOf(c.proxyFunc(f, snapshot)).Convert(rv.Type()).Interface(), nil
	}
	return c.proxyNative(rv, snapshot), nil
}

func (c *Contract) proxyFunc(f Func, ctx *checkContext) Func {
	return func(this any, args ...any) (any, error) {
		return c.invoke(ctx.fork(), this, args, func(this any, args []any) (any, error) {
			return f(this, args...)
		})
	}
}

// proxyNative wraps a Go func of any signature into a func of the same type.
// Violations surface through a trailing error result when the signature has
// one, and as panics otherwise.
func (c *Contract) proxyNative(fv reflect.Value, ctx *checkContext) any {
	ft := fv.Type()
	returnsErr := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType
	proxy := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		res, err := c.invoke(ctx.fork(), nil, nativeArgs(ft, in), func(_ any, args []any) (any, error) {
			return callNative(fv, args)
		})
		if err == nil {
			var out []reflect.Value
			out, err = nativeResults(ft, res, returnsErr)
			if err == nil {
				return out
			}
		}
		if !returnsErr {
			panic(err)
		}
		return errorResults(ft, err)
	})
	return proxy.Interface()
}

func nativeArgs(ft reflect.Type, in []reflect.Value) []any {
	args := make([]any, 0, len(in))
	for i, v := range in {
		if ft.IsVariadic() && i == len(in)-1 {
			for j := 0; j < v.Len(); j++ {
				args = append(args, v.Index(j).Interface())
			}
			break
		}
		args = append(args, v.Interface())
	}
	return args
}

func callNative(fv reflect.Value, args []any) (any, error) {
	ft := fv.Type()
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!ft.IsVariadic() && len(args) > fixed) {
		return nil, NewLibraryError("wrap", fmt.Sprintf("cannot call a %s with %d arguments", ft, len(args)))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		t := ft.In(min(i, ft.NumIn()-1))
		if i >= fixed {
			t = ft.In(ft.NumIn() - 1).Elem()
		}
		v, ok := assignable(t, a)
		if !ok {
			return nil, NewLibraryError("wrap", fmt.Sprintf("cannot pass %T as argument %d of a %s", a, i, ft))
		}
		in[i] = v
	}
	out := fv.Call(in)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if errV := out[n-1]; !errV.IsNil() {
			return nil, errV.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	res := make([]any, len(out))
	for i, v := range out {
		res[i] = v.Interface()
	}
	return res, nil
}

func nativeResults(ft reflect.Type, res any, returnsErr bool) ([]reflect.Value, error) {
	n := ft.NumOut()
	if returnsErr {
		n--
	}
	out := make([]reflect.Value, 0, ft.NumOut())
	switch n {
	case 0:
	case 1:
		v, ok := assignable(ft.Out(0), res)
		if !ok {
			return nil, NewLibraryError("wrap", fmt.Sprintf("cannot return %T from a %s", res, ft))
		}
		out = append(out, v)
	default:
		rv, ok := asSequence(res)
		if !ok || rv.Len() != n {
			return nil, NewLibraryError("wrap", fmt.Sprintf("expected %d results for a %s", n, ft))
		}
		for i := 0; i < n; i++ {
			v, ok := assignable(ft.Out(i), rv.Index(i).Interface())
			if !ok {
				return nil, NewLibraryError("wrap", fmt.Sprintf("cannot return %s as result %d of a %s", rv.Index(i).Type(), i, ft))
			}
			out = append(out, v)
		}
	}
	if returnsErr {
		out = append(out, reflect.Zero(errorType))
	}
	return out, nil
}

func errorResults(ft reflect.Type, err error) []reflect.Value {
	out := make([]reflect.Value, ft.NumOut())
	for i := range out {
		out[i] = reflect.Zero(ft.Out(i))
	}
	ev := reflect.New(errorType).Elem()
	ev.Set(reflect.ValueOf(err))
	out[len(out)-1] = ev
	return out
}
