package contracts

import (
	"sort"
	"strings"
)

// Constructs turns a function contract into a contract on constructors. The
// function contract governs the initializer's arguments and result; fields
// lists the methods the prototype must provide, each wrapped with its own
// contract. Method contracts without a receiver contract require the receiver
// to be an instance of the wrapped constructor.
func (c *Contract) Constructs(fields Fields) *Contract {
	if c.kind != KindFunction {
		panic(NewLibraryError("constructs", "expected a function contract, got "+c.String()))
	}
	fs := mergeFields("constructs", nil, fields)
	return c.derive(func(cp *Contract) {
		cp.kind = KindConstructor
		cp.fields = fs
		cp.renamed = false
	})
}

func (c *Contract) checkPrototype(data any, ctx *checkContext) error {
	k := data.(*Constructor)
	var missing []string
	for _, f := range c.fields {
		if v, ok := k.Prototype().Get(f.name); !ok || isMissing(v) {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	owner := "the"
	if ctx.thingName != "" {
		owner = ctx.thingName + "'s"
	}
	le := newLibraryError("constructs", ctx,
		"some fields present in "+owner+" prototype contract are missing on the prototype: "+strings.Join(missing, ", "))
	le.done()
	return le
}

// wrapConstructor returns a constructor whose prototype inherits from the
// original one and overrides every declared method with its wrapped version.
// Instances therefore pass InstanceOf for both constructors.
func (c *Contract) wrapConstructor(data any, ctx *checkContext, thing string) (any, error) {
	orig := data.(*Constructor)
	snapshot := ctx.fork()
	if thing != "" {
		snapshot.thingName = thing
	}

	wrapped := &Constructor{name: orig.name, proto: NewInstance(orig.proto)}
	for _, f := range c.fields {
		method, _ := orig.proto.Get(f.name)
		mc := f.c
		if r := mc.target(); r != nil && r.kind == KindFunction && r.fn.this == nil {
			mc = r.ThisArg(IsA(orig))
		}
		// Methods are reported on their own, under their own name.
		mctx := newContext(f.name, method, mc, true)
		mctx.wrappedAt = ctx.wrappedAt
		mctx.wrapID = ctx.wrapID
		w, err := checkWrap(mc, method, mctx)
		if err != nil {
			return nil, err
		}
		wrapped.proto.Set(f.name, w)
	}

	wrapped.init = func(this *Instance, args ...any) (*Instance, error) {
		here := snapshot.fork()
		wThis, wArgs, err := c.checkCall(here, this, args)
		if err != nil {
			return nil, err
		}
		self, ok := wThis.(*Instance)
		if !ok {
			self = this
		}
		res, err := orig.Apply(self, wArgs...)
		if err != nil {
			return nil, err
		}
		if c.fn.result == nil {
			return res, nil
		}
		checked, err := here.checkWrapNext(c.fn.result, res, resultFrame)
		if err != nil {
			return nil, err
		}
		if o, ok := checked.(*Instance); ok {
			return o, nil
		}
		return res, nil
	}
	logEvent(snapshot, "contract.constructor.wrap")
	return wrapped, nil
}
