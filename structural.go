package contracts

import (
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Fields maps field names to the contracts (or promotable values) of their
// values.
type Fields = map[string]any

// Array accepts slices and arrays whose every element is accepted by item.
func Array(item any) *Contract {
	ic := autoToContract1("array", item)
	return &Contract{kind: KindArray, name: "array", item: ic, wrapping: ic.wrapping}
}

// Tuple accepts sequences with at least len(cs) elements, the i-th of which
// is accepted by cs[i]. Further elements are not examined unless the tuple is
// made Strict.
func Tuple(cs ...any) *Contract {
	children := autoToContracts("tuple", cs)
	return &Contract{kind: KindTuple, name: "tuple", children: children, wrapping: anyWrapping(children...)}
}

// Hash accepts maps with string keys and objects whose every value is accepted
// by value.
func Hash(value any) *Contract {
	vc := autoToContract1("hash", value)
	return &Contract{kind: KindHash, name: "hash", item: vc, wrapping: vc.wrapping}
}

// Object accepts record values (string-keyed maps, structs, pointers to
// structs and *Instance) carrying every declared field. Undeclared fields are
// ignored unless the contract is made Strict. Several field sets are merged,
// later ones winning.
func Object(fields ...Fields) *Contract {
	c := &Contract{kind: KindObject, name: "object"}
	for _, fs := range fields {
		c.fields = mergeFields("object", c.fields, fs)
	}
	c.wrapping = fieldsWrapping(c.fields)
	return c
}

func mergeFields(fn string, base []field, more Fields) []field {
	out := slices.Clone(base)
	for name, v := range more {
		fc := autoToContract1(fn, v)
		i := slices.IndexFunc(out, func(f field) bool { return f.name == name })
		if i >= 0 {
			out[i] = field{name: name, c: fc}
		} else {
			out = append(out, field{name: name, c: fc})
		}
	}
	slices.SortFunc(out, func(a, b field) int { return strings.Compare(a.name, b.name) })
	return out
}

func fieldsWrapping(fs []field) bool {
	for _, f := range fs {
		if f.c.wrapping {
			return true
		}
	}
	return false
}

// Strict returns a tuple contract requiring exactly as many elements as
// declared, or an object contract rejecting undeclared fields.
func (c *Contract) Strict() *Contract {
	switch c.kind {
	case KindTuple, KindObject:
		if c.strict {
			return c
		}
		return c.derive(func(cp *Contract) { cp.strict = true })
	}
	panic(NewLibraryError("strict", "only tuple and object contracts can be made strict, got "+c.String()))
}

// Extend returns an object contract with more fields. Fields already declared
// are replaced. Strictness carries over to the result.
func (c *Contract) Extend(fields Fields) *Contract {
	if c.kind != KindObject {
		panic(NewLibraryError("extend", "only object contracts can be extended, got "+c.String()))
	}
	return c.derive(func(cp *Contract) {
		cp.fields = mergeFields("extend", c.fields, fields)
		cp.wrapping = fieldsWrapping(cp.fields)
		cp.renamed = false
		cp.name = "object"
	})
}

// FieldNames lists the declared fields of an object or constructor contract
// in order.
func (c *Contract) FieldNames() []string {
	r := c.target()
	if r == nil {
		return nil
	}
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.name
	}
	return names
}

// FieldContracts returns the declared fields of an object contract, or the
// prototype fields of a constructor contract.
func (c *Contract) FieldContracts() map[string]*Contract {
	r := c.target()
	if r == nil {
		return nil
	}
	out := make(map[string]*Contract, len(r.fields))
	for _, f := range r.fields {
		out[f.name] = f.c
	}
	return out
}

// Item returns the element contract of an array or hash contract.
func (c *Contract) Item() *Contract {
	if r := c.target(); r != nil {
		return r.item
	}
	return nil
}

// Children returns the sub-contracts of and, or and tuple contracts.
func (c *Contract) Children() []*Contract {
	if r := c.target(); r != nil {
		return slices.Clone(r.children)
	}
	return nil
}

// IsStrict reports whether a tuple or object contract rejects extras.
func (c *Contract) IsStrict() bool {
	r := c.target()
	return r != nil && r.strict
}

func (c *Contract) checkArray(data any, ctx *checkContext) error {
	rv, _ := asSequence(data)
	for i := 0; i < rv.Len(); i++ {
		if err := ctx.checkNext(c.item, rv.Index(i).Interface(), arrayItemFrame(i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contract) wrapArray(data any, ctx *checkContext) (any, error) {
	rv, _ := asSequence(data)
	out := copySequence(rv)
	for i := 0; i < rv.Len(); i++ {
		w, err := ctx.wrapNext(c.item, rv.Index(i).Interface(), arrayItemFrame(i))
		if err != nil {
			return nil, err
		}
		if err := storeIndex(out, i, w, ctx); err != nil {
			return nil, err
		}
	}
	return out.Interface(), nil
}

func (c *Contract) checkTuple(data any, ctx *checkContext) error {
	rv, _ := asSequence(data)
	n := len(c.children)
	if rv.Len() < n {
		return ctx.fail(newContractError(ctx, "").expect("tuple of size "+strconv.Itoa(n), data).fullContractAndValue())
	}
	if c.strict && rv.Len() != n {
		return ctx.fail(newContractError(ctx, "").expect("tuple of exactly size "+strconv.Itoa(n), data).fullContractAndValue())
	}
	for i, child := range c.children {
		if err := ctx.checkNext(child, rv.Index(i).Interface(), tupleItemFrame(i)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contract) wrapTuple(data any, ctx *checkContext) (any, error) {
	rv, _ := asSequence(data)
	out := copySequence(rv)
	for i, child := range c.children {
		w, err := ctx.wrapNext(child, rv.Index(i).Interface(), tupleItemFrame(i))
		if err != nil {
			return nil, err
		}
		if err := storeIndex(out, i, w, ctx); err != nil {
			return nil, err
		}
	}
	return out.Interface(), nil
}

func storeIndex(seq reflect.Value, i int, v any, ctx *checkContext) error {
	val, ok := assignable(seq.Type().Elem(), v)
	if !ok {
		le := newLibraryError("wrap", ctx, "cannot store the wrapped element "+strconv.Itoa(i)+" in a "+seq.Type().String())
		le.fullContract().done()
		return le
	}
	seq.Index(i).Set(val)
	return nil
}

func (c *Contract) checkHash(data any, ctx *checkContext) error {
	rec, _ := asRecord(data)
	for _, k := range rec.keys() {
		v, _ := rec.get(k)
		if err := ctx.checkNext(c.item, v, hashItemFrame(k)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contract) wrapHash(data any, ctx *checkContext) (any, error) {
	rec, _ := asRecord(data)
	out := rec.clone()
	for _, k := range rec.keys() {
		v, _ := rec.get(k)
		w, err := ctx.wrapNext(c.item, v, hashItemFrame(k))
		if err != nil {
			return nil, err
		}
		if err := storeField(out, k, w, ctx); err != nil {
			return nil, err
		}
	}
	return out.value(), nil
}

func (c *Contract) checkObject(data any, ctx *checkContext) error {
	rec, _ := asRecord(data)
	if c.strict {
		declared := set.From(c.FieldNames())
		var extra []string
		for _, k := range rec.keys() {
			if !declared.Contains(k) {
				extra = append(extra, k)
			}
		}
		if len(extra) > 0 {
			plural := ""
			if len(extra) > 1 {
				plural = "s"
			}
			msg := "Found the extra field" + plural + " `" + strings.Join(extra, "`, `") + "` in " + inspect(data)
			return ctx.fail(newContractError(ctx, msg).fullContractAndValue())
		}
	}
	for _, f := range c.fields {
		v, _ := rec.get(f.name)
		if isMissing(v) {
			if f.c.optional {
				continue
			}
			return ctx.fail(newContractError(ctx, "Field `"+f.name+"` required, got "+inspect(data)).fullContractAndValue())
		}
		if err := ctx.checkNext(f.c, v, objectFieldFrame(f.name)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Contract) wrapObject(data any, ctx *checkContext) (any, error) {
	rec, _ := asRecord(data)
	out := rec.clone()
	for _, f := range c.fields {
		if !f.c.wrapping {
			continue
		}
		v, _ := rec.get(f.name)
		if isMissing(v) {
			continue
		}
		w, err := ctx.wrapNext(f.c.WithThingName(f.name), v, objectFieldFrame(f.name))
		if err != nil {
			return nil, err
		}
		if err := storeField(out, f.name, w, ctx); err != nil {
			return nil, err
		}
	}
	return out.value(), nil
}

func storeField(rec record, name string, v any, ctx *checkContext) error {
	if rec.set(name, v) {
		return nil
	}
	le := newLibraryError("wrap", ctx, "cannot store the wrapped value of `"+name+"`")
	le.fullContract().done()
	return le
}
