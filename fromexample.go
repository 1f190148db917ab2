package contracts

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// FromExample builds a contract describing the shape of a sample value.
//
// Maps and *Instance values become object contracts; with withQuestionMark, keys
// spelled "?name" declare an optional field name. Sequences are described by
// their first element (empty ones accept anything). Scalars are described by
// their kind: strings, integers, other numbers, booleans, dates, regular
// expressions, errors and functions. A *Contract found in the sample is used
// as is.
//
// Structs are described by their type rather than their contents: fields are
// keyed by their JSON names, pointer fields are optional and the description
// in a `jsonschema:"description=..."` tag becomes the field's documentation.
// Enum entries in the same tag (`enum=a,enum=b`) restrict the field to those
// values.
// Contracts reflected from types are cached.
func FromExample(v any, withQuestionMark bool) *Contract {
	switch x := v.(type) {
	case nil:
		return Any
	case *Contract:
		return x
	case *Instance:
		fields := Fields{}
		for _, k := range x.Keys() {
			fv, _ := x.Own(k)
			addExampleField(fields, k, fv, withQuestionMark)
		}
		return Object(fields)
	}
	switch {
	case isString(v):
		return String
	case isBool(v):
		return Bool
	case isNumber(v):
		return numberContract(reflect.TypeOf(v))
	case isDate(v):
		return Date
	case isRegexp(v):
		return Regexp
	case isFunction(v):
		return AnyFunction
	case isError(v):
		return Error
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Any
		}
		fields := Fields{}
		iter := rv.MapRange()
		for iter.Next() {
			addExampleField(fields, iter.Key().String(), iter.Value().Interface(), withQuestionMark)
		}
		return Object(fields)
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() != reflect.Interface {
				return FromType(rv.Type())
			}
			return Array(Any)
		}
		return Array(FromExample(rv.Index(0).Interface(), withQuestionMark))
	case reflect.Struct:
		return FromType(rv.Type())
	case reflect.Pointer:
		if rv.IsNil() {
			return Any
		}
		return FromType(rv.Type().Elem())
	}
	return Any
}

func addExampleField(fields Fields, key string, v any, withQuestionMark bool) {
	c := FromExample(v, withQuestionMark)
	if withQuestionMark && strings.HasPrefix(key, "?") {
		key = strings.TrimPrefix(key, "?")
		c = c.Optional()
	}
	fields[key] = c
}

var typeContracts sync.Map // reflect.Type -> *Contract

// FromType reflects a contract from a Go type. See FromExample for the rules
// applied to struct types.
func FromType(t reflect.Type) *Contract {
	if c, ok := typeContracts.Load(t); ok {
		return c.(*Contract)
	}
	c := (&typeReflector{pending: map[reflect.Type]*Contract{}}).contract(t)
	actual, _ := typeContracts.LoadOrStore(t, c)
	return actual.(*Contract)
}

// typeReflector tracks the struct types being reflected so that recursive
// types close over a cyclic placeholder instead of recursing forever.
type typeReflector struct {
	pending map[reflect.Type]*Contract
}

func (r *typeReflector) contract(t reflect.Type) *Contract {
	switch {
	case t == timeType:
		return Date
	case t == regexpType:
		return Regexp
	case t == errorType:
		return Error
	}
	switch t.Kind() {
	case reflect.String:
		return String
	case reflect.Bool:
		return Bool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return numberContract(t)
	case reflect.Pointer:
		return r.contract(t.Elem()).Optional()
	case reflect.Slice, reflect.Array:
		return Array(r.contract(t.Elem()))
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return Hash(r.contract(t.Elem()))
		}
	case reflect.Func:
		return AnyFunction
	case reflect.Struct:
		return r.structContract(t)
	}
	return Any
}

func (r *typeReflector) structContract(t reflect.Type) *Contract {
	if ph, ok := r.pending[t]; ok {
		return ph
	}
	ph := Cyclic(false)
	r.pending[t] = ph
	defer delete(r.pending, t)

	props := schemaProperties(t)
	fields := Fields{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name, ok := jsonName(f)
		if !ok {
			continue
		}
		c := r.contract(f.Type)
		if s := props[name]; s != nil {
			if len(s.Enum) > 0 {
				c = OneOf(enumValues(s.Enum)...)
				if f.Type.Kind() == reflect.Pointer {
					c = c.Optional()
				}
			}
			if s.Description != "" {
				c = c.WithDoc(s.Description)
			}
		}
		fields[name] = c
	}
	full := Object(fields)
	ph.CloseCycle(full)
	return full
}

func numberContract(t reflect.Type) *Contract {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return Number
	}
	return Integer
}

// schemaProperties reflects the jsonschema tags of t's fields. Nested structs
// are left opaque, since structContract reflects them on its own, and so are
// kinds JSON Schema cannot express.
func schemaProperties(t reflect.Type) map[string]*jsonschema.Schema {
	var rooted bool
	r := &jsonschema.Reflector{
		DoNotReference: true,
		Anonymous:      true,
		Mapper: func(ft reflect.Type) *jsonschema.Schema {
			if ft == t && !rooted {
				rooted = true
				return nil
			}
			switch ft.Kind() {
			case reflect.Struct, reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Uintptr,
				reflect.Complex64, reflect.Complex128:
				return &jsonschema.Schema{}
			}
			return nil
		},
	}
	root := r.ReflectFromType(t)
	if root == nil || root.Properties == nil {
		return nil
	}
	out := make(map[string]*jsonschema.Schema, root.Properties.Len())
	for el := root.Properties.Oldest(); el != nil; el = el.Next() {
		out[el.Key] = el.Value
	}
	return out
}

func enumValues(enum []any) []any {
	out := make([]any, len(enum))
	for i, e := range enum {
		if n, ok := e.(json.Number); ok {
			if iv, err := n.Int64(); err == nil {
				e = iv
			} else if fv, err := n.Float64(); err == nil {
				e = fv
			}
		}
		out[i] = e
	}
	return out
}
