package contracts

import (
	"math"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
)

var (
	errorType  = reflect.TypeOf((*error)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
	regexpType = reflect.TypeOf((*regexp.Regexp)(nil))
)

// isMissing reports whether v stands for an absent value: untyped nil or a nil
// pointer, interface or func. Nil maps and slices are empty containers.
func isMissing(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func:
		return rv.IsNil()
	}
	return false
}

func isString(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.String
}

func stringOf(v any) string {
	return reflect.ValueOf(v).String()
}

func isNumber(v any) bool {
	_, ok := toFloat(v)
	return ok
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func isInteger(v any) bool {
	f, ok := toFloat(v)
	return ok && !math.IsNaN(f) && math.Floor(f) == f
}

func isBool(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Bool
}

func isRegexp(v any) bool {
	re, ok := v.(*regexp.Regexp)
	return ok && re != nil
}

func isDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case *time.Time:
		return t != nil
	}
	return false
}

func isError(v any) bool {
	if isMissing(v) {
		return false
	}
	_, ok := v.(error)
	return ok
}

// isFunction accepts every callable: Funcs, plain Go funcs and constructors.
func isFunction(v any) bool {
	if c, ok := v.(*Constructor); ok {
		return c != nil
	}
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Func && !rv.IsNil()
}

func isFalsy(v any) bool {
	if isMissing(v) {
		return true
	}
	if f, ok := toFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	switch {
	case isBool(v):
		return !reflect.ValueOf(v).Bool()
	case isString(v):
		return stringOf(v) == ""
	}
	return false
}

// sameValue compares numbers numerically regardless of their Go kind and
// everything else structurally.
func sameValue(a, b any) (eq bool) {
	defer func() {
		// cmp panics on unexported fields it cannot see into.
		if recover() != nil {
			eq = false
		}
	}()
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if isMissing(a) || isMissing(b) {
		return isMissing(a) && isMissing(b)
	}
	if isFunction(a) || isFunction(b) {
		return sameFunction(a, b)
	}
	if oa, ok := a.(*Instance); ok {
		ob, ok := b.(*Instance)
		return ok && oa == ob
	}
	if ra, ok := a.(*regexp.Regexp); ok {
		rb, ok := b.(*regexp.Regexp)
		return ok && ra != nil && rb != nil && ra.String() == rb.String()
	}
	return cmp.Equal(a, b)
}

// sameFunction compares callables by identity: constructors by pointer, funcs
// by type and code pointer.
func sameFunction(a, b any) bool {
	if ca, ok := a.(*Constructor); ok {
		cb, ok := b.(*Constructor)
		return ok && ca == cb
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	return ra.Kind() == reflect.Func && rb.Kind() == reflect.Func &&
		ra.Type() == rb.Type() && !ra.IsNil() && !rb.IsNil() && ra.Pointer() == rb.Pointer()
}

// sequence views slices and arrays, never strings.
func asSequence(v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

func sequenceItems(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// copySequence returns an addressable copy of rv with the same Go type.
func copySequence(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Array {
		cp := reflect.New(rv.Type()).Elem()
		cp.Set(rv)
		return cp
	}
	cp := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	reflect.Copy(cp, rv)
	return cp
}

// assignable converts v to a value storable in a slot of type t.
func assignable(t reflect.Type, v any) (reflect.Value, bool) {
	if v == nil {
		return reflect.Zero(t), true
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, true
	}
	if rv.Kind() == reflect.Func && t.Kind() == reflect.Func && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), true
	}
	return reflect.Value{}, false
}

// record is the common view over the object-like values that object and hash
// contracts accept.
type record interface {
	get(name string) (any, bool)
	keys() []string
	clone() record
	set(name string, v any) bool
	value() any
}

func asRecord(v any) (record, bool) {
	switch o := v.(type) {
	case nil:
		return nil, false
	case *Instance:
		if o == nil {
			return nil, false
		}
		return instanceRecord{o}, true
	case *Contract, *regexp.Regexp, *Constructor:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		return mapRecord{rv}, true
	case reflect.Struct:
		if rv.Type() == timeType {
			return nil, false
		}
		return structRecord{rv: rv, fields: structFields(rv.Type())}, true
	case reflect.Pointer:
		if rv.IsNil() || rv.Elem().Kind() != reflect.Struct || rv.Elem().Type() == timeType {
			return nil, false
		}
		return structRecord{rv: rv.Elem(), ptr: true, fields: structFields(rv.Elem().Type())}, true
	}
	return nil, false
}

type instanceRecord struct{ o *Instance }

func (r instanceRecord) get(name string) (any, bool) { return r.o.Get(name) }
func (r instanceRecord) keys() []string              { return r.o.Keys() }
func (r instanceRecord) clone() record               { return instanceRecord{r.o.clone()} }
func (r instanceRecord) value() any                  { return r.o }
func (r instanceRecord) set(name string, v any) bool {
	r.o.Set(name, v)
	return true
}

type mapRecord struct{ rv reflect.Value }

func (r mapRecord) get(name string) (any, bool) {
	if r.rv.IsNil() {
		return nil, false
	}
	mv := r.rv.MapIndex(reflect.ValueOf(name).Convert(r.rv.Type().Key()))
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

func (r mapRecord) keys() []string {
	ks := make([]string, 0, r.rv.Len())
	for _, k := range r.rv.MapKeys() {
		ks = append(ks, k.String())
	}
	slices.Sort(ks)
	return ks
}

func (r mapRecord) clone() record {
	cp := reflect.MakeMapWithSize(r.rv.Type(), r.rv.Len())
	iter := r.rv.MapRange()
	for iter.Next() {
		cp.SetMapIndex(iter.Key(), iter.Value())
	}
	return mapRecord{cp}
}

func (r mapRecord) set(name string, v any) bool {
	val, ok := assignable(r.rv.Type().Elem(), v)
	if !ok {
		return false
	}
	r.rv.SetMapIndex(reflect.ValueOf(name).Convert(r.rv.Type().Key()), val)
	return true
}

func (r mapRecord) value() any { return r.rv.Interface() }

type structRecord struct {
	rv     reflect.Value
	ptr    bool
	fields []structField
}

type structField struct {
	name  string
	index int
}

// structFields lists exported fields under their JSON names.
func structFields(t reflect.Type) []structField {
	var out []structField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" {
			continue
		}
		name, ok := jsonName(f)
		if !ok {
			continue
		}
		out = append(out, structField{name: name, index: i})
	}
	return out
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, true
}

func (r structRecord) lookup(name string) (reflect.Value, bool) {
	for _, f := range r.fields {
		if f.name == name {
			return r.rv.Field(f.index), true
		}
	}
	return reflect.Value{}, false
}

func (r structRecord) get(name string) (any, bool) {
	fv, ok := r.lookup(name)
	if !ok {
		return nil, false
	}
	return fv.Interface(), true
}

func (r structRecord) keys() []string {
	ks := make([]string, len(r.fields))
	for i, f := range r.fields {
		ks[i] = f.name
	}
	return ks
}

func (r structRecord) clone() record {
	cp := reflect.New(r.rv.Type()).Elem()
	cp.Set(r.rv)
	return structRecord{rv: cp, ptr: r.ptr, fields: r.fields}
}

func (r structRecord) set(name string, v any) bool {
	fv, ok := r.lookup(name)
	if !ok || !fv.CanSet() {
		return false
	}
	val, ok := assignable(fv.Type(), v)
	if !ok {
		return false
	}
	fv.Set(val)
	return true
}

func (r structRecord) value() any {
	if r.ptr {
		return r.rv.Addr().Interface()
	}
	return r.rv.Interface()
}
