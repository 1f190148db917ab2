package contracts

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// Func is a dynamically typed callable. It receives an explicit receiver and a
// variadic argument list so that receiver, arity and extra-argument contracts
// can be enforced on every call.
type Func func(this any, args ...any) (any, error)

// Call invokes f without a receiver.
func (f Func) Call(args ...any) (any, error) {
	return f(nil, args...)
}

var funcType = reflect.TypeOf(Func(nil))

// asFunc reports whether v can be invoked as a Func. Go funcs whose signature
// is identical to Func (unnamed literals, for instance) are converted.
func asFunc(v any) (Func, bool) {
	switch f := v.(type) {
	case Func:
		return f, f != nil
	case func(any, ...any) (any, error):
		return Func(f), f != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() || !rv.Type().ConvertibleTo(funcType) {
		return nil, false
	}
	return rv.Convert(funcType).Interface().(Func), true
}

// Instance is a record with insertion-ordered own fields and an optional
// prototype. Lookups through Get walk the prototype chain; mutations only ever
// touch own fields. Instances are safe for concurrent use.
type Instance struct {
	mu     sync.RWMutex
	proto  *Instance
	keys   []string
	fields map[string]any
}

// NewInstance creates an empty instance inheriting from proto, which may be nil.
func NewInstance(proto *Instance) *Instance {
	return &Instance{proto: proto, fields: make(map[string]any)}
}

// InstanceFrom creates a prototype-less instance holding a copy of fields. Keys
// are inserted in sorted order.
func InstanceFrom(fields map[string]any) *Instance {
	o := NewInstance(nil)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		o.Set(k, fields[k])
	}
	return o
}

// Proto returns the object's prototype.
func (o *Instance) Proto() *Instance {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.proto
}

// Get looks name up on the object and then along its prototype chain.
func (o *Instance) Get(name string) (any, bool) {
	for cur := o; cur != nil; cur = cur.Proto() {
		if v, ok := cur.Own(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Own returns an own field, ignoring the prototype chain.
func (o *Instance) Own(name string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.fields[name]
	return v, ok
}

// Has reports whether name is an own field.
func (o *Instance) Has(name string) bool {
	_, ok := o.Own(name)
	return ok
}

// Set assigns an own field.
func (o *Instance) Set(name string, v any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.fields[name]; !ok {
		o.keys = append(o.keys, name)
	}
	o.fields[name] = v
}

// Delete removes an own field.
func (o *Instance) Delete(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.fields[name]; !ok {
		return
	}
	delete(o.fields, name)
	o.keys = slices.DeleteFunc(o.keys, func(k string) bool { return k == name })
}

// Keys returns own field names in insertion order.
func (o *Instance) Keys() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Clone(o.keys)
}

// Call invokes the method stored under name, with o as the receiver.
func (o *Instance) Call(name string, args ...any) (any, error) {
	v, ok := o.Get(name)
	if !ok {
		return nil, fmt.Errorf("object has no method %q", name)
	}
	f, ok := asFunc(v)
	if !ok {
		return nil, fmt.Errorf("field %q is not callable", name)
	}
	return f(o, args...)
}

// InstanceOf reports whether c's prototype appears on o's prototype chain.
func (o *Instance) InstanceOf(c *Constructor) bool {
	if o == nil || c == nil {
		return false
	}
	target := c.Prototype()
	for cur := o.Proto(); cur != nil; cur = cur.Proto() {
		if cur == target {
			return true
		}
	}
	return false
}

// clone copies the own fields into a new object sharing the same prototype.
func (o *Instance) clone() *Instance {
	o.mu.RLock()
	defer o.mu.RUnlock()
	cp := &Instance{proto: o.proto, keys: slices.Clone(o.keys), fields: make(map[string]any, len(o.fields))}
	for k, v := range o.fields {
		cp.fields[k] = v
	}
	return cp
}

func (o *Instance) String() string {
	keys := o.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v, _ := o.Own(k)
		parts = append(parts, k+": "+inspectShallow(v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// InitFunc initializes a freshly allocated instance. Returning a non-nil
// object replaces the instance as the result of construction.
type InitFunc func(this *Instance, args ...any) (*Instance, error)

// Constructor builds objects sharing a prototype.
type Constructor struct {
	name  string
	proto *Instance
	init  InitFunc
}

// NewConstructor creates a constructor with an empty prototype.
func NewConstructor(name string, init InitFunc) *Constructor {
	return &Constructor{name: name, proto: NewInstance(nil), init: init}
}

// Extend derives a constructor whose prototype inherits from c's prototype.
func (c *Constructor) Extend(name string, init InitFunc) *Constructor {
	return &Constructor{name: name, proto: NewInstance(c.proto), init: init}
}

func (c *Constructor) Name() string { return c.name }

// Prototype returns the object shared by every instance. Methods are installed
// on it with Set.
func (c *Constructor) Prototype() *Instance { return c.proto }

// New allocates an instance and runs the initializer on it.
func (c *Constructor) New(args ...any) (*Instance, error) {
	return c.Apply(NewInstance(c.proto), args...)
}

// Apply runs the initializer on an existing receiver, which is how a derived
// constructor delegates to its parent.
func (c *Constructor) Apply(this *Instance, args ...any) (*Instance, error) {
	if c.init == nil {
		return this, nil
	}
	res, err := c.init(this, args...)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	return this, nil
}

func (c *Constructor) String() string {
	return "constructor " + c.name
}
