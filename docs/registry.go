// Package docs collects documentation about contracts as modules publish
// them, and renders it as Markdown, JSON, YAML or JSON Schema.
//
// A Registry is an explicit value: modules document themselves into the
// registry they are handed, so several independent catalogues can coexist.
package docs

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/ggoodman/contracts"
)

// Entry documents one named contract of a module: a type it defines or a
// value it publishes.
type Entry struct {
	Name     string   `json:"name" yaml:"name"`
	Category string   `json:"category,omitempty" yaml:"category,omitempty"`
	Contract string   `json:"contract" yaml:"contract"`
	Doc      []string `json:"doc,omitempty" yaml:"doc,omitempty"`

	c *contracts.Contract
}

// Value returns the documented contract.
func (e Entry) Value() *contracts.Contract { return e.c }

// Category groups the entries documented after a DocumentCategory call.
type Category struct {
	Name string   `json:"name" yaml:"name"`
	Doc  []string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// Module is a snapshot of everything documented under one module name.
type Module struct {
	Name       string     `json:"name" yaml:"name"`
	Doc        []string   `json:"doc,omitempty" yaml:"doc,omitempty"`
	Categories []Category `json:"categories,omitempty" yaml:"categories,omitempty"`
	Types      []Entry    `json:"types,omitempty" yaml:"types,omitempty"`
	Values     []Entry    `json:"values,omitempty" yaml:"values,omitempty"`
}

// Entries returns the types followed by the values of the module.
func (m Module) Entries() []Entry {
	return append(slices.Clone(m.Types), m.Values...)
}

// Registry holds the documentation of any number of modules. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*moduleDocs
	order   []string
}

type moduleDocs struct {
	doc        []string
	categories []Category
	current    string
	types      map[string]Entry
	values     map[string]Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*moduleDocs)}
}

// ensure must be called with r.mu held for writing.
func (r *Registry) ensure(module string) *moduleDocs {
	m, ok := r.modules[module]
	if !ok {
		m = &moduleDocs{types: make(map[string]Entry), values: make(map[string]Entry)}
		r.modules[module] = m
		r.order = append(r.order, module)
	}
	return m
}

// DocumentModule appends lines to the module's introduction.
func (r *Registry) DocumentModule(module string, lines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ensure(module)
	m.doc = append(m.doc, lines...)
}

// DocumentCategory opens a category in the module. Types and values
// documented afterwards without a category of their own fall in it.
func (r *Registry) DocumentCategory(module, category string, lines ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ensure(module)
	m.current = category
	if i := slices.IndexFunc(m.categories, func(c Category) bool { return c.Name == category }); i >= 0 {
		m.categories[i].Doc = append(m.categories[i].Doc, lines...)
		return
	}
	m.categories = append(m.categories, Category{Name: category, Doc: slices.Clone(lines)})
}

func (m *moduleDocs) entry(name string, c *contracts.Contract) Entry {
	cat := c.Category()
	if cat == "" {
		cat = m.current
	}
	return Entry{Name: name, Category: cat, Contract: c.String(), Doc: c.Doc(), c: c}
}

// DocumentType records c as a type defined by the module, under its name.
// The contract must have been renamed away from its built-in name, and a
// module documents each name once.
func (r *Registry) DocumentType(module string, c *contracts.Contract) error {
	if c == nil {
		return contracts.NewLibraryError("documentType", "expected a contract, got nil")
	}
	if contracts.IsBuiltinName(c.Name()) {
		return contracts.NewLibraryError("documentType", "called on a contract that still has its built-in name: "+c.String())
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ensure(module)
	if _, dup := m.types[c.Name()]; dup {
		return contracts.NewLibraryError("documentType", "called with a contract whose name is already documented: "+c.String())
	}
	m.types[c.Name()] = m.entry(c.Name(), c)
	return nil
}

// DocumentValue records that the module exports a value called name under
// contract c. Documenting a name again replaces the earlier entry.
func (r *Registry) DocumentValue(module, name string, c *contracts.Contract) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ensure(module)
	m.values[name] = m.entry(name, c)
}

// Publish wraps every member of impl named in cs with its contract, documents
// the members as values of the module, and returns the wrapped members along
// with a copy of extras.
//
// impl is a map with string keys, a *contracts.Instance, or a struct (or
// pointer to one) whose fields are matched by JSON name and then by Go name;
// exported methods are matched by Go name. Nothing is documented when a
// member is missing or fails to wrap.
func (r *Registry) Publish(module string, impl any, cs map[string]*contracts.Contract, extras map[string]any) (map[string]any, error) {
	out := maps.Clone(extras)
	if out == nil {
		out = make(map[string]any, len(cs))
	}
	names := slices.Sorted(maps.Keys(cs))
	for _, n := range names {
		v, ok := member(impl, n)
		if !ok {
			return nil, contracts.NewLibraryError("publish", n+" is missing in the implementation")
		}
		w, err := cs[n].Wrap(v, n)
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", n, err)
		}
		out[n] = w
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.ensure(module)
	for _, n := range names {
		m.values[n] = m.entry(n, cs[n])
	}
	return out, nil
}

// WrapAll wraps the members of impl named in cs without documenting them
// anywhere.
func WrapAll(impl any, cs map[string]*contracts.Contract) (map[string]any, error) {
	return NewRegistry().Publish("", impl, cs, nil)
}

// Modules lists the documented module names in the order they were first
// mentioned.
func (r *Registry) Modules() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Module returns a snapshot of the named module. Types and values are sorted
// by name.
func (r *Registry) Module(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	if !ok {
		return Module{}, false
	}
	return Module{
		Name:       name,
		Doc:        slices.Clone(m.doc),
		Categories: slices.Clone(m.categories),
		Types:      sortedEntries(m.types),
		Values:     sortedEntries(m.values),
	}, true
}

func sortedEntries(es map[string]Entry) []Entry {
	out := make([]Entry, 0, len(es))
	for _, n := range slices.Sorted(maps.Keys(es)) {
		out = append(out, es[n])
	}
	return out
}

// member looks name up on impl.
func member(impl any, name string) (any, bool) {
	switch v := impl.(type) {
	case nil:
		return nil, false
	case map[string]any:
		m, ok := v[name]
		return m, ok
	case *contracts.Instance:
		return v.Get(name)
	}

	rv := reflect.ValueOf(impl)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !m.IsValid() {
			return nil, false
		}
		return m.Interface(), true
	}
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), true
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	t := rv.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == name || f.Name == name {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
