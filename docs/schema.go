package docs

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/ggoodman/contracts"
	"github.com/invopop/jsonschema"
)

// Schema describes the values c accepts as a JSON Schema (draft 2020-12).
//
// The translation is approximate where JSON Schema has no equivalent:
// arbitrary predicates and function contracts become schemas that accept
// anything and carry the contract text as their description. Recursive
// contracts are expressed with anchors.
func Schema(c *contracts.Contract) *jsonschema.Schema {
	b := newSchemaBuilder()
	s := b.build(c)
	s.Version = jsonschema.Version
	return s
}

// ModuleSchema describes every documented entry of m under $defs.
func ModuleSchema(m Module) *jsonschema.Schema {
	return newSchemaBuilder().module(m)
}

// ModuleSchemas is ModuleSchema for a list of modules.
func ModuleSchemas(mods []Module) []*jsonschema.Schema {
	b := newSchemaBuilder()
	out := make([]*jsonschema.Schema, len(mods))
	for i, m := range mods {
		out[i] = b.module(m)
	}
	return out
}

type schemaBuilder struct {
	// seen maps the contracts under construction to their schema, so that a
	// contract reached again through a cycle becomes a reference.
	seen    map[*contracts.Contract]*jsonschema.Schema
	anchors int
}

func newSchemaBuilder() *schemaBuilder {
	return &schemaBuilder{seen: make(map[*contracts.Contract]*jsonschema.Schema)}
}

func (b *schemaBuilder) module(m Module) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       moduleTitle(m.Name),
		Description: strings.Join(m.Doc, "\n"),
		Definitions: make(jsonschema.Definitions, len(m.Types)+len(m.Values)),
	}
	for _, e := range m.Entries() {
		s.Definitions[e.Name] = b.build(e.Value())
	}
	return s
}

func (b *schemaBuilder) build(c *contracts.Contract) *jsonschema.Schema {
	r := c.Resolve()
	if r == nil {
		return &jsonschema.Schema{Description: c.String() + " (unresolved)"}
	}
	if s, ok := b.seen[r]; ok {
		if s.Anchor == "" {
			b.anchors++
			s.Anchor = fmt.Sprintf("cycle%d", b.anchors)
		}
		return &jsonschema.Schema{Ref: "#" + s.Anchor}
	}

	s := &jsonschema.Schema{}
	b.seen[r] = s
	defer delete(b.seen, r)

	b.fill(s, r)
	if doc := c.Doc(); len(doc) > 0 {
		s.Description = joinDescription(strings.Join(doc, "\n"), s.Description)
	}
	return s
}

func (b *schemaBuilder) fill(s *jsonschema.Schema, c *contracts.Contract) {
	switch c.Kind() {
	case contracts.KindPredicate:
		fillPredicate(s, c)
	case contracts.KindAnd:
		for _, child := range c.Children() {
			s.AllOf = append(s.AllOf, b.build(child))
		}
	case contracts.KindOr:
		for _, child := range c.Children() {
			s.AnyOf = append(s.AnyOf, b.build(child))
		}
	case contracts.KindArray:
		s.Type = "array"
		s.Items = b.build(c.Item())
	case contracts.KindTuple:
		s.Type = "array"
		for _, child := range c.Children() {
			s.PrefixItems = append(s.PrefixItems, b.build(child))
		}
		if c.IsStrict() {
			s.Items = jsonschema.FalseSchema
		}
	case contracts.KindHash:
		s.Type = "object"
		s.AdditionalProperties = b.build(c.Item())
	case contracts.KindObject:
		s.Type = "object"
		s.Properties = jsonschema.NewProperties()
		fields := c.FieldContracts()
		for _, name := range c.FieldNames() {
			fc := fields[name]
			s.Properties.Set(name, b.build(fc))
			if !fc.IsOptional() {
				s.Required = append(s.Required, name)
			}
		}
		if c.IsStrict() {
			s.AdditionalProperties = jsonschema.FalseSchema
		}
	default:
		// Functions and constructors have no JSON representation.
		s.Description = c.String()
	}
}

func fillPredicate(s *jsonschema.Schema, c *contracts.Contract) {
	vs := c.Values()
	if slices.ContainsFunc(vs, isCallable) {
		s.Description = c.String()
		return
	}
	if len(vs) == 1 {
		s.Const = vs[0]
		return
	} else if len(vs) > 1 {
		s.Enum = vs
		return
	}
	if p := c.Pattern(); p != "" {
		s.Type = "string"
		s.Pattern = p
		return
	}
	switch c.Name() {
	case "any":
	case "nothing":
		s.Not = jsonschema.TrueSchema
	case "string":
		s.Type = "string"
	case "number":
		s.Type = "number"
	case "integer":
		s.Type = "integer"
	case "bool":
		s.Type = "boolean"
	case "date":
		s.Type = "string"
		s.Format = "date-time"
	case "regexp":
		s.Type = "string"
		s.Format = "regex"
	default:
		s.Description = c.String()
	}
}

func joinDescription(parts ...string) string {
	var keep []string
	for _, p := range parts {
		if p != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, "\n\n")
}

func isCallable(v any) bool {
	if _, ok := v.(*contracts.Constructor); ok {
		return true
	}
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
