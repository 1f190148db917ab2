package docs

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Format names an output format of the renderers.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatSchema   Format = "schema"
)

// Formats lists every format RenderModule understands.
var Formats = []Format{FormatMarkdown, FormatJSON, FormatYAML, FormatSchema}

// ParseFormat validates a format name. "md" and "yml" are accepted as
// aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "schema", "jsonschema":
		return FormatSchema, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// DefaultModuleTitle is the heading given to the unnamed module.
const DefaultModuleTitle = "(default module)"

//go:embed templates/module.md.tmpl
var templateFS embed.FS

var markdownTmpl = template.Must(template.New("module.md.tmpl").Funcs(template.FuncMap{
	"moduleTitle": moduleTitle,
	"sections":    sections,
}).ParseFS(templateFS, "templates/module.md.tmpl"))

var blankRuns = regexp.MustCompile(`\n{3,}`)

func moduleTitle(name string) string {
	if name == "" {
		return DefaultModuleTitle
	}
	return name
}

// section is a category of a module with the entries that fall in it. The
// section of entries without a category has no name and comes first.
type section struct {
	Name   string
	Doc    []string
	Types  []Entry
	Values []Entry
}

func sections(m Module) []section {
	out := []section{{}}
	index := map[string]int{"": 0}
	add := func(name string) int {
		if i, ok := index[name]; ok {
			return i
		}
		out = append(out, section{Name: name})
		index[name] = len(out) - 1
		return len(out) - 1
	}
	for _, c := range m.Categories {
		i := add(c.Name)
		out[i].Doc = append(out[i].Doc, c.Doc...)
	}
	for _, e := range m.Types {
		i := add(e.Category)
		out[i].Types = append(out[i].Types, e)
	}
	for _, e := range m.Values {
		i := add(e.Category)
		out[i].Values = append(out[i].Values, e)
	}
	return slices.DeleteFunc(out, func(s section) bool {
		return s.Name == "" && len(s.Types) == 0 && len(s.Values) == 0
	})
}

// WriteMarkdown renders the modules as one Markdown document.
func WriteMarkdown(w io.Writer, mods ...Module) error {
	var buf bytes.Buffer
	if err := markdownTmpl.Execute(&buf, mods); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	out := blankRuns.ReplaceAll(bytes.TrimSpace(buf.Bytes()), []byte("\n\n"))
	_, err := w.Write(append(out, '\n'))
	return err
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}

// WriteYAML writes v as YAML.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("render yaml: %w", err)
	}
	return enc.Close()
}

// RenderModule writes one module in format f.
func RenderModule(w io.Writer, f Format, m Module) error {
	switch f {
	case FormatMarkdown:
		return WriteMarkdown(w, m)
	case FormatJSON:
		return WriteJSON(w, m)
	case FormatYAML:
		return WriteYAML(w, m)
	case FormatSchema:
		return WriteJSON(w, ModuleSchema(m))
	}
	return fmt.Errorf("unknown format %q", f)
}

// RenderModules writes a list of modules in format f. Markdown output is a
// single document; the other formats encode a list.
func RenderModules(w io.Writer, f Format, mods []Module) error {
	switch f {
	case FormatMarkdown:
		return WriteMarkdown(w, mods...)
	case FormatJSON:
		return WriteJSON(w, mods)
	case FormatYAML:
		return WriteYAML(w, mods)
	case FormatSchema:
		return WriteJSON(w, ModuleSchemas(mods))
	}
	return fmt.Errorf("unknown format %q", f)
}

// Snapshot returns every module of the registry, in the order Modules lists
// them.
func (r *Registry) Snapshot() []Module {
	names := r.Modules()
	out := make([]Module, 0, len(names))
	for _, n := range names {
		if m, ok := r.Module(n); ok {
			out = append(out, m)
		}
	}
	return out
}
