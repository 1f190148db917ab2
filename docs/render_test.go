package docs_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ggoodman/contracts/docs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want docs.Format
	}{
		{"markdown", docs.FormatMarkdown},
		{"MD", docs.FormatMarkdown},
		{"json", docs.FormatJSON},
		{"yml", docs.FormatYAML},
		{" yaml ", docs.FormatYAML},
		{"jsonschema", docs.FormatSchema},
	}
	for _, tt := range tests {
		got, err := docs.ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		require.Equal(t, tt.want, got, tt.in)
	}
	_, err := docs.ParseFormat("pdf")
	require.ErrorContains(t, err, `unknown format "pdf"`)
}

func TestMarkdownGroupsEntriesByCategory(t *testing.T) {
	m, _ := accountsRegistry(t).Module("accounts")

	var buf bytes.Buffer
	require.NoError(t, docs.WriteMarkdown(&buf, m))
	out := buf.String()

	require.True(t, strings.HasPrefix(out, "# accounts\n\nAccount management.\n"), out)
	require.Contains(t, out, "### type `Account`\n\n```\nc.Account\n```\n\nA bank account.\n")
	require.Contains(t, out, "## Operations\n\nThings an account holder can do.\n")
	require.Contains(t, out, "### `deposit`\n\n```\nc.fn(c.number -> c.number)\n```\n\nAdds money.\n")
	require.NotContains(t, out, "\n\n\n")

	// Uncategorized entries come before the first category.
	require.Less(t, strings.Index(out, "`Account`"), strings.Index(out, "## Operations"))
	require.Less(t, strings.Index(out, "## Operations"), strings.Index(out, "`deposit`"))
}

func TestMarkdownNamesTheDefaultModule(t *testing.T) {
	r := docs.NewRegistry()
	r.DocumentModule("", "Loose values.")

	var buf bytes.Buffer
	require.NoError(t, docs.RenderModules(&buf, docs.FormatMarkdown, r.Snapshot()))
	require.Contains(t, buf.String(), "# "+docs.DefaultModuleTitle)
}

func TestJSONAndYAMLViews(t *testing.T) {
	m, _ := accountsRegistry(t).Module("accounts")

	var buf bytes.Buffer
	require.NoError(t, docs.RenderModule(&buf, docs.FormatJSON, m))
	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	require.Equal(t, "accounts", raw["name"])
	values := raw["values"].([]any)
	require.Equal(t, "Operations", values[0].(map[string]any)["category"])

	buf.Reset()
	require.NoError(t, docs.RenderModule(&buf, docs.FormatYAML, m))
	require.Contains(t, buf.String(), "name: accounts\n")
	var back docs.Module
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	if diff := cmp.Diff(m, back, cmpopts.IgnoreUnexported(docs.Entry{})); diff != "" {
		t.Fatalf("yaml view mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	require.NoError(t, docs.RenderModules(&buf, docs.FormatJSON, []docs.Module{m}))
	var list []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestRenderRejectsUnknownFormats(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, docs.RenderModule(&buf, docs.Format("pdf"), docs.Module{}))
	require.Error(t, docs.RenderModules(&buf, docs.Format("pdf"), nil))
}
