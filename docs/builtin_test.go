package docs_test

import (
	"bytes"
	"testing"

	"github.com/ggoodman/contracts/docs"
	"github.com/stretchr/testify/require"
)

func TestBuiltinDocumentsTheLibrary(t *testing.T) {
	r := docs.Builtin()
	require.Equal(t, []string{docs.BuiltinModule}, r.Modules())

	m, ok := r.Module(docs.BuiltinModule)
	require.True(t, ok)

	var cats []string
	for _, c := range m.Categories {
		cats = append(cats, c.Name)
	}
	require.Equal(t, []string{"Checking", "Elementary", "Combinators", "Structural", "Functions"}, cats)

	byName := map[string]docs.Entry{}
	for _, e := range m.Values {
		require.NotEmpty(t, e.Doc, e.Name)
		require.NotEmpty(t, e.Category, e.Name)
		byName[e.Name] = e
	}
	require.Equal(t, "Structural", byName["Array"].Category)
	require.Equal(t, "c.fun({ item: c.contract } -> c.contract)", byName["Array"].Contract)
	require.Equal(t, "c.string", byName["String"].Contract)
	require.Equal(t, "Functions", byName["Method"].Category)

	var buf bytes.Buffer
	require.NoError(t, docs.WriteMarkdown(&buf, m))
	require.Contains(t, buf.String(), "## Combinators\n\nContracts built from other contracts.\n")
}
