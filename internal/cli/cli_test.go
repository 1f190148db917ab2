package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ggoodman/contracts"
	"github.com/ggoodman/contracts/docs"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(docs.Builtin())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRenderJSON(t *testing.T) {
	out, err := run(t, "render", "contracts", "--format", "json")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	require.Equal(t, "contracts", m["name"])
}

func TestRenderUsesConfigFile(t *testing.T) {
	t.Cleanup(func() { contracts.SetErrorMessageInspectionDepth(contracts.DefaultInspectionDepth) })
	cfg := writeFile(t, t.TempDir(), "docs.yaml", "title: Contract Reference\ninspection_depth: 2\n")

	out, err := run(t, "--config", cfg, "render")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "# Contract Reference\n\n# contracts\n"), out)
	require.Equal(t, 2, contracts.ErrorMessageInspectionDepth())

	out, err = run(t, "--config", cfg, "render", "--title", "Flag Wins")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "# Flag Wins\n"), out)
}

func TestRenderErrors(t *testing.T) {
	_, err := run(t, "render", "nope")
	require.ErrorContains(t, err, `no module named "nope"`)

	_, err = run(t, "render", "--format", "pdf")
	require.ErrorContains(t, err, `unknown format "pdf"`)

	_, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "render")
	require.ErrorContains(t, err, "read config")
}

func TestRenderTerminal(t *testing.T) {
	out, err := run(t, "render", "--format", "terminal", "--style", "notty")
	require.NoError(t, err)
	require.Contains(t, out, "Structural")
	require.NotContains(t, out, "```")
}

func TestCheckDocuments(t *testing.T) {
	dir := t.TempDir()
	example := writeFile(t, dir, "example.yaml", "name: ann\n\"?age\": 30\ntags: [a]\n")
	good := writeFile(t, dir, "good.json", `{"name": "bob", "tags": ["x", "y"]}`)
	bad := writeFile(t, dir, "bad.yaml", "name: bob\nage: thirty\ntags: []\n")

	out, err := run(t, "check", example, good)
	require.NoError(t, err)
	require.Equal(t, good+": ok\n", out)

	_, err = run(t, "check", example, bad)
	require.ErrorIs(t, err, contracts.ErrViolation)
	require.ErrorContains(t, err, "Expected integer")

	_, err = run(t, "check", example)
	require.Error(t, err)
}

func TestServeReloadsConfig(t *testing.T) {
	cfgPath := writeFile(t, t.TempDir(), ".contractdoc.yaml", "title: First\n")
	v := newViper(cfgPath)
	require.NoError(t, v.ReadInConfig())
	a := &app{
		reg: docs.Builtin(),
		v:   v,
		cfg: Config{Title: "First"},
		log: slog.New(slog.DiscardHandler),
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.serve(ctx, ln) }()

	client := &http.Client{Timeout: time.Second}
	title := func() string {
		req, _ := http.NewRequest(http.MethodGet, "http://"+ln.Addr().String()+"/modules", nil)
		req.Header.Set("Accept", "text/markdown")
		resp, err := client.Do(req)
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		line, _, _ := strings.Cut(string(b), "\n")
		return line
	}

	require.Eventually(t, func() bool { return title() == "# First" }, 5*time.Second, 20*time.Millisecond)

	// The watch is installed asynchronously; keep writing until it notices.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(cfgPath, []byte("title: Second\n"), 0o600)
		return title() == "# Second"
	}, 5*time.Second, 3*docs.WatchDebounce)

	cancel()
	require.NoError(t, <-done)
}
