package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	buf.Reset()
	return rec
}

func TestHandlerAddsGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})

	ctx := WithRequestData(context.Background(), &RequestData{RequestID: "r1", Method: "GET", Path: "/modules"})
	ctx = WithContractData(ctx, &ContractData{WrapID: "w1", Contract: "c.number", Thing: "n"})
	ctx = WithModuleData(ctx, &ModuleData{Name: "accounts", Format: "json"})
	log.InfoContext(ctx, "docs.render")

	rec := decode(t, &buf)
	require.Equal(t, "docs.render", rec["msg"])
	require.Equal(t, "r1", rec["req"].(map[string]any)["id"])
	require.Equal(t, "/modules", rec["req"].(map[string]any)["path"])
	require.Equal(t, map[string]any{"wrap_id": "w1", "contract": "c.number", "thing": "n"}, rec["contract"])
	require.Equal(t, map[string]any{"name": "accounts", "format": "json"}, rec["module"])
}

func TestHandlerWithoutContextData(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)})
	log.Info("plain")

	rec := decode(t, &buf)
	require.NotContains(t, rec, "req")
	require.NotContains(t, rec, "contract")
}

func TestHandlerKeepsDecorationOnDerivedLoggers(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(Handler{Handler: slog.NewJSONHandler(&buf, nil)}).With("component", "docs")
	_, ok := log.Handler().(Handler)
	require.True(t, ok)

	log.InfoContext(WithModuleData(context.Background(), &ModuleData{Name: "m"}), "x")
	rec := decode(t, &buf)
	require.Equal(t, "docs", rec["component"])
	require.Equal(t, "m", rec["module"].(map[string]any)["name"])
}
