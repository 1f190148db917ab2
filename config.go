package contracts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/davecgh/go-spew/spew"
	"github.com/ggoodman/contracts/internal/logctx"
	"github.com/joeshaw/envdecode"
)

// Unlimited disables the depth bound on values rendered in error messages.
const Unlimited = -1

// DefaultInspectionDepth is how many levels of a rejected value are rendered
// in error messages unless configured otherwise.
const DefaultInspectionDepth = 5

// Config holds the process-wide knobs of the library. It can be decoded from
// the environment with ConfigFromEnv.
type Config struct {
	// InspectionDepth bounds how deeply rejected values are rendered. Unlimited
	// (or any negative number) removes the bound.
	InspectionDepth int `env:"CONTRACTS_INSPECTION_DEPTH,default=5"`
	// LogLevel is the minimum level of the default logger installed by
	// Configure when no logger was set explicitly.
	LogLevel string `env:"CONTRACTS_LOG_LEVEL,default=warn"`
}

// ConfigFromEnv decodes a Config from CONTRACTS_* environment variables.
func ConfigFromEnv() (Config, error) {
	cfg := Config{InspectionDepth: DefaultInspectionDepth, LogLevel: "warn"}
	if err := envdecode.Decode(&cfg); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("contracts: decode environment: %w", err)
	}
	return cfg, nil
}

// Configure applies cfg. The log level only affects the logger installed by
// Configure itself; a logger passed to SetLogger is left alone.
func Configure(cfg Config) error {
	SetErrorMessageInspectionDepth(cfg.InspectionDepth)
	if cfg.LogLevel == "" || explicitLogger.Load() {
		return nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("contracts: invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.Store(slog.New(logctx.Handler{Handler: slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: lvl})}))
	return nil
}

var inspectionDepth atomic.Int64

func init() {
	inspectionDepth.Store(DefaultInspectionDepth)
	logger.Store(slog.New(slog.DiscardHandler))
}

// SetErrorMessageInspectionDepth bounds how deeply rejected values are
// rendered in error messages. Pass Unlimited to disable the bound.
func SetErrorMessageInspectionDepth(depth int) {
	if depth < 0 {
		depth = Unlimited
	}
	inspectionDepth.Store(int64(depth))
}

// ErrorMessageInspectionDepth returns the current depth bound.
func ErrorMessageInspectionDepth() int {
	return int(inspectionDepth.Load())
}

func spewConfig() *spew.ConfigState {
	cfg := &spew.ConfigState{
		Indent:                  "  ",
		SortKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	if d := inspectionDepth.Load(); d >= 0 {
		// spew counts the top level as depth 1.
		cfg.MaxDepth = int(d) + 1
	}
	return cfg
}

// inspect renders v for error messages.
func inspect(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case *Contract:
		return x.String()
	case *Instance:
		if x == nil {
			return "nil"
		}
		return x.String()
	case *Constructor:
		return x.String()
	case fmt.Stringer:
		if !isMissing(v) {
			return x.String()
		}
	case error:
		if !isMissing(v) {
			return "error(" + strconv.Quote(x.Error()) + ")"
		}
	}
	if isString(v) {
		return strconv.Quote(stringOf(v))
	}
	if isFunction(v) {
		return "func"
	}
	return strings.TrimSpace(spewConfig().Sprintf("%v", v))
}

// inspectShallow renders nested values without recursing into objects.
func inspectShallow(v any) string {
	if o, ok := v.(*Instance); ok && o != nil {
		return "{...}"
	}
	if isFunction(v) {
		return "func"
	}
	if isString(v) {
		return strconv.Quote(stringOf(v))
	}
	if _, ok := asRecord(v); ok {
		return reflect.TypeOf(v).String() + "{...}"
	}
	return inspect(v)
}

var (
	logger         atomic.Pointer[slog.Logger]
	explicitLogger atomic.Bool
	logOutput      io.Writer = os.Stderr
)

// SetLogger routes the library's debug events to l. Records carry a contract
// group describing the wrap they relate to.
func SetLogger(l *slog.Logger) {
	if l == nil {
		explicitLogger.Store(false)
		logger.Store(slog.New(slog.DiscardHandler))
		return
	}
	explicitLogger.Store(true)
	logger.Store(slog.New(logctx.Handler{Handler: l.Handler()}))
}

func logEvent(ctx *checkContext, msg string, attrs ...slog.Attr) {
	l := logger.Load()
	c := context.Background()
	if !l.Enabled(c, slog.LevelDebug) {
		return
	}
	c = logctx.WithContractData(c, &logctx.ContractData{
		WrapID:   ctx.wrapID,
		Contract: ctx.contract.String(),
		Thing:    ctx.thingName,
		Site:     ctx.wrappedAt.String(),
	})
	l.LogAttrs(c, slog.LevelDebug, msg, attrs...)
}
