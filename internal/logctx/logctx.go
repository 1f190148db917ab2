package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with whatever contract or request data has been
// attached to the context passed to the logger.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("user_agent", rd.UserAgent),
			slog.String("remote_addr", rd.RemoteAddr),
			slog.String("path", rd.Path),
		))
	}

	if cd, ok := ctx.Value(contractDataKey{}).(*ContractData); ok {
		attrs := []any{
			slog.String("wrap_id", cd.WrapID),
			slog.String("contract", cd.Contract),
		}
		if cd.Thing != "" {
			attrs = append(attrs, slog.String("thing", cd.Thing))
		}
		if cd.Site != "" {
			attrs = append(attrs, slog.String("site", cd.Site))
		}
		r.AddAttrs(slog.Group("contract", attrs...))
	}

	if md, ok := ctx.Value(moduleDataKey{}).(*ModuleData); ok {
		r.AddAttrs(slog.Group("module",
			slog.String("name", md.Name),
			slog.String("format", md.Format),
		))
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs and WithGroup keep the decoration when callers derive loggers.
func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type requestDataKey struct{}

type RequestData struct {
	RequestID  string
	Method     string
	UserAgent  string
	RemoteAddr string
	Path       string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

type contractDataKey struct{}

// ContractData identifies one installed wrap: the contract text, the label of
// the wrapped thing and the call site that installed it.
type ContractData struct {
	WrapID   string
	Contract string
	Thing    string
	Site     string
}

func WithContractData(ctx context.Context, data *ContractData) context.Context {
	return context.WithValue(ctx, contractDataKey{}, data)
}

type moduleDataKey struct{}

type ModuleData struct {
	Name   string
	Format string
}

func WithModuleData(ctx context.Context, data *ModuleData) context.Context {
	return context.WithValue(ctx, moduleDataKey{}, data)
}
