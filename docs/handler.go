package docs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/contracts/internal/logctx"
	"github.com/google/uuid"
)

var _ http.Handler = (*Handler)(nil)

// DefaultModulePath is the path segment naming the unnamed module in
// /modules/{name}.
const DefaultModulePath = "_"

var (
	jsonMediaType     = contenttype.NewMediaType("application/json")
	yamlMediaType     = contenttype.NewMediaType("application/yaml")
	markdownMediaType = contenttype.NewMediaType("text/markdown")
	schemaMediaType   = contenttype.NewMediaType("application/schema+json")

	// The first entry is served to clients that send no Accept header.
	offeredMediaTypes = []contenttype.MediaType{jsonMediaType, yamlMediaType, markdownMediaType, schemaMediaType}
	offeredFormats    = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatSchema}
)

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", jsonMediaType.String())
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": status, "message": msg}})
}

// Option configures a Handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	logger *slog.Logger
	title  string
}

// WithLogger sets the logger for request events. If not provided, logs are
// discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *handlerConfig) { c.logger = l }
}

// WithTitle sets a heading placed above Markdown renderings of the module
// list.
func WithTitle(title string) Option {
	return func(c *handlerConfig) { c.title = title }
}

// Handler serves the documentation of a registry over HTTP:
//
//	GET /modules         every module
//	GET /modules/{name}  one module, "_" naming the unnamed one
//
// The representation is negotiated from the Accept header among JSON, YAML,
// Markdown and JSON Schema. A format query parameter overrides negotiation.
type Handler struct {
	reg   *Registry
	log   *slog.Logger
	title atomic.Pointer[string]
	mux   *http.ServeMux
}

// NewHandler returns a handler serving reg.
func NewHandler(reg *Registry, opts ...Option) *Handler {
	cfg := handlerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}

	h := &Handler{
		reg: reg,
		log: slog.New(logctx.Handler{Handler: cfg.logger.Handler()}),
	}
	h.SetTitle(cfg.title)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /modules", h.handleListModules)
	mux.HandleFunc("GET /modules/{name}", h.handleGetModule)
	h.mux = mux
	return h
}

// SetTitle replaces the heading set with WithTitle. It is safe to call while
// the handler is serving.
func (h *Handler) SetTitle(title string) {
	h.title.Store(&title)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r.WithContext(logctx.WithRequestData(r.Context(), &logctx.RequestData{
		RequestID:  uuid.NewString(),
		Method:     r.Method,
		UserAgent:  r.UserAgent(),
		RemoteAddr: r.RemoteAddr,
		Path:       r.URL.Path,
	})))
}

// negotiate picks the format of the response. It writes the rejection itself
// and returns false when nothing acceptable is on offer.
func (h *Handler) negotiate(w http.ResponseWriter, r *http.Request) (Format, contenttype.MediaType, bool) {
	ctx := r.Context()
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := ParseFormat(q)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			h.log.WarnContext(ctx, "http.format.invalid", slog.String("format", q))
			return "", contenttype.MediaType{}, false
		}
		for i, of := range offeredFormats {
			if of == f {
				return f, offeredMediaTypes[i], true
			}
		}
	}

	mt, _, err := contenttype.GetAcceptableMediaType(r, offeredMediaTypes)
	if err != nil {
		writeJSONError(w, http.StatusNotAcceptable, "acceptable types: application/json, application/yaml, text/markdown, application/schema+json")
		h.log.WarnContext(ctx, "accept.unsupported", slog.String("accept", r.Header.Get("Accept")))
		return "", contenttype.MediaType{}, false
	}
	for i, offered := range offeredMediaTypes {
		if mt.Matches(offered) {
			return offeredFormats[i], offered, true
		}
	}
	return FormatJSON, jsonMediaType, true
}

func (h *Handler) handleListModules(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	f, mt, ok := h.negotiate(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if f == FormatMarkdown {
		if title := *h.title.Load(); title != "" {
			fmt.Fprintf(&buf, "# %s\n\n", title)
		}
	}
	if err := RenderModules(&buf, f, h.reg.Snapshot()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "render failed")
		h.log.ErrorContext(ctx, "http.modules.render.fail", slog.String("err", err.Error()))
		return
	}
	h.write(w, mt, buf.Bytes())
	h.log.InfoContext(ctx, "http.modules.ok", slog.String("format", string(f)), slog.Duration("dur", time.Since(start)))
}

func (h *Handler) handleGetModule(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := r.PathValue("name")
	if name == DefaultModulePath {
		name = ""
	}
	f, mt, ok := h.negotiate(w, r)
	if !ok {
		return
	}
	ctx := logctx.WithModuleData(r.Context(), &logctx.ModuleData{Name: name, Format: string(f)})

	m, found := h.reg.Module(name)
	if !found {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no module named %q", name))
		h.log.InfoContext(ctx, "http.module.not_found")
		return
	}

	var buf bytes.Buffer
	if err := RenderModule(&buf, f, m); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "render failed")
		h.log.ErrorContext(ctx, "http.module.render.fail", slog.String("err", err.Error()))
		return
	}
	h.write(w, mt, buf.Bytes())
	h.log.InfoContext(ctx, "http.module.ok", slog.Duration("dur", time.Since(start)))
}

func (h *Handler) write(w http.ResponseWriter, mt contenttype.MediaType, body []byte) {
	w.Header().Set("Content-Type", mt.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
