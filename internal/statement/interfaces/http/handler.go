// Package http exposes statement rendering over HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"statement-pdf/internal/audit"
	"statement-pdf/internal/auth"
	"statement-pdf/internal/observability/metrics"
	statement "statement-pdf/internal/statement/domain"
)

const (
	defaultMaxBodyBytes = 4 << 20
	maxAssetBytes       = 2 << 20
	defaultFormat       = "pdf"

	routeLegacyPDF = "/pdf"
	routeRender    = "/api/v1/statements/render"
	routeTemplates = "/api/v1/templates"
	routeAssets    = "/api/v1/assets/"
)

var contentTypes = map[string]string{
	"pdf":    "application/pdf",
	"xlsx":   "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"layout": "application/json",
}

// Renderer renders statements into one output format.
type Renderer interface {
	Render(ctx context.Context, stmt *statement.Statement) ([]byte, error)
	Format() string
	Templates() []statement.BankTemplate
}

// AssetWriter stores uploaded assets.
type AssetWriter interface {
	Put(ctx context.Context, key string, data []byte) error
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithAudit records render and upload actions.
func WithAudit(logger audit.Logger) Option {
	return func(h *Handler) { h.audit = logger }
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// WithRenderTimeout bounds each render.
func WithRenderTimeout(d time.Duration) Option {
	return func(h *Handler) { h.renderTimeout = d }
}

// WithAssets enables the asset routes.
func WithAssets(reader statement.AssetStore, writer AssetWriter) Option {
	return func(h *Handler) {
		h.assetReader = reader
		h.assetWriter = writer
	}
}

// Handler serves the render, template and asset routes.
type Handler struct {
	renderers     map[string]Renderer
	assetReader   statement.AssetStore
	assetWriter   AssetWriter
	audit         audit.Logger
	logger        *zap.Logger
	maxBody       int64
	renderTimeout time.Duration
}

// NewHandler constructs a handler. One renderer per format is required and
// "pdf" must be among them.
func NewHandler(renderers []Renderer, opts ...Option) (*Handler, error) {
	h := &Handler{
		renderers: make(map[string]Renderer, len(renderers)),
		logger:    zap.NewNop(),
		maxBody:   defaultMaxBodyBytes,
	}
	for _, r := range renderers {
		if r == nil {
			return nil, errors.New("statement handler: nil renderer")
		}
		if _, dup := h.renderers[r.Format()]; dup {
			return nil, fmt.Errorf("statement handler: duplicate format %q", r.Format())
		}
		h.renderers[r.Format()] = r
	}
	if _, ok := h.renderers[defaultFormat]; !ok {
		return nil, errors.New("statement handler: pdf renderer required")
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(routeLegacyPDF, h)
	mux.Handle(routeRender, h)
	mux.Handle(routeTemplates, h)
	mux.Handle(routeAssets, h)
}

// ServeHTTP dispatches by path.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == routeLegacyPDF && r.Method == http.MethodPost:
		h.handleRender(w, r, path, defaultFormat)
		return
	case path == routeRender && r.Method == http.MethodPost:
		format := strings.ToLower(r.URL.Query().Get("format"))
		if format == "" {
			format = defaultFormat
		}
		h.handleRender(w, r, path, format)
		return
	case path == routeTemplates && r.Method == http.MethodGet:
		h.handleTemplates(w, r)
		return
	case strings.HasPrefix(path, routeAssets):
		key := strings.TrimPrefix(path, routeAssets)
		switch r.Method {
		case http.MethodGet:
			h.handleGetAsset(w, r, key)
			return
		case http.MethodPut:
			h.handlePutAsset(w, r, key)
			return
		}
	}
	metrics.IncHTTPRequest(path, "404")
	writeError(w, http.StatusNotFound, "not_found", "route not found")
}

func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request, route, format string) {
	requestID := RequestIDFromContext(r.Context())
	renderer, ok := h.renderers[format]
	if !ok {
		metrics.IncHTTPRequest(route, "400")
		writeError(w, http.StatusBadRequest, "unsupported_format", fmt.Sprintf("format %q is not supported", format))
		return
	}

	var stmt statement.Statement
	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(body).Decode(&stmt); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.IncHTTPRequest(route, "413")
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large")
			return
		}
		metrics.IncHTTPRequest(route, "400")
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	ctx := r.Context()
	if h.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.renderTimeout)
		defer cancel()
	}
	start := time.Now()
	data, err := renderer.Render(ctx, &stmt)
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.String("template", stmt.Meta.Template.String()),
		zap.String("format", format),
		zap.Int("transactions", len(stmt.Transactions)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		status, code := statusFor(err)
		h.logger.Warn("statement render failed", append(fields, zap.Int("status", status), zap.Error(err))...)
		h.logAudit(r, "statement.render", stmt, format, code)
		metrics.IncHTTPRequest(route, fmt.Sprint(status))
		writeError(w, status, code, err.Error())
		return
	}
	h.logger.Info("statement rendered", append(fields, zap.Int("bytes", len(data)))...)
	h.logAudit(r, "statement.render", stmt, format, metrics.ResultSuccess)
	metrics.IncHTTPRequest(route, "200")

	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename(stmt, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	supported := h.renderers[defaultFormat].Templates()
	formats := make([]string, 0, len(h.renderers))
	for f := range h.renderers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	metrics.IncHTTPRequest(routeTemplates, "200")
	writeJSON(w, http.StatusOK, map[string]any{
		"supported": supported,
		"known":     statement.KnownTemplates,
		"formats":   formats,
	})
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request, key string) {
	if h.assetReader == nil || key == "" {
		writeError(w, http.StatusNotFound, "not_found", "asset not found")
		return
	}
	data, err := h.assetReader.Fetch(r.Context(), key)
	if err != nil {
		status, code := statusFor(err)
		if errors.Is(err, statement.ErrAssetNotFound) {
			status = http.StatusNotFound
		}
		metrics.IncHTTPRequest(routeAssets, fmt.Sprint(status))
		writeError(w, status, code, err.Error())
		return
	}
	metrics.IncHTTPRequest(routeAssets, "200")
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handlePutAsset(w http.ResponseWriter, r *http.Request, key string) {
	if h.assetWriter == nil {
		writeError(w, http.StatusNotImplemented, "assets_read_only", "no writable asset store configured")
		return
	}
	if key == "" || strings.ContainsAny(key, `/\`) {
		writeError(w, http.StatusBadRequest, "invalid_key", "invalid asset key")
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAssetBytes))
	if err != nil || len(data) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_body", "asset body required")
		return
	}
	if err := h.assetWriter.Put(r.Context(), key, data); err != nil {
		h.logger.Error("asset upload failed", zap.String("key", key), zap.Error(err))
		metrics.IncHTTPRequest(routeAssets, "500")
		writeError(w, http.StatusInternalServerError, "asset_store", "asset store failure")
		return
	}
	h.logger.Info("asset stored", zap.String("key", key), zap.Int("bytes", len(data)))
	if h.audit != nil {
		_ = h.audit.Log(r.Context(), audit.Entry{
			Actor:     auth.SubjectFromContext(r.Context()),
			Role:      string(auth.RoleFromContext(r.Context())),
			Action:    "asset.put:" + key,
			Result:    metrics.ResultSuccess,
			RequestID: RequestIDFromContext(r.Context()),
			IP:        audit.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
	}
	metrics.IncHTTPRequest(routeAssets, "204")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logAudit(r *http.Request, action string, stmt statement.Statement, format, result string) {
	if h.audit == nil {
		return
	}
	err := h.audit.Log(r.Context(), audit.Entry{
		Actor:         auth.SubjectFromContext(r.Context()),
		Role:          string(auth.RoleFromContext(r.Context())),
		Action:        action,
		Template:      stmt.Meta.Template.String(),
		Format:        format,
		Result:        result,
		AccountDigest: audit.DigestAccount(stmt.Details.AccountNumber),
		RequestID:     RequestIDFromContext(r.Context()),
		IP:            audit.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		h.logger.Warn("audit log failed", zap.Error(err))
	}
}

// statusFor maps render errors to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, statement.ErrUnsupportedTemplate):
		return http.StatusBadRequest, "unsupported_template"
	case errors.Is(err, statement.ErrNilStatement),
		errors.Is(err, statement.ErrMissingHolderName),
		errors.Is(err, statement.ErrMissingAccountNumber):
		return http.StatusBadRequest, "invalid_statement"
	case errors.Is(err, statement.ErrDateParse):
		return http.StatusUnprocessableEntity, "invalid_date"
	case errors.Is(err, statement.ErrEmptyStatementAmbiguity):
		return http.StatusUnprocessableEntity, "empty_statement"
	case errors.Is(err, statement.ErrAssetNotFound):
		return http.StatusInternalServerError, "asset_not_found"
	case errors.Is(err, statement.ErrDocumentSink):
		return http.StatusInternalServerError, "document_sink"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return 499, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func filename(stmt statement.Statement, format string) string {
	account := stmt.Details.AccountNumber
	if len(account) > 4 {
		account = account[len(account)-4:]
	}
	name := "statement"
	if t := strings.ToLower(stmt.Meta.Template.String()); t != "" {
		name += "-" + t
	}
	if account != "" {
		name += "-" + account
	}
	if format == "layout" {
		return name + ".json"
	}
	return name + "." + format
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
