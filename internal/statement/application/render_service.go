package application

import (
	"context"
	"errors"
	"time"

	"statement-pdf/internal/observability/metrics"
	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
	"statement-pdf/internal/statement/templates"
)

// TemplateResolver looks up the renderer for a bank identifier.
type TemplateResolver interface {
	Resolve(template statement.BankTemplate) (templates.Renderer, error)
}

// formatNamer is implemented by sinks that report their output format.
type formatNamer interface {
	Format() string
}

// Option configures a RenderService.
type Option func(*RenderService)

// WithClock overrides the clock handed to renderers.
func WithClock(clock statement.Clock) Option {
	return func(s *RenderService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithGeometry overrides the page setup.
func WithGeometry(geometry layout.Geometry) Option {
	return func(s *RenderService) {
		s.geometry = geometry
	}
}

// WithStyles overrides the style table.
func WithStyles(table style.Table) Option {
	return func(s *RenderService) {
		if len(table) > 0 {
			s.styles = table
		}
	}
}

// RenderService validates a statement, dispatches it to its bank renderer and
// returns the finished document bytes.
type RenderService struct {
	resolver TemplateResolver
	sink     layout.Sink
	assets   statement.AssetStore
	clock    statement.Clock
	geometry layout.Geometry
	styles   style.Table
	format   string
}

// NewRenderService constructs the service.
func NewRenderService(resolver TemplateResolver, sink layout.Sink, assets statement.AssetStore, opts ...Option) (*RenderService, error) {
	if resolver == nil {
		return nil, errors.New("render service: nil template resolver")
	}
	if sink == nil {
		return nil, errors.New("render service: nil document sink")
	}
	if assets == nil {
		return nil, errors.New("render service: nil asset store")
	}
	s := &RenderService{
		resolver: resolver,
		sink:     sink,
		assets:   assets,
		clock:    statement.SystemClock{},
		geometry: layout.DefaultGeometry,
		styles:   style.DefaultTable(),
		format:   "unknown",
	}
	if named, ok := sink.(formatNamer); ok {
		s.format = named.Format()
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.styles.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Format reports the output format of the underlying sink.
func (s *RenderService) Format() string { return s.format }

// Render produces the document for stmt. The template is resolved and then
// the statement validated before a sink session is opened, and the session is
// discarded on every failure path.
func (s *RenderService) Render(ctx context.Context, stmt *statement.Statement) (out []byte, err error) {
	started := time.Now()
	template := statement.BankTemplate("")
	if stmt != nil {
		template = stmt.Meta.Template
	}
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
			metrics.IncRenderError(errorReason(err))
		}
		metrics.ObserveRender(template.String(), s.format, result, time.Since(started))
	}()

	if stmt == nil {
		return nil, statement.ErrNilStatement
	}
	renderer, err := s.resolver.Resolve(template)
	if err != nil {
		return nil, err
	}
	if err := stmt.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := s.sink.Open(s.geometry)
	if err != nil {
		return nil, &statement.DocumentSinkError{Op: "open", Err: err}
	}
	closed := false
	defer func() {
		if !closed {
			session.Discard()
		}
	}()

	env := &templates.Env{
		Doc:    layout.NewDocument(session, style.NewCache(s.styles), s.geometry),
		Assets: s.assets,
		Clock:  s.clock,
	}
	if err := renderer.Render(ctx, env, stmt); err != nil {
		return nil, err
	}
	if err := env.Doc.Err(); err != nil {
		return nil, err
	}

	closed = true
	data, err := session.Close()
	if err != nil {
		return nil, &statement.DocumentSinkError{Op: "close", Err: err}
	}
	return data, nil
}

// Templates lists the bank identifiers the service can render when the
// resolver is a registry.
func (s *RenderService) Templates() []statement.BankTemplate {
	if reg, ok := s.resolver.(*templates.Registry); ok {
		return reg.Templates()
	}
	return nil
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, statement.ErrUnsupportedTemplate):
		return "unsupported_template"
	case errors.Is(err, statement.ErrAssetNotFound):
		return "asset_not_found"
	case errors.Is(err, statement.ErrDateParse):
		return "date_parse"
	case errors.Is(err, statement.ErrDocumentSink):
		return "document_sink"
	case errors.Is(err, statement.ErrEmptyStatementAmbiguity):
		return "empty_statement"
	case errors.Is(err, statement.ErrNilStatement),
		errors.Is(err, statement.ErrMissingHolderName),
		errors.Is(err, statement.ErrMissingAccountNumber):
		return "invalid_statement"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "unknown"
	}
}
