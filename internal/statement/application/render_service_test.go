package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
	"statement-pdf/internal/statement/templates"
)

type stubAssets map[string][]byte

func (s stubAssets) Fetch(_ context.Context, key string) ([]byte, error) {
	if data, ok := s[key]; ok {
		return data, nil
	}
	return nil, &statement.AssetNotFoundError{Key: key}
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func janeDoe(template statement.BankTemplate) *statement.Statement {
	return &statement.Statement{
		Meta: statement.StatementMeta{Template: template, GeneratedAt: "2025-08-03T10:15:00Z"},
		Details: statement.AccountHolderDetails{
			Name:          "Jane Doe",
			AccountNumber: "123456789012",
		},
		Transactions: []statement.Transaction{
			{
				Date:    "2025-08-01T00:00:00Z",
				Credit:  decimal.RequireFromString("500.00"),
				Balance: decimal.RequireFromString("500.00"),
			},
			{
				Date:    "2025-08-02T00:00:00Z",
				Debit:   decimal.RequireFromString("200.00"),
				Balance: decimal.RequireFromString("300.00"),
			},
		},
	}
}

func newService(t *testing.T, sink layout.Sink, opts ...Option) *RenderService {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock{now: time.Unix(1754216100, 0)})}, opts...)
	svc, err := NewRenderService(templates.Default(), sink, stubAssets{"sbi": []byte("logo")}, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestNewRenderServiceRequiresDeps(t *testing.T) {
	if _, err := NewRenderService(nil, &layout.Recorder{}, stubAssets{}); err == nil {
		t.Fatalf("expected error for nil resolver")
	}
	if _, err := NewRenderService(templates.Default(), nil, stubAssets{}); err == nil {
		t.Fatalf("expected error for nil sink")
	}
	if _, err := NewRenderService(templates.Default(), &layout.Recorder{}, nil); err == nil {
		t.Fatalf("expected error for nil assets")
	}
}

func TestRenderSBI(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	out, err := svc.Render(context.Background(), janeDoe(statement.TemplateSBI))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	rec := recorder.Last()
	if rec == nil || !rec.Closed || rec.Discarded {
		t.Fatalf("expected a closed session, got %+v", rec)
	}
	var decoded layout.Recording
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(decoded.Ops) != len(rec.Ops) {
		t.Fatalf("expected %d ops in output, got %d", len(rec.Ops), len(decoded.Ops))
	}
	if decoded.Geometry != layout.DefaultGeometry {
		t.Fatalf("unexpected geometry %+v", decoded.Geometry)
	}
	rows := rec.Tables()[1].Rows
	if len(rows) != 2 || rows[0][5].Text != "500.00" || rows[1][4].Text != "200.00" {
		t.Fatalf("unexpected transaction rows")
	}
}

func TestRenderUnknownTemplateOpensNoSession(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	_, err := svc.Render(context.Background(), janeDoe("UNKNOWN"))
	if !errors.Is(err, statement.ErrUnsupportedTemplate) {
		t.Fatalf("expected unsupported template, got %v", err)
	}
	if n := len(recorder.Sessions()); n != 0 {
		t.Fatalf("expected no sessions, got %d", n)
	}
}

func TestRenderResolvesTemplateBeforeValidating(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	stmt := janeDoe(statement.TemplatePNB)
	stmt.Details.Name = " "
	_, err := svc.Render(context.Background(), stmt)
	if !errors.Is(err, statement.ErrUnsupportedTemplate) {
		t.Fatalf("expected unsupported template, got %v", err)
	}
	if errors.Is(err, statement.ErrMissingHolderName) {
		t.Fatalf("validation should not run for an unsupported template")
	}
	if n := len(recorder.Sessions()); n != 0 {
		t.Fatalf("expected no sessions, got %d", n)
	}
}

func TestRenderInvalidStatement(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	if _, err := svc.Render(context.Background(), nil); !errors.Is(err, statement.ErrNilStatement) {
		t.Fatalf("expected nil statement error, got %v", err)
	}
	stmt := janeDoe(statement.TemplateSBI)
	stmt.Details.AccountNumber = " "
	if _, err := svc.Render(context.Background(), stmt); !errors.Is(err, statement.ErrMissingAccountNumber) {
		t.Fatalf("expected missing account number, got %v", err)
	}
	if n := len(recorder.Sessions()); n != 0 {
		t.Fatalf("expected no sessions, got %d", n)
	}
}

func TestRenderFailureDiscardsSession(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	stmt := janeDoe(statement.TemplateSBI)
	stmt.Transactions[1].Date = "not-a-date"
	_, err := svc.Render(context.Background(), stmt)
	if !errors.Is(err, statement.ErrDateParse) {
		t.Fatalf("expected date parse error, got %v", err)
	}
	rec := recorder.Last()
	if rec == nil || !rec.Discarded || rec.Closed {
		t.Fatalf("expected discarded session")
	}
}

func TestRenderMissingAssetDiscardsSession(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	_, err := svc.Render(context.Background(), janeDoe(statement.TemplateHDFC))
	if !errors.Is(err, statement.ErrAssetNotFound) {
		t.Fatalf("expected asset not found, got %v", err)
	}
	if rec := recorder.Last(); rec == nil || !rec.Discarded {
		t.Fatalf("expected discarded session")
	}
}

func TestRenderOpenFailure(t *testing.T) {
	boom := errors.New("backend down")
	svc := newService(t, &layout.Recorder{OpenErr: boom})

	_, err := svc.Render(context.Background(), janeDoe(statement.TemplateSBI))
	var sinkErr *statement.DocumentSinkError
	if !errors.As(err, &sinkErr) || sinkErr.Op != "open" || !errors.Is(err, boom) {
		t.Fatalf("expected open sink error, got %v", err)
	}
}

func TestRenderCloseFailure(t *testing.T) {
	boom := errors.New("disk full")
	recorder := &layout.Recorder{CloseErr: boom}
	svc := newService(t, recorder)

	_, err := svc.Render(context.Background(), janeDoe(statement.TemplateSBI))
	if !errors.Is(err, statement.ErrDocumentSink) || !errors.Is(err, boom) {
		t.Fatalf("expected close sink error, got %v", err)
	}
	if rec := recorder.Last(); rec.Closed {
		t.Fatalf("session should not be marked closed")
	}
}

func TestRenderCanceledContext(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Render(ctx, janeDoe(statement.TemplateSBI)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
	if n := len(recorder.Sessions()); n != 0 {
		t.Fatalf("expected no sessions, got %d", n)
	}
}

func TestRenderWithStylesOverride(t *testing.T) {
	recorder := &layout.Recorder{}
	table := style.DefaultTable()
	title := table[style.RoleTitle]
	title.Size = 16
	table[style.RoleTitle] = title
	svc := newService(t, recorder, WithStyles(table))

	if _, err := svc.Render(context.Background(), janeDoe(statement.TemplateSBI)); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, op := range recorder.Last().Ops {
		if op.Paragraph != nil && op.Paragraph.Style.Bold && op.Paragraph.Style.Size == 16 {
			return
		}
	}
	t.Fatalf("expected a 16pt title paragraph")
}

func TestConcurrentRendersAreIsolated(t *testing.T) {
	recorder := &layout.Recorder{}
	svc := newService(t, recorder)

	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := svc.Render(context.Background(), janeDoe(statement.TemplateSBI))
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	for _, rec := range recorder.Sessions() {
		if len(rec.Tables()) != 2 {
			t.Fatalf("expected 2 tables per session, got %d", len(rec.Tables()))
		}
	}
}

func TestRecorderFormat(t *testing.T) {
	svc := newService(t, &layout.Recorder{})
	if svc.Format() != "layout" {
		t.Fatalf("format = %q", svc.Format())
	}
	if len(svc.Templates()) != 3 {
		t.Fatalf("expected registry templates")
	}
}
