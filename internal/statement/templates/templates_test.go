package templates

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

type stubAssets map[string][]byte

func (s stubAssets) Fetch(_ context.Context, key string) ([]byte, error) {
	data, ok := s[key]
	if !ok {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	return data, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var allLogos = stubAssets{
	"sbi":  []byte("sbi-logo"),
	"hdfc": []byte("hdfc-logo"),
	"axis": []byte("axis-logo"),
}

func sampleStatement(template statement.BankTemplate) *statement.Statement {
	return &statement.Statement{
		ID: "7f3c2a10-9b1e-4d7a-a111-222233334444",
		Meta: statement.StatementMeta{
			Template:    template,
			GeneratedAt: "2025-08-05T09:30:00Z",
		},
		Details: statement.AccountHolderDetails{
			Name:            "Jane Doe",
			AccountNumber:   "123456789012",
			IFSC:            "SBIN0001234",
			BankName:        "Test Bank",
			StartingBalance: decimal.Zero,
		},
		Transactions: []statement.Transaction{
			{
				Date:        "2025-08-01T10:00:00Z",
				Description: "SALARY",
				Reference:   "REF001",
				Credit:      decimal.RequireFromString("500.00"),
				Balance:     decimal.RequireFromString("500.00"),
			},
			{
				Date:        "2025-08-02T10:00:00Z",
				Description: "ATM WDL",
				Reference:   "REF002",
				Debit:       decimal.RequireFromString("200.00"),
				Balance:     decimal.RequireFromString("300.00"),
			},
		},
	}
}

func render(t *testing.T, renderer Renderer, assets statement.AssetStore, stmt *statement.Statement) (*layout.Recording, error) {
	t.Helper()
	recorder := &layout.Recorder{}
	session, err := recorder.Open(layout.DefaultGeometry)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	env := &Env{
		Doc:    layout.NewDocument(session, style.NewCache(style.DefaultTable()), layout.DefaultGeometry),
		Assets: assets,
		Clock:  fixedClock{now: time.UnixMilli(1754380800123)},
	}
	err = renderer.Render(context.Background(), env, stmt)
	return recorder.Last(), err
}

func infoValue(table layout.Table, label string) (string, bool) {
	for _, row := range table.Rows {
		if len(row) == 3 && row[0].Text == label {
			return row[2].Text, true
		}
	}
	return "", false
}

func TestRegistryResolve(t *testing.T) {
	reg := Default()
	for _, tmpl := range []statement.BankTemplate{statement.TemplateSBI, statement.TemplateHDFC, statement.TemplateAXIS} {
		if _, err := reg.Resolve(tmpl); err != nil {
			t.Fatalf("resolve %s: %v", tmpl, err)
		}
	}
	got := reg.Templates()
	if len(got) != 3 || got[0] != statement.TemplateAXIS || got[2] != statement.TemplateSBI {
		t.Fatalf("unexpected templates %v", got)
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	for _, tmpl := range []statement.BankTemplate{"UNKNOWN", statement.TemplatePNB, ""} {
		_, err := Default().Resolve(tmpl)
		if !errors.Is(err, statement.ErrUnsupportedTemplate) {
			t.Fatalf("expected unsupported template for %q, got %v", tmpl, err)
		}
		var typed *statement.UnsupportedTemplateError
		if !errors.As(err, &typed) || typed.Template != tmpl {
			t.Fatalf("expected typed error naming %q, got %v", tmpl, err)
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		Entry{Template: statement.TemplateSBI, Renderer: SBI{}},
		Entry{Template: statement.TemplateSBI, Renderer: HDFC{}},
	)
	if !errors.Is(err, statement.ErrDuplicateTemplate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := NewRegistry(Entry{Template: statement.TemplateSBI}); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestMustNewRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustNewRegistry(
		Entry{Template: statement.TemplateAXIS, Renderer: Axis{}},
		Entry{Template: statement.TemplateAXIS, Renderer: Axis{}},
	)
}

func TestSBITransactionRows(t *testing.T) {
	rec, err := render(t, SBI{}, allLogos, sampleStatement(statement.TemplateSBI))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	tables := rec.Tables()
	if len(tables) != 2 {
		t.Fatalf("expected info and transaction tables, got %d", len(tables))
	}
	txns := tables[1]
	if len(txns.Header) != 7 || txns.Header[4].Text != "Debit" || txns.Header[5].Text != "Credit" {
		t.Fatalf("unexpected header %+v", txns.Header)
	}
	if len(txns.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(txns.Rows))
	}
	if txns.Rows[0][4].Text != "" || txns.Rows[0][5].Text != "500.00" {
		t.Fatalf("row 1 debit/credit = %q/%q", txns.Rows[0][4].Text, txns.Rows[0][5].Text)
	}
	if txns.Rows[1][4].Text != "200.00" || txns.Rows[1][5].Text != "" {
		t.Fatalf("row 2 debit/credit = %q/%q", txns.Rows[1][4].Text, txns.Rows[1][5].Text)
	}
	if txns.Rows[1][6].Text != "300.00" {
		t.Fatalf("row 2 balance = %q", txns.Rows[1][6].Text)
	}
	if txns.Rows[0][0].Text != "1 Aug 2025" {
		t.Fatalf("row 1 date = %q", txns.Rows[0][0].Text)
	}
	if !txns.RepeatHeader || !txns.Borders {
		t.Fatalf("expected bordered table with repeated header")
	}
}

func TestSBIOpsOrder(t *testing.T) {
	rec, err := render(t, SBI{}, allLogos, sampleStatement(statement.TemplateSBI))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{layout.OpImage, layout.OpTable, layout.OpParagraph, layout.OpTable, layout.OpParagraph, layout.OpParagraph}
	got := rec.Kinds()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("ops = %v, want %v", got, want)
	}
	if rec.Ops[0].Image.Name != "sbi" || rec.Ops[0].Image.MaxWidth != 120 || rec.Ops[0].Image.MaxHeight != 40 {
		t.Fatalf("unexpected logo %+v", rec.Ops[0].Image)
	}
	if rec.Ops[0].Image.Align != layout.AlignLeft {
		t.Fatalf("logo should be left aligned")
	}
}

func TestSBIHeaderInfo(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Details.Branch = "MG ROAD"
	rec, err := render(t, SBI{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	info := rec.Tables()[0]
	cases := map[string]string{
		"Account Name":           "Jane Doe",
		"Address":                SBIAddressPlaceholder,
		"Date":                   "5 Aug 2025",
		"Account Number":         "123456789012",
		"Account Description":    "REGULAR SB CHQ-INDIVIDUALS",
		"Branch":                 "MG ROAD",
		"Drawing Power":          "0.00",
		"Interest Rate (% p.a.)": "2.5",
		"MOD Balance":            "0.00",
		"CIF No.":                "54380800123",
		"IFSC Code":              "SBIN0001234",
	}
	for label, want := range cases {
		got, ok := infoValue(info, label)
		if !ok {
			t.Fatalf("missing info row %q", label)
		}
		if got != want {
			t.Fatalf("%s = %q, want %q", label, got, want)
		}
	}
}

func TestSBIAddressPresent(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Details.Address = "12 Park Street"
	rec, err := render(t, SBI{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, _ := infoValue(rec.Tables()[0], "Address"); got != "12 Park Street" {
		t.Fatalf("address = %q", got)
	}
}

func TestSBIPeriodFromTransactions(t *testing.T) {
	rec, err := render(t, SBI{}, allLogos, sampleStatement(statement.TemplateSBI))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Account Statement from 1 Aug 2025 to 2 Aug 2025"
	if rec.Paragraphs()[0] != want {
		t.Fatalf("title = %q, want %q", rec.Paragraphs()[0], want)
	}
}

func TestSBIPeriodFromMeta(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Meta.StatementPeriodStart = "2025-07-01T00:00:00Z"
	stmt.Meta.StatementPeriodEnd = "2025-07-31T00:00:00Z"
	rec, err := render(t, SBI{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Account Statement from 1 Jul 2025 to 31 Jul 2025"
	if rec.Paragraphs()[0] != want {
		t.Fatalf("title = %q, want %q", rec.Paragraphs()[0], want)
	}
}

func TestPeriodMixedBounds(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Meta.StatementPeriodStart = "2025-07-15"
	start, end, err := period(stmt, "2 Jan 2006")
	if err != nil {
		t.Fatalf("period: %v", err)
	}
	if start != "15 Jul 2025" || end != "2 Aug 2025" {
		t.Fatalf("period = %s..%s", start, end)
	}
}

func TestEmptyStatementAmbiguity(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Transactions = nil
	_, err := render(t, SBI{}, allLogos, stmt)
	if !errors.Is(err, statement.ErrEmptyStatementAmbiguity) {
		t.Fatalf("expected ambiguity error, got %v", err)
	}
}

func TestEmptyStatementWithPeriod(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Transactions = nil
	stmt.Meta.StatementPeriodStart = "2025-07-01T00:00:00Z"
	stmt.Meta.StatementPeriodEnd = "2025-07-31T00:00:00Z"
	rec, err := render(t, SBI{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rows := rec.Tables()[1].Rows; len(rows) != 0 {
		t.Fatalf("expected no body rows, got %d", len(rows))
	}
}

func TestMissingLogoIsFatal(t *testing.T) {
	for _, renderer := range []Renderer{SBI{}, HDFC{}, Axis{}} {
		rec, err := render(t, renderer, stubAssets{}, sampleStatement(statement.TemplateSBI))
		if !errors.Is(err, statement.ErrAssetNotFound) {
			t.Fatalf("%T: expected asset not found, got %v", renderer, err)
		}
		if len(rec.Tables()) != 0 {
			t.Fatalf("%T: expected no tables after missing logo", renderer)
		}
	}
}

func TestNilAssetStore(t *testing.T) {
	_, err := render(t, SBI{}, nil, sampleStatement(statement.TemplateSBI))
	var typed *statement.AssetNotFoundError
	if !errors.As(err, &typed) || typed.Key != "sbi" {
		t.Fatalf("expected asset error for sbi, got %v", err)
	}
}

func TestInvalidTransactionDate(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Meta.StatementPeriodStart = "2025-07-01T00:00:00Z"
	stmt.Meta.StatementPeriodEnd = "2025-07-31T00:00:00Z"
	stmt.Transactions[1].Date = "yesterday"
	_, err := render(t, SBI{}, allLogos, stmt)
	var typed *statement.DateParseError
	if !errors.As(err, &typed) || typed.Raw != "yesterday" {
		t.Fatalf("expected date parse error, got %v", err)
	}
}

func TestInvalidGeneratedAt(t *testing.T) {
	stmt := sampleStatement(statement.TemplateSBI)
	stmt.Meta.GeneratedAt = "05/08/2025"
	_, err := render(t, SBI{}, allLogos, stmt)
	if !errors.Is(err, statement.ErrDateParse) {
		t.Fatalf("expected date parse error, got %v", err)
	}
}

func TestCIFNumber(t *testing.T) {
	if got := cifNumber(fixedClock{now: time.UnixMilli(1754380800123)}); got != "54380800123" {
		t.Fatalf("cif = %q", got)
	}
	if got := cifNumber(fixedClock{now: time.UnixMilli(42)}); got != "00000000042" {
		t.Fatalf("cif = %q", got)
	}
}

func TestHDFCRender(t *testing.T) {
	stmt := sampleStatement(statement.TemplateHDFC)
	stmt.Details.StartingBalance = decimal.Zero
	rec, err := render(t, HDFC{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	tables := rec.Tables()
	if len(tables) != 3 {
		t.Fatalf("expected details, transactions and summary tables, got %d", len(tables))
	}
	if got, _ := infoValue(tables[0], "Cust ID"); got != "56789012" {
		t.Fatalf("cust id = %q", got)
	}
	if got, _ := infoValue(tables[0], "Account Branch"); got != "Test Bank" {
		t.Fatalf("branch = %q", got)
	}
	txns := tables[1]
	if len(txns.Rows) != 2 || txns.Rows[0][0].Text != "01/08/25" || txns.Rows[0][5].Text != "500.00" {
		t.Fatalf("unexpected first row %+v", txns.Rows[0])
	}
	summary := tables[2].Rows[0]
	want := []string{"0.00", "1", "1", "200.00", "500.00", "300.00"}
	for i, w := range want {
		if summary[i].Text != w {
			t.Fatalf("summary[%d] = %q, want %q", i, summary[i].Text, w)
		}
	}
	found := false
	for _, p := range rec.Paragraphs() {
		if p == "Generated On: 05-Aug-2025 09:30:00" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing generated on line in %v", rec.Paragraphs())
	}
}

func TestAxisRender(t *testing.T) {
	stmt := sampleStatement(statement.TemplateAXIS)
	stmt.Details.StartingBalance = decimal.RequireFromString("1000")
	rec, err := render(t, Axis{}, allLogos, stmt)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	kinds := rec.Kinds()
	breaks := 0
	for _, k := range kinds {
		if k == layout.OpPageBreak {
			breaks++
		}
	}
	if breaks != 1 {
		t.Fatalf("expected one page break, got %d", breaks)
	}
	tables := rec.Tables()
	if len(tables) != 3 {
		t.Fatalf("expected info, transactions and certificate tables, got %d", len(tables))
	}
	if got, _ := infoValue(tables[0], "Customer ID"); got != "7f3c2a109b" {
		t.Fatalf("customer id = %q", got)
	}
	txns := tables[1]
	if len(txns.Rows) != 3 {
		t.Fatalf("expected opening row plus 2, got %d", len(txns.Rows))
	}
	opening := txns.Rows[0]
	if opening[0].Text != "OPENING BALANCE" || opening[0].Span() != 5 || opening[1].Text != "1,000.00" {
		t.Fatalf("unexpected opening row %+v", opening)
	}
	if txns.Rows[2][0].Text != "02-08-2025" || txns.Rows[2][3].Text != "200.00" {
		t.Fatalf("unexpected row %+v", txns.Rows[2])
	}
	cert := tables[2]
	if cert.Rows[1][0].Span() != 4 || cert.Rows[1][1].Text != "300.00" {
		t.Fatalf("unexpected total row %+v", cert.Rows[1])
	}
}

func TestAxisCustomerIDFallback(t *testing.T) {
	stmt := sampleStatement(statement.TemplateAXIS)
	stmt.ID = ""
	if got := axisCustomerID(stmt); got != "3456789012" {
		t.Fatalf("customer id = %q", got)
	}
}
