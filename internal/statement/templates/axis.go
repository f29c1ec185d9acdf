package templates

import (
	"context"
	"strings"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/format"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	axisLogoKey    = "axis"
	axisDateLayout = format.LayoutDashed

	// AxisAddressPlaceholder is shown when the holder has no address.
	AxisAddressPlaceholder = "CUSTOMER ADDRESS\nCITY, STATE\nINDIA - 000000"

	axisScheme        = "CA BUSINESS ADVANTAGE"
	axisMICR          = "N/A"
	axisNominee       = "Y"
	axisInitBranch    = "304"
	axisCurrency      = "INR"
	axisCustomerIDLen = 10
)

var (
	axisInfoWidths        = []float64{25, 3, 72}
	axisTransactionWidths = []float64{10, 8, 40, 12, 12, 12, 6}
	axisTransactionHeader = []string{"Tran Date", "Chq No", "Particulars", "Debit", "Credit", "Balance", "Init. Br"}
	axisTransactionAligns = []layout.Align{
		layout.AlignLeft, layout.AlignLeft, layout.AlignLeft,
		layout.AlignRight, layout.AlignRight, layout.AlignRight, layout.AlignCenter,
	}
	axisCertificateWidths = []float64{10, 24, 20, 28, 18}
	axisCertificateHeader = []string{"Currency", "Scheme", "Account No.", "Account name", "Balance"}
)

// Axis renders Axis Bank statements followed by a balance certificate page.
type Axis struct{}

// Render emits the Axis layout.
func (Axis) Render(ctx context.Context, env *Env, stmt *statement.Statement) error {
	doc := env.Doc
	start, end, err := period(stmt, axisDateLayout)
	if err != nil {
		return err
	}
	if err := addLogo(ctx, env, axisLogoKey); err != nil {
		return err
	}
	name := strings.ToUpper(stmt.Details.Name)
	customerID := axisCustomerID(stmt)

	doc.Paragraph(name, style.RoleHeader, 6, 2)
	doc.Paragraph(strings.ToUpper(orPlaceholder(stmt.Details.Address, AxisAddressPlaceholder)), style.RoleBody, 0, 6)
	info := infoTable(doc, axisInfoWidths, []infoRow{
		{Label: "Customer ID", Value: customerID},
		{Label: "IFSC Code", Value: orPlaceholder(stmt.Details.IFSC, axisMICR)},
		{Label: "MICR Code", Value: axisMICR},
		{Label: "Scheme", Value: axisScheme},
		{Label: "Nominee Registered", Value: axisNominee},
	})
	info.SpacingAfter = 8
	doc.AddTable(info)

	doc.Paragraph("Statement of Account No : "+stmt.Details.AccountNumber+
		" for the period (From : "+start+" To : "+end+")", style.RoleTitle, 4, 6)

	if err := axisTransactions(doc, stmt); err != nil {
		return err
	}

	doc.PageBreak()
	if err := addLogo(ctx, env, axisLogoKey); err != nil {
		return err
	}
	axisCertificate(doc, stmt, name, customerID, end)
	return doc.Err()
}

func axisTransactions(doc *layout.Document, stmt *statement.Statement) error {
	opening := doc.Cell("OPENING BALANCE", style.RoleHeader, layout.AlignLeft)
	opening.ColSpan = 5
	table := layout.Table{
		Widths:       axisTransactionWidths,
		Header:       headerRow(doc, axisTransactionHeader, axisTransactionAligns),
		Borders:      true,
		RepeatHeader: true,
		Rows: [][]layout.Cell{{
			opening,
			balanceCell(doc, stmt.Details.StartingBalance, style.RoleHeader),
			doc.Cell("", style.RoleBody, layout.AlignCenter),
		}},
	}
	for _, tx := range stmt.Transactions {
		date, err := format.Date(tx.Date, axisDateLayout)
		if err != nil {
			return err
		}
		debit, credit := amountCells(doc, tx)
		table.Rows = append(table.Rows, []layout.Cell{
			doc.Cell(date, style.RoleBody, layout.AlignLeft),
			doc.Cell(tx.Reference, style.RoleBody, layout.AlignLeft),
			doc.Cell(tx.Description, style.RoleBody, layout.AlignLeft),
			debit,
			credit,
			balanceCell(doc, tx.Balance, style.RoleBody),
			doc.Cell(axisInitBranch, style.RoleBody, layout.AlignCenter),
		})
	}
	doc.AddTable(table)
	return doc.Err()
}

func axisCertificate(doc *layout.Document, stmt *statement.Statement, name, customerID, end string) {
	branch := strings.ToUpper(orPlaceholder(stmt.Details.BranchName(), "MAIN"))
	doc.Paragraph("AXIS BANK LTD. "+branch+" BRANCH", style.RoleHeader, 8, 8)
	doc.Paragraph(name, style.RoleHeader, 0, 2)
	doc.Paragraph(strings.ToUpper(orPlaceholder(stmt.Details.Address, AxisAddressPlaceholder)), style.RoleBody, 0, 6)
	doc.Paragraph("Customer ID: "+customerID, style.RoleCaption, 0, 10)
	doc.AddParagraph(layout.Paragraph{
		Text:          "BALANCE CERTIFICATE",
		Style:         doc.Styles().Title(),
		Align:         layout.AlignCenter,
		SpacingBefore: 6,
		SpacingAfter:  8,
	})
	doc.Paragraph("This is to certify that the balance in the undernoted account(s) of "+name+
		" at the close of "+end+" was under :", style.RoleBody, 0, 8)

	closing := stmt.ClosingBalance()
	total := doc.Cell("- Total ( FOR "+axisCurrency+" ):", style.RoleHeader, layout.AlignLeft)
	total.ColSpan = 4
	doc.AddTable(layout.Table{
		Widths:  axisCertificateWidths,
		Header:  headerRow(doc, axisCertificateHeader, nil),
		Borders: true,
		Rows: [][]layout.Cell{
			{
				doc.Cell(axisCurrency, style.RoleBody, layout.AlignLeft),
				doc.Cell(axisScheme, style.RoleBody, layout.AlignLeft),
				doc.Cell(stmt.Details.AccountNumber, style.RoleBody, layout.AlignLeft),
				doc.Cell(name, style.RoleBody, layout.AlignLeft),
				balanceCell(doc, closing, style.RoleBody),
			},
			{total, balanceCell(doc, closing, style.RoleHeader)},
		},
	})
}

// axisCustomerID derives a ten character id from the statement id, falling
// back to the account number.
func axisCustomerID(stmt *statement.Statement) string {
	id := strings.ReplaceAll(stmt.ID, "-", "")
	if id == "" {
		id = stmt.Details.AccountNumber
		if len(id) > axisCustomerIDLen {
			return id[len(id)-axisCustomerIDLen:]
		}
		return id
	}
	if len(id) > axisCustomerIDLen {
		return id[:axisCustomerIDLen]
	}
	return id
}
