package templates

import (
	"context"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/format"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	sbiLogoKey    = "sbi"
	sbiDateLayout = format.LayoutDayMonthYear

	// SBIAddressPlaceholder is shown when the holder has no address.
	SBIAddressPlaceholder = "CUSTOMER ADDRESS\nCITY - 000000"

	sbiAccountDescription = "REGULAR SB CHQ-INDIVIDUALS"
	// Fixed values, not derived from the statement.
	sbiDrawingPower = "0.00"
	sbiInterestRate = "2.5"
	sbiMODBalance   = "0.00"

	sbiSecurityNotice = "Please do not share your ATM, Debit/Credit card number, PIN and OTP with anyone. " +
		"Bank never asks for such information."
	sbiSignatureNotice = "**This is a computer generated statement and does not require a signature"
)

var (
	sbiInfoWidths        = []float64{32, 3, 65}
	sbiTransactionWidths = []float64{11, 11, 28, 18, 13, 14, 18}
	sbiTransactionHeader = []string{"Txn Date", "Value Date", "Description", "Ref No./Cheque No.", "Debit", "Credit", "Balance"}
)

// SBI renders State Bank of India statements.
type SBI struct{}

// Render emits logo, header info, title, transactions and footer.
func (SBI) Render(ctx context.Context, env *Env, stmt *statement.Statement) error {
	if err := addLogo(ctx, env, sbiLogoKey); err != nil {
		return err
	}
	if err := sbiHeaderInfo(env, stmt); err != nil {
		return err
	}
	if err := sbiTitle(env.Doc, stmt); err != nil {
		return err
	}
	if err := sbiTransactions(env.Doc, stmt); err != nil {
		return err
	}
	sbiFooter(env.Doc)
	return env.Doc.Err()
}

func sbiHeaderInfo(env *Env, stmt *statement.Statement) error {
	generated, err := format.Date(stmt.Meta.GeneratedAt, sbiDateLayout)
	if err != nil {
		return err
	}
	details := stmt.Details
	rows := []infoRow{
		{Label: "Account Name", Value: details.Name},
		{Label: "Address", Value: orPlaceholder(details.Address, SBIAddressPlaceholder)},
		{Label: "Date", Value: generated},
		{Label: "Account Number", Value: details.AccountNumber},
		{Label: "Account Description", Value: sbiAccountDescription},
		{Label: "Branch", Value: details.BranchName()},
		{Label: "Drawing Power", Value: sbiDrawingPower},
		{Label: "Interest Rate (% p.a.)", Value: sbiInterestRate},
		{Label: "MOD Balance", Value: sbiMODBalance},
		{Label: "CIF No.", Value: cifNumber(env.Clock)},
		{Label: "IFSC Code", Value: details.IFSC},
	}
	table := infoTable(env.Doc, sbiInfoWidths, rows)
	table.SpacingBefore = 8
	table.SpacingAfter = 10
	env.Doc.AddTable(table)
	return env.Doc.Err()
}

func sbiTitle(doc *layout.Document, stmt *statement.Statement) error {
	start, end, err := period(stmt, sbiDateLayout)
	if err != nil {
		return err
	}
	doc.Paragraph("Account Statement from "+start+" to "+end, style.RoleTitle, 12, 6)
	return doc.Err()
}

func sbiTransactions(doc *layout.Document, stmt *statement.Statement) error {
	table := layout.Table{
		Widths:       sbiTransactionWidths,
		Header:       headerRow(doc, sbiTransactionHeader, nil),
		Borders:      true,
		RepeatHeader: true,
	}
	for _, tx := range stmt.Transactions {
		date, err := format.Date(tx.Date, sbiDateLayout)
		if err != nil {
			return err
		}
		debit, credit := amountCells(doc, tx)
		table.Rows = append(table.Rows, []layout.Cell{
			doc.Cell(date, style.RoleBody, layout.AlignRight),
			doc.Cell(date, style.RoleBody, layout.AlignRight),
			doc.Cell(tx.Description, style.RoleBody, layout.AlignLeft),
			doc.Cell(tx.Reference, style.RoleBody, layout.AlignLeft),
			debit,
			credit,
			balanceCell(doc, tx.Balance, style.RoleBody),
		})
	}
	doc.AddTable(table)
	return doc.Err()
}

func sbiFooter(doc *layout.Document) {
	doc.Paragraph(sbiSecurityNotice, style.RoleCaption, 12, 0)
	doc.Paragraph(sbiSignatureNotice, style.RoleCaption, 0, 0)
}
