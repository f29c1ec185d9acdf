package templates

import (
	"context"
	"strconv"
	"strings"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/format"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	hdfcLogoKey         = "hdfc"
	hdfcDateLayout      = format.LayoutSlashShortYear
	hdfcGeneratedLayout = format.LayoutDashedMonthTime

	// HDFCAddressPlaceholder is shown when the holder has no address.
	HDFCAddressPlaceholder = "CUSTOMER ADDRESS\nCITY 000000\nSTATE"

	hdfcNotApplicable = "-"
	hdfcODLimit       = "0 Currency : INR"
	hdfcAccountStatus = "Regular"
	hdfcNomination    = "Nomination : Registered"
	hdfcBankName      = "HDFC BANK LIMITED"
	hdfcComputerNote  = "This is a computer generated statement and does not require signature."
	hdfcBalanceNote   = "* Closing balance includes funds earmarked for hold and uncleared funds"
	hdfcContentsNote  = "Contents of this statement will be considered correct if no error is reported within 30 days " +
		"of receipt of statement. The address on this statement is that on record with the Bank as at the day " +
		"of requesting this statement."
)

var (
	hdfcInfoWidths        = []float64{30, 3, 67}
	hdfcTransactionWidths = []float64{8, 40, 15, 8, 11, 11, 12}
	hdfcTransactionHeader = []string{"Date", "Narration", "Chq./Ref.No.", "Value Dt", "Withdrawal Amt.", "Deposit Amt.", "Closing Balance"}
	hdfcTransactionAligns = []layout.Align{
		layout.AlignLeft, layout.AlignLeft, layout.AlignLeft, layout.AlignLeft,
		layout.AlignRight, layout.AlignRight, layout.AlignRight,
	}
	hdfcSummaryWidths = []float64{20, 12, 12, 18, 18, 20}
	hdfcSummaryHeader = []string{"Opening Balance", "Dr Count", "Cr Count", "Debits", "Credits", "Closing Bal"}
)

// HDFC renders HDFC Bank statements: transactions first, then a summary block.
type HDFC struct{}

// Render emits the HDFC layout.
func (HDFC) Render(ctx context.Context, env *Env, stmt *statement.Statement) error {
	doc := env.Doc
	doc.AddParagraph(layout.Paragraph{
		Text:  "Statement of account",
		Style: doc.Styles().Caption(),
		Align: layout.AlignRight,
	})
	if err := addLogo(ctx, env, hdfcLogoKey); err != nil {
		return err
	}
	hdfcCustomer(doc, stmt.Details)
	hdfcAccountDetails(doc, stmt.Details)

	start, end, err := period(stmt, hdfcDateLayout)
	if err != nil {
		return err
	}
	doc.Paragraph("Statement From : "+start+" To : "+end, style.RoleHeader, 10, 6)

	if err := hdfcTransactions(doc, stmt); err != nil {
		return err
	}
	if err := hdfcSummary(doc, stmt); err != nil {
		return err
	}
	hdfcFooter(doc)
	return doc.Err()
}

func hdfcCustomer(doc *layout.Document, details statement.AccountHolderDetails) {
	doc.Paragraph("MR "+strings.ToUpper(details.Name), style.RoleHeader, 6, 2)
	doc.Paragraph(strings.ToUpper(orPlaceholder(details.Address, HDFCAddressPlaceholder)), style.RoleBody, 0, 2)
	doc.Paragraph(hdfcNomination, style.RoleCaption, 0, 4)
}

func hdfcAccountDetails(doc *layout.Document, details statement.AccountHolderDetails) {
	rows := []infoRow{
		{Label: "Account Branch", Value: orPlaceholder(details.BranchName(), hdfcNotApplicable)},
		{Label: "Address", Value: orPlaceholder(details.BranchAddress, hdfcNotApplicable)},
		{Label: "City", Value: orPlaceholder(details.City, hdfcNotApplicable)},
		{Label: "State", Value: orPlaceholder(details.State, hdfcNotApplicable)},
		{Label: "Phone no.", Value: orPlaceholder(details.PhoneNumber, hdfcNotApplicable)},
		{Label: "OD Limit", Value: hdfcODLimit},
		{Label: "Email", Value: orPlaceholder(strings.ToUpper(details.Email), hdfcNotApplicable)},
		{Label: "Cust ID", Value: hdfcCustomerID(details.AccountNumber)},
		{Label: "Account No", Value: details.AccountNumber},
		{Label: "Account Status", Value: hdfcAccountStatus},
		{Label: "RTGS/NEFT IFSC", Value: orPlaceholder(details.IFSC, hdfcNotApplicable)},
	}
	table := infoTable(doc, hdfcInfoWidths, rows)
	table.SpacingAfter = 6
	doc.AddTable(table)
}

// hdfcCustomerID is the last eight digits of the account number.
func hdfcCustomerID(accountNumber string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, accountNumber)
	if len(digits) > 8 {
		return digits[len(digits)-8:]
	}
	return orPlaceholder(digits, hdfcNotApplicable)
}

func hdfcTransactions(doc *layout.Document, stmt *statement.Statement) error {
	table := layout.Table{
		Widths:       hdfcTransactionWidths,
		Header:       headerRow(doc, hdfcTransactionHeader, hdfcTransactionAligns),
		Borders:      true,
		RepeatHeader: true,
	}
	for _, tx := range stmt.Transactions {
		date, err := format.Date(tx.Date, hdfcDateLayout)
		if err != nil {
			return err
		}
		debit, credit := amountCells(doc, tx)
		table.Rows = append(table.Rows, []layout.Cell{
			doc.Cell(date, style.RoleBody, layout.AlignLeft),
			doc.Cell(tx.Description, style.RoleBody, layout.AlignLeft),
			doc.Cell(tx.Reference, style.RoleBody, layout.AlignLeft),
			doc.Cell(date, style.RoleBody, layout.AlignLeft),
			debit,
			credit,
			balanceCell(doc, tx.Balance, style.RoleBody),
		})
	}
	doc.AddTable(table)
	return doc.Err()
}

func hdfcSummary(doc *layout.Document, stmt *statement.Statement) error {
	debits, credits, debitCount, creditCount := stmt.Totals()
	doc.Paragraph("STATEMENT SUMMARY :-", style.RoleHeader, 12, 4)
	doc.AddTable(layout.Table{
		Widths:  hdfcSummaryWidths,
		Header:  headerRow(doc, hdfcSummaryHeader, nil),
		Borders: true,
		Rows: [][]layout.Cell{{
			balanceCell(doc, stmt.Details.StartingBalance, style.RoleBody),
			doc.Cell(strconv.Itoa(debitCount), style.RoleBody, layout.AlignRight),
			doc.Cell(strconv.Itoa(creditCount), style.RoleBody, layout.AlignRight),
			balanceCell(doc, debits, style.RoleBody),
			balanceCell(doc, credits, style.RoleBody),
			balanceCell(doc, stmt.ClosingBalance(), style.RoleBody),
		}},
	})
	generated, err := format.Date(stmt.Meta.GeneratedAt, hdfcGeneratedLayout)
	if err != nil {
		return err
	}
	doc.Paragraph("Generated On: "+generated, style.RoleBody, 12, 0)
	doc.AddParagraph(layout.Paragraph{
		Text:          hdfcComputerNote,
		Style:         doc.Styles().Caption(),
		Align:         layout.AlignRight,
		SpacingBefore: 20,
		SpacingAfter:  12,
	})
	return doc.Err()
}

func hdfcFooter(doc *layout.Document) {
	doc.Paragraph(hdfcBankName, style.RoleHeader, 8, 2)
	doc.Paragraph(hdfcBalanceNote, style.RoleCaption, 0, 0)
	doc.Paragraph(hdfcContentsNote, style.RoleCaption, 0, 0)
}
