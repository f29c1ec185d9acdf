package templates

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/format"
	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	logoMaxWidth  = 120
	logoMaxHeight = 40

	infoCellPadding   = 2
	headerCellPadding = 4

	cifDigits = 11
)

// infoRow is one label/value line of a header block.
type infoRow struct {
	Label string
	Value string
}

// period resolves the display range of a statement. Each bound comes from
// the metadata when present, else from the first or last transaction.
func period(stmt *statement.Statement, dateLayout string) (string, string, error) {
	startRaw := strings.TrimSpace(stmt.Meta.StatementPeriodStart)
	endRaw := strings.TrimSpace(stmt.Meta.StatementPeriodEnd)
	if startRaw == "" || endRaw == "" {
		if len(stmt.Transactions) == 0 {
			return "", "", statement.ErrEmptyStatementAmbiguity
		}
		if startRaw == "" {
			startRaw = stmt.Transactions[0].Date
		}
		if endRaw == "" {
			endRaw = stmt.Transactions[len(stmt.Transactions)-1].Date
		}
	}
	start, err := format.Date(startRaw, dateLayout)
	if err != nil {
		return "", "", err
	}
	end, err := format.Date(endRaw, dateLayout)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

// addLogo fetches key from the asset store and places it in the logo box.
// A missing asset is fatal.
func addLogo(ctx context.Context, env *Env, key string) error {
	if env.Assets == nil {
		return &statement.AssetNotFoundError{Key: key}
	}
	data, err := env.Assets.Fetch(ctx, key)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return &statement.AssetNotFoundError{Key: key}
	}
	env.Doc.AddImage(layout.Image{
		Name:      key,
		Data:      data,
		MaxWidth:  logoMaxWidth,
		MaxHeight: logoMaxHeight,
		Align:     layout.AlignLeft,
	})
	return env.Doc.Err()
}

// infoTable builds a borderless label / ":" / value table.
func infoTable(doc *layout.Document, widths []float64, rows []infoRow) layout.Table {
	table := layout.Table{Widths: widths}
	for _, row := range rows {
		table.Rows = append(table.Rows, []layout.Cell{
			infoCell(doc, row.Label, style.RoleHeader),
			infoCell(doc, ":", style.RoleBody),
			infoCell(doc, row.Value, style.RoleBody),
		})
	}
	return table
}

func infoCell(doc *layout.Document, text string, role style.Role) layout.Cell {
	cell := doc.Cell(text, role, layout.AlignLeft)
	cell.Padding = infoCellPadding
	return cell
}

// headerRow builds a styled, white-filled header row.
func headerRow(doc *layout.Document, labels []string, aligns []layout.Align) []layout.Cell {
	white := style.Color{R: 255, G: 255, B: 255}
	cells := make([]layout.Cell, len(labels))
	for i, label := range labels {
		align := layout.AlignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		cell := doc.Cell(label, style.RoleHeader, align)
		cell.Padding = headerCellPadding
		cell.Fill = &white
		cells[i] = cell
	}
	return cells
}

// amountCells returns the debit and credit cells for a transaction.
// At most one is non-empty for well-formed input; both are blank when
// neither amount is positive.
func amountCells(doc *layout.Document, tx statement.Transaction) (layout.Cell, layout.Cell) {
	return doc.Cell(format.Amount(tx.Debit), style.RoleBody, layout.AlignRight),
		doc.Cell(format.Amount(tx.Credit), style.RoleBody, layout.AlignRight)
}

func balanceCell(doc *layout.Document, value decimal.Decimal, role style.Role) layout.Cell {
	return doc.Cell(format.Balance(value), role, layout.AlignRight)
}

// cifNumber synthesizes a customer information file number from the clock.
// The value depends on call time.
func cifNumber(clock statement.Clock) string {
	ts := strconv.FormatInt(clock.Now().UnixMilli(), 10)
	if len(ts) < cifDigits {
		return strings.Repeat("0", cifDigits-len(ts)) + ts
	}
	return ts[len(ts)-cifDigits:]
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
