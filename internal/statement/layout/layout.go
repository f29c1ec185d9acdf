// Package layout defines the block-level drawing instructions a renderer emits
// and the Sink port that turns them into a finished document.
package layout

import "statement-pdf/internal/statement/style"

// Align is a horizontal alignment.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// VAlign is a vertical alignment inside a table cell.
type VAlign string

const (
	VAlignTop    VAlign = "T"
	VAlignMiddle VAlign = "M"
)

// Margins in document units.
type Margins struct {
	Left, Top, Right, Bottom float64
}

// Geometry is the fixed page setup of a document.
type Geometry struct {
	Size        string // "A4", "Letter"
	Orientation string // "P" or "L"
	Unit        string // "pt", "mm"
	Margins     Margins
}

// DefaultGeometry is the process-wide page setup: A4 portrait, points, 36pt margins.
var DefaultGeometry = Geometry{
	Size:        "A4",
	Orientation: "P",
	Unit:        "pt",
	Margins:     Margins{Left: 36, Top: 36, Right: 36, Bottom: 36},
}

// Paragraph is a run of text in one style.
type Paragraph struct {
	Text          string
	Style         style.Descriptor
	Align         Align
	SpacingBefore float64
	SpacingAfter  float64
}

// Cell is one table cell.
type Cell struct {
	Text    string
	Style   style.Descriptor
	Align   Align
	VAlign  VAlign
	Padding float64
	Fill    *style.Color
	ColSpan int
}

// Span returns the number of columns the cell occupies.
func (c Cell) Span() int {
	if c.ColSpan < 1 {
		return 1
	}
	return c.ColSpan
}

// Table is a grid with fixed relative column widths. Widths need not sum to 100.
type Table struct {
	Widths        []float64
	Header        []Cell
	Rows          [][]Cell
	Borders       bool
	RepeatHeader  bool
	SpacingBefore float64
	SpacingAfter  float64
}

// Image is a raster placed within a bounding box, keeping its aspect ratio.
type Image struct {
	Name      string
	Data      []byte
	MaxWidth  float64
	MaxHeight float64
	Align     Align
}

// Session receives drawing instructions for one document.
// Close materializes the bytes; Discard drops a session without output.
type Session interface {
	AddParagraph(p Paragraph) error
	AddTable(t Table) error
	AddImage(img Image) error
	AddPageBreak() error
	Close() ([]byte, error)
	Discard()
}

// Sink opens document sessions.
type Sink interface {
	Open(geometry Geometry) (Session, error)
}
