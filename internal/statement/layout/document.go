package layout

import (
	statement "statement-pdf/internal/statement/domain"
	"statement-pdf/internal/statement/style"
)

const (
	defaultCellPadding = 3
)

// Document composes blocks onto a Session. The first failure is kept and
// every later call becomes a no-op, so renderers can emit sections linearly
// and check Err once.
type Document struct {
	session  Session
	styles   *style.Cache
	geometry Geometry
	err      error
}

// NewDocument wraps an open session.
func NewDocument(session Session, styles *style.Cache, geometry Geometry) *Document {
	return &Document{session: session, styles: styles, geometry: geometry}
}

// Styles returns the per-render style cache.
func (d *Document) Styles() *style.Cache { return d.styles }

// Geometry returns the page setup of the document.
func (d *Document) Geometry() Geometry { return d.geometry }

// Err returns the first failure recorded on the document.
func (d *Document) Err() error { return d.err }

// Fail records err unless a failure is already recorded.
func (d *Document) Fail(err error) {
	if d.err == nil && err != nil {
		d.err = err
	}
}

// Paragraph adds text in the given role.
func (d *Document) Paragraph(text string, role style.Role, before, after float64) {
	d.AddParagraph(Paragraph{
		Text:          text,
		Style:         d.styles.Resolve(role),
		Align:         AlignLeft,
		SpacingBefore: before,
		SpacingAfter:  after,
	})
}

// AddParagraph adds a fully specified paragraph.
func (d *Document) AddParagraph(p Paragraph) {
	if d.err != nil {
		return
	}
	if err := d.session.AddParagraph(p); err != nil {
		d.Fail(&statement.DocumentSinkError{Op: "add paragraph", Err: err})
	}
}

// AddTable adds a table.
func (d *Document) AddTable(t Table) {
	if d.err != nil {
		return
	}
	if err := d.session.AddTable(t); err != nil {
		d.Fail(&statement.DocumentSinkError{Op: "add table", Err: err})
	}
}

// AddImage adds an image.
func (d *Document) AddImage(img Image) {
	if d.err != nil {
		return
	}
	if err := d.session.AddImage(img); err != nil {
		d.Fail(&statement.DocumentSinkError{Op: "add image", Err: err})
	}
}

// PageBreak starts a new page.
func (d *Document) PageBreak() {
	if d.err != nil {
		return
	}
	if err := d.session.AddPageBreak(); err != nil {
		d.Fail(&statement.DocumentSinkError{Op: "page break", Err: err})
	}
}

// Cell builds a top-aligned, padded cell in the given role.
func (d *Document) Cell(text string, role style.Role, align Align) Cell {
	return Cell{
		Text:    text,
		Style:   d.styles.Resolve(role),
		Align:   align,
		VAlign:  VAlignTop,
		Padding: defaultCellPadding,
	}
}
