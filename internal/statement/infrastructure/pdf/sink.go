// Package pdf draws layout instructions with gofpdf.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	lineHeightFactor = 1.2
	imageGap         = 6
	defaultCreator   = "statement-pdf"
)

var errSessionReleased = errors.New("pdf: session released")

// Sink opens gofpdf-backed sessions.
type Sink struct {
	// Creator is written to the document info dictionary.
	Creator string
	// Compress toggles stream compression. Tests turn it off to inspect output.
	Compress bool
}

// NewSink returns a compressing sink.
func NewSink() *Sink {
	return &Sink{Creator: defaultCreator, Compress: true}
}

// Format names the output of the sink.
func (s *Sink) Format() string { return "pdf" }

// Open starts a new document with one blank page.
func (s *Sink) Open(geometry layout.Geometry) (layout.Session, error) {
	doc := gofpdf.New(geometry.Orientation, geometry.Unit, geometry.Size, "")
	m := geometry.Margins
	doc.SetMargins(m.Left, m.Top, m.Right)
	doc.SetAutoPageBreak(true, m.Bottom)
	doc.SetCompression(s.Compress)
	creator := s.Creator
	if creator == "" {
		creator = defaultCreator
	}
	doc.SetCreator(creator, false)
	doc.AddPage()
	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("pdf: open: %w", err)
	}
	return &Session{
		doc:      doc,
		geometry: geometry,
		tr:       doc.UnicodeTranslatorFromDescriptor(""),
	}, nil
}

// Session is one in-progress PDF document.
type Session struct {
	doc      *gofpdf.Fpdf
	geometry layout.Geometry
	tr       func(string) string
}

// PageCount returns the number of pages drawn so far.
func (s *Session) PageCount() int {
	if s.doc == nil {
		return 0
	}
	return s.doc.PageCount()
}

func (s *Session) check() error {
	if s.doc == nil {
		return errSessionReleased
	}
	return s.doc.Error()
}

func (s *Session) setFont(d style.Descriptor) {
	s.doc.SetFont(d.Family, d.FontStyle(), d.Size)
	s.doc.SetTextColor(int(d.Color.R), int(d.Color.G), int(d.Color.B))
}

func (s *Session) lineHeight(d style.Descriptor) float64 {
	return s.doc.PointToUnitConvert(d.Size) * lineHeightFactor
}

func (s *Session) contentWidth() float64 {
	pageW, _ := s.doc.GetPageSize()
	left, _, right, _ := s.doc.GetMargins()
	return pageW - left - right
}

func (s *Session) pageBottom() float64 {
	_, pageH := s.doc.GetPageSize()
	return pageH - s.geometry.Margins.Bottom
}

// AddParagraph draws wrapped text across the content width.
func (s *Session) AddParagraph(p layout.Paragraph) error {
	if err := s.check(); err != nil {
		return err
	}
	s.doc.SetY(s.doc.GetY() + p.SpacingBefore)
	s.setFont(p.Style)
	s.doc.MultiCell(0, s.lineHeight(p.Style), s.tr(p.Text), "", string(p.Align), false)
	if p.SpacingAfter > 0 {
		s.doc.SetY(s.doc.GetY() + p.SpacingAfter)
	}
	return s.doc.Error()
}

// AddTable draws a grid. Rows never split across pages; the header is
// redrawn on each new page when RepeatHeader is set.
func (s *Session) AddTable(t layout.Table) error {
	if err := s.check(); err != nil {
		return err
	}
	columns := s.columnWidths(t.Widths)
	if len(columns) == 0 {
		return errors.New("pdf: table without columns")
	}
	s.doc.SetY(s.doc.GetY() + t.SpacingBefore)
	if len(t.Header) > 0 {
		s.drawRow(t.Header, columns, t.Borders)
	}
	for _, row := range t.Rows {
		height := s.rowHeight(row, columns)
		left, top, _, _ := s.doc.GetMargins()
		if s.doc.GetY()+height > s.pageBottom() && s.doc.GetY() > top {
			s.doc.AddPage()
			s.doc.SetXY(left, top)
			if t.RepeatHeader && len(t.Header) > 0 {
				s.drawRow(t.Header, columns, t.Borders)
			}
		}
		s.drawRow(row, columns, t.Borders)
		if err := s.doc.Error(); err != nil {
			return err
		}
	}
	if t.SpacingAfter > 0 {
		s.doc.SetY(s.doc.GetY() + t.SpacingAfter)
	}
	return s.doc.Error()
}

// columnWidths scales relative widths to the content width.
func (s *Session) columnWidths(relative []float64) []float64 {
	var total float64
	for _, w := range relative {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return nil
	}
	usable := s.contentWidth()
	out := make([]float64, len(relative))
	for i, w := range relative {
		if w > 0 {
			out[i] = w / total * usable
		}
	}
	return out
}

// spanWidths returns the drawn width of each cell in row.
func spanWidths(row []layout.Cell, columns []float64) []float64 {
	widths := make([]float64, len(row))
	col := 0
	for i, cell := range row {
		for n := 0; n < cell.Span() && col < len(columns); n++ {
			widths[i] += columns[col]
			col++
		}
	}
	return widths
}

func (s *Session) cellLines(cell layout.Cell, width float64) []string {
	s.setFont(cell.Style)
	inner := width - 2*cell.Padding
	if inner <= 0 {
		inner = width
	}
	text := s.tr(cell.Text)
	if text == "" {
		return []string{""}
	}
	raw := s.doc.SplitLines([]byte(text), inner)
	lines := make([]string, len(raw))
	for i, line := range raw {
		lines[i] = string(line)
	}
	return lines
}

func (s *Session) rowHeight(row []layout.Cell, columns []float64) float64 {
	var height float64
	for i, w := range spanWidths(row, columns) {
		cell := row[i]
		h := float64(len(s.cellLines(cell, w)))*s.lineHeight(cell.Style) + 2*cell.Padding
		if h > height {
			height = h
		}
	}
	return height
}

func (s *Session) drawRow(row []layout.Cell, columns []float64, borders bool) {
	height := s.rowHeight(row, columns)
	left, _, _, _ := s.doc.GetMargins()
	x, y := left, s.doc.GetY()
	for i, w := range spanWidths(row, columns) {
		cell := row[i]
		if w <= 0 {
			continue
		}
		if cell.Fill != nil {
			s.doc.SetFillColor(int(cell.Fill.R), int(cell.Fill.G), int(cell.Fill.B))
			s.doc.Rect(x, y, w, height, "F")
		}
		if borders {
			s.doc.Rect(x, y, w, height, "D")
		}
		lines := s.cellLines(cell, w)
		lineH := s.lineHeight(cell.Style)
		offset := cell.Padding
		if cell.VAlign == layout.VAlignMiddle {
			offset = (height - float64(len(lines))*lineH) / 2
		}
		for n, line := range lines {
			s.doc.SetXY(x+cell.Padding, y+offset+float64(n)*lineH)
			s.doc.CellFormat(w-2*cell.Padding, lineH, line, "", 0, string(cell.Align), false, 0, "")
		}
		x += w
	}
	s.doc.SetXY(left, y+height)
}

// AddImage places a raster scaled to fit its bounding box.
func (s *Session) AddImage(img layout.Image) error {
	if err := s.check(); err != nil {
		return err
	}
	_, kind, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("pdf: image %q: %w", img.Name, err)
	}
	options := gofpdf.ImageOptions{ImageType: strings.ToUpper(kind), ReadDpi: false}
	info := s.doc.RegisterImageOptionsReader(img.Name, options, bytes.NewReader(img.Data))
	if err := s.doc.Error(); err != nil {
		return err
	}
	w, h := fitBox(info.Width(), info.Height(), img.MaxWidth, img.MaxHeight)
	left, _, _, _ := s.doc.GetMargins()
	x := left
	switch img.Align {
	case layout.AlignCenter:
		x = left + (s.contentWidth()-w)/2
	case layout.AlignRight:
		x = left + s.contentWidth() - w
	}
	y := s.doc.GetY()
	if y+h > s.pageBottom() {
		s.doc.AddPage()
		_, y, _, _ = s.doc.GetMargins()
	}
	s.doc.ImageOptions(img.Name, x, y, w, h, false, options, 0, "")
	s.doc.SetXY(left, y+h+imageGap)
	return s.doc.Error()
}

// fitBox scales w x h to fit inside maxW x maxH, keeping the aspect ratio.
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := 1.0
	if maxW > 0 {
		scale = maxW / w
	}
	if maxH > 0 && maxH/h < scale {
		scale = maxH / h
	}
	return w * scale, h * scale
}

// AddPageBreak starts a new page.
func (s *Session) AddPageBreak() error {
	if err := s.check(); err != nil {
		return err
	}
	s.doc.AddPage()
	return s.doc.Error()
}

// Close writes the document and releases the session.
func (s *Session) Close() ([]byte, error) {
	if err := s.check(); err != nil {
		s.doc = nil
		return nil, err
	}
	var buf bytes.Buffer
	err := s.doc.Output(&buf)
	s.doc = nil
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Discard drops the session without output.
func (s *Session) Discard() {
	s.doc = nil
}
