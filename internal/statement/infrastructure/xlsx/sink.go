// Package xlsx writes layout instructions into a single excelize worksheet.
// Paragraphs become rows in column A and tables become cell grids.
package xlsx

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/xuri/excelize/v2"

	"statement-pdf/internal/statement/layout"
	"statement-pdf/internal/statement/style"
)

const (
	defaultSheet = "Statement"
	// totalWidth is the summed column width of a table, in character units.
	totalWidth = 110.0
	// rowHeightPx is the default excelize row height in pixels.
	rowHeightPx = 20.0
	pxPerPoint  = 96.0 / 72.0
	a4PaperSize = 9
)

var errSessionReleased = errors.New("xlsx: session released")

// Sink opens excelize-backed sessions.
type Sink struct {
	Sheet string
}

// NewSink returns a sink writing to the default sheet name.
func NewSink() *Sink { return &Sink{Sheet: defaultSheet} }

// Format names the output of the sink.
func (s *Sink) Format() string { return "xlsx" }

// Open creates a workbook with one worksheet set up for printing on the
// geometry's paper.
func (s *Sink) Open(geometry layout.Geometry) (layout.Session, error) {
	sheet := s.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: open: %w", err)
	}
	orientation := "portrait"
	if geometry.Orientation == "L" {
		orientation = "landscape"
	}
	size := a4PaperSize
	if err := f.SetPageLayout(sheet, &excelize.PageLayoutOptions{Size: &size, Orientation: &orientation}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("xlsx: page layout: %w", err)
	}
	return &Session{
		file:   f,
		sheet:  sheet,
		row:    1,
		styles: make(map[styleKey]int),
	}, nil
}

type styleKey struct {
	desc    style.Descriptor
	align   layout.Align
	valign  layout.VAlign
	borders bool
	fill    style.Color
	hasFill bool
}

// Session is one in-progress workbook.
type Session struct {
	file   *excelize.File
	sheet  string
	row    int
	styles map[styleKey]int
	widths []float64
}

// Rows returns the next free row index.
func (s *Session) Rows() int { return s.row }

func (s *Session) check() error {
	if s.file == nil {
		return errSessionReleased
	}
	return nil
}

func (s *Session) styleID(key styleKey) (int, error) {
	if id, ok := s.styles[key]; ok {
		return id, nil
	}
	st := &excelize.Style{
		Font: &excelize.Font{
			Bold:   key.desc.Bold,
			Italic: key.desc.Italic,
			Family: key.desc.Family,
			Size:   key.desc.Size,
			Color:  hexColor(key.desc.Color),
		},
		Alignment: &excelize.Alignment{
			Horizontal: horizontal(key.align),
			Vertical:   vertical(key.valign),
			WrapText:   true,
		},
	}
	if key.borders {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			st.Border = append(st.Border, excelize.Border{Type: side, Color: "000000", Style: 1})
		}
	}
	if key.hasFill {
		st.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexColor(key.fill)}}
	}
	id, err := s.file.NewStyle(st)
	if err != nil {
		return 0, err
	}
	s.styles[key] = id
	return id, nil
}

func hexColor(c style.Color) string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

func horizontal(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "center"
	case layout.AlignRight:
		return "right"
	default:
		return "left"
	}
}

func vertical(v layout.VAlign) string {
	if v == layout.VAlignMiddle {
		return "center"
	}
	return "top"
}

func spacingRows(points float64) int {
	if points <= 0 {
		return 0
	}
	return int(math.Ceil(points * pxPerPoint / rowHeightPx))
}

// AddParagraph writes text into column A.
func (s *Session) AddParagraph(p layout.Paragraph) error {
	if err := s.check(); err != nil {
		return err
	}
	s.row += spacingRows(p.SpacingBefore)
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.file.SetCellValue(s.sheet, cell, p.Text); err != nil {
		return err
	}
	id, err := s.styleID(styleKey{desc: p.Style, align: p.Align, valign: layout.VAlignTop})
	if err != nil {
		return err
	}
	if err := s.file.SetCellStyle(s.sheet, cell, cell, id); err != nil {
		return err
	}
	s.row += 1 + spacingRows(p.SpacingAfter)
	return nil
}

// AddTable writes a grid starting at column A. Spanning cells are merged.
func (s *Session) AddTable(t layout.Table) error {
	if err := s.check(); err != nil {
		return err
	}
	if len(t.Widths) == 0 {
		return errors.New("xlsx: table without columns")
	}
	s.trackWidths(t.Widths)
	s.row += spacingRows(t.SpacingBefore)
	rows := t.Rows
	if len(t.Header) > 0 {
		rows = append([][]layout.Cell{t.Header}, rows...)
	}
	for _, row := range rows {
		if err := s.writeRow(row, len(t.Widths), t.Borders); err != nil {
			return err
		}
		s.row++
	}
	s.row += spacingRows(t.SpacingAfter)
	return nil
}

func (s *Session) writeRow(row []layout.Cell, columns int, borders bool) error {
	col := 1
	for _, c := range row {
		if col > columns {
			break
		}
		start, err := excelize.CoordinatesToCellName(col, s.row)
		if err != nil {
			return err
		}
		last := col + c.Span() - 1
		if last > columns {
			last = columns
		}
		end, err := excelize.CoordinatesToCellName(last, s.row)
		if err != nil {
			return err
		}
		if err := s.file.SetCellValue(s.sheet, start, c.Text); err != nil {
			return err
		}
		if last > col {
			if err := s.file.MergeCell(s.sheet, start, end); err != nil {
				return err
			}
		}
		key := styleKey{desc: c.Style, align: c.Align, valign: c.VAlign, borders: borders}
		if c.Fill != nil {
			key.fill, key.hasFill = *c.Fill, true
		}
		id, err := s.styleID(key)
		if err != nil {
			return err
		}
		if err := s.file.SetCellStyle(s.sheet, start, end, id); err != nil {
			return err
		}
		col = last + 1
	}
	return nil
}

// trackWidths keeps the relative widths of the table with the most columns.
func (s *Session) trackWidths(widths []float64) {
	if len(widths) > len(s.widths) {
		s.widths = append([]float64(nil), widths...)
	}
}

func (s *Session) applyWidths() error {
	var total float64
	for _, w := range s.widths {
		total += w
	}
	if total <= 0 {
		return nil
	}
	for i, w := range s.widths {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := s.file.SetColWidth(s.sheet, name, name, w/total*totalWidth); err != nil {
			return err
		}
	}
	return nil
}

// AddImage anchors a picture at column A, scaled to its bounding box.
func (s *Session) AddImage(img layout.Image) error {
	if err := s.check(); err != nil {
		return err
	}
	cfg, kind, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("xlsx: image %q: %w", img.Name, err)
	}
	scale := 1.0
	if cfg.Width > 0 && cfg.Height > 0 {
		scale = math.Min(img.MaxWidth*pxPerPoint/float64(cfg.Width), img.MaxHeight*pxPerPoint/float64(cfg.Height))
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	ext := "." + kind
	if kind == "jpeg" {
		ext = ".jpg"
	}
	err = s.file.AddPictureFromBytes(s.sheet, cell, &excelize.Picture{
		Extension: ext,
		File:      img.Data,
		Format: &excelize.GraphicOptions{
			AltText: img.Name,
			ScaleX:  scale,
			ScaleY:  scale,
		},
	})
	if err != nil {
		return err
	}
	s.row += int(math.Ceil(float64(cfg.Height)*scale/rowHeightPx)) + 1
	return nil
}

// AddPageBreak inserts a manual page break before the next row.
func (s *Session) AddPageBreak() error {
	if err := s.check(); err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	return s.file.InsertPageBreak(s.sheet, cell)
}

// Close serializes the workbook and releases the session.
func (s *Session) Close() ([]byte, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	widthErr := s.applyWidths()
	f := s.file
	s.file = nil
	defer f.Close()
	if widthErr != nil {
		return nil, widthErr
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Discard drops the workbook without output.
func (s *Session) Discard() {
	if s.file == nil {
		return
	}
	_ = s.file.Close()
	s.file = nil
}
