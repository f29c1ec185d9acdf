package layout

import (
	"encoding/json"
	"errors"
	"sync"
)

// Op kinds captured by a Recording.
const (
	OpParagraph = "paragraph"
	OpTable     = "table"
	OpImage     = "image"
	OpPageBreak = "page_break"
)

var errSessionClosed = errors.New("layout: session closed")

// Op is one captured drawing instruction.
type Op struct {
	Kind      string     `json:"kind"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
	Image     *ImageInfo `json:"image,omitempty"`
}

// ImageInfo describes a captured image without its bytes.
type ImageInfo struct {
	Name      string  `json:"name"`
	Bytes     int     `json:"bytes"`
	MaxWidth  float64 `json:"max_width"`
	MaxHeight float64 `json:"max_height"`
	Align     Align   `json:"align"`
}

// KeepNone is the Recorder Limit for long-lived processes that only need the
// bytes returned by Close.
const KeepNone = -1

// Recorder is a Sink that captures instructions instead of drawing them.
// Close on its sessions returns the captured ops as JSON.
type Recorder struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error
	// CloseErr, when set, is returned by Close on every session.
	CloseErr error
	// Limit caps the sessions kept for inspection. Zero keeps all and
	// KeepNone keeps none.
	Limit int

	mu       sync.Mutex
	sessions []*Recording
}

// Open starts a new Recording.
func (r *Recorder) Open(geometry Geometry) (Session, error) {
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	rec := &Recording{Geometry: geometry, closeErr: r.CloseErr}
	if r.Limit < 0 {
		return rec, nil
	}
	r.mu.Lock()
	r.sessions = append(r.sessions, rec)
	if r.Limit > 0 && len(r.sessions) > r.Limit {
		r.sessions = append(r.sessions[:0], r.sessions[len(r.sessions)-r.Limit:]...)
	}
	r.mu.Unlock()
	return rec, nil
}

// Sessions returns every session opened so far.
func (r *Recorder) Sessions() []*Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Recording, len(r.sessions))
	copy(out, r.sessions)
	return out
}

// Last returns the most recent session or nil.
func (r *Recorder) Last() *Recording {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) == 0 {
		return nil
	}
	return r.sessions[len(r.sessions)-1]
}

// Recording is a Session that keeps its ops in memory.
type Recording struct {
	Geometry  Geometry `json:"geometry"`
	Ops       []Op     `json:"ops"`
	Closed    bool     `json:"-"`
	Discarded bool     `json:"-"`

	closeErr error
}

func (s *Recording) append(op Op) error {
	if s.Closed || s.Discarded {
		return errSessionClosed
	}
	s.Ops = append(s.Ops, op)
	return nil
}

func (s *Recording) AddParagraph(p Paragraph) error {
	return s.append(Op{Kind: OpParagraph, Paragraph: &p})
}

func (s *Recording) AddTable(t Table) error {
	return s.append(Op{Kind: OpTable, Table: &t})
}

func (s *Recording) AddImage(img Image) error {
	return s.append(Op{Kind: OpImage, Image: &ImageInfo{
		Name:      img.Name,
		Bytes:     len(img.Data),
		MaxWidth:  img.MaxWidth,
		MaxHeight: img.MaxHeight,
		Align:     img.Align,
	}})
}

func (s *Recording) AddPageBreak() error {
	return s.append(Op{Kind: OpPageBreak})
}

func (s *Recording) Close() ([]byte, error) {
	if s.Closed || s.Discarded {
		return nil, errSessionClosed
	}
	if s.closeErr != nil {
		s.Discarded = true
		return nil, s.closeErr
	}
	s.Closed = true
	return json.MarshalIndent(s, "", "  ")
}

func (s *Recording) Discard() {
	if s.Closed {
		return
	}
	s.Discarded = true
}

// Tables returns the captured tables in order.
func (s *Recording) Tables() []Table {
	var out []Table
	for _, op := range s.Ops {
		if op.Table != nil {
			out = append(out, *op.Table)
		}
	}
	return out
}

// Paragraphs returns the captured paragraph texts in order.
func (s *Recording) Paragraphs() []string {
	var out []string
	for _, op := range s.Ops {
		if op.Paragraph != nil {
			out = append(out, op.Paragraph.Text)
		}
	}
	return out
}

// Kinds returns the op kinds in order.
func (s *Recording) Kinds() []string {
	out := make([]string, len(s.Ops))
	for i, op := range s.Ops {
		out[i] = op.Kind
	}
	return out
}

// Format names the output of a Recorder.
func (r *Recorder) Format() string { return "layout" }
