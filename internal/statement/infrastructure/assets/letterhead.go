package assets

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	statement "statement-pdf/internal/statement/domain"
)

const (
	letterheadPadding = 4
	letterheadScale   = 6
)

// Letterhead is the text banner drawn for one asset key.
type Letterhead struct {
	Text       string
	Foreground color.RGBA
	Background color.RGBA
}

// DefaultLetterheads covers the keys used by the built-in renderers.
var DefaultLetterheads = map[string]Letterhead{
	"sbi": {
		Text:       "State Bank of India",
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{R: 40, G: 0, B: 113, A: 255},
	},
	"hdfc": {
		Text:       "HDFC BANK",
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{R: 0, G: 76, B: 143, A: 255},
	},
	"axis": {
		Text:       "AXIS BANK",
		Foreground: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Background: color.RGBA{R: 151, G: 20, B: 77, A: 255},
	},
}

// LetterheadStore synthesizes PNG banners for known keys. It stands in for
// real logos in development and as the last store of a chain.
type LetterheadStore struct {
	heads map[string]Letterhead

	mu    sync.Mutex
	cache map[string][]byte
}

// NewLetterheadStore builds a store over heads, or DefaultLetterheads when nil.
func NewLetterheadStore(heads map[string]Letterhead) *LetterheadStore {
	if heads == nil {
		heads = DefaultLetterheads
	}
	return &LetterheadStore{heads: heads, cache: make(map[string][]byte)}
}

// Fetch returns the PNG banner for key.
func (s *LetterheadStore) Fetch(_ context.Context, key string) ([]byte, error) {
	head, ok := s.heads[strings.ToLower(key)]
	if !ok {
		return nil, &statement.AssetNotFoundError{Key: key}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.cache[key]; ok {
		return data, nil
	}
	data, err := renderLetterhead(head)
	if err != nil {
		return nil, err
	}
	s.cache[key] = data
	return data, nil
}

func renderLetterhead(head Letterhead) ([]byte, error) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, head.Text).Ceil() + 2*letterheadPadding
	height := face.Height + 2*letterheadPadding

	small := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(small, small.Bounds(), image.NewUniform(head.Background), image.Point{}, draw.Src)
	drawer := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(head.Foreground),
		Face: face,
		Dot:  fixed.P(letterheadPadding, letterheadPadding+face.Ascent),
	}
	drawer.DrawString(head.Text)

	large := image.NewRGBA(image.Rect(0, 0, width*letterheadScale, height*letterheadScale))
	draw.NearestNeighbor.Scale(large, large.Bounds(), small, small.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, large); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
