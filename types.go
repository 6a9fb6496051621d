package cv2pdf

import (
	"fmt"
	"strings"
)

// Page size constants.
const (
	PageSizeA4     = "a4"
	PageSizeLetter = "letter"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in points.
const (
	MinMargin     = 18.0 // 0.25in
	MaxMargin     = 144.0
	DefaultMargin = 40.0
)

// Page dimensions in points (portrait).
const (
	a4WidthPt      = 595.28
	a4HeightPt     = 841.89
	letterWidthPt  = 612.0
	letterHeightPt = 792.0
)

// PageSettings configures target page dimensions for pagination and
// PDF export.
type PageSettings struct {
	Size        string // "a4", "letter"
	Orientation string // "portrait", "landscape"
	Margin      Insets // points, per side
}

// DefaultPageSettings returns A4 portrait with default margins.
func DefaultPageSettings() PageSettings {
	return PageSettings{
		Size:        PageSizeA4,
		Orientation: OrientationPortrait,
		Margin:      Insets{Top: DefaultMargin, Right: DefaultMargin, Bottom: DefaultMargin, Left: DefaultMargin},
	}
}

// Validate checks that page settings are valid.
// Uses case-insensitive comparison and does not mutate.
func (p PageSettings) Validate() error {
	switch strings.ToLower(p.Size) {
	case PageSizeA4, PageSizeLetter:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	for _, m := range []float64{p.Margin.Top, p.Margin.Right, p.Margin.Bottom, p.Margin.Left} {
		if m < MinMargin || m > MaxMargin {
			return fmt.Errorf("%w: %.2fpt (must be between %.2f and %.2f)", ErrInvalidMargin, m, MinMargin, MaxMargin)
		}
	}
	return nil
}

// Dimensions returns the page width and height in points for the
// configured size and orientation.
func (p PageSettings) Dimensions() (w, h float64) {
	switch strings.ToLower(p.Size) {
	case PageSizeLetter:
		w, h = letterWidthPt, letterHeightPt
	default:
		w, h = a4WidthPt, a4HeightPt
	}
	if strings.ToLower(p.Orientation) == OrientationLandscape {
		w, h = h, w
	}
	return w, h
}

// ContentSize returns the page content area (inside margins) in points.
func (p PageSettings) ContentSize() (w, h float64) {
	w, h = p.Dimensions()
	return w - p.Margin.Left - p.Margin.Right, h - p.Margin.Top - p.Margin.Bottom
}

// Theme is the resolved style record produced by the gene resolver.
// Immutable once attached to a document.
type Theme struct {
	Primary     string // accent color for headings and dividers
	Secondary   string
	Text        string
	Background  string
	Muted       string
	HeadingFont string
	BodyFont    string
	SpacingUnit float64 // points, base unit for section spacing
	Divider     string  // "rule", "band", "none"
	Bullet      string  // list glyph
}

// Meta carries document identity for the PDF catalog.
type Meta struct {
	Title  string
	Author string
}

// Document is the compiled, renderer-agnostic representation of one
// résumé before pagination: a single flow of top-level blocks.
type Document struct {
	Meta   Meta
	Theme  Theme
	Blocks []Block
}

// Validate checks the whole block tree: per-block variant shapes and
// semantic ranges, plus id uniqueness across the document.
func (d *Document) Validate() error {
	if d == nil {
		return ErrNilDocument
	}
	seen := make(map[string]struct{})
	var bad string
	for i := range d.Blocks {
		if err := d.Blocks[i].Validate(); err != nil {
			return err
		}
		ok := d.Blocks[i].Walk(func(b *Block) bool {
			if _, dup := seen[b.ID]; dup || b.ID == "" {
				bad = b.ID
				return false
			}
			seen[b.ID] = struct{}{}
			return true
		})
		if !ok {
			return fmt.Errorf("%w: %q", ErrDuplicateBlockID, bad)
		}
	}
	return nil
}

// Page is one paginated slice of a document.
type Page struct {
	ID          string
	Size        string // "a4", "letter"
	Orientation string
	Margin      Insets
	Blocks      []Block
}

// Paginated is a document after the layout resolver assigned its blocks
// to pages. Both render adapters consume this form.
type Paginated struct {
	Meta  Meta
	Theme Theme
	Pages []Page
}
