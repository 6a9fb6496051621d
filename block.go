package cv2pdf

import (
	"fmt"
	"math"
)

// BlockType discriminates the IR node variants.
type BlockType string

// Block variants.
const (
	BlockContainer BlockType = "container"
	BlockText      BlockType = "text"
	BlockHeading   BlockType = "heading"
	BlockImage     BlockType = "image"
	BlockLink      BlockType = "link"
	BlockList      BlockType = "list"
	BlockListItem  BlockType = "listItem"
	BlockSVG       BlockType = "svg"
)

// Block is one node of the document intermediate representation. The set
// of meaningful fields depends on Type; Validate rejects combinations
// outside the variant's shape so a renderer can exhaustively match on
// Type without defensive checks.
type Block struct {
	ID     string    // unique within one document, stable across recompiles
	Type   BlockType
	Style  *Style    // visual properties (nil = inherit defaults)
	Layout *Layout   // box-model properties (nil = block flow defaults)

	Content  string // text, heading, link
	Markdown bool   // Content is markdown, rendered at paint time (text only)
	Level    int    // heading level 1..6

	Href string // link target
	Src  string // image source

	Shapes  []IconShape // svg primitives
	ViewBox string      // svg coordinate space, e.g. "0 0 24 24"

	Children []Block // container, list, listItem
}

// ShapeKind discriminates SVG primitives.
type ShapeKind string

// IconShape kinds.
const (
	ShapePath     ShapeKind = "path"
	ShapeCircle   ShapeKind = "circle"
	ShapeRect     ShapeKind = "rect"
	ShapeLine     ShapeKind = "line"
	ShapePolyline ShapeKind = "polyline"
)

// IconShape is a typed vector primitive inside an svg block.
type IconShape struct {
	Kind   ShapeKind
	D      string  // path data (path)
	CX, CY float64 // circle center
	R      float64 // circle radius
	X, Y   float64 // rect origin
	W, H   float64 // rect size
	X1, Y1 float64 // line start
	X2, Y2 float64 // line end
	Points string  // polyline points
	Fill   string  // fill color, empty = currentColor
	Stroke string  // stroke color
}

// Style holds the closed set of visual properties a block may carry.
// All dimensions are in points.
type Style struct {
	Color        string  // CSS color, e.g. "#1c1c22"
	Background   string
	FontFamily   string
	FontSize     float64 // points, must be > 0 when set
	Bold         bool
	Italic       bool
	LineHeight   float64 // multiplier, must be > 0 when set
	Padding      Insets
	BorderBottom *Border
}

// Insets are four-sided spacing in points.
type Insets struct {
	Top, Right, Bottom, Left float64
}

// Border describes a single border edge.
type Border struct {
	Width float64 // points
	Color string
}

// Direction is the main axis of a container.
type Direction string

// Flex directions.
const (
	DirectionRow    Direction = "row"
	DirectionColumn Direction = "column"
)

// Align positions children on an axis.
type Align string

// Alignment values. Start/End/Center/Stretch apply to the cross axis;
// the Space* values distribute leftover main-axis space.
const (
	AlignStart        Align = "start"
	AlignEnd          Align = "end"
	AlignCenter       Align = "center"
	AlignStretch      Align = "stretch"
	AlignSpaceBetween Align = "space-between"
	AlignSpaceAround  Align = "space-around"
)

// Dimension is a width or height: either absolute points or a
// percentage of the parent content size. At most one of Pt/Pct is set.
type Dimension struct {
	Pt  float64
	Pct float64 // 0..100
}

// Pts resolves the dimension against a parent size in points.
func (d Dimension) Pts(parent float64) float64 {
	if d.Pct > 0 {
		return parent * d.Pct / 100
	}
	return d.Pt
}

// Layout holds the closed set of box-model properties a block may carry.
type Layout struct {
	Direction Direction // container main axis ("" = column)
	Gap       float64   // points between children
	Align     Align     // cross-axis alignment ("" = stretch)
	Justify   Align     // main-axis distribution ("" = start)
	Width     *Dimension
	Height    *Dimension
	Wrap      bool
	Atomic    bool // pagination must not split inside this block
}

// hasContent reports whether the variant carries a Content string.
func (t BlockType) hasContent() bool {
	switch t {
	case BlockText, BlockHeading, BlockLink:
		return true
	}
	return false
}

// hasChildren reports whether the variant may carry children.
func (t BlockType) hasChildren() bool {
	switch t {
	case BlockContainer, BlockList, BlockListItem:
		return true
	}
	return false
}

// Validate checks one block and its subtree against the variant shapes
// and semantic ranges. Uniqueness of ids across a whole document is
// checked by Document.Validate, which walks the full tree.
func (b *Block) Validate() error {
	switch b.Type {
	case BlockContainer, BlockList, BlockListItem:
		if b.Content != "" || b.Src != "" || b.Href != "" || len(b.Shapes) > 0 {
			return fmt.Errorf("%w: %q: %s block carries content fields", ErrInvalidBlock, b.ID, b.Type)
		}
	case BlockText:
		if len(b.Children) > 0 {
			return fmt.Errorf("%w: %q: text block has children", ErrInvalidBlock, b.ID)
		}
	case BlockHeading:
		if len(b.Children) > 0 {
			return fmt.Errorf("%w: %q: heading block has children", ErrInvalidBlock, b.ID)
		}
		if b.Level < 1 || b.Level > 6 {
			return fmt.Errorf("%w: %q: heading level %d out of range 1..6", ErrInvalidBlock, b.ID, b.Level)
		}
	case BlockLink:
		if len(b.Children) > 0 {
			return fmt.Errorf("%w: %q: link block has children", ErrInvalidBlock, b.ID)
		}
	case BlockImage:
		if b.Src == "" {
			return fmt.Errorf("%w: %q: image block without src", ErrInvalidBlock, b.ID)
		}
		if len(b.Children) > 0 {
			return fmt.Errorf("%w: %q: image block has children", ErrInvalidBlock, b.ID)
		}
	case BlockSVG:
		if b.ViewBox == "" {
			return fmt.Errorf("%w: %q: svg block without viewBox", ErrInvalidBlock, b.ID)
		}
		if len(b.Children) > 0 {
			return fmt.Errorf("%w: %q: svg block has children", ErrInvalidBlock, b.ID)
		}
		for _, s := range b.Shapes {
			if err := s.validate(); err != nil {
				return fmt.Errorf("%w: %q: %v", ErrInvalidBlock, b.ID, err)
			}
		}
	default:
		return fmt.Errorf("%w: %q: unknown type %q", ErrInvalidBlock, b.ID, b.Type)
	}

	if !b.Type.hasChildren() && b.Layout != nil && b.Layout.Direction != "" {
		return fmt.Errorf("%w: %q: flex direction on childless %s block", ErrInvalidLayout, b.ID, b.Type)
	}

	if err := b.Style.validate(); err != nil {
		return fmt.Errorf("%q: %w", b.ID, err)
	}
	if err := b.Layout.validate(); err != nil {
		return fmt.Errorf("%q: %w", b.ID, err)
	}

	for i := range b.Children {
		if err := b.Children[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s IconShape) validate() error {
	switch s.Kind {
	case ShapePath:
		if s.D == "" {
			return fmt.Errorf("path shape without data")
		}
	case ShapeCircle:
		if s.R <= 0 {
			return fmt.Errorf("circle radius must be > 0")
		}
	case ShapeRect:
		if s.W <= 0 || s.H <= 0 {
			return fmt.Errorf("rect size must be > 0")
		}
	case ShapeLine:
		// any coordinates are valid
	case ShapePolyline:
		if s.Points == "" {
			return fmt.Errorf("polyline without points")
		}
	default:
		return fmt.Errorf("unknown shape kind %q", s.Kind)
	}
	return nil
}

// validate checks semantic ranges. Nil means "inherit" and is valid.
func (s *Style) validate() error {
	if s == nil {
		return nil
	}
	if s.FontSize < 0 || math.IsInf(s.FontSize, 0) || math.IsNaN(s.FontSize) {
		return fmt.Errorf("%w: font size %.2f must be > 0", ErrInvalidStyle, s.FontSize)
	}
	if s.LineHeight < 0 {
		return fmt.Errorf("%w: line height %.2f must be > 0", ErrInvalidStyle, s.LineHeight)
	}
	for _, v := range []float64{s.Padding.Top, s.Padding.Right, s.Padding.Bottom, s.Padding.Left} {
		if v < 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%w: padding %.2f must be finite and non-negative", ErrInvalidStyle, v)
		}
	}
	if s.BorderBottom != nil && s.BorderBottom.Width < 0 {
		return fmt.Errorf("%w: border width %.2f must be non-negative", ErrInvalidStyle, s.BorderBottom.Width)
	}
	return nil
}

func (l *Layout) validate() error {
	if l == nil {
		return nil
	}
	switch l.Direction {
	case "", DirectionRow, DirectionColumn:
	default:
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidLayout, l.Direction)
	}
	switch l.Align {
	case "", AlignStart, AlignEnd, AlignCenter, AlignStretch:
	default:
		return fmt.Errorf("%w: unknown cross-axis alignment %q", ErrInvalidLayout, l.Align)
	}
	switch l.Justify {
	case "", AlignStart, AlignEnd, AlignCenter, AlignSpaceBetween, AlignSpaceAround:
	default:
		return fmt.Errorf("%w: unknown main-axis distribution %q", ErrInvalidLayout, l.Justify)
	}
	if l.Gap < 0 {
		return fmt.Errorf("%w: gap %.2f must be non-negative", ErrInvalidLayout, l.Gap)
	}
	for _, d := range []*Dimension{l.Width, l.Height} {
		if d == nil {
			continue
		}
		if d.Pt < 0 || d.Pct < 0 || d.Pct > 100 ||
			math.IsInf(d.Pt, 0) || math.IsNaN(d.Pt) {
			return fmt.Errorf("%w: dimension {%.2fpt %.2f%%} out of range", ErrInvalidLayout, d.Pt, d.Pct)
		}
		if d.Pt > 0 && d.Pct > 0 {
			return fmt.Errorf("%w: dimension sets both points and percentage", ErrInvalidLayout)
		}
	}
	return nil
}

// Walk calls fn for b and every descendant in depth-first order.
// Walking stops early when fn returns false.
func (b *Block) Walk(fn func(*Block) bool) bool {
	if !fn(b) {
		return false
	}
	for i := range b.Children {
		if !b.Children[i].Walk(fn) {
			return false
		}
	}
	return true
}
