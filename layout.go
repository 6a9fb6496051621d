package cv2pdf

import (
	"math"
)

// Typographic defaults used when a block carries no explicit style.
const (
	defaultFontSize   = 10.0 // points
	defaultLineHeight = 1.25
	// avgGlyphFactor approximates average glyph advance as a fraction of
	// the font size. The same constant drives the preview and the PDF
	// renderer, so both consumers agree on geometry even though neither
	// shapes text here.
	avgGlyphFactor = 0.52

	listIndent   = 12.0 // points, bullet gutter for list items
	defaultImage = 48.0 // points, fallback square for images without size
)

// Box is the concrete geometry computed for one block: absolute page
// coordinates in points, plus resolved child boxes.
type Box struct {
	Block    *Block
	X, Y     float64
	W, H     float64
	Children []*Box
}

// resolveLayout computes geometry for a block sequence laid out as a
// column against a content width. Positions are relative to (0,0) at
// the top-left of the content area; pagination offsets pages later.
//
// The resolver is pure: identical input yields identical boxes, and it
// never mutates the block tree.
func resolveLayout(blocks []Block, contentW float64) []*Box {
	boxes := make([]*Box, 0, len(blocks))
	y := 0.0
	for i := range blocks {
		box := measure(&blocks[i], contentW)
		position(box, 0, y)
		y += box.H
		boxes = append(boxes, box)
	}
	return boxes
}

// measure computes width and height for a block given the available
// width, and relative child offsets. X/Y of the returned box are left
// at zero; position finalizes absolute coordinates.
func measure(b *Block, avail float64) *Box {
	box := &Box{Block: b}

	pad := Insets{}
	if b.Style != nil {
		pad = b.Style.Padding
	}
	explicitW := 0.0
	if b.Layout != nil && b.Layout.Width != nil {
		explicitW = b.Layout.Width.Pts(avail)
	}

	switch b.Type {
	case BlockText, BlockHeading, BlockLink:
		w := avail
		if explicitW > 0 {
			w = explicitW
		}
		box.W = w
		box.H = textHeight(b, w-pad.Left-pad.Right) + pad.Top + pad.Bottom

	case BlockImage:
		box.W, box.H = fixedSize(b, defaultImage, avail)

	case BlockSVG:
		box.W, box.H = fixedSize(b, 24, avail)

	case BlockList:
		measureColumn(box, b, avail, pad, explicitW)

	case BlockListItem:
		inner := avail - listIndent
		measureColumnInner(box, b, inner, pad)
		box.W = avail
		for _, c := range box.Children {
			c.X += listIndent
		}

	case BlockContainer:
		if b.Layout != nil && b.Layout.Direction == DirectionRow {
			measureRow(box, b, avail, pad, explicitW)
		} else {
			measureColumn(box, b, avail, pad, explicitW)
		}
	}

	if b.Style != nil && b.Style.BorderBottom != nil {
		box.H += b.Style.BorderBottom.Width
	}
	return box
}

// measureColumn stacks children vertically with the layout gap.
func measureColumn(box *Box, b *Block, avail float64, pad Insets, explicitW float64) {
	w := avail
	if explicitW > 0 {
		w = explicitW
	}
	box.W = w
	measureColumnInner(box, b, w, pad)
}

func measureColumnInner(box *Box, b *Block, w float64, pad Insets) {
	if len(b.Children) == 0 {
		// Zero-child containers occupy zero height.
		box.H = 0
		return
	}
	gap := 0.0
	if b.Layout != nil {
		gap = b.Layout.Gap
	}
	inner := w - pad.Left - pad.Right
	y := pad.Top
	for i := range b.Children {
		child := measure(&b.Children[i], inner)
		child.X = pad.Left
		child.Y = y
		y += child.H
		if i < len(b.Children)-1 {
			y += gap
		}
		box.Children = append(box.Children, child)
	}
	box.H = y + pad.Bottom
}

// measureRow lays children on a single horizontal axis, wrapping into
// lines when the layout allows it. Percentage widths resolve against
// the parent content width; auto children take their natural width.
func measureRow(box *Box, b *Block, avail float64, pad Insets, explicitW float64) {
	w := avail
	if explicitW > 0 {
		w = explicitW
	}
	box.W = w
	if len(b.Children) == 0 {
		box.H = 0
		return
	}

	l := b.Layout
	inner := w - pad.Left - pad.Right

	// Children with explicit widths resolve against the row content
	// width; leaf-like children take their natural width; column-type
	// auto children share the space left over.
	children := make([]*Box, len(b.Children))
	var flexible []int
	used := l.Gap * float64(len(b.Children)-1)
	for i := range b.Children {
		child := &b.Children[i]
		switch {
		case child.Layout != nil && child.Layout.Width != nil:
			children[i] = measure(child, inner)
		case naturalWidth(child, inner) < inner:
			children[i] = measure(child, naturalWidth(child, inner))
		default:
			flexible = append(flexible, i)
			continue
		}
		used += children[i].W
	}
	if len(flexible) > 0 {
		share := math.Max((inner-used)/float64(len(flexible)), 0)
		for _, i := range flexible {
			children[i] = measure(&b.Children[i], share)
		}
	}

	// Split into lines.
	type line struct {
		boxes []*Box
		width float64
		h     float64
	}
	lines := []*line{{}}
	cur := lines[0]
	for _, c := range children {
		needed := c.W
		if len(cur.boxes) > 0 {
			needed += l.Gap
		}
		if l.Wrap && len(cur.boxes) > 0 && cur.width+needed > inner {
			cur = &line{}
			lines = append(lines, cur)
			needed = c.W
		}
		cur.boxes = append(cur.boxes, c)
		cur.width += needed
		cur.h = math.Max(cur.h, c.H)
	}

	y := pad.Top
	for li, ln := range lines {
		placeLine(ln.boxes, ln.width, ln.h, inner, pad.Left, y, l)
		y += ln.h
		if li < len(lines)-1 {
			y += l.Gap
		}
	}
	box.H = y + pad.Bottom
	box.Children = children
}

// placeLine assigns relative X/Y inside one row line, applying main-axis
// distribution and cross-axis alignment.
func placeLine(boxes []*Box, used, lineH, inner, left, top float64, l *Layout) {
	leftover := inner - used
	if leftover < 0 {
		leftover = 0
	}

	x := left
	spacing := l.Gap
	switch l.Justify {
	case AlignEnd:
		x += leftover
	case AlignCenter:
		x += leftover / 2
	case AlignSpaceBetween:
		if len(boxes) > 1 {
			spacing += leftover / float64(len(boxes)-1)
		}
	case AlignSpaceAround:
		share := leftover / float64(len(boxes))
		x += share / 2
		spacing += share
	}

	for _, c := range boxes {
		c.X = x
		switch l.Align {
		case AlignEnd:
			c.Y = top + lineH - c.H
		case AlignCenter:
			c.Y = top + (lineH-c.H)/2
		default: // start and stretch pin to the top
			c.Y = top
		}
		x += c.W + spacing
	}
}

// naturalWidth estimates the content-based width of a block: what the
// block wants before the row forces a share on it.
func naturalWidth(b *Block, avail float64) float64 {
	pad := Insets{}
	if b.Style != nil {
		pad = b.Style.Padding
	}
	switch b.Type {
	case BlockText, BlockHeading, BlockLink:
		return math.Min(textWidth(b)+pad.Left+pad.Right, avail)
	case BlockImage:
		w, _ := fixedSize(b, defaultImage, avail)
		return w
	case BlockSVG:
		w, _ := fixedSize(b, 24, avail)
		return w
	case BlockContainer:
		if b.Layout != nil && b.Layout.Direction == DirectionRow && !b.Layout.Wrap {
			sum := pad.Left + pad.Right
			for i := range b.Children {
				if i > 0 {
					sum += b.Layout.Gap
				}
				sum += naturalWidth(&b.Children[i], avail)
			}
			return math.Min(sum, avail)
		}
	}
	return avail
}

// textWidth is the unwrapped advance of the block content.
func textWidth(b *Block) float64 {
	fs := fontSize(b)
	return float64(len([]rune(b.Content))) * fs * avgGlyphFactor
}

// textHeight estimates wrapped text height for a given width.
func textHeight(b *Block, w float64) float64 {
	fs := fontSize(b)
	lh := defaultLineHeight
	if b.Style != nil && b.Style.LineHeight > 0 {
		lh = b.Style.LineHeight
	}
	if w <= 0 {
		return fs * lh
	}
	runes := float64(len([]rune(b.Content)))
	perLine := math.Max(1, math.Floor(w/(fs*avgGlyphFactor)))
	lines := math.Max(1, math.Ceil(runes/perLine))
	return lines * fs * lh
}

func fontSize(b *Block) float64 {
	if b.Style != nil && b.Style.FontSize > 0 {
		return b.Style.FontSize
	}
	if b.Type == BlockHeading {
		switch b.Level {
		case 1:
			return 24
		case 2:
			return 14
		default:
			return 12
		}
	}
	return defaultFontSize
}

// fixedSize resolves explicit dimensions with a square fallback.
func fixedSize(b *Block, fallback, avail float64) (w, h float64) {
	w, h = fallback, fallback
	if b.Layout != nil {
		if b.Layout.Width != nil {
			w = b.Layout.Width.Pts(avail)
		}
		if b.Layout.Height != nil {
			h = b.Layout.Height.Pts(avail)
		} else if b.Layout.Width != nil {
			h = w
		}
	}
	return w, h
}

// position shifts a measured box and its subtree to absolute
// coordinates. Child offsets are relative until this pass.
func position(box *Box, x, y float64) {
	box.X += x
	box.Y += y
	for _, c := range box.Children {
		position(c, box.X, box.Y)
	}
}
