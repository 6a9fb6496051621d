package cv2pdf

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	ghtml "github.com/yuin/goldmark/renderer/html"
)

// markdown renders the rich-text profile fields (summary, entry
// descriptions). GFM keeps the behavior users expect from the editor.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		ghtml.WithHardWraps(),
		ghtml.WithXHTML(),
	),
)

// RenderHTML produces the DOM-equivalent representation of a paginated
// document: every block emitted as an absolutely positioned element at
// the exact geometry the layout resolver computed. The same HTML feeds
// the interactive preview and the headless PDF renderer, so the two
// consumers cannot diverge geometrically.
func RenderHTML(p *Paginated) (string, error) {
	if p == nil {
		return "", ErrNilDocument
	}

	var buf strings.Builder
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(p.Meta.Title))
	buf.WriteString("<style>\n")
	writeBaseCSS(&buf, p)
	buf.WriteString("</style>\n</head>\n<body>\n")

	for i := range p.Pages {
		if err := renderPage(&buf, &p.Pages[i], &p.Theme); err != nil {
			return "", err
		}
	}

	buf.WriteString("</body>\n</html>\n")
	return buf.String(), nil
}

func writeBaseCSS(buf *strings.Builder, p *Paginated) {
	pageW, pageH := 0.0, 0.0
	if len(p.Pages) > 0 {
		ps := PageSettings{Size: p.Pages[0].Size, Orientation: p.Pages[0].Orientation, Margin: p.Pages[0].Margin}
		pageW, pageH = ps.Dimensions()
	}
	fmt.Fprintf(buf, "@page { size: %.2fpt %.2fpt; margin: 0; }\n", pageW, pageH)
	fmt.Fprintf(buf, "html, body { margin: 0; padding: 0; }\n")
	fmt.Fprintf(buf, "body { font-family: %s; color: %s; background: %s; }\n",
		p.Theme.BodyFont, safeColor(p.Theme.Text), safeColor(p.Theme.Background))
	fmt.Fprintf(buf, ".page { position: relative; overflow: hidden; width: %.2fpt; height: %.2fpt; break-after: page; page-break-after: always; background: %s; }\n",
		pageW, pageH, safeColor(p.Theme.Background))
	fmt.Fprintf(buf, ".page:last-child { break-after: auto; page-break-after: auto; }\n")
	fmt.Fprintf(buf, ".b { position: absolute; box-sizing: border-box; }\n")
	fmt.Fprintf(buf, ".b p { margin: 0; }\n")
	fmt.Fprintf(buf, "a { color: inherit; text-decoration: none; }\n")
}

func renderPage(buf *strings.Builder, pg *Page, theme *Theme) error {
	ps := PageSettings{Size: pg.Size, Orientation: pg.Orientation, Margin: pg.Margin}
	contentW, _ := ps.ContentSize()

	fmt.Fprintf(buf, "<div class=\"page\" id=\"%s\">\n", html.EscapeString(pg.ID))
	boxes := resolveLayout(pg.Blocks, contentW)
	for _, box := range boxes {
		if err := renderBox(buf, box, pg.Margin.Left, pg.Margin.Top, theme); err != nil {
			return err
		}
	}
	buf.WriteString("</div>\n")
	return nil
}

// renderBox emits one box and its subtree. Geometry comes exclusively
// from the layout resolver; CSS here carries only paint properties.
func renderBox(buf *strings.Builder, box *Box, dx, dy float64, theme *Theme) error {
	b := box.Block
	style := paintCSS(b)

	pos := fmt.Sprintf("left:%.2fpt;top:%.2fpt;width:%.2fpt;height:%.2fpt;",
		box.X+dx, box.Y+dy, box.W, box.H)

	switch b.Type {
	case BlockText:
		content := html.EscapeString(b.Content)
		if b.Markdown {
			var md bytes.Buffer
			if err := markdown.Convert([]byte(b.Content), &md); err != nil {
				return fmt.Errorf("rendering markdown for block %q: %w", b.ID, err)
			}
			content = md.String()
		}
		fmt.Fprintf(buf, "<div class=\"b\" id=\"%s\" style=\"%s%s\">%s</div>\n",
			html.EscapeString(b.ID), pos, style, content)

	case BlockHeading:
		fmt.Fprintf(buf, "<div class=\"b\" id=\"%s\" role=\"heading\" aria-level=\"%d\" style=\"%s%s\">%s</div>\n",
			html.EscapeString(b.ID), b.Level, pos, style, html.EscapeString(b.Content))

	case BlockLink:
		fmt.Fprintf(buf, "<div class=\"b\" id=\"%s\" style=\"%s%s\"><a href=\"%s\">%s</a></div>\n",
			html.EscapeString(b.ID), pos, style, html.EscapeString(b.Href), html.EscapeString(b.Content))

	case BlockImage:
		fmt.Fprintf(buf, "<img class=\"b\" id=\"%s\" src=\"%s\" style=\"%sobject-fit:cover;\" alt=\"\"/>\n",
			html.EscapeString(b.ID), html.EscapeString(b.Src), pos)

	case BlockSVG:
		fmt.Fprintf(buf, "<svg class=\"b\" id=\"%s\" viewBox=\"%s\" style=\"%s\" xmlns=\"http://www.w3.org/2000/svg\">",
			html.EscapeString(b.ID), html.EscapeString(b.ViewBox), pos)
		for _, s := range b.Shapes {
			writeShape(buf, s)
		}
		buf.WriteString("</svg>\n")

	case BlockContainer, BlockList:
		// Boxes carry absolute page coordinates, so the tree renders
		// flat: the parent paints first (size, background, border) and
		// its children follow as siblings on top of it.
		fmt.Fprintf(buf, "<div class=\"b\" id=\"%s\" style=\"%s%s\"></div>\n",
			html.EscapeString(b.ID), pos, style)
		for _, c := range box.Children {
			if err := renderBox(buf, c, dx, dy, theme); err != nil {
				return err
			}
		}

	case BlockListItem:
		fmt.Fprintf(buf, "<div class=\"b\" id=\"%s\" style=\"%s%s\">", html.EscapeString(b.ID), pos, style)
		fmt.Fprintf(buf, "<span>%s</span>", html.EscapeString(theme.Bullet))
		buf.WriteString("</div>\n")
		for _, c := range box.Children {
			if err := renderBox(buf, c, dx, dy, theme); err != nil {
				return err
			}
		}
	}
	return nil
}

// paintCSS translates a Style into CSS paint properties. Block
// positions already include parent padding offsets; the block's own
// padding is still emitted so the browser insets text and backgrounds
// inside the same border-box edges the measurer used.
func paintCSS(b *Block) string {
	var sb strings.Builder
	s := b.Style
	if s == nil {
		return ""
	}
	if s.Color != "" {
		fmt.Fprintf(&sb, "color:%s;", safeColor(s.Color))
	}
	if s.Background != "" {
		fmt.Fprintf(&sb, "background:%s;", safeColor(s.Background))
	}
	if s.FontFamily != "" {
		fmt.Fprintf(&sb, "font-family:%s;", strings.ReplaceAll(s.FontFamily, ";", ""))
	}
	if s.FontSize > 0 {
		fmt.Fprintf(&sb, "font-size:%.2fpt;", s.FontSize)
	}
	if s.Bold {
		sb.WriteString("font-weight:bold;")
	}
	if s.Italic {
		sb.WriteString("font-style:italic;")
	}
	if s.LineHeight > 0 {
		fmt.Fprintf(&sb, "line-height:%.2f;", s.LineHeight)
	}
	if s.Padding != (Insets{}) {
		fmt.Fprintf(&sb, "padding:%.2fpt %.2fpt %.2fpt %.2fpt;",
			s.Padding.Top, s.Padding.Right, s.Padding.Bottom, s.Padding.Left)
	}
	if s.BorderBottom != nil {
		fmt.Fprintf(&sb, "border-bottom:%.2fpt solid %s;", s.BorderBottom.Width, safeColor(s.BorderBottom.Color))
	}
	return sb.String()
}

func writeShape(buf *strings.Builder, s IconShape) {
	paint := shapePaint(s)
	switch s.Kind {
	case ShapePath:
		fmt.Fprintf(buf, `<path d="%s"%s/>`, html.EscapeString(s.D), paint)
	case ShapeCircle:
		fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f"%s/>`, s.CX, s.CY, s.R, paint)
	case ShapeRect:
		fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"%s/>`, s.X, s.Y, s.W, s.H, paint)
	case ShapeLine:
		fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"%s/>`, s.X1, s.Y1, s.X2, s.Y2, paint)
	case ShapePolyline:
		fmt.Fprintf(buf, `<polyline points="%s"%s/>`, html.EscapeString(s.Points), paint)
	}
}

func shapePaint(s IconShape) string {
	fill := "none"
	if s.Fill != "" {
		fill = safeColor(s.Fill)
	}
	out := fmt.Sprintf(` fill="%s"`, fill)
	if s.Stroke != "" {
		out += fmt.Sprintf(` stroke="%s" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"`, safeColor(s.Stroke))
	}
	return out
}

// safeColor strips characters that would escape a CSS value context.
func safeColor(c string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\':
			return -1
		}
		return r
	}, c)
}
