package cv2pdf

import (
	"fmt"
	"strings"
	"time"
)

// CompileResult is the outcome of one compile call: a best-effort
// document plus the recovered validation warnings. Compilation succeeds
// for any syntactically valid profile; missing fields become placeholder
// blocks, never errors.
type CompileResult struct {
	Document *Document
	Region   RegionProfile
	Warnings []Warning
}

// CompileDocument builds the renderer-agnostic block tree for a profile
// under a template, region and locale. The only error causes are
// configuration lookups: unknown template, region or locale ids.
//
// The result is deterministic: identical inputs produce structurally
// identical documents with identical block ids.
func CompileDocument(profile Profile, templateID, regionID, locale string) (*CompileResult, error) {
	genes, err := TemplateGenes(templateID)
	if err != nil {
		return nil, err
	}
	return CompileWithGenes(profile, genes, regionID, locale)
}

// CompileWithGenes is CompileDocument for callers holding an explicit
// gene tuple instead of a template id.
func CompileWithGenes(profile Profile, genes GeneConfig, regionID, locale string) (*CompileResult, error) {
	theme, err := ResolveTheme(genes)
	if err != nil {
		return nil, err
	}
	region, err := Region(regionID)
	if err != nil {
		return nil, err
	}
	lbl, err := labels(locale)
	if err != nil {
		return nil, err
	}

	c := &compiler{
		profile: profile,
		genes:   genes,
		theme:   theme,
		region:  region,
		labels:  lbl,
	}
	doc := c.compile()

	for _, w := range c.warnings {
		logger().Warn("compile warning", "kind", string(w.Kind), "field", w.Field, "detail", w.Detail)
	}
	return &CompileResult{Document: doc, Region: region, Warnings: c.warnings}, nil
}

// compiler is single-use state for one compile call.
type compiler struct {
	profile  Profile
	genes    GeneConfig
	theme    Theme
	region   RegionProfile
	labels   map[string]string
	warnings []Warning
}

func (c *compiler) warn(field, detail string) {
	c.warnings = append(c.warnings, Warning{Kind: WarnValidation, Field: field, Detail: detail})
}

func (c *compiler) compile() *Document {
	doc := &Document{
		Meta: Meta{
			Title:  c.profile.Personal.fullName(c.region.FamilyFirst),
			Author: c.profile.Personal.fullName(c.region.FamilyFirst),
		},
		Theme: c.theme,
	}
	if doc.Meta.Title == "" {
		doc.Meta.Title = "Résumé"
	}

	for _, sec := range c.region.SectionOrder {
		switch sec {
		case SectionHeader:
			if b := c.buildHeader(); b != nil {
				doc.Blocks = append(doc.Blocks, *b)
			}
		case SectionContact:
			if b := c.buildContact(); b != nil {
				doc.Blocks = append(doc.Blocks, *b)
			}
		case SectionSummary:
			doc.Blocks = append(doc.Blocks, c.buildSummary()...)
		case SectionExperience:
			doc.Blocks = append(doc.Blocks, c.buildExperience()...)
		case SectionEducation:
			doc.Blocks = append(doc.Blocks, c.buildEducation()...)
		case SectionSkills:
			doc.Blocks = append(doc.Blocks, c.buildSkills()...)
		case SectionLanguages:
			doc.Blocks = append(doc.Blocks, c.buildLanguages()...)
		case SectionLinks:
			doc.Blocks = append(doc.Blocks, c.buildLinks()...)
		}
	}
	return doc
}

// unit is shorthand for the theme spacing unit.
func (c *compiler) unit() float64 { return c.theme.SpacingUnit }

// buildHeader always produces a block: a résumé without a name still
// renders, with a placeholder and a logged warning.
func (c *compiler) buildHeader() *Block {
	name := c.profile.Personal.fullName(c.region.FamilyFirst)
	if name == "" {
		name = "—"
		c.warn("personal.givenName", "missing name, placeholder inserted")
	}

	nameBlock := Block{
		ID:      "header-name",
		Type:    BlockHeading,
		Level:   1,
		Content: name,
		Style:   &Style{FontFamily: c.theme.HeadingFont, FontSize: 26, Bold: true},
	}

	children := []Block{}
	if c.profile.Personal.PhotoURL != "" && !c.region.Suppress.Photo {
		children = append(children, Block{
			ID:     "header-photo",
			Type:   BlockImage,
			Src:    c.profile.Personal.PhotoURL,
			Layout: &Layout{Width: &Dimension{Pt: 72}, Height: &Dimension{Pt: 72}},
		})
	}

	text := []Block{nameBlock}
	if c.profile.Personal.Headline != "" {
		text = append(text, Block{
			ID:      "header-headline",
			Type:    BlockText,
			Content: c.profile.Personal.Headline,
			Style:   &Style{Color: c.theme.Secondary, FontSize: 12, Italic: true},
		})
	}
	children = append(children, Block{
		ID:       "header-identity",
		Type:     BlockContainer,
		Layout:   &Layout{Direction: DirectionColumn, Gap: c.unit()},
		Children: text,
	})

	header := &Block{
		ID:       "header",
		Type:     BlockContainer,
		Children: children,
		Layout:   &Layout{Direction: DirectionRow, Gap: c.unit() * 3, Align: AlignCenter},
	}

	switch c.genes.Header {
	case "banner":
		header.Style = &Style{
			Background: c.theme.Primary,
			Color:      c.theme.Background,
			Padding:    Insets{Top: c.unit() * 3, Right: c.unit() * 3, Bottom: c.unit() * 3, Left: c.unit() * 3},
		}
		nameBlock.Style.Color = c.theme.Background
	case "centered":
		header.Layout.Justify = AlignCenter
		header.Style = &Style{Padding: Insets{Top: c.unit() * 2, Bottom: c.unit() * 2}}
	case "split":
		header.Layout.Justify = AlignSpaceBetween
	case "minimal":
		header.Style = &Style{
			Padding:      Insets{Bottom: c.unit()},
			BorderBottom: &Border{Width: 1, Color: c.theme.Primary},
		}
	}
	return header
}

// buildContact produces the contact bar plus the personal-data lines a
// region allows (birth date, gender, nationality, marital status).
// Suppressed fields never enter the tree.
func (c *compiler) buildContact() *Block {
	p := c.profile.Personal
	items := []Block{}

	add := func(id, icon, content string) {
		items = append(items, Block{
			ID:     id,
			Type:   BlockContainer,
			Layout: &Layout{Direction: DirectionRow, Gap: c.unit(), Align: AlignCenter},
			Children: []Block{
				contactIcon(id+"-icon", icon, c.theme.Secondary),
				{ID: id + "-text", Type: BlockText, Content: content, Style: &Style{FontSize: 9.5}},
			},
		})
	}

	if p.Email != "" {
		add("contact-email", "mail", p.Email)
	}
	if p.Phone != "" {
		add("contact-phone", "phone", p.Phone)
	}
	if loc := joinNonEmpty(", ", p.Address, p.City, p.Country); loc != "" {
		add("contact-location", "pin", loc)
	}

	if p.BirthDate != "" && !c.region.Suppress.BirthDate {
		add("contact-birthdate", "cake", c.labels["birthDate"]+": "+c.formatDate(p.BirthDate, "personal.birthDate"))
	}
	if p.Gender != "" && !c.region.Suppress.Gender {
		add("contact-gender", "person", c.labels["gender"]+": "+p.Gender)
	}
	if p.Nationality != "" && !c.region.Suppress.Nationality {
		add("contact-nationality", "flag", c.labels["nationality"]+": "+p.Nationality)
	}
	if p.MaritalStatus != "" && !c.region.Suppress.MaritalStatus {
		add("contact-marital", "ring", c.labels["maritalStatus"]+": "+p.MaritalStatus)
	}

	if len(items) == 0 {
		return nil
	}
	return &Block{
		ID:       "contact",
		Type:     BlockContainer,
		Layout:   &Layout{Direction: DirectionRow, Gap: c.unit() * 3, Wrap: true},
		Style:    &Style{Padding: Insets{Top: c.unit(), Bottom: c.unit()}},
		Children: items,
	}
}

func (c *compiler) buildSummary() []Block {
	if strings.TrimSpace(c.profile.Summary) == "" {
		return nil
	}
	body := []Block{{
		ID:       "summary-text",
		Type:     BlockText,
		Content:  c.profile.Summary,
		Markdown: true,
		Style:    &Style{LineHeight: 1.4},
	}}
	return c.sectionBlocks(SectionSummary, body)
}

func (c *compiler) buildExperience() []Block {
	if len(c.profile.Experience) == 0 {
		return nil
	}
	entries := make([]Block, 0, len(c.profile.Experience))
	for i, e := range c.profile.Experience {
		entries = append(entries, c.buildExperienceEntry(i+1, e))
	}
	return c.sectionBlocks(SectionExperience, entries)
}

func (c *compiler) buildExperienceEntry(n int, e ExperienceEntry) Block {
	id := fmt.Sprintf("exp-%d", n)

	title := joinNonEmpty(" · ", e.Title, e.Company)
	if title == "" {
		title = "—"
		c.warn(fmt.Sprintf("experience[%d]", n-1), "missing title and company, placeholder inserted")
	}

	head := Block{
		ID:     id + "-head",
		Type:   BlockContainer,
		Layout: &Layout{Direction: DirectionRow, Justify: AlignSpaceBetween, Align: AlignCenter},
		Children: []Block{
			{ID: id + "-title", Type: BlockHeading, Level: 3, Content: title,
				Style: &Style{FontFamily: c.theme.HeadingFont, FontSize: 11.5, Bold: true}},
			{ID: id + "-dates", Type: BlockText, Content: c.dateRange(e.Start, e.End, e.Current, fmt.Sprintf("experience[%d]", n-1)),
				Style: &Style{Color: c.theme.Muted, FontSize: 9}},
		},
	}

	children := []Block{head}
	if e.Location != "" {
		children = append(children, Block{
			ID: id + "-location", Type: BlockText, Content: e.Location,
			Style: &Style{Color: c.theme.Muted, FontSize: 9, Italic: true},
		})
	}
	if strings.TrimSpace(e.Summary) != "" {
		children = append(children, Block{
			ID: id + "-summary", Type: BlockText, Content: e.Summary, Markdown: true,
			Style: &Style{FontSize: 10, LineHeight: 1.35},
		})
	}
	if len(e.Tasks) > 0 {
		items := make([]Block, 0, len(e.Tasks))
		for m, task := range e.Tasks {
			items = append(items, Block{
				ID:   fmt.Sprintf("%s-task-%d", id, m+1),
				Type: BlockListItem,
				Children: []Block{{
					ID: fmt.Sprintf("%s-task-%d-text", id, m+1), Type: BlockText, Content: task,
					Style: &Style{FontSize: 10, LineHeight: 1.3},
				}},
			})
		}
		children = append(children, Block{
			ID:       id + "-tasks",
			Type:     BlockList,
			Layout:   &Layout{Direction: DirectionColumn, Gap: c.unit() / 2},
			Children: items,
		})
	}

	return Block{
		ID:       id,
		Type:     BlockContainer,
		Layout:   &Layout{Direction: DirectionColumn, Gap: c.unit(), Atomic: true},
		Children: children,
	}
}

func (c *compiler) buildEducation() []Block {
	if len(c.profile.Education) == 0 {
		return nil
	}
	entries := make([]Block, 0, len(c.profile.Education))
	for i, e := range c.profile.Education {
		id := fmt.Sprintf("edu-%d", i+1)
		degree := joinNonEmpty(", ", e.Degree, e.Field)
		if degree == "" {
			degree = e.Institution
		}
		if degree == "" {
			degree = "—"
			c.warn(fmt.Sprintf("education[%d]", i), "missing degree and institution, placeholder inserted")
		}
		children := []Block{{
			ID:     id + "-head",
			Type:   BlockContainer,
			Layout: &Layout{Direction: DirectionRow, Justify: AlignSpaceBetween, Align: AlignCenter},
			Children: []Block{
				{ID: id + "-degree", Type: BlockHeading, Level: 3, Content: degree,
					Style: &Style{FontFamily: c.theme.HeadingFont, FontSize: 11, Bold: true}},
				{ID: id + "-dates", Type: BlockText, Content: c.dateRange(e.Start, e.End, false, fmt.Sprintf("education[%d]", i)),
					Style: &Style{Color: c.theme.Muted, FontSize: 9}},
			},
		}}
		if e.Institution != "" && degree != e.Institution {
			children = append(children, Block{
				ID: id + "-institution", Type: BlockText, Content: e.Institution,
				Style: &Style{FontSize: 10},
			})
		}
		if e.Note != "" {
			children = append(children, Block{
				ID: id + "-note", Type: BlockText, Content: e.Note,
				Style: &Style{Color: c.theme.Muted, FontSize: 9.5},
			})
		}
		entries = append(entries, Block{
			ID:       id,
			Type:     BlockContainer,
			Layout:   &Layout{Direction: DirectionColumn, Gap: c.unit() / 2, Atomic: true},
			Children: children,
		})
	}
	return c.sectionBlocks(SectionEducation, entries)
}

func (c *compiler) buildSkills() []Block {
	if len(c.profile.Skills) == 0 {
		return nil
	}
	chips := make([]Block, 0, len(c.profile.Skills))
	for i, s := range c.profile.Skills {
		id := fmt.Sprintf("skill-%d", i+1)
		if s.Name == "" {
			c.warn(fmt.Sprintf("skills[%d].name", i), "empty skill name skipped")
			continue
		}
		children := []Block{{
			ID: id + "-name", Type: BlockText, Content: s.Name,
			Style: &Style{FontSize: 9.5},
		}}
		if s.Level > 0 {
			children = append(children, levelDots(id+"-level", clampLevel(s.Level), c.theme.Primary, c.theme.Muted))
		}
		chips = append(chips, Block{
			ID:     id,
			Type:   BlockContainer,
			Layout: &Layout{Direction: DirectionRow, Gap: c.unit(), Align: AlignCenter},
			Style: &Style{
				Background: c.theme.Background,
				Padding:    Insets{Top: 2, Right: c.unit(), Bottom: 2, Left: c.unit()},
			},
			Children: children,
		})
	}
	if len(chips) == 0 {
		return nil
	}
	return c.sectionBlocks(SectionSkills, []Block{{
		ID:       "skills-row",
		Type:     BlockContainer,
		Layout:   &Layout{Direction: DirectionRow, Gap: c.unit(), Wrap: true},
		Children: chips,
	}})
}

func (c *compiler) buildLanguages() []Block {
	if len(c.profile.Languages) == 0 {
		return nil
	}
	items := make([]Block, 0, len(c.profile.Languages))
	for i, l := range c.profile.Languages {
		id := fmt.Sprintf("lang-%d", i+1)
		if l.Name == "" {
			c.warn(fmt.Sprintf("languages[%d].name", i), "empty language name skipped")
			continue
		}
		items = append(items, Block{
			ID: id, Type: BlockText,
			Content: joinNonEmpty(" — ", l.Name, l.Level),
			Style:   &Style{FontSize: 9.5},
		})
	}
	if len(items) == 0 {
		return nil
	}
	return c.sectionBlocks(SectionLanguages, []Block{{
		ID:       "languages-row",
		Type:     BlockContainer,
		Layout:   &Layout{Direction: DirectionRow, Gap: c.unit() * 3, Wrap: true},
		Children: items,
	}})
}

func (c *compiler) buildLinks() []Block {
	if len(c.profile.Links) == 0 {
		return nil
	}
	items := make([]Block, 0, len(c.profile.Links))
	for i, l := range c.profile.Links {
		id := fmt.Sprintf("link-%d", i+1)
		if l.URL == "" {
			c.warn(fmt.Sprintf("links[%d].url", i), "empty url skipped")
			continue
		}
		label := l.Label
		if label == "" {
			label = l.URL
		}
		items = append(items, Block{
			ID:   id,
			Type: BlockListItem,
			Children: []Block{{
				ID: id + "-a", Type: BlockLink, Content: label, Href: l.URL,
				Style: &Style{Color: c.theme.Secondary, FontSize: 9.5},
			}},
		})
	}
	if len(items) == 0 {
		return nil
	}
	return c.sectionBlocks(SectionLinks, []Block{{
		ID:       "links-list",
		Type:     BlockList,
		Layout:   &Layout{Direction: DirectionColumn, Gap: c.unit() / 2},
		Children: items,
	}})
}

// sectionBlocks wraps body blocks with a localized heading, keeping each
// body block a separate top-level block so the paginator can break
// between entries without splitting inside any block. In the sidebar
// column layout each body block becomes a row with a 28% label rail
// (titled on the first row only); in single-column layout the heading
// precedes the body.
func (c *compiler) sectionBlocks(sec Section, body []Block) []Block {
	if len(body) == 0 {
		return nil
	}
	id := string(sec)
	title := Block{
		ID:      id + "-title",
		Type:    BlockHeading,
		Level:   2,
		Content: c.labels[id],
		Style:   c.sectionTitleStyle(),
	}

	if c.genes.Columns == "sidebar" {
		out := make([]Block, 0, len(body))
		for i, b := range body {
			rail := Block{
				ID:     fmt.Sprintf("%s-rail-%d", id, i+1),
				Type:   BlockContainer,
				Layout: &Layout{Direction: DirectionColumn, Width: &Dimension{Pct: 28}},
			}
			if i == 0 {
				rail.Children = []Block{title}
			}

			// The entry keeps its own layout and carries no explicit
			// width; it flexes beside the rail, so rail, gap and entry
			// always sum to the row width.
			entry := b
			var atomic bool
			if entry.Layout != nil {
				lay := *entry.Layout
				atomic = lay.Atomic
				lay.Atomic = false
				entry.Layout = &lay
			}

			out = append(out, Block{
				ID:   fmt.Sprintf("%s-row-%d", id, i+1),
				Type: BlockContainer,
				Layout: &Layout{
					Direction: DirectionRow,
					Gap:       c.unit() * 3,
					Atomic:    atomic,
				},
				Style:    &Style{Padding: Insets{Top: c.unit() * 2}},
				Children: []Block{rail, entry},
			})
		}
		return out
	}

	titleStyle := *title.Style
	titleStyle.Padding.Top += c.unit() * 2
	title.Style = &titleStyle

	out := []Block{title}
	for _, b := range body {
		entry := b
		st := Style{}
		if entry.Style != nil {
			st = *entry.Style
		}
		st.Padding.Top += c.unit() * 1.5
		entry.Style = &st
		out = append(out, entry)
	}
	return out
}

func (c *compiler) sectionTitleStyle() *Style {
	s := &Style{
		FontFamily: c.theme.HeadingFont,
		FontSize:   13,
		Bold:       true,
		Color:      c.theme.Primary,
	}
	switch c.theme.Divider {
	case "rule":
		s.BorderBottom = &Border{Width: 1, Color: c.theme.Primary}
		s.Padding = Insets{Bottom: 2}
	case "band":
		s.Background = c.theme.Primary
		s.Color = c.theme.Background
		s.Padding = Insets{Top: 2, Right: c.unit(), Bottom: 2, Left: c.unit()}
	}
	return s
}

// dateRange formats "start – end" with the region's date layout,
// substituting the localized "present" string for open-ended entries.
func (c *compiler) dateRange(start, end string, current bool, field string) string {
	from := c.formatDate(start, field+".start")
	to := c.formatDate(end, field+".end")
	if current || (end == "" && start != "") {
		to = c.labels["present"]
	}
	return joinNonEmpty(" – ", from, to)
}

// formatDate reformats an ISO date per the region rule. Malformed input
// is passed through verbatim with a validation warning; a date the user
// typed is better than an empty block.
func (c *compiler) formatDate(iso, field string) string {
	if iso == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, iso); err == nil {
			if layout == "2006" {
				return t.Format("2006")
			}
			return t.Format(c.region.DateFormat)
		}
	}
	c.warn(field, fmt.Sprintf("unparseable date %q passed through", iso))
	return iso
}

func clampLevel(level int) int {
	if level > 5 {
		return 5
	}
	return level
}

// levelDots renders a 1..5 proficiency as five circles.
func levelDots(id string, level int, on, off string) Block {
	shapes := make([]IconShape, 0, 5)
	for i := 0; i < 5; i++ {
		fill := off
		if i < level {
			fill = on
		}
		shapes = append(shapes, IconShape{
			Kind: ShapeCircle,
			CX:   float64(i*10 + 5),
			CY:   5,
			R:    3,
			Fill: fill,
		})
	}
	return Block{
		ID:      id,
		Type:    BlockSVG,
		ViewBox: "0 0 50 10",
		Shapes:  shapes,
		Layout:  &Layout{Width: &Dimension{Pt: 35}, Height: &Dimension{Pt: 7}},
	}
}

// contactIcon returns a small line icon for the contact bar.
func contactIcon(id, kind, stroke string) Block {
	var shapes []IconShape
	switch kind {
	case "mail":
		shapes = []IconShape{
			{Kind: ShapeRect, X: 2, Y: 5, W: 20, H: 14, Stroke: stroke},
			{Kind: ShapePolyline, Points: "2,6 12,13 22,6", Stroke: stroke},
		}
	case "phone":
		shapes = []IconShape{
			{Kind: ShapePath, D: "M6 2h4l2 5-3 2a12 12 0 0 0 6 6l2-3 5 2v4a2 2 0 0 1-2 2A18 18 0 0 1 4 4a2 2 0 0 1 2-2z", Stroke: stroke},
		}
	case "pin":
		shapes = []IconShape{
			{Kind: ShapePath, D: "M12 2a7 7 0 0 1 7 7c0 5-7 13-7 13S5 14 5 9a7 7 0 0 1 7-7z", Stroke: stroke},
			{Kind: ShapeCircle, CX: 12, CY: 9, R: 2.5, Stroke: stroke},
		}
	case "cake":
		shapes = []IconShape{
			{Kind: ShapeRect, X: 4, Y: 11, W: 16, H: 9, Stroke: stroke},
			{Kind: ShapeLine, X1: 12, Y1: 4, X2: 12, Y2: 11, Stroke: stroke},
		}
	case "flag":
		shapes = []IconShape{
			{Kind: ShapeLine, X1: 5, Y1: 3, X2: 5, Y2: 21, Stroke: stroke},
			{Kind: ShapePolyline, Points: "5,4 19,7 5,12", Stroke: stroke},
		}
	case "person":
		shapes = []IconShape{
			{Kind: ShapeCircle, CX: 12, CY: 7, R: 4, Stroke: stroke},
			{Kind: ShapePath, D: "M4 21a8 8 0 0 1 16 0", Stroke: stroke},
		}
	default: // "ring" and anything unmapped
		shapes = []IconShape{
			{Kind: ShapeCircle, CX: 12, CY: 14, R: 7, Stroke: stroke},
			{Kind: ShapeRect, X: 10, Y: 3, W: 4, H: 4, Stroke: stroke},
		}
	}
	return Block{
		ID:      id,
		Type:    BlockSVG,
		ViewBox: "0 0 24 24",
		Shapes:  shapes,
		Layout:  &Layout{Width: &Dimension{Pt: 10}, Height: &Dimension{Pt: 10}},
	}
}

// joinNonEmpty joins the non-empty parts with sep.
func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
