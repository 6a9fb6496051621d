package cv2pdf

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alnah/go-cv2pdf/internal/assets"
)

// GeneConfig identifies one point in the template configuration space:
// a tuple of discrete style choices. Resolved once per compile, never
// mutated afterward.
type GeneConfig struct {
	Header     string // "banner", "split", "minimal", "centered"
	Colors     string // color scheme id
	Typography string // font pairing id
	Columns    string // "single", "sidebar"
	Sections   string // section style id
	Density    string // spacing scale id
}

var loadGeneTable = sync.OnceValues(assets.LoadGeneTable)

// ValidateTables loads and validates every embedded configuration table.
// Servers call this at startup so a malformed table fails the process
// immediately instead of the first request.
func ValidateTables() error {
	if _, err := loadGeneTable(); err != nil {
		return err
	}
	if _, err := loadRegionTable(); err != nil {
		return err
	}
	_, err := loadLabelTable()
	return err
}

// Templates returns the ids of all built-in templates.
func Templates() ([]string, error) {
	t, err := loadGeneTable()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(t.Templates))
	for id := range t.Templates {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TemplateGenes maps a template id to its gene tuple.
func TemplateGenes(templateID string) (GeneConfig, error) {
	t, err := loadGeneTable()
	if err != nil {
		return GeneConfig{}, err
	}
	g, ok := t.Templates[templateID]
	if !ok {
		return GeneConfig{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	return GeneConfig{
		Header:     g.Header,
		Colors:     g.Colors,
		Typography: g.Typography,
		Columns:    g.Columns,
		Sections:   g.Sections,
		Density:    g.Density,
	}, nil
}

// ResolveTheme maps a gene tuple to concrete style values. Every value
// in the loaded table resolves; an unknown enum value is reported as
// ErrUnknownGene rather than silently defaulting.
func ResolveTheme(g GeneConfig) (Theme, error) {
	t, err := loadGeneTable()
	if err != nil {
		return Theme{}, err
	}

	colors, ok := t.ColorSchemes[g.Colors]
	if !ok {
		return Theme{}, fmt.Errorf("%w: color scheme %q", ErrUnknownGene, g.Colors)
	}
	fonts, ok := t.Typography[g.Typography]
	if !ok {
		return Theme{}, fmt.Errorf("%w: typography %q", ErrUnknownGene, g.Typography)
	}
	density, ok := t.Density[g.Density]
	if !ok {
		return Theme{}, fmt.Errorf("%w: density %q", ErrUnknownGene, g.Density)
	}
	section, ok := t.SectionStyles[g.Sections]
	if !ok {
		return Theme{}, fmt.Errorf("%w: section style %q", ErrUnknownGene, g.Sections)
	}
	if !contains(t.HeaderStyles, g.Header) {
		return Theme{}, fmt.Errorf("%w: header style %q", ErrUnknownGene, g.Header)
	}
	if !contains(t.ColumnLayouts, g.Columns) {
		return Theme{}, fmt.Errorf("%w: column layout %q", ErrUnknownGene, g.Columns)
	}

	return Theme{
		Primary:     colors.Primary,
		Secondary:   colors.Secondary,
		Text:        colors.Text,
		Background:  colors.Background,
		Muted:       colors.Muted,
		HeadingFont: fonts.Heading,
		BodyFont:    fonts.Body,
		SpacingUnit: density.Unit,
		Divider:     section.Divider,
		Bullet:      section.Bullet,
	}, nil
}

func contains(vals []string, v string) bool {
	for _, x := range vals {
		if x == v {
			return true
		}
	}
	return false
}
