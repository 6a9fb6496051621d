// Package assets holds the embedded configuration tables: template gene
// definitions, region display rules, locale label strings, and the JSON
// schema for inbound profiles. Tables are parsed strictly and validated
// exhaustively at load, so an id that loads is guaranteed to resolve.
package assets

import (
	"embed"
	"errors"
	"fmt"

	"github.com/alnah/go-cv2pdf/internal/yamlutil"
)

//go:embed tables/*.yaml
var tables embed.FS

//go:embed schema/profile.schema.json
var profileSchema []byte

// Sentinel errors for table loading.
var (
	ErrTableParse   = errors.New("assets: table parse failed")
	ErrTableInvalid = errors.New("assets: table validation failed")
)

// GeneTuple is one template's selection across the six gene axes.
type GeneTuple struct {
	Header     string `yaml:"header"`
	Colors     string `yaml:"colors"`
	Typography string `yaml:"typography"`
	Columns    string `yaml:"columns"`
	Sections   string `yaml:"sections"`
	Density    string `yaml:"density"`
}

// ColorScheme is one resolved palette.
type ColorScheme struct {
	Primary    string `yaml:"primary"`
	Secondary  string `yaml:"secondary"`
	Text       string `yaml:"text"`
	Background string `yaml:"background"`
	Muted      string `yaml:"muted"`
}

// FontPair names heading and body font stacks.
type FontPair struct {
	Heading string `yaml:"heading"`
	Body    string `yaml:"body"`
}

// DensitySpec is a spacing scale.
type DensitySpec struct {
	Unit float64 `yaml:"unit"`
}

// SectionStyle carries per-section visual accents.
type SectionStyle struct {
	Divider string `yaml:"divider"` // "rule", "band", "none"
	Bullet  string `yaml:"bullet"`
}

// GeneTable is the full template configuration space.
type GeneTable struct {
	Templates     map[string]GeneTuple    `yaml:"templates"`
	ColorSchemes  map[string]ColorScheme  `yaml:"colorSchemes"`
	Typography    map[string]FontPair     `yaml:"typography"`
	Density       map[string]DensitySpec  `yaml:"density"`
	SectionStyles map[string]SectionStyle `yaml:"sectionStyles"`
	HeaderStyles  []string                `yaml:"headerStyles"`
	ColumnLayouts []string                `yaml:"columnLayouts"`
}

// SuppressFlags lists the profile fields a region forbids.
type SuppressFlags struct {
	Photo         bool `yaml:"photo"`
	BirthDate     bool `yaml:"birthDate"`
	Gender        bool `yaml:"gender"`
	Nationality   bool `yaml:"nationality"`
	MaritalStatus bool `yaml:"maritalStatus"`
}

// RegionSpec is one region's display/legal/format rules.
type RegionSpec struct {
	Paper      string        `yaml:"paper"` // "a4", "letter"
	DateFormat string        `yaml:"dateFormat"`
	NameOrder  string        `yaml:"nameOrder"` // "given-first", "family-first"
	Suppress   SuppressFlags `yaml:"suppress"`
	Sections   []string      `yaml:"sections"`
}

// knownSections are the logical CV sections the compiler can build.
var knownSections = map[string]struct{}{
	"header": {}, "contact": {}, "summary": {}, "experience": {},
	"education": {}, "skills": {}, "languages": {}, "links": {},
}

// LoadGeneTable parses and validates the embedded gene table.
func LoadGeneTable() (*GeneTable, error) {
	raw, err := tables.ReadFile("tables/genes.yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableParse, err)
	}
	var t GeneTable
	if err := yamlutil.UnmarshalStrict(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: genes.yaml: %v", ErrTableParse, err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// validate checks that every template tuple references existing axis
// values, so gene resolution is total for any id in the table.
func (t *GeneTable) validate() error {
	if len(t.Templates) == 0 {
		return fmt.Errorf("%w: no templates defined", ErrTableInvalid)
	}
	headers := toSet(t.HeaderStyles)
	columns := toSet(t.ColumnLayouts)
	for name, g := range t.Templates {
		if _, ok := headers[g.Header]; !ok {
			return fmt.Errorf("%w: template %q: unknown header style %q", ErrTableInvalid, name, g.Header)
		}
		if _, ok := t.ColorSchemes[g.Colors]; !ok {
			return fmt.Errorf("%w: template %q: unknown color scheme %q", ErrTableInvalid, name, g.Colors)
		}
		if _, ok := t.Typography[g.Typography]; !ok {
			return fmt.Errorf("%w: template %q: unknown typography %q", ErrTableInvalid, name, g.Typography)
		}
		if _, ok := columns[g.Columns]; !ok {
			return fmt.Errorf("%w: template %q: unknown column layout %q", ErrTableInvalid, name, g.Columns)
		}
		if _, ok := t.SectionStyles[g.Sections]; !ok {
			return fmt.Errorf("%w: template %q: unknown section style %q", ErrTableInvalid, name, g.Sections)
		}
		if _, ok := t.Density[g.Density]; !ok {
			return fmt.Errorf("%w: template %q: unknown density %q", ErrTableInvalid, name, g.Density)
		}
	}
	for name, d := range t.Density {
		if d.Unit <= 0 {
			return fmt.Errorf("%w: density %q: unit must be > 0", ErrTableInvalid, name)
		}
	}
	return nil
}

// LoadRegionTable parses and validates the embedded region rules.
func LoadRegionTable() (map[string]RegionSpec, error) {
	raw, err := tables.ReadFile("tables/regions.yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableParse, err)
	}
	var t map[string]RegionSpec
	if err := yamlutil.UnmarshalStrict(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: regions.yaml: %v", ErrTableParse, err)
	}
	for id, r := range t {
		if r.Paper != "a4" && r.Paper != "letter" {
			return nil, fmt.Errorf("%w: region %q: unknown paper %q", ErrTableInvalid, id, r.Paper)
		}
		if r.NameOrder != "given-first" && r.NameOrder != "family-first" {
			return nil, fmt.Errorf("%w: region %q: unknown name order %q", ErrTableInvalid, id, r.NameOrder)
		}
		if len(r.Sections) == 0 {
			return nil, fmt.Errorf("%w: region %q: empty section order", ErrTableInvalid, id)
		}
		for _, s := range r.Sections {
			if _, ok := knownSections[s]; !ok {
				return nil, fmt.Errorf("%w: region %q: unknown section %q", ErrTableInvalid, id, s)
			}
		}
	}
	return t, nil
}

// LoadLabels parses the embedded locale label table.
func LoadLabels() (map[string]map[string]string, error) {
	raw, err := tables.ReadFile("tables/labels.yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableParse, err)
	}
	var t map[string]map[string]string
	if err := yamlutil.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("%w: labels.yaml: %v", ErrTableParse, err)
	}
	for loc, labels := range t {
		for _, key := range []string{"contact", "summary", "experience", "education", "skills", "languages", "links", "present"} {
			if labels[key] == "" {
				return nil, fmt.Errorf("%w: locale %q: missing label %q", ErrTableInvalid, loc, key)
			}
		}
	}
	return t, nil
}

// ProfileSchema returns the embedded JSON schema for profile payloads.
func ProfileSchema() []byte {
	return profileSchema
}

func toSet(vals []string) map[string]struct{} {
	m := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		m[v] = struct{}{}
	}
	return m
}
