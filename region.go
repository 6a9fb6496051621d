package cv2pdf

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alnah/go-cv2pdf/internal/assets"
)

// Section identifies one logical CV section.
type Section string

// Logical CV sections, in no particular order. A region's SectionOrder
// dictates which appear and in what order.
const (
	SectionHeader     Section = "header"
	SectionContact    Section = "contact"
	SectionSummary    Section = "summary"
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionLanguages  Section = "languages"
	SectionLinks      Section = "links"
)

// Suppression lists the profile fields a region forbids. A suppressed
// field never enters the compiled tree; it is not merely hidden.
type Suppression struct {
	Photo         bool
	BirthDate     bool
	Gender        bool
	Nationality   bool
	MaritalStatus bool
}

// RegionProfile is the immutable rule set for one geography: what a
// résumé may show, paper size, date format, and section order.
type RegionProfile struct {
	ID           string
	Paper        string // "a4", "letter"
	DateFormat   string // Go reference layout for year-month dates
	FamilyFirst  bool   // family name precedes given name
	Suppress     Suppression
	SectionOrder []Section
}

var loadRegionTable = sync.OnceValues(func() (map[string]RegionProfile, error) {
	raw, err := assets.LoadRegionTable()
	if err != nil {
		return nil, err
	}
	out := make(map[string]RegionProfile, len(raw))
	for id, spec := range raw {
		sections := make([]Section, len(spec.Sections))
		for i, s := range spec.Sections {
			sections[i] = Section(s)
		}
		out[id] = RegionProfile{
			ID:          id,
			Paper:       spec.Paper,
			DateFormat:  spec.DateFormat,
			FamilyFirst: spec.NameOrder == "family-first",
			Suppress: Suppression{
				Photo:         spec.Suppress.Photo,
				BirthDate:     spec.Suppress.BirthDate,
				Gender:        spec.Suppress.Gender,
				Nationality:   spec.Suppress.Nationality,
				MaritalStatus: spec.Suppress.MaritalStatus,
			},
			SectionOrder: sections,
		}
	}
	return out, nil
})

// Region looks up the rule set for a region id.
func Region(regionID string) (RegionProfile, error) {
	t, err := loadRegionTable()
	if err != nil {
		return RegionProfile{}, err
	}
	r, ok := t[regionID]
	if !ok {
		return RegionProfile{}, fmt.Errorf("%w: %q", ErrUnknownRegion, regionID)
	}
	return r, nil
}

// Regions returns all known region ids, sorted.
func Regions() ([]string, error) {
	t, err := loadRegionTable()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// PageSettings returns the page geometry the region's paper rule implies.
func (r RegionProfile) PageSettings() PageSettings {
	ps := DefaultPageSettings()
	ps.Size = r.Paper
	return ps
}
