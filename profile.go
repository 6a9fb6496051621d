package cv2pdf

// Profile is the untrusted input record from the editing UI. Every field
// is optional; the compiler substitutes placeholders for anything a
// section requires but the profile lacks. JSON names match the wire
// format accepted by the render service.
type Profile struct {
	Personal   PersonalInfo      `json:"personal"`
	Summary    string            `json:"summary,omitempty"` // markdown allowed
	Experience []ExperienceEntry `json:"experience,omitempty"`
	Education  []EducationEntry  `json:"education,omitempty"`
	Skills     []Skill           `json:"skills,omitempty"`
	Languages  []LanguageSkill   `json:"languages,omitempty"`
	Links      []ProfileLink     `json:"links,omitempty"`
}

// PersonalInfo carries identity and contact fields. The fields below the
// contact group are subject to region suppression rules and must never
// reach the compiled tree when suppressed.
type PersonalInfo struct {
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
	Headline   string `json:"headline,omitempty"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`

	PhotoURL      string `json:"photoUrl,omitempty"`
	BirthDate     string `json:"birthDate,omitempty"` // ISO 8601 date
	Gender        string `json:"gender,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	MaritalStatus string `json:"maritalStatus,omitempty"`
}

// ExperienceEntry is one position in the work history.
type ExperienceEntry struct {
	Company  string   `json:"company,omitempty"`
	Title    string   `json:"title,omitempty"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start,omitempty"` // ISO 8601 year-month
	End      string   `json:"end,omitempty"`
	Current  bool     `json:"current,omitempty"`
	Summary  string   `json:"summary,omitempty"` // markdown allowed
	Tasks    []string `json:"tasks,omitempty"`
}

// EducationEntry is one degree or certification.
type EducationEntry struct {
	Institution string `json:"institution,omitempty"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Note        string `json:"note,omitempty"`
}

// Skill is a named competency with an optional 1..5 proficiency.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// LanguageSkill is a spoken language with a free-form level (e.g. CEFR).
type LanguageSkill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// ProfileLink is a labeled URL (portfolio, repository, social profile).
type ProfileLink struct {
	Label string `json:"label,omitempty"`
	URL   string `json:"url"`
}

// fullName joins the name parts in the order the region dictates.
func (p PersonalInfo) fullName(familyFirst bool) string {
	given, family := p.GivenName, p.FamilyName
	switch {
	case given == "":
		return family
	case family == "":
		return given
	case familyFirst:
		return family + " " + given
	default:
		return given + " " + family
	}
}
