package types

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// PersonalInfo holds contact details. Extra keeps any non-standard field
// (date of birth, nationality, ...) found in the source document.
type PersonalInfo struct {
	FullName string
	Email    string
	Phone    string
	LinkedIn string
	Location string
	Extra    map[string]string
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
	Score       string `json:"score"`
}

type ExperienceEntry struct {
	Title    string   `json:"title"`
	Company  string   `json:"company"`
	Location string   `json:"location"`
	Dates    string   `json:"dates"`
	Bullets  []string `json:"bullets"`
}

type ProjectEntry struct {
	Name      string   `json:"name"`
	TechStack string   `json:"techStack"`
	Bullets   []string `json:"bullets"`
}

// Resume is the structured résumé model. A nil Experience or Projects slice
// means the section was removed and is omitted from JSON; an empty one is kept.
type Resume struct {
	PersonalInfo            PersonalInfo
	Summary                 string
	Education               []EducationEntry
	Experience              []ExperienceEntry
	Projects                []ProjectEntry
	Skills                  Skills
	Certifications          []string
	Achievements            []string
	SuggestedCertifications []string
	Declaration             string
	IsFresher               bool
	EnhancementError        string
}

// NewResume returns a model with every section present and empty
func NewResume() *Resume {
	return &Resume{
		PersonalInfo:   PersonalInfo{Extra: map[string]string{}},
		Education:      []EducationEntry{},
		Experience:     []ExperienceEntry{},
		Projects:       []ProjectEntry{},
		Certifications: []string{},
		Achievements:   []string{},
	}
}

// Clone returns a deep copy
func (r *Resume) Clone() *Resume {
	if r == nil {
		return nil
	}
	out := *r
	out.PersonalInfo.Extra = maps.Clone(r.PersonalInfo.Extra)
	out.Education = slices.Clone(r.Education)
	out.Experience = cloneExperience(r.Experience)
	out.Projects = cloneProjects(r.Projects)
	out.Skills = NewSkills(r.Skills.Entries()...)
	out.Certifications = slices.Clone(r.Certifications)
	out.Achievements = slices.Clone(r.Achievements)
	out.SuggestedCertifications = slices.Clone(r.SuggestedCertifications)
	return &out
}

func cloneExperience(in []ExperienceEntry) []ExperienceEntry {
	if in == nil {
		return nil
	}
	out := make([]ExperienceEntry, len(in))
	for i, e := range in {
		e.Bullets = slices.Clone(e.Bullets)
		out[i] = e
	}
	return out
}

func cloneProjects(in []ProjectEntry) []ProjectEntry {
	if in == nil {
		return nil
	}
	out := make([]ProjectEntry, len(in))
	for i, p := range in {
		p.Bullets = slices.Clone(p.Bullets)
		out[i] = p
	}
	return out
}

// Text joins every textual field of the model, one item per line
func (r *Resume) Text() string {
	var lines []string
	add := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}
	add(r.Summary)
	for _, e := range r.Experience {
		add(e.Title)
		add(e.Company)
		for _, b := range e.Bullets {
			add(b)
		}
	}
	for _, p := range r.Projects {
		add(p.Name)
		add(p.TechStack)
		for _, b := range p.Bullets {
			add(b)
		}
	}
	add(r.Skills.Text())
	for _, e := range r.Education {
		add(e.Degree)
		add(e.Institution)
	}
	for _, c := range r.Certifications {
		add(c)
	}
	return strings.Join(lines, "\n")
}

type resumeJSON struct {
	PersonalInfo            PersonalInfo       `json:"personalInfo"`
	Summary                 string             `json:"summary"`
	Education               []EducationEntry   `json:"education"`
	Experience              *[]ExperienceEntry `json:"experience,omitempty"`
	Projects                *[]ProjectEntry    `json:"projects,omitempty"`
	Skills                  Skills             `json:"skills"`
	Certifications          []string           `json:"certifications"`
	Achievements            []string           `json:"achievements"`
	SuggestedCertifications []string           `json:"suggestedCertifications,omitempty"`
	Declaration             string             `json:"declaration,omitempty"`
	IsFresher               bool               `json:"isFresher"`
	EnhancementError        string             `json:"enhancementError,omitempty"`
}

func (r Resume) MarshalJSON() ([]byte, error) {
	w := resumeJSON{
		PersonalInfo:            r.PersonalInfo,
		Summary:                 r.Summary,
		Education:               nonNil(r.Education),
		Skills:                  r.Skills,
		Certifications:          nonNil(r.Certifications),
		Achievements:            nonNil(r.Achievements),
		SuggestedCertifications: r.SuggestedCertifications,
		Declaration:             r.Declaration,
		IsFresher:               r.IsFresher,
		EnhancementError:        r.EnhancementError,
	}
	if r.Experience != nil {
		w.Experience = &r.Experience
	}
	if r.Projects != nil {
		w.Projects = &r.Projects
	}
	return json.Marshal(w)
}

func (r *Resume) UnmarshalJSON(data []byte) error {
	var w resumeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Resume{
		PersonalInfo:            w.PersonalInfo,
		Summary:                 w.Summary,
		Education:               nonNil(w.Education),
		Skills:                  w.Skills,
		Certifications:          nonNil(w.Certifications),
		Achievements:            nonNil(w.Achievements),
		SuggestedCertifications: w.SuggestedCertifications,
		Declaration:             w.Declaration,
		IsFresher:               w.IsFresher,
		EnhancementError:        w.EnhancementError,
	}
	if w.Experience != nil {
		r.Experience = nonNil(*w.Experience)
	}
	if w.Projects != nil {
		r.Projects = nonNil(*w.Projects)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var standardPersonalKeys = []string{"fullName", "email", "phone", "linkedin", "location"}

func (p PersonalInfo) MarshalJSON() ([]byte, error) {
	// Standard keys first, then extras sorted, so output is stable.
	buf := []byte{'{'}
	write := func(k, v string) error {
		if len(buf) > 1 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		buf = append(buf, vb...)
		return nil
	}

	values := []string{p.FullName, p.Email, p.Phone, p.LinkedIn, p.Location}
	for i, k := range standardPersonalKeys {
		if err := write(k, values[i]); err != nil {
			return nil, err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(p.Extra)) {
		if err := write(k, p.Extra[k]); err != nil {
			return nil, err
		}
	}
	return append(buf, '}'), nil
}

func (p *PersonalInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PersonalInfo{Extra: map[string]string{}}
	for k, v := range raw {
		s, _ := v.(string)
		switch k {
		case "fullName":
			p.FullName = s
		case "email":
			p.Email = s
		case "phone":
			p.Phone = s
		case "linkedin":
			p.LinkedIn = s
		case "location":
			p.Location = s
		default:
			if v != nil {
				if s == "" {
					b, _ := json.Marshal(v)
					s = string(b)
				}
				p.Extra[k] = s
			}
		}
	}
	return nil
}

// RemoveField deletes a non-standard field. It reports whether anything was removed.
func (p *PersonalInfo) RemoveField(key string) bool {
	if _, ok := p.Extra[key]; !ok {
		return false
	}
	delete(p.Extra, key)
	return true
}
