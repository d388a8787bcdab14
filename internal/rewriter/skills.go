package rewriter

import (
	"strings"
	"unicode"
)

// AdditionalSkills receives missing keywords that fit no existing category
const AdditionalSkills = "Additional Skills"

// softSkills are never inserted into the skills section
var softSkills = map[string]bool{
	"communication":          true,
	"communication skills":   true,
	"leadership":             true,
	"teamwork":               true,
	"team management":        true,
	"collaboration":          true,
	"problem solving":        true,
	"problem-solving":        true,
	"critical thinking":      true,
	"time management":        true,
	"adaptability":           true,
	"interpersonal skills":   true,
	"presentation":           true,
	"presentation skills":    true,
	"mentoring":              true,
	"negotiation":            true,
	"attention to detail":    true,
	"stakeholder management": true,
}

// categoryHint maps a catalog category to the skills-section heading it usually
// appears under on a résumé
type categoryHint struct {
	catalogCategory string
	heading         string
}

var categoryHints = []categoryHint{
	{catalogCategory: "programmingLanguages", heading: "Programming Languages"},
	{catalogCategory: "frameworks", heading: "Frameworks"},
	{catalogCategory: "databases", heading: "Databases"},
	{catalogCategory: "cloudDevOps", heading: "Cloud & DevOps"},
	{catalogCategory: "tools", heading: "Tools"},
}

// IsSoftSkill reports whether a keyword is on the soft-skill stop list
func IsSoftSkill(keyword string) bool {
	return softSkills[strings.ToLower(strings.TrimSpace(keyword))]
}

func (r *Rewriter) insertMissingKeywords(st *state) {
	skills := &st.resume.Skills
	for _, kw := range st.match.Missing {
		if IsSoftSkill(kw) || skills.Contains(kw) {
			continue
		}
		skills.Merge(r.targetCategory(kw, skills.Keys()), kw)
	}
}

// targetCategory reuses an existing category when the keyword's hinted
// heading resembles it, and falls back to AdditionalSkills otherwise.
func (r *Rewriter) targetCategory(keyword string, existing []string) string {
	category, ok := r.taxonomy.CategoryOf(keyword)
	if !ok {
		return AdditionalSkills
	}
	for _, hint := range categoryHints {
		if hint.catalogCategory != category {
			continue
		}
		for _, name := range existing {
			if similarHeading(hint.heading, name) {
				return name
			}
		}
	}
	return AdditionalSkills
}

// similarHeading is true when one heading contains the other or they share a word
func similarHeading(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == "" || lb == "" {
		return false
	}
	if strings.Contains(la, lb) || strings.Contains(lb, la) {
		return true
	}
	wa := headingWords(la)
	for _, w := range headingWords(lb) {
		if wa[w] {
			return true
		}
	}
	return false
}

func headingWords(s string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if w == "and" || w == "skills" || len(w) < 2 {
			continue
		}
		words[w] = true
	}
	return words
}
