package coverletter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/catalog"
	"atsresume/internal/matcher"
)

const resumeText = `Asha Rao
asha@example.com | +91 98765 43210
SUMMARY
Backend engineer with 5 years of experience building payment systems.
SKILLS
Languages: Go, Python, Java
Tools: Docker, Kubernetes
EXPERIENCE
Software Engineer, Acme Corp 2019 - Present
`

const jobDescription = `We are hiring a Senior Backend Engineer to join Globex Corporation.
Requirements:
- 5+ years of Go development
- Experience with Kubernetes in production
- Strong SQL skills
Benefits:
- Health insurance
`

var fixedClock = WithClock(func() time.Time {
	return time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
})

func newMatcher(t *testing.T) *matcher.Matcher {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return matcher.New(c)
}

func TestFacts(t *testing.T) {
	f := New(nil).Facts(resumeText, jobDescription)

	assert.Equal(t, "Asha Rao", f.CandidateName)
	assert.Equal(t, "Globex Corporation", f.CompanyName)
	assert.Equal(t, "Senior Backend Engineer", f.TargetRole)
	assert.Equal(t, "5+ years of professional experience", f.Experience)
	assert.Equal(t, []string{"Go", "Python", "Java", "Docker", "Kubernetes"}, f.Skills)
	assert.Equal(t, []string{
		"5+ years of Go development",
		"Experience with Kubernetes in production",
		"Strong SQL skills",
	}, f.Requirements)
	assert.Equal(t, []string{"Go", "Kubernetes"}, f.RelevantSkills)
}

func TestGenerate(t *testing.T) {
	letter := New(nil, fixedClock).Generate(resumeText, jobDescription)

	assert.Equal(t, SourceTemplate, letter.Source)
	assert.Equal(t, "Asha Rao", letter.CandidateName)
	assert.Equal(t, "Globex Corporation", letter.CompanyName)
	assert.Equal(t, "Senior Backend Engineer", letter.TargetRole)

	text := letter.CoverLetterText
	assert.True(t, strings.HasPrefix(text, "Asha Rao\nMarch 1, 2024\n\nDear Hiring Manager,\n\n"))
	assert.Contains(t, text, "strong interest in the Senior Backend Engineer position at Globex Corporation.")
	assert.Contains(t, text, "With 5+ years of professional experience, I am confident")
	assert.Contains(t, text, "strong expertise in Go, Kubernetes.")
	assert.Contains(t, text, "My experience includes 5+ years of Go development, Experience with Kubernetes in production, and Strong SQL skills,")
	assert.True(t, strings.HasSuffix(text, "Sincerely,\nAsha Rao"))
}

func TestPlaceholders(t *testing.T) {
	letter := New(nil, fixedClock).Generate("", "")

	assert.Equal(t, PlaceholderName, letter.CandidateName)
	assert.Equal(t, PlaceholderCompany, letter.CompanyName)
	assert.Equal(t, PlaceholderRole, letter.TargetRole)
	assert.Contains(t, letter.CoverLetterText, "With relevant professional experience,")
	assert.NotContains(t, letter.CoverLetterText, "strong expertise in")
	assert.NotContains(t, letter.CoverLetterText, "My experience includes")
}

func TestFallbackToCatalogSkills(t *testing.T) {
	w := New(newMatcher(t))

	f := w.Facts("Jane Doe\nBuilt data pipelines in Python and shipped them with Docker.",
		"Seeking a Data Engineer with Kubernetes and PostgreSQL experience.")

	assert.Contains(t, f.Skills, "Python")
	assert.Contains(t, f.Skills, "Docker")
	assert.Contains(t, f.Requirements, "proficiency in Kubernetes")
	assert.Contains(t, f.Requirements, "proficiency in PostgreSQL")
	assert.Equal(t, "Data Engineer", f.TargetRole)
}

func TestExperienceSummary(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "stated years", text: "Over 7 yrs experience in retail", want: "7+ years of professional experience"},
		{name: "one role", text: "Analyst, Initech 2020 - 2023", want: "experience across 1 professional role"},
		{name: "several roles", text: "2015 – 2018\n2018 - present", want: "experience across 2 professional roles"},
		{name: "nothing", text: "Recent graduate", want: "relevant professional experience"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, experienceSummary(tt.text))
		})
	}
}

func TestRoleName(t *testing.T) {
	tests := []struct {
		name string
		jd   string
		want string
	}{
		{name: "labelled", jd: "Job Title: Product Designer\nLocation: Remote", want: "Product Designer"},
		{name: "seeking", jd: "We are seeking an experienced Data Analyst for our team.", want: "experienced Data Analyst"},
		{name: "title line", jd: "Staff Platform Engineer\nYou will own our build tooling.", want: "Staff Platform Engineer"},
		{name: "none", jd: "Great benefits.", want: PlaceholderRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, roleName(tt.jd))
		})
	}
}

func TestSkillsAreCapped(t *testing.T) {
	text := "Jo Li\nSkills: A1, B2, C3, D4, E5, F6, G7, H8, I9, J10\nEducation\nBSc"
	f := New(nil).Facts(text, "")
	assert.Len(t, f.Skills, maxSkills)
	assert.Equal(t, f.Skills[:maxFallbackSkills], f.RelevantSkills)
}
