package scorer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atsresume/internal/catalog"
	"atsresume/internal/matcher"
	"atsresume/internal/types"
)

const wellFormedResume = `Priya Sharma
priya.sharma@example.com
+91 98765 43210

SUMMARY
Data analyst focused on reporting automation.

EXPERIENCE
Data Analyst, Northwind Retail
Automated weekly sales dashboards in Python and SQL.

EDUCATION
B.Com, Delhi University, 2019

SKILLS
Python, SQL, Microsoft Excel, Tableau
`

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return New(matcher.New(c), c)
}

func TestFormattingScore(t *testing.T) {
	long := strings.Repeat("analysis ", 300)

	tests := []struct {
		name       string
		text       string
		wantScore  float64
		wantIssues int
		feedback   string
	}{
		{name: "clean", text: long, wantScore: 100, wantIssues: 0, feedback: "Clean, ATS-friendly formatting"},
		{name: "single box glyph", text: long + "┌", wantScore: 85, wantIssues: 1, feedback: "Minor formatting concerns detected"},
		{name: "short", text: "two words", wantScore: 80, wantIssues: 1, feedback: "Minor formatting concerns detected"},
		{name: "html table and short", text: "<TABLE><tr><td>Go</td></tr></TABLE>", wantScore: 60, wantIssues: 2, feedback: "Formatting needs improvement: 2 issue(s) found"},
		{name: "tab separated columns", text: long + "a\t\t\tb", wantScore: 80, wantIssues: 1, feedback: "Minor formatting concerns detected"},
		{
			name:       "everything wrong",
			text:       "\\begin{tabular} │ photo.JPG",
			wantScore:  30,
			wantIssues: 4,
			feedback:   "Significant formatting problems. Remove tables, images and complex layouts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantScore, FormattingScore(tt.text))
			issues := FormattingIssues(tt.text)
			assert.Len(t, issues, tt.wantIssues)
			assert.Equal(t, tt.feedback, formattingFeedback(issues, FormattingScore(tt.text)))
		})
	}
}

func TestShortResumeIssueReportsWordCount(t *testing.T) {
	issues := FormattingIssues("just three words")
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "(3 words)")
}

func TestSectionCompleteness(t *testing.T) {
	s := newScorer(t)

	presence := s.DetectSections(wellFormedResume)
	assert.Equal(t, map[string]bool{
		"Contact":        true,
		"Summary":        true,
		"Experience":     true,
		"Education":      true,
		"Skills":         true,
		"Certifications": false,
		"Projects":       false,
	}, presence)
	assert.Equal(t, 95.0, SectionScore(wellFormedResume, presence))
	assert.Equal(t, "All essential sections present", sectionFeedback(wellFormedResume, presence))
}

func TestSectionHeaderMatching(t *testing.T) {
	aliases := []string{"skills", "technical skills"}

	tests := []struct {
		line string
		want bool
	}{
		{line: "skills", want: true},
		{line: "skills:", want: true},
		{line: "skills :", want: true},
		{line: "skills - go, sql", want: true},
		{line: "technical skills", want: true},
		{line: "skillset", want: false},
		{line: "skills2", want: false},
		{line: "my skills", want: false},
		{line: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, lineOpensSection(tt.line, aliases))
		})
	}
}

func TestMissingSectionsFeedback(t *testing.T) {
	s := newScorer(t)
	text := "Nothing but prose here"

	presence := s.DetectSections(text)
	assert.Equal(t, 0.0, SectionScore(text, presence))
	assert.Equal(t,
		"Missing sections: Contact Info, Summary/Objective, Experience, Education, Skills",
		sectionFeedback(text, presence))

	text = "PROJECTS\nInventory tracker\nreach me at someone@example.org"
	presence = s.DetectSections(text)
	assert.True(t, presence["Contact"])
	assert.True(t, presence["Projects"])
	assert.Equal(t, 15.0, SectionScore(text, presence))
	assert.Equal(t, "Missing sections: Summary/Objective, Experience, Education, Skills", sectionFeedback(text, presence))
}

func TestScoreComposition(t *testing.T) {
	s := newScorer(t)
	jd := "Looking for SQL, Python, Tableau and Power BI skills."

	report := s.Score(wellFormedResume, jd)

	assert.Equal(t, 75.0, report.KeywordMatchScore)
	assert.Equal(t, 80.0, report.FormattingScore)
	assert.Equal(t, 95.0, report.SectionCompletenessScore)

	expected := 0.5*report.KeywordMatchScore + 0.25*report.FormattingScore + 0.25*report.SectionCompletenessScore
	assert.InDelta(t, expected, float64(report.OverallScore), 1)
	assert.GreaterOrEqual(t, report.OverallScore, 0)
	assert.LessOrEqual(t, report.OverallScore, 100)

	skills := report.Breakdown.Skills
	assert.Equal(t, 75, skills.Score)
	assert.Equal(t, []string{"Power BI"}, skills.Missing)
	assert.Equal(t, "Missing 1 key skill(s) from the job description", skills.Feedback)

	assert.Equal(t, 68, report.Breakdown.Experience.Score)
	assert.Equal(t, "Experience section detected", report.Breakdown.Experience.Feedback)
	assert.Equal(t, 95, report.Breakdown.SectionCompleteness.Score)
}

func TestScoreWithoutExperienceOrKeywords(t *testing.T) {
	s := newScorer(t)

	report := s.Score("", "")

	assert.Equal(t, 0.0, report.KeywordMatchScore)
	assert.Equal(t, 80.0, report.FormattingScore)
	assert.Equal(t, 0.0, report.SectionCompletenessScore)
	assert.Equal(t, 20, report.OverallScore)
	assert.Equal(t, 20, report.Breakdown.Experience.Score)
	assert.Equal(t, "Great keyword alignment with the job description", report.Breakdown.Skills.Feedback)
	assert.NotNil(t, report.Breakdown.Skills.Matched)
	assert.NotNil(t, report.Breakdown.Skills.Missing)
}

func TestOverallClampsAndRounds(t *testing.T) {
	assert.Equal(t, 78, Overall(66.7, 85, 95))
	assert.Equal(t, 100, Overall(100, 100, 100))
	assert.Equal(t, 0, Overall(0, 0, 0))
	assert.Equal(t, 100, Overall(200, 200, 200))
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newScorer(t)
	jd := "Python, SQL, Docker"

	first := s.Score(wellFormedResume, jd)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Score(wellFormedResume, jd))
	}
}

func TestScoreWithMatchUsesGivenResult(t *testing.T) {
	s := newScorer(t)
	match := types.MatchResult{Matched: []string{"Go"}, Missing: []string{}, MatchPercentage: 100}

	report := s.ScoreWithMatch(wellFormedResume, match)
	assert.Equal(t, 100.0, report.KeywordMatchScore)
	assert.Equal(t, 90, report.Breakdown.Experience.Score)
}
