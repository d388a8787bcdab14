// Package scorer computes the deterministic ATS score of a résumé against a
// job description: keyword coverage, formatting hygiene and section
// completeness, weighted 50/25/25.
package scorer

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsresume/internal/types"
)

const (
	keywordWeight    = 0.50
	formattingWeight = 0.25
	sectionWeight    = 0.25
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[\s\-]?)?(\(?\d{2,4}\)?[\s\-]?)?\d{3,5}[\s\-]?\d{3,5}`)
	lineBreak    = regexp.MustCompile(`\r?\n`)
)

// columnGlyphs are box-drawing characters left behind by multi-column layouts
const columnGlyphs = "║│┃─┌┐└┘├┤┬┴┼╔╗╚╝╠╣╦╩╬"

// detectedSections are checked in this order and reported capitalized
var detectedSections = []string{"contact", "summary", "experience", "education", "skills", "certifications", "projects"}

// KeywordMatcher compares résumé text against a job description
type KeywordMatcher interface {
	Match(resumeText, jobDescription string) types.MatchResult
}

// SectionAliases lists the header aliases of a standard section
type SectionAliases interface {
	SectionAliases(name string) []string
}

// Scorer is stateless apart from its collaborators and safe for concurrent use
type Scorer struct {
	matcher  KeywordMatcher
	sections SectionAliases
}

func New(matcher KeywordMatcher, sections SectionAliases) *Scorer {
	return &Scorer{matcher: matcher, sections: sections}
}

// Score computes the full report
func (s *Scorer) Score(resumeText, jobDescription string) *types.ScoreReport {
	match := s.matcher.Match(resumeText, jobDescription)
	return s.ScoreWithMatch(resumeText, match)
}

// ScoreWithMatch computes the report from a match result already in hand
func (s *Scorer) ScoreWithMatch(resumeText string, match types.MatchResult) *types.ScoreReport {
	keywordScore := match.MatchPercentage

	issues := FormattingIssues(resumeText)
	formattingScore := FormattingScore(resumeText)

	presence := s.DetectSections(resumeText)
	sectionScore := SectionScore(resumeText, presence)

	report := &types.ScoreReport{
		OverallScore:             Overall(keywordScore, formattingScore, sectionScore),
		KeywordMatchScore:        roundTenth(keywordScore),
		FormattingScore:          roundTenth(formattingScore),
		SectionCompletenessScore: roundTenth(sectionScore),
	}

	skillsFeedback := "Great keyword alignment with the job description"
	if len(match.Missing) > 0 {
		skillsFeedback = fmt.Sprintf("Missing %d key skill(s) from the job description", len(match.Missing))
	}
	report.Breakdown.Skills = types.SkillsBreakdown{
		Score:    int(math.Round(keywordScore)),
		Matched:  nonNil(match.Matched),
		Missing:  nonNil(match.Missing),
		Feedback: skillsFeedback,
	}

	if presence["Experience"] {
		report.Breakdown.Experience = types.ExperienceBreakdown{
			Score:    max(60, int(math.Round(keywordScore*0.9))),
			Feedback: "Experience section detected",
		}
	} else {
		report.Breakdown.Experience = types.ExperienceBreakdown{
			Score:    20,
			Feedback: "Experience section missing, which is critical for ATS",
		}
	}

	report.Breakdown.Formatting = types.FormattingBreakdown{
		Score:    int(math.Round(formattingScore)),
		Issues:   issues,
		Feedback: formattingFeedback(issues, formattingScore),
	}

	report.Breakdown.SectionCompleteness = types.SectionBreakdown{
		Score:    int(math.Round(sectionScore)),
		Sections: presence,
		Feedback: sectionFeedback(resumeText, presence),
	}
	return report
}

// Overall is the weighted composite, rounded and clamped to 0..100
func Overall(keyword, formatting, section float64) int {
	overall := int(math.Round(keyword*keywordWeight + formatting*formattingWeight + section*sectionWeight))
	return min(100, max(0, overall))
}

func hasTable(lower string) bool {
	return strings.Contains(lower, "<table") || strings.Contains(lower, `\begin{tabular`) ||
		strings.Contains(lower, "\t\t\t")
}

func hasColumnGlyphs(text string) bool {
	return strings.ContainsAny(text, columnGlyphs)
}

func hasImageRefs(lower string) bool {
	for _, marker := range []string{"<img", "<image", "[image", ".png", ".jpg", ".jpeg"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// FormattingScore starts at 100 and subtracts a fixed penalty per problem
func FormattingScore(text string) float64 {
	lower := strings.ToLower(text)
	score := 100.0
	if hasTable(lower) {
		score -= 20
	}
	if hasColumnGlyphs(text) {
		score -= 15
	}
	if hasImageRefs(lower) {
		score -= 15
	}
	if wordCount(text) < 100 {
		score -= 20
	}
	return math.Max(0, math.Min(100, score))
}

// FormattingIssues describes every penalty FormattingScore applied
func FormattingIssues(text string) []string {
	lower := strings.ToLower(text)
	issues := []string{}
	if hasTable(lower) {
		issues = append(issues, "Table-based layout detected: most ATS parsers cannot read tables")
	}
	if hasColumnGlyphs(text) {
		issues = append(issues, "Column or box-drawing characters found, which indicates a multi-column layout")
	}
	if hasImageRefs(lower) {
		issues = append(issues, "Image references found: ATS cannot parse images")
	}
	if n := wordCount(text); n < 100 {
		issues = append(issues, fmt.Sprintf("Resume is very short (%d words); aim for at least 200 to 400 words", n))
	}
	return issues
}

func formattingFeedback(issues []string, score float64) string {
	switch {
	case len(issues) == 0:
		return "Clean, ATS-friendly formatting"
	case score >= 80:
		return "Minor formatting concerns detected"
	case score >= 50:
		return fmt.Sprintf("Formatting needs improvement: %d issue(s) found", len(issues))
	default:
		return "Significant formatting problems. Remove tables, images and complex layouts"
	}
}

// DetectSections reports, per capitalized section name, whether a line opens
// that section. Contact also counts as present when an email or phone number
// appears anywhere.
func (s *Scorer) DetectSections(text string) map[string]bool {
	lines := lineBreak.Split(strings.ToLower(text), -1)
	presence := make(map[string]bool, len(detectedSections))

	for _, section := range detectedSections {
		found := false
		aliases := s.sections.SectionAliases(section)
		for _, line := range lines {
			if lineOpensSection(strings.TrimSpace(line), aliases) {
				found = true
				break
			}
		}
		if section == "contact" && !found {
			found = emailPattern.MatchString(text) || phonePattern.MatchString(text)
		}
		presence[capitalize(section)] = found
	}
	return presence
}

func lineOpensSection(line string, aliases []string) bool {
	if line == "" {
		return false
	}
	for _, alias := range aliases {
		if line == alias || line == alias+":" || line == alias+" :" {
			return true
		}
		if strings.HasPrefix(line, alias) && len(line) > len(alias) {
			next, _ := utf8.DecodeRuneInString(line[len(alias):])
			if !unicode.IsLetter(next) && !unicode.IsDigit(next) {
				return true
			}
		}
	}
	return false
}

// SectionScore awards contact 5 each for header, email and phone, summary 15,
// experience 25, education 20, skills 20 and 5 for certifications or projects.
func SectionScore(text string, presence map[string]bool) float64 {
	score := 0.0
	if presence["Contact"] {
		score += 5
	}
	if emailPattern.MatchString(text) {
		score += 5
	}
	if phonePattern.MatchString(text) {
		score += 5
	}
	if presence["Summary"] {
		score += 15
	}
	if presence["Experience"] {
		score += 25
	}
	if presence["Education"] {
		score += 20
	}
	if presence["Skills"] {
		score += 20
	}
	if presence["Certifications"] || presence["Projects"] {
		score += 5
	}
	return math.Max(0, math.Min(100, score))
}

func sectionFeedback(text string, presence map[string]bool) string {
	var missing []string
	if !presence["Contact"] && !emailPattern.MatchString(text) && !phonePattern.MatchString(text) {
		missing = append(missing, "Contact Info")
	}
	if !presence["Summary"] {
		missing = append(missing, "Summary/Objective")
	}
	for _, name := range []string{"Experience", "Education", "Skills"} {
		if !presence[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return "All essential sections present"
	}
	return "Missing sections: " + strings.Join(missing, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
