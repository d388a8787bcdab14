package rewriter

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"atsresume/internal/library"
	"atsresume/internal/matcher"
	"atsresume/internal/types"
)

const maxSummaryWords = 60

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	placeholder   = regexp.MustCompile(`\{[^{}]*\}`)
	spaceBefore   = regexp.MustCompile(`\s+([,.;])`)
	repeatedComma = regexp.MustCompile(`,(\s*,)+`)
	danglingAnd   = regexp.MustCompile(`(?i),?\s*\band\s*([,.;]|$)`)
	danglingComma = regexp.MustCompile(`,\s*([.;]|$)`)
	danglingPrep  = regexp.MustCompile(`(?i)\s+\b(in|with|of|as|a|an)\s*([,.;]|$)`)
	leadingPunct  = regexp.MustCompile(`^[\s,;:.\-–—]+`)

	rolePattern = regexp.MustCompile(`(?i)\b(?:(?:senior|junior|lead|principal|staff|associate|sr\.|jr\.)\s+)?(?:[a-z][a-z0-9+#./-]*\s+){0,3}?(?:engineer|developer|architect|analyst|designer|scientist|consultant|specialist|administrator|manager|pharmacist|marketer)\b`)
)

func (r *Rewriter) enhanceSummary(st *state) {
	if strings.TrimSpace(st.resume.Summary) != "" {
		st.resume.Summary = CleanSummary(st.resume.Summary, r.content.SummaryNeverUse())
		return
	}

	level := library.LevelExperienced
	if st.fresher {
		level = library.LevelFresher
	}
	templates := r.content.SummaryTemplates(st.industry, level)
	if len(templates) == 0 {
		return
	}

	values := map[string]string{
		"targetRole": TargetRole(st.jd),
		"years":      strconv.Itoa(st.years),
	}
	if len(st.resume.Education) > 0 {
		values["degree"] = r.content.DegreeAbbreviation(strings.TrimSpace(st.resume.Education[0].Degree))
	}
	for i, skill := range summarySkills(st.resume, st.match) {
		values["skill"+strconv.Itoa(i+1)] = skill
	}
	st.resume.Summary = FillTemplate(templates[0], values)
}

// CleanSummary removes banned phrases, collapses whitespace and caps the
// summary at sixty words.
func CleanSummary(summary string, banned []string) string {
	for _, phrase := range banned {
		if phrase = strings.TrimSpace(phrase); phrase == "" {
			continue
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
		summary = re.ReplaceAllString(summary, "")
	}
	summary = tidy(summary)

	words := strings.Fields(summary)
	if len(words) > maxSummaryWords {
		summary = strings.Join(words[:maxSummaryWords], " ")
		summary = strings.TrimRight(summary, ",;:")
		if !strings.HasSuffix(summary, ".") {
			summary += "."
		}
	}
	return capitalizeFirst(summary)
}

// FillTemplate substitutes {name} placeholders and drops any left unresolved
func FillTemplate(template string, values map[string]string) string {
	out := placeholder.ReplaceAllStringFunc(template, func(token string) string {
		return values[token[1:len(token)-1]]
	})
	return capitalizeFirst(tidy(out))
}

// TargetRole pulls a job title such as "Senior Backend Engineer" out of a job
// description. It returns "" when none is found.
func TargetRole(jobDescription string) string {
	match := rolePattern.FindString(jobDescription)
	if match == "" {
		return ""
	}
	words := strings.Fields(match)
	for len(words) > 1 && matcher.IsStopWord(strings.ToLower(words[0])) && !isSeniority(words[0]) {
		words = words[1:]
	}
	for i, w := range words {
		words[i] = capitalizeFirst(w)
	}
	return strings.Join(words, " ")
}

func isSeniority(word string) bool {
	switch strings.ToLower(word) {
	case "senior", "junior", "lead", "principal", "staff", "associate", "sr.", "jr.":
		return true
	}
	return false
}

// summarySkills prefers matched keywords and tops up from the résumé's own skills
func summarySkills(res *types.Resume, match types.MatchResult) []string {
	seen := map[string]bool{}
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] || IsSoftSkill(s) {
			return
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	for _, kw := range match.Matched {
		add(kw)
	}
	for _, entry := range res.Skills.Entries() {
		for _, v := range strings.Split(entry.Values, ",") {
			add(v)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// tidy repairs the punctuation left behind by removed phrases or placeholders
func tidy(s string) string {
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = spaceBefore.ReplaceAllString(s, "$1")
	s = repeatedComma.ReplaceAllString(s, ",")
	s = danglingAnd.ReplaceAllString(s, "$1")
	s = danglingComma.ReplaceAllString(s, "$1")
	s = danglingPrep.ReplaceAllString(s, "$2")
	s = leadingPunct.ReplaceAllString(s, "")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func capitalizeFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
