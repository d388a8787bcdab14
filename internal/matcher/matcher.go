// Package matcher extracts recognized skills from a job description and
// checks which of them a résumé covers, following synonyms and whole-word
// boundaries.
package matcher

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"atsresume/internal/types"
)

// Taxonomy is the part of the keyword catalog the matcher relies on
type Taxonomy interface {
	MultiWordSkills() []string
	IsKnownSkill(text string) bool
	CanonicalOf(text string) (string, bool)
	DisplayFormOf(text string) (string, bool)
	AllFormsOf(canonical string) []string
}

// Keyword is a skill found in a text, keyed by canonical name
type Keyword struct {
	Canonical string
	Display   string
}

var (
	tokenSeparators = regexp.MustCompile(`[\s,;|()\[\]{}]+`)
	tokenJunk       = regexp.MustCompile(`[^a-zA-Z0-9.#+\-/]`)
)

// Matcher is safe for concurrent use
type Matcher struct {
	taxonomy  Taxonomy
	multiWord []string
	patterns  sync.Map // form -> *regexp.Regexp
}

// New creates a matcher over the given taxonomy
func New(taxonomy Taxonomy) *Matcher {
	return &Matcher{
		taxonomy:  taxonomy,
		multiWord: taxonomy.MultiWordSkills(),
	}
}

// Match extracts keywords from jobDescription and splits them into those the
// résumé contains and those it lacks. Both lists keep extraction order.
func (m *Matcher) Match(resumeText, jobDescription string) types.MatchResult {
	keywords := m.Extract(jobDescription)
	resumeLower := strings.ToLower(resumeText)

	result := types.MatchResult{Matched: []string{}, Missing: []string{}}
	for _, kw := range keywords {
		if m.InText(kw.Canonical, resumeLower) {
			result.Matched = append(result.Matched, kw.Display)
		} else {
			result.Missing = append(result.Missing, kw.Display)
		}
	}

	if len(keywords) > 0 {
		ratio := float64(len(result.Matched)) / float64(len(keywords))
		result.MatchPercentage = math.Round(ratio*1000) / 10
	}
	return result
}

// Extract returns the distinct skills named in text, multi-word aliases first
// (longest first), then single tokens not already covered by a multi-word hit.
func (m *Matcher) Extract(text string) []Keyword {
	var (
		keywords []Keyword
		seen     = map[string]struct{}{}
		consumed []string
	)
	record := func(canonical, alias string) {
		if _, ok := seen[canonical]; ok {
			return
		}
		seen[canonical] = struct{}{}
		keywords = append(keywords, Keyword{Canonical: canonical, Display: m.chooseDisplayName(canonical, alias)})
	}

	lower := strings.ToLower(text)
	for _, alias := range m.multiWord {
		if !strings.Contains(lower, alias) {
			continue
		}
		consumed = append(consumed, alias)
		if canonical, ok := m.taxonomy.CanonicalOf(alias); ok {
			record(canonical, alias)
		}
	}

	for _, raw := range tokenSeparators.Split(text, -1) {
		token := strings.TrimSpace(tokenJunk.ReplaceAllString(raw, ""))
		token = strings.TrimSuffix(token, ".")
		tokenLower := strings.ToLower(token)

		if len(token) < 2 || IsStopWord(tokenLower) || !m.taxonomy.IsKnownSkill(token) {
			continue
		}
		canonical, ok := m.taxonomy.CanonicalOf(token)
		if !ok {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		if slices.ContainsFunc(consumed, func(alias string) bool {
			return strings.Contains(alias, tokenLower)
		}) {
			continue
		}
		record(canonical, token)
	}

	return keywords
}

// chooseDisplayName prefers the registered casing of the alias that was
// actually seen, unless it is longer than the canonical name.
func (m *Matcher) chooseDisplayName(canonical, alias string) string {
	if registered, ok := m.taxonomy.DisplayFormOf(alias); ok && len(registered) <= len(canonical) {
		return registered
	}
	return canonical
}

// InText reports whether any form of canonical occurs as a whole word in the
// already lowercased text.
func (m *Matcher) InText(canonical, lowerText string) bool {
	forms := m.taxonomy.AllFormsOf(canonical)
	forms = append(forms, strings.ToLower(canonical))
	for _, form := range forms {
		if m.ContainsWholeWord(lowerText, form) {
			return true
		}
	}
	return false
}

// ContainsWholeWord reports whether target occurs in text with no ASCII letter
// or digit directly before or after it. "java" is not found in "javascript",
// while "c++", "ci/cd" and ".net" are found as written.
func (m *Matcher) ContainsWholeWord(text, target string) bool {
	if target == "" || !strings.Contains(text, target) {
		return false
	}

	re := m.pattern(target)
	for start := 0; start <= len(text); {
		loc := re.FindStringIndex(text[start:])
		if loc == nil {
			return false
		}
		begin, end := start+loc[0], start+loc[1]
		if (begin == 0 || !isAlnum(text[begin-1])) && (end == len(text) || !isAlnum(text[end])) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[begin:])
		start = begin + size
	}
	return false
}

func (m *Matcher) pattern(target string) *regexp.Regexp {
	if cached, ok := m.patterns.Load(target); ok {
		return cached.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(target))
	actual, _ := m.patterns.LoadOrStore(target, re)
	return actual.(*regexp.Regexp)
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
