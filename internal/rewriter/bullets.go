package rewriter

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxBulletLength is measured in characters, including the "..." marker
const MaxBulletLength = 120

// bulletFixer repairs bullet openings, cycling through the action verbs so
// consecutive repaired bullets do not all start the same way.
type bulletFixer struct {
	banned []string
	verbs  []string
	known  map[string]bool
	next   int
}

func newBulletFixer(banned, verbs []string) *bulletFixer {
	sorted := make([]string, 0, len(banned))
	for _, b := range banned {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			sorted = append(sorted, b)
		}
	}
	// "helped with" must be tried before "helped"
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	known := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		known[strings.ToLower(v)] = true
	}
	return &bulletFixer{banned: sorted, verbs: verbs, known: known}
}

// Fix returns the repaired bullet, or "" when nothing is left of it
func (f *bulletFixer) Fix(bullet string) string {
	text := strings.TrimSpace(bullet)
	lower := strings.ToLower(text)
	for _, phrase := range f.banned {
		if strings.HasPrefix(lower, phrase) && (len(lower) == len(phrase) || !isWordByte(lower[len(phrase)])) {
			text = text[len(phrase):]
			break
		}
	}
	text = strings.TrimSpace(leadingPunct.ReplaceAllString(text, ""))
	if text == "" {
		return ""
	}

	first := strings.ToLower(strings.TrimRight(firstWord(text), ",.;:"))
	if len(f.verbs) > 0 && !f.known[first] {
		verb := f.verbs[f.next%len(f.verbs)]
		f.next++
		text = verb + " " + lowerFirst(text)
	}
	return truncate(capitalizeFirst(text), MaxBulletLength)
}

func (r *Rewriter) repairBullets(st *state) {
	fixer := newBulletFixer(r.content.BannedBulletStarters(), r.content.ActionVerbs(st.industry))

	for i := range st.resume.Experience {
		st.resume.Experience[i].Bullets = fixer.fixAll(st.resume.Experience[i].Bullets)
	}
	for i := range st.resume.Projects {
		st.resume.Projects[i].Bullets = fixer.fixAll(st.resume.Projects[i].Bullets)
	}
}

func (f *bulletFixer) fixAll(bullets []string) []string {
	out := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if fixed := f.Fix(b); fixed != "" {
			out = append(out, fixed)
		}
	}
	return out
}

func firstWord(s string) string {
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i]
	}
	return s
}

// lowerFirst lower-cases the first letter unless the word looks like an
// acronym ("API", "AWS").
func lowerFirst(s string) string {
	word := firstWord(s)
	if utf8.RuneCountInString(word) > 1 && strings.ToUpper(word) == word {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit-3]), " ") + "..."
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
