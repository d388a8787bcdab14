package segmenter

import (
	"strings"
	"unicode/utf8"

	"atsresume/internal/types"
)

func contentLines(content string) []string {
	var out []string
	for _, line := range lineBreak.Split(content, -1) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func isBullet(line string) bool {
	return strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "*") || numberedBullet.MatchString(line)
}

func stripMarker(line string) string {
	line = bulletMarker.ReplaceAllString(line, "")
	line = numberedMarker.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

// parseEducation opens an entry on every degree line. Score and year lines
// fill their slot; a line that filled one never becomes the institution.
func parseEducation(content string) []types.EducationEntry {
	entries := []types.EducationEntry{}
	var current *types.EducationEntry
	flush := func() {
		if current != nil {
			entries = append(entries, *current)
		}
	}

	for _, line := range contentLines(content) {
		if degreePattern.MatchString(line) {
			flush()
			current = &types.EducationEntry{Degree: line}
			continue
		}
		if current == nil {
			current = &types.EducationEntry{Institution: line}
			continue
		}

		filled := false
		if score := cgpaPattern.FindString(line); score != "" {
			current.Score = score
			filled = true
		} else if pct := percentPattern.FindString(line); pct != "" {
			current.Score = pct + " (Percentage)"
			filled = true
		}

		if span := YearRange.FindString(line); span != "" {
			current.Year = span
			filled = true
		} else if year := singleYearPattern.FindString(line); year != "" && current.Year == "" {
			current.Year = year
			filled = true
		}

		if !filled && current.Institution == "" && !fourDigits.MatchString(line) {
			current.Institution = line
		}
	}
	flush()
	return entries
}

// parseSkills reads "Category: a, b", then "Category | a | b", and files
// anything else under "Skills".
func parseSkills(content string) types.Skills {
	var skills types.Skills
	for _, line := range contentLines(content) {
		if colon := strings.Index(line, ":"); colon > 0 && colon < 40 {
			category := strings.TrimSpace(bulletMarker.ReplaceAllString(strings.TrimSpace(line[:colon]), ""))
			values := strings.TrimSpace(line[colon+1:])
			if category != "" && values != "" {
				skills.Set(category, values)
				continue
			}
		}

		if strings.Contains(line, "|") {
			parts := strings.Split(line, "|")
			category := strings.TrimSpace(bulletMarker.ReplaceAllString(strings.TrimSpace(parts[0]), ""))
			if category != "" {
				values := make([]string, 0, len(parts)-1)
				for _, p := range parts[1:] {
					values = append(values, strings.TrimSpace(p))
				}
				skills.Set(category, strings.Join(values, ", "))
				continue
			}
		}

		if cleaned := strings.TrimSpace(bulletMarker.ReplaceAllString(line, "")); cleaned != "" {
			skills.Merge("Skills", cleaned)
		}
	}
	return skills
}

func looksLikeJobTitle(line string) bool {
	if strings.HasPrefix(line, "•") || strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
		return false
	}
	if utf8.RuneCountInString(line) > 80 {
		return false
	}
	lower := strings.ToLower(line)
	for _, kw := range jobTitleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func parseExperience(content string) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	var current *types.ExperienceEntry
	flush := func() {
		if current != nil {
			if current.Bullets == nil {
				current.Bullets = []string{}
			}
			entries = append(entries, *current)
		}
	}

	for _, line := range contentLines(content) {
		if looksLikeJobTitle(line) || current == nil {
			flush()
			current = &types.ExperienceEntry{Title: line, Bullets: []string{}}
			continue
		}

		if loc := YearRange.FindStringIndex(line); loc != nil && current.Dates == "" {
			current.Dates = line
			if current.Company == "" {
				before := strings.TrimSpace(trailingJoiners.ReplaceAllString(strings.TrimSpace(line[:loc[0]]), ""))
				if before != "" {
					current.Company = before
					current.Dates = line[loc[0]:loc[1]]
				}
			}
			continue
		}

		if isBullet(line) {
			if text := stripMarker(line); text != "" {
				current.Bullets = append(current.Bullets, text)
			}
			continue
		}

		if current.Company == "" {
			if loc := locationPattern.FindStringIndex(line); loc != nil {
				current.Location = line[loc[0]:loc[1]]
				company := strings.TrimSpace(trailingJoiners.ReplaceAllString(strings.TrimSpace(line[:loc[0]]), ""))
				if company != "" {
					current.Company = company
				}
			} else {
				current.Company = line
			}
			continue
		}

		if utf8.RuneCountInString(line) > 20 {
			current.Bullets = append(current.Bullets, line)
		}
	}
	flush()
	return entries
}

func looksLikeTechStack(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "tech") || strings.HasPrefix(lower, "technologies") ||
		strings.HasPrefix(lower, "built with") || strings.HasPrefix(lower, "tools") ||
		strings.Contains(line, "|")
}

func parseProjects(content string) []types.ProjectEntry {
	entries := []types.ProjectEntry{}
	var current *types.ProjectEntry
	flush := func() {
		if current != nil {
			if current.Bullets == nil {
				current.Bullets = []string{}
			}
			entries = append(entries, *current)
		}
	}

	for _, line := range contentLines(content) {
		bullet := isBullet(line)
		if bullet && current != nil {
			if text := stripMarker(line); text != "" {
				current.Bullets = append(current.Bullets, text)
			}
			continue
		}

		if current != nil && current.TechStack == "" && looksLikeTechStack(line) {
			current.TechStack = strings.TrimSpace(techStackPrefix.ReplaceAllString(line, ""))
			continue
		}

		if bullet {
			// A bullet before any project title has nothing to attach to.
			continue
		}

		flush()
		current = &types.ProjectEntry{Name: line, Bullets: []string{}}
		if name, stack, ok := strings.Cut(line, "|"); ok {
			current.Name = strings.TrimSpace(name)
			current.TechStack = strings.TrimSpace(stack)
		}
	}
	flush()
	return entries
}

// parseList strips bullet markers and keeps every non-empty line
func parseList(content string) []string {
	items := []string{}
	for _, line := range contentLines(content) {
		if cleaned := stripMarker(line); cleaned != "" {
			items = append(items, cleaned)
		}
	}
	return items
}
