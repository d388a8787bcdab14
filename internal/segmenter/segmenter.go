// Package segmenter turns raw résumé text into the structured résumé model.
// Parsing never fails: unreadable input gives an empty, fully shaped model.
package segmenter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"atsresume/internal/catalog"
	"atsresume/internal/errors"
	"atsresume/internal/types"
)

// Headers is the part of the keyword catalog used for section detection
type Headers interface {
	SectionHeaders() []catalog.SectionHeader
}

// Segmenter is safe for concurrent use
type Segmenter struct {
	headers []catalog.SectionHeader
	exact   map[string]string
	logger  *errors.Logger
}

// New builds a segmenter from the catalog's section aliases
func New(h Headers, logger *errors.Logger) *Segmenter {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Segmenter{
		headers: h.SectionHeaders(),
		exact:   map[string]string{},
		logger:  logger,
	}
	for _, header := range s.headers {
		for _, alias := range header.Aliases {
			if _, taken := s.exact[alias]; !taken {
				s.exact[alias] = header.Name
			}
		}
	}
	return s
}

// Parse segments text into a résumé. A panic in any parser is recovered and
// yields an empty model rather than a partial one.
func (s *Segmenter) Parse(text string) (resume *types.Resume) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("Resume parsing failed, returning empty model", "panic", fmt.Sprint(r))
			resume = types.NewResume()
		}
	}()

	resume = types.NewResume()
	if strings.TrimSpace(text) == "" {
		return resume
	}

	lines := lineBreak.Split(text, -1)
	resume.PersonalInfo = s.personalInfo(lines, text)

	sections := s.split(lines)
	resume.Summary = collapse(sections["summary"])
	resume.Education = parseEducation(sections["education"])
	resume.Skills = parseSkills(sections["skills"])
	resume.Experience = parseExperience(sections["experience"])
	resume.Projects = parseProjects(sections["projects"])
	resume.Certifications = parseList(sections["certifications"])
	resume.Achievements = parseList(sections["achievements"])
	resume.Declaration = collapse(sections["declaration"])

	s.logger.Debug("Resume segmented",
		"sections", len(sections),
		"experience_entries", len(resume.Experience),
		"education_entries", len(resume.Education))
	return resume
}

func (s *Segmenter) personalInfo(lines []string, text string) types.PersonalInfo {
	info := types.PersonalInfo{Extra: map[string]string{}}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || emailPattern.MatchString(trimmed) || phonePattern.MatchString(trimmed) ||
			linkedInPattern.MatchString(trimmed) || s.isHeaderLine(trimmed) {
			continue
		}
		info.FullName = trimmed
		break
	}

	info.Email = emailPattern.FindString(text)
	info.Phone = phonePattern.FindString(text)
	info.LinkedIn = linkedInPattern.FindString(text)

	for i := 0; i < len(lines) && i < 10; i++ {
		if loc := locationPattern.FindString(strings.TrimSpace(lines[i])); loc != "" {
			info.Location = loc
			break
		}
	}

	for _, line := range lines {
		m := personalField.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		key := personalFieldKey(m[1])
		if _, seen := info.Extra[key]; !seen {
			info.Extra[key] = strings.TrimSpace(m[2])
		}
	}
	return info
}

func personalFieldKey(label string) string {
	l := strings.ToLower(label)
	switch {
	case strings.HasPrefix(l, "date"), strings.HasPrefix(l, "dob"), strings.HasPrefix(l, "d.o"):
		return "dateOfBirth"
	case l == "gender", l == "sex":
		return "gender"
	case strings.HasPrefix(l, "marital"):
		return "maritalStatus"
	case strings.HasPrefix(l, "father"):
		return "fatherName"
	case strings.HasPrefix(l, "mother"):
		return "motherName"
	case strings.HasPrefix(l, "passport"):
		return "passportNumber"
	case strings.HasPrefix(l, "languages"):
		return "languagesKnown"
	}
	return l
}

// isHeaderLine is the strict check used while looking for the candidate name
func (s *Segmenter) isHeaderLine(line string) bool {
	if utf8.RuneCountInString(line) > 50 {
		return false
	}
	cleaned := strings.ToLower(strings.TrimSpace(headerTrailing.ReplaceAllString(line, "")))
	_, ok := s.exact[cleaned]
	return ok
}

// detectHeader returns the section a line opens, or "" when it is content
func (s *Segmenter) detectHeader(line string) string {
	cleaned := strings.ToLower(strings.TrimSpace(headerTrailing.ReplaceAllString(line, "")))
	cleaned = strings.TrimSpace(headerLeading.ReplaceAllString(cleaned, ""))

	if name, ok := s.exact[cleaned]; ok {
		return name
	}
	if utf8.RuneCountInString(line) >= 50 {
		return ""
	}
	for _, header := range s.headers {
		for _, alias := range header.Aliases {
			if strings.HasPrefix(cleaned, alias+" ") || strings.HasPrefix(cleaned, alias+":") {
				return header.Name
			}
		}
	}
	return ""
}

// split groups the lines between consecutive headers by section name.
// A section that appears twice is concatenated.
func (s *Segmenter) split(lines []string) map[string]string {
	type boundary struct {
		line int
		name string
	}
	var bounds []boundary
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if name := s.detectHeader(trimmed); name != "" {
			bounds = append(bounds, boundary{line: i, name: name})
		}
	}

	sections := map[string]string{}
	for i, b := range bounds {
		end := len(lines)
		if i+1 < len(bounds) {
			end = bounds[i+1].line
		}
		content := strings.TrimSpace(strings.Join(lines[b.line+1:end], "\n"))
		if existing, ok := sections[b.name]; ok {
			sections[b.name] = existing + "\n" + content
		} else {
			sections[b.name] = content
		}
	}
	return sections
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}
