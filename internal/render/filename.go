package render

import (
	"path/filepath"
	"regexp"
	"strings"

	"atsresume/internal/types"
)

var (
	whitespace  = regexp.MustCompile(`\s+`)
	unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)
)

// FileName fills the settings pattern with the candidate's first and last name
func (s *Settings) FileName(resume *types.Resume) string {
	first, last := "Candidate", ""
	if parts := strings.Fields(resume.PersonalInfo.FullName); len(parts) > 0 {
		first = parts[0]
		if len(parts) > 1 {
			last = parts[len(parts)-1]
		}
	}
	name := strings.NewReplacer("{FirstName}", first, "{LastName}", last).Replace(s.FileNaming.Pattern)
	name = strings.ReplaceAll(name, "__", "_")
	return unsafeChars.ReplaceAllString(name, "")
}

// EnhancedFileName names the rewritten résumé download
func EnhancedFileName(fullName string) string {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = "User"
	}
	return whitespace.ReplaceAllString(fullName, "_") + "_Enhanced_Resume.pdf"
}

// ConvertedFileName names the ATS-friendly copy of an upload
func ConvertedFileName(original string) string {
	base := filepath.Base(strings.TrimSpace(original))
	ext := filepath.Ext(base)
	if ext == "" || base == "." || base == string(filepath.Separator) {
		return "resume_ATS_Friendly.pdf"
	}
	return strings.TrimSuffix(base, ext) + "_ATS_Friendly.pdf"
}
