// Package coverletter writes a template cover letter from the facts it can
// pull out of a résumé and a job description. It never calls the generator.
package coverletter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"atsresume/internal/matcher"
	"atsresume/internal/types"
)

const (
	PlaceholderName    = "[Your Name]"
	PlaceholderCompany = "[Company Name]"
	PlaceholderRole    = "[Position Title]"

	// SourceTemplate marks a letter produced by this package
	SourceTemplate = "template"

	maxSkills         = 8
	maxRequirements   = 6
	maxFallbackSkills = 4
)

// SkillFinder recognizes known skills in free text
type SkillFinder interface {
	Extract(text string) []matcher.Keyword
}

// Facts is everything the letter is built from
type Facts struct {
	CandidateName  string
	CompanyName    string
	TargetRole     string
	Experience     string
	Skills         []string
	Requirements   []string
	RelevantSkills []string
}

// Writer builds template letters. It is safe for concurrent use.
type Writer struct {
	skills SkillFinder
	now    func() time.Time
}

// Option configures a Writer
type Option func(*Writer)

// WithClock fixes the date printed on the letter
func WithClock(now func() time.Time) Option {
	return func(w *Writer) { w.now = now }
}

// New creates a writer. skills is consulted when the résumé has no skills
// section or the job description has no requirements list; it may be nil.
func New(skills SkillFinder, opts ...Option) *Writer {
	w := &Writer{skills: skills, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Generate extracts the facts and writes the letter
func (w *Writer) Generate(resumeText, jobDescription string) types.CoverLetter {
	facts := w.Facts(resumeText, jobDescription)
	return types.CoverLetter{
		CoverLetterText: w.Write(facts),
		CandidateName:   facts.CandidateName,
		TargetRole:      facts.TargetRole,
		CompanyName:     facts.CompanyName,
		Source:          SourceTemplate,
	}
}

// Facts pulls the candidate and job details used by the letter. Fields that
// cannot be found hold their placeholder.
func (w *Writer) Facts(resumeText, jobDescription string) Facts {
	f := Facts{
		CandidateName: candidateName(resumeText),
		CompanyName:   companyName(jobDescription),
		TargetRole:    roleName(jobDescription),
		Experience:    experienceSummary(resumeText),
		Skills:        w.resumeSkills(resumeText),
		Requirements:  w.requirements(jobDescription),
	}
	f.RelevantSkills = relevantSkills(f.Skills, f.Requirements)
	return f
}

var (
	nameSkipPattern  = regexp.MustCompile(`(?i)summary|experience|education|skills|objective|phone|email|address|http`)
	yearsPattern     = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:years?|yrs?)\s*(?:of)?\s*(?:experience|exp)`)
	dateRangePattern = regexp.MustCompile(`(?i)(?:19|20)\d{2}\s*[-–]\s*(?:(?:19|20)\d{2}|present|current)`)
	skillSplit       = regexp.MustCompile(`[,|;•\n]+`)
	listMarker       = regexp.MustCompile(`^[-•*>\s]+`)

	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?i:at|join|about)\s+([A-Z][\w&']*(?:[ \t]+[A-Z][\w&']*){0,3})`),
		regexp.MustCompile(`(?im)company\s*[:=]\s*(.+?)\s*$`),
	}
	rolePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:job title|position|role)\s*[:=]\s*(.+?)\s*$`),
		regexp.MustCompile(`(?i)(?:hiring|looking for|seeking)\s+(?:an?\s+)?(.+?)(?:\s+(?:proficient|with|who|at|for|in|to)\b|[.,\n]|$)`),
		regexp.MustCompile(`(?im)^(.+?(?:engineer|developer|manager|analyst|designer|architect|scientist|specialist|coordinator|consultant|lead|director|intern))\s*$`),
	}
	roleTrailer = regexp.MustCompile(`(?i)\s+(?:a|an|the|who|with|at|for|in|to)$`)

	skillHeaders       = []string{"skills", "technical skills", "core competencies", "key skills"}
	skillStops         = []string{"experience", "education", "projects", "certifications", "awards", "references"}
	requirementHeaders = []string{"requirements", "qualifications", "what we're looking for", "what we’re looking for", "must have", "you'll need", "you’ll need"}
	requirementStops   = []string{"benefits", "perks", "about", "how to", "application"}
)

// candidateName is the first short line that is not a heading or contact detail
func candidateName(resumeText string) string {
	for _, line := range strings.Split(resumeText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || nameSkipPattern.MatchString(line) {
			continue
		}
		if words := strings.Fields(line); len(words) <= 5 && len(line) < 40 {
			return line
		}
	}
	return PlaceholderName
}

func experienceSummary(resumeText string) string {
	if m := yearsPattern.FindStringSubmatch(resumeText); m != nil {
		return m[1] + "+ years of professional experience"
	}
	if n := len(dateRangePattern.FindAllString(resumeText, -1)); n > 0 {
		plural := ""
		if n > 1 {
			plural = "s"
		}
		return fmt.Sprintf("experience across %d professional role%s", n, plural)
	}
	return "relevant professional experience"
}

func companyName(jobDescription string) string {
	for _, p := range companyPatterns {
		if m := p.FindStringSubmatch(jobDescription); m != nil {
			if name := strings.TrimRight(strings.TrimSpace(m[1]), "."); name != "" {
				return name
			}
		}
	}
	return PlaceholderCompany
}

func roleName(jobDescription string) string {
	for _, p := range rolePatterns {
		m := p.FindStringSubmatch(jobDescription)
		if m == nil {
			continue
		}
		role := strings.TrimSpace(roleTrailer.ReplaceAllString(strings.TrimSpace(m[1]), ""))
		if len(role) >= 3 && len(role) < 60 {
			return role
		}
	}
	return PlaceholderRole
}

// section returns the lines under the first heading in headers, up to the
// next line opening with one of stops. Text after "Heading:" on the same line
// is included.
func section(text string, headers, stops []string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))
		inline, ok := headingRest(lower, strings.TrimSpace(line), headers)
		if !ok {
			continue
		}

		var out []string
		if inline != "" {
			out = append(out, inline)
		}
		for _, next := range lines[i+1:] {
			if hasAnyPrefix(strings.ToLower(strings.TrimSpace(next)), stops) {
				break
			}
			out = append(out, next)
		}
		return out
	}
	return nil
}

func headingRest(lower, original string, headers []string) (string, bool) {
	for _, h := range headers {
		if lower == h || lower == h+":" {
			return "", true
		}
		if strings.HasPrefix(lower, h+":") {
			return strings.TrimSpace(original[len(h)+1:]), true
		}
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func (w *Writer) resumeSkills(resumeText string) []string {
	var (
		skills []string
		seen   = map[string]bool{}
	)
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || len(s) >= 40 || seen[key] {
			return
		}
		seen[key] = true
		skills = append(skills, s)
	}

	block := strings.Join(section(resumeText, skillHeaders, skillStops), "\n")
	for _, token := range skillSplit.Split(block, -1) {
		token = listMarker.ReplaceAllString(token, "")
		// "Languages: Go" lists the category first
		if _, rest, ok := strings.Cut(token, ":"); ok {
			token = rest
		}
		add(strings.TrimSpace(token))
	}

	if len(skills) == 0 && w.skills != nil {
		for _, kw := range w.skills.Extract(resumeText) {
			add(kw.Display)
		}
	}
	return skills[:min(len(skills), maxSkills)]
}

func (w *Writer) requirements(jobDescription string) []string {
	var reqs []string
	for _, line := range section(jobDescription, requirementHeaders, requirementStops) {
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if len(line) > 5 && len(line) < 100 {
			reqs = append(reqs, line)
		}
	}

	if len(reqs) == 0 && w.skills != nil {
		for _, kw := range w.skills.Extract(jobDescription) {
			reqs = append(reqs, "proficiency in "+kw.Display)
		}
	}
	return reqs[:min(len(reqs), maxRequirements)]
}

// relevantSkills keeps the skills named by a requirement, or the first few
// when none are
func relevantSkills(skills, requirements []string) []string {
	reqText := strings.ToLower(strings.Join(requirements, " "))
	var relevant []string
	for _, s := range skills {
		if strings.Contains(reqText, strings.ToLower(s)) {
			relevant = append(relevant, s)
		}
	}
	if len(relevant) == 0 {
		return skills[:min(len(skills), maxFallbackSkills)]
	}
	return relevant
}

// Write renders the letter body
func (w *Writer) Write(f Facts) string {
	var sb strings.Builder

	sb.WriteString(f.CandidateName + "\n")
	sb.WriteString(w.now().Format("January 2, 2006") + "\n\n")
	sb.WriteString("Dear Hiring Manager,\n\n")

	fmt.Fprintf(&sb, "I am writing to express my strong interest in the %s position at %s. ", f.TargetRole, f.CompanyName)
	fmt.Fprintf(&sb, "With %s, I am confident that my background and skills make me an excellent fit for this role.\n\n", f.Experience)

	if len(f.RelevantSkills) > 0 {
		fmt.Fprintf(&sb, "Throughout my career, I have developed strong expertise in %s. ", strings.Join(f.RelevantSkills, ", "))
		sb.WriteString("These skills directly align with the requirements outlined in your job description ")
		sb.WriteString("and would allow me to make an immediate and meaningful contribution to your team.\n\n")
	}

	if len(f.Requirements) >= 2 {
		sb.WriteString("I am particularly drawn to this opportunity because it requires expertise in areas where I have proven results. ")
		fmt.Fprintf(&sb, "My experience includes %s, which I believe are critical to succeeding in this position.\n\n", joinRequirements(f.Requirements))
	}

	fmt.Fprintf(&sb, "I am excited about the opportunity to bring my unique blend of skills and experience to %s. ", f.CompanyName)
	sb.WriteString("I am eager to contribute to your team's success and am confident that my proactive approach ")
	sb.WriteString("and dedication to excellence would be a valuable asset.\n\n")

	sb.WriteString("Thank you for considering my application. I would welcome the opportunity to discuss how my ")
	sb.WriteString("qualifications align with your needs. I look forward to hearing from you.\n\n")

	sb.WriteString("Sincerely,\n")
	sb.WriteString(f.CandidateName)
	return sb.String()
}

var proficiencyPrefix = regexp.MustCompile(`(?i)^proficiency in\s+`)

// joinRequirements lists up to three requirements as "a, b, and c"
func joinRequirements(reqs []string) string {
	clean := make([]string, 0, 3)
	for _, r := range reqs[:min(len(reqs), 3)] {
		clean = append(clean, strings.TrimSpace(proficiencyPrefix.ReplaceAllString(r, "")))
	}
	switch len(clean) {
	case 1:
		return clean[0]
	case 2:
		return clean[0] + " and " + clean[1]
	default:
		return strings.Join(clean[:len(clean)-1], ", ") + ", and " + clean[len(clean)-1]
	}
}
